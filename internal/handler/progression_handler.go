package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/college-admin-api/internal/models"
	"github.com/campuskit/college-admin-api/internal/service"
	appErrors "github.com/campuskit/college-admin-api/pkg/errors"
	"github.com/campuskit/college-admin-api/pkg/response"
)

type progressionService interface {
	EnrollForSemester(ctx context.Context, studentID string, semester int) *models.EnrollmentResult
	EnrollFirstYear(ctx context.Context, studentID string) *models.EnrollmentResult
	Promote(ctx context.Context, studentID string) *models.EnrollmentResult
}

type bulkProgressionService interface {
	Run(ctx context.Context, req service.BulkProgressionRequest) (*models.BulkProgressionReport, error)
}

// EnrollSemesterRequest is the payload for semester-targeted enrollment.
type EnrollSemesterRequest struct {
	Semester int `json:"semester" binding:"required,min=1"`
}

// ProgressionHandler exposes the enrollment and promotion operations.
type ProgressionHandler struct {
	progression progressionService
	bulk        bulkProgressionService
}

// NewProgressionHandler constructs ProgressionHandler.
func NewProgressionHandler(progression progressionService, bulk bulkProgressionService) *ProgressionHandler {
	return &ProgressionHandler{progression: progression, bulk: bulk}
}

// EnrollForSemester godoc
// @Summary Enroll a student into a semester's core offerings
// @Tags Progression
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body EnrollSemesterRequest true "Target semester"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/enrollments [post]
func (h *ProgressionHandler) EnrollForSemester(c *gin.Context) {
	var req EnrollSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result := h.progression.EnrollForSemester(c.Request.Context(), c.Param("id"), req.Semester)
	response.JSON(c, http.StatusOK, result, nil)
}

// EnrollFirstYear godoc
// @Summary Enroll a freshly admitted student into semester 1
// @Tags Progression
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/enrollments/first-year [post]
func (h *ProgressionHandler) EnrollFirstYear(c *gin.Context) {
	result := h.progression.EnrollFirstYear(c.Request.Context(), c.Param("id"))
	response.JSON(c, http.StatusOK, result, nil)
}

// Promote godoc
// @Summary Advance a student's semester and enroll them in the new semester
// @Tags Progression
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/promote [post]
func (h *ProgressionHandler) Promote(c *gin.Context) {
	result := h.progression.Promote(c.Request.Context(), c.Param("id"))
	response.JSON(c, http.StatusOK, result, nil)
}

// BulkRun godoc
// @Summary Run a progression operation over many students
// @Tags Progression
// @Accept json
// @Produce json
// @Param payload body service.BulkProgressionRequest true "Bulk request"
// @Success 200 {object} response.Envelope
// @Router /progression/bulk [post]
func (h *ProgressionHandler) BulkRun(c *gin.Context) {
	var req service.BulkProgressionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	report, err := h.bulk.Run(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
