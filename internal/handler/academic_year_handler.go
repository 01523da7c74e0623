package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/college-admin-api/internal/models"
	"github.com/campuskit/college-admin-api/pkg/response"
)

type calendarService interface {
	ActiveYears(ctx context.Context, collegeID string) ([]models.AcademicYear, error)
	List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, *models.Pagination, error)
}

// AcademicYearHandler exposes academic calendar lookups.
type AcademicYearHandler struct {
	calendar calendarService
}

// NewAcademicYearHandler constructs AcademicYearHandler.
func NewAcademicYearHandler(calendar calendarService) *AcademicYearHandler {
	return &AcademicYearHandler{calendar: calendar}
}

// ListActive godoc
// @Summary Active academic years of a college, newest first
// @Tags Calendar
// @Produce json
// @Param id path string true "College ID"
// @Success 200 {object} response.Envelope
// @Router /colleges/{id}/academic-years/active [get]
func (h *AcademicYearHandler) ListActive(c *gin.Context) {
	years, err := h.calendar.ActiveYears(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years, nil)
}

// List godoc
// @Summary List academic years
// @Tags Calendar
// @Produce json
// @Param id path string true "College ID"
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /colleges/{id}/academic-years [get]
func (h *AcademicYearHandler) List(c *gin.Context) {
	filter := models.AcademicYearFilter{CollegeID: c.Param("id")}
	if active := c.Query("active"); active != "" {
		if v, err := strconv.ParseBool(active); err == nil {
			filter.IsActive = &v
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	years, pagination, err := h.calendar.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years, pagination)
}
