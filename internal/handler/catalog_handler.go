package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/college-admin-api/internal/models"
	"github.com/campuskit/college-admin-api/pkg/response"
)

type catalogService interface {
	CoursesBySemester(ctx context.Context, collegeID, departmentID string, yearID *string) (*models.DepartmentCatalog, error)
}

// CatalogHandler exposes the department catalog projection.
type CatalogHandler struct {
	catalog catalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog catalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// CoursesBySemester godoc
// @Summary Core offerings of a department grouped by semester
// @Tags Catalog
// @Produce json
// @Param id path string true "College ID"
// @Param deptId path string true "Department ID"
// @Param yearId query string false "Academic year (defaults to the first active year)"
// @Success 200 {object} response.Envelope
// @Router /colleges/{id}/departments/{deptId}/catalog [get]
func (h *CatalogHandler) CoursesBySemester(c *gin.Context) {
	var yearID *string
	if raw := c.Query("yearId"); raw != "" {
		yearID = &raw
	}
	catalog, err := h.catalog.CoursesBySemester(c.Request.Context(), c.Param("id"), c.Param("deptId"), yearID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, catalog, nil)
}
