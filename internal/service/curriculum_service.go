package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campuskit/college-admin-api/internal/models"
	appErrors "github.com/campuskit/college-admin-api/pkg/errors"
)

type courseRepository interface {
	ListCore(ctx context.Context, collegeID, departmentID string) ([]models.Course, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
}

// CurriculumService answers catalog questions about a department's curriculum.
type CurriculumService struct {
	courses courseRepository
	logger  *zap.Logger
}

// NewCurriculumService constructs CurriculumService.
func NewCurriculumService(courses courseRepository, logger *zap.Logger) *CurriculumService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CurriculumService{courses: courses, logger: logger}
}

// CoreCourses returns the department's core curriculum. Empty is valid: the
// department has no core courses defined, and downstream enrollment lookups
// must short-circuit without error.
func (s *CurriculumService) CoreCourses(ctx context.Context, collegeID, departmentID string) ([]models.Course, error) {
	courses, err := s.courses.ListCore(ctx, collegeID, departmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load core curriculum")
	}
	return courses, nil
}

// List returns courses with pagination metadata.
func (s *CurriculumService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return courses, pagination, nil
}
