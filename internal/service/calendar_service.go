package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campuskit/college-admin-api/internal/models"
	appErrors "github.com/campuskit/college-admin-api/pkg/errors"
)

type academicYearRepository interface {
	ListActiveByCollege(ctx context.Context, collegeID string) ([]models.AcademicYear, error)
	FindByID(ctx context.Context, id string) (*models.AcademicYear, error)
	List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, int, error)
}

// CalendarService resolves a college's academic calendar.
type CalendarService struct {
	years  academicYearRepository
	logger *zap.Logger
}

// NewCalendarService constructs CalendarService.
func NewCalendarService(years academicYearRepository, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{years: years, logger: logger}
}

// ActiveYears returns the active academic years of a college, newest label
// first. An empty slice means "no calendar available" and is a valid outcome
// the caller must handle, not an error.
func (s *CalendarService) ActiveYears(ctx context.Context, collegeID string) ([]models.AcademicYear, error) {
	years, err := s.years.ListActiveByCollege(ctx, collegeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve academic calendar")
	}
	return years, nil
}

// List returns academic years with pagination metadata.
func (s *CalendarService) List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, *models.Pagination, error) {
	years, total, err := s.years.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic years")
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
	return years, pagination, nil
}
