package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/campuskit/college-admin-api/internal/models"
	appErrors "github.com/campuskit/college-admin-api/pkg/errors"
)

type catalogOfferingRepository interface {
	ListByCoursesAndYear(ctx context.Context, courseIDs []string, yearID string) ([]models.OfferingDetail, error)
}

type catalogYearRepository interface {
	FindByID(ctx context.Context, id string) (*models.AcademicYear, error)
	ListActiveByCollege(ctx context.Context, collegeID string) ([]models.AcademicYear, error)
}

type departmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Department, error)
}

// CatalogService builds the read-only semester/course projection of a
// department. Year policy is a snapshot: the explicit year when given,
// otherwise the first active year. There is no multi-year fallback here,
// unlike the progression engine's locator.
type CatalogService struct {
	curriculum  coreCurriculumResolver
	offerings   catalogOfferingRepository
	years       catalogYearRepository
	departments departmentReader
	cache       *CacheService
	logger      *zap.Logger
}

// NewCatalogService constructs CatalogService.
func NewCatalogService(curriculum coreCurriculumResolver, offerings catalogOfferingRepository, years catalogYearRepository, departments departmentReader, cache *CacheService, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{curriculum: curriculum, offerings: offerings, years: years, departments: departments, cache: cache, logger: logger}
}

func catalogCacheKey(collegeID, departmentID, yearID string) string {
	return fmt.Sprintf("catalog:%s:%s:%s", collegeID, departmentID, yearID)
}

// CoursesBySemester groups the department's core offerings by semester,
// ascending. A department without core courses yields an empty catalog, not
// an error.
func (s *CatalogService) CoursesBySemester(ctx context.Context, collegeID, departmentID string, yearID *string) (*models.DepartmentCatalog, error) {
	if _, err := s.departments.FindByID(ctx, departmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}

	year, err := s.resolveYear(ctx, collegeID, yearID)
	if err != nil {
		return nil, err
	}

	cacheKey := catalogCacheKey(collegeID, departmentID, year.ID)
	var cached models.DepartmentCatalog
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	catalog := &models.DepartmentCatalog{
		CollegeID:    collegeID,
		DepartmentID: departmentID,
		YearID:       year.ID,
		YearLabel:    year.Label,
		Semesters:    []models.SemesterOfferings{},
	}

	courses, err := s.curriculum.CoreCourses(ctx, collegeID, departmentID)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return catalog, nil
	}

	courseIDs := make([]string, len(courses))
	for i, course := range courses {
		courseIDs[i] = course.ID
	}

	offerings, err := s.offerings.ListByCoursesAndYear(ctx, courseIDs, year.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offerings")
	}

	grouped := make(map[int][]models.OfferingDetail)
	for _, offering := range offerings {
		grouped[offering.Semester] = append(grouped[offering.Semester], offering)
	}

	semesters := make([]int, 0, len(grouped))
	for semester := range grouped {
		semesters = append(semesters, semester)
	}
	sort.Ints(semesters)

	for _, semester := range semesters {
		catalog.Semesters = append(catalog.Semesters, models.SemesterOfferings{
			Semester:  semester,
			Offerings: grouped[semester],
		})
	}

	if err := s.cache.Set(ctx, cacheKey, catalog, 0); err != nil {
		s.logger.Warn("catalog cache set failed", zap.String("key", cacheKey), zap.Error(err))
	}

	return catalog, nil
}

// InvalidateCollege drops every cached catalog of a college. Offering or
// curriculum writes go through other services; they call this to keep the
// projection fresh.
func (s *CatalogService) InvalidateCollege(ctx context.Context, collegeID string) error {
	return s.cache.Invalidate(ctx, fmt.Sprintf("catalog:%s:*", collegeID))
}

func (s *CatalogService) resolveYear(ctx context.Context, collegeID string, yearID *string) (*models.AcademicYear, error) {
	if yearID != nil && *yearID != "" {
		year, err := s.years.FindByID(ctx, *yearID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
		}
		return year, nil
	}

	years, err := s.years.ListActiveByCollege(ctx, collegeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve academic calendar")
	}
	if len(years) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no active academic year for college")
	}
	return &years[0], nil
}
