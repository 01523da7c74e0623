package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/campuskit/college-admin-api/internal/models"
	appErrors "github.com/campuskit/college-admin-api/pkg/errors"
)

type progressionStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	UpdateSemester(ctx context.Context, id string, semester int) error
}

type progressionOfferingRepository interface {
	ListForSemester(ctx context.Context, q models.OfferingQuery) ([]models.OfferingDetail, error)
}

type progressionEnrollmentRepository interface {
	ListByStudentAndOfferings(ctx context.Context, studentID string, offeringIDs []string) ([]models.StudentEnrollment, error)
	Create(ctx context.Context, enrollment *models.StudentEnrollment) error
}

type activeYearResolver interface {
	ActiveYears(ctx context.Context, collegeID string) ([]models.AcademicYear, error)
}

type coreCurriculumResolver interface {
	CoreCourses(ctx context.Context, collegeID, departmentID string) ([]models.Course, error)
}

// ProgressionService drives auto-enrollment and semester promotion. Its
// operations always return a populated result; failures are reported inside
// the result rather than surfaced as Go errors, so one student's outcome can
// be collected into a bulk report without special casing.
type ProgressionService struct {
	students    progressionStudentRepository
	offerings   progressionOfferingRepository
	enrollments progressionEnrollmentRepository
	calendar    activeYearResolver
	curriculum  coreCurriculumResolver
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewProgressionService constructs ProgressionService.
func NewProgressionService(
	students progressionStudentRepository,
	offerings progressionOfferingRepository,
	enrollments progressionEnrollmentRepository,
	calendar activeYearResolver,
	curriculum coreCurriculumResolver,
	metrics *MetricsService,
	logger *zap.Logger,
) *ProgressionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressionService{
		students:    students,
		offerings:   offerings,
		enrollments: enrollments,
		calendar:    calendar,
		curriculum:  curriculum,
		metrics:     metrics,
		logger:      logger,
	}
}

// EnrollFirstYear enrolls a freshly admitted student into semester 1.
func (s *ProgressionService) EnrollFirstYear(ctx context.Context, studentID string) *models.EnrollmentResult {
	return s.EnrollForSemester(ctx, studentID, 1)
}

// EnrollForSemester resolves the student's context, locates the semester's
// core offerings and reconciles the student's enrollments against them.
// Repeating the call is idempotent: the second run creates zero rows and
// reports the existing enrollments informationally.
func (s *ProgressionService) EnrollForSemester(ctx context.Context, studentID string, semester int) *models.EnrollmentResult {
	result := s.enrollForSemester(ctx, studentID, semester)
	s.metrics.RecordProgression("enroll_semester", result.Success, result.EnrollmentsCreated)
	return result
}

func (s *ProgressionService) enrollForSemester(ctx context.Context, studentID string, semester int) *models.EnrollmentResult {
	result := &models.EnrollmentResult{StudentID: studentID, Messages: []string{}}

	if semester < 1 {
		result.AddMessage(fmt.Sprintf("invalid semester %d", semester))
		return result
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			result.AddMessage("student not found")
		} else {
			s.logger.Error("load student failed", zap.String("student_id", studentID), zap.Error(err))
			result.AddMessage(fmt.Sprintf("failed to load student: %v", err))
		}
		return result
	}

	if student.DepartmentID == nil || *student.DepartmentID == "" {
		result.AddMessage("student has no department assigned")
		return result
	}

	years, err := s.calendar.ActiveYears(ctx, student.CollegeID)
	if err != nil {
		result.AddMessage(fmt.Sprintf("failed to resolve academic calendar: %v", err))
		return result
	}
	if len(years) == 0 {
		result.AddMessage("no active academic year for college")
		return result
	}

	courses, err := s.curriculum.CoreCourses(ctx, student.CollegeID, *student.DepartmentID)
	if err != nil {
		result.AddMessage(fmt.Sprintf("failed to load core curriculum: %v", err))
		return result
	}
	if len(courses) == 0 {
		result.AddMessage("no core courses defined for department")
		return result
	}

	courseIDs := make([]string, len(courses))
	for i, course := range courses {
		courseIDs[i] = course.ID
	}

	chosenYear, offerings, err := s.locateOfferings(ctx, courseIDs, semester, years, student.SectionID)
	if err != nil {
		result.AddMessage(fmt.Sprintf("failed to locate course offerings: %v", err))
		return result
	}
	if len(offerings) == 0 {
		result.AddMessage(fmt.Sprintf("no course offerings found for semester %d", semester))
		return result
	}
	result.ChosenYearID = chosenYear.ID
	result.ChosenYearLabel = chosenYear.Label

	s.reconcile(ctx, student.ID, offerings, chosenYear.ID, result)
	return result
}

// locateOfferings tries the candidate years in the order supplied (newest
// first) and returns the first year that yields at least one offering. Years
// are never merged; a year with data shadows every older one.
func (s *ProgressionService) locateOfferings(ctx context.Context, courseIDs []string, semester int, years []models.AcademicYear, sectionID *string) (models.AcademicYear, []models.OfferingDetail, error) {
	for _, year := range years {
		offerings, err := s.offerings.ListForSemester(ctx, models.OfferingQuery{
			CourseIDs:      courseIDs,
			Semester:       semester,
			AcademicYearID: year.ID,
			SectionID:      sectionID,
		})
		if err != nil {
			return models.AcademicYear{}, nil, err
		}
		if len(offerings) > 0 {
			return year, offerings, nil
		}
	}
	return models.AcademicYear{}, nil, nil
}

// reconcile computes the delta between the located offerings and the
// student's existing enrollments and persists only the missing rows. The
// storage-level unique constraint is the real duplicate guard: a concurrent
// writer winning the race surfaces as ErrDuplicateEnrollment and is folded
// into the already-enrolled count.
func (s *ProgressionService) reconcile(ctx context.Context, studentID string, offerings []models.OfferingDetail, yearID string, result *models.EnrollmentResult) {
	offeringIDs := make([]string, len(offerings))
	for i, offering := range offerings {
		offeringIDs[i] = offering.ID
	}

	existing, err := s.enrollments.ListByStudentAndOfferings(ctx, studentID, offeringIDs)
	if err != nil {
		result.AddMessage(fmt.Sprintf("failed to load existing enrollments: %v", err))
		return
	}
	enrolled := make(map[string]bool, len(existing))
	for _, e := range existing {
		enrolled[e.OfferingID] = true
	}

	alreadyEnrolled := len(existing)
	var failed int

	for _, offering := range offerings {
		if enrolled[offering.ID] {
			continue
		}
		err := s.enrollments.Create(ctx, &models.StudentEnrollment{
			StudentID:      studentID,
			OfferingID:     offering.ID,
			AcademicYearID: yearID,
			AttemptNumber:  1,
		})
		if err != nil {
			if errors.Is(err, appErrors.ErrDuplicateEnrollment) {
				alreadyEnrolled++
				continue
			}
			failed++
			s.logger.Error("enrollment insert failed",
				zap.String("student_id", studentID),
				zap.String("offering_id", offering.ID),
				zap.Error(err))
			result.AddMessage(fmt.Sprintf("failed to enroll in %s: %v", offering.CourseCode, err))
			continue
		}
		result.EnrollmentsCreated++
		result.EnrolledOfferings = append(result.EnrolledOfferings, describeOffering(offering))
	}

	if alreadyEnrolled > 0 {
		result.AddMessage(fmt.Sprintf("already enrolled in %d course(s)", alreadyEnrolled))
	}
	if result.EnrollmentsCreated > 0 {
		result.AddMessage(fmt.Sprintf("enrolled in %d course(s)", result.EnrollmentsCreated))
	}

	result.Success = failed == 0
}

// Promote advances the student's semester counter by one and enrolls them in
// the new semester's offerings. The counter advance is deliberately not
// transactional with the enrollment step: once the counter is written it
// stays written, and a missing-offerings outcome is reported as a warning in
// the same result.
func (s *ProgressionService) Promote(ctx context.Context, studentID string) *models.EnrollmentResult {
	result := s.promote(ctx, studentID)
	s.metrics.RecordProgression("promote", result.Success, result.EnrollmentsCreated)
	return result
}

func (s *ProgressionService) promote(ctx context.Context, studentID string) *models.EnrollmentResult {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		result := &models.EnrollmentResult{StudentID: studentID, Messages: []string{}}
		if errors.Is(err, sql.ErrNoRows) {
			result.AddMessage("student not found")
		} else {
			s.logger.Error("load student failed", zap.String("student_id", studentID), zap.Error(err))
			result.AddMessage(fmt.Sprintf("failed to load student: %v", err))
		}
		return result
	}

	current := student.Semester
	if current < 1 {
		current = 1
	}
	next := current + 1

	if err := s.students.UpdateSemester(ctx, studentID, next); err != nil {
		result := &models.EnrollmentResult{StudentID: studentID, Messages: []string{}}
		s.logger.Error("semester update failed", zap.String("student_id", studentID), zap.Error(err))
		result.AddMessage(fmt.Sprintf("failed to update semester: %v", err))
		return result
	}

	result := s.enrollForSemester(ctx, studentID, next)
	result.PrependMessage(fmt.Sprintf("student promoted to semester %d", next))
	return result
}

func describeOffering(o models.OfferingDetail) string {
	desc := fmt.Sprintf("%s %s (semester %d, %s)", o.CourseCode, o.CourseName, o.Semester, o.YearLabel)
	if o.SectionName != nil && *o.SectionName != "" {
		desc += fmt.Sprintf(", section %s", *o.SectionName)
	}
	return desc
}
