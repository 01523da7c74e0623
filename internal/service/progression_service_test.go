package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuskit/college-admin-api/internal/models"
	appErrors "github.com/campuskit/college-admin-api/pkg/errors"
)

type mockProgressionStudents struct {
	students  map[string]models.StudentDetail
	updated   map[string]int
	findErr   error
	updateErr error
}

func (m *mockProgressionStudents) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProgressionStudents) UpdateSemester(ctx context.Context, id string, semester int) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if m.updated == nil {
		m.updated = make(map[string]int)
	}
	m.updated[id] = semester
	if s, ok := m.students[id]; ok {
		s.Semester = semester
		m.students[id] = s
	}
	return nil
}

type mockProgressionOfferings struct {
	offerings []models.OfferingDetail
	queries   []models.OfferingQuery
	err       error
}

func (m *mockProgressionOfferings) ListForSemester(ctx context.Context, q models.OfferingQuery) ([]models.OfferingDetail, error) {
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, m.err
	}
	courses := make(map[string]bool, len(q.CourseIDs))
	for _, id := range q.CourseIDs {
		courses[id] = true
	}
	var matched []models.OfferingDetail
	for _, o := range m.offerings {
		if o.AcademicYearID != q.AcademicYearID || o.Semester != q.Semester || !courses[o.CourseID] {
			continue
		}
		if q.SectionID != nil && (o.SectionID == nil || *o.SectionID != *q.SectionID) {
			continue
		}
		matched = append(matched, o)
	}
	return matched, nil
}

type mockProgressionEnrollments struct {
	rows      []models.StudentEnrollment
	created   []models.StudentEnrollment
	listErr   error
	createErr map[string]error
}

func (m *mockProgressionEnrollments) ListByStudentAndOfferings(ctx context.Context, studentID string, offeringIDs []string) ([]models.StudentEnrollment, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	wanted := make(map[string]bool, len(offeringIDs))
	for _, id := range offeringIDs {
		wanted[id] = true
	}
	var matched []models.StudentEnrollment
	for _, e := range m.rows {
		if e.StudentID == studentID && wanted[e.OfferingID] {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (m *mockProgressionEnrollments) Create(ctx context.Context, enrollment *models.StudentEnrollment) error {
	if err, ok := m.createErr[enrollment.OfferingID]; ok {
		return err
	}
	m.rows = append(m.rows, *enrollment)
	m.created = append(m.created, *enrollment)
	return nil
}

type mockCalendarResolver struct {
	years []models.AcademicYear
	err   error
}

func (m *mockCalendarResolver) ActiveYears(ctx context.Context, collegeID string) ([]models.AcademicYear, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.years, nil
}

type mockCurriculumResolver struct {
	courses []models.Course
	err     error
}

func (m *mockCurriculumResolver) CoreCourses(ctx context.Context, collegeID, departmentID string) ([]models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.courses, nil
}

func strPtr(s string) *string { return &s }

type progressionFixture struct {
	students    *mockProgressionStudents
	offerings   *mockProgressionOfferings
	enrollments *mockProgressionEnrollments
	calendar    *mockCalendarResolver
	curriculum  *mockCurriculumResolver
	svc         *ProgressionService
}

// newProgressionFixture seeds one CS student in semester 2 with two active
// years (2025-26 newest) and two core courses offered in 2025-26 only.
func newProgressionFixture() *progressionFixture {
	f := &progressionFixture{
		students: &mockProgressionStudents{students: map[string]models.StudentDetail{
			"s1": {Student: models.Student{ID: "s1", CollegeID: "col1", DepartmentID: strPtr("dept-cs"), SectionID: strPtr("sec-a"), Semester: 2}},
		}},
		offerings: &mockProgressionOfferings{offerings: []models.OfferingDetail{
			{CourseOffering: models.CourseOffering{ID: "off-1", CourseID: "crs-1", AcademicYearID: "y-2025", Semester: 2, SectionID: strPtr("sec-a")}, CourseCode: "CS201", CourseName: "Data Structures", SectionName: strPtr("A"), YearLabel: "2025-26"},
			{CourseOffering: models.CourseOffering{ID: "off-2", CourseID: "crs-2", AcademicYearID: "y-2025", Semester: 2, SectionID: strPtr("sec-a")}, CourseCode: "CS202", CourseName: "Discrete Mathematics", SectionName: strPtr("A"), YearLabel: "2025-26"},
		}},
		enrollments: &mockProgressionEnrollments{},
		calendar: &mockCalendarResolver{years: []models.AcademicYear{
			{ID: "y-2025", CollegeID: "col1", Label: "2025-26", IsActive: true},
			{ID: "y-2024", CollegeID: "col1", Label: "2024-25", IsActive: true},
		}},
		curriculum: &mockCurriculumResolver{courses: []models.Course{
			{ID: "crs-1", Code: "CS201", Type: models.CourseTypeCore},
			{ID: "crs-2", Code: "CS202", Type: models.CourseTypeCore},
		}},
	}
	f.svc = NewProgressionService(f.students, f.offerings, f.enrollments, f.calendar, f.curriculum, NewMetricsService(), zap.NewNop())
	return f
}

func TestProgressionEnrollForSemesterCreatesEnrollments(t *testing.T) {
	f := newProgressionFixture()

	result := f.svc.EnrollForSemester(context.Background(), "s1", 2)
	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.EnrollmentsCreated)
	assert.Equal(t, "y-2025", result.ChosenYearID)
	assert.Equal(t, "2025-26", result.ChosenYearLabel)
	assert.Contains(t, result.Messages, "enrolled in 2 course(s)")
	require.Len(t, f.enrollments.created, 2)
	assert.Equal(t, "y-2025", f.enrollments.created[0].AcademicYearID)
	assert.Equal(t, 1, f.enrollments.created[0].AttemptNumber)
	assert.Contains(t, result.EnrolledOfferings, "CS201 Data Structures (semester 2, 2025-26), section A")
}

func TestProgressionEnrollForSemesterIdempotent(t *testing.T) {
	f := newProgressionFixture()

	first := f.svc.EnrollForSemester(context.Background(), "s1", 2)
	require.True(t, first.Success)
	require.Equal(t, 2, first.EnrollmentsCreated)

	second := f.svc.EnrollForSemester(context.Background(), "s1", 2)
	require.NotNil(t, second)
	assert.True(t, second.Success)
	assert.Equal(t, 0, second.EnrollmentsCreated)
	assert.Contains(t, second.Messages, "already enrolled in 2 course(s)")
	assert.NotContains(t, second.Messages, "enrolled in 2 course(s)")
	assert.Len(t, f.enrollments.created, 2)
}

func TestProgressionEnrollForSemesterPartialDelta(t *testing.T) {
	f := newProgressionFixture()
	f.enrollments.rows = []models.StudentEnrollment{
		{ID: "e1", StudentID: "s1", OfferingID: "off-1", AcademicYearID: "y-2025", AttemptNumber: 1},
	}

	result := f.svc.EnrollForSemester(context.Background(), "s1", 2)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.EnrollmentsCreated)
	assert.Contains(t, result.Messages, "already enrolled in 1 course(s)")
	assert.Contains(t, result.Messages, "enrolled in 1 course(s)")
	require.Len(t, f.enrollments.created, 1)
	assert.Equal(t, "off-2", f.enrollments.created[0].OfferingID)
}

func TestProgressionYearFallbackOlderYearWins(t *testing.T) {
	f := newProgressionFixture()
	for i := range f.offerings.offerings {
		f.offerings.offerings[i].AcademicYearID = "y-2024"
		f.offerings.offerings[i].YearLabel = "2024-25"
	}

	result := f.svc.EnrollForSemester(context.Background(), "s1", 2)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.EnrollmentsCreated)
	assert.Equal(t, "y-2024", result.ChosenYearID)
	assert.Equal(t, "2024-25", result.ChosenYearLabel)
	for _, e := range f.enrollments.created {
		assert.Equal(t, "y-2024", e.AcademicYearID)
	}

	// Both years were probed, newest first.
	require.Len(t, f.offerings.queries, 2)
	assert.Equal(t, "y-2025", f.offerings.queries[0].AcademicYearID)
	assert.Equal(t, "y-2024", f.offerings.queries[1].AcademicYearID)
}

func TestProgressionNewestYearShadowsOlder(t *testing.T) {
	f := newProgressionFixture()
	// The old year also carries off-1, but the new year has data so it wins.
	f.offerings.offerings = append(f.offerings.offerings, models.OfferingDetail{
		CourseOffering: models.CourseOffering{ID: "off-old", CourseID: "crs-1", AcademicYearID: "y-2024", Semester: 2, SectionID: strPtr("sec-a")},
		CourseCode:     "CS201", CourseName: "Data Structures", SectionName: strPtr("A"), YearLabel: "2024-25",
	})

	result := f.svc.EnrollForSemester(context.Background(), "s1", 2)
	assert.Equal(t, "y-2025", result.ChosenYearID)
	assert.Equal(t, 2, result.EnrollmentsCreated)
	require.Len(t, f.offerings.queries, 1)
	for _, e := range f.enrollments.created {
		assert.NotEqual(t, "off-old", e.OfferingID)
	}
}

func TestProgressionSectionFilter(t *testing.T) {
	f := newProgressionFixture()
	f.offerings.offerings = append(f.offerings.offerings, models.OfferingDetail{
		CourseOffering: models.CourseOffering{ID: "off-b", CourseID: "crs-1", AcademicYearID: "y-2025", Semester: 2, SectionID: strPtr("sec-b")},
		CourseCode:     "CS201", CourseName: "Data Structures", SectionName: strPtr("B"), YearLabel: "2025-26",
	})

	result := f.svc.EnrollForSemester(context.Background(), "s1", 2)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.EnrollmentsCreated)
	for _, e := range f.enrollments.created {
		assert.NotEqual(t, "off-b", e.OfferingID)
	}
	require.NotEmpty(t, f.offerings.queries)
	require.NotNil(t, f.offerings.queries[0].SectionID)
	assert.Equal(t, "sec-a", *f.offerings.queries[0].SectionID)
}

func TestProgressionSectionlessStudentSeesAllSections(t *testing.T) {
	f := newProgressionFixture()
	student := f.students.students["s1"]
	student.SectionID = nil
	f.students.students["s1"] = student
	f.offerings.offerings = append(f.offerings.offerings, models.OfferingDetail{
		CourseOffering: models.CourseOffering{ID: "off-b", CourseID: "crs-1", AcademicYearID: "y-2025", Semester: 2, SectionID: strPtr("sec-b")},
		CourseCode:     "CS201", CourseName: "Data Structures", SectionName: strPtr("B"), YearLabel: "2025-26",
	})

	result := f.svc.EnrollForSemester(context.Background(), "s1", 2)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.EnrollmentsCreated)
	require.NotEmpty(t, f.offerings.queries)
	assert.Nil(t, f.offerings.queries[0].SectionID)
}

func TestProgressionEnrollFirstYear(t *testing.T) {
	f := newProgressionFixture()
	f.students.students["s2"] = models.StudentDetail{
		Student: models.Student{ID: "s2", CollegeID: "col1", DepartmentID: strPtr("dept-cs"), SectionID: strPtr("sec-a"), Semester: 1},
	}
	f.offerings.offerings = []models.OfferingDetail{
		{CourseOffering: models.CourseOffering{ID: "off-101", CourseID: "crs-1", AcademicYearID: "y-2025", Semester: 1, SectionID: strPtr("sec-a")}, CourseCode: "CS101", CourseName: "Programming Fundamentals", SectionName: strPtr("A"), YearLabel: "2025-26"},
	}

	result := f.svc.EnrollFirstYear(context.Background(), "s2")
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.EnrollmentsCreated)
	require.NotEmpty(t, f.offerings.queries)
	assert.Equal(t, 1, f.offerings.queries[0].Semester)
}

func TestProgressionEnrollInvalidSemester(t *testing.T) {
	f := newProgressionFixture()

	result := f.svc.EnrollForSemester(context.Background(), "s1", 0)
	assert.False(t, result.Success)
	assert.Equal(t, 0, result.EnrollmentsCreated)
	assert.Contains(t, result.Messages, "invalid semester 0")
}

func TestProgressionEnrollStudentNotFound(t *testing.T) {
	f := newProgressionFixture()

	result := f.svc.EnrollForSemester(context.Background(), "missing", 2)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Messages, "student not found")
}

func TestProgressionEnrollNoDepartment(t *testing.T) {
	f := newProgressionFixture()
	student := f.students.students["s1"]
	student.DepartmentID = nil
	f.students.students["s1"] = student

	result := f.svc.EnrollForSemester(context.Background(), "s1", 2)
	assert.False(t, result.Success)
	assert.Contains(t, result.Messages, "student has no department assigned")
	assert.Empty(t, f.offerings.queries)
}

func TestProgressionEnrollNoActiveYear(t *testing.T) {
	f := newProgressionFixture()
	f.calendar.years = nil

	result := f.svc.EnrollForSemester(context.Background(), "s1", 2)
	assert.False(t, result.Success)
	assert.Contains(t, result.Messages, "no active academic year for college")
	assert.Empty(t, f.enrollments.created)
}

func TestProgressionEnrollNoCoreCourses(t *testing.T) {
	f := newProgressionFixture()
	f.curriculum.courses = nil

	result := f.svc.EnrollForSemester(context.Background(), "s1", 2)
	assert.False(t, result.Success)
	assert.Contains(t, result.Messages, "no core courses defined for department")
	assert.Empty(t, f.offerings.queries)
}

func TestProgressionEnrollNoOfferingsInAnyYear(t *testing.T) {
	f := newProgressionFixture()
	f.offerings.offerings = nil

	result := f.svc.EnrollForSemester(context.Background(), "s1", 7)
	assert.False(t, result.Success)
	assert.Contains(t, result.Messages, "no course offerings found for semester 7")
	assert.Empty(t, result.ChosenYearID)
	// Every active year was probed before giving up.
	assert.Len(t, f.offerings.queries, 2)
}

func TestProgressionEnrollDuplicateRaceFoldsIntoExisting(t *testing.T) {
	f := newProgressionFixture()
	f.enrollments.createErr = map[string]error{"off-1": appErrors.ErrDuplicateEnrollment}

	result := f.svc.EnrollForSemester(context.Background(), "s1", 2)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.EnrollmentsCreated)
	assert.Contains(t, result.Messages, "already enrolled in 1 course(s)")
	assert.Contains(t, result.Messages, "enrolled in 1 course(s)")
}

func TestProgressionEnrollInsertFailureIsolated(t *testing.T) {
	f := newProgressionFixture()
	f.enrollments.createErr = map[string]error{"off-1": errors.New("connection reset")}

	result := f.svc.EnrollForSemester(context.Background(), "s1", 2)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.EnrollmentsCreated)
	assert.Contains(t, result.Messages, fmt.Sprintf("failed to enroll in %s: %v", "CS201", errors.New("connection reset")))
	require.Len(t, f.enrollments.created, 1)
	assert.Equal(t, "off-2", f.enrollments.created[0].OfferingID)
}

func TestProgressionPromoteAdvancesSemester(t *testing.T) {
	f := newProgressionFixture()
	f.offerings.offerings = []models.OfferingDetail{
		{CourseOffering: models.CourseOffering{ID: "off-3", CourseID: "crs-1", AcademicYearID: "y-2025", Semester: 3, SectionID: strPtr("sec-a")}, CourseCode: "CS301", CourseName: "Algorithms", SectionName: strPtr("A"), YearLabel: "2025-26"},
	}

	result := f.svc.Promote(context.Background(), "s1")
	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, 3, f.students.updated["s1"])
	assert.Equal(t, 1, result.EnrollmentsCreated)
	require.NotEmpty(t, result.Messages)
	assert.Equal(t, "student promoted to semester 3", result.Messages[0])
}

func TestProgressionPromoteWithoutOfferingsStillAdvances(t *testing.T) {
	f := newProgressionFixture()
	f.offerings.offerings = nil

	result := f.svc.Promote(context.Background(), "s1")
	assert.False(t, result.Success)
	assert.Equal(t, 0, result.EnrollmentsCreated)
	// The counter advance is not rolled back when enrollment finds nothing.
	assert.Equal(t, 3, f.students.updated["s1"])
	require.Len(t, result.Messages, 2)
	assert.Equal(t, "student promoted to semester 3", result.Messages[0])
	assert.Equal(t, "no course offerings found for semester 3", result.Messages[1])
}

func TestProgressionPromoteZeroSemesterTreatedAsFirst(t *testing.T) {
	f := newProgressionFixture()
	student := f.students.students["s1"]
	student.Semester = 0
	f.students.students["s1"] = student

	result := f.svc.Promote(context.Background(), "s1")
	assert.Equal(t, 2, f.students.updated["s1"])
	require.NotEmpty(t, result.Messages)
	assert.Equal(t, "student promoted to semester 2", result.Messages[0])
}

func TestProgressionPromoteStudentNotFound(t *testing.T) {
	f := newProgressionFixture()

	result := f.svc.Promote(context.Background(), "missing")
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Messages, "student not found")
	assert.Empty(t, f.students.updated)
}

func TestProgressionPromoteSemesterUpdateFailure(t *testing.T) {
	f := newProgressionFixture()
	f.students.updateErr = errors.New("write timeout")

	result := f.svc.Promote(context.Background(), "s1")
	assert.False(t, result.Success)
	assert.Empty(t, f.enrollments.created)
	require.Len(t, result.Messages, 1)
	assert.Contains(t, result.Messages[0], "failed to update semester")
}

func TestProgressionEnrollCalendarFailure(t *testing.T) {
	f := newProgressionFixture()
	f.calendar.err = errors.New("db down")

	result := f.svc.EnrollForSemester(context.Background(), "s1", 2)
	assert.False(t, result.Success)
	require.Len(t, result.Messages, 1)
	assert.Contains(t, result.Messages[0], "failed to resolve academic calendar")
}
