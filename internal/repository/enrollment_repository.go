package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campuskit/college-admin-api/internal/models"
	appErrors "github.com/campuskit/college-admin-api/pkg/errors"
)

const pqUniqueViolation = "23505"

// EnrollmentRepository handles persistence of student enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListByStudentAndOfferings returns the student's existing enrollments among
// the candidate offerings.
func (r *EnrollmentRepository) ListByStudentAndOfferings(ctx context.Context, studentID string, offeringIDs []string) ([]models.StudentEnrollment, error) {
	if len(offeringIDs) == 0 {
		return nil, nil
	}

	args := []interface{}{studentID}
	placeholders := make([]string, len(offeringIDs))
	for i, id := range offeringIDs {
		placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, id)
	}

	query := fmt.Sprintf(`SELECT id, student_id, offering_id, academic_year_id, attempt_number, enrolled_at
        FROM student_enrollments WHERE student_id = $1 AND offering_id IN (%s)`, strings.Join(placeholders, ","))

	var enrollments []models.StudentEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByStudent returns every enrollment of a student.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.StudentEnrollment, error) {
	const query = `SELECT id, student_id, offering_id, academic_year_id, attempt_number, enrolled_at
        FROM student_enrollments WHERE student_id = $1 ORDER BY enrolled_at DESC`
	var enrollments []models.StudentEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// Create persists a new enrollment row. A concurrent writer may win the race
// on the same (student, offering) pair; the unique-violation from the store is
// translated to appErrors.ErrDuplicateEnrollment so callers can degrade
// gracefully.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.StudentEnrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.AttemptNumber <= 0 {
		enrollment.AttemptNumber = 1
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}

	const query = `INSERT INTO student_enrollments (id, student_id, offering_id, academic_year_id, attempt_number, enrolled_at)
        VALUES (:id, :student_id, :offering_id, :academic_year_id, :attempt_number, :enrolled_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return appErrors.ErrDuplicateEnrollment
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// CountByOffering returns how many students are enrolled in an offering.
func (r *EnrollmentRepository) CountByOffering(ctx context.Context, offeringID string) (int, error) {
	const query = `SELECT COUNT(*) FROM student_enrollments WHERE offering_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, offeringID); err != nil {
		return 0, fmt.Errorf("count offering enrollments: %w", err)
	}
	return count, nil
}
