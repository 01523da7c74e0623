package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/campuskit/college-admin-api/internal/models"
)

// OfferingRepository handles persistence for course offerings.
type OfferingRepository struct {
	db *sqlx.DB
}

// NewOfferingRepository constructs an OfferingRepository.
func NewOfferingRepository(db *sqlx.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

const offeringDetailColumns = `o.id, o.course_id, o.academic_year_id, o.semester, o.section_id, o.teacher_id, o.created_at, o.updated_at,
        c.code AS course_code, c.name AS course_name, c.type AS course_type, sec.name AS section_name, y.label AS year_label`

const offeringDetailJoins = `FROM course_offerings o
        JOIN courses c ON c.id = o.course_id
        JOIN academic_years y ON y.id = o.academic_year_id
        LEFT JOIN sections sec ON sec.id = o.section_id`

// ListForSemester finds the offerings matching the explicit query parameters.
// The section filter is applied only when q.SectionID is set; a sectionless
// caller sees offerings of every section.
func (r *OfferingRepository) ListForSemester(ctx context.Context, q models.OfferingQuery) ([]models.OfferingDetail, error) {
	if len(q.CourseIDs) == 0 {
		return nil, nil
	}

	args := []interface{}{q.AcademicYearID, q.Semester}
	placeholders := make([]string, len(q.CourseIDs))
	for i, id := range q.CourseIDs {
		placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, id)
	}

	query := fmt.Sprintf(`SELECT %s %s WHERE o.academic_year_id = $1 AND o.semester = $2 AND o.course_id IN (%s)`,
		offeringDetailColumns, offeringDetailJoins, strings.Join(placeholders, ","))

	if q.SectionID != nil {
		query += fmt.Sprintf(" AND o.section_id = $%d", len(args)+1)
		args = append(args, *q.SectionID)
	}
	query += " ORDER BY c.code ASC"

	var offerings []models.OfferingDetail
	if err := r.db.SelectContext(ctx, &offerings, query, args...); err != nil {
		return nil, fmt.Errorf("list offerings for semester: %w", err)
	}
	return offerings, nil
}

// ListByCoursesAndYear returns all offerings of the given courses under one
// academic year, across every semester. Feeds the catalog projection.
func (r *OfferingRepository) ListByCoursesAndYear(ctx context.Context, courseIDs []string, yearID string) ([]models.OfferingDetail, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}

	args := []interface{}{yearID}
	placeholders := make([]string, len(courseIDs))
	for i, id := range courseIDs {
		placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, id)
	}

	query := fmt.Sprintf(`SELECT %s %s WHERE o.academic_year_id = $1 AND o.course_id IN (%s) ORDER BY o.semester ASC, c.code ASC`,
		offeringDetailColumns, offeringDetailJoins, strings.Join(placeholders, ","))

	var offerings []models.OfferingDetail
	if err := r.db.SelectContext(ctx, &offerings, query, args...); err != nil {
		return nil, fmt.Errorf("list offerings by courses and year: %w", err)
	}
	return offerings, nil
}

// FindByID loads a single offering with detail columns.
func (r *OfferingRepository) FindByID(ctx context.Context, id string) (*models.OfferingDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE o.id = $1`, offeringDetailColumns, offeringDetailJoins)
	var offering models.OfferingDetail
	if err := r.db.GetContext(ctx, &offering, query, id); err != nil {
		return nil, err
	}
	return &offering, nil
}
