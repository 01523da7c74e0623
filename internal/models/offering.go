package models

import "time"

// CourseOffering is the schedulable unit: a course scheduled for a specific
// academic year and semester, optionally narrowed to a section and teacher.
type CourseOffering struct {
	ID             string    `db:"id" json:"id"`
	CourseID       string    `db:"course_id" json:"course_id"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	Semester       int       `db:"semester" json:"semester"`
	SectionID      *string   `db:"section_id" json:"section_id,omitempty"`
	TeacherID      *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// OfferingDetail enriches CourseOffering with course and section info for
// display and result descriptions.
type OfferingDetail struct {
	CourseOffering
	CourseCode  string  `db:"course_code" json:"course_code"`
	CourseName  string  `db:"course_name" json:"course_name"`
	CourseType  string  `db:"course_type" json:"course_type"`
	SectionName *string `db:"section_name" json:"section_name,omitempty"`
	YearLabel   string  `db:"year_label" json:"year_label"`
}

// OfferingQuery is the explicit parameter set for locating offerings.
// Optional narrowing criteria are pointers; nil means "do not filter".
type OfferingQuery struct {
	CourseIDs      []string
	Semester       int
	AcademicYearID string
	SectionID      *string
}
