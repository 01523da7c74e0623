package models

import "time"

// Student represents a learner admitted to a college. Semester starts at 1 and
// only ever moves forward via promotion.
type Student struct {
	ID           string    `db:"id" json:"id"`
	CollegeID    string    `db:"college_id" json:"college_id"`
	DepartmentID *string   `db:"department_id" json:"department_id,omitempty"`
	SectionID    *string   `db:"section_id" json:"section_id,omitempty"`
	RollNumber   string    `db:"roll_number" json:"roll_number"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	Semester     int       `db:"semester" json:"semester"`
	BatchYear    int       `db:"batch_year" json:"batch_year"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail joins a student with department and section names.
type StudentDetail struct {
	Student
	DepartmentName *string `db:"department_name" json:"department_name,omitempty"`
	SectionName    *string `db:"section_name" json:"section_name,omitempty"`
	CollegeName    string  `db:"college_name" json:"college_name"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	CollegeID    string
	DepartmentID string
	SectionID    string
	Semester     *int
	BatchYear    *int
	Search       string
	Active       *bool
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
