package models

import "time"

// CourseType classifies a course within the curriculum.
type CourseType string

// Possible course types. Only core courses participate in auto-enrollment.
const (
	CourseTypeCore         CourseType = "CORE"
	CourseTypeDeptElective CourseType = "DEPT_ELECTIVE"
	CourseTypeOpenElective CourseType = "OPEN_ELECTIVE"
)

// Course is a catalog entry owned by a department.
type Course struct {
	ID           string     `db:"id" json:"id"`
	CollegeID    string     `db:"college_id" json:"college_id"`
	DepartmentID string     `db:"department_id" json:"department_id"`
	Code         string     `db:"code" json:"code"`
	Name         string     `db:"name" json:"name"`
	Type         CourseType `db:"type" json:"type"`
	Credits      int        `db:"credits" json:"credits"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// CourseFilter defines filter criteria for catalog lookups.
type CourseFilter struct {
	CollegeID    string
	DepartmentID string
	Type         CourseType
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
