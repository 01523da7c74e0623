package models

import "time"

// AcademicYear models one academic session of a college (e.g. "2025-26").
// A college may have more than one active year at a time; callers resolving
// the calendar receive them newest-label-first.
type AcademicYear struct {
	ID        string    `db:"id" json:"id"`
	CollegeID string    `db:"college_id" json:"college_id"`
	Label     string    `db:"label" json:"label"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AcademicYearFilter defines filters supported by year list endpoints.
type AcademicYearFilter struct {
	CollegeID string
	IsActive  *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
