package models

// SemesterOfferings groups one semester's offerings for the catalog view.
type SemesterOfferings struct {
	Semester  int              `json:"semester"`
	Offerings []OfferingDetail `json:"offerings"`
}

// DepartmentCatalog is the read-only projection of a department's core
// offerings grouped by semester, ascending.
type DepartmentCatalog struct {
	CollegeID    string              `json:"college_id"`
	DepartmentID string              `json:"department_id"`
	YearID       string              `json:"year_id"`
	YearLabel    string              `json:"year_label"`
	Semesters    []SemesterOfferings `json:"semesters"`
}
