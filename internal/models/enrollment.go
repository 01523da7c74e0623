package models

import "time"

// StudentEnrollment links a student to a course offering. The pair
// (student_id, offering_id) is unique at the storage layer; that constraint,
// not the engine's pre-check, is the authoritative duplicate guard.
type StudentEnrollment struct {
	ID             string    `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	OfferingID     string    `db:"offering_id" json:"offering_id"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	AttemptNumber  int       `db:"attempt_number" json:"attempt_number"`
	EnrolledAt     time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// EnrollmentResult is the transient outcome of one progression operation for
// one student. Failures are reported inside the result, never thrown past the
// operation boundary.
type EnrollmentResult struct {
	StudentID          string   `json:"student_id"`
	Success            bool     `json:"success"`
	EnrollmentsCreated int      `json:"enrollments_created"`
	ChosenYearID       string   `json:"chosen_year_id,omitempty"`
	ChosenYearLabel    string   `json:"chosen_year_label,omitempty"`
	Messages           []string `json:"messages"`
	EnrolledOfferings  []string `json:"enrolled_offerings,omitempty"`
}

// AddMessage appends a human-readable message to the result.
func (r *EnrollmentResult) AddMessage(msg string) {
	r.Messages = append(r.Messages, msg)
}

// PrependMessage puts a message ahead of the ones already collected. Promotion
// uses this so the counter advance is always reported first.
func (r *EnrollmentResult) PrependMessage(msg string) {
	r.Messages = append([]string{msg}, r.Messages...)
}

// BulkOperation identifies the per-student operation a bulk run executes.
type BulkOperation string

// Supported bulk operations.
const (
	BulkOperationEnroll  BulkOperation = "enroll"
	BulkOperationPromote BulkOperation = "promote"
)

// BulkProgressionReport aggregates per-student results of a bulk run.
type BulkProgressionReport struct {
	Operation          BulkOperation      `json:"operation"`
	Attempted          int                `json:"attempted"`
	Succeeded          int                `json:"succeeded"`
	Failed             int                `json:"failed"`
	EnrollmentsCreated int                `json:"enrollments_created"`
	Results            []EnrollmentResult `json:"results"`
}
