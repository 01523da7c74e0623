package service

import (
	"context"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuskit/college-admin-api/internal/models"
	appErrors "github.com/campuskit/college-admin-api/pkg/errors"
	"github.com/campuskit/college-admin-api/pkg/jobs"
)

type mockProgressionRunner struct {
	mu        sync.Mutex
	enrolled  []string
	promoted  []string
	failIDs   map[string]bool
	createdBy map[string]int
}

func (m *mockProgressionRunner) result(studentID string) *models.EnrollmentResult {
	result := &models.EnrollmentResult{StudentID: studentID, Messages: []string{}}
	if m.failIDs[studentID] {
		result.AddMessage("student not found")
		return result
	}
	result.Success = true
	result.EnrollmentsCreated = m.createdBy[studentID]
	return result
}

func (m *mockProgressionRunner) EnrollForSemester(ctx context.Context, studentID string, semester int) *models.EnrollmentResult {
	m.mu.Lock()
	m.enrolled = append(m.enrolled, studentID)
	m.mu.Unlock()
	return m.result(studentID)
}

func (m *mockProgressionRunner) Promote(ctx context.Context, studentID string) *models.EnrollmentResult {
	m.mu.Lock()
	m.promoted = append(m.promoted, studentID)
	m.mu.Unlock()
	return m.result(studentID)
}

func newBulkService(runner *mockProgressionRunner) *BulkProgressionService {
	pool := jobs.NewPool(jobs.PoolConfig{Workers: 4, Logger: zap.NewNop()})
	return NewBulkProgressionService(runner, pool, validator.New(), zap.NewNop())
}

func TestBulkProgressionEnroll(t *testing.T) {
	runner := &mockProgressionRunner{createdBy: map[string]int{"s1": 3, "s2": 2}}
	svc := newBulkService(runner)

	report, err := svc.Run(context.Background(), BulkProgressionRequest{
		Operation:  models.BulkOperationEnroll,
		StudentIDs: []string{"s1", "s2"},
		Semester:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Attempted)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 5, report.EnrollmentsCreated)
	require.Len(t, report.Results, 2)
	assert.ElementsMatch(t, []string{"s1", "s2"}, runner.enrolled)
	assert.Empty(t, runner.promoted)
}

func TestBulkProgressionPromoteFailureIsolation(t *testing.T) {
	runner := &mockProgressionRunner{
		failIDs:   map[string]bool{"s2": true},
		createdBy: map[string]int{"s1": 4, "s3": 4},
	}
	svc := newBulkService(runner)

	report, err := svc.Run(context.Background(), BulkProgressionRequest{
		Operation:  models.BulkOperationPromote,
		StudentIDs: []string{"s1", "s2", "s3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 8, report.EnrollmentsCreated)
	// One student's failure never aborts the rest of the batch.
	assert.ElementsMatch(t, []string{"s1", "s2", "s3"}, runner.promoted)

	// Report order is deterministic regardless of worker scheduling.
	require.Len(t, report.Results, 3)
	assert.Equal(t, "s1", report.Results[0].StudentID)
	assert.Equal(t, "s2", report.Results[1].StudentID)
	assert.Equal(t, "s3", report.Results[2].StudentID)
	assert.False(t, report.Results[1].Success)
	assert.Contains(t, report.Results[1].Messages, "student not found")
}

func TestBulkProgressionDeduplicatesStudents(t *testing.T) {
	runner := &mockProgressionRunner{createdBy: map[string]int{"s1": 2}}
	svc := newBulkService(runner)

	report, err := svc.Run(context.Background(), BulkProgressionRequest{
		Operation:  models.BulkOperationEnroll,
		StudentIDs: []string{"s1", "s1", "s1"},
		Semester:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Attempted)
	assert.Len(t, runner.enrolled, 1)
	assert.Equal(t, 2, report.EnrollmentsCreated)
}

func TestBulkProgressionValidation(t *testing.T) {
	svc := newBulkService(&mockProgressionRunner{})

	_, err := svc.Run(context.Background(), BulkProgressionRequest{Operation: "purge", StudentIDs: []string{"s1"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Run(context.Background(), BulkProgressionRequest{Operation: models.BulkOperationEnroll, StudentIDs: []string{"s1"}})
	require.Error(t, err)
	assert.Equal(t, "semester is required for bulk enroll", appErrors.FromError(err).Message)

	_, err = svc.Run(context.Background(), BulkProgressionRequest{Operation: models.BulkOperationPromote})
	require.Error(t, err)
}
