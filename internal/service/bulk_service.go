package service

import (
	"context"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/college-admin-api/internal/models"
	appErrors "github.com/campuskit/college-admin-api/pkg/errors"
	"github.com/campuskit/college-admin-api/pkg/jobs"
)

type progressionRunner interface {
	EnrollForSemester(ctx context.Context, studentID string, semester int) *models.EnrollmentResult
	Promote(ctx context.Context, studentID string) *models.EnrollmentResult
}

// BulkProgressionRequest describes a batch run over many students.
type BulkProgressionRequest struct {
	Operation  models.BulkOperation `json:"operation" validate:"required,oneof=enroll promote"`
	StudentIDs []string             `json:"student_ids" validate:"required,min=1,dive,required"`
	Semester   int                  `json:"semester,omitempty"`
}

// BulkProgressionService runs per-student progression operations concurrently
// and aggregates their results. Students are independent: one failure never
// aborts the rest of the batch, and there is no shared transaction.
type BulkProgressionService struct {
	progression progressionRunner
	pool        *jobs.Pool
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewBulkProgressionService constructs BulkProgressionService.
func NewBulkProgressionService(progression progressionRunner, pool *jobs.Pool, validate *validator.Validate, logger *zap.Logger) *BulkProgressionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkProgressionService{progression: progression, pool: pool, validator: validate, logger: logger}
}

// Run executes the batch and returns the aggregate report. Duplicate student
// IDs are collapsed before dispatch so a student is processed at most once
// per run.
func (s *BulkProgressionService) Run(ctx context.Context, req BulkProgressionRequest) (*models.BulkProgressionReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk progression payload")
	}
	if req.Operation == models.BulkOperationEnroll && req.Semester < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester is required for bulk enroll")
	}

	studentIDs := dedupe(req.StudentIDs)
	tasks := make([]jobs.Task, len(studentIDs))
	for i, id := range studentIDs {
		tasks[i] = jobs.Task{Key: id}
	}

	var mu sync.Mutex
	results := make(map[string]*models.EnrollmentResult, len(studentIDs))
	errs := s.pool.Run(ctx, tasks, func(taskCtx context.Context, task jobs.Task) error {
		var result *models.EnrollmentResult
		switch req.Operation {
		case models.BulkOperationPromote:
			result = s.progression.Promote(taskCtx, task.Key)
		default:
			result = s.progression.EnrollForSemester(taskCtx, task.Key, req.Semester)
		}
		mu.Lock()
		results[task.Key] = result
		mu.Unlock()
		return nil
	})

	report := &models.BulkProgressionReport{
		Operation: req.Operation,
		Attempted: len(studentIDs),
	}

	// Deterministic report order regardless of worker scheduling.
	sorted := make([]string, len(studentIDs))
	copy(sorted, studentIDs)
	sort.Strings(sorted)

	for _, id := range sorted {
		result, ok := results[id]
		if !ok {
			// Only possible when the context was cancelled before dispatch.
			result = &models.EnrollmentResult{StudentID: id, Messages: []string{"operation not executed"}}
			if err := errs[id]; err != nil {
				result.Messages = []string{err.Error()}
			}
		}
		report.Results = append(report.Results, *result)
		if result.Success {
			report.Succeeded++
		} else {
			report.Failed++
		}
		report.EnrollmentsCreated += result.EnrollmentsCreated
	}

	s.logger.Sugar().Infow("bulk progression finished",
		"operation", req.Operation,
		"attempted", report.Attempted,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"enrollments_created", report.EnrollmentsCreated)

	return report, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
