package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/college-admin-api/internal/models"
	"github.com/campuskit/college-admin-api/internal/service"
	appErrors "github.com/campuskit/college-admin-api/pkg/errors"
	"github.com/campuskit/college-admin-api/pkg/response"
)

type progressionServiceMock struct {
	result       *models.EnrollmentResult
	lastStudent  string
	lastSemester int
	enrollCalled bool
	firstCalled  bool
	promoted     bool
}

func (m *progressionServiceMock) EnrollForSemester(ctx context.Context, studentID string, semester int) *models.EnrollmentResult {
	m.enrollCalled = true
	m.lastStudent = studentID
	m.lastSemester = semester
	return m.result
}

func (m *progressionServiceMock) EnrollFirstYear(ctx context.Context, studentID string) *models.EnrollmentResult {
	m.firstCalled = true
	m.lastStudent = studentID
	return m.result
}

func (m *progressionServiceMock) Promote(ctx context.Context, studentID string) *models.EnrollmentResult {
	m.promoted = true
	m.lastStudent = studentID
	return m.result
}

type bulkServiceMock struct {
	report  *models.BulkProgressionReport
	err     error
	lastReq service.BulkProgressionRequest
	called  bool
}

func (m *bulkServiceMock) Run(ctx context.Context, req service.BulkProgressionRequest) (*models.BulkProgressionReport, error) {
	m.called = true
	m.lastReq = req
	return m.report, m.err
}

func newProgressionTestContext(t *testing.T, method, path string, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	var err error
	if body != "" {
		req, err = http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, err = http.NewRequest(method, path, nil)
	}
	require.NoError(t, err)
	c.Request = req
	return c, w
}

func TestProgressionHandlerEnrollForSemester(t *testing.T) {
	mockSvc := &progressionServiceMock{result: &models.EnrollmentResult{StudentID: "s1", Success: true, EnrollmentsCreated: 4}}
	handler := NewProgressionHandler(mockSvc, &bulkServiceMock{})

	c, w := newProgressionTestContext(t, http.MethodPost, "/students/s1/enrollments", `{"semester":3}`)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.EnrollForSemester(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.enrollCalled)
	assert.Equal(t, "s1", mockSvc.lastStudent)
	assert.Equal(t, 3, mockSvc.lastSemester)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
}

func TestProgressionHandlerEnrollInvalidBody(t *testing.T) {
	mockSvc := &progressionServiceMock{}
	handler := NewProgressionHandler(mockSvc, &bulkServiceMock{})

	c, w := newProgressionTestContext(t, http.MethodPost, "/students/s1/enrollments", `{"semester":0}`)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.EnrollForSemester(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.enrollCalled)
}

func TestProgressionHandlerEnrollFirstYear(t *testing.T) {
	mockSvc := &progressionServiceMock{result: &models.EnrollmentResult{StudentID: "s1", Success: true}}
	handler := NewProgressionHandler(mockSvc, &bulkServiceMock{})

	c, w := newProgressionTestContext(t, http.MethodPost, "/students/s1/enrollments/first-year", "")
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.EnrollFirstYear(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.firstCalled)
}

func TestProgressionHandlerPromote(t *testing.T) {
	mockSvc := &progressionServiceMock{result: &models.EnrollmentResult{StudentID: "s1", Success: true}}
	handler := NewProgressionHandler(mockSvc, &bulkServiceMock{})

	c, w := newProgressionTestContext(t, http.MethodPost, "/students/s1/promote", "")
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.Promote(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.promoted)
	assert.Equal(t, "s1", mockSvc.lastStudent)
}

func TestProgressionHandlerBulkRun(t *testing.T) {
	mockBulk := &bulkServiceMock{report: &models.BulkProgressionReport{Operation: models.BulkOperationPromote, Attempted: 2, Succeeded: 2}}
	handler := NewProgressionHandler(&progressionServiceMock{}, mockBulk)

	c, w := newProgressionTestContext(t, http.MethodPost, "/progression/bulk", `{"operation":"promote","student_ids":["s1","s2"]}`)

	handler.BulkRun(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockBulk.called)
	assert.Equal(t, models.BulkOperationPromote, mockBulk.lastReq.Operation)
	assert.Len(t, mockBulk.lastReq.StudentIDs, 2)
}

func TestProgressionHandlerBulkRunValidationError(t *testing.T) {
	mockBulk := &bulkServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "semester is required for bulk enroll")}
	handler := NewProgressionHandler(&progressionServiceMock{}, mockBulk)

	c, w := newProgressionTestContext(t, http.MethodPost, "/progression/bulk", `{"operation":"enroll","student_ids":["s1"]}`)

	handler.BulkRun(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
