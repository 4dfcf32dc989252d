package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athro-ai/athro-study-api/internal/dto"
	"github.com/athro-ai/athro-study-api/internal/models"
	appErrors "github.com/athro-ai/athro-study-api/pkg/errors"
	"github.com/athro-ai/athro-study-api/pkg/jobs"
	"github.com/athro-ai/athro-study-api/pkg/storage"
)

type mockExportPlans struct {
	plan     *models.StudyPlan
	sessions []models.StudyPlanSession
}

func (m *mockExportPlans) GetActiveByUser(ctx context.Context, userID string) (*models.StudyPlan, error) {
	if m.plan == nil {
		return nil, sql.ErrNoRows
	}
	return m.plan, nil
}

func (m *mockExportPlans) ListSessionsByPlan(ctx context.Context, planID string) ([]models.StudyPlanSession, error) {
	return m.sessions, nil
}

// syncQueue runs each job inline against the attached handler.
type syncQueue struct {
	handler jobs.Handler
	jobs    []jobs.Job
}

func (q *syncQueue) Enqueue(job jobs.Job) error {
	q.jobs = append(q.jobs, job)
	if q.handler != nil {
		_ = q.handler(context.Background(), job)
	}
	return nil
}

func newTestExport(t *testing.T, plans *mockExportPlans) (*ExportService, *syncQueue) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-signing-secret", time.Hour)
	svc := NewExportService(plans, store, signer, nil, nil, ExportConfig{APIPrefix: "/api/v1", Enabled: true})
	queue := &syncQueue{handler: svc.Process}
	svc.SetQueue(queue)
	return svc, queue
}

func weeklySessions() []models.StudyPlanSession {
	return []models.StudyPlanSession{
		{ID: "s1", PlanID: "plan-1", Subject: "Maths", Confidence: models.ConfidenceLow, DayOfWeek: 1, DurationMinutes: 45},
		{ID: "s2", PlanID: "plan-1", Subject: "English", Confidence: models.ConfidenceHigh, DayOfWeek: 3, DurationMinutes: 45},
	}
}

func TestExportCSVRoundTrip(t *testing.T) {
	plans := &mockExportPlans{plan: &models.StudyPlan{ID: "plan-1", UserID: "user-1"}, sessions: weeklySessions()}
	svc, queue := newTestExport(t, plans)

	created, err := svc.CreateJob(context.Background(), "user-1", dto.CreateExportRequest{Format: "csv"})
	require.NoError(t, err)
	require.Len(t, queue.jobs, 1)

	job, err := svc.GetJob(context.Background(), "user-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, ExportStatusDone, job.Status)
	assert.Contains(t, job.DownloadURL, "/api/v1/exports/download?token=")
	require.NotNil(t, job.ExpiresAt)

	token := strings.TrimPrefix(job.DownloadURL, "/api/v1/exports/download?token=")
	file, format, err := svc.ResolveDownload(token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "csv", format)

	payload, err := io.ReadAll(file)
	require.NoError(t, err)
	content := string(payload)
	assert.Contains(t, content, "Day,Subject,Confidence,Duration (minutes)")
	assert.Contains(t, content, "Monday,Maths,low,45")
	assert.Contains(t, content, "Wednesday,English,high,45")
}

func TestExportPDFProducesFile(t *testing.T) {
	plans := &mockExportPlans{plan: &models.StudyPlan{ID: "plan-1", UserID: "user-1"}, sessions: weeklySessions()}
	svc, _ := newTestExport(t, plans)

	created, err := svc.CreateJob(context.Background(), "user-1", dto.CreateExportRequest{Format: "pdf"})
	require.NoError(t, err)

	job, err := svc.GetJob(context.Background(), "user-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, ExportStatusDone, job.Status)
}

func TestExportFailsWithoutActivePlan(t *testing.T) {
	svc, _ := newTestExport(t, &mockExportPlans{})

	// Enqueue succeeds; the failure shows up on the job record.
	created, err := svc.CreateJob(context.Background(), "user-1", dto.CreateExportRequest{Format: "csv"})
	require.NoError(t, err)

	job, err := svc.GetJob(context.Background(), "user-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, ExportStatusFailed, job.Status)
	assert.Contains(t, job.Error, "no active plan")
}

func TestExportJobScopedToOwner(t *testing.T) {
	plans := &mockExportPlans{plan: &models.StudyPlan{ID: "plan-1", UserID: "user-1"}, sessions: weeklySessions()}
	svc, _ := newTestExport(t, plans)

	created, err := svc.CreateJob(context.Background(), "user-1", dto.CreateExportRequest{Format: "csv"})
	require.NoError(t, err)

	_, err = svc.GetJob(context.Background(), "user-2", created.ID)
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc, _ := newTestExport(t, &mockExportPlans{})

	_, err := svc.CreateJob(context.Background(), "user-1", dto.CreateExportRequest{Format: "xlsx"})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestExportDisabled(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-signing-secret", time.Hour)
	svc := NewExportService(&mockExportPlans{}, store, signer, nil, nil, ExportConfig{Enabled: false})

	_, err = svc.CreateJob(context.Background(), "user-1", dto.CreateExportRequest{Format: "csv"})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestResolveDownloadRejectsBadToken(t *testing.T) {
	svc, _ := newTestExport(t, &mockExportPlans{})

	_, _, err := svc.ResolveDownload("not-a-real-token")
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestCleanupForgetsExpiredExports(t *testing.T) {
	plans := &mockExportPlans{plan: &models.StudyPlan{ID: "plan-1", UserID: "user-1"}, sessions: weeklySessions()}
	svc, _ := newTestExport(t, plans)

	created, err := svc.CreateJob(context.Background(), "user-1", dto.CreateExportRequest{Format: "csv"})
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	removed, err := svc.Cleanup(time.Millisecond)
	require.NoError(t, err)
	require.NotEmpty(t, removed)

	job, err := svc.GetJob(context.Background(), "user-1", created.ID)
	assert.Error(t, err)
	assert.Nil(t, job)
}
