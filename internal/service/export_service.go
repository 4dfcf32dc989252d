package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/athro-ai/athro-study-api/internal/dto"
	"github.com/athro-ai/athro-study-api/internal/models"
	appErrors "github.com/athro-ai/athro-study-api/pkg/errors"
	"github.com/athro-ai/athro-study-api/pkg/export"
	"github.com/athro-ai/athro-study-api/pkg/jobs"
	"github.com/athro-ai/athro-study-api/pkg/storage"
)

type exportPlanReader interface {
	GetActiveByUser(ctx context.Context, userID string) (*models.StudyPlan, error)
	ListSessionsByPlan(ctx context.Context, planID string) ([]models.StudyPlanSession, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// Export job lifecycle states.
const (
	ExportStatusQueued     = "queued"
	ExportStatusProcessing = "processing"
	ExportStatusDone       = "done"
	ExportStatusFailed     = "failed"
)

type exportJob struct {
	ID          string
	UserID      string
	Format      string
	Status      string
	RelPath     string
	Token       string
	DownloadURL string
	ExpiresAt   *time.Time
	Error       string
	CreatedAt   time.Time
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	Enabled   bool
}

// ExportService renders the user's active timetable to CSV or PDF on a
// background queue and hands out signed download URLs.
type ExportService struct {
	plans     exportPlanReader
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	queue     jobEnqueuer
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig

	mu      sync.RWMutex
	records map[string]*exportJob
}

// NewExportService constructs an ExportService. The queue is attached later
// via SetQueue because the queue handler needs the service.
func NewExportService(plans exportPlanReader, store fileStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger, cfg ExportConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &ExportService{
		plans:     plans,
		storage:   store,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		signer:    signer,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		records:   make(map[string]*exportJob),
	}
}

// SetQueue attaches the worker queue that consumes export jobs.
func (s *ExportService) SetQueue(queue jobEnqueuer) {
	s.queue = queue
}

// CreateJob queues a new export for the user's active plan.
func (s *ExportService) CreateJob(ctx context.Context, userID string, req dto.CreateExportRequest) (*dto.ExportJobResponse, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "exports are disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "export queue unavailable")
	}

	record := &exportJob{
		ID:        uuid.NewString(),
		UserID:    userID,
		Format:    req.Format,
		Status:    ExportStatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.records[record.ID] = record
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: record.ID, Type: "timetable_export", Payload: record.ID}); err != nil {
		s.mu.Lock()
		record.Status = ExportStatusFailed
		record.Error = "failed to enqueue"
		s.mu.Unlock()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}

	return s.toResponse(record), nil
}

// GetJob reports the state of an export job scoped to its owner.
func (s *ExportService) GetJob(ctx context.Context, userID, id string) (*dto.ExportJobResponse, error) {
	s.mu.RLock()
	record, ok := s.records[id]
	s.mu.RUnlock()
	if !ok || record.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return s.toResponse(record), nil
}

// Process is the queue handler: it renders and stores one export.
func (s *ExportService) Process(ctx context.Context, job jobs.Job) error {
	jobID, _ := job.Payload.(string)
	s.mu.Lock()
	record, ok := s.records[jobID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown export job %s", jobID)
	}
	record.Status = ExportStatusProcessing
	s.mu.Unlock()

	relPath, token, expiresAt, err := s.render(ctx, record)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		record.Status = ExportStatusFailed
		record.Error = err.Error()
		return err
	}
	record.Status = ExportStatusDone
	record.RelPath = relPath
	record.Token = token
	record.ExpiresAt = &expiresAt
	record.DownloadURL = fmt.Sprintf("%s/exports/download?token=%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)
	return nil
}

func (s *ExportService) render(ctx context.Context, record *exportJob) (relPath, token string, expiresAt time.Time, err error) {
	dataset, title, err := s.buildDataset(ctx, record.UserID)
	if err != nil {
		return "", "", time.Time{}, err
	}

	var payload []byte
	switch record.Format {
	case "csv":
		payload, err = s.csv.Render(dataset)
	case "pdf":
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", record.Format)
	}
	if err != nil {
		return "", "", time.Time{}, err
	}

	filename := fmt.Sprintf("timetable_%s_%s.%s", record.UserID, time.Now().UTC().Format("20060102_150405"), record.Format)
	relPath, err = s.storage.Save(filename, payload)
	if err != nil {
		return "", "", time.Time{}, err
	}

	token, expiresAt, err = s.signer.Generate(record.ID, relPath)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return relPath, token, expiresAt, nil
}

func (s *ExportService) buildDataset(ctx context.Context, userID string) (export.Dataset, string, error) {
	plan, err := s.plans.GetActiveByUser(ctx, userID)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("no active plan to export: %w", err)
	}
	sessions, err := s.plans.ListSessionsByPlan(ctx, plan.ID)
	if err != nil {
		return export.Dataset{}, "", err
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].DayOfWeek == sessions[j].DayOfWeek {
			return sessions[i].Subject < sessions[j].Subject
		}
		return sessions[i].DayOfWeek < sessions[j].DayOfWeek
	})

	rows := make([]map[string]string, 0, len(sessions))
	for _, session := range sessions {
		rows = append(rows, map[string]string{
			"Day":                time.Weekday(session.DayOfWeek).String(),
			"Subject":            session.Subject,
			"Confidence":         string(session.Confidence),
			"Duration (minutes)": fmt.Sprintf("%d", session.DurationMinutes),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Day", "Subject", "Confidence", "Duration (minutes)"},
		Rows:    rows,
	}
	return dataset, "Weekly Study Timetable", nil
}

// ResolveDownload validates a signed token and opens the referenced file.
func (s *ExportService) ResolveDownload(token string) (*os.File, string, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	s.mu.RLock()
	record, ok := s.records[jobID]
	s.mu.RUnlock()
	if !ok || record.Status != ExportStatusDone {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file missing")
	}
	return file, record.Format, nil
}

// Cleanup removes stored files older than ttl and forgets finished records
// whose files are gone. Invoked on a cron schedule.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	removed, err := s.storage.CleanupOlderThan(ttl)
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		gone := make(map[string]bool, len(removed))
		for _, path := range removed {
			gone[path] = true
		}
		s.mu.Lock()
		for id, record := range s.records {
			if record.RelPath != "" && gone[record.RelPath] {
				delete(s.records, id)
			}
		}
		s.mu.Unlock()
	}
	return removed, nil
}

func (s *ExportService) toResponse(record *exportJob) *dto.ExportJobResponse {
	return &dto.ExportJobResponse{
		ID:          record.ID,
		Format:      record.Format,
		Status:      record.Status,
		DownloadURL: record.DownloadURL,
		ExpiresAt:   record.ExpiresAt,
		Error:       record.Error,
		CreatedAt:   record.CreatedAt,
	}
}
