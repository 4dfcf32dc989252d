package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/athro-ai/athro-study-api/internal/models"
	appErrors "github.com/athro-ai/athro-study-api/pkg/errors"
)

type analyticsRepository interface {
	SubjectStatsByUser(ctx context.Context, userID string) ([]models.SubjectStat, error)
	ListStudentOverviews(ctx context.Context) ([]models.StudentOverview, error)
}

// AnalyticsService serves the study summary and the staff dashboard, with a
// Redis cache in front of the SQL aggregates.
type AnalyticsService struct {
	repo     analyticsRepository
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	cacheTTL time.Duration
	enabled  bool
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(repo analyticsRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cacheTTL time.Duration, enabled bool) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &AnalyticsService{repo: repo, cache: cache, metrics: metrics, logger: logger, cacheTTL: cacheTTL, enabled: enabled}
}

// Summary builds the per-student study summary.
func (s *AnalyticsService) Summary(ctx context.Context, userID string) (*models.StudySummary, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "analytics is disabled")
	}

	key := "athro:analytics:summary:" + userID
	var cached models.StudySummary
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	stats, err := s.repo.SubjectStatsByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate study stats")
	}

	summary := &models.StudySummary{
		UserID:                 userID,
		PerSubject:             stats,
		ConfidenceDistribution: make(map[string]int),
		GeneratedAt:            time.Now().UTC(),
	}
	for _, stat := range stats {
		summary.TotalSessions += stat.Sessions
		summary.TotalMinutes += stat.Minutes
		summary.ConfidenceDistribution[string(stat.ConfidenceLabel)]++
	}

	if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache study summary", zap.String("user_id", userID), zap.Error(err))
	}
	return summary, nil
}

// Students returns the staff dashboard listing.
func (s *AnalyticsService) Students(ctx context.Context) ([]models.StudentOverview, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "analytics is disabled")
	}

	const key = "athro:analytics:students"
	var cached []models.StudentOverview
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	overviews, err := s.repo.ListStudentOverviews(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	if err := s.cache.Set(ctx, key, overviews, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache student overviews", zap.Error(err))
	}
	return overviews, nil
}

// System returns a runtime metrics snapshot for the staff dashboard.
func (s *AnalyticsService) System(ctx context.Context) models.SystemMetrics {
	return s.metrics.Snapshot()
}
