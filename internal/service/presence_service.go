package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/athro-ai/athro-study-api/internal/dto"
	appErrors "github.com/athro-ai/athro-study-api/pkg/errors"
)

type presenceStore interface {
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	CountByPattern(ctx context.Context, pattern string) (int, error)
}

// PresenceService tracks open tabs per user via short-lived Redis keys. The
// multiple-tabs flag is advisory; nothing is enforced server-side.
type PresenceService struct {
	store     presenceStore
	validator *validator.Validate
	logger    *zap.Logger
	ttl       time.Duration
}

// NewPresenceService constructs the service.
func NewPresenceService(store presenceStore, validate *validator.Validate, logger *zap.Logger, ttl time.Duration) *PresenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 45 * time.Second
	}
	return &PresenceService{store: store, validator: validate, logger: logger, ttl: ttl}
}

// Heartbeat refreshes the caller's tab key and counts live sibling tabs.
func (s *PresenceService) Heartbeat(ctx context.Context, userID string, req dto.HeartbeatRequest) (*dto.HeartbeatResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid heartbeat payload")
	}

	key := "athro:presence:" + userID + ":" + req.TabID
	if err := s.store.SetWithTTL(ctx, key, "1", s.ttl); err != nil {
		s.logger.Warn("failed to store presence heartbeat", zap.String("user_id", userID), zap.Error(err))
	}

	count, err := s.store.CountByPattern(ctx, "athro:presence:"+userID+":*")
	if err != nil {
		s.logger.Warn("failed to count presence tabs", zap.String("user_id", userID), zap.Error(err))
		count = 1
	}
	if count < 1 {
		count = 1
	}

	return &dto.HeartbeatResponse{
		MultipleTabs: count > 1,
		ActiveTabs:   count,
	}, nil
}
