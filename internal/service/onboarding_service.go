package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/athro-ai/athro-study-api/internal/dto"
	"github.com/athro-ai/athro-study-api/internal/models"
	appErrors "github.com/athro-ai/athro-study-api/pkg/errors"
)

type onboardingRepository interface {
	GetByUser(ctx context.Context, userID string) (*models.OnboardingProgress, error)
	Upsert(ctx context.Context, progress *models.OnboardingProgress) error
}

// OnboardingService tracks the setup wizard and seeds slot defaults when a
// student finishes without ever picking slots.
type OnboardingService struct {
	repo      onboardingRepository
	slots     studySlotRepository
	validator *validator.Validate
	logger    *zap.Logger
	cfg       OnboardingConfig
}

// OnboardingConfig carries the defaults seeded on completion.
type OnboardingConfig struct {
	DefaultSlotCount   int
	DefaultSlotMinutes int
	DefaultStartHour   int
}

// NewOnboardingService constructs the service.
func NewOnboardingService(repo onboardingRepository, slots studySlotRepository, validate *validator.Validate, logger *zap.Logger, cfg OnboardingConfig) *OnboardingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultSlotCount <= 0 {
		cfg.DefaultSlotCount = 2
	}
	if cfg.DefaultSlotMinutes <= 0 {
		cfg.DefaultSlotMinutes = 45
	}
	if cfg.DefaultStartHour <= 0 {
		cfg.DefaultStartHour = 16
	}
	return &OnboardingService{repo: repo, slots: slots, validator: validate, logger: logger, cfg: cfg}
}

// Get returns the user's wizard progress, or the initial state when the
// wizard was never started. The initial state is not persisted.
func (s *OnboardingService) Get(ctx context.Context, userID string) (*models.OnboardingProgress, error) {
	progress, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.OnboardingProgress{
				UserID:      userID,
				CurrentStep: models.StepSubjects,
			}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load onboarding progress")
	}
	return progress, nil
}

// Update advances or rewinds the wizard. Reaching the done step marks the
// record completed and seeds default weekday slots for users without any.
func (s *OnboardingService) Update(ctx context.Context, userID string, req dto.UpdateOnboardingRequest) (*models.OnboardingProgress, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid onboarding payload")
	}

	progress, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress.CurrentStep = req.CurrentStep
	if req.SubjectsDone != nil {
		progress.SubjectsDone = *req.SubjectsDone
	}
	if req.AvailabilityDone != nil {
		progress.AvailabilityDone = *req.AvailabilityDone
	}

	if req.CurrentStep == models.StepDone && !progress.Completed {
		progress.Completed = true
		now := time.Now().UTC()
		progress.CompletedAt = &now
		if err := s.seedDefaultSlots(ctx, userID); err != nil {
			s.logger.Warn("failed to seed default study slots", zap.String("user_id", userID), zap.Error(err))
		}
	}

	if err := s.repo.Upsert(ctx, progress); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store onboarding progress")
	}
	return progress, nil
}

func (s *OnboardingService) seedDefaultSlots(ctx context.Context, userID string) error {
	existing, err := s.slots.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	defaults := make([]models.PreferredStudySlot, 0, 5)
	for day := 1; day <= 5; day++ {
		defaults = append(defaults, models.PreferredStudySlot{
			DayOfWeek:           day,
			SlotCount:           s.cfg.DefaultSlotCount,
			SlotDurationMinutes: s.cfg.DefaultSlotMinutes,
			PreferredStartHour:  s.cfg.DefaultStartHour,
		})
	}
	return s.slots.ReplaceForUser(ctx, userID, defaults)
}
