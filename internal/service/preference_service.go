package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/athro-ai/athro-study-api/internal/dto"
	"github.com/athro-ai/athro-study-api/internal/models"
	appErrors "github.com/athro-ai/athro-study-api/pkg/errors"
)

type subjectPreferenceRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.SubjectPreference, error)
	ReplaceForUser(ctx context.Context, userID string, prefs []models.SubjectPreference) error
}

type studySlotRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.PreferredStudySlot, error)
	ReplaceForUser(ctx context.Context, userID string, slots []models.PreferredStudySlot) error
}

// PreferenceService manages subject confidence ratings and weekly slot
// preferences.
type PreferenceService struct {
	subjects  subjectPreferenceRepository
	slots     studySlotRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       PreferenceConfig
}

// PreferenceConfig carries the slot defaults applied when availability
// windows are normalised.
type PreferenceConfig struct {
	DefaultSlotCount   int
	DefaultSlotMinutes int
	MaxSubjects        int
}

// NewPreferenceService constructs the service.
func NewPreferenceService(subjects subjectPreferenceRepository, slots studySlotRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg PreferenceConfig) *PreferenceService {
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
	if cfg.MaxSubjects <= 0 {
		cfg.MaxSubjects = 15
	}
	return &PreferenceService{subjects: subjects, slots: slots, cache: cache, validator: validate, logger: logger, cfg: cfg}
}

// Subjects returns the user's stored subject preferences.
func (s *PreferenceService) Subjects(ctx context.Context, userID string) ([]models.SubjectPreference, error) {
	prefs, err := s.subjects.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject preferences")
	}
	return prefs, nil
}

// PutSubjects replaces the user's full subject set.
func (s *PreferenceService) PutSubjects(ctx context.Context, userID string, req dto.PutSubjectPreferencesRequest) ([]models.SubjectPreference, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject preferences payload")
	}
	if len(req.Subjects) > s.cfg.MaxSubjects {
		return nil, appErrors.Clone(appErrors.ErrValidation, "too many subjects")
	}

	normalized, err := normalizeSubjects(req.Subjects)
	if err != nil {
		return nil, err
	}

	prefs := make([]models.SubjectPreference, 0, len(normalized))
	for i, sub := range normalized {
		prefs = append(prefs, models.SubjectPreference{
			Subject:         sub.Subject,
			ConfidenceLabel: sub.Label,
			ConfidenceLevel: req.Subjects[i].Level,
		})
	}

	if err := s.subjects.ReplaceForUser(ctx, userID, prefs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store subject preferences")
	}
	s.invalidateAnalytics(ctx, userID)
	return prefs, nil
}

// Slots returns the user's stored weekly slots.
func (s *PreferenceService) Slots(ctx context.Context, userID string) ([]models.PreferredStudySlot, error) {
	slots, err := s.slots.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study slots")
	}
	return slots, nil
}

// PutSlots replaces the user's weekly slots. Raw availability windows are
// normalised into slots when no explicit slots are given.
func (s *PreferenceService) PutSlots(ctx context.Context, userID string, req dto.PutStudySlotsRequest) ([]models.PreferredStudySlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid study slots payload")
	}
	if len(req.Slots) == 0 && len(req.Availability) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "either slots or availability must be provided")
	}

	var slots []models.PreferredStudySlot
	if len(req.Slots) > 0 {
		slots = make([]models.PreferredStudySlot, 0, len(req.Slots))
		seen := make(map[int]bool, len(req.Slots))
		for _, in := range req.Slots {
			if seen[in.DayOfWeek] {
				return nil, appErrors.Clone(appErrors.ErrValidation, "duplicate day in slots")
			}
			seen[in.DayOfWeek] = true
			slots = append(slots, models.PreferredStudySlot{
				DayOfWeek:           in.DayOfWeek,
				SlotCount:           in.SlotCount,
				SlotDurationMinutes: in.SlotDurationMinutes,
				PreferredStartHour:  in.PreferredStartHour,
			})
		}
	} else {
		var err error
		slots, err = s.slotsFromAvailability(req.Availability)
		if err != nil {
			return nil, err
		}
	}

	if err := s.slots.ReplaceForUser(ctx, userID, slots); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store study slots")
	}
	return slots, nil
}

// slotsFromAvailability converts raw windows into slot rows. The window's
// hour span caps the slot count so sessions cannot spill past the end hour.
func (s *PreferenceService) slotsFromAvailability(windows []dto.AvailabilityInput) ([]models.PreferredStudySlot, error) {
	slots := make([]models.PreferredStudySlot, 0, len(windows))
	seen := make(map[int]bool, len(windows))
	for _, window := range windows {
		if window.EndHour <= window.StartHour {
			return nil, appErrors.Clone(appErrors.ErrValidation, "availability end hour must be after start hour")
		}
		if seen[window.DayOfWeek] {
			return nil, appErrors.Clone(appErrors.ErrValidation, "duplicate day in availability")
		}
		seen[window.DayOfWeek] = true

		count := s.cfg.DefaultSlotCount
		if span := window.EndHour - window.StartHour; span < count {
			count = span
		}
		slots = append(slots, models.PreferredStudySlot{
			DayOfWeek:           window.DayOfWeek,
			SlotCount:           count,
			SlotDurationMinutes: s.cfg.DefaultSlotMinutes,
			PreferredStartHour:  window.StartHour,
		})
	}
	return slots, nil
}

func (s *PreferenceService) invalidateAnalytics(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "athro:analytics:*"+userID+"*"); err != nil {
		s.logger.Warn("failed to invalidate analytics cache", zap.String("user_id", userID), zap.Error(err))
	}
}
