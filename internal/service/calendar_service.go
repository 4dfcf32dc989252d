package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/athro-ai/athro-study-api/internal/dto"
	"github.com/athro-ai/athro-study-api/internal/models"
	appErrors "github.com/athro-ai/athro-study-api/pkg/errors"
	"github.com/athro-ai/athro-study-api/pkg/export"
)

// EventSource is one layer of the calendar merge view. Sources never fail the
// merge outright; a degraded source returns what it can.
type EventSource interface {
	Events(ctx context.Context, userID string, from, to time.Time) ([]models.CalendarEvent, error)
}

type calendarEventRepo interface {
	List(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, error)
	GetByID(ctx context.Context, userID, id string) (*models.CalendarEvent, error)
	Create(ctx context.Context, event *models.CalendarEvent) error
	Update(ctx context.Context, event *models.CalendarEvent) error
	Delete(ctx context.Context, userID, id string) error
}

type eventMirrorRepo interface {
	ListByUser(ctx context.Context, userID string) ([]models.CachedEvent, error)
	Append(ctx context.Context, userID string, event models.CachedEvent) error
	Remove(ctx context.Context, userID, eventID string) error
	Invalidate(ctx context.Context, userID string) error
}

type icsRenderer interface {
	Render(name string, events []export.FeedEvent) ([]byte, error)
}

// CalendarService merges persisted, locally mirrored and suggested events
// into one view and manages event CRUD plus the ICS feed.
type CalendarService struct {
	repo        calendarEventRepo
	mirror      eventMirrorRepo
	remote      EventSource
	cached      EventSource
	ics         icsRenderer
	validator   *validator.Validate
	logger      *zap.Logger
	feedWindow  time.Duration
	suggestions *suggestionStore
}

// CalendarServiceConfig governs suggestion lifetime and the ICS feed window.
type CalendarServiceConfig struct {
	SuggestionTTL time.Duration
	FeedWindow    time.Duration
}

// NewCalendarService wires the merge view dependencies.
func NewCalendarService(
	repo calendarEventRepo,
	mirror eventMirrorRepo,
	ics icsRenderer,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg CalendarServiceConfig,
) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SuggestionTTL <= 0 {
		cfg.SuggestionTTL = time.Hour
	}
	if cfg.FeedWindow <= 0 {
		cfg.FeedWindow = 28 * 24 * time.Hour
	}
	return &CalendarService{
		repo:        repo,
		mirror:      mirror,
		remote:      &remoteEventSource{repo: repo},
		cached:      &cachedEventSource{mirror: mirror, logger: logger},
		ics:         ics,
		validator:   validate,
		logger:      logger,
		feedWindow:  cfg.FeedWindow,
		suggestions: newSuggestionStore(cfg.SuggestionTTL),
	}
}

// Range returns the unified event list for a window. Persisted events win
// over mirrored ones by id; suggested events ride along flagged as such.
// A failing source degrades the view instead of failing the request.
func (s *CalendarService) Range(ctx context.Context, userID string, from, to time.Time) ([]models.CalendarEvent, error) {
	if !to.After(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "range end must be after range start")
	}

	remote, err := s.remote.Events(ctx, userID, from, to)
	if err != nil {
		s.logger.Warn("remote event source degraded", zap.String("user_id", userID), zap.Error(err))
		remote = nil
	}
	local, err := s.cached.Events(ctx, userID, from, to)
	if err != nil {
		s.logger.Warn("cached event source degraded", zap.String("user_id", userID), zap.Error(err))
		local = nil
	}

	merged := reconcileEvents(remote, local)
	merged = append(merged, s.expandRecurring(merged, from, to)...)
	merged = append(merged, s.suggestions.ForUser(userID, from, to)...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].StartTime.Before(merged[j].StartTime)
	})
	return merged, nil
}

// Day returns the merged events whose start falls on the given civil date in
// the viewer's timezone.
func (s *CalendarService) Day(ctx context.Context, userID, date, tz string) ([]models.CalendarEvent, error) {
	day, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD")
	}
	loc := time.UTC
	if tz != "" {
		if parsed, err := time.LoadLocation(tz); err == nil {
			loc = parsed
		}
	}

	// Widen the fetch window by a day either side so timezone offsets cannot
	// push a same-date event out of range.
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -1)
	to := from.AddDate(0, 0, 3)

	merged, err := s.Range(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	result := make([]models.CalendarEvent, 0, len(merged))
	for _, event := range merged {
		start := event.StartTime.In(loc)
		if start.Year() == day.Year() && start.Month() == day.Month() && start.Day() == day.Day() {
			result = append(result, event)
		}
	}
	return result, nil
}

// Create persists a user-authored event and writes it through to the mirror.
func (s *CalendarService) Create(ctx context.Context, userID string, req dto.CreateEventRequest) (*models.CalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}
	if err := validateRecurrence(req.RecurrenceRule); err != nil {
		return nil, err
	}

	event := &models.CalendarEvent{
		UserID:         userID,
		Title:          req.Title,
		Subject:        req.Subject,
		Topic:          req.Topic,
		Description:    req.Description,
		EventType:      models.EventType(req.EventType),
		StartTime:      req.StartTime.UTC(),
		EndTime:        req.EndTime.UTC(),
		RecurrenceRule: req.RecurrenceRule,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.writeThrough(ctx, userID, event)

	event.Source = models.SourceRemote
	return event, nil
}

// Update rewrites an existing event.
func (s *CalendarService) Update(ctx context.Context, userID, id string, req dto.UpdateEventRequest) (*models.CalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}
	if err := validateRecurrence(req.RecurrenceRule); err != nil {
		return nil, err
	}

	event, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	event.Title = req.Title
	event.Subject = req.Subject
	event.Topic = req.Topic
	event.Description = req.Description
	event.EventType = models.EventType(req.EventType)
	event.StartTime = req.StartTime.UTC()
	event.EndTime = req.EndTime.UTC()
	event.RecurrenceRule = req.RecurrenceRule

	if err := s.repo.Update(ctx, event); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	s.writeThrough(ctx, userID, event)

	event.Source = models.SourceRemote
	return event, nil
}

// Delete removes an event and its mirror entry.
func (s *CalendarService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	if s.mirror != nil {
		if err := s.mirror.Remove(ctx, userID, id); err != nil {
			s.logger.Warn("failed to drop mirrored event", zap.String("event_id", id), zap.Error(err))
		}
	}
	return nil
}

// Suggest stages an event in the suggestion store without persisting it.
func (s *CalendarService) Suggest(ctx context.Context, userID string, req dto.CreateEventRequest) (*models.CalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}

	event := models.CalendarEvent{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       req.Title,
		Subject:     req.Subject,
		Topic:       req.Topic,
		Description: req.Description,
		EventType:   models.EventType(req.EventType),
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		Source:      models.SourceSuggested,
		Suggested:   true,
	}
	s.suggestions.Save(event)
	return &event, nil
}

// AcceptSuggestion promotes a staged suggestion to a persisted event.
func (s *CalendarService) AcceptSuggestion(ctx context.Context, userID, id string) (*models.CalendarEvent, error) {
	suggestion, ok := s.suggestions.Get(userID, id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "suggestion not found or expired")
	}

	event := suggestion
	event.Suggested = false
	event.Source = models.SourceRemote
	if err := s.repo.Create(ctx, &event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist accepted suggestion")
	}
	s.writeThrough(ctx, userID, &event)
	s.suggestions.Delete(userID, id)
	return &event, nil
}

// DismissSuggestion drops a staged suggestion. Nothing is persisted.
func (s *CalendarService) DismissSuggestion(ctx context.Context, userID, id string) error {
	if _, ok := s.suggestions.Get(userID, id); !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "suggestion not found or expired")
	}
	s.suggestions.Delete(userID, id)
	return nil
}

// Feed renders the user's upcoming study sessions as an ICS calendar.
func (s *CalendarService) Feed(ctx context.Context, userID string) ([]byte, error) {
	now := time.Now().UTC()
	to := now.Add(s.feedWindow)
	filter := models.CalendarFilter{
		UserID: userID,
		From:   &now,
		To:     &to,
		Types:  []models.EventType{models.EventStudySession, models.EventExam},
	}
	events, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load feed events")
	}

	feed := make([]export.FeedEvent, 0, len(events))
	for _, event := range events {
		feed = append(feed, export.FeedEvent{
			ID:          event.ID,
			Summary:     event.Title,
			Description: event.Subject,
			Start:       event.StartTime,
			End:         event.EndTime,
		})
	}
	payload, err := s.ics.Render("Athro Study Sessions", feed)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render calendar feed")
	}
	return payload, nil
}

func (s *CalendarService) writeThrough(ctx context.Context, userID string, event *models.CalendarEvent) {
	if s.mirror == nil {
		return
	}
	err := s.mirror.Append(ctx, userID, models.CachedEvent{
		ID:        event.ID,
		Title:     event.Title,
		Subject:   event.Subject,
		EventType: string(event.EventType),
		StartTime: event.StartTime.Format(time.RFC3339),
		EndTime:   event.EndTime.Format(time.RFC3339),
	})
	if err != nil {
		s.logger.Warn("failed to mirror event", zap.String("event_id", event.ID), zap.Error(err))
	}
}

// expandRecurring projects recurring blocked events into the window. The
// stored row covers its own first occurrence; only later ones are added.
func (s *CalendarService) expandRecurring(events []models.CalendarEvent, from, to time.Time) []models.CalendarEvent {
	var expanded []models.CalendarEvent
	for _, event := range events {
		if event.EventType != models.EventBlocked || event.RecurrenceRule == nil || *event.RecurrenceRule == "" {
			continue
		}
		rule, err := rrule.StrToRRule(*event.RecurrenceRule)
		if err != nil {
			s.logger.Debug("skipping malformed recurrence rule", zap.String("event_id", event.ID), zap.Error(err))
			continue
		}
		rule.DTStart(event.StartTime)
		duration := event.EndTime.Sub(event.StartTime)
		for _, occurrence := range rule.Between(from, to, true) {
			if occurrence.Equal(event.StartTime) {
				continue
			}
			clone := event
			clone.ID = fmt.Sprintf("%s@%d", event.ID, occurrence.Unix())
			clone.StartTime = occurrence
			clone.EndTime = occurrence.Add(duration)
			clone.RecurrenceRule = nil
			expanded = append(expanded, clone)
		}
	}
	return expanded
}

func validateRecurrence(rule *string) error {
	if rule == nil || *rule == "" {
		return nil
	}
	if _, err := rrule.StrToRRule(*rule); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid recurrence rule: %v", err))
	}
	return nil
}

// reconcileEvents merges the remote and cached layers. A persisted event
// wins over a mirrored one with the same id; mirror-only events surface
// flagged as local.
func reconcileEvents(remote, local []models.CalendarEvent) []models.CalendarEvent {
	merged := make([]models.CalendarEvent, 0, len(remote)+len(local))
	seen := make(map[string]bool, len(remote))
	for _, event := range remote {
		event.Source = models.SourceRemote
		merged = append(merged, event)
		seen[event.ID] = true
	}
	for _, event := range local {
		if seen[event.ID] {
			continue
		}
		event.Source = models.SourceLocal
		event.LocalOnly = true
		merged = append(merged, event)
	}
	return merged
}

// --- Event sources ---

type remoteEventSource struct {
	repo calendarEventRepo
}

func (s *remoteEventSource) Events(ctx context.Context, userID string, from, to time.Time) ([]models.CalendarEvent, error) {
	return s.repo.List(ctx, models.CalendarFilter{UserID: userID, From: &from, To: &to})
}

type cachedEventSource struct {
	mirror eventMirrorRepo
	logger *zap.Logger
}

// Events parses the mirror, skipping rows whose timestamps do not parse.
// A malformed entry degrades to absence, never to an error.
func (s *cachedEventSource) Events(ctx context.Context, userID string, from, to time.Time) ([]models.CalendarEvent, error) {
	if s.mirror == nil {
		return nil, nil
	}
	cached, err := s.mirror.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	events := make([]models.CalendarEvent, 0, len(cached))
	for _, raw := range cached {
		start, err := time.Parse(time.RFC3339, raw.StartTime)
		if err != nil {
			s.logger.Debug("skipping mirrored event with malformed start", zap.String("event_id", raw.ID))
			continue
		}
		end, err := time.Parse(time.RFC3339, raw.EndTime)
		if err != nil {
			end = start
		}
		if end.Before(from) || start.After(to) {
			continue
		}
		events = append(events, models.CalendarEvent{
			ID:        raw.ID,
			UserID:    userID,
			Title:     raw.Title,
			Subject:   raw.Subject,
			EventType: models.EventType(raw.EventType),
			StartTime: start,
			EndTime:   end,
		})
	}
	return events, nil
}

// --- Suggestion cache ---

type suggestionEntry struct {
	event   models.CalendarEvent
	savedAt time.Time
}

type suggestionStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]suggestionEntry
}

func newSuggestionStore(ttl time.Duration) *suggestionStore {
	return &suggestionStore{ttl: ttl, items: make(map[string]suggestionEntry)}
}

func (s *suggestionStore) Save(event models.CalendarEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[event.ID] = suggestionEntry{event: event, savedAt: time.Now()}
}

func (s *suggestionStore) Get(userID, id string) (models.CalendarEvent, bool) {
	s.mu.RLock()
	entry, ok := s.items[id]
	s.mu.RUnlock()
	if !ok || entry.event.UserID != userID {
		return models.CalendarEvent{}, false
	}
	if time.Since(entry.savedAt) > s.ttl {
		s.Delete(userID, id)
		return models.CalendarEvent{}, false
	}
	return entry.event, true
}

func (s *suggestionStore) Delete(userID, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.items[id]; ok && entry.event.UserID == userID {
		delete(s.items, id)
	}
}

// ForUser returns live suggestions overlapping the window.
func (s *suggestionStore) ForUser(userID string, from, to time.Time) []models.CalendarEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []models.CalendarEvent
	for _, entry := range s.items {
		if entry.event.UserID != userID || time.Since(entry.savedAt) > s.ttl {
			continue
		}
		if entry.event.EndTime.Before(from) || entry.event.StartTime.After(to) {
			continue
		}
		result = append(result, entry.event)
	}
	return result
}
