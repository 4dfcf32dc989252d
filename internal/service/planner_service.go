package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/athro-ai/athro-study-api/internal/dto"
	"github.com/athro-ai/athro-study-api/internal/models"
	appErrors "github.com/athro-ai/athro-study-api/pkg/errors"
)

type plannerSubjectReader interface {
	ListByUser(ctx context.Context, userID string) ([]models.SubjectPreference, error)
}

type plannerSlotReader interface {
	ListByUser(ctx context.Context, userID string) ([]models.PreferredStudySlot, error)
}

type planRepository interface {
	CreatePlan(ctx context.Context, tx sqlx.ExtContext, plan *models.StudyPlan) error
	CreateSessionPair(ctx context.Context, tx sqlx.ExtContext, event *models.CalendarEvent, session *models.StudyPlanSession) error
	GetActiveByUser(ctx context.Context, userID string) (*models.StudyPlan, error)
	GetByID(ctx context.Context, userID, id string) (*models.StudyPlan, error)
	ListSessionsByPlan(ctx context.Context, planID string) ([]models.StudyPlanSession, error)
	MarkReplaced(ctx context.Context, tx sqlx.ExtContext, planID string) error
	UpdateTotals(ctx context.Context, planID string, total, failed int) error
	DeletePlanCascade(ctx context.Context, tx sqlx.ExtContext, userID, planID string) error
}

type plannerEventRemover interface {
	DeleteByIDs(ctx context.Context, tx sqlx.ExtContext, userID string, ids []string) error
}

type plannerEventMirror interface {
	Append(ctx context.Context, userID string, event models.CachedEvent) error
	Invalidate(ctx context.Context, userID string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// PlannerService generates weekly study plan proposals and materializes them
// into calendar events.
type PlannerService struct {
	subjects  plannerSubjectReader
	slots     plannerSlotReader
	plans     planRepository
	events    plannerEventRemover
	mirror    plannerEventMirror
	tx        txProvider
	validator *validator.Validate
	logger    *zap.Logger
	cfg       PlannerConfig
	store     *planProposalStore
}

// PlannerConfig governs generator defaults and proposal lifetime.
type PlannerConfig struct {
	ProposalTTL         time.Duration
	DefaultSlotCount    int
	DefaultSlotMinutes  int
	DefaultStartHour    int
	DefaultTimezone     string
	MaxSubjects         int
	MaxSessionsPerBatch int
}

// NewPlannerService wires planner dependencies.
func NewPlannerService(
	subjects plannerSubjectReader,
	slots plannerSlotReader,
	plans planRepository,
	events plannerEventRemover,
	mirror plannerEventMirror,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg PlannerConfig,
) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
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
	if cfg.DefaultTimezone == "" {
		cfg.DefaultTimezone = "Europe/London"
	}
	if cfg.MaxSubjects <= 0 {
		cfg.MaxSubjects = 15
	}
	if cfg.MaxSessionsPerBatch <= 0 {
		cfg.MaxSessionsPerBatch = 60
	}
	return &PlannerService{
		subjects:  subjects,
		slots:     slots,
		plans:     plans,
		events:    events,
		mirror:    mirror,
		tx:        tx,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		store:     newPlanProposalStore(cfg.ProposalTTL),
	}
}

// Generate builds a weekly session proposal from the user's confidence
// ratings and slot preferences. Nothing is persisted until Confirm.
func (s *PlannerService) Generate(ctx context.Context, userID string, req dto.GeneratePlanRequest) (*dto.GeneratePlanResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan generation payload")
	}
	if len(req.Subjects) > s.cfg.MaxSubjects {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d subjects are supported", s.cfg.MaxSubjects))
	}

	loc, err := s.resolveLocation(req.Timezone)
	if err != nil {
		return nil, err
	}

	subjects, err := normalizeSubjects(req.Subjects)
	if err != nil {
		return nil, err
	}

	slots := slotsFromRequest(req.Slots)
	if len(slots) == 0 {
		stored, err := s.slots.ListByUser(ctx, userID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study slot preferences")
		}
		slots = slotsFromStored(stored)
	}
	if len(slots) == 0 {
		slots = s.defaultSlots()
	}

	total := 0
	for _, slot := range slots {
		total += slot.Count
	}
	if total > s.cfg.MaxSessionsPerBatch {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("requested slots produce %d sessions, the maximum per plan is %d", total, s.cfg.MaxSessionsPerBatch))
	}

	sessions, share := buildSessions(subjects, slots)

	proposal := planProposal{
		ProposalID:  uuid.NewString(),
		UserID:      userID,
		Sessions:    sessions,
		Share:       share,
		Pomodoro:    req.Pomodoro,
		Timezone:    loc.String(),
		RequestedAt: time.Now().UTC(),
	}
	s.store.Save(proposal)

	return &dto.GeneratePlanResponse{
		ProposalID:   proposal.ProposalID,
		Sessions:     sessions,
		SubjectShare: share,
		RequestedAt:  proposal.RequestedAt,
	}, nil
}

// Confirm materializes a stored proposal into one calendar event plus one
// plan session per descriptor. Each pair lands in its own transaction so a
// single bad row does not sink the batch; failures are reported, not fatal.
func (s *PlannerService) Confirm(ctx context.Context, userID string, req dto.ConfirmPlanRequest) (*dto.ConfirmPlanResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan confirmation payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok || proposal.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	loc, err := time.LoadLocation(proposal.Timezone)
	if err != nil {
		loc = time.UTC
	}

	plan, err := s.openPlan(ctx, userID, proposal, req.ReplaceExisting)
	if err != nil {
		return nil, err
	}

	now := time.Now().In(loc)
	eventIDs := make([]string, 0, len(proposal.Sessions))
	created, failed := 0, 0
	for _, desc := range proposal.Sessions {
		eventID, err := s.materializeSession(ctx, userID, plan.ID, proposal, desc, now, loc)
		if err != nil {
			s.logger.Warn("failed to materialize study session",
				zap.String("plan_id", plan.ID),
				zap.String("subject", desc.Subject),
				zap.Int("day_of_week", desc.DayOfWeek),
				zap.Error(err))
			eventIDs = append(eventIDs, "")
			failed++
			continue
		}
		eventIDs = append(eventIDs, eventID)
		created++
	}

	if err := s.plans.UpdateTotals(ctx, plan.ID, created, failed); err != nil {
		s.logger.Warn("failed to update plan totals", zap.String("plan_id", plan.ID), zap.Error(err))
	}

	s.store.Delete(req.ProposalID)

	return &dto.ConfirmPlanResponse{
		PlanID:   plan.ID,
		EventIDs: eventIDs,
		Created:  created,
		Failed:   failed,
	}, nil
}

// openPlan creates the plan header, retiring the previous active plan first
// when a replacement was requested.
func (s *PlannerService) openPlan(ctx context.Context, userID string, proposal planProposal, replace bool) (*models.StudyPlan, error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if replace {
		var active *models.StudyPlan
		active, err = s.plans.GetActiveByUser(ctx, userID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active plan")
			return nil, err
		}
		err = nil
		if active != nil {
			var sessions []models.StudyPlanSession
			sessions, err = s.plans.ListSessionsByPlan(ctx, active.ID)
			if err != nil {
				err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions of active plan")
				return nil, err
			}
			ids := make([]string, 0, len(sessions))
			for _, sess := range sessions {
				ids = append(ids, sess.CalendarEventID)
			}
			if err = s.events.DeleteByIDs(ctx, tx, userID, ids); err != nil {
				err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear replaced plan events")
				return nil, err
			}
			if err = s.plans.MarkReplaced(ctx, tx, active.ID); err != nil {
				err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to retire active plan")
				return nil, err
			}
			if s.mirror != nil {
				_ = s.mirror.Invalidate(ctx, userID)
			}
		}
	}

	meta, marshalErr := json.Marshal(map[string]any{
		"pomodoro":  proposal.Pomodoro,
		"timezone":  proposal.Timezone,
		"share":     proposal.Share,
		"generated": proposal.RequestedAt,
	})
	if marshalErr != nil {
		err = appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode plan metadata")
		return nil, err
	}

	plan := &models.StudyPlan{
		UserID: userID,
		Status: models.PlanActive,
		Meta:   types.JSONText(meta),
	}
	if err = s.plans.CreatePlan(ctx, tx, plan); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create study plan")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit plan transaction")
		return nil, err
	}
	return plan, nil
}

// materializeSession writes one event/session pair in its own transaction.
func (s *PlannerService) materializeSession(ctx context.Context, userID, planID string, proposal planProposal, desc dto.SessionDescriptor, now time.Time, loc *time.Location) (string, error) {
	start := nextOccurrence(now, time.Weekday(desc.DayOfWeek), desc.StartHour, loc)
	end := start.Add(time.Duration(desc.DurationMinutes) * time.Minute)

	meta := models.SessionMeta{
		Subject:    desc.Subject,
		Confidence: desc.Confidence,
		Pomodoro:   proposal.Pomodoro,
		PlanID:     planID,
	}
	description, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode session meta: %w", err)
	}

	event := &models.CalendarEvent{
		UserID:      userID,
		Title:       desc.Subject + " Study Session",
		Subject:     desc.Subject,
		Description: string(description),
		EventType:   models.EventStudySession,
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
	}
	session := &models.StudyPlanSession{
		PlanID:          planID,
		Subject:         desc.Subject,
		Confidence:      desc.Confidence,
		DayOfWeek:       desc.DayOfWeek,
		DurationMinutes: desc.DurationMinutes,
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin session transaction: %w", err)
	}
	if err := s.plans.CreateSessionPair(ctx, tx, event, session); err != nil {
		_ = tx.Rollback()
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit session transaction: %w", err)
	}

	if s.mirror != nil {
		_ = s.mirror.Append(ctx, userID, models.CachedEvent{
			ID:        event.ID,
			Title:     event.Title,
			Subject:   event.Subject,
			EventType: string(event.EventType),
			StartTime: event.StartTime.Format(time.RFC3339),
			EndTime:   event.EndTime.Format(time.RFC3339),
		})
	}
	return event.ID, nil
}

// Current returns the user's active plan and its sessions.
func (s *PlannerService) Current(ctx context.Context, userID string) (*models.StudyPlan, []models.StudyPlanSession, error) {
	plan, err := s.plans.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "no active study plan")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active plan")
	}
	sessions, err := s.plans.ListSessionsByPlan(ctx, plan.ID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan sessions")
	}
	return plan, sessions, nil
}

// Delete removes a plan along with its sessions and calendar events.
func (s *PlannerService) Delete(ctx context.Context, userID, planID string) error {
	if _, err := s.plans.GetByID(ctx, userID, planID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "study plan not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study plan")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	if err := s.plans.DeletePlanCascade(ctx, tx, userID, planID); err != nil {
		_ = tx.Rollback()
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete study plan")
	}
	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit delete transaction")
	}

	if s.mirror != nil {
		_ = s.mirror.Invalidate(ctx, userID)
	}
	return nil
}

func (s *PlannerService) resolveLocation(tz string) (*time.Location, error) {
	if strings.TrimSpace(tz) == "" {
		tz = s.cfg.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown timezone %q", tz))
	}
	return loc, nil
}

func (s *PlannerService) defaultSlots() []slotSpec {
	slots := make([]slotSpec, 0, 5)
	for day := 1; day <= 5; day++ {
		slots = append(slots, slotSpec{
			Day:       day,
			Count:     s.cfg.DefaultSlotCount,
			Minutes:   s.cfg.DefaultSlotMinutes,
			StartHour: s.cfg.DefaultStartHour,
		})
	}
	return slots
}

// --- Allocation core ---

type subjectWeight struct {
	Subject string
	Label   models.ConfidenceLabel
	Weight  int
}

type slotSpec struct {
	Day       int
	Count     int
	Minutes   int
	StartHour int
}

func normalizeSubjects(inputs []dto.SubjectConfidenceInput) ([]subjectWeight, error) {
	seen := make(map[string]bool, len(inputs))
	subjects := make([]subjectWeight, 0, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSpace(in.Subject)
		if name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject name must not be empty")
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate subject %q", name))
		}
		seen[key] = true

		label := models.ConfidenceLabel(in.Label)
		if !label.Valid() {
			label = models.LabelFromLevel(in.Level)
		}
		subjects = append(subjects, subjectWeight{Subject: name, Label: label, Weight: label.Weight()})
	}
	return subjects, nil
}

func slotsFromRequest(inputs []dto.StudySlotInput) []slotSpec {
	slots := make([]slotSpec, 0, len(inputs))
	for _, in := range inputs {
		slots = append(slots, slotSpec{
			Day:       in.DayOfWeek,
			Count:     in.SlotCount,
			Minutes:   in.SlotDurationMinutes,
			StartHour: in.PreferredStartHour,
		})
	}
	sortSlots(slots)
	return slots
}

func slotsFromStored(stored []models.PreferredStudySlot) []slotSpec {
	slots := make([]slotSpec, 0, len(stored))
	for _, s := range stored {
		slots = append(slots, slotSpec{
			Day:       s.DayOfWeek,
			Count:     s.SlotCount,
			Minutes:   s.SlotDurationMinutes,
			StartHour: s.PreferredStartHour,
		})
	}
	sortSlots(slots)
	return slots
}

func sortSlots(slots []slotSpec) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Day == slots[j].Day {
			return slots[i].StartHour < slots[j].StartHour
		}
		return slots[i].Day < slots[j].Day
	})
}

// buildSessions apportions the weekly slot capacity across subjects by
// confidence weight using the largest remainder method, then interleaves the
// subjects across the week so no subject clumps onto consecutive slots.
// Empty subject input yields an empty plan.
func buildSessions(subjects []subjectWeight, slots []slotSpec) ([]dto.SessionDescriptor, map[string]int) {
	share := make(map[string]int, len(subjects))
	if len(subjects) == 0 || len(slots) == 0 {
		return []dto.SessionDescriptor{}, share
	}

	ordered := make([]subjectWeight, len(subjects))
	copy(ordered, subjects)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Weight == ordered[j].Weight {
			return ordered[i].Subject < ordered[j].Subject
		}
		return ordered[i].Weight > ordered[j].Weight
	})

	// Stacked sessions must all start on the slot's own day. Cap each
	// slot's count at what fits before midnight so a late start hour
	// never rolls a session onto the next weekday.
	capped := make([]int, len(slots))
	total := 0
	for i, slot := range slots {
		fit := (23-slot.StartHour)/stackStep(slot.Minutes) + 1
		if fit < slot.Count {
			capped[i] = fit
		} else {
			capped[i] = slot.Count
		}
		total += capped[i]
	}

	counts := apportion(ordered, total)
	for i, sub := range ordered {
		share[sub.Subject] = counts[i]
	}

	queue := interleave(ordered, counts)

	sessions := make([]dto.SessionDescriptor, 0, total)
	qi := 0
	for si, slot := range slots {
		hourStep := stackStep(slot.Minutes)
		for i := 0; i < capped[si] && qi < len(queue); i++ {
			sub := queue[qi]
			qi++
			sessions = append(sessions, dto.SessionDescriptor{
				Subject:         sub.Subject,
				Confidence:      sub.Label,
				DayOfWeek:       slot.Day,
				StartHour:       slot.StartHour + i*hourStep,
				DurationMinutes: slot.Minutes,
			})
		}
	}
	return sessions, share
}

// stackStep is the whole-hour spacing between stacked sessions in a slot.
func stackStep(minutes int) int {
	step := (minutes + 59) / 60
	if step < 1 {
		step = 1
	}
	return step
}

// apportion distributes total sessions proportionally to subject weights.
// Every subject receives at least one session when capacity allows; leftover
// remainder seats go to the largest fractional parts first.
func apportion(ordered []subjectWeight, total int) []int {
	counts := make([]int, len(ordered))
	if total <= 0 {
		return counts
	}
	if total <= len(ordered) {
		for i := 0; i < total; i++ {
			counts[i] = 1
		}
		return counts
	}

	weightSum := 0
	for _, sub := range ordered {
		weightSum += sub.Weight
	}

	type remainder struct {
		index int
		frac  int
	}
	assigned := 0
	remainders := make([]remainder, 0, len(ordered))
	for i, sub := range ordered {
		exact := sub.Weight * total
		counts[i] = exact / weightSum
		remainders = append(remainders, remainder{index: i, frac: exact % weightSum})
		assigned += counts[i]
	}

	sort.SliceStable(remainders, func(i, j int) bool {
		return remainders[i].frac > remainders[j].frac
	})
	for i := 0; assigned < total; i++ {
		counts[remainders[i%len(remainders)].index]++
		assigned++
	}

	// Guarantee everyone appears at least once while capacity allows.
	for i := range counts {
		if counts[i] > 0 {
			continue
		}
		donor := 0
		for k := range counts {
			if counts[k] > counts[donor] {
				donor = k
			}
		}
		if counts[donor] <= 1 {
			break
		}
		counts[donor]--
		counts[i]++
	}
	return counts
}

// interleave emits subjects round-robin in weighted order so sessions of the
// same subject spread across the week.
func interleave(ordered []subjectWeight, counts []int) []subjectWeight {
	remaining := make([]int, len(counts))
	copy(remaining, counts)

	total := 0
	for _, c := range counts {
		total += c
	}

	queue := make([]subjectWeight, 0, total)
	for len(queue) < total {
		progressed := false
		for i, sub := range ordered {
			if remaining[i] == 0 {
				continue
			}
			queue = append(queue, sub)
			remaining[i]--
			progressed = true
		}
		if !progressed {
			break
		}
	}
	return queue
}

// nextOccurrence returns the next wall-clock start of the given weekday and
// hour strictly from the reference moment. The reference day itself counts
// when the start hour is still ahead. Hours outside 0..23 are clamped so the
// result always lands on the requested weekday.
func nextOccurrence(ref time.Time, weekday time.Weekday, startHour int, loc *time.Location) time.Time {
	if startHour > 23 {
		startHour = 23
	}
	if startHour < 0 {
		startHour = 0
	}
	ref = ref.In(loc)
	daysAhead := (int(weekday) - int(ref.Weekday()) + 7) % 7
	if daysAhead == 0 && ref.Hour() >= startHour {
		daysAhead = 7
	}
	day := ref.AddDate(0, 0, daysAhead)
	return time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, loc)
}

// --- Proposal cache ---

type planProposal struct {
	ProposalID  string
	UserID      string
	Sessions    []dto.SessionDescriptor
	Share       map[string]int
	Pomodoro    bool
	Timezone    string
	RequestedAt time.Time
}

type planProposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]planProposal
}

func newPlanProposalStore(ttl time.Duration) *planProposalStore {
	return &planProposalStore{
		ttl:   ttl,
		items: make(map[string]planProposal),
	}
}

func (s *planProposalStore) Save(proposal planProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ProposalID] = proposal
}

func (s *planProposalStore) Get(id string) (planProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return planProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return planProposal{}, false
	}
	return proposal, true
}

func (s *planProposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
