package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athro-ai/athro-study-api/internal/dto"
	"github.com/athro-ai/athro-study-api/internal/models"
	appErrors "github.com/athro-ai/athro-study-api/pkg/errors"
)

type mockSubjectReader struct {
	prefs []models.SubjectPreference
	err   error
}

func (m *mockSubjectReader) ListByUser(ctx context.Context, userID string) ([]models.SubjectPreference, error) {
	return m.prefs, m.err
}

type mockSlotReader struct {
	slots []models.PreferredStudySlot
	err   error
}

func (m *mockSlotReader) ListByUser(ctx context.Context, userID string) ([]models.PreferredStudySlot, error) {
	return m.slots, m.err
}

type mockPlanRepo struct {
	activePlan     *models.StudyPlan
	activeErr      error
	planByID       *models.StudyPlan
	byIDErr        error
	sessions       []models.StudyPlanSession
	sessionsErr    error
	createdPlans   []*models.StudyPlan
	createdPairs   int
	pairErrOn      map[int]error
	replacedPlans  []string
	totalsCreated  int
	totalsFailed   int
	deletedPlans   []string
	createPlanErr  error
	deleteErr      error
	updateTotalErr error
}

func (m *mockPlanRepo) CreatePlan(ctx context.Context, tx sqlx.ExtContext, plan *models.StudyPlan) error {
	if m.createPlanErr != nil {
		return m.createPlanErr
	}
	plan.ID = uuid.NewString()
	m.createdPlans = append(m.createdPlans, plan)
	return nil
}

func (m *mockPlanRepo) CreateSessionPair(ctx context.Context, tx sqlx.ExtContext, event *models.CalendarEvent, session *models.StudyPlanSession) error {
	m.createdPairs++
	if err, ok := m.pairErrOn[m.createdPairs]; ok {
		return err
	}
	event.ID = uuid.NewString()
	session.ID = uuid.NewString()
	session.CalendarEventID = event.ID
	return nil
}

func (m *mockPlanRepo) GetActiveByUser(ctx context.Context, userID string) (*models.StudyPlan, error) {
	if m.activeErr != nil {
		return nil, m.activeErr
	}
	if m.activePlan == nil {
		return nil, sql.ErrNoRows
	}
	return m.activePlan, nil
}

func (m *mockPlanRepo) GetByID(ctx context.Context, userID, id string) (*models.StudyPlan, error) {
	if m.byIDErr != nil {
		return nil, m.byIDErr
	}
	if m.planByID == nil {
		return nil, sql.ErrNoRows
	}
	return m.planByID, nil
}

func (m *mockPlanRepo) ListSessionsByPlan(ctx context.Context, planID string) ([]models.StudyPlanSession, error) {
	return m.sessions, m.sessionsErr
}

func (m *mockPlanRepo) MarkReplaced(ctx context.Context, tx sqlx.ExtContext, planID string) error {
	m.replacedPlans = append(m.replacedPlans, planID)
	return nil
}

func (m *mockPlanRepo) UpdateTotals(ctx context.Context, planID string, total, failed int) error {
	if m.updateTotalErr != nil {
		return m.updateTotalErr
	}
	m.totalsCreated = total
	m.totalsFailed = failed
	return nil
}

func (m *mockPlanRepo) DeletePlanCascade(ctx context.Context, tx sqlx.ExtContext, userID, planID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedPlans = append(m.deletedPlans, planID)
	return nil
}

type mockEventRemover struct {
	removed [][]string
	err     error
}

func (m *mockEventRemover) DeleteByIDs(ctx context.Context, tx sqlx.ExtContext, userID string, ids []string) error {
	if m.err != nil {
		return m.err
	}
	m.removed = append(m.removed, ids)
	return nil
}

type mockEventMirror struct {
	appended    []models.CachedEvent
	invalidated int
}

func (m *mockEventMirror) Append(ctx context.Context, userID string, event models.CachedEvent) error {
	m.appended = append(m.appended, event)
	return nil
}

func (m *mockEventMirror) Invalidate(ctx context.Context, userID string) error {
	m.invalidated++
	return nil
}

func newPlannerMockTx(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func newTestPlanner(plans *mockPlanRepo, tx txProvider) (*PlannerService, *mockEventMirror) {
	mirror := &mockEventMirror{}
	svc := NewPlannerService(
		&mockSubjectReader{},
		&mockSlotReader{},
		plans,
		&mockEventRemover{},
		mirror,
		tx,
		nil,
		nil,
		PlannerConfig{},
	)
	return svc, mirror
}

func TestGenerateWeightsFavourLowConfidence(t *testing.T) {
	svc, _ := newTestPlanner(&mockPlanRepo{}, nil)

	resp, err := svc.Generate(context.Background(), "user-1", dto.GeneratePlanRequest{
		Subjects: []dto.SubjectConfidenceInput{
			{Subject: "Maths", Label: "low"},
			{Subject: "English", Label: "medium"},
			{Subject: "History", Label: "high"},
		},
		Slots: []dto.StudySlotInput{
			{DayOfWeek: 1, SlotCount: 3, SlotDurationMinutes: 45, PreferredStartHour: 16},
			{DayOfWeek: 3, SlotCount: 3, SlotDurationMinutes: 45, PreferredStartHour: 16},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 6)

	// Weights 3:2:1 over six slots split exactly.
	assert.Equal(t, 3, resp.SubjectShare["Maths"])
	assert.Equal(t, 2, resp.SubjectShare["English"])
	assert.Equal(t, 1, resp.SubjectShare["History"])
	assert.NotEmpty(t, resp.ProposalID)
}

func TestGenerateEverySubjectAppears(t *testing.T) {
	svc, _ := newTestPlanner(&mockPlanRepo{}, nil)

	resp, err := svc.Generate(context.Background(), "user-1", dto.GeneratePlanRequest{
		Subjects: []dto.SubjectConfidenceInput{
			{Subject: "Maths", Label: "low"},
			{Subject: "English", Label: "low"},
			{Subject: "History", Label: "low"},
			{Subject: "Physics", Label: "high"},
		},
		Slots: []dto.StudySlotInput{
			{DayOfWeek: 2, SlotCount: 5, SlotDurationMinutes: 30, PreferredStartHour: 17},
		},
	})
	require.NoError(t, err)

	for _, subject := range []string{"Maths", "English", "History", "Physics"} {
		assert.GreaterOrEqual(t, resp.SubjectShare[subject], 1, subject)
	}
}

func TestGenerateSessionsFollowSlotLayout(t *testing.T) {
	svc, _ := newTestPlanner(&mockPlanRepo{}, nil)

	resp, err := svc.Generate(context.Background(), "user-1", dto.GeneratePlanRequest{
		Subjects: []dto.SubjectConfidenceInput{
			{Subject: "Maths", Label: "low"},
			{Subject: "English", Label: "high"},
		},
		Slots: []dto.StudySlotInput{
			{DayOfWeek: 5, SlotCount: 2, SlotDurationMinutes: 90, PreferredStartHour: 15},
			{DayOfWeek: 1, SlotCount: 1, SlotDurationMinutes: 45, PreferredStartHour: 16},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 3)

	// Slots are served in day order regardless of request order.
	assert.Equal(t, 1, resp.Sessions[0].DayOfWeek)
	assert.Equal(t, 16, resp.Sessions[0].StartHour)
	assert.Equal(t, 5, resp.Sessions[1].DayOfWeek)
	assert.Equal(t, 15, resp.Sessions[1].StartHour)
	// A 90 minute slot advances the next start by two hours.
	assert.Equal(t, 17, resp.Sessions[2].StartHour)
}

func TestGenerateLateSlotStaysWithinDay(t *testing.T) {
	svc, _ := newTestPlanner(&mockPlanRepo{}, nil)

	// 22:00 plus a second two hour session would start at 24:00, which is
	// no longer Monday. The slot is capped to what fits before midnight.
	resp, err := svc.Generate(context.Background(), "user-1", dto.GeneratePlanRequest{
		Subjects: []dto.SubjectConfidenceInput{
			{Subject: "Maths", Label: "low"},
			{Subject: "English", Label: "high"},
		},
		Slots: []dto.StudySlotInput{
			{DayOfWeek: 1, SlotCount: 2, SlotDurationMinutes: 120, PreferredStartHour: 22},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 1)
	assert.Equal(t, 1, resp.Sessions[0].DayOfWeek)
	assert.Equal(t, 22, resp.Sessions[0].StartHour)

	// The share totals track emitted sessions, not the requested count.
	total := 0
	for _, n := range resp.SubjectShare {
		total += n
	}
	assert.Equal(t, len(resp.Sessions), total)
}

func TestGenerateMaximalLateSlot(t *testing.T) {
	svc, _ := newTestPlanner(&mockPlanRepo{}, nil)

	resp, err := svc.Generate(context.Background(), "user-1", dto.GeneratePlanRequest{
		Subjects: []dto.SubjectConfidenceInput{{Subject: "Maths", Label: "low"}},
		Slots: []dto.StudySlotInput{
			{DayOfWeek: 1, SlotCount: 8, SlotDurationMinutes: 180, PreferredStartHour: 22},
		},
	})
	require.NoError(t, err)
	for _, session := range resp.Sessions {
		assert.Equal(t, 1, session.DayOfWeek)
		assert.LessOrEqual(t, session.StartHour, 23)
	}
}

func TestGenerateIsRepeatable(t *testing.T) {
	svc, _ := newTestPlanner(&mockPlanRepo{}, nil)

	req := dto.GeneratePlanRequest{
		Subjects: []dto.SubjectConfidenceInput{
			{Subject: "Maths", Label: "low"},
			{Subject: "English", Label: "medium"},
			{Subject: "History", Label: "high"},
		},
		Slots: []dto.StudySlotInput{
			{DayOfWeek: 1, SlotCount: 3, SlotDurationMinutes: 45, PreferredStartHour: 16},
			{DayOfWeek: 4, SlotCount: 2, SlotDurationMinutes: 60, PreferredStartHour: 17},
		},
	}

	first, err := svc.Generate(context.Background(), "user-1", req)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), "user-1", req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ProposalID, second.ProposalID)
	assert.Equal(t, first.Sessions, second.Sessions)
	assert.Equal(t, first.SubjectShare, second.SubjectShare)
}

func TestGenerateRejectsDuplicateSubjects(t *testing.T) {
	svc, _ := newTestPlanner(&mockPlanRepo{}, nil)

	_, err := svc.Generate(context.Background(), "user-1", dto.GeneratePlanRequest{
		Subjects: []dto.SubjectConfidenceInput{
			{Subject: "Maths", Label: "low"},
			{Subject: "maths", Label: "high"},
		},
		Slots: []dto.StudySlotInput{
			{DayOfWeek: 1, SlotCount: 1, SlotDurationMinutes: 45, PreferredStartHour: 16},
		},
	})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestGenerateDerivesLabelFromLevel(t *testing.T) {
	svc, _ := newTestPlanner(&mockPlanRepo{}, nil)

	resp, err := svc.Generate(context.Background(), "user-1", dto.GeneratePlanRequest{
		Subjects: []dto.SubjectConfidenceInput{
			{Subject: "Maths", Level: 2},
			{Subject: "English", Level: 9},
		},
		Slots: []dto.StudySlotInput{
			{DayOfWeek: 1, SlotCount: 4, SlotDurationMinutes: 45, PreferredStartHour: 16},
		},
	})
	require.NoError(t, err)
	assert.Greater(t, resp.SubjectShare["Maths"], resp.SubjectShare["English"])
}

func TestGenerateFallsBackToStoredSlots(t *testing.T) {
	plans := &mockPlanRepo{}
	mirror := &mockEventMirror{}
	svc := NewPlannerService(
		&mockSubjectReader{},
		&mockSlotReader{slots: []models.PreferredStudySlot{
			{DayOfWeek: 2, SlotCount: 2, SlotDurationMinutes: 60, PreferredStartHour: 18},
		}},
		plans,
		&mockEventRemover{},
		mirror,
		nil,
		nil,
		nil,
		PlannerConfig{},
	)

	resp, err := svc.Generate(context.Background(), "user-1", dto.GeneratePlanRequest{
		Subjects: []dto.SubjectConfidenceInput{{Subject: "Maths", Label: "low"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 2)
	assert.Equal(t, 2, resp.Sessions[0].DayOfWeek)
	assert.Equal(t, 18, resp.Sessions[0].StartHour)
}

func TestGenerateRejectsOversizedBatch(t *testing.T) {
	svc, _ := newTestPlanner(&mockPlanRepo{}, nil)

	_, err := svc.Generate(context.Background(), "user-1", dto.GeneratePlanRequest{
		Subjects: []dto.SubjectConfidenceInput{{Subject: "Maths", Label: "low"}},
		Slots: []dto.StudySlotInput{
			{DayOfWeek: 0, SlotCount: 8, SlotDurationMinutes: 30, PreferredStartHour: 8},
			{DayOfWeek: 1, SlotCount: 8, SlotDurationMinutes: 30, PreferredStartHour: 8},
			{DayOfWeek: 2, SlotCount: 8, SlotDurationMinutes: 30, PreferredStartHour: 8},
			{DayOfWeek: 3, SlotCount: 8, SlotDurationMinutes: 30, PreferredStartHour: 8},
			{DayOfWeek: 4, SlotCount: 8, SlotDurationMinutes: 30, PreferredStartHour: 8},
			{DayOfWeek: 5, SlotCount: 8, SlotDurationMinutes: 30, PreferredStartHour: 8},
			{DayOfWeek: 6, SlotCount: 8, SlotDurationMinutes: 30, PreferredStartHour: 8},
			{DayOfWeek: 6, SlotCount: 8, SlotDurationMinutes: 30, PreferredStartHour: 20},
		},
	})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestConfirmMaterializesEveryDescriptor(t *testing.T) {
	db, mock, cleanup := newPlannerMockTx(t)
	defer cleanup()

	plans := &mockPlanRepo{}
	svc, mirror := newTestPlanner(plans, db)

	resp, err := svc.Generate(context.Background(), "user-1", dto.GeneratePlanRequest{
		Subjects: []dto.SubjectConfidenceInput{
			{Subject: "Maths", Label: "low"},
			{Subject: "English", Label: "high"},
		},
		Slots: []dto.StudySlotInput{
			{DayOfWeek: 1, SlotCount: 3, SlotDurationMinutes: 45, PreferredStartHour: 16},
		},
	})
	require.NoError(t, err)

	// One transaction for the plan header plus one per session pair.
	mock.ExpectBegin()
	mock.ExpectCommit()
	for range resp.Sessions {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}

	confirm, err := svc.Confirm(context.Background(), "user-1", dto.ConfirmPlanRequest{ProposalID: resp.ProposalID})
	require.NoError(t, err)
	assert.Equal(t, len(resp.Sessions), confirm.Created)
	assert.Zero(t, confirm.Failed)
	assert.Len(t, confirm.EventIDs, len(resp.Sessions))
	for _, id := range confirm.EventIDs {
		assert.NotEmpty(t, id)
	}
	require.Len(t, mirror.appended, len(resp.Sessions))
	assert.Equal(t, resp.Sessions[0].Subject+" Study Session", mirror.appended[0].Title)
	assert.Equal(t, len(resp.Sessions), plans.totalsCreated)
	assert.NoError(t, mock.ExpectationsWereMet())

	// A confirmed proposal is single use.
	_, err = svc.Confirm(context.Background(), "user-1", dto.ConfirmPlanRequest{ProposalID: resp.ProposalID})
	require.Error(t, err)
}

func TestConfirmContinuesPastFailedSessions(t *testing.T) {
	db, mock, cleanup := newPlannerMockTx(t)
	defer cleanup()

	plans := &mockPlanRepo{pairErrOn: map[int]error{2: sql.ErrConnDone}}
	svc, _ := newTestPlanner(plans, db)

	resp, err := svc.Generate(context.Background(), "user-1", dto.GeneratePlanRequest{
		Subjects: []dto.SubjectConfidenceInput{
			{Subject: "Maths", Label: "low"},
			{Subject: "English", Label: "low"},
			{Subject: "History", Label: "low"},
		},
		Slots: []dto.StudySlotInput{
			{DayOfWeek: 1, SlotCount: 3, SlotDurationMinutes: 45, PreferredStartHour: 16},
		},
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	confirm, err := svc.Confirm(context.Background(), "user-1", dto.ConfirmPlanRequest{ProposalID: resp.ProposalID})
	require.NoError(t, err)
	assert.Equal(t, 2, confirm.Created)
	assert.Equal(t, 1, confirm.Failed)
	require.Len(t, confirm.EventIDs, 3)
	assert.NotEmpty(t, confirm.EventIDs[0])
	assert.Empty(t, confirm.EventIDs[1])
	assert.NotEmpty(t, confirm.EventIDs[2])
	assert.Equal(t, 1, plans.totalsFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmReplaceRetiresActivePlan(t *testing.T) {
	db, mock, cleanup := newPlannerMockTx(t)
	defer cleanup()

	plans := &mockPlanRepo{
		activePlan: &models.StudyPlan{ID: "old-plan", UserID: "user-1", Status: models.PlanActive},
		sessions: []models.StudyPlanSession{
			{ID: "s1", PlanID: "old-plan", CalendarEventID: "ev-1"},
			{ID: "s2", PlanID: "old-plan", CalendarEventID: "ev-2"},
		},
	}
	remover := &mockEventRemover{}
	mirror := &mockEventMirror{}
	svc := NewPlannerService(&mockSubjectReader{}, &mockSlotReader{}, plans, remover, mirror, db, nil, nil, PlannerConfig{})

	resp, err := svc.Generate(context.Background(), "user-1", dto.GeneratePlanRequest{
		Subjects: []dto.SubjectConfidenceInput{{Subject: "Maths", Label: "low"}},
		Slots:    []dto.StudySlotInput{{DayOfWeek: 1, SlotCount: 1, SlotDurationMinutes: 45, PreferredStartHour: 16}},
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	confirm, err := svc.Confirm(context.Background(), "user-1", dto.ConfirmPlanRequest{ProposalID: resp.ProposalID, ReplaceExisting: true})
	require.NoError(t, err)
	assert.Equal(t, 1, confirm.Created)
	require.Len(t, remover.removed, 1)
	assert.Equal(t, []string{"ev-1", "ev-2"}, remover.removed[0])
	assert.Equal(t, []string{"old-plan"}, plans.replacedPlans)
	assert.GreaterOrEqual(t, mirror.invalidated, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmRejectsForeignProposal(t *testing.T) {
	db, _, cleanup := newPlannerMockTx(t)
	defer cleanup()

	svc, _ := newTestPlanner(&mockPlanRepo{}, db)

	resp, err := svc.Generate(context.Background(), "user-1", dto.GeneratePlanRequest{
		Subjects: []dto.SubjectConfidenceInput{{Subject: "Maths", Label: "low"}},
		Slots:    []dto.StudySlotInput{{DayOfWeek: 1, SlotCount: 1, SlotDurationMinutes: 45, PreferredStartHour: 16}},
	})
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), "user-2", dto.ConfirmPlanRequest{ProposalID: resp.ProposalID})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCurrentWithoutActivePlan(t *testing.T) {
	svc, _ := newTestPlanner(&mockPlanRepo{}, nil)

	_, _, err := svc.Current(context.Background(), "user-1")
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestDeleteCascadesAndInvalidatesMirror(t *testing.T) {
	db, mock, cleanup := newPlannerMockTx(t)
	defer cleanup()

	plans := &mockPlanRepo{planByID: &models.StudyPlan{ID: "plan-1", UserID: "user-1"}}
	svc, mirror := newTestPlanner(plans, db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := svc.Delete(context.Background(), "user-1", "plan-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"plan-1"}, plans.deletedPlans)
	assert.Equal(t, 1, mirror.invalidated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApportion(t *testing.T) {
	subjects := []subjectWeight{
		{Subject: "A", Weight: 3},
		{Subject: "B", Weight: 2},
		{Subject: "C", Weight: 1},
	}

	t.Run("exact split", func(t *testing.T) {
		counts := apportion(subjects, 6)
		assert.Equal(t, []int{3, 2, 1}, counts)
	})

	t.Run("fewer sessions than subjects", func(t *testing.T) {
		counts := apportion(subjects, 2)
		assert.Equal(t, []int{1, 1, 0}, counts)
	})

	t.Run("remainders go to largest fractions", func(t *testing.T) {
		counts := apportion(subjects, 7)
		total := 0
		for _, c := range counts {
			total += c
		}
		assert.Equal(t, 7, total)
		assert.GreaterOrEqual(t, counts[0], counts[1])
		assert.GreaterOrEqual(t, counts[1], counts[2])
	})

	t.Run("zero sessions", func(t *testing.T) {
		counts := apportion(subjects, 0)
		assert.Equal(t, []int{0, 0, 0}, counts)
	})
}

func TestInterleaveSpreadsSubjects(t *testing.T) {
	subjects := []subjectWeight{
		{Subject: "A", Weight: 3},
		{Subject: "B", Weight: 2},
	}
	queue := interleave(subjects, []int{3, 2})
	names := make([]string, 0, len(queue))
	for _, sub := range queue {
		names = append(names, sub.Subject)
	}
	assert.Equal(t, []string{"A", "B", "A", "B", "A"}, names)
}

func TestNextOccurrence(t *testing.T) {
	loc := time.UTC
	// Wednesday 2026-01-07 10:00 UTC.
	ref := time.Date(2026, 1, 7, 10, 0, 0, 0, loc)

	t.Run("later the same day", func(t *testing.T) {
		start := nextOccurrence(ref, time.Wednesday, 16, loc)
		assert.Equal(t, time.Date(2026, 1, 7, 16, 0, 0, 0, loc), start)
	})

	t.Run("same day hour already passed", func(t *testing.T) {
		start := nextOccurrence(ref, time.Wednesday, 9, loc)
		assert.Equal(t, time.Date(2026, 1, 14, 9, 0, 0, 0, loc), start)
	})

	t.Run("earlier weekday wraps to next week", func(t *testing.T) {
		start := nextOccurrence(ref, time.Monday, 16, loc)
		assert.Equal(t, time.Date(2026, 1, 12, 16, 0, 0, 0, loc), start)
	})

	t.Run("upcoming weekday", func(t *testing.T) {
		start := nextOccurrence(ref, time.Friday, 8, loc)
		assert.Equal(t, time.Date(2026, 1, 9, 8, 0, 0, 0, loc), start)
	})

	t.Run("out of range hour stays on the weekday", func(t *testing.T) {
		start := nextOccurrence(ref, time.Monday, 24, loc)
		assert.Equal(t, time.Monday, start.Weekday())
		assert.Equal(t, time.Date(2026, 1, 12, 23, 0, 0, 0, loc), start)
	})
}

func TestBuildSessionsEmptyInput(t *testing.T) {
	sessions, share := buildSessions(nil, []slotSpec{{Day: 1, Count: 2, Minutes: 45, StartHour: 16}})
	assert.Empty(t, sessions)
	assert.Empty(t, share)
}
