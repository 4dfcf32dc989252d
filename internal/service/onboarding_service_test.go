package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athro-ai/athro-study-api/internal/dto"
	"github.com/athro-ai/athro-study-api/internal/models"
)

type mockOnboardingRepo struct {
	progress *models.OnboardingProgress
	upserted *models.OnboardingProgress
}

func (m *mockOnboardingRepo) GetByUser(ctx context.Context, userID string) (*models.OnboardingProgress, error) {
	if m.progress == nil {
		return nil, sql.ErrNoRows
	}
	return m.progress, nil
}

func (m *mockOnboardingRepo) Upsert(ctx context.Context, progress *models.OnboardingProgress) error {
	m.upserted = progress
	return nil
}

func newTestOnboarding(repo *mockOnboardingRepo, slots *mockSlotRepo) *OnboardingService {
	return NewOnboardingService(repo, slots, nil, nil, OnboardingConfig{})
}

func TestOnboardingGetUnstartedReturnsInitialState(t *testing.T) {
	svc := newTestOnboarding(&mockOnboardingRepo{}, &mockSlotRepo{})

	progress, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepSubjects, progress.CurrentStep)
	assert.False(t, progress.Completed)
}

func TestOnboardingUpdateAdvancesStep(t *testing.T) {
	repo := &mockOnboardingRepo{}
	svc := newTestOnboarding(repo, &mockSlotRepo{})

	done := true
	progress, err := svc.Update(context.Background(), "user-1", dto.UpdateOnboardingRequest{
		CurrentStep:  models.StepAvailability,
		SubjectsDone: &done,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StepAvailability, progress.CurrentStep)
	assert.True(t, progress.SubjectsDone)
	assert.False(t, progress.Completed)
	require.NotNil(t, repo.upserted)
}

func TestOnboardingCompletionSeedsDefaultSlots(t *testing.T) {
	repo := &mockOnboardingRepo{}
	slots := &mockSlotRepo{}
	svc := newTestOnboarding(repo, slots)

	progress, err := svc.Update(context.Background(), "user-1", dto.UpdateOnboardingRequest{CurrentStep: models.StepDone})
	require.NoError(t, err)
	assert.True(t, progress.Completed)
	require.NotNil(t, progress.CompletedAt)

	// Weekday defaults are seeded for a user who never picked slots.
	require.Len(t, slots.replaced, 5)
	assert.Equal(t, 1, slots.replaced[0].DayOfWeek)
	assert.Equal(t, 5, slots.replaced[4].DayOfWeek)
}

func TestOnboardingCompletionKeepsExistingSlots(t *testing.T) {
	repo := &mockOnboardingRepo{}
	slots := &mockSlotRepo{stored: []models.PreferredStudySlot{{DayOfWeek: 6, SlotCount: 1, SlotDurationMinutes: 60, PreferredStartHour: 10}}}
	svc := newTestOnboarding(repo, slots)

	_, err := svc.Update(context.Background(), "user-1", dto.UpdateOnboardingRequest{CurrentStep: models.StepDone})
	require.NoError(t, err)
	assert.Nil(t, slots.replaced)
}

func TestOnboardingCompletionIsIdempotent(t *testing.T) {
	completed := &models.OnboardingProgress{UserID: "user-1", CurrentStep: models.StepDone, Completed: true}
	repo := &mockOnboardingRepo{progress: completed}
	slots := &mockSlotRepo{}
	svc := newTestOnboarding(repo, slots)

	_, err := svc.Update(context.Background(), "user-1", dto.UpdateOnboardingRequest{CurrentStep: models.StepDone})
	require.NoError(t, err)
	// Already completed, so no reseeding happens.
	assert.Nil(t, slots.replaced)
}

func TestOnboardingRejectsUnknownStep(t *testing.T) {
	svc := newTestOnboarding(&mockOnboardingRepo{}, &mockSlotRepo{})

	_, err := svc.Update(context.Background(), "user-1", dto.UpdateOnboardingRequest{CurrentStep: "finished"})
	require.Error(t, err)
}
