package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/athro-ai/athro-study-api/internal/models"
)

// OnboardingRepository persists setup wizard progress.
type OnboardingRepository struct {
	db *sqlx.DB
}

// NewOnboardingRepository constructs the repository.
func NewOnboardingRepository(db *sqlx.DB) *OnboardingRepository {
	return &OnboardingRepository{db: db}
}

// GetByUser returns stored progress for a user. sql.ErrNoRows when the user
// has never started the wizard.
func (r *OnboardingRepository) GetByUser(ctx context.Context, userID string) (*models.OnboardingProgress, error) {
	const query = `SELECT id, user_id, current_step, subjects_done, availability_done, completed, completed_at, created_at, updated_at FROM onboarding_progress WHERE user_id = $1`
	var progress models.OnboardingProgress
	if err := r.db.GetContext(ctx, &progress, query, userID); err != nil {
		return nil, err
	}
	return &progress, nil
}

// Upsert creates or updates the user's progress row.
func (r *OnboardingRepository) Upsert(ctx context.Context, progress *models.OnboardingProgress) error {
	if progress.ID == "" {
		progress.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if progress.CreatedAt.IsZero() {
		progress.CreatedAt = now
	}
	progress.UpdatedAt = now

	const query = `INSERT INTO onboarding_progress (id, user_id, current_step, subjects_done, availability_done, completed, completed_at, created_at, updated_at)
		VALUES (:id, :user_id, :current_step, :subjects_done, :availability_done, :completed, :completed_at, :created_at, :updated_at)
		ON CONFLICT (user_id) DO UPDATE
		SET current_step = EXCLUDED.current_step,
		    subjects_done = EXCLUDED.subjects_done,
		    availability_done = EXCLUDED.availability_done,
		    completed = EXCLUDED.completed,
		    completed_at = EXCLUDED.completed_at,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, progress); err != nil {
		return fmt.Errorf("upsert onboarding progress: %w", err)
	}
	return nil
}
