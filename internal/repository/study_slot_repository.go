package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/athro-ai/athro-study-api/internal/models"
)

// StudySlotRepository persists preferred weekly study slots.
type StudySlotRepository struct {
	db *sqlx.DB
}

// NewStudySlotRepository constructs the repository.
func NewStudySlotRepository(db *sqlx.DB) *StudySlotRepository {
	return &StudySlotRepository{db: db}
}

// ListByUser returns the user's slots ordered by weekday then start hour.
func (r *StudySlotRepository) ListByUser(ctx context.Context, userID string) ([]models.PreferredStudySlot, error) {
	const query = `SELECT id, user_id, day_of_week, slot_count, slot_duration_minutes, preferred_start_hour, created_at, updated_at FROM preferred_study_slots WHERE user_id = $1 ORDER BY day_of_week ASC, preferred_start_hour ASC`
	var slots []models.PreferredStudySlot
	if err := r.db.SelectContext(ctx, &slots, query, userID); err != nil {
		return nil, fmt.Errorf("list study slots: %w", err)
	}
	return slots, nil
}

// ReplaceForUser swaps the user's slot set inside one transaction.
func (r *StudySlotRepository) ReplaceForUser(ctx context.Context, userID string, slots []models.PreferredStudySlot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace study slots: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM preferred_study_slots WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear study slots: %w", err)
	}

	now := time.Now().UTC()
	const insert = `INSERT INTO preferred_study_slots (id, user_id, day_of_week, slot_count, slot_duration_minutes, preferred_start_hour, created_at, updated_at) VALUES (:id, :user_id, :day_of_week, :slot_count, :slot_duration_minutes, :preferred_start_hour, :created_at, :updated_at)`
	for i := range slots {
		s := &slots[i]
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		s.UserID = userID
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		s.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, insert, s); err != nil {
			return fmt.Errorf("insert study slot day %d: %w", s.DayOfWeek, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit study slots: %w", err)
	}
	return nil
}
