package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/athro-ai/athro-study-api/internal/models"
)

// SubjectPreferenceRepository persists per-subject confidence ratings.
type SubjectPreferenceRepository struct {
	db *sqlx.DB
}

// NewSubjectPreferenceRepository constructs the repository.
func NewSubjectPreferenceRepository(db *sqlx.DB) *SubjectPreferenceRepository {
	return &SubjectPreferenceRepository{db: db}
}

// ListByUser returns the stored subject preferences ordered by subject name.
func (r *SubjectPreferenceRepository) ListByUser(ctx context.Context, userID string) ([]models.SubjectPreference, error) {
	const query = `SELECT id, user_id, subject, confidence_label, confidence_level, created_at, updated_at FROM student_subject_preferences WHERE user_id = $1 ORDER BY subject ASC`
	var prefs []models.SubjectPreference
	if err := r.db.SelectContext(ctx, &prefs, query, userID); err != nil {
		return nil, fmt.Errorf("list subject preferences: %w", err)
	}
	return prefs, nil
}

// ReplaceForUser swaps the user's full subject set inside one transaction.
// The incoming slice is the new source of truth; anything absent is removed.
func (r *SubjectPreferenceRepository) ReplaceForUser(ctx context.Context, userID string, prefs []models.SubjectPreference) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace subject preferences: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM student_subject_preferences WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear subject preferences: %w", err)
	}

	now := time.Now().UTC()
	const insert = `INSERT INTO student_subject_preferences (id, user_id, subject, confidence_label, confidence_level, created_at, updated_at) VALUES (:id, :user_id, :subject, :confidence_label, :confidence_level, :created_at, :updated_at)`
	for i := range prefs {
		p := &prefs[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.UserID = userID
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, insert, p); err != nil {
			return fmt.Errorf("insert subject preference %s: %w", p.Subject, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit subject preferences: %w", err)
	}
	return nil
}
