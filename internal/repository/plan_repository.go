package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/athro-ai/athro-study-api/internal/models"
)

// PlanRepository provides database access for study plans and their sessions.
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository creates a new instance of PlanRepository.
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// CreatePlan inserts the plan header inside the caller's transaction.
func (r *PlanRepository) CreatePlan(ctx context.Context, tx sqlx.ExtContext, plan *models.StudyPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now
	if len(plan.Meta) == 0 {
		plan.Meta = []byte("{}")
	}

	const query = `INSERT INTO study_plans (id, user_id, status, total_sessions, failed_count, meta, created_at, updated_at) VALUES (:id, :user_id, :status, :total_sessions, :failed_count, :meta, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, tx, query, plan); err != nil {
		return fmt.Errorf("create study plan: %w", err)
	}
	return nil
}

// CreateSessionPair inserts a calendar event and its linked plan session in
// the caller's transaction. Both rows land or neither does.
func (r *PlanRepository) CreateSessionPair(ctx context.Context, tx sqlx.ExtContext, event *models.CalendarEvent, session *models.StudyPlanSession) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	const eventQuery = `INSERT INTO calendar_events (id, user_id, title, subject, topic, description, event_type, start_time, end_time, recurrence_rule, created_at, updated_at) VALUES (:id, :user_id, :title, :subject, :topic, :description, :event_type, :start_time, :end_time, :recurrence_rule, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, tx, eventQuery, event); err != nil {
		return fmt.Errorf("create session event: %w", err)
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	session.CalendarEventID = event.ID
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}

	const sessionQuery = `INSERT INTO study_plan_sessions (id, plan_id, calendar_event_id, subject, confidence, day_of_week, duration_minutes, created_at) VALUES (:id, :plan_id, :calendar_event_id, :subject, :confidence, :day_of_week, :duration_minutes, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, tx, sessionQuery, session); err != nil {
		return fmt.Errorf("create plan session: %w", err)
	}
	return nil
}

// GetActiveByUser returns the user's active plan, or sql.ErrNoRows.
func (r *PlanRepository) GetActiveByUser(ctx context.Context, userID string) (*models.StudyPlan, error) {
	const query = `SELECT id, user_id, status, total_sessions, failed_count, meta, created_at, updated_at FROM study_plans WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC LIMIT 1`
	var plan models.StudyPlan
	if err := r.db.GetContext(ctx, &plan, query, userID, models.PlanActive); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get active plan: %w", err)
	}
	return &plan, nil
}

// GetByID returns a plan scoped to its owner.
func (r *PlanRepository) GetByID(ctx context.Context, userID, id string) (*models.StudyPlan, error) {
	const query = `SELECT id, user_id, status, total_sessions, failed_count, meta, created_at, updated_at FROM study_plans WHERE id = $1 AND user_id = $2 LIMIT 1`
	var plan models.StudyPlan
	if err := r.db.GetContext(ctx, &plan, query, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return &plan, nil
}

// ListSessionsByPlan returns the sessions of a plan ordered by weekday.
func (r *PlanRepository) ListSessionsByPlan(ctx context.Context, planID string) ([]models.StudyPlanSession, error) {
	const query = `SELECT id, plan_id, calendar_event_id, subject, confidence, day_of_week, duration_minutes, created_at FROM study_plan_sessions WHERE plan_id = $1 ORDER BY day_of_week ASC, created_at ASC`
	var sessions []models.StudyPlanSession
	if err := r.db.SelectContext(ctx, &sessions, query, planID); err != nil {
		return nil, fmt.Errorf("list plan sessions: %w", err)
	}
	return sessions, nil
}

// MarkReplaced flips a plan to the replaced status inside the caller's
// transaction.
func (r *PlanRepository) MarkReplaced(ctx context.Context, tx sqlx.ExtContext, planID string) error {
	const query = `UPDATE study_plans SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, planID, models.PlanReplaced, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark plan replaced: %w", err)
	}
	return nil
}

// UpdateTotals records how many sessions of a plan materialized.
func (r *PlanRepository) UpdateTotals(ctx context.Context, planID string, total, failed int) error {
	const query = `UPDATE study_plans SET total_sessions = $2, failed_count = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, planID, total, failed, time.Now().UTC()); err != nil {
		return fmt.Errorf("update plan totals: %w", err)
	}
	return nil
}

// DeletePlanCascade removes a plan, its sessions and their calendar events
// inside the caller's transaction.
func (r *PlanRepository) DeletePlanCascade(ctx context.Context, tx sqlx.ExtContext, userID, planID string) error {
	const deleteEvents = `DELETE FROM calendar_events WHERE user_id = $1 AND id IN (SELECT calendar_event_id FROM study_plan_sessions WHERE plan_id = $2)`
	if _, err := tx.ExecContext(ctx, deleteEvents, userID, planID); err != nil {
		return fmt.Errorf("delete plan events: %w", err)
	}
	const deleteSessions = `DELETE FROM study_plan_sessions WHERE plan_id = $1`
	if _, err := tx.ExecContext(ctx, deleteSessions, planID); err != nil {
		return fmt.Errorf("delete plan sessions: %w", err)
	}
	const deletePlan = `DELETE FROM study_plans WHERE id = $1 AND user_id = $2`
	if _, err := tx.ExecContext(ctx, deletePlan, planID, userID); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}
