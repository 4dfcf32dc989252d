package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/athro-ai/athro-study-api/internal/models"
)

// CalendarRepository provides database access for persisted calendar events.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository creates a new instance of CalendarRepository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

const eventColumns = `id, user_id, title, subject, topic, description, event_type, start_time, end_time, recurrence_rule, created_at, updated_at`

// List returns events matching the filter ordered by start time.
func (r *CalendarRepository) List(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events WHERE user_id = $1`
	args := []interface{}{filter.UserID}

	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND end_time >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND start_time <= $%d", len(args))
	}
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		args = append(args, pq.Array(types))
		query += fmt.Sprintf(" AND event_type = ANY($%d)", len(args))
	}
	query += " ORDER BY start_time ASC"

	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	return events, nil
}

// GetByID returns a single event scoped to its owner.
func (r *CalendarRepository) GetByID(ctx context.Context, userID, id string) (*models.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events WHERE id = $1 AND user_id = $2 LIMIT 1`
	var event models.CalendarEvent
	if err := r.db.GetContext(ctx, &event, query, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get calendar event: %w", err)
	}
	return &event, nil
}

// Create inserts a new event using the pool connection.
func (r *CalendarRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	return r.create(ctx, r.db, event)
}

// CreateTx inserts a new event inside the caller's transaction.
func (r *CalendarRepository) CreateTx(ctx context.Context, tx sqlx.ExtContext, event *models.CalendarEvent) error {
	return r.create(ctx, tx, event)
}

func (r *CalendarRepository) create(ctx context.Context, ext sqlx.ExtContext, event *models.CalendarEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	const query = `INSERT INTO calendar_events (id, user_id, title, subject, topic, description, event_type, start_time, end_time, recurrence_rule, created_at, updated_at) VALUES (:id, :user_id, :title, :subject, :topic, :description, :event_type, :start_time, :end_time, :recurrence_rule, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, ext, query, event); err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}
	return nil
}

// Update rewrites mutable fields of an event, scoped to its owner.
func (r *CalendarRepository) Update(ctx context.Context, event *models.CalendarEvent) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE calendar_events SET title = :title, subject = :subject, topic = :topic, description = :description, event_type = :event_type, start_time = :start_time, end_time = :end_time, recurrence_rule = :recurrence_rule, updated_at = :updated_at WHERE id = :id AND user_id = :user_id`
	res, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return fmt.Errorf("update calendar event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an event, scoped to its owner.
func (r *CalendarRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM calendar_events WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByIDs bulk-removes events by id for a user. Used when a plan is
// replaced and its generated sessions need clearing.
func (r *CalendarRepository) DeleteByIDs(ctx context.Context, tx sqlx.ExtContext, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) != "" {
			clean = append(clean, id)
		}
	}
	if len(clean) == 0 {
		return nil
	}
	const query = `DELETE FROM calendar_events WHERE user_id = $1 AND id = ANY($2)`
	if _, err := tx.ExecContext(ctx, query, userID, pq.Array(clean)); err != nil {
		return fmt.Errorf("delete calendar events: %w", err)
	}
	return nil
}
