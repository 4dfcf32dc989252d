package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// StudyPlanStatus tracks the lifecycle of a generated plan batch.
type StudyPlanStatus string

const (
	PlanActive   StudyPlanStatus = "active"
	PlanReplaced StudyPlanStatus = "replaced"
)

// StudyPlan groups the calendar events produced by one generation run so a
// later regeneration can remove them in bulk.
type StudyPlan struct {
	ID            string          `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"user_id"`
	Status        StudyPlanStatus `db:"status" json:"status"`
	TotalSessions int             `db:"total_sessions" json:"total_sessions"`
	FailedCount   int             `db:"failed_count" json:"failed_count"`
	Meta          types.JSONText  `db:"meta" json:"meta,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// StudyPlanSession links one generated session to its calendar event.
type StudyPlanSession struct {
	ID              string          `db:"id" json:"id"`
	PlanID          string          `db:"plan_id" json:"plan_id"`
	CalendarEventID string          `db:"calendar_event_id" json:"calendar_event_id"`
	Subject         string          `db:"subject" json:"subject"`
	Confidence      ConfidenceLabel `db:"confidence" json:"confidence"`
	DayOfWeek       int             `db:"day_of_week" json:"day_of_week"`
	DurationMinutes int             `db:"duration_minutes" json:"duration_minutes"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}
