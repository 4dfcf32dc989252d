package models

import "time"

// EventType classifies calendar entries.
type EventType string

const (
	EventStudySession EventType = "study_session"
	EventSuggested    EventType = "suggested"
	EventBlocked      EventType = "blocked"
	EventExam         EventType = "exam"
	EventReminder     EventType = "reminder"
)

// EventSource identifies which layer of the merge view an event came from.
type EventSource string

const (
	SourceRemote    EventSource = "remote"
	SourceLocal     EventSource = "local"
	SourceSuggested EventSource = "suggested"
)

// CalendarEvent is a single concrete, dated study block (or other entry).
// Overlapping events for the same user are permitted; no conflict
// resolution is performed.
type CalendarEvent struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Title          string    `db:"title" json:"title"`
	Subject        string    `db:"subject" json:"subject"`
	Topic          *string   `db:"topic" json:"topic,omitempty"`
	Description    string    `db:"description" json:"description"`
	EventType      EventType `db:"event_type" json:"event_type"`
	StartTime      time.Time `db:"start_time" json:"start_time"`
	EndTime        time.Time `db:"end_time" json:"end_time"`
	RecurrenceRule *string   `db:"recurrence_rule" json:"recurrence_rule,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`

	// Source and LocalOnly are populated by the merge view, never persisted.
	Source    EventSource `db:"-" json:"source,omitempty"`
	LocalOnly bool        `db:"-" json:"local_only,omitempty"`
	Suggested bool        `db:"-" json:"suggested,omitempty"`
}

// CalendarFilter narrows down persisted events.
type CalendarFilter struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Types  []EventType
}

// CachedEvent is the wire shape of a locally mirrored event. Timestamps are
// kept as raw strings so malformed cache entries can be skipped rather than
// failing the whole merge.
type CachedEvent struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subject   string `json:"subject"`
	EventType string `json:"event_type"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// SessionMeta is the structured payload serialized into a study session's
// description field.
type SessionMeta struct {
	Subject    string          `json:"subject"`
	Confidence ConfidenceLabel `json:"confidence"`
	Pomodoro   bool            `json:"pomodoro"`
	PlanID     string          `json:"plan_id,omitempty"`
}
