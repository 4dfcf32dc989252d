package dto

import "time"

// CreateEventRequest adds a user-authored calendar event.
type CreateEventRequest struct {
	Title          string    `json:"title" validate:"required"`
	Subject        string    `json:"subject"`
	Topic          *string   `json:"topic"`
	Description    string    `json:"description"`
	EventType      string    `json:"event_type" validate:"required,oneof=study_session blocked exam reminder"`
	StartTime      time.Time `json:"start_time" validate:"required"`
	EndTime        time.Time `json:"end_time" validate:"required"`
	RecurrenceRule *string   `json:"recurrence_rule"`
}

// UpdateEventRequest modifies an existing event.
type UpdateEventRequest struct {
	Title          string    `json:"title" validate:"required"`
	Subject        string    `json:"subject"`
	Topic          *string   `json:"topic"`
	Description    string    `json:"description"`
	EventType      string    `json:"event_type" validate:"required,oneof=study_session blocked exam reminder"`
	StartTime      time.Time `json:"start_time" validate:"required"`
	EndTime        time.Time `json:"end_time" validate:"required"`
	RecurrenceRule *string   `json:"recurrence_rule"`
}

// EventRangeQuery selects the merge window.
type EventRangeQuery struct {
	From time.Time `form:"from" time_format:"2006-01-02"`
	To   time.Time `form:"to" time_format:"2006-01-02"`
}

// DayQuery selects a single civil date.
type DayQuery struct {
	Date     string `form:"date" validate:"required"`
	Timezone string `form:"tz"`
}
