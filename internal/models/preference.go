package models

import "time"

// ConfidenceLabel is a coarse self-reported competence rating. Lower
// confidence subjects are allocated more weekly study sessions.
type ConfidenceLabel string

const (
	ConfidenceLow    ConfidenceLabel = "low"
	ConfidenceMedium ConfidenceLabel = "medium"
	ConfidenceHigh   ConfidenceLabel = "high"
)

// Weight returns the allocation weight for a label. Low confidence weighs
// heaviest so it receives the largest share of sessions.
func (l ConfidenceLabel) Weight() int {
	switch l {
	case ConfidenceLow:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceHigh:
		return 1
	default:
		return 2
	}
}

// Valid reports whether the label is one of the known values.
func (l ConfidenceLabel) Valid() bool {
	switch l {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}
	return false
}

// LabelFromLevel buckets a numeric 1..10 self-rating into a label.
// 1-3 low, 4-7 medium, 8-10 high.
func LabelFromLevel(level int) ConfidenceLabel {
	switch {
	case level <= 0:
		return ConfidenceMedium
	case level <= 3:
		return ConfidenceLow
	case level <= 7:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

// SubjectPreference stores a student's confidence rating for one subject.
type SubjectPreference struct {
	ID              string          `db:"id" json:"id"`
	UserID          string          `db:"user_id" json:"user_id"`
	Subject         string          `db:"subject" json:"subject"`
	ConfidenceLabel ConfidenceLabel `db:"confidence_label" json:"confidence_label"`
	ConfidenceLevel int             `db:"confidence_level" json:"confidence_level"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// Availability is a raw day/time window a student is willing to study in.
// It is collected during onboarding and normalised into PreferredStudySlot
// rows before generation.
type Availability struct {
	DayOfWeek int `json:"day_of_week"`
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// PreferredStudySlot describes a recurring weekly allocation: on this day,
// place SlotCount sessions of SlotDurationMinutes starting around
// PreferredStartHour.
type PreferredStudySlot struct {
	ID                  string    `db:"id" json:"id"`
	UserID              string    `db:"user_id" json:"user_id"`
	DayOfWeek           int       `db:"day_of_week" json:"day_of_week"`
	SlotCount           int       `db:"slot_count" json:"slot_count"`
	SlotDurationMinutes int       `db:"slot_duration_minutes" json:"slot_duration_minutes"`
	PreferredStartHour  int       `db:"preferred_start_hour" json:"preferred_start_hour"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}
