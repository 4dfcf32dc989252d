package dto

import (
	"time"

	"github.com/athro-ai/athro-study-api/internal/models"
)

// SubjectConfidenceInput names a subject and its self-reported confidence.
// Either Label or Level must be set; Level is bucketed into a label.
type SubjectConfidenceInput struct {
	Subject string `json:"subject" validate:"required"`
	Label   string `json:"confidence_label" validate:"omitempty,oneof=low medium high"`
	Level   int    `json:"confidence_level" validate:"omitempty,min=1,max=10"`
}

// StudySlotInput describes one weekly allocation: N sessions of D minutes
// starting around hour H on the given weekday (0=Sunday .. 6=Saturday).
type StudySlotInput struct {
	DayOfWeek           int `json:"day_of_week" validate:"min=0,max=6"`
	SlotCount           int `json:"slot_count" validate:"required,min=1,max=8"`
	SlotDurationMinutes int `json:"slot_duration_minutes" validate:"required,min=15,max=180"`
	PreferredStartHour  int `json:"preferred_start_hour" validate:"min=0,max=22"`
}

// GeneratePlanRequest asks the planner to build a weekly proposal.
// When Slots is empty the user's stored preferred slots (or system
// defaults) are substituted.
type GeneratePlanRequest struct {
	Subjects []SubjectConfidenceInput `json:"subjects" validate:"required,min=1,dive"`
	Slots    []StudySlotInput         `json:"slots" validate:"omitempty,dive"`
	Pomodoro bool                     `json:"pomodoro"`
	Timezone string                   `json:"timezone"`
}

// SessionDescriptor is one abstract study session before materialization.
type SessionDescriptor struct {
	Subject         string                 `json:"subject"`
	Confidence      models.ConfidenceLabel `json:"confidence"`
	DayOfWeek       int                    `json:"day_of_week"`
	StartHour       int                    `json:"start_hour"`
	DurationMinutes int                    `json:"duration_minutes"`
}

// GeneratePlanResponse returns the proposal preview.
type GeneratePlanResponse struct {
	ProposalID   string              `json:"proposal_id"`
	Sessions     []SessionDescriptor `json:"sessions"`
	SubjectShare map[string]int      `json:"subject_share"`
	RequestedAt  time.Time           `json:"requested_at"`
}

// ConfirmPlanRequest materializes a previously generated proposal.
type ConfirmPlanRequest struct {
	ProposalID      string `json:"proposal_id" validate:"required"`
	ReplaceExisting bool   `json:"replace_existing"`
}

// ConfirmPlanResponse summarises the materialization batch. EventIDs keeps
// positional correspondence with the proposal's sessions; a failed session
// leaves an empty placeholder id.
type ConfirmPlanResponse struct {
	PlanID   string   `json:"plan_id"`
	EventIDs []string `json:"event_ids"`
	Created  int      `json:"created"`
	Failed   int      `json:"failed"`
}
