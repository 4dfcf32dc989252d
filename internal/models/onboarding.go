package models

import "time"

// OnboardingProgress tracks how far a student has moved through the setup
// wizard. One row per user.
type OnboardingProgress struct {
	ID               string     `db:"id" json:"id"`
	UserID           string     `db:"user_id" json:"user_id"`
	CurrentStep      string     `db:"current_step" json:"current_step"`
	SubjectsDone     bool       `db:"subjects_done" json:"subjects_done"`
	AvailabilityDone bool       `db:"availability_done" json:"availability_done"`
	Completed        bool       `db:"completed" json:"completed"`
	CompletedAt      *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Known wizard steps, in order.
const (
	StepSubjects     = "subjects"
	StepAvailability = "availability"
	StepReview       = "review"
	StepDone         = "done"
)
