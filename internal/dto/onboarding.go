package dto

// UpdateOnboardingRequest advances or rewinds the setup wizard.
type UpdateOnboardingRequest struct {
	CurrentStep      string `json:"current_step" validate:"required,oneof=subjects availability review done"`
	SubjectsDone     *bool  `json:"subjects_done"`
	AvailabilityDone *bool  `json:"availability_done"`
}
