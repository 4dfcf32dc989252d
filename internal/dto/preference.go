package dto

// PutSubjectPreferencesRequest replaces the user's subject confidence set.
type PutSubjectPreferencesRequest struct {
	Subjects []SubjectConfidenceInput `json:"subjects" validate:"required,min=1,dive"`
}

// PutStudySlotsRequest replaces the user's weekly slot preferences.
// Availability windows, when given instead of explicit slots, are
// normalised into slots server-side.
type PutStudySlotsRequest struct {
	Slots        []StudySlotInput    `json:"slots" validate:"omitempty,dive"`
	Availability []AvailabilityInput `json:"availability" validate:"omitempty,dive"`
}

// AvailabilityInput is a raw day/time window from the onboarding wizard.
type AvailabilityInput struct {
	DayOfWeek int `json:"day_of_week" validate:"min=0,max=6"`
	StartHour int `json:"start_hour" validate:"min=0,max=23"`
	EndHour   int `json:"end_hour" validate:"min=1,max=24"`
}
