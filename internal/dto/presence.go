package dto

// HeartbeatRequest registers one open tab for the current user.
type HeartbeatRequest struct {
	TabID string `json:"tab_id" validate:"required"`
}

// HeartbeatResponse flags whether other tabs look active. Advisory only;
// nothing is arbitrated server-side.
type HeartbeatResponse struct {
	MultipleTabs bool `json:"multiple_tabs"`
	ActiveTabs   int  `json:"active_tabs"`
}
