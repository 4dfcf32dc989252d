package dto

// TutorChatMessage is one turn of the tutor conversation.
type TutorChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

// TutorChatRequest forwards a conversation to the completion backend.
type TutorChatRequest struct {
	Subject  string             `json:"subject"`
	Messages []TutorChatMessage `json:"messages" validate:"required,min=1,dive"`
}

// TutorChatResponse carries the assistant reply and opaque usage metadata.
type TutorChatResponse struct {
	Reply string         `json:"reply"`
	Usage map[string]any `json:"usage,omitempty"`
}

// TutorOCRRequest submits a math image for recognition. Src is a data URI
// or fetchable URL, passed through opaquely.
type TutorOCRRequest struct {
	Src string `json:"src" validate:"required"`
}

// TutorOCRResponse returns the recognised text.
type TutorOCRResponse struct {
	Text        string  `json:"text"`
	LatexStyled string  `json:"latex_styled,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}
