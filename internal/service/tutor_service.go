package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/athro-ai/athro-study-api/internal/dto"
	"github.com/athro-ai/athro-study-api/pkg/ai"
	appErrors "github.com/athro-ai/athro-study-api/pkg/errors"
)

type chatCompleter interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (*ai.ChatResult, error)
}

type mathRecognizer interface {
	Recognize(ctx context.Context, imageSrc string) (*ai.OCRResult, error)
}

// TutorService proxies tutor conversations and math OCR to the configured
// AI backends. Bodies pass through opaquely; only timeouts and upstream
// failures are translated.
type TutorService struct {
	chat      chatCompleter
	ocr       mathRecognizer
	validator *validator.Validate
	logger    *zap.Logger
	enabled   bool
}

// NewTutorService constructs the service.
func NewTutorService(chat chatCompleter, ocr mathRecognizer, validate *validator.Validate, logger *zap.Logger, enabled bool) *TutorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TutorService{chat: chat, ocr: ocr, validator: validate, logger: logger, enabled: enabled}
}

// Chat forwards a conversation to the completion backend. A subject, when
// given, is prepended as a system prompt so the tutor stays on topic.
func (s *TutorService) Chat(ctx context.Context, req dto.TutorChatRequest) (*dto.TutorChatResponse, error) {
	if !s.enabled || s.chat == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "tutor is disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid chat payload")
	}

	messages := make([]ai.ChatMessage, 0, len(req.Messages)+1)
	if req.Subject != "" {
		messages = append(messages, ai.ChatMessage{
			Role:    "system",
			Content: fmt.Sprintf("You are a GCSE study tutor helping with %s. Keep answers concise and age appropriate.", req.Subject),
		})
	}
	for _, msg := range req.Messages {
		messages = append(messages, ai.ChatMessage{Role: msg.Role, Content: msg.Content})
	}

	result, err := s.chat.Complete(ctx, messages)
	if err != nil {
		s.logger.Warn("tutor chat upstream failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "tutor backend unavailable")
	}

	return &dto.TutorChatResponse{Reply: result.Reply, Usage: result.Usage}, nil
}

// OCR forwards a math image to the recognition backend.
func (s *TutorService) OCR(ctx context.Context, req dto.TutorOCRRequest) (*dto.TutorOCRResponse, error) {
	if !s.enabled || s.ocr == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "tutor is disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ocr payload")
	}

	result, err := s.ocr.Recognize(ctx, req.Src)
	if err != nil {
		s.logger.Warn("math ocr upstream failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "ocr backend unavailable")
	}

	return &dto.TutorOCRResponse{
		Text:        result.Text,
		LatexStyled: result.LatexStyled,
		Confidence:  result.Confidence,
	}, nil
}
