package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OCRResult is the recognized content of a math image.
type OCRResult struct {
	Text        string
	LatexStyled string
	Confidence  float64
}

// OCRClientConfig configures the math recognition endpoint.
type OCRClientConfig struct {
	BaseURL string
	AppID   string
	AppKey  string
	Timeout time.Duration
}

// OCRClient calls a Mathpix-compatible text recognition API.
type OCRClient struct {
	baseURL string
	appID   string
	appKey  string
	http    *http.Client
}

// NewOCRClient constructs a math OCR client.
func NewOCRClient(cfg OCRClientConfig) *OCRClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &OCRClient{
		baseURL: cfg.BaseURL,
		appID:   cfg.AppID,
		appKey:  cfg.AppKey,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type ocrRequest struct {
	Src     string   `json:"src"`
	Formats []string `json:"formats"`
}

type ocrResponse struct {
	Text        string  `json:"text"`
	LatexStyled string  `json:"latex_styled"`
	Confidence  float64 `json:"confidence"`
	Error       string  `json:"error"`
}

// Recognize submits a data-URI or URL image source and returns the parsed text.
func (c *OCRClient) Recognize(ctx context.Context, imageSrc string) (*OCRResult, error) {
	payload, err := json.Marshal(ocrRequest{Src: imageSrc, Formats: []string{"text", "latex_styled"}})
	if err != nil {
		return nil, fmt.Errorf("encode ocr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/text", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("app_id", c.appID)
	req.Header.Set("app_key", c.appKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call math ocr: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read ocr response: %w", err)
	}

	var parsed ocrResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode ocr response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("math ocr returned status %d", resp.StatusCode)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("math ocr: %s", parsed.Error)
	}

	return &OCRResult{Text: parsed.Text, LatexStyled: parsed.LatexStyled, Confidence: parsed.Confidence}, nil
}
