package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecognizeParsesResult(t *testing.T) {
	var gotAppID string
	var gotBody ocrRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text", r.URL.Path)
		gotAppID = r.Header.Get("app_id")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_, _ = w.Write([]byte(`{"text":"x^2 + 1","latex_styled":"x^{2}+1","confidence":0.97}`))
	}))
	defer server.Close()

	client := NewOCRClient(OCRClientConfig{BaseURL: server.URL, AppID: "app-1", AppKey: "key-1"})
	result, err := client.Recognize(context.Background(), "data:image/png;base64,abcd")
	require.NoError(t, err)

	assert.Equal(t, "x^2 + 1", result.Text)
	assert.Equal(t, "x^{2}+1", result.LatexStyled)
	assert.InDelta(t, 0.97, result.Confidence, 0.001)
	assert.Equal(t, "app-1", gotAppID)
	assert.Equal(t, "data:image/png;base64,abcd", gotBody.Src)
	assert.Contains(t, gotBody.Formats, "latex_styled")
}

func TestRecognizeSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"image could not be processed"}`))
	}))
	defer server.Close()

	client := NewOCRClient(OCRClientConfig{BaseURL: server.URL})
	_, err := client.Recognize(context.Background(), "data:image/png;base64,abcd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image could not be processed")
}

func TestRecognizeSurfacesHTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewOCRClient(OCRClientConfig{BaseURL: server.URL})
	_, err := client.Recognize(context.Background(), "data:image/png;base64,abcd")
	require.Error(t, err)
}
