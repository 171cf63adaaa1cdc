package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewhaven/brewhaven-backend/pkg/config"
	pkgerrors "github.com/brewhaven/brewhaven-backend/pkg/errors"
	"github.com/brewhaven/brewhaven-backend/pkg/logger"
)

func testConfig(baseURL string) config.GeminiConfig {
	return config.GeminiConfig{
		APIKey:          "test-key",
		BaseURL:         baseURL,
		Model:           "gemini-pro",
		Timeout:         5 * time.Second,
		MaxOutputTokens: 100,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(testConfig(server.URL), logger.NewNop())
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(config.GeminiConfig{BaseURL: "http://localhost"}, logger.NewNop())
	require.ErrorIs(t, err, errAPIKeyRequired)
}

func TestGenerateReply(t *testing.T) {
	var captured generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": "Try our Ethiopian pour-over."}},
				}},
			},
		})
	})

	reply, err := client.GenerateReply(context.Background(), "You are a barista.", []Message{
		{Role: "user", Content: "What should I order?"},
		{Role: "assistant", Content: "Do you prefer hot or iced?"},
		{Role: "user", Content: "Hot, something fruity."},
	})
	require.NoError(t, err)
	assert.Equal(t, "Try our Ethiopian pour-over.", reply)

	require.NotNil(t, captured.SystemInstruction)
	assert.Equal(t, "You are a barista.", captured.SystemInstruction.Parts[0].Text)
	require.Len(t, captured.Contents, 3)
	assert.Equal(t, "user", captured.Contents[0].Role)
	assert.Equal(t, "model", captured.Contents[1].Role)
	assert.Equal(t, "user", captured.Contents[2].Role)
	assert.Equal(t, 100, captured.GenerationConfig.MaxOutputTokens)
}

func TestGenerateReplyErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		apiMessage string
		wantCode   pkgerrors.Code
	}{
		{"rate limited", http.StatusTooManyRequests, "quota exceeded", pkgerrors.CodeRateLimit},
		{"bad request", http.StatusBadRequest, "invalid argument", pkgerrors.CodeValidation},
		{"bad key", http.StatusForbidden, "key invalid", pkgerrors.CodeDependency},
		{"server error", http.StatusInternalServerError, "boom", pkgerrors.CodeDependency},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"code": tc.status, "message": tc.apiMessage},
				})
			})

			_, err := client.GenerateReply(context.Background(), "", []Message{{Role: "user", Content: "hi"}})
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, tc.wantCode, typed.Code())
		})
	}
}

func TestGenerateReplyEmptyCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	_, err := client.GenerateReply(context.Background(), "", []Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestGenerateReplyEmptyHistory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.GenerateReply(context.Background(), "prompt", nil)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
