// internal/adapters/gemini/client_test.go
package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilalmachraa82/propdocs/internal/core/ports"
	"github.com/bilalmachraa82/propdocs/test/helpers"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Config{
		APIKey:            "test-key",
		Model:             "gemini-1.5-flash",
		BaseURL:           server.URL,
		RequestsPerSecond: 1000,
		Burst:             1000,
	}, helpers.TestLogger())
}

func TestClient_Generate(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateContentRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")

		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"candidates": [{
				"content": {"parts": [{"text": "{\"guestName\":"}, {"text": "\"Maria\"}"}]},
				"finishReason": "STOP"
			}],
			"usageMetadata": {"totalTokenCount": 321}
		}`)
	})

	resp, err := client.Generate(context.Background(), ports.GenerateRequest{
		Prompt:          "extract the reservation",
		Temperature:     0.1,
		MaxOutputTokens: 1024,
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "extract the reservation", gotBody.Contents[0].Parts[0].Text)
	assert.Equal(t, 1024, gotBody.GenerationConfig.MaxOutputTokens)

	// Multi-part candidates are concatenated.
	assert.Equal(t, `{"guestName":"Maria"}`, resp.Text)
	assert.Equal(t, ports.FinishStop, resp.FinishReason)
	assert.Equal(t, 321, resp.TokensUsed)
}

func TestClient_Generate_MaxTokensIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"candidates": [{
				"content": {"parts": [{"text": "{\"guestName\":\"Mar"}]},
				"finishReason": "MAX_TOKENS"
			}]
		}`)
	})

	resp, err := client.Generate(context.Background(), ports.GenerateRequest{Prompt: "p"})
	require.NoError(t, err)

	assert.Equal(t, ports.FinishMaxTokens, resp.FinishReason)
	assert.NotEmpty(t, resp.Text)
}

func TestClient_Generate_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error": {"code": 429, "message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"}}`)
	})

	_, err := client.Generate(context.Background(), ports.GenerateRequest{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestClient_Generate_NonJSONErrorPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html>502 Bad Gateway</html>")
	})

	_, err := client.Generate(context.Background(), ports.GenerateRequest{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_Generate_NoCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"candidates": []}`)
	})

	_, err := client.Generate(context.Background(), ports.GenerateRequest{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestClient_Generate_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"candidates": []}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Generate(ctx, ports.GenerateRequest{Prompt: "p"})
	assert.Error(t, err)
}

func TestMapFinishReason(t *testing.T) {
	tests := []struct {
		in   string
		want ports.FinishReason
	}{
		{"STOP", ports.FinishStop},
		{"stop", ports.FinishStop},
		{"", ports.FinishStop},
		{"MAX_TOKENS", ports.FinishMaxTokens},
		{"SAFETY", ports.FinishSafety},
		{"RECITATION", ports.FinishSafety},
		{"OTHER", ports.FinishOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapFinishReason(tt.in), tt.in)
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{APIKey: "k"}
	cfg.applyDefaults()

	assert.Equal(t, "gemini-1.5-flash", cfg.Model)
	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.BaseURL)
	assert.NotZero(t, cfg.CallTimeout)
	assert.NotZero(t, cfg.RequestsPerSecond)
	assert.NotZero(t, cfg.Burst)
}
