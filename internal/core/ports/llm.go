// internal/core/ports/llm.go
package ports

import "context"

// FinishReason mirrors the provider's completion finish reason. The
// pipeline treats MAX_TOKENS as a first-class retry signal, not an error.
type FinishReason string

const (
	FinishStop      FinishReason = "STOP"
	FinishMaxTokens FinishReason = "MAX_TOKENS"
	FinishSafety    FinishReason = "SAFETY"
	FinishOther     FinishReason = "OTHER"
)

// GenerateRequest is a provider-agnostic chat-completion request
type GenerateRequest struct {
	Prompt          string
	Temperature     float64
	MaxOutputTokens int
}

// GenerateResponse carries the model text plus the finish reason the
// extractor branches on
type GenerateResponse struct {
	Text         string
	FinishReason FinishReason
	TokensUsed   int
}

// LLMClient defines the port for the JSON-producing completion endpoint.
// This interface is implemented by the provider adapter.
type LLMClient interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}
