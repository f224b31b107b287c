// Package gemini provides the Google Gemini chat provider
package gemini

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/mibolsillo/server/internal/common"
	"github.com/mibolsillo/server/internal/interfaces"
)

const (
	DefaultModel     = "gemini-flash-latest"
	DefaultRateLimit = 2 // requests per second
)

// Replies for provider outcomes that are business answers, not errors.
// These and the error formats are part of the user-visible contract.
const (
	safetyBlockedReply = "(IA): Respuesta bloqueada por seguridad."
	noContentReply     = "(IA): No se pudo generar una respuesta de texto."
)

// Client implements the ChatProvider interface against the Gemini API.
type Client struct {
	client  *genai.Client
	model   string
	logger  *common.Logger
	limiter *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new Gemini chat client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client:  genaiClient,
		model:   DefaultModel,
		logger:  common.NewSilentLogger(),
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// safetyConfig is the fixed safety-filter configuration applied to every
// chat request.
func safetyConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SafetySettings: []*genai.SafetySetting{
			{
				Category:  genai.HarmCategoryHarassment,
				Threshold: genai.HarmBlockThresholdBlockOnlyHigh,
			},
			{
				Category:  genai.HarmCategoryHateSpeech,
				Threshold: genai.HarmBlockThresholdBlockOnlyHigh,
			},
		},
	}
}

// GetChatResponse sends the message to Gemini and normalizes the outcome:
// a safety block or an empty candidate list yields a fixed reply, a
// provider/transport failure yields an error for the caller to surface.
func (c *Client) GetChatResponse(ctx context.Context, message string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	c.logger.Debug().Str("model", c.model).Msg("Generating chat response")

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(message), safetyConfig())
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if len(result.Candidates) == 0 {
		return noContentReply, nil
	}

	candidate := result.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return safetyBlockedReply, nil
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return noContentReply, nil
	}

	text := ""
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	if text == "" {
		return noContentReply, nil
	}
	return text, nil
}

// Ensure Client implements ChatProvider
var _ interfaces.ChatProvider = (*Client)(nil)
