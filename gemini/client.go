package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"chatrelay"
)

// Interface compliance check.
var _ chatrelay.Provider = (*Client)(nil)

// Client implements [chatrelay.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Stream sends a streaming request to the Gemini API and returns a
// [chatrelay.Stream] that emits text deltas.
func (c *Client) Stream(ctx context.Context, req chatrelay.Request) (chatrelay.Stream, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	iter := c.client.Models.GenerateContentStream(ctx, model, ConvertTurns(req.Turns), buildConfig(req))
	return newStream(ctx, iter), nil
}

func buildConfig(req chatrelay.Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}

// ConvertTurns converts chatrelay Turns to genai Contents. The assistant role
// maps to Gemini's "model" role. Exported for testing.
func ConvertTurns(turns []chatrelay.Turn) []*genai.Content {
	result := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := "user"
		if t.Role == chatrelay.RoleAssistant {
			role = "model"
		}
		result = append(result, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: t.Text}},
		})
	}
	return result
}
