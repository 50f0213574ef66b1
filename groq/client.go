package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"chatrelay"
)

// Interface compliance check.
var _ chatrelay.Provider = (*Client)(nil)

// Client implements [chatrelay.Provider] for the Groq chat completions API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithModel sets the default model ID used when a request leaves it empty.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new Groq [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream sends a streaming request to the chat completions endpoint and
// returns a [chatrelay.Stream] that emits text deltas.
func (c *Client) Stream(ctx context.Context, req chatrelay.Request) (chatrelay.Stream, error) {
	body, err := c.buildRequestBody(req)
	if err != nil {
		return nil, fmt.Errorf("groq: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("groq: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("groq: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}

	return newStream(ctx, resp.Body), nil
}

func (c *Client) buildRequestBody(req chatrelay.Request) ([]byte, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	apiReq := apiRequest{
		Model:       model,
		Messages:    convertTurns(req.SystemPrompt, req.Turns),
		Stream:      true,
		Temperature: req.Temperature,
	}
	return json.Marshal(apiReq)
}

// convertTurns maps the system prompt and transcript onto the OpenAI message
// shape: the system prompt, when present, leads as a system-role message.
func convertTurns(systemPrompt string, turns []chatrelay.Turn) []apiMessage {
	result := make([]apiMessage, 0, len(turns)+1)
	if systemPrompt != "" {
		result = append(result, apiMessage{Role: "system", Content: systemPrompt})
	}
	for _, t := range turns {
		result = append(result, apiMessage{Role: string(t.Role), Content: t.Text})
	}
	return result
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("groq: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
		return fmt.Errorf("groq: HTTP %d: %s", resp.StatusCode, string(body))
	}
	return fmt.Errorf("groq: %s: %s", apiErr.Error.Type, apiErr.Error.Message)
}
