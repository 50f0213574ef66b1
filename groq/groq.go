// Package groq implements [chatrelay.Provider] for the Groq chat completions
// API (OpenAI-compatible).
//
// It connects to the streaming endpoint via SSE and emits text deltas through
// the pull-based [chatrelay.Stream] interface. Each SSE event carries a
// chat.completion.chunk JSON payload on a data: line; the literal payload
// [DONE] terminates the stream.
package groq

const (
	defaultBaseURL = "https://api.groq.com"
	defaultModel   = "llama-3.1-8b-instant"
	chatPath       = "/openai/v1/chat/completions"
)

// apiRequest is the JSON body sent to the chat completions endpoint.
type apiRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	Stream      bool         `json:"stream"`
	Temperature *float64     `json:"temperature,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// apiChunk is one chat.completion.chunk SSE payload. Groq attaches usage to
// the final chunk under the x_groq extension field.
type apiChunk struct {
	ID      string      `json:"id"`
	Object  string      `json:"object"`
	Model   string      `json:"model"`
	Choices []apiChoice `json:"choices"`
	XGroq   *apiXGroq   `json:"x_groq,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiChoice struct {
	Index        int      `json:"index"`
	Delta        apiDelta `json:"delta"`
	FinishReason *string  `json:"finish_reason"`
}

type apiDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

type apiXGroq struct {
	ID    string   `json:"id"`
	Usage apiUsage `json:"usage"`
}

type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// apiErrorResponse is the JSON body returned on non-200 HTTP responses.
type apiErrorResponse struct {
	Error apiError `json:"error"`
}
