package groq

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"chatrelay"
)

// stream implements [chatrelay.Stream] by parsing SSE events from an HTTP
// response body.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	ctx     context.Context
	state   chatrelay.StreamState
	reply   chatrelay.Reply
	textBuf strings.Builder
	err     error // terminal error, if any
}

// Interface compliance check.
var _ chatrelay.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	return &stream{
		body:    body,
		scanner: bufio.NewScanner(body),
		ctx:     ctx,
		state:   chatrelay.StreamStateNew,
	}
}

// Next reads the next text delta from the SSE stream.
// Returns io.EOF when the stream completes normally.
func (s *stream) Next() (chatrelay.Event, error) {
	switch s.state {
	case chatrelay.StreamStateComplete:
		return nil, io.EOF
	case chatrelay.StreamStateError:
		return nil, s.err
	case chatrelay.StreamStateClosed:
		return nil, fmt.Errorf("groq: %w", chatrelay.ErrStreamClosed)
	}

	for {
		data, err := s.readSSEData()
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}

		s.state = chatrelay.StreamStateStreaming

		if data == "[DONE]" {
			s.complete()
			return nil, io.EOF
		}

		evt, err := s.processChunk(data)
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}
		if evt != nil {
			return evt, nil
		}
		// Empty delta (role-only chunk, finish chunk) - keep reading.
	}
}

// State returns the current stream state.
func (s *stream) State() chatrelay.StreamState {
	return s.state
}

// Reply returns the assembled reply, partial until the stream completes.
func (s *stream) Reply() (chatrelay.Reply, error) {
	if s.state == chatrelay.StreamStateNew {
		return chatrelay.Reply{}, fmt.Errorf("groq: no data received yet")
	}
	s.reply.Text = s.textBuf.String()
	return s.reply, nil
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if s.state != chatrelay.StreamStateComplete && s.state != chatrelay.StreamStateError {
		s.state = chatrelay.StreamStateClosed
		s.reply.StopReason = chatrelay.StopAborted
		s.reply.RawStopReason = "aborted"
	}
	return s.body.Close()
}

// complete marks normal termination. A missing finish_reason (stream ended
// via [DONE] without one) maps to StopUnknown.
func (s *stream) complete() {
	s.state = chatrelay.StreamStateComplete
	if s.reply.StopReason == "" {
		s.reply.StopReason = chatrelay.StopUnknown
	}
}

// terminate records a terminal error and sets the appropriate state and stop
// reason. Raw EOF before [DONE] means the upstream cut the stream short.
func (s *stream) terminate(err error) {
	if err == io.EOF {
		s.state = chatrelay.StreamStateError
		s.err = fmt.Errorf("groq: unexpected end of stream")
		s.reply.StopReason = chatrelay.StopError
		s.reply.RawStopReason = "error"
		return
	}
	s.state = chatrelay.StreamStateError
	s.err = err
	if s.ctx.Err() != nil {
		s.reply.StopReason = chatrelay.StopAborted
		s.reply.RawStopReason = "aborted"
	} else {
		s.reply.StopReason = chatrelay.StopError
		s.reply.RawStopReason = "error"
	}
}

// readSSEData reads lines until a complete SSE event is assembled and returns
// its data payload. Comments and non-data fields are ignored.
func (s *stream) readSSEData() (string, error) {
	var dataBuf strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			// Empty line signals end of event.
			if dataBuf.Len() > 0 {
				return dataBuf.String(), nil
			}
			// Empty event, keep reading.
			continue
		}

		if strings.HasPrefix(line, "data: ") {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimPrefix(line, "data: "))
		}
		// Ignore comments (lines starting with ':') and unknown fields.
	}

	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("groq: %w", err)
	}

	// Scanner exhausted without error = EOF.
	if dataBuf.Len() > 0 {
		return dataBuf.String(), nil
	}
	return "", io.EOF
}

// processChunk parses one chat.completion.chunk payload. Returns a nil event
// for chunks carrying no content delta.
func (s *stream) processChunk(data string) (chatrelay.Event, error) {
	var chunk apiChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return nil, fmt.Errorf("groq: failed to parse chunk: %w", err)
	}

	if chunk.Error != nil {
		return nil, fmt.Errorf("groq: %s: %s", chunk.Error.Type, chunk.Error.Message)
	}

	if chunk.XGroq != nil {
		s.reply.Usage.InputTokens = chunk.XGroq.Usage.PromptTokens
		s.reply.Usage.OutputTokens = chunk.XGroq.Usage.CompletionTokens
	}

	if len(chunk.Choices) == 0 {
		return nil, nil
	}
	choice := chunk.Choices[0]

	if choice.FinishReason != nil {
		s.reply.RawStopReason = *choice.FinishReason
		s.reply.StopReason = mapStopReason(*choice.FinishReason)
	}

	if choice.Delta.Content == "" {
		return nil, nil
	}
	s.textBuf.WriteString(choice.Delta.Content)
	return chatrelay.EventTextDelta{Delta: choice.Delta.Content}, nil
}

func mapStopReason(raw string) chatrelay.StopReason {
	switch raw {
	case "stop":
		return chatrelay.StopEndTurn
	case "length":
		return chatrelay.StopLength
	default:
		return chatrelay.StopUnknown
	}
}
