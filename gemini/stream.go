package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"google.golang.org/genai"

	"chatrelay"
)

// stream implements [chatrelay.Stream] by wrapping the genai SDK's streaming
// iterator.
type stream struct {
	pull    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	ctx     context.Context
	state   chatrelay.StreamState
	reply   chatrelay.Reply
	textBuf strings.Builder
	err     error
}

// Interface compliance check.
var _ chatrelay.Stream = (*stream)(nil)

// NewStreamFromIter wraps a genai-style streaming iterator in a
// [chatrelay.Stream]. Exported for testing with scripted iterators.
func NewStreamFromIter(ctx context.Context, iterFn iter.Seq2[*genai.GenerateContentResponse, error]) chatrelay.Stream {
	return newStream(ctx, iterFn)
}

func newStream(ctx context.Context, iterFn iter.Seq2[*genai.GenerateContentResponse, error]) *stream {
	next, stop := iter.Pull2(iterFn)
	return &stream{
		pull:  next,
		stop:  stop,
		ctx:   ctx,
		state: chatrelay.StreamStateNew,
	}
}

// Next pulls the next response chunk and returns its text as a delta.
// Returns io.EOF when the iterator is exhausted.
func (s *stream) Next() (chatrelay.Event, error) {
	switch s.state {
	case chatrelay.StreamStateComplete:
		return nil, io.EOF
	case chatrelay.StreamStateError:
		return nil, s.err
	case chatrelay.StreamStateClosed:
		return nil, fmt.Errorf("gemini: %w", chatrelay.ErrStreamClosed)
	}

	for {
		resp, err, ok := s.pull()
		if !ok {
			s.state = chatrelay.StreamStateComplete
			if s.reply.StopReason == "" {
				s.reply.StopReason = chatrelay.StopUnknown
			}
			return nil, io.EOF
		}
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}

		s.state = chatrelay.StreamStateStreaming

		delta := s.processResponse(resp)
		if delta == "" {
			// Metadata-only chunk - keep pulling.
			continue
		}
		s.textBuf.WriteString(delta)
		return chatrelay.EventTextDelta{Delta: delta}, nil
	}
}

// State returns the current stream state.
func (s *stream) State() chatrelay.StreamState {
	return s.state
}

// Reply returns the assembled reply, partial until the stream completes.
func (s *stream) Reply() (chatrelay.Reply, error) {
	if s.state == chatrelay.StreamStateNew {
		return chatrelay.Reply{}, fmt.Errorf("gemini: no data received yet")
	}
	s.reply.Text = s.textBuf.String()
	return s.reply, nil
}

// Close releases the underlying iterator.
func (s *stream) Close() error {
	if s.state != chatrelay.StreamStateComplete && s.state != chatrelay.StreamStateError {
		s.state = chatrelay.StreamStateClosed
		s.reply.StopReason = chatrelay.StopAborted
		s.reply.RawStopReason = "aborted"
	}
	s.stop()
	return nil
}

func (s *stream) terminate(err error) {
	s.state = chatrelay.StreamStateError
	s.err = fmt.Errorf("gemini: %w", err)
	if s.ctx.Err() != nil {
		s.reply.StopReason = chatrelay.StopAborted
		s.reply.RawStopReason = "aborted"
	} else {
		s.reply.StopReason = chatrelay.StopError
		s.reply.RawStopReason = "error"
	}
}

// processResponse extracts the text delta from a response chunk and records
// usage and finish reason as they become available.
func (s *stream) processResponse(resp *genai.GenerateContentResponse) string {
	if resp.UsageMetadata != nil {
		s.reply.Usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		s.reply.Usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	if len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]

	if cand.FinishReason != "" {
		s.reply.RawStopReason = string(cand.FinishReason)
		s.reply.StopReason = mapFinishReason(cand.FinishReason)
	}

	if cand.Content == nil {
		return ""
	}
	var delta strings.Builder
	for _, part := range cand.Content.Parts {
		if part.Thought {
			continue
		}
		delta.WriteString(part.Text)
	}
	return delta.String()
}

func mapFinishReason(raw genai.FinishReason) chatrelay.StopReason {
	switch raw {
	case genai.FinishReasonStop:
		return chatrelay.StopEndTurn
	case genai.FinishReasonMaxTokens:
		return chatrelay.StopLength
	default:
		return chatrelay.StopUnknown
	}
}
