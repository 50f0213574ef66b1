package chatrelay_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatrelay"
	"chatrelay/mock"
)

// scriptedStream returns a mock stream that yields the given deltas in order
// and then terminates with failWith (nil = normal completion). Reply reflects
// the text accumulated so far, matching the partial-reply contract.
func scriptedStream(deltas []string, failWith error) *mock.Stream {
	i := 0
	var buf strings.Builder
	state := chatrelay.StreamStateNew
	return &mock.Stream{
		NextFn: func() (chatrelay.Event, error) {
			if i < len(deltas) {
				d := deltas[i]
				i++
				buf.WriteString(d)
				state = chatrelay.StreamStateStreaming
				return chatrelay.EventTextDelta{Delta: d}, nil
			}
			if failWith != nil {
				state = chatrelay.StreamStateError
				return nil, failWith
			}
			state = chatrelay.StreamStateComplete
			return nil, io.EOF
		},
		StateFn: func() chatrelay.StreamState { return state },
		ReplyFn: func() (chatrelay.Reply, error) {
			stop := chatrelay.StopEndTurn
			if failWith != nil {
				stop = chatrelay.StopError
			}
			return chatrelay.Reply{
				Text:       buf.String(),
				StopReason: stop,
				Usage:      chatrelay.Usage{InputTokens: 7, OutputTokens: 3},
			}, nil
		},
	}
}

func TestRelay_Chat_Success(t *testing.T) {
	t.Parallel()
	store := chatrelay.NewStore()
	id := store.Create()

	var captured chatrelay.Request
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req chatrelay.Request) (chatrelay.Stream, error) {
			captured = req
			return scriptedStream([]string{"Hel", "lo the", "re"}, nil), nil
		},
	}
	relay := chatrelay.NewRelay(provider, store)

	var deltas []string
	reply, err := relay.Chat(context.Background(), chatrelay.ChatParams{
		SessionID: id,
		Prompt:    "Hello",
	}, func(d string) { deltas = append(deltas, d) })
	require.NoError(t, err)

	// Concatenated deltas equal the full reply text.
	assert.Equal(t, []string{"Hel", "lo the", "re"}, deltas)
	assert.Equal(t, "Hello there", reply.Text)
	assert.Equal(t, chatrelay.StopEndTurn, reply.StopReason)

	// The outgoing request ends with the new user turn.
	require.Len(t, captured.Turns, 1)
	assert.Equal(t, chatrelay.UserTurn("Hello"), captured.Turns[0])

	// User and assistant turns committed, in order.
	got := store.Transcript(id)
	require.Len(t, got, 2)
	assert.Equal(t, chatrelay.UserTurn("Hello"), got[0])
	assert.Equal(t, chatrelay.AssistantTurn("Hello there"), got[1])
}

func TestRelay_Chat_PriorTurnsAreContext(t *testing.T) {
	t.Parallel()
	store := chatrelay.NewStore()
	id := store.Create()
	store.Append(id, chatrelay.UserTurn("Hello"), chatrelay.AssistantTurn("Hi!"))

	var captured chatrelay.Request
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req chatrelay.Request) (chatrelay.Stream, error) {
			captured = req
			return scriptedStream([]string{"You said Hello."}, nil), nil
		},
	}
	relay := chatrelay.NewRelay(provider, store)

	_, err := relay.Chat(context.Background(), chatrelay.ChatParams{
		SessionID: id,
		Prompt:    "What did I just say?",
	}, nil)
	require.NoError(t, err)

	require.Len(t, captured.Turns, 3)
	assert.Equal(t, chatrelay.UserTurn("Hello"), captured.Turns[0])
	assert.Equal(t, chatrelay.AssistantTurn("Hi!"), captured.Turns[1])
	assert.Equal(t, chatrelay.UserTurn("What did I just say?"), captured.Turns[2])
}

func TestRelay_Chat_Validation(t *testing.T) {
	t.Parallel()

	badTemp := 3.5
	tests := []struct {
		name   string
		params chatrelay.ChatParams
	}{
		{"missing session id", chatrelay.ChatParams{Prompt: "hi"}},
		{"missing prompt", chatrelay.ChatParams{SessionID: "s1"}},
		{"temperature out of range", chatrelay.ChatParams{SessionID: "s1", Prompt: "hi", Temperature: &badTemp}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := chatrelay.NewStore()
			called := false
			provider := &mock.Provider{
				StreamFn: func(ctx context.Context, req chatrelay.Request) (chatrelay.Stream, error) {
					called = true
					return scriptedStream(nil, nil), nil
				},
			}
			relay := chatrelay.NewRelay(provider, store)

			_, err := relay.Chat(context.Background(), tt.params, nil)
			assert.ErrorIs(t, err, chatrelay.ErrValidation)
			assert.False(t, called, "provider must not be called for invalid input")
			if tt.params.SessionID != "" {
				assert.Empty(t, store.Transcript(tt.params.SessionID))
			}
		})
	}
}

func TestRelay_Chat_SystemPromptOverride(t *testing.T) {
	t.Parallel()

	t.Run("override leads the call and is not persisted", func(t *testing.T) {
		t.Parallel()
		store := chatrelay.NewStore()
		id := store.Create()
		store.Append(id, chatrelay.SystemTurn("persisted prompt"))

		var captured chatrelay.Request
		provider := &mock.Provider{
			StreamFn: func(ctx context.Context, req chatrelay.Request) (chatrelay.Stream, error) {
				captured = req
				return scriptedStream([]string{"ok"}, nil), nil
			},
		}
		relay := chatrelay.NewRelay(provider, store)

		_, err := relay.Chat(context.Background(), chatrelay.ChatParams{
			SessionID:    id,
			Prompt:       "hi",
			SystemPrompt: "call-scoped prompt",
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, "call-scoped prompt", captured.SystemPrompt)
		// Turns carry no system turn.
		for _, turn := range captured.Turns {
			assert.NotEqual(t, chatrelay.RoleSystem, turn.Role)
		}
		// The persisted system turn is untouched.
		got := store.Transcript(id)
		require.NotEmpty(t, got)
		assert.Equal(t, chatrelay.SystemTurn("persisted prompt"), got[0])
	})

	t.Run("persisted system turn used when no override", func(t *testing.T) {
		t.Parallel()
		store := chatrelay.NewStore()
		id := store.Create()
		store.Append(id, chatrelay.SystemTurn("persisted prompt"))

		var captured chatrelay.Request
		provider := &mock.Provider{
			StreamFn: func(ctx context.Context, req chatrelay.Request) (chatrelay.Stream, error) {
				captured = req
				return scriptedStream([]string{"ok"}, nil), nil
			},
		}
		relay := chatrelay.NewRelay(provider, store)

		_, err := relay.Chat(context.Background(), chatrelay.ChatParams{SessionID: id, Prompt: "hi"}, nil)
		require.NoError(t, err)

		assert.Equal(t, "persisted prompt", captured.SystemPrompt)
	})
}

func TestRelay_Chat_GenerationParamsForwarded(t *testing.T) {
	t.Parallel()
	store := chatrelay.NewStore()
	id := store.Create()
	temp := 0.2

	var captured chatrelay.Request
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req chatrelay.Request) (chatrelay.Stream, error) {
			captured = req
			return scriptedStream([]string{"ok"}, nil), nil
		},
	}
	relay := chatrelay.NewRelay(provider, store)

	_, err := relay.Chat(context.Background(), chatrelay.ChatParams{
		SessionID:   id,
		Prompt:      "hi",
		Model:       "llama-3.3-70b-versatile",
		Temperature: &temp,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "llama-3.3-70b-versatile", captured.Model)
	require.NotNil(t, captured.Temperature)
	assert.Equal(t, 0.2, *captured.Temperature)
}

func TestRelay_Chat_ProviderCallFails(t *testing.T) {
	t.Parallel()
	store := chatrelay.NewStore()
	id := store.Create()

	wantErr := errors.New("upstream unreachable")
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req chatrelay.Request) (chatrelay.Stream, error) {
			return nil, wantErr
		},
	}
	relay := chatrelay.NewRelay(provider, store)

	_, err := relay.Chat(context.Background(), chatrelay.ChatParams{SessionID: id, Prompt: "hi"}, nil)
	assert.ErrorIs(t, err, wantErr)
	assert.Empty(t, store.Transcript(id), "no turn committed on failure")
}

func TestRelay_Chat_MidStreamFailure(t *testing.T) {
	t.Parallel()
	store := chatrelay.NewStore()
	id := store.Create()

	wantErr := errors.New("connection reset")
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req chatrelay.Request) (chatrelay.Stream, error) {
			return scriptedStream([]string{"partial ", "output"}, wantErr), nil
		},
	}
	relay := chatrelay.NewRelay(provider, store)

	var deltas []string
	reply, err := relay.Chat(context.Background(), chatrelay.ChatParams{SessionID: id, Prompt: "hi"},
		func(d string) { deltas = append(deltas, d) })

	assert.ErrorIs(t, err, wantErr)
	// Deltas already forwarded stand; the partial reply travels with the error.
	assert.Equal(t, []string{"partial ", "output"}, deltas)
	assert.Equal(t, "partial output", reply.Text)
	// Neither the user nor the assistant turn is committed.
	assert.Empty(t, store.Transcript(id))
}
