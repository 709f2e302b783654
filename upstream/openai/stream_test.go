package openai

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/openai/openai-go/v3/responses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/streamcache/stream"
)

type scriptedEvents struct {
	events []responses.ResponseStreamEventUnion
	err    error

	pos    int
	closed bool
}

func (s *scriptedEvents) Next() bool {
	if s.pos < len(s.events) {
		s.pos++
		return true
	}
	return false
}

func (s *scriptedEvents) Current() responses.ResponseStreamEventUnion {
	return s.events[s.pos-1]
}

func (s *scriptedEvents) Err() error { return s.err }

func (s *scriptedEvents) Close() error {
	s.closed = true
	return nil
}

func deltaEvent(text string) responses.ResponseStreamEventUnion {
	return responses.ResponseStreamEventUnion{Type: eventOutputTextDelta, Delta: text}
}

func TestRecvYieldsDeltasThenEOF(t *testing.T) {
	up := NewUpstream(&scriptedEvents{events: []responses.ResponseStreamEventUnion{
		{Type: "response.created"},
		deltaEvent("Hello"),
		{Type: "response.in_progress"},
		deltaEvent(" World"),
		{Type: eventCompleted},
	}})

	ctx := context.Background()
	var got []string
	for {
		delta, err := up.Recv(ctx)
		if err != nil {
			assert.ErrorIs(t, err, io.EOF)
			break
		}
		got = append(got, delta)
	}
	assert.Equal(t, []string{"Hello", " World"}, got)

	// Finished streams keep reporting EOF.
	_, err := up.Recv(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestRecvSurfacesErrorEvent(t *testing.T) {
	up := NewUpstream(&scriptedEvents{events: []responses.ResponseStreamEventUnion{
		deltaEvent("partial"),
		{Type: eventError, Code: "rate_limit_exceeded", Message: "slow down"},
	}})

	ctx := context.Background()
	delta, err := up.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "partial", delta)

	_, err = up.Recv(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit_exceeded")
	assert.Contains(t, err.Error(), "slow down")
}

func TestRecvSurfacesFailedResponse(t *testing.T) {
	up := NewUpstream(&scriptedEvents{events: []responses.ResponseStreamEventUnion{
		{Type: eventFailed, Response: responses.Response{Status: "failed"}},
	}})

	_, err := up.Recv(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=failed")
}

func TestRecvSurfacesTransportError(t *testing.T) {
	boom := errors.New("connection reset by peer")
	up := NewUpstream(&scriptedEvents{
		events: []responses.ResponseStreamEventUnion{deltaEvent("x")},
		err:    boom,
	})

	ctx := context.Background()
	_, err := up.Recv(ctx)
	require.NoError(t, err)

	_, err = up.Recv(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestCloseIsIdempotent(t *testing.T) {
	events := &scriptedEvents{}
	up := NewUpstream(events)

	require.NoError(t, up.Close())
	require.NoError(t, up.Close())
	assert.True(t, events.closed)

	_, err := up.Recv(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestUpstreamFeedsSource(t *testing.T) {
	up := NewUpstream(&scriptedEvents{events: []responses.ResponseStreamEventUnion{
		deltaEvent("a"),
		deltaEvent("b"),
		deltaEvent("c"),
		{Type: eventCompleted},
	}})
	src := stream.NewSource[string](up)

	ctx := context.Background()
	first, err := src.NewCursor().Collect(ctx)
	require.NoError(t, err)
	second, err := src.NewCursor().Collect(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, first)
	assert.Equal(t, first, second)
}
