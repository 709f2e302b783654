package openai

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/openai/openai-go/v3/responses"

	"github.com/BaSui01/streamcache/stream"
)

const (
	eventOutputTextDelta = "response.output_text.delta"
	eventCompleted       = "response.completed"
	eventFailed          = "response.failed"
	eventError           = "error"
)

// EventStream is the minimal read-only view of the SDK response stream,
// narrow enough for tests to script events.
type EventStream interface {
	Next() bool
	Current() responses.ResponseStreamEventUnion
	Err() error
	Close() error
}

// Upstream adapts an OpenAI Responses event stream into the text-delta pull
// interface consumed by stream.Source. A clean completion surfaces as io.EOF.
type Upstream struct {
	mu       sync.Mutex
	stream   EventStream
	closed   bool
	finished bool
}

// NewUpstream wraps an already-open event stream.
func NewUpstream(s EventStream) *Upstream {
	return &Upstream{stream: s}
}

// Recv returns the next non-empty text delta from the response stream.
func (u *Upstream) Recv(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", fmt.Errorf("openai upstream recv: nil context")
	}

	for {
		if err := ctx.Err(); err != nil {
			_ = u.Close()
			return "", fmt.Errorf("openai upstream recv context: %w", err)
		}

		event, err := u.nextEvent()
		if err != nil {
			return "", err
		}

		delta, done, mapErr := mapEvent(event)
		if mapErr != nil {
			return "", mapErr
		}
		if done {
			u.markFinished()
			return "", io.EOF
		}
		if delta == "" {
			continue
		}
		return delta, nil
	}
}

// Close releases the underlying SDK stream. Safe to call more than once.
func (u *Upstream) Close() error {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return nil
	}
	u.closed = true
	u.finished = true
	s := u.stream
	u.stream = nil
	u.mu.Unlock()

	if s == nil {
		return nil
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("openai upstream close: %w", err)
	}
	return nil
}

func (u *Upstream) nextEvent() (responses.ResponseStreamEventUnion, error) {
	u.mu.Lock()
	if u.closed || u.finished {
		u.mu.Unlock()
		return responses.ResponseStreamEventUnion{}, io.EOF
	}
	s := u.stream
	if s == nil {
		u.finished = true
		u.mu.Unlock()
		return responses.ResponseStreamEventUnion{}, io.EOF
	}

	if !s.Next() {
		u.finished = true
		err := s.Err()
		u.mu.Unlock()
		if err == nil {
			return responses.ResponseStreamEventUnion{}, io.EOF
		}
		return responses.ResponseStreamEventUnion{}, fmt.Errorf("openai upstream next: %w", err)
	}

	event := s.Current()
	u.mu.Unlock()
	return event, nil
}

func (u *Upstream) markFinished() {
	u.mu.Lock()
	u.finished = true
	u.mu.Unlock()
}

// mapEvent extracts the text delta from one stream event. done reports a
// clean end of the response.
func mapEvent(event responses.ResponseStreamEventUnion) (delta string, done bool, err error) {
	switch strings.TrimSpace(event.Type) {
	case eventOutputTextDelta:
		return event.Delta, false, nil
	case eventCompleted:
		return "", true, nil
	case eventFailed:
		status := strings.TrimSpace(string(event.Response.Status))
		if status == "" {
			status = "unknown"
		}
		return "", false, fmt.Errorf("openai upstream response failed: status=%s", status)
	case eventError:
		message := strings.TrimSpace(event.Message)
		if message == "" {
			message = "unknown error"
		}
		if code := strings.TrimSpace(event.Code); code != "" {
			return "", false, fmt.Errorf("openai upstream error %s: %s", code, message)
		}
		return "", false, fmt.Errorf("openai upstream error: %s", message)
	default:
		// Non-text events (created, in_progress, output_item deltas for
		// other modalities) are skipped.
		return "", false, nil
	}
}

var _ stream.Upstream[string] = (*Upstream)(nil)
