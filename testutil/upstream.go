// =============================================================================
// 🎭 上游测试替身
// =============================================================================
package testutil

import (
	"context"
	"io"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/BaSui01/streamcache/stream"
)

// ScriptedUpstream replays a fixed item sequence, then either ends cleanly or
// fails with FailWith. It counts Recv calls so tests can assert the upstream
// is iterated at most once end-to-end.
type ScriptedUpstream[T any] struct {
	Items []T
	// FailWith, when non-nil, is returned after Items instead of io.EOF.
	FailWith error
	// Delay, when positive, is applied before every Recv result.
	Delay time.Duration

	mu    sync.Mutex
	pos   int
	calls int
}

// NewScriptedUpstream returns an upstream yielding items then a clean end.
func NewScriptedUpstream[T any](items ...T) *ScriptedUpstream[T] {
	return &ScriptedUpstream[T]{Items: items}
}

func (s *ScriptedUpstream[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.pos < len(s.Items) {
		item := s.Items[s.pos]
		s.pos++
		return item, nil
	}
	if s.FailWith != nil {
		return zero, s.FailWith
	}
	return zero, io.EOF
}

// RecvCalls 返回 Recv 被调用的次数
func (s *ScriptedUpstream[T]) RecvCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// ChanUpstream yields items from a channel, ending cleanly when the channel
// is closed. It lets tests control production timing precisely.
type ChanUpstream[T any] struct {
	C <-chan T
}

func (c ChanUpstream[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	select {
	case item, ok := <-c.C:
		if !ok {
			return zero, io.EOF
		}
		return item, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// PacedUpstream rate-limits another upstream, simulating a slow producer.
type PacedUpstream[T any] struct {
	Inner   stream.Upstream[T]
	Limiter *rate.Limiter
}

// NewPacedUpstream paces inner at itemsPerSecond.
func NewPacedUpstream[T any](inner stream.Upstream[T], itemsPerSecond float64) *PacedUpstream[T] {
	return &PacedUpstream[T]{
		Inner:   inner,
		Limiter: rate.NewLimiter(rate.Limit(itemsPerSecond), 1),
	}
}

func (p *PacedUpstream[T]) Recv(ctx context.Context) (T, error) {
	if err := p.Limiter.Wait(ctx); err != nil {
		var zero T
		return zero, err
	}
	return p.Inner.Recv(ctx)
}

var (
	_ stream.Upstream[string] = (*ScriptedUpstream[string])(nil)
	_ stream.Upstream[string] = ChanUpstream[string]{}
	_ stream.Upstream[string] = (*PacedUpstream[string])(nil)
)
