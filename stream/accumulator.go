package stream

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// TokenCounter measures text in model tokens. The tokenizer package provides
// implementations; the interface lives here so the accumulator does not
// depend on any particular one.
type TokenCounter interface {
	CountTokens(text string) (int, error)
}

// Accumulator collects text fragments from a streamed response into one
// final string. It is the text specialization of Iterator: the same
// append/seal discipline applies, and consumers can either read the
// fragments through cursors or wait for the concatenated value.
type Accumulator struct {
	it *Iterator[string]

	mu  sync.Mutex
	buf strings.Builder
}

// NewAccumulator creates an empty, open accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{it: NewIterator[string]()}
}

// NewAccumulatorText creates an open accumulator seeded with initial.
func NewAccumulatorText(initial string) *Accumulator {
	a := NewAccumulator()
	if initial != "" {
		_ = a.Append(initial)
	}
	return a
}

// NewAccumulatorValue creates an accumulator already sealed over value, for
// callers that have the full text up front but hand it to fragment-oriented
// consumers.
func NewAccumulatorValue(value string) *Accumulator {
	a := NewAccumulatorText(value)
	a.Complete()
	return a
}

// Append adds fragment to the accumulated text and publishes it to every
// cursor. It returns ErrAppendToCompleted once the accumulator has been
// sealed; the failed call leaves the accumulated value untouched.
func (a *Accumulator) Append(fragment string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.it.Append(fragment); err != nil {
		return err
	}
	a.buf.WriteString(fragment)
	return nil
}

// Complete seals the accumulator. Idempotent.
func (a *Accumulator) Complete() {
	a.it.Complete()
}

// CompleteWithError seals the accumulator with a terminal error, observed by
// AwaitValue/AwaitJSON callers and by cursors reaching the end.
func (a *Accumulator) CompleteWithError(err error) {
	a.it.CompleteWithError(err)
}

// Completed reports whether the accumulator has been sealed.
func (a *Accumulator) Completed() bool {
	return a.it.Completed()
}

// Value returns the concatenation of all fragments appended so far, in
// order. Before sealing the result is a snapshot, not guaranteed final.
func (a *Accumulator) Value() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buf.String()
}

// AwaitValue blocks until the accumulator is sealed, then returns the final
// value. A terminal error or ctx cancellation is returned instead.
func (a *Accumulator) AwaitValue(ctx context.Context) (string, error) {
	if err := a.it.AwaitCompletion(ctx); err != nil {
		return "", err
	}
	return a.Value(), nil
}

// AwaitJSON blocks until the accumulator is sealed, then parses the final
// value as JSON. It never attempts a partial parse before sealing. A
// malformed final value yields an Error with code ErrParse.
func (a *Accumulator) AwaitJSON(ctx context.Context) (any, error) {
	text, err := a.AwaitValue(ctx)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, newParseError(err)
	}
	return v, nil
}

// NewCursor returns an independent cursor over the fragments, replaying from
// the first one.
func (a *Accumulator) NewCursor() *Cursor[string] {
	return a.it.NewCursor()
}

// CountTokens measures the current snapshot of the accumulated text with tc.
func (a *Accumulator) CountTokens(tc TokenCounter) (int, error) {
	return tc.CountTokens(a.Value())
}
