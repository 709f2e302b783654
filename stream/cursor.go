package stream

import (
	"context"
	"errors"
	"io"
)

// Cursor is one consumer's read position into a cached sequence. It replays
// every cached item in append order, then suspends between items until the
// producer appends or seals. A cursor never mutates the shared cache and is
// single-pass: the position only moves forward. Dropping a cursor has no
// effect on the producer or on other cursors.
//
// A cursor is not safe for concurrent use by multiple goroutines; create one
// cursor per consumer instead.
type Cursor[T any] struct {
	log *sealedLog[T]
	pos int
}

// Next returns the next item of the sequence, blocking while the sequence is
// open and no item is available yet. Clean termination is reported as io.EOF;
// a terminal error is returned exactly as it was recorded. Cancelling ctx
// abandons the wait with ctx.Err() and no side effects, leaving the cursor
// usable.
func (c *Cursor[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for {
		c.log.mu.Lock()
		if c.pos < len(c.log.items) {
			item := c.log.items[c.pos]
			c.pos++
			c.log.mu.Unlock()
			return item, nil
		}
		if c.log.sealed {
			err := c.log.err
			c.log.mu.Unlock()
			if err != nil {
				return zero, err
			}
			return zero, io.EOF
		}
		// Capture the wake channel before releasing the lock so an append
		// racing with this suspend still wakes us.
		wake := c.log.wake
		c.log.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Position returns the number of items this cursor has consumed.
func (c *Cursor[T]) Position() int {
	return c.pos
}

// Collect drains the cursor until termination and returns the remaining
// items. On clean termination the error is nil; a terminal error or ctx
// cancellation is returned alongside the items read so far.
func (c *Cursor[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for {
		item, err := c.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, err
		}
		out = append(out, item)
	}
}
