package stream

import "context"

// Iterator bridges a push-based producer and any number of pull-based
// consumers over one cached sequence. The producer calls Append and finally
// Complete (or CompleteWithError); each consumer obtains an independent
// Cursor that replays every cached item before following live appends.
//
// All methods are safe for concurrent use. The sequence itself is append-only
// and unbounded for the lifetime of the iterator.
type Iterator[T any] struct {
	log *sealedLog[T]
}

// NewIterator creates an empty, open iterator.
func NewIterator[T any]() *Iterator[T] {
	return &Iterator[T]{log: newSealedLog[T]()}
}

// Append publishes item to every current and future cursor and wakes all
// suspended readers. It returns ErrAppendToCompleted once the iterator has
// been sealed; the failed call does not modify the cached sequence.
func (it *Iterator[T]) Append(item T) error {
	return it.log.append(item)
}

// Complete seals the iterator: cursors terminate cleanly after draining the
// cache and AwaitCompletion returns. Complete is idempotent; calling it on an
// already-sealed iterator is a no-op.
func (it *Iterator[T]) Complete() {
	it.log.seal(nil)
}

// CompleteWithError seals the iterator with a terminal error: every cursor
// reaching the end of the cache and every AwaitCompletion caller, present and
// future, observes err instead of clean termination. A nil err is equivalent
// to Complete. Sealing is first-wins, so after a clean Complete this is a
// no-op.
func (it *Iterator[T]) CompleteWithError(err error) {
	it.log.seal(err)
}

// Completed reports whether the iterator has been sealed.
func (it *Iterator[T]) Completed() bool {
	return it.log.isSealed()
}

// Err returns the terminal error, or nil if the iterator is open or was
// sealed cleanly.
func (it *Iterator[T]) Err() error {
	return it.log.terminalErr()
}

// Len returns the number of items cached so far.
func (it *Iterator[T]) Len() int {
	return it.log.length()
}

// Items returns a copy of the items cached so far.
func (it *Iterator[T]) Items() []T {
	return it.log.snapshot()
}

// NewCursor returns a fresh cursor positioned at the first item. Cursors are
// cheap: they hold only an index into the shared cache, so callers may create
// and abandon as many as they like.
func (it *Iterator[T]) NewCursor() *Cursor[T] {
	return &Cursor[T]{log: it.log}
}

// AwaitCompletion blocks until the iterator is sealed, without consuming
// items. It returns nil on a clean seal, the terminal error if sealed with
// one, or ctx.Err() if ctx is cancelled first.
func (it *Iterator[T]) AwaitCompletion(ctx context.Context) error {
	select {
	case <-it.log.done:
		return it.log.terminalErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}
