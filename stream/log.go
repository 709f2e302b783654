package stream

import "sync"

// sealedLog is the single-writer append log backing every iterator in this
// package. items only grows, sealed flips false→true exactly once, and err is
// set at most once, together with sealing. After the seal nothing changes.
//
// Waiters are woken by closing wake; the channel is replaced under mu on
// every mutation, so a reader that captured wake while holding the lock can
// never miss the append or seal that follows (close-and-replace broadcast).
type sealedLog[T any] struct {
	mu     sync.Mutex
	items  []T
	sealed bool
	err    error

	wake chan struct{} // closed and replaced on every append and on seal
	done chan struct{} // closed exactly once, on seal
}

func newSealedLog[T any]() *sealedLog[T] {
	return &sealedLog[T]{
		wake: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (l *sealedLog[T]) append(item T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sealed {
		return ErrAppendToCompleted
	}
	l.items = append(l.items, item)
	l.broadcastLocked()
	return nil
}

// seal marks the log complete with err as the terminal error (nil for a clean
// end). The first seal wins; every later call is a no-op.
func (l *sealedLog[T]) seal(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sealed {
		return
	}
	l.sealed = true
	l.err = err
	l.broadcastLocked()
	close(l.done)
}

func (l *sealedLog[T]) broadcastLocked() {
	close(l.wake)
	l.wake = make(chan struct{})
}

func (l *sealedLog[T]) isSealed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sealed
}

func (l *sealedLog[T]) length() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func (l *sealedLog[T]) terminalErr() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// snapshot returns a copy of the items appended so far. Consumers never hold
// a reference into the live slice.
func (l *sealedLog[T]) snapshot() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}
