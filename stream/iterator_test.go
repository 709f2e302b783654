package stream_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/streamcache/stream"
)

func TestCursorDrainsSealedSequence(t *testing.T) {
	it := stream.NewIterator[string]()
	require.NoError(t, it.Append("First"))
	require.NoError(t, it.Append("Second"))
	require.NoError(t, it.Append("Third"))
	it.Complete()

	ctx := context.Background()
	cursor := it.NewCursor()

	items, err := cursor.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second", "Third"}, items)

	// The cursor is single-pass: it stays at the end.
	_, err = cursor.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestAppendAfterCompleteFails(t *testing.T) {
	it := stream.NewIterator[string]()
	require.NoError(t, it.Append("only"))
	it.Complete()

	err := it.Append("rejected")
	require.Error(t, err)
	assert.ErrorIs(t, err, stream.ErrAppendToCompleted)
	assert.Equal(t, "Cannot append to completed iterator", err.Error())

	var serr *stream.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, stream.ErrIllegalState, serr.Code)

	// The failed append left the sequence untouched.
	assert.Equal(t, []string{"only"}, it.Items())
	assert.Equal(t, 1, it.Len())
}

func TestCompleteIsIdempotent(t *testing.T) {
	it := stream.NewIterator[int]()
	require.NoError(t, it.Append(1))
	it.Complete()
	it.Complete()

	// A later error seal does not overwrite the clean seal.
	it.CompleteWithError(errors.New("too late"))

	assert.True(t, it.Completed())
	assert.NoError(t, it.Err())
	require.NoError(t, it.AwaitCompletion(context.Background()))
}

func TestCompleteWithErrorPropagates(t *testing.T) {
	it := stream.NewIterator[string]()
	require.NoError(t, it.Append("partial"))

	boom := errors.New("upstream exploded")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// A consumer already suspended past the cached items.
	got := make(chan error, 1)
	go func() {
		cursor := it.NewCursor()
		if _, err := cursor.Next(ctx); err != nil {
			got <- err
			return
		}
		_, err := cursor.Next(ctx)
		got <- err
	}()

	time.Sleep(10 * time.Millisecond)
	it.CompleteWithError(boom)

	select {
	case err := <-got:
		assert.ErrorIs(t, err, boom)
	case <-ctx.Done():
		t.Fatal("suspended cursor never observed the terminal error")
	}

	// A late joiner replays the items, then observes the same error.
	late := it.NewCursor()
	item, err := late.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "partial", item)
	_, err = late.Next(ctx)
	assert.ErrorIs(t, err, boom)

	// AwaitCompletion observes it too, now and forever.
	assert.ErrorIs(t, it.AwaitCompletion(ctx), boom)
	assert.ErrorIs(t, it.Err(), boom)
}

func TestLateJoinerReplaysEverything(t *testing.T) {
	it := stream.NewIterator[int]()
	for i := 0; i < 5; i++ {
		require.NoError(t, it.Append(i))
	}

	// Created after five appends, the cursor still starts at item zero.
	cursor := it.NewCursor()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		item, err := cursor.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, item)
	}

	require.NoError(t, it.Append(5))
	it.Complete()

	item, err := cursor.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, item)
	_, err = cursor.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestCursorsObserveIdenticalSequences(t *testing.T) {
	it := stream.NewIterator[int]()
	ctx := context.Background()

	early := it.NewCursor()
	for i := 0; i < 3; i++ {
		require.NoError(t, it.Append(i))
	}
	mid := it.NewCursor()
	for i := 3; i < 6; i++ {
		require.NoError(t, it.Append(i))
	}
	it.Complete()
	late := it.NewCursor()

	want := []int{0, 1, 2, 3, 4, 5}
	for name, cursor := range map[string]*stream.Cursor[int]{
		"early": early, "mid": mid, "late": late,
	} {
		items, err := cursor.Collect(ctx)
		require.NoError(t, err, name)
		assert.Equal(t, want, items, name)
	}
}

func TestAwaitCompletionBlocksUntilSealed(t *testing.T) {
	it := stream.NewIterator[string]()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- it.AwaitCompletion(ctx)
	}()

	// Invoked before any item was appended, it must not return early.
	select {
	case err := <-done:
		t.Fatalf("AwaitCompletion returned before seal: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, it.Append("x"))
	select {
	case err := <-done:
		t.Fatalf("AwaitCompletion returned on append: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	it.Complete()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("AwaitCompletion never returned after seal")
	}
}

func TestEmptySealedIteratorTerminatesImmediately(t *testing.T) {
	it := stream.NewIterator[string]()
	it.Complete()

	ctx := context.Background()
	require.NoError(t, it.AwaitCompletion(ctx))

	items, err := it.NewCursor().Collect(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 0, it.Len())
}

func TestCursorNextUnblocksOnAppend(t *testing.T) {
	it := stream.NewIterator[string]()
	cursor := it.NewCursor()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		item string
		err  error
	}
	got := make(chan result, 1)
	go func() {
		item, err := cursor.Next(ctx)
		got <- result{item, err}
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, it.Append("woken"))

	select {
	case r := <-got:
		require.NoError(t, r.err)
		assert.Equal(t, "woken", r.item)
	case <-ctx.Done():
		t.Fatal("suspended cursor was not woken by append")
	}

	it.Complete()
}

func TestCursorCancelIsSideEffectFree(t *testing.T) {
	it := stream.NewIterator[string]()
	cursor := it.NewCursor()

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := cursor.Next(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	wg.Wait()

	// The abandoned wait had no effect: the cursor picks up the next item.
	require.NoError(t, it.Append("still fine"))
	it.Complete()

	item, err := cursor.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "still fine", item)
	assert.Equal(t, 1, cursor.Position())
}

func TestConcurrentAppendsAreSerialized(t *testing.T) {
	it := stream.NewIterator[int]()

	const writers = 8
	const perWriter = 50
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				assert.NoError(t, it.Append(base+i))
			}
		}(w * perWriter)
	}
	wg.Wait()
	it.Complete()

	items, err := it.NewCursor().Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, items, writers*perWriter)

	// Every value appears exactly once, with no loss or duplication.
	seen := make(map[int]bool, len(items))
	for _, v := range items {
		assert.False(t, seen[v], "duplicate item %d", v)
		seen[v] = true
	}
}
