package queue_test

import (
	"sync"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/fenwick-labs/gensrv/internal/queue"
)

func TestQueue_FIFO(t *testing.T) {
	q := queue.New[int](0)
	for i := 0; i < 5; i++ {
		assert.Equal(t, true, q.TryEnqueue(i))
	}
	for i := 0; i < 5; i++ {
		v, ok := q.TryPop()
		assert.Equal(t, true, ok)
		assert.Equal(t, i, v)
	}
	_, ok := q.TryPop()
	assert.Equal(t, false, ok)
}

func TestQueue_BoundedTryEnqueueFailsWhenFull(t *testing.T) {
	q := queue.New[int](2)
	assert.Equal(t, true, q.TryEnqueue(1))
	assert.Equal(t, true, q.TryEnqueue(2))
	assert.Equal(t, false, q.TryEnqueue(3))
	assert.Equal(t, 2, q.Len())
}

func TestQueue_BlockingEnqueueWaitsForSpace(t *testing.T) {
	q := queue.New[int](1)
	assert.Equal(t, true, q.TryEnqueue(1))

	done := make(chan struct{})
	go func() {
		assert.Equal(t, true, q.Enqueue(2))
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Enqueue returned before space was freed")
	case <-time.After(20 * time.Millisecond):
	}

	_, ok := q.TryPop()
	assert.Equal(t, true, ok)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue did not unblock after space freed")
	}
}

func TestQueue_BlockingPopWaitsForItem(t *testing.T) {
	q := queue.New[int](0)
	var wg sync.WaitGroup
	wg.Add(1)
	var got int
	var ok bool
	go func() {
		defer wg.Done()
		got, ok = q.BlockingPop()
	}()

	time.Sleep(20 * time.Millisecond)
	q.TryEnqueue(9)
	wg.Wait()

	assert.Equal(t, true, ok)
	assert.Equal(t, 9, got)
}

func TestQueue_CloseUnblocksWaiters(t *testing.T) {
	q := queue.New[int](0)
	var wg sync.WaitGroup
	wg.Add(2)
	var popOK, enqueueOK bool

	go func() {
		defer wg.Done()
		_, popOK = q.BlockingPop()
	}()

	bounded := queue.New[int](1)
	bounded.TryEnqueue(1)
	go func() {
		defer wg.Done()
		enqueueOK = bounded.Enqueue(2)
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()
	bounded.Close()
	wg.Wait()

	assert.Equal(t, false, popOK)
	assert.Equal(t, false, enqueueOK)
	assert.Equal(t, true, q.Closed())
}

func TestQueue_CloseReturnsDiscardedItems(t *testing.T) {
	q := queue.New[int](0)
	q.TryEnqueue(1)
	q.TryEnqueue(2)
	q.TryEnqueue(3)

	discarded := q.Close()
	assert.Equal(t, 3, len(discarded))
	assert.Equal(t, 0, q.Len())

	assert.Equal(t, 0, len(q.Close()))
}

func TestQueue_TryEnqueueFailsOnceClosed(t *testing.T) {
	q := queue.New[int](0)
	q.Close()
	assert.Equal(t, false, q.TryEnqueue(1))
}
