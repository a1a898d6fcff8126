package future_test

import (
	"sync"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/fenwick-labs/gensrv/future"
)

func TestFuture_OnCompleteAfterCompletion(t *testing.T) {
	f := future.New(func(complete func(int)) {
		complete(7)
	})

	assert.Equal(t, true, f.Done())

	var got int
	f.OnComplete(func(v int) { got = v })
	assert.Equal(t, 7, got)
}

func TestFuture_OnCompleteBeforeCompletion(t *testing.T) {
	var complete func(string)
	f := future.New(func(c func(string)) {
		complete = c
	})

	var wg sync.WaitGroup
	wg.Add(1)
	var got string
	f.OnComplete(func(v string) {
		got = v
		wg.Done()
	})

	assert.Equal(t, false, f.Done())
	complete("done")
	wg.Wait()
	assert.Equal(t, "done", got)
}

func TestFuture_CompleteIsIdempotent(t *testing.T) {
	var complete func(int)
	f := future.New(func(c func(int)) {
		complete = c
	})

	complete(1)
	complete(2)

	var got int
	f.OnComplete(func(v int) { got = v })
	assert.Equal(t, 1, got)
}

func TestFuture_MultipleCallbacksAllRun(t *testing.T) {
	var complete func(int)
	f := future.New(func(c func(int)) {
		complete = c
	})

	var mu sync.Mutex
	var seen []int
	for i := 0; i < 3; i++ {
		f.OnComplete(func(v int) {
			mu.Lock()
			seen = append(seen, v)
			mu.Unlock()
		})
	}

	complete(42)
	assert.Equal(t, 3, len(seen))
	for _, v := range seen {
		assert.Equal(t, 42, v)
	}
}
