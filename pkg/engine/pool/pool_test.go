package pool

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunsAllTasks(t *testing.T) {
	p := New(4)
	p.Start(context.Background())

	var counter int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		p.Submit(func(ctx context.Context) {
			defer wg.Done()
			atomic.AddInt64(&counter, 1)
		})
	}
	wg.Wait()
	p.Stop()

	assert.Equal(t, int64(100), atomic.LoadInt64(&counter))
	assert.Equal(t, int64(100), p.Completed())
}

func TestBoundsConcurrency(t *testing.T) {
	p := New(2)
	p.Start(context.Background())

	var active, peak int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		p.Submit(func(ctx context.Context) {
			defer wg.Done()
			n := atomic.AddInt64(&active, 1)
			for {
				old := atomic.LoadInt64(&peak)
				if n <= old || atomic.CompareAndSwapInt64(&peak, old, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt64(&active, -1)
		})
	}
	wg.Wait()
	p.Stop()

	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(2))
}

func TestDefaultsToCPUCount(t *testing.T) {
	p := New(0)
	assert.Equal(t, runtime.GOMAXPROCS(0), p.Workers())

	p = New(-3)
	assert.Equal(t, runtime.GOMAXPROCS(0), p.Workers())
}

func TestTasksSeeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := New(1)
	p.Start(ctx)
	cancel()

	done := make(chan error, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	p.Submit(func(ctx context.Context) {
		defer wg.Done()
		done <- ctx.Err()
	})
	wg.Wait()
	p.Stop()

	assert.Error(t, <-done)
}
