package taskpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDrainsFeedbackTasks(t *testing.T) {
	// each task of value n > 0 submits one follow-up task of value n-1;
	// the pool must keep draining until the whole chain bottoms out.
	p := New[int](4)
	var processed atomic.Int64
	var mu sync.Mutex
	var seen []int

	err := p.Run(context.Background(), []int{3, 3, 3}, func(_ int, task int, feeder Feeder[int]) error {
		processed.Add(1)
		mu.Lock()
		seen = append(seen, task)
		mu.Unlock()
		if task > 0 {
			feeder.Submit(task - 1)
		}
		return nil
	})

	require.NoError(t, err)
	assert.EqualValues(t, 12, processed.Load(), "3 initial tasks, each chaining down to 0, is 4 tasks per chain")
	assert.Len(t, seen, 12)
}

func TestRunPropagatesFirstError(t *testing.T) {
	p := New[int](2)
	boom := errors.New("boom")

	err := p.Run(context.Background(), []int{1, 2, 3, 4}, func(_ int, task int, _ Feeder[int]) error {
		if task == 2 {
			return boom
		}
		return nil
	})

	assert.ErrorIs(t, err, boom)
}

func TestRunWithNoInitialTasksReturnsImmediately(t *testing.T) {
	p := New[int](3)
	called := false
	err := p.Run(context.Background(), nil, func(_ int, _ int, _ Feeder[int]) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestNewClampsNonPositiveWorkers(t *testing.T) {
	p := New[int](0)
	assert.Equal(t, 1, p.workers)
}
