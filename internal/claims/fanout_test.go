package claims

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect_KeepsInputOrder(t *testing.T) {
	inputs := []int{5, 1, 4, 2, 3, 0}
	results, err := Collect(context.Background(), 0, inputs, func(_ context.Context, in int) int {
		// later inputs finish first
		time.Sleep(time.Duration(in) * 2 * time.Millisecond)
		return in * 10
	})
	require.NoError(t, err)
	assert.Equal(t, []int{50, 10, 40, 20, 30, 0}, results)
}

func TestCollect_Empty(t *testing.T) {
	var calls atomic.Int32
	results, err := Collect(context.Background(), 0, []string{}, func(_ context.Context, in string) string {
		calls.Add(1)
		return in
	})
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Zero(t, calls.Load())
}

func TestCollect_Limit(t *testing.T) {
	var running, peak atomic.Int32
	inputs := make([]int, 20)
	_, err := Collect(context.Background(), 3, inputs, func(_ context.Context, _ int) int {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return 0
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Positive(t, peak.Load())
}

func TestCollect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	defer close(release)

	started := make(chan struct{}, 2)
	done := make(chan struct{})
	var results []int
	var err error
	go func() {
		defer close(done)
		results, err = Collect(ctx, 0, []int{1, 2}, func(_ context.Context, in int) int {
			started <- struct{}{}
			<-release
			return in
		})
	}()

	<-started
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Collect did not return after cancellation")
	}
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}

func TestCollect_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Collect(ctx, 0, []int{1, 2, 3}, func(_ context.Context, in int) int {
		return in
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}
