package frameloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_ClockAdvances(t *testing.T) {
	var (
		mu     sync.Mutex
		clocks []float64
		deltas []float64
	)
	l := New(2*time.Millisecond, func(t, dt float64) {
		mu.Lock()
		defer mu.Unlock()
		clocks = append(clocks, t)
		deltas = append(deltas, dt)
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(clocks) >= 5
	}, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatalf("loop did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	sum := 0.0
	for i := range clocks {
		assert.Greater(t, deltas[i], 0.0)
		sum += deltas[i]
		assert.InDelta(t, clocks[i], sum, 1e-9, "t is the running sum of dt")
		if i > 0 {
			assert.Greater(t, clocks[i], clocks[i-1])
		}
	}
}
