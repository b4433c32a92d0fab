package reconcile

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSettle_EmptyConvergesImmediately(t *testing.T) {
	calls := 0
	res := Settle(context.Background(), SettleConfig{Tick: time.Hour, Window: time.Hour}, func() Counts {
		calls++
		return Counts{}
	}, nil)

	assert.True(t, res.Converged)
	assert.Equal(t, 0, res.Ticks)
	assert.Equal(t, 1, calls)
}

func TestSettle_StopsWhenAllResolved(t *testing.T) {
	var n atomic.Int32
	poll := func() Counts {
		if n.Add(1) >= 3 {
			return Counts{Total: 2, Indexed: 1, TimedOut: 1}
		}
		return Counts{Total: 2, Indexed: 1}
	}

	res := Settle(context.Background(), SettleConfig{Tick: 5 * time.Millisecond, Window: time.Second}, poll, nil)

	assert.True(t, res.Converged)
	assert.Equal(t, 2, res.Ticks)
	assert.Equal(t, Counts{Total: 2, Indexed: 1, TimedOut: 1}, res.Counts)
}

func TestSettle_WindowBoundsTicks(t *testing.T) {
	poll := func() Counts { return Counts{Total: 1} }

	res := Settle(context.Background(), SettleConfig{Tick: 20 * time.Millisecond, Window: 70 * time.Millisecond}, poll, nil)

	assert.False(t, res.Converged)
	assert.Equal(t, 4, res.Ticks)
	assert.Equal(t, 1, res.Counts.Total)
	assert.Less(t, res.Elapsed, 80*time.Millisecond)
}

func TestSettle_TickLongerThanWindow(t *testing.T) {
	var calls atomic.Int32
	poll := func() Counts {
		calls.Add(1)
		return Counts{Total: 1}
	}

	res := Settle(context.Background(), SettleConfig{Tick: time.Hour, Window: 30 * time.Millisecond}, poll, nil)

	assert.False(t, res.Converged)
	assert.Equal(t, 1, res.Ticks)
	assert.Equal(t, int32(2), calls.Load())
	assert.Less(t, res.Elapsed, time.Second)
}

func TestSettle_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := Settle(ctx, SettleConfig{Tick: time.Hour, Window: time.Hour}, func() Counts { return Counts{Total: 1} }, nil)

	assert.False(t, res.Converged)
	assert.Equal(t, 0, res.Ticks)
}

func TestSettleConfig_Ticks(t *testing.T) {
	assert.Equal(t, 10, DefaultSettle.ticks())
	assert.Equal(t, 0, SettleConfig{Window: time.Second}.ticks())
	assert.Equal(t, 3, SettleConfig{Tick: 4 * time.Second, Window: 10 * time.Second}.ticks())
}
