package sweep

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingSweeper holds every run until release is closed.
type blockingSweeper struct {
	started chan struct{}
	release chan struct{}
	runs    atomic.Int32
}

func newBlockingSweeper() *blockingSweeper {
	return &blockingSweeper{started: make(chan struct{}, 16), release: make(chan struct{})}
}

func (b *blockingSweeper) Run(ctx context.Context) (*Report, error) {
	b.runs.Add(1)
	b.started <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return &Report{ItemsScanned: 1}, nil
}

type heldLease struct{}

func (heldLease) Acquire(context.Context) (func(), bool, error) { return nil, false, nil }

type countingSweeper struct{ runs atomic.Int32 }

func (c *countingSweeper) Run(context.Context) (*Report, error) {
	c.runs.Add(1)
	return &Report{}, nil
}

func TestScheduler_TriggerWhileBusyIsRejected(t *testing.T) {
	sw := newBlockingSweeper()
	s := NewScheduler(sw, time.Hour)

	done := make(chan error, 1)
	go func() {
		_, err := s.Trigger(context.Background())
		done <- err
	}()
	<-sw.started

	_, err := s.Trigger(context.Background())
	assert.ErrorIs(t, err, ErrSweepInProgress)
	assert.True(t, s.Busy())

	close(sw.release)
	require.NoError(t, <-done)
	assert.False(t, s.Busy())
	assert.Equal(t, PhaseIdle, s.State())

	rep, lastErr := s.Last()
	require.NoError(t, lastErr)
	assert.Equal(t, 1, rep.ItemsScanned)
}

func TestScheduler_DropsTicksWhileBusy(t *testing.T) {
	sw := newBlockingSweeper()
	s := NewScheduler(sw, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan error, 1)
	go func() { stopped <- s.Start(ctx, true) }()
	<-sw.started

	require.Eventually(t, func() bool { return s.Dropped() >= 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), sw.runs.Load(), "no second sweep may start while one is running")

	close(sw.release)
	cancel()
	require.NoError(t, <-stopped)
	assert.False(t, s.Busy())
}

func TestScheduler_RunsOnInterval(t *testing.T) {
	sw := &countingSweeper{}
	s := NewScheduler(sw, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = s.Start(ctx, false) }()
	require.Eventually(t, func() bool { return sw.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, s.Runs(), int64(3))
}

func TestScheduler_LeaseHeldSkipsSweep(t *testing.T) {
	sw := &countingSweeper{}
	s := NewScheduler(sw, time.Hour, WithLease(heldLease{}))

	_, err := s.Trigger(context.Background())
	assert.ErrorIs(t, err, ErrLeaseHeld)
	assert.Zero(t, sw.runs.Load())
	assert.Zero(t, s.Runs())
}

func TestScheduler_DefaultInterval(t *testing.T) {
	s := NewScheduler(&countingSweeper{}, 0)
	assert.Equal(t, DefaultInterval, s.Interval())
}

func TestPhaseTracker(t *testing.T) {
	var tr PhaseTracker
	assert.Equal(t, PhaseIdle, tr.Get())
	tr.Set(PhaseReconciling)
	assert.Equal(t, PhaseReconciling, tr.Get())
}

func TestRedisLease_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	_, ok, err := NewRedisLease(client, "", time.Minute).Acquire(context.Background())
	require.Error(t, err)
	assert.False(t, ok)
}

func TestRedisLease_Integration(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Skipping Redis integration test: redis not available")
	}
	key := "slaguard:test:lease:" + time.Now().Format("150405.000000")
	defer client.Del(ctx, key)

	a := NewRedisLease(client, key, time.Minute)
	b := NewRedisLease(client, key, time.Minute)

	release, ok, err := a.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	releaseB, ok, err := b.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// A stale release must not delete the lease now held by b.
	release()
	_, ok, err = a.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	releaseB()
}

func TestLocalLease(t *testing.T) {
	release, ok, err := LocalLease{}.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotPanics(t, release)
}
