package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/quocanhngo/stillalive/internal/mia"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
	err     error
}

func (r *fakeRunner) Sweep(ctx context.Context) (mia.Report, error) {
	r.calls.Add(1)
	if r.entered != nil {
		r.entered <- struct{}{}
	}
	if r.release != nil {
		<-r.release
	}
	return mia.Report{Users: 1}, r.err
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestNextRun(t *testing.T) {
	at := time.Date(2026, 3, 4, 9, 17, 42, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC), NextRun(at, time.Hour))

	top := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC), NextRun(top, time.Hour))

	assert.Equal(t, time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC), NextRun(at, 15*time.Minute))
}

func TestRunOnce(t *testing.T) {
	r := &fakeRunner{}
	s := New(r, Options{})

	report, ran, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, report.Users)
	assert.EqualValues(t, 1, r.calls.Load())
}

func TestRunOnce_PropagatesSweepError(t *testing.T) {
	r := &fakeRunner{err: errors.New("list users: connection refused")}
	s := New(r, Options{})

	_, ran, err := s.RunOnce(context.Background())
	assert.True(t, ran)
	assert.Error(t, err)
}

func TestRunOnce_SkipsWhileRunning(t *testing.T) {
	r := &fakeRunner{entered: make(chan struct{}), release: make(chan struct{})}
	s := New(r, Options{})

	done := make(chan bool)
	go func() {
		_, ran, _ := s.RunOnce(context.Background())
		done <- ran
	}()
	<-r.entered

	_, ran, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)

	close(r.release)
	assert.True(t, <-done)
	assert.EqualValues(t, 1, r.calls.Load())
}

func TestRunOnce_SkipsWhenLockHeldElsewhere(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	require.NoError(t, mr.Set(DefaultLockKey, "other-instance"))

	r := &fakeRunner{}
	s := New(r, Options{Locker: NewRedisLocker(rdb, "", time.Minute)})

	_, ran, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Zero(t, r.calls.Load())

	got, err := mr.Get(DefaultLockKey)
	require.NoError(t, err)
	assert.Equal(t, "other-instance", got)
}

func TestRunOnce_ReleasesLock(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	r := &fakeRunner{}
	s := New(r, Options{Locker: NewRedisLocker(rdb, "", time.Minute)})

	_, ran, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, mr.Exists(DefaultLockKey))
}

func TestRedisLocker(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	ctx := context.Background()
	a := NewRedisLocker(rdb, "lock", time.Minute)
	b := NewRedisLocker(rdb, "lock", time.Minute)

	tokenA, ok, err := a.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("lock"))

	_, ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// A stale token must not free someone else's lock.
	require.NoError(t, b.Release(ctx, "not-the-holder"))
	assert.True(t, mr.Exists("lock"))

	require.NoError(t, a.Release(ctx, tokenA))
	assert.False(t, mr.Exists("lock"))

	_, ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_ExpiresAfterTTL(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	ctx := context.Background()
	l := NewRedisLocker(rdb, "lock", time.Minute)

	_, ok, err := l.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	_, ok, err = l.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStart_GuardedAndStopsOnCancel(t *testing.T) {
	started.Store(false)
	t.Cleanup(func() { started.Store(false) })

	r := &fakeRunner{}
	s := New(r, Options{Interval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	assert.ErrorIs(t, New(r, Options{}).Start(ctx), ErrAlreadyStarted)

	require.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.EqualValues(t, 1, r.calls.Load())
}
