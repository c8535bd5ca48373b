package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psychometric-workers/internal/common/logger"
	"psychometric-workers/internal/psychometric"
	"psychometric-workers/internal/psychometric/psychometrictest"
)

func setupCache(t *testing.T) (*CachedStore, *psychometrictest.MemoryStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	mem := psychometrictest.NewMemoryStore()
	c, err := NewCachedStore(mem, rdb, 16, time.Hour, logger.NewTestLogger(t))
	require.NoError(t, err)
	return c, mem, mr
}

func seedProfile(t *testing.T, s psychometric.Store, name string) {
	t.Helper()
	ev := testEvaluation()
	ev.UserName = name
	_, _, err := s.UpsertProfile(context.Background(), "u1", psychometric.Entrepreneur, mergeWith(ev))
	require.NoError(t, err)
}

func TestNewCachedStore_RejectsBadSize(t *testing.T) {
	_, err := NewCachedStore(psychometrictest.NewMemoryStore(), nil, 0, time.Hour, logger.NewNoOpLogger())
	assert.Error(t, err)
}

func TestCachedStore_ProfileReadThrough(t *testing.T) {
	c, mem, mr := setupCache(t)
	ctx := context.Background()
	key := profileKey("u1", psychometric.Entrepreneur)

	_, err := c.GetProfile(ctx, "u1", psychometric.Entrepreneur)
	assert.ErrorIs(t, err, psychometric.ErrNotFound)
	assert.False(t, mr.Exists(key), "misses are not cached")

	seedProfile(t, mem, "Ada")
	p, err := c.GetProfile(ctx, "u1", psychometric.Entrepreneur)
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.UserName)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))

	// a write behind the cache's back is not seen until invalidation
	seedProfile(t, mem, "Grace")
	p, err = c.GetProfile(ctx, "u1", psychometric.Entrepreneur)
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.UserName)
}

func TestCachedStore_WritesInvalidateProfile(t *testing.T) {
	c, _, mr := setupCache(t)
	ctx := context.Background()
	key := profileKey("u1", psychometric.Entrepreneur)

	seedProfile(t, c, "Ada")
	_, err := c.GetProfile(ctx, "u1", psychometric.Entrepreneur)
	require.NoError(t, err)
	require.True(t, mr.Exists(key))

	seedProfile(t, c, "Grace")
	assert.False(t, mr.Exists(key))
	p, err := c.GetProfile(ctx, "u1", psychometric.Entrepreneur)
	require.NoError(t, err)
	assert.Equal(t, "Grace", p.UserName)

	n, err := c.AppendHistory(ctx, "u1", psychometric.Entrepreneur, psychometric.Engagement{Name: "Food truck", RecordedAt: later})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, mr.Exists(key))

	p, err = c.GetProfile(ctx, "u1", psychometric.Entrepreneur)
	require.NoError(t, err)
	require.Len(t, p.History, 1)
}

// writeDuringRead runs onRead once, after the profile row is read and
// before GetProfile returns.
type writeDuringRead struct {
	psychometric.Store
	onRead func()
}

func (w *writeDuringRead) GetProfile(ctx context.Context, userID string, t psychometric.AssessmentType) (*psychometric.Profile, error) {
	p, err := w.Store.GetProfile(ctx, userID, t)
	if w.onRead != nil {
		hook := w.onRead
		w.onRead = nil
		hook()
	}
	return p, err
}

func TestCachedStore_ConcurrentWriteNotOverwrittenByStaleRead(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	mem := psychometrictest.NewMemoryStore()
	seedProfile(t, mem, "Ada")
	racer := &writeDuringRead{Store: mem}
	c, err := NewCachedStore(racer, rdb, 4, time.Hour, logger.NewTestLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name  string
		write func()
		check func(t *testing.T, p *psychometric.Profile)
	}{
		{
			name:  "upsert",
			write: func() { seedProfile(t, c, "Grace") },
			check: func(t *testing.T, p *psychometric.Profile) { assert.Equal(t, "Grace", p.UserName) },
		},
		{
			name: "append history",
			write: func() {
				_, err := c.AppendHistory(ctx, "u1", psychometric.Entrepreneur, psychometric.Engagement{Name: "Food truck", RecordedAt: later})
				require.NoError(t, err)
			},
			check: func(t *testing.T, p *psychometric.Profile) { assert.Len(t, p.History, 1) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := profileKey("u1", psychometric.Entrepreneur)
			mr.Del(key)
			racer.onRead = tt.write

			_, err := c.GetProfile(ctx, "u1", psychometric.Entrepreneur)
			require.NoError(t, err)
			assert.False(t, mr.Exists(key), "stale read must not fill the cache")

			p, err := c.GetProfile(ctx, "u1", psychometric.Entrepreneur)
			require.NoError(t, err)
			tt.check(t, p)
			assert.True(t, mr.Exists(key))
		})
	}
}

func TestCachedStore_WriteBumpsProfileVersion(t *testing.T) {
	c, _, mr := setupCache(t)
	verKey := profileVerKey("u1", psychometric.Entrepreneur)

	seedProfile(t, c, "Ada")
	seedProfile(t, c, "Grace")

	v, err := mr.Get(verKey)
	require.NoError(t, err)
	assert.Equal(t, "2", v)
	assert.Equal(t, profileVerTTL, mr.TTL(verKey))
}

func TestCachedStore_FailedWriteKeepsCache(t *testing.T) {
	c, mem, mr := setupCache(t)
	ctx := context.Background()
	key := profileKey("u1", psychometric.Entrepreneur)

	seedProfile(t, c, "Ada")
	_, err := c.GetProfile(ctx, "u1", psychometric.Entrepreneur)
	require.NoError(t, err)

	mem.Err = errors.New("disk full")
	_, _, err = c.UpsertProfile(ctx, "u1", psychometric.Entrepreneur, mergeWith(testEvaluation()))
	assert.Error(t, err)
	assert.True(t, mr.Exists(key))
}

func TestCachedStore_AssessmentLayers(t *testing.T) {
	c, _, mr := setupCache(t)
	ctx := context.Background()
	a := psychometrictest.TwoQuestionAssessment()

	require.NoError(t, c.SaveAssessment(ctx, "u1", a))
	assert.True(t, mr.Exists(assessmentKey(a.AssessmentID)))
	assert.Equal(t, assessmentTTL, mr.TTL(assessmentKey(a.AssessmentID)))

	// LRU serves it with Redis gone
	mr.FlushAll()
	got, err := c.GetAssessment(ctx, a.AssessmentID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	// a second process with an empty LRU and empty store reads Redis
	require.NoError(t, c.SaveAssessment(ctx, "u1", a))
	other, err := NewCachedStore(psychometrictest.NewMemoryStore(), c.redis, 4, time.Hour, logger.NewNoOpLogger())
	require.NoError(t, err)
	got, err = other.GetAssessment(ctx, a.AssessmentID)
	require.NoError(t, err)
	assert.Len(t, got.Questions, 2)

	_, err = other.GetAssessment(ctx, "unknown")
	assert.ErrorIs(t, err, psychometric.ErrNotFound)
}

func TestCachedStore_RedisErrorsAreMisses(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mem := psychometrictest.NewMemoryStore()
	seedProfile(t, mem, "Ada")

	c, err := NewCachedStore(mem, db, 4, time.Hour, logger.NewTestLogger(t))
	require.NoError(t, err)

	key := profileKey("u1", psychometric.Entrepreneur)
	mock.ExpectGet(key).SetErr(errors.New("connection reset"))
	mock.ExpectGet(profileVerKey("u1", psychometric.Entrepreneur)).SetErr(errors.New("connection reset"))

	p, err := c.GetProfile(context.Background(), "u1", psychometric.Entrepreneur)
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.UserName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStore_CorruptEntryIsMiss(t *testing.T) {
	c, mem, mr := setupCache(t)
	seedProfile(t, mem, "Ada")
	require.NoError(t, mr.Set(profileKey("u1", psychometric.Entrepreneur), "{not json"))

	p, err := c.GetProfile(context.Background(), "u1", psychometric.Entrepreneur)
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.UserName)
}

// ==========================
// Roles
// ==========================

type countingRoles struct {
	calls int32
	role  psychometric.AssessmentType
	err   error
}

func (r *countingRoles) ResolveRole(context.Context, string) (psychometric.AssessmentType, error) {
	atomic.AddInt32(&r.calls, 1)
	return r.role, r.err
}

func TestCachedRoles(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	next := &countingRoles{role: psychometric.Mentor}
	roles := NewCachedRoles(next, rdb, 10*time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := roles.ResolveRole(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, psychometric.Mentor, got)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&next.calls))
	assert.Equal(t, 10*time.Minute, mr.TTL("user:role:m1"))

	next.err = errors.New("db down")
	_, err := roles.ResolveRole(ctx, "m2")
	assert.Error(t, err)
	assert.False(t, mr.Exists("user:role:m2"))
}

func TestCachedRoles_RedisDown(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectGet("user:role:u1").SetErr(errors.New("timeout"))
	mock.ExpectSet("user:role:u1", "entrepreneur", time.Minute).SetErr(errors.New("timeout"))

	next := &countingRoles{role: psychometric.Entrepreneur}
	roles := NewCachedRoles(next, db, time.Minute, logger.NewNoOpLogger())

	got, err := roles.ResolveRole(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, psychometric.Entrepreneur, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
