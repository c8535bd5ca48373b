package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"

	"psychometric-workers/internal/common/logger"
	"psychometric-workers/internal/psychometric"
)

const (
	profileKeyPrefix    = "psychometric:profile:"
	profileVerPrefix    = "psychometric:profile-ver:"
	assessmentKeyPrefix = "psychometric:assessment:"

	// assessments never change once issued
	assessmentTTL = 24 * time.Hour

	// must outlive any in-flight profile read
	profileVerTTL = 24 * time.Hour
)

func profileKey(userID string, t psychometric.AssessmentType) string {
	return fmt.Sprintf("%s%s:%s", profileKeyPrefix, t, userID)
}

func profileVerKey(userID string, t psychometric.AssessmentType) string {
	return fmt.Sprintf("%s%s:%s", profileVerPrefix, t, userID)
}

func assessmentKey(id string) string { return assessmentKeyPrefix + id }

// CachedStore puts a process-local LRU and Redis in front of a Store.
// Profiles are read-through in Redis and invalidated after every write;
// a per-profile version counter keeps a reader from caching a row that a
// concurrent write has already replaced. Assessments are cached in both
// layers. Cache failures are logged and
// never fail the call.
type CachedStore struct {
	psychometric.Store

	redis       redis.UniversalClient
	assessments *lru.Cache[string, *psychometric.Assessment]
	profileTTL  time.Duration
	logger      logger.Logger
}

var _ psychometric.Store = (*CachedStore)(nil)

func NewCachedStore(next psychometric.Store, rdb redis.UniversalClient, lruSize int, profileTTL time.Duration, log logger.Logger) (*CachedStore, error) {
	cache, err := lru.New[string, *psychometric.Assessment](lruSize)
	if err != nil {
		return nil, fmt.Errorf("create assessment cache: %w", err)
	}
	return &CachedStore{
		Store:       next,
		redis:       rdb,
		assessments: cache,
		profileTTL:  profileTTL,
		logger:      log.WithFields(map[string]interface{}{"component": "store-cache"}),
	}, nil
}

func (c *CachedStore) warn(op, key string, err error) {
	c.logger.Warn("cache "+op+" failed", map[string]interface{}{"key": key, "error": err.Error()})
}

// getJSON returns false on a miss or any cache error.
func (c *CachedStore) getJSON(ctx context.Context, key string, out interface{}) bool {
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warn("read", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.warn("decode", key, err)
		return false
	}
	return true
}

func (c *CachedStore) setJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.warn("encode", key, err)
		return
	}
	if err := c.redis.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.warn("write", key, err)
	}
}

// ==========================
// Profile versioning
// ==========================

// profileVersion returns the current counter, "" when unset. ok is false
// when Redis could not be read and the caller must not fill the cache.
func (c *CachedStore) profileVersion(ctx context.Context, verKey string) (string, bool) {
	v, err := c.redis.Get(ctx, verKey).Result()
	switch {
	case err == nil:
		return v, true
	case errors.Is(err, redis.Nil):
		return "", true
	default:
		c.warn("read", verKey, err)
		return "", false
	}
}

// fillProfile caches p only if no write bumped the version since seen was
// read.
func (c *CachedStore) fillProfile(ctx context.Context, key, verKey, seen string, p *psychometric.Profile) {
	raw, err := json.Marshal(p)
	if err != nil {
		c.warn("encode", key, err)
		return
	}
	err = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, verKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != seen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, c.profileTTL)
			return nil
		})
		return err
	}, verKey)
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		c.warn("write", key, err)
	}
}

// invalidateProfile bumps the version and drops the cached row in one
// transaction.
func (c *CachedStore) invalidateProfile(ctx context.Context, userID string, t psychometric.AssessmentType) {
	key, verKey := profileKey(userID, t), profileVerKey(userID, t)
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, verKey)
		pipe.Expire(ctx, verKey, profileVerTTL)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		c.warn("invalidate", key, err)
	}
}

// ==========================
// Assessments
// ==========================

func (c *CachedStore) SaveAssessment(ctx context.Context, userID string, a *psychometric.Assessment) error {
	if err := c.Store.SaveAssessment(ctx, userID, a); err != nil {
		return err
	}
	c.assessments.Add(a.AssessmentID, a)
	c.setJSON(ctx, assessmentKey(a.AssessmentID), a, assessmentTTL)
	return nil
}

// GetAssessment returns a shared read-only value from the LRU when present.
func (c *CachedStore) GetAssessment(ctx context.Context, assessmentID string) (*psychometric.Assessment, error) {
	if a, ok := c.assessments.Get(assessmentID); ok {
		return a, nil
	}
	var a psychometric.Assessment
	if c.getJSON(ctx, assessmentKey(assessmentID), &a) {
		c.assessments.Add(assessmentID, &a)
		return &a, nil
	}

	fresh, err := c.Store.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	c.assessments.Add(assessmentID, fresh)
	c.setJSON(ctx, assessmentKey(assessmentID), fresh, assessmentTTL)
	return fresh, nil
}

// ==========================
// Profiles
// ==========================

func (c *CachedStore) GetProfile(ctx context.Context, userID string, t psychometric.AssessmentType) (*psychometric.Profile, error) {
	key, verKey := profileKey(userID, t), profileVerKey(userID, t)
	var p psychometric.Profile
	if c.getJSON(ctx, key, &p) {
		return &p, nil
	}

	seen, canFill := c.profileVersion(ctx, verKey)
	fresh, err := c.Store.GetProfile(ctx, userID, t)
	if err != nil {
		return nil, err
	}
	if canFill {
		c.fillProfile(ctx, key, verKey, seen, fresh)
	}
	return fresh, nil
}

func (c *CachedStore) UpsertProfile(ctx context.Context, userID string, t psychometric.AssessmentType, merge psychometric.MergeFunc) (*psychometric.Profile, bool, error) {
	p, created, err := c.Store.UpsertProfile(ctx, userID, t, merge)
	if err == nil {
		c.invalidateProfile(ctx, userID, t)
	}
	return p, created, err
}

func (c *CachedStore) AppendHistory(ctx context.Context, userID string, t psychometric.AssessmentType, e psychometric.Engagement) (int, error) {
	n, err := c.Store.AppendHistory(ctx, userID, t, e)
	if err == nil {
		c.invalidateProfile(ctx, userID, t)
	}
	return n, err
}
