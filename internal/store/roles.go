package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"psychometric-workers/internal/common/database"
	"psychometric-workers/internal/common/logger"
	"psychometric-workers/internal/psychometric"
)

const selectRoleSQL = `SELECT role FROM users WHERE id = $1`

// UserRoles resolves the assessment type from users.role. Anything that is
// not "mentor" is an entrepreneur, including unknown users.
type UserRoles struct {
	db *database.PostgresClient
}

var _ psychometric.RoleResolver = (*UserRoles)(nil)

func NewUserRoles(db *database.PostgresClient) *UserRoles {
	return &UserRoles{db: db}
}

func (r *UserRoles) ResolveRole(ctx context.Context, userID string) (psychometric.AssessmentType, error) {
	var role sql.NullString
	err := r.db.DB.QueryRowContext(ctx, selectRoleSQL, userID).Scan(&role)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return psychometric.Entrepreneur, nil
	case err != nil:
		return "", fmt.Errorf("resolve role: %w", err)
	}
	return roleType(role.String), nil
}

func roleType(role string) psychometric.AssessmentType {
	if strings.EqualFold(strings.TrimSpace(role), string(psychometric.Mentor)) {
		return psychometric.Mentor
	}
	return psychometric.Entrepreneur
}

// CachedRoles memoizes role lookups in Redis under user:role:<id>.
type CachedRoles struct {
	next   psychometric.RoleResolver
	redis  redis.UniversalClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedRoles(next psychometric.RoleResolver, rdb redis.UniversalClient, ttl time.Duration, log logger.Logger) *CachedRoles {
	return &CachedRoles{next: next, redis: rdb, ttl: ttl, logger: log}
}

func roleKey(userID string) string { return "user:role:" + userID }

func (c *CachedRoles) ResolveRole(ctx context.Context, userID string) (psychometric.AssessmentType, error) {
	cached, err := c.redis.Get(ctx, roleKey(userID)).Result()
	if err == nil {
		return roleType(cached), nil
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.Warn("role cache read failed", map[string]interface{}{"userId": userID, "error": err.Error()})
	}

	t, err := c.next.ResolveRole(ctx, userID)
	if err != nil {
		return "", err
	}
	if err := c.redis.Set(ctx, roleKey(userID), string(t), c.ttl).Err(); err != nil {
		c.logger.Warn("role cache write failed", map[string]interface{}{"userId": userID, "error": err.Error()})
	}
	return t, nil
}
