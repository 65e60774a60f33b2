package utils

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finnews/finnews/models"
)

const revokedKeyPrefix = "jwt:revoked:"

// RevocationStore remembers logged-out token ids until the tokens expire. Implementations
// persist outside the process so revocations survive restarts and are shared by replicas.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NewRevocationStore prefers Redis and falls back to the database table.
func NewRevocationStore(db *gorm.DB) RevocationStore {
	if rc := GetRedis(); rc != nil {
		return NewRedisRevocations(rc)
	}
	return NewDBRevocations(db)
}

// RedisRevocations stores one key per revoked jti with a TTL matching the token expiry.
type RedisRevocations struct {
	client *redis.Client
}

// NewRedisRevocations wraps a Redis client.
func NewRedisRevocations(client *redis.Client) *RedisRevocations {
	return &RedisRevocations{client: client}
}

// Revoke implements RevocationStore.
func (r *RedisRevocations) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked implements RevocationStore.
func (r *RedisRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	n, err := r.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DBRevocations keeps revoked ids in the revoked_tokens table.
type DBRevocations struct {
	db *gorm.DB
}

// NewDBRevocations wraps a gorm handle.
func NewDBRevocations(db *gorm.DB) *DBRevocations {
	return &DBRevocations{db: db}
}

// Revoke implements RevocationStore. Expired rows are purged on each write.
func (d *DBRevocations) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if !expiresAt.After(time.Now()) {
		return nil
	}
	tx := d.db.WithContext(ctx)
	if err := tx.Where("expires_at <= ?", time.Now()).Delete(&models.RevokedToken{}).Error; err != nil {
		Sugar.Warnf("purge expired revocations failed: %v", err)
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.RevokedToken{JTI: jti, ExpiresAt: expiresAt}).Error
}

// IsRevoked implements RevocationStore.
func (d *DBRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("jti = ? AND expires_at > ?", jti, time.Now()).
		Count(&n).Error
	return n > 0, err
}
