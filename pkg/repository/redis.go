package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/config"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

// RedisRepository holds short-lived state that must expire on its own:
// pending registrations and one-time codes.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
	}
}

// NewRedisRepositoryFromClient wraps an existing client.
func NewRedisRepositoryFromClient(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func (r *RedisRepository) setJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisRepository) getJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func pendingKey(email string) string {
	return fmt.Sprintf("registration:%s", email)
}

func codeKey(purpose, email string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, email)
}

// SavePending stores p until its ExpiresAt, replacing any earlier attempt.
func (r *RedisRepository) SavePending(ctx context.Context, p *models.PendingRegistration) error {
	ttl := time.Until(p.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("pending registration for %s already expired", p.Email)
	}
	return r.setJSON(ctx, pendingKey(p.Email), p, ttl)
}

func (r *RedisRepository) GetPending(ctx context.Context, email string) (*models.PendingRegistration, error) {
	var p models.PendingRegistration
	if err := r.getJSON(ctx, pendingKey(email), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RedisRepository) DeletePending(ctx context.Context, email string) error {
	return r.client.Del(ctx, pendingKey(email)).Err()
}

func (r *RedisRepository) SaveCode(ctx context.Context, purpose, email, code string, ttl time.Duration) error {
	return r.client.Set(ctx, codeKey(purpose, email), code, ttl).Err()
}

func (r *RedisRepository) GetCode(ctx context.Context, purpose, email string) (string, error) {
	code, err := r.client.Get(ctx, codeKey(purpose, email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return code, err
}

func (r *RedisRepository) DeleteCode(ctx context.Context, purpose, email string) error {
	return r.client.Del(ctx, codeKey(purpose, email)).Err()
}
