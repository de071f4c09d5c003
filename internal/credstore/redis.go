package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// RedisStore keeps the credential under a per-profile key with a TTL, so a
// credential shared between machines expires with the server token.
type RedisStore struct {
	client  *redis.Client
	profile string
	ttl     time.Duration
}

func NewRedisStore(client *redis.Client, profile string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{
		client:  client,
		profile: profile,
		ttl:     ttl,
	}
}

func (r *RedisStore) Load(ctx context.Context) (domain.Credential, error) {
	token, err := r.client.Get(ctx, credentialKey(r.profile)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return domain.Credential(token), nil
}

func (r *RedisStore) Save(ctx context.Context, cred domain.Credential) error {
	if cred.IsZero() {
		return errors.New("credential is empty")
	}
	if err := r.client.Set(ctx, credentialKey(r.profile), cred.String(), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, credentialKey(r.profile)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func credentialKey(profile string) string {
	return fmt.Sprintf("storefront:credential:%s", profile)
}
