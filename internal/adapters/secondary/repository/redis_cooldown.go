package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/domain"
)

type RedisCooldownRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCooldownRepo(client *redis.Client) *RedisCooldownRepo {
	return &RedisCooldownRepo{
		client: client,
		ttl:    domain.CooldownWindow,
	}
}

func (r *RedisCooldownRepo) IsOnCooldown(ctx context.Context, username string) (bool, error) {
	n, err := r.client.Exists(ctx, cooldownKey(username)).Result()
	if err != nil {
		return false, fmt.Errorf("exists cooldown: %w", err)
	}
	return n > 0, nil
}

// StartCooldown : SET NX EX, le marqueur expire seul
func (r *RedisCooldownRepo) StartCooldown(ctx context.Context, username string) (bool, error) {
	ok, err := r.client.SetNX(ctx, cooldownKey(username), "true", r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("set cooldown: %w", err)
	}
	return ok, nil
}

func (r *RedisCooldownRepo) ReleaseCooldown(ctx context.Context, username string) error {
	return r.client.Del(ctx, cooldownKey(username)).Err()
}
