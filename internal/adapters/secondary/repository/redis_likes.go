package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// toggleScript exécute SISMEMBER puis SREM|SADD côté serveur, atomiquement.
// Retourne 1 si le user like après l'appel, 0 sinon.
var toggleScript = redis.NewScript(`
if redis.call("SISMEMBER", KEYS[1], ARGV[1]) == 1 then
	redis.call("SREM", KEYS[1], ARGV[1])
	return 0
end
redis.call("SADD", KEYS[1], ARGV[1])
return 1
`)

type RedisLikeRepo struct {
	client *redis.Client
}

func NewRedisLikeRepo(client *redis.Client) *RedisLikeRepo {
	return &RedisLikeRepo{client: client}
}

func (r *RedisLikeRepo) IsMember(ctx context.Context, postID, username string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, likesKey(postID), username).Result()
	if err != nil {
		return false, fmt.Errorf("sismember: %w", err)
	}
	return ok, nil
}

func (r *RedisLikeRepo) Count(ctx context.Context, postID string) (int64, error) {
	n, err := r.client.SCard(ctx, likesKey(postID)).Result()
	if err != nil {
		return 0, fmt.Errorf("scard: %w", err)
	}
	return n, nil
}

func (r *RedisLikeRepo) Toggle(ctx context.Context, postID, username string) (bool, error) {
	res, err := toggleScript.Run(ctx, r.client, []string{likesKey(postID)}, username).Int()
	if err != nil {
		return false, fmt.Errorf("toggle like: %w", err)
	}
	return res == 1, nil
}
