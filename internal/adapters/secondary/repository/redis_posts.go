package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/domain"
)

const (
	purgeBatchSize   = 500 // Taille des paquets de DEL
	purgeConcurrency = 8
)

type RedisPostRepo struct {
	client *redis.Client
}

func NewRedisPostRepo(client *redis.Client) *RedisPostRepo {
	return &RedisPostRepo{client: client}
}

// saveScript écrit le record, l'ajoute au feed et à la file pending en une
// seule exécution. Le score est un compteur : l'ordre du feed est l'ordre
// d'insertion, même pour deux posts de la même milliseconde.
// KEYS: post:{id}, posts, pending, posts:seq. ARGV: id, puis paires champ/valeur.
var saveScript = redis.NewScript(`
local seq = redis.call("INCR", KEYS[4])
redis.call("HSET", KEYS[1], unpack(ARGV, 2))
redis.call("ZADD", KEYS[2], seq, ARGV[1])
redis.call("RPUSH", KEYS[3], KEYS[1])
return seq
`)

// Save écrit le hash, l'ajoute au feed et à la file pending (atomique).
func (r *RedisPostRepo) Save(ctx context.Context, post *domain.Post) error {
	key := PostKey(post.ID)

	fields := post.Fields()
	args := make([]any, 0, 1+2*len(fields))
	args = append(args, post.ID)
	for name, value := range fields {
		args = append(args, name, value)
	}

	if err := saveScript.Run(ctx, r.client, []string{key, FeedKey, PendingKey, FeedSeqKey}, args...).Err(); err != nil {
		return fmt.Errorf("save post %s: %w", post.ID, err)
	}
	return nil
}

func (r *RedisPostRepo) FindByID(ctx context.Context, postID string) (*domain.Post, error) {
	return r.FindByKey(ctx, PostKey(postID))
}

// FindByKey lit un post via sa clé de stockage (utilisé par le worker)
func (r *RedisPostRepo) FindByKey(ctx context.Context, key string) (*domain.Post, error) {
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return domain.PostFromFields(fields), nil
}

// ListFeed lit la fenêtre puis hydrate les posts en un seul aller-retour
func (r *RedisPostRepo) ListFeed(ctx context.Context, req domain.FeedRequest) ([]*domain.Post, error) {
	// Pagination Redis (Inclusive)
	start := req.Offset
	stop := req.Offset + req.Limit - 1

	ids, err := r.client.ZRevRange(ctx, FeedKey, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange: %w", err)
	}

	posts := make([]*domain.Post, 0, len(ids))
	if len(ids) == 0 {
		return posts, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, PostKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("hydrate feed: %w", err)
	}

	for i, cmd := range cmds {
		post := domain.PostFromFields(cmd.Val())
		if post == nil {
			// Id sans record (purge concurrente) : filtré
			slog.Debug("Dangling feed entry", "post_id", ids[i])
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// Walk parcourt la séquence du plus ancien au plus récent, page par page.
// La borne haute est figée au départ et la pagination suit le score :
// les posts ajoutés pendant le parcours ne décalent ni ne dupliquent rien.
func (r *RedisPostRepo) Walk(ctx context.Context, pageSize int64, fn func(*domain.Post) error) error {
	if pageSize <= 0 {
		pageSize = domain.MaxFeedLimit
	}

	last, err := r.client.ZRevRangeWithScores(ctx, FeedKey, 0, 0).Result()
	if err != nil {
		return fmt.Errorf("zrevrange: %w", err)
	}
	if len(last) == 0 {
		return nil
	}
	upper := formatScore(last[0].Score)

	lower := "-inf"
	for {
		page, err := r.client.ZRangeByScoreWithScores(ctx, FeedKey, &redis.ZRangeBy{
			Min:   lower,
			Max:   upper,
			Count: pageSize,
		}).Result()
		if err != nil {
			return fmt.Errorf("zrangebyscore: %w", err)
		}
		if len(page) == 0 {
			return nil
		}
		for _, z := range page {
			id, _ := z.Member.(string)
			post, err := r.FindByID(ctx, id)
			if err != nil {
				return err
			}
			if post == nil {
				continue
			}
			if err := fn(post); err != nil {
				return err
			}
		}
		// Borne exclusive : reprise après le dernier score lu
		lower = "(" + formatScore(page[len(page)-1].Score)
	}
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// PopPending retire jusqu'à max clés en tête de file, en un aller-retour
func (r *RedisPostRepo) PopPending(ctx context.Context, max int) ([]string, error) {
	keys, err := r.client.LPopCount(ctx, PendingKey, max).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lpop pending: %w", err)
	}
	return keys, nil
}

// PurgeAll supprime tout par paquets, avec une concurrence bornée.
// Retourne quand tous les paquets sont terminés. Pas de rollback.
func (r *RedisPostRepo) PurgeAll(ctx context.Context) error {
	if err := r.client.Del(ctx, PendingKey, FeedKey, FeedSeqKey).Err(); err != nil {
		return fmt.Errorf("del sequences: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(purgeConcurrency)

	var deleted atomic.Int64
	flush := func(batch []string) {
		g.Go(func() error {
			n, err := r.client.Del(gctx, batch...).Result()
			if err != nil {
				return fmt.Errorf("del batch: %w", err)
			}
			deleted.Add(n)
			return nil
		})
	}

	for _, pattern := range []string{postPrefix + "*", cooldownPrefix + "*", likesPrefix + "*"} {
		iter := r.client.Scan(gctx, 0, pattern, purgeBatchSize).Iterator()
		batch := make([]string, 0, purgeBatchSize)
		for iter.Next(gctx) {
			batch = append(batch, iter.Val())
			if len(batch) == purgeBatchSize {
				flush(batch)
				batch = make([]string, 0, purgeBatchSize)
			}
		}
		if err := iter.Err(); err != nil {
			if werr := g.Wait(); werr != nil {
				return werr
			}
			return fmt.Errorf("scan %s: %w", pattern, err)
		}
		if len(batch) > 0 {
			flush(batch)
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("Purged keys", "count", deleted.Load())
	return nil
}
