package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/ports"
)

const (
	PendingBatchSize   = 1000 // Taille max d'une passe sur la file
	PendingConcurrency = 16
)

type PendingService struct {
	queue     ports.PendingQueue
	publisher ports.EventPublisher
}

func NewPendingService(queue ports.PendingQueue, pub ports.EventPublisher) *PendingService {
	return &PendingService{
		queue:     queue,
		publisher: pub,
	}
}

// ProcessPending vide la file et publie un event par post.
// Un échec sur une clé est loggé et n'interrompt pas la passe.
func (s *PendingService) ProcessPending(ctx context.Context) (int, error) {
	keys, err := s.queue.PopPending(ctx, PendingBatchSize)
	if err != nil {
		return 0, fmt.Errorf("pop pending: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	slog.Info("📦 Processing pending posts", "count", len(keys))

	var published atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(PendingConcurrency)

	for _, key := range keys {
		g.Go(func() error {
			post, err := s.queue.FindByKey(gctx, key)
			if err != nil {
				slog.Error("❌ Failed to load pending post", "key", key, "error", err)
				return nil
			}
			if post == nil {
				// Purgé entre-temps
				slog.Debug("Pending post vanished", "key", key)
				return nil
			}
			if err := s.publisher.PublishPostCreated(gctx, post); err != nil {
				slog.Error("❌ Failed to publish post.created", "key", key, "error", err)
				return nil
			}
			published.Add(1)
			return nil
		})
	}
	// Les goroutines ne retournent jamais d'erreur : Wait sert de point de jonction
	_ = g.Wait()

	return int(published.Load()), ctx.Err()
}
