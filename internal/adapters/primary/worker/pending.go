package worker

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/ports"
)

const DefaultInterval = 5 * time.Second

// PendingLoop draine périodiquement la file pending
type PendingLoop struct {
	service  ports.PendingService
	interval time.Duration
}

func NewPendingLoop(service ports.PendingService, interval time.Duration) *PendingLoop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &PendingLoop{service: service, interval: interval}
}

// Run bloque jusqu'à l'annulation du contexte
func (l *PendingLoop) Run(ctx context.Context) error {
	slog.Info("👂 Pending worker started", "interval", l.interval)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		l.RunOnce(ctx)

		select {
		case <-ctx.Done():
			slog.Info("🛑 Pending worker stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce exécute une passe, tracée comme un consumer
func (l *PendingLoop) RunOnce(ctx context.Context) int {
	tracer := otel.Tracer("wall-service")
	ctx, span := tracer.Start(ctx, "process_pending", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	n, err := l.service.ProcessPending(ctx)
	span.SetAttributes(attribute.Int("pending.published", n))
	if err != nil {
		span.RecordError(err)
		slog.Error("❌ Pending pass failed", "error", err)
		return n
	}
	if n > 0 {
		slog.Info("✅ Pending pass complete", "published", n)
	}
	return n
}
