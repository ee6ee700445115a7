package eventbroker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/domain"
)

const SubjectPostCreated = "wall.post.created"

// msgPublisher : sous-ensemble de *nats.Conn utilisé ici
type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

type NatsPublisher struct {
	nc      msgPublisher
	subject string
}

func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return newNatsPublisher(nc)
}

func newNatsPublisher(nc msgPublisher) *NatsPublisher {
	return &NatsPublisher{nc: nc, subject: SubjectPostCreated}
}

func (p *NatsPublisher) PublishPostCreated(ctx context.Context, post *domain.Post) error {
	data, err := json.Marshal(domain.NewPostCreatedEvent(post))
	if err != nil {
		return fmt.Errorf("marshalling error: %w", err)
	}

	msg := &nats.Msg{
		Subject: p.subject,
		Data:    data,
		Header:  nats.Header{},
	}
	// Injection du trace context dans les headers NATS
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	slog.Debug("📢 Publishing event", "topic", msg.Subject, "post_id", post.ID)
	return p.nc.PublishMsg(msg)
}
