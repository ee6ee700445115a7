package eventbroker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/domain"
)

type capture struct{ msgs []*nats.Msg }

func (c *capture) PublishMsg(m *nats.Msg) error {
	c.msgs = append(c.msgs, m)
	return nil
}

func TestPublishPostCreated(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "create_post")
	defer span.End()

	c := &capture{}
	pub := newNatsPublisher(c)
	post := &domain.Post{ID: "X", Text: "hi", ImgURL: "u", CreatedAt: 1700000000000, Username: "alice"}

	if err := pub.PublishPostCreated(ctx, post); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(c.msgs) != 1 {
		t.Fatalf("msgs=%d want 1", len(c.msgs))
	}
	msg := c.msgs[0]
	if msg.Subject != SubjectPostCreated {
		t.Fatalf("subject=%q", msg.Subject)
	}
	if propagation.HeaderCarrier(msg.Header).Get("traceparent") == "" {
		t.Fatalf("trace context not propagated: %v", msg.Header)
	}

	var ev domain.PostCreatedEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.ID != "X" || ev.Username != "alice" || !ev.HasImage || ev.CreatedAt.UnixMilli() != post.CreatedAt {
		t.Fatalf("event=%+v", ev)
	}
}
