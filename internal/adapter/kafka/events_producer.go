package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nvidela/shop-assistant/internal/core/domain"
	"github.com/nvidela/shop-assistant/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.EventsPublisher = (*EventsProducer)(nil)

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type assistantEventJSON struct {
	ID     string    `json:"id"`
	Kind   string    `json:"kind"`
	Query  string    `json:"query,omitempty"`
	CartID int64     `json:"cart_id,omitempty"`
	NItems int       `json:"n_items"`
	At     time.Time `json:"at"`
}

// EventsProducer publishes assistant analytics events as JSON records
// keyed by event kind.
type EventsProducer struct {
	cl ProducerClient
}

func NewEventsProducer(
	ctx context.Context, seedBrokers []string, topic string,
) (EventsProducer, error) {
	const op = "NewEventsProducer"

	cl, err := kgo.NewClient(
		kgo.SeedBrokers(seedBrokers...),
		kgo.DefaultProduceTopicAlways(),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return EventsProducer{}, opErr(err, op)
	}

	if err := cl.Ping(ctx); err != nil {
		cl.Close()
		return EventsProducer{}, opErr(err, op)
	}
	return EventsProducer{cl}, nil
}

func (p EventsProducer) PublishEvent(
	ctx context.Context, e domain.AssistantEvent,
) error {
	const op = "EventsProducer.PublishEvent"

	if err := ctx.Err(); err != nil {
		return opErr(err, op)
	}

	b, err := json.Marshal(assistantEventJSON{
		ID:     e.ID,
		Kind:   string(e.Kind),
		Query:  e.Query,
		CartID: e.CartID,
		NItems: e.NItems,
		At:     e.At,
	})
	if err != nil {
		return opErr(err, op)
	}

	r := &kgo.Record{Key: []byte(e.Kind), Value: b}
	if err := p.cl.ProduceSync(ctx, r).FirstErr(); err != nil {
		return opErr(err, op)
	}
	return nil
}

func (p EventsProducer) Close() {
	const op = "EventsProducer.Close"
	log := slog.With("op", op)

	log.Info("closing events producer...")
	p.cl.Close()
	log.Info("events producer is closed")
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}
