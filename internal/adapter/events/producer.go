package events

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/ndquoc/flashmart/internal/core/domain"
)

// Producer publishes order events through a buffered inbox so the checkout
// path never blocks on the broker. Messages are dropped (and logged) when the
// inbox is full; the order itself has already committed by then.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	done    chan struct{}
	service string
}

func NewProducer(brokers []string, service string, buf int) *Producer {
	if buf <= 0 {
		buf = 1024
	}
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        domain.TopicOrderPlaced,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		inbox:   make(chan kafka.Message, buf),
		done:    make(chan struct{}),
		service: service,
	}
}

// Start runs the background writer loop until the inbox is closed.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.done)
		for m := range p.inbox {
			if err := p.w.WriteMessages(ctx, m); err != nil {
				log.Printf("events: publish failed: %v", err)
			}
		}
	}()
}

func (p *Producer) OrderPlaced(ctx context.Context, ev domain.OrderPlacedEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("events: marshal payload: %v", err)
		return
	}
	env := domain.EventEnvelope{
		EventID:      uuid.NewString(),
		EventType:    domain.EventOrderPlaced,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     p.service,
		Payload:      payload,
	}
	value, err := json.Marshal(env)
	if err != nil {
		log.Printf("events: marshal envelope: %v", err)
		return
	}

	m := kafka.Message{
		// Partition by order id so events for one order stay ordered.
		Key:   []byte(strconv.FormatInt(ev.OrderID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(domain.EventOrderPlaced)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	}

	select {
	case p.inbox <- m:
	default:
		log.Printf("events: inbox full, dropped event for order %d", ev.OrderID)
	}
}

// Close stops accepting events and flushes the inbox.
func (p *Producer) Close() {
	close(p.inbox)
}

// WaitClosed blocks until the writer loop has drained, then closes the writer.
func (p *Producer) WaitClosed() {
	<-p.done
	_ = p.w.Close()
}
