package amqp

import (
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"finledger/internal/core"
)

// newPublishing wraps a ledger event in a persistent JSON message. The event
// kind travels as the message type so consumers can filter without decoding.
func newPublishing(ev core.Event) (amqp091.Publishing, error) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	body, err := ev.ToJSON()
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent, // make message persistent
		Type:         string(ev.Kind),
		Timestamp:    ev.Timestamp,
		Body:         body,
	}, nil
}

// decodeEvent parses a delivery body. A delivery without a kind is rejected.
func decodeEvent(body []byte) (core.Event, error) {
	ev, err := core.EventFromJSON(body)
	if err != nil {
		return core.Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if ev.Kind == "" {
		return core.Event{}, fmt.Errorf("unmarshal event: missing kind")
	}
	return ev, nil
}
