// Package events publishes booking lifecycle events. Publishing never fails
// the write that triggered it.
package events

import (
	"context"
	"time"

	"lodge/pkg/kafka"
	"lodge/pkg/logger"
	"lodge/pkg/middleware"
	"lodge/pkg/model"
)

const (
	TypeCreated         = "booking.created"
	TypeUpdated         = "booking.updated"
	TypeStatusChanged   = "booking.status_changed"
	TypePaymentRecorded = "booking.payment_recorded"
	TypeDeleted         = "booking.deleted"

	SchemaVersion = "1"
	Source        = "bookings"
)

type Event struct {
	Type           string         `json:"type"`
	BookingID      string         `json:"bookingId"`
	CabinID        string         `json:"cabinId,omitempty"`
	Status         string         `json:"status,omitempty"`
	PreviousStatus string         `json:"previousStatus,omitempty"`
	AmountPaid     float64        `json:"amountPaid,omitempty"`
	Booking        *model.Booking `json:"booking,omitempty"`
	OccurredAt     time.Time      `json:"occurredAt"`
}

func NewEvent(eventType string, b *model.Booking) Event {
	e := Event{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
	}
	if b != nil {
		e.BookingID = b.ID
		e.CabinID = b.CabinID
		e.Status = b.Status
		e.Booking = b
	}
	return e
}

type Publisher interface {
	Publish(ctx context.Context, events ...Event)
	Close() error
}

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	producer producer
	log      *logger.Logger
}

func NewKafkaPublisher(p *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{producer: p, log: log}
}

// Publish writes each event keyed by booking id so a booking's events stay
// ordered on one partition. Failures are logged and dropped.
func (p *kafkaPublisher) Publish(ctx context.Context, events ...Event) {
	ctx = context.WithoutCancel(ctx)
	correlationID := middleware.RequestIDFromContext(ctx)

	for _, e := range events {
		msg, err := kafka.NewMessage().
			WithKey(e.BookingID).
			WithEventType(e.Type).
			WithSchemaVersion(SchemaVersion).
			WithSource(Source).
			WithCorrelationID(correlationID).
			WithTimestamp(e.OccurredAt).
			WithValue(e).
			Build()
		if err != nil {
			p.log.Warn("Failed to build booking event", "type", e.Type, "booking_id", e.BookingID, "error", err)
			continue
		}

		if err := p.producer.Publish(ctx, msg); err != nil {
			p.log.Warn("Failed to publish booking event", "type", e.Type, "booking_id", e.BookingID, "error", err)
		}
	}
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...Event) {}

func (NoopPublisher) Close() error { return nil }
