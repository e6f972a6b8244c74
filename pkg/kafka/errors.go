package kafka

import (
	"errors"
	"fmt"
)

var (
	ErrProducerClosed = errors.New("kafka producer is closed")
	ErrInvalidMessage = errors.New("invalid message")
	ErrEmptyKey       = errors.New("message key cannot be empty")
	ErrEmptyValue     = errors.New("message value cannot be empty")
)

// PublishError records which topic and key a failed write was aimed at, and
// whether the message reached the dead letter topic instead.
type PublishError struct {
	Topic        string
	Key          string
	DeadLettered bool
	Err          error
}

func (e *PublishError) Error() string {
	if e.DeadLettered {
		return fmt.Sprintf("publish to %s (key %s) failed, message dead-lettered: %v", e.Topic, e.Key, e.Err)
	}
	return fmt.Sprintf("publish to %s (key %s) failed: %v", e.Topic, e.Key, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
