package messaging

import (
	"context"
	"errors"
)

// Policy decides what Publish does when a bounded queue is full.
type Policy string

const (
	// PolicyBlock waits for free capacity (or context cancellation).
	PolicyBlock Policy = "block"
	// PolicyFail returns ErrQueueFull immediately.
	PolicyFail Policy = "fail"
)

// ErrQueueFull is returned by Publish under PolicyFail.
var ErrQueueFull = errors.New("messaging: queue full")

// Queue represents an abstract bounded FIFO queue for any payload type
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume blocks until a message is available
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// ID returns the message identifier
	ID() string

	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error
}
