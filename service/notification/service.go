// Package notification hosts the named, process-local endpoints on which
// transaction outcomes are reported.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/teller/model"
	"github.com/viant/teller/service/messaging"
	"github.com/viant/teller/service/messaging/memory"
)

const (
	// SyncQueue is the synchronous endpoint. Workers do not publish to it
	// unless configured to.
	SyncQueue = "/sync_queue"
	// AsyncQueue is the endpoint workers publish to by default.
	AsyncQueue = "/async_queue"
)

var (
	// ErrUnknownEndpoint is returned for names that were never opened.
	ErrUnknownEndpoint = errors.New("notification: unknown endpoint")
	// ErrInvalidEndpoint is returned for malformed or duplicated names.
	ErrInvalidEndpoint = errors.New("notification: invalid endpoint")
)

// Service owns a fixed set of named bounded queues.
type Service struct {
	endpoints map[string]*memory.Queue[model.Message]
	names     []string
}

// Endpoint returns the queue registered under name.
func (s *Service) Endpoint(name string) (messaging.Queue[model.Message], error) {
	queue, ok := s.endpoints[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, name)
	}
	return queue, nil
}

// Publish sends a message to the named endpoint.
func (s *Service) Publish(ctx context.Context, name string, message *model.Message) error {
	queue, ok := s.endpoints[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEndpoint, name)
	}
	return queue.Publish(ctx, message)
}

// Receive blocks until a message arrives on the named endpoint.
func (s *Service) Receive(ctx context.Context, name string) (*model.Message, error) {
	queue, ok := s.endpoints[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, name)
	}
	msg, err := queue.Consume(ctx)
	if err != nil {
		return nil, err
	}
	ret, err := acknowledge(msg)
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

// Drain returns every message currently queued on the named endpoint
// without blocking.
func (s *Service) Drain(name string) ([]model.Message, error) {
	queue, ok := s.endpoints[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, name)
	}
	var ret []model.Message
	for {
		msg, ok := queue.TryConsume()
		if !ok {
			return ret, nil
		}
		item, err := acknowledge(msg)
		if err != nil {
			return ret, err
		}
		ret = append(ret, item)
	}
}

// acknowledge acks msg and returns its payload stamped with the message id.
func acknowledge(msg messaging.Message[model.Message]) (model.Message, error) {
	if err := msg.Ack(); err != nil {
		return model.Message{}, fmt.Errorf("failed to ack message %s: %w", msg.ID(), err)
	}
	ret := *msg.T()
	ret.ID = msg.ID()
	return ret, nil
}

// Size returns the number of queued messages on the named endpoint.
func (s *Service) Size(name string) int {
	if queue, ok := s.endpoints[name]; ok {
		return queue.Size()
	}
	return 0
}

// Names returns the opened endpoint names in declaration order.
func (s *Service) Names() []string {
	return append([]string(nil), s.names...)
}

// New opens one bounded queue per name. Names must start with "/" and be
// unique; both SyncQueue and AsyncQueue are opened when names is empty.
func New(config memory.Config, names ...string) (*Service, error) {
	if len(names) == 0 {
		names = []string{SyncQueue, AsyncQueue}
	}
	if config.QueueBuffer <= 0 {
		return nil, fmt.Errorf("%w: queue buffer must be > 0, got %d", ErrInvalidEndpoint, config.QueueBuffer)
	}
	s := &Service{endpoints: make(map[string]*memory.Queue[model.Message], len(names))}
	for _, name := range names {
		if len(name) < 2 || !strings.HasPrefix(name, "/") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, name)
		}
		if _, ok := s.endpoints[name]; ok {
			return nil, fmt.Errorf("%w: duplicate %q", ErrInvalidEndpoint, name)
		}
		s.endpoints[name] = memory.NewQueue[model.Message](config)
		s.names = append(s.names, name)
	}
	return s, nil
}
