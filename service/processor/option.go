package processor

import (
	"github.com/viant/teller/progress"
	"github.com/viant/teller/service/executor"
	"go.uber.org/zap"
)

// Option customises the processor.
type Option func(*Service)

// WithRegistry sets the transaction registry
func WithRegistry(registry Registry) Option {
	return func(s *Service) {
		s.registry = registry
	}
}

// WithExecutor sets the transaction executor
func WithExecutor(executor executor.Service) Option {
	return func(s *Service) {
		s.executor = executor
	}
}

// WithNotifier sets the notification service workers publish to
func WithNotifier(notifier Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithEndpoint sets the notification endpoint name
func WithEndpoint(name string) Option {
	return func(s *Service) {
		s.config.Endpoint = name
	}
}

// WithProgress sets the progress tracker
func WithProgress(p *progress.Progress) Option {
	return func(s *Service) {
		s.progress = p
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}
