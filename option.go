package teller

import (
	"github.com/viant/teller/service/executor"
	"github.com/viant/teller/service/messaging"
	"github.com/viant/teller/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// Option customises the Service
type Option func(s *Service)

// WithConfig replaces the whole configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithLogger sets the logger shared by all services; it takes precedence
// over the log section of the configuration.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithQueuePolicy sets what workers do when the notification endpoint is full
func WithQueuePolicy(policy messaging.Policy) Option {
	return func(s *Service) {
		s.config.Messaging.Policy = string(policy)
	}
}

// WithEndpoint sets the endpoint workers publish to
func WithEndpoint(name string) Option {
	return func(s *Service) {
		s.config.Messaging.Endpoint = name
	}
}

// WithExecutorOptions lets the caller supply additional options passed to
// executor.NewService (e.g. a custom Listener).
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(s *Service) {
		s.executorOptions = append(s.executorOptions, opts...)
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The function is
// safe to call multiple times; the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.tracingErr = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter, for example
// OTLP, Jaeger or an in-memory exporter in tests.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.tracingErr = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
