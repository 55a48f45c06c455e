package teller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/teller/internal/env"
	"github.com/viant/teller/internal/logging"
	"github.com/viant/teller/service/messaging"
	"github.com/viant/teller/service/notification"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the core configuration. It can
// be populated from YAML or JSON. Sections left out of a document keep their
// DefaultConfig values.
type Config struct {
	Allocator  AllocatorConfig  `json:"allocator" yaml:"allocator"`
	Ledger     LedgerConfig     `json:"ledger" yaml:"ledger"`
	Registry   RegistryConfig   `json:"registry" yaml:"registry"`
	Messaging  MessagingConfig  `json:"messaging" yaml:"messaging"`
	Accountant AccountantConfig `json:"accountant" yaml:"accountant"`
	Log        LogConfig        `json:"log" yaml:"log"`
	Tracing    TracingConfig    `json:"tracing" yaml:"tracing"`
}

type AllocatorConfig struct {
	Pages    int `json:"pages" yaml:"pages"`
	PageSize int `json:"pageSize" yaml:"pageSize"`
}

type LedgerConfig struct {
	MaxAccounts int `json:"maxAccounts" yaml:"maxAccounts"`
}

type RegistryConfig struct {
	MaxTransactions int `json:"maxTransactions" yaml:"maxTransactions"`
}

type MessagingConfig struct {
	QueueBuffer int    `json:"queueBuffer" yaml:"queueBuffer"`
	Policy      string `json:"policy" yaml:"policy"`
	// Endpoints lists the opened endpoint names
	Endpoints []string `json:"endpoints" yaml:"endpoints"`
	// Endpoint is the endpoint workers publish to
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// AccountantConfig controls the round-robin bookkeeping. Burst is the
// accounting time a new transaction needs, Quantum the slice per visit.
type AccountantConfig struct {
	Quantum int `json:"quantum" yaml:"quantum"`
	Burst   int `json:"burst" yaml:"burst"`
}

type LogConfig struct {
	Level    string `json:"level" yaml:"level"`
	Encoding string `json:"encoding" yaml:"encoding"`
}

type TracingConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Service string `json:"service" yaml:"service"`
	Version string `json:"version" yaml:"version"`
	// Output is a trace file path, stdout when empty
	Output string `json:"output" yaml:"output"`
}

// DefaultConfig returns a Config populated with the reference constants:
// 10 pages of one account each, 100 accounts, 100 transactions, a queue of
// 10 messages and a unit quantum.
func DefaultConfig() *Config {
	return &Config{
		Allocator:  AllocatorConfig{Pages: 10, PageSize: 16},
		Ledger:     LedgerConfig{MaxAccounts: 100},
		Registry:   RegistryConfig{MaxTransactions: 100},
		Accountant: AccountantConfig{Quantum: 1, Burst: 1},
		Messaging: MessagingConfig{
			QueueBuffer: 10,
			Policy:      string(messaging.PolicyBlock),
			Endpoints:   []string{notification.SyncQueue, notification.AsyncQueue},
			Endpoint:    notification.AsyncQueue,
		},
		Log:     LogConfig{Level: "info", Encoding: "console"},
		Tracing: TracingConfig{Service: "teller", Version: "0.1.0"},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Allocator.Pages <= 0 {
		errs = append(errs, fmt.Errorf("allocator.pages must be > 0"))
	}
	if c.Allocator.PageSize < 16 {
		errs = append(errs, fmt.Errorf("allocator.pageSize must be >= 16, got %d", c.Allocator.PageSize))
	}
	if c.Ledger.MaxAccounts <= 0 {
		errs = append(errs, fmt.Errorf("ledger.maxAccounts must be > 0"))
	}
	if c.Registry.MaxTransactions <= 0 {
		errs = append(errs, fmt.Errorf("registry.maxTransactions must be > 0"))
	}
	if c.Messaging.QueueBuffer <= 0 {
		errs = append(errs, fmt.Errorf("messaging.queueBuffer must be > 0"))
	}
	switch messaging.Policy(strings.ToLower(c.Messaging.Policy)) {
	case messaging.PolicyBlock, messaging.PolicyFail:
	default:
		errs = append(errs, fmt.Errorf("messaging.policy must be block or fail, got %q", c.Messaging.Policy))
	}
	if c.Messaging.Endpoint != "" && len(c.Messaging.Endpoints) > 0 && !contains(c.Messaging.Endpoints, c.Messaging.Endpoint) {
		errs = append(errs, fmt.Errorf("messaging.endpoint %q is not one of %v", c.Messaging.Endpoint, c.Messaging.Endpoints))
	}
	if c.Accountant.Quantum <= 0 {
		errs = append(errs, fmt.Errorf("accountant.quantum must be > 0"))
	}
	if c.Accountant.Burst < 0 {
		errs = append(errs, fmt.Errorf("accountant.burst must be >= 0"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML document from URL on top of DefaultConfig.
// ${env.KEY} references are resolved before decoding.
func LoadConfig(ctx context.Context, fs afs.Service, URL string, options ...storage.Option) (*Config, error) {
	data, err := fs.DownloadWithURL(ctx, URL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to download config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal([]byte(env.Expand(string(data))), ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

func contains(items []string, item string) bool {
	for _, candidate := range items {
		if candidate == item {
			return true
		}
	}
	return false
}
