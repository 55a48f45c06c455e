package teller

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/teller/internal/clock"
	"github.com/viant/teller/internal/logging"
	"github.com/viant/teller/model"
	"github.com/viant/teller/progress"
	"github.com/viant/teller/service/accountant"
	"github.com/viant/teller/service/allocator"
	"github.com/viant/teller/service/dao/transaction/memory"
	"github.com/viant/teller/service/executor"
	"github.com/viant/teller/service/ledger"
	"github.com/viant/teller/service/messaging"
	mmemory "github.com/viant/teller/service/messaging/memory"
	"github.com/viant/teller/service/notification"
	"github.com/viant/teller/service/processor"
	"github.com/viant/teller/tracing"
	"go.uber.org/zap"
)

// Service is the transaction core facade. Every component is owned by the
// instance; two services never share state.
type Service struct {
	config          *Config
	logger          *zap.Logger
	tracingErr      error
	executorOptions []executor.Option

	clock      *clock.Logical
	allocator  *allocator.Service
	ledger     *ledger.Service
	registry   *memory.Service
	notifier   *notification.Service
	executor   executor.Service
	processor  *processor.Service
	accountant *accountant.Service
	progress   *progress.Progress
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.tracingErr != nil {
		return fmt.Errorf("failed to initialise tracing: %w", s.tracingErr)
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if err := s.ensureLogger(); err != nil {
		return err
	}
	if tc := s.config.Tracing; tc.Enabled {
		if err := tracing.Init(tc.Service, tc.Version, tc.Output); err != nil {
			return fmt.Errorf("failed to initialise tracing: %w", err)
		}
	}

	var err error
	queueConfig := mmemory.DefaultConfig()
	queueConfig.QueueBuffer = s.config.Messaging.QueueBuffer
	queueConfig.Policy = messaging.Policy(strings.ToLower(s.config.Messaging.Policy))
	if s.notifier, err = notification.New(queueConfig, s.config.Messaging.Endpoints...); err != nil {
		return fmt.Errorf("failed to open notification endpoints: %w", err)
	}
	endpoint := s.config.Messaging.Endpoint
	if endpoint == "" {
		endpoint = notification.AsyncQueue
	}
	if _, err = s.notifier.Endpoint(endpoint); err != nil {
		return fmt.Errorf("failed to bind worker endpoint: %w", err)
	}

	s.clock = &clock.Logical{}
	s.allocator = allocator.New(s.clock,
		allocator.Config{Pages: s.config.Allocator.Pages, PageSize: s.config.Allocator.PageSize},
		allocator.WithLogger(s.logger.Named("allocator")))
	s.ledger = ledger.New(s.clock, s.allocator,
		ledger.Config{MaxAccounts: s.config.Ledger.MaxAccounts},
		ledger.WithLogger(s.logger.Named("ledger")))
	s.registry = memory.New(memory.Config{
		MaxTransactions: s.config.Registry.MaxTransactions,
		Quantum:         s.config.Accountant.Quantum,
		Burst:           s.config.Accountant.Burst,
	})
	s.progress = progress.New()
	s.progress.OnChange(progressLogger(s.logger.Named("progress")))
	executorOptions := append([]executor.Option{executor.WithListener(executor.LogListener(s.logger.Named("executor")))}, s.executorOptions...)
	s.executor = executor.NewService(s.ledger, executorOptions...)
	if s.processor, err = processor.New(
		processor.WithRegistry(s.registry),
		processor.WithExecutor(s.executor),
		processor.WithNotifier(s.notifier),
		processor.WithEndpoint(endpoint),
		processor.WithProgress(s.progress),
		processor.WithLogger(s.logger.Named("processor")),
	); err != nil {
		return err
	}
	s.accountant = accountant.New(s.registry, s.processor, accountant.WithLogger(s.logger.Named("accountant")))
	return nil
}

// progressLogger reports counter changes at debug level.
func progressLogger(logger *zap.Logger) func(progress.Snapshot) {
	return func(snapshot progress.Snapshot) {
		logger.Debug("transaction progress",
			zap.Int("total", snapshot.TotalTransactions),
			zap.Int("running", snapshot.RunningTransactions),
			zap.Int("completed", snapshot.CompletedTransactions),
			zap.Int("failed", snapshot.FailedTransactions),
			zap.Int("dropped", snapshot.DroppedNotifications))
	}
}

func (s *Service) ensureLogger() error {
	if s.logger != nil {
		return nil
	}
	logger, err := logging.New(s.config.Log.Level, s.config.Log.Encoding)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	s.logger = logger
	return nil
}

// CreateAccount opens an account with an initial balance.
func (s *Service) CreateAccount(customerID, initialBalance int) error {
	return s.ledger.CreateAccount(customerID, initialBalance)
}

// Submit records a transaction and starts its worker. The outcome is only
// visible through Transaction or the notification endpoint.
func (s *Service) Submit(ctx context.Context, operation model.Operation, customerID, amount int) (int, error) {
	return s.processor.Submit(ctx, customerID, operation, amount)
}

// BalanceOf returns the current balance of an account.
func (s *Service) BalanceOf(customerID int) (int, error) {
	return s.ledger.BalanceOf(customerID)
}

// Accounts returns a snapshot of all accounts.
func (s *Service) Accounts() []model.Account {
	return s.ledger.Accounts()
}

// Terminate cancels a running transaction.
func (s *Service) Terminate(ctx context.Context, transactionID int) error {
	return s.processor.Terminate(ctx, transactionID)
}

// Wait blocks until the worker of a transaction exited.
func (s *Service) Wait(ctx context.Context, transactionID int) error {
	return s.processor.Wait(ctx, transactionID)
}

// Transaction returns a copy of a transaction record.
func (s *Service) Transaction(ctx context.Context, transactionID int) (*model.Transaction, error) {
	return s.registry.Load(ctx, transactionID)
}

// Transactions returns copies of all transaction records.
func (s *Service) Transactions(ctx context.Context) ([]*model.Transaction, error) {
	return s.registry.List(ctx)
}

// DrainNotifications returns every message queued on the worker endpoint.
func (s *Service) DrainNotifications() ([]model.Message, error) {
	return s.notifier.Drain(s.endpoint())
}

// ReceiveNotification blocks until a message arrives on the worker endpoint.
func (s *Service) ReceiveNotification(ctx context.Context) (*model.Message, error) {
	return s.notifier.Receive(ctx, s.endpoint())
}

// Notifications exposes every named endpoint, including the ones workers do
// not publish to.
func (s *Service) Notifications() *notification.Service {
	return s.notifier
}

// DumpPageMap returns the allocator page table.
func (s *Service) DumpPageMap() []model.PageInfo {
	return s.allocator.Pages()
}

// DumpSchedule returns the accounted interval of every completed transaction.
func (s *Service) DumpSchedule(ctx context.Context) ([]model.ScheduleEntry, error) {
	return s.accountant.Schedule(ctx)
}

// Reconcile runs a round-robin accounting pass.
func (s *Service) Reconcile(ctx context.Context) (*accountant.Report, error) {
	return s.accountant.Run(ctx)
}

// Metrics returns the accounting figures.
func (s *Service) Metrics(ctx context.Context) (*model.Metrics, error) {
	return s.accountant.Metrics(ctx)
}

// Progress returns transaction counters.
func (s *Service) Progress() progress.Snapshot {
	return s.progress.Snapshot()
}

// Logger returns the service logger.
func (s *Service) Logger() *zap.Logger {
	return s.logger
}

// Config returns the effective configuration.
func (s *Service) Config() *Config {
	return s.config
}

// Shutdown cancels outstanding workers and waits for them to exit.
func (s *Service) Shutdown() {
	s.processor.Shutdown()
	_ = s.logger.Sync()
}

func (s *Service) endpoint() string {
	if s.config.Messaging.Endpoint == "" {
		return notification.AsyncQueue
	}
	return s.config.Messaging.Endpoint
}

// New creates a transaction core. It fails when the configuration is invalid
// or the notification endpoints cannot be opened.
func New(options ...Option) (*Service, error) {
	ret := &Service{config: DefaultConfig()}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}
