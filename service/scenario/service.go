package scenario

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/structology/conv"
	"github.com/viant/teller/internal/env"
	"github.com/viant/teller/internal/yml"
	"github.com/viant/teller/model"
	"github.com/viant/teller/service/accountant"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Core is the subset of the transaction core a scenario drives.
type Core interface {
	CreateAccount(customerID, initialBalance int) error
	Submit(ctx context.Context, operation model.Operation, customerID, amount int) (int, error)
	BalanceOf(customerID int) (int, error)
	Terminate(ctx context.Context, transactionID int) error
	Wait(ctx context.Context, transactionID int) error
	Transaction(ctx context.Context, transactionID int) (*model.Transaction, error)
	Reconcile(ctx context.Context) (*accountant.Report, error)
}

// Option customises the scenario service.
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFsOptions sets storage options used when loading scenarios
func WithFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.fsOptions = options
	}
}

// Service loads and replays scenarios
type Service struct {
	fs        afs.Service
	fsOptions []storage.Option
	converter *conv.Converter
	logger    *zap.Logger
}

// Load downloads and parses a scenario. A missing extension defaults to
// .yaml; ${env.KEY} references are resolved before parsing.
func (s *Service) Load(ctx context.Context, URL string) (*Scenario, error) {
	if path.Ext(URL) == "" {
		URL += ".yaml"
	}
	data, err := s.fs.DownloadWithURL(ctx, URL, s.fsOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario from %s: %w", URL, err)
	}
	ret, err := s.Decode([]byte(env.Expand(string(data))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario from %s: %w", URL, err)
	}
	if ret.Name == "" {
		base := path.Base(URL)
		ret.Name = strings.TrimSuffix(base, path.Ext(base))
	}
	return ret, nil
}

// Decode parses scenario YAML.
func (s *Service) Decode(data []byte) (*Scenario, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	root := (*yml.Node)(&node).Root()
	ret := &Scenario{}
	err := root.Pairs(func(key string, valueNode *yml.Node) error {
		switch strings.ToLower(key) {
		case "name":
			ret.Name = valueNode.Value
		case "steps":
			return valueNode.Items(func(index int, stepNode *yml.Node) error {
				step := &Step{}
				if err := s.converter.Convert(stepNode.Interface(), step); err != nil {
					return fmt.Errorf("step[%d]: %w", index, err)
				}
				if expect := stepNode.Lookup("expect"); expect != nil {
					balance, err := strconv.Atoi(expect.Value)
					if err != nil {
						return fmt.Errorf("step[%d]: invalid expect: %w", index, err)
					}
					step.ExpectBalance = &balance
				}
				if err := step.Validate(); err != nil {
					return fmt.Errorf("step[%d]: %w", index, err)
				}
				ret.Steps = append(ret.Steps, step)
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Run replays the steps in order. Step failures are recorded on the
// outcome; only an unmet balance expectation or context cancellation stops
// the run.
func (s *Service) Run(ctx context.Context, core Core, scenario *Scenario) ([]*Outcome, error) {
	var outcomes []*Outcome
	last := 0
	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		outcome := &Outcome{Step: step}
		outcomes = append(outcomes, outcome)
		transactionID := step.TransactionID
		if transactionID == 0 {
			transactionID = last
		}

		var err error
		switch Action(step.Action) {
		case ActionCreate:
			err = core.CreateAccount(step.CustomerID, step.Amount)
		case ActionDeposit, ActionWithdraw:
			outcome.TransactionID, err = core.Submit(ctx, model.Operation(step.Action), step.CustomerID, step.Amount)
			if err == nil {
				last = outcome.TransactionID
			}
		case ActionTerminate:
			outcome.TransactionID = transactionID
			err = core.Terminate(ctx, transactionID)
		case ActionWait:
			outcome.TransactionID = transactionID
			if err = core.Wait(ctx, transactionID); err == nil {
				var record *model.Transaction
				if record, err = core.Transaction(ctx, transactionID); err == nil {
					outcome.Status = record.Status.String()
				}
			}
		case ActionBalance:
			outcome.Balance, err = core.BalanceOf(step.CustomerID)
			if err == nil && step.ExpectBalance != nil && *step.ExpectBalance != outcome.Balance {
				return outcomes, fmt.Errorf("step[%d]: expected balance %d of customer %d, got %d", i, *step.ExpectBalance, step.CustomerID, outcome.Balance)
			}
		case ActionReconcile:
			_, err = core.Reconcile(ctx)
		}
		if err != nil {
			outcome.Error = err.Error()
			s.logger.Info("scenario step failed", zap.Int("step", i), zap.String("action", step.Action), zap.Error(err))
		}
	}
	return outcomes, nil
}

// New creates a scenario service
func New(fs afs.Service, opts ...Option) *Service {
	options := conv.DefaultOptions()
	options.IgnoreUnmapped = true
	s := &Service{
		fs:        fs,
		converter: conv.NewConverter(options),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
