package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/viant/teller"
	"github.com/viant/teller/internal/command"
	"github.com/viant/teller/model"
	"github.com/viant/teller/service/accountant"
	"github.com/viant/teller/service/report"
)

var errExit = errors.New("exit")

var prompts = map[string]string{
	"customerId":     "Enter customer ID: ",
	"initialBalance": "Enter initial balance: ",
	"amount":         "Enter amount: ",
	"transactionId":  "Enter transaction ID: ",
}

// shell is the interactive banking menu.
type shell struct {
	srv     *teller.Service
	reports *report.Service
	scanner *bufio.Scanner
	out     io.Writer
}

func newShell(srv *teller.Service, reports *report.Service, in io.Reader, out io.Writer) *shell {
	return &shell{srv: srv, reports: reports, scanner: bufio.NewScanner(in), out: out}
}

// Run reads commands until exit or end of input.
func (s *shell) Run(ctx context.Context) error {
	for {
		s.menu()
		line, ok := s.read("Enter your choice: ")
		if !ok {
			return s.scanner.Err()
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		cmd, err := command.Parse([]byte(line))
		if err != nil {
			s.printf("Invalid choice. Please try again. (%v)\n", err)
			continue
		}
		if !s.complete(cmd) {
			return s.scanner.Err()
		}
		if err = s.execute(ctx, cmd); err != nil {
			if errors.Is(err, errExit) {
				s.printf("Exiting the banking system.\n")
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}

func (s *shell) menu() {
	s.printf("\nBanking System Menu:\n")
	for i, verb := range command.Verbs() {
		s.printf("%d. %s\n", i+1, command.Usage(verb))
	}
}

// complete prompts for missing arguments; false on end of input.
func (s *shell) complete(cmd *command.Command) bool {
	for !cmd.Complete() {
		name := cmd.Missing()[0]
		line, ok := s.read(prompts[name])
		if !ok {
			return false
		}
		value, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			s.printf("Invalid number: %q\n", line)
			continue
		}
		cmd.Args = append(cmd.Args, value)
	}
	return true
}

func (s *shell) execute(ctx context.Context, cmd *command.Command) error {
	switch cmd.Verb {
	case command.Create:
		if err := s.srv.CreateAccount(cmd.Arg(0), cmd.Arg(1)); err != nil {
			s.printf("Failed to create account: %v\n", err)
			return err
		}
		s.printf("Account created successfully.\n")
	case command.Deposit, command.Withdraw:
		id, err := s.srv.Submit(ctx, model.Operation(cmd.Verb), cmd.Arg(0), cmd.Arg(1))
		if err != nil {
			s.printf("Failed to start %v process: %v\n", cmd.Verb, err)
			return err
		}
		label := "Deposit"
		if cmd.Verb == command.Withdraw {
			label = "Withdrawal"
		}
		s.printf("%s process started: T%d\n", label, id)
	case command.Balance:
		balance, err := s.srv.BalanceOf(cmd.Arg(0))
		if err != nil {
			s.printf("Failed to check balance: %v\n", err)
			return err
		}
		s.printf("Account balance: %d\n", balance)
	case command.Terminate:
		if err := s.srv.Terminate(ctx, cmd.Arg(0)); err != nil {
			s.printf("Failed to terminate transaction: %v\n", err)
			return err
		}
		s.printf("Transaction %d terminated.\n", cmd.Arg(0))
	case command.Status:
		record, err := s.srv.Transaction(ctx, cmd.Arg(0))
		if err != nil {
			s.printf("Failed to load transaction: %v\n", err)
			return err
		}
		s.printf("Transaction %d: %v %v %d for customer %d\n", record.ID, record.Status, record.Operation, record.Amount, record.CustomerID)
	case command.MemoryMap:
		return s.reports.MemoryMap(s.out, s.srv.DumpPageMap())
	case command.Reconcile:
		result, err := s.reconcile(ctx)
		if err != nil {
			s.printf("Failed to reconcile: %v\n", err)
			return err
		}
		s.printf("Reconciled %d transactions at time %d.\n", result.Completed, result.CurrentTime)
	case command.Schedule:
		schedule, err := s.srv.DumpSchedule(ctx)
		if err != nil {
			return err
		}
		return s.reports.Gantt(s.out, schedule)
	case command.Metrics:
		metrics, err := s.srv.Metrics(ctx)
		if err != nil {
			return err
		}
		return s.reports.Metrics(s.out, metrics)
	case command.Notifications:
		messages, err := s.srv.DrainNotifications()
		if err != nil {
			return err
		}
		if len(messages) == 0 {
			s.printf("No notifications.\n")
		}
		s.notifications(messages)
	case command.Help:
		s.printf("Commands accept arguments inline, e.g. \"deposit 7 20\", or prompt for them.\n")
	case command.Exit:
		return errExit
	}
	return nil
}

// reconcile joins every worker while consuming the notifications they
// publish, so workers blocked on a full endpoint can finish.
func (s *shell) reconcile(ctx context.Context) (*accountant.Report, error) {
	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var messages []model.Message
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			msg, err := s.srv.ReceiveNotification(consumeCtx)
			if err != nil {
				return
			}
			messages = append(messages, *msg)
		}
	}()
	result, err := s.srv.Reconcile(ctx)
	cancel()
	<-done
	if rest, drainErr := s.srv.DrainNotifications(); drainErr == nil {
		messages = append(messages, rest...)
	}
	s.notifications(messages)
	return result, err
}

func (s *shell) notifications(messages []model.Message) {
	for _, msg := range messages {
		s.printf("T%d customer %d: %v\n", msg.TransactionID, msg.CustomerID, msg.Status)
	}
}

func (s *shell) read(prompt string) (string, bool) {
	s.printf("%s", prompt)
	if !s.scanner.Scan() {
		return "", false
	}
	return s.scanner.Text(), true
}

func (s *shell) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
