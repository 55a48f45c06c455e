package model

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle state of a transaction. The numeric values
// match the status codes reported on the notification channel.
type Status int

const (
	StatusFailed    Status = -1
	StatusRunning   Status = 0
	StatusCompleted Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// IsTerminal returns true once a worker (or terminate) settled the outcome.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Operation is the ledger mutation a transaction is bound to.
type Operation string

const (
	OperationDeposit  Operation = "deposit"
	OperationWithdraw Operation = "withdraw"
)

// ParseOperation converts a textual operation name.
func ParseOperation(text string) (Operation, error) {
	switch Operation(strings.ToLower(strings.TrimSpace(text))) {
	case OperationDeposit:
		return OperationDeposit, nil
	case OperationWithdraw:
		return OperationWithdraw, nil
	}
	return "", fmt.Errorf("unsupported operation: %q", text)
}

// Transaction is a registry record. Status is driven by the worker, the
// timing fields (RemainingTime, StartTime, EndTime) by the accountant.
type Transaction struct {
	ID            int       `json:"id"`
	CustomerID    int       `json:"customerId"`
	Status        Status    `json:"status"`
	Operation     Operation `json:"operation"`
	Amount        int       `json:"amount"`
	Quantum       int       `json:"quantum"`
	RemainingTime int       `json:"remainingTime"`
	StartTime     int       `json:"startTime"`
	EndTime       int       `json:"endTime"`
	Visited       bool      `json:"visited,omitempty"`
	Settled       bool      `json:"settled,omitempty"`
	Error         string    `json:"error,omitempty"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// Clone returns a copy of the record.
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	ret := *t
	return &ret
}

// Complete marks the record as completed by its worker.
func (t *Transaction) Complete() {
	t.Status = StatusCompleted
	t.Settled = true
	t.Error = ""
}

// Fail marks the record as failed, keeping the cause when available.
func (t *Transaction) Fail(err error) {
	t.Status = StatusFailed
	t.Settled = true
	if err != nil {
		t.Error = err.Error()
	}
}
