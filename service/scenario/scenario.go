package scenario

import (
	"fmt"
	"strings"
)

// Action names a scenario step.
type Action string

const (
	ActionCreate    Action = "create"
	ActionDeposit   Action = "deposit"
	ActionWithdraw  Action = "withdraw"
	ActionTerminate Action = "terminate"
	ActionWait      Action = "wait"
	ActionBalance   Action = "balance"
	ActionReconcile Action = "reconcile"
)

// Scenario is a named list of steps.
type Scenario struct {
	Name  string  `json:"name"`
	Steps []*Step `json:"steps"`
}

// Step is a single scripted call. TransactionID 0 refers to the last
// submitted transaction. ExpectBalance, when set, is the balance a balance
// step must observe.
type Step struct {
	Action        string `json:"action"`
	CustomerID    int    `json:"customerId"`
	Amount        int    `json:"amount"`
	TransactionID int    `json:"transactionId"`
	ExpectBalance *int   `json:"-"`
}

// Validate checks the step shape.
func (s *Step) Validate() error {
	s.Action = strings.ToLower(strings.TrimSpace(s.Action))
	switch Action(s.Action) {
	case ActionCreate, ActionDeposit, ActionWithdraw, ActionBalance:
		if s.CustomerID < 0 {
			return fmt.Errorf("%v: invalid customerId %d", s.Action, s.CustomerID)
		}
	case ActionTerminate, ActionWait:
		if s.TransactionID < 0 {
			return fmt.Errorf("%v: invalid transactionId %d", s.Action, s.TransactionID)
		}
	case ActionReconcile:
	case "":
		return fmt.Errorf("step action was empty")
	default:
		return fmt.Errorf("unsupported step action: %q", s.Action)
	}
	return nil
}

// Outcome records what a step observed.
type Outcome struct {
	Step          *Step  `json:"step"`
	TransactionID int    `json:"transactionId,omitempty"`
	Status        string `json:"status,omitempty"`
	Balance       int    `json:"balance,omitempty"`
	Error         string `json:"error,omitempty"`
}
