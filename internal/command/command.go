// Package command parses interactive menu input such as "deposit 7 20".
package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/parsly"
)

// Verb identifies a menu command.
type Verb string

const (
	Create        Verb = "create"
	Deposit       Verb = "deposit"
	Withdraw      Verb = "withdraw"
	Balance       Verb = "balance"
	MemoryMap     Verb = "map"
	Exit          Verb = "exit"
	Terminate     Verb = "terminate"
	Reconcile     Verb = "reconcile"
	Schedule      Verb = "schedule"
	Notifications Verb = "notifications"
	Metrics       Verb = "metrics"
	Status        Verb = "status"
	Help          Verb = "help"
)

// Command is a parsed menu line.
type Command struct {
	Verb Verb
	Args []int
}

// Arg returns the i-th argument.
func (c *Command) Arg(i int) int {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return 0
}

// arity lists the argument names per verb.
var arity = map[Verb][]string{
	Create:        {"customerId", "initialBalance"},
	Deposit:       {"customerId", "amount"},
	Withdraw:      {"customerId", "amount"},
	Balance:       {"customerId"},
	MemoryMap:     nil,
	Exit:          nil,
	Terminate:     {"transactionId"},
	Reconcile:     nil,
	Schedule:      nil,
	Notifications: nil,
	Metrics:       nil,
	Status:        {"transactionId"},
	Help:          nil,
}

var aliases = map[string]Verb{
	"quit":    Exit,
	"memory":  MemoryMap,
	"gantt":   Schedule,
	"check":   Balance,
	"drain":   Notifications,
	"account": Create,
}

// Usage returns the argument synopsis of a verb.
func Usage(verb Verb) string {
	names, ok := arity[verb]
	if !ok {
		return ""
	}
	if len(names) == 0 {
		return string(verb)
	}
	return string(verb) + " <" + strings.Join(names, "> <") + ">"
}

// Verbs returns the known verbs in menu order; menu choice n selects
// Verbs()[n-1].
func Verbs() []Verb {
	return []Verb{Create, Deposit, Withdraw, Balance, MemoryMap, Exit, Terminate, Status, Reconcile, Schedule, Metrics, Notifications, Help}
}

// Parse parses "<verb|choice> [int ...]". A numbered choice selects the
// matching menu entry.
func Parse(input []byte) (*Command, error) {
	cursor := parsly.NewCursor("", input, 0)
	ret := &Command{}

	matched := cursor.MatchAfterOptional(whitespaceToken, identifierToken, integerToken)
	switch matched.Code {
	case identifierToken.Code:
		text := strings.ToLower(matched.Text(cursor))
		ret.Verb = Verb(text)
		if alias, ok := aliases[text]; ok {
			ret.Verb = alias
		}
		if _, ok := arity[ret.Verb]; !ok {
			return nil, fmt.Errorf("unknown command: %q", text)
		}
	case integerToken.Code:
		choice, _ := strconv.Atoi(matched.Text(cursor))
		verbs := Verbs()
		if choice < 1 || choice > len(verbs) {
			return nil, fmt.Errorf("invalid choice: %d", choice)
		}
		ret.Verb = verbs[choice-1]
	default:
		return nil, cursor.NewError(identifierToken)
	}

	for {
		matched = cursor.MatchAfterOptional(whitespaceToken, integerToken)
		if matched.Code != integerToken.Code {
			break
		}
		value, err := strconv.Atoi(matched.Text(cursor))
		if err != nil {
			return nil, fmt.Errorf("invalid argument %q: %w", matched.Text(cursor), err)
		}
		ret.Args = append(ret.Args, value)
	}
	cursor.MatchOne(whitespaceToken)
	if cursor.Pos < cursor.InputSize {
		return nil, cursor.NewError(integerToken)
	}
	if expected := len(arity[ret.Verb]); len(ret.Args) > expected {
		return nil, fmt.Errorf("%v: too many arguments, usage: %v", ret.Verb, Usage(ret.Verb))
	}
	return ret, nil
}

// Complete reports whether every argument of the verb was supplied.
func (c *Command) Complete() bool {
	return len(c.Args) == len(arity[c.Verb])
}

// Missing returns the names of arguments not supplied yet.
func (c *Command) Missing() []string {
	names := arity[c.Verb]
	if len(c.Args) >= len(names) {
		return nil
	}
	return names[len(c.Args):]
}
