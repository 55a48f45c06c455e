package ledger

import "errors"

var (
	// ErrInvalidAmount is returned for negative amounts.
	ErrInvalidAmount = errors.New("ledger: invalid amount")

	// ErrInvalidID is returned for negative customer ids.
	ErrInvalidID = errors.New("ledger: invalid customer id")

	// ErrNotFound is returned when no account has the customer id.
	ErrNotFound = errors.New("ledger: account not found")

	// ErrDuplicateID is returned when the customer id is already taken.
	ErrDuplicateID = errors.New("ledger: account already exists")

	// ErrCapacityExceeded is returned when the account table is full.
	ErrCapacityExceeded = errors.New("ledger: capacity exceeded")

	// ErrNoStorage is returned when no page could be allocated.
	ErrNoStorage = errors.New("ledger: no storage available")

	// ErrInsufficientFunds is returned when a withdrawal exceeds the balance.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")

	// ErrOverflow is returned when a deposit would exceed the largest representable balance.
	ErrOverflow = errors.New("ledger: balance overflow")
)
