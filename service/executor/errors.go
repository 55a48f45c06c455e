package executor

import "errors"

var (
	ErrInvalidCustomer   = errors.New("executor: customer id out of range")
	ErrInsufficientFunds = errors.New("executor: insufficient funds")
	ErrUnknownOperation  = errors.New("executor: unknown operation")
	ErrCancelled         = errors.New("executor: cancelled")
)
