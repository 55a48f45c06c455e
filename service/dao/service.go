package dao

import (
	"context"
)

// Service is a keyed record store. Records are never deleted.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
