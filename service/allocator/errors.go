package allocator

import "errors"

var (
	// ErrExhausted is returned by Allocate when the pool has no pages at all.
	ErrExhausted = errors.New("allocator: exhausted")

	// ErrInvalidRef indicates a page reference outside the pool.
	ErrInvalidRef = errors.New("allocator: invalid page reference")

	// ErrPageOverflow indicates a write larger than the page size.
	ErrPageOverflow = errors.New("allocator: page overflow")
)
