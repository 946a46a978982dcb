// Package kvstore provides the durable string-keyed storage every higher-level
// store serializes its JSON records into.
package kvstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable wraps any backend failure (connection lost, quota, closed store).
var ErrUnavailable = errors.New("kvstore: storage unavailable")

// Store is a flat string-keyed storage namespace.
//
// Implementations guarantee that a single call is safe for concurrent use but
// provide no transactions: concurrent read-modify-write sequences race and the
// last Set wins.
type Store interface {
	// Get returns the value stored under key. A missing key is ok == false
	// with a nil error.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys lists every key starting with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases the backend.
	Close() error
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
