// Package kvstore provides the durable string key-value storage the planner
// persists into. Values round-trip byte for byte.
package kvstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable marks a failure of the underlying storage backend.
var ErrUnavailable = errors.New("storage unavailable")

// Store is a durable string dictionary.
type Store interface {
	// Get returns ok=false with a nil error when key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes every entry or none of them.
	SetMany(ctx context.Context, entries map[string]string) error
	// Remove is a no-op for absent keys.
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

func unavailable(op, key string, err error) error {
	if errors.Is(err, ErrUnavailable) {
		return err
	}
	if key == "" {
		return fmt.Errorf("kv %s: %w: %w", op, ErrUnavailable, err)
	}
	return fmt.Errorf("kv %s %q: %w: %w", op, key, ErrUnavailable, err)
}
