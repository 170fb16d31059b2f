package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when a key has never been written.
var ErrNotFound = errors.New("key not found")

// KV is a key/value store of JSON documents. PutAll writes every entry or
// none of them.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	PutAll(ctx context.Context, entries map[string][]byte) error
	Close() error
}
