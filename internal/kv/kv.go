// Package kv defines the durable key-value map the archive persists into,
// plus the adapters that back it.
package kv

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("kv: key not found")
	ErrExists   = errors.New("kv: key already exists")
)

// Entry is one key/value pair returned by a prefix scan.
type Entry struct {
	Key   string
	Value []byte
}

// Store is an opaque durable map. Implementations must be safe for
// concurrent use. Set overwrites unconditionally; Insert only writes when
// the key is absent and reports ErrExists otherwise.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Insert(ctx context.Context, key string, value []byte) error
	ScanPrefix(ctx context.Context, prefix string) ([]Entry, error)
	Close() error
}
