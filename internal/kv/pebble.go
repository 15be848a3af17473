package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
)

// Pebble is a Store backed by an embedded pebble database.
type Pebble struct {
	db *pebble.DB

	// pebble has no conditional put; insertMu serializes the
	// check-then-set in Insert within this process.
	insertMu sync.Mutex
}

// OpenPebble opens (or creates) a pebble database at path.
func OpenPebble(path string) (*Pebble, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble %s: %w", path, err)
	}
	return &Pebble{db: db}, nil
}

func (p *Pebble) Get(_ context.Context, key string) ([]byte, error) {
	v, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), v...), nil
}

func (p *Pebble) Set(_ context.Context, key string, value []byte) error {
	return p.db.Set([]byte(key), value, pebble.Sync)
}

func (p *Pebble) Insert(ctx context.Context, key string, value []byte) error {
	p.insertMu.Lock()
	defer p.insertMu.Unlock()

	_, err := p.Get(ctx, key)
	switch {
	case err == nil:
		return ErrExists
	case !errors.Is(err, ErrNotFound):
		return err
	}
	return p.db.Set([]byte(key), value, pebble.Sync)
}

func (p *Pebble) ScanPrefix(_ context.Context, prefix string) ([]Entry, error) {
	pfx := []byte(prefix)
	iter, err := p.db.NewIter(&pebble.IterOptions{LowerBound: pfx})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	out := make([]Entry, 0)
	for iter.SeekGE(pfx); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), pfx) {
			break
		}
		out = append(out, Entry{
			Key:   string(iter.Key()),
			Value: append([]byte(nil), iter.Value()...),
		})
	}
	return out, iter.Error()
}

func (p *Pebble) Close() error {
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
