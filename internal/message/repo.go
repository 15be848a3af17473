package message

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"unsent/internal/kv"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("message not found")
	ErrStore    = errors.New("message store failure")
)

// KeyPrefix namespaces message records in the key-value map.
const KeyPrefix = "msg_"

const DefaultMaxIDAttempts = 5

// IDFunc produces a candidate id. Candidates may collide; Repo retries.
type IDFunc func() (string, error)

// RandomID returns 12 hex characters taken from a random UUID.
func RandomID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(u[:6]), nil
}

// Repo owns the message key space. The zero value of every field except KV
// is usable.
//
// Report is a read-modify-write without compare-and-swap: two concurrent
// reports on one id can both read n and both write n+1.
type Repo struct {
	KV            kv.Store
	NewID         IDFunc
	Now           func() time.Time
	MaxIDAttempts int
}

func Key(id string) string { return KeyPrefix + id }

func (r *Repo) Create(ctx context.Context, d Draft) (Message, error) {
	newID := r.NewID
	if newID == nil {
		newID = RandomID
	}
	attempts := r.MaxIDAttempts
	if attempts <= 0 {
		attempts = DefaultMaxIDAttempts
	}

	for i := 0; i < attempts; i++ {
		id, err := newID()
		if err != nil {
			return Message{}, fmt.Errorf("%w: generate id: %w", ErrStore, err)
		}

		m := New(id, d, r.now())
		b, err := json.Marshal(m)
		if err != nil {
			return Message{}, fmt.Errorf("%w: encode %s: %w", ErrStore, id, err)
		}

		err = r.KV.Insert(ctx, Key(id), b)
		if errors.Is(err, kv.ErrExists) {
			continue
		}
		if err != nil {
			return Message{}, fmt.Errorf("%w: insert %s: %w", ErrStore, id, err)
		}
		return m, nil
	}
	return Message{}, fmt.Errorf("%w: no free id after %d attempts", ErrStore, attempts)
}

// List returns every stored message in unspecified order.
func (r *Repo) List(ctx context.Context) ([]Message, error) {
	entries, err := r.KV.ScanPrefix(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: scan: %w", ErrStore, err)
	}

	out := make([]Message, 0, len(entries))
	for _, e := range entries {
		var m Message
		if err := json.Unmarshal(e.Value, &m); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %w", ErrStore, e.Key, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, id string) (Message, error) {
	b, err := r.KV.Get(ctx, Key(id))
	if errors.Is(err, kv.ErrNotFound) {
		return Message{}, ErrNotFound
	}
	if err != nil {
		return Message{}, fmt.Errorf("%w: get %s: %w", ErrStore, id, err)
	}

	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return Message{}, fmt.Errorf("%w: decode %s: %w", ErrStore, id, err)
	}
	return m, nil
}

// Report adds one to the message's report counter.
func (r *Repo) Report(ctx context.Context, id string) error {
	m, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if m.Reports < 0 {
		m.Reports = 0
	}
	m.Reports++

	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrStore, id, err)
	}
	if err := r.KV.Set(ctx, Key(id), b); err != nil {
		return fmt.Errorf("%w: set %s: %w", ErrStore, id, err)
	}
	return nil
}

func (r *Repo) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
