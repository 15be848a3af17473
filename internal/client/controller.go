package client

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"unsent/internal/message"
	"unsent/internal/query"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Controller keeps the local view of the archive in step with the service.
// Its methods are safe for concurrent use.
type Controller struct {
	api API
	log *slog.Logger

	mu       sync.Mutex
	state    State
	snapshot []message.Message
	gen      uint64
}

func NewController(api API, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{api: api, log: log}
}

// Refresh replaces the snapshot with the service's full list. Any failure,
// or an empty archive, leaves the controller Degraded with the bundled
// fallback messages. A response that arrives after a newer Refresh started
// is dropped.
func (c *Controller) Refresh(ctx context.Context) State {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.state = StateLoading
	c.mu.Unlock()

	msgs, err := c.api.List(ctx, query.Query{})

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.log.DebugContext(ctx, "refresh_stale_dropped", "gen", gen, "latest", c.gen)
		return c.state
	}

	switch {
	case err != nil:
		c.log.WarnContext(ctx, "refresh_failed_using_fallback", "err", err)
		c.snapshot = Fallback()
		c.state = StateDegraded
	case len(msgs) == 0:
		c.log.InfoContext(ctx, "archive_empty_using_fallback")
		c.snapshot = Fallback()
		c.state = StateDegraded
	default:
		c.snapshot = msgs
		c.state = StateReady
	}
	return c.state
}

// Submit creates a message and puts it at the front of the snapshot.
func (c *Controller) Submit(ctx context.Context, d message.Draft) (message.Message, error) {
	if strings.TrimSpace(d.Text) == "" {
		return message.Message{}, fmt.Errorf("%w: text required", ErrValidation)
	}

	m, err := c.api.Create(ctx, d)
	if err != nil {
		c.log.WarnContext(ctx, "submit_failed", "err", err)
		return message.Message{}, err
	}

	c.mu.Lock()
	c.snapshot = append([]message.Message{m}, c.snapshot...)
	c.mu.Unlock()
	return m, nil
}

// Flag reports a message. The snapshot is not touched either way.
func (c *Controller) Flag(ctx context.Context, id string) error {
	if err := c.api.Report(ctx, id); err != nil {
		c.log.WarnContext(ctx, "flag_failed", "id", id, "err", err)
		return err
	}
	return nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Snapshot() []message.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]message.Message, len(c.snapshot))
	copy(out, c.snapshot)
	return out
}

// View is the snapshot narrowed and ordered by q.
func (c *Controller) View(q query.Query) []message.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return query.Filter(c.snapshot, q)
}

// Random picks one message from the snapshot. r may be nil.
func (c *Controller) Random(r *rand.Rand) (message.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.snapshot) == 0 {
		return message.Message{}, false
	}
	var i int
	if r != nil {
		i = r.IntN(len(c.snapshot))
	} else {
		i = rand.IntN(len(c.snapshot))
	}
	return c.snapshot[i], true
}
