package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"testing"
	"time"

	"unsent/internal/message"
	"unsent/internal/query"

	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	list   func(ctx context.Context) ([]message.Message, error)
	create func(ctx context.Context, d message.Draft) (message.Message, error)
	report func(ctx context.Context, id string) error

	mu      sync.Mutex
	creates int
}

func (f *fakeAPI) List(ctx context.Context, _ query.Query) ([]message.Message, error) {
	return f.list(ctx)
}

func (f *fakeAPI) Create(ctx context.Context, d message.Draft) (message.Message, error) {
	f.mu.Lock()
	f.creates++
	f.mu.Unlock()
	return f.create(ctx, d)
}

func (f *fakeAPI) Report(ctx context.Context, id string) error { return f.report(ctx, id) }

func quietLog() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFallbackDataset(t *testing.T) {
	fb := Fallback()
	require.Len(t, fb, 8)
	for _, m := range fb {
		require.NotEmpty(t, m.ID)
		require.NotEmpty(t, m.Text)
		require.NotEmpty(t, m.Recipient)
		require.NotEqual(t, message.Unsent, message.ParseEmotion(string(m.Emotion)))
		require.False(t, m.CreatedAt.IsZero())
	}
	require.Equal(t, at("2024-12-20T10:00:00Z"), fb[0].CreatedAt)
	require.Equal(t, message.Anger, fb[7].Emotion)

	fb[0].Text = "changed"
	require.NotEqual(t, "changed", Fallback()[0].Text)
}

func TestRefresh_Ready(t *testing.T) {
	want := []message.Message{{ID: "a", Text: "x", CreatedAt: at("2024-12-24T16:00:00Z")}}
	c := NewController(&fakeAPI{list: func(context.Context) ([]message.Message, error) {
		return want, nil
	}}, quietLog())

	require.Equal(t, StateIdle, c.State())
	require.Equal(t, StateReady, c.Refresh(context.Background()))
	require.Equal(t, want, c.Snapshot())
}

func TestRefresh_FailureUsesFallback(t *testing.T) {
	c := NewController(&fakeAPI{list: func(context.Context) ([]message.Message, error) {
		return nil, ErrNetwork
	}}, quietLog())

	require.Equal(t, StateDegraded, c.Refresh(context.Background()))
	require.Equal(t, Fallback(), c.Snapshot())
}

func TestRefresh_EmptyUsesFallback(t *testing.T) {
	c := NewController(&fakeAPI{list: func(context.Context) ([]message.Message, error) {
		return []message.Message{}, nil
	}}, quietLog())

	require.Equal(t, StateDegraded, c.Refresh(context.Background()))
	require.Len(t, c.Snapshot(), 8)
}

func TestRefresh_UnreachableService(t *testing.T) {
	api := NewHTTPAPI("http://127.0.0.1:1/archive", "k")
	api.HTTP = &http.Client{Timeout: time.Second}
	c := NewController(api, quietLog())

	require.Equal(t, StateDegraded, c.Refresh(context.Background()))
	require.Equal(t, Fallback(), c.Snapshot())
}

func TestRefresh_StaleResponseDropped(t *testing.T) {
	slowRelease := make(chan struct{})
	slowStarted := make(chan struct{})
	var n int
	var mu sync.Mutex

	api := &fakeAPI{list: func(context.Context) ([]message.Message, error) {
		mu.Lock()
		n++
		call := n
		mu.Unlock()
		if call == 1 {
			close(slowStarted)
			<-slowRelease
			return []message.Message{{ID: "old"}}, nil
		}
		return []message.Message{{ID: "new"}}, nil
	}}
	c := NewController(api, quietLog())

	done := make(chan State)
	go func() { done <- c.Refresh(context.Background()) }()
	<-slowStarted

	require.Equal(t, StateReady, c.Refresh(context.Background()))
	close(slowRelease)
	<-done

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	require.Equal(t, "new", snap[0].ID)
	require.Equal(t, StateReady, c.State())
}

func TestSubmit_ValidatesLocally(t *testing.T) {
	api := &fakeAPI{}
	c := NewController(api, quietLog())

	_, err := c.Submit(context.Background(), message.Draft{Text: "  "})
	require.ErrorIs(t, err, ErrValidation)
	require.Zero(t, api.creates)
}

func TestSubmit_PrependsWithoutRefetch(t *testing.T) {
	lists := 0
	api := &fakeAPI{
		list: func(context.Context) ([]message.Message, error) {
			lists++
			return []message.Message{{ID: "a"}, {ID: "b"}}, nil
		},
		create: func(_ context.Context, d message.Draft) (message.Message, error) {
			return message.Message{ID: "c", Text: d.Text}, nil
		},
	}
	c := NewController(api, quietLog())
	c.Refresh(context.Background())

	m, err := c.Submit(context.Background(), message.Draft{Text: "hi"})
	require.NoError(t, err)
	require.Equal(t, "c", m.ID)

	ids := []string{}
	for _, m := range c.Snapshot() {
		ids = append(ids, m.ID)
	}
	require.Equal(t, []string{"c", "a", "b"}, ids)
	require.Equal(t, 1, lists)
}

func TestSubmit_FailureLeavesSnapshot(t *testing.T) {
	api := &fakeAPI{
		list: func(context.Context) ([]message.Message, error) {
			return []message.Message{{ID: "a"}}, nil
		},
		create: func(context.Context, message.Draft) (message.Message, error) {
			return message.Message{}, &StatusError{Code: 500, Message: "Failed to save message"}
		},
	}
	c := NewController(api, quietLog())
	c.Refresh(context.Background())

	_, err := c.Submit(context.Background(), message.Draft{Text: "hi"})
	require.ErrorIs(t, err, ErrNetwork)
	require.Len(t, c.Snapshot(), 1)
}

func TestFlag_NeverMutatesSnapshot(t *testing.T) {
	fail := errors.New("down")
	var reportErr error
	api := &fakeAPI{
		list: func(context.Context) ([]message.Message, error) {
			return []message.Message{{ID: "a", Reports: 0}}, nil
		},
		report: func(context.Context, string) error { return reportErr },
	}
	c := NewController(api, quietLog())
	c.Refresh(context.Background())
	before := c.Snapshot()

	require.NoError(t, c.Flag(context.Background(), "a"))
	require.Equal(t, before, c.Snapshot())

	reportErr = fail
	require.ErrorIs(t, c.Flag(context.Background(), "a"), fail)
	require.Equal(t, before, c.Snapshot())
}

func TestView(t *testing.T) {
	c := NewController(&fakeAPI{list: func(context.Context) ([]message.Message, error) {
		return nil, ErrNetwork
	}}, quietLog())
	c.Refresh(context.Background())

	all := c.View(query.Query{Emotion: query.All})
	require.Len(t, all, 8)
	require.Equal(t, message.Anger, all[0].Emotion)
	require.Equal(t, message.Nostalgia, all[7].Emotion)

	mom := c.View(query.Query{SearchText: "mom"})
	require.Len(t, mom, 1)
	require.Equal(t, message.Grief, mom[0].Emotion)
}

func TestRandom(t *testing.T) {
	c := NewController(&fakeAPI{}, quietLog())
	_, ok := c.Random(nil)
	require.False(t, ok)

	c.api = &fakeAPI{list: func(context.Context) ([]message.Message, error) {
		return nil, ErrNetwork
	}}
	c.Refresh(context.Background())

	r := rand.New(rand.NewPCG(1, 2))
	ids := map[string]bool{}
	for _, m := range c.Snapshot() {
		ids[m.ID] = true
	}
	for i := 0; i < 20; i++ {
		m, ok := c.Random(r)
		require.True(t, ok)
		require.True(t, ids[m.ID])
	}
}
