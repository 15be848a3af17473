package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"unsent/internal/archive"
	"unsent/internal/auth"
	"unsent/internal/config"
	httpx "unsent/internal/http"
	"unsent/internal/kv"
	"unsent/internal/message"
	"unsent/internal/query"

	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := &archive.Service{Repo: &message.Repo{KV: kv.NewMemory()}, Log: quietLog()}
	cfg := config.Config{RoutePrefix: "/archive"}
	srv := httptest.NewServer(httpx.NewRouter(cfg, svc, auth.StaticKey("k"), quietLog()))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPAPI_RoundTrip(t *testing.T) {
	srv := newServer(t)
	api := NewHTTPAPI(srv.URL+"/archive/", "k")
	ctx := context.Background()

	to := "D"
	anger := "Anger"
	m, err := api.Create(ctx, message.Draft{Text: "you", Recipient: &to, Emotion: &anger})
	require.NoError(t, err)
	require.Equal(t, "D", m.Recipient)
	require.Equal(t, message.Anger, m.Emotion)

	_, err = api.Create(ctx, message.Draft{Text: "plain"})
	require.NoError(t, err)

	all, err := api.List(ctx, query.Query{Emotion: query.All})
	require.NoError(t, err)
	require.Len(t, all, 2)

	angry, err := api.List(ctx, query.Query{Emotion: "Anger"})
	require.NoError(t, err)
	require.Len(t, angry, 1)

	require.NoError(t, api.Report(ctx, m.ID))
}

func TestHTTPAPI_Errors(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	err := NewHTTPAPI(srv.URL+"/archive", "k").Report(ctx, "missing")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusNotFound, se.Code)
	require.Equal(t, "Message not found", se.Message)
	require.ErrorIs(t, err, ErrNetwork)

	_, err = NewHTTPAPI(srv.URL+"/archive", "wrong").List(ctx, query.Query{})
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusUnauthorized, se.Code)
}

func TestHTTPAPI_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPAPI(srv.URL, "").List(context.Background(), query.Query{})
	require.ErrorIs(t, err, ErrBadResponse)

	c := NewController(NewHTTPAPI(srv.URL, ""), quietLog())
	require.Equal(t, StateDegraded, c.Refresh(context.Background()))
}
