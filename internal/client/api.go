// Package client talks to the archive service and keeps a local snapshot of
// it for display.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"unsent/internal/message"
	"unsent/internal/query"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrNetwork     = errors.New("network failure")
	ErrBadResponse = errors.New("malformed response")
)

const DefaultTimeout = 10 * time.Second

// StatusError is a non-2xx reply. It matches ErrNetwork.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("http %d", e.Code)
}

func (e *StatusError) Unwrap() error { return ErrNetwork }

type API interface {
	List(ctx context.Context, q query.Query) ([]message.Message, error)
	Create(ctx context.Context, d message.Draft) (message.Message, error)
	Report(ctx context.Context, id string) error
}

// HTTPAPI is the archive service over HTTP. BaseURL includes the route
// prefix, e.g. "http://localhost:8080/archive".
type HTTPAPI struct {
	BaseURL string
	Key     string
	HTTP    *http.Client
}

func NewHTTPAPI(baseURL, key string) *HTTPAPI {
	return &HTTPAPI{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Key:     key,
		HTTP:    &http.Client{Timeout: DefaultTimeout},
	}
}

func (a *HTTPAPI) List(ctx context.Context, q query.Query) ([]message.Message, error) {
	v := url.Values{}
	if q.SearchText != "" {
		v.Set("q", q.SearchText)
	}
	if q.Emotion != "" && q.Emotion != query.All {
		v.Set("emotion", q.Emotion)
	}
	path := "/messages"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var out []message.Message
	if err := a.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *HTTPAPI) Create(ctx context.Context, d message.Draft) (message.Message, error) {
	var m message.Message
	if err := a.do(ctx, http.MethodPost, "/messages", d, &m); err != nil {
		return message.Message{}, err
	}
	return m, nil
}

func (a *HTTPAPI) Report(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodPost, "/messages/"+url.PathEscape(id)+"/report", nil, nil)
}

func (a *HTTPAPI) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.Key != "" {
		req.Header.Set("Authorization", "Bearer "+a.Key)
	}

	hc := a.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4<<10)).Decode(&e)
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return nil
}
