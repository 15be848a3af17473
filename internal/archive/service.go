// Package archive is the request-facing layer over the message record
// store: it validates input, orders listings and records metrics.
package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"unsent/internal/message"
	"unsent/internal/metrics"
	"unsent/internal/query"
)

var ErrValidation = errors.New("validation failed")

const DefaultMaxTextLength = 2000

type Service struct {
	Repo          *message.Repo
	Log           *slog.Logger
	MaxTextLength int
}

// List returns the archive newest first, narrowed by q.
func (s *Service) List(ctx context.Context, q query.Query) ([]message.Message, error) {
	all, err := s.Repo.List(ctx)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("list").Inc()
		s.log().ErrorContext(ctx, "list_messages_failed", "err", err)
		return nil, err
	}
	return query.Filter(all, q), nil
}

func (s *Service) Create(ctx context.Context, d message.Draft) (message.Message, error) {
	if err := s.validate(d); err != nil {
		return message.Message{}, err
	}

	m, err := s.Repo.Create(ctx, d)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("create").Inc()
		s.log().ErrorContext(ctx, "create_message_failed", "err", err)
		return message.Message{}, err
	}

	metrics.MessagesCreated.Inc()
	s.log().InfoContext(ctx, "message_created", "id", m.ID, "emotion", string(m.Emotion))
	return m, nil
}

func (s *Service) Report(ctx context.Context, id string) error {
	err := s.Repo.Report(ctx, id)
	switch {
	case errors.Is(err, message.ErrNotFound):
		s.log().WarnContext(ctx, "report_unknown_message", "id", id)
		return err
	case err != nil:
		metrics.StoreErrors.WithLabelValues("report").Inc()
		s.log().ErrorContext(ctx, "report_message_failed", "id", id, "err", err)
		return err
	}

	metrics.Reports.Inc()
	s.log().InfoContext(ctx, "message_reported", "id", id)
	return nil
}

func (s *Service) validate(d message.Draft) error {
	text := strings.TrimSpace(d.Text)
	if text == "" {
		return fmt.Errorf("%w: text required", ErrValidation)
	}
	max := s.MaxTextLength
	if max <= 0 {
		max = DefaultMaxTextLength
	}
	if n := utf8.RuneCountInString(text); n > max {
		return fmt.Errorf("%w: text longer than %d characters", ErrValidation, max)
	}
	return nil
}

func (s *Service) log() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}
