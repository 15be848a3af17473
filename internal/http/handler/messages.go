package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"unsent/internal/archive"
	"unsent/internal/message"
	"unsent/internal/query"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 64 << 10

type MessageHandler struct {
	Svc *archive.Service
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	q := query.Query{
		SearchText: r.URL.Query().Get("q"),
		Emotion:    r.URL.Query().Get("emotion"),
	}

	msgs, err := h.Svc.List(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var d message.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	m, err := h.Svc.Create(r.Context(), d)
	switch {
	case errors.Is(err, archive.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to save message")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MessageHandler) Report(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.Svc.Report(r.Context(), id)
	switch {
	case errors.Is(err, message.ErrNotFound):
		writeError(w, http.StatusNotFound, "Message not found")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *MessageHandler) Emotions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, message.Emotions)
}
