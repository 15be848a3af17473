package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

var ErrUnauthorized = errors.New("unauthorized")

// Verifier accepts or rejects a bearer credential.
type Verifier interface {
	Verify(token string) error
}

// StaticKey accepts exactly one shared deployment key. It identifies the
// deployment, not a user.
type StaticKey string

func (k StaticKey) Verify(token string) error {
	if k == "" || subtle.ConstantTimeCompare([]byte(k), []byte(token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// AnyOf accepts a token when at least one verifier does.
type AnyOf []Verifier

func (a AnyOf) Verify(token string) error {
	for _, v := range a {
		if v != nil && v.Verify(token) == nil {
			return nil
		}
	}
	return ErrUnauthorized
}

func RequireBearer(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, "Bearer ") {
				unauthorized(w)
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))

			if err := v.Verify(token); err != nil {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
}
