package http

import (
	"log/slog"
	"net/http"

	"unsent/internal/archive"
	"unsent/internal/auth"
	"unsent/internal/config"
	"unsent/internal/http/handler"
	mw "unsent/internal/http/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(cfg config.Config, svc *archive.Service, verifier auth.Verifier, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger(log))
	r.Use(chimw.Recoverer)
	r.Use(mw.Metrics)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	mh := &handler.MessageHandler{Svc: svc}
	limit := mw.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)

	p := cfg.RoutePrefix
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireBearer(verifier))

		r.Get(p+"/emotions", mh.Emotions)
		r.Get(p+"/messages", mh.List)
		r.With(limit).Post(p+"/messages", mh.Create)
		r.With(limit).Post(p+"/messages/{id}/report", mh.Report)
	})

	return r
}
