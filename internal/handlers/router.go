package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes builds the full API router.
func (h *Handler) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/predictions", func(r chi.Router) {
			r.Get("/match/{matchId}", h.GetMatchForecast)
			r.Get("/match/{matchId}/scoreline", h.GetLikelyScoreline)
			r.Post("/from-stats", h.ForecastFromStats)
		})

		r.Route("/config/models", func(r chi.Router) {
			r.Get("/", h.ListModelConfigs)
			r.Post("/", h.CreateModelConfig)
			r.Get("/active", h.GetActiveModelConfig)
			r.Get("/{version}", h.GetModelConfig)
			r.Put("/{version}", h.UpdateModelConfig)
			r.Delete("/{version}", h.DeleteModelConfig)
			r.Post("/{version}/activate", h.ActivateModelConfig)
			r.Post("/validate", h.ValidateModelConfig)
		})

		r.Post("/ingest/results", h.IngestResults)
	})

	return r
}
