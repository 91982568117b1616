package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/scholar-feed/backend/internal/middleware"
	"github.com/scholar-feed/backend/internal/observability"
)

type RouterDeps struct {
	Handler        *Handler
	Auth           *middleware.AuthMiddleware
	Realtime       http.Handler
	Gatherer       prometheus.Gatherer
	Metrics        *observability.Metrics
	Logger         zerolog.Logger
	AllowedOrigins []string
}

func NewRouter(d RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(d.Logger, d.Metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}
	if d.Realtime != nil {
		r.Method(http.MethodGet, "/ws", d.Realtime)
	}

	h := d.Handler

	// Public routes
	r.Post("/register", h.Register)
	r.Post("/signin", h.SignIn)
	r.Get("/recommendations", h.GetRecommendations)
	r.Get("/researchers", h.SearchResearchers)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(d.Auth.Authenticate)

		r.Put("/interests", h.UpdateInterests)
		r.Get("/interests", h.GetInterests)
		r.Get("/recommendations/personalized", h.GetPersonalizedRecommendations)
	})

	return r
}
