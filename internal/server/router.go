package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/auth-service/internal/auth"
	"github.com/ayush/auth-service/internal/middleware"
)

// Deps are the collaborators the router dispatches to.
type Deps struct {
	Auth        *auth.Handler
	Tokens      middleware.TokenParser
	CORSOrigins []string
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// NewRouter assembles the HTTP routes.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", d.Auth.Signup)
		r.Post("/signin", d.Auth.Signin)
		r.With(middleware.RequireAuth(d.Tokens)).Get("/me", d.Auth.Me)
	})

	return r
}
