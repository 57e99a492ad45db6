package http

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newsdigest/internal/handler/http/authh"
	"newsdigest/internal/handler/http/collectionh"
	"newsdigest/internal/handler/http/digesth"
	"newsdigest/internal/handler/http/newsh"
	"newsdigest/internal/handler/http/requestid"
	"newsdigest/internal/repository"
	"newsdigest/internal/service/auth"
	"newsdigest/internal/usecase/collection"
	"newsdigest/internal/usecase/digest"
	"newsdigest/internal/usecase/news"
)

// RouterConfig carries everything the router needs to assemble the API.
type RouterConfig struct {
	Logger     *slog.Logger
	DB         *sql.DB
	Version    string
	CronSecret string

	Auth  *auth.Service
	Users repository.UserRepository

	News        *news.Service
	Collections *collection.Service
	Digest      *digest.Service
}

// NewRouter wires handlers, middleware and routes into one http.Handler.
// Probes, metrics, registration, login and the news streams are public;
// profile, favorites, collections and the self-serve digest require a
// Bearer token; the sweep trigger requires the cron secret instead.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(requestid.Middleware)
	r.Use(Logging(cfg.Logger))
	r.Use(Recover(cfg.Logger))

	r.Method(http.MethodGet, "/healthz", &HealthHandler{DB: cfg.DB, Version: cfg.Version})
	r.Method(http.MethodGet, "/readyz", &ReadyHandler{DB: cfg.DB})
	r.Method(http.MethodGet, "/livez", &LiveHandler{})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	authHandler := authh.NewHandler(cfg.Auth)
	newsHandler := newsh.NewHandler(cfg.News, cfg.Users)
	collectionHandler := collectionh.NewHandler(cfg.Collections)
	digestHandler := digesth.NewHandler(cfg.Digest, cfg.Users, cfg.CronSecret)

	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	r.Get("/news", newsHandler.All)
	r.Get("/news/headlines", newsHandler.Headlines)
	r.Get("/news/search", newsHandler.Search)

	r.Post("/digest/run", digestHandler.Run)

	r.Group(func(r chi.Router) {
		r.Use(authh.RequireAuth(cfg.Auth))

		r.Get("/auth/profile", authHandler.Profile)
		r.Patch("/auth/profile", authHandler.UpdateProfile)

		r.Get("/news/favorites", newsHandler.Favorites)

		r.Route("/collections", func(r chi.Router) {
			r.Post("/", collectionHandler.Create)
			r.Get("/", collectionHandler.List)
			r.Get("/{id}", collectionHandler.Get)
			r.Patch("/{id}", collectionHandler.Rename)
			r.Delete("/{id}", collectionHandler.Delete)
			r.Post("/{id}/articles", collectionHandler.AddArticle)
			r.Delete("/{id}/articles/{articleID}", collectionHandler.RemoveArticle)
		})

		r.Post("/digest/self", digestHandler.Self)
	})

	return r
}
