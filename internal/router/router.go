package router

import (
	"net/http"

	"cardvault-rest-api/internal/handler"
	"cardvault-rest-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler          *handler.Handler
	AuthHandler      *handler.AuthHandler
	ZoneHandler      *handler.ZoneHandler
	ContainerHandler *handler.ContainerHandler
	CardHandler      *handler.CardHandler
	ComicHandler     *handler.ComicHandler
	ItemsHandler     *handler.ItemsHandler
	TransferHandler  *handler.TransferHandler
	PrefsHandler     *handler.PrefsHandler
	AdminHandler     *handler.AdminHandler
	AuthMiddleware   func(http.Handler) http.Handler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Token"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
		r.Get("/api/v1/health", cfg.Handler.Health)
		r.Get("/api/v1/ready", cfg.Handler.Ready)
	}

	// Token generation is the way in; it cannot sit behind the auth gate.
	if cfg.AuthHandler != nil {
		r.Post("/api/v1/auth/token", cfg.AuthHandler.GenerateToken)
	}

	// AUTHENTICATED routes (use Group to apply auth middleware only to these)
	r.Group(func(r chi.Router) {
		if cfg.AuthMiddleware != nil {
			r.Use(cfg.AuthMiddleware)
		}

		r.Route("/api/v1", func(r chi.Router) {
			// Auth session management
			if cfg.AuthHandler != nil {
				r.Route("/auth", func(r chi.Router) {
					r.Post("/revoke", cfg.AuthHandler.RevokeToken)
					r.Post("/refresh", cfg.AuthHandler.RefreshToken)
				})
			}

			// Zone endpoints
			if cfg.ZoneHandler != nil {
				r.Route("/zones", func(r chi.Router) {
					r.Post("/", cfg.ZoneHandler.Create)
					r.Get("/", cfg.ZoneHandler.List)
					r.Get("/{id}", cfg.ZoneHandler.Get)
					r.Put("/{id}", cfg.ZoneHandler.Update)
					r.Delete("/{id}", cfg.ZoneHandler.Delete)
				})
			}

			// Container endpoints
			if cfg.ContainerHandler != nil {
				r.Route("/containers", func(r chi.Router) {
					r.Post("/", cfg.ContainerHandler.Create)
					r.Get("/", cfg.ContainerHandler.List)
					r.Get("/{id}", cfg.ContainerHandler.Get)
					r.Put("/{id}", cfg.ContainerHandler.Update)
					r.Delete("/{id}", cfg.ContainerHandler.Delete)
					r.Get("/{id}/label", cfg.ContainerHandler.Label)
				})
			}

			// Card endpoints
			if cfg.CardHandler != nil {
				r.Route("/cards", func(r chi.Router) {
					r.Post("/", cfg.CardHandler.Create)
					r.Get("/{id}", cfg.CardHandler.Get)
					r.Put("/{id}", cfg.CardHandler.Update)
					r.Delete("/{id}", cfg.CardHandler.Delete)
				})
			}

			// Comic endpoints
			if cfg.ComicHandler != nil {
				r.Route("/comics", func(r chi.Router) {
					r.Post("/", cfg.ComicHandler.Create)
					r.Get("/{id}", cfg.ComicHandler.Get)
					r.Put("/{id}", cfg.ComicHandler.Update)
					r.Delete("/{id}", cfg.ComicHandler.Delete)
				})
			}

			// Combined item view, aggregation and editing endpoints
			if cfg.ItemsHandler != nil {
				r.Route("/items", func(r chi.Router) {
					r.Get("/", cfg.ItemsHandler.List)

					r.Route("/view", func(r chi.Router) {
						r.Put("/tab", cfg.ItemsHandler.SetTab)
						r.Put("/filters", cfg.ItemsHandler.SetFilters)
						r.Put("/sort", cfg.ItemsHandler.SetSort)
						r.Put("/page", cfg.ItemsHandler.SetPage)
						r.Put("/page-size", cfg.ItemsHandler.SetPageSize)
					})

					r.Get("/groups", cfg.ItemsHandler.Groups)
					r.Get("/groups/{name}/years", cfg.ItemsHandler.GroupYears)

					if cfg.TransferHandler != nil {
						r.Post("/import", cfg.TransferHandler.Import)
						r.Get("/export", cfg.TransferHandler.Export)
					}

					r.Post("/{id}/clone", cfg.ItemsHandler.Clone)
					r.Post("/{id}/edit", cfg.ItemsHandler.BeginEdit)
					r.Put("/{id}/edit", cfg.ItemsHandler.UpdateEdit)
					r.Delete("/{id}/edit", cfg.ItemsHandler.CancelEdit)
					r.Post("/{id}/commit", cfg.ItemsHandler.CommitEdit)
				})
			}

			// Preference endpoints
			if cfg.PrefsHandler != nil {
				r.Route("/prefs", func(r chi.Router) {
					r.Get("/", cfg.PrefsHandler.Get)
					r.Put("/", cfg.PrefsHandler.Save)
				})
			}

			// Admin endpoints
			if cfg.AdminHandler != nil {
				r.Route("/admin", func(r chi.Router) {
					r.Get("/stats", cfg.AdminHandler.GetStats)
					r.Get("/health", cfg.AdminHandler.GetHealth)
				})
			}
		})
	})

	return r
}
