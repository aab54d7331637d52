package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Customer-Dashboard-Backend/internal/api/middleware"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/config"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	dashboardService *service.DashboardService,
	cfg *config.Config,
	log zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/dashboard", func(r chi.Router) {
			dashboardHandler := handlers.NewDashboardHandler(dashboardService)
			r.Get("/", dashboardHandler.Dashboard)
			r.Get("/summary", dashboardHandler.Summary)
			r.Get("/purchases", dashboardHandler.Purchases)
			r.Get("/interest", dashboardHandler.Interest)
			r.Get("/interest/daily", dashboardHandler.DailyTotals)
			r.Get("/export", dashboardHandler.Export)

			r.Group(func(r chi.Router) {
				if cfg.Server.APIKey != "" {
					r.Use(custommiddleware.APIKey(cfg.Server.APIKey))
				}
				r.Post("/refresh", dashboardHandler.Refresh)
			})
		})

		r.Route("/snapshot", func(r chi.Router) {
			snapshotHandler := handlers.NewSnapshotHandler(dashboardService)
			r.Get("/", snapshotHandler.Snapshots)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", snapshotHandler.Snapshot)
			})
		})
	})

	return r
}
