package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-doc-library/internal/config"
	"go-doc-library/internal/handler"
	"go-doc-library/internal/metrics"
	"go-doc-library/internal/middleware"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	versionHandler *handler.VersionHandler,
	storageHandler *handler.StorageHandler,
	auditHandler *handler.AuditHandler,
	healthHandler *handler.HealthHandler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", healthHandler.Health)
	if cfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	timeout := middleware.Timeout(cfg.RequestTimeout)
	streaming := middleware.StreamingTimeout(cfg.ContentTimeout, cfg.ContentIdleTimeout)
	admin := []func(http.Handler) http.Handler{authMiddleware.RequireAuth, authMiddleware.RequireRoles("admin")}

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/categories/{category}", func(category chi.Router) {
			category.With(timeout).Get("/active", versionHandler.Active)
			category.With(streaming).Get("/active/content", versionHandler.ActiveContent)

			category.Group(func(protected chi.Router) {
				protected.Use(admin...)

				protected.With(timeout).Get("/versions", versionHandler.History)
				protected.With(timeout).Post("/versions", versionHandler.Upload)
				protected.With(timeout).Put("/versions/{version_id}/activate", versionHandler.Activate)
				protected.With(timeout).Delete("/versions/{version_id}", versionHandler.Delete)
				protected.With(streaming).Get("/versions/{version_id}/content", versionHandler.VersionContent)
			})
		})

		api.Group(func(protected chi.Router) {
			protected.Use(admin...)
			protected.Use(timeout)

			protected.Get("/storage", storageHandler.Info)
			protected.Get("/audit", auditHandler.List)
		})
	})

	return r
}
