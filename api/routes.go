package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portfolio-site/backend/config"
)

// setupRoutes registers the public reads, the admin-only mutations and the
// feedback routes whose auth depends on configuration.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, cfg config.Config) {
	r.Get("/healthz", handlers.healthHandler.health())
	r.Post("/admin/login", handlers.adminHandler.login())

	// Public reads
	r.Get("/projects", handlers.projectHandler.getAllProjects())
	r.Get("/projects/{projectID}", handlers.projectHandler.getProject())
	r.Get("/feedback", handlers.feedbackHandler.getAllFeedback())

	// Visitors leave feedback without an account
	r.Post("/feedback", handlers.feedbackHandler.createFeedback())

	r.Group(func(r chi.Router) {
		if cfg.FeedbackRequireAdmin {
			r.Use(authMiddleware.authenticate)
		}
		r.Put("/feedback", handlers.feedbackHandler.updateFeedback())
		r.Delete("/feedback", handlers.feedbackHandler.deleteFeedback())
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)

		r.Post("/projects", handlers.projectHandler.createProject())
		r.Put("/projects", handlers.projectHandler.updateProject())
		r.Delete("/projects", handlers.projectHandler.deleteProject())

		r.Post("/upload", handlers.uploadHandler.upload())
	})
}

// setupStaticRoutes serves disk-backed uploads and, optionally, the built
// frontend bundle.
func setupStaticRoutes(r chi.Router, cfg config.Config) {
	if cfg.Blob.Backend == "disk" && cfg.Blob.UploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Blob.UploadDir)))
		r.Handle("/uploads/*", fs)
	}
	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}
}
