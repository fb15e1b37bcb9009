package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-gate/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	// Create handlers
	registerHandler := handlers.NewRegisterHandler(s.store, s.index)
	identifyHandler := handlers.NewIdentifyHandler(s.recognizer, s.index, s.config.MatchThreshold())
	identitiesHandler := handlers.NewIdentitiesHandler(s.store, s.index)
	indexHandler := handlers.NewIndexHandler(s.index)

	// Root endpoints keep the legacy public contract.
	s.router.Get("/", handlers.Root)
	s.router.Post("/register", registerHandler.Register)
	s.router.Post("/identify", identifyHandler.Identify)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)

		r.Post("/register", registerHandler.Register)
		r.Post("/identify", identifyHandler.Identify)

		// Identities
		r.Get("/identities", identitiesHandler.List)
		r.Get("/identities/{id}", identitiesHandler.Get)
		r.Delete("/identities/{id}", identitiesHandler.Delete)

		// Index maintenance
		r.Post("/index/rebuild", indexHandler.Rebuild)
		r.Get("/index/status", indexHandler.Status)
	})
}
