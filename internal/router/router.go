package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"chatbot-backend/internal/handlers"
	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/web"
)

// New wires the chat page, the chat API and the health check. chatLimiter may be nil
// to disable rate limiting.
func New(
	chatHandler *handlers.ChatHandler,
	healthHandler *handlers.HealthHandler,
	chatLimiter *middleware.RateLimiter,
	allowedOrigin string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(allowedOrigin))

	// Chat page
	r.Get("/", web.Index)
	r.Handle("/static/*", web.Static())

	// Health check
	r.Get("/health", healthHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if chatLimiter != nil {
				r.Use(chatLimiter.Middleware)
			}
			r.Post("/chat", chatHandler.Chat)
		})
	})

	return r
}
