package chat

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Get("/{id}", h.GetSession)
		r.Post("/{id}/messages", h.Ask)
		r.Post("/{id}/messages/stream", h.AskStream)
		r.Delete("/{id}", h.ClearSession)
	})
}
