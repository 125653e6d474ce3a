package order

import (
	"github.com/go-chi/chi/v5"

	"ShopFront/internal/auth"
)

// Register mounts the order API. Reads require a login; mutations are
// admin-only.
func (s *Server) Register(r chi.Router, jwt *auth.TokenMaker) {
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireAuth(jwt))
		pr.Get("/orders", s.list)
		pr.Get("/orders/{id}", s.get)

		pr.Group(func(ar chi.Router) {
			ar.Use(auth.RequireAdmin)
			ar.Post("/orders", s.create)
			ar.Patch("/orders/{id}/status", s.setStatus)
		})
	})
}
