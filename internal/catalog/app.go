package catalog

import (
	"github.com/go-chi/chi/v5"

	"ShopFront/internal/auth"
)

// Register mounts the catalog API. Reads are public; mutations are
// admin-only.
func (s *Server) Register(r chi.Router, jwt *auth.TokenMaker) {
	r.Get("/products", s.list)
	r.Get("/products/{id}", s.get)

	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireAuth(jwt))
		ar.Use(auth.RequireAdmin)
		ar.Post("/products", s.create)
		ar.Patch("/products/{id}", s.update)
		ar.Delete("/products/{id}", s.remove)
	})
}
