package auth

import (
	"time"

	"github.com/go-chi/chi/v5"

	"ShopFront/pkg/kit"
)

const (
	loginLimitPerMin    = 5
	registerLimitPerMin = 3
	limitWindow         = 60 * time.Second
)

// Register mounts the auth API onto the router supplied by the composition
// root.
func (s *Server) Register(r chi.Router) {
	loginLimiter := kit.NewIPRateLimiter(loginLimitPerMin, limitWindow)
	registerLimiter := kit.NewIPRateLimiter(registerLimitPerMin, limitWindow)

	r.Route("/auth", func(rr chi.Router) {
		rr.With(loginLimiter.Middleware).Post("/login", s.handleLogin)
		rr.With(registerLimiter.Middleware).Post("/register", s.handleRegister)

		rr.Group(func(pr chi.Router) {
			pr.Use(RequireAuth(s.JWT))
			pr.Get("/me", s.handleMe)
			pr.Patch("/profile", s.handleProfile)
			pr.Post("/change-password", s.handleChangePassword)

			pr.Group(func(ar chi.Router) {
				ar.Use(RequireAdmin)
				ar.Get("/users", s.handleListUsers)
				ar.Patch("/users/{id}/role", s.handleSetRole)
				ar.Post("/users/{id}/toggle", s.handleToggleActive)
				ar.Delete("/users/{id}", s.handleDeleteUser)
			})
		})
	})
}
