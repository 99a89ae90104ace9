package delivery

import (
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

func RegisterRoutes(r chi.Router, h *Handler, auth *AuthService) {
	// --- auth ---
	r.With(
		httputil.RecoverMiddleware,
		httprate.LimitByIP(10, time.Minute),
	).Post("/auth/login", h.Login)

	// --- protected ---
	r.Route("/admin", func(pr chi.Router) {
		pr.Use(
			httputil.RecoverMiddleware,
			httprate.LimitByIP(120, time.Minute),
			AuthMiddleware(auth),
		)

		pr.Get("/users", h.GetUsers)
		pr.Get("/history/{telegram_id}", h.GetHistory)
		pr.Get("/usage/{telegram_id}", h.GetUsage)
	})
}
