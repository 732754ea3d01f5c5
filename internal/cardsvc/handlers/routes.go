package handlers

import (
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

func (h *Handler) SetRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {

		// public routes here
		r.Get("/health", h.HealthHandler)
		r.Get("/cards/{cardSN}", h.GetCardHandler)
		r.Post("/cards/{cardSN}/accounts", h.AddAccountHandler)

		// admin routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Post("/cards", h.GenerateCardHandler)
			r.Get("/cards", h.ListCardsHandler)
			r.Patch("/cards/{cardSN}/status", h.SetStatusHandler)
		})
	})
}

// InitAuth must run before SetRoutes.
func (h *Handler) InitAuth(jwtKey string) {
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)
}

// AdminToken signs a token accepted by the admin routes.
func (h *Handler) AdminToken(ttl time.Duration) (string, error) {
	_, tokenString, err := h.tokenAuth.Encode(map[string]interface{}{
		"role": "admin",
		"exp":  time.Now().Add(ttl).Unix(),
	})
	return tokenString, err
}
