package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/wepublish/wepublish-api/pkg/publishing"
)

// Services groups the per-kind services served by the router.
type Services struct {
	Articles publishing.Service
	Pages    publishing.Service
}

// Mount registers the private and public routes for both kinds under
// /api/v1. Private routes require a bearer token signed by tokenAuth.
func Mount(r chi.Router, services Services, tokenAuth *jwtauth.JWTAuth, roles map[string]publishing.Role) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(Authenticate(tokenAuth, roles))
			r.Mount("/articles", NewItemHandler(services.Articles).Routes())
			r.Mount("/pages", NewItemHandler(services.Pages).Routes())
		})

		r.Mount("/public/articles", NewPublicHandler(services.Articles).Routes())
		r.Mount("/public/pages", NewPublicHandler(services.Pages).Routes())
	})
}
