package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/loyalty-api/internal/api"
	apiMiddleware "github.com/phrazzld/loyalty-api/internal/api/middleware"
)

// setupRouter creates the router with every route and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// chi's request logger is left out: request URIs carry owner emails.
	// The trace middleware logs each request with the email masked.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	ledgerHandler := api.NewLedgerHandler(app.ledger, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Owner endpoints
			r.Post("/owners", ledgerHandler.RegisterOwner)
			r.Delete("/owners/{"+api.EmailParam+"}", ledgerHandler.UnregisterOwner)
			r.Get("/owners/{"+api.EmailParam+"}/card", ledgerHandler.GetCard)

			// Purchase endpoints
			r.Post("/owners/{"+api.EmailParam+"}/money-purchases", ledgerHandler.MoneyPurchase)
			r.Post("/owners/{"+api.EmailParam+"}/points-purchases", ledgerHandler.PointsPurchase)

			r.Get("/stats", ledgerHandler.GetStats)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
