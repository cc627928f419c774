package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"stockwarden/internal/auth"
	reservationctrl "stockwarden/internal/reservation/controller"
	stockctrl "stockwarden/internal/stock/controller"
)

func NewRouter(
	stockController *stockctrl.StockController,
	lifecycleController *reservationctrl.LifecycleController,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/carts/validate", stockController.ValidateCart)
		r.Post("/carts/checkout", stockController.ValidateCheckout)

		r.Put("/orders/{orderId}/items/{itemId}/quantity", stockController.UpdateItemQuantity)
		r.Post("/orders/{orderId}/status", lifecycleController.OrderStatusChanged)

		r.Route("/admin", func(r chi.Router) {
			r.Use(presentedTokenMiddleware)
			r.Put("/orders/{orderId}/items", stockController.AdminEditQuantities)
			r.Get("/stock/precheck", stockController.Precheck)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}

// presentedTokenMiddleware carries the caller's credential into the request
// context. The authorization decision itself lives in the admin usecases,
// which reject before any stock computation.
func presentedTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Admin-Token")
		next.ServeHTTP(w, r.WithContext(auth.WithPresentedToken(r.Context(), token)))
	})
}
