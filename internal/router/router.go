// Package router wires HTTP routes to their handlers.
package router

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the handlers mounted by New.
type Handlers struct {
	User      *handler.UserHandler
	Product   *handler.ProductHandler
	Cart      *handler.CartHandler
	Order     *handler.OrderHandler
	Inventory *handler.InventoryHandler
	Invoice   *handler.InvoiceHandler
}

// New builds the HTTP router with all routes and middleware attached.
func New(cfg *config.Config, h Handlers, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(cfg.Auth.APIKey, logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/otp", h.User.SendOTP)
			r.Post("/register", h.User.Register)
			r.Get("/", h.User.GetAll)
			r.Route("/{userId}", func(r chi.Router) {
				r.Get("/", h.User.GetByID)
				r.Put("/", h.User.Update)
				r.Delete("/", h.User.Delete)
				r.Get("/cart", h.Cart.GetByUser)
				r.Delete("/cart/items", h.Cart.Clear)
				r.Get("/orders", h.Order.ListByUser)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", h.Product.Create)
			r.Get("/", h.Product.GetAll)
			r.Route("/{productId}", func(r chi.Router) {
				r.Get("/", h.Product.GetByID)
				r.Put("/", h.Product.Update)
				r.Patch("/name", h.Product.UpdateName)
				r.Delete("/", h.Product.Delete)
			})
		})

		r.Route("/carts/{cartId}", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{itemId}", h.Cart.UpdateItem)
			r.Delete("/items/{itemId}", h.Cart.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/place", h.Order.Place)
			r.Get("/{orderId}", h.Order.GetByID)
			r.Put("/{orderId}/status", h.Order.UpdateStatus)
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/low-stock", h.Inventory.LowStock)
			r.Post("/restore/{orderId}", h.Inventory.Restore)
			r.Get("/{productId}", h.Inventory.GetStock)
			r.Get("/{productId}/validate", h.Inventory.Validate)
		})

		r.Route("/invoices/{orderId}", func(r chi.Router) {
			r.Get("/", h.Invoice.Get)
			r.Get("/download", h.Invoice.Download)
		})
	})

	return r
}
