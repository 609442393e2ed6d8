package router

import (
	"net/http"

	"orderdesk/internal/auth"
	"orderdesk/internal/handler"
	"orderdesk/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers the router serves.
type Handlers struct {
	Auth    *handler.AuthHandler
	Order   *handler.OrderHandler
	Product *handler.ProductHandler
	Inquiry *handler.InquiryHandler
}

// New creates a new HTTP router with all routes and middleware configured.
// Every route is checked against policy using its registered pattern.
func New(h Handlers, authenticator middleware.Authenticator, policy *auth.Policy, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	authorize := middleware.Authorize(policy, logger)

	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, authorize(fn))
	}

	route("GET /health", handler.Health)

	route("POST /api/auth/login", h.Auth.Login)
	route("GET /api/auth/me", h.Auth.Me)

	route("POST /api/orders", h.Order.Create)
	route("GET /api/orders", h.Order.List)
	route("GET /api/orders/export", h.Order.Export)
	route("GET /api/orders/{id}", h.Order.GetByID)
	route("GET /api/orders/{id}/invoice", h.Order.Invoice)
	route("PUT /api/orders/{id}/status", h.Order.UpdateStatus)
	route("DELETE /api/orders/{id}", h.Order.Delete)

	route("GET /api/courier/orders", h.Order.ListCourier)
	route("PUT /api/courier/{id}/status", h.Order.UpdateStatus)

	route("GET /api/analytics/summary", h.Order.Summary)

	route("GET /api/products", h.Product.List)
	route("POST /api/products", h.Product.Create)
	route("GET /api/products/{id}", h.Product.GetByID)
	route("PUT /api/products/{id}", h.Product.Update)
	route("DELETE /api/products/{id}", h.Product.Delete)

	route("POST /api/inquiries", h.Inquiry.Create)
	route("GET /api/inquiries", h.Inquiry.List)

	// Apply middleware in order: Recovery -> Logging -> CORS -> Authenticate
	var handler http.Handler = mux
	handler = middleware.Authenticate(authenticator, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
