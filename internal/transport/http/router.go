package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// OrderAPI bundles the order operations the router exposes.
type OrderAPI interface {
	OrderSubmitter
	OrderLister
}

// RouterConfig carries the collaborators and policy the router needs.
type RouterConfig struct {
	Orders       OrderAPI
	Catalog      CatalogReader
	Contact      ContactReceiver
	Verifier     TokenVerifier
	CORSOrigins  []string
	CORSSuffixes []string
	Logger       *slog.Logger
}

// NewRouter wires all routes and middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return RequestLogger(next, cfg.Logger)
	})
	r.Use(func(next http.Handler) http.Handler {
		return CORS(cfg.CORSOrigins, cfg.CORSSuffixes, next)
	})

	r.Get("/health", HealthHandler)
	r.Get("/api/restaurants", HandleListRestaurants(cfg.Catalog))
	r.Get("/api/restaurants/{id}/menu", HandleListMenu(cfg.Catalog))
	r.Post("/api/contact", HandleSubmitContact(cfg.Contact))

	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return RequireUser(cfg.Verifier, next)
		})
		r.Post("/api/orders", HandleSubmitOrder(cfg.Orders))
		r.Get("/api/orders", HandleListOrders(cfg.Orders))
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	return r
}
