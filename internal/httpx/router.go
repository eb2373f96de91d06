package httpx

import (
	"net/http"
	"time"

	"greencycle-be/internal/logger"
	"greencycle-be/internal/metrics"
	appmw "greencycle-be/internal/middleware"
	"greencycle-be/internal/user"
	"greencycle-be/internal/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth    *AuthHandler
	Orders  *OrderHandler
	Rewards *RewardHandler
	History *HistoryHandler
	Admin   *AdminHandler
	Metrics *metrics.HTTP
}

// NewRouter assembles the middleware chain and the route tree. Identity is
// resolved before rate limiting so authenticated callers get per-user
// buckets instead of sharing a per-IP one.
func NewRouter(h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(logger.RequestIDMiddleware)
	r.Use(appmw.CORS)
	r.Use(appmw.AuthMiddleware)
	r.Use(appmw.RateLimitMiddleware)
	r.Use(appmw.LoggingMiddleware(h.Metrics))
	r.Use(chimw.Timeout(15 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		payload := map[string]any{"status": "ok"}
		if h.Metrics != nil {
			payload["http"] = h.Metrics.Snapshot()
		}
		utils.WriteJSON(w, http.StatusOK, payload)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.register)
			r.Post("/login", h.Auth.login)
			r.With(appmw.RequireAuth).Get("/me", h.Auth.me)
		})

		r.Route("/rewards", func(r chi.Router) {
			r.Get("/", h.Rewards.list)
			r.Get("/search", h.Rewards.search)
			r.Get("/popular", h.Rewards.popular)
			r.Get("/categories", h.Rewards.categories)
			r.Get("/category/{category}", h.Rewards.byCategory)
			r.Get("/{id}", h.Rewards.get)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(appmw.RequireAuth)
			r.Post("/", h.Orders.create)
			r.Get("/mine", h.Orders.listMine)
			r.Get("/{id}", h.Orders.get)
			r.Post("/{id}/cancel", h.Orders.cancel)
		})

		r.Route("/redemptions", func(r chi.Router) {
			r.Use(appmw.RequireAuth)
			r.Post("/", h.Rewards.redeem)
			r.Get("/mine", h.History.listMine)
			r.Get("/summary", h.History.summary)
			r.Get("/{id}", h.History.get)
			r.Post("/{id}/cancel", h.History.cancel)
		})

		r.Route("/collector", func(r chi.Router) {
			r.Use(appmw.RequireRole(user.RoleCollector))
			r.Get("/orders/available", h.Orders.listAvailable)
			r.Get("/orders", h.Orders.listAssigned)
			r.Post("/orders/{id}/accept", h.Orders.accept)
			r.Post("/orders/{id}/status", h.Orders.updateStatus)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(appmw.RequireRole(user.RoleAdmin))

			r.Get("/orders", h.Orders.adminList)
			r.Post("/orders/{id}/complete", h.Orders.complete)
			r.Post("/orders/{id}/cancel", h.Orders.adminCancel)
			r.Delete("/orders/{id}", h.Orders.adminDelete)

			r.Post("/rewards", h.Rewards.create)
			r.Get("/rewards/low-stock", h.Rewards.lowStock)
			r.Put("/rewards/{id}", h.Rewards.update)
			r.Delete("/rewards/{id}", h.Rewards.delete)
			r.Patch("/rewards/{id}/availability", h.Rewards.setAvailability)
			r.Patch("/rewards/{id}/stock", h.Rewards.updateStock)
			r.Get("/rewards/{id}/stats", h.Rewards.stats)

			r.Get("/redemptions", h.History.adminList)
			r.Post("/redemptions/{id}/status", h.History.advanceStatus)

			r.Post("/users/{id}/points", h.Admin.adjustPoints)

			r.Post("/factories", h.Admin.createFactory)
			r.Get("/factories", h.Admin.listFactories)
		})
	})

	return r
}
