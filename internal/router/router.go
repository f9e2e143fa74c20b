package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nees-commerce/admin-gateway/internal/config"
	"github.com/nees-commerce/admin-gateway/internal/enum"
	"github.com/nees-commerce/admin-gateway/internal/handler"
	mw "github.com/nees-commerce/admin-gateway/internal/middleware"
	"github.com/nees-commerce/admin-gateway/internal/service"
	"github.com/nees-commerce/admin-gateway/internal/slip"
	"github.com/nees-commerce/admin-gateway/internal/upstream"
	"github.com/nees-commerce/admin-gateway/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, backend *upstream.Client, workflow *service.Workflow, history handler.HistoryStore, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(backend, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))
		r.Use(mw.RequireRole(enum.RoleCEO, enum.RoleManager, enum.RoleAdmin))

		// Orders
		orderHandler := handler.NewOrderHandler(workflow, backend, slip.NewGenerator(), history)
		r.Route("/orders", orderHandler.RegisterRoutes)

		// Dashboard metrics
		dashboardHandler := handler.NewDashboardHandler(backend)
		r.Route("/dashboard", dashboardHandler.RegisterRoutes)

		// Catalog passthrough
		catalogHandler := handler.NewCatalogHandler(backend)
		r.Route("/catalog", catalogHandler.RegisterRoutes)

		// Staff management (CEO and Manager only)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleCEO, enum.RoleManager))
			staffHandler := handler.NewStaffHandler(backend)
			r.Route("/staff", staffHandler.RegisterRoutes)
		})
	})

	return r
}
