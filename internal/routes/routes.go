// Package routes wires handlers, middleware and route groups onto the gin
// engine.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/silkloom/backend/internal/config"
	"github.com/silkloom/backend/internal/handlers"
	"github.com/silkloom/backend/internal/middleware"
)

// Services bundles the constructed handlers for route registration.
type Services struct {
	Purchase    *handlers.PurchaseHandler
	Promo       *handlers.PromoHandler
	Lead        *handlers.LeadHandler
	Leaderboard *handlers.LeaderboardHandler
	Auth        *handlers.AuthHandler
	Catalog     *handlers.CatalogHandler
	Contact     *handlers.ContactHandler
	Health      *handlers.HealthHandler
}

// RegisterRoutes configures all API routes
func RegisterRoutes(router *gin.Engine, cfg *config.Config, svc Services) {
	// 1 req/s per IP (burst 5), 10 auth attempts per minute (burst 3)
	rateLimiter := middleware.NewRateLimiter(1, 10, 5, 3)
	router.Use(rateLimiter.IPRateLimit())

	router.GET("/health", svc.Health.Check)

	api := router.Group("/api")

	// Public surface: leads, contact, leaderboard, catalog search
	api.POST("/leads", svc.Lead.Create)
	api.POST("/contact", svc.Contact.Submit)
	api.GET("/leaderboard", svc.Leaderboard.List)
	api.GET("/catalog", svc.Catalog.List)
	api.GET("/catalog/search", svc.Catalog.Search)
	api.GET("/catalog/:itemId", svc.Catalog.Get)

	// Affiliate session
	auth := api.Group("/auth")
	auth.POST("/login", rateLimiter.AuthRateLimit(), svc.Auth.Login)

	// Authenticated affiliate surface
	me := api.Group("/me", middleware.AuthMiddleware(cfg.JWT.Secret))
	me.GET("/leaderboard", svc.Leaderboard.Me)
	me.GET("/purchases", svc.Leaderboard.PurchaseHistory)
	me.POST("/followers-update", svc.Leaderboard.RequestFollowersUpdate)
	me.PUT("/password", svc.Auth.UpdatePassword)

	// Operator surface
	admin := api.Group("/admin", middleware.AdminMiddleware(cfg.Admin.Token))

	admin.POST("/purchases", svc.Purchase.Complete)
	admin.GET("/purchases/:code", svc.Purchase.ListByPromoCode)
	admin.DELETE("/purchases/:code/:customer", svc.Purchase.Delete)

	admin.POST("/promo-codes", svc.Promo.Create)
	admin.GET("/promo-codes", svc.Promo.List)
	admin.GET("/promo-codes/search", svc.Promo.Search)
	admin.POST("/promo-codes/:code/affiliates", svc.Promo.AddAffiliate)
	admin.PUT("/promo-codes/:code/discount", svc.Promo.UpdateDiscount)
	admin.DELETE("/promo-codes/:code/affiliates/:email", svc.Promo.RemoveAffiliate)
	admin.DELETE("/promo-codes/:code", svc.Promo.Delete)

	admin.GET("/leads/:code", svc.Lead.ListByPromoCode)
	admin.GET("/leads/:code/unconverted", svc.Lead.ListUnconverted)

	admin.PUT("/leaderboard/:username/followers", svc.Leaderboard.AdminUpdateFollowers)
	admin.POST("/users", svc.Auth.CreateUser)
	admin.DELETE("/users/:username", svc.Auth.DeleteUser)

	admin.DELETE("/catalog/:itemId", svc.Catalog.Delete)
}
