package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/silkloom/backend/internal/cache"
	"github.com/silkloom/backend/internal/config"
	"github.com/silkloom/backend/internal/database"
	"github.com/silkloom/backend/internal/database/migrations"
	"github.com/silkloom/backend/internal/handlers"
	"github.com/silkloom/backend/internal/jobs"
	"github.com/silkloom/backend/internal/routes"
	"github.com/silkloom/backend/internal/scoring"
	"github.com/silkloom/backend/internal/services/catalog"
	"github.com/silkloom/backend/internal/services/email"
	"github.com/silkloom/backend/internal/services/lead"
	"github.com/silkloom/backend/internal/services/leaderboard"
	"github.com/silkloom/backend/internal/services/notify"
	"github.com/silkloom/backend/internal/services/promo"
	"github.com/silkloom/backend/internal/services/purchase"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := config.LoadConfig()

	// Setup database connection
	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := migrations.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis-backed leaderboard page cache. The service degrades to direct
	// reads when Redis is unreachable.
	var leaderboardCache *cache.LeaderboardCache
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		leaderboardCache = cache.NewLeaderboardCache(redisClient, 5*time.Minute)
	}

	emailService := email.NewEmailService(cfg.SMTP)
	notifier := notify.NewRetryingNotifier(emailService, cfg.Scoring.NotifyMaxAttempts)
	policy := scoring.NewPolicy(cfg.Scoring.ConsistencyAward, cfg.Scoring.ConsistencyPenalty, cfg.Scoring.ExcludedAccounts)

	purchaseService := purchase.NewService(db, notifier, policy, leaderboardCache)
	promoService := promo.NewService(db, emailService, policy)
	leadService := lead.NewService(db)
	leaderboardService := leaderboard.NewService(db, emailService, leaderboardCache, cfg.JWT.Secret, cfg.JWT.Expiration)
	catalogService := catalog.NewService(db)

	// Initialize router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	routes.RegisterRoutes(router, cfg, routes.Services{
		Purchase:    handlers.NewPurchaseHandler(purchaseService),
		Promo:       handlers.NewPromoHandler(promoService),
		Lead:        handlers.NewLeadHandler(leadService),
		Leaderboard: handlers.NewLeaderboardHandler(leaderboardService),
		Auth:        handlers.NewAuthHandler(leaderboardService),
		Catalog:     handlers.NewCatalogHandler(catalogService),
		Contact:     handlers.NewContactHandler(cfg.ContactForm),
		Health:      handlers.NewHealthHandler(db),
	})

	// Daily unconverted-lead digest
	digest := jobs.NewLeadDigest(db, emailService)
	digest.Start()
	defer digest.Stop()

	fmt.Printf("SilkLoom API server running on port %s\n", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
