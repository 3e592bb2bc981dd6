package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"homechef-api/config"
	"homechef-api/payments"
	"homechef-api/routes"
)

func main() {
	cfg := config.Load()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	db, err := config.InitDB(cfg.DBPath)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	logrus.Info("database connected and migrated")

	// Redis is optional: without it the catalog and stats caches are
	// simply disabled.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			logrus.Warnf("redis unavailable, caching disabled: %v", err)
			rdb = nil
		}
	}

	provider := payments.NewHTTPProvider(cfg.PaymentProviderURL)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	r := gin.Default()

	// CORS middleware for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "HomeChef Marketplace API",
			"version": "1.0.0",
		})
	})

	routes.SetupRoutes(r, db, rdb, provider, cfg)

	logrus.Infof("server running on http://localhost:%s", cfg.AppPort)
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("failed to start server: %v", err)
	}
}
