package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/kitmoji/api/internal/cache"
	"github.com/kitmoji/api/internal/config"
	"github.com/kitmoji/api/internal/database"
	"github.com/kitmoji/api/internal/handler"
	"github.com/kitmoji/api/internal/middleware"
	"github.com/kitmoji/api/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Redis is fail-open: without it every lookup hits Postgres, which
	// is fine at current traffic.
	redisCache, err := cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		redisCache = nil
	}

	emojiStore := store.New(db, cfg.Curated)

	emojiHandler := handler.NewEmojiHandler(emojiStore, redisCache)
	adminHandler := handler.NewAdminHandler(emojiStore, redisCache)
	exportHandler := handler.NewExportHandler(emojiStore)
	sitemapHandler := handler.NewSitemapHandler(emojiStore, redisCache, cfg.BaseURL)

	r := gin.Default()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.MetricsMiddleware())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/sitemap.xml", sitemapHandler.Serve)

	api := r.Group("/api")
	{
		api.GET("/health", emojiHandler.Health)

		// Fixed paths must register before /emojis/:id.
		api.GET("/emojis/popular", emojiHandler.Popular)
		api.GET("/emojis/new", emojiHandler.New)
		api.GET("/emojis", emojiHandler.List)
		api.GET("/emojis/:id", emojiHandler.GetByID)

		api.GET("/emoji/:name", emojiHandler.GetByName)
		api.POST("/emoji/:name/copy", emojiHandler.Copy)
		api.GET("/emoji/:name/copy-count", emojiHandler.CopyCount)

		api.GET("/categories", emojiHandler.Categories)
	}

	// Mutating routes require an admin bearer token.
	authed := api.Group("")
	authed.Use(middleware.AdminMiddleware(cfg.JWTSecret))
	{
		authed.POST("/emojis", adminHandler.Create)
		authed.PUT("/emojis/:id", adminHandler.Update)
		authed.DELETE("/emojis/:id", adminHandler.Delete)
		authed.POST("/admin/fix-emojis", adminHandler.FixEmojis)
		authed.GET("/admin/export", exportHandler.Export)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	log.Printf("API server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
