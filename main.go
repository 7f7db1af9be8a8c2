package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"linkfly/internal/ads"
	"linkfly/internal/api"
	"linkfly/internal/cache"
	"linkfly/internal/clicks"
	"linkfly/internal/config"
	"linkfly/internal/db"
	"linkfly/internal/redirect"
	"linkfly/internal/revenue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dbConn, err := db.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	store := db.NewStore(dbConn)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	linkCache := cache.NewLinkCache(rdb, cfg.Cache, store)
	gate := ads.NewGate(cfg.Ads, nil)
	calc := revenue.NewCalculator(cfg.Revenue)
	recorder := clicks.NewRecorder(store)
	composer := redirect.NewComposer(cfg.Tracking.UTMSource)

	handler := api.NewHandler(linkCache, store, gate, calc, recorder, composer, cfg)

	limiterStore, err := sredis.NewStore(rdb)
	if err != nil {
		log.Fatalf("Failed to create rate-limit store: %v", err)
	}
	rateLimit := mgin.NewMiddleware(limiter.New(limiterStore, limiter.Rate{
		Period: time.Minute,
		Limit:  cfg.Server.RateLimitPerMinute,
	}))

	router := gin.Default()
	router.POST("/api/shorten", handler.HandleShorten)
	router.GET("/:code", rateLimit, handler.HandleRedirect)

	log.Println("Starting server on", cfg.Server.Addr)
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
