package main

import (
	"os"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-review/internal/config"
	"github.com/iliyamo/restaurant-review/internal/database"
	"github.com/iliyamo/restaurant-review/internal/handler"
	"github.com/iliyamo/restaurant-review/internal/logging"
	"github.com/iliyamo/restaurant-review/internal/middleware"
	"github.com/iliyamo/restaurant-review/internal/queue"
	"github.com/iliyamo/restaurant-review/internal/router"
	"github.com/iliyamo/restaurant-review/internal/service"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	dsn := database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	db, err := database.Open(dsn, database.Options{MaxOpenConns: cfg.DBMaxOpenConns})
	if db == nil {
		logging.Error().Err(err).Msg("invalid database configuration")
		os.Exit(1)
	}
	if err != nil {
		// Keep serving: every request acquires its own connection and
		// renders a notice while the database is down.
		logging.Error().Err(err).Str("host", cfg.DBHost).Msg("database not reachable at startup")
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logging.Warn().Msg("redis unavailable; cache and rate limit disabled")
	} else {
		defer rdb.Close()
	}

	var pub service.Publisher = service.NopPublisher{}
	if cfg.RabbitURL != "" {
		pub = service.AMQPPublisher{URL: cfg.RabbitURL}
		if cfg.ActivityConsumer {
			go queue.StartActivityConsumer(cfg.RabbitURL, "logs")
		}
	}

	cacheCfg := config.LoadCacheConfig()
	cache := middleware.NewRedisCache(cacheCfg, rdb)
	invalidate := middleware.NewCacheInvalidator(cacheCfg, rdb)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	router.Setup(e, db, cfg.JWTSecret)
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, pub), limit)
	router.RegisterPublic(e, handler.NewRestaurantHandler(cfg), cache)
	router.RegisterMember(e, handler.NewMemberHandler(pub), limit, invalidate)

	addr := ":" + cfg.Port
	logging.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		logging.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
