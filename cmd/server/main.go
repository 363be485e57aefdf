package main

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"household-budget-backend/internal/app"
	"household-budget-backend/internal/auth"
	"household-budget-backend/internal/config"
	"household-budget-backend/internal/logger"
	"household-budget-backend/internal/middleware"
	"household-budget-backend/internal/routes"
)

func main() {
	envLoaded := config.LoadEnv()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	logger.SetDefault(log)
	if !envLoaded {
		log.Info().Msg("No .env file found, relying on system env")
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		os.Exit(1)
	}
	defer a.Close()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", auth.HeaderUserID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		Repos:         a.Repos,
		Procedures:    a.Procedures,
		Authenticator: a.Authenticator,
	})

	log.Info().
		Str("port", cfg.Port).
		Str("db_driver", cfg.DBDriver).
		Str("auth_mode", cfg.AuthMode).
		Str("procedures", cfg.Procedures).
		Msg("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
