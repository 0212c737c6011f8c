package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pixistaking/backend/internal/config"
	"github.com/pixistaking/backend/internal/database"
	"github.com/pixistaking/backend/internal/database/migrations"
	"github.com/pixistaking/backend/internal/jobs"
	"github.com/pixistaking/backend/internal/routes"
	"github.com/pixistaking/backend/internal/services/session"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := godotenv.Load(); err != nil {
		zap.L().Info(".env file not found, using environment")
	}

	cfg := config.LoadConfig()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		zap.L().Fatal("failed to connect to database", zap.Error(err))
	}

	if err := migrations.RunMigrations(db); err != nil {
		zap.L().Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis is optional: without it, logout falls back to token expiry.
	var denylist *session.Denylist
	if redisClient, err := database.InitRedis(cfg.Redis); err != nil {
		zap.L().Warn("redis unavailable, token denylist disabled", zap.Error(err))
	} else {
		denylist = session.NewDenylist(redisClient)
	}

	svcs := routes.NewServices(db)

	accrualJob := jobs.NewAccrualJob(svcs.Accrual, cfg.Accrual.Interval)
	if err := accrualJob.Start(); err != nil {
		zap.L().Fatal("failed to start accrual scheduler", zap.Error(err))
	}
	defer accrualJob.Stop()

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	routes.RegisterRoutes(router, svcs, denylist, cfg)

	zap.L().Info("PIXI staking API listening", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		zap.L().Fatal("failed to start server", zap.Error(err))
	}
}
