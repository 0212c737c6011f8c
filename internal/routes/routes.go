package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pixistaking/backend/internal/config"
	"github.com/pixistaking/backend/internal/handlers"
	"github.com/pixistaking/backend/internal/middleware"
	"github.com/pixistaking/backend/internal/services/account"
	"github.com/pixistaking/backend/internal/services/accrual"
	"github.com/pixistaking/backend/internal/services/ledger"
	"github.com/pixistaking/backend/internal/services/session"
	"github.com/pixistaking/backend/internal/services/staking"
	"github.com/pixistaking/backend/internal/services/user"
	"github.com/pixistaking/backend/internal/services/withdrawal"
)

// Services bundles the core services shared between routes and the scheduler.
type Services struct {
	Ledger      *ledger.Service
	Users       *user.Service
	Staking     *staking.Service
	Accrual     *accrual.Service
	Withdrawals *withdrawal.Service
	Accounts    *account.Service
}

// NewServices wires the core services onto one database handle.
func NewServices(db *gorm.DB) *Services {
	ledgerSvc := ledger.NewService(db)
	return &Services{
		Ledger:      ledgerSvc,
		Users:       user.NewService(db),
		Staking:     staking.NewService(db, ledgerSvc),
		Accrual:     accrual.NewService(db, ledgerSvc),
		Withdrawals: withdrawal.NewService(db, ledgerSvc),
		Accounts:    account.NewService(db, ledgerSvc),
	}
}

// RegisterRoutes configures all API routes
func RegisterRoutes(router *gin.Engine, svcs *Services, denylist *session.Denylist, cfg *config.Config) {
	rateLimiter := middleware.NewRateLimiter(60, 10, 30, 5)

	authHandler := handlers.NewAuthHandler(svcs.Users, denylist, cfg.JWT)
	stakingHandler := handlers.NewStakingHandler(svcs.Staking)
	withdrawalHandler := handlers.NewWithdrawalHandler(svcs.Withdrawals)
	ledgerHandler := handlers.NewLedgerHandler(svcs.Ledger, svcs.Users)
	adminHandler := handlers.NewAdminHandler(svcs.Users, svcs.Accounts, svcs.Withdrawals, svcs.Accrual)

	authGroup := router.Group("/api/auth")
	authGroup.Use(rateLimiter.AuthMiddleware())
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
	}

	api := router.Group("/api")
	api.Use(rateLimiter.Middleware(), middleware.AuthMiddleware(denylist, cfg.JWT.Secret))
	{
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/me", authHandler.Me)

		api.GET("/plans", stakingHandler.ListPlans)
		api.GET("/stakes", stakingHandler.ListStakes)
		api.POST("/stakes", stakingHandler.CreateStake)

		api.POST("/withdrawals", withdrawalHandler.RequestWithdrawal)

		api.GET("/transactions", ledgerHandler.ListTransactions)
		api.GET("/referrals", ledgerHandler.Referrals)
	}

	admin := router.Group("/api/admin")
	admin.Use(rateLimiter.Middleware(), middleware.AuthMiddleware(denylist, cfg.JWT.Secret), middleware.AdminMiddleware())
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users/:id/toggle-pause", adminHandler.TogglePause)
		admin.POST("/users/:id/credit", adminHandler.CreditUser)

		admin.GET("/withdrawals/pending", adminHandler.PendingWithdrawals)
		admin.POST("/withdrawals/:id/approve", adminHandler.ApproveWithdrawal)
		admin.POST("/withdrawals/:id/cancel", adminHandler.CancelWithdrawal)

		admin.POST("/accrual/run", adminHandler.RunAccrual)
	}
}
