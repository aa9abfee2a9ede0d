package router

import (
	"time"

	"bursary/config"
	"bursary/internal/domain"
	"bursary/internal/handler"
	"bursary/internal/middleware"
	"bursary/internal/repository"
	"bursary/internal/service"
	"bursary/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Services bundles the wired core so main can hand the sweeps to the
// scheduler.
type Services struct {
	Config      *service.ConfigStore
	Ledger      *service.LedgerService
	Loans       *service.LoanService
	Investments *service.InvestmentService
	Exchange    *service.ExchangeService
}

func Setup(cfg *config.Config, db *gorm.DB) (*gin.Engine, *Services) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	limiter := middleware.NewInMemoryRateLimiter(100, 60*time.Second)

	// Repositories
	accountRepo := repository.NewAccountRepository(db)
	userRepo := repository.NewUserRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	investmentRepo := repository.NewInvestmentRepository(db)
	listingRepo := repository.NewListingRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	configRepo := repository.NewConfigRepository(db)

	// Audit feed
	auditHub := ws.NewAuditHub()
	audit := service.MultiSink{service.LogSink{}, ws.Sink{Hub: auditHub}}

	// Services
	configStore := service.NewConfigStore(configRepo)
	ledgerSvc := service.NewLedgerService(db, accountRepo, configStore, audit)
	loanSvc := service.NewLoanService(db, accountRepo, userRepo, loanRepo, ledgerSvc, configStore, audit)
	investmentSvc := service.NewInvestmentService(db, accountRepo, investmentRepo, ledgerSvc, configStore, audit)
	exchangeSvc := service.NewExchangeService(db, accountRepo, listingRepo, inventoryRepo, ledgerSvc, configStore, audit)

	// Handlers
	authHandler := handler.NewAuthHandler(cfg)
	walletHandler := handler.NewWalletHandler(ledgerSvc, exchangeSvc)
	loanHandler := handler.NewLoanHandler(loanSvc)
	investmentHandler := handler.NewInvestmentHandler(investmentSvc)
	marketHandler := handler.NewMarketHandler(exchangeSvc)
	adminHandler := handler.NewAdminHandler(configStore)

	// The token endpoint is limited by IP; everything behind AuthRequired
	// is limited by client ID, so the limiter must run after it.
	r.POST("/api/v1/auth/token", middleware.RateLimit(limiter), authHandler.Token)
	r.GET("/ws/audit", middleware.RateLimit(limiter), ws.ServeAuditFeed(&cfg.JWT, auditHub))

	api := r.Group("/api/v1", middleware.AuthRequired(&cfg.JWT), middleware.RateLimit(limiter))
	{
		community := api.Group("/communities/:community_id")

		user := community.Group("/users/:user_id")
		user.GET("/balances", walletHandler.Balances)
		user.GET("/ledger", walletHandler.Ledger)
		user.POST("/deposit", walletHandler.Deposit)
		user.POST("/withdraw", walletHandler.Withdraw)
		user.POST("/transfer", walletHandler.Transfer)
		user.POST("/wager", walletHandler.Wager)

		user.GET("/loans", loanHandler.List)
		user.GET("/loans/eligibility", loanHandler.Eligibility)
		user.POST("/loans", loanHandler.Apply)
		user.POST("/loans/repay", loanHandler.Repay)

		user.GET("/investments", investmentHandler.List)
		user.POST("/investments", investmentHandler.Open)
		user.POST("/investments/collect", investmentHandler.Collect)

		user.GET("/inventory", marketHandler.Inventory)

		community.GET("/market", marketHandler.Listings)
		community.POST("/market", marketHandler.List)
		community.POST("/market/trade", marketHandler.DirectTrade)

		admin := api.Group("", middleware.RequireRole(domain.RoleAdmin))
		{
			admin.GET("/communities/:community_id/config", adminHandler.GetConfig)
			admin.PUT("/communities/:community_id/config", adminHandler.UpdateConfig)
			admin.GET("/communities/:community_id/tiers", adminHandler.GetTiers)
			admin.PUT("/communities/:community_id/tiers", adminHandler.ReplaceTiers)
			admin.POST("/communities/:community_id/users/:user_id/inventory/grant", marketHandler.Grant)
			admin.POST("/users/:user_id/loan-ban", loanHandler.SetBan)
		}
	}
	// Listing settlement sits outside the community group because the
	// listing ID alone identifies the community.
	api.POST("/market/listings/:listing_id/purchase", marketHandler.Purchase)
	api.POST("/market/listings/:listing_id/cancel", marketHandler.Cancel)

	return r, &Services{
		Config:      configStore,
		Ledger:      ledgerSvc,
		Loans:       loanSvc,
		Investments: investmentSvc,
		Exchange:    exchangeSvc,
	}
}
