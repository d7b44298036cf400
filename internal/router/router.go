package router

import (
	"net/http"

	"finance-tracker/internal/config"
	"finance-tracker/internal/handler"
	"finance-tracker/internal/middleware"
	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Services bundles the service layer the routes are built on.
type Services struct {
	Transactions *service.TransactionService
	Budgets      *service.BudgetService
	Auth         *service.AuthService
}

// NewServices wires the service layer from configuration.
func NewServices(cfg *config.Config, db *gorm.DB, mailer service.Mailer) *Services {
	tokens := util.NewTokenIssuer(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.Issuer,
		cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	return &Services{
		Transactions: service.NewTransactionService(db, service.TransactionOptions{
			PageSize:    cfg.App.PageSize,
			MaxPageSize: cfg.App.MaxPageSize,
			MaxBulk:     cfg.App.MaxBulk,
		}),
		Budgets: service.NewBudgetService(db),
		Auth: service.NewAuthService(db, tokens, mailer, service.AuthOptions{
			BcryptCost: cfg.Security.BcryptCost,
			APIURL:     cfg.App.APIURL,
		}),
	}
}

// SetupRouter configures the gin engine with every API route.
func SetupRouter(cfg *config.Config, db *gorm.DB, svc *Services) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	metrics := middleware.NewMetrics()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), metrics.Middleware())

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			util.Error(c, http.StatusServiceUnavailable, util.CodeServerErr, "database unavailable")
			return
		}
		util.JSON(c, http.StatusOK, util.Response{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")

	authn := middleware.AuthMiddleware(svc.Auth.Tokens(), svc.Auth)
	audit := middleware.AuditMiddleware(db, cfg.Security.EncryptionKey)

	// ---------- auth ----------
	authHandler := handler.NewAuthHandler(svc.Auth, cfg.Security.SecureCookies)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/refresh", authHandler.Refresh)
	auth.GET("/activate/:link", authHandler.Activate)

	account := auth.Group("", authn, audit)
	account.GET("/account", handler.GetAccount())
	account.PUT("/account", handler.UpdateAccount(svc.Auth))
	account.DELETE("/account", handler.DeleteAccount(svc.Auth))
	account.GET("/all-users", middleware.RequireAdmin(), handler.ListUsers(svc.Auth))

	// everything below needs a logged-in user
	protected := api.Group("", authn, audit)

	// ---------- transactions ----------
	txHandler := handler.NewTransactionHandler(svc.Transactions)
	exportHandler := handler.NewExportHandler(svc.Transactions)
	backupHandler := handler.NewBackupHandler(svc.Transactions, cfg.Security.EncryptionKey)

	tx := protected.Group("/transactions")
	tx.GET("", txHandler.ListTransactions)
	tx.POST("", txHandler.CreateTransaction)
	tx.POST("/inRange", txHandler.TransactionsInRange)
	tx.POST("/inRange/income", txHandler.IncomeInRange)
	tx.POST("/inRange/expenses", txHandler.ExpensesInRange)
	tx.POST("/bulk-insert", txHandler.BulkInsert)
	tx.PUT("/bulk-update", txHandler.BulkUpdate)
	tx.DELETE("/bulk-delete", txHandler.BulkDelete)
	tx.GET("/export/csv", exportHandler.ExportCSV)
	tx.GET("/export/xlsx", exportHandler.ExportXLSX)
	tx.GET("/backup", backupHandler.DownloadBackup)
	tx.POST("/backup/restore", backupHandler.RestoreBackup)
	tx.GET("/:id", txHandler.GetTransaction)
	tx.PUT("/:id", txHandler.UpdateTransaction)
	tx.DELETE("/:id", txHandler.DeleteTransaction)

	// ---------- budgets ----------
	budgetHandler := handler.NewBudgetHandler(svc.Budgets)
	protected.GET("/budgets", budgetHandler.ListBudgets)
	protected.POST("/budgets", budgetHandler.CreateBudget)
	protected.PUT("/budgets/:id", budgetHandler.UpdateBudget)
	protected.DELETE("/budgets/:id", budgetHandler.DeleteBudget)

	// ---------- audit log ----------
	logHandler := handler.NewLogHandler(db, cfg.Security.EncryptionKey)
	protected.GET("/logs", logHandler.ListLogs)

	return r
}
