// Package server assembles the HTTP routes.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "spendsnap/internal/docs" // Import swagger docs
	"spendsnap/internal/handlers"
	"spendsnap/internal/middleware"
	"spendsnap/internal/services"
	"spendsnap/internal/session"
)

// Deps carries everything the routes need.
type Deps struct {
	Users        services.UserServicer
	Categories   services.CategoryServicer
	Transactions services.TransactionServicer
	Budgets      services.BudgetServicer
	Reports      services.ReportServicer
	Audit        services.AuditServicer

	Tokens       *session.Tokens
	Sessions     session.Provider
	Guard        *session.Guard
	GuardOptions middleware.SessionGuardOptions
	CookieSecure bool
}

// NewRouter builds the gin engine with page routes behind the session guard
// and the JSON API under /api/v1 behind bearer authentication.
func NewRouter(d Deps) *gin.Engine {
	authHandler := handlers.NewAuthHandler(d.Users, d.Tokens, d.Sessions, d.Audit, d.CookieSecure)
	categoryHandler := handlers.NewCategoryHandler(d.Categories, d.Audit)
	transactionHandler := handlers.NewTransactionHandler(d.Transactions, d.Audit)
	budgetHandler := handlers.NewBudgetHandler(d.Budgets, d.Reports, d.Audit)
	reportHandler := handlers.NewReportHandler(d.Reports)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.Use(middleware.SessionGuard(d.Guard, d.Sessions, d.GuardOptions))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Pages
	auth := router.Group("/auth")
	auth.GET("/login", authHandler.LoginPage)
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/new-password", authHandler.NewPassword)

	dashboard := router.Group("/dashboard")
	dashboard.GET("", reportHandler.Dashboard)
	dashboard.POST("/add-transaction", transactionHandler.CreateTransaction)
	dashboard.GET("/transHistory", reportHandler.History)
	dashboard.GET("/budget-setting", budgetHandler.Overview)
	dashboard.POST("/budget-setting", budgetHandler.SetBudget)
	dashboard.POST("/budget-setting/category", categoryHandler.CreateCategory)
	dashboard.GET("/monthly-summary", reportHandler.MonthlySummary)
	dashboard.GET("/monthly-summary/export.csv", reportHandler.ExportCSV)
	dashboard.GET("/monthly-summary/export.pdf", reportHandler.ExportPDF)

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	apiAuth := v1.Group("/auth")
	apiAuth.POST("/register", authHandler.Register)
	apiAuth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(d.Sessions))

	protected.GET("/profile", authHandler.GetProfile)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.SetBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/overview", budgetHandler.Overview)

	reports := protected.Group("/reports")
	reports.GET("/summary", reportHandler.Summary)
	reports.GET("/monthly", reportHandler.MonthlySummary)
	reports.GET("/daily", reportHandler.Daily)
	reports.GET("/categories", reportHandler.Categories)

	return router
}
