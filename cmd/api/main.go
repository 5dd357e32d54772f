package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spendsnap/internal/cache"
	"spendsnap/internal/config"
	"spendsnap/internal/database"
	"spendsnap/internal/events"
	"spendsnap/internal/logger"
	"spendsnap/internal/middleware"
	"spendsnap/internal/report"
	"spendsnap/internal/server"
	"spendsnap/internal/services"
	"spendsnap/internal/session"
	"spendsnap/internal/validator"
)

// @title           Spendsnap API
// @version         1.0
// @description     Spendsnap records income and expenses, tracks category budgets and summarises spending by day, month and category.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	reportCache, err := cache.New(appConfig.ReportCacheTTL)
	if err != nil {
		return fmt.Errorf("failed to create report cache: %w", err)
	}
	defer reportCache.Close()

	var publisher events.Publisher = events.NopPublisher{}
	if appConfig.AMQPURL != "" {
		client, err := events.NewClient(appConfig.AMQPURL, appConfig.AMQPExchange)
		if err != nil {
			return fmt.Errorf("failed to connect to message broker: %w", err)
		}
		publisher = client
		log.Infof("Publishing events to exchange %s", appConfig.AMQPExchange)
	} else {
		log.Info("AMQP_URL not set, events are discarded")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warnf("publisher close error: %v", err)
		}
	}()

	validator.Register()

	policy := report.ParseBudgetPolicy(appConfig.BudgetPolicy)

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db, publisher, appConfig.ResetTokenTTL)
	categoryService := services.NewCategoryService(db)
	budgetService := services.NewBudgetService(db, categoryService)
	transactionService := services.NewTransactionService(db, categoryService, budgetService, reportCache, publisher, policy)
	reportService := services.NewReportService(transactionService, categoryService, budgetService, reportCache, policy)
	auditService := services.NewAuditService(db)

	tokens := session.NewTokens(appConfig.JWTSecret, appConfig.JWTExpirationDur)

	router := server.NewRouter(server.Deps{
		Users:        userService,
		Categories:   categoryService,
		Transactions: transactionService,
		Budgets:      budgetService,
		Reports:      reportService,
		Audit:        auditService,
		Tokens:       tokens,
		Sessions:     session.NewJWTProvider(tokens, userService),
		Guard:        session.NewGuard(appConfig.ProtectedRoutes, appConfig.LoginPath),
		GuardOptions: middleware.SessionGuardOptions{
			Timeout:  appConfig.SessionCheckTimeout,
			FailOpen: appConfig.SessionFailOpen,
		},
		CookieSecure: appConfig.CookieSecure,
	})

	if appConfig.SessionFailOpen {
		log.Warn("SESSION_FAIL_OPEN is set: protected pages are served when the session check fails")
	}

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Spendsnap server on port %s (budget policy %s)", appConfig.Port, policy)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
