package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/paymentops/settlement-backend/internal/adapters/database/pgsql"
	"github.com/paymentops/settlement-backend/internal/core/services"
	"github.com/paymentops/settlement-backend/internal/handlers"
	"github.com/paymentops/settlement-backend/internal/middleware"
	"github.com/paymentops/settlement-backend/pkg/config"
	"github.com/paymentops/settlement-backend/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	portssvc "github.com/paymentops/settlement-backend/internal/core/ports/services"
)

// @title Settlement Backend API
// @version 1.0
// @description Weekly payment-settlement engine: fee calculation, reserve
// @description withholding and itemized settlement reports per merchant site.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.SettlementTimezone)
	if err != nil {
		logger.Error("Failed to load settlement timezone", slog.String("timezone", cfg.SettlementTimezone), slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, request counters)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())
	r.Use(middleware.MetricsMiddleware())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterCustomValidators()

	// Health check and Prometheus scrape endpoint stay public
	r.GET("/", handlers.GetHome)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	serviceContainer := buildServices(dbPool, loc)
	setupAPIV1Routes(r, cfg, serviceContainer)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations from the migrations
// directory before the server starts accepting traffic.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	// Open a temporary standard sql.DB connection for migrations, using the
	// pgx/v5 stdlib driver to stay compatible with the main pool.
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// buildServices wires the pgx repositories into the application services.
func buildServices(dbPool *pgxpool.Pool, loc *time.Location) *portssvc.ServiceContainer {
	siteRepo := pgsql.NewSiteRepository(dbPool)
	txnRepo := pgsql.NewTransactionRepository(dbPool)
	pricingRepo := pgsql.NewPricingRepository(dbPool)
	settlementRepo := pgsql.NewSettlementRepository(dbPool)
	auditRepo := pgsql.NewAuditRepository(dbPool)

	return &portssvc.ServiceContainer{
		Settlement: services.NewSettlementService(siteRepo, txnRepo, pricingRepo, settlementRepo, auditRepo, loc),
		Pricing:    services.NewPricingService(pricingRepo, siteRepo),
		Site:       services.NewSiteService(siteRepo, txnRepo),
	}
}

func setupAPIV1Routes(r *gin.Engine, cfg *config.Config, sc *portssvc.ServiceContainer) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	addSettlementAPI(v1, cfg, sc)
	addSiteAPI(v1, sc)
}

func addSettlementAPI(v1 *gin.RouterGroup, cfg *config.Config, sc *portssvc.ServiceContainer) {
	settlementHandler := handlers.NewSettlementHandler(sc.Settlement)

	rate, err := limiter.NewRateFromFormatted(cfg.RunRateLimit)
	if err != nil {
		// A broken limit format is a deployment mistake; fall back to a
		// conservative fixed rate rather than refusing to boot.
		rate = limiter.Rate{Period: time.Minute, Limit: 10}
		slog.Warn("Invalid RUN_RATE_LIMIT, using 10-M", slog.String("value", cfg.RunRateLimit))
	}
	runLimiter := limiter.New(memory.NewStore(), rate)

	settlements := v1.Group("/settlements")
	settlements.POST("/run", middleware.RateLimit(runLimiter), settlementHandler.RunSettlements)
	settlements.GET("/run", middleware.RateLimit(runLimiter), settlementHandler.RunSettlements)
	settlements.GET("/", settlementHandler.ListSettlements)
	settlements.GET("/batches", settlementHandler.ListBatchRuns)
	settlements.GET("/:reportNumber", settlementHandler.GetSettlement)
}

func addSiteAPI(v1 *gin.RouterGroup, sc *portssvc.ServiceContainer) {
	siteHandler := handlers.NewSiteHandler(sc.Site)
	pricingHandler := handlers.NewPricingHandler(sc.Pricing)

	sites := v1.Group("/sites")
	{
		sites.POST("/", siteHandler.CreateSite)
		sites.GET("/", siteHandler.ListSites)
		sites.GET("/:siteID/transactions", siteHandler.ListSiteTransactions)
		sites.GET("/:siteID/pricing", pricingHandler.GetPricing)
		sites.PUT("/:siteID/pricing", pricingHandler.UpsertPricing)
	}
}
