package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"naijatax/internal/config"
	"naijatax/internal/database"
	"naijatax/internal/logger"
	"naijatax/internal/server"
	"naijatax/internal/validator"
)

// @title           NaijaTax API
// @version         1.0
// @description     Tax-compliance engine for Nigerian small businesses: transaction tagging, rule-based audits, tax calculators and savings analysis.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

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

	policy, err := config.LoadTaxPolicy(appConfig.TaxPolicyFile)
	if err != nil {
		return err
	}
	log.Infow("tax policy loaded",
		"file", appConfig.TaxPolicyFile,
		"entertainment_turnover", policy.Rules.EntertainmentTurnover,
		"bulk_limit", policy.Ingest.BulkLimit)

	validator.Register()

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(dbManager.DB(), server.Options{
		Policy:         policy,
		IngestAPIKey:   appConfig.IngestAPIKey,
		AllowedOrigins: appConfig.CORSAllowedOrigins,
		RequestLogging: true,
		Swagger:        true,
	})
	if appConfig.IngestAPIKey == "" {
		log.Warn("INGEST_API_KEY is not set; statement import is disabled")
	}

	log.Infof("Starting NaijaTax API on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
