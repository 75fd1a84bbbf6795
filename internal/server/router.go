// Package server assembles the services, handlers and routes of the API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"naijatax/internal/config"
	_ "naijatax/internal/docs" // Import swagger docs
	"naijatax/internal/handlers"
	"naijatax/internal/middleware"
	"naijatax/internal/services"
	"naijatax/internal/taxengine"
)

// Options configures the router.
type Options struct {
	Policy       *config.TaxPolicy
	IngestAPIKey string

	// AllowedOrigins lists the browser origins accepted by CORS. Empty allows any.
	AllowedOrigins []string

	// RequestLogging enables the per-request access log.
	RequestLogging bool

	// Swagger mounts the API docs under /swagger.
	Swagger bool
}

// Services holds every service the handlers depend on.
type Services struct {
	Activity    services.ActivityServicer
	User        services.UserServicer
	Company     services.CompanyServicer
	Category    services.CategoryServicer
	Transaction services.TransactionServicer
	Document    services.DocumentServicer
	Audit       services.AuditServicer
	Tax         services.TaxServicer
}

// NewServices builds the service layer over db using the tax policy.
func NewServices(db *gorm.DB, policy *config.TaxPolicy) *Services {
	return &Services{
		Activity:    services.NewActivityService(db),
		User:        services.NewUserService(db),
		Company:     services.NewCompanyService(db),
		Category:    services.NewCategoryService(db),
		Transaction: services.NewTransactionService(db, policy.Ingest.BulkLimit),
		Document:    services.NewDocumentService(db),
		Audit:       services.NewAuditService(db, taxengine.NewAuditor(policy.RuleConfig())),
		Tax:         services.NewTaxService(db, policy.Savings.DefaultOwnerNeeds),
	}
}

// NewRouter wires the handlers to the /api/v1 routes.
func NewRouter(db *gorm.DB, opts Options) *gin.Engine {
	svc := NewServices(db, opts.Policy)

	authHandler := handlers.NewAuthHandler(svc.User, svc.Activity)
	companyHandler := handlers.NewCompanyHandler(svc.Company, svc.Activity)
	categoryHandler := handlers.NewCategoryHandler(svc.Category, svc.Activity)
	transactionHandler := handlers.NewTransactionHandler(svc.Transaction, svc.Activity)
	documentHandler := handlers.NewDocumentHandler(svc.Document, svc.Activity)
	auditHandler := handlers.NewAuditHandler(svc.Audit, svc.Activity)
	taxHandler := handlers.NewTaxHandler(svc.Tax)
	reportHandler := handlers.NewReportHandler(svc.Tax, svc.Activity)
	ingestHandler := handlers.NewIngestHandler(svc.Transaction)

	router := gin.New()
	router.Use(gin.Recovery())
	if opts.RequestLogging {
		router.Use(middleware.RequestLogging())
	}
	router.Use(middleware.ErrorHandler())
	router.Use(corsMiddleware(opts.AllowedOrigins))

	if opts.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := router.Group("/api/v1")
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Statement importer
	ingest := v1.Group("/ingest")
	ingest.Use(middleware.IngestKeyMiddleware(opts.IngestAPIKey))
	ingest.POST("/companies/:id/transactions", ingestHandler.ImportTransactions)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	companies := protected.Group("/companies")
	companies.POST("", companyHandler.CreateCompany)
	companies.GET("", companyHandler.GetCompanies)
	companies.GET("/:id", companyHandler.GetCompany)
	companies.PUT("/:id", companyHandler.UpdateCompany)
	companies.POST("/:id/categories", categoryHandler.CreateCategory)
	companies.GET("/:id/categories", categoryHandler.GetCategories)
	companies.POST("/:id/transactions", transactionHandler.CreateTransaction)
	companies.POST("/:id/transactions/bulk", transactionHandler.BulkCreateTransactions)
	companies.GET("/:id/transactions", transactionHandler.GetCompanyTransactions)
	companies.POST("/:id/audit", auditHandler.AuditCompany)
	companies.GET("/:id/findings", auditHandler.GetCompanyFindings)
	companies.GET("/:id/tax-summary", taxHandler.GetTaxSummary)
	companies.GET("/:id/compliance-stats", taxHandler.GetComplianceStats)
	companies.GET("/:id/tax-at-risk", taxHandler.GetTaxAtRisk)
	companies.POST("/:id/audit-risk", taxHandler.AssessAuditRisk)
	companies.GET("/:id/savings", taxHandler.GetSavings)
	companies.GET("/:id/reports/compliance.xlsx", reportHandler.GetComplianceWorkbook)

	protected.DELETE("/categories/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PATCH("/:id", transactionHandler.UpdateClassification)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.POST("/:id/documents", documentHandler.AttachDocument)
	transactions.GET("/:id/documents", documentHandler.GetTransactionDocuments)
	transactions.POST("/:id/audit", auditHandler.AuditTransaction)

	documents := protected.Group("/documents")
	documents.PATCH("/:id", documentHandler.UpdateDocumentStatus)
	documents.DELETE("/:id", documentHandler.DeleteDocument)

	tax := protected.Group("/tax")
	tax.POST("/pit", taxHandler.CalculatePIT)
	tax.POST("/cit", taxHandler.CalculateCIT)
	tax.POST("/vat", taxHandler.CalculateVAT)
	tax.POST("/wht", taxHandler.CalculateWHT)
	tax.POST("/paye", taxHandler.CalculatePAYE)
	tax.GET("/checklist", taxHandler.GetChecklist)

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-API-Key", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         600,
	})
	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)
		// Preflights are fully answered by HandlerFunc.
		if ctx.Request.Method == http.MethodOptions && ctx.GetHeader("Access-Control-Request-Method") != "" {
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
