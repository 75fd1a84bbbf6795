package services

import (
	"io"
	"time"

	"github.com/shopspring/decimal"

	"naijatax/internal/models"
	"naijatax/internal/pagination"
	"naijatax/internal/taxengine"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// CompanyInput holds the fields of a new business profile.
type CompanyInput struct {
	Name                 string
	EntityType           taxengine.EntityType
	Sector               string
	TIN                  *string
	VATRegistered        bool
	TotalAssets          decimal.Decimal
	VentureCount         int
	OwnerNeeds           decimal.Decimal
	PreviousYearExpenses decimal.Decimal
}

// CompanyUpdate holds optional profile changes; nil fields are left alone.
type CompanyUpdate struct {
	Name                 *string
	EntityType           *taxengine.EntityType
	Sector               *string
	TIN                  *string
	VATRegistered        *bool
	TotalAssets          *decimal.Decimal
	VentureCount         *int
	OwnerNeeds           *decimal.Decimal
	PreviousYearExpenses *decimal.Decimal
}

// CompanyServicer defines the contract for business profiles.
type CompanyServicer interface {
	CreateCompany(userID string, in CompanyInput) (*models.Company, error)
	GetUserCompanies(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Company], error)
	GetCompanyByID(userID, companyID string) (*models.Company, error)
	UpdateCompany(userID, companyID string, in CompanyUpdate) (*models.Company, error)
}

// CategoryServicer defines the contract for the per-company category catalogue.
type CategoryServicer interface {
	CreateCategory(userID, companyID, name string, categoryType models.CategoryType, defaultTag taxengine.TaxTag, description string) (*models.Category, error)
	GetCompanyCategories(userID, companyID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	DeleteCategory(userID, categoryID string) error
}

// TransactionInput holds one statement line to record.
type TransactionInput struct {
	CategoryID      *string
	CategoryName    string
	SubCategory     string
	Date            time.Time
	Description     string
	Reference       string
	Amount          decimal.Decimal
	TaxTag          taxengine.TaxTag
	ExcludedFromTax bool
	PreviewURL      string
}

// ClassificationUpdate holds optional classification changes for a transaction.
type ClassificationUpdate struct {
	CategoryID      *string
	SubCategory     *string
	Description     *string
	TaxTag          *taxengine.TaxTag
	ExcludedFromTax *bool
	PreviewURL      *string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate    *time.Time
	ToDate      *time.Time
	AuditStatus *taxengine.AuditStatus
	TaxTag      *taxengine.TaxTag
	CategoryID  *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID, companyID string, in TransactionInput) (*models.Transaction, error)
	BulkCreateTransactions(userID, companyID string, in []TransactionInput) ([]models.Transaction, error)
	ImportTransactions(companyID string, in []TransactionInput) ([]models.Transaction, error)
	GetCompanyTransactions(userID, companyID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateClassification(userID, transactionID string, in ClassificationUpdate) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}

// DocumentInput holds the evidence attached to a transaction.
type DocumentInput struct {
	DocumentType string
	Status       taxengine.DocumentStatus
	PreviewURL   string
	OCRDate      *time.Time
	OCRAmount    *decimal.Decimal
	OCRText      string
}

// DocumentServicer defines the contract for transaction evidence.
type DocumentServicer interface {
	AttachDocument(userID, transactionID string, in DocumentInput) (*models.ComplianceDocument, error)
	GetTransactionDocuments(userID, transactionID string) ([]models.ComplianceDocument, error)
	UpdateDocumentStatus(userID, documentID string, status taxengine.DocumentStatus) (*models.ComplianceDocument, error)
	DeleteDocument(userID, documentID string) error
}

// TransactionAudit is the result of auditing one stored transaction.
type TransactionAudit struct {
	Transaction *models.Transaction    `json:"transaction"`
	Outcome     taxengine.AuditOutcome `json:"outcome"`
}

// AuditRunSummary counts the outcome of auditing a whole company.
type AuditRunSummary struct {
	CompanyID    string `json:"company_id"`
	Transactions int    `json:"transactions"`
	Findings     int    `json:"findings"`
	Passed       int    `json:"passed"`
	Review       int    `json:"review"`
	Failed       int    `json:"failed"`
}

// AuditServicer runs the compliance rule engine and persists its results.
type AuditServicer interface {
	AuditTransaction(userID, transactionID string) (*TransactionAudit, error)
	AuditCompany(userID, companyID string) (*AuditRunSummary, error)
	GetCompanyFindings(userID, companyID string, severity *taxengine.Severity, page pagination.PageRequest) (*pagination.PageResponse[models.AuditFinding], error)
}

// CompanyTaxSummary is the tax position of a company for one year. Exactly
// one of CIT and PIT is set, depending on the entity type.
type CompanyTaxSummary struct {
	CompanyID  string               `json:"company_id"`
	Year       int                  `json:"year"`
	EntityType taxengine.EntityType `json:"entity_type"`
	Summary    taxengine.TaxSummary `json:"summary"`
	CIT        *taxengine.CitResult `json:"cit,omitempty"`
	PIT        *taxengine.PitResult `json:"pit,omitempty"`
	VAT        taxengine.VatResult  `json:"vat"`
}

// TaxServicer exposes the engine's analyses over a company's stored data.
// A zero year means all years.
type TaxServicer interface {
	GetTaxSummary(userID, companyID string, year int) (*CompanyTaxSummary, error)
	GetComplianceStats(userID, companyID string, year int) (*taxengine.ComplianceStats, error)
	GetTaxAtRisk(userID, companyID string, year int) (*taxengine.TaxAtRiskResult, error)
	AssessAuditRisk(userID, companyID string, year int, in taxengine.AuditInputs) (*taxengine.AuditRiskResult, error)
	GetSavings(userID, companyID string, year int) ([]taxengine.SavingsRecommendation, error)
	WriteComplianceWorkbook(userID, companyID string, year int, w io.Writer) error
}

// ActivityServicer defines the contract for activity logging.
type ActivityServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
