package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"naijatax/internal/models"
	"naijatax/internal/taxengine"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// FixtureDate is the default transaction date used by fixtures.
var FixtureDate = time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email and the
// password "password123".
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCompany creates a company of the given entity type.
func CreateTestCompany(t *testing.T, db *gorm.DB, userID string, entityType taxengine.EntityType) *models.Company {
	t.Helper()

	company := &models.Company{
		UserID:     userID,
		Name:       fmt.Sprintf("Test Company %d", nextID()),
		EntityType: entityType,
		Sector:     "services",
	}
	if err := db.Create(company).Error; err != nil {
		t.Fatalf("failed to create test company: %v", err)
	}
	return company
}

// CreateTestCategory creates a category of the given type with no default tag.
func CreateTestCategory(t *testing.T, db *gorm.DB, companyID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		CompanyID:     companyID,
		Name:          fmt.Sprintf("Test Category %d", nextID()),
		Type:          categoryType,
		DefaultTaxTag: taxengine.TaxTagNone,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction with the given signed amount
// and description, dated FixtureDate.
func CreateTestTransaction(t *testing.T, db *gorm.DB, companyID string, amount float64, description string) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		CompanyID:          companyID,
		Date:               FixtureDate,
		Description:        description,
		Amount:             decimal.NewFromFloat(amount),
		TaxTag:             taxengine.TaxTagNone,
		AllowabilityStatus: taxengine.AllowabilityPending,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestDocument attaches a document with the given status to a transaction.
func CreateTestDocument(t *testing.T, db *gorm.DB, tx *models.Transaction, status taxengine.DocumentStatus) *models.ComplianceDocument {
	t.Helper()

	doc := &models.ComplianceDocument{
		TransactionID: tx.ID,
		CompanyID:     tx.CompanyID,
		DocumentType:  "receipt",
		Status:        status,
	}
	if err := db.Create(doc).Error; err != nil {
		t.Fatalf("failed to create test document: %v", err)
	}
	return doc
}
