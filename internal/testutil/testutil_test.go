package testutil_test

import (
	"testing"

	"naijatax/internal/errors"
	"naijatax/internal/models"
	"naijatax/internal/taxengine"
	"naijatax/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)

	var count int64
	for _, table := range []string{"users", "companies", "categories", "transactions", "compliance_documents", "audit_findings", "activity_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_Isolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	second := testutil.SetupTestDB(t)

	testutil.CreateTestUser(t, first)

	var count int64
	second.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected second database to be empty, got %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	company := testutil.CreateTestCompany(t, db, user.ID, taxengine.EntitySole)
	if company.EntityType != taxengine.EntitySole {
		t.Errorf("expected SOLE company, got %s", company.EntityType)
	}
	if company.VentureCount != 1 {
		t.Errorf("expected venture count 1, got %d", company.VentureCount)
	}

	category := testutil.CreateTestCategory(t, db, company.ID, models.CategoryTypeExpense)
	if category.Type != models.CategoryTypeExpense {
		t.Errorf("expected expense category, got %s", category.Type)
	}

	tx := testutil.CreateTestTransaction(t, db, company.ID, -25000, "Diesel")
	if tx.Amount.InexactFloat64() != -25000 {
		t.Errorf("expected amount -25000, got %s", tx.Amount)
	}
	if !tx.Date.Equal(testutil.FixtureDate) {
		t.Errorf("expected fixture date, got %s", tx.Date)
	}

	doc := testutil.CreateTestDocument(t, db, tx, taxengine.DocumentVerified)
	if doc.CompanyID != company.ID {
		t.Errorf("expected document company %s, got %s", company.ID, doc.CompanyID)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrCompanyNotFound, "custom message")
	testutil.AssertAppError(t, err, "COMPANY_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}

func TestAssertFindingCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	company := testutil.CreateTestCompany(t, db, user.ID, taxengine.EntityLTD)
	tx := testutil.CreateTestTransaction(t, db, company.ID, -5000, "Traffic fine")

	testutil.AssertFindingCount(t, db, tx.ID, 0)

	finding := models.NewAuditFinding(company.ID, tx.ID, taxengine.AuditFinding{RuleCode: "ALLOW_005", RuleName: "Fine or penalty", Severity: taxengine.SeverityCritical, Finding: "x"})
	if err := db.Create(&finding).Error; err != nil {
		t.Fatalf("failed to create finding: %v", err)
	}
	testutil.AssertFindingCount(t, db, tx.ID, 1)
}
