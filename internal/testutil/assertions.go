package testutil

import (
	"testing"

	"gorm.io/gorm"

	apperrors "naijatax/internal/errors"
	"naijatax/internal/models"
)

// AssertAppError checks that err carries the AppError code expectedCode.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s, got nil", expectedCode)
	}
	appErr, ok := apperrors.From(err)
	if !ok {
		t.Fatalf("expected %s, got %T: %v", expectedCode, err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected %s, got %s (%s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertFindingCount checks how many live audit findings a transaction has.
func AssertFindingCount(t *testing.T, db *gorm.DB, transactionID string, want int64) {
	t.Helper()

	var got int64
	if err := db.Model(&models.AuditFinding{}).Where("transaction_id = ?", transactionID).Count(&got).Error; err != nil {
		t.Fatalf("failed to count findings: %v", err)
	}
	if got != want {
		t.Errorf("transaction %s: expected %d findings, got %d", transactionID, want, got)
	}
}
