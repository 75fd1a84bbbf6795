package taxengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionAccessors(t *testing.T) {
	tx := Transaction{ID: "1", Amount: -1_000}
	assert.True(t, tx.IsExpense())
	assert.False(t, tx.IsIncome())
	assert.Equal(t, UncategorizedCategory, tx.Category())
	assert.Equal(t, TaxTagNone, tx.Tag())
	assert.InDelta(t, 1_000, tx.Allowable(), 1e-9)
	assert.True(t, tx.InBusinessScope())

	tx.AllowableAmount = ptr(5_000.0)
	assert.InDelta(t, 1_000, tx.Allowable(), 1e-9, "allowable is capped at the absolute amount")
	tx.AllowableAmount = ptr(-1.0)
	assert.Zero(t, tx.Allowable())

	tx.TaxTag = TaxTagPersonal
	assert.False(t, tx.InBusinessScope())
}

func TestHasEvidence(t *testing.T) {
	tx := Transaction{ID: "1", Amount: -1_000}
	assert.False(t, HasEvidence(tx, nil))
	assert.False(t, HasEvidence(tx, []ComplianceDocument{{TransactionID: "1", Status: DocumentRejected}}))
	assert.False(t, HasEvidence(tx, []ComplianceDocument{{TransactionID: "2", Status: DocumentVerified}}))
	assert.True(t, HasEvidence(tx, []ComplianceDocument{{TransactionID: "1", Status: DocumentPending}}))

	tx.PreviewURL = "https://files.example/receipt.jpg"
	assert.True(t, HasEvidence(tx, nil))
}

func TestIsKnownTaxTag(t *testing.T) {
	for _, tag := range []TaxTag{TaxTagNone, TaxTagVAT, TaxTagWHT, TaxTagNonDeductible, TaxTagOwnerLoan, TaxTagPersonal, TaxTagCapitalGain} {
		assert.True(t, IsKnownTaxTag(tag), tag)
	}
	assert.False(t, IsKnownTaxTag("vat"))
	assert.False(t, IsKnownTaxTag(""))
}
