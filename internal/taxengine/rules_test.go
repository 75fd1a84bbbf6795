package taxengine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ruleCodes(results []AuditFinding) []string {
	codes := make([]string, 0, len(results))
	for _, r := range results {
		codes = append(codes, r.RuleCode)
	}
	return codes
}

func ptr[T any](v T) *T { return &v }

func TestRunAudit_MissingReceipt(t *testing.T) {
	tx := Transaction{
		ID:           "t1",
		Amount:       -20_000,
		Description:  "Uber ride to client",
		CategoryName: "Travel & Transport",
	}

	out := RunAudit(tx, nil)

	require.Len(t, out.Results, 1)
	assert.Equal(t, "DOC_001", out.Results[0].RuleCode)
	assert.Equal(t, SeverityCritical, out.Results[0].Severity)
	assert.InDelta(t, 20_000, out.Results[0].ImpactAmount, 0.001)
	assert.Equal(t, "flag", out.Results[0].FixAction)
	assert.Equal(t, AuditStatusFail, out.Updates.AuditStatus)
	assert.Equal(t, AllowabilityAllowable, out.Updates.AllowabilityStatus)
	assert.InDelta(t, 20_000, out.Updates.AllowableAmount, 0.001)
	assert.Contains(t, out.Updates.AuditNotes, "20,000")
}

func TestRunAudit_Evidence(t *testing.T) {
	tx := Transaction{ID: "t1", Amount: -20_000, Description: "Courier", CategoryName: "Logistics"}

	t.Run("pending document satisfies receipt rule", func(t *testing.T) {
		out := RunAudit(tx, []ComplianceDocument{{TransactionID: "t1", Status: DocumentPending}})
		assert.Empty(t, out.Results)
		assert.Equal(t, AuditStatusPass, out.Updates.AuditStatus)
	})

	t.Run("rejected document does not", func(t *testing.T) {
		out := RunAudit(tx, []ComplianceDocument{{TransactionID: "t1", Status: DocumentRejected}})
		assert.Equal(t, []string{"DOC_001"}, ruleCodes(out.Results))
	})

	t.Run("document for another transaction is ignored", func(t *testing.T) {
		out := RunAudit(tx, []ComplianceDocument{{TransactionID: "t2", Status: DocumentVerified}})
		assert.Equal(t, []string{"DOC_001"}, ruleCodes(out.Results))
	})

	t.Run("preview upload counts as evidence", func(t *testing.T) {
		withPreview := tx
		withPreview.PreviewURL = "https://files.example/r.jpg"
		out := RunAudit(withPreview, nil)
		assert.Empty(t, out.Results)
	})
}

func TestRunAudit_ReceiptMismatch(t *testing.T) {
	txDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	ocrDate := txDate.AddDate(0, 0, 19)
	tx := Transaction{ID: "t1", Date: txDate, Amount: -50_000, Description: "Printer toner", CategoryName: "Office Supplies"}
	docs := []ComplianceDocument{{
		TransactionID: "t1",
		Status:        DocumentVerified,
		OCR:           &OCRData{Date: &ocrDate, Amount: ptr(40_000.0)},
	}}

	out := RunAudit(tx, docs)

	assert.Equal(t, []string{"DOC_003", "DOC_004"}, ruleCodes(out.Results))
	assert.Zero(t, out.Results[0].ImpactAmount)
	assert.InDelta(t, 10_000, out.Results[1].ImpactAmount, 0.001)
	assert.Equal(t, AuditStatusReview, out.Updates.AuditStatus)
	assert.Equal(t, "Receipt dated 2025-03-20 is 19 days from the transaction date; Receipt shows ₦40,000 but the bank recorded ₦50,000", out.Updates.AuditNotes)
}

func TestRunAudit_FinesAlwaysDisallowed(t *testing.T) {
	cases := []Transaction{
		{ID: "f1", Amount: -25_000, Description: "LASTMA traffic fine", PreviewURL: "x"},
		{ID: "f2", Amount: -5_000, Description: "FIRS late filing penalty", TaxTag: TaxTagVAT},
		{ID: "f3", Amount: -900_000, Description: "Penalty charged at club lounge", PreviewURL: "x"},
		{ID: "f4", Amount: -12_000, Description: "Bank late fee", TaxTag: TaxTagWHT, PreviewURL: "x"},
	}
	for _, tx := range cases {
		t.Run(tx.Description, func(t *testing.T) {
			out := RunAudit(tx, nil)
			assert.Contains(t, ruleCodes(out.Results), "ALLOW_005")
			assert.Equal(t, AllowabilityNonAllowable, out.Updates.AllowabilityStatus)
			assert.Zero(t, out.Updates.AllowableAmount)
			assert.Equal(t, AuditStatusFail, out.Updates.AuditStatus)
		})
	}
}

func TestRunAudit_FineMatchesWholeWords(t *testing.T) {
	tx := Transaction{ID: "t1", Amount: -25_000, Description: "Refined fuel for defined routes", CategoryName: "Logistics", PreviewURL: "x"}
	out := RunAudit(tx, nil)
	assert.NotContains(t, ruleCodes(out.Results), "ALLOW_005")
}

func TestRunAudit_PersonalExpense(t *testing.T) {
	t.Run("untagged personal spend is disallowed", func(t *testing.T) {
		tx := Transaction{ID: "t1", Amount: -8_000, Description: "Shoprite groceries"}
		out := RunAudit(tx, nil)
		assert.Equal(t, []string{"ALLOW_001"}, ruleCodes(out.Results))
		assert.Equal(t, AllowabilityNonAllowable, out.Updates.AllowabilityStatus)
		assert.Equal(t, AuditStatusFail, out.Updates.AuditStatus)
	})

	t.Run("already tagged personal is not flagged again", func(t *testing.T) {
		tx := Transaction{ID: "t1", Amount: -8_000, Description: "Shoprite groceries", TaxTag: TaxTagPersonal}
		out := RunAudit(tx, nil)
		assert.Empty(t, out.Results)
	})
}

func TestRunAudit_Entertainment(t *testing.T) {
	tx := Transaction{ID: "t1", Amount: -300_000, Description: "Client dinner at restaurant", PreviewURL: "x"}

	t.Run("default cap limits the excess", func(t *testing.T) {
		out := RunAudit(tx, nil)
		require.Equal(t, []string{"ALLOW_003"}, ruleCodes(out.Results))
		assert.InDelta(t, 100_000, out.Results[0].ImpactAmount, 0.001)
		assert.Equal(t, "limit_50pct", out.Results[0].FixAction)
		assert.Equal(t, AllowabilityPartial, out.Updates.AllowabilityStatus)
		assert.InDelta(t, 200_000, out.Updates.AllowableAmount, 0.001)
		assert.Equal(t, AuditStatusReview, out.Updates.AuditStatus)
	})

	t.Run("configured turnover raises the cap", func(t *testing.T) {
		out := NewAuditor(RuleConfig{EntertainmentTurnover: 100_000_000}).Run(tx, nil)
		assert.Empty(t, out.Results)
	})

	t.Run("non-positive turnover uses the default", func(t *testing.T) {
		out := NewAuditor(RuleConfig{}).Run(tx, nil)
		assert.Equal(t, []string{"ALLOW_003"}, ruleCodes(out.Results))
	})
}

func TestRunAudit_ProfessionalFees(t *testing.T) {
	tx := Transaction{ID: "t1", Amount: -100_000, Description: "Audit of 2024 accounts", CategoryName: "Professional Fees", PreviewURL: "x"}

	t.Run("untagged fee needs VAT and WHT", func(t *testing.T) {
		out := RunAudit(tx, nil)
		assert.Equal(t, []string{"VAT_003", "WHT_001"}, ruleCodes(out.Results))
		assert.InDelta(t, ExtractVAT(100_000), out.Results[0].ImpactAmount, 1e-6)
		assert.InDelta(t, 5_000, out.Results[1].ImpactAmount, 1e-6)
		assert.Equal(t, AuditStatusReview, out.Updates.AuditStatus)
	})

	t.Run("WHT tagged fee passes", func(t *testing.T) {
		tagged := tx
		tagged.TaxTag = TaxTagWHT
		out := RunAudit(tagged, nil)
		assert.Empty(t, out.Results)
		assert.Equal(t, AuditStatusPass, out.Updates.AuditStatus)
	})
}

func TestRunAudit_CapitalItem(t *testing.T) {
	tx := Transaction{ID: "t1", Amount: -650_000, Description: "HP laptop for design team", CategoryName: "Office Supplies", PreviewURL: "x"}
	out := RunAudit(tx, nil)
	require.Equal(t, []string{"ALLOW_002"}, ruleCodes(out.Results))
	assert.Equal(t, "reclassify_asset", out.Results[0].FixAction)

	tx.CategoryName = "Fixed Assets"
	assert.Empty(t, RunAudit(tx, nil).Results)
}

func TestRunAudit_FlaggedForReview(t *testing.T) {
	tests := []struct {
		name   string
		tx     Transaction
		want   []string
		impact float64
	}{
		{"cash without narration", Transaction{Amount: -60_000, Description: "ATM"}, []string{"DOC_002"}, 60_000},
		{"short cash narration", Transaction{Amount: -60_000, Description: "Cash"}, []string{"DOC_002"}, 60_000},
		{"cash at the threshold", Transaction{Amount: -50_000, Description: "ATM"}, nil, 0},
		{"cash with narration", Transaction{Amount: -60_000, Description: "ATM withdrawal for site wages"}, nil, 0},
		{"short narration without cash", Transaction{Amount: -60_000, Description: "POS"}, nil, 0},
		{"donation", Transaction{Amount: -5_000, Description: "Donation to charity"}, []string{"ALLOW_004"}, 5_000},
		{"donation by category", Transaction{Amount: -5_000, Description: "Transfer", CategoryName: "Sponsorship"}, []string{"ALLOW_004"}, 5_000},
		{"donation received", Transaction{Amount: 5_000, Description: "Donation received"}, nil, 0},
		{"untagged VAT", Transaction{Amount: -5_000, Description: "Printer ink incl VAT"}, []string{"VAT_001"}, ExtractVAT(5_000)},
		{"hyphenated VAT", Transaction{Amount: -5_000, Description: "VAT-inclusive toner"}, []string{"VAT_001"}, ExtractVAT(5_000)},
		{"VAT tagged", Transaction{Amount: -5_000, Description: "Printer ink incl VAT", TaxTag: TaxTagVAT}, nil, 0},
		{"other tag", Transaction{Amount: -5_000, Description: "Printer ink incl VAT", TaxTag: TaxTagWHT}, nil, 0},
		{"vat inside a word", Transaction{Amount: -5_000, Description: "Innovative printer ink"}, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := tt.tx
			tx.ID = "t1"
			tx.PreviewURL = "x"

			out := RunAudit(tx, nil)

			if tt.want == nil {
				assert.Empty(t, out.Results)
				assert.Equal(t, AuditStatusPass, out.Updates.AuditStatus)
				return
			}
			require.Equal(t, tt.want, ruleCodes(out.Results))
			assert.Equal(t, SeverityWarning, out.Results[0].Severity)
			assert.Equal(t, "flag", out.Results[0].FixAction)
			assert.InDelta(t, tt.impact, out.Results[0].ImpactAmount, 1e-6)
			assert.Equal(t, AuditStatusReview, out.Updates.AuditStatus)
			assert.Equal(t, AllowabilityAllowable, out.Updates.AllowabilityStatus)
		})
	}
}

func TestRunAudit_IncomeIsNotAudited(t *testing.T) {
	tx := Transaction{ID: "t1", Amount: 5_000_000, Description: "Invoice 104 VAT inclusive fine art sale"}
	out := RunAudit(tx, nil)
	assert.Empty(t, out.Results)
	assert.Equal(t, AuditStatusPass, out.Updates.AuditStatus)
	assert.InDelta(t, 5_000_000, out.Updates.AllowableAmount, 0.001)
}

func TestAuditRules(t *testing.T) {
	rules := AuditRules()
	codes := make([]string, 0, len(rules))
	for _, r := range rules {
		codes = append(codes, r.Code)
	}
	assert.Equal(t, []string{
		"DOC_001", "DOC_002", "DOC_003", "DOC_004",
		"ALLOW_001", "ALLOW_002", "ALLOW_003", "ALLOW_004", "ALLOW_005",
		"VAT_001", "VAT_003", "WHT_001",
	}, codes)

	rules[0].Code = "CHANGED"
	assert.Equal(t, "DOC_001", AuditRules()[0].Code)
}

func TestRuleActionMarshal(t *testing.T) {
	b, err := json.Marshal(ActionLimit50Pct)
	require.NoError(t, err)
	assert.Equal(t, `"limit_50pct"`, string(b))
	assert.Equal(t, "RuleAction(9)", RuleAction(9).String())
}

func TestTransactionUpdateApply(t *testing.T) {
	tx := Transaction{ID: "t1", Amount: -20_000}
	upd := TransactionUpdate{AuditStatus: AuditStatusFail, AllowabilityStatus: AllowabilityNonAllowable, AuditNotes: "n"}
	got := upd.Apply(tx)
	assert.Equal(t, AuditStatusFail, got.AuditStatus)
	require.NotNil(t, got.AllowableAmount)
	assert.Zero(t, got.Allowable())
	assert.Nil(t, tx.AllowableAmount)
}
