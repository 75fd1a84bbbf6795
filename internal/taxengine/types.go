// Package taxengine implements the Nigerian tax computation and audit-risk
// scoring engine. Every function in this package is pure: it receives its full
// input, never performs I/O and returns a freshly built result.
package taxengine

import (
	"math"
	"strings"
	"time"
)

// TaxTag classifies how a transaction is treated for tax purposes.
type TaxTag string

const (
	TaxTagNone          TaxTag = "None"
	TaxTagVAT           TaxTag = "VAT"
	TaxTagWHT           TaxTag = "WHT"
	TaxTagNonDeductible TaxTag = "Non-deductible"
	TaxTagOwnerLoan     TaxTag = "Owner Loan"
	TaxTagPersonal      TaxTag = "Personal"
	TaxTagCapitalGain   TaxTag = "Capital Gain"
)

// IsKnownTaxTag reports whether t is one of the defined tags.
func IsKnownTaxTag(t TaxTag) bool {
	switch t {
	case TaxTagNone, TaxTagVAT, TaxTagWHT, TaxTagNonDeductible,
		TaxTagOwnerLoan, TaxTagPersonal, TaxTagCapitalGain:
		return true
	}
	return false
}

// AuditStatus is the outcome of the rule engine for a transaction.
// The ordering pass < review < fail is significant.
type AuditStatus string

const (
	AuditStatusPass   AuditStatus = "pass"
	AuditStatusReview AuditStatus = "review"
	AuditStatusFail   AuditStatus = "fail"
)

func (s AuditStatus) rank() int {
	switch s {
	case AuditStatusReview:
		return 1
	case AuditStatusFail:
		return 2
	default:
		return 0
	}
}

// AllowabilityStatus records whether an expense may reduce taxable profit.
type AllowabilityStatus string

const (
	AllowabilityAllowable    AllowabilityStatus = "allowable"
	AllowabilityPartial      AllowabilityStatus = "partial"
	AllowabilityNonAllowable AllowabilityStatus = "non_allowable"
	AllowabilityPending      AllowabilityStatus = "pending"
)

// DocumentStatus is the verification state of a piece of evidence.
type DocumentStatus string

const (
	DocumentMissing  DocumentStatus = "missing"
	DocumentPending  DocumentStatus = "pending"
	DocumentVerified DocumentStatus = "verified"
	DocumentRejected DocumentStatus = "rejected"
)

// UncategorizedCategory is used wherever a transaction has no category.
const UncategorizedCategory = "Uncategorized"

// Transaction is one bank-statement line item. Amount is signed: credits are
// positive, debits negative.
type Transaction struct {
	ID                 string             `json:"id"`
	Date               time.Time          `json:"date"`
	Description        string             `json:"description"`
	Amount             float64            `json:"amount"`
	CategoryName       string             `json:"category_name"`
	SubCategory        string             `json:"sub_category"`
	TaxTag             TaxTag             `json:"tax_tag"`
	ExcludedFromTax    bool               `json:"excluded_from_tax"`
	AuditStatus        AuditStatus        `json:"audit_status"`
	AllowabilityStatus AllowabilityStatus `json:"allowability_status"`
	AllowableAmount    *float64           `json:"allowable_amount,omitempty"`
	AuditNotes         string             `json:"audit_notes"`
	PreviewURL         string             `json:"preview_url,omitempty"`
}

// AbsAmount returns |Amount|.
func (t Transaction) AbsAmount() float64 {
	return math.Abs(t.Amount)
}

// IsExpense reports whether the transaction is an outflow.
func (t Transaction) IsExpense() bool {
	return t.Amount < 0
}

// IsIncome reports whether the transaction is an inflow.
func (t Transaction) IsIncome() bool {
	return t.Amount > 0
}

// Category returns the category name, falling back to "Uncategorized".
func (t Transaction) Category() string {
	if strings.TrimSpace(t.CategoryName) == "" {
		return UncategorizedCategory
	}
	return t.CategoryName
}

// Tag returns the tax tag, falling back to None.
func (t Transaction) Tag() TaxTag {
	if t.TaxTag == "" {
		return TaxTagNone
	}
	return t.TaxTag
}

// Allowable returns the allowable amount clamped to [0, |Amount|]. An unset
// allowable amount defaults to the full absolute amount.
func (t Transaction) Allowable() float64 {
	abs := t.AbsAmount()
	if t.AllowableAmount == nil {
		return abs
	}
	return clamp(*t.AllowableAmount, 0, abs)
}

// InBusinessScope reports whether the transaction takes part in business tax
// aggregates. Personal and explicitly excluded rows never do.
func (t Transaction) InBusinessScope() bool {
	return t.Tag() != TaxTagPersonal && !t.ExcludedFromTax
}

// OCRData holds fields read from a scanned receipt.
type OCRData struct {
	Date   *time.Time `json:"date,omitempty"`
	Amount *float64   `json:"amount,omitempty"`
	Text   string     `json:"text,omitempty"`
}

// ComplianceDocument is evidence attached to a transaction.
type ComplianceDocument struct {
	TransactionID string         `json:"transaction_id"`
	DocumentType  string         `json:"document_type"`
	Status        DocumentStatus `json:"status"`
	OCR           *OCRData       `json:"ocr_data,omitempty"`
}

// documentsFor returns the documents linked to the given transaction.
func documentsFor(txID string, docs []ComplianceDocument) []ComplianceDocument {
	var out []ComplianceDocument
	for _, d := range docs {
		if d.TransactionID == txID {
			out = append(out, d)
		}
	}
	return out
}

// HasEvidence reports whether a transaction carries supporting evidence: a
// preview upload or a linked document that is neither missing nor rejected.
func HasEvidence(tx Transaction, docs []ComplianceDocument) bool {
	if tx.PreviewURL != "" {
		return true
	}
	for _, d := range docs {
		if d.TransactionID != tx.ID {
			continue
		}
		if d.Status == DocumentPending || d.Status == DocumentVerified {
			return true
		}
	}
	return false
}

func hasVerifiedDocument(txID string, docs []ComplianceDocument) bool {
	for _, d := range docs {
		if d.TransactionID == txID && d.Status == DocumentVerified {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

func containsAny(haystack string, needles []string) bool {
	h := strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(h, n) {
			return true
		}
	}
	return false
}

// searchText is the lower-cased text the keyword rules look at.
func searchText(tx Transaction) string {
	return strings.ToLower(tx.Description + " " + tx.CategoryName + " " + tx.SubCategory)
}
