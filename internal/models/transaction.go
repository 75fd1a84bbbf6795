package models

import (
	"time"

	"github.com/shopspring/decimal"

	"naijatax/internal/taxengine"
)

// Transaction is one bank-statement line filed under a company. Amount is
// signed: credits are positive, debits negative.
type Transaction struct {
	Base
	CompanyID          string                       `gorm:"type:uuid;not null;index" json:"company_id"`
	CategoryID         *string                      `gorm:"type:uuid;index" json:"category_id,omitempty"`
	CategoryName       string                       `json:"category_name"`
	SubCategory        string                       `json:"sub_category"`
	Date               time.Time                    `gorm:"not null;index" json:"date"`
	Description        string                       `json:"description"`
	Reference          string                       `gorm:"index" json:"reference,omitempty"`
	Amount             decimal.Decimal              `gorm:"type:decimal(18,2);not null" json:"amount"`
	TaxTag             taxengine.TaxTag             `gorm:"type:varchar(20);not null;default:'None'" json:"tax_tag"`
	ExcludedFromTax    bool                         `gorm:"default:false" json:"excluded_from_tax"`
	AuditStatus        taxengine.AuditStatus        `gorm:"type:varchar(10);index" json:"audit_status,omitempty"`
	AllowabilityStatus taxengine.AllowabilityStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"allowability_status"`
	AllowableAmount    decimal.NullDecimal          `gorm:"type:decimal(18,2)" json:"allowable_amount"`
	AuditNotes         string                       `json:"audit_notes"`
	PreviewURL         string                       `json:"preview_url,omitempty"`
	AuditedAt          *time.Time                   `json:"audited_at,omitempty"`
	Documents          []ComplianceDocument         `gorm:"foreignKey:TransactionID" json:"documents,omitempty"`
}

// ToEngine converts the stored row into the tax engine's representation.
func (t *Transaction) ToEngine() taxengine.Transaction {
	out := taxengine.Transaction{
		ID:                 t.ID,
		Date:               t.Date,
		Description:        t.Description,
		Amount:             t.Amount.InexactFloat64(),
		CategoryName:       t.CategoryName,
		SubCategory:        t.SubCategory,
		TaxTag:             t.TaxTag,
		ExcludedFromTax:    t.ExcludedFromTax,
		AuditStatus:        t.AuditStatus,
		AllowabilityStatus: t.AllowabilityStatus,
		AuditNotes:         t.AuditNotes,
		PreviewURL:         t.PreviewURL,
	}
	if t.AllowableAmount.Valid {
		v := t.AllowableAmount.Decimal.InexactFloat64()
		out.AllowableAmount = &v
	}
	return out
}

// ApplyAudit writes a rule engine update onto the row.
func (t *Transaction) ApplyAudit(u taxengine.TransactionUpdate, at time.Time) {
	t.AuditStatus = u.AuditStatus
	t.AllowabilityStatus = u.AllowabilityStatus
	t.AllowableAmount = decimal.NewNullDecimal(decimal.NewFromFloat(u.AllowableAmount).Round(2))
	t.AuditNotes = u.AuditNotes
	t.AuditedAt = &at
}

// EngineTransactions converts a slice of stored rows.
func EngineTransactions(rows []Transaction) []taxengine.Transaction {
	out := make([]taxengine.Transaction, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToEngine())
	}
	return out
}
