package models

import (
	"github.com/shopspring/decimal"

	"naijatax/internal/taxengine"
)

// AuditFinding is one failed compliance rule recorded against a transaction.
// A new audit run replaces the transaction's previous findings.
type AuditFinding struct {
	Base
	TransactionID string             `gorm:"type:uuid;not null;index" json:"transaction_id"`
	CompanyID     string             `gorm:"type:uuid;not null;index" json:"company_id"`
	RuleCode      string             `gorm:"type:varchar(20);not null;index" json:"rule_code"`
	RuleName      string             `gorm:"not null" json:"rule_name"`
	Severity      taxengine.Severity `gorm:"type:varchar(10);not null" json:"severity"`
	LegalRef      string             `json:"legal_ref"`
	Finding       string             `gorm:"not null" json:"finding"`
	ImpactAmount  decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0" json:"impact_amount"`
	FixAction     string             `gorm:"type:varchar(20)" json:"fix_action"`
}

// NewAuditFinding builds a row from an engine finding.
func NewAuditFinding(companyID, transactionID string, f taxengine.AuditFinding) AuditFinding {
	return AuditFinding{
		TransactionID: transactionID,
		CompanyID:     companyID,
		RuleCode:      f.RuleCode,
		RuleName:      f.RuleName,
		Severity:      f.Severity,
		LegalRef:      f.LegalRef,
		Finding:       f.Finding,
		ImpactAmount:  decimal.NewFromFloat(f.ImpactAmount).Round(2),
		FixAction:     f.FixAction,
	}
}

// ToEngine converts the stored row into the tax engine's representation.
func (f *AuditFinding) ToEngine() taxengine.AuditFinding {
	return taxengine.AuditFinding{
		RuleCode:     f.RuleCode,
		RuleName:     f.RuleName,
		Severity:     f.Severity,
		LegalRef:     f.LegalRef,
		Finding:      f.Finding,
		ImpactAmount: f.ImpactAmount.InexactFloat64(),
		FixAction:    f.FixAction,
	}
}

// EngineFindings converts a slice of stored rows.
func EngineFindings(rows []AuditFinding) []taxengine.AuditFinding {
	out := make([]taxengine.AuditFinding, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToEngine())
	}
	return out
}
