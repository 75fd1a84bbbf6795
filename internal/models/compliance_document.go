package models

import (
	"time"

	"github.com/shopspring/decimal"

	"naijatax/internal/taxengine"
)

// ComplianceDocument is evidence attached to a transaction, such as a
// receipt, invoice or WHT credit note.
type ComplianceDocument struct {
	Base
	TransactionID string                   `gorm:"type:uuid;not null;index" json:"transaction_id"`
	CompanyID     string                   `gorm:"type:uuid;not null;index" json:"company_id"`
	DocumentType  string                   `gorm:"not null" json:"document_type"`
	Status        taxengine.DocumentStatus `gorm:"type:varchar(10);not null;default:'pending'" json:"status"`
	PreviewURL    string                   `json:"preview_url,omitempty"`
	OCRDate       *time.Time               `json:"ocr_date,omitempty"`
	OCRAmount     decimal.NullDecimal      `gorm:"type:decimal(18,2)" json:"ocr_amount"`
	OCRText       string                   `json:"ocr_text,omitempty"`
}

// ToEngine converts the stored row into the tax engine's representation.
func (d *ComplianceDocument) ToEngine() taxengine.ComplianceDocument {
	out := taxengine.ComplianceDocument{
		TransactionID: d.TransactionID,
		DocumentType:  d.DocumentType,
		Status:        d.Status,
	}
	if d.OCRDate != nil || d.OCRAmount.Valid || d.OCRText != "" {
		ocr := &taxengine.OCRData{Date: d.OCRDate, Text: d.OCRText}
		if d.OCRAmount.Valid {
			v := d.OCRAmount.Decimal.InexactFloat64()
			ocr.Amount = &v
		}
		out.OCR = ocr
	}
	return out
}

// EngineDocuments converts a slice of stored rows.
func EngineDocuments(rows []ComplianceDocument) []taxengine.ComplianceDocument {
	out := make([]taxengine.ComplianceDocument, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToEngine())
	}
	return out
}
