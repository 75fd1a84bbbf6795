package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "naijatax/internal/errors"
	"naijatax/internal/models"
	"naijatax/internal/taxengine"
)

// documentService manages evidence attached to transactions.
type documentService struct {
	db *gorm.DB
}

// NewDocumentService creates a new DocumentServicer.
func NewDocumentService(db *gorm.DB) DocumentServicer {
	return &documentService{db: db}
}

// AttachDocument links a receipt, invoice or credit note to a transaction.
// Status defaults to pending.
func (s *documentService) AttachDocument(userID, transactionID string, in DocumentInput) (*models.ComplianceDocument, error) {
	docType := strings.TrimSpace(in.DocumentType)
	if docType == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "document type is required")
	}
	if in.OCRAmount != nil && in.OCRAmount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "ocr amount must not be negative")
	}
	status := in.Status
	if status == "" {
		status = taxengine.DocumentPending
	}

	transaction, err := findTransaction(s.db, userID, transactionID)
	if err != nil {
		return nil, err
	}

	doc := &models.ComplianceDocument{
		TransactionID: transaction.ID,
		CompanyID:     transaction.CompanyID,
		DocumentType:  docType,
		Status:        status,
		PreviewURL:    in.PreviewURL,
		OCRDate:       in.OCRDate,
		OCRText:       in.OCRText,
	}
	if in.OCRAmount != nil {
		doc.OCRAmount = decimal.NewNullDecimal(in.OCRAmount.Round(2))
	}
	if err := s.db.Create(doc).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return doc, nil
}

// GetTransactionDocuments lists a transaction's documents, oldest first.
func (s *documentService) GetTransactionDocuments(userID, transactionID string) ([]models.ComplianceDocument, error) {
	transaction, err := findTransaction(s.db, userID, transactionID)
	if err != nil {
		return nil, err
	}

	docs := []models.ComplianceDocument{}
	if err := s.db.Where("transaction_id = ?", transaction.ID).Order("created_at ASC").Find(&docs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return docs, nil
}

// UpdateDocumentStatus records the verification result of a document.
func (s *documentService) UpdateDocumentStatus(userID, documentID string, status taxengine.DocumentStatus) (*models.ComplianceDocument, error) {
	switch status {
	case taxengine.DocumentMissing, taxengine.DocumentPending, taxengine.DocumentVerified, taxengine.DocumentRejected:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown document status")
	}

	doc, err := s.findDocument(userID, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(doc).Update("status", status).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	doc.Status = status
	return doc, nil
}

// DeleteDocument soft-deletes a document.
func (s *documentService) DeleteDocument(userID, documentID string) error {
	doc, err := s.findDocument(userID, documentID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(doc).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *documentService) findDocument(userID, documentID string) (*models.ComplianceDocument, error) {
	var doc models.ComplianceDocument
	err := s.db.Where("id = ? AND company_id IN (?)", documentID, ownedCompanies(s.db, userID)).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDocumentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &doc, nil
}
