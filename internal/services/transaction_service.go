package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "naijatax/internal/errors"
	"naijatax/internal/models"
	"naijatax/internal/pagination"
	"naijatax/internal/taxengine"
)

// DefaultBulkLimit caps the rows accepted by one bulk create or import.
const DefaultBulkLimit = 1000

const insertBatchSize = 200

// transactionService handles transaction-related business logic.
type transactionService struct {
	db        *gorm.DB
	bulkLimit int
}

// NewTransactionService creates a new TransactionServicer. A non-positive
// bulkLimit falls back to DefaultBulkLimit.
func NewTransactionService(db *gorm.DB, bulkLimit int) TransactionServicer {
	if bulkLimit <= 0 {
		bulkLimit = DefaultBulkLimit
	}
	return &transactionService{db: db, bulkLimit: bulkLimit}
}

// CreateTransaction records one statement line for a company owned by the user.
func (s *transactionService) CreateTransaction(userID, companyID string, in TransactionInput) (*models.Transaction, error) {
	if _, err := findCompany(s.db, userID, companyID); err != nil {
		return nil, err
	}

	row, err := s.buildRow(companyID, in, map[string]*models.Category{})
	if err != nil {
		return nil, err
	}

	if err := s.db.Create(row).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return row, nil
}

// BulkCreateTransactions records many statement lines at once.
func (s *transactionService) BulkCreateTransactions(userID, companyID string, in []TransactionInput) ([]models.Transaction, error) {
	if _, err := findCompany(s.db, userID, companyID); err != nil {
		return nil, err
	}
	return s.createBatch(companyID, in)
}

// ImportTransactions records statement lines pushed by the statement
// importer. The caller is trusted; only the company's existence is checked.
func (s *transactionService) ImportTransactions(companyID string, in []TransactionInput) ([]models.Transaction, error) {
	var company models.Company
	if err := s.db.Where("id = ?", companyID).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCompanyNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.createBatch(companyID, in)
}

// createBatch validates every row before inserting any. Rows whose reference
// is already stored for the company are skipped, so re-importing the same
// statement is harmless.
func (s *transactionService) createBatch(companyID string, in []TransactionInput) ([]models.Transaction, error) {
	if len(in) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one transaction is required")
	}
	if len(in) > s.bulkLimit {
		return nil, apperrors.WithMessage(apperrors.ErrBulkTooLarge,
			fmt.Sprintf("at most %d transactions can be imported at once", s.bulkLimit))
	}

	known, err := s.knownReferences(companyID, in)
	if err != nil {
		return nil, err
	}

	categories := map[string]*models.Category{}
	rows := make([]models.Transaction, 0, len(in))
	for i, item := range in {
		row, err := s.buildRow(companyID, item, categories)
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.StatusCode < 500 {
				return nil, apperrors.WithMessage(appErr, fmt.Sprintf("transaction %d: %s", i, appErr.Message))
			}
			return nil, err
		}
		if row.Reference != "" {
			if known[row.Reference] {
				continue
			}
			known[row.Reference] = true
		}
		rows = append(rows, *row)
	}

	if len(rows) == 0 {
		return rows, nil
	}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&rows, insertBatchSize).Error
	}); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

func (s *transactionService) knownReferences(companyID string, in []TransactionInput) (map[string]bool, error) {
	var refs []string
	for _, item := range in {
		if ref := strings.TrimSpace(item.Reference); ref != "" {
			refs = append(refs, ref)
		}
	}
	known := make(map[string]bool, len(refs))
	if len(refs) == 0 {
		return known, nil
	}

	var existing []string
	if err := s.db.Model(&models.Transaction{}).
		Where("company_id = ? AND reference IN ?", companyID, refs).
		Pluck("reference", &existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, ref := range existing {
		known[ref] = true
	}
	return known, nil
}

// buildRow validates one input and applies the category defaults. Loaded
// categories are cached in categories.
func (s *transactionService) buildRow(companyID string, in TransactionInput, categories map[string]*models.Category) (*models.Transaction, error) {
	amount := in.Amount.Round(2)
	if amount.IsZero() {
		return nil, apperrors.ErrZeroAmount
	}
	if in.Date.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction date is required")
	}

	row := &models.Transaction{
		CompanyID:          companyID,
		CategoryName:       strings.TrimSpace(in.CategoryName),
		SubCategory:        strings.TrimSpace(in.SubCategory),
		Date:               in.Date.UTC(),
		Description:        strings.TrimSpace(in.Description),
		Reference:          strings.TrimSpace(in.Reference),
		Amount:             amount,
		TaxTag:             in.TaxTag,
		ExcludedFromTax:    in.ExcludedFromTax,
		AllowabilityStatus: taxengine.AllowabilityPending,
		PreviewURL:         in.PreviewURL,
	}

	if in.CategoryID != nil && *in.CategoryID != "" {
		category, ok := categories[*in.CategoryID]
		if !ok {
			var err error
			category, err = s.companyCategory(companyID, *in.CategoryID)
			if err != nil {
				return nil, err
			}
			categories[*in.CategoryID] = category
		}
		row.CategoryID = &category.ID
		if row.CategoryName == "" {
			row.CategoryName = category.Name
		}
		if row.TaxTag == "" {
			row.TaxTag = category.DefaultTaxTag
		}
	}
	if row.TaxTag == "" {
		row.TaxTag = taxengine.TaxTagNone
	}

	return row, nil
}

func (s *transactionService) companyCategory(companyID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND company_id = ?", categoryID, companyID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// GetCompanyTransactions retrieves a paginated, filtered list of a company's transactions.
func (s *transactionService) GetCompanyTransactions(userID, companyID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if _, err := findCompany(s.db, userID, companyID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("company_id = ?", companyID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", f.FromDate.UTC())
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", f.ToDate.UTC())
	}
	if f.AuditStatus != nil {
		q = q.Where("audit_status = ?", *f.AuditStatus)
	}
	if f.TaxTag != nil {
		q = q.Where("tax_tag = ?", *f.TaxTag)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	return q
}

// GetTransactionByID retrieves a transaction and its documents.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	transaction, err := findTransaction(s.db, userID, transactionID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Where("transaction_id = ?", transaction.ID).Order("created_at ASC").
		Find(&transaction.Documents).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// UpdateClassification changes how a transaction is classified. Any change
// clears the previous audit result and its findings, so the transaction must
// be audited again.
func (s *transactionService) UpdateClassification(userID, transactionID string, in ClassificationUpdate) (*models.Transaction, error) {
	transaction, err := findTransaction(s.db, userID, transactionID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.CategoryID != nil {
		if *in.CategoryID == "" {
			updates["category_id"] = nil
			updates["category_name"] = ""
		} else {
			category, err := s.companyCategory(transaction.CompanyID, *in.CategoryID)
			if err != nil {
				return nil, err
			}
			updates["category_id"] = category.ID
			updates["category_name"] = category.Name
		}
	}
	if in.SubCategory != nil {
		updates["sub_category"] = strings.TrimSpace(*in.SubCategory)
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.TaxTag != nil {
		tag := *in.TaxTag
		if tag == "" {
			tag = taxengine.TaxTagNone
		}
		updates["tax_tag"] = tag
	}
	if in.ExcludedFromTax != nil {
		updates["excluded_from_tax"] = *in.ExcludedFromTax
	}
	if in.PreviewURL != nil {
		updates["preview_url"] = *in.PreviewURL
	}

	if len(updates) == 0 {
		return transaction, nil
	}
	updates["audit_status"] = ""
	updates["allowability_status"] = taxengine.AllowabilityPending
	updates["allowable_amount"] = nil
	updates["audit_notes"] = ""
	updates["audited_at"] = nil

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(transaction).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("transaction_id = ?", transaction.ID).Delete(&models.AuditFinding{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return findTransaction(s.db, userID, transactionID)
}

// DeleteTransaction soft-deletes a transaction together with its documents
// and findings.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := findTransaction(s.db, userID, transactionID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", transaction.ID).Delete(&models.ComplianceDocument{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("transaction_id = ?", transaction.ID).Delete(&models.AuditFinding{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
