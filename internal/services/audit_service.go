package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "naijatax/internal/errors"
	"naijatax/internal/logger"
	"naijatax/internal/models"
	"naijatax/internal/pagination"
	"naijatax/internal/taxengine"
)

// auditService runs the compliance rules over stored transactions.
type auditService struct {
	db      *gorm.DB
	auditor *taxengine.Auditor
	now     func() time.Time
}

// NewAuditService creates a new AuditServicer. A nil auditor uses the
// default rule configuration.
func NewAuditService(db *gorm.DB, auditor *taxengine.Auditor) AuditServicer {
	if auditor == nil {
		auditor = taxengine.NewAuditor(taxengine.DefaultRuleConfig())
	}
	return &auditService{db: db, auditor: auditor, now: time.Now}
}

// AuditTransaction audits one transaction and stores the outcome.
func (s *auditService) AuditTransaction(userID, transactionID string) (*TransactionAudit, error) {
	transaction, err := findTransaction(s.db, userID, transactionID)
	if err != nil {
		return nil, err
	}

	var docs []models.ComplianceDocument
	if err := s.db.Where("transaction_id = ?", transaction.ID).Find(&docs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	outcome := s.auditor.Run(transaction.ToEngine(), models.EngineDocuments(docs))
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.store(tx, transaction, outcome, s.now())
	}); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	transaction.Documents = docs
	return &TransactionAudit{Transaction: transaction, Outcome: outcome}, nil
}

// AuditCompany audits every transaction of a company in one database
// transaction.
func (s *auditService) AuditCompany(userID, companyID string) (*AuditRunSummary, error) {
	if _, err := findCompany(s.db, userID, companyID); err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	if err := s.db.Where("company_id = ?", companyID).Order("date ASC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var docs []models.ComplianceDocument
	if err := s.db.Where("company_id = ?", companyID).Find(&docs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	engineDocs := models.EngineDocuments(docs)

	summary := &AuditRunSummary{CompanyID: companyID, Transactions: len(transactions)}
	at := s.now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := range transactions {
			outcome := s.auditor.Run(transactions[i].ToEngine(), engineDocs)
			if err := s.store(tx, &transactions[i], outcome, at); err != nil {
				return err
			}
			summary.Findings += len(outcome.Results)
			switch outcome.Updates.AuditStatus {
			case taxengine.AuditStatusPass:
				summary.Passed++
			case taxengine.AuditStatusReview:
				summary.Review++
			case taxengine.AuditStatusFail:
				summary.Failed++
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.ForCompany(companyID).Infow("audit run complete",
		"transactions", summary.Transactions,
		"findings", summary.Findings,
		"failed", summary.Failed,
	)
	return summary, nil
}

// store writes the outcome onto the transaction and replaces its findings.
func (s *auditService) store(tx *gorm.DB, transaction *models.Transaction, outcome taxengine.AuditOutcome, at time.Time) error {
	transaction.ApplyAudit(outcome.Updates, at)
	if err := tx.Model(transaction).Updates(map[string]interface{}{
		"audit_status":        transaction.AuditStatus,
		"allowability_status": transaction.AllowabilityStatus,
		"allowable_amount":    transaction.AllowableAmount,
		"audit_notes":         transaction.AuditNotes,
		"audited_at":          transaction.AuditedAt,
	}).Error; err != nil {
		return err
	}

	if err := tx.Where("transaction_id = ?", transaction.ID).Delete(&models.AuditFinding{}).Error; err != nil {
		return err
	}
	if len(outcome.Results) == 0 {
		return nil
	}
	findings := make([]models.AuditFinding, 0, len(outcome.Results))
	for _, f := range outcome.Results {
		findings = append(findings, models.NewAuditFinding(transaction.CompanyID, transaction.ID, f))
	}
	return tx.Create(&findings).Error
}

// GetCompanyFindings lists a company's current findings, most severe first.
func (s *auditService) GetCompanyFindings(userID, companyID string, severity *taxengine.Severity, page pagination.PageRequest) (*pagination.PageResponse[models.AuditFinding], error) {
	if _, err := findCompany(s.db, userID, companyID); err != nil {
		return nil, err
	}
	page.Defaults()

	base := s.db.Model(&models.AuditFinding{}).Where("company_id = ?", companyID)
	if severity != nil {
		base = base.Where("severity = ?", *severity)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var findings []models.AuditFinding
	if err := base.Scopes(pagination.Paginate(page)).
		Order("CASE severity WHEN 'critical' THEN 0 WHEN 'warning' THEN 1 ELSE 2 END").
		Order("impact_amount DESC").
		Find(&findings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(findings, page.Page, page.PageSize, totalItems)
	return &result, nil
}
