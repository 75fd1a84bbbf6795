package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "naijatax/internal/errors"
	"naijatax/internal/models"
)

// ownedCompanies returns a subquery selecting the IDs of userID's companies.
func ownedCompanies(db *gorm.DB, userID string) *gorm.DB {
	return db.Model(&models.Company{}).Select("id").Where("user_id = ?", userID)
}

// findCompany loads a company owned by userID. Companies of other users are
// reported as not found.
func findCompany(db *gorm.DB, userID, companyID string) (*models.Company, error) {
	var company models.Company
	if err := db.Where("id = ? AND user_id = ?", companyID, userID).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCompanyNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &company, nil
}

// findTransaction loads a transaction belonging to one of userID's companies.
func findTransaction(db *gorm.DB, userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := db.Where("id = ? AND company_id IN (?)", transactionID, ownedCompanies(db, userID)).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}
