package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "naijatax/internal/errors"
	"naijatax/internal/models"
	"naijatax/internal/pagination"
	"naijatax/internal/taxengine"
)

// categoryService handles the per-company category catalogue.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory adds a category to one of the user's companies.
func (s *categoryService) CreateCategory(
	userID string,
	companyID string,
	name string,
	categoryType models.CategoryType,
	defaultTag taxengine.TaxTag,
	description string,
) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if categoryType != models.CategoryTypeIncome && categoryType != models.CategoryTypeExpense {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
	}
	if defaultTag == "" {
		defaultTag = taxengine.TaxTagNone
	}

	if _, err := findCompany(s.db, userID, companyID); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("company_id = ? AND LOWER(name) = ?", companyID, strings.ToLower(name)).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	category := &models.Category{
		CompanyID:     companyID,
		Name:          name,
		Type:          categoryType,
		DefaultTaxTag: defaultTag,
		Description:   description,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetCompanyCategories lists a company's categories by name.
func (s *categoryService) GetCompanyCategories(userID, companyID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	if _, err := findCompany(s.db, userID, companyID); err != nil {
		return nil, err
	}
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Category{}).Where("company_id = ?", companyID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DeleteCategory soft-deletes a category that no transaction references.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := findCategory(s.db, userID, categoryID)
	if err != nil {
		return err
	}

	var inUse int64
	if err := s.db.Model(&models.Transaction{}).Where("category_id = ?", categoryID).Count(&inUse).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if inUse > 0 {
		return apperrors.ErrCategoryInUse
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// findCategory loads a category belonging to one of userID's companies.
func findCategory(db *gorm.DB, userID, categoryID string) (*models.Category, error) {
	var category models.Category
	err := db.Where("id = ? AND company_id IN (?)", categoryID, ownedCompanies(db, userID)).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}
