package services

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "naijatax/internal/errors"
	"naijatax/internal/models"
	"naijatax/internal/pagination"
)

// companyService manages business profiles.
type companyService struct {
	db *gorm.DB
}

// NewCompanyService creates a new CompanyServicer.
func NewCompanyService(db *gorm.DB) CompanyServicer {
	return &companyService{db: db}
}

// CreateCompany registers a business profile for the user.
func (s *companyService) CreateCompany(userID string, in CompanyInput) (*models.Company, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "company name is required")
	}
	if in.TotalAssets.IsNegative() || in.OwnerNeeds.IsNegative() || in.PreviousYearExpenses.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "profile figures must not be negative")
	}

	tin := normalizeTIN(in.TIN)
	if err := s.checkTIN(tin, ""); err != nil {
		return nil, err
	}

	company := &models.Company{
		UserID:               userID,
		Name:                 in.Name,
		EntityType:           in.EntityType,
		Sector:               strings.TrimSpace(in.Sector),
		TIN:                  tin,
		VATRegistered:        in.VATRegistered,
		TotalAssets:          in.TotalAssets,
		VentureCount:         in.VentureCount,
		OwnerNeeds:           in.OwnerNeeds,
		PreviousYearExpenses: in.PreviousYearExpenses,
	}
	if err := s.db.Create(company).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return company, nil
}

// GetUserCompanies lists the user's companies by name.
func (s *companyService) GetUserCompanies(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Company], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Company{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var companies []models.Company
	if err := base.Scopes(pagination.Paginate(page)).Order("name ASC").Find(&companies).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(companies, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCompanyByID retrieves a company owned by the user.
func (s *companyService) GetCompanyByID(userID, companyID string) (*models.Company, error) {
	return findCompany(s.db, userID, companyID)
}

// UpdateCompany applies the non-nil fields of in.
func (s *companyService) UpdateCompany(userID, companyID string, in CompanyUpdate) (*models.Company, error) {
	company, err := findCompany(s.db, userID, companyID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "company name must not be empty")
		}
		updates["name"] = name
	}
	if in.EntityType != nil {
		updates["entity_type"] = *in.EntityType
	}
	if in.Sector != nil {
		updates["sector"] = strings.TrimSpace(*in.Sector)
	}
	if in.TIN != nil {
		tin := normalizeTIN(in.TIN)
		if err := s.checkTIN(tin, company.ID); err != nil {
			return nil, err
		}
		updates["tin"] = tin
	}
	if in.VATRegistered != nil {
		updates["vat_registered"] = *in.VATRegistered
	}
	if in.VentureCount != nil {
		if *in.VentureCount < 1 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "venture count must be at least 1")
		}
		updates["venture_count"] = *in.VentureCount
	}
	for column, v := range map[string]*decimal.Decimal{
		"total_assets":           in.TotalAssets,
		"owner_needs":            in.OwnerNeeds,
		"previous_year_expenses": in.PreviousYearExpenses,
	} {
		if v == nil {
			continue
		}
		if v.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, column+" must not be negative")
		}
		updates[column] = *v
	}

	if len(updates) > 0 {
		if err := s.db.Model(company).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return findCompany(s.db, userID, companyID)
}

// checkTIN rejects a TIN already used by another company.
func (s *companyService) checkTIN(tin *string, exceptID string) error {
	if tin == nil {
		return nil
	}
	q := s.db.Model(&models.Company{}).Where("tin = ?", *tin)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateTIN
	}
	return nil
}

// normalizeTIN trims the TIN and maps blank values to nil.
func normalizeTIN(tin *string) *string {
	if tin == nil {
		return nil
	}
	v := strings.TrimSpace(*tin)
	if v == "" {
		return nil
	}
	return &v
}
