package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "naijatax/internal/errors"
	"naijatax/internal/pagination"
	"naijatax/internal/services"
	"naijatax/internal/taxengine"
)

// CompanyHandler handles business profile requests.
type CompanyHandler struct {
	companyService  services.CompanyServicer
	activityService services.ActivityServicer
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(companyService services.CompanyServicer, activityService services.ActivityServicer) *CompanyHandler {
	return &CompanyHandler{companyService: companyService, activityService: activityService}
}

// CreateCompanyRequest represents the request payload for creating a company
type CreateCompanyRequest struct {
	Name                 string               `json:"name" binding:"required,max=200"`
	EntityType           taxengine.EntityType `json:"entity_type" binding:"omitempty,entity_type"`
	Sector               string               `json:"sector" binding:"max=100"`
	TIN                  *string              `json:"tin" binding:"omitempty,tin"`
	VATRegistered        bool                 `json:"vat_registered"`
	TotalAssets          decimal.Decimal      `json:"total_assets" swaggertype:"number"`
	VentureCount         int                  `json:"venture_count" binding:"omitempty,min=1"`
	OwnerNeeds           decimal.Decimal      `json:"owner_needs" swaggertype:"number"`
	PreviousYearExpenses decimal.Decimal      `json:"previous_year_expenses" swaggertype:"number"`
}

// UpdateCompanyRequest represents the request payload for updating a company.
// Omitted fields are left unchanged.
type UpdateCompanyRequest struct {
	Name                 *string               `json:"name" binding:"omitempty,min=1,max=200"`
	EntityType           *taxengine.EntityType `json:"entity_type" binding:"omitempty,entity_type"`
	Sector               *string               `json:"sector" binding:"omitempty,max=100"`
	TIN                  *string               `json:"tin" binding:"omitempty,tin"`
	VATRegistered        *bool                 `json:"vat_registered"`
	TotalAssets          *decimal.Decimal      `json:"total_assets" swaggertype:"number"`
	VentureCount         *int                  `json:"venture_count" binding:"omitempty,min=1"`
	OwnerNeeds           *decimal.Decimal      `json:"owner_needs" swaggertype:"number"`
	PreviousYearExpenses *decimal.Decimal      `json:"previous_year_expenses" swaggertype:"number"`
}

// CreateCompany handles the creation of a business profile
// @Summary     Create a company
// @Description Register a business profile. Entity type defaults to LTD.
// @Tags        companies
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCompanyRequest true "Company profile"
// @Success     201 {object} models.Company "Company created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "TIN already registered"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /companies [post]
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	company, err := h.companyService.CreateCompany(userID, services.CompanyInput{
		Name:                 req.Name,
		EntityType:           req.EntityType,
		Sector:               req.Sector,
		TIN:                  req.TIN,
		VATRegistered:        req.VATRegistered,
		TotalAssets:          req.TotalAssets,
		VentureCount:         req.VentureCount,
		OwnerNeeds:           req.OwnerNeeds,
		PreviousYearExpenses: req.PreviousYearExpenses,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "CREATE_COMPANY", "company", company.ID, c.ClientIP(),
		map[string]any{"name": company.Name, "entity_type": company.EntityType})

	c.JSON(http.StatusCreated, gin.H{"company": company})
}

// GetCompanies lists the user's companies
// @Summary     List companies
// @Description Get a paginated list of the authenticated user's companies
// @Tags        companies
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Company] "Paginated companies"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /companies [get]
func (h *CompanyHandler) GetCompanies(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.companyService.GetUserCompanies(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCompany returns one company
// @Summary     Get a company
// @Tags        companies
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Company ID"
// @Success     200 {object} models.Company "Company"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Company not found"
// @Router      /companies/{id} [get]
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	companyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	company, err := h.companyService.GetCompanyByID(userID, companyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"company": company})
}

// UpdateCompany applies a partial profile update
// @Summary     Update a company
// @Description Update the fields present in the request body
// @Tags        companies
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Company ID"
// @Param       request body UpdateCompanyRequest true "Fields to change"
// @Success     200 {object} models.Company "Updated company"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Company not found"
// @Failure     409 {object} ErrorResponse "TIN already registered"
// @Router      /companies/{id} [put]
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	companyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	company, err := h.companyService.UpdateCompany(userID, companyID, services.CompanyUpdate{
		Name:                 req.Name,
		EntityType:           req.EntityType,
		Sector:               req.Sector,
		TIN:                  req.TIN,
		VATRegistered:        req.VATRegistered,
		TotalAssets:          req.TotalAssets,
		VentureCount:         req.VentureCount,
		OwnerNeeds:           req.OwnerNeeds,
		PreviousYearExpenses: req.PreviousYearExpenses,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "UPDATE_COMPANY", "company", company.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"company": company})
}
