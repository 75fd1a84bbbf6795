package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "naijatax/internal/errors"
	"naijatax/internal/services"
	"naijatax/internal/taxengine"
)

// TaxHandler exposes the tax calculators and the per-company analyses.
type TaxHandler struct {
	taxService services.TaxServicer
}

// NewTaxHandler creates a new TaxHandler.
func NewTaxHandler(taxService services.TaxServicer) *TaxHandler {
	return &TaxHandler{taxService: taxService}
}

// WhtRequest is the input to the withholding tax calculator.
type WhtRequest struct {
	Amount          float64           `json:"amount" example:"500000"`
	TransactionType taxengine.WHTType `json:"transaction_type" binding:"required,wht_type" example:"Consultancy"`
}

// PayeRequest is the input to the PAYE calculator.
type PayeRequest struct {
	GrossIncome float64 `json:"gross_income" example:"6000000"`
}

// AuditRiskRequest carries the self-assessment answers. Turnover, expense
// totals and category spend are derived from the stored transactions.
type AuditRiskRequest struct {
	EntityType            taxengine.EntityType `json:"entity_type" binding:"omitempty,entity_type"`
	PreviousYearExpenses  float64              `json:"previous_year_expenses" binding:"gte=0"`
	SelectedItems         []string             `json:"selected_items" binding:"max=100,dive,max=50"`
	MissingReceipts       bool                 `json:"missing_receipts"`
	NoWHTDeducted         bool                 `json:"no_wht_deducted"`
	NoSeparateBankAccount bool                 `json:"no_separate_bank_account"`
	RepeatedLosses        bool                 `json:"repeated_losses"`
}

// CalculatePIT computes personal income tax
// @Summary     Calculate PIT
// @Description Personal income tax under the progressive bands with rent relief. Negative figures are treated as zero.
// @Tags        calculators
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body     taxengine.PitInput true "Income and reliefs"
// @Success     200     {object} taxengine.PitResult
// @Failure     400     {object} ErrorResponse "Invalid input"
// @Router      /tax/pit [post]
func (h *TaxHandler) CalculatePIT(c *gin.Context) {
	var req taxengine.PitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	c.JSON(http.StatusOK, taxengine.CalculatePIT(req))
}

// CalculateCIT computes company income tax
// @Summary     Calculate CIT
// @Description Company income tax and development levy by turnover band
// @Tags        calculators
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body     taxengine.CitInput true "Turnover and profit"
// @Success     200     {object} taxengine.CitResult
// @Failure     400     {object} ErrorResponse "Invalid input"
// @Router      /tax/cit [post]
func (h *TaxHandler) CalculateCIT(c *gin.Context) {
	var req taxengine.CitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	c.JSON(http.StatusOK, taxengine.CalculateCIT(req))
}

// CalculateVAT nets output against input VAT
// @Summary     Calculate VAT
// @Tags        calculators
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body     taxengine.VatInput true "Output and input VAT"
// @Success     200     {object} taxengine.VatResult
// @Failure     400     {object} ErrorResponse "Invalid input"
// @Router      /tax/vat [post]
func (h *TaxHandler) CalculateVAT(c *gin.Context) {
	var req taxengine.VatInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	c.JSON(http.StatusOK, taxengine.CalculateVAT(req))
}

// CalculateWHT computes withholding tax on a payment
// @Summary     Calculate WHT
// @Tags        calculators
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body     WhtRequest true "Payment"
// @Success     200     {object} taxengine.WhtResult
// @Failure     400     {object} ErrorResponse "Invalid input"
// @Router      /tax/wht [post]
func (h *TaxHandler) CalculateWHT(c *gin.Context) {
	var req WhtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	c.JSON(http.StatusOK, taxengine.CalculateWHT(req.Amount, req.TransactionType))
}

// CalculatePAYE computes PAYE on an annual salary
// @Summary     Calculate PAYE
// @Tags        calculators
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body     PayeRequest true "Annual gross salary"
// @Success     200     {object} taxengine.PayeResult
// @Failure     400     {object} ErrorResponse "Invalid input"
// @Router      /tax/paye [post]
func (h *TaxHandler) CalculatePAYE(c *gin.Context) {
	var req PayeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	c.JSON(http.StatusOK, taxengine.CalculatePAYE(req.GrossIncome))
}

// GetChecklist returns the audit-risk self-assessment checklist
// @Summary     Get the risk checklist
// @Tags        calculators
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]taxengine.ChecklistCategory
// @Router      /tax/checklist [get]
func (h *TaxHandler) GetChecklist(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": taxengine.DefaultChecklist()})
}

// companyYear reads the authenticated user, the company path parameter and
// the optional year. It writes the error response itself.
func companyYear(c *gin.Context) (userID, companyID string, year int, ok bool) {
	var err error
	if userID, err = getUserID(c); err != nil {
		respondWithError(c, err)
		return "", "", 0, false
	}
	if companyID, err = parsePathID(c, "id"); err != nil {
		respondWithError(c, err)
		return "", "", 0, false
	}
	if year, err = parseYear(c); err != nil {
		respondWithError(c, err)
		return "", "", 0, false
	}
	return userID, companyID, year, true
}

// GetTaxSummary returns a company's tax position
// @Summary     Get tax summary
// @Description Turnover, allowable expenses, VAT and CIT (or PIT for sole traders) from the stored transactions
// @Tags        analysis
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string true  "Company ID"
// @Param       year query int    false "Tax year; all years when omitted"
// @Success     200 {object} services.CompanyTaxSummary
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Company not found"
// @Router      /companies/{id}/tax-summary [get]
func (h *TaxHandler) GetTaxSummary(c *gin.Context) {
	userID, companyID, year, ok := companyYear(c)
	if !ok {
		return
	}

	result, err := h.taxService.GetTaxSummary(userID, companyID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetComplianceStats returns the compliance dashboard figures
// @Summary     Get compliance stats
// @Tags        analysis
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string true  "Company ID"
// @Param       year query int    false "Tax year; all years when omitted"
// @Success     200 {object} taxengine.ComplianceStats
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Company not found"
// @Router      /companies/{id}/compliance-stats [get]
func (h *TaxHandler) GetComplianceStats(c *gin.Context) {
	userID, companyID, year, ok := companyYear(c)
	if !ok {
		return
	}

	result, err := h.taxService.GetComplianceStats(userID, companyID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTaxAtRisk estimates the tax exposed by weak records
// @Summary     Get tax at risk
// @Tags        analysis
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string true  "Company ID"
// @Param       year query int    false "Tax year; all years when omitted"
// @Success     200 {object} taxengine.TaxAtRiskResult
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Company not found"
// @Router      /companies/{id}/tax-at-risk [get]
func (h *TaxHandler) GetTaxAtRisk(c *gin.Context) {
	userID, companyID, year, ok := companyYear(c)
	if !ok {
		return
	}

	result, err := h.taxService.GetTaxAtRisk(userID, companyID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AssessAuditRisk scores the company's audit risk
// @Summary     Assess audit risk
// @Description Combine the self-assessment answers with figures derived from the stored transactions
// @Tags        analysis
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path  string           true  "Company ID"
// @Param       year    query int              false "Tax year; all years when omitted"
// @Param       request body  AuditRiskRequest true  "Self-assessment answers"
// @Success     200 {object} taxengine.AuditRiskResult
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Company not found"
// @Router      /companies/{id}/audit-risk [post]
func (h *TaxHandler) AssessAuditRisk(c *gin.Context) {
	userID, companyID, year, ok := companyYear(c)
	if !ok {
		return
	}

	var req AuditRiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.taxService.AssessAuditRisk(userID, companyID, year, taxengine.AuditInputs{
		EntityType:            req.EntityType,
		PreviousYearExpenses:  req.PreviousYearExpenses,
		SelectedItems:         req.SelectedItems,
		MissingReceipts:       req.MissingReceipts,
		NoWHTDeducted:         req.NoWHTDeducted,
		NoSeparateBankAccount: req.NoSeparateBankAccount,
		RepeatedLosses:        req.RepeatedLosses,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSavings returns tax-saving recommendations
// @Summary     Get savings recommendations
// @Description Capital allowances, missing expenses, salary/dividend split, reliefs, timing and structure, ordered by saving
// @Tags        analysis
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string true  "Company ID"
// @Param       year query int    false "Tax year; all years when omitted"
// @Success     200 {object} map[string][]taxengine.SavingsRecommendation
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Company not found"
// @Router      /companies/{id}/savings [get]
func (h *TaxHandler) GetSavings(c *gin.Context) {
	userID, companyID, year, ok := companyYear(c)
	if !ok {
		return
	}

	recs, err := h.taxService.GetSavings(userID, companyID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}
