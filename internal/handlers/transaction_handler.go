package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "naijatax/internal/errors"
	"naijatax/internal/models"
	"naijatax/internal/pagination"
	"naijatax/internal/services"
	"naijatax/internal/taxengine"
	"naijatax/internal/uuid"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	activityService    services.ActivityServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, activityService services.ActivityServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, activityService: activityService}
}

// TransactionRequest is one bank-statement line. Amount is signed: credits
// are positive, debits negative.
type TransactionRequest struct {
	CategoryID      *string          `json:"category_id" binding:"omitempty,uuid"`
	CategoryName    string           `json:"category_name" binding:"max=100"`
	SubCategory     string           `json:"sub_category" binding:"max=100"`
	Date            string           `json:"date" binding:"required" example:"2025-03-14"`
	Description     string           `json:"description" binding:"max=500"`
	Reference       string           `json:"reference" binding:"max=100"`
	Amount          decimal.Decimal  `json:"amount" swaggertype:"number" example:"-25000.00"`
	TaxTag          taxengine.TaxTag `json:"tax_tag" binding:"omitempty,tax_tag"`
	ExcludedFromTax bool             `json:"excluded_from_tax"`
	PreviewURL      string           `json:"preview_url" binding:"omitempty,url,max=2048"`
}

// BulkTransactionRequest carries a batch of statement lines.
type BulkTransactionRequest struct {
	Transactions []TransactionRequest `json:"transactions" binding:"required,min=1,dive"`
}

// BulkTransactionResponse reports how many rows were stored. Rows whose
// reference was already known are skipped.
type BulkTransactionResponse struct {
	Received     int                  `json:"received"`
	Created      int                  `json:"created"`
	Skipped      int                  `json:"skipped"`
	Transactions []models.Transaction `json:"transactions"`
}

// UpdateClassificationRequest represents a partial classification change.
// An empty category_id clears the category.
type UpdateClassificationRequest struct {
	CategoryID      *string           `json:"category_id" binding:"omitempty,uuid"`
	SubCategory     *string           `json:"sub_category" binding:"omitempty,max=100"`
	Description     *string           `json:"description" binding:"omitempty,max=500"`
	TaxTag          *taxengine.TaxTag `json:"tax_tag" binding:"omitempty,tax_tag"`
	ExcludedFromTax *bool             `json:"excluded_from_tax"`
	PreviewURL      *string           `json:"preview_url" binding:"omitempty,url,max=2048"`
}

func newBulkResponse(received int, created []models.Transaction) BulkTransactionResponse {
	if created == nil {
		created = []models.Transaction{}
	}
	return BulkTransactionResponse{
		Received:     received,
		Created:      len(created),
		Skipped:      received - len(created),
		Transactions: created,
	}
}

func (r TransactionRequest) toInput() (services.TransactionInput, error) {
	date, err := parseFlexibleTime(r.Date)
	if err != nil {
		return services.TransactionInput{}, err
	}
	return services.TransactionInput{
		CategoryID:      r.CategoryID,
		CategoryName:    r.CategoryName,
		SubCategory:     r.SubCategory,
		Date:            date,
		Description:     r.Description,
		Reference:       r.Reference,
		Amount:          r.Amount,
		TaxTag:          r.TaxTag,
		ExcludedFromTax: r.ExcludedFromTax,
		PreviewURL:      r.PreviewURL,
	}, nil
}

// bulkInputs converts a batch, naming the offending row on a bad date.
func bulkInputs(reqs []TransactionRequest) ([]services.TransactionInput, error) {
	inputs := make([]services.TransactionInput, 0, len(reqs))
	for i, r := range reqs {
		in, err := r.toInput()
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("transaction %d: %s", i, err.Error()))
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// CreateTransaction records a single statement line
// @Summary     Create a transaction
// @Description Record one bank-statement line for a company
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Company ID"
// @Param       request body TransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Company or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /companies/{id}/transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
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

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.CreateTransaction(userID, companyID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]any{"company_id": companyID, "amount": transaction.Amount.String()})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// BulkCreateTransactions records a batch of statement lines
// @Summary     Bulk create transactions
// @Description Record many statement lines at once. The batch is validated as a whole; rows with an already-known reference are skipped.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                 true "Company ID"
// @Param       request body BulkTransactionRequest true "Transactions"
// @Success     201 {object} BulkTransactionResponse "Batch stored"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Company not found"
// @Failure     413 {object} ErrorResponse "Batch too large"
// @Router      /companies/{id}/transactions/bulk [post]
func (h *TransactionHandler) BulkCreateTransactions(c *gin.Context) {
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

	var req BulkTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	inputs, err := bulkInputs(req.Transactions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	created, err := h.transactionService.BulkCreateTransactions(userID, companyID, inputs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "BULK_CREATE_TRANSACTIONS", "company", companyID, c.ClientIP(),
		map[string]any{"received": len(inputs), "created": len(created)})

	c.JSON(http.StatusCreated, newBulkResponse(len(inputs), created))
}

// GetCompanyTransactions lists a company's transactions
// @Summary     List transactions
// @Description Get a paginated list of a company's transactions, newest first, with optional filters
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id           path  string true  "Company ID"
// @Param       page         query int    false "Page number (default 1)"
// @Param       page_size    query int    false "Items per page (default 20, max 100)"
// @Param       from_date    query string false "Start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date      query string false "End date (RFC3339 or YYYY-MM-DD)"
// @Param       audit_status query string false "pass, review or fail"
// @Param       tax_tag      query string false "Tax tag"
// @Param       category_id  query string false "Category ID"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Company not found"
// @Router      /companies/{id}/transactions [get]
func (h *TransactionHandler) GetCompanyTransactions(c *gin.Context) {
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

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetCompanyTransactions(userID, companyID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransactionByID returns a transaction with its documents
// @Summary     Get a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateClassification changes how a transaction is classified
// @Summary     Reclassify a transaction
// @Description Change the category, tax tag or other classification fields. Any change clears the previous audit result.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                      true "Transaction ID"
// @Param       request body UpdateClassificationRequest true "Fields to change"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction or category not found"
// @Router      /transactions/{id} [patch]
func (h *TransactionHandler) UpdateClassification(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateClassificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.UpdateClassification(userID, transactionID, services.ClassificationUpdate{
		CategoryID:      req.CategoryID,
		SubCategory:     req.SubCategory,
		Description:     req.Description,
		TaxTag:          req.TaxTag,
		ExcludedFromTax: req.ExcludedFromTax,
		PreviewURL:      req.PreviewURL,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "UPDATE_TRANSACTION", "transaction", transactionID, c.ClientIP(),
		map[string]any{"tax_tag": transaction.TaxTag})

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction removes a transaction with its documents and findings
// @Summary     Delete a transaction
// @Tags        transactions
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     204 "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("audit_status"); v != "" {
		status := taxengine.AuditStatus(v)
		switch status {
		case taxengine.AuditStatusPass, taxengine.AuditStatusReview, taxengine.AuditStatusFail:
			filter.AuditStatus = &status
		default:
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid audit_status, must be pass, review, or fail")
		}
	}

	if v := c.Query("tax_tag"); v != "" {
		tag := taxengine.TaxTag(v)
		if !taxengine.IsKnownTaxTag(tag) {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid tax_tag")
		}
		filter.TaxTag = &tag
	}

	if v := c.Query("category_id"); v != "" {
		if !uuid.IsValid(v) {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category_id")
		}
		filter.CategoryID = &v
	}

	return filter, nil
}
