package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "naijatax/internal/errors"
	"naijatax/internal/pagination"
	"naijatax/internal/services"
	"naijatax/internal/taxengine"
)

// AuditHandler runs the compliance rule engine.
type AuditHandler struct {
	auditService    services.AuditServicer
	activityService services.ActivityServicer
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService services.AuditServicer, activityService services.ActivityServicer) *AuditHandler {
	return &AuditHandler{auditService: auditService, activityService: activityService}
}

// AuditTransaction runs every rule against one transaction
// @Summary     Audit a transaction
// @Description Run the compliance rules against a transaction and its documents. Earlier findings are replaced.
// @Tags        audit
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} services.TransactionAudit "Audit outcome"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/audit [post]
func (h *AuditHandler) AuditTransaction(c *gin.Context) {
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

	result, err := h.auditService.AuditTransaction(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "AUDIT_TRANSACTION", "transaction", transactionID, c.ClientIP(),
		map[string]any{"audit_status": result.Outcome.Updates.AuditStatus, "findings": len(result.Outcome.Results)})

	c.JSON(http.StatusOK, result)
}

// AuditCompany audits every transaction of a company
// @Summary     Audit a company
// @Description Run the compliance rules against every transaction of a company in one pass
// @Tags        audit
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Company ID"
// @Success     200 {object} services.AuditRunSummary "Audit run summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Company not found"
// @Router      /companies/{id}/audit [post]
func (h *AuditHandler) AuditCompany(c *gin.Context) {
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

	summary, err := h.auditService.AuditCompany(userID, companyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "AUDIT_COMPANY", "company", companyID, c.ClientIP(),
		map[string]any{"transactions": summary.Transactions, "findings": summary.Findings})

	c.JSON(http.StatusOK, summary)
}

// GetCompanyFindings lists the stored findings of a company
// @Summary     List findings
// @Description Findings are ordered by severity, then by impact
// @Tags        audit
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Company ID"
// @Param       severity  query string false "critical, warning or info"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.AuditFinding] "Paginated findings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Company not found"
// @Router      /companies/{id}/findings [get]
func (h *AuditHandler) GetCompanyFindings(c *gin.Context) {
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

	var severity *taxengine.Severity
	if v := c.Query("severity"); v != "" {
		s := taxengine.Severity(v)
		switch s {
		case taxengine.SeverityCritical, taxengine.SeverityWarning, taxengine.SeverityInfo:
			severity = &s
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid severity, must be critical, warning, or info"))
			return
		}
	}

	result, err := h.auditService.GetCompanyFindings(userID, companyID, severity, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
