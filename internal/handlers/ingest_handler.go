package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "naijatax/internal/errors"
	"naijatax/internal/logger"
	"naijatax/internal/services"
)

// IngestHandler accepts statement lines from the machine-to-machine importer.
// Callers are authenticated by API key, so there is no user to scope by.
type IngestHandler struct {
	transactionService services.TransactionServicer
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(transactionService services.TransactionServicer) *IngestHandler {
	return &IngestHandler{transactionService: transactionService}
}

// ImportTransactions stores a batch from the statement importer
// @Summary     Import statement lines
// @Description Machine-to-machine import. Same batch rules as the bulk endpoint; rows with a known reference are skipped.
// @Tags        ingest
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id      path string                 true "Company ID"
// @Param       request body BulkTransactionRequest true "Transactions"
// @Success     201 {object} BulkTransactionResponse "Batch stored"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Company not found"
// @Failure     413 {object} ErrorResponse "Batch too large"
// @Router      /ingest/companies/{id}/transactions [post]
func (h *IngestHandler) ImportTransactions(c *gin.Context) {
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

	log := logger.ForCompany(companyID)
	created, err := h.transactionService.ImportTransactions(companyID, inputs)
	if err != nil {
		log.Warnw("statement import rejected", "rows", len(inputs), "error", err)
		respondWithError(c, err)
		return
	}

	log.Infow("statement imported", "rows", len(inputs), "created", len(created), "client_ip", c.ClientIP())
	c.JSON(http.StatusCreated, newBulkResponse(len(inputs), created))
}
