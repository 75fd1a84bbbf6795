package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "naijatax/internal/errors"
	"naijatax/internal/services"
	"naijatax/internal/taxengine"
)

// DocumentHandler handles evidence attached to transactions.
type DocumentHandler struct {
	documentService services.DocumentServicer
	activityService services.ActivityServicer
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService services.DocumentServicer, activityService services.ActivityServicer) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, activityService: activityService}
}

// AttachDocumentRequest describes a receipt, invoice or credit note. The OCR
// fields carry what a scanner read from the document, if anything.
type AttachDocumentRequest struct {
	DocumentType string                   `json:"document_type" binding:"required,max=50" example:"receipt"`
	Status       taxengine.DocumentStatus `json:"status" binding:"omitempty,document_status"`
	PreviewURL   string                   `json:"preview_url" binding:"omitempty,url,max=2048"`
	OCRDate      *string                  `json:"ocr_date"`
	OCRAmount    *decimal.Decimal         `json:"ocr_amount" swaggertype:"number"`
	OCRText      string                   `json:"ocr_text" binding:"max=10000"`
}

// UpdateDocumentStatusRequest changes a document's verification state.
type UpdateDocumentStatusRequest struct {
	Status taxengine.DocumentStatus `json:"status" binding:"required,document_status"`
}

// AttachDocument links evidence to a transaction
// @Summary     Attach a document
// @Description Attach a receipt, invoice or WHT credit note to a transaction. Status defaults to pending.
// @Tags        documents
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Transaction ID"
// @Param       request body AttachDocumentRequest true "Document"
// @Success     201 {object} models.ComplianceDocument "Document attached"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/documents [post]
func (h *DocumentHandler) AttachDocument(c *gin.Context) {
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

	var req AttachDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var ocrDate *time.Time
	if req.OCRDate != nil && *req.OCRDate != "" {
		parsed, parseErr := parseFlexibleTime(*req.OCRDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		ocrDate = &parsed
	}

	doc, err := h.documentService.AttachDocument(userID, transactionID, services.DocumentInput{
		DocumentType: req.DocumentType,
		Status:       req.Status,
		PreviewURL:   req.PreviewURL,
		OCRDate:      ocrDate,
		OCRAmount:    req.OCRAmount,
		OCRText:      req.OCRText,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "ATTACH_DOCUMENT", "document", doc.ID, c.ClientIP(),
		map[string]any{"transaction_id": transactionID, "document_type": doc.DocumentType})

	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

// GetTransactionDocuments lists the evidence on a transaction
// @Summary     List documents
// @Tags        documents
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {array}  models.ComplianceDocument "Documents"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/documents [get]
func (h *DocumentHandler) GetTransactionDocuments(c *gin.Context) {
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

	docs, err := h.documentService.GetTransactionDocuments(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// UpdateDocumentStatus verifies or rejects a document
// @Summary     Update document status
// @Tags        documents
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                      true "Document ID"
// @Param       request body UpdateDocumentStatusRequest true "New status"
// @Success     200 {object} models.ComplianceDocument "Updated document"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Document not found"
// @Router      /documents/{id} [patch]
func (h *DocumentHandler) UpdateDocumentStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	documentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateDocumentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	doc, err := h.documentService.UpdateDocumentStatus(userID, documentID, req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "UPDATE_DOCUMENT", "document", documentID, c.ClientIP(),
		map[string]any{"status": req.Status})

	c.JSON(http.StatusOK, gin.H{"document": doc})
}

// DeleteDocument removes a document
// @Summary     Delete a document
// @Tags        documents
// @Security    BearerAuth
// @Param       id path string true "Document ID"
// @Success     204 "Document deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Document not found"
// @Router      /documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	documentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.documentService.DeleteDocument(userID, documentID); err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "DELETE_DOCUMENT", "document", documentID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
