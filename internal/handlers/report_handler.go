package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"naijatax/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves downloadable reports.
type ReportHandler struct {
	taxService      services.TaxServicer
	activityService services.ActivityServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(taxService services.TaxServicer, activityService services.ActivityServicer) *ReportHandler {
	return &ReportHandler{taxService: taxService, activityService: activityService}
}

// GetComplianceWorkbook streams the compliance workbook
// @Summary     Download compliance workbook
// @Description Excel workbook with the tax summary, audit findings and tax-at-risk breakdown
// @Tags        reports
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       id   path  string true  "Company ID"
// @Param       year query int    false "Tax year; all years when omitted"
// @Success     200 {file} file "Workbook"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Company not found"
// @Failure     500 {object} ErrorResponse "Report failed"
// @Router      /companies/{id}/reports/compliance.xlsx [get]
func (h *ReportHandler) GetComplianceWorkbook(c *gin.Context) {
	userID, companyID, year, ok := companyYear(c)
	if !ok {
		return
	}

	// Buffered so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.taxService.WriteComplianceWorkbook(userID, companyID, year, &buf); err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "EXPORT_REPORT", "company", companyID, c.ClientIP(),
		map[string]any{"report": "compliance", "year": year})

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, workbookFilename(year)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func workbookFilename(year int) string {
	if year == 0 {
		return "compliance-all-years.xlsx"
	}
	return fmt.Sprintf("compliance-%d.xlsx", year)
}
