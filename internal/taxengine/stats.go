package taxengine

import "math"

// ComplianceStatus summarises an overall compliance score.
type ComplianceStatus string

const (
	StatusCompliant    ComplianceStatus = "compliant"
	StatusReviewNeeded ComplianceStatus = "review_needed"
	StatusNonCompliant ComplianceStatus = "non_compliant"
)

// ComplianceStats is the rollup of per-transaction audit outcomes.
type ComplianceStats struct {
	DocScore          float64          `json:"doc_score"`
	AllowabilityScore float64          `json:"allowability_score"`
	VATScore          float64          `json:"vat_score"`
	WHTScore          float64          `json:"wht_score"`
	OverallScore      int              `json:"overall_score"`
	Status            ComplianceStatus `json:"status"`

	TotalTransactions int `json:"total_transactions"`
	Passed            int `json:"passed"`
	Review            int `json:"review"`
	Failed            int `json:"failed"`
	CriticalIssues    int `json:"critical_issues"`
	WarningIssues     int `json:"warning_issues"`
	InfoIssues        int `json:"info_issues"`
}

// CalculateComplianceStats rolls audit outcomes into category scores. Each
// score is a percentage and defaults to 100 when nothing applies.
func CalculateComplianceStats(txs []Transaction, docs []ComplianceDocument, issues []AuditFinding) ComplianceStats {
	var (
		docNeed, docHave       int
		allowTotal, allowAllow float64
		vatNeed, vatOK         int
		whtNeed, whtOK         int
		stats                  ComplianceStats
	)

	for _, tx := range txs {
		if !tx.InBusinessScope() {
			continue
		}
		stats.TotalTransactions++
		switch tx.AuditStatus {
		case AuditStatusPass:
			stats.Passed++
		case AuditStatusReview:
			stats.Review++
		case AuditStatusFail:
			stats.Failed++
		}

		if tx.IsExpense() && tx.AbsAmount() > receiptThreshold {
			docNeed++
			if hasVerifiedDocument(tx.ID, docs) {
				docHave++
			}
		}
		allowTotal += tx.AbsAmount()
		allowAllow += tx.Allowable()

		if containsWord(tx.Description, "vat") {
			vatNeed++
			if tx.Tag() == TaxTagVAT || tx.AuditStatus == AuditStatusPass {
				vatOK++
			}
		}

		if isProfessionalOrContract(tx) {
			whtNeed++
			if tx.AuditStatus != AuditStatusFail {
				whtOK++
			}
		}
	}

	for _, is := range issues {
		switch is.Severity {
		case SeverityCritical:
			stats.CriticalIssues++
		case SeverityWarning:
			stats.WarningIssues++
		case SeverityInfo:
			stats.InfoIssues++
		}
	}

	stats.DocScore = percentage(float64(docHave), float64(docNeed))
	stats.AllowabilityScore = percentage(allowAllow, allowTotal)
	stats.VATScore = percentage(float64(vatOK), float64(vatNeed))
	stats.WHTScore = percentage(float64(whtOK), float64(whtNeed))

	stats.OverallScore = int(math.Round(stats.DocScore*0.4 + stats.AllowabilityScore*0.4 +
		stats.VATScore*0.1 + stats.WHTScore*0.1))
	stats.Status = complianceStatus(stats.OverallScore)
	return stats
}

func complianceStatus(score int) ComplianceStatus {
	switch {
	case score >= 85:
		return StatusCompliant
	case score >= 70:
		return StatusReviewNeeded
	default:
		return StatusNonCompliant
	}
}

func percentage(part, whole float64) float64 {
	if whole <= 0 {
		return 100
	}
	return part / whole * 100
}
