package taxengine

import "math"

// IssueCategory groups compliance issues for exposure reporting.
type IssueCategory string

const (
	IssueDocumentation IssueCategory = "Documentation"
	IssueAllowability  IssueCategory = "Allowability"
	IssueVAT           IssueCategory = "VAT"
	IssueWHT           IssueCategory = "WHT"
)

// EvidenceStatus describes how much evidence backs the affected transactions.
type EvidenceStatus string

const (
	EvidenceComplete EvidenceStatus = "complete"
	EvidencePartial  EvidenceStatus = "partial"
	EvidenceMissing  EvidenceStatus = "missing"
)

// Confidence is how sure an estimate is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// SeverityLevel grades the total tax at risk.
type SeverityLevel string

const (
	SeverityLevelLow      SeverityLevel = "low"
	SeverityLevelMedium   SeverityLevel = "medium"
	SeverityLevelHigh     SeverityLevel = "high"
	SeverityLevelCritical SeverityLevel = "critical"
)

// RiskBreakdown is the exposure for one issue category.
type RiskBreakdown struct {
	Category         IssueCategory  `json:"category"`
	IssueCount       int            `json:"issue_count"`
	DisallowedAmount float64        `json:"disallowed_amount"`
	TaxRate          float64        `json:"tax_rate"`
	TaxAtRisk        float64        `json:"tax_at_risk"`
	EvidenceStatus   EvidenceStatus `json:"evidence_status"`
	ConfidenceLevel  Confidence     `json:"confidence_level"`
	TransactionIDs   []string       `json:"transaction_ids"`
}

// ProgressMetrics tracks how many issues have been resolved.
type ProgressMetrics struct {
	TotalIssues        int     `json:"total_issues"`
	ResolvedIssues     int     `json:"resolved_issues"`
	PercentageResolved float64 `json:"percentage_resolved"`
}

// TaxAtRiskResult is the aggregate exposure across a transaction history.
type TaxAtRiskResult struct {
	TotalAtRisk           float64         `json:"total_at_risk"`
	Breakdown             []RiskBreakdown `json:"breakdown"`
	CurrentTaxLiability   float64         `json:"current_tax_liability"`
	PotentialTaxLiability float64         `json:"potential_tax_liability"`
	ProgressMetrics       ProgressMetrics `json:"progress_metrics"`
	SeverityLevel         SeverityLevel   `json:"severity_level"`
	EstimatedPenalties    float64         `json:"estimated_penalties"`
}

const whtPenaltyRate = 0.10

type issueBucket struct {
	category IssueCategory
	rate     float64
	match    func(tx Transaction, hasEvidence bool) bool
	exposure func(tx Transaction) float64
}

var issueBuckets = []issueBucket{
	{
		category: IssueDocumentation,
		rate:     CITRate,
		match: func(tx Transaction, _ bool) bool {
			return tx.AuditStatus == AuditStatusFail || tx.AuditStatus == AuditStatusReview ||
				tx.AllowabilityStatus == AllowabilityPending
		},
		exposure: Transaction.AbsAmount,
	},
	{
		category: IssueAllowability,
		rate:     CITRate,
		match: func(tx Transaction, _ bool) bool {
			return tx.AllowabilityStatus == AllowabilityNonAllowable || tx.AllowabilityStatus == AllowabilityPartial
		},
		exposure: func(tx Transaction) float64 { return tx.AbsAmount() - tx.Allowable() },
	},
	{
		category: IssueVAT,
		rate:     VATRate,
		match: func(tx Transaction, ev bool) bool {
			return tx.Tag() == TaxTagVAT && (tx.AuditStatus == AuditStatusFail || !ev)
		},
		exposure: Transaction.AbsAmount,
	},
	{
		category: IssueWHT,
		rate:     WHTRate(WHTDividend),
		match: func(tx Transaction, ev bool) bool {
			return tx.Tag() == TaxTagWHT && (tx.AuditStatus == AuditStatusFail || !ev)
		},
		exposure: Transaction.AbsAmount,
	},
}

// CalculateTaxAtRisk estimates the additional tax that unresolved compliance
// issues could attract. Personal and excluded transactions are ignored.
func CalculateTaxAtRisk(txs []Transaction, docs []ComplianceDocument) TaxAtRiskResult {
	res := TaxAtRiskResult{Breakdown: []RiskBreakdown{}}

	var income, expenses float64
	resolved := 0
	affected := make(map[string]bool)

	type acc struct {
		row      RiskBreakdown
		withEv   int
		affected int
	}
	accs := make([]acc, len(issueBuckets))
	for i, b := range issueBuckets {
		accs[i].row = RiskBreakdown{Category: b.category, TaxRate: b.rate, TransactionIDs: []string{}}
	}

	for _, tx := range txs {
		if !tx.InBusinessScope() {
			continue
		}
		if tx.IsIncome() {
			income += tx.Amount
		} else {
			expenses += tx.AbsAmount()
		}
		if tx.AuditStatus == AuditStatusPass {
			resolved++
		}

		ev := HasEvidence(tx, docs)
		for i, b := range issueBuckets {
			if !b.match(tx, ev) {
				continue
			}
			a := &accs[i]
			a.affected++
			if ev {
				a.withEv++
			}
			a.row.IssueCount++
			a.row.DisallowedAmount += nonNegative(b.exposure(tx))
			a.row.TransactionIDs = append(a.row.TransactionIDs, tx.ID)
			affected[tx.ID] = true
		}
	}

	for _, a := range accs {
		if a.row.IssueCount == 0 {
			continue
		}
		row := a.row
		row.TaxAtRisk = row.DisallowedAmount * row.TaxRate
		row.EvidenceStatus = evidenceStatus(a.withEv, a.affected)
		row.ConfidenceLevel = confidenceFor(row.EvidenceStatus)
		res.Breakdown = append(res.Breakdown, row)
		res.TotalAtRisk += row.TaxAtRisk
		if row.Category == IssueWHT {
			res.EstimatedPenalties = row.TaxAtRisk * whtPenaltyRate
		}
	}

	res.CurrentTaxLiability = math.Max(0, (income-expenses)*CITRate)
	res.PotentialTaxLiability = res.CurrentTaxLiability + res.TotalAtRisk

	total := len(affected)
	res.ProgressMetrics = ProgressMetrics{
		TotalIssues:        total,
		ResolvedIssues:     resolved,
		PercentageResolved: 100,
	}
	if resolved+total > 0 {
		res.ProgressMetrics.PercentageResolved = float64(resolved) / float64(resolved+total) * 100
	}
	res.SeverityLevel = severityFor(res.TotalAtRisk)
	return res
}

func evidenceStatus(withEvidence, affected int) EvidenceStatus {
	switch {
	case affected > 0 && withEvidence == affected:
		return EvidenceComplete
	case withEvidence > 0:
		return EvidencePartial
	default:
		return EvidenceMissing
	}
}

// confidenceFor grades how likely the exposure is to be assessed: the less
// evidence, the more certain the tax is at risk.
func confidenceFor(ev EvidenceStatus) Confidence {
	switch ev {
	case EvidenceMissing:
		return ConfidenceHigh
	case EvidencePartial:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func severityFor(total float64) SeverityLevel {
	switch {
	case total < 100_000:
		return SeverityLevelLow
	case total < 500_000:
		return SeverityLevelMedium
	case total < 1_000_000:
		return SeverityLevelHigh
	default:
		return SeverityLevelCritical
	}
}
