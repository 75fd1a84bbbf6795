package taxengine

import "fmt"

// EntityType is the legal form of a business.
type EntityType string

const (
	EntityLTD         EntityType = "LTD"
	EntitySole        EntityType = "SOLE"
	EntityPartnership EntityType = "PARTNERSHIP"
)

// RiskLevel classifies an audit risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

const cashPaymentThreshold = 500_000

// AuditInputs is a business-profile snapshot used by the risk scorer.
type AuditInputs struct {
	EntityType           EntityType `json:"entity_type"`
	Turnover             float64    `json:"turnover"`
	TotalExpenses        float64    `json:"total_expenses"`
	Profit               float64    `json:"profit"`
	PreviousYearExpenses float64    `json:"previous_year_expenses"`
	SelectedItems        []string   `json:"selected_items"`

	MissingReceipts       bool    `json:"missing_receipts"`
	CashPayments          float64 `json:"cash_payments"`
	NoWHTDeducted         bool    `json:"no_wht_deducted"`
	NoSeparateBankAccount bool    `json:"no_separate_bank_account"`
	RepeatedLosses        bool    `json:"repeated_losses"`

	TransportExpenses    float64 `json:"transport_expenses"`
	MarketingExpenses    float64 `json:"marketing_expenses"`
	DirectorRemuneration float64 `json:"director_remuneration"`
	PhoneInternet        float64 `json:"phone_internet_expenses"`
}

// AuditRiskResult is the scored risk profile.
type AuditRiskResult struct {
	Score       int       `json:"score"`
	Level       RiskLevel `json:"level"`
	Warnings    []string  `json:"warnings"`
	RiskDrivers []string  `json:"risk_drivers"`
	Suggestions []string  `json:"suggestions"`
}

type riskThresholds struct {
	medium int
	high   int
}

var levelThresholds = map[EntityType]riskThresholds{
	EntityLTD:  {medium: 21, high: 46},
	EntitySole: {medium: 16, high: 36},
}

// riskScorer accumulates score and messages in evaluation order.
type riskScorer struct {
	res AuditRiskResult
}

func (r *riskScorer) penalise(points int, driver, suggestion string) {
	r.res.Score += points
	r.res.RiskDrivers = append(r.res.RiskDrivers, fmt.Sprintf("%s (+%d)", driver, points))
	if suggestion != "" {
		r.res.Suggestions = append(r.res.Suggestions, suggestion)
	}
}

func (r *riskScorer) warn(msg string) {
	r.res.Warnings = append(r.res.Warnings, msg)
}

// CalculateAuditRisk scores a business profile against a checklist. Output
// lists are ordered by checklist category order, then by the fixed rule
// order, so identical inputs always give identical results.
func CalculateAuditRisk(in AuditInputs, checklist []ChecklistCategory) AuditRiskResult {
	r := &riskScorer{res: AuditRiskResult{
		Warnings:    []string{},
		RiskDrivers: []string{},
		Suggestions: []string{},
	}}

	selected := make(map[string]bool, len(in.SelectedItems))
	for _, id := range in.SelectedItems {
		selected[id] = true
	}

	for _, cat := range checklist {
		var hit []ChecklistItem
		for _, item := range cat.Items {
			if selected[item.ID] {
				hit = append(hit, item)
			}
		}
		if len(hit) == 0 {
			continue
		}
		r.penalise(cat.RiskWeight, cat.Name, "")
		for _, item := range hit {
			if item.IsDisallowed {
				r.res.Score += 10
				r.res.RiskDrivers = append(r.res.RiskDrivers, fmt.Sprintf("Disallowed item claimed: %s (+10)", item.Label))
				r.warn(fmt.Sprintf("DISALLOWED: %s (%s)", item.Label, item.Reason))
			}
			if item.IsCapitalAsset {
				r.warn(fmt.Sprintf("CAPITAL ITEM: %s (claim capital allowances instead)", item.Label))
				r.res.Suggestions = append(r.res.Suggestions,
					fmt.Sprintf("Reclassify %s to the capital allowance schedule", item.Label))
			}
		}
	}

	turnover := nonNegative(in.Turnover)
	switch in.EntityType {
	case EntitySole:
		scoreSoleFlags(r, in, turnover)
	default:
		scoreLTDFlags(r, in, turnover)
	}
	scoreCommonFlags(r, in)

	r.res.Level = classifyRisk(in.EntityType, r.res.Score)
	return r.res
}

func scoreLTDFlags(r *riskScorer, in AuditInputs, turnover float64) {
	if in.MissingReceipts {
		r.penalise(10, "Missing receipts for recorded expenses", "Attach receipts or invoices to every expense above ₦10,000")
	}
	if in.CashPayments > cashPaymentThreshold {
		r.penalise(8, "Cash payments above ₦500,000", "Route supplier payments through the bank to create an audit trail")
	}
	if in.NoWHTDeducted {
		r.penalise(10, "No withholding tax deducted on qualifying payments", "Deduct and remit WHT on contracts, rent and professional fees")
	}
	if ratioAbove(in.TransportExpenses, turnover, 0.20) {
		r.penalise(8, "Transport costs above 20% of turnover", "Keep trip logs supporting transport claims")
	}
	if ratioAbove(in.MarketingExpenses, turnover, 0.25) {
		r.penalise(8, "Marketing costs above 25% of turnover", "Retain campaign contracts and invoices for marketing spend")
	}
	if ratioAbove(in.DirectorRemuneration, nonNegative(in.Profit), 0.15) {
		r.penalise(10, "Director remuneration above 15% of profit", "Document board approval for director pay and run it through PAYE")
	}
}

func scoreSoleFlags(r *riskScorer, in AuditInputs, turnover float64) {
	if in.NoSeparateBankAccount {
		r.penalise(10, "No separate business bank account", "Open a dedicated business account to separate personal spending")
	}
	if in.MissingReceipts {
		r.penalise(8, "Missing receipts for recorded expenses", "Attach receipts or invoices to every expense above ₦10,000")
	}
	if ratioAbove(in.TotalExpenses, turnover, 0.70) {
		r.penalise(10, "Total expenses above 70% of turnover", "Review expenses for personal items before filing")
	}
	if ratioAbove(in.TransportExpenses, turnover, 0.25) {
		r.penalise(8, "Transport costs above 25% of turnover", "Keep trip logs supporting transport claims")
	}
	if ratioAbove(in.PhoneInternet, turnover, 0.15) {
		r.penalise(6, "Phone and internet above 15% of turnover", "Apportion phone and data costs between business and personal use")
	}
}

func scoreCommonFlags(r *riskScorer, in AuditInputs) {
	sole := in.EntityType == EntitySole
	if in.RepeatedLosses {
		r.penalise(pick(sole, 8, 10), "Losses reported in multiple years", "Prepare a reconciliation explaining recurring losses")
	}
	if in.PreviousYearExpenses > 0 && (in.TotalExpenses-in.PreviousYearExpenses)/in.PreviousYearExpenses > 0.40 {
		r.penalise(pick(sole, 6, 8), "Expenses rose more than 40% year on year", "Keep evidence explaining the jump in expenses")
	}
}

func classifyRisk(entity EntityType, score int) RiskLevel {
	t, ok := levelThresholds[entity]
	if !ok {
		t = levelThresholds[EntityLTD]
	}
	switch {
	case score >= t.high:
		return RiskHigh
	case score >= t.medium:
		return RiskMedium
	default:
		return RiskLow
	}
}

func ratioAbove(part, whole, limit float64) bool {
	if whole <= 0 {
		return false
	}
	return part/whole > limit
}

func pick(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}
