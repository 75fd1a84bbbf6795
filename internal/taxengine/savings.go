package taxengine

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// RecommendationType groups savings recommendations by the analyzer that
// produced them.
type RecommendationType string

const (
	RecommendationCapitalAllowance RecommendationType = "capital_allowance"
	RecommendationMissingExpense   RecommendationType = "missing_expense"
	RecommendationSalaryDividend   RecommendationType = "salary_dividend"
	RecommendationRelief           RecommendationType = "relief"
	RecommendationIncentive        RecommendationType = "incentive"
	RecommendationWarning          RecommendationType = "warning"
	RecommendationTiming           RecommendationType = "timing"
	RecommendationStructure        RecommendationType = "structure"
)

// SavingsRecommendation is one suggested action with its estimated saving.
type SavingsRecommendation struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	PotentialSaving float64            `json:"potential_saving"`
	Type            RecommendationType `json:"type"`
	Confidence      Confidence         `json:"confidence"`
	ActionLabel     string             `json:"action_label"`
}

// SavingsProfile is the business context the analyzers work from.
type SavingsProfile struct {
	EntityType   EntityType `json:"entity_type"`
	Sector       string     `json:"sector"`
	Turnover     float64    `json:"turnover"`
	Profit       float64    `json:"profit"`
	TotalAssets  float64    `json:"total_assets"`
	VentureCount int        `json:"venture_count"`
	OwnerNeeds   float64    `json:"owner_needs"`
}

const (
	SmallBusinessThreshold  = 25_000_000
	capitalAssetMinimum     = 500_000
	investmentAllowanceRate = 0.95
	dividendWHTRate         = 0.10
	salaryStep              = 500_000
	minimumWorthwhileSaving = 10_000
	structureSalaryCap      = 5_000_000
	holdingTurnoverMinimum  = 50_000_000
	holdingBenefitRate      = 0.10
	prepayProfitMinimum     = 5_000_000
	prepayShare             = 0.10
	yearEndMonth            = time.October
)

type assetClass struct {
	id         string
	name       string
	words      []string
	rate       float64
	investment bool
}

var assetClasses = []assetClass{
	{id: "computer", name: "Computer equipment", words: []string{"laptop", "laptops", "computer", "computers", "desktop", "server", "macbook", "printer", "ipad"}, rate: 0.25},
	{id: "furniture", name: "Furniture & fittings", words: []string{"furniture", "desk", "desks", "chair", "chairs", "cabinet", "shelves"}, rate: 0.20},
	{id: "vehicle", name: "Motor vehicles", words: []string{"vehicle", "car", "truck", "van", "bus", "motorcycle", "toyota"}, rate: 0.25},
	{id: "plant", name: "Plant & machinery", words: []string{"machine", "machinery", "generator", "plant", "equipment", "inverter"}, rate: 0.20, investment: true},
	{id: "building", name: "Buildings", words: []string{"building", "warehouse", "construction", "property"}, rate: 0.10},
}

func classifyAsset(tx Transaction) (assetClass, bool) {
	text := tx.Description + " " + tx.CategoryName + " " + tx.SubCategory
	for _, c := range assetClasses {
		if containsWord(text, c.words...) {
			return c, true
		}
	}
	return assetClass{}, false
}

// yearOneAllowance is annual depreciation plus the investment allowance where
// the class qualifies, never more than the cost itself.
func yearOneAllowance(c assetClass, cost float64) float64 {
	allowance := cost * c.rate
	if c.investment {
		allowance += cost * investmentAllowanceRate
	}
	return math.Min(allowance, cost)
}

// DetectCapitalAllowances finds large asset purchases booked as expenses and
// estimates the CIT saved by claiming capital allowances on them.
func DetectCapitalAllowances(txs []Transaction) []SavingsRecommendation {
	recs := []SavingsRecommendation{}
	var total float64
	for _, tx := range txs {
		if !tx.InBusinessScope() || !tx.IsExpense() || tx.AbsAmount() <= capitalAssetMinimum {
			continue
		}
		class, ok := classifyAsset(tx)
		if !ok {
			continue
		}
		cost := tx.AbsAmount()
		allowance := yearOneAllowance(class, cost)
		saving := allowance * CITRate
		total += saving

		desc := fmt.Sprintf("%s of ₦%s qualifies as %s. Year-1 capital allowance of ₦%s at %.0f%%",
			tx.Description, naira(cost), class.name, naira(allowance), class.rate*100)
		if class.investment {
			desc += " plus 95% investment allowance"
		}
		recs = append(recs, SavingsRecommendation{
			ID:              "capital_allowance_" + tx.ID,
			Title:           "Claim capital allowance: " + class.name,
			Description:     desc + ".",
			PotentialSaving: saving,
			Type:            RecommendationCapitalAllowance,
			Confidence:      ConfidenceHigh,
			ActionLabel:     "Move to asset register",
		})
	}
	if len(recs) > 1 {
		recs = append(recs, SavingsRecommendation{
			ID:              "capital_allowance_summary",
			Title:           fmt.Sprintf("%d assets eligible for capital allowances", len(recs)),
			Description:     fmt.Sprintf("Reclassifying these purchases could save ₦%s in CIT this year.", naira(total)),
			PotentialSaving: total,
			Type:            RecommendationCapitalAllowance,
			Confidence:      ConfidenceHigh,
			ActionLabel:     "Review asset schedule",
		})
	}
	return recs
}

type recurringExpense struct {
	name  string
	words []string
}

var recurringExpenses = []recurringExpense{
	{name: "Internet", words: []string{"internet", "broadband", "wifi", "mtn", "airtel", "starlink"}},
	{name: "Utilities", words: []string{"utilities", "utility", "electricity", "nepa", "phcn", "ikedc", "ekedc", "water"}},
	{name: "Rent", words: []string{"rent"}},
	{name: "Professional Fees", words: []string{"professional", "legal", "accounting", "consultancy", "audit"}},
}

// DetectMissingExpenses flags recurring business costs that were recorded in
// some but not all months of the current year, which usually means receipts
// were paid personally and never claimed.
func DetectMissingExpenses(txs []Transaction, now time.Time) []SavingsRecommendation {
	recs := []SavingsRecommendation{}
	year := now.Year()
	for _, r := range recurringExpenses {
		months := make(map[time.Month]bool)
		var spent float64
		for _, tx := range txs {
			if !tx.InBusinessScope() || !tx.IsExpense() || tx.Date.Year() != year {
				continue
			}
			if !containsWord(tx.Description+" "+tx.CategoryName+" "+tx.SubCategory, r.words...) {
				continue
			}
			months[tx.Date.Month()] = true
			spent += tx.AbsAmount()
		}
		n := len(months)
		if n == 0 || n >= 10 {
			continue
		}
		missing := int(now.Month()) - n
		if missing < 0 {
			missing = 0
		}
		avg := spent / float64(n)
		recs = append(recs, SavingsRecommendation{
			ID:    "missing_expense_" + slug(r.name),
			Title: "Possible unclaimed " + r.name + " expenses",
			Description: fmt.Sprintf("%s appears in only %d months this year. Claiming %d more months at an average of ₦%s could reduce taxable profit.",
				r.name, n, missing, naira(avg)),
			PotentialSaving: avg * float64(missing) * CITRate,
			Type:            RecommendationMissingExpense,
			Confidence:      ConfidenceMedium,
			ActionLabel:     "Upload missing receipts",
		})
	}
	return recs
}

// SalarySplit is the tax on one salary/dividend split.
type SalarySplit struct {
	Salary   float64 `json:"salary"`
	Dividend float64 `json:"dividend"`
	PAYE     float64 `json:"paye"`
	WHT      float64 `json:"wht"`
	CIT      float64 `json:"cit"`
	TotalTax float64 `json:"total_tax"`
}

func splitTax(profit, needs, salary float64) SalarySplit {
	s := SalarySplit{Salary: salary, Dividend: needs - salary}
	s.PAYE = CalculatePAYE(salary).TaxPayable
	s.WHT = s.Dividend * dividendWHTRate
	s.CIT = math.Max(0, profit-salary) * CITRate
	s.TotalTax = s.PAYE + s.WHT + s.CIT
	return s
}

// BestSalarySplit searches salary values from 0 to ownerNeeds in ₦500,000
// steps and returns the split with the least combined tax together with the
// all-salary and all-dividend extremes.
func BestSalarySplit(profit, ownerNeeds float64) (best, allSalary, allDividend SalarySplit) {
	profit, ownerNeeds = nonNegative(profit), nonNegative(ownerNeeds)
	allDividend = splitTax(profit, ownerNeeds, 0)
	allSalary = splitTax(profit, ownerNeeds, ownerNeeds)
	best = allDividend
	for salary := float64(salaryStep); salary < ownerNeeds; salary += salaryStep {
		if s := splitTax(profit, ownerNeeds, salary); s.TotalTax < best.TotalTax {
			best = s
		}
	}
	if allSalary.TotalTax < best.TotalTax {
		best = allSalary
	}
	return best, allSalary, allDividend
}

// OptimizeSalaryDividend recommends how an owner-director should draw
// ownerNeeds from the company. Nothing is recommended unless the best split
// beats one of the extremes by more than ₦10,000.
func OptimizeSalaryDividend(profit, ownerNeeds float64) []SavingsRecommendation {
	if profit <= 0 || ownerNeeds <= 0 {
		return []SavingsRecommendation{}
	}
	best, allSalary, allDividend := BestSalarySplit(profit, ownerNeeds)
	saving := math.Max(allSalary.TotalTax, allDividend.TotalTax) - best.TotalTax
	if saving <= minimumWorthwhileSaving {
		return []SavingsRecommendation{}
	}
	return []SavingsRecommendation{{
		ID:    "salary_dividend_split",
		Title: "Optimise salary and dividend mix",
		Description: fmt.Sprintf("Pay ₦%s as salary and ₦%s as dividend. Combined PAYE, dividend WHT and CIT falls to ₦%s.",
			naira(best.Salary), naira(best.Dividend), naira(best.TotalTax)),
		PotentialSaving: saving,
		Type:            RecommendationSalaryDividend,
		Confidence:      ConfidenceMedium,
		ActionLabel:     "Update payroll",
	}}
}

var excludedSBESectors = []string{"banking", "insurance", "aviation", "marine", "bureau de change"}

// IsSmallBusinessEligible reports whether turnover and assets are within the
// small-business exemption and the sector is not excluded.
func IsSmallBusinessEligible(turnover, assets float64, sector string) bool {
	return turnover <= SmallBusinessThreshold && assets <= SmallBusinessThreshold &&
		!containsAny(sector, excludedSBESectors)
}

type incentive struct {
	id         string
	title      string
	sectors    []string
	confidence Confidence
	share      float64
	action     string
}

var sectorIncentives = []incentive{
	{id: "pioneer_status", title: "Pioneer Status Incentive", sectors: []string{"manufacturing", "agriculture", "agro", "technology", "tech", "mining", "solid minerals"}, confidence: ConfidenceLow, share: 1, action: "Apply to NIPC"},
	{id: "export_expansion_grant", title: "Export Expansion Grant", sectors: []string{"export"}, confidence: ConfidenceMedium, share: 0.10, action: "Apply to NEPC"},
	{id: "investment_tax_credit", title: "Investment Tax Credit", sectors: []string{"manufacturing", "agriculture", "agro", "infrastructure"}, confidence: ConfidenceLow, share: 0.15, action: "Review qualifying capital spend"},
	{id: "gas_utilization", title: "Gas Utilization Incentive", sectors: []string{"oil", "gas", "energy", "petroleum"}, confidence: ConfidenceLow, share: 0.35, action: "Confirm project eligibility"},
}

// CheckReliefEligibility checks the small-business exemption and the
// sector incentives that need external approval.
func CheckReliefEligibility(p SavingsProfile) []SavingsRecommendation {
	recs := []SavingsRecommendation{}
	profit := nonNegative(p.Profit)
	turnover, assets := nonNegative(p.Turnover), nonNegative(p.TotalAssets)

	if p.EntityType != EntitySole && IsSmallBusinessEligible(turnover, assets, p.Sector) {
		recs = append(recs, smallBusinessExemption(profit))
		if near := SmallBusinessThreshold * 0.9; turnover >= near || assets >= near {
			recs = append(recs, SavingsRecommendation{
				ID:    "small_business_threshold_warning",
				Title: "Close to the small-business threshold",
				Description: fmt.Sprintf("Turnover ₦%s and assets ₦%s are within 10%% of ₦%s. Crossing it removes the 0%% CIT exemption.",
					naira(turnover), naira(assets), naira(SmallBusinessThreshold)),
				Type:        RecommendationWarning,
				Confidence:  ConfidenceHigh,
				ActionLabel: "Monitor turnover",
			})
		}
	}

	for _, inc := range sectorIncentives {
		if !containsAny(p.Sector, inc.sectors) {
			continue
		}
		recs = append(recs, SavingsRecommendation{
			ID:              inc.id,
			Title:           inc.title,
			Description:     fmt.Sprintf("Businesses in %s may qualify for the %s. Approval is discretionary.", p.Sector, inc.title),
			PotentialSaving: profit * CITRate * inc.share,
			Type:            RecommendationIncentive,
			Confidence:      inc.confidence,
			ActionLabel:     inc.action,
		})
	}
	return recs
}

func smallBusinessExemption(profit float64) SavingsRecommendation {
	return SavingsRecommendation{
		ID:              "small_business_exemption",
		Title:           "Small business exemption",
		Description:     fmt.Sprintf("Turnover and assets are at or below ₦%s, so CIT is charged at 0%%.", naira(SmallBusinessThreshold)),
		PotentialSaving: profit * CITRate,
		Type:            RecommendationRelief,
		Confidence:      ConfidenceHigh,
		ActionLabel:     "Confirm exemption on return",
	}
}

// SuggestTimingStrategies returns year-end planning ideas. Outside the last
// quarter it returns nothing.
func SuggestTimingStrategies(p SavingsProfile, txs []Transaction, now time.Time) []SavingsRecommendation {
	recs := []SavingsRecommendation{}
	if now.Month() < yearEndMonth {
		return recs
	}
	profit, turnover := nonNegative(p.Profit), nonNegative(p.Turnover)

	if profit > prepayProfitMinimum {
		prepay := profit * prepayShare
		recs = append(recs, SavingsRecommendation{
			ID:              "timing_prepay_expenses",
			Title:           "Prepay deductible expenses before year end",
			Description:     fmt.Sprintf("Bringing forward about ₦%s of planned expenses reduces this year's taxable profit.", naira(prepay)),
			PotentialSaving: prepay * CITRate,
			Type:            RecommendationTiming,
			Confidence:      ConfidenceMedium,
			ActionLabel:     "Plan prepayments",
		})
	}

	if math.Abs(turnover-SmallBusinessThreshold) <= SmallBusinessThreshold*0.10 {
		recs = append(recs, SavingsRecommendation{
			ID:              "timing_defer_income",
			Title:           "Defer income into next year",
			Description:     fmt.Sprintf("Turnover of ₦%s is within 10%% of the ₦%s small-business threshold. Invoicing late work in January may keep the 0%% rate.", naira(turnover), naira(SmallBusinessThreshold)),
			PotentialSaving: profit * CITRate,
			Type:            RecommendationTiming,
			Confidence:      ConfidenceLow,
			ActionLabel:     "Review invoice dates",
		})
	}

	var allowance float64
	for _, tx := range txs {
		if !tx.InBusinessScope() || !tx.IsExpense() || tx.Date.Year() != now.Year() || tx.Date.Month() < time.July {
			continue
		}
		if tx.AbsAmount() <= capitalAssetMinimum {
			continue
		}
		if class, ok := classifyAsset(tx); ok {
			allowance += yearOneAllowance(class, tx.AbsAmount())
		}
	}
	if allowance > 0 {
		recs = append(recs, SavingsRecommendation{
			ID:              "timing_accelerate_capital",
			Title:           "Lock in Year-1 allowances on H2 purchases",
			Description:     fmt.Sprintf("Assets bought since July carry ₦%s of Year-1 allowances. Put them into use before year end to claim them now.", naira(allowance)),
			PotentialSaving: allowance * CITRate,
			Type:            RecommendationTiming,
			Confidence:      ConfidenceMedium,
			ActionLabel:     "Confirm asset in-use dates",
		})
	}
	return recs
}

// AnalyzeBusinessStructure compares the current legal form against the
// alternatives a growing business would consider.
func AnalyzeBusinessStructure(p SavingsProfile) []SavingsRecommendation {
	recs := []SavingsRecommendation{}
	profit, turnover := nonNegative(p.Profit), nonNegative(p.Turnover)

	switch p.EntityType {
	case EntitySole:
		if profit == 0 {
			break
		}
		asSole := CalculatePIT(PitInput{GrossIncome: profit}).TaxPayable
		asLTD := incorporatedTax(turnover, profit)
		if saving := asSole - asLTD; saving > 0 {
			recs = append(recs, SavingsRecommendation{
				ID:    "structure_incorporate",
				Title: "Incorporate as a limited company",
				Description: fmt.Sprintf("PIT on ₦%s profit is ₦%s. As a company paying a ₦%s salary the combined tax would be ₦%s.",
					naira(profit), naira(asSole), naira(math.Min(structureSalaryCap, profit)), naira(asLTD)),
				PotentialSaving: saving,
				Type:            RecommendationStructure,
				Confidence:      ConfidenceMedium,
				ActionLabel:     "Register with CAC",
			})
		}
	case EntityLTD:
		if IsSmallBusinessEligible(turnover, nonNegative(p.TotalAssets), p.Sector) {
			recs = append(recs, smallBusinessExemption(profit))
		}
	case EntityPartnership:
		recs = append(recs, SavingsRecommendation{
			ID:          "structure_partnership_to_ltd",
			Title:       "Consider converting the partnership to a company",
			Description: "Partners are taxed personally on their full share of profit. A company limits liability and opens salary/dividend planning.",
			Type:        RecommendationStructure,
			Confidence:  ConfidenceLow,
			ActionLabel: "Discuss with adviser",
		})
	}

	if turnover > holdingTurnoverMinimum && p.VentureCount > 1 {
		recs = append(recs, SavingsRecommendation{
			ID:              "structure_holding_company",
			Title:           "Group ventures under a holding company",
			Description:     fmt.Sprintf("With %d ventures and ₦%s turnover, a holding structure can ring-fence losses and simplify dividends.", p.VentureCount, naira(turnover)),
			PotentialSaving: profit * CITRate * holdingBenefitRate,
			Type:            RecommendationStructure,
			Confidence:      ConfidenceLow,
			ActionLabel:     "Model group structure",
		})
	}
	return recs
}

func incorporatedTax(turnover, profit float64) float64 {
	salary := math.Min(structureSalaryCap, profit)
	paye := CalculatePAYE(salary).TaxPayable
	remaining := profit - salary
	cit := CalculateCIT(CitInput{Turnover: turnover, AssessableProfit: remaining}).TotalPayable
	dividend := math.Max(0, remaining-cit)
	return paye + cit + dividend*dividendWHTRate
}

// AnalyzeSavings runs every analyzer and returns the recommendations ordered
// by potential saving, largest first. Turnover and profit fall back to the
// transaction summary when the profile leaves them at zero.
func AnalyzeSavings(p SavingsProfile, txs []Transaction, now time.Time) []SavingsRecommendation {
	if p.Turnover == 0 && p.Profit == 0 {
		s := SummarizeTransactions(txs)
		p.Turnover, p.Profit = s.Turnover, s.AssessableProfit
	}

	var all []SavingsRecommendation
	all = append(all, DetectCapitalAllowances(txs)...)
	all = append(all, DetectMissingExpenses(txs, now)...)
	if p.EntityType != EntitySole {
		all = append(all, OptimizeSalaryDividend(p.Profit, p.OwnerNeeds)...)
	}
	all = append(all, CheckReliefEligibility(p)...)
	all = append(all, SuggestTimingStrategies(p, txs, now)...)
	all = append(all, AnalyzeBusinessStructure(p)...)

	seen := make(map[string]bool, len(all))
	out := make([]SavingsRecommendation, 0, len(all))
	for _, r := range all {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PotentialSaving > out[j].PotentialSaving
	})
	return out
}

func slug(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b = append(b, c+'a'-'A')
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b = append(b, c)
		default:
			if len(b) > 0 && b[len(b)-1] != '_' {
				b = append(b, '_')
			}
		}
	}
	return string(b)
}
