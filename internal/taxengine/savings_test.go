package taxengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recIDs(recs []SavingsRecommendation) []string {
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	return ids
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDetectCapitalAllowances(t *testing.T) {
	txs := []Transaction{
		{ID: "lap", Amount: -800_000, Description: "Dell laptop"},
		{ID: "gen", Amount: -2_000_000, Description: "Perkins generator"},
		{ID: "chr", Amount: -300_000, Description: "Office chairs"},
		{ID: "car", Amount: -9_000_000, Description: "Toyota car", TaxTag: TaxTagPersonal},
		{ID: "inc", Amount: 4_000_000, Description: "Laptop resale"},
	}

	recs := DetectCapitalAllowances(txs)

	require.Equal(t, []string{"capital_allowance_lap", "capital_allowance_gen", "capital_allowance_summary"}, recIDs(recs))
	assert.InDelta(t, 60_000, recs[0].PotentialSaving, 1e-6)
	assert.InDelta(t, 600_000, recs[1].PotentialSaving, 1e-6, "year-one allowance is capped at cost")
	assert.Contains(t, recs[1].Description, "95% investment allowance")
	assert.InDelta(t, 660_000, recs[2].PotentialSaving, 1e-6)
	for _, r := range recs {
		assert.Equal(t, RecommendationCapitalAllowance, r.Type)
	}
}

func TestDetectCapitalAllowances_SingleAssetHasNoSummary(t *testing.T) {
	recs := DetectCapitalAllowances([]Transaction{{ID: "v", Amount: -6_000_000, Description: "Toyota Hiace van"}})
	require.Len(t, recs, 1)
	assert.InDelta(t, 6_000_000*0.25*CITRate, recs[0].PotentialSaving, 1e-6)
}

func TestDetectMissingExpenses(t *testing.T) {
	now := day(2025, time.October, 15)
	var txs []Transaction
	for m := time.January; m <= time.March; m++ {
		txs = append(txs, Transaction{ID: "net" + m.String(), Date: day(2025, m, 5), Amount: -30_000, Description: "MTN internet subscription"})
	}
	for m := time.January; m <= time.October; m++ {
		txs = append(txs, Transaction{ID: "rent" + m.String(), Date: day(2025, m, 1), Amount: -150_000, Description: "Office rent"})
	}
	txs = append(txs, Transaction{ID: "old", Date: day(2024, time.June, 1), Amount: -30_000, Description: "Starlink internet"})

	recs := DetectMissingExpenses(txs, now)

	require.Equal(t, []string{"missing_expense_internet"}, recIDs(recs))
	assert.InDelta(t, 7*30_000*CITRate, recs[0].PotentialSaving, 1e-6)
	assert.Equal(t, ConfidenceMedium, recs[0].Confidence)
}

func TestOptimizeSalaryDividend(t *testing.T) {
	t.Run("recommends the cheapest split", func(t *testing.T) {
		recs := OptimizeSalaryDividend(20_000_000, 6_000_000)
		require.Len(t, recs, 1)
		// All dividend: 600,000 WHT + 6,000,000 CIT. All salary: 896,000 PAYE + 4,200,000 CIT.
		assert.InDelta(t, 1_504_000, recs[0].PotentialSaving, 1e-6)
		assert.Equal(t, RecommendationSalaryDividend, recs[0].Type)

		best, allSalary, allDividend := BestSalarySplit(20_000_000, 6_000_000)
		assert.LessOrEqual(t, best.TotalTax, allSalary.TotalTax)
		assert.LessOrEqual(t, best.TotalTax, allDividend.TotalTax)
		assert.InDelta(t, 6_000_000, best.Salary, 1e-6)
	})

	t.Run("small difference is not worth recommending", func(t *testing.T) {
		assert.Empty(t, OptimizeSalaryDividend(1_000_000, 20_000))
	})

	t.Run("no profit", func(t *testing.T) {
		assert.Empty(t, OptimizeSalaryDividend(0, 5_000_000))
		assert.Empty(t, OptimizeSalaryDividend(5_000_000, 0))
	})
}

func TestCheckReliefEligibility(t *testing.T) {
	t.Run("small business exemption", func(t *testing.T) {
		recs := CheckReliefEligibility(SavingsProfile{EntityType: EntityLTD, Sector: "Retail", Turnover: 20_000_000, TotalAssets: 10_000_000, Profit: 4_000_000})
		require.Equal(t, []string{"small_business_exemption"}, recIDs(recs))
		assert.InDelta(t, 1_200_000, recs[0].PotentialSaving, 1e-6)
	})

	t.Run("warns near the threshold", func(t *testing.T) {
		recs := CheckReliefEligibility(SavingsProfile{EntityType: EntityLTD, Sector: "Retail", Turnover: 24_000_000, Profit: 4_000_000})
		assert.Equal(t, []string{"small_business_exemption", "small_business_threshold_warning"}, recIDs(recs))
		assert.Zero(t, recs[1].PotentialSaving)
	})

	t.Run("excluded sector", func(t *testing.T) {
		recs := CheckReliefEligibility(SavingsProfile{EntityType: EntityLTD, Sector: "Bureau de Change", Turnover: 5_000_000})
		assert.Empty(t, recs)
	})

	t.Run("assets above threshold", func(t *testing.T) {
		recs := CheckReliefEligibility(SavingsProfile{EntityType: EntityLTD, Turnover: 5_000_000, TotalAssets: 30_000_000})
		assert.Empty(t, recs)
	})

	t.Run("sole traders pay PIT", func(t *testing.T) {
		recs := CheckReliefEligibility(SavingsProfile{EntityType: EntitySole, Turnover: 5_000_000, Profit: 1_000_000})
		assert.Empty(t, recs)
	})

	t.Run("sector incentives are never high confidence", func(t *testing.T) {
		recs := CheckReliefEligibility(SavingsProfile{EntityType: EntityLTD, Sector: "Agriculture and export", Turnover: 900_000_000, Profit: 50_000_000})
		assert.Equal(t, []string{"pioneer_status", "export_expansion_grant", "investment_tax_credit"}, recIDs(recs))
		for _, r := range recs {
			assert.Contains(t, []Confidence{ConfidenceLow, ConfidenceMedium}, r.Confidence)
			assert.Equal(t, RecommendationIncentive, r.Type)
		}
	})
}

func TestSuggestTimingStrategies(t *testing.T) {
	p := SavingsProfile{EntityType: EntityLTD, Turnover: 24_000_000, Profit: 8_000_000}
	txs := []Transaction{
		{ID: "lap", Date: day(2025, time.August, 10), Amount: -900_000, Description: "MacBook Pro"},
		{ID: "old", Date: day(2025, time.March, 10), Amount: -900_000, Description: "MacBook Air"},
	}

	t.Run("nothing before October", func(t *testing.T) {
		assert.Empty(t, SuggestTimingStrategies(p, txs, day(2025, time.September, 30)))
	})

	t.Run("year end suggestions", func(t *testing.T) {
		recs := SuggestTimingStrategies(p, txs, day(2025, time.November, 1))
		require.Equal(t, []string{"timing_prepay_expenses", "timing_defer_income", "timing_accelerate_capital"}, recIDs(recs))
		assert.InDelta(t, 240_000, recs[0].PotentialSaving, 1e-6)
		assert.InDelta(t, 2_400_000, recs[1].PotentialSaving, 1e-6)
		assert.InDelta(t, 67_500, recs[2].PotentialSaving, 1e-6)
	})

	t.Run("far from threshold", func(t *testing.T) {
		far := p
		far.Turnover = 80_000_000
		recs := SuggestTimingStrategies(far, nil, day(2025, time.December, 1))
		assert.Equal(t, []string{"timing_prepay_expenses"}, recIDs(recs))
	})
}

func TestAnalyzeBusinessStructure(t *testing.T) {
	t.Run("sole trader incorporation", func(t *testing.T) {
		recs := AnalyzeBusinessStructure(SavingsProfile{EntityType: EntitySole, Turnover: 30_000_000, Profit: 20_000_000})
		require.Equal(t, []string{"structure_incorporate"}, recIDs(recs))
		// Banded PIT 3,630,000 against PAYE 704,000 + CIT 0 + dividend WHT 1,500,000.
		assert.InDelta(t, 3_630_000, CalculatePIT(PitInput{GrossIncome: 20_000_000}).TaxPayable, 1e-6)
		assert.Contains(t, recs[0].Description, "₦3,630,000")
		assert.InDelta(t, 1_426_000, recs[0].PotentialSaving, 1e-6)
	})

	t.Run("partnership is structural only", func(t *testing.T) {
		recs := AnalyzeBusinessStructure(SavingsProfile{EntityType: EntityPartnership, Turnover: 30_000_000, Profit: 5_000_000})
		require.Equal(t, []string{"structure_partnership_to_ltd"}, recIDs(recs))
		assert.Zero(t, recs[0].PotentialSaving)
	})

	t.Run("holding company for several ventures", func(t *testing.T) {
		recs := AnalyzeBusinessStructure(SavingsProfile{EntityType: EntityLTD, Turnover: 60_000_000, Profit: 10_000_000, TotalAssets: 100_000_000, VentureCount: 2})
		require.Equal(t, []string{"structure_holding_company"}, recIDs(recs))
		assert.InDelta(t, 300_000, recs[0].PotentialSaving, 1e-6)
	})
}

func TestAnalyzeSavings(t *testing.T) {
	now := day(2025, time.January, 20)

	t.Run("duplicates are merged", func(t *testing.T) {
		recs := AnalyzeSavings(SavingsProfile{EntityType: EntityLTD, Sector: "Retail", Turnover: 20_000_000, Profit: 4_000_000, TotalAssets: 5_000_000}, nil, now)
		assert.Equal(t, []string{"small_business_exemption"}, recIDs(recs))
	})

	t.Run("falls back to transaction totals", func(t *testing.T) {
		txs := []Transaction{
			{ID: "s", Date: now, Amount: 10_000_000, Description: "Sales"},
			{ID: "x", Date: now, Amount: -2_000_000, Description: "Stock purchase"},
		}
		recs := AnalyzeSavings(SavingsProfile{EntityType: EntityLTD}, txs, now)
		require.NotEmpty(t, recs)
		assert.Equal(t, "small_business_exemption", recs[0].ID)
		assert.InDelta(t, 2_400_000, recs[0].PotentialSaving, 1e-6)
	})

	t.Run("sorted by saving", func(t *testing.T) {
		txs := []Transaction{
			{ID: "lap", Date: now, Amount: -800_000, Description: "Dell laptop"},
			{ID: "gen", Date: now, Amount: -2_000_000, Description: "Perkins generator"},
		}
		recs := AnalyzeSavings(SavingsProfile{EntityType: EntityLTD, Turnover: 90_000_000, Profit: 1, TotalAssets: 90_000_000}, txs, now)
		assert.Equal(t, []string{"capital_allowance_summary", "capital_allowance_gen", "capital_allowance_lap"}, recIDs(recs))
	})
}
