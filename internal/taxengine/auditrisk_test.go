package taxengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateAuditRisk(t *testing.T) {
	t.Run("checklist weights and disallowed items", func(t *testing.T) {
		in := AuditInputs{
			EntityType:      EntityLTD,
			SelectedItems:   []string{"school_fees", "laptops_expensed"},
			MissingReceipts: true,
		}

		res := CalculateAuditRisk(in, DefaultChecklist())

		assert.Equal(t, 40, res.Score)
		assert.Equal(t, RiskMedium, res.Level)
		assert.Equal(t, []string{
			"Personal & Domestic Expenses (+15)",
			"Disallowed item claimed: Children's school fees (+10)",
			"Capital Purchases (+5)",
			"Missing receipts for recorded expenses (+10)",
		}, res.RiskDrivers)
		assert.Equal(t, []string{
			"DISALLOWED: Children's school fees (domestic expense, s.27 CITA)",
			"CAPITAL ITEM: Laptops and computers expensed (claim capital allowances instead)",
		}, res.Warnings)
		assert.Equal(t, []string{
			"Reclassify Laptops and computers expensed to the capital allowance schedule",
			"Attach receipts or invoices to every expense above ₦10,000",
		}, res.Suggestions)
	})

	t.Run("category weight counts once", func(t *testing.T) {
		in := AuditInputs{EntityType: EntityLTD, SelectedItems: []string{"client_entertainment", "staff_parties", "customer_gifts"}}
		res := CalculateAuditRisk(in, DefaultChecklist())
		assert.Equal(t, 8, res.Score)
		assert.Equal(t, RiskLow, res.Level)
	})

	t.Run("selection order does not change output order", func(t *testing.T) {
		a := CalculateAuditRisk(AuditInputs{EntityType: EntityLTD, SelectedItems: []string{"school_fees", "laptops_expensed"}}, DefaultChecklist())
		b := CalculateAuditRisk(AuditInputs{EntityType: EntityLTD, SelectedItems: []string{"laptops_expensed", "school_fees"}}, DefaultChecklist())
		assert.Equal(t, a, b)
	})

	t.Run("idempotent", func(t *testing.T) {
		in := AuditInputs{
			EntityType:           EntityLTD,
			Turnover:             10_000_000,
			Profit:               2_000_000,
			TotalExpenses:        8_000_000,
			PreviousYearExpenses: 5_000_000,
			SelectedItems:        []string{"traffic_fines", "cash_wages", "vehicles_expensed"},
			CashPayments:         900_000,
			NoWHTDeducted:        true,
			TransportExpenses:    2_500_000,
			MarketingExpenses:    3_000_000,
			DirectorRemuneration: 1_000_000,
			RepeatedLosses:       true,
		}
		first := CalculateAuditRisk(in, DefaultChecklist())
		second := CalculateAuditRisk(in, DefaultChecklist())
		assert.Equal(t, first, second)
		assert.Equal(t, RiskHigh, first.Level)
	})

	t.Run("empty input is low risk", func(t *testing.T) {
		res := CalculateAuditRisk(AuditInputs{EntityType: EntityLTD}, DefaultChecklist())
		assert.Zero(t, res.Score)
		assert.Equal(t, RiskLow, res.Level)
		assert.NotNil(t, res.Warnings)
		assert.NotNil(t, res.RiskDrivers)
		assert.NotNil(t, res.Suggestions)
	})
}

func TestCalculateAuditRisk_SoleTrader(t *testing.T) {
	tests := []struct {
		name  string
		in    AuditInputs
		score int
		level RiskLevel
	}{
		{
			name: "medium from sixteen",
			in: AuditInputs{
				EntityType:            EntitySole,
				Turnover:              10_000_000,
				NoSeparateBankAccount: true,
				TransportExpenses:     3_000_000,
			},
			score: 18,
			level: RiskMedium,
		},
		{
			name: "high from thirty six",
			in: AuditInputs{
				EntityType:            EntitySole,
				Turnover:              10_000_000,
				TotalExpenses:         8_000_000,
				NoSeparateBankAccount: true,
				MissingReceipts:       true,
				TransportExpenses:     3_000_000,
				RepeatedLosses:        true,
			},
			score: 44,
			level: RiskHigh,
		},
		{
			name:  "zero turnover skips ratio checks",
			in:    AuditInputs{EntityType: EntitySole, TotalExpenses: 1_000_000, PhoneInternet: 500_000},
			score: 0,
			level: RiskLow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CalculateAuditRisk(tt.in, DefaultChecklist())
			assert.Equal(t, tt.score, res.Score)
			assert.Equal(t, tt.level, res.Level)
		})
	}
}

func TestCalculateAuditRisk_ExpenseSpike(t *testing.T) {
	in := AuditInputs{EntityType: EntityLTD, TotalExpenses: 1_500_000, PreviousYearExpenses: 1_000_000}
	res := CalculateAuditRisk(in, DefaultChecklist())
	assert.Equal(t, 8, res.Score)
	assert.Equal(t, []string{"Expenses rose more than 40% year on year (+8)"}, res.RiskDrivers)

	in.TotalExpenses = 1_400_000
	assert.Zero(t, CalculateAuditRisk(in, DefaultChecklist()).Score)
}

func TestDefaultChecklistReturnsCopy(t *testing.T) {
	list := DefaultChecklist()
	list[0].Items[0].IsDisallowed = false
	list[0].RiskWeight = 0
	fresh := DefaultChecklist()
	assert.True(t, fresh[0].Items[0].IsDisallowed)
	assert.Equal(t, 15, fresh[0].RiskWeight)
}
