package taxengine

import "math"

var payeBands = []TaxBand{
	{Label: "First ₦300,000", Width: 300_000, Rate: 0.07},
	{Label: "Next ₦300,000", Width: 300_000, Rate: 0.11},
	{Label: "Next ₦500,000", Width: 500_000, Rate: 0.15},
	{Label: "Next ₦500,000", Width: 500_000, Rate: 0.19},
	{Label: "Next ₦1,600,000", Width: 1_600_000, Rate: 0.21},
	{Label: "Above ₦3,200,000", Width: 0, Rate: 0.24},
}

// PayeResult is PAYE on a salary under the consolidated-relief schedule.
type PayeResult struct {
	GrossIncome   float64   `json:"gross_income"`
	CRA           float64   `json:"cra"`
	TaxableIncome float64   `json:"taxable_income"`
	TaxPayable    float64   `json:"tax_payable"`
	EffectiveRate float64   `json:"effective_rate"`
	Breakdown     []BandTax `json:"breakdown"`
}

// CalculatePAYE computes PAYE with CRA = max(200,000, 1% of gross) + 20% of
// gross. It drives the salary/dividend and business-structure analyzers.
func CalculatePAYE(gross float64) PayeResult {
	gross = nonNegative(gross)
	if gross == 0 {
		return PayeResult{Breakdown: []BandTax{}}
	}
	cra := math.Max(200_000, gross*0.01) + gross*0.20
	taxable := math.Max(0, gross-cra)
	tax, breakdown := applyBands(taxable, payeBands)
	return PayeResult{
		GrossIncome:   gross,
		CRA:           cra,
		TaxableIncome: taxable,
		TaxPayable:    tax,
		EffectiveRate: safeRatio(tax, gross),
		Breakdown:     breakdown,
	}
}
