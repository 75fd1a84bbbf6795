package taxengine

import "math"

const (
	// PITExemptionThreshold is the gross income at or below which no PIT is due.
	PITExemptionThreshold = 800_000
	rentReliefRate        = 0.20
	rentReliefCap         = 500_000
)

// TaxBand is one slice of a progressive schedule. A zero Width means the band
// is unbounded.
type TaxBand struct {
	Label string
	Width float64
	Rate  float64
}

var pitBands = []TaxBand{
	{Label: "First ₦800,000", Width: 800_000, Rate: 0},
	{Label: "Next ₦2,200,000", Width: 2_200_000, Rate: 0.15},
	{Label: "Next ₦9,000,000", Width: 9_000_000, Rate: 0.18},
	{Label: "Next ₦13,000,000", Width: 13_000_000, Rate: 0.21},
	{Label: "Next ₦25,000,000", Width: 25_000_000, Rate: 0.23},
	{Label: "Above ₦50,000,000", Width: 0, Rate: 0.25},
}

// PITBands returns a copy of the personal income tax schedule.
func PITBands() []TaxBand {
	out := make([]TaxBand, len(pitBands))
	copy(out, pitBands)
	return out
}

// BandTax records how much income one band consumed and the tax charged on it.
type BandTax struct {
	Band          string  `json:"band"`
	Rate          float64 `json:"rate"`
	TaxableAmount float64 `json:"taxable_amount"`
	Tax           float64 `json:"tax"`
}

// PitInput is the input to CalculatePIT.
type PitInput struct {
	GrossIncome         float64 `json:"gross_income"`
	AllowableDeductions float64 `json:"allowable_deductions"`
	NonTaxableIncome    float64 `json:"non_taxable_income"`
	ActualRentPaid      float64 `json:"actual_rent_paid"`
}

// PitResult is the personal income tax liability.
type PitResult struct {
	GrossIncome   float64   `json:"gross_income"`
	CRA           float64   `json:"cra"`
	RentRelief    float64   `json:"rent_relief"`
	TotalReliefs  float64   `json:"total_reliefs"`
	TaxableIncome float64   `json:"taxable_income"`
	TaxPayable    float64   `json:"tax_payable"`
	EffectiveRate float64   `json:"effective_rate"`
	IsExempt      bool      `json:"is_exempt"`
	Breakdown     []BandTax `json:"breakdown"`
}

// CalculatePIT computes personal income tax. Negative monetary inputs are
// treated as zero.
func CalculatePIT(in PitInput) PitResult {
	gross := nonNegative(in.GrossIncome)
	deductions := nonNegative(in.AllowableDeductions)
	nonTaxable := nonNegative(in.NonTaxableIncome)
	rent := nonNegative(in.ActualRentPaid)

	if gross <= PITExemptionThreshold {
		return PitResult{GrossIncome: gross, IsExempt: true, Breakdown: []BandTax{}}
	}

	// Consolidated Relief Allowance no longer applies; kept on the result for
	// report compatibility.
	cra := 0.0
	rentRelief := math.Min(rentReliefCap, rent*rentReliefRate)
	reliefs := cra + rentRelief + nonTaxable
	taxable := math.Max(0, gross-deductions-reliefs)

	tax, breakdown := applyBands(taxable, pitBands)

	return PitResult{
		GrossIncome:   gross,
		CRA:           cra,
		RentRelief:    rentRelief,
		TotalReliefs:  reliefs,
		TaxableIncome: taxable,
		TaxPayable:    tax,
		EffectiveRate: safeRatio(tax, gross),
		Breakdown:     breakdown,
	}
}

// applyBands runs income through a progressive schedule in order.
func applyBands(income float64, bands []TaxBand) (float64, []BandTax) {
	remaining := income
	total := 0.0
	breakdown := make([]BandTax, 0, len(bands))
	for _, b := range bands {
		if remaining <= 0 {
			break
		}
		portion := remaining
		if b.Width > 0 && portion > b.Width {
			portion = b.Width
		}
		tax := portion * b.Rate
		breakdown = append(breakdown, BandTax{
			Band:          b.Label,
			Rate:          b.Rate,
			TaxableAmount: portion,
			Tax:           tax,
		})
		total += tax
		remaining -= portion
	}
	return total, breakdown
}

func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
