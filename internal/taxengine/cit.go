package taxengine

// CompanyCategory is the CIT size band of a company.
type CompanyCategory string

const (
	CompanySmall  CompanyCategory = "Small"
	CompanyMedium CompanyCategory = "Medium"
	CompanyLarge  CompanyCategory = "Large"
)

const (
	smallCompanyTurnover  = 100_000_000
	mediumCompanyTurnover = 50_000_000_000
	// CITRate is the standard company income tax rate.
	CITRate = 0.30
	// DevelopmentLevyRate applies to medium and large companies.
	DevelopmentLevyRate = 0.04
)

// CitInput is the input to CalculateCIT.
type CitInput struct {
	Turnover         float64 `json:"turnover"`
	AssessableProfit float64 `json:"assessable_profit"`
}

// CitResult is the company income tax liability.
type CitResult struct {
	Turnover          float64         `json:"turnover"`
	AssessableProfit  float64         `json:"assessable_profit"`
	Category          CompanyCategory `json:"category"`
	TaxRate           float64         `json:"tax_rate"`
	LevyRate          float64         `json:"levy_rate"`
	TaxPayable        float64         `json:"tax_payable"`
	DevelopmentLevy   float64         `json:"development_levy"`
	TotalPayable      float64         `json:"total_payable"`
	MinimumETRApplied bool            `json:"minimum_etr_applied"`
}

// ClassifyCompany returns the CIT size band for a turnover figure.
func ClassifyCompany(turnover float64) CompanyCategory {
	switch {
	case turnover <= smallCompanyTurnover:
		return CompanySmall
	case turnover <= mediumCompanyTurnover:
		return CompanyMedium
	default:
		return CompanyLarge
	}
}

// CalculateCIT computes company income tax and the development levy.
// The minimum effective tax rate for large companies is not modelled.
func CalculateCIT(in CitInput) CitResult {
	turnover := nonNegative(in.Turnover)
	profit := nonNegative(in.AssessableProfit)

	category := ClassifyCompany(turnover)
	var rate, levy float64
	if category != CompanySmall {
		rate, levy = CITRate, DevelopmentLevyRate
	}

	tax := profit * rate
	devLevy := profit * levy
	return CitResult{
		Turnover:         turnover,
		AssessableProfit: profit,
		Category:         category,
		TaxRate:          rate,
		LevyRate:         levy,
		TaxPayable:       tax,
		DevelopmentLevy:  devLevy,
		TotalPayable:     tax + devLevy,
	}
}
