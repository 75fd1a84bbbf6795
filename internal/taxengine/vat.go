package taxengine

import "math"

// VATRate is the standard Nigerian VAT rate.
const VATRate = 0.075

// VAT filing statuses.
const (
	VATStatusNotRegistered = "Not Registered (awareness only)"
	VATStatusPayable       = "Payable"
	VATStatusCredit        = "Credit Carried Forward"
	VATStatusNil           = "Nil"
)

// VatInput is the input to CalculateVAT.
type VatInput struct {
	OutputVAT    float64 `json:"output_vat"`
	InputVAT     float64 `json:"input_vat"`
	IsRegistered bool    `json:"is_registered"`
}

// VatResult is the VAT position for a period.
type VatResult struct {
	OutputVAT            float64 `json:"output_vat"`
	InputVAT             float64 `json:"input_vat"`
	VATPayable           float64 `json:"vat_payable"`
	CreditCarriedForward float64 `json:"credit_carried_forward"`
	IsRegistered         bool    `json:"is_registered"`
	Status               string  `json:"status"`
}

// CalculateVAT nets output VAT against input VAT. Unregistered businesses owe
// nothing; the figures are returned for awareness only.
func CalculateVAT(in VatInput) VatResult {
	out := nonNegative(in.OutputVAT)
	inp := nonNegative(in.InputVAT)
	res := VatResult{OutputVAT: out, InputVAT: inp, IsRegistered: in.IsRegistered}

	if !in.IsRegistered {
		res.Status = VATStatusNotRegistered
		return res
	}

	res.VATPayable = math.Max(0, out-inp)
	switch {
	case out > inp:
		res.Status = VATStatusPayable
	case inp > out:
		res.CreditCarriedForward = inp - out
		res.Status = VATStatusCredit
	default:
		res.Status = VATStatusNil
	}
	return res
}

// ExtractVAT returns the VAT component of a VAT-inclusive amount.
func ExtractVAT(inclusive float64) float64 {
	return inclusive - inclusive/(1+VATRate)
}

// AddVAT returns the VAT due on a VAT-exclusive base amount.
func AddVAT(base float64) float64 {
	return base * VATRate
}
