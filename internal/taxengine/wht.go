package taxengine

// WHTType is the class of payment withholding tax is deducted from.
type WHTType string

const (
	WHTDividend     WHTType = "Dividend"
	WHTInterest     WHTType = "Interest"
	WHTRoyalty      WHTType = "Royalty"
	WHTRent         WHTType = "Rent"
	WHTDirectorFee  WHTType = "DirectorFee"
	WHTContract     WHTType = "Contract"
	WHTProfessional WHTType = "Professional"
	WHTConsultancy  WHTType = "Consultancy"
	WHTCommission   WHTType = "Commission"
	WHTSalesOfGoods WHTType = "SalesOfGoods"
)

var whtRates = map[WHTType]float64{
	WHTDividend:     0.10,
	WHTInterest:     0.10,
	WHTRoyalty:      0.10,
	WHTRent:         0.10,
	WHTDirectorFee:  0.10,
	WHTContract:     0.05,
	WHTProfessional: 0.05,
	WHTConsultancy:  0.05,
	WHTCommission:   0.05,
	WHTSalesOfGoods: 0.02,
}

// WHTRate returns the withholding rate for a payment type, or 0 when unknown.
func WHTRate(t WHTType) float64 {
	return whtRates[t]
}

// IsKnownWHTType reports whether t has a rate in the table.
func IsKnownWHTType(t WHTType) bool {
	_, ok := whtRates[t]
	return ok
}

// WhtResult is the withholding tax on a single payment.
type WhtResult struct {
	Amount          float64 `json:"amount"`
	TransactionType WHTType `json:"transaction_type"`
	Rate            float64 `json:"rate"`
	TaxPayable      float64 `json:"tax_payable"`
	NetAmount       float64 `json:"net_amount"`
}

// CalculateWHT computes the tax to withhold from a payment.
func CalculateWHT(amount float64, t WHTType) WhtResult {
	amount = nonNegative(amount)
	rate := WHTRate(t)
	tax := amount * rate
	return WhtResult{
		Amount:          amount,
		TransactionType: t,
		Rate:            rate,
		TaxPayable:      tax,
		NetAmount:       amount - tax,
	}
}
