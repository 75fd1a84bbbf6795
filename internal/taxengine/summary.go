package taxengine

// TaxSummary holds the headline figures the calculators consume.
type TaxSummary struct {
	Turnover          float64 `json:"turnover"`
	TotalExpenses     float64 `json:"total_expenses"`
	AllowableExpenses float64 `json:"allowable_expenses"`
	AssessableProfit  float64 `json:"assessable_profit"`
	OutputVAT         float64 `json:"output_vat"`
	InputVAT          float64 `json:"input_vat"`
	WHTCredits        float64 `json:"wht_credits"`
	Transactions      int     `json:"transactions"`
}

// SummarizeTransactions totals business-scope transactions. Owner loans and
// capital gains are not trading income and are left out of turnover.
func SummarizeTransactions(txs []Transaction) TaxSummary {
	var s TaxSummary
	for _, tx := range txs {
		if !tx.InBusinessScope() {
			continue
		}
		s.Transactions++
		tag := tx.Tag()
		if tx.IsIncome() {
			if tag == TaxTagOwnerLoan || tag == TaxTagCapitalGain {
				continue
			}
			s.Turnover += tx.Amount
			switch tag {
			case TaxTagVAT:
				s.OutputVAT += ExtractVAT(tx.Amount)
			case TaxTagWHT:
				s.WHTCredits += tx.Amount * WHTRate(WHTContract)
			}
			continue
		}
		if tx.IsExpense() {
			if tag == TaxTagOwnerLoan {
				continue
			}
			s.TotalExpenses += tx.AbsAmount()
			if tag != TaxTagNonDeductible {
				s.AllowableExpenses += tx.Allowable()
			}
			if tag == TaxTagVAT {
				s.InputVAT += ExtractVAT(tx.AbsAmount())
			}
		}
	}
	s.AssessableProfit = nonNegative(s.Turnover - s.AllowableExpenses)
	return s
}

var (
	transportKeywords     = []string{"transport", "travel", "fuel", "uber", "bolt", "flight"}
	marketingKeywords     = []string{"marketing", "advert", "promotion", "branding"}
	directorKeywords      = []string{"director"}
	phoneInternetKeywords = []string{"phone", "airtime", "internet", "data subscription", "telecom"}
)

// DeriveRiskInputs fills the category totals of AuditInputs from the
// transaction history. Profile flags and checklist selections are left as
// given in base.
func DeriveRiskInputs(base AuditInputs, txs []Transaction) AuditInputs {
	s := SummarizeTransactions(txs)
	out := base
	out.Turnover = s.Turnover
	out.TotalExpenses = s.TotalExpenses
	out.Profit = s.Turnover - s.TotalExpenses
	out.TransportExpenses, out.MarketingExpenses = 0, 0
	out.DirectorRemuneration, out.PhoneInternet, out.CashPayments = 0, 0, 0

	for _, tx := range txs {
		if !tx.InBusinessScope() || !tx.IsExpense() {
			continue
		}
		text := searchText(tx)
		abs := tx.AbsAmount()
		switch {
		case containsAny(text, transportKeywords):
			out.TransportExpenses += abs
		case containsAny(text, marketingKeywords):
			out.MarketingExpenses += abs
		case containsAny(text, directorKeywords):
			out.DirectorRemuneration += abs
		case containsAny(text, phoneInternetKeywords):
			out.PhoneInternet += abs
		}
		if containsAny(text, cashKeywords) {
			out.CashPayments += abs
		}
	}
	return out
}
