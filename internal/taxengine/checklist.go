package taxengine

// ChecklistItem is one self-assessment question a business can tick.
type ChecklistItem struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	IsDisallowed   bool   `json:"is_disallowed"`
	Reason         string `json:"reason,omitempty"`
	IsCapitalAsset bool   `json:"is_capital_asset"`
}

// ChecklistCategory groups checklist items. RiskWeight is added to the score
// once when any item of the category is selected.
type ChecklistCategory struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	RiskWeight int             `json:"risk_weight"`
	Items      []ChecklistItem `json:"items"`
}

var defaultChecklist = []ChecklistCategory{
	{
		ID: "personal", Name: "Personal & Domestic Expenses", RiskWeight: 15,
		Items: []ChecklistItem{
			{ID: "personal_travel", Label: "Family or holiday travel", IsDisallowed: true, Reason: "private expense, s.27 CITA"},
			{ID: "school_fees", Label: "Children's school fees", IsDisallowed: true, Reason: "domestic expense, s.27 CITA"},
			{ID: "home_utilities", Label: "Home electricity and utilities", IsDisallowed: true, Reason: "domestic expense, s.27 CITA"},
		},
	},
	{
		ID: "fines", Name: "Fines & Penalties", RiskWeight: 12,
		Items: []ChecklistItem{
			{ID: "traffic_fines", Label: "Traffic or VIO fines", IsDisallowed: true, Reason: "penalties are never deductible"},
			{ID: "tax_penalties", Label: "FIRS / state tax penalties", IsDisallowed: true, Reason: "penalties are never deductible"},
		},
	},
	{
		ID: "provisions", Name: "Provisions & Reserves", RiskWeight: 10,
		Items: []ChecklistItem{
			{ID: "general_provision", Label: "General bad-debt provision", IsDisallowed: true, Reason: "only specific provisions are allowable"},
			{ID: "book_depreciation", Label: "Accounting depreciation expensed", IsDisallowed: true, Reason: "claim capital allowances instead"},
		},
	},
	{
		ID: "related_party", Name: "Related-Party Transactions", RiskWeight: 10,
		Items: []ChecklistItem{
			{ID: "director_loans", Label: "Loans to or from directors"},
			{ID: "related_party_fees", Label: "Management fees to related companies"},
		},
	},
	{
		ID: "entertainment", Name: "Entertainment & Gifts", RiskWeight: 8,
		Items: []ChecklistItem{
			{ID: "client_entertainment", Label: "Client entertainment"},
			{ID: "staff_parties", Label: "Staff parties and end-of-year events"},
			{ID: "customer_gifts", Label: "Gifts to customers"},
		},
	},
	{
		ID: "cash", Name: "Cash-Heavy Operations", RiskWeight: 8,
		Items: []ChecklistItem{
			{ID: "cash_purchases", Label: "Purchases paid in cash"},
			{ID: "cash_wages", Label: "Wages paid in cash"},
		},
	},
	{
		ID: "donations", Name: "Donations", RiskWeight: 6,
		Items: []ChecklistItem{
			{ID: "unapproved_donations", Label: "Donations to non-approved bodies", IsDisallowed: true, Reason: "not listed in the Fifth Schedule"},
			{ID: "approved_donations", Label: "Donations to approved institutions"},
		},
	},
	{
		ID: "capital", Name: "Capital Purchases", RiskWeight: 5,
		Items: []ChecklistItem{
			{ID: "laptops_expensed", Label: "Laptops and computers expensed", IsCapitalAsset: true},
			{ID: "vehicles_expensed", Label: "Vehicles expensed", IsCapitalAsset: true},
			{ID: "furniture_expensed", Label: "Office furniture expensed", IsCapitalAsset: true},
			{ID: "generator_expensed", Label: "Generators and machinery expensed", IsCapitalAsset: true},
		},
	},
}

// DefaultChecklist returns a deep copy of the built-in checklist.
func DefaultChecklist() []ChecklistCategory {
	out := make([]ChecklistCategory, len(defaultChecklist))
	for i, c := range defaultChecklist {
		c.Items = append([]ChecklistItem(nil), c.Items...)
		out[i] = c
	}
	return out
}
