package taxengine

import (
	"fmt"
	"math"
	"strings"
)

// Severity of a rule failure.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// RuleAction is the state transition applied when a rule fails.
type RuleAction int

const (
	ActionNone RuleAction = iota
	ActionDisallow
	ActionLimit50Pct
	ActionFlag
	ActionReclassifyAsset
)

var actionNames = [...]string{"none", "disallow", "limit_50pct", "flag", "reclassify_asset"}

func (a RuleAction) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("RuleAction(%d)", int(a))
}

// MarshalText renders the action with its wire name.
func (a RuleAction) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// RuleOutcome is the result of one rule check. When Passed is true the other
// fields are zero.
type RuleOutcome struct {
	Passed  bool
	Finding string
	Impact  float64
	Action  RuleAction
}

func pass() RuleOutcome { return RuleOutcome{Passed: true} }

func fail(action RuleAction, impact float64, format string, args ...any) RuleOutcome {
	return RuleOutcome{Finding: fmt.Sprintf(format, args...), Impact: nonNegative(impact), Action: action}
}

// RuleCheck evaluates one transaction with its evidence.
type RuleCheck func(tx Transaction, docs []ComplianceDocument) RuleOutcome

// AuditRule is a static compliance rule.
type AuditRule struct {
	Code     string
	Name     string
	Severity Severity
	LegalRef string
	Check    RuleCheck
}

// AuditFinding records one failed rule.
type AuditFinding struct {
	RuleCode     string   `json:"rule_code"`
	RuleName     string   `json:"rule_name"`
	Severity     Severity `json:"severity"`
	LegalRef     string   `json:"legal_ref"`
	Finding      string   `json:"finding"`
	ImpactAmount float64  `json:"impact_amount"`
	FixAction    string   `json:"fix_action"`
}

// TransactionUpdate is the partial update the caller writes back to storage.
type TransactionUpdate struct {
	AuditStatus        AuditStatus        `json:"audit_status"`
	AllowabilityStatus AllowabilityStatus `json:"allowability_status"`
	AllowableAmount    float64            `json:"allowable_amount"`
	AuditNotes         string             `json:"audit_notes"`
}

// AuditOutcome is the result of auditing one transaction.
type AuditOutcome struct {
	Results []AuditFinding    `json:"results"`
	Updates TransactionUpdate `json:"updates"`
}

// Thresholds used by the rules.
const (
	receiptThreshold         = 10_000
	highValueCashThreshold   = 50_000
	capitalItemThreshold     = 100_000
	whtProfessionalThreshold = 3_000
	receiptDateToleranceDays = 7
	receiptAmountTolerance   = 0.05
	entertainmentShare       = 0.005
	// DefaultEntertainmentTurnover stands in for the company turnover in the
	// entertainment rule until a real figure is configured.
	DefaultEntertainmentTurnover = 40_000_000
)

var (
	personalKeywords      = []string{"school fees", "groceries", "supermarket", "family", "personal", "netflix", "dstv", "birthday", "wedding", "salon", "spa ", "church", "mosque", "holiday"}
	capitalKeywords       = []string{"laptop", "computer", "macbook", "generator", "vehicle", "car purchase", "toyota", "furniture", "machine", "machinery", "equipment", "printer", "air condition", "inverter", "building"}
	entertainmentKeywords = []string{"entertainment", "hospitality", "restaurant", "lounge", "club", "parties", "hotel bar"}
	donationKeywords      = []string{"donation", "charity", "offering", "tithe", "sponsorship", "gift"}
	fineWords             = []string{"fine", "fines", "penalty", "penalties", "surcharge", "sanction", "sanctions"}
	cashKeywords          = []string{"cash", "atm", "withdrawal"}
	professionalKeywords  = []string{"professional", "consult", "legal", "audit fee", "accounting fee"}
	contractKeywords      = []string{"contract"}
)

// RuleConfig holds the tunable parameters of the rule set.
type RuleConfig struct {
	// EntertainmentTurnover is the turnover the entertainment cap is measured
	// against.
	EntertainmentTurnover float64
}

// DefaultRuleConfig returns the built-in rule configuration.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{EntertainmentTurnover: DefaultEntertainmentTurnover}
}

func buildRules(cfg RuleConfig) []AuditRule {
	entertainmentCap := cfg.EntertainmentTurnover * entertainmentShare
	return []AuditRule{
		{
			Code: "DOC_001", Name: "Missing receipt", Severity: SeverityCritical,
			LegalRef: "s.55 CITA; FIRS record-keeping rules",
			Check: func(tx Transaction, docs []ComplianceDocument) RuleOutcome {
				if !tx.IsExpense() || tx.AbsAmount() <= receiptThreshold || HasEvidence(tx, docs) {
					return pass()
				}
				return fail(ActionFlag, tx.AbsAmount(), "No receipt attached for expense of ₦%s", naira(tx.AbsAmount()))
			},
		},
		{
			Code: "DOC_002", Name: "Vague narration", Severity: SeverityWarning,
			LegalRef: "s.55 CITA",
			Check: func(tx Transaction, _ []ComplianceDocument) RuleOutcome {
				if !tx.IsExpense() || tx.AbsAmount() <= highValueCashThreshold {
					return pass()
				}
				if len(strings.TrimSpace(tx.Description)) >= 5 || !containsAny(searchText(tx), cashKeywords) {
					return pass()
				}
				return fail(ActionFlag, tx.AbsAmount(), "High-value cash expense of ₦%s has no meaningful narration", naira(tx.AbsAmount()))
			},
		},
		{
			Code: "DOC_003", Name: "Receipt date mismatch", Severity: SeverityWarning,
			LegalRef: "FIRS evidence guidelines",
			Check: func(tx Transaction, docs []ComplianceDocument) RuleOutcome {
				for _, d := range docs {
					if d.TransactionID != tx.ID || d.OCR == nil || d.OCR.Date == nil || tx.Date.IsZero() {
						continue
					}
					days := math.Abs(d.OCR.Date.Sub(tx.Date).Hours() / 24)
					if days > receiptDateToleranceDays {
						return fail(ActionFlag, 0, "Receipt dated %s is %.0f days from the transaction date", d.OCR.Date.Format("2006-01-02"), days)
					}
				}
				return pass()
			},
		},
		{
			Code: "DOC_004", Name: "Receipt amount mismatch", Severity: SeverityWarning,
			LegalRef: "FIRS evidence guidelines",
			Check: func(tx Transaction, docs []ComplianceDocument) RuleOutcome {
				abs := tx.AbsAmount()
				if abs == 0 {
					return pass()
				}
				for _, d := range docs {
					if d.TransactionID != tx.ID || d.OCR == nil || d.OCR.Amount == nil {
						continue
					}
					diff := math.Abs(*d.OCR.Amount - abs)
					if diff/abs > receiptAmountTolerance {
						return fail(ActionFlag, diff, "Receipt shows ₦%s but the bank recorded ₦%s", naira(*d.OCR.Amount), naira(abs))
					}
				}
				return pass()
			},
		},
		{
			Code: "ALLOW_001", Name: "Personal expense", Severity: SeverityCritical,
			LegalRef: "s.27(a) CITA",
			Check: func(tx Transaction, _ []ComplianceDocument) RuleOutcome {
				if !tx.IsExpense() || tx.Tag() == TaxTagPersonal || !containsAny(searchText(tx), personalKeywords) {
					return pass()
				}
				return fail(ActionDisallow, tx.AbsAmount(), "Expense looks personal or domestic and is not deductible")
			},
		},
		{
			Code: "ALLOW_002", Name: "Capital item expensed", Severity: SeverityWarning,
			LegalRef: "Second Schedule CITA (capital allowances)",
			Check: func(tx Transaction, _ []ComplianceDocument) RuleOutcome {
				if !tx.IsExpense() || tx.AbsAmount() <= capitalItemThreshold {
					return pass()
				}
				if containsAny(tx.CategoryName+" "+tx.SubCategory, []string{"asset", "capital"}) {
					return pass()
				}
				if !containsAny(tx.Description, capitalKeywords) {
					return pass()
				}
				return fail(ActionReclassifyAsset, tx.AbsAmount(), "Capital item of ₦%s is booked as an expense", naira(tx.AbsAmount()))
			},
		},
		{
			Code: "ALLOW_003", Name: "Excessive entertainment", Severity: SeverityWarning,
			LegalRef: "s.24 CITA (wholly, reasonably, exclusively, necessarily)",
			Check: func(tx Transaction, _ []ComplianceDocument) RuleOutcome {
				if !tx.IsExpense() || !containsAny(searchText(tx), entertainmentKeywords) {
					return pass()
				}
				if tx.AbsAmount() <= entertainmentCap {
					return pass()
				}
				excess := tx.AbsAmount() - entertainmentCap
				return fail(ActionLimit50Pct, excess, "Entertainment of ₦%s exceeds the ₦%s allowance", naira(tx.AbsAmount()), naira(entertainmentCap))
			},
		},
		{
			Code: "ALLOW_004", Name: "Donation", Severity: SeverityWarning,
			LegalRef: "s.25 CITA, Fifth Schedule",
			Check: func(tx Transaction, _ []ComplianceDocument) RuleOutcome {
				if !tx.IsExpense() || !containsAny(searchText(tx), donationKeywords) {
					return pass()
				}
				return fail(ActionFlag, tx.AbsAmount(), "Donation is only deductible when paid to an approved body")
			},
		},
		{
			Code: "ALLOW_005", Name: "Fine or penalty", Severity: SeverityCritical,
			LegalRef: "s.27(h) CITA",
			Check: func(tx Transaction, _ []ComplianceDocument) RuleOutcome {
				if !tx.IsExpense() || !(containsWord(searchText(tx), fineWords...) || strings.Contains(searchText(tx), "late fee")) {
					return pass()
				}
				return fail(ActionDisallow, tx.AbsAmount(), "Fines and penalties are never deductible")
			},
		},
		{
			Code: "VAT_001", Name: "VAT not tagged", Severity: SeverityWarning,
			LegalRef: "s.17 VAT Act (input VAT)",
			Check: func(tx Transaction, _ []ComplianceDocument) RuleOutcome {
				if !tx.IsExpense() || tx.Tag() != TaxTagNone || !containsWord(tx.Description, "vat") {
					return pass()
				}
				return fail(ActionFlag, ExtractVAT(tx.AbsAmount()), "Expense mentions VAT but carries no tax tag")
			},
		},
		{
			Code: "VAT_003", Name: "Professional fee VAT", Severity: SeverityWarning,
			LegalRef: "s.2 VAT Act",
			Check: func(tx Transaction, _ []ComplianceDocument) RuleOutcome {
				if !tx.IsExpense() || tx.Tag() != TaxTagNone || !isProfessionalFee(tx) {
					return pass()
				}
				return fail(ActionFlag, ExtractVAT(tx.AbsAmount()), "Professional fee has no VAT or WHT tag")
			},
		},
		{
			Code: "WHT_001", Name: "WHT not deducted", Severity: SeverityWarning,
			LegalRef: "s.78-81 CITA; WHT Regulations 2024",
			Check: func(tx Transaction, _ []ComplianceDocument) RuleOutcome {
				if !tx.IsExpense() || tx.AbsAmount() < whtProfessionalThreshold || tx.Tag() == TaxTagWHT || !isProfessionalFee(tx) {
					return pass()
				}
				impact := tx.AbsAmount() * WHTRate(WHTProfessional)
				return fail(ActionFlag, impact, "WHT of ₦%s should have been deducted from this professional fee", naira(impact))
			},
		},
	}
}

var defaultRules = buildRules(DefaultRuleConfig())

// AuditRules returns a copy of the default rule table in evaluation order.
func AuditRules() []AuditRule {
	out := make([]AuditRule, len(defaultRules))
	copy(out, defaultRules)
	return out
}

// Auditor runs a fixed rule set over transactions.
type Auditor struct {
	rules []AuditRule
}

// NewAuditor builds an Auditor for the given configuration. A non-positive
// entertainment turnover falls back to the default.
func NewAuditor(cfg RuleConfig) *Auditor {
	if cfg.EntertainmentTurnover <= 0 {
		cfg.EntertainmentTurnover = DefaultEntertainmentTurnover
	}
	return &Auditor{rules: buildRules(cfg)}
}

var defaultAuditor = &Auditor{rules: defaultRules}

// RunAudit evaluates the default rules against one transaction.
func RunAudit(tx Transaction, docs []ComplianceDocument) AuditOutcome {
	return defaultAuditor.Run(tx, docs)
}

// Run evaluates every rule against tx and derives the resulting update.
// Within one run the audit status never moves back towards pass.
func (a *Auditor) Run(tx Transaction, docs []ComplianceDocument) AuditOutcome {
	abs := tx.AbsAmount()
	upd := TransactionUpdate{
		AuditStatus:        AuditStatusPass,
		AllowabilityStatus: AllowabilityAllowable,
		AllowableAmount:    abs,
	}
	linked := documentsFor(tx.ID, docs)

	results := []AuditFinding{}
	var notes []string
	critical := false

	for _, rule := range a.rules {
		out := rule.Check(tx, linked)
		if out.Passed {
			continue
		}
		results = append(results, AuditFinding{
			RuleCode:     rule.Code,
			RuleName:     rule.Name,
			Severity:     rule.Severity,
			LegalRef:     rule.LegalRef,
			Finding:      out.Finding,
			ImpactAmount: out.Impact,
			FixAction:    out.Action.String(),
		})
		notes = append(notes, out.Finding)
		if rule.Severity == SeverityCritical {
			critical = true
		}

		switch out.Action {
		case ActionDisallow:
			upd.AllowabilityStatus = AllowabilityNonAllowable
			upd.AllowableAmount = 0
			upd.AuditStatus = AuditStatusFail
		case ActionLimit50Pct:
			if upd.AllowabilityStatus != AllowabilityNonAllowable {
				upd.AllowabilityStatus = AllowabilityPartial
				upd.AllowableAmount = math.Min(upd.AllowableAmount, math.Max(0, abs-out.Impact))
			}
			upd.AuditStatus = escalate(upd.AuditStatus, AuditStatusReview)
		case ActionFlag, ActionReclassifyAsset:
			upd.AuditStatus = escalate(upd.AuditStatus, AuditStatusReview)
		case ActionNone:
		}
	}

	if critical {
		upd.AuditStatus = AuditStatusFail
	} else if len(results) > 0 {
		upd.AuditStatus = escalate(upd.AuditStatus, AuditStatusReview)
	}
	upd.AuditNotes = strings.Join(notes, "; ")

	return AuditOutcome{Results: results, Updates: upd}
}

func escalate(current, next AuditStatus) AuditStatus {
	if next.rank() > current.rank() {
		return next
	}
	return current
}

// Apply returns a copy of tx with the update merged in.
func (u TransactionUpdate) Apply(tx Transaction) Transaction {
	tx.AuditStatus = u.AuditStatus
	tx.AllowabilityStatus = u.AllowabilityStatus
	amt := u.AllowableAmount
	tx.AllowableAmount = &amt
	tx.AuditNotes = u.AuditNotes
	return tx
}

// containsWord reports whether text contains any of words as a whole word.
func containsWord(text string, words ...string) bool {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	})
	for _, f := range fields {
		for _, w := range words {
			if f == w {
				return true
			}
		}
	}
	return false
}

func isProfessionalFee(tx Transaction) bool {
	return containsAny(tx.CategoryName+" "+tx.SubCategory, professionalKeywords)
}

func isProfessionalOrContract(tx Transaction) bool {
	cat := tx.CategoryName + " " + tx.SubCategory
	return containsAny(cat, professionalKeywords) || containsAny(cat, contractKeywords)
}
