package services

import (
	"io"
	"time"

	"gorm.io/gorm"

	apperrors "naijatax/internal/errors"
	"naijatax/internal/models"
	"naijatax/internal/report"
	"naijatax/internal/taxengine"
)

// taxService runs the engine's analyses over a company's stored data.
type taxService struct {
	db                *gorm.DB
	defaultOwnerNeeds float64
	now               func() time.Time
}

// NewTaxService creates a new TaxServicer. defaultOwnerNeeds is used for
// companies whose profile leaves owner needs at zero.
func NewTaxService(db *gorm.DB, defaultOwnerNeeds float64) TaxServicer {
	return &taxService{db: db, defaultOwnerNeeds: defaultOwnerNeeds, now: time.Now}
}

// companyYear is a company's stored data for one tax year.
type companyYear struct {
	company      *models.Company
	transactions []models.Transaction
	documents    []models.ComplianceDocument
	findings     []models.AuditFinding
}

func (c *companyYear) engineTransactions() []taxengine.Transaction {
	return models.EngineTransactions(c.transactions)
}

func (c *companyYear) engineDocuments() []taxengine.ComplianceDocument {
	return models.EngineDocuments(c.documents)
}

// load reads the company's transactions dated in year together with their
// documents and findings. A zero year loads everything.
func (s *taxService) load(userID, companyID string, year int, withFindings bool) (*companyYear, error) {
	company, err := findCompany(s.db, userID, companyID)
	if err != nil {
		return nil, err
	}

	scope := s.db.Model(&models.Transaction{}).Where("company_id = ?", companyID)
	if year != 0 {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		scope = scope.Where("date >= ? AND date < ?", from, from.AddDate(1, 0, 0))
	}

	out := &companyYear{company: company}
	if err := scope.Order("date ASC").Find(&out.transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(out.transactions) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(out.transactions))
	for i := range out.transactions {
		ids = append(ids, out.transactions[i].ID)
	}
	if err := s.db.Where("transaction_id IN ?", ids).Find(&out.documents).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if withFindings {
		if err := s.db.Where("transaction_id IN ?", ids).Order("created_at ASC").Find(&out.findings).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return out, nil
}

// GetTaxSummary computes the year's aggregates and the income tax matching
// the company's entity type.
func (s *taxService) GetTaxSummary(userID, companyID string, year int) (*CompanyTaxSummary, error) {
	data, err := s.load(userID, companyID, year, false)
	if err != nil {
		return nil, err
	}
	return summarize(data.company, year, data.engineTransactions()), nil
}

func summarize(company *models.Company, year int, txs []taxengine.Transaction) *CompanyTaxSummary {
	summary := taxengine.SummarizeTransactions(txs)
	out := &CompanyTaxSummary{
		CompanyID:  company.ID,
		Year:       year,
		EntityType: company.EntityType,
		Summary:    summary,
		VAT: taxengine.CalculateVAT(taxengine.VatInput{
			OutputVAT:    summary.OutputVAT,
			InputVAT:     summary.InputVAT,
			IsRegistered: company.VATRegistered,
		}),
	}
	if company.EntityType == taxengine.EntitySole {
		pit := taxengine.CalculatePIT(taxengine.PitInput{
			GrossIncome:         summary.Turnover,
			AllowableDeductions: summary.AllowableExpenses,
		})
		out.PIT = &pit
	} else {
		cit := taxengine.CalculateCIT(taxengine.CitInput{
			Turnover:         summary.Turnover,
			AssessableProfit: summary.AssessableProfit,
		})
		out.CIT = &cit
	}
	return out
}

// GetComplianceStats rolls the stored audit results into scores.
func (s *taxService) GetComplianceStats(userID, companyID string, year int) (*taxengine.ComplianceStats, error) {
	data, err := s.load(userID, companyID, year, true)
	if err != nil {
		return nil, err
	}
	stats := taxengine.CalculateComplianceStats(data.engineTransactions(), data.engineDocuments(), models.EngineFindings(data.findings))
	return &stats, nil
}

// GetTaxAtRisk estimates the tax exposure of unresolved issues.
func (s *taxService) GetTaxAtRisk(userID, companyID string, year int) (*taxengine.TaxAtRiskResult, error) {
	data, err := s.load(userID, companyID, year, false)
	if err != nil {
		return nil, err
	}
	res := taxengine.CalculateTaxAtRisk(data.engineTransactions(), data.engineDocuments())
	return &res, nil
}

// AssessAuditRisk scores the company's audit risk. Checklist selections and
// red flags come from in; category totals are derived from the stored
// transactions. Entity type and previous-year expenses fall back to the
// company profile.
func (s *taxService) AssessAuditRisk(userID, companyID string, year int, in taxengine.AuditInputs) (*taxengine.AuditRiskResult, error) {
	data, err := s.load(userID, companyID, year, false)
	if err != nil {
		return nil, err
	}
	if in.EntityType == "" {
		in.EntityType = data.company.EntityType
	}
	if in.PreviousYearExpenses == 0 {
		in.PreviousYearExpenses = data.company.PreviousYearExpenses.InexactFloat64()
	}

	merged := taxengine.DeriveRiskInputs(in, data.engineTransactions())
	res := taxengine.CalculateAuditRisk(merged, taxengine.DefaultChecklist())
	return &res, nil
}

// GetSavings runs the savings analyzers. A past year is analysed as of its
// last day.
func (s *taxService) GetSavings(userID, companyID string, year int) ([]taxengine.SavingsRecommendation, error) {
	data, err := s.load(userID, companyID, year, false)
	if err != nil {
		return nil, err
	}

	txs := data.engineTransactions()
	summary := taxengine.SummarizeTransactions(txs)
	profile := data.company.SavingsProfile(summary.Turnover, summary.AssessableProfit)
	if profile.OwnerNeeds == 0 {
		profile.OwnerNeeds = s.defaultOwnerNeeds
	}

	recs := taxengine.AnalyzeSavings(profile, txs, s.asOf(year))
	if recs == nil {
		recs = []taxengine.SavingsRecommendation{}
	}
	return recs, nil
}

func (s *taxService) asOf(year int) time.Time {
	now := s.now()
	if year != 0 && year < now.Year() {
		return time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	}
	return now
}

// WriteComplianceWorkbook renders the year's compliance position as an
// Excel workbook.
func (s *taxService) WriteComplianceWorkbook(userID, companyID string, year int, w io.Writer) error {
	data, err := s.load(userID, companyID, year, true)
	if err != nil {
		return err
	}

	txs := data.engineTransactions()
	docs := data.engineDocuments()
	tax := summarize(data.company, year, txs)

	byID := make(map[string]*models.Transaction, len(data.transactions))
	for i := range data.transactions {
		byID[data.transactions[i].ID] = &data.transactions[i]
	}
	rows := make([]report.FindingRow, 0, len(data.findings))
	for _, f := range data.findings {
		row := report.FindingRow{
			RuleCode:  f.RuleCode,
			RuleName:  f.RuleName,
			Severity:  f.Severity,
			LegalRef:  f.LegalRef,
			Finding:   f.Finding,
			Impact:    f.ImpactAmount.InexactFloat64(),
			FixAction: f.FixAction,
		}
		if tx, ok := byID[f.TransactionID]; ok {
			row.Date = tx.Date
			row.Description = tx.Description
			row.Amount = tx.Amount.InexactFloat64()
		}
		rows = append(rows, row)
	}

	tin := ""
	if data.company.TIN != nil {
		tin = *data.company.TIN
	}

	err = report.WriteComplianceWorkbook(w, report.ComplianceData{
		CompanyName: data.company.Name,
		TIN:         tin,
		EntityType:  data.company.EntityType,
		Year:        year,
		GeneratedAt: s.now(),
		Summary:     tax.Summary,
		CIT:         tax.CIT,
		PIT:         tax.PIT,
		VAT:         tax.VAT,
		Stats:       taxengine.CalculateComplianceStats(txs, docs, models.EngineFindings(data.findings)),
		Findings:    rows,
		TaxAtRisk:   taxengine.CalculateTaxAtRisk(txs, docs),
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrReportFailed, err)
	}
	return nil
}
