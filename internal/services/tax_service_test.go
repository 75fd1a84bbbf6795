package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"naijatax/internal/models"
	"naijatax/internal/report"
	"naijatax/internal/taxengine"
	"naijatax/internal/testutil"
)

type taxFixture struct {
	db      *gorm.DB
	svc     *taxService
	user    *models.User
	company *models.Company
}

func newTaxFixture(t *testing.T, entity taxengine.EntityType) *taxFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := NewTaxService(db, 3_000_000).(*taxService)
	svc.now = func() time.Time { return time.Date(2025, time.June, 30, 12, 0, 0, 0, time.UTC) }
	user := testutil.CreateTestUser(t, db)
	company := testutil.CreateTestCompany(t, db, user.ID, entity)
	require.NoError(t, db.Model(company).Update("vat_registered", true).Error)

	sale := testutil.CreateTestTransaction(t, db, company.ID, 1_075_000, "Invoice 7")
	diesel := testutil.CreateTestTransaction(t, db, company.ID, -107_500, "Diesel")
	require.NoError(t, db.Model(&models.Transaction{}).Where("id IN ?", []string{sale.ID, diesel.ID}).
		Update("tax_tag", taxengine.TaxTagVAT).Error)

	old := testutil.CreateTestTransaction(t, db, company.ID, -50_000, "Generator repair")
	require.NoError(t, db.Model(old).Update("date", time.Date(2024, time.November, 2, 0, 0, 0, 0, time.UTC)).Error)

	return &taxFixture{db: db, svc: svc, user: user, company: company}
}

func TestGetTaxSummary(t *testing.T) {
	t.Run("company_year", func(t *testing.T) {
		fx := newTaxFixture(t, taxengine.EntityLTD)

		res, err := fx.svc.GetTaxSummary(fx.user.ID, fx.company.ID, 2025)
		require.NoError(t, err)

		assert.Equal(t, 2025, res.Year)
		assert.Equal(t, 2, res.Summary.Transactions)
		assert.InDelta(t, 1_075_000, res.Summary.Turnover, 1e-6)
		assert.InDelta(t, 75_000, res.Summary.OutputVAT, 1e-6)
		assert.InDelta(t, 7_500, res.Summary.InputVAT, 1e-6)
		assert.InDelta(t, 67_500, res.VAT.VATPayable, 1e-6)
		require.NotNil(t, res.CIT)
		assert.Nil(t, res.PIT)
	})

	t.Run("all_years", func(t *testing.T) {
		fx := newTaxFixture(t, taxengine.EntityLTD)

		res, err := fx.svc.GetTaxSummary(fx.user.ID, fx.company.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Summary.Transactions)
	})

	t.Run("sole_trader_gets_pit", func(t *testing.T) {
		fx := newTaxFixture(t, taxengine.EntitySole)

		res, err := fx.svc.GetTaxSummary(fx.user.ID, fx.company.ID, 2025)
		require.NoError(t, err)
		require.NotNil(t, res.PIT)
		assert.Nil(t, res.CIT)
		assert.InDelta(t, 1_075_000, res.PIT.GrossIncome, 1e-6)
	})

	t.Run("foreign_company", func(t *testing.T) {
		fx := newTaxFixture(t, taxengine.EntityLTD)
		intruder := testutil.CreateTestUser(t, fx.db)

		_, err := fx.svc.GetTaxSummary(intruder.ID, fx.company.ID, 2025)
		testutil.AssertAppError(t, err, "COMPANY_NOT_FOUND")
	})
}

func TestGetComplianceStatsAndTaxAtRisk(t *testing.T) {
	fx := newTaxFixture(t, taxengine.EntityLTD)

	stats, err := fx.svc.GetComplianceStats(fx.user.ID, fx.company.ID, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalTransactions)

	risk, err := fx.svc.GetTaxAtRisk(fx.user.ID, fx.company.ID, 2025)
	require.NoError(t, err)
	assert.Greater(t, risk.TotalAtRisk, 0.0)

	empty, err := fx.svc.GetTaxAtRisk(fx.user.ID, fx.company.ID, 2019)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalAtRisk)
}

func TestAssessAuditRisk(t *testing.T) {
	fx := newTaxFixture(t, taxengine.EntityLTD)

	res, err := fx.svc.AssessAuditRisk(fx.user.ID, fx.company.ID, 2025, taxengine.AuditInputs{
		SelectedItems:   []string{"school_fees"},
		MissingReceipts: true,
	})
	require.NoError(t, err)
	assert.Positive(t, res.Score)
	assert.Contains(t, []taxengine.RiskLevel{taxengine.RiskLow, taxengine.RiskMedium, taxengine.RiskHigh}, res.Level)

	clean, err := fx.svc.AssessAuditRisk(fx.user.ID, fx.company.ID, 2025, taxengine.AuditInputs{})
	require.NoError(t, err)
	assert.Less(t, clean.Score, res.Score)
}

func TestGetSavings(t *testing.T) {
	fx := newTaxFixture(t, taxengine.EntityLTD)

	recs, err := fx.svc.GetSavings(fx.user.ID, fx.company.ID, 2025)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].PotentialSaving, recs[i].PotentialSaving)
	}

	assert.Equal(t, time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC), fx.svc.asOf(2024))
	assert.Equal(t, fx.svc.now(), fx.svc.asOf(2025))
	assert.Equal(t, fx.svc.now(), fx.svc.asOf(0))
}

func TestWriteComplianceWorkbookService(t *testing.T) {
	fx := newTaxFixture(t, taxengine.EntityLTD)
	audit := NewAuditService(fx.db, nil)
	_, err := audit.AuditCompany(fx.user.ID, fx.company.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, fx.svc.WriteComplianceWorkbook(fx.user.ID, fx.company.ID, 2025, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{report.SheetSummary, report.SheetFindings, report.SheetTaxAtRisk}, f.GetSheetList())

	company, err := f.GetCellValue(report.SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, fx.company.Name, company)

	rows, err := f.GetRows(report.SheetFindings)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Diesel", rows[1][1])
	assert.Equal(t, "DOC_001", rows[1][3])
}
