// Package report renders compliance data as an Excel workbook.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"naijatax/internal/taxengine"
)

// Sheet names of the compliance workbook.
const (
	SheetSummary   = "Summary"
	SheetFindings  = "Findings"
	SheetTaxAtRisk = "Tax At Risk"
)

// numFmtNaira is excelize's built-in "#,##0.00" format.
const numFmtNaira = 4

// FindingRow is one audit finding joined with its transaction.
type FindingRow struct {
	Date        time.Time
	Description string
	Amount      float64
	RuleCode    string
	RuleName    string
	Severity    taxengine.Severity
	LegalRef    string
	Finding     string
	Impact      float64
	FixAction   string
}

// ComplianceData is everything the workbook shows for one company.
type ComplianceData struct {
	CompanyName string
	TIN         string
	EntityType  taxengine.EntityType
	// Year is the tax year covered; zero means all years.
	Year        int
	GeneratedAt time.Time
	Summary     taxengine.TaxSummary
	CIT         *taxengine.CitResult
	PIT         *taxengine.PitResult
	VAT         taxengine.VatResult
	Stats       taxengine.ComplianceStats
	Findings    []FindingRow
	TaxAtRisk   taxengine.TaxAtRiskResult
}

type styles struct {
	header int
	money  int
}

// WriteComplianceWorkbook writes a workbook with Summary, Findings and Tax At
// Risk sheets to w.
func WriteComplianceWorkbook(w io.Writer, data ComplianceData) error {
	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return err
	}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeSummary(f, st, data); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if _, err := f.NewSheet(SheetFindings); err != nil {
		return fmt.Errorf("failed to add findings sheet: %w", err)
	}
	if err := writeFindings(f, st, data.Findings); err != nil {
		return fmt.Errorf("failed to write findings: %w", err)
	}

	if _, err := f.NewSheet(SheetTaxAtRisk); err != nil {
		return fmt.Errorf("failed to add tax at risk sheet: %w", err)
	}
	if err := writeTaxAtRisk(f, st, data.TaxAtRisk); err != nil {
		return fmt.Errorf("failed to write tax at risk: %w", err)
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func newStyles(f *excelize.File) (styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9EAD3"}, Pattern: 1},
	})
	if err != nil {
		return styles{}, fmt.Errorf("failed to create header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtNaira})
	if err != nil {
		return styles{}, fmt.Errorf("failed to create money style: %w", err)
	}
	return styles{header: header, money: money}, nil
}

// setRow writes values starting at column A of row.
func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// setHeader writes a styled header row at row 1.
func setHeader(f *excelize.File, st styles, sheet string, titles ...interface{}) error {
	if err := setRow(f, sheet, 1, titles...); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(titles), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, st.header)
}

func yearLabel(year int) string {
	if year == 0 {
		return "All years"
	}
	return strconv.Itoa(year)
}

func writeSummary(f *excelize.File, st styles, d ComplianceData) error {
	if err := setHeader(f, st, SheetSummary, "Item", "Value"); err != nil {
		return err
	}

	text := [][2]interface{}{
		{"Company", d.CompanyName},
		{"TIN", d.TIN},
		{"Entity type", string(d.EntityType)},
		{"Tax year", yearLabel(d.Year)},
		{"Generated at", d.GeneratedAt.UTC().Format(time.RFC3339)},
		{"Compliance status", string(d.Stats.Status)},
		{"Overall score", d.Stats.OverallScore},
		{"Transactions", d.Summary.Transactions},
	}
	money := [][2]interface{}{
		{"Turnover", d.Summary.Turnover},
		{"Total expenses", d.Summary.TotalExpenses},
		{"Allowable expenses", d.Summary.AllowableExpenses},
		{"Assessable profit", d.Summary.AssessableProfit},
		{"Output VAT", d.VAT.OutputVAT},
		{"Input VAT", d.VAT.InputVAT},
		{"VAT payable", d.VAT.VATPayable},
		{"WHT credits", d.Summary.WHTCredits},
	}
	if d.CIT != nil {
		money = append(money,
			[2]interface{}{"CIT payable", d.CIT.TaxPayable},
			[2]interface{}{"Development levy", d.CIT.DevelopmentLevy},
			[2]interface{}{"Total CIT payable", d.CIT.TotalPayable},
		)
	}
	if d.PIT != nil {
		money = append(money,
			[2]interface{}{"Taxable income", d.PIT.TaxableIncome},
			[2]interface{}{"PIT payable", d.PIT.TaxPayable},
		)
	}
	money = append(money,
		[2]interface{}{"Tax at risk", d.TaxAtRisk.TotalAtRisk},
		[2]interface{}{"Estimated penalties", d.TaxAtRisk.EstimatedPenalties},
	)

	row := 2
	for _, kv := range text {
		if err := setRow(f, SheetSummary, row, kv[0], kv[1]); err != nil {
			return err
		}
		row++
	}
	firstMoney := row
	for _, kv := range money {
		if err := setRow(f, SheetSummary, row, kv[0], kv[1]); err != nil {
			return err
		}
		row++
	}
	if err := f.SetCellStyle(SheetSummary, fmt.Sprintf("B%d", firstMoney), fmt.Sprintf("B%d", row-1), st.money); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "A", "B", 24)
}

func writeFindings(f *excelize.File, st styles, rows []FindingRow) error {
	if err := setHeader(f, st, SheetFindings,
		"Date", "Description", "Amount", "Rule", "Rule name", "Severity", "Legal reference", "Finding", "Impact", "Fix action"); err != nil {
		return err
	}
	for i, r := range rows {
		if err := setRow(f, SheetFindings, i+2,
			r.Date.Format("2006-01-02"), r.Description, r.Amount, r.RuleCode, r.RuleName,
			string(r.Severity), r.LegalRef, r.Finding, r.Impact, r.FixAction); err != nil {
			return err
		}
	}
	if len(rows) > 0 {
		last := len(rows) + 1
		if err := f.SetCellStyle(SheetFindings, "C2", fmt.Sprintf("C%d", last), st.money); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetFindings, "I2", fmt.Sprintf("I%d", last), st.money); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetFindings, "B", "B", 36); err != nil {
		return err
	}
	return f.SetColWidth(SheetFindings, "H", "H", 60)
}

func writeTaxAtRisk(f *excelize.File, st styles, r taxengine.TaxAtRiskResult) error {
	if err := setHeader(f, st, SheetTaxAtRisk,
		"Category", "Issues", "Disallowed amount", "Tax rate", "Tax at risk", "Evidence", "Confidence"); err != nil {
		return err
	}
	row := 2
	for _, b := range r.Breakdown {
		if err := setRow(f, SheetTaxAtRisk, row,
			string(b.Category), b.IssueCount, b.DisallowedAmount, b.TaxRate, b.TaxAtRisk,
			string(b.EvidenceStatus), string(b.ConfidenceLevel)); err != nil {
			return err
		}
		row++
	}
	if err := setRow(f, SheetTaxAtRisk, row, "Total", nil, nil, nil, r.TotalAtRisk); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetTaxAtRisk, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), st.header); err != nil {
		return err
	}
	if row > 2 {
		if err := f.SetCellStyle(SheetTaxAtRisk, "C2", fmt.Sprintf("C%d", row-1), st.money); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetTaxAtRisk, "E2", fmt.Sprintf("E%d", row-1), st.money); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetTaxAtRisk, "A", "G", 18)
}
