// Package export writes a period snapshot to an xlsx workbook with a
// transactions sheet, a budgets sheet and a 50/30/20 dashboard.
package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/report"
)

// Sheet names.
const (
	SheetTransactions = "Transaksi"
	SheetBudgets      = "Anggaran"
	SheetDashboard    = "Dashboard"
)

const (
	dateFormat    = "dd-mm-yyyy"
	moneyFormat   = `"Rp" #,##0`
	percentFormat = "0.0%"
)

var (
	idealNeeds   = decimal.NewFromFloat(0.5)
	idealWants   = decimal.NewFromFloat(0.3)
	idealSavings = decimal.NewFromFloat(0.2)
)

type styles struct {
	header, date, money, percent int
}

// Filename is Export_Enhanced_{uid}_{YYYYMMDD}_{YYYYMMDD}.xlsx.
func Filename(userID int64, r core.Range) string {
	return fmt.Sprintf("Export_Enhanced_%d_%s_%s.xlsx", userID, r.Start.Format("20060102"), r.End.Format("20060102"))
}

// Build renders s as a workbook and returns its bytes with the download
// file name.
func Build(s *report.Snapshot) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return nil, "", err
	}
	if err := f.SetSheetName("Sheet1", SheetTransactions); err != nil {
		return nil, "", fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeTransactions(f, st, s.Detail().Transactions); err != nil {
		return nil, "", fmt.Errorf("write %s: %w", SheetTransactions, err)
	}
	if _, err := f.NewSheet(SheetBudgets); err != nil {
		return nil, "", fmt.Errorf("add sheet %s: %w", SheetBudgets, err)
	}
	if err := writeBudgets(f, st, s.BudgetRows()); err != nil {
		return nil, "", fmt.Errorf("write %s: %w", SheetBudgets, err)
	}
	if _, err := f.NewSheet(SheetDashboard); err != nil {
		return nil, "", fmt.Errorf("add sheet %s: %w", SheetDashboard, err)
	}
	if err := writeDashboard(f, st, s); err != nil {
		return nil, "", fmt.Errorf("write %s: %w", SheetDashboard, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}
	return buf, Filename(s.UserID, s.Period), nil
}

// Exporter loads a snapshot and renders it.
type Exporter struct {
	loader *report.Loader
}

func New(loader *report.Loader) *Exporter {
	return &Exporter{loader: loader}
}

// Export builds the workbook for userID over r.
func (e *Exporter) Export(ctx context.Context, userID int64, r core.Range) (*bytes.Buffer, string, error) {
	s, err := e.loader.Load(ctx, userID, r)
	if err != nil {
		return nil, "", err
	}
	return Build(s)
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F2F2F2"}, Pattern: 1},
	})
	if err != nil {
		return st, fmt.Errorf("header style: %w", err)
	}
	for _, s := range []struct {
		dst  *int
		code string
	}{
		{&st.date, dateFormat},
		{&st.money, moneyFormat},
		{&st.percent, percentFormat},
	} {
		code := s.code
		if *s.dst, err = f.NewStyle(&excelize.Style{CustomNumFmt: &code}); err != nil {
			return st, fmt.Errorf("style %q: %w", s.code, err)
		}
	}
	return st, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeHeader(f *excelize.File, st styles, sheet string, cols ...string) error {
	row := make([]any, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", cell(len(cols), 1), st.header)
}

func writeTransactions(f *excelize.File, st styles, txs []core.Transaction) error {
	sh := SheetTransactions
	if err := writeHeader(f, st, sh, "Tanggal", "Keterangan", "Kategori", "Tipe", "Nominal"); err != nil {
		return err
	}
	for i, t := range txs {
		r := i + 2
		row := []any{t.Date.Time, t.Description, t.Category, string(t.Kind), t.Amount}
		if err := f.SetSheetRow(sh, cell(1, r), &row); err != nil {
			return err
		}
		if err := f.SetCellStyle(sh, cell(1, r), cell(1, r), st.date); err != nil {
			return err
		}
		if err := f.SetCellStyle(sh, cell(5, r), cell(5, r), st.money); err != nil {
			return err
		}
	}
	return f.SetColWidth(sh, "A", "E", 15)
}

func writeBudgets(f *excelize.File, st styles, budgets []core.Budget) error {
	sh := SheetBudgets
	if err := writeHeader(f, st, sh, "Tanggal", "Kategori", "Budget"); err != nil {
		return err
	}
	for i, b := range budgets {
		r := i + 2
		row := []any{b.Date.Time, b.Category, b.Amount}
		if err := f.SetSheetRow(sh, cell(1, r), &row); err != nil {
			return err
		}
		if err := f.SetCellStyle(sh, cell(1, r), cell(1, r), st.date); err != nil {
			return err
		}
		if err := f.SetCellStyle(sh, cell(3, r), cell(3, r), st.money); err != nil {
			return err
		}
	}
	return f.SetColWidth(sh, "A", "C", 15)
}

// groupRow is one line of the 50/30/20 table.
type groupRow struct {
	name   string
	amount int64
	share  decimal.Decimal
	status string
}

func groupRows(g report.GroupTotals) []groupRow {
	needs, wants, savings := g.Shares()
	status := func(ok bool, good, bad string) string {
		if ok {
			return good
		}
		return bad
	}
	return []groupRow{
		{"Needs", g.Needs, needs, status(needs.LessThanOrEqual(idealNeeds), "Ideal: 50%", "Over Budget!")},
		{"Wants", g.Wants, wants, status(wants.LessThanOrEqual(idealWants), "Ideal: 30%", "Over Budget!")},
		{"Savings", g.Savings, savings, status(savings.GreaterThanOrEqual(idealSavings), "Ideal: 20%", "Kurang!")},
	}
}

func writeDashboard(f *excelize.File, st styles, s *report.Snapshot) error {
	sh := SheetDashboard
	type value struct {
		cell  string
		v     any
		style int
	}
	values := []value{
		{"A1", "Enhanced Financial Dashboard", st.header},
		{"A2", "Periode", 0},
		{"C2", fmt.Sprintf("%s s.d. %s", s.Period.Start.Sheet(), s.Period.End.Sheet()), 0},
		{"A3", "Total Pemasukan", 0},
		{"C3", s.Income(), st.money},
		{"A4", "Total Pengeluaran", 0},
		{"C4", s.Expense(), st.money},
		{"A5", "Saldo", 0},
		{"C5", s.Balance(), st.money},
		{"A7", "50/30/20 Analysis", st.header},
		{"A8", "Group", st.header},
		{"B8", "Nominal", st.header},
		{"C8", "Persentase", st.header},
		{"D8", "Status", st.header},
	}
	for i, g := range groupRows(s.GroupTotals()) {
		r := 9 + i
		share, _ := g.share.Float64()
		values = append(values,
			value{cell(1, r), g.name, 0},
			value{cell(2, r), g.amount, st.money},
			value{cell(3, r), share, st.percent},
			value{cell(4, r), g.status, 0},
		)
	}
	values = append(values,
		value{"A13", "Ideal Ratio Targets", st.header},
		value{"A14", "Needs: 50% (Kebutuhan)", 0},
		value{"A15", "Wants: 30% (Keinginan)", 0},
		value{"A16", "Savings: 20% (Tabungan)", 0},
	)

	for _, v := range values {
		if err := f.SetCellValue(sh, v.cell, v.v); err != nil {
			return err
		}
		if v.style != 0 {
			if err := f.SetCellStyle(sh, v.cell, v.cell, v.style); err != nil {
				return err
			}
		}
	}
	for _, w := range []struct {
		col   string
		width float64
	}{{"A", 25}, {"B", 15}, {"C", 15}, {"D", 20}} {
		if err := f.SetColWidth(sh, w.col, w.col, w.width); err != nil {
			return err
		}
	}
	return nil
}
