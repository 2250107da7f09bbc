package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/report"
)

const uid = int64(42)

func sampleSnapshot() *report.Snapshot {
	d := func(day int) core.Date { return core.NewDate(2024, 1, day) }
	rows := report.Rows{
		Transactions: []core.Transaction{
			{Date: d(10), Description: "Bensin", Amount: 20000, Category: "transport", Kind: core.KindExpense, UserID: uid},
			{Date: d(5), Description: "Makan siang", Amount: 55000, Category: "makanan", Kind: core.KindExpense, UserID: uid},
			{Date: d(1), Description: "Gaji", Amount: 3000000, Category: "gaji", Kind: core.KindIncome, UserID: uid},
			{Date: d(2), Description: "Orang lain", Amount: 1, Category: "makanan", Kind: core.KindExpense, UserID: 7},
		},
		Budgets: []core.Budget{
			{Date: d(1), Category: "makanan", Amount: 100000, UserID: uid},
		},
		Groups: []core.CategoryGroup{
			{Category: "makanan", Group: core.GroupNeeds},
			{Category: "transport", Group: core.GroupWants},
		},
	}
	return report.Build(rows, uid, core.MonthRange(d(1)))
}

func raw(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestBuild(t *testing.T) {
	buf, name, err := Build(sampleSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "Export_Enhanced_42_20240101_20240131.xlsx", name)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetTransactions, SheetBudgets, SheetDashboard}, f.GetSheetList())

	t.Run("transactions", func(t *testing.T) {
		rows, err := f.GetRows(SheetTransactions)
		require.NoError(t, err)
		require.Len(t, rows, 4, "header plus the user's rows")
		assert.Equal(t, []string{"Tanggal", "Keterangan", "Kategori", "Tipe", "Nominal"}, rows[0])
		assert.Equal(t, "Gaji", raw(t, f, SheetTransactions, "B2"), "oldest first")
		assert.Equal(t, "pemasukan", raw(t, f, SheetTransactions, "D2"))
		assert.Equal(t, "3000000", raw(t, f, SheetTransactions, "E2"))
		assert.Equal(t, "Bensin", raw(t, f, SheetTransactions, "B4"))
	})

	t.Run("budgets", func(t *testing.T) {
		rows, err := f.GetRows(SheetBudgets)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"Tanggal", "Kategori", "Budget"}, rows[0])
		assert.Equal(t, "makanan", raw(t, f, SheetBudgets, "B2"))
		assert.Equal(t, "100000", raw(t, f, SheetBudgets, "C2"))
	})

	t.Run("dashboard", func(t *testing.T) {
		assert.Equal(t, "Enhanced Financial Dashboard", raw(t, f, SheetDashboard, "A1"))
		assert.Equal(t, "01-01-2024 s.d. 31-01-2024", raw(t, f, SheetDashboard, "C2"))
		assert.Equal(t, "3000000", raw(t, f, SheetDashboard, "C3"))
		assert.Equal(t, "75000", raw(t, f, SheetDashboard, "C4"))
		assert.Equal(t, "2925000", raw(t, f, SheetDashboard, "C5"))

		assert.Equal(t, "Needs", raw(t, f, SheetDashboard, "A9"))
		assert.Equal(t, "55000", raw(t, f, SheetDashboard, "B9"))
		assert.Equal(t, "Over Budget!", raw(t, f, SheetDashboard, "D9"))
		assert.Equal(t, "Ideal: 30%", raw(t, f, SheetDashboard, "D10"))
		assert.Equal(t, "Kurang!", raw(t, f, SheetDashboard, "D11"))
		assert.Equal(t, "Savings: 20% (Tabungan)", raw(t, f, SheetDashboard, "A16"))
	})
}

func TestGroupRowsWithoutSpending(t *testing.T) {
	rows := groupRows(report.GroupTotals{Unmapped: 5000})
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.True(t, r.share.IsZero(), r.name)
	}
	assert.Equal(t, "Ideal: 50%", rows[0].status)
	assert.Equal(t, "Ideal: 30%", rows[1].status)
	assert.Equal(t, "Kurang!", rows[2].status)
}
