package present

import (
	"fmt"
	"strings"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/report"
)

const (
	recentLimit    = 5
	recentDescLen  = 20
	dashboardTips  = 2
	impactBarWidth = 12
	budgetBarWidth = 15
	totalBarWidth  = 20
)

// DayTitle is "Laporan Hari 05-01-2024".
func DayTitle(d core.Date) string { return "Laporan Hari " + d.Sheet() }

// WeekTitle is "Laporan Minggu 01-01 - 07-01".
func WeekTitle(r core.Range) string {
	return "Laporan Minggu " + r.Start.Format("02-01") + " - " + r.End.Format("02-01")
}

// MonthTitle is "Laporan Bulan January 2024".
func MonthTitle(r core.Range) string { return "Laporan Bulan " + MonthName(r.Start) }

// RecapTitle is "Rekap Bulan January 2024".
func RecapTitle(r core.Range) string { return "Rekap Bulan " + MonthName(r.Start) }

// MonthName is "January 2024".
func MonthName(d core.Date) string { return d.Format("January 2006") }

func balanceStatus(balance int64) (string, string) {
	switch {
	case balance > 0:
		return "💚", "Surplus"
	case balance == 0:
		return "⚖️", "Break Even"
	default:
		return "💔", "Defisit"
	}
}

// Report renders the full period report: totals, chart, per-category
// breakdown, budget bars, tips and the most recent transactions.
func Report(title string, s *report.Snapshot) string {
	emoji, status := balanceStatus(s.Balance())

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s</b>\n\n", emoji, title)
	fmt.Fprintf(&b, "📥 Pemasukan: %s\n", Rupiah(s.Income()))
	fmt.Fprintf(&b, "📤 Pengeluaran: %s\n", Rupiah(s.Expense()))
	fmt.Fprintf(&b, "💰 Saldo: %s (%s)\n\n", Rupiah(s.Balance()), status)

	detail := s.Detail()
	if len(detail.ByCategory) > 0 {
		b.WriteString(SpendingChart(detail.ByCategory))
		b.WriteString("\n\n📂 <b>Detail Pengeluaran:</b>\n")
		total := core.Sum(detail.ByCategory)
		for _, it := range core.SortedAmounts(detail.ByCategory) {
			pct := report.Percent(it.Amount, total)
			fmt.Fprintf(&b, "• %s: %s (%s%%)\n  <code>%s</code>\n",
				Esc(Title(it.Name)), Rupiah(it.Amount), pct.StringFixed(1), MiniBar(pct))
		}
	}

	if cats := s.BudgetCategories(); len(cats) > 0 {
		b.WriteString("\n💰 <b>Status Anggaran:</b>\n")
		for _, cat := range cats {
			st := s.Status(cat)
			bar, marker := ProgressBar(st.Spent, st.Budget, budgetBarWidth)
			label, _ := BudgetHealth(st.Percent)
			fmt.Fprintf(&b, "%s <b>%s</b> %s\n<code>%s</code>\n%s / %s\n\n",
				marker, Esc(Title(cat)), HealthWord(label), bar, Rupiah(st.Spent), Rupiah(st.Budget))
		}
	}

	if tips := SmartTips(s); len(tips) > 0 {
		b.WriteString("💡 <b>Smart Tips & Insights:</b>\n")
		for _, tip := range tips {
			fmt.Fprintf(&b, "• %s\n", tip)
		}
		b.WriteString("\n")
	}

	if n := s.Count(); n > 0 {
		b.WriteString("📝 <b>Transaksi Terbaru:</b>\n")
		for _, tx := range s.Recent(recentLimit) {
			mark, sign := "📤", "-"
			if tx.Kind == core.KindIncome {
				mark, sign = "📥", "+"
			}
			fmt.Fprintf(&b, "%s %s: %s %s%s\n",
				mark, tx.Date.Format("02/01"), Esc(truncate(tx.Description, recentDescLen)), sign, Rupiah(tx.Amount))
		}
		if n > recentLimit {
			fmt.Fprintf(&b, "... dan %d transaksi lainnya\n", n-recentLimit)
		}
	}
	return b.String()
}

// Status renders the quick status: today's totals, the month's totals and
// any budget above 80%.
func Status(today, month *report.Snapshot) string {
	var emoji string
	switch bal := month.Balance(); {
	case bal > 0:
		emoji = "💚"
	case bal < 0:
		emoji = "💔"
	default:
		emoji = "⚖️"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>Quick Financial Status</b>\n\n", emoji)
	fmt.Fprintf(&b, "📅 <b>HARI INI (%s)</b>\n", today.Period.Start.Sheet())
	fmt.Fprintf(&b, "📥 Pemasukan: %s\n", Rupiah(today.Income()))
	fmt.Fprintf(&b, "📤 Pengeluaran: %s\n", Rupiah(today.Expense()))
	fmt.Fprintf(&b, "💰 Net: %s\n\n", Rupiah(today.Balance()))
	fmt.Fprintf(&b, "📅 <b>BULAN INI (%s)</b>\n", MonthName(month.Period.Start))
	fmt.Fprintf(&b, "📥 Pemasukan: %s\n", Rupiah(month.Income()))
	fmt.Fprintf(&b, "📤 Pengeluaran: %s\n", Rupiah(month.Expense()))
	fmt.Fprintf(&b, "💰 Saldo: %s\n", Rupiah(month.Balance()))

	if cats := month.BudgetCategories(); len(cats) > 0 {
		b.WriteString("\n💰 <b>QUICK BUDGET CHECK</b>\n")
		critical := 0
		for _, cat := range cats {
			st := month.Status(cat)
			if !st.Percent.GreaterThan(pct80) {
				continue
			}
			critical++
			marker := MarkerHigh
			if st.Percent.GreaterThan(pct100) {
				marker = MarkerCritical
			}
			fmt.Fprintf(&b, "%s %s: %s%%\n", marker, Esc(Title(cat)), st.Percent.StringFixed(0))
		}
		if critical == 0 {
			b.WriteString("🟢 Semua anggaran masih aman!")
		}
	}
	return b.String()
}

// Tips renders the numbered smart tips for the month followed by a few
// fixed quotes.
func Tips(month *report.Snapshot) string {
	var b strings.Builder
	b.WriteString("💡 <b>Smart Financial Tips</b>\n")
	fmt.Fprintf(&b, "📅 <b>Berdasarkan data bulan %s</b>\n\n", MonthName(month.Period.Start))

	if tips := SmartTips(month); len(tips) > 0 {
		for i, tip := range tips {
			fmt.Fprintf(&b, "%d. %s\n\n", i+1, tip)
		}
	} else {
		b.WriteString("🎯 Belum cukup data untuk memberikan tips personal.\n\n")
		b.WriteString("💡 <b>Tips Umum:</b>\n")
		b.WriteString("• Catat setiap transaksi untuk tracking yang akurat\n")
		b.WriteString("• Set anggaran untuk setiap kategori pengeluaran\n")
		b.WriteString("• Review laporan mingguan untuk evaluasi\n")
		b.WriteString("• Terapkan aturan 50/30/20 untuk alokasi dana\n\n")
	}

	b.WriteString("📚 <b>Financial Wisdom:</b>\n")
	b.WriteString("• 'A budget is telling your money where to go instead of wondering where it went.'\n")
	b.WriteString("• 'It's not how much money you make, but how much money you keep.'\n")
	b.WriteString("• 'Don't save what is left after spending, spend what is left after saving.'")
	return b.String()
}

// NoBudgetsYet is shown by the budget dashboard when the month has no budget rows.
const NoBudgetsYet = `⚠️ <b>Belum ada anggaran bulan ini</b>

🎯 <b>Mulai kelola keuangan Anda:</b>

💡 Set anggaran pertama:
<code>/set_anggaran [kategori] [jumlah]</code>

<b>Contoh kategori penting:</b>
• <code>/set_anggaran makanan 1000000</code>
• <code>/set_anggaran transport 500000</code>
• <code>/set_anggaran tagihan 800000</code>
• <code>/set_anggaran hiburan 300000</code>`

const noBudgetsCompact = "⚠️ <b>Belum ada anggaran bulan ini</b>\n\n💡 Set anggaran pertama Anda dengan:\n<code>/set_anggaran [kategori] [jumlah]</code>"

func budgetTotals(month *report.Snapshot) (budget, spent int64) {
	for _, st := range month.BudgetStatuses() {
		budget += st.Budget
		spent += st.Spent
	}
	return budget, spent
}

// BudgetDashboard renders every budget of the month, highest usage first,
// with an overall bar and two tips.
func BudgetDashboard(month *report.Snapshot) string {
	statuses := month.BudgetStatuses()
	if len(statuses) == 0 {
		return NoBudgetsYet
	}
	totalBudget, totalSpent := budgetTotals(month)

	var b strings.Builder
	b.WriteString("💰 <b>Dashboard Anggaran Enhanced</b>\n")
	fmt.Fprintf(&b, "📅 <b>Bulan %s</b>\n\n", MonthName(month.Period.Start))

	overallBar, overallMarker := ProgressBar(totalSpent, totalBudget, totalBarWidth)
	overallLabel, _ := BudgetHealth(report.Percent(totalSpent, totalBudget))
	b.WriteString("📊 <b>RINGKASAN KESELURUHAN</b>\n")
	fmt.Fprintf(&b, "%s <code>%s</code>\n", overallMarker, overallBar)
	fmt.Fprintf(&b, "Status: %s\n", overallLabel)
	fmt.Fprintf(&b, "💰 Total Budget: %s\n", Rupiah(totalBudget))
	fmt.Fprintf(&b, "📤 Total Terpakai: %s\n", Rupiah(totalSpent))
	fmt.Fprintf(&b, "💎 Total Sisa: %s\n\n", Rupiah(totalBudget-totalSpent))

	b.WriteString("📋 <b>DETAIL PER KATEGORI</b>\n\n")
	for _, st := range statuses {
		bar, marker := ProgressBar(st.Spent, st.Budget, budgetBarWidth)
		label, advice := BudgetHealth(st.Percent)
		fmt.Fprintf(&b, "%s <b>%s</b> - %s\n<code>%s</code>\n", marker, Esc(Title(st.Category)), HealthWord(label), bar)
		fmt.Fprintf(&b, "Budget: %s | Terpakai: %s | Sisa: %s\n", Rupiah(st.Budget), Rupiah(st.Spent), Rupiah(st.Remaining))
		if st.Percent.GreaterThan(pct80) {
			fmt.Fprintf(&b, "💡 %s\n", advice)
		}
		b.WriteString("\n")
	}

	if tips := SmartTips(month); len(tips) > 0 {
		b.WriteString("💡 <b>SMART RECOMMENDATIONS:</b>\n")
		for i, tip := range tips {
			if i == dashboardTips {
				break
			}
			fmt.Fprintf(&b, "• %s\n", tip)
		}
	}
	return b.String()
}

// BudgetDashboardCompact is the inline-menu variant: budgets in the order
// they were set, then the overall bar.
func BudgetDashboardCompact(month *report.Snapshot) string {
	cats := month.BudgetCategories()
	if len(cats) == 0 {
		return noBudgetsCompact
	}
	totalBudget, totalSpent := budgetTotals(month)

	var b strings.Builder
	fmt.Fprintf(&b, "💰 <b>Dashboard Anggaran Bulan %s</b>\n\n", MonthName(month.Period.Start))
	for _, cat := range cats {
		st := month.Status(cat)
		bar, marker := ProgressBar(st.Spent, st.Budget, budgetBarWidth)
		label, _ := BudgetHealth(st.Percent)
		fmt.Fprintf(&b, "%s <b>%s</b> - %s\n<code>%s</code>\n", marker, Esc(Title(cat)), HealthWord(label), bar)
		fmt.Fprintf(&b, "   Budget: %s | Terpakai: %s | Sisa: %s\n\n", Rupiah(st.Budget), Rupiah(st.Spent), Rupiah(st.Remaining))
	}

	overallBar, overallMarker := ProgressBar(totalSpent, totalBudget, totalBarWidth)
	b.WriteString("📊 <b>RINGKASAN KESELURUHAN</b>\n")
	fmt.Fprintf(&b, "%s <code>%s</code>\n", overallMarker, overallBar)
	fmt.Fprintf(&b, "💰 <b>Total Budget:</b> %s\n", Rupiah(totalBudget))
	fmt.Fprintf(&b, "📤 <b>Total Terpakai:</b> %s\n", Rupiah(totalSpent))
	fmt.Fprintf(&b, "💎 <b>Total Sisa:</b> %s", Rupiah(totalBudget-totalSpent))
	return b.String()
}

// BudgetCheck renders one category's budget with a month-end projection.
// Without a budget it suggests setting one.
func BudgetCheck(category string, month *report.Snapshot, today core.Date) string {
	st := month.Status(category)
	name := Esc(Title(category))
	raw := Esc(category)

	if st.Budget <= 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "⚠️ <b>Belum ada anggaran untuk '%s'</b>\n\n", name)
		b.WriteString("💡 <b>Set anggaran sekarang:</b>\n")
		fmt.Fprintf(&b, "<code>/set_anggaran %s [jumlah]</code>\n\n", raw)
		b.WriteString("<b>Contoh:</b>\n")
		fmt.Fprintf(&b, "<code>/set_anggaran %s 500000</code>\n\n", raw)
		fmt.Fprintf(&b, "💸 <b>Pengeluaran bulan ini:</b> %s", Rupiah(st.Spent))
		return b.String()
	}

	bar, marker := ProgressBar(st.Spent, st.Budget, totalBarWidth)
	label, advice := BudgetHealth(st.Percent)
	proj := report.Project(st.Spent, st.Budget, today)

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>Status Anggaran: %s</b>\n\n", marker, name)
	fmt.Fprintf(&b, "📊 <b>Progress Visual:</b>\n<code>%s</code>\n\n", bar)
	fmt.Fprintf(&b, "💰 <b>Budget:</b> %s\n", Rupiah(st.Budget))
	fmt.Fprintf(&b, "📤 <b>Terpakai:</b> %s\n", Rupiah(st.Spent))
	fmt.Fprintf(&b, "💎 <b>Sisa:</b> %s\n\n", Rupiah(st.Remaining))
	fmt.Fprintf(&b, "🎯 <b>Status:</b> %s\n", label)
	fmt.Fprintf(&b, "💡 <b>Saran:</b> %s\n\n", advice)
	b.WriteString("📈 <b>Analisis Tambahan:</b>\n")
	fmt.Fprintf(&b, "• Hari tersisa bulan ini: %d hari\n", proj.DaysLeft)
	fmt.Fprintf(&b, "• Rata-rata harian: %s\n", RupiahDec(proj.DailyAverage))

	if proj.Projected.IsPositive() {
		projected := RupiahDec(proj.Projected)
		switch {
		case proj.Percent.GreaterThan(pct100):
			fmt.Fprintf(&b, "⚠️ Proyeksi akhir bulan: %s (OVER BUDGET %s%%!)", projected, proj.Percent.Sub(pct100).StringFixed(0))
		case proj.Percent.GreaterThan(pct90):
			fmt.Fprintf(&b, "🟠 Proyeksi akhir bulan: %s (Hampir habis!)", projected)
		default:
			fmt.Fprintf(&b, "✅ Proyeksi akhir bulan: %s (Aman)", projected)
		}
	}
	return b.String()
}

// BudgetSet confirms a newly recorded budget and, when the category already
// has spending this month, shows where it stands against the new amount.
func BudgetSet(b core.Budget, spent int64) string {
	var out strings.Builder
	out.WriteString("✅ <b>Anggaran berhasil diset!</b>\n\n")
	fmt.Fprintf(&out, "📂 <b>Kategori:</b> %s\n", Esc(Title(b.Category)))
	fmt.Fprintf(&out, "💰 <b>Jumlah:</b> %s\n", Rupiah(b.Amount))
	fmt.Fprintf(&out, "📅 <b>Berlaku:</b> %s\n\n", b.Date.Sheet())

	if spent <= 0 {
		out.WriteString("🆕 <b>Anggaran baru!</b> Belum ada pengeluaran di kategori ini bulan ini.")
		return out.String()
	}
	pct := report.Percent(spent, b.Amount)
	bar, marker := ProgressBar(spent, b.Amount, budgetBarWidth)
	label, advice := BudgetHealth(pct)
	out.WriteString("📊 <b>Status saat ini:</b>\n")
	fmt.Fprintf(&out, "%s <code>%s</code>\n", marker, bar)
	fmt.Fprintf(&out, "Sudah terpakai: %s (%s%%)\n", Rupiah(spent), pct.StringFixed(1))
	fmt.Fprintf(&out, "Sisa: %s\n", Rupiah(b.Amount-spent))
	fmt.Fprintf(&out, "Status: %s\n\n", label)
	fmt.Fprintf(&out, "💡 %s", advice)
	return out.String()
}

// Recorded is the outcome of one free-text message.
type Recorded struct {
	Saved  []core.ParsedLine
	Failed []core.LineError
	// Unsaved lines parsed but could not be written to the store.
	Unsaved []string
}

// TransactionReply confirms the saved lines, shows the month's budget
// impact of each expense line whose category has a budget, and lists the
// rejected lines with a format hint. month must be loaded after the saves.
func TransactionReply(r Recorded, month *report.Snapshot) string {
	var b strings.Builder
	if len(r.Saved) > 0 {
		b.WriteString("✅ <b>TRANSAKSI BERHASIL DICATAT:</b>\n\n")
		lines := make([]string, 0, len(r.Saved))
		hasExpense := false
		for _, p := range r.Saved {
			mark := "📤"
			if p.Kind == core.KindIncome {
				mark = "📥"
			} else {
				hasExpense = true
			}
			line := fmt.Sprintf("%s <b>%s</b> dicatat: %s %s (%s)",
				mark, p.Kind.Title(), Esc(p.Description), Rupiah(p.Amount), Esc(p.Category))
			if p.AmountState == core.IntUnparseable {
				line += "\n⚠️ Nominal tidak terbaca, dicatat sebagai Rp0"
			}
			lines = append(lines, line)
		}
		b.WriteString(strings.Join(lines, "\n"))

		if hasExpense && month != nil {
			b.WriteString("\n\n📊 <b>DAMPAK TERHADAP ANGGARAN:</b>\n")
			for _, p := range r.Saved {
				if p.Kind != core.KindExpense || month.Budget(p.Category) <= 0 {
					continue
				}
				st := month.Status(p.Category)
				bar, marker := ProgressBar(st.Spent, st.Budget, impactBarWidth)
				label, _ := BudgetHealth(st.Percent)
				fmt.Fprintf(&b, "%s <b>%s:</b> %s\n<code>%s</code>\nTerpakai: %s dari %s\n\n",
					marker, Esc(Title(p.Category)), HealthWord(label), bar, Rupiah(st.Spent), Rupiah(st.Budget))
			}
		}
	}

	if len(r.Unsaved) > 0 {
		b.WriteString("\n\n⚠️ <b>GAGAL DISIMPAN:</b>\n")
		for _, line := range r.Unsaved {
			b.WriteString(Esc(line) + "\n")
		}
		b.WriteString("💡 Coba kirim ulang dalam beberapa saat.")
	}

	if len(r.Failed) > 0 {
		b.WriteString("\n\n❌ <b>FORMAT SALAH:</b>\n")
		lines := make([]string, 0, len(r.Failed))
		for _, f := range r.Failed {
			lines = append(lines, Esc(f.Line))
		}
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n\n💡 <b>Format yang benar:</b> <code>[keterangan] +/-[jumlah] /[kategori]</code>\n")
		b.WriteString("<b>Contoh:</b> <code>Makan siang -25000 /makanan</code>")
	}
	return strings.TrimLeft(b.String(), "\n")
}

// UnknownCommand echoes an unrecognised command with pointers to help.
func UnknownCommand(text string) string {
	return fmt.Sprintf(`❓ <b>Perintah tidak dikenal:</b> <code>%s</code>

🤖 <b>Mungkin maksud Anda:</b>
• <code>/menu</code> - Menu utama
• <code>/help</code> - Panduan lengkap
• <code>/status</code> - Status keuangan cepat
• <code>/tips</code> - Tips finansial personal

📝 <b>Untuk catat transaksi:</b>
<code>[keterangan] +/-[jumlah] /[kategori]</code>

<b>Contoh:</b> <code>Makan siang -25000 /makanan</code>`, Esc(text))
}

// ExportProgress is the loading message shown while an export is built.
func ExportProgress(period, step string) string {
	return fmt.Sprintf("⏳ Sedang memproses export %s...\n%s", period, step)
}

// Export progress steps.
const (
	StepCollect = "📊 Mengumpulkan data..."
	StepBuild   = "📋 Membuat file Excel..."
	StepSend    = "📤 Mengirim file..."
)

// ExportCaption captions the exported workbook.
func ExportCaption(period string, r core.Range) string {
	return fmt.Sprintf("✅ Export %s berhasil!\n📅 Periode: %s s/d %s", period, r.Start.Sheet(), r.End.Sheet())
}

// ExportFailed reports a failed export.
func ExportFailed(period string, err error) string {
	return fmt.Sprintf("❌ <b>Export %s gagal!</b>\n\n🔍 Error: %s\n\n💡 Coba lagi dalam beberapa saat.", period, Esc(err.Error()))
}
