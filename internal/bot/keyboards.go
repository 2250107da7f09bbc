package bot

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Callback data carried by inline buttons.
const (
	cbMainMenu          = "main_menu"
	cbMenuTransaction   = "menu_transaksi"
	cbMenuBudget        = "menu_anggaran"
	cbMenuReport        = "menu_laporan"
	cbMenuExport        = "menu_export"
	cbHelp              = "help"
	cbGuideExpense      = "guide_expense"
	cbGuideIncome       = "guide_income"
	cbFormatHelp        = "format_help"
	cbGuideSetBudget    = "guide_set_budget"
	cbGuideCheckBudget  = "guide_check_budget"
	cbGuideCustomReport = "guide_custom_report"
	cbGuideCustomExport = "guide_export_custom"
	cbListBudget        = "list_budget"
	cbReportDaily       = "report_daily"
	cbReportWeekly      = "report_weekly"
	cbReportMonthly     = "report_monthly"
	cbExportMonth       = "export_month"
	cbExportYear        = "export_year"
)

func button(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

// column puts each button on its own row.
func column(buttons ...tgbotapi.InlineKeyboardButton) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(b))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

var (
	homeButton     = button("🏠 Menu Utama", cbMainMenu)
	backHomeButton = button("🔙 Kembali ke Menu", cbMainMenu)
)

func mainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button("📝 Catat Transaksi", cbMenuTransaction),
			button("💰 Kelola Anggaran", cbMenuBudget),
		),
		tgbotapi.NewInlineKeyboardRow(
			button("📊 Lihat Laporan", cbMenuReport),
			button("📤 Export Data", cbMenuExport),
		),
		tgbotapi.NewInlineKeyboardRow(
			button("❓ Bantuan", cbHelp),
			button("🔄 Refresh Menu", cbMainMenu),
		),
	)
}

func transactionMenu() tgbotapi.InlineKeyboardMarkup {
	return column(
		button("💸 Catat Pengeluaran", cbGuideExpense),
		button("💰 Catat Pemasukan", cbGuideIncome),
		button("📋 Format Input", cbFormatHelp),
		backHomeButton,
	)
}

func budgetMenu() tgbotapi.InlineKeyboardMarkup {
	return column(
		button("🎯 Set Anggaran Baru", cbGuideSetBudget),
		button("💰 Cek Anggaran", cbGuideCheckBudget),
		button("📋 List Semua Anggaran", cbListBudget),
		backHomeButton,
	)
}

func reportMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button("📅 Hari Ini", cbReportDaily),
			button("📅 Minggu Ini", cbReportWeekly),
		),
		tgbotapi.NewInlineKeyboardRow(
			button("📅 Bulan Ini", cbReportMonthly),
			button("📊 Custom Periode", cbGuideCustomReport),
		),
		tgbotapi.NewInlineKeyboardRow(backHomeButton),
	)
}

func exportMenu() tgbotapi.InlineKeyboardMarkup {
	return column(
		button("📤 Export Bulan Ini", cbExportMonth),
		button("📤 Export Tahun Ini", cbExportYear),
		button("📤 Export Custom", cbGuideCustomExport),
		backHomeButton,
	)
}

// back is a single "return to" button under a guide.
func back(data string) tgbotapi.InlineKeyboardMarkup {
	return column(button("🔙 Kembali", data))
}
