package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/log"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/present"
)

type callbackFunc func(ctx context.Context, q *tgbotapi.CallbackQuery) error

// page is a static menu or guide shown by editing the callback's message.
type page struct {
	text   string
	markup tgbotapi.InlineKeyboardMarkup
}

func (b *Bot) callbackTable() map[string]callbackFunc {
	pages := map[string]page{
		cbMainMenu:          {menuCallbackText, mainMenu()},
		cbMenuTransaction:   {transactionMenuText, transactionMenu()},
		cbMenuBudget:        {budgetMenuText, budgetMenu()},
		cbMenuReport:        {reportMenuText, reportMenu()},
		cbMenuExport:        {exportMenuText, exportMenu()},
		cbHelp:              {helpGuideText, column(backHomeButton)},
		cbGuideExpense:      {expenseGuideText, back(cbMenuTransaction)},
		cbGuideIncome:       {incomeGuideText, back(cbMenuTransaction)},
		cbFormatHelp:        {formatGuideText, back(cbMenuTransaction)},
		cbGuideSetBudget:    {setBudgetGuideText, back(cbMenuBudget)},
		cbGuideCheckBudget:  {checkBudgetGuideText, back(cbMenuBudget)},
		cbGuideCustomReport: {customReportGuideText, back(cbMenuReport)},
		cbGuideCustomExport: {customExportGuideText, back(cbMenuExport)},
	}

	table := map[string]callbackFunc{
		cbListBudget:    b.cbListBudget,
		cbReportDaily:   b.cbReport(dayReport),
		cbReportWeekly:  b.cbReport(weekReport),
		cbReportMonthly: b.cbReport(monthReport),
		cbExportMonth:   b.cbExport("Bulan Ini", core.MonthRange),
		cbExportYear:    b.cbExport("Tahun Ini", core.YearRange),
	}
	for data, p := range pages {
		table[data] = b.showPage(p)
	}
	return table
}

// handleCallback runs the handler for q.Data and always answers the query
// so the client stops its spinner.
func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	start := time.Now()
	fn, ok := b.callbacks[q.Data]
	if !ok || q.Message == nil {
		log.FromContext(ctx).WarnContext(ctx, "Unknown callback", log.FieldCallback, q.Data)
		b.answer(q.ID, "")
		return nil
	}

	err := fn(ctx, q)
	b.events.LogCommand(ctx, "callback:"+q.Data, time.Since(start).Milliseconds(), err)
	if err != nil {
		b.answer(q.ID, callbackErrorText)
		return err
	}
	b.answer(q.ID, "")
	return nil
}

func (b *Bot) showPage(p page) callbackFunc {
	return func(ctx context.Context, q *tgbotapi.CallbackQuery) error {
		return b.editOrSend(ctx, q.Message.Chat.ID, q.Message.MessageID, p.text, p.markup)
	}
}

func (b *Bot) cbListBudget(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	month, err := b.loader.Load(ctx, q.From.ID, core.MonthRange(b.today()))
	if err != nil {
		return fmt.Errorf("load month: %w", err)
	}
	return b.editOrSend(ctx, q.Message.Chat.ID, q.Message.MessageID, present.BudgetDashboardCompact(month), column(
		button("🎯 Set Anggaran Baru", cbGuideSetBudget),
		button("💰 Menu Anggaran", cbMenuBudget),
		homeButton,
	))
}

func dayReport(d core.Date) (string, core.Range) {
	return present.DayTitle(d), core.DayRange(d)
}

func weekReport(d core.Date) (string, core.Range) {
	w := core.WeekRange(d)
	return present.WeekTitle(w), w
}

func monthReport(d core.Date) (string, core.Range) {
	m := core.MonthRange(d)
	return present.MonthTitle(m), m
}

// cbReport replaces the menu message with a fresh report message.
func (b *Bot) cbReport(period func(today core.Date) (string, core.Range)) callbackFunc {
	return func(ctx context.Context, q *tgbotapi.CallbackQuery) error {
		title, r := period(b.today())
		b.deleteMessage(ctx, q.Message.Chat.ID, q.Message.MessageID)
		return b.sendReport(ctx, q.Message.Chat.ID, q.From.ID, title, r)
	}
}

func (b *Bot) cbExport(name string, period func(today core.Date) core.Range) callbackFunc {
	return func(ctx context.Context, q *tgbotapi.CallbackQuery) error {
		return b.sendExport(ctx, q.Message.Chat.ID, q.From.ID, period(b.today()), name)
	}
}
