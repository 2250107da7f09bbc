package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/log"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/notify"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/present"
)

type commandFunc func(ctx context.Context, msg *tgbotapi.Message) error

func (b *Bot) commandTable() map[string]commandFunc {
	return map[string]commandFunc{
		"start":         b.cmdStart,
		"menu":          b.cmdMenu,
		"help":          b.cmdHelp,
		"export":        b.cmdExport,
		"set_anggaran":  b.cmdSetBudget,
		"cek_anggaran":  b.cmdCheckBudget,
		"list_anggaran": b.cmdListBudgets,
		"laporanhari":   b.cmdDailyReport,
		"laporanminggu": b.cmdWeeklyReport,
		"laporanbulan":  b.cmdMonthlyReport,
		"rekapbulanan":  b.cmdMonthRecap,
		"status":        b.cmdStatus,
		"tips":          b.cmdTips,
		"notif":         b.cmdNotif,
		"broadcast":     b.cmdBroadcast,
		"test_morning":  b.cmdTestMorning,
		"test_evening":  b.cmdTestEvening,
		"test_budget":   b.cmdTestBudget,
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	name := strings.ToLower(msg.Command())
	start := time.Now()

	fn, ok := b.commands[name]
	if !ok {
		_, err := b.sendHTML(msg.Chat.ID, present.UnknownCommand(strings.Fields(msg.Text)[0]),
			column(homeButton, button("❓ Bantuan", cbHelp)))
		return err
	}

	err := fn(ctx, msg)
	b.events.LogCommand(ctx, name, time.Since(start).Milliseconds(), err)
	return err
}

func (b *Bot) cmdStart(ctx context.Context, msg *tgbotapi.Message) error {
	registered := ""
	if b.notifier != nil {
		if err := b.notifier.Register(ctx, msg.Chat.ID, msg.From.UserName); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Register user failed", log.FieldError, err)
		} else {
			registered = registeredLine
		}
	}
	_, err := b.sendHTML(msg.Chat.ID, fmt.Sprintf(welcomeText, registered), mainMenu())
	return err
}

func (b *Bot) cmdMenu(_ context.Context, msg *tgbotapi.Message) error {
	_, err := b.sendHTML(msg.Chat.ID, menuText, mainMenu())
	return err
}

func (b *Bot) cmdHelp(_ context.Context, msg *tgbotapi.Message) error {
	_, err := b.sendHTML(msg.Chat.ID, helpText, column(homeButton))
	return err
}

func (b *Bot) cmdExport(ctx context.Context, msg *tgbotapi.Message) error {
	args := msg.CommandArguments()
	r, err := core.RangeFromArgs(args, b.today())
	if err != nil {
		_, sendErr := b.sendHTML(msg.Chat.ID, exportUsageText,
			column(button("📤 Menu Export", cbMenuExport), homeButton))
		return sendErr
	}
	return b.sendExport(ctx, msg.Chat.ID, msg.From.ID, r, exportPeriodName(args))
}

func exportPeriodName(args string) string {
	switch s := strings.TrimSpace(args); {
	case s == "":
		return "Bulan Ini"
	case strings.EqualFold(s, "tahun"):
		return "Tahun Ini"
	}
	return "Custom Period"
}

// parseBudgetArgs reads "<kategori> <jumlah>". The amount may carry "Rp"
// and thousands separators but must be readable and positive.
func parseBudgetArgs(args string) (category string, amount int64, ok bool) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return "", 0, false
	}
	res := core.CleanInteger(strings.Join(fields[1:], ""))
	if !res.Ok() || res.Int() <= 0 {
		return "", 0, false
	}
	return core.NormalizeCategory(fields[0]), res.Int(), true
}

func (b *Bot) cmdSetBudget(ctx context.Context, msg *tgbotapi.Message) error {
	category, amount, ok := parseBudgetArgs(msg.CommandArguments())
	if !ok {
		_, err := b.sendHTML(msg.Chat.ID, setBudgetUsageText,
			column(button("🎯 Panduan Set Anggaran", cbGuideSetBudget), homeButton))
		return err
	}

	today := b.today()
	budget := core.Budget{Date: today, Category: category, Amount: amount, UserID: msg.From.ID}
	if _, err := b.store.AppendBudget(ctx, budget); err != nil {
		return b.fail(msg.Chat.ID, fmt.Errorf("append budget: %w", err))
	}
	log.FromContext(ctx).InfoContext(ctx, "Budget recorded",
		log.FieldCategory, category, log.FieldAmount, amount, log.FieldOperation, log.OpAppend)

	month, err := b.loader.Load(ctx, msg.From.ID, core.MonthRange(today))
	if err != nil {
		return b.fail(msg.Chat.ID, fmt.Errorf("load month: %w", err))
	}
	_, err = b.sendHTML(msg.Chat.ID, present.BudgetSet(budget, month.Spent(category)), column(
		button("💰 Kelola Anggaran", cbMenuBudget),
		button("📊 Dashboard Anggaran", cbListBudget),
		homeButton,
	))
	return err
}

func (b *Bot) cmdCheckBudget(ctx context.Context, msg *tgbotapi.Message) error {
	category := core.NormalizeCategory(msg.CommandArguments())
	if category == "" {
		_, err := b.sendHTML(msg.Chat.ID, checkBudgetUsageText,
			column(button("💰 Panduan Cek Anggaran", cbGuideCheckBudget), homeButton))
		return err
	}

	today := b.today()
	month, err := b.loader.Load(ctx, msg.From.ID, core.MonthRange(today))
	if err != nil {
		return b.fail(msg.Chat.ID, fmt.Errorf("load month: %w", err))
	}
	_, err = b.sendHTML(msg.Chat.ID, present.BudgetCheck(category, month, today), column(
		button("💰 Kelola Anggaran", cbMenuBudget),
		button("📊 Dashboard Lengkap", cbListBudget),
		homeButton,
	))
	return err
}

func (b *Bot) cmdListBudgets(ctx context.Context, msg *tgbotapi.Message) error {
	month, err := b.loader.Load(ctx, msg.From.ID, core.MonthRange(b.today()))
	if err != nil {
		return b.fail(msg.Chat.ID, fmt.Errorf("load month: %w", err))
	}
	_, err = b.sendHTML(msg.Chat.ID, present.BudgetDashboard(month), column(
		button("🎯 Set Anggaran Baru", cbGuideSetBudget),
		button("💰 Menu Anggaran", cbMenuBudget),
		button("📊 Lihat Laporan", cbMenuReport),
		homeButton,
	))
	return err
}

func (b *Bot) cmdDailyReport(ctx context.Context, msg *tgbotapi.Message) error {
	title, r := dayReport(b.today())
	return b.sendReport(ctx, msg.Chat.ID, msg.From.ID, title, r)
}

func (b *Bot) cmdWeeklyReport(ctx context.Context, msg *tgbotapi.Message) error {
	title, r := weekReport(b.today())
	return b.sendReport(ctx, msg.Chat.ID, msg.From.ID, title, r)
}

func (b *Bot) cmdMonthlyReport(ctx context.Context, msg *tgbotapi.Message) error {
	title, r := monthReport(b.today())
	return b.sendReport(ctx, msg.Chat.ID, msg.From.ID, title, r)
}

func (b *Bot) cmdMonthRecap(ctx context.Context, msg *tgbotapi.Message) error {
	r, err := core.MonthFromArgs(msg.CommandArguments())
	if err != nil {
		_, sendErr := b.sendHTML(msg.Chat.ID, recapUsageText,
			column(button("📊 Panduan Laporan", cbGuideCustomReport), homeButton))
		return sendErr
	}
	return b.sendReport(ctx, msg.Chat.ID, msg.From.ID, present.RecapTitle(r), r)
}

// sendReport renders the full report for r with the report-menu keyboard.
func (b *Bot) sendReport(ctx context.Context, chatID, userID int64, title string, r core.Range) error {
	s, err := b.loader.Load(ctx, userID, r)
	if err != nil {
		return b.fail(chatID, fmt.Errorf("load report %s: %w", r, err))
	}
	_, err = b.sendHTML(chatID, present.Report(title, s),
		column(button("📊 Menu Laporan", cbMenuReport), homeButton))
	return err
}

func (b *Bot) cmdStatus(ctx context.Context, msg *tgbotapi.Message) error {
	today := b.today()
	snaps, err := b.loader.LoadPeriods(ctx, msg.From.ID, core.DayRange(today), core.MonthRange(today))
	if err != nil {
		return b.fail(msg.Chat.ID, fmt.Errorf("load status: %w", err))
	}
	_, err = b.sendHTML(msg.Chat.ID, present.Status(snaps[0], snaps[1]), column(
		button("📊 Laporan Lengkap", cbReportMonthly),
		button("💰 Dashboard Anggaran", cbListBudget),
		homeButton,
	))
	return err
}

func (b *Bot) cmdTips(ctx context.Context, msg *tgbotapi.Message) error {
	month, err := b.loader.Load(ctx, msg.From.ID, core.MonthRange(b.today()))
	if err != nil {
		return b.fail(msg.Chat.ID, fmt.Errorf("load month: %w", err))
	}
	_, err = b.sendHTML(msg.Chat.ID, present.Tips(month), column(
		button("📊 Lihat Laporan", cbMenuReport),
		button("💰 Kelola Anggaran", cbMenuBudget),
		homeButton,
	))
	return err
}

var switchWords = map[string]bool{
	"on": true, "ya": true, "aktif": true, "true": true,
	"off": false, "tidak": false, "mati": false, "false": false,
}

// cmdNotif shows the notification preferences, or with "<jenis> on|off"
// changes one of them.
func (b *Bot) cmdNotif(ctx context.Context, msg *tgbotapi.Message) error {
	if b.notifier == nil {
		_, err := b.sendHTML(msg.Chat.ID, notifDisabledText, nil)
		return err
	}

	fields := strings.Fields(msg.CommandArguments())
	if len(fields) == 0 {
		prefs, err := b.notifier.Preferences(ctx, msg.From.ID)
		if err != nil {
			return b.fail(msg.Chat.ID, err)
		}
		_, err = b.sendHTML(msg.Chat.ID, preferencesText(prefs, ""), nil)
		return err
	}

	var pref notify.Preference
	var on, ok bool
	if len(fields) == 2 {
		if pref, ok = notify.ParsePreference(fields[0]); ok {
			on, ok = switchWords[strings.ToLower(fields[1])]
		}
	}
	if !ok {
		_, err := b.sendHTML(msg.Chat.ID, notifUsageText, nil)
		return err
	}

	prefs, err := b.notifier.UpdatePreferences(ctx, msg.From.ID, map[notify.Preference]bool{pref: on})
	if err != nil {
		return b.fail(msg.Chat.ID, err)
	}
	_, err = b.sendHTML(msg.Chat.ID, preferencesText(prefs, "✅ Pengaturan notifikasi diperbarui!\n\n"), nil)
	return err
}

var preferenceLabels = map[notify.Preference]string{
	notify.PrefNotifications: "Semua notifikasi (semua)",
	notify.PrefMorning:       "Pengingat pagi (pagi)",
	notify.PrefLunch:         "Pengingat siang (siang)",
	notify.PrefEvening:       "Ringkasan malam (malam)",
	notify.PrefBudgetAlerts:  "Peringatan anggaran (budget)",
	notify.PrefWeekly:        "Laporan mingguan (mingguan)",
}

func preferencesText(prefs core.UserPrefs, header string) string {
	var s strings.Builder
	s.WriteString(header)
	s.WriteString("🔔 <b>Pengaturan Notifikasi</b>\n\n")
	for _, p := range notify.AllPreferences {
		mark := "❌"
		if p.Get(prefs) {
			mark = "✅"
		}
		fmt.Fprintf(&s, "%s %s\n", mark, preferenceLabels[p])
	}
	s.WriteString("\n💡 Ubah dengan <code>/notif [jenis] on|off</code>")
	return s.String()
}

func (b *Bot) cmdBroadcast(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isAdmin(msg.From.ID) {
		_, err := b.sendHTML(msg.Chat.ID, adminOnlyText, nil)
		return err
	}
	if b.notifier == nil {
		_, err := b.sendHTML(msg.Chat.ID, notifDisabledText, nil)
		return err
	}
	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		_, err := b.sendHTML(msg.Chat.ID, broadcastUsageText, nil)
		return err
	}

	n, err := b.notifier.Broadcast(ctx, present.Esc(text), nil)
	if err != nil && !errors.Is(err, context.Canceled) {
		return b.fail(msg.Chat.ID, fmt.Errorf("broadcast: %w", err))
	}
	_, sendErr := b.sendHTML(msg.Chat.ID, fmt.Sprintf(broadcastDoneText, n), nil)
	return errors.Join(err, sendErr)
}

// runTest runs a notification job on demand and replies with the outcome.
func (b *Bot) runTest(ctx context.Context, msg *tgbotapi.Message, job, what, done string) error {
	if len(b.admins) > 0 && !b.isAdmin(msg.From.ID) {
		return b.reply(msg.Chat.ID, msg.MessageID, adminOnlyText)
	}
	if b.notifier == nil {
		return b.reply(msg.Chat.ID, msg.MessageID, notifDisabledText)
	}
	if _, err := b.notifier.Run(ctx, job); err != nil {
		return errors.Join(err, b.reply(msg.Chat.ID, msg.MessageID, fmt.Sprintf(testFailedText, what, err)))
	}
	return b.reply(msg.Chat.ID, msg.MessageID, done)
}

func (b *Bot) cmdTestMorning(ctx context.Context, msg *tgbotapi.Message) error {
	return b.runTest(ctx, msg, notify.JobMorning, "morning reminder", morningSentText)
}

func (b *Bot) cmdTestEvening(ctx context.Context, msg *tgbotapi.Message) error {
	return b.runTest(ctx, msg, notify.JobEvening, "evening summary", eveningSentText)
}

func (b *Bot) cmdTestBudget(ctx context.Context, msg *tgbotapi.Message) error {
	return b.runTest(ctx, msg, notify.JobAlerts, "budget alert", budgetCheckedText)
}
