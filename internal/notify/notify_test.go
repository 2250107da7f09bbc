package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/present"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/report"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/sheets/memory"
)

type fakeSender struct {
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	failFor map[int64]bool
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := c.(tgbotapi.MessageConfig)
	if f.failFor[m.ChatID] {
		return tgbotapi.Message{}, errors.New("Forbidden: bot was blocked by the user")
	}
	f.sent = append(f.sent, m)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) to(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		if m.ChatID == chatID {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeSender) reset() {
	f.mu.Lock()
	f.sent = nil
	f.mu.Unlock()
}

type fixture struct {
	svc    *Service
	store  *memory.Store
	sender *fakeSender
	clock  *time.Time
}

var wib = time.FixedZone("WIB", 7*60*60)

// newFixture seeds four users on Monday 15 January 2024, 09:00 WIB:
//
//	1 tracked yesterday, makanan at 95% of budget
//	2 no activity, no budget
//	3 morning reminder off, lunch on
//	4 notifications disabled
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New(nil)
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, wib)

	for _, p := range []core.UserPrefs{
		core.DefaultPrefs(1, "ani", now),
		core.DefaultPrefs(2, "budi", now),
		core.DefaultPrefs(3, "cici", now),
		core.DefaultPrefs(4, "dodi", now),
	} {
		switch p.UserID {
		case 3:
			p.MorningReminder = false
			p.LunchReminder = true
		case 4:
			p.NotificationsEnabled = false
		}
		require.NoError(t, store.AddUser(ctx, p))
	}

	for _, tx := range []core.Transaction{
		{Date: core.NewDate(2024, 1, 14), Description: "Kopi", Amount: 20000, Category: "makanan", Kind: core.KindExpense, UserID: 1},
		{Date: core.NewDate(2024, 1, 10), Description: "Belanja", Amount: 75000, Category: "makanan", Kind: core.KindExpense, UserID: 1},
		{Date: core.NewDate(2024, 1, 15), Description: "Gaji", Amount: 500000, Category: "gaji", Kind: core.KindIncome, UserID: 1},
	} {
		_, err := store.AppendTransaction(ctx, tx)
		require.NoError(t, err)
	}
	_, err := store.AppendBudget(ctx, core.Budget{Date: core.NewDate(2024, 1, 1), Category: "makanan", Amount: 100000, UserID: 1})
	require.NoError(t, err)

	f := &fixture{store: store, sender: &fakeSender{}, clock: &now}
	f.svc = New(Deps{
		Users:             store,
		Loader:            report.NewLoader(store, nil),
		Sender:            f.sender,
		Location:          wib,
		BroadcastInterval: time.Millisecond,
		Now:               func() time.Time { return *f.clock },
	})
	return f
}

func TestRegisterAndPreferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Preferences(ctx, 99)
	require.NoError(t, err)
	assert.True(t, p.MorningReminder, "unregistered users see defaults")
	assert.False(t, p.LunchReminder)

	require.NoError(t, f.svc.Register(ctx, 99, "eka"))
	require.NoError(t, f.svc.Register(ctx, 99, "eka"), "registering twice is a no-op")

	users, err := f.store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 5)

	f.clock = ptr(f.clock.Add(time.Hour))
	updated, err := f.svc.UpdatePreferences(ctx, 99, map[Preference]bool{PrefLunch: true, PrefWeekly: false})
	require.NoError(t, err)
	assert.True(t, updated.LunchReminder)
	assert.False(t, updated.WeeklyReport)
	assert.Equal(t, 10, updated.LastActive.Hour())

	stored, err := f.store.GetUser(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestUpdatePreferencesRegistersUnknownUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.UpdatePreferences(ctx, 42, map[Preference]bool{PrefMorning: false})
	require.NoError(t, err)
	assert.False(t, p.MorningReminder)
	assert.True(t, p.EveningSummary)
}

func TestParsePreference(t *testing.T) {
	tests := map[string]Preference{
		"pagi":             PrefMorning,
		"MORNING":          PrefMorning,
		"morning_reminder": PrefMorning,
		"semua":            PrefNotifications,
		"budget":           PrefBudgetAlerts,
		"mingguan":         PrefWeekly,
	}
	for in, want := range tests {
		got, ok := ParsePreference(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParsePreference("tidur")
	assert.False(t, ok)
}

func TestMorningReminders(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.MorningReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, JobResult{Sent: 2, Skipped: 1}, res)

	assert.Equal(t, []string{present.MorningReminder(true)}, f.sender.to(1))
	assert.Equal(t, []string{present.MorningReminder(false)}, f.sender.to(2))
	assert.Empty(t, f.sender.to(3))
	assert.Empty(t, f.sender.to(4), "disabled users are never notified")
}

func TestLunchAndEvening(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.LunchReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, []string{present.LunchReminder}, f.sender.to(3))

	f.sender.reset()
	res, err = f.svc.EveningSummaries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Sent)
	require.Len(t, f.sender.to(1), 1)
	assert.Contains(t, f.sender.to(1)[0], "• Pemasukan: Rp500,000")
	assert.Contains(t, f.sender.to(2)[0], "Belum ada transaksi tercatat hari ini")
}

func TestBudgetAlertsOncePerDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.BudgetAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	require.Len(t, f.sender.to(1), 1)
	assert.Contains(t, f.sender.to(1)[0], "🟠 <b>Makanan</b>")
	assert.Contains(t, f.sender.to(1)[0], "• Used: 95% (Rp95,000 / Rp100,000)")

	f.clock = ptr(f.clock.Add(3 * time.Hour))
	res, err = f.svc.BudgetAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Sent)
	assert.Len(t, f.sender.to(1), 1, "second run on the same day is deduped")

	f.clock = ptr(f.clock.Add(24 * time.Hour))
	res, err = f.svc.BudgetAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
}

func TestBudgetAlertRetriedAfterFailedSend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sender.failFor = map[int64]bool{1: true}

	res, err := f.svc.BudgetAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)

	f.sender.failFor = nil
	res, err = f.svc.BudgetAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)

	hist := f.svc.History().Recent(1)
	require.Len(t, hist, 2)
	assert.False(t, hist[0].Success)
	assert.True(t, hist[1].Success)
}

func TestCheckAndSendBudgetAlert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sent, err := f.svc.CheckAndSendBudgetAlert(ctx, 1)
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = f.svc.CheckAndSendBudgetAlert(ctx, 1)
	require.NoError(t, err)
	assert.True(t, sent, "manual checks are not deduped")

	sent, err = f.svc.CheckAndSendBudgetAlert(ctx, 2)
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestTransactionConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.TransactionConfirmation(ctx, 1, 1, core.KindExpense, 20000, "makanan"))
	msgs := f.sender.to(1)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "📤 <b>Transaksi Tercatat!</b>")
	assert.Contains(t, msgs[0], "Budget makanan sudah 95% terpakai!")

	require.NoError(t, f.svc.TransactionConfirmation(ctx, 1, 1, core.KindIncome, 500000, "gaji"))
	msgs = f.sender.to(1)
	assert.Contains(t, msgs[1], "📥")
	assert.NotContains(t, msgs[1], "Perhatian")
}

func TestWeeklyReports(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.WeeklyReports(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Sent)

	f.sender.mu.Lock()
	defer f.sender.mu.Unlock()
	kb, ok := f.sender.sent[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard[0], 2)
	assert.Equal(t, "report_weekly", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "report_monthly", *kb.InlineKeyboard[0][1].CallbackData)
}

func TestMonthlyCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.MonthlyCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, JobResult{}, res, "nothing is sent mid-month")

	f.clock = ptr(time.Date(2024, 2, 1, 9, 0, 0, 0, wib))
	res, err = f.svc.MonthlyCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Sent)
	assert.Contains(t, f.sender.to(1)[0], "📅 January 2024")
}

func TestBroadcast(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sender.failFor = map[int64]bool{2: true}

	n, err := f.svc.Broadcast(ctx, "Halo semua", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "user 2 fails, user 4 is inactive")

	f.sender.reset()
	n, err = f.svc.Broadcast(ctx, "Khusus pagi", func(u core.UserPrefs) bool { return u.LunchReminder })
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"Khusus pagi"}, f.sender.to(3))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = f.svc.Broadcast(cancelled, "x", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMilestonesAndGoals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.SendStreakMilestone(ctx, 1, 8), ErrNotSent)
	require.NoError(t, f.svc.SendStreakMilestone(ctx, 1, 30))
	assert.ErrorIs(t, f.svc.SendSavingsGoal(ctx, 1, "Laptop", 10, 100), ErrNotSent)
	require.NoError(t, f.svc.SendSavingsGoal(ctx, 1, "Laptop", 80, 100))
	require.NoError(t, f.svc.SendAchievement(ctx, 1, "Hemat", "Seminggu tanpa jajan", 50))

	msgs := f.sender.to(1)
	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[0], "STREAK MILESTONE")
	assert.Contains(t, msgs[1], "SAVINGS GOAL UPDATE")
	assert.Contains(t, msgs[2], "✨ +50 XP")

	kinds := []string{}
	for _, e := range f.svc.History().Recent(1) {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []string{KindStreak, KindSavingsGoal, KindAchievement}, kinds)
}

func TestRunUnknownJob(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Run(context.Background(), "nope")
	assert.ErrorContains(t, err, "unknown job")
	assert.Contains(t, f.svc.JobNames(), JobAlerts)
}

func ptr[T any](v T) *T { return &v }

func TestCheckStreak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// User 1 has activity on the 14th and 15th only.
	sent, err := f.svc.CheckStreak(ctx, 1)
	require.NoError(t, err)
	assert.False(t, sent)

	for d := 8; d <= 13; d++ {
		_, err := f.store.AppendTransaction(ctx, core.Transaction{
			Date: core.NewDate(2024, 1, d), Description: "Parkir", Amount: 2000,
			Category: "transport", Kind: core.KindExpense, UserID: 2,
		})
		require.NoError(t, err)
	}
	_, err = f.store.AppendTransaction(ctx, core.Transaction{
		Date: core.NewDate(2024, 1, 14), Description: "Parkir", Amount: 2000,
		Category: "transport", Kind: core.KindExpense, UserID: 2,
	})
	require.NoError(t, err)

	sent, err = f.svc.CheckStreak(ctx, 2)
	require.NoError(t, err)
	assert.True(t, sent)
	require.Len(t, f.sender.to(2), 1)
	assert.Contains(t, f.sender.to(2)[0], "7 days straight")

	sent, err = f.svc.CheckStreak(ctx, 2)
	require.NoError(t, err)
	assert.False(t, sent, "one milestone message per day")
}
