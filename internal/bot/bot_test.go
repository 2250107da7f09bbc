package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/amqp"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/middleware/ratelimit"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/notify"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/report"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/sheets/memory"
)

const (
	userID  int64 = 42
	adminID int64 = 7
)

var wib = time.FixedZone("WIB", 7*60*60)

type fakeSender struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	requests  []tgbotapi.Chattable
	failEdits bool
	failAll   bool
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return tgbotapi.Message{}, errors.New("network down")
	}
	if _, ok := c.(tgbotapi.EditMessageTextConfig); ok && f.failEdits {
		return tgbotapi.Message{}, errors.New("Bad Request: message can't be edited")
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: 100 + len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// messages returns the text of every new message sent.
func (f *fakeSender) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeSender) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	msgs := f.messages()
	require.NotEmpty(t, msgs, "no message sent")
	return msgs[len(msgs)-1]
}

func (f *fakeSender) edits() []tgbotapi.EditMessageTextConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.EditMessageTextConfig
	for _, c := range f.sent {
		if e, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeSender) callbacks() []tgbotapi.CallbackConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.CallbackConfig
	for _, c := range f.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb)
		}
	}
	return out
}

type fakePublisher struct {
	msgs []*amqp.TransactionRecordedMessage
	err  error
}

func (f *fakePublisher) PublishTransactionRecorded(_ context.Context, msg *amqp.TransactionRecordedMessage) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}

// failingStore rejects writes.
type failingStore struct {
	*memory.Store
}

func (failingStore) AppendTransaction(context.Context, core.Transaction) (string, error) {
	return "", errors.New("sheets: 503 backend unavailable")
}

type fixture struct {
	bot       *Bot
	store     *memory.Store
	sender    *fakeSender
	publisher *fakePublisher
	notifier  *notify.Service
}

// newFixture builds a bot on Monday 15 January 2024, 10:00 WIB, with a
// makanan budget of 100000 and 20000 already spent.
func newFixture(t *testing.T, opts ...func(*Deps)) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New(nil)
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, wib)

	_, err := store.AppendBudget(ctx, core.Budget{Date: core.NewDate(2024, 1, 1), Category: "makanan", Amount: 100000, UserID: userID})
	require.NoError(t, err)
	_, err = store.AppendTransaction(ctx, core.Transaction{
		Date: core.NewDate(2024, 1, 14), Description: "Kopi", Amount: 20000,
		Category: "makanan", Kind: core.KindExpense, UserID: userID,
	})
	require.NoError(t, err)

	f := &fixture{store: store, sender: &fakeSender{}, publisher: &fakePublisher{}}
	loader := report.NewLoader(store, nil)
	f.notifier = notify.New(notify.Deps{
		Users:             store,
		Loader:            loader,
		Sender:            f.sender,
		Location:          wib,
		BroadcastInterval: time.Millisecond,
		Now:               func() time.Time { return now },
	})

	d := Deps{
		Store:     store,
		Loader:    loader,
		Sender:    f.sender,
		Notifier:  f.notifier,
		Publisher: f.publisher,
		Location:  wib,
		Admins:    []int64{adminID},
		Now:       func() time.Time { return now },
	}
	for _, opt := range opts {
		opt(&d)
	}
	f.bot = New(d)
	return f
}

func textUpdate(from int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 7,
		From:      &tgbotapi.User{ID: from, UserName: "ani"},
		Chat:      &tgbotapi.Chat{ID: from, Type: "private"},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		n := strings.IndexByte(text, ' ')
		if n < 0 {
			n = len(text)
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: n}}
	}
	return tgbotapi.Update{UpdateID: 1, Message: msg}
}

func callbackUpdate(from int64, data string) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: 2, CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: from},
		Message: &tgbotapi.Message{MessageID: 55, Chat: &tgbotapi.Chat{ID: from}},
		Data:    data,
	}}
}

func callbackData(markup any) []string {
	kb, ok := markup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		return nil
	}
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != nil {
				out = append(out, *b.CallbackData)
			}
		}
	}
	return out
}

func TestFreeTextTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("one valid and one invalid line", func(t *testing.T) {
		f := newFixture(t)
		err := f.bot.HandleUpdate(ctx, textUpdate(userID, "Makan siang -25000 /makanan\nMakan siang 25000 makanan"))
		require.NoError(t, err)

		txs, _ := f.store.ListTransactions(ctx)
		require.Len(t, txs, 2)
		got := txs[1]
		assert.Equal(t, "Makan siang", got.Description)
		assert.Equal(t, int64(25000), got.Amount)
		assert.Equal(t, core.KindExpense, got.Kind)
		assert.Equal(t, core.NewDate(2024, 1, 15), got.Date)

		reply := f.sender.lastMessage(t)
		assert.Equal(t, tgbotapi.ModeHTML, reply.ParseMode)
		assert.Contains(t, reply.Text, "TRANSAKSI BERHASIL DICATAT")
		assert.Contains(t, reply.Text, "DAMPAK TERHADAP ANGGARAN")
		assert.Contains(t, reply.Text, "Terpakai: Rp45,000 dari Rp100,000")
		assert.Contains(t, reply.Text, "FORMAT SALAH")
		assert.Contains(t, reply.Text, "Makan siang 25000 makanan")
		assert.Equal(t, []string{cbReportDaily, cbListBudget, cbMenuTransaction, cbMainMenu}, callbackData(reply.ReplyMarkup))

		require.Len(t, f.publisher.msgs, 1)
		ev := f.publisher.msgs[0]
		assert.Equal(t, userID, ev.UserID)
		assert.Equal(t, "15-01-2024", ev.Date)
		assert.Equal(t, "pengeluaran", ev.Kind)
		assert.True(t, ev.Replied, "worker must not confirm a second time")
	})

	t.Run("only invalid lines", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "halo bot")))

		reply := f.sender.lastMessage(t)
		assert.NotContains(t, reply.Text, "BERHASIL")
		assert.Contains(t, reply.Text, "Makan siang -25000 /makanan")
		assert.Equal(t, []string{cbMenuTransaction, cbMainMenu}, callbackData(reply.ReplyMarkup))
		assert.Empty(t, f.publisher.msgs)
	})

	t.Run("publish failure does not fail the message", func(t *testing.T) {
		f := newFixture(t)
		f.publisher.err = errors.New("circuit breaker open")
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "Gaji +3000000 /gaji")))
		assert.Contains(t, f.sender.lastMessage(t).Text, "Pemasukan")
	})

	t.Run("store failure is reported per line", func(t *testing.T) {
		f := newFixture(t, func(d *Deps) { d.Store = failingStore{memory.New(nil)} })
		err := f.bot.HandleUpdate(ctx, textUpdate(userID, "Kopi -15000 /makanan"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")

		reply := f.sender.lastMessage(t)
		assert.Contains(t, reply.Text, "GAGAL DISIMPAN")
		assert.Contains(t, reply.Text, "Kopi -15000 /makanan")
		assert.Empty(t, f.publisher.msgs)
	})

	t.Run("formula text is stored as typed", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, `=HYPERLINK("x") -1000 /lain`)))
		txs, _ := f.store.ListTransactions(ctx)
		assert.Equal(t, `=HYPERLINK("x")`, txs[len(txs)-1].Description)
		assert.Equal(t, int64(1), f.bot.detector.GetMetrics().SuspiciousMessages)
	})
}

func TestBudgetCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("set budget", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/set_anggaran Transport Rp300.000")))

		budgets, _ := f.store.ListBudgets(ctx)
		require.Len(t, budgets, 2)
		assert.Equal(t, core.Budget{Date: core.NewDate(2024, 1, 15), Category: "transport", Amount: 300000, UserID: userID}, budgets[1])

		reply := f.sender.lastMessage(t)
		assert.Contains(t, reply.Text, "Anggaran berhasil diset")
		assert.Contains(t, reply.Text, "Rp300,000")
		assert.Equal(t, []string{cbMenuBudget, cbListBudget, cbMainMenu}, callbackData(reply.ReplyMarkup))
	})

	for _, args := range []string{"", "makanan", "makanan abc", "makanan 0"} {
		t.Run("set budget usage "+args, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, strings.TrimSpace("/set_anggaran "+args))))
			assert.Contains(t, f.sender.lastMessage(t).Text, "/set_anggaran [kategori] [jumlah]")
			budgets, _ := f.store.ListBudgets(ctx)
			assert.Len(t, budgets, 1)
		})
	}

	t.Run("check budget", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/cek_anggaran Makanan")))
		reply := f.sender.lastMessage(t)
		assert.Contains(t, reply.Text, "Makanan")
		assert.Contains(t, reply.Text, "Rp20,000")
		assert.Contains(t, reply.Text, "Proyeksi akhir bulan")
	})

	t.Run("check budget without budget", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/cek_anggaran hiburan")))
		assert.Contains(t, f.sender.lastMessage(t).Text, "Belum ada anggaran untuk 'Hiburan'")
	})

	t.Run("check budget usage", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/cek_anggaran")))
		reply := f.sender.lastMessage(t)
		assert.Contains(t, reply.Text, "Format salah")
		assert.Equal(t, []string{cbGuideCheckBudget, cbMainMenu}, callbackData(reply.ReplyMarkup))
	})

	t.Run("list budgets", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/list_anggaran")))
		assert.Contains(t, f.sender.lastMessage(t).Text, "Dashboard Anggaran Enhanced")

		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(99, "/list_anggaran")))
		assert.Contains(t, f.sender.lastMessage(t).Text, "Belum ada anggaran bulan ini")
	})
}

func TestReportCommands(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		text string
		want string
	}{
		{"/laporanhari", "Laporan Hari 15-01-2024"},
		{"/laporanminggu", "Laporan Minggu 15-01 - 21-01"},
		{"/laporanbulan", "Laporan Bulan January 2024"},
		{"/rekapbulanan 12 2023", "Rekap Bulan December 2023"},
		{"/rekapbulanan 13 2023", "/rekapbulanan mm yyyy"},
		{"/status", "HARI INI"},
		{"/tips", "Smart Financial Tips"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, tt.text)))
			assert.Contains(t, f.sender.lastMessage(t).Text, tt.want)
		})
	}
}

func TestStaticCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("start registers the user", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/start")))

		reply := f.sender.lastMessage(t)
		assert.Contains(t, reply.Text, "Selamat datang")
		assert.Contains(t, reply.Text, "didaftarkan")
		assert.Len(t, callbackData(reply.ReplyMarkup), 6)

		u, err := f.store.GetUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "ani", u.Username)
	})

	t.Run("start without notifications", func(t *testing.T) {
		f := newFixture(t, func(d *Deps) { d.Notifier = nil })
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/start")))
		assert.NotContains(t, f.sender.lastMessage(t).Text, "didaftarkan")
	})

	t.Run("command with bot name", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/help@PerhitungankuBot")))
		assert.Contains(t, f.sender.lastMessage(t).Text, "Catat transaksi")
	})

	t.Run("unknown command", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/hapus semua")))
		reply := f.sender.lastMessage(t)
		assert.Contains(t, reply.Text, "Perintah tidak dikenal")
		assert.Contains(t, reply.Text, "/hapus")
		assert.Equal(t, []string{cbMainMenu, cbHelp}, callbackData(reply.ReplyMarkup))
	})
}

func TestNotifCommand(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t)
	require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/notif")))
	assert.Contains(t, f.sender.lastMessage(t).Text, "❌ Pengingat siang (siang)")

	require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/notif siang on")))
	assert.Contains(t, f.sender.lastMessage(t).Text, "✅ Pengingat siang (siang)")
	u, err := f.store.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.True(t, u.LunchReminder)

	require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/notif siang maybe")))
	assert.Contains(t, f.sender.lastMessage(t).Text, "/notif [jenis] on|off")

	off := newFixture(t, func(d *Deps) { d.Notifier = nil })
	require.NoError(t, off.bot.HandleUpdate(ctx, textUpdate(userID, "/notif")))
	assert.Equal(t, notifDisabledText, off.sender.lastMessage(t).Text)
}

func TestAdminCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("broadcast requires admin", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/broadcast halo")))
		assert.Equal(t, adminOnlyText, f.sender.lastMessage(t).Text)
	})

	t.Run("broadcast reaches registered users", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.notifier.Register(ctx, userID, "ani"))
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(adminID, "/broadcast Server <maintenance>")))

		msgs := f.sender.messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, userID, msgs[0].ChatID)
		assert.Equal(t, "Server &lt;maintenance&gt;", msgs[0].Text)
		assert.Equal(t, "📢 Broadcast terkirim ke 1 pengguna.", msgs[1].Text)
	})

	t.Run("test command replies to the message", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(adminID, "/test_morning")))
		reply := f.sender.lastMessage(t)
		assert.Equal(t, morningSentText, reply.Text)
		assert.Equal(t, 7, reply.ReplyToMessageID)
		assert.Empty(t, reply.ParseMode)
	})

	t.Run("test command for non admin", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/test_budget")))
		assert.Equal(t, adminOnlyText, f.sender.lastMessage(t).Text)
	})

	t.Run("test commands open without admins", func(t *testing.T) {
		f := newFixture(t, func(d *Deps) { d.Admins = nil })
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/test_evening")))
		assert.Equal(t, eveningSentText, f.sender.lastMessage(t).Text)
	})

	t.Run("test command without notifier", func(t *testing.T) {
		f := newFixture(t, func(d *Deps) { d.Notifier = nil })
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(adminID, "/test_budget")))
		assert.Equal(t, notifDisabledText, f.sender.lastMessage(t).Text)
	})
}

func TestCallbacks(t *testing.T) {
	ctx := context.Background()

	t.Run("menu edits in place", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, callbackUpdate(userID, cbMenuReport)))

		edits := f.sender.edits()
		require.Len(t, edits, 1)
		assert.Equal(t, 55, edits[0].MessageID)
		assert.Equal(t, reportMenuText, edits[0].Text)
		assert.Equal(t, []string{cbReportDaily, cbReportWeekly, cbReportMonthly, cbGuideCustomReport, cbMainMenu}, callbackData(*edits[0].ReplyMarkup))
		assert.Empty(t, f.sender.messages())

		cbs := f.sender.callbacks()
		require.Len(t, cbs, 1)
		assert.Equal(t, "cb-1", cbs[0].CallbackQueryID)
		assert.Empty(t, cbs[0].Text)
	})

	t.Run("menu falls back to a new message", func(t *testing.T) {
		f := newFixture(t)
		f.sender.failEdits = true
		require.NoError(t, f.bot.HandleUpdate(ctx, callbackUpdate(userID, cbGuideExpense)))

		reply := f.sender.lastMessage(t)
		assert.Equal(t, expenseGuideText, reply.Text)
		assert.Equal(t, []string{cbMenuTransaction}, callbackData(reply.ReplyMarkup))
	})

	t.Run("report replaces the menu", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, callbackUpdate(userID, cbReportWeekly)))

		require.NotEmpty(t, f.sender.requests)
		del, ok := f.sender.requests[0].(tgbotapi.DeleteMessageConfig)
		require.True(t, ok)
		assert.Equal(t, 55, del.MessageID)
		assert.Contains(t, f.sender.lastMessage(t).Text, "Laporan Minggu 15-01 - 21-01")
	})

	t.Run("list budget", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, callbackUpdate(userID, cbListBudget)))
		edits := f.sender.edits()
		require.Len(t, edits, 1)
		assert.Contains(t, edits[0].Text, "Dashboard Anggaran Bulan January 2024")
	})

	t.Run("failure answers with an error", func(t *testing.T) {
		f := newFixture(t)
		f.sender.failAll = true
		require.Error(t, f.bot.HandleUpdate(ctx, callbackUpdate(userID, cbHelp)))
		cbs := f.sender.callbacks()
		require.Len(t, cbs, 1)
		assert.Equal(t, callbackErrorText, cbs[0].Text)
	})

	t.Run("unknown data is answered", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, callbackUpdate(userID, "bogus")))
		assert.Len(t, f.sender.callbacks(), 1)
	})
}

func TestExport(t *testing.T) {
	ctx := context.Background()

	t.Run("callback sends the workbook", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, callbackUpdate(userID, cbExportMonth)))

		msgs := f.sender.messages()
		require.Len(t, msgs, 1)
		assert.Contains(t, msgs[0].Text, "Mengumpulkan data")

		edits := f.sender.edits()
		require.Len(t, edits, 2)
		assert.Contains(t, edits[0].Text, "Membuat file Excel")
		assert.Contains(t, edits[1].Text, "Mengirim file")

		var doc tgbotapi.DocumentConfig
		for _, c := range f.sender.sent {
			if d, ok := c.(tgbotapi.DocumentConfig); ok {
				doc = d
			}
		}
		file, ok := doc.File.(tgbotapi.FileBytes)
		require.True(t, ok)
		assert.Equal(t, "Export_Enhanced_42_20240101_20240131.xlsx", file.Name)
		assert.NotEmpty(t, file.Bytes)
		assert.Contains(t, doc.Caption, "Export Bulan Ini berhasil")
		assert.Contains(t, doc.Caption, "01-01-2024 s/d 31-01-2024")
	})

	t.Run("custom range", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/export 31-01-2024 01-01-2024")))
		var names []string
		for _, c := range f.sender.sent {
			if d, ok := c.(tgbotapi.DocumentConfig); ok {
				names = append(names, d.File.(tgbotapi.FileBytes).Name)
			}
		}
		assert.Equal(t, []string{"Export_Enhanced_42_20240101_20240131.xlsx"}, names)
	})

	t.Run("bad arguments", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/export kemarin")))
		reply := f.sender.lastMessage(t)
		assert.Contains(t, reply.Text, "/export tahun")
		assert.Equal(t, []string{cbMenuExport, cbMainMenu}, callbackData(reply.ReplyMarkup))
	})

	assert.Equal(t, "Bulan Ini", exportPeriodName(" "))
	assert.Equal(t, "Tahun Ini", exportPeriodName("TAHUN"))
	assert.Equal(t, "Custom Period", exportPeriodName("01-01-2024 31-01-2024"))
}

func TestRateLimit(t *testing.T) {
	ctx := context.Background()
	limiter := ratelimit.NewLimiter(ratelimit.Config{UpdatesPerMinute: 1})
	defer limiter.Stop()

	f := newFixture(t, func(d *Deps) { d.Limiter = limiter })
	require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/menu")))
	require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "/menu")))
	msgs := f.sender.messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1].Text, "TIDAK diproses")
	assert.Equal(t, 7, msgs[1].ReplyToMessageID)

	require.NoError(t, f.bot.HandleUpdate(ctx, callbackUpdate(userID, cbHelp)))
	cbs := f.sender.callbacks()
	require.Len(t, cbs, 1)
	assert.Equal(t, rateLimitedText, cbs[0].Text)
}

func TestRateLimitedTransactionIsReported(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, wib)
	limiter := ratelimit.NewLimiter(ratelimit.Config{
		UpdatesPerMinute: 30, Burst: 2,
		Now: func() time.Time { return now },
	})
	defer limiter.Stop()
	f := newFixture(t, func(d *Deps) { d.Limiter = limiter })

	for i := 0; i < 3; i++ {
		require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "Makan siang -25000 /makanan")))
	}
	txs, err := f.store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 3, "fixture row plus two recorded")

	last := f.sender.lastMessage(t)
	assert.Contains(t, last.Text, "transaksi di dalamnya tidak tercatat")
	assert.Contains(t, last.Text, "2 detik")
}

func TestRateLimitSteadyUseKeepsRecording(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, wib)
	limiter := ratelimit.NewLimiter(ratelimit.Config{Now: func() time.Time { return now }})
	defer limiter.Stop()
	f := newFixture(t, func(d *Deps) { d.Limiter = limiter })

	for i := 0; i < 30; i++ {
		require.NoError(t, f.bot.HandleUpdate(ctx, callbackUpdate(userID, cbMainMenu)))
		now = now.Add(50 * time.Second)
	}
	for _, cb := range f.sender.callbacks() {
		assert.NotEqual(t, rateLimitedText, cb.Text)
	}

	before := len(f.sender.messages())
	require.NoError(t, f.bot.HandleUpdate(ctx, textUpdate(userID, "Makan siang -25000 /makanan")))

	txs, err := f.store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
	assert.Len(t, f.sender.messages(), before+1)
	assert.NotContains(t, f.sender.lastMessage(t).Text, "TIDAK diproses")
}

type panicStore struct {
	*memory.Store
}

func (panicStore) AppendTransaction(context.Context, core.Transaction) (string, error) {
	panic("boom")
}

func TestHandleUpdateRecoversPanic(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.Store = panicStore{memory.New(nil)} })
	err := f.bot.HandleUpdate(context.Background(), textUpdate(userID, "Kopi -1000 /makanan"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler panic: boom")
}

func TestHandleUpdateIgnoresOtherUpdates(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.bot.HandleUpdate(context.Background(), tgbotapi.Update{UpdateID: 9}))
	require.NoError(t, f.bot.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}}))
	assert.Empty(t, f.sender.sent)
}

func TestParseBudgetArgs(t *testing.T) {
	tests := []struct {
		args     string
		category string
		amount   int64
		ok       bool
	}{
		{"makanan 500000", "makanan", 500000, true},
		{"Makanan Rp 1.500.000", "makanan", 1500000, true},
		{"makanan", "", 0, false},
		{"makanan -5", "", 0, false},
		{"makanan lima", "", 0, false},
	}
	for _, tt := range tests {
		cat, amt, ok := parseBudgetArgs(tt.args)
		assert.Equal(t, tt.ok, ok, tt.args)
		assert.Equal(t, tt.category, cat, tt.args)
		assert.Equal(t, tt.amount, amt, tt.args)
	}
}

type scriptedPoller struct {
	calls   int
	offsets []int
	cancel  context.CancelFunc
}

func (p *scriptedPoller) GetUpdates(cfg tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	p.calls++
	p.offsets = append(p.offsets, cfg.Offset)
	switch p.calls {
	case 1:
		return nil, errors.New("connection reset by peer")
	case 2:
		upd := textUpdate(userID, "/menu")
		upd.UpdateID = 500
		return []tgbotapi.Update{upd}, nil
	default:
		p.cancel()
		return nil, nil
	}
}

func TestRunReconnectsAndAdvancesOffset(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.ReconnectDelay = time.Millisecond })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := &scriptedPoller{cancel: cancel}
	require.NoError(t, f.bot.Run(ctx, poller))

	assert.Equal(t, []int{0, 0, 501}, poller.offsets)
	assert.Equal(t, menuText, f.sender.lastMessage(t).Text)
}

// hangingPoller blocks like a long poll that Telegram has not answered yet.
type hangingPoller struct {
	started chan struct{}
	release chan struct{}
}

func (p *hangingPoller) GetUpdates(tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	close(p.started)
	<-p.release
	return nil, nil
}

func TestRunStopsDuringLongPoll(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.PollTimeout = 60 })
	ctx, cancel := context.WithCancel(context.Background())
	poller := &hangingPoller{started: make(chan struct{}), release: make(chan struct{})}
	defer close(poller.release)

	errc := make(chan error, 1)
	go func() { errc <- f.bot.Run(ctx, poller) }()

	<-poller.started
	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return while a poll was in flight")
	}
}
