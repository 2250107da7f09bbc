// Package bot dispatches Telegram updates: commands, inline-menu callbacks
// and free-text transaction lines.
package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/amqp"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/export"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/log"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/middleware/ratelimit"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/middleware/security"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/middleware/trace"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/notify"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/report"
	ports "github.com/Artzsa/Perhitunganku-V3.0/internal/sheets"
)

const (
	defaultPollTimeout    = 60
	defaultReconnectDelay = 5 * time.Second
)

// Sender talks to the Bot API. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Poller fetches pending updates. *tgbotapi.BotAPI implements it.
type Poller interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// Publisher announces recorded transactions. *amqp.Client implements it.
type Publisher interface {
	PublishTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error
}

// Deps is everything the bot needs, built once by main.
type Deps struct {
	Store    ports.Store
	Loader   *report.Loader
	Exporter *export.Exporter
	Sender   Sender
	// Notifier is nil when notifications are disabled.
	Notifier *notify.Service
	// Publisher is nil when no event bus is configured.
	Publisher Publisher
	Limiter   *ratelimit.Limiter
	Detector  *security.Detector
	Logger    *log.Logger
	Location  *time.Location
	// Admins may run /broadcast and the test commands. With no admins the
	// test commands are open to everyone.
	Admins         []int64
	PollTimeout    int
	ReconnectDelay time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Bot handles one update at a time.
type Bot struct {
	store     ports.Store
	loader    *report.Loader
	exporter  *export.Exporter
	sender    Sender
	notifier  *notify.Service
	publisher Publisher
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Tracer
	logger    *log.Logger
	events    *log.StructuredLogger
	loc       *time.Location
	admins    []int64
	timeout   int
	delay     time.Duration
	now       func() time.Time
	commands  map[string]commandFunc
	callbacks map[string]callbackFunc
}

func New(d Deps) *Bot {
	b := &Bot{
		store:     d.Store,
		loader:    d.Loader,
		exporter:  d.Exporter,
		sender:    d.Sender,
		notifier:  d.Notifier,
		publisher: d.Publisher,
		limiter:   d.Limiter,
		detector:  d.Detector,
		logger:    d.Logger,
		loc:       d.Location,
		admins:    d.Admins,
		timeout:   d.PollTimeout,
		delay:     d.ReconnectDelay,
		now:       d.Now,
	}
	if b.logger == nil {
		b.logger = log.New(log.DefaultConfig())
	}
	b.logger = b.logger.WithComponent(log.ComponentBot)
	b.events = log.NewStructuredLogger(b.logger)
	b.tracer = trace.NewTracer(b.logger)
	if b.loader == nil {
		b.loader = report.NewLoader(d.Store, b.logger.Logger)
	}
	if b.exporter == nil {
		b.exporter = export.New(b.loader)
	}
	if b.detector == nil {
		b.detector = security.NewDetector()
	}
	if b.loc == nil {
		b.loc = time.UTC
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.timeout <= 0 {
		b.timeout = defaultPollTimeout
	}
	if b.delay <= 0 {
		b.delay = defaultReconnectDelay
	}
	b.commands = b.commandTable()
	b.callbacks = b.callbackTable()
	return b
}

func (b *Bot) today() core.Date {
	return core.Today(b.now(), b.loc)
}

func (b *Bot) isAdmin(userID int64) bool {
	return slices.Contains(b.admins, userID)
}

type pollResult struct {
	updates []tgbotapi.Update
	err     error
}

// Run long-polls for updates until ctx is done. A failed poll is logged and
// retried after the reconnect delay.
//
// GetUpdates takes no context, so a poll in flight at shutdown is abandoned.
// Its updates are not acknowledged and Telegram delivers them again on the
// next start.
func (b *Bot) Run(ctx context.Context, poller Poller) error {
	b.logger.InfoContext(ctx, "Bot polling started", "poll_timeout", b.timeout, "reconnect_delay", b.delay.String())

	offset := 0
	for {
		if ctx.Err() != nil {
			b.logger.InfoContext(ctx, "Bot polling stopped")
			return nil
		}

		cfg := tgbotapi.NewUpdate(offset)
		cfg.Timeout = b.timeout
		polled := make(chan pollResult, 1)
		go func() {
			updates, err := poller.GetUpdates(cfg)
			polled <- pollResult{updates, err}
		}()

		var r pollResult
		select {
		case <-ctx.Done():
			b.logger.InfoContext(ctx, "Bot polling stopped")
			return nil
		case r = <-polled:
		}
		updates, err := r.updates, r.err
		if err != nil {
			b.logger.ErrorContext(ctx, "Polling failed, reconnecting", log.FieldError, err, "delay", b.delay.String())
			select {
			case <-ctx.Done():
				b.logger.InfoContext(ctx, "Bot polling stopped")
				return nil
			case <-time.After(b.delay):
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			// Errors were already reported to the user and logged by the tracer.
			_ = b.HandleUpdate(ctx, upd)
		}
	}
}

// HandleUpdate dispatches one update. A panic in a handler is recovered and
// returned as an error so the polling loop keeps going.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) error {
	span, ok := spanOf(upd)
	if !ok {
		return nil
	}

	return b.tracer.Do(ctx, span, func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.FromContext(ctx).ErrorContext(ctx, "Handler panic", "panic", r, "stack", string(debug.Stack()))
				err = fmt.Errorf("handler panic: %v", r)
			}
		}()

		if b.limiter != nil && !b.limiter.Allow(span.UserID) {
			log.FromContext(ctx).WarnContext(ctx, "Update rate limited")
			if upd.CallbackQuery != nil {
				b.answer(upd.CallbackQuery.ID, rateLimitedText)
				return nil
			}
			// The text may hold transactions; say they were not recorded.
			wait := max(b.limiter.RetryAfter(span.UserID).Round(time.Second), time.Second)
			return b.reply(upd.Message.Chat.ID, upd.Message.MessageID, fmt.Sprintf(rateLimitedMessageText, int(wait.Seconds())))
		}

		if upd.CallbackQuery != nil {
			return b.handleCallback(ctx, upd.CallbackQuery)
		}
		return b.handleMessage(ctx, upd.Message)
	})
}

func spanOf(upd tgbotapi.Update) (trace.Span, bool) {
	switch {
	case upd.CallbackQuery != nil:
		q := upd.CallbackQuery
		span := trace.Span{UpdateID: upd.UpdateID, UserID: q.From.ID, Kind: "callback", Name: q.Data}
		if q.Message != nil {
			span.ChatID = q.Message.Chat.ID
		}
		return span, true
	case upd.Message != nil && upd.Message.Text != "":
		m := upd.Message
		span := trace.Span{UpdateID: upd.UpdateID, ChatID: m.Chat.ID, Kind: "message"}
		if m.From != nil {
			span.UserID = m.From.ID
		}
		if m.IsCommand() {
			span.Kind, span.Name = "command", m.Command()
		}
		return span, true
	}
	return trace.Span{}, false
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	if b.detector.DetectSuspiciousText(msg.Text) {
		log.FromContext(ctx).WarnContext(ctx, "Suspicious message content", "length", len(msg.Text))
	}

	if msg.IsCommand() {
		return b.handleCommand(ctx, msg)
	}
	return b.handleTransactions(ctx, msg)
}

// sendHTML sends text with HTML parse mode. markup may be nil.
func (b *Bot) sendHTML(chatID int64, text string, markup any) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	sent, err := b.sender.Send(msg)
	if err != nil {
		return sent, fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return sent, nil
}

// reply sends plain text as a reply to messageID.
func (b *Bot) reply(chatID int64, messageID int, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = messageID
	if _, err := b.sender.Send(msg); err != nil {
		return fmt.Errorf("reply to %d: %w", chatID, err)
	}
	return nil
}

// edit replaces the text and keyboard of an existing message.
func (b *Bot) edit(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	var cfg tgbotapi.EditMessageTextConfig
	if markup != nil {
		cfg = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *markup)
	} else {
		cfg = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	cfg.ParseMode = tgbotapi.ModeHTML
	_, err := b.sender.Send(cfg)
	return err
}

// editOrSend edits the message in place, falling back to a new message
// when Telegram refuses the edit.
func (b *Bot) editOrSend(ctx context.Context, chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	if err := b.edit(chatID, messageID, text, &markup); err != nil {
		log.FromContext(ctx).DebugContext(ctx, "Edit failed, sending new message", log.FieldError, err)
		_, err = b.sendHTML(chatID, text, markup)
		return err
	}
	return nil
}

func (b *Bot) deleteMessage(ctx context.Context, chatID int64, messageID int) {
	if _, err := b.sender.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		log.FromContext(ctx).DebugContext(ctx, "Delete message failed", log.FieldError, err)
	}
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.sender.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Debug("Answer callback failed", log.FieldError, err)
	}
}

// fail tells the user something went wrong on our side and returns err for
// the tracer to log.
func (b *Bot) fail(chatID int64, err error) error {
	if _, sendErr := b.sendHTML(chatID, genericErrorText, column(homeButton)); sendErr != nil {
		return fmt.Errorf("%w (notice not delivered: %v)", err, sendErr)
	}
	return err
}
