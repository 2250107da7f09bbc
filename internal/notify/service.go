// Package notify sends the scheduled and on-demand notifications: daily
// reminders and summaries, budget alerts, weekly and monthly reports, and
// the confirmation, achievement and broadcast messages the bot triggers.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/log"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/present"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/report"
	ports "github.com/Artzsa/Perhitunganku-V3.0/internal/sheets"
)

// Notification kinds as they appear in the history.
const (
	KindMorning           = "morning_reminder"
	KindLunch             = "lunch_reminder"
	KindEvening           = "evening_summary"
	KindBudgetAlert       = "budget_alert"
	KindBudgetAlertManual = "budget_alert_manual"
	KindWeekly            = "weekly_report"
	KindMonthly           = "monthly_report"
	KindCustom            = "custom_message"
	KindBroadcast         = "broadcast"
	KindTransaction       = "transaction_confirm"
	KindAchievement       = "achievement"
	KindStreak            = "streak_milestone"
	KindSavingsGoal       = "savings_goal"
)

// DefaultAlertThreshold is the budget usage percentage that triggers alerts.
const DefaultAlertThreshold = 80

// ErrNotSent is returned by the Send* helpers when the message does not
// qualify, such as a streak that is not a milestone.
var ErrNotSent = errors.New("notification not applicable")

// Sender delivers Telegram messages. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Deps is everything the notifier needs, built once by the caller.
type Deps struct {
	Users             ports.UserStore
	Loader            *report.Loader
	Sender            Sender
	History           *History
	Logger            *log.Logger
	Location          *time.Location
	AlertThreshold    int
	BroadcastInterval time.Duration
	// Now defaults to time.Now.
	Now               func() time.Time
}

// Service implements the notification API and the scheduled jobs.
type Service struct {
	users     ports.UserStore
	loader    *report.Loader
	sender    Sender
	history   *History
	logger    *log.Logger
	events    *log.StructuredLogger
	loc       *time.Location
	threshold decimal.Decimal
	interval  time.Duration
	now       func() time.Time
}

func New(d Deps) *Service {
	s := &Service{
		users:    d.Users,
		loader:   d.Loader,
		sender:   d.Sender,
		history:  d.History,
		logger:   d.Logger,
		loc:      d.Location,
		interval: d.BroadcastInterval,
		now:      d.Now,
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(log.ComponentNotify)
	s.events = log.NewStructuredLogger(s.logger)
	if s.history == nil {
		s.history = NewHistory(nil, nil)
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	threshold := d.AlertThreshold
	if threshold <= 0 {
		threshold = DefaultAlertThreshold
	}
	s.threshold = decimal.NewFromInt(int64(threshold))
	return s
}

// History exposes the notification log.
func (s *Service) History() *History { return s.history }

func (s *Service) today() core.Date {
	return core.Today(s.now(), s.loc)
}

// send delivers an HTML message and logs it under kind.
func (s *Service) send(ctx context.Context, chatID int64, kind, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := s.sender.Send(msg)
	s.history.Log(ctx, chatID, kind, text, err)
	s.events.LogNotification(ctx, chatID, kind, err)
	if err != nil {
		return fmt.Errorf("send %s to %d: %w", kind, chatID, err)
	}
	return nil
}

// Register adds a user with default preferences. Registering an existing
// user only refreshes the username and last-active time.
func (s *Service) Register(ctx context.Context, userID int64, username string) error {
	_, err := s.users.GetUser(ctx, userID)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, ports.ErrUserNotFound):
		return fmt.Errorf("get user %d: %w", userID, err)
	}

	if err := s.users.AddUser(ctx, core.DefaultPrefs(userID, username, s.now().In(s.loc))); err != nil {
		if errors.Is(err, ports.ErrUserExists) {
			return nil
		}
		return fmt.Errorf("add user %d: %w", userID, err)
	}
	s.logger.InfoContext(ctx, "New user registered", log.FieldUserID, userID, log.FieldUsername, username)
	return nil
}

// Preferences returns the user's settings, or the defaults when the user
// has not registered.
func (s *Service) Preferences(ctx context.Context, userID int64) (core.UserPrefs, error) {
	p, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, ports.ErrUserNotFound) {
		return core.DefaultPrefs(userID, "", s.now().In(s.loc)), nil
	}
	if err != nil {
		return core.UserPrefs{}, fmt.Errorf("get user %d: %w", userID, err)
	}
	return p, nil
}

// Preference names a user-settable flag.
type Preference string

const (
	PrefNotifications Preference = "notifications_enabled"
	PrefMorning       Preference = "morning_reminder"
	PrefEvening       Preference = "evening_summary"
	PrefLunch         Preference = "lunch_reminder"
	PrefBudgetAlerts  Preference = "budget_alerts"
	PrefWeekly        Preference = "weekly_report"
)

// Preferences in display order.
var AllPreferences = []Preference{PrefNotifications, PrefMorning, PrefEvening, PrefLunch, PrefBudgetAlerts, PrefWeekly}

var preferenceAliases = map[string]Preference{
	"semua":    PrefNotifications,
	"all":      PrefNotifications,
	"pagi":     PrefMorning,
	"morning":  PrefMorning,
	"malam":    PrefEvening,
	"evening":  PrefEvening,
	"siang":    PrefLunch,
	"lunch":    PrefLunch,
	"budget":   PrefBudgetAlerts,
	"alert":    PrefBudgetAlerts,
	"mingguan": PrefWeekly,
	"weekly":   PrefWeekly,
}

// ParsePreference accepts a column name or a short alias such as "pagi".
func ParsePreference(s string) (Preference, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range AllPreferences {
		if string(p) == s {
			return p, true
		}
	}
	p, ok := preferenceAliases[s]
	return p, ok
}

// Get reads one flag from prefs.
func (p Preference) Get(prefs core.UserPrefs) bool {
	switch p {
	case PrefNotifications:
		return prefs.NotificationsEnabled
	case PrefMorning:
		return prefs.MorningReminder
	case PrefEvening:
		return prefs.EveningSummary
	case PrefLunch:
		return prefs.LunchReminder
	case PrefBudgetAlerts:
		return prefs.BudgetAlerts
	case PrefWeekly:
		return prefs.WeeklyReport
	}
	return false
}

func (p Preference) set(prefs *core.UserPrefs, v bool) {
	switch p {
	case PrefNotifications:
		prefs.NotificationsEnabled = v
	case PrefMorning:
		prefs.MorningReminder = v
	case PrefEvening:
		prefs.EveningSummary = v
	case PrefLunch:
		prefs.LunchReminder = v
	case PrefBudgetAlerts:
		prefs.BudgetAlerts = v
	case PrefWeekly:
		prefs.WeeklyReport = v
	}
}

// UpdatePreferences applies changes and stamps last-active. Unknown users are
// registered first.
func (s *Service) UpdatePreferences(ctx context.Context, userID int64, changes map[Preference]bool) (core.UserPrefs, error) {
	p, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, ports.ErrUserNotFound) {
		if err := s.Register(ctx, userID, ""); err != nil {
			return core.UserPrefs{}, err
		}
		p, err = s.users.GetUser(ctx, userID)
	}
	if err != nil {
		return core.UserPrefs{}, fmt.Errorf("get user %d: %w", userID, err)
	}

	for pref, v := range changes {
		pref.set(&p, v)
	}
	p.LastActive = s.now().In(s.loc)

	if err := s.users.UpdateUser(ctx, p); err != nil {
		return core.UserPrefs{}, fmt.Errorf("update user %d: %w", userID, err)
	}
	return p, nil
}

// SendCustom sends an arbitrary HTML message.
func (s *Service) SendCustom(ctx context.Context, userID int64, message string) error {
	return s.send(ctx, userID, KindCustom, message, nil)
}

// Broadcast sends message to every active user accepted by filter (nil
// accepts all), paced to stay under Telegram's rate limit. It returns the
// number of users reached.
func (s *Service) Broadcast(ctx context.Context, message string, filter func(core.UserPrefs) bool) (int, error) {
	users, err := s.activeUsers(ctx)
	if err != nil {
		return 0, err
	}

	interval := s.interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)

	sent := 0
	for _, u := range users {
		if filter != nil && !filter(u) {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return sent, err
		}
		if err := s.send(ctx, u.UserID, KindBroadcast, message, nil); err != nil {
			s.logger.WarnContext(ctx, "Broadcast delivery failed", log.FieldUserID, u.UserID, log.FieldError, err)
			continue
		}
		sent++
	}
	s.logger.InfoContext(ctx, "Broadcast finished", "recipients", sent, "active_users", len(users))
	return sent, nil
}

// TransactionConfirmation acknowledges one recorded transaction. Expenses in
// a budgeted category above the alert threshold get a warning line.
func (s *Service) TransactionConfirmation(ctx context.Context, chatID, userID int64, kind core.Kind, amount int64, category string) error {
	var alert *report.BudgetStatus
	if kind == core.KindExpense {
		month, err := s.loader.Load(ctx, userID, core.MonthRange(s.today()))
		if err != nil {
			return fmt.Errorf("load month: %w", err)
		}
		st := month.Status(category)
		if st.Budget > 0 && st.Percent.GreaterThan(s.threshold) {
			alert = &st
		}
	}
	return s.send(ctx, chatID, KindTransaction, present.TransactionConfirmation(kind, amount, category, alert), nil)
}

// CheckAndSendBudgetAlert sends the current month's alerts to one user
// immediately, bypassing the daily dedupe. It reports whether anything was sent.
func (s *Service) CheckAndSendBudgetAlert(ctx context.Context, userID int64) (bool, error) {
	alerts, err := s.alerts(ctx, userID)
	if err != nil || len(alerts) == 0 {
		return false, err
	}
	if err := s.send(ctx, userID, KindBudgetAlertManual, present.BudgetAlert(alerts), nil); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) alerts(ctx context.Context, userID int64) ([]report.BudgetStatus, error) {
	month, err := s.loader.Load(ctx, userID, core.MonthRange(s.today()))
	if err != nil {
		return nil, fmt.Errorf("load month: %w", err)
	}
	return month.Alerts(s.threshold), nil
}

// SendAchievement announces an unlocked achievement.
func (s *Service) SendAchievement(ctx context.Context, userID int64, name, desc string, points int) error {
	return s.send(ctx, userID, KindAchievement, present.Achievement(name, desc, points), nil)
}

// SendStreakMilestone congratulates a tracking streak. Days that are not a
// milestone return ErrNotSent.
func (s *Service) SendStreakMilestone(ctx context.Context, userID int64, days int) error {
	msg, ok := present.StreakMilestone(days)
	if !ok {
		return ErrNotSent
	}
	return s.send(ctx, userID, KindStreak, msg, nil)
}

// CheckStreak sends the streak milestone message when the user's current
// tracking streak is a milestone, once per day. It reports whether a message
// went out.
func (s *Service) CheckStreak(ctx context.Context, userID int64) (bool, error) {
	today := s.today()
	marked, err := s.history.Marked(ctx, userID, KindStreak, today)
	if err != nil || marked {
		return false, err
	}
	days, err := s.loader.Streak(ctx, userID, today)
	if err != nil {
		return false, fmt.Errorf("streak: %w", err)
	}
	if err := s.SendStreakMilestone(ctx, userID, days); err != nil {
		if errors.Is(err, ErrNotSent) {
			return false, nil
		}
		return false, err
	}
	return true, s.history.Mark(ctx, userID, KindStreak, today)
}

// SendSavingsGoal reports progress once a goal is at least 75% reached;
// below that it returns ErrNotSent.
func (s *Service) SendSavingsGoal(ctx context.Context, userID int64, goal string, current, target int64) error {
	msg, ok := present.SavingsGoal(goal, current, target)
	if !ok {
		return ErrNotSent
	}
	return s.send(ctx, userID, KindSavingsGoal, msg, nil)
}

// activeUsers lists users with notifications enabled.
func (s *Service) activeUsers(ctx context.Context) ([]core.UserPrefs, error) {
	all, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := all[:0:0]
	for _, u := range all {
		if u.NotificationsEnabled {
			out = append(out, u)
		}
	}
	return out, nil
}
