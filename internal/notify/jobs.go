package notify

import (
	"context"
	"fmt"
	"sort"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/log"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/present"
)

// Job names accepted by Run.
const (
	JobMorning      = "morning"
	JobLunch        = "lunch"
	JobEvening      = "evening"
	JobAlerts       = "alerts"
	JobWeekly       = "weekly"
	JobMonthly      = "monthly"
	JobMonthlyCheck = "monthly-check"
	JobPrune        = "prune"
)

// JobResult counts what one job run did.
type JobResult struct {
	Sent    int
	Skipped int
	Failed  int
}

func (r JobResult) String() string {
	return fmt.Sprintf("sent=%d skipped=%d failed=%d", r.Sent, r.Skipped, r.Failed)
}

type jobFunc func(context.Context) (JobResult, error)

func (s *Service) jobs() map[string]jobFunc {
	return map[string]jobFunc{
		JobMorning:      s.MorningReminders,
		JobLunch:        s.LunchReminders,
		JobEvening:      s.EveningSummaries,
		JobAlerts:       s.BudgetAlerts,
		JobWeekly:       s.WeeklyReports,
		JobMonthly:      s.PreviousMonthReports,
		JobMonthlyCheck: s.MonthlyCheck,
		JobPrune:        s.PruneHistory,
	}
}

// JobNames lists the jobs Run accepts, sorted.
func (s *Service) JobNames() []string {
	names := make([]string, 0, len(s.jobs()))
	for n := range s.jobs() {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Run executes the named job once.
func (s *Service) Run(ctx context.Context, name string) (JobResult, error) {
	fn, ok := s.jobs()[name]
	if !ok {
		return JobResult{}, fmt.Errorf("unknown job %q (want one of %v)", name, s.JobNames())
	}
	res, err := fn(ctx)
	s.logger.InfoContext(ctx, "Notification job finished",
		log.FieldJob, name,
		"sent", res.Sent,
		"skipped", res.Skipped,
		"failed", res.Failed,
		log.FieldError, err)
	return res, err
}

// forEachUser runs fn for every active user with the flag set. fn returns
// the message to send, or "" to skip the user. after, when set, runs once
// the message was delivered.
func (s *Service) forEachUser(ctx context.Context, kind string, flag *Preference, fn func(core.UserPrefs) (string, any, error), after func(core.UserPrefs) error) (JobResult, error) {
	users, err := s.activeUsers(ctx)
	if err != nil {
		return JobResult{}, err
	}

	var res JobResult
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if flag != nil && !flag.Get(u) {
			res.Skipped++
			continue
		}
		text, markup, err := fn(u)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to prepare notification",
				log.FieldUserID, u.UserID, log.FieldNotifyType, kind, log.FieldError, err)
			res.Failed++
			continue
		}
		if text == "" {
			res.Skipped++
			continue
		}
		if err := s.send(ctx, u.UserID, kind, text, markup); err != nil {
			res.Failed++
			continue
		}
		res.Sent++
		if after == nil {
			continue
		}
		if err := after(u); err != nil {
			s.logger.WarnContext(ctx, "Post-send step failed",
				log.FieldUserID, u.UserID, log.FieldNotifyType, kind, log.FieldError, err)
		}
	}
	return res, nil
}

func pref(p Preference) *Preference { return &p }

// MorningReminders nudges users, praising them when yesterday was tracked.
func (s *Service) MorningReminders(ctx context.Context) (JobResult, error) {
	yesterday := s.today().AddDays(-1)
	return s.forEachUser(ctx, KindMorning, pref(PrefMorning), func(u core.UserPrefs) (string, any, error) {
		tracked, err := s.loader.HasActivity(ctx, u.UserID, yesterday)
		if err != nil {
			return "", nil, err
		}
		return present.MorningReminder(tracked), nil, nil
	}, nil)
}

// LunchReminders sends the lunch reminder to users who opted in.
func (s *Service) LunchReminders(ctx context.Context) (JobResult, error) {
	return s.forEachUser(ctx, KindLunch, pref(PrefLunch), func(core.UserPrefs) (string, any, error) {
		return present.LunchReminder, nil, nil
	}, nil)
}

// EveningSummaries sends today's totals.
func (s *Service) EveningSummaries(ctx context.Context) (JobResult, error) {
	today := s.today()
	return s.forEachUser(ctx, KindEvening, pref(PrefEvening), func(u core.UserPrefs) (string, any, error) {
		sum, err := s.loader.Daily(ctx, u.UserID, today)
		if err != nil {
			return "", nil, err
		}
		return present.EveningSummary(sum), nil, nil
	}, nil)
}

// BudgetAlerts warns about budgets at or above the threshold, at most once
// per user per day.
func (s *Service) BudgetAlerts(ctx context.Context) (JobResult, error) {
	today := s.today()
	return s.forEachUser(ctx, KindBudgetAlert, pref(PrefBudgetAlerts), func(u core.UserPrefs) (string, any, error) {
		sent, err := s.history.Marked(ctx, u.UserID, KindBudgetAlert, today)
		if err != nil || sent {
			return "", nil, err
		}
		alerts, err := s.alerts(ctx, u.UserID)
		if err != nil || len(alerts) == 0 {
			return "", nil, err
		}
		return present.BudgetAlert(alerts), nil, nil
	}, func(u core.UserPrefs) error {
		return s.history.Mark(ctx, u.UserID, KindBudgetAlert, today)
	})
}

// weeklyKeyboard points at the bot's report callbacks.
func weeklyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📊 Detail Report", "report_weekly"),
		tgbotapi.NewInlineKeyboardButtonData("📈 View Trends", "report_monthly"),
	))
}

// WeeklyReports sends this week's report compared with last week.
func (s *Service) WeeklyReports(ctx context.Context) (JobResult, error) {
	today := s.today()
	return s.forEachUser(ctx, KindWeekly, pref(PrefWeekly), func(u core.UserPrefs) (string, any, error) {
		r, err := s.loader.Weekly(ctx, u.UserID, today)
		if err != nil {
			return "", nil, err
		}
		return present.WeeklyReport(r), weeklyKeyboard(), nil
	}, nil)
}

// MonthlyCheck sends last month's report on the first day of the month and
// does nothing on other days.
func (s *Service) MonthlyCheck(ctx context.Context) (JobResult, error) {
	if s.today().Day() != 1 {
		return JobResult{}, nil
	}
	return s.PreviousMonthReports(ctx)
}

// PreviousMonthReports sends the report for the month before today.
func (s *Service) PreviousMonthReports(ctx context.Context) (JobResult, error) {
	period := core.PreviousMonthRange(s.today())
	return s.forEachUser(ctx, KindMonthly, nil, func(u core.UserPrefs) (string, any, error) {
		r, err := s.loader.Monthly(ctx, u.UserID, period)
		if err != nil {
			return "", nil, err
		}
		return present.MonthlyReport(r), nil, nil
	}, nil)
}

// PruneHistory drops dedupe marks older than a week.
func (s *Service) PruneHistory(ctx context.Context) (JobResult, error) {
	return JobResult{}, s.history.PruneMarks(ctx, s.today().AddDays(-7))
}
