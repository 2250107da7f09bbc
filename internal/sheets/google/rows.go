package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/middleware/security"
)

// Column names as they appear on row 1 of each sheet.
const (
	colDate        = "Tanggal"
	colAmount      = "Nominal"
	colDescription = "Keterangan"
	colCategory    = "Kategori"
	colKind        = "Tipe"
	colUserID      = "ID User"
	colBudget      = "Budget"
	colGroup       = "Grup503020"
)

// Header rows written by EnsureHeaders and expected by the decoders.
var (
	TransactionHeader = []any{colDate, colAmount, colDescription, colCategory, colKind, colUserID}
	BudgetHeader      = []any{colDate, colCategory, colBudget, colUserID}
	CategoryHeader    = []any{colCategory, colGroup}
	UserHeader        = []any{
		"user_id", "username", "notifications_enabled", "morning_reminder", "evening_summary",
		"lunch_reminder", "budget_alerts", "weekly_report", "last_active", "timezone",
	}
)

// lastActiveLayout is how the users sheet stores last_active.
const lastActiveLayout = "2006-01-02 15:04:05"

// Header maps column names to indices. Lookups are case-insensitive and fall
// back to the default position when a column is missing, so both reordered
// and header-less sheets decode.
type Header map[string]int

// NewHeader indexes the first row of a sheet.
func NewHeader(row []any) Header {
	h := Header{}
	for i, name := range toStrings(row) {
		key := strings.ToLower(name)
		if _, dup := h[key]; key == "" || dup {
			continue
		}
		h[key] = i
	}
	return h
}

func (h Header) col(name string, fallback []any) int {
	if i, ok := h[strings.ToLower(name)]; ok {
		return i
	}
	for i, v := range fallback {
		if v == name {
			return i
		}
	}
	return -1
}

// DecodeTransactionRow reads one transactions-sheet row. ok is false when the
// date cell does not parse, which also skips the header row itself.
func DecodeTransactionRow(h Header, row []any) (t core.Transaction, ok bool) {
	date, ok := core.ParseDate(cell(row, h.col(colDate, TransactionHeader)))
	if !ok {
		return core.Transaction{}, false
	}
	amount := core.CleanInteger(cell(row, h.col(colAmount, TransactionHeader)))
	uid := core.CleanInteger(cell(row, h.col(colUserID, TransactionHeader)))
	return core.Transaction{
		Date:        date,
		Description: text(row, h.col(colDescription, TransactionHeader)),
		Amount:      amount.Int(),
		AmountState: amount.State,
		Category:    core.NormalizeCategory(text(row, h.col(colCategory, TransactionHeader))),
		Kind:        core.ParseKind(text(row, h.col(colKind, TransactionHeader))),
		UserID:      uid.Int(),
	}, true
}

// DecodeBudgetRow reads one budgets-sheet row; see DecodeTransactionRow.
func DecodeBudgetRow(h Header, row []any) (core.Budget, bool) {
	date, ok := core.ParseDate(cell(row, h.col(colDate, BudgetHeader)))
	if !ok {
		return core.Budget{}, false
	}
	amount := core.CleanInteger(cell(row, h.col(colBudget, BudgetHeader)))
	uid := core.CleanInteger(cell(row, h.col(colUserID, BudgetHeader)))
	return core.Budget{
		Date:        date,
		Category:    core.NormalizeCategory(text(row, h.col(colCategory, BudgetHeader))),
		Amount:      amount.Int(),
		AmountState: amount.State,
		UserID:      uid.Int(),
	}, true
}

// DecodeCategoryRow reads one lookup row. Rows without a category are skipped.
func DecodeCategoryRow(h Header, row []any) (core.CategoryGroup, bool) {
	cat := core.NormalizeCategory(text(row, h.col(colCategory, CategoryHeader)))
	if cat == "" || cat == strings.ToLower(colCategory) {
		return core.CategoryGroup{}, false
	}
	return core.CategoryGroup{
		Category: cat,
		Group:    core.ParseGroup(text(row, h.col(colGroup, CategoryHeader))),
	}, true
}

// DecodeUserRow reads one users-sheet row. Rows without a numeric user id
// (including the header) are skipped. Missing flags take their defaults.
func DecodeUserRow(h Header, row []any) (core.UserPrefs, bool) {
	uid := core.CleanInteger(cell(row, h.col("user_id", UserHeader)))
	if !uid.Ok() || uid.Int() == 0 {
		return core.UserPrefs{}, false
	}
	p := core.DefaultPrefs(uid.Int(), text(row, h.col("username", UserHeader)), time.Time{})
	p.NotificationsEnabled = flag(row, h.col("notifications_enabled", UserHeader), p.NotificationsEnabled)
	p.MorningReminder = flag(row, h.col("morning_reminder", UserHeader), p.MorningReminder)
	p.EveningSummary = flag(row, h.col("evening_summary", UserHeader), p.EveningSummary)
	p.LunchReminder = flag(row, h.col("lunch_reminder", UserHeader), p.LunchReminder)
	p.BudgetAlerts = flag(row, h.col("budget_alerts", UserHeader), p.BudgetAlerts)
	p.WeeklyReport = flag(row, h.col("weekly_report", UserHeader), p.WeeklyReport)
	if ts, err := time.Parse(lastActiveLayout, text(row, h.col("last_active", UserHeader))); err == nil {
		p.LastActive = ts
	}
	if tz := text(row, h.col("timezone", UserHeader)); tz != "" {
		p.Timezone = tz
	}
	return p, true
}

// EncodeTransactionRow is the inverse of DecodeTransactionRow for the
// default column order.
func EncodeTransactionRow(t core.Transaction) []any {
	return []any{t.Date.Sheet(), t.Amount, security.SanitizeCell(t.Description), security.SanitizeCell(t.Category), string(t.Kind), t.UserID}
}

func EncodeBudgetRow(b core.Budget) []any {
	return []any{b.Date.Sheet(), security.SanitizeCell(b.Category), b.Amount, b.UserID}
}

func EncodeUserRow(p core.UserPrefs) []any {
	return append([]any{p.UserID, p.Username}, encodeUserPrefs(p)...)
}

// encodeUserPrefs renders columns C through J of a users row.
func encodeUserPrefs(p core.UserPrefs) []any {
	lastActive := ""
	if !p.LastActive.IsZero() {
		lastActive = p.LastActive.Format(lastActiveLayout)
	}
	return []any{
		strconv.FormatBool(p.NotificationsEnabled),
		strconv.FormatBool(p.MorningReminder),
		strconv.FormatBool(p.EveningSummary),
		strconv.FormatBool(p.LunchReminder),
		strconv.FormatBool(p.BudgetAlerts),
		strconv.FormatBool(p.WeeklyReport),
		lastActive,
		p.Timezone,
	}
}

func flag(row []any, idx int, def bool) bool {
	switch strings.ToLower(text(row, idx)) {
	case "true":
		return true
	case "false":
		return false
	}
	return def
}

func cell(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func text(row []any, idx int) string {
	v := cell(row, idx)
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
