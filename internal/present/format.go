// Package present renders snapshots and reports as Telegram HTML messages.
package present

import (
	"html"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Thousands formats n with ',' as the thousands separator.
func Thousands(n int64) string {
	neg := n < 0
	u := uint64(n)
	if neg {
		u = uint64(-n)
	}
	s := strconv.FormatUint(u, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Rupiah renders an amount as Rp25,000; negatives as Rp-5,000.
func Rupiah(n int64) string { return "Rp" + Thousands(n) }

// RupiahDec rounds d to whole rupiah before formatting.
func RupiahDec(d decimal.Decimal) string { return Rupiah(d.Round(0).IntPart()) }

// Pct formats a percentage with the given number of decimals, without the % sign.
func Pct(d decimal.Decimal, places int32) string { return d.StringFixed(places) }

// Title upper-cases every letter that follows a non-letter and lower-cases
// the rest, so "e-money" becomes "E-Money".
func Title(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		prevLetter = false
		b.WriteRune(r)
	}
	return b.String()
}

// Esc escapes user text for HTML parse mode.
func Esc(s string) string { return html.EscapeString(s) }

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// padRight pads s with spaces to n runes.
func padRight(s string, n int) string {
	if c := len([]rune(s)); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}
