package core

import (
	"strings"
)

// ParsedLine is a transaction line without date or owner; the caller stamps
// those when the line is recorded.
type ParsedLine struct {
	Description string
	Amount      int64
	AmountState IntState
	Category    string
	Kind        Kind
}

// LineError pairs a rejected input line with the reason.
type LineError struct {
	Line string
	Err  error
}

func (e LineError) Error() string {
	return e.Line + ": " + e.Err.Error()
}

func (e LineError) Unwrap() error { return e.Err }

// ParseTransactionLine reads "<description><sign><amount>/<category>".
//
// The line must contain exactly one '/'. A '+' anywhere in the part before it
// marks income, otherwise a '-' marks expense, and that sign must occur only
// once. The amount is cleaned with CleanInteger, so an unreadable amount is
// accepted as 0 with AmountState set to IntUnparseable.
func ParseTransactionLine(text string) (ParsedLine, error) {
	parts := strings.Split(text, "/")
	switch {
	case len(parts) < 2:
		return ParsedLine{}, ErrNoCategorySeparator
	case len(parts) > 2:
		return ParsedLine{}, ErrTooManySeparators
	}
	descAmount, category := parts[0], parts[1]

	var sign string
	var kind Kind
	switch {
	case strings.Contains(descAmount, "+"):
		sign, kind = "+", KindIncome
	case strings.Contains(descAmount, "-"):
		sign, kind = "-", KindExpense
	default:
		return ParsedLine{}, ErrNoSign
	}

	pieces := strings.Split(descAmount, sign)
	if len(pieces) != 2 {
		return ParsedLine{}, ErrAmbiguousSign
	}

	desc := strings.TrimSpace(pieces[0])
	if desc == "" {
		return ParsedLine{}, ErrEmptyDescription
	}
	cat := NormalizeCategory(category)
	if cat == "" {
		return ParsedLine{}, ErrEmptyCategory
	}

	amount := CleanInteger(pieces[1])
	return ParsedLine{
		Description: desc,
		Amount:      amount.Int(),
		AmountState: amount.State,
		Category:    cat,
		Kind:        kind,
	}, nil
}

// ParseLines parses every non-blank line of a message independently.
func ParseLines(text string) ([]ParsedLine, []LineError) {
	var ok []ParsedLine
	var failed []LineError
	for _, raw := range strings.Split(strings.TrimSpace(text), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		p, err := ParseTransactionLine(line)
		if err != nil {
			failed = append(failed, LineError{Line: line, Err: err})
			continue
		}
		ok = append(ok, p)
	}
	return ok, failed
}

// Transaction stamps the parsed line with a date and owner.
func (p ParsedLine) Transaction(date Date, userID int64) Transaction {
	return Transaction{
		Date:        date,
		Description: p.Description,
		Amount:      p.Amount,
		Category:    p.Category,
		Kind:        p.Kind,
		UserID:      userID,
		AmountState: p.AmountState,
	}
}
