// Package core provides the domain model and input parsing.
//
// This file contains the integer cleaning used for every amount cell and
// every user-typed amount. Cleaning never fails outright: the result is tagged
// so callers can tell a real zero from a value that could not be read.
package core

import (
	"math"
	"strconv"
	"strings"
)

// IntState tags how an IntResult was produced.
type IntState int

const (
	// IntParsed means the input held a readable number.
	IntParsed IntState = iota
	// IntEmpty means the input was nil or blank and was read as zero.
	IntEmpty
	// IntUnparseable means the input could not be read and was coerced to zero.
	IntUnparseable
)

func (s IntState) String() string {
	switch s {
	case IntParsed:
		return "parsed"
	case IntEmpty:
		return "empty"
	case IntUnparseable:
		return "unparseable"
	}
	return "unknown"
}

// IntResult is the outcome of CleanInteger.
type IntResult struct {
	Value int64
	State IntState
}

// Int returns the cleaned value, which is 0 unless State is IntParsed.
func (r IntResult) Int() int64 { return r.Value }

// Ok reports whether the input was a readable number.
func (r IntResult) Ok() bool { return r.State == IntParsed }

// CleanInteger converts a cell or user-typed amount to an integer.
//
// Numbers are truncated toward zero. Strings have "Rp", "," and "." removed
// before parsing, so "Rp25.000" and "25,000" both read as 25000.
//
// Examples:
//
//	CleanInteger("Rp25.000") -> {25000, IntParsed}
//	CleanInteger("abc")      -> {0, IntUnparseable}
//	CleanInteger(nil)        -> {0, IntEmpty}
func CleanInteger(v any) IntResult {
	switch x := v.(type) {
	case nil:
		return IntResult{State: IntEmpty}
	case int:
		return IntResult{Value: int64(x)}
	case int32:
		return IntResult{Value: int64(x)}
	case int64:
		return IntResult{Value: x}
	case float32:
		return truncFloat(float64(x))
	case float64:
		return truncFloat(x)
	case bool:
		if x {
			return IntResult{Value: 1}
		}
		return IntResult{}
	case string:
		return cleanString(x)
	case []byte:
		return cleanString(string(x))
	default:
		return IntResult{State: IntUnparseable}
	}
}

func truncFloat(f float64) IntResult {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return IntResult{State: IntUnparseable}
	}
	return IntResult{Value: int64(f)}
}

var amountReplacer = strings.NewReplacer("Rp", "", ",", "", ".", "")

func cleanString(s string) IntResult {
	s = strings.TrimSpace(amountReplacer.Replace(s))
	if s == "" {
		return IntResult{State: IntEmpty}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return IntResult{State: IntUnparseable}
	}
	return IntResult{Value: n}
}
