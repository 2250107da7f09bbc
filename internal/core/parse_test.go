package core

import (
	"errors"
	"strconv"
	"testing"
)

func TestParseTransactionLine(t *testing.T) {
	cases := []struct {
		in   string
		want ParsedLine
		err  error
	}{
		{
			in:   "Makan siang -25000 /makanan",
			want: ParsedLine{Description: "Makan siang", Amount: 25000, Category: "makanan", Kind: KindExpense},
		},
		{
			in:   "Gaji +3000000 /Gaji",
			want: ParsedLine{Description: "Gaji", Amount: 3000000, Category: "gaji", Kind: KindIncome},
		},
		{
			in:   "Bensin -Rp20.000 / Transport ",
			want: ParsedLine{Description: "Bensin", Amount: 20000, Category: "transport", Kind: KindExpense},
		},
		{
			// '+' wins over '-' when both are present
			in:   "Top-up +50000 /saldo",
			want: ParsedLine{Description: "Top-up", Amount: 50000, Category: "saldo", Kind: KindIncome},
		},
		{
			in:   "Parkir -dua ribu /transport",
			want: ParsedLine{Description: "Parkir", Amount: 0, AmountState: IntUnparseable, Category: "transport", Kind: KindExpense},
		},
		{in: "Makan siang 25000 makanan", err: ErrNoCategorySeparator},
		{in: "Makan siang -25000", err: ErrNoCategorySeparator},
		{in: "Makan -25000 /makanan/extra", err: ErrTooManySeparators},
		{in: "Makan 25000 /makanan", err: ErrNoSign},
		{in: "Beli e-money -25000 /transport", err: ErrAmbiguousSign},
		{in: "-25000 /makanan", err: ErrEmptyDescription},
		{in: "Makan -25000 / ", err: ErrEmptyCategory},
	}
	for _, tc := range cases {
		got, err := ParseTransactionLine(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%q expected %v, got %v", tc.in, tc.err, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q expected %+v, got %+v", tc.in, tc.want, got)
		}
	}
}

func TestParseTransactionLineSignProperty(t *testing.T) {
	for _, n := range []int64{1, 500, 25000, 1234567} {
		for _, cat := range []string{"Makanan", "GAJI", "transport"} {
			inc, err := ParseTransactionLine("desc +" + strconv.FormatInt(n, 10) + " /" + cat)
			if err != nil || inc.Kind != KindIncome || inc.Amount != n || inc.Category != NormalizeCategory(cat) {
				t.Fatalf("income %d/%s: got %+v err=%v", n, cat, inc, err)
			}
			exp, err := ParseTransactionLine("desc -" + strconv.FormatInt(n, 10) + " /" + cat)
			if err != nil || exp.Kind != KindExpense || exp.Amount != n {
				t.Fatalf("expense %d/%s: got %+v err=%v", n, cat, exp, err)
			}
		}
	}
}

func TestParseLinesCollectsIndependently(t *testing.T) {
	ok, failed := ParseLines("Sarapan -10000 /makanan\n\nsalah format\nFreelance +200000 /freelance\n")
	if len(ok) != 2 {
		t.Fatalf("expected 2 parsed lines, got %d", len(ok))
	}
	if len(failed) != 1 || failed[0].Line != "salah format" {
		t.Fatalf("unexpected failures: %+v", failed)
	}
	if !errors.Is(failed[0], ErrNoCategorySeparator) {
		t.Fatalf("failure should unwrap to the parse error, got %v", failed[0].Err)
	}

	tx := ok[0].Transaction(NewDate(2024, 1, 5), 99)
	if tx.UserID != 99 || tx.Category != "makanan" || tx.Amount != 10000 || !tx.Date.Equal(NewDate(2024, 1, 5)) {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
}

func TestParseLinesOneValidOneInvalid(t *testing.T) {
	ok, failed := ParseLines("Makan siang -25000 /makanan\nMakan siang 25000 makanan")
	if len(ok) != 1 || len(failed) != 1 {
		t.Fatalf("expected one success and one failure, got %d/%d", len(ok), len(failed))
	}
}
