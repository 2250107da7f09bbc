package report

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	ports "github.com/Artzsa/Perhitunganku-V3.0/internal/sheets"
)

// Source is the read side of the row store.
type Source interface {
	ports.TransactionLister
	ports.BudgetLister
	ports.CategoryLister
}

// Loader fetches rows and builds snapshots. It holds no state between calls.
type Loader struct {
	src    Source
	logger *slog.Logger
}

func NewLoader(src Source, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{src: src, logger: logger}
}

// Fetch reads the three tables concurrently.
func (l *Loader) Fetch(ctx context.Context) (Rows, error) {
	var rows Rows
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs, err := l.src.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		rows.Transactions = txs
		return nil
	})
	g.Go(func() error {
		bs, err := l.src.ListBudgets(gctx)
		if err != nil {
			return fmt.Errorf("list budgets: %w", err)
		}
		rows.Budgets = bs
		return nil
	})
	g.Go(func() error {
		gs, err := l.src.ListCategoryGroups(gctx)
		if err != nil {
			return fmt.Errorf("list category groups: %w", err)
		}
		rows.Groups = gs
		return nil
	})
	if err := g.Wait(); err != nil {
		return Rows{}, err
	}
	return rows, nil
}

// Load fetches once and builds the snapshot for userID over period.
func (l *Loader) Load(ctx context.Context, userID int64, period core.Range) (*Snapshot, error) {
	snaps, err := l.LoadPeriods(ctx, userID, period)
	if err != nil {
		return nil, err
	}
	return snaps[0], nil
}

// LoadPeriods fetches once and builds one snapshot per period.
func (l *Loader) LoadPeriods(ctx context.Context, userID int64, periods ...core.Range) ([]*Snapshot, error) {
	rows, err := l.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Snapshot, len(periods))
	for i, p := range periods {
		s := Build(rows, userID, p)
		if q := s.Quality(); q.Flagged() > 0 {
			l.logger.WarnContext(ctx, "Rows with unreadable amounts counted as zero",
				"user_id", userID,
				"period", p.String(),
				"empty", q.EmptyAmounts,
				"unparseable", q.UnparseableAmounts)
		}
		out[i] = s
	}
	return out, nil
}
