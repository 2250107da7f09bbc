package sheets

import (
	"context"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
)

// Ports for outbound adapters.
type (
	TransactionWriter interface {
		AppendTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// TransactionLister returns every decoded transaction row. Filtering by
	// user and period is done by the caller.
	TransactionLister interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	BudgetWriter interface {
		AppendBudget(ctx context.Context, b core.Budget) (rowRef string, err error)
	}

	BudgetLister interface {
		ListBudgets(ctx context.Context) ([]core.Budget, error)
	}

	// CategoryLister reads the category to 50/30/20 group lookup table.
	CategoryLister interface {
		ListCategoryGroups(ctx context.Context) ([]core.CategoryGroup, error)
	}

	// UserStore keeps notification preferences, one row per user.
	UserStore interface {
		ListUsers(ctx context.Context) ([]core.UserPrefs, error)
		// GetUser returns ErrUserNotFound when the user has no row.
		GetUser(ctx context.Context, userID int64) (core.UserPrefs, error)
		AddUser(ctx context.Context, p core.UserPrefs) error
		UpdateUser(ctx context.Context, p core.UserPrefs) error
		// EnsureUserTable creates the users table with its header if missing.
		EnsureUserTable(ctx context.Context) error
	}

	// Store is everything the bot and the notifier need from the row store.
	Store interface {
		TransactionWriter
		TransactionLister
		BudgetWriter
		BudgetLister
		CategoryLister
		UserStore
	}
)
