// Package cached wraps a row store with short-lived read caches. Every
// report load reads whole tables, so a scheduler pass over many users
// would otherwise fetch the same rows once per user.
//
// Reads may be up to ttl stale: writes made by other processes or by hand
// in the sheet are not seen until the entry expires. Only enabled through
// STORE_CACHE_TTL.
package cached

import (
	"context"
	"strconv"
	"time"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/cache"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	ports "github.com/Artzsa/Perhitunganku-V3.0/internal/sheets"
)

const (
	keyAll    = "all"
	userSlots = 1024
)

var _ ports.Store = (*Store)(nil)

// Store serves list calls from cache and invalidates on writes.
type Store struct {
	next   ports.Store
	txs    *cache.LRUCache[[]core.Transaction]
	bgs    *cache.LRUCache[[]core.Budget]
	groups *cache.LRUCache[[]core.CategoryGroup]
	users  *cache.LRUCache[core.UserPrefs]
}

// New wraps next. Table reads live for ttl; category groups, which change
// by hand only, live ten times longer.
func New(next ports.Store, ttl time.Duration, m *cache.Manager) *Store {
	s := &Store{
		next:   next,
		txs:    cache.NewLRUCache[[]core.Transaction](1, ttl),
		bgs:    cache.NewLRUCache[[]core.Budget](1, ttl),
		groups: cache.NewLRUCache[[]core.CategoryGroup](1, 10*ttl),
		users:  cache.NewLRUCache[core.UserPrefs](userSlots, ttl),
	}
	if m != nil {
		m.Register(s.txs)
		m.Register(s.bgs)
		m.Register(s.groups)
		m.Register(s.users)
	}
	return s
}

// Invalidate drops every cached table.
func (s *Store) Invalidate() {
	s.txs.Purge()
	s.bgs.Purge()
	s.groups.Purge()
	s.users.Purge()
}

func (s *Store) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	ref, err := s.next.AppendTransaction(ctx, t)
	s.txs.Delete(keyAll)
	return ref, err
}

func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.txs.GetOrLoad(keyAll, func() ([]core.Transaction, error) {
		return s.next.ListTransactions(ctx)
	})
}

func (s *Store) AppendBudget(ctx context.Context, b core.Budget) (string, error) {
	ref, err := s.next.AppendBudget(ctx, b)
	s.bgs.Delete(keyAll)
	return ref, err
}

func (s *Store) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return s.bgs.GetOrLoad(keyAll, func() ([]core.Budget, error) {
		return s.next.ListBudgets(ctx)
	})
}

func (s *Store) ListCategoryGroups(ctx context.Context) ([]core.CategoryGroup, error) {
	return s.groups.GetOrLoad(keyAll, func() ([]core.CategoryGroup, error) {
		return s.next.ListCategoryGroups(ctx)
	})
}

// ListUsers always reads through; the scheduler needs current opt-outs.
func (s *Store) ListUsers(ctx context.Context) ([]core.UserPrefs, error) {
	return s.next.ListUsers(ctx)
}

func (s *Store) GetUser(ctx context.Context, userID int64) (core.UserPrefs, error) {
	return s.users.GetOrLoad(userKey(userID), func() (core.UserPrefs, error) {
		return s.next.GetUser(ctx, userID)
	})
}

func (s *Store) AddUser(ctx context.Context, p core.UserPrefs) error {
	defer s.users.Delete(userKey(p.UserID))
	return s.next.AddUser(ctx, p)
}

func (s *Store) UpdateUser(ctx context.Context, p core.UserPrefs) error {
	defer s.users.Delete(userKey(p.UserID))
	return s.next.UpdateUser(ctx, p)
}

func (s *Store) EnsureUserTable(ctx context.Context) error {
	return s.next.EnsureUserTable(ctx)
}

func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
