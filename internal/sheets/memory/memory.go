package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	ports "github.com/Artzsa/Perhitunganku-V3.0/internal/sheets"
)

// SeedFile is the file NewFromFiles looks for in its base directory.
const SeedFile = "categories.yaml"

var _ ports.Store = (*Store)(nil)

type Store struct {
	mu     sync.Mutex
	groups []core.CategoryGroup
	txs    []core.Transaction
	bgs    []core.Budget
	users  []core.UserPrefs
}

type seed struct {
	Categories []struct {
		Name  string `yaml:"name"`
		Group string `yaml:"group"`
	} `yaml:"categories"`
}

func New(groups []core.CategoryGroup) *Store {
	return &Store{groups: dedupeGroups(groups)}
}

// NewFromFiles seeds the category lookup from base/categories.yaml and falls
// back to a small default table when the file is missing or empty.
func NewFromFiles(base string) *Store {
	groups, err := readSeed(filepath.Join(base, SeedFile))
	if err != nil || len(groups) == 0 {
		groups = defaultGroups()
	}
	return New(groups)
}

func defaultGroups() []core.CategoryGroup {
	return []core.CategoryGroup{
		{Category: "makanan", Group: core.GroupNeeds},
		{Category: "transport", Group: core.GroupNeeds},
		{Category: "tagihan", Group: core.GroupNeeds},
		{Category: "hiburan", Group: core.GroupWants},
		{Category: "belanja", Group: core.GroupWants},
		{Category: "tabungan", Group: core.GroupSavings},
		{Category: "investasi", Group: core.GroupSavings},
	}
}

func readSeed(path string) ([]core.CategoryGroup, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s seed
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	out := make([]core.CategoryGroup, 0, len(s.Categories))
	for _, c := range s.Categories {
		out = append(out, core.CategoryGroup{
			Category: core.NormalizeCategory(c.Name),
			Group:    core.ParseGroup(c.Group),
		})
	}
	return out, nil
}

// AppendTransaction stores the transaction and returns a synthetic row reference.
func (s *Store) AppendTransaction(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, t)
	// +1 for the header row a real sheet would have
	return fmt.Sprintf("mem:tx:%d", len(s.txs)+1), nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...), nil
}

func (s *Store) AppendBudget(_ context.Context, b core.Budget) (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bgs = append(s.bgs, b)
	return fmt.Sprintf("mem:budget:%d", len(s.bgs)+1), nil
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Budget(nil), s.bgs...), nil
}

func (s *Store) ListCategoryGroups(_ context.Context) ([]core.CategoryGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.CategoryGroup(nil), s.groups...), nil
}

func (s *Store) ListUsers(_ context.Context) ([]core.UserPrefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.UserPrefs(nil), s.users...), nil
}

func (s *Store) GetUser(_ context.Context, userID int64) (core.UserPrefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.UserID == userID {
			return u, nil
		}
	}
	return core.UserPrefs{}, ports.ErrUserNotFound
}

func (s *Store) AddUser(_ context.Context, p core.UserPrefs) error {
	if p.UserID == 0 {
		return core.ErrMissingUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.UserID == p.UserID {
			return ports.ErrUserExists
		}
	}
	s.users = append(s.users, p)
	return nil
}

func (s *Store) UpdateUser(_ context.Context, p core.UserPrefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.UserID == p.UserID {
			s.users[i] = p
			return nil
		}
	}
	return ports.ErrUserNotFound
}

// EnsureUserTable is a no-op: the in-memory table always exists.
func (s *Store) EnsureUserTable(context.Context) error { return nil }

func dedupeGroups(in []core.CategoryGroup) []core.CategoryGroup {
	seen := map[string]struct{}{}
	out := make([]core.CategoryGroup, 0, len(in))
	for _, g := range in {
		g.Category = strings.TrimSpace(g.Category)
		if g.Category == "" {
			continue
		}
		if _, ok := seen[g.Category]; ok {
			continue
		}
		seen[g.Category] = struct{}{}
		out = append(out, g)
	}
	// Preserve input order; first mapping for a category wins.
	return out
}
