package notify

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/cache"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/storage"
)

const (
	// HistoryLimit is how many entries are kept per user.
	HistoryLimit = 100

	historyUsers = 10000
	historyTTL   = 7 * 24 * time.Hour
)

// Entry is one logged notification.
type Entry struct {
	Kind    string
	At      time.Time
	Success bool
}

// Persister stores history beyond the process lifetime.
// *storage.SQLiteRepository implements it.
type Persister interface {
	Record(ctx context.Context, n storage.Notification) (int64, error)
	Prune(ctx context.Context, userID int64, keep int) (int64, error)
	MarkOnce(ctx context.Context, userID int64, key string, day time.Time) (bool, error)
	HasMark(ctx context.Context, userID int64, key string, day time.Time) (bool, error)
	PruneMarks(ctx context.Context, before time.Time) (int64, error)
}

var _ Persister = (*storage.SQLiteRepository)(nil)

type markKey struct {
	userID int64
	key    string
	day    string
}

// History keeps the recent notifications per user and the once-a-day marks
// used to dedupe budget alerts. Without a Persister it lives in memory only.
type History struct {
	recent *cache.LRUCache[[]Entry]
	store  Persister

	// mu guards marks and the get-append-set in Log.
	mu    sync.Mutex
	marks map[markKey]struct{}
}

func NewHistory(store Persister, m *cache.Manager) *History {
	h := &History{
		recent: cache.NewLRUCache[[]Entry](historyUsers, historyTTL),
		store:  store,
		marks:  make(map[markKey]struct{}),
	}
	if m != nil {
		m.Register(h.recent)
	}
	return h
}

// Log appends an entry for userID and trims the list to HistoryLimit.
// Persistence errors are logged, never returned: a notification that went
// out must not be reported as failed because its log row did not.
func (h *History) Log(ctx context.Context, userID int64, kind, message string, sendErr error) {
	now := time.Now()
	key := strconv.FormatInt(userID, 10)

	// Copy on write: Recent may be reading the previous slice.
	h.mu.Lock()
	prev, _ := h.recent.Get(key)
	start := max(0, len(prev)+1-HistoryLimit)
	entries := make([]Entry, 0, len(prev)-start+1)
	entries = append(entries, prev[start:]...)
	entries = append(entries, Entry{Kind: kind, At: now, Success: sendErr == nil})
	h.recent.Set(key, entries)
	h.mu.Unlock()

	if h.store == nil {
		return
	}
	n := storage.Notification{UserID: userID, Kind: kind, Message: message, Success: sendErr == nil, SentAt: now}
	if sendErr != nil {
		n.Error = sendErr.Error()
	}
	if _, err := h.store.Record(ctx, n); err != nil {
		slog.WarnContext(ctx, "Failed to persist notification", "user_id", userID, "kind", kind, "error", err)
		return
	}
	if _, err := h.store.Prune(ctx, userID, HistoryLimit); err != nil {
		slog.WarnContext(ctx, "Failed to prune notification log", "user_id", userID, "error", err)
	}
}

// Recent returns the in-memory entries for userID, oldest first.
func (h *History) Recent(userID int64) []Entry {
	entries, _ := h.recent.Get(strconv.FormatInt(userID, 10))
	return append([]Entry(nil), entries...)
}

// Marked reports whether key was marked for userID on day.
func (h *History) Marked(ctx context.Context, userID int64, key string, day core.Date) (bool, error) {
	if h.store != nil {
		return h.store.HasMark(ctx, userID, key, day.Time)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.marks[markKey{userID, key, day.Sheet()}]
	return ok, nil
}

// Mark records key for userID on day.
func (h *History) Mark(ctx context.Context, userID int64, key string, day core.Date) error {
	if h.store != nil {
		_, err := h.store.MarkOnce(ctx, userID, key, day.Time)
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.marks[markKey{userID, key, day.Sheet()}] = struct{}{}
	return nil
}

// PruneMarks drops marks for days before the given day.
func (h *History) PruneMarks(ctx context.Context, before core.Date) error {
	if h.store != nil {
		_, err := h.store.PruneMarks(ctx, before.Time)
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for k := range h.marks {
		if d, ok := core.ParseDate(k.day); ok && d.Before(before) {
			delete(h.marks, k)
		}
	}
	return nil
}
