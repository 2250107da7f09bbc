package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// dayLayout is the key format of notification_marks.day.
const dayLayout = "2006-01-02"

// Notification is one delivered (or attempted) message.
type Notification struct {
	ID      int64
	UserID  int64
	Kind    string
	Message string
	Success bool
	Error   string
	SentAt  time.Time
}

// SQLiteRepository persists the notification log.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Record appends n to the log and returns its id.
func (r *SQLiteRepository) Record(ctx context.Context, n Notification) (int64, error) {
	if n.SentAt.IsZero() {
		n.SentAt = time.Now()
	}
	var errText sql.NullString
	if n.Error != "" {
		errText = sql.NullString{String: n.Error, Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notification_log (user_id, kind, message, success, error, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.UserID, n.Kind, n.Message, n.Success, errText, n.SentAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("notification id: %w", err)
	}

	slog.DebugContext(ctx, "Notification logged",
		"id", id,
		"user_id", n.UserID,
		"kind", n.Kind,
		"success", n.Success)

	return id, nil
}

// Recent returns up to limit entries for userID, newest first.
func (r *SQLiteRepository) Recent(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, kind, message, success, COALESCE(error, ''), sent_at
		 FROM notification_log
		 WHERE user_id = ?
		 ORDER BY sent_at DESC, id DESC
		 LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Message, &n.Success, &n.Error, &n.SentAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

// Prune keeps the newest keep entries for userID and returns how many were removed.
func (r *SQLiteRepository) Prune(ctx context.Context, userID int64, keep int) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notification_log
		 WHERE user_id = ? AND id NOT IN (
		     SELECT id FROM notification_log
		     WHERE user_id = ?
		     ORDER BY sent_at DESC, id DESC
		     LIMIT ?
		 )`,
		userID, userID, keep)
	if err != nil {
		return 0, fmt.Errorf("prune notifications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune notifications: %w", err)
	}
	return n, nil
}

// MarkOnce records key for userID on day. It reports false when the mark
// already existed, meaning the notification was sent earlier that day.
func (r *SQLiteRepository) MarkOnce(ctx context.Context, userID int64, key string, day time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO notification_marks (user_id, mark_key, day) VALUES (?, ?, ?)`,
		userID, key, day.Format(dayLayout))
	if err != nil {
		return false, fmt.Errorf("insert mark: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert mark: %w", err)
	}
	return n == 1, nil
}

// HasMark reports whether key was marked for userID on day.
func (r *SQLiteRepository) HasMark(ctx context.Context, userID int64, key string, day time.Time) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM notification_marks WHERE user_id = ? AND mark_key = ? AND day = ?`,
		userID, key, day.Format(dayLayout)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query mark: %w", err)
	}
	return exists > 0, nil
}

// PruneMarks removes marks older than before.
func (r *SQLiteRepository) PruneMarks(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notification_marks WHERE day < ?`, before.Format(dayLayout))
	if err != nil {
		return 0, fmt.Errorf("prune marks: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns the number of logged notifications per kind.
func (r *SQLiteRepository) Stats(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM notification_log GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var kind string
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		out[kind] = n
	}
	return out, rows.Err()
}
