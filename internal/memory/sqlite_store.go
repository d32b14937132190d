package memory

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

// DefaultSQLitePath is the database location used when none is configured.
const DefaultSQLitePath = "data/memory.db"

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS memories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		user_input TEXT NOT NULL,
		ai_response TEXT NOT NULL,
		emotion_tag TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'general'
	);

	CREATE INDEX IF NOT EXISTS idx_memories_timestamp ON memories(timestamp);
`

// SQLiteStore implements Store on a local SQLite file.
//
// The database is opened at the start of every operation and closed before it
// returns, so no handle outlives a single call. The file and its parent
// directory are created by Init.
type SQLiteStore struct {
	path   string
	now    func() time.Time
	logger *slog.Logger
}

// NewSQLiteStore creates a store for the database file at path. Nothing is
// opened until the first operation. An empty path selects DefaultSQLitePath.
func NewSQLiteStore(path string, logger *slog.Logger) *SQLiteStore {
	if path == "" {
		path = DefaultSQLitePath
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteStore{path: path, now: time.Now, logger: logger}
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) dsn() string {
	return s.path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// withDB opens the database, runs fn and always closes the handle. Only Init
// may create the file; other operations on a missing file fail with
// ErrStorageUnavailable instead of leaving an empty database behind.
func (s *SQLiteStore) withDB(ctx context.Context, create bool, fn func(db *sql.DB) error) error {
	if !create {
		if _, err := os.Stat(s.path); err != nil {
			return fmt.Errorf("%w: database %s is not initialized: %w", ErrStorageUnavailable, s.path, err)
		}
	}

	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("%w: failed to open database %s: %w", ErrStorageUnavailable, s.path, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: failed to ping database %s: %w", ErrStorageUnavailable, s.path, err)
	}

	return fn(db)
}

// Init creates the parent directory, the database file and the memories table.
func (s *SQLiteStore) Init(ctx context.Context) error {
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: failed to create data directory: %w", ErrStorageUnavailable, err)
		}
	}

	err := s.withDB(ctx, true, func(db *sql.DB) error {
		if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
			return fmt.Errorf("%w: failed to initialize schema: %w", ErrStorageUnavailable, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("memory: sqlite store ready", "path", s.path)
	return nil
}

// Append inserts one exchange.
func (s *SQLiteStore) Append(ctx context.Context, userInput, aiResponse, emotionTag, category string) error {
	ts := formatTimestamp(s.now())
	category = normalizeCategory(category)

	err := s.withDB(ctx, false, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO memories (timestamp, user_input, ai_response, emotion_tag, category)
			VALUES (?, ?, ?, ?, ?)
		`, ts, userInput, aiResponse, emotionTag, category)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: failed to save memory: %w", ErrStorageWrite, err)
	}

	return nil
}

// Recent returns the newest limit records. Records written within the same
// timestamp fall back to insertion order.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]MemoryRecord, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	records := make([]MemoryRecord, 0, limit)
	err := s.withDB(ctx, false, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT id, timestamp, user_input, ai_response,
			       COALESCE(emotion_tag, ''), COALESCE(category, 'general')
			FROM memories
			ORDER BY timestamp DESC, id DESC
			LIMIT ?
		`, limit)
		if err != nil {
			return fmt.Errorf("%w: failed to query memories: %w", ErrStorageUnavailable, err)
		}
		defer rows.Close()

		for rows.Next() {
			var rec MemoryRecord
			var ts string
			if err := rows.Scan(&rec.ID, &ts, &rec.UserInput, &rec.AIResponse, &rec.EmotionTag, &rec.Category); err != nil {
				return fmt.Errorf("failed to scan memory: %w", err)
			}
			rec.Timestamp, err = parseTimestamp(ts)
			if err != nil {
				s.logger.Warn("memory: unparseable timestamp", "id", rec.ID, "timestamp", ts)
			}
			records = append(records, rec)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating memories: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// GroupCounts aggregates the whole log by (category, emotion tag).
func (s *SQLiteStore) GroupCounts(ctx context.Context, limit int) ([]GroupCount, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	var groups []GroupCount
	err := s.withDB(ctx, false, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT COALESCE(category, 'general'), COALESCE(emotion_tag, ''), COUNT(*)
			FROM memories
			GROUP BY 1, 2
			ORDER BY COUNT(*) DESC, MAX(id) DESC, 1, 2
			LIMIT ?
		`, limit)
		if err != nil {
			return fmt.Errorf("%w: failed to query memory groups: %w", ErrStorageUnavailable, err)
		}
		defer rows.Close()

		for rows.Next() {
			var g GroupCount
			if err := rows.Scan(&g.Category, &g.EmotionTag, &g.Count); err != nil {
				return fmt.Errorf("failed to scan memory group: %w", err)
			}
			groups = append(groups, g)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating memory groups: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return groups, nil
}

// Close is a no-op; handles are released at the end of each operation.
func (s *SQLiteStore) Close() error {
	return nil
}

var _ Store = (*SQLiteStore)(nil)
