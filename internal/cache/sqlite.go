package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/reliefmap/shelter-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load returns the stored snapshot. Absence of either key, or a payload that
// no longer parses, yields ok=false; corruption is logged but never surfaced.
func (s *SQLiteStore) Load(ctx context.Context) (model.Snapshot, bool, error) {
	data, ok, err := s.get(ctx, keyData)
	if err != nil || !ok {
		return model.Snapshot{}, false, err
	}
	ts, ok, err := s.get(ctx, keyTimestamp)
	if err != nil || !ok {
		return model.Snapshot{}, false, err
	}

	var facilities []model.Facility
	if err := json.Unmarshal([]byte(data), &facilities); err != nil {
		zap.L().Warn("cache payload corrupted, treating as absent", zap.Error(err))
		return model.Snapshot{}, false, nil
	}
	fetchedAt, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		zap.L().Warn("cache timestamp corrupted, treating as absent", zap.String("value", ts))
		return model.Snapshot{}, false, nil
	}

	return model.Snapshot{Facilities: facilities, FetchedAt: fetchedAt}, true, nil
}

// Save replaces the stored snapshot in full and stamps the current time.
// Empty lists are never persisted.
func (s *SQLiteStore) Save(ctx context.Context, facilities []model.Facility) error {
	if len(facilities) == 0 {
		zap.L().Debug("cache save skipped: empty facility list")
		return nil
	}

	payload, err := json.Marshal(facilities)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal facilities")
	}
	ts := strconv.FormatInt(s.now().UnixMilli(), 10)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save")
	}
	defer tx.Rollback() //nolint:errcheck

	for key, value := range map[string]string{keyData: string(payload), keyTimestamp: ts} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cache_entries (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		); err != nil {
			return eris.Wrapf(err, "sqlite: upsert %s", key)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save")
}

// Clear removes both the facility list and its timestamp.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE key IN (?, ?)`, keyData, keyTimestamp)
	return eris.Wrap(err, "sqlite: clear")
}

func (s *SQLiteStore) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrapf(err, "sqlite: get %s", key)
	}
	return value, true, nil
}
