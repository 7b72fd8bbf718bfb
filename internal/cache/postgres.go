package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/reliefmap/shelter-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool used by the store, extracted so tests
// can substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool, for hosted deployments where
// several serve instances share one cache.
type PostgresStore struct {
	pool Pool
	now  func() time.Time
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, now: time.Now}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (model.Snapshot, bool, error) {
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

func (s *PostgresStore) Save(ctx context.Context, facilities []model.Facility) error {
	if len(facilities) == 0 {
		zap.L().Debug("cache save skipped: empty facility list")
		return nil
	}

	payload, err := json.Marshal(facilities)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal facilities")
	}
	ts := strconv.FormatInt(s.now().UnixMilli(), 10)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin save")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, kv := range [][2]string{{keyData, string(payload)}, {keyTimestamp, ts}} {
		if _, err := tx.Exec(ctx,
			`INSERT INTO cache_entries (key, value) VALUES ($1, $2)
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
			kv[0], kv[1],
		); err != nil {
			return eris.Wrapf(err, "postgres: upsert %s", kv[0])
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit save")
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM cache_entries WHERE key IN ($1, $2)`, keyData, keyTimestamp)
	return eris.Wrap(err, "postgres: clear")
}

func (s *PostgresStore) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM cache_entries WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrapf(err, "postgres: get %s", key)
	}
	return value, true, nil
}
