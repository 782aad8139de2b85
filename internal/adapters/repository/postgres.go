package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/model"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/types"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/metrics"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS predictions (
	id          TEXT PRIMARY KEY,
	task        TEXT NOT NULL,
	model_uri   TEXT NOT NULL,
	label       TEXT NOT NULL DEFAULT '',
	confidence  DOUBLE PRECISION NOT NULL DEFAULT 0,
	amount      DOUBLE PRECISION NOT NULL DEFAULT 0,
	currency    TEXT NOT NULL DEFAULT '',
	features    JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS predictions_task_created_idx ON predictions (task, created_at DESC);
`

const selectColumns = `SELECT id, task, model_uri, label, confidence, amount, currency, features, created_at FROM predictions`

// querier is the part of *pgxpool.Pool the store uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps prediction history in a Postgres table.
type PostgresStore struct {
	db    querier
	close func()
}

// NewPostgresStore connects to dsn, checks the connection and creates the
// predictions table if needed.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{db: pool, close: pool.Close}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the predictions table and its index.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Save implements Store.Save. Features are stored as JSONB.
func (s *PostgresStore) Save(ctx context.Context, p model.Prediction) error {
	if p.ID == "" {
		return fmt.Errorf("save prediction: empty id")
	}
	start := time.Now()
	_, err := s.db.Exec(ctx,
		`INSERT INTO predictions (id, task, model_uri, label, confidence, amount, currency, features, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO NOTHING`,
		p.ID, string(p.Task), p.ModelURI, p.Label, p.Confidence, p.Amount, p.Currency, p.Features, p.CreatedAt,
	)
	if err != nil {
		metrics.RecordErrorLatency("repository", "insert", float64(time.Since(start).Milliseconds()))
		return fmt.Errorf("insert prediction %s: %w", p.ID, err)
	}
	return nil
}

// Get implements Store.Get.
func (s *PostgresStore) Get(ctx context.Context, id string) (model.Prediction, error) {
	p, err := scanPrediction(s.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Prediction{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return model.Prediction{}, fmt.Errorf("get prediction %s: %w", id, err)
	}
	return p, nil
}

// Recent implements Store.Recent.
func (s *PostgresStore) Recent(ctx context.Context, task types.Task, limit int) ([]model.Prediction, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	var (
		rows pgx.Rows
		err  error
	)
	if task == "" {
		rows, err = s.db.Query(ctx, selectColumns+` ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	} else {
		rows, err = s.db.Query(ctx, selectColumns+` WHERE task = $1 ORDER BY created_at DESC, id DESC LIMIT $2`, string(task), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	out := make([]model.Prediction, 0, limit)
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count implements Store.Count.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM predictions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count predictions: %w", err)
	}
	return int(n), nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

func scanPrediction(row pgx.Row) (model.Prediction, error) {
	var (
		p    model.Prediction
		task string
	)
	err := row.Scan(&p.ID, &task, &p.ModelURI, &p.Label, &p.Confidence, &p.Amount, &p.Currency, &p.Features, &p.CreatedAt)
	p.Task = types.Task(task)
	return p, err
}

var _ Store = (*PostgresStore)(nil)
