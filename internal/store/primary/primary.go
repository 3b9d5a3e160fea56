package primary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajramo61/aem-core-wcm-components/internal/models"
	"github.com/rajramo61/aem-core-wcm-components/internal/store"
)

// StoreImpl implements the repository store interfaces using PostgreSQL.
type StoreImpl struct {
	db *pgxpool.Pool
}

var (
	_ store.ResourceStore   = (*StoreImpl)(nil)
	_ store.PageStore       = (*StoreImpl)(nil)
	_ store.LibraryStore    = (*StoreImpl)(nil)
	_ store.ResolverFactory = (*StoreImpl)(nil)
	_ store.JobStore        = (*StoreImpl)(nil)
)

// NewPrimaryStore creates a new PostgreSQL-backed repository store.
func NewPrimaryStore(ctx context.Context, dsn string) (*StoreImpl, error) {
	if dsn == "" {
		return nil, errors.New("database DSN cannot be empty")
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database DSN: %w", err)
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &StoreImpl{db: dbpool}, nil
}

// Ping checks the database connection.
func (s *StoreImpl) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection pool.
func (s *StoreImpl) Close() {
	s.db.Close()
}

// --- Helper functions ---

// scanResource scans one row of (path, properties, created_at, updated_at)
// into a models.Resource, decoding the JSONB property column.
func scanResource(row pgx.Row) (*models.Resource, error) {
	var res models.Resource
	var props []byte
	if err := row.Scan(&res.Path, &props, &res.CreatedAt, &res.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if len(props) > 0 {
		if err := json.Unmarshal(props, &res.Properties); err != nil {
			return nil, fmt.Errorf("decode properties for '%s': %w", res.Path, err)
		}
	}
	return &res, nil
}

func encodeJSON(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
