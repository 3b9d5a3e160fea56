package primary

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajramo61/aem-core-wcm-components/internal/models"
	"github.com/rajramo61/aem-core-wcm-components/internal/store"
)

const selectResource = `
	SELECT path, properties, created_at, updated_at
	FROM resources
	WHERE path = $1`

func (s *StoreImpl) CreateResource(ctx context.Context, res *models.Resource) error {
	props, err := encodeJSON(res.Properties)
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}
	now := nowUTC()
	res.CreatedAt = now
	res.UpdatedAt = now
	_, err = s.db.Exec(ctx, `
		INSERT INTO resources (path, properties, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (path) DO UPDATE
		SET properties = EXCLUDED.properties, updated_at = EXCLUDED.updated_at`,
		res.Path, props, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert resource '%s': %w", res.Path, err)
	}
	return nil
}

func (s *StoreImpl) GetResource(ctx context.Context, path string) (*models.Resource, error) {
	return scanResource(s.db.QueryRow(ctx, selectResource, path))
}

func (s *StoreImpl) DeleteResource(ctx context.Context, path string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM resources WHERE path = $1`, path)
	if err != nil {
		return fmt.Errorf("delete resource '%s': %w", path, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// --- Scoped resource resolution ---

// ServiceResolver acquires a dedicated connection from the pool. The
// returned resolver is valid until Close releases the connection.
func (s *StoreImpl) ServiceResolver(ctx context.Context, subservice string) (store.ResourceResolver, error) {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: subservice '%s': %v", store.ErrLogin, subservice, err)
	}
	return &poolResolver{conn: conn}, nil
}

type poolResolver struct {
	conn *pgxpool.Conn
}

func (r *poolResolver) Resolve(ctx context.Context, path string) (*models.Resource, error) {
	return scanResource(r.conn.QueryRow(ctx, selectResource, path))
}

func (r *poolResolver) Close() error {
	r.conn.Release()
	return nil
}
