package primary

import (
	"context"
	"fmt"

	"github.com/rajramo61/aem-core-wcm-components/internal/models"
	"github.com/rajramo61/aem-core-wcm-components/internal/store"
)

func (s *StoreImpl) GetPage(ctx context.Context, path string) (*models.Page, error) {
	res, err := s.GetResource(ctx, path)
	if err != nil {
		return nil, err
	}
	return &models.Page{Resource: *res}, nil
}

// CreatePage inserts a new page resource. Unlike CreateResource it does
// not upsert: an existing path is a conflict the caller must handle.
func (s *StoreImpl) CreatePage(ctx context.Context, page *models.Page) error {
	props, err := encodeJSON(page.Properties)
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}
	now := nowUTC()
	page.CreatedAt = now
	page.UpdatedAt = now
	tag, err := s.db.Exec(ctx, `
		INSERT INTO resources (path, properties, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (path) DO NOTHING`,
		page.Path, props, page.CreatedAt, page.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert page '%s': %w", page.Path, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrDuplicate
	}
	return nil
}

func (s *StoreImpl) ListPages(ctx context.Context, limit, offset int) ([]*models.Page, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT path, properties, created_at, updated_at
		FROM resources
		WHERE path LIKE '/content/%'
		ORDER BY path
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var pages []*models.Page
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, &models.Page{Resource: *res})
	}
	return pages, rows.Err()
}
