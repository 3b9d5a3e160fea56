package primary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rajramo61/aem-core-wcm-components/internal/models"
	"github.com/rajramo61/aem-core-wcm-components/internal/store"
)

const selectLibrary = `
	SELECT path, categories, kinds, dependencies, embeds, created_at, updated_at
	FROM clientlibs`

func scanLibrary(row pgx.Row) (*models.ClientLibrary, error) {
	var lib models.ClientLibrary
	var categories, kinds, dependencies, embeds []byte
	err := row.Scan(&lib.Path, &categories, &kinds, &dependencies, &embeds, &lib.CreatedAt, &lib.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	for _, col := range []struct {
		raw  []byte
		dest *[]string
	}{
		{categories, &lib.Categories},
		{kinds, &lib.Kinds},
		{dependencies, &lib.Dependencies},
		{embeds, &lib.Embeds},
	} {
		if len(col.raw) > 0 {
			if err := json.Unmarshal(col.raw, col.dest); err != nil {
				return nil, fmt.Errorf("decode library '%s': %w", lib.Path, err)
			}
		}
	}
	return &lib, nil
}

// RegisterLibrary stores a library definition and its per-kind payloads.
// Re-registering an existing path replaces both.
func (s *StoreImpl) RegisterLibrary(ctx context.Context, lib *models.ClientLibrary, content map[models.LibraryKind]store.LibraryContent) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin register library: %w", err)
	}
	defer tx.Rollback(ctx)

	categories, _ := encodeJSON(lib.Categories)
	kinds, _ := encodeJSON(lib.Kinds)
	dependencies, _ := encodeJSON(lib.Dependencies)
	embeds, _ := encodeJSON(lib.Embeds)
	now := nowUTC()
	lib.CreatedAt = now
	lib.UpdatedAt = now

	_, err = tx.Exec(ctx, `
		INSERT INTO clientlibs (path, categories, kinds, dependencies, embeds, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (path) DO UPDATE
		SET categories = EXCLUDED.categories, kinds = EXCLUDED.kinds,
		    dependencies = EXCLUDED.dependencies, embeds = EXCLUDED.embeds,
		    updated_at = EXCLUDED.updated_at`,
		lib.Path, categories, kinds, dependencies, embeds, lib.CreatedAt, lib.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert library '%s': %w", lib.Path, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM clientlib_content WHERE lib_path = $1`, lib.Path); err != nil {
		return fmt.Errorf("clear library content '%s': %w", lib.Path, err)
	}
	for kind, c := range content {
		if _, err := tx.Exec(ctx, `
			INSERT INTO clientlib_content (lib_path, kind, minified, content)
			VALUES ($1, $2, false, $3)`, lib.Path, kind.Name(), c.Raw); err != nil {
			return fmt.Errorf("store library content '%s' (%s): %w", lib.Path, kind.Name(), err)
		}
		if c.Minified != "" {
			if _, err := tx.Exec(ctx, `
				INSERT INTO clientlib_content (lib_path, kind, minified, content)
				VALUES ($1, $2, true, $3)`, lib.Path, kind.Name(), c.Minified); err != nil {
				return fmt.Errorf("store minified library content '%s' (%s): %w", lib.Path, kind.Name(), err)
			}
		}
	}

	return tx.Commit(ctx)
}

// UnregisterLibrary drops a library definition together with its payloads.
func (s *StoreImpl) UnregisterLibrary(ctx context.Context, path string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unregister library: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM clientlib_content WHERE lib_path = $1`, path); err != nil {
		return fmt.Errorf("clear library content '%s': %w", path, err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM clientlibs WHERE path = $1`, path)
	if err != nil {
		return fmt.Errorf("delete library '%s': %w", path, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return tx.Commit(ctx)
}

func (s *StoreImpl) GetLibrary(ctx context.Context, path string) (*models.ClientLibrary, error) {
	return scanLibrary(s.db.QueryRow(ctx, selectLibrary+` WHERE path = $1`, path))
}

func (s *StoreImpl) ListLibraries(ctx context.Context, limit, offset int) ([]*models.ClientLibrary, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, selectLibrary+` ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	defer rows.Close()
	return collectLibraries(rows)
}

// LibrariesByCategory returns the matching libraries of the given kind in
// registration order, which is the order the manager preserves.
func (s *StoreImpl) LibrariesByCategory(ctx context.Context, category string, kind models.LibraryKind) ([]*models.ClientLibrary, error) {
	rows, err := s.db.Query(ctx, selectLibrary+`
		WHERE categories @> jsonb_build_array($1::text)
		  AND kinds @> jsonb_build_array($2::text)
		ORDER BY id`, category, kind.Name())
	if err != nil {
		return nil, fmt.Errorf("libraries by category '%s': %w", category, err)
	}
	defer rows.Close()
	return collectLibraries(rows)
}

func (s *StoreImpl) LibraryContent(ctx context.Context, path string, kind models.LibraryKind, minified bool) (string, error) {
	var content string
	err := s.db.QueryRow(ctx, `
		SELECT content FROM clientlib_content
		WHERE lib_path = $1 AND kind = $2 AND minified = $3`,
		path, kind.Name(), minified).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("library content '%s' (%s): %w", path, kind.Name(), err)
	}
	return content, nil
}

func collectLibraries(rows pgx.Rows) ([]*models.ClientLibrary, error) {
	var libs []*models.ClientLibrary
	for rows.Next() {
		lib, err := scanLibrary(rows)
		if err != nil {
			return nil, err
		}
		libs = append(libs, lib)
	}
	return libs, rows.Err()
}
