package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rajramo61/aem-core-wcm-components/internal/models"
	"github.com/rajramo61/aem-core-wcm-components/internal/store"
)

const selectLibrary = `
	SELECT path, categories, kinds, dependencies, embeds, created_at, updated_at
	FROM clientlibs`

func scanLibrary(row rowScanner) (*models.ClientLibrary, error) {
	var lib models.ClientLibrary
	var categories, kinds, dependencies, embeds sql.NullString
	err := row.Scan(&lib.Path, &categories, &kinds, &dependencies, &embeds, &lib.CreatedAt, &lib.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	for _, col := range []struct {
		raw  sql.NullString
		dest *[]string
	}{
		{categories, &lib.Categories},
		{kinds, &lib.Kinds},
		{dependencies, &lib.Dependencies},
		{embeds, &lib.Embeds},
	} {
		if col.raw.Valid && col.raw.String != "" {
			if err := json.Unmarshal([]byte(col.raw.String), col.dest); err != nil {
				return nil, fmt.Errorf("decode library '%s': %w", lib.Path, err)
			}
		}
	}
	return &lib, nil
}

func (s *Store) RegisterLibrary(ctx context.Context, lib *models.ClientLibrary, content map[models.LibraryKind]store.LibraryContent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin register library: %w", err)
	}
	defer tx.Rollback()

	categories, _ := json.Marshal(lib.Categories)
	kinds, _ := json.Marshal(lib.Kinds)
	dependencies, _ := json.Marshal(lib.Dependencies)
	embeds, _ := json.Marshal(lib.Embeds)
	now := time.Now().UTC()
	lib.CreatedAt = now
	lib.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO clientlibs (path, categories, kinds, dependencies, embeds, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (path) DO UPDATE
		SET categories = excluded.categories, kinds = excluded.kinds,
		    dependencies = excluded.dependencies, embeds = excluded.embeds,
		    updated_at = excluded.updated_at`,
		lib.Path, string(categories), string(kinds), string(dependencies), string(embeds),
		lib.CreatedAt, lib.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert library '%s': %w", lib.Path, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM clientlib_content WHERE lib_path = ?`, lib.Path); err != nil {
		return fmt.Errorf("clear library content '%s': %w", lib.Path, err)
	}
	for kind, c := range content {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO clientlib_content (lib_path, kind, minified, content)
			VALUES (?, ?, 0, ?)`, lib.Path, kind.Name(), c.Raw); err != nil {
			return fmt.Errorf("store library content '%s' (%s): %w", lib.Path, kind.Name(), err)
		}
		if c.Minified != "" {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO clientlib_content (lib_path, kind, minified, content)
				VALUES (?, ?, 1, ?)`, lib.Path, kind.Name(), c.Minified); err != nil {
				return fmt.Errorf("store minified library content '%s' (%s): %w", lib.Path, kind.Name(), err)
			}
		}
	}

	return tx.Commit()
}

func (s *Store) UnregisterLibrary(ctx context.Context, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin unregister library: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM clientlib_content WHERE lib_path = ?`, path); err != nil {
		return fmt.Errorf("clear library content '%s': %w", path, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM clientlibs WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("delete library '%s': %w", path, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return tx.Commit()
}

func (s *Store) GetLibrary(ctx context.Context, path string) (*models.ClientLibrary, error) {
	return scanLibrary(s.db.QueryRowContext(ctx, selectLibrary+` WHERE path = ?`, path))
}

func (s *Store) ListLibraries(ctx context.Context, limit, offset int) ([]*models.ClientLibrary, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, selectLibrary+` ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	defer rows.Close()
	return collectLibraries(rows)
}

// LibrariesByCategory filters in Go rather than SQL; the embedded store
// holds at most a few hundred library definitions.
func (s *Store) LibrariesByCategory(ctx context.Context, category string, kind models.LibraryKind) ([]*models.ClientLibrary, error) {
	rows, err := s.db.QueryContext(ctx, selectLibrary+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("libraries by category '%s': %w", category, err)
	}
	defer rows.Close()

	all, err := collectLibraries(rows)
	if err != nil {
		return nil, err
	}
	var out []*models.ClientLibrary
	for _, lib := range all {
		if !lib.HasKind(kind) {
			continue
		}
		for _, c := range lib.Categories {
			if c == category {
				out = append(out, lib)
				break
			}
		}
	}
	return out, nil
}

func (s *Store) LibraryContent(ctx context.Context, path string, kind models.LibraryKind, minified bool) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `
		SELECT content FROM clientlib_content
		WHERE lib_path = ? AND kind = ? AND minified = ?`,
		path, kind.Name(), minified).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("library content '%s' (%s): %w", path, kind.Name(), err)
	}
	return content, nil
}

func collectLibraries(rows *sql.Rows) ([]*models.ClientLibrary, error) {
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
