// Package local implements the repository store on an embedded SQLite
// database. It backs local development and tests; production deployments
// use the Postgres primary store.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rajramo61/aem-core-wcm-components/internal/models"
	"github.com/rajramo61/aem-core-wcm-components/internal/store"
)

type Store struct {
	db *sql.DB
}

var (
	_ store.ResourceStore   = (*Store)(nil)
	_ store.PageStore       = (*Store)(nil)
	_ store.LibraryStore    = (*Store)(nil)
	_ store.ResolverFactory = (*Store)(nil)
	_ store.JobStore        = (*Store)(nil)
)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("database DSN cannot be empty")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A plain in-memory DSN gives every pooled connection its own empty
	// database. Pinning the pool to one connection keeps the schema and
	// any conn a resolver holds on the same database.
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		if !strings.Contains(dsn, "cache=shared") {
			db.SetMaxOpenConns(1)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS resources (
			path TEXT PRIMARY KEY,
			properties TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS clientlibs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT UNIQUE NOT NULL,
			categories TEXT,
			kinds TEXT,
			dependencies TEXT,
			embeds TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS clientlib_content (
			lib_path TEXT NOT NULL,
			kind TEXT NOT NULL,
			minified INTEGER NOT NULL,
			content TEXT NOT NULL,
			PRIMARY KEY (lib_path, kind, minified)
		);
		CREATE TABLE IF NOT EXISTS background_jobs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT NOT NULL,
			task_type TEXT NOT NULL,
			payload BLOB,
			queue TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// --- Resources ---

const selectResource = `
	SELECT path, properties, created_at, updated_at
	FROM resources
	WHERE path = ?`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (*models.Resource, error) {
	var res models.Resource
	var props sql.NullString
	if err := row.Scan(&res.Path, &props, &res.CreatedAt, &res.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if props.Valid && props.String != "" {
		if err := json.Unmarshal([]byte(props.String), &res.Properties); err != nil {
			return nil, fmt.Errorf("decode properties for '%s': %w", res.Path, err)
		}
	}
	return &res, nil
}

func (s *Store) CreateResource(ctx context.Context, res *models.Resource) error {
	props, err := json.Marshal(res.Properties)
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}
	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO resources (path, properties, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (path) DO UPDATE
		SET properties = excluded.properties, updated_at = excluded.updated_at`,
		res.Path, string(props), res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert resource '%s': %w", res.Path, err)
	}
	return nil
}

func (s *Store) GetResource(ctx context.Context, path string) (*models.Resource, error) {
	return scanResource(s.db.QueryRowContext(ctx, selectResource, path))
}

func (s *Store) DeleteResource(ctx context.Context, path string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM resources WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("delete resource '%s': %w", path, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// --- Pages ---

func (s *Store) GetPage(ctx context.Context, path string) (*models.Page, error) {
	res, err := s.GetResource(ctx, path)
	if err != nil {
		return nil, err
	}
	return &models.Page{Resource: *res}, nil
}

// CreatePage inserts a new page resource. Unlike CreateResource it does
// not upsert: an existing path is a conflict the caller must handle.
func (s *Store) CreatePage(ctx context.Context, page *models.Page) error {
	props, err := json.Marshal(page.Properties)
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}
	now := time.Now().UTC()
	page.CreatedAt = now
	page.UpdatedAt = now
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO resources (path, properties, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (path) DO NOTHING`,
		page.Path, string(props), page.CreatedAt, page.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert page '%s': %w", page.Path, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return store.ErrDuplicate
	}
	return nil
}

func (s *Store) ListPages(ctx context.Context, limit, offset int) ([]*models.Page, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, properties, created_at, updated_at
		FROM resources
		WHERE path LIKE '/content/%'
		ORDER BY path
		LIMIT ? OFFSET ?`, limit, offset)
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

// --- Scoped resource resolution ---

// ServiceResolver pins a connection from the pool for the duration of a
// lookup phase. Close returns the connection.
func (s *Store) ServiceResolver(ctx context.Context, subservice string) (store.ResourceResolver, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: subservice '%s': %v", store.ErrLogin, subservice, err)
	}
	return &connResolver{conn: conn}, nil
}

type connResolver struct {
	conn *sql.Conn
}

func (r *connResolver) Resolve(ctx context.Context, path string) (*models.Resource, error) {
	return scanResource(r.conn.QueryRowContext(ctx, selectResource, path))
}

func (r *connResolver) Close() error {
	return r.conn.Close()
}
