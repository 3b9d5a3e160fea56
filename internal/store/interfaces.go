package store

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rajramo61/aem-core-wcm-components/internal/models"
)

// --- Resource resolution ---

// ResourceResolver resolves repository paths to resources. Resolvers
// obtained from a ResolverFactory are scoped to a single call and must
// be closed by the caller.
type ResourceResolver interface {
	Resolve(ctx context.Context, path string) (*models.Resource, error)
	Close() error
}

// ResolverFactory hands out scoped resolvers for a named subservice.
// Acquisition can fail (connection pool exhausted, repository down);
// callers treat that as a soft failure.
type ResolverFactory interface {
	ServiceResolver(ctx context.Context, subservice string) (ResourceResolver, error)
}

// --- Resource store ---

type ResourceStore interface {
	CreateResource(ctx context.Context, res *models.Resource) error
	GetResource(ctx context.Context, path string) (*models.Resource, error)
	DeleteResource(ctx context.Context, path string) error

	Ping(ctx context.Context) error
}

// --- Page store ---

// PageStore reads pages, which are resources addressed by their path.
type PageStore interface {
	GetPage(ctx context.Context, path string) (*models.Page, error)
	CreatePage(ctx context.Context, page *models.Page) error
	ListPages(ctx context.Context, limit, offset int) ([]*models.Page, error)
}

// --- Library store ---

type LibraryStore interface {
	RegisterLibrary(ctx context.Context, lib *models.ClientLibrary, content map[models.LibraryKind]LibraryContent) error
	// UnregisterLibrary removes a library definition and its stored
	// payloads. Unknown paths return ErrNotFound.
	UnregisterLibrary(ctx context.Context, path string) error
	GetLibrary(ctx context.Context, path string) (*models.ClientLibrary, error)
	ListLibraries(ctx context.Context, limit, offset int) ([]*models.ClientLibrary, error)
	// LibrariesByCategory returns the libraries registered under the
	// category that ship content of the given kind, in registration order.
	LibrariesByCategory(ctx context.Context, category string, kind models.LibraryKind) ([]*models.ClientLibrary, error)
	// LibraryContent returns the stored payload for one kind of a library.
	// The minified variant may be absent; callers fall back to the raw one.
	LibraryContent(ctx context.Context, path string, kind models.LibraryKind, minified bool) (string, error)
}

// LibraryContent carries the payload variants registered for one kind.
type LibraryContent struct {
	Raw      string
	Minified string // optional
}

// --- Job store ---

// JobStore records enqueued background tasks for auditing.
type JobStore interface {
	CreateJob(ctx context.Context, job *models.BackgroundJob) error
	ListJobs(ctx context.Context, limit, offset int) ([]*models.BackgroundJob, error)
}

// --- Job client ---

type JobClient interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	EnqueueLibraryRebuild(ctx context.Context, categories []string) error
	Close() error
}
