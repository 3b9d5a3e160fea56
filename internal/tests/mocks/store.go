// Package mocks provides testify mocks for the store and clientlibs
// interfaces used across service and handler tests.
package mocks

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"

	"github.com/rajramo61/aem-core-wcm-components/internal/models"
	"github.com/rajramo61/aem-core-wcm-components/internal/store"
)

// --- ResourceResolver ---

type ResourceResolver struct {
	mock.Mock
}

var _ store.ResourceResolver = (*ResourceResolver)(nil)

func (m *ResourceResolver) Resolve(ctx context.Context, path string) (*models.Resource, error) {
	args := m.Called(ctx, path)
	if res := args.Get(0); res != nil {
		return res.(*models.Resource), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ResourceResolver) Close() error {
	return m.Called().Error(0)
}

// --- ResolverFactory ---

type ResolverFactory struct {
	mock.Mock
}

var _ store.ResolverFactory = (*ResolverFactory)(nil)

func (m *ResolverFactory) ServiceResolver(ctx context.Context, subservice string) (store.ResourceResolver, error) {
	args := m.Called(ctx, subservice)
	if r := args.Get(0); r != nil {
		return r.(store.ResourceResolver), args.Error(1)
	}
	return nil, args.Error(1)
}

// --- PageStore ---

type PageStore struct {
	mock.Mock
}

var _ store.PageStore = (*PageStore)(nil)

func (m *PageStore) GetPage(ctx context.Context, path string) (*models.Page, error) {
	args := m.Called(ctx, path)
	if p := args.Get(0); p != nil {
		return p.(*models.Page), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PageStore) CreatePage(ctx context.Context, page *models.Page) error {
	return m.Called(ctx, page).Error(0)
}

func (m *PageStore) ListPages(ctx context.Context, limit, offset int) ([]*models.Page, error) {
	args := m.Called(ctx, limit, offset)
	if p := args.Get(0); p != nil {
		return p.([]*models.Page), args.Error(1)
	}
	return nil, args.Error(1)
}

// --- ResourceStore ---

type ResourceStore struct {
	mock.Mock
}

var _ store.ResourceStore = (*ResourceStore)(nil)

func (m *ResourceStore) CreateResource(ctx context.Context, res *models.Resource) error {
	return m.Called(ctx, res).Error(0)
}

func (m *ResourceStore) GetResource(ctx context.Context, path string) (*models.Resource, error) {
	args := m.Called(ctx, path)
	if res := args.Get(0); res != nil {
		return res.(*models.Resource), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ResourceStore) DeleteResource(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *ResourceStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// --- LibraryStore ---

type LibraryStore struct {
	mock.Mock
}

var _ store.LibraryStore = (*LibraryStore)(nil)

func (m *LibraryStore) RegisterLibrary(ctx context.Context, lib *models.ClientLibrary, content map[models.LibraryKind]store.LibraryContent) error {
	return m.Called(ctx, lib, content).Error(0)
}

func (m *LibraryStore) UnregisterLibrary(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *LibraryStore) GetLibrary(ctx context.Context, path string) (*models.ClientLibrary, error) {
	args := m.Called(ctx, path)
	if lib := args.Get(0); lib != nil {
		return lib.(*models.ClientLibrary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LibraryStore) ListLibraries(ctx context.Context, limit, offset int) ([]*models.ClientLibrary, error) {
	args := m.Called(ctx, limit, offset)
	if libs := args.Get(0); libs != nil {
		return libs.([]*models.ClientLibrary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LibraryStore) LibrariesByCategory(ctx context.Context, category string, kind models.LibraryKind) ([]*models.ClientLibrary, error) {
	args := m.Called(ctx, category, kind)
	if libs := args.Get(0); libs != nil {
		return libs.([]*models.ClientLibrary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LibraryStore) LibraryContent(ctx context.Context, path string, kind models.LibraryKind, minified bool) (string, error) {
	args := m.Called(ctx, path, kind, minified)
	return args.String(0), args.Error(1)
}

// --- JobStore ---

type JobStore struct {
	mock.Mock
}

var _ store.JobStore = (*JobStore)(nil)

func (m *JobStore) CreateJob(ctx context.Context, job *models.BackgroundJob) error {
	return m.Called(ctx, job).Error(0)
}

func (m *JobStore) ListJobs(ctx context.Context, limit, offset int) ([]*models.BackgroundJob, error) {
	args := m.Called(ctx, limit, offset)
	if jobs := args.Get(0); jobs != nil {
		return jobs.([]*models.BackgroundJob), args.Error(1)
	}
	return nil, args.Error(1)
}

// --- JobClient ---

type JobClient struct {
	mock.Mock
}

var _ store.JobClient = (*JobClient)(nil)

func (m *JobClient) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	if info := args.Get(0); info != nil {
		return info.(*asynq.TaskInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *JobClient) EnqueueLibraryRebuild(ctx context.Context, categories []string) error {
	return m.Called(ctx, categories).Error(0)
}

func (m *JobClient) Close() error {
	return m.Called().Error(0)
}
