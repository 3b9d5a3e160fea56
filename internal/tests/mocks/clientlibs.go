package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/rajramo61/aem-core-wcm-components/internal/clientlibs"
	"github.com/rajramo61/aem-core-wcm-components/internal/models"
)

// --- LibraryManager ---

type LibraryManager struct {
	mock.Mock
}

var _ clientlibs.LibraryManager = (*LibraryManager)(nil)

func (m *LibraryManager) Libraries(ctx context.Context, categories []string, kind models.LibraryKind) ([]*models.ClientLibrary, error) {
	args := m.Called(ctx, categories, kind)
	if libs := args.Get(0); libs != nil {
		return libs.([]*models.ClientLibrary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LibraryManager) Library(ctx context.Context, kind models.LibraryKind, path string) (clientlibs.HtmlLibrary, error) {
	args := m.Called(ctx, kind, path)
	if lib := args.Get(0); lib != nil {
		return lib.(clientlibs.HtmlLibrary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LibraryManager) MinifyEnabled() bool {
	return m.Called().Bool(0)
}

// --- HtmlLibrary ---

type HtmlLibrary struct {
	mock.Mock
}

var _ clientlibs.HtmlLibrary = (*HtmlLibrary)(nil)

func (m *HtmlLibrary) Path() string {
	return m.Called().String(0)
}

func (m *HtmlLibrary) Reader(ctx context.Context, minified bool) (io.Reader, error) {
	args := m.Called(ctx, minified)
	if r := args.Get(0); r != nil {
		return r.(io.Reader), args.Error(1)
	}
	return nil, args.Error(1)
}
