package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rajramo61/aem-core-wcm-components/internal/models"
	"github.com/rajramo61/aem-core-wcm-components/internal/services"
	"github.com/rajramo61/aem-core-wcm-components/internal/store"
	"github.com/rajramo61/aem-core-wcm-components/internal/tests/mocks"
)

func clientLib(path string) *models.ClientLibrary {
	return &models.ClientLibrary{Path: path, Kinds: []string{"css", "js"}}
}

func expectLibraryContent(manager *mocks.LibraryManager, kind models.LibraryKind, path, content string) {
	lib := new(mocks.HtmlLibrary)
	lib.On("Reader", mock.Anything, mock.AnythingOfType("bool")).Return(strings.NewReader(content), nil)
	manager.On("Library", mock.Anything, kind, path).Return(lib, nil)
}

func TestGetClientLibOutputBlankCategories(t *testing.T) {
	manager := new(mocks.LibraryManager)
	svc := services.NewAggregatorService(services.AggregatorServiceDeps{Manager: manager})

	for _, csv := range []string{"", "   ", "\t"} {
		assert.Empty(t, svc.GetClientLibOutput(context.Background(), csv, "css"))
	}
	manager.AssertNotCalled(t, "Libraries", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetClientLibOutputUnknownKind(t *testing.T) {
	manager := new(mocks.LibraryManager)
	svc := services.NewAggregatorService(services.AggregatorServiceDeps{Manager: manager})

	assert.Empty(t, svc.GetClientLibOutput(context.Background(), "site.base", "less"))
	manager.AssertNotCalled(t, "Libraries", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetClientLibOutputConcatenatesInManagerOrder(t *testing.T) {
	manager := new(mocks.LibraryManager)
	manager.On("MinifyEnabled").Return(false)
	manager.On("Libraries", mock.Anything, []string{"a", "b"}, models.KindCSS).
		Return([]*models.ClientLibrary{clientLib("/libs/a"), clientLib("/libs/b")}, nil).Once()
	expectLibraryContent(manager, models.KindCSS, "/libs/a", "a{}")
	expectLibraryContent(manager, models.KindCSS, "/libs/b", "b{}")

	svc := services.NewAggregatorService(services.AggregatorServiceDeps{Manager: manager})
	out := svc.GetClientLibOutput(context.Background(), "a,b", "css")

	assert.Equal(t, "a{}b{}", out)
	manager.AssertExpectations(t)
}

func TestGetClientLibOutputSkipsFailingStream(t *testing.T) {
	manager := new(mocks.LibraryManager)
	manager.On("MinifyEnabled").Return(true)
	manager.On("Libraries", mock.Anything, []string{"a", "b"}, models.KindJS).
		Return([]*models.ClientLibrary{clientLib("/libs/a"), clientLib("/libs/b")}, nil).Once()

	broken := new(mocks.HtmlLibrary)
	broken.On("Reader", mock.Anything, true).Return(nil, errors.New("stream failure"))
	manager.On("Library", mock.Anything, models.KindJS, "/libs/a").Return(broken, nil)
	expectLibraryContent(manager, models.KindJS, "/libs/b", "console.log(2);")

	svc := services.NewAggregatorService(services.AggregatorServiceDeps{Manager: manager})
	out := svc.GetClientLibOutput(context.Background(), "a,b", "js")

	assert.Equal(t, "console.log(2);", out)
}

func TestGetClientLibOutputForTypesBlankPaths(t *testing.T) {
	manager := new(mocks.LibraryManager)
	resolvers := new(mocks.ResolverFactory)
	svc := services.NewAggregatorService(services.AggregatorServiceDeps{Manager: manager, Resolvers: resolvers})

	out := svc.GetClientLibOutputForTypes(context.Background(), "site.base", "css",
		[]string{"core/components/page"}, "", "  ")

	assert.Empty(t, out)
	resolvers.AssertNotCalled(t, "ServiceResolver", mock.Anything, mock.Anything)
}

func TestGetClientLibOutputForTypesFallbackPath(t *testing.T) {
	manager := new(mocks.LibraryManager)
	manager.On("MinifyEnabled").Return(false)
	manager.On("Libraries", mock.Anything, []string{"x"}, models.KindCSS).
		Return([]*models.ClientLibrary{clientLib("/libs/x")}, nil).Once()
	expectLibraryContent(manager, models.KindCSS, "/libs/x", "x{}")

	resolver := new(mocks.ResourceResolver)
	resolver.On("Resolve", mock.Anything, "core/components/page/clientlibs").
		Return(nil, store.ErrNotFound).Once()
	resolver.On("Resolve", mock.Anything, "core/components/page/clientlib").
		Return(&models.Resource{
			Path:       "core/components/page/clientlib",
			Properties: map[string]any{"categories": []string{"x"}},
		}, nil).Once()
	resolver.On("Close").Return(nil).Once()

	resolvers := new(mocks.ResolverFactory)
	resolvers.On("ServiceResolver", mock.Anything, "component-clientlib-service").
		Return(resolver, nil).Once()

	svc := services.NewAggregatorService(services.AggregatorServiceDeps{Manager: manager, Resolvers: resolvers})
	out := svc.GetClientLibOutputForTypes(context.Background(), "", "css",
		[]string{"core/components/page"}, "clientlibs", "clientlib")

	assert.Equal(t, "x{}", out)
	resolver.AssertExpectations(t)
	resolvers.AssertExpectations(t)
	manager.AssertExpectations(t)
}

func TestGetClientLibOutputForTypesSkipsUnresolvedTypes(t *testing.T) {
	manager := new(mocks.LibraryManager)
	manager.On("MinifyEnabled").Return(false)
	manager.On("Libraries", mock.Anything, []string{"seed"}, models.KindCSS).
		Return([]*models.ClientLibrary{}, nil).Once()

	resolver := new(mocks.ResourceResolver)
	resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, store.ErrNotFound)
	resolver.On("Close").Return(nil).Once()

	resolvers := new(mocks.ResolverFactory)
	resolvers.On("ServiceResolver", mock.Anything, mock.Anything).Return(resolver, nil).Once()

	svc := services.NewAggregatorService(services.AggregatorServiceDeps{Manager: manager, Resolvers: resolvers})
	out := svc.GetClientLibOutputForTypes(context.Background(), "seed", "css",
		[]string{"a/b", "c/d"}, "clientlibs", "")

	assert.Empty(t, out)
	manager.AssertExpectations(t)
}

func TestGetClientLibOutputForTypesResolverLoginFailure(t *testing.T) {
	manager := new(mocks.LibraryManager)
	manager.On("MinifyEnabled").Return(false)
	// Lookup phase is skipped but the seed categories still aggregate.
	manager.On("Libraries", mock.Anything, []string{"seed"}, models.KindCSS).
		Return([]*models.ClientLibrary{clientLib("/libs/seed")}, nil).Once()
	expectLibraryContent(manager, models.KindCSS, "/libs/seed", "seed{}")

	resolvers := new(mocks.ResolverFactory)
	resolvers.On("ServiceResolver", mock.Anything, mock.Anything).
		Return(nil, store.ErrLogin).Once()

	svc := services.NewAggregatorService(services.AggregatorServiceDeps{Manager: manager, Resolvers: resolvers})
	out := svc.GetClientLibOutputForTypes(context.Background(), "seed", "css",
		[]string{"core/components/page"}, "clientlibs", "clientlib")

	assert.Equal(t, "seed{}", out)
	manager.AssertExpectations(t)
}

func TestResourceTypeRegex(t *testing.T) {
	svc := services.NewAggregatorService(services.AggregatorServiceDeps{
		ResourceTypeRegex: `^core/wcm/components/.*$`,
	})
	assert.Equal(t, `^core/wcm/components/.*$`, svc.ResourceTypeRegex())
}
