package apihandlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rajramo61/aem-core-wcm-components/internal/apihandlers"
	"github.com/rajramo61/aem-core-wcm-components/internal/app"
	"github.com/rajramo61/aem-core-wcm-components/internal/config"
	"github.com/rajramo61/aem-core-wcm-components/internal/models"
	"github.com/rajramo61/aem-core-wcm-components/internal/services"
	"github.com/rajramo61/aem-core-wcm-components/internal/store"
	"github.com/rajramo61/aem-core-wcm-components/internal/tests/mocks"
)

type testEnv struct {
	engine    *gin.Engine
	pages     *mocks.PageStore
	libraries *mocks.LibraryStore
	resources *mocks.ResourceStore
	manager   *mocks.LibraryManager
	jobs      *mocks.JobClient
	jobStore  *mocks.JobStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		pages:     new(mocks.PageStore),
		libraries: new(mocks.LibraryStore),
		resources: new(mocks.ResourceStore),
		manager:   new(mocks.LibraryManager),
		jobs:      new(mocks.JobClient),
		jobStore:  new(mocks.JobStore),
	}

	cfg := &config.Config{}
	cfg.Amp.DefaultMode = models.AmpModeNone

	application := &app.App{
		Config:    cfg,
		Pages:     env.pages,
		Libraries: env.libraries,
		Resources: env.resources,
		Jobs:      env.jobStore,
		JobClient: env.jobs,
		Aggregator: services.NewAggregatorService(services.AggregatorServiceDeps{
			Manager: env.manager,
		}),
	}

	env.engine = gin.New()
	apihandlers.RegisterRoutes(env.engine, application)
	return env
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postJSON(path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) stubLibrary(kind models.LibraryKind, path, content string) {
	lib := new(mocks.HtmlLibrary)
	lib.On("Reader", mock.Anything, mock.AnythingOfType("bool")).Return(strings.NewReader(content), nil)
	e.manager.On("Library", mock.Anything, kind, path).Return(lib, nil)
}

func TestClientLibHandler(t *testing.T) {
	env := newTestEnv(t)
	env.manager.On("MinifyEnabled").Return(false)
	env.manager.On("Libraries", mock.Anything, []string{"site.base"}, models.KindCSS).
		Return([]*models.ClientLibrary{{Path: "/libs/base", Kinds: []string{"css"}}}, nil)
	env.stubLibrary(models.KindCSS, "/libs/base", "body{margin:0}")

	w := env.get("/etc.clientlibs/css?categories=site.base")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/css; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "body{margin:0}", w.Body.String())
}

func TestClientLibHandlerUnknownKindSoftFails(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/etc.clientlibs/less?categories=site.base")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRenderPageHandlerPaired(t *testing.T) {
	env := newTestEnv(t)
	env.pages.On("GetPage", mock.Anything, "/content/site/page").
		Return(&models.Page{Resource: models.Resource{
			Path: "/content/site/page",
			Properties: map[string]any{
				models.PropTitle:      "Home",
				models.PropAmpMode:    models.AmpModePaired,
				models.PropCategories: []string{"site.base"},
			},
		}}, nil)
	env.manager.On("MinifyEnabled").Return(false)
	env.manager.On("Libraries", mock.Anything, []string{"site.base"}, models.KindCSS).
		Return([]*models.ClientLibrary{{Path: "/libs/base", Kinds: []string{"css", "js"}}}, nil)
	env.manager.On("Libraries", mock.Anything, []string{"site.base"}, models.KindJS).
		Return([]*models.ClientLibrary{{Path: "/libs/base", Kinds: []string{"css", "js"}}}, nil)
	env.stubLibrary(models.KindCSS, "/libs/base", "body{margin:0}")
	env.stubLibrary(models.KindJS, "/libs/base", "console.log(1);")

	w := env.get("/content/site/page.html")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<title>Home</title>")
	assert.Contains(t, body, "body{margin:0}")
	assert.Contains(t, body, "console.log(1);")
	assert.Contains(t, body, `<link rel="amphtml" href="/content/site/page.amp.html"/>`)
}

func TestRenderPageHandlerAmpVariant(t *testing.T) {
	env := newTestEnv(t)
	env.pages.On("GetPage", mock.Anything, "/content/site/page").
		Return(&models.Page{Resource: models.Resource{
			Path: "/content/site/page",
			Properties: map[string]any{
				models.PropTitle:      "Home",
				models.PropAmpMode:    models.AmpModePaired,
				models.PropCategories: []string{"site.base"},
			},
		}}, nil)
	env.manager.On("MinifyEnabled").Return(false)
	env.manager.On("Libraries", mock.Anything, []string{"site.base"}, models.KindCSS).
		Return([]*models.ClientLibrary{{Path: "/libs/base", Kinds: []string{"css"}}}, nil)
	env.stubLibrary(models.KindCSS, "/libs/base", "body{margin:0}")

	w := env.get("/content/site/page.amp.html")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<html amp=""`)
	assert.Contains(t, body, "amp-custom")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, `<link rel="canonical" href="/content/site/page.html"/>`)
	env.manager.AssertNotCalled(t, "Libraries", mock.Anything, mock.Anything, models.KindJS)
}

func TestRenderPageHandlerAmpOnlyForwards(t *testing.T) {
	env := newTestEnv(t)
	env.pages.On("GetPage", mock.Anything, "/content/site/page").
		Return(&models.Page{Resource: models.Resource{
			Path: "/content/site/page",
			Properties: map[string]any{
				models.PropTitle:   "Home",
				models.PropAmpOnly: true,
			},
		}}, nil)
	env.manager.On("MinifyEnabled").Return(false)

	w := env.get("/content/site/page.html")

	// The middleware re-dispatched to the amp variant.
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<link rel="canonical" href="/content/site/page.html"`)
}

func TestRenderPageHandlerNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.pages.On("GetPage", mock.Anything, "/content/site/missing").
		Return(nil, store.ErrNotFound)

	w := env.get("/content/site/missing.html")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterLibraryHandler(t *testing.T) {
	env := newTestEnv(t)
	env.libraries.On("RegisterLibrary", mock.Anything,
		mock.MatchedBy(func(lib *models.ClientLibrary) bool {
			return lib.Path == "/libs/base" && len(lib.Categories) == 1
		}),
		mock.MatchedBy(func(content map[models.LibraryKind]store.LibraryContent) bool {
			return content[models.KindCSS].Raw == "body{margin:0}"
		})).Return(nil).Once()
	env.jobs.On("EnqueueLibraryRebuild", mock.Anything, []string{"site.base"}).Return(nil).Once()

	w := env.postJSON("/api/v1/libraries", `{
		"path": "/libs/base",
		"categories": ["site.base"],
		"content": {"css": {"raw": "body{margin:0}"}}
	}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	env.libraries.AssertExpectations(t)
	env.jobs.AssertExpectations(t)
}

func TestRegisterLibraryHandlerRejectsUnknownKind(t *testing.T) {
	env := newTestEnv(t)

	w := env.postJSON("/api/v1/libraries", `{
		"path": "/libs/base",
		"categories": ["site.base"],
		"content": {"sass": {"raw": "x"}}
	}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.libraries.AssertNotCalled(t, "RegisterLibrary", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePageHandlerConflict(t *testing.T) {
	env := newTestEnv(t)
	env.pages.On("CreatePage", mock.Anything, mock.Anything).Return(store.ErrDuplicate)

	w := env.postJSON("/api/v1/pages", `{"path": "/content/site/page"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetPageHandler(t *testing.T) {
	env := newTestEnv(t)
	env.pages.On("GetPage", mock.Anything, "/content/site/page").
		Return(&models.Page{Resource: models.Resource{Path: "/content/site/page"}}, nil)

	w := env.get("/api/v1/page/content/site/page")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/content/site/page")
}

func TestListJobsHandler(t *testing.T) {
	env := newTestEnv(t)
	env.jobStore.On("ListJobs", mock.Anything, 20, 0).
		Return([]*models.BackgroundJob{{ID: 1, TaskType: "clientlib:rebuild", Queue: "default", Status: "enqueued"}}, nil)

	w := env.get("/api/v1/jobs")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "clientlib:rebuild")
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t)
	env.resources.On("Ping", mock.Anything).Return(nil)

	w := env.get("/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
