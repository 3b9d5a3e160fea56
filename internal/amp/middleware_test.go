package amp_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rajramo61/aem-core-wcm-components/internal/amp"
	"github.com/rajramo61/aem-core-wcm-components/internal/models"
	"github.com/rajramo61/aem-core-wcm-components/internal/store"
	"github.com/rajramo61/aem-core-wcm-components/internal/tests/mocks"
)

func page(props map[string]any) *models.Page {
	return &models.Page{Resource: models.Resource{Path: "/content/site/page", Properties: props}}
}

type renderRecorder struct {
	calls int
	paths []string
}

func newAmpRouter(pages store.PageStore, defaultMode string) (*gin.Engine, *renderRecorder) {
	gin.SetMode(gin.TestMode)
	rec := &renderRecorder{}
	engine := gin.New()
	engine.Use(amp.ModeForward(amp.MiddlewareDeps{
		Pages:       pages,
		Engine:      engine,
		DefaultMode: defaultMode,
	}))
	engine.GET("/content/*any", func(c *gin.Context) {
		rec.calls++
		rec.paths = append(rec.paths, c.Request.URL.Path)
		c.String(http.StatusOK, c.Request.URL.Path)
	})
	return engine, rec
}

func serve(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestModeForwardAmpOnlyPage(t *testing.T) {
	pages := new(mocks.PageStore)
	pages.On("GetPage", mock.Anything, "/content/site/page").
		Return(page(map[string]any{models.PropAmpOnly: true}), nil)

	engine, rec := newAmpRouter(pages, models.AmpModeNone)
	w := serve(engine, "/content/site/page.html")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, []string{"/content/site/page.amp.html"}, rec.paths)
}

func TestModeForwardPreservesSuffixAndQuery(t *testing.T) {
	pages := new(mocks.PageStore)
	pages.On("GetPage", mock.Anything, "/content/site/page").
		Return(page(map[string]any{models.PropAmpOnly: true}), nil)

	engine, rec := newAmpRouter(pages, models.AmpModeNone)
	serve(engine, "/content/site/page.html/a/b.css?wcmmode=disabled")

	assert.Equal(t, []string{"/content/site/page.amp.html/a/b.css"}, rec.paths)
}

func TestModeForwardAmpSelectorPassesThrough(t *testing.T) {
	pages := new(mocks.PageStore)
	pages.On("GetPage", mock.Anything, "/content/site/page").
		Return(page(map[string]any{}), nil)

	engine, rec := newAmpRouter(pages, models.AmpModeNone)

	for _, path := range []string{
		"/content/site/page.amp.html",
		"/content/site/page.foo.amp.html",
		"/content/site/page.amp.foo.html",
	} {
		serve(engine, path)
	}

	assert.Equal(t, 3, rec.calls)
	assert.Equal(t, []string{
		"/content/site/page.amp.html",
		"/content/site/page.foo.amp.html",
		"/content/site/page.amp.foo.html",
	}, rec.paths)
}

func TestModeForwardSubstringSelectorDoesNotCount(t *testing.T) {
	pages := new(mocks.PageStore)
	pages.On("GetPage", mock.Anything, "/content/site/page").
		Return(page(map[string]any{models.PropAmpOnly: true}), nil)

	engine, rec := newAmpRouter(pages, models.AmpModeNone)
	serve(engine, "/content/site/page.preamp.html")

	// preamp is not the amp selector, so the amp-only page still forwards.
	assert.Equal(t, []string{"/content/site/page.preamp.amp.html"}, rec.paths)
}

func TestModeForwardExplicitModeOverridesFlag(t *testing.T) {
	pages := new(mocks.PageStore)
	pages.On("GetPage", mock.Anything, "/content/site/page").
		Return(page(map[string]any{
			models.PropAmpOnly: false,
			models.PropAmpMode: models.AmpModeOnly,
		}), nil)

	engine, rec := newAmpRouter(pages, models.AmpModeNone)
	serve(engine, "/content/site/page.amp.html")

	// Explicit ampOnly mode re-dispatches exactly once on the amp path.
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, []string{"/content/site/page.amp.html"}, rec.paths)
}

func TestModeForwardSiteDefaultApplies(t *testing.T) {
	pages := new(mocks.PageStore)
	pages.On("GetPage", mock.Anything, "/content/site/page").
		Return(page(map[string]any{}), nil)

	engine, rec := newAmpRouter(pages, models.AmpModeOnly)
	serve(engine, "/content/site/page.html")

	assert.Equal(t, []string{"/content/site/page.amp.html"}, rec.paths)
}

func TestModeForwardPairedPageNoForward(t *testing.T) {
	pages := new(mocks.PageStore)
	pages.On("GetPage", mock.Anything, "/content/site/page").
		Return(page(map[string]any{models.PropAmpMode: models.AmpModePaired}), nil)

	engine, rec := newAmpRouter(pages, models.AmpModeNone)
	serve(engine, "/content/site/page.html")

	assert.Equal(t, []string{"/content/site/page.html"}, rec.paths)
}

func TestModeForwardSkipsNonHTML(t *testing.T) {
	pages := new(mocks.PageStore)

	engine, rec := newAmpRouter(pages, models.AmpModeOnly)
	serve(engine, "/content/site/page.json")

	assert.Equal(t, 1, rec.calls)
	pages.AssertNotCalled(t, "GetPage", mock.Anything, mock.Anything)
}

func TestModeForwardUnknownPagePassesThrough(t *testing.T) {
	pages := new(mocks.PageStore)
	pages.On("GetPage", mock.Anything, "/content/site/page").
		Return(nil, store.ErrNotFound)

	engine, rec := newAmpRouter(pages, models.AmpModeOnly)
	serve(engine, "/content/site/page.html")

	assert.Equal(t, []string{"/content/site/page.html"}, rec.paths)
}

func TestEffectiveMode(t *testing.T) {
	cases := []struct {
		name  string
		props map[string]any
		want  string
	}{
		{"explicit property wins", map[string]any{models.PropAmpMode: models.AmpModePaired, models.PropAmpOnly: true}, models.AmpModePaired},
		{"flag implies ampOnly", map[string]any{models.PropAmpOnly: true}, models.AmpModeOnly},
		{"falls back to site default", map[string]any{}, models.AmpModeNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, amp.EffectiveMode(page(tc.props), models.AmpModeNone))
		})
	}
}
