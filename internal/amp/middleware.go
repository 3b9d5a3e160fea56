// Package amp decides when an inbound page request must be re-dispatched
// to its AMP rendering variant and rewrites rendered documents with the
// alternate-representation links AMP pairing requires.
package amp

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/rajramo61/aem-core-wcm-components/internal/models"
	"github.com/rajramo61/aem-core-wcm-components/internal/pathinfo"
	"github.com/rajramo61/aem-core-wcm-components/internal/store"
)

// Selector is the request selector token addressing the AMP variant.
const Selector = "amp"

type forwardKey struct{}

// Forwarded reports whether the request already went through an internal
// AMP dispatch. Re-dispatching runs the middleware chain again, so the
// marker travels on the request context rather than on gin's key map.
func Forwarded(r *http.Request) bool {
	v, _ := r.Context().Value(forwardKey{}).(bool)
	return v
}

// MiddlewareDeps carries the dependencies of ModeForward.
type MiddlewareDeps struct {
	Pages       store.PageStore
	Engine      *gin.Engine
	DefaultMode string
}

// ModeForward returns middleware that inspects the request's selectors and
// the resolved page's AMP mode. A page whose effective mode is AMP-only is
// served from its amp variant path: requests missing the amp selector are
// internally forwarded exactly once, with suffix and query preserved.
// Requests that already carry the amp selector pass through, except when
// the page's explicit ampMode property demands AMP while the amp-only flag
// is unset; the explicit property wins and the request is re-dispatched on
// the normalized amp path.
func ModeForward(deps MiddlewareDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if Forwarded(c.Request) {
			c.Next()
			return
		}

		info := pathinfo.Parse(c.Request.URL.Path)
		if info.Extension != "html" {
			c.Next()
			return
		}

		page, err := deps.Pages.GetPage(c.Request.Context(), info.ResourcePath)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				log.WithError(err).Errorf("Unable to resolve page %s.", info.ResourcePath)
			}
			c.Next()
			return
		}

		hasAmp := info.HasSelector(Selector)
		switch {
		case !hasAmp && EffectiveMode(page, deps.DefaultMode) == models.AmpModeOnly:
			forward(c, deps.Engine, info.WithSelector(Selector))
		case hasAmp && !page.IsAmpOnly() && page.AmpMode() == models.AmpModeOnly:
			forward(c, deps.Engine, info.WithSelector(Selector))
		default:
			c.Next()
		}
	}
}

// EffectiveMode resolves a page's AMP mode: the explicit ampMode property
// first, then the amp-only flag, then the site default.
func EffectiveMode(page *models.Page, siteDefault string) string {
	if m := page.AmpMode(); m != "" {
		return m
	}
	if page.IsAmpOnly() {
		return models.AmpModeOnly
	}
	return siteDefault
}

func forward(c *gin.Context, engine *gin.Engine, info pathinfo.PathInfo) {
	target := info.String()
	log.Debugf("Forwarding %s to %s.", c.Request.URL.Path, target)

	ctx := context.WithValue(c.Request.Context(), forwardKey{}, true)
	c.Request = c.Request.WithContext(ctx)
	c.Request.URL.Path = target
	engine.HandleContext(c)
	c.Abort()
}
