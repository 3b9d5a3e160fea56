package apihandlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/rajramo61/aem-core-wcm-components/internal/amp"
	"github.com/rajramo61/aem-core-wcm-components/internal/models"
	"github.com/rajramo61/aem-core-wcm-components/internal/pathinfo"
	"github.com/rajramo61/aem-core-wcm-components/internal/store"
)

// ClientLibHandler serves the aggregated payload of the requested kind for
// the categories named in the query string. Aggregation failures are soft:
// the response is 200 with an empty body, matching the aggregator's
// contract, so a broken library never breaks the page referencing it.
func (h *APIHandler) ClientLibHandler(c *gin.Context) {
	kindName := c.Param("kind")
	categoryCsv := c.Query("categories")

	var output string
	if types := splitQueryList(c.Query("types")); len(types) > 0 {
		output = h.App.Aggregator.GetClientLibOutputForTypes(c.Request.Context(),
			categoryCsv, kindName, types, c.Query("path"), c.Query("fallback"))
	} else {
		output = h.App.Aggregator.GetClientLibOutput(c.Request.Context(), categoryCsv, kindName)
	}

	contentType := "text/plain; charset=utf-8"
	if kind, ok := models.KindFromName(kindName); ok {
		contentType = kind.ContentType()
	}
	c.Data(http.StatusOK, contentType, []byte(output))
}

// RenderPageHandler renders a minimal HTML shell for the addressed page,
// inlining its client library output. The AMP variant carries the amp
// document attribute, inlines CSS only, and links back to the canonical
// page; paired pages advertise their amphtml variant.
func (h *APIHandler) RenderPageHandler(c *gin.Context) {
	info := pathinfo.Parse(c.Request.URL.Path)
	if info.Extension != "html" {
		NotFound(c, "Unsupported extension: "+info.Extension)
		return
	}

	page, err := h.App.Pages.GetPage(c.Request.Context(), info.ResourcePath)
	if err != nil {
		if err == store.ErrNotFound {
			NotFound(c, "Page not found: "+info.ResourcePath)
		} else {
			Internal(c, fmt.Sprintf("RenderPageHandler: failed to resolve page: %v", err))
		}
		return
	}

	categoryCsv := strings.Join(page.StringSlice(models.PropCategories), ",")
	isAmp := info.HasSelector(amp.Selector)

	css := h.App.Aggregator.GetClientLibOutput(c.Request.Context(), categoryCsv, "css")
	js := ""
	if !isAmp {
		js = h.App.Aggregator.GetClientLibOutput(c.Request.Context(), categoryCsv, "js")
	}

	doc := renderDocument(page.Title(), css, js, isAmp)
	mode := amp.EffectiveMode(page, h.App.Config.Amp.DefaultMode)
	if rel, href, ok := amp.PageLink(info, mode); ok {
		injected, err := amp.InjectLink(doc, rel, href)
		if err != nil {
			log.Errorf("Injecting %s link for %s: %v.", rel, info.ResourcePath, err)
		} else {
			doc = injected
		}
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", doc)
}

func renderDocument(title, css, js string, isAmp bool) []byte {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>")
	if isAmp {
		b.WriteString(`<html amp>`)
	} else {
		b.WriteString("<html>")
	}
	b.WriteString("<head><title>")
	b.WriteString(title)
	b.WriteString("</title>")
	if css != "" {
		if isAmp {
			b.WriteString(`<style amp-custom>`)
		} else {
			b.WriteString("<style>")
		}
		b.WriteString(css)
		b.WriteString("</style>")
	}
	b.WriteString("</head><body><h1>")
	b.WriteString(title)
	b.WriteString("</h1>")
	if js != "" {
		b.WriteString("<script>")
		b.WriteString(js)
		b.WriteString("</script>")
	}
	b.WriteString("</body></html>")
	return []byte(b.String())
}

func splitQueryList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
