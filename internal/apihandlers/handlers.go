package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajramo61/aem-core-wcm-components/internal/amp"
	"github.com/rajramo61/aem-core-wcm-components/internal/app"
)

type APIHandler struct {
	App *app.App
}

func NewAPIHandler(application *app.App) *APIHandler {
	return &APIHandler{App: application}
}

// RegisterRoutes wires all HTTP routes onto the engine. Page rendering
// under /content runs behind the AMP forwarding middleware.
func RegisterRoutes(engine *gin.Engine, application *app.App) {
	h := NewAPIHandler(application)

	engine.GET("/health", h.HealthHandler)
	engine.GET("/etc.clientlibs/:kind", h.ClientLibHandler)

	content := engine.Group("/content")
	content.Use(amp.ModeForward(amp.MiddlewareDeps{
		Pages:       application.Pages,
		Engine:      engine,
		DefaultMode: application.Config.Amp.DefaultMode,
	}))
	content.GET("/*page", h.RenderPageHandler)

	api := engine.Group("/api/v1")
	api.POST("/libraries", h.RegisterLibraryHandler)
	api.GET("/libraries", h.ListLibrariesHandler)
	api.GET("/library/*path", h.GetLibraryHandler)
	api.POST("/pages", h.CreatePageHandler)
	api.GET("/pages", h.ListPagesHandler)
	api.GET("/page/*path", h.GetPageHandler)
	api.GET("/jobs", h.ListJobsHandler)
}

func (h *APIHandler) HealthHandler(c *gin.Context) {
	if err := h.App.Resources.Ping(c.Request.Context()); err != nil {
		JSONError(c, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
