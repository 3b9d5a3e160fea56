package apihandlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/rajramo61/aem-core-wcm-components/internal/models"
	"github.com/rajramo61/aem-core-wcm-components/internal/store"
)

// LibraryContentBody is one kind's payload in a registration request.
type LibraryContentBody struct {
	Raw      string `json:"raw"`
	Minified string `json:"minified,omitempty"`
}

// RegisterLibraryRequest represents the JSON body to register a client
// library. Content is keyed by kind name (css, js); the library's kinds
// are derived from the keys.
type RegisterLibraryRequest struct {
	Path         string                        `json:"path"`
	Categories   []string                      `json:"categories"`
	Dependencies []string                      `json:"dependencies,omitempty"`
	Embeds       []string                      `json:"embeds,omitempty"`
	Content      map[string]LibraryContentBody `json:"content"`
}

func (h *APIHandler) RegisterLibraryHandler(c *gin.Context) {
	req, err := parseRegisterLibraryRequest(c)
	if err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	lib := &models.ClientLibrary{
		Path:         req.Path,
		Categories:   req.Categories,
		Dependencies: req.Dependencies,
		Embeds:       req.Embeds,
	}
	content := make(map[models.LibraryKind]store.LibraryContent, len(req.Content))
	for name, body := range req.Content {
		kind, _ := models.KindFromName(name)
		lib.Kinds = append(lib.Kinds, kind.Name())
		content[kind] = store.LibraryContent{Raw: body.Raw, Minified: body.Minified}
	}

	if err := h.App.Libraries.RegisterLibrary(c.Request.Context(), lib, content); err != nil {
		Internal(c, fmt.Sprintf("RegisterLibraryHandler: failed to register library: %v", err))
		return
	}

	h.enqueueRebuild(c, req.Categories)
	c.JSON(http.StatusCreated, gin.H{"data": lib})
}

// parseRegisterLibraryRequest parses and validates the registration body.
func parseRegisterLibraryRequest(c *gin.Context) (RegisterLibraryRequest, error) {
	var req RegisterLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, err
	}
	if req.Path == "" || len(req.Categories) == 0 || len(req.Content) == 0 {
		return req, fmt.Errorf("missing required fields: path, categories, and content")
	}
	for name := range req.Content {
		if _, ok := models.KindFromName(name); !ok {
			return req, fmt.Errorf("unsupported content kind: %s", name)
		}
	}
	return req, nil
}

func (h *APIHandler) ListLibrariesHandler(c *gin.Context) {
	limit, offset, err := parseListParams(c)
	if err != nil {
		BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	libs, err := h.App.Libraries.ListLibraries(c.Request.Context(), limit, offset)
	if err != nil {
		Internal(c, fmt.Sprintf("ListLibrariesHandler: failed to list libraries: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": libs})
}

func (h *APIHandler) GetLibraryHandler(c *gin.Context) {
	path := c.Param("path")
	lib, err := h.App.Libraries.GetLibrary(c.Request.Context(), path)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, "Library not found: "+path)
		} else {
			Internal(c, fmt.Sprintf("GetLibraryHandler: failed to retrieve library: %v", err))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lib})
}

// CreatePageRequest represents the JSON body to create a page.
type CreatePageRequest struct {
	Path       string         `json:"path"`
	Properties map[string]any `json:"properties"`
}

func (h *APIHandler) CreatePageHandler(c *gin.Context) {
	var req CreatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if req.Path == "" {
		BadRequest(c, "Missing required field: path")
		return
	}

	page := &models.Page{Resource: models.Resource{Path: req.Path, Properties: req.Properties}}
	if err := h.App.Pages.CreatePage(c.Request.Context(), page); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			Conflict(c, "Page already exists: "+req.Path)
		} else {
			Internal(c, fmt.Sprintf("CreatePageHandler: failed to create page: %v", err))
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": page})
}

func (h *APIHandler) ListPagesHandler(c *gin.Context) {
	limit, offset, err := parseListParams(c)
	if err != nil {
		BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	pages, err := h.App.Pages.ListPages(c.Request.Context(), limit, offset)
	if err != nil {
		Internal(c, fmt.Sprintf("ListPagesHandler: failed to list pages: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": pages})
}

func (h *APIHandler) GetPageHandler(c *gin.Context) {
	path := c.Param("path")
	page, err := h.App.Pages.GetPage(c.Request.Context(), path)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, "Page not found: "+path)
		} else {
			Internal(c, fmt.Sprintf("GetPageHandler: failed to retrieve page: %v", err))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": page})
}

func (h *APIHandler) ListJobsHandler(c *gin.Context) {
	limit, offset, err := parseListParams(c)
	if err != nil {
		BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	jobs, err := h.App.Jobs.ListJobs(c.Request.Context(), limit, offset)
	if err != nil {
		Internal(c, fmt.Sprintf("ListJobsHandler: failed to list jobs: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": jobs})
}

// enqueueRebuild schedules a cache rebuild for the categories touched by an
// admin mutation. Enqueue failures are logged only; the mutation already
// succeeded.
func (h *APIHandler) enqueueRebuild(c *gin.Context, categories []string) {
	if h.App.JobClient == nil || len(categories) == 0 {
		return
	}
	if err := h.App.JobClient.EnqueueLibraryRebuild(c.Request.Context(), categories); err != nil {
		log.Errorf("Enqueueing library rebuild for %v: %v.", categories, err)
	}
}

// parseListParams parses limit/offset query parameters with defaults.
func parseListParams(c *gin.Context) (int, int, error) {
	limit := 20
	offset := 0
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			return 0, 0, fmt.Errorf("invalid limit: %s", l)
		}
		limit = parsed
	}
	if o := c.Query("offset"); o != "" {
		parsed, err := strconv.Atoi(o)
		if err != nil || parsed < 0 {
			return 0, 0, fmt.Errorf("invalid offset: %s", o)
		}
		offset = parsed
	}
	return limit, offset, nil
}
