package search

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sitesmith/core/internal/middleware"
	"github.com/sitesmith/core/internal/modules/content/site"
	"github.com/sitesmith/core/internal/pkg/response"
)

type Handler struct {
	svc   *Service
	sites *site.Service
}

func NewHandler(svc *Service, sites *site.Service) *Handler {
	return &Handler{svc: svc, sites: sites}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/sites/:id/search", authMW, h.search)
	// Site discovery is public.
	rg.GET("/search", h.searchSites)
}

func (h *Handler) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		response.BadRequest(c, "q is required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	s, err := h.sites.Get(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if s == nil {
		response.NotFoundMsg(c, "site not found")
		return
	}

	hits, err := h.svc.Search(c.Request.Context(), s, query, limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, hits)
}

func (h *Handler) searchSites(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		response.BadRequest(c, "q is required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	hits, err := h.svc.SearchSites(c.Request.Context(), query, limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, hits)
}
