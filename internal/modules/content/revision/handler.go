package revision

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sitesmith/core/internal/middleware"
	"github.com/sitesmith/core/internal/models"
	"github.com/sitesmith/core/internal/modules/content/site"
	"github.com/sitesmith/core/internal/pkg/response"
	"gorm.io/gorm"
)

type Handler struct {
	svc   *Service
	sites *site.Service
}

func NewHandler(svc *Service, sites *site.Service) *Handler {
	return &Handler{svc: svc, sites: sites}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	r := rg.Group("/sites/:id/pages/:title/revisions", authMW)
	r.GET("", h.list)
	r.GET("/:rid", h.get)
	r.POST("/:rid/restore", h.restore)
}

func (h *Handler) ownedSite(c *gin.Context) *models.SiteModel {
	s, err := h.sites.Get(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return nil
	}
	if s == nil {
		response.NotFoundMsg(c, "site not found")
		return nil
	}
	return s
}

func (h *Handler) list(c *gin.Context) {
	s := h.ownedSite(c)
	if s == nil {
		return
	}
	entries, err := h.svc.List(c.Request.Context(), s, c.Param("title"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, entries)
}

func (h *Handler) get(c *gin.Context) {
	s := h.ownedSite(c)
	if s == nil {
		return
	}
	content, err := h.svc.Content(c.Request.Context(), s, c.Param("title"), c.Param("rid"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if content == "" {
		response.NotFoundMsg(c, "revision not found")
		return
	}
	response.OK(c, gin.H{"id": c.Param("rid"), "content": content})
}

func (h *Handler) restore(c *gin.Context) {
	s := h.ownedSite(c)
	if s == nil {
		return
	}
	result, err := h.svc.Restore(c.Request.Context(), s, middleware.CurrentUserID(c), c.Param("title"), c.Param("rid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFoundMsg(c, "revision not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, result)
}
