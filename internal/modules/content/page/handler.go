package page

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sitesmith/core/internal/middleware"
	"github.com/sitesmith/core/internal/models"
	"github.com/sitesmith/core/internal/modules/content/site"
	"github.com/sitesmith/core/internal/pkg/pagination"
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
	p := rg.Group("/sites/:id/pages", authMW)
	p.GET("", h.list)
	p.POST("", h.save)
	p.GET("/:title", h.get)
	p.DELETE("/:title", h.delete)
	p.PUT("/:title/protection", h.protect)
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
	pages, pg, err := h.svc.List(s, pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]*pageResponse, len(pages))
	for i := range pages {
		items[i] = toResponse(&pages[i])
	}
	response.Paged(c, items, pg)
}

func (h *Handler) get(c *gin.Context) {
	s := h.ownedSite(c)
	if s == nil {
		return
	}
	p, err := h.svc.Get(s, c.Param("title"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFoundMsg(c, "page not found")
		return
	}
	response.OK(c, toResponse(p))
}

func (h *Handler) save(c *gin.Context) {
	s := h.ownedSite(c)
	if s == nil {
		return
	}
	var dto SaveDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.svc.Save(c.Request.Context(), s, middleware.CurrentUserID(c), &dto)
	if err != nil {
		switch {
		case errors.Is(err, errPageProtected):
			response.ForbiddenMsg(c, "page is protected")
		case errors.Is(err, errEmptyPageWrite):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, result)
}

func (h *Handler) delete(c *gin.Context) {
	s := h.ownedSite(c)
	if s == nil {
		return
	}
	err := h.svc.Delete(c.Request.Context(), s, middleware.CurrentUserID(c), c.Param("title"))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.NotFoundMsg(c, "page not found")
		case errors.Is(err, errPageProtected):
			response.ForbiddenMsg(c, "page is protected")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.NoContent(c)
}

func (h *Handler) protect(c *gin.Context) {
	s := h.ownedSite(c)
	if s == nil {
		return
	}
	var dto ProtectDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.SetProtection(c.Request.Context(), s, c.Param("title"), *dto.Protected)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFoundMsg(c, "page not found")
		return
	}
	response.OK(c, toResponse(p))
}

func toResponse(p *models.PageModel) *pageResponse {
	return &pageResponse{
		ID:          p.ID,
		SiteID:      p.SiteID,
		Title:       p.Title,
		Slug:        p.Slug,
		Content:     p.Content,
		Format:      p.Format,
		IsPublished: p.IsPublished,
		IsProtected: p.IsProtected,
		Created:     p.CreatedAt,
		Modified:    p.UpdatedAt,
	}
}
