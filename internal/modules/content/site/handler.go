package site

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sitesmith/core/internal/config"
	"github.com/sitesmith/core/internal/middleware"
	"github.com/sitesmith/core/internal/models"
	"github.com/sitesmith/core/internal/pkg/response"
	"gorm.io/gorm"
)

type Handler struct {
	svc *Service
	cfg *config.AppConfig
}

func NewHandler(svc *Service, cfg *config.AppConfig) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	s := rg.Group("/sites", authMW)
	s.GET("", h.list)
	s.POST("", h.create)
	s.GET("/:id", h.get)
	s.PATCH("/:id", h.update)
	s.POST("/:id/manage", h.manage)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	site, err := h.svc.Create(c.Request.Context(), middleware.CurrentUserID(c), &dto)
	if err != nil {
		switch {
		case errors.Is(err, errSubdomainInvalid), errors.Is(err, errSubdomainReserved):
			response.BadRequest(c, err.Error())
		case errors.Is(err, errSubdomainTaken):
			response.Conflict(c, "subdomain already taken")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, h.toResponse(site))
}

func (h *Handler) list(c *gin.Context) {
	sites, err := h.svc.ListByUser(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]siteResponse, len(sites))
	for i := range sites {
		items[i] = h.toResponse(&sites[i])
	}
	response.OK(c, gin.H{"data": items})
}

func (h *Handler) get(c *gin.Context) {
	site, err := h.svc.Get(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if site == nil {
		response.NotFoundMsg(c, "site not found")
		return
	}
	response.OK(c, h.toResponse(site))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	site, err := h.svc.Update(middleware.CurrentUserID(c), c.Param("id"), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if site == nil {
		response.NotFoundMsg(c, "site not found")
		return
	}
	response.OK(c, h.toResponse(site))
}

func (h *Handler) manage(c *gin.Context) {
	var dto ManageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err := h.svc.Manage(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), dto.Action)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFoundMsg(c, "site not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"status": true})
}

func (h *Handler) toResponse(site *models.SiteModel) siteResponse {
	return siteResponse{
		ID:        site.ID,
		Name:      site.Name,
		Subdomain: site.Subdomain,
		Domain:    site.Domain,
		URL:       h.cfg.SubdomainURL(site.Subdomain),
		WikiURL:   site.WikiURL,
		IsActive:  site.IsActive,
		Created:   site.CreatedAt,
		Modified:  site.UpdatedAt,
	}
}
