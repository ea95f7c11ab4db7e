package file

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sitesmith/core/internal/middleware"
	"github.com/sitesmith/core/internal/models"
	"github.com/sitesmith/core/internal/modules/content/page"
	"github.com/sitesmith/core/internal/modules/content/site"
	"github.com/sitesmith/core/internal/pkg/response"
	"gorm.io/gorm"
)

type Handler struct {
	svc   *Service
	sites *site.Service
	pages *page.Service
}

func NewHandler(svc *Service, sites *site.Service, pages *page.Service) *Handler {
	return &Handler{svc: svc, sites: sites, pages: pages}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	f := rg.Group("/sites/:id/pages/:title/files", authMW)
	f.GET("", h.list)
	f.POST("", h.upload)
	f.DELETE("/:fid", h.delete)
}

func (h *Handler) ownedPage(c *gin.Context) (*models.SiteModel, *models.PageModel) {
	s, err := h.sites.Get(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return nil, nil
	}
	if s == nil {
		response.NotFoundMsg(c, "site not found")
		return nil, nil
	}
	p, err := h.pages.Get(s, c.Param("title"))
	if err != nil {
		response.InternalError(c, err)
		return nil, nil
	}
	if p == nil {
		response.NotFoundMsg(c, "page not found")
		return nil, nil
	}
	return s, p
}

func (h *Handler) upload(c *gin.Context) {
	s, p := h.ownedPage(c)
	if s == nil {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if fh.Size > MaxUploadSize {
		response.BadRequest(c, errFileTooLarge.Error())
		return
	}

	src, err := fh.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer src.Close()
	payload, err := io.ReadAll(io.LimitReader(src, MaxUploadSize+1))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	f, err := h.svc.Upload(c.Request.Context(), s, p, middleware.CurrentUserID(c),
		fh.Filename, fh.Header.Get("Content-Type"), payload)
	if err != nil {
		if errors.Is(err, errFileTooLarge) || errors.Is(err, errFileTypeDenied) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, toResponse(f))
}

func (h *Handler) list(c *gin.Context) {
	_, p := h.ownedPage(c)
	if p == nil {
		return
	}
	files, err := h.svc.List(p.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]fileResponse, len(files))
	for i := range files {
		items[i] = toResponse(&files[i])
	}
	response.OK(c, gin.H{"data": items})
}

func (h *Handler) delete(c *gin.Context) {
	s, p := h.ownedPage(c)
	if s == nil {
		return
	}
	if err := h.svc.Delete(s, p.ID, c.Param("fid")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFoundMsg(c, "file not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func toResponse(f *models.PageFileModel) fileResponse {
	return fileResponse{
		ID:           f.ID,
		Filename:     f.Filename,
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		Size:         f.Size,
		Storage:      f.Storage,
		URL:          f.Path,
		Created:      f.CreatedAt,
	}
}
