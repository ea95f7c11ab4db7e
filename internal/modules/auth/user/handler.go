package user

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sitesmith/core/internal/middleware"
	"github.com/sitesmith/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	u := rg.Group("/user", authMW)
	u.GET("", h.profile)
	u.PATCH("", h.update)
	u.PUT("/password", h.changePassword)
}

func (h *Handler) profile(c *gin.Context) {
	u, err := h.svc.Get(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFoundMsg(c, "user not found")
		return
	}
	response.OK(c, profileResponse{
		ID: u.ID, Username: u.Username, Name: u.Name,
		Mail: u.Mail, Avatar: u.Avatar,
		LastLoginTime: u.LastLoginTime, Created: u.CreatedAt,
	})
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Update(middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, profileResponse{
		ID: u.ID, Username: u.Username, Name: u.Name,
		Mail: u.Mail, Avatar: u.Avatar,
		LastLoginTime: u.LastLoginTime, Created: u.CreatedAt,
	})
}

func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.ChangePassword(middleware.CurrentUserID(c), dto.OldPassword, dto.NewPassword); err != nil {
		if errors.Is(err, errWrongPassword) {
			response.ForbiddenMsg(c, "wrong password")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"status": true})
}
