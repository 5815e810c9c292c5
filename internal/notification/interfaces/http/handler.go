package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/jobportal/internal/notification/application"
	"github.com/wyfcoding/jobportal/pkg/contextx"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/httpx"
	"github.com/wyfcoding/jobportal/pkg/utils"
	"github.com/wyfcoding/pkg/response"
)

// Handler 站内信接口，所有登录用户可用
type Handler struct {
	svc *application.NotificationService
}

// NewHandler 创建处理器
func NewHandler(svc *application.NotificationService) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes authed 为已认证分组
func (h *Handler) RegisterRoutes(authed *gin.RouterGroup) {
	g := authed.Group("/notifications")
	g.GET("", h.List)
	g.GET("/unread-count", h.UnreadCount)
	g.POST("/:id/read", h.MarkRead)
}

func (h *Handler) List(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	p := utils.NewPagination(page, size)
	unread := c.Query("unread") == "true" || c.Query("unread") == "1"

	items, err := h.svc.List(c.Request.Context(), id.UserID, unread, p)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, utils.Result(p, items))
}

func (h *Handler) UnreadCount(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	n, err := h.svc.UnreadCount(c.Request.Context(), id.UserID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, gin.H{"unread": n})
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), id.UserID, c.Param("id")); err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, gin.H{"read": true})
}

func identity(c *gin.Context) (contextx.Identity, bool) {
	id, ok := contextx.GetIdentity(c.Request.Context())
	if !ok {
		httpx.Error(c, errorx.Unauthorized("authentication required"))
	}
	return id, ok
}
