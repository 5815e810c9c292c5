package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/jobportal/internal/audit/application"
	"github.com/wyfcoding/jobportal/internal/audit/domain"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/httpx"
	"github.com/wyfcoding/jobportal/pkg/utils"
	"github.com/wyfcoding/pkg/response"
)

// Handler 审计日志查询接口
type Handler struct {
	query *application.Query
}

// NewHandler 创建处理器
func NewHandler(query *application.Query) *Handler {
	return &Handler{query: query}
}

// RegisterRoutes admin 为已限定管理员角色的分组
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/audit-logs", h.List)
}

// List GET /admin/audit-logs?entity_type=&entity_id=&actor_id=&page=&page_size=
func (h *Handler) List(c *gin.Context) {
	f := domain.Filter{EntityType: c.Query("entity_type")}
	for name, dst := range map[string]*uint{"entity_id": &f.EntityID, "actor_id": &f.ActorID} {
		v := c.Query(name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			httpx.Error(c, errorx.Validation("invalid filter", map[string]string{name: "must be a positive integer"}))
			return
		}
		*dst = uint(n)
	}

	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	p := utils.NewPagination(page, size)

	logs, err := h.query.List(c.Request.Context(), f, p)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, utils.Result(p, logs))
}
