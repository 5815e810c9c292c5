package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/jobportal/internal/auth/application"
	"github.com/wyfcoding/jobportal/internal/auth/domain"
	"github.com/wyfcoding/jobportal/pkg/config"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/httpx"
	"github.com/wyfcoding/jobportal/pkg/utils"
	"github.com/wyfcoding/pkg/response"
)

// Handler 认证与员工管理接口
type Handler struct {
	cmd     *application.AuthCommandService
	query   *application.AuthQueryService
	session config.SessionConfig
}

// NewHandler 创建处理器
func NewHandler(cmd *application.AuthCommandService, query *application.AuthQueryService, session config.SessionConfig) *Handler {
	return &Handler{cmd: cmd, query: query, session: session}
}

// RegisterRoutes 注册路由。authed 为已挂载 Authenticate 的分组
func (h *Handler) RegisterRoutes(public, authed *gin.RouterGroup) {
	g := public.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)

	a := authed.Group("/auth")
	a.POST("/logout", h.Logout)
	a.GET("/me", h.Me)

	admin := authed.Group("/admin/staff", RequireRole(string(domain.RoleAdmin)))
	admin.GET("", h.ListStaff)
	admin.POST("", h.CreateStaff)
	admin.POST("/:id/active", h.SetActive)
}

type registerRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	user, err := h.cmd.Register(c.Request.Context(), application.RegisterCommand{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, "created", user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	res, err := h.cmd.Login(c.Request.Context(), application.LoginCommand{Email: req.Email, Password: req.Password})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, res.Token, int(h.session.TTL().Seconds()), "/", "", h.session.Secure, true)
	response.Success(c, gin.H{
		"token":      res.Token,
		"type":       "Bearer",
		"expires_at": res.ExpiresAt,
		"user":       res.User,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.cmd.Logout(c.Request.Context(), tokenFromRequest(c, h.session.CookieName)); err != nil {
		httpx.Error(c, err)
		return
	}
	c.SetCookie(h.session.CookieName, "", -1, "/", "", h.session.Secure, true)
	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.query.Me(c.Request.Context())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, user)
}

func (h *Handler) ListStaff(c *gin.Context) {
	var role domain.Role
	if v := c.Query("role"); v != "" {
		parsed, err := domain.ParseRole(v)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		role = parsed
	}
	page := pageFromQuery(c)
	users, err := h.query.ListStaff(c.Request.Context(), role, page)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, utils.Result(page, users))
}

type createStaffRequest struct {
	Email        string      `json:"email" binding:"required"`
	Password     string      `json:"password" binding:"required"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Phone        string      `json:"phone"`
	Role         domain.Role `json:"role" binding:"required"`
	DepartmentID *uint       `json:"department_id"`
}

func (h *Handler) CreateStaff(c *gin.Context) {
	var req createStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errorx.Is(err, errorx.CodeValidation) {
			httpx.Error(c, err)
			return
		}
		httpx.BadRequest(c, err)
		return
	}
	user, err := h.cmd.CreateStaff(c.Request.Context(), application.CreateStaffCommand{
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         req.Role,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, "created", user)
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *Handler) SetActive(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httpx.Error(c, errorx.Validation("invalid user id", nil))
		return
	}
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	user, err := h.cmd.SetActive(c.Request.Context(), uint(id), *req.Active)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, user)
}

func pageFromQuery(c *gin.Context) *utils.Pagination {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	return utils.NewPagination(page, size)
}
