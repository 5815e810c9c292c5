// Package http 招聘上下文的 HTTP 接口
package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
	authhttp "github.com/wyfcoding/jobportal/internal/auth/interfaces/http"
	"github.com/wyfcoding/jobportal/internal/recruitment/application"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/httpx"
	"github.com/wyfcoding/jobportal/pkg/utils"
)

const (
	roleAdmin     = "admin"
	roleEmployer  = "employer"
	roleHR        = "hr"
	roleApplicant = "applicant"
)

// Handler 部门、职位、申请、面试与报表接口
type Handler struct {
	svc *application.Service
}

// NewHandler 创建处理器
func NewHandler(svc *application.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes public 为匿名分组，authed 为已挂载 Authenticate 的分组
func (h *Handler) RegisterRoutes(public, authed *gin.RouterGroup) {
	public.GET("/jobs", h.ListOpenJobs)

	admin := authed.Group("/admin", authhttp.RequireRole(roleAdmin))
	admin.GET("/departments", h.ListDepartments)
	admin.POST("/departments", h.CreateDepartment)
	admin.PUT("/departments/:id", h.UpdateDepartment)
	admin.GET("/applications", h.ListApplications)
	admin.GET("/applications/:id/history", h.History)
	admin.POST("/applications/:id/status", h.TransitionApplication)
	admin.GET("/interviews", h.ListInterviews)
	admin.POST("/interviews", h.ScheduleInterview)
	admin.GET("/interviews/schedule-data", h.ScheduleData)
	admin.PUT("/interviews/:id", h.UpdateInterview)
	admin.DELETE("/interviews/:id", h.DeleteInterview)
	admin.GET("/reports/applications", h.ApplicationReport)

	employer := authed.Group("/employer", authhttp.RequireRole(roleEmployer, roleHR))
	employer.GET("/jobs", h.ListJobs)
	employer.POST("/jobs", h.CreateJob)
	employer.POST("/jobs/:id/status", h.SetJobStatus)
	employer.GET("/applications", h.ListApplications)
	employer.GET("/applications/:id/history", h.History)
	employer.POST("/applications/:id/status", h.TransitionApplication)
	employer.GET("/interviews", h.ListInterviews)
	employer.GET("/reports/applications", h.ApplicationReport)

	authed.POST("/interviews/:id/feedback", authhttp.RequireRole(roleAdmin, roleEmployer, roleHR), h.RecordFeedback)

	applicant := authed.Group("/applicant", authhttp.RequireRole(roleApplicant))
	applicant.GET("/applications", h.ListApplications)
	applicant.POST("/applications", h.SubmitApplication)
	applicant.GET("/applications/:id/history", h.History)
	applicant.POST("/applications/:id/withdraw", h.WithdrawApplication)
	applicant.POST("/applications/:id/submit", h.SubmitDraft)
}

func pageFromQuery(c *gin.Context) *utils.Pagination {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	return utils.NewPagination(page, size)
}

// idParam 解析路径中的正整数 ID，失败时已写出响应
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		httpx.Error(c, errorx.Validation("invalid id", map[string]string{name: "must be a positive integer"}))
		return 0, false
	}
	return uint(id), true
}

func uintQuery(c *gin.Context, name string) (uint, bool) {
	v := c.Query(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		httpx.Error(c, errorx.Validation("invalid filter", map[string]string{name: "must be a positive integer"}))
		return 0, false
	}
	return uint(n), true
}
