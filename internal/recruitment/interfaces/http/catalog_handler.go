package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/jobportal/internal/recruitment/application"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/httpx"
	"github.com/wyfcoding/jobportal/pkg/utils"
	"github.com/wyfcoding/pkg/response"
)

type departmentRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

func (r departmentRequest) command() application.DepartmentCommand {
	return application.DepartmentCommand{Name: r.Name, Code: r.Code, Description: r.Description, IsActive: r.IsActive}
}

func (h *Handler) ListDepartments(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	depts, err := h.svc.Catalog.ListDepartments(c.Request.Context(), activeOnly)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, gin.H{"list": depts})
}

func (h *Handler) CreateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	dept, err := h.svc.Catalog.CreateDepartment(c.Request.Context(), req.command())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, "created", dept)
}

func (h *Handler) UpdateDepartment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	dept, err := h.svc.Catalog.UpdateDepartment(c.Request.Context(), id, req.command())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, dept)
}

type jobRequest struct {
	DepartmentID   uint                `json:"department_id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Location       string              `json:"location"`
	EmploymentType string              `json:"employment_type"`
	SalaryMin      decimal.NullDecimal `json:"salary_min"`
	SalaryMax      decimal.NullDecimal `json:"salary_max"`
	Status         string              `json:"status"`
	// Deadline 格式 2006-01-02
	Deadline string `json:"deadline"`
}

func (h *Handler) CreateJob(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	cmd := application.JobCommand{
		DepartmentID:   req.DepartmentID,
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		Status:         req.Status,
	}
	if req.Deadline != "" {
		d, err := time.Parse(time.DateOnly, req.Deadline)
		if err != nil {
			httpx.Error(c, errorx.Validation("invalid deadline", map[string]string{"deadline": "expected YYYY-MM-DD"}))
			return
		}
		cmd.Deadline = &d
	}
	job, err := h.svc.Catalog.CreateJob(c.Request.Context(), cmd)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, "created", job)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

func (h *Handler) SetJobStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	job, err := h.svc.Catalog.SetJobStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, job)
}

func (h *Handler) ListJobs(c *gin.Context) {
	page := pageFromQuery(c)
	jobs, err := h.svc.Catalog.ListJobs(c.Request.Context(), application.JobListQuery{Status: c.Query("status"), Page: page})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, utils.Result(page, jobs))
}

func (h *Handler) ListOpenJobs(c *gin.Context) {
	page := pageFromQuery(c)
	jobs, err := h.svc.Catalog.ListOpenJobs(c.Request.Context(), page)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, utils.Result(page, jobs))
}

func (h *Handler) ApplicationReport(c *gin.Context) {
	report, err := h.svc.Reports.ApplicationReport(c.Request.Context())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, report)
}
