package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/jobportal/internal/recruitment/application"
	"github.com/wyfcoding/jobportal/pkg/httpx"
	"github.com/wyfcoding/jobportal/pkg/utils"
	"github.com/wyfcoding/pkg/response"
)

// ListApplications ?status=&job_id=&page=&page_size=，范围由身份决定
func (h *Handler) ListApplications(c *gin.Context) {
	jobID, ok := uintQuery(c, "job_id")
	if !ok {
		return
	}
	page := pageFromQuery(c)
	apps, err := h.svc.ApplicationQuery.List(c.Request.Context(), application.ApplicationListQuery{
		Status: c.Query("status"),
		JobID:  jobID,
		Page:   page,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, utils.Result(page, apps))
}

func (h *Handler) History(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	history, err := h.svc.ApplicationQuery.History(c.Request.Context(), id)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, gin.H{"list": history})
}

type submitRequest struct {
	JobID       uint   `json:"job_id" binding:"required"`
	CoverLetter string `json:"cover_letter"`
	Draft       bool   `json:"draft"`
}

func (h *Handler) SubmitApplication(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	app, err := h.svc.Applications.Submit(c.Request.Context(), application.SubmitCommand{
		JobID:       req.JobID,
		CoverLetter: req.CoverLetter,
		AsDraft:     req.Draft,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, "created", app)
}

func (h *Handler) SubmitDraft(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	app, err := h.svc.Applications.SubmitDraft(c.Request.Context(), id)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, app)
}

func (h *Handler) TransitionApplication(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	app, err := h.svc.Applications.Transition(c.Request.Context(), application.TransitionCommand{
		ApplicationID: id,
		Status:        req.Status,
		Notes:         req.Notes,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, app)
}

type withdrawRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) WithdrawApplication(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req withdrawRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, err)
			return
		}
	}
	app, err := h.svc.Applications.Withdraw(c.Request.Context(), id, req.Reason)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, app)
}
