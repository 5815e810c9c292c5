package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/jobportal/internal/recruitment/application"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/httpx"
	"github.com/wyfcoding/jobportal/pkg/logger"
	"github.com/wyfcoding/jobportal/pkg/utils"
	"github.com/wyfcoding/pkg/response"
)

type panelMember struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

type interviewRequest struct {
	ApplicationID        uint          `json:"application_id"`
	InterviewTypeID      uint          `json:"interview_type_id"`
	InterviewCode        string        `json:"interview_code"`
	ScheduledDate        string        `json:"scheduled_date"`
	StartTime            string        `json:"start_time"`
	DurationMinutes      int           `json:"duration_minutes"`
	Venue                string        `json:"venue"`
	MeetingLink          string        `json:"meeting_link"`
	PrimaryInterviewerID uint          `json:"primary_interviewer_id"`
	Status               string        `json:"status"`
	Feedback             string        `json:"feedback"`
	Panel                []panelMember `json:"panel"`
}

func (r interviewRequest) command() application.ScheduleCommand {
	panel := make([]application.PanelInput, 0, len(r.Panel))
	for _, m := range r.Panel {
		panel = append(panel, application.PanelInput{UserID: m.UserID, Role: m.Role})
	}
	return application.ScheduleCommand{
		ApplicationID:        r.ApplicationID,
		InterviewTypeID:      r.InterviewTypeID,
		InterviewCode:        r.InterviewCode,
		ScheduledDate:        r.ScheduledDate,
		StartTime:            r.StartTime,
		DurationMinutes:      r.DurationMinutes,
		Venue:                r.Venue,
		MeetingLink:          r.MeetingLink,
		PrimaryInterviewerID: r.PrimaryInterviewerID,
		Status:               r.Status,
		Feedback:             r.Feedback,
		Panel:                panel,
	}
}

func (h *Handler) ListInterviews(c *gin.Context) {
	page := pageFromQuery(c)
	items, err := h.svc.InterviewQuery.List(c.Request.Context(), application.InterviewListQuery{Status: c.Query("status"), Page: page})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, utils.Result(page, items))
}

func (h *Handler) ScheduleInterview(c *gin.Context) {
	var req interviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	iv, err := h.svc.Interviews.Schedule(c.Request.Context(), req.command())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, "created", iv)
}

func (h *Handler) UpdateInterview(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req interviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	iv, err := h.svc.Interviews.Update(c.Request.Context(), id, req.command())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, iv)
}

func (h *Handler) DeleteInterview(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Interviews.Delete(c.Request.Context(), id); err != nil {
		httpx.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type feedbackRequest struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
}

func (h *Handler) RecordFeedback(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	iv, err := h.svc.Interviews.RecordFeedback(c.Request.Context(), application.FeedbackCommand{
		InterviewID: id,
		Status:      req.Status,
		Feedback:    req.Feedback,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, iv)
}

// ScheduleData 排期表单数据，保持 {success, data} 信封供前端脚本使用
func (h *Handler) ScheduleData(c *gin.Context) {
	data, err := h.svc.InterviewQuery.ScheduleFormData(c.Request.Context())
	if err != nil {
		code := errorx.CodeOf(err)
		message := "failed to load schedule data"
		if code != errorx.CodeInternal {
			message = errorx.From(err).Message
		} else {
			logger.Error(c.Request.Context(), "schedule data failed", "error", err)
		}
		c.AbortWithStatusJSON(errorx.StatusOf(err), gin.H{
			"success": false,
			"error":   code,
			"message": message,
		})
		return
	}
	response.SuccessWithRawData(c, gin.H{"success": true, "data": data})
}
