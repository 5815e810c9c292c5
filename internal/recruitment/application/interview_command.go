package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wyfcoding/jobportal/internal/recruitment/domain"
	"github.com/wyfcoding/jobportal/pkg/contextx"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/logger"
)

// maxCodeAttempts 面试编号顺延次数上限
const maxCodeAttempts = 20

// PanelInput 面试小组成员输入
type PanelInput struct {
	UserID uint
	Role   string
}

// ScheduleCommand 安排或更新面试
type ScheduleCommand struct {
	ApplicationID        uint
	InterviewTypeID      uint
	InterviewCode        string
	ScheduledDate        string
	StartTime            string
	DurationMinutes      int
	Venue                string
	MeetingLink          string
	PrimaryInterviewerID uint
	Status               string
	Feedback             string
	Panel                []PanelInput
}

// FeedbackCommand 面试反馈
type FeedbackCommand struct {
	InterviewID uint
	Status      string
	Feedback    string
}

// InterviewCommandService 面试命令服务
type InterviewCommandService struct {
	w *workflow
}

// newInterviewCommandService 创建面试命令服务
func newInterviewCommandService(w *workflow) *InterviewCommandService {
	return &InterviewCommandService{w: w}
}

type validatedSchedule struct {
	slot   domain.Slot
	panel  []domain.PanelMember
	status domain.InterviewStatus
}

// Schedule 为申请安排面试，并在同一事务内将申请流转到 interview_scheduled
func (s *InterviewCommandService) Schedule(ctx context.Context, cmd ScheduleCommand) (*domain.Interview, error) {
	actor, err := requireIdentity(ctx, roleAdmin)
	if err != nil {
		return nil, err
	}
	if cmd.ApplicationID == 0 {
		return nil, errorx.Validation("application is required", map[string]string{"application_id": "required"})
	}
	v, err := s.validate(ctx, cmd, domain.InterviewScheduled)
	if err != nil {
		return nil, err
	}

	now := s.w.now()
	iv := &domain.Interview{
		ApplicationID:        cmd.ApplicationID,
		InterviewTypeID:      cmd.InterviewTypeID,
		InterviewCode:        strings.TrimSpace(cmd.InterviewCode),
		ScheduledDate:        v.slot.ScheduledDate,
		StartTime:            v.slot.StartTime,
		DurationMinutes:      v.slot.DurationMinutes,
		Venue:                strings.TrimSpace(cmd.Venue),
		MeetingLink:          strings.TrimSpace(cmd.MeetingLink),
		PrimaryInterviewerID: cmd.PrimaryInterviewerID,
		Status:               v.status,
		Feedback:             strings.TrimSpace(cmd.Feedback),
		CreatedBy:            actor.UserID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	var (
		res    *transitionResult
		target *domain.Application
	)
	err = s.w.Interviews.WithTx(ctx, func(txCtx context.Context) error {
		app, err := s.w.Applications.GetForUpdate(txCtx, cmd.ApplicationID)
		if err != nil {
			return errorx.Internal("failed to load application", err)
		}
		if app == nil {
			return errorx.NotFound("not found")
		}
		if !app.Status.Schedulable() {
			return errorx.Validation("application cannot be scheduled", map[string]string{"status": string(app.Status)})
		}
		existing, err := s.w.Interviews.GetByApplicationID(txCtx, app.ID)
		if err != nil {
			return errorx.Internal("failed to check existing interview", err)
		}
		if existing != nil {
			return errorx.Conflict("application already has an interview")
		}

		if iv.InterviewCode == "" {
			code, err := nextInterviewCode(txCtx, s.w.Interviews, now.Year())
			if err != nil {
				return err
			}
			iv.InterviewCode = code
		}
		if err := s.w.Interviews.Create(txCtx, iv); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return errorx.Conflict("interview already exists for this application or code is taken")
			}
			return errorx.Internal("failed to save interview", err)
		}
		if len(v.panel) > 0 {
			if err := s.w.Interviews.AddPanelMembers(txCtx, iv.ID, v.panel); err != nil {
				return errorx.Internal("failed to save panel", err)
			}
		}

		target = app
		if app.Status == domain.StatusInterviewScheduled {
			return nil
		}
		r, err := s.w.apply(txCtx, actor, transitionRequest{
			ApplicationID: app.ID,
			To:            domain.StatusInterviewScheduled,
			Notes:         fmt.Sprintf("Interview %s scheduled for %s %s", iv.InterviewCode, iv.ScheduledDate, iv.StartTime),
		})
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.w.Metrics.RecordInterview("scheduled")
	s.publish(ctx, domain.EventInterviewScheduled, iv, actor)
	s.w.record(ctx, "interview.schedule", "interview", iv.ID, map[string]any{
		"application_id": iv.ApplicationID,
		"code":           iv.InterviewCode,
		"date":           iv.ScheduledDate,
		"time":           iv.StartTime,
		"panel_size":     len(v.panel),
	})

	subject, content := scheduleNotice(target.ApplicationNumber, iv)
	if res != nil {
		s.w.afterTransition(ctx, res, subject, content)
	} else {
		s.w.notifyApplicant(ctx, target.UserID, subject, content)
	}
	return iv, nil
}

// Update 替换面试的可变字段，小组成员按差异增删改
func (s *InterviewCommandService) Update(ctx context.Context, interviewID uint, cmd ScheduleCommand) (*domain.Interview, error) {
	actor, err := requireIdentity(ctx, roleAdmin)
	if err != nil {
		return nil, err
	}
	v, err := s.validate(ctx, cmd, "")
	if err != nil {
		return nil, err
	}

	var (
		iv   *domain.Interview
		diff domain.PanelDiff
	)
	err = s.w.Interviews.WithTx(ctx, func(txCtx context.Context) error {
		cur, err := s.w.Interviews.GetByID(txCtx, interviewID)
		if err != nil {
			return errorx.Internal("failed to load interview", err)
		}
		if cur == nil {
			return errorx.NotFound("interview not found")
		}

		cur.InterviewTypeID = cmd.InterviewTypeID
		if code := strings.TrimSpace(cmd.InterviewCode); code != "" {
			cur.InterviewCode = code
		}
		cur.ScheduledDate = v.slot.ScheduledDate
		cur.StartTime = v.slot.StartTime
		cur.DurationMinutes = v.slot.DurationMinutes
		cur.Venue = strings.TrimSpace(cmd.Venue)
		cur.MeetingLink = strings.TrimSpace(cmd.MeetingLink)
		cur.PrimaryInterviewerID = cmd.PrimaryInterviewerID
		if v.status != "" {
			cur.Status = v.status
		}
		cur.Feedback = strings.TrimSpace(cmd.Feedback)
		cur.UpdatedAt = s.w.now()
		if err := s.w.Interviews.Update(txCtx, cur); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return errorx.Conflict("interview code is taken")
			}
			return errorx.Internal("failed to update interview", err)
		}

		existing, err := s.w.Interviews.ListPanel(txCtx, cur.ID)
		if err != nil {
			return errorx.Internal("failed to load panel", err)
		}
		diff = domain.DiffPanel(existing, v.panel)
		if err := s.applyPanelDiff(txCtx, cur.ID, diff); err != nil {
			return err
		}
		iv = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.w.Metrics.RecordInterview("updated")
	s.publish(ctx, domain.EventInterviewUpdated, iv, actor)
	s.w.record(ctx, "interview.update", "interview", iv.ID, map[string]any{
		"date":          iv.ScheduledDate,
		"time":          iv.StartTime,
		"status":        iv.Status,
		"panel_added":   len(diff.Add),
		"panel_removed": len(diff.Remove),
		"panel_updated": len(diff.Update),
	})
	return iv, nil
}

// RecordFeedback 主面试官、小组成员或管理员提交反馈；完成时申请流转到 interviewed
func (s *InterviewCommandService) RecordFeedback(ctx context.Context, cmd FeedbackCommand) (*domain.Interview, error) {
	actor, err := requireIdentity(ctx, roleAdmin, roleEmployer, roleHR)
	if err != nil {
		return nil, err
	}
	status := domain.InterviewCompleted
	if strings.TrimSpace(cmd.Status) != "" {
		if status, err = domain.ParseInterviewStatus(cmd.Status); err != nil {
			return nil, err
		}
	}

	var (
		iv  *domain.Interview
		res *transitionResult
	)
	err = s.w.Interviews.WithTx(ctx, func(txCtx context.Context) error {
		cur, err := s.w.Interviews.GetByID(txCtx, cmd.InterviewID)
		if err != nil {
			return errorx.Internal("failed to load interview", err)
		}
		if cur == nil {
			return errorx.NotFound("interview not found")
		}
		if err := s.authorizeFeedback(txCtx, actor, cur); err != nil {
			return err
		}

		cur.Status = status
		cur.Feedback = strings.TrimSpace(cmd.Feedback)
		cur.UpdatedAt = s.w.now()
		if err := s.w.Interviews.Update(txCtx, cur); err != nil {
			return errorx.Internal("failed to update interview", err)
		}
		iv = cur

		if status != domain.InterviewCompleted {
			return nil
		}
		app, err := s.w.Applications.GetByID(txCtx, cur.ApplicationID)
		if err != nil {
			return errorx.Internal("failed to load application", err)
		}
		if app == nil || app.Status != domain.StatusInterviewScheduled {
			return nil
		}
		r, err := s.w.apply(txCtx, actor, transitionRequest{
			ApplicationID: app.ID,
			To:            domain.StatusInterviewed,
			Notes:         fmt.Sprintf("Interview %s completed", cur.InterviewCode),
		})
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.w.Metrics.RecordInterview("feedback")
	s.publish(ctx, domain.EventInterviewFeedback, iv, actor)
	s.w.record(ctx, "interview.feedback", "interview", iv.ID, map[string]any{"status": iv.Status})
	s.w.afterTransition(ctx, res, "", "")
	return iv, nil
}

// Delete 删除面试及其小组成员，申请状态保持不变
func (s *InterviewCommandService) Delete(ctx context.Context, interviewID uint) error {
	actor, err := requireIdentity(ctx, roleAdmin)
	if err != nil {
		return err
	}
	var iv *domain.Interview
	err = s.w.Interviews.WithTx(ctx, func(txCtx context.Context) error {
		cur, err := s.w.Interviews.GetByID(txCtx, interviewID)
		if err != nil {
			return errorx.Internal("failed to load interview", err)
		}
		if cur == nil {
			return errorx.NotFound("interview not found")
		}
		if err := s.w.Interviews.Delete(txCtx, cur.ID); err != nil {
			return errorx.Internal("failed to delete interview", err)
		}
		iv = cur
		return nil
	})
	if err != nil {
		return err
	}

	s.w.Metrics.RecordInterview("deleted")
	s.publish(ctx, domain.EventInterviewDeleted, iv, actor)
	s.w.record(ctx, "interview.delete", "interview", iv.ID, map[string]any{
		"application_id": iv.ApplicationID,
		"code":           iv.InterviewCode,
	})
	return nil
}

// validate 事务外校验：时间、类别、主面试官、小组成员
func (s *InterviewCommandService) validate(ctx context.Context, cmd ScheduleCommand, defaultStatus domain.InterviewStatus) (*validatedSchedule, error) {
	slot, err := domain.Slot{
		ScheduledDate:   cmd.ScheduledDate,
		StartTime:       cmd.StartTime,
		DurationMinutes: cmd.DurationMinutes,
	}.Normalize()
	if err != nil {
		return nil, err
	}

	out := &validatedSchedule{slot: slot, status: defaultStatus}
	if strings.TrimSpace(cmd.Status) != "" {
		if out.status, err = domain.ParseInterviewStatus(cmd.Status); err != nil {
			return nil, err
		}
	}

	if cmd.InterviewTypeID == 0 {
		return nil, errorx.Validation("interview type is required", map[string]string{"interview_type_id": "required"})
	}
	it, err := s.w.InterviewTypes.GetByID(ctx, cmd.InterviewTypeID)
	if err != nil {
		return nil, errorx.Internal("failed to load interview type", err)
	}
	if it == nil || !it.IsActive {
		return nil, errorx.Validation("invalid interview type", map[string]string{"interview_type_id": "unknown or inactive"})
	}

	members := make([]domain.PanelMember, 0, len(cmd.Panel))
	for _, p := range cmd.Panel {
		role, err := domain.ParsePanelRole(p.Role)
		if err != nil {
			return nil, err
		}
		members = append(members, domain.PanelMember{UserID: p.UserID, Role: role})
	}
	out.panel = domain.DedupPanel(members)

	ids := make([]uint, 0, len(out.panel)+1)
	ids = append(ids, cmd.PrimaryInterviewerID)
	for _, m := range out.panel {
		ids = append(ids, m.UserID)
	}
	people, err := s.w.Directory.GetPeople(ctx, ids)
	if err != nil {
		return nil, errorx.Internal("failed to load interviewers", err)
	}
	if p := people[cmd.PrimaryInterviewerID]; cmd.PrimaryInterviewerID == 0 || p == nil || !p.IsActive || !p.IsStaff() {
		return nil, errorx.Validation("invalid primary interviewer", map[string]string{
			"primary_interviewer_id": "must be an active admin, employer or hr user",
		})
	}
	for _, m := range out.panel {
		if p := people[m.UserID]; p == nil || !p.IsActive || !p.IsStaff() {
			return nil, errorx.Validation("invalid panel member", map[string]string{
				"panel": fmt.Sprintf("user %d is not an active staff member", m.UserID),
			})
		}
	}
	return out, nil
}

// nextInterviewCode 当年已有数量加一，若已被占用则顺延
func nextInterviewCode(ctx context.Context, repo domain.InterviewRepository, year int) (string, error) {
	n, err := repo.CountCodesWithPrefix(ctx, domain.InterviewCodePrefix(year))
	if err != nil {
		return "", errorx.Internal("failed to count interview codes", err)
	}
	for i := 1; i <= maxCodeAttempts; i++ {
		code := domain.FormatInterviewCode(year, int(n)+i)
		taken, err := repo.CodeExists(ctx, code)
		if err != nil {
			return "", errorx.Internal("failed to check interview code", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", errorx.Conflict("could not allocate an interview code")
}

func (s *InterviewCommandService) applyPanelDiff(ctx context.Context, interviewID uint, diff domain.PanelDiff) error {
	if len(diff.Remove) > 0 {
		if err := s.w.Interviews.RemovePanelMembers(ctx, interviewID, diff.Remove); err != nil {
			return errorx.Internal("failed to remove panel members", err)
		}
	}
	for _, m := range diff.Update {
		if err := s.w.Interviews.UpdatePanelRole(ctx, interviewID, m.UserID, m.Role); err != nil {
			return errorx.Internal("failed to update panel role", err)
		}
	}
	if len(diff.Add) > 0 {
		if err := s.w.Interviews.AddPanelMembers(ctx, interviewID, diff.Add); err != nil {
			return errorx.Internal("failed to add panel members", err)
		}
	}
	return nil
}

func (s *InterviewCommandService) authorizeFeedback(ctx context.Context, actor contextx.Identity, iv *domain.Interview) error {
	if actor.Role == roleAdmin || iv.PrimaryInterviewerID == actor.UserID {
		return nil
	}
	panel, err := s.w.Interviews.ListPanel(ctx, iv.ID)
	if err != nil {
		return errorx.Internal("failed to load panel", err)
	}
	for _, m := range panel {
		if m.UserID == actor.UserID {
			return nil
		}
	}
	return errorx.Forbidden("only the interviewers can record feedback")
}

func (s *InterviewCommandService) publish(ctx context.Context, eventType string, iv *domain.Interview, actor contextx.Identity) {
	s.w.publish(ctx, eventType, iv.InterviewCode, domain.InterviewEvent{
		InterviewID:   iv.ID,
		ApplicationID: iv.ApplicationID,
		InterviewCode: iv.InterviewCode,
		ScheduledDate: iv.ScheduledDate,
		StartTime:     iv.StartTime,
		Status:        iv.Status,
		ActorID:       actor.UserID,
		OccurredOn:    s.w.now(),
	})
	logger.Debug(ctx, "interview event", "type", eventType, "interview_id", iv.ID)
}

func scheduleNotice(number string, iv *domain.Interview) (string, string) {
	subject := fmt.Sprintf("Interview scheduled for application %s", number)
	var b strings.Builder
	fmt.Fprintf(&b, "Your interview %s is scheduled on %s at %s (%d minutes).", iv.InterviewCode, iv.ScheduledDate, iv.StartTime, iv.DurationMinutes)
	if iv.Venue != "" {
		fmt.Fprintf(&b, "\nVenue: %s", iv.Venue)
	}
	if iv.MeetingLink != "" {
		fmt.Fprintf(&b, "\nMeeting link: %s", iv.MeetingLink)
	}
	return subject, b.String()
}
