package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/jobportal/internal/recruitment/domain"
	"github.com/wyfcoding/jobportal/pkg/contextx"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/logger"
	"github.com/wyfcoding/jobportal/pkg/metrics"
)

// Deps 招聘上下文依赖
type Deps struct {
	Departments    domain.DepartmentRepository
	Jobs           domain.JobRepository
	Applications   domain.ApplicationRepository
	Interviews     domain.InterviewRepository
	InterviewTypes domain.InterviewTypeRepository
	Directory      domain.UserDirectory
	Notifier       domain.Notifier
	Audit          domain.AuditRecorder
	Events         domain.EventPublisher
	Lookups        domain.LookupCache
	Policy         domain.TransitionPolicy
	Metrics        *metrics.Metrics
}

// workflow 状态流转与事务提交后的副作用，申请与面试服务共用
type workflow struct {
	Deps
	now       func() time.Time
	newNumber func(time.Time) string
}

func newWorkflow(deps Deps) *workflow {
	if deps.Policy == nil {
		deps.Policy = domain.PermissivePolicy{}
	}
	return &workflow{Deps: deps, now: time.Now, newNumber: domain.GenerateApplicationNumber}
}

type transitionRequest struct {
	ApplicationID uint
	To            domain.ApplicationStatus
	Notes         string
	// Authorize 在加锁读取后、写入前执行
	Authorize func(app *domain.Application, job *domain.Job) error
}

type transitionResult struct {
	App     *domain.Application
	Job     *domain.Job
	From    domain.ApplicationStatus
	To      domain.ApplicationStatus
	Notes   string
	ActorID uint
	At      time.Time
}

// apply 须在事务内调用：加锁读取、校验、按版本更新状态、追加一条历史
func (w *workflow) apply(ctx context.Context, actor contextx.Identity, req transitionRequest) (*transitionResult, error) {
	app, err := w.Applications.GetForUpdate(ctx, req.ApplicationID)
	if err != nil {
		return nil, errorx.Internal("failed to load application", err)
	}
	if app == nil {
		return nil, errorx.NotFound("not found")
	}
	if !req.To.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	job, err := w.Jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, errorx.Internal("failed to load job", err)
	}
	if job == nil {
		return nil, errorx.Internal("application references a missing job", fmt.Errorf("job %d", app.JobID))
	}
	if req.Authorize != nil {
		if err := req.Authorize(app, job); err != nil {
			return nil, err
		}
	}
	if err := w.Policy.Check(ctx, app.Status, req.To); err != nil {
		return nil, err
	}

	now := w.now()
	if err := w.Applications.UpdateStatus(ctx, app.ID, app.Version, req.To, now); err != nil {
		if errors.Is(err, domain.ErrStaleVersion) {
			return nil, errorx.Conflict("application was modified concurrently, reload and retry")
		}
		return nil, errorx.Internal("failed to update application status", err)
	}
	history := &domain.StatusHistory{
		ApplicationID: app.ID,
		OldStatus:     app.Status,
		NewStatus:     req.To,
		ChangedBy:     actor.UserID,
		Notes:         req.Notes,
		CreatedAt:     now,
	}
	if err := w.Applications.AppendHistory(ctx, history); err != nil {
		return nil, errorx.Internal("failed to write status history", err)
	}

	res := &transitionResult{
		App:     app,
		Job:     job,
		From:    app.Status,
		To:      req.To,
		Notes:   req.Notes,
		ActorID: actor.UserID,
		At:      now,
	}
	app.Status = req.To
	app.Version++
	app.UpdatedAt = now
	return res, nil
}

// afterTransition 事务提交后执行：指标、事件、审计、通知申请人。subject 为空时使用默认文案
func (w *workflow) afterTransition(ctx context.Context, res *transitionResult, subject, content string) {
	if res == nil {
		return
	}
	w.Metrics.RecordTransition(string(res.From), string(res.To))
	w.publish(ctx, domain.EventApplicationStatusChanged, res.App.ApplicationNumber, domain.ApplicationStatusChangedEvent{
		ApplicationID:     res.App.ID,
		ApplicationNumber: res.App.ApplicationNumber,
		UserID:            res.App.UserID,
		OldStatus:         res.From,
		NewStatus:         res.To,
		ChangedBy:         res.ActorID,
		Notes:             res.Notes,
		OccurredOn:        res.At,
	})
	w.record(ctx, "application.transition", "application", res.App.ID, map[string]any{
		"from":  res.From,
		"to":    res.To,
		"notes": res.Notes,
	})

	if subject == "" {
		subject = fmt.Sprintf("Application %s: %s", res.App.ApplicationNumber, res.To.Label())
		content = fmt.Sprintf("Your application %s for %q is now %s.", res.App.ApplicationNumber, res.Job.Title, res.To.Label())
		if res.Notes != "" {
			content += "\n\nNotes: " + res.Notes
		}
	}
	w.notifyApplicant(ctx, res.App.UserID, subject, content)
}

func (w *workflow) notifyApplicant(ctx context.Context, userID uint, subject, content string) {
	if w.Notifier == nil || w.Directory == nil {
		return
	}
	person, err := w.Directory.GetPerson(ctx, userID)
	if err != nil || person == nil {
		logger.Warn(ctx, "applicant not resolvable for notification", "user_id", userID, "error", err)
		return
	}
	if err := w.Notifier.Notify(ctx, domain.Notice{
		UserID:  userID,
		Email:   person.Email,
		Subject: subject,
		Content: content,
	}); err != nil {
		logger.Error(ctx, "failed to notify applicant", "user_id", userID, "error", err)
	}
}

func (w *workflow) publish(ctx context.Context, eventType, key string, payload any) {
	if w.Events == nil {
		return
	}
	if err := w.Events.Publish(ctx, eventType, key, payload); err != nil {
		logger.Error(ctx, "failed to publish event", "event_type", eventType, "key", key, "error", err)
	}
}

func (w *workflow) record(ctx context.Context, action, entityType string, entityID uint, details map[string]any) {
	if w.Audit == nil {
		return
	}
	w.Audit.Record(ctx, action, entityType, entityID, details)
}

// enrichApplicants 批量填充申请人姓名与邮箱
func (w *workflow) enrichApplicants(ctx context.Context, views []*domain.ApplicationView) error {
	if w.Directory == nil || len(views) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.UserID)
	}
	people, err := w.Directory.GetPeople(ctx, ids)
	if err != nil {
		return errorx.Internal("failed to load applicants", err)
	}
	for _, v := range views {
		if p, ok := people[v.UserID]; ok {
			v.ApplicantName = p.Name
			v.ApplicantEmail = p.Email
		}
	}
	return nil
}
