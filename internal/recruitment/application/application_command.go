package application

import (
	"context"
	"errors"
	"strings"

	"github.com/wyfcoding/jobportal/internal/recruitment/domain"
	"github.com/wyfcoding/jobportal/pkg/contextx"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/logger"
)

// SubmitCommand 申请人投递
type SubmitCommand struct {
	JobID       uint
	CoverLetter string
	AsDraft     bool
}

// TransitionCommand 员工变更申请状态
type TransitionCommand struct {
	ApplicationID uint
	Status        string
	Notes         string
}

// ApplicationCommandService 申请命令服务
type ApplicationCommandService struct {
	w *workflow
}

// newApplicationCommandService 创建申请命令服务
func newApplicationCommandService(w *workflow) *ApplicationCommandService {
	return &ApplicationCommandService{w: w}
}

// Submit 投递申请。每个用户对同一职位只能申请一次；编号冲突时重新生成
func (s *ApplicationCommandService) Submit(ctx context.Context, cmd SubmitCommand) (*domain.Application, error) {
	actor, err := requireIdentity(ctx, roleApplicant)
	if err != nil {
		return nil, err
	}

	job, err := s.w.Jobs.GetByID(ctx, cmd.JobID)
	if err != nil {
		return nil, errorx.Internal("failed to load job", err)
	}
	if job == nil {
		return nil, errorx.NotFound("job not found")
	}
	now := s.w.now()
	if !job.AcceptingApplications(now) {
		return nil, errorx.Validation("job is not accepting applications", map[string]string{"job_id": "closed"})
	}
	exists, err := s.w.Applications.ExistsForUserJob(ctx, actor.UserID, job.ID)
	if err != nil {
		return nil, errorx.Internal("failed to check existing application", err)
	}
	if exists {
		return nil, errorx.Conflict("you have already applied for this job")
	}

	app := domain.NewApplication(actor.UserID, job.ID, strings.TrimSpace(cmd.CoverLetter), cmd.AsDraft)
	created := false
	for attempt := 0; attempt < domain.MaxNumberAttempts && !created; attempt++ {
		app.ApplicationNumber = s.w.newNumber(now)
		taken, err := s.w.Applications.NumberExists(ctx, app.ApplicationNumber)
		if err != nil {
			return nil, errorx.Internal("failed to check application number", err)
		}
		if taken {
			logger.Warn(ctx, "application number collision", "number", app.ApplicationNumber, "attempt", attempt+1)
			continue
		}

		err = s.w.Applications.WithTx(ctx, func(txCtx context.Context) error {
			if err := s.w.Applications.Create(txCtx, app); err != nil {
				return err
			}
			if app.Status != domain.StatusSubmitted {
				return nil
			}
			return s.w.Applications.AppendHistory(txCtx, &domain.StatusHistory{
				ApplicationID: app.ID,
				NewStatus:     domain.StatusSubmitted,
				ChangedBy:     actor.UserID,
				Notes:         "Application submitted",
				CreatedAt:     now,
			})
		})
		switch {
		case err == nil:
			created = true
		case errors.Is(err, domain.ErrDuplicate):
			// 并发下可能是同一职位的重复投递
			dup, err := s.w.Applications.ExistsForUserJob(ctx, actor.UserID, job.ID)
			if err != nil {
				return nil, errorx.Internal("failed to check existing application", err)
			}
			if dup {
				return nil, errorx.Conflict("you have already applied for this job")
			}
			app.ID = 0
		default:
			return nil, errorx.Internal("failed to save application", err)
		}
	}
	if !created {
		return nil, errorx.Conflict("could not allocate a unique application number")
	}

	s.w.publish(ctx, domain.EventApplicationSubmitted, app.ApplicationNumber, domain.ApplicationSubmittedEvent{
		ApplicationID:     app.ID,
		ApplicationNumber: app.ApplicationNumber,
		UserID:            app.UserID,
		JobID:             app.JobID,
		Status:            app.Status,
		OccurredOn:        now,
	})
	s.w.record(ctx, "application.submit", "application", app.ID, map[string]any{
		"job_id": app.JobID,
		"number": app.ApplicationNumber,
		"status": app.Status,
	})
	return app, nil
}

// Transition 员工变更申请状态：管理员不限，雇主与 HR 仅限本部门职位
func (s *ApplicationCommandService) Transition(ctx context.Context, cmd TransitionCommand) (*domain.Application, error) {
	actor, err := requireIdentity(ctx, roleAdmin, roleEmployer, roleHR)
	if err != nil {
		return nil, err
	}
	req := transitionRequest{
		ApplicationID: cmd.ApplicationID,
		To:            domain.ApplicationStatus(strings.ToLower(strings.TrimSpace(cmd.Status))),
		Notes:         strings.TrimSpace(cmd.Notes),
		Authorize: func(_ *domain.Application, job *domain.Job) error {
			if !canManage(actor, job.DepartmentID) {
				return errorx.Forbidden("application belongs to another department")
			}
			return nil
		},
	}
	return s.run(ctx, actor, req)
}

// Withdraw 申请人撤回自己的申请
func (s *ApplicationCommandService) Withdraw(ctx context.Context, applicationID uint, reason string) (*domain.Application, error) {
	actor, err := requireIdentity(ctx, roleApplicant)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, actor, transitionRequest{
		ApplicationID: applicationID,
		To:            domain.StatusWithdrawn,
		Notes:         strings.TrimSpace(reason),
		Authorize: func(app *domain.Application, _ *domain.Job) error {
			if err := requireOwner(actor, app); err != nil {
				return err
			}
			if app.Status.IsClosed() {
				return errorx.Validation("application is already closed", map[string]string{"status": string(app.Status)})
			}
			return nil
		},
	})
}

// SubmitDraft 申请人提交草稿
func (s *ApplicationCommandService) SubmitDraft(ctx context.Context, applicationID uint) (*domain.Application, error) {
	actor, err := requireIdentity(ctx, roleApplicant)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, actor, transitionRequest{
		ApplicationID: applicationID,
		To:            domain.StatusSubmitted,
		Notes:         "Application submitted",
		Authorize: func(app *domain.Application, job *domain.Job) error {
			if err := requireOwner(actor, app); err != nil {
				return err
			}
			if app.Status != domain.StatusDraft {
				return errorx.Validation("only drafts can be submitted", map[string]string{"status": string(app.Status)})
			}
			if !job.AcceptingApplications(s.w.now()) {
				return errorx.Validation("job is not accepting applications", map[string]string{"job_id": "closed"})
			}
			return nil
		},
	})
}

func (s *ApplicationCommandService) run(ctx context.Context, actor contextx.Identity, req transitionRequest) (*domain.Application, error) {
	var res *transitionResult
	err := s.w.Applications.WithTx(ctx, func(txCtx context.Context) error {
		r, err := s.w.apply(txCtx, actor, req)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.w.afterTransition(ctx, res, "", "")
	return res.App, nil
}

func requireOwner(actor contextx.Identity, app *domain.Application) error {
	if app.UserID != actor.UserID {
		return errorx.Forbidden("application belongs to another user")
	}
	return nil
}
