package application

import (
	"context"

	"github.com/wyfcoding/jobportal/internal/recruitment/domain"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/utils"
)

// ApplicationListQuery 申请列表查询
type ApplicationListQuery struct {
	Status string
	JobID  uint
	Page   *utils.Pagination
}

// ApplicationQueryService 申请查询服务
type ApplicationQueryService struct {
	w *workflow
}

// newApplicationQueryService 创建申请查询服务
func newApplicationQueryService(w *workflow) *ApplicationQueryService {
	return &ApplicationQueryService{w: w}
}

// List 按角色限定范围：管理员全部，雇主与 HR 本部门，申请人本人
func (s *ApplicationQueryService) List(ctx context.Context, q ApplicationListQuery) ([]*domain.ApplicationView, error) {
	actor, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	filter := domain.ApplicationFilter{JobID: q.JobID, Offset: q.Page.Offset(), Limit: q.Page.Limit()}
	if q.Status != "" {
		st, err := domain.ParseApplicationStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	if actor.Role == roleApplicant {
		filter.UserID = actor.UserID
	} else {
		scope, err := departmentScope(actor)
		if err != nil {
			return nil, err
		}
		filter.DepartmentID = scope
	}

	views, total, err := s.w.Applications.List(ctx, filter)
	if err != nil {
		return nil, errorx.Internal("failed to list applications", err)
	}
	q.Page.SetTotal(total)
	if err := s.w.enrichApplicants(ctx, views); err != nil {
		return nil, err
	}
	return views, nil
}

// History 申请的状态历史，按时间升序
func (s *ApplicationQueryService) History(ctx context.Context, applicationID uint) ([]*domain.StatusHistory, error) {
	actor, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	app, err := s.w.Applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, errorx.Internal("failed to load application", err)
	}
	if app == nil {
		return nil, errorx.NotFound("not found")
	}
	if actor.Role == roleApplicant {
		if err := requireOwner(actor, app); err != nil {
			return nil, err
		}
	} else {
		job, err := s.w.Jobs.GetByID(ctx, app.JobID)
		if err != nil {
			return nil, errorx.Internal("failed to load job", err)
		}
		if job == nil || !canManage(actor, job.DepartmentID) {
			return nil, errorx.Forbidden("application belongs to another department")
		}
	}

	rows, err := s.w.Applications.History(ctx, applicationID)
	if err != nil {
		return nil, errorx.Internal("failed to load history", err)
	}
	return rows, nil
}
