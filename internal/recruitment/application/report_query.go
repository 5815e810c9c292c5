package application

import (
	"context"

	"github.com/wyfcoding/jobportal/internal/recruitment/domain"
	"github.com/wyfcoding/jobportal/pkg/errorx"
)

// ApplicationReport 按状态统计申请与面试
type ApplicationReport struct {
	DepartmentID      *uint                              `json:"department_id,omitempty"`
	Applications      map[domain.ApplicationStatus]int64 `json:"applications"`
	Interviews        map[domain.InterviewStatus]int64   `json:"interviews"`
	TotalApplications int64                              `json:"total_applications"`
	TotalInterviews   int64                              `json:"total_interviews"`
}

// ReportQueryService 报表查询
type ReportQueryService struct {
	w *workflow
}

// newReportQueryService 创建报表查询服务
func newReportQueryService(w *workflow) *ReportQueryService {
	return &ReportQueryService{w: w}
}

// ApplicationReport 管理员统计全部，雇主与 HR 统计本部门；所有状态键都会出现
func (s *ReportQueryService) ApplicationReport(ctx context.Context) (*ApplicationReport, error) {
	actor, err := requireIdentity(ctx, roleAdmin, roleEmployer, roleHR)
	if err != nil {
		return nil, err
	}
	scope, err := departmentScope(actor)
	if err != nil {
		return nil, err
	}

	appCounts, err := s.w.Applications.CountByStatus(ctx, scope)
	if err != nil {
		return nil, errorx.Internal("failed to count applications", err)
	}
	ivCounts, err := s.w.Interviews.CountByStatus(ctx, scope)
	if err != nil {
		return nil, errorx.Internal("failed to count interviews", err)
	}

	report := &ApplicationReport{
		DepartmentID: scope,
		Applications: make(map[domain.ApplicationStatus]int64, len(domain.ApplicationStatuses)),
		Interviews:   make(map[domain.InterviewStatus]int64, len(domain.InterviewStatuses)),
	}
	for _, st := range domain.ApplicationStatuses {
		n := appCounts[st]
		report.Applications[st] = n
		report.TotalApplications += n
	}
	for _, st := range domain.InterviewStatuses {
		n := ivCounts[st]
		report.Interviews[st] = n
		report.TotalInterviews += n
	}
	return report, nil
}
