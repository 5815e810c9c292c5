package application

import (
	"context"

	"github.com/wyfcoding/jobportal/internal/recruitment/domain"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/logger"
	"github.com/wyfcoding/jobportal/pkg/utils"
)

const (
	lookupInterviewTypes = "recruitment:lookup:interview_types"
	lookupInterviewers   = "recruitment:lookup:interviewers"
)

// ScheduleFormData 排期表单所需数据
type ScheduleFormData struct {
	Applications         []*domain.ApplicationView `json:"applications"`
	InterviewTypes       []*domain.InterviewType   `json:"interview_types"`
	Interviewers         []*domain.Person          `json:"interviewers"`
	DefaultInterviewCode string                    `json:"default_interview_code"`
}

// InterviewListQuery 面试列表查询
type InterviewListQuery struct {
	Status string
	Page   *utils.Pagination
}

// InterviewQueryService 面试查询服务
type InterviewQueryService struct {
	w *workflow
}

// newInterviewQueryService 创建面试查询服务
func newInterviewQueryService(w *workflow) *InterviewQueryService {
	return &InterviewQueryService{w: w}
}

// List 按日期、时间倒序返回面试，附带申请人、面试官与小组成员姓名
func (s *InterviewQueryService) List(ctx context.Context, q InterviewListQuery) ([]*domain.InterviewView, error) {
	actor, err := requireIdentity(ctx, roleAdmin, roleEmployer, roleHR)
	if err != nil {
		return nil, err
	}
	scope, err := departmentScope(actor)
	if err != nil {
		return nil, err
	}
	filter := domain.InterviewFilter{DepartmentID: scope, Offset: q.Page.Offset(), Limit: q.Page.Limit()}
	if q.Status != "" {
		if filter.Status, err = domain.ParseInterviewStatus(q.Status); err != nil {
			return nil, err
		}
	}

	views, total, err := s.w.Interviews.List(ctx, filter)
	if err != nil {
		return nil, errorx.Internal("failed to list interviews", err)
	}
	q.Page.SetTotal(total)
	if len(views) == 0 {
		return views, nil
	}

	ids := make([]uint, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	panels, err := s.w.Interviews.ListPanels(ctx, ids)
	if err != nil {
		return nil, errorx.Internal("failed to load panels", err)
	}

	userIDs := make([]uint, 0, len(views)*2)
	for _, v := range views {
		userIDs = append(userIDs, v.ApplicantID, v.PrimaryInterviewerID)
		for _, m := range panels[v.ID] {
			userIDs = append(userIDs, m.UserID)
		}
	}
	people, err := s.w.Directory.GetPeople(ctx, userIDs)
	if err != nil {
		return nil, errorx.Internal("failed to load users", err)
	}
	for _, v := range views {
		if p, ok := people[v.ApplicantID]; ok {
			v.ApplicantName = p.Name
			v.ApplicantEmail = p.Email
		}
		if p, ok := people[v.PrimaryInterviewerID]; ok {
			v.InterviewerName = p.Name
		}
		panel := panels[v.ID]
		for i := range panel {
			if p, ok := people[panel[i].UserID]; ok {
				panel[i].Name = p.Name
			}
		}
		v.Panel = panel
	}
	return views, nil
}

// ScheduleFormData 待安排申请、可用类别、面试官与建议编号；类别与面试官走缓存
func (s *InterviewQueryService) ScheduleFormData(ctx context.Context) (*ScheduleFormData, error) {
	if _, err := requireIdentity(ctx, roleAdmin); err != nil {
		return nil, err
	}

	apps, err := s.w.Applications.ListWithoutInterview(ctx)
	if err != nil {
		return nil, errorx.Internal("failed to list applications", err)
	}
	if err := s.w.enrichApplicants(ctx, apps); err != nil {
		return nil, err
	}

	var types []*domain.InterviewType
	if !s.load(ctx, lookupInterviewTypes, &types) {
		if types, err = s.w.InterviewTypes.List(ctx, true); err != nil {
			return nil, errorx.Internal("failed to list interview types", err)
		}
		s.store(ctx, lookupInterviewTypes, types)
	}

	var interviewers []*domain.Person
	if !s.load(ctx, lookupInterviewers, &interviewers) {
		if interviewers, err = s.w.Directory.ListInterviewers(ctx); err != nil {
			return nil, errorx.Internal("failed to list interviewers", err)
		}
		s.store(ctx, lookupInterviewers, interviewers)
	}

	code, err := nextInterviewCode(ctx, s.w.Interviews, s.w.now().Year())
	if err != nil {
		return nil, err
	}

	if apps == nil {
		apps = []*domain.ApplicationView{}
	}
	if types == nil {
		types = []*domain.InterviewType{}
	}
	if interviewers == nil {
		interviewers = []*domain.Person{}
	}
	return &ScheduleFormData{
		Applications:         apps,
		InterviewTypes:       types,
		Interviewers:         interviewers,
		DefaultInterviewCode: code,
	}, nil
}

// StaffChanged 员工账号新增或启停后丢弃面试官缓存
func (s *InterviewQueryService) StaffChanged(ctx context.Context) {
	if s.w.Lookups == nil {
		return
	}
	s.w.Lookups.Invalidate(ctx, lookupInterviewers)
	logger.Debug(ctx, "lookup cache invalidated", "key", lookupInterviewers)
}

func (s *InterviewQueryService) load(ctx context.Context, key string, dest any) bool {
	if s.w.Lookups == nil {
		return false
	}
	if s.w.Lookups.Load(ctx, key, dest) {
		logger.Debug(ctx, "lookup cache hit", "key", key)
		return true
	}
	return false
}

func (s *InterviewQueryService) store(ctx context.Context, key string, v any) {
	if s.w.Lookups != nil {
		s.w.Lookups.Store(ctx, key, v)
	}
}
