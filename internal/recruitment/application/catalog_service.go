package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/jobportal/internal/recruitment/domain"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/utils"
)

// DepartmentCommand 创建或更新部门
type DepartmentCommand struct {
	Name        string
	Code        string
	Description string
	IsActive    *bool
}

// JobCommand 发布职位
type JobCommand struct {
	DepartmentID   uint
	Title          string
	Description    string
	Location       string
	EmploymentType string
	SalaryMin      decimal.NullDecimal
	SalaryMax      decimal.NullDecimal
	Status         string
	Deadline       *time.Time
}

// JobListQuery 职位列表查询
type JobListQuery struct {
	Status string
	Page   *utils.Pagination
}

// CatalogService 部门与职位
type CatalogService struct {
	w *workflow
}

// newCatalogService 创建部门与职位服务
func newCatalogService(w *workflow) *CatalogService {
	return &CatalogService{w: w}
}

// CreateDepartment 管理员创建部门
func (s *CatalogService) CreateDepartment(ctx context.Context, cmd DepartmentCommand) (*domain.Department, error) {
	if _, err := requireIdentity(ctx, roleAdmin); err != nil {
		return nil, err
	}
	d := &domain.Department{IsActive: true}
	if err := applyDepartment(d, cmd); err != nil {
		return nil, err
	}
	if err := s.w.Departments.Create(ctx, d); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, errorx.Conflict("department code already exists")
		}
		return nil, errorx.Internal("failed to create department", err)
	}
	s.w.record(ctx, "department.create", "department", d.ID, map[string]any{"code": d.Code, "name": d.Name})
	return d, nil
}

// UpdateDepartment 管理员更新部门
func (s *CatalogService) UpdateDepartment(ctx context.Context, id uint, cmd DepartmentCommand) (*domain.Department, error) {
	if _, err := requireIdentity(ctx, roleAdmin); err != nil {
		return nil, err
	}
	d, err := s.w.Departments.GetByID(ctx, id)
	if err != nil {
		return nil, errorx.Internal("failed to load department", err)
	}
	if d == nil {
		return nil, errorx.NotFound("department not found")
	}
	if err := applyDepartment(d, cmd); err != nil {
		return nil, err
	}
	if err := s.w.Departments.Update(ctx, d); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, errorx.Conflict("department code already exists")
		}
		return nil, errorx.Internal("failed to update department", err)
	}
	s.w.record(ctx, "department.update", "department", d.ID, map[string]any{"code": d.Code, "is_active": d.IsActive})
	return d, nil
}

// ListDepartments 部门列表
func (s *CatalogService) ListDepartments(ctx context.Context, activeOnly bool) ([]*domain.Department, error) {
	list, err := s.w.Departments.List(ctx, activeOnly)
	if err != nil {
		return nil, errorx.Internal("failed to list departments", err)
	}
	return list, nil
}

// DepartmentExists 供员工账号创建时校验
func (s *CatalogService) DepartmentExists(ctx context.Context, id uint) (bool, error) {
	d, err := s.w.Departments.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return d != nil, nil
}

// CreateJob 管理员可为任意部门发布，雇主与 HR 仅限本部门
func (s *CatalogService) CreateJob(ctx context.Context, cmd JobCommand) (*domain.Job, error) {
	actor, err := requireIdentity(ctx, roleAdmin, roleEmployer, roleHR)
	if err != nil {
		return nil, err
	}
	if cmd.DepartmentID == 0 && actor.DepartmentID != nil && actor.Role != roleAdmin {
		cmd.DepartmentID = *actor.DepartmentID
	}
	status, err := domain.ParseJobStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	job := &domain.Job{
		DepartmentID:   cmd.DepartmentID,
		Title:          strings.TrimSpace(cmd.Title),
		Description:    strings.TrimSpace(cmd.Description),
		Location:       strings.TrimSpace(cmd.Location),
		EmploymentType: strings.TrimSpace(cmd.EmploymentType),
		SalaryMin:      cmd.SalaryMin,
		SalaryMax:      cmd.SalaryMax,
		Status:         status,
		Deadline:       cmd.Deadline,
		CreatedBy:      actor.UserID,
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if !canManage(actor, job.DepartmentID) {
		return nil, errorx.Forbidden("cannot post jobs for another department")
	}
	dept, err := s.w.Departments.GetByID(ctx, job.DepartmentID)
	if err != nil {
		return nil, errorx.Internal("failed to load department", err)
	}
	if dept == nil || !dept.IsActive {
		return nil, errorx.Validation("department not found", map[string]string{"department_id": "unknown or inactive"})
	}

	if err := s.w.Jobs.Create(ctx, job); err != nil {
		return nil, errorx.Internal("failed to create job", err)
	}
	s.w.record(ctx, "job.create", "job", job.ID, map[string]any{"title": job.Title, "department_id": job.DepartmentID})
	return job, nil
}

// SetJobStatus 开放、关闭职位或改为草稿
func (s *CatalogService) SetJobStatus(ctx context.Context, jobID uint, status string) (*domain.Job, error) {
	actor, err := requireIdentity(ctx, roleAdmin, roleEmployer, roleHR)
	if err != nil {
		return nil, err
	}
	st, err := domain.ParseJobStatus(status)
	if err != nil {
		return nil, err
	}
	job, err := s.w.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, errorx.Internal("failed to load job", err)
	}
	if job == nil {
		return nil, errorx.NotFound("job not found")
	}
	if !canManage(actor, job.DepartmentID) {
		return nil, errorx.Forbidden("job belongs to another department")
	}
	if err := s.w.Jobs.UpdateStatus(ctx, job.ID, st); err != nil {
		return nil, errorx.Internal("failed to update job", err)
	}
	s.w.record(ctx, "job.set_status", "job", job.ID, map[string]any{"from": job.Status, "to": st})
	job.Status = st
	return job, nil
}

// ListJobs 员工视角：管理员全部，雇主与 HR 本部门
func (s *CatalogService) ListJobs(ctx context.Context, q JobListQuery) ([]*domain.JobView, error) {
	actor, err := requireIdentity(ctx, roleAdmin, roleEmployer, roleHR)
	if err != nil {
		return nil, err
	}
	scope, err := departmentScope(actor)
	if err != nil {
		return nil, err
	}
	filter := domain.JobFilter{DepartmentID: scope, Offset: q.Page.Offset(), Limit: q.Page.Limit()}
	if q.Status != "" {
		if filter.Status, err = domain.ParseJobStatus(q.Status); err != nil {
			return nil, err
		}
	}
	return s.listJobs(ctx, filter, q.Page)
}

// ListOpenJobs 公开职位：开放且未过截止日期
func (s *CatalogService) ListOpenJobs(ctx context.Context, page *utils.Pagination) ([]*domain.JobView, error) {
	today := s.w.now()
	return s.listJobs(ctx, domain.JobFilter{
		Status: domain.JobOpen,
		OpenOn: &today,
		Offset: page.Offset(),
		Limit:  page.Limit(),
	}, page)
}

func (s *CatalogService) listJobs(ctx context.Context, filter domain.JobFilter, page *utils.Pagination) ([]*domain.JobView, error) {
	jobs, total, err := s.w.Jobs.List(ctx, filter)
	if err != nil {
		return nil, errorx.Internal("failed to list jobs", err)
	}
	page.SetTotal(total)
	return jobs, nil
}

func applyDepartment(d *domain.Department, cmd DepartmentCommand) error {
	fields := map[string]string{}
	name := strings.TrimSpace(cmd.Name)
	code := strings.ToUpper(strings.TrimSpace(cmd.Code))
	if name == "" {
		fields["name"] = "required"
	}
	if code == "" {
		fields["code"] = "required"
	}
	if len(fields) > 0 {
		return errorx.Validation("invalid department", fields)
	}
	d.Name = name
	d.Code = code
	d.Description = strings.TrimSpace(cmd.Description)
	if cmd.IsActive != nil {
		d.IsActive = *cmd.IsActive
	}
	return nil
}
