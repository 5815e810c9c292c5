package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/jobportal/internal/recruitment/domain"
	"github.com/wyfcoding/jobportal/pkg/db"
	"gorm.io/gorm"
)

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicate
	}
	return err
}

type departmentRepository struct{ db *gorm.DB }

// NewDepartmentRepository 创建部门仓储
func NewDepartmentRepository(gdb *gorm.DB) domain.DepartmentRepository {
	return &departmentRepository{db: gdb}
}

func (r *departmentRepository) Create(ctx context.Context, d *domain.Department) error {
	m := &DepartmentModel{Name: d.Name, Code: d.Code, Description: d.Description, IsActive: d.IsActive}
	if err := db.Conn(ctx, r.db).Create(m).Error; err != nil {
		return translate(err)
	}
	d.ID = m.ID
	d.CreatedAt = m.CreatedAt
	d.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *departmentRepository) Update(ctx context.Context, d *domain.Department) error {
	err := db.Conn(ctx, r.db).Model(&DepartmentModel{}).
		Where("id = ?", d.ID).
		Updates(map[string]any{
			"name":        d.Name,
			"code":        d.Code,
			"description": d.Description,
			"is_active":   d.IsActive,
		}).Error
	return translate(err)
}

func (r *departmentRepository) GetByID(ctx context.Context, id uint) (*domain.Department, error) {
	var m DepartmentModel
	err := db.Conn(ctx, r.db).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDepartment(&m), nil
}

func (r *departmentRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Department, error) {
	q := db.Conn(ctx, r.db).Model(&DepartmentModel{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var models []DepartmentModel
	if err := q.Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Department, len(models))
	for i := range models {
		out[i] = toDepartment(&models[i])
	}
	return out, nil
}

type jobRepository struct{ db *gorm.DB }

// NewJobRepository 创建职位仓储
func NewJobRepository(gdb *gorm.DB) domain.JobRepository {
	return &jobRepository{db: gdb}
}

func (r *jobRepository) Create(ctx context.Context, j *domain.Job) error {
	m := toJobModel(j)
	if err := db.Conn(ctx, r.db).Create(m).Error; err != nil {
		return translate(err)
	}
	j.ID = m.ID
	j.CreatedAt = m.CreatedAt
	j.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *jobRepository) UpdateStatus(ctx context.Context, id uint, status domain.JobStatus) error {
	return db.Conn(ctx, r.db).Model(&JobModel{}).Where("id = ?", id).Update("status", string(status)).Error
}

func (r *jobRepository) GetByID(ctx context.Context, id uint) (*domain.Job, error) {
	var m JobModel
	err := db.Conn(ctx, r.db).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toJob(&m), nil
}

type jobRow struct {
	JobModel
	DepartmentName string
}

func (r *jobRepository) List(ctx context.Context, filter domain.JobFilter) ([]*domain.JobView, int64, error) {
	q := db.Conn(ctx, r.db).Table("jobs AS j").
		Joins("LEFT JOIN departments d ON d.id = j.department_id")
	if filter.Status != "" {
		q = q.Where("j.status = ?", string(filter.Status))
	}
	if filter.DepartmentID != nil {
		q = q.Where("j.department_id = ?", *filter.DepartmentID)
	}
	if filter.OpenOn != nil {
		day := filter.OpenOn.Format("2006-01-02")
		q = q.Where("(j.deadline IS NULL OR DATE(j.deadline) >= ?)", day)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Select("j.*, d.name AS department_name").Order("j.created_at DESC, j.id DESC")
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}
	var rows []jobRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*domain.JobView, len(rows))
	for i := range rows {
		out[i] = &domain.JobView{Job: *toJob(&rows[i].JobModel), DepartmentName: rows[i].DepartmentName}
	}
	return out, total, nil
}
