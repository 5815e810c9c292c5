package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/jobportal/internal/recruitment/domain"
	"github.com/wyfcoding/jobportal/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type applicationRepository struct{ db *gorm.DB }

// NewApplicationRepository 创建申请仓储
func NewApplicationRepository(gdb *gorm.DB) domain.ApplicationRepository {
	return &applicationRepository{db: gdb}
}

func (r *applicationRepository) WithTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return db.WithTx(ctx, r.db, fn)
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	m := toApplicationModel(app)
	if err := db.Conn(ctx, r.db).Create(m).Error; err != nil {
		return translate(err)
	}
	app.ID = m.ID
	app.CreatedAt = m.CreatedAt
	app.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id uint) (*domain.Application, error) {
	return r.get(db.Conn(ctx, r.db), id)
}

func (r *applicationRepository) GetForUpdate(ctx context.Context, id uint) (*domain.Application, error) {
	return r.get(db.Conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *applicationRepository) get(conn *gorm.DB, id uint) (*domain.Application, error) {
	var m ApplicationModel
	err := conn.First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toApplication(&m), nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id uint, expectedVersion int, status domain.ApplicationStatus, at time.Time) error {
	res := db.Conn(ctx, r.db).Model(&ApplicationModel{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": at,
			"version":    gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStaleVersion
	}
	return nil
}

func (r *applicationRepository) AppendHistory(ctx context.Context, h *domain.StatusHistory) error {
	m := &StatusHistoryModel{
		ApplicationID: h.ApplicationID,
		OldStatus:     string(h.OldStatus),
		NewStatus:     string(h.NewStatus),
		ChangedBy:     h.ChangedBy,
		Notes:         h.Notes,
		CreatedAt:     h.CreatedAt,
	}
	if err := db.Conn(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	h.ID = m.ID
	return nil
}

func (r *applicationRepository) History(ctx context.Context, applicationID uint) ([]*domain.StatusHistory, error) {
	var models []StatusHistoryModel
	err := db.Conn(ctx, r.db).
		Where("application_id = ?", applicationID).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.StatusHistory, len(models))
	for i, m := range models {
		out[i] = &domain.StatusHistory{
			ID:            m.ID,
			ApplicationID: m.ApplicationID,
			OldStatus:     domain.ApplicationStatus(m.OldStatus),
			NewStatus:     domain.ApplicationStatus(m.NewStatus),
			ChangedBy:     m.ChangedBy,
			Notes:         m.Notes,
			CreatedAt:     m.CreatedAt,
		}
	}
	return out, nil
}

func (r *applicationRepository) ExistsForUserJob(ctx context.Context, userID, jobID uint) (bool, error) {
	var n int64
	err := db.Conn(ctx, r.db).Model(&ApplicationModel{}).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Count(&n).Error
	return n > 0, err
}

func (r *applicationRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var n int64
	err := db.Conn(ctx, r.db).Model(&ApplicationModel{}).
		Where("application_number = ?", number).
		Count(&n).Error
	return n > 0, err
}

type applicationRow struct {
	ApplicationModel
	JobTitle       string
	DepartmentID   uint
	DepartmentName string
}

func (row *applicationRow) view() *domain.ApplicationView {
	return &domain.ApplicationView{
		Application:    *toApplication(&row.ApplicationModel),
		JobTitle:       row.JobTitle,
		DepartmentID:   row.DepartmentID,
		DepartmentName: row.DepartmentName,
	}
}

func (r *applicationRepository) joined(ctx context.Context) *gorm.DB {
	return db.Conn(ctx, r.db).Table("centralized_applications AS a").
		Joins("JOIN jobs j ON j.id = a.job_id").
		Joins("LEFT JOIN departments d ON d.id = j.department_id")
}

const applicationColumns = "a.*, j.title AS job_title, j.department_id AS department_id, d.name AS department_name"

func (r *applicationRepository) List(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.ApplicationView, int64, error) {
	q := r.joined(ctx)
	if filter.Status != "" {
		q = q.Where("a.status = ?", string(filter.Status))
	}
	if filter.JobID != 0 {
		q = q.Where("a.job_id = ?", filter.JobID)
	}
	if filter.UserID != 0 {
		q = q.Where("a.user_id = ?", filter.UserID)
	}
	if filter.DepartmentID != nil {
		q = q.Where("j.department_id = ?", *filter.DepartmentID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Select(applicationColumns).Order("a.created_at DESC, a.id DESC")
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}
	var rows []applicationRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*domain.ApplicationView, len(rows))
	for i := range rows {
		out[i] = rows[i].view()
	}
	return out, total, nil
}

func (r *applicationRepository) ListWithoutInterview(ctx context.Context) ([]*domain.ApplicationView, error) {
	var rows []applicationRow
	err := r.joined(ctx).
		Joins("LEFT JOIN interviews i ON i.application_id = a.id").
		Where("i.id IS NULL").
		Where("a.status NOT IN ?", []string{
			string(domain.StatusDraft),
			string(domain.StatusWithdrawn),
			string(domain.StatusRejected),
			string(domain.StatusHired),
		}).
		Select(applicationColumns).
		Order("a.created_at DESC, a.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.ApplicationView, len(rows))
	for i := range rows {
		out[i] = rows[i].view()
	}
	return out, nil
}

type statusCount struct {
	Status string
	N      int64
}

func (r *applicationRepository) CountByStatus(ctx context.Context, departmentID *uint) (map[domain.ApplicationStatus]int64, error) {
	q := r.joined(ctx)
	if departmentID != nil {
		q = q.Where("j.department_id = ?", *departmentID)
	}
	var rows []statusCount
	if err := q.Select("a.status AS status, COUNT(*) AS n").Group("a.status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[domain.ApplicationStatus]int64, len(rows))
	for _, row := range rows {
		out[domain.ApplicationStatus(row.Status)] = row.N
	}
	return out, nil
}
