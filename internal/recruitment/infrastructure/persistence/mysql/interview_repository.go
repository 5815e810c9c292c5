package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/jobportal/internal/recruitment/domain"
	"github.com/wyfcoding/jobportal/pkg/db"
	"gorm.io/gorm"
)

type interviewRepository struct{ db *gorm.DB }

// NewInterviewRepository 创建面试仓储
func NewInterviewRepository(gdb *gorm.DB) domain.InterviewRepository {
	return &interviewRepository{db: gdb}
}

func (r *interviewRepository) WithTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return db.WithTx(ctx, r.db, fn)
}

func (r *interviewRepository) Create(ctx context.Context, iv *domain.Interview) error {
	m := toInterviewModel(iv)
	if err := db.Conn(ctx, r.db).Create(m).Error; err != nil {
		return translate(err)
	}
	iv.ID = m.ID
	iv.CreatedAt = m.CreatedAt
	iv.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *interviewRepository) Update(ctx context.Context, iv *domain.Interview) error {
	err := db.Conn(ctx, r.db).Model(&InterviewModel{}).
		Where("id = ?", iv.ID).
		Updates(map[string]any{
			"interview_type_id":      iv.InterviewTypeID,
			"interview_code":         iv.InterviewCode,
			"scheduled_date":         iv.ScheduledDate,
			"start_time":             iv.StartTime,
			"duration_minutes":       iv.DurationMinutes,
			"venue":                  iv.Venue,
			"meeting_link":           iv.MeetingLink,
			"primary_interviewer_id": iv.PrimaryInterviewerID,
			"status":                 string(iv.Status),
			"feedback":               iv.Feedback,
			"updated_at":             iv.UpdatedAt,
		}).Error
	return translate(err)
}

func (r *interviewRepository) Delete(ctx context.Context, id uint) error {
	conn := db.Conn(ctx, r.db)
	if err := conn.Where("interview_id = ?", id).Delete(&PanelMemberModel{}).Error; err != nil {
		return err
	}
	return conn.Delete(&InterviewModel{}, id).Error
}

func (r *interviewRepository) GetByID(ctx context.Context, id uint) (*domain.Interview, error) {
	return r.first(db.Conn(ctx, r.db).Where("id = ?", id))
}

func (r *interviewRepository) GetByApplicationID(ctx context.Context, applicationID uint) (*domain.Interview, error) {
	return r.first(db.Conn(ctx, r.db).Where("application_id = ?", applicationID))
}

func (r *interviewRepository) first(q *gorm.DB) (*domain.Interview, error) {
	var m InterviewModel
	err := q.First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toInterview(&m), nil
}

func (r *interviewRepository) CountCodesWithPrefix(ctx context.Context, prefix string) (int64, error) {
	var n int64
	err := db.Conn(ctx, r.db).Model(&InterviewModel{}).
		Where("interview_code LIKE ?", prefix+"%").
		Count(&n).Error
	return n, err
}

func (r *interviewRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := db.Conn(ctx, r.db).Model(&InterviewModel{}).Where("interview_code = ?", code).Count(&n).Error
	return n > 0, err
}

func (r *interviewRepository) ListPanel(ctx context.Context, interviewID uint) ([]domain.PanelMember, error) {
	panels, err := r.ListPanels(ctx, []uint{interviewID})
	if err != nil {
		return nil, err
	}
	return panels[interviewID], nil
}

func (r *interviewRepository) ListPanels(ctx context.Context, interviewIDs []uint) (map[uint][]domain.PanelMember, error) {
	out := make(map[uint][]domain.PanelMember, len(interviewIDs))
	if len(interviewIDs) == 0 {
		return out, nil
	}
	var models []PanelMemberModel
	err := db.Conn(ctx, r.db).
		Where("interview_id IN ?", interviewIDs).
		Order("interview_id ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	for _, m := range models {
		out[m.InterviewID] = append(out[m.InterviewID], domain.PanelMember{
			InterviewID: m.InterviewID,
			UserID:      m.UserID,
			Role:        domain.PanelRole(m.Role),
		})
	}
	return out, nil
}

func (r *interviewRepository) AddPanelMembers(ctx context.Context, interviewID uint, members []domain.PanelMember) error {
	if len(members) == 0 {
		return nil
	}
	models := make([]PanelMemberModel, len(members))
	for i, m := range members {
		models[i] = PanelMemberModel{InterviewID: interviewID, UserID: m.UserID, Role: string(m.Role)}
	}
	return translate(db.Conn(ctx, r.db).Create(&models).Error)
}

func (r *interviewRepository) RemovePanelMembers(ctx context.Context, interviewID uint, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	return db.Conn(ctx, r.db).
		Where("interview_id = ? AND user_id IN ?", interviewID, userIDs).
		Delete(&PanelMemberModel{}).Error
}

func (r *interviewRepository) UpdatePanelRole(ctx context.Context, interviewID, userID uint, role domain.PanelRole) error {
	return db.Conn(ctx, r.db).Model(&PanelMemberModel{}).
		Where("interview_id = ? AND user_id = ?", interviewID, userID).
		Update("role", string(role)).Error
}

type interviewRow struct {
	InterviewModel
	ApplicationNumber string
	ApplicationStatus string
	ApplicantID       uint
	JobTitle          string
	InterviewTypeName string
}

func (r *interviewRepository) joined(ctx context.Context) *gorm.DB {
	return db.Conn(ctx, r.db).Table("interviews AS i").
		Joins("JOIN centralized_applications a ON a.id = i.application_id").
		Joins("JOIN jobs j ON j.id = a.job_id").
		Joins("LEFT JOIN interview_types t ON t.id = i.interview_type_id")
}

func (r *interviewRepository) List(ctx context.Context, filter domain.InterviewFilter) ([]*domain.InterviewView, int64, error) {
	q := r.joined(ctx)
	if filter.Status != "" {
		q = q.Where("i.status = ?", string(filter.Status))
	}
	if filter.DepartmentID != nil {
		q = q.Where("j.department_id = ?", *filter.DepartmentID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Select("i.*, a.application_number AS application_number, a.status AS application_status, " +
		"a.user_id AS applicant_id, j.title AS job_title, t.name AS interview_type_name").
		Order("i.scheduled_date DESC, i.start_time DESC, i.id DESC")
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}
	var rows []interviewRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*domain.InterviewView, len(rows))
	for i := range rows {
		out[i] = &domain.InterviewView{
			Interview:         *toInterview(&rows[i].InterviewModel),
			ApplicationNumber: rows[i].ApplicationNumber,
			ApplicationStatus: domain.ApplicationStatus(rows[i].ApplicationStatus),
			ApplicantID:       rows[i].ApplicantID,
			JobTitle:          rows[i].JobTitle,
			InterviewTypeName: rows[i].InterviewTypeName,
		}
	}
	return out, total, nil
}

func (r *interviewRepository) CountByStatus(ctx context.Context, departmentID *uint) (map[domain.InterviewStatus]int64, error) {
	q := r.joined(ctx)
	if departmentID != nil {
		q = q.Where("j.department_id = ?", *departmentID)
	}
	var rows []statusCount
	if err := q.Select("i.status AS status, COUNT(*) AS n").Group("i.status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[domain.InterviewStatus]int64, len(rows))
	for _, row := range rows {
		out[domain.InterviewStatus(row.Status)] = row.N
	}
	return out, nil
}

type interviewTypeRepository struct{ db *gorm.DB }

// NewInterviewTypeRepository 创建面试类别仓储
func NewInterviewTypeRepository(gdb *gorm.DB) domain.InterviewTypeRepository {
	return &interviewTypeRepository{db: gdb}
}

func (r *interviewTypeRepository) GetByID(ctx context.Context, id uint) (*domain.InterviewType, error) {
	var m InterviewTypeModel
	err := db.Conn(ctx, r.db).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.InterviewType{ID: m.ID, Name: m.Name, IsActive: m.IsActive}, nil
}

func (r *interviewTypeRepository) List(ctx context.Context, activeOnly bool) ([]*domain.InterviewType, error) {
	q := db.Conn(ctx, r.db).Model(&InterviewTypeModel{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var models []InterviewTypeModel
	if err := q.Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.InterviewType, len(models))
	for i, m := range models {
		out[i] = &domain.InterviewType{ID: m.ID, Name: m.Name, IsActive: m.IsActive}
	}
	return out, nil
}

func (r *interviewTypeRepository) EnsureDefaults(ctx context.Context, names []string) error {
	conn := db.Conn(ctx, r.db)
	var n int64
	if err := conn.Model(&InterviewTypeModel{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 || len(names) == 0 {
		return nil
	}
	models := make([]InterviewTypeModel, len(names))
	for i, name := range names {
		models[i] = InterviewTypeModel{Name: name, IsActive: true}
	}
	return conn.Create(&models).Error
}
