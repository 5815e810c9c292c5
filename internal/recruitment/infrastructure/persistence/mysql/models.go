package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/jobportal/internal/recruitment/domain"
)

// DepartmentModel departments 表映射
type DepartmentModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
	Name        string    `gorm:"column:name;type:varchar(100);not null"`
	Code        string    `gorm:"column:code;type:varchar(20);uniqueIndex;not null"`
	Description string    `gorm:"column:description;type:text"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
}

func (DepartmentModel) TableName() string { return "departments" }

// JobModel jobs 表映射
type JobModel struct {
	ID             uint                `gorm:"primaryKey;autoIncrement"`
	CreatedAt      time.Time           `gorm:"column:created_at"`
	UpdatedAt      time.Time           `gorm:"column:updated_at"`
	DepartmentID   uint                `gorm:"column:department_id;index;not null"`
	Title          string              `gorm:"column:title;type:varchar(200);not null"`
	Description    string              `gorm:"column:description;type:text"`
	Location       string              `gorm:"column:location;type:varchar(200)"`
	EmploymentType string              `gorm:"column:employment_type;type:varchar(50)"`
	SalaryMin      decimal.NullDecimal `gorm:"column:salary_min;type:decimal(12,2)"`
	SalaryMax      decimal.NullDecimal `gorm:"column:salary_max;type:decimal(12,2)"`
	Status         string              `gorm:"column:status;type:varchar(20);index;not null"`
	Deadline       *time.Time          `gorm:"column:deadline;type:date"`
	CreatedBy      uint                `gorm:"column:created_by"`
}

func (JobModel) TableName() string { return "jobs" }

// ApplicationModel centralized_applications 表映射
type ApplicationModel struct {
	ID                uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
	ApplicationNumber string    `gorm:"column:application_number;type:varchar(32);uniqueIndex;not null"`
	UserID            uint      `gorm:"column:user_id;uniqueIndex:uk_user_job;not null"`
	JobID             uint      `gorm:"column:job_id;uniqueIndex:uk_user_job;index;not null"`
	Status            string    `gorm:"column:status;type:varchar(32);index;not null"`
	CoverLetter       string    `gorm:"column:cover_letter;type:text"`
	Version           int       `gorm:"column:version;not null;default:1"`
}

func (ApplicationModel) TableName() string { return "centralized_applications" }

// StatusHistoryModel application_status_history 表映射，只追加
type StatusHistoryModel struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	ApplicationID uint      `gorm:"column:application_id;index;not null"`
	OldStatus     string    `gorm:"column:old_status;type:varchar(32)"`
	NewStatus     string    `gorm:"column:new_status;type:varchar(32);not null"`
	ChangedBy     uint      `gorm:"column:changed_by"`
	Notes         string    `gorm:"column:notes;type:text"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (StatusHistoryModel) TableName() string { return "application_status_history" }

// InterviewTypeModel interview_types 表映射
type InterviewTypeModel struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	Name     string `gorm:"column:name;type:varchar(100);uniqueIndex;not null"`
	IsActive bool   `gorm:"column:is_active;not null;default:true"`
}

func (InterviewTypeModel) TableName() string { return "interview_types" }

// InterviewModel interviews 表映射
type InterviewModel struct {
	ID                   uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt            time.Time `gorm:"column:created_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at"`
	ApplicationID        uint      `gorm:"column:application_id;uniqueIndex;not null"`
	InterviewTypeID      uint      `gorm:"column:interview_type_id;index"`
	InterviewCode        string    `gorm:"column:interview_code;type:varchar(32);uniqueIndex;not null"`
	ScheduledDate        string    `gorm:"column:scheduled_date;type:varchar(10);index:idx_interview_slot;not null"`
	StartTime            string    `gorm:"column:start_time;type:varchar(5);index:idx_interview_slot;not null"`
	DurationMinutes      int       `gorm:"column:duration_minutes;not null;default:60"`
	Venue                string    `gorm:"column:venue;type:varchar(255)"`
	MeetingLink          string    `gorm:"column:meeting_link;type:varchar(500)"`
	PrimaryInterviewerID uint      `gorm:"column:primary_interviewer_id;index;not null"`
	Status               string    `gorm:"column:status;type:varchar(20);index;not null"`
	Feedback             string    `gorm:"column:feedback;type:text"`
	CreatedBy            uint      `gorm:"column:created_by"`
}

func (InterviewModel) TableName() string { return "interviews" }

// PanelMemberModel interview_panel_members 表映射
type PanelMemberModel struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	InterviewID uint   `gorm:"column:interview_id;uniqueIndex:uk_panel_member;not null"`
	UserID      uint   `gorm:"column:user_id;uniqueIndex:uk_panel_member;index;not null"`
	Role        string `gorm:"column:role;type:varchar(20);not null"`
}

func (PanelMemberModel) TableName() string { return "interview_panel_members" }

// Models 迁移用的全部模型
func Models() []any {
	return []any{
		&DepartmentModel{},
		&JobModel{},
		&ApplicationModel{},
		&StatusHistoryModel{},
		&InterviewTypeModel{},
		&InterviewModel{},
		&PanelMemberModel{},
	}
}

func toDepartment(m *DepartmentModel) *domain.Department {
	return &domain.Department{
		ID:          m.ID,
		Name:        m.Name,
		Code:        m.Code,
		Description: m.Description,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toJobModel(j *domain.Job) *JobModel {
	return &JobModel{
		ID:             j.ID,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
		DepartmentID:   j.DepartmentID,
		Title:          j.Title,
		Description:    j.Description,
		Location:       j.Location,
		EmploymentType: j.EmploymentType,
		SalaryMin:      j.SalaryMin,
		SalaryMax:      j.SalaryMax,
		Status:         string(j.Status),
		Deadline:       j.Deadline,
		CreatedBy:      j.CreatedBy,
	}
}

func toJob(m *JobModel) *domain.Job {
	return &domain.Job{
		ID:             m.ID,
		DepartmentID:   m.DepartmentID,
		Title:          m.Title,
		Description:    m.Description,
		Location:       m.Location,
		EmploymentType: m.EmploymentType,
		SalaryMin:      m.SalaryMin,
		SalaryMax:      m.SalaryMax,
		Status:         domain.JobStatus(m.Status),
		Deadline:       m.Deadline,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toApplicationModel(a *domain.Application) *ApplicationModel {
	return &ApplicationModel{
		ID:                a.ID,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
		ApplicationNumber: a.ApplicationNumber,
		UserID:            a.UserID,
		JobID:             a.JobID,
		Status:            string(a.Status),
		CoverLetter:       a.CoverLetter,
		Version:           a.Version,
	}
}

func toApplication(m *ApplicationModel) *domain.Application {
	return &domain.Application{
		ID:                m.ID,
		ApplicationNumber: m.ApplicationNumber,
		UserID:            m.UserID,
		JobID:             m.JobID,
		Status:            domain.ApplicationStatus(m.Status),
		CoverLetter:       m.CoverLetter,
		Version:           m.Version,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toInterviewModel(iv *domain.Interview) *InterviewModel {
	return &InterviewModel{
		ID:                   iv.ID,
		CreatedAt:            iv.CreatedAt,
		UpdatedAt:            iv.UpdatedAt,
		ApplicationID:        iv.ApplicationID,
		InterviewTypeID:      iv.InterviewTypeID,
		InterviewCode:        iv.InterviewCode,
		ScheduledDate:        iv.ScheduledDate,
		StartTime:            iv.StartTime,
		DurationMinutes:      iv.DurationMinutes,
		Venue:                iv.Venue,
		MeetingLink:          iv.MeetingLink,
		PrimaryInterviewerID: iv.PrimaryInterviewerID,
		Status:               string(iv.Status),
		Feedback:             iv.Feedback,
		CreatedBy:            iv.CreatedBy,
	}
}

func toInterview(m *InterviewModel) *domain.Interview {
	return &domain.Interview{
		ID:                   m.ID,
		ApplicationID:        m.ApplicationID,
		InterviewTypeID:      m.InterviewTypeID,
		InterviewCode:        m.InterviewCode,
		ScheduledDate:        m.ScheduledDate,
		StartTime:            m.StartTime,
		DurationMinutes:      m.DurationMinutes,
		Venue:                m.Venue,
		MeetingLink:          m.MeetingLink,
		PrimaryInterviewerID: m.PrimaryInterviewerID,
		Status:               domain.InterviewStatus(m.Status),
		Feedback:             m.Feedback,
		CreatedBy:            m.CreatedBy,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}
