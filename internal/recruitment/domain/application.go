package domain

import (
	"fmt"
	"time"

	"github.com/wyfcoding/jobportal/pkg/utils"
)

// MaxNumberAttempts 申请编号冲突时的最大生成次数
const MaxNumberAttempts = 5

// Application 求职申请
type Application struct {
	ID                uint              `json:"id"`
	ApplicationNumber string            `json:"application_number"`
	UserID            uint              `json:"user_id"`
	JobID             uint              `json:"job_id"`
	Status            ApplicationStatus `json:"status"`
	CoverLetter       string            `json:"cover_letter,omitempty"`
	Version           int               `json:"version"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// NewApplication 创建申请
func NewApplication(userID, jobID uint, coverLetter string, asDraft bool) *Application {
	status := StatusSubmitted
	if asDraft {
		status = StatusDraft
	}
	return &Application{
		UserID:      userID,
		JobID:       jobID,
		Status:      status,
		CoverLetter: coverLetter,
		Version:     1,
	}
}

// GenerateApplicationNumber 生成形如 APP-20260102-7KQ2ZD 的编号
func GenerateApplicationNumber(now time.Time) string {
	return fmt.Sprintf("APP-%s-%s", now.Format("20060102"), utils.RandUpperAlnum(6))
}

// StatusHistory 状态变更记录，只追加不修改
type StatusHistory struct {
	ID            uint              `json:"id"`
	ApplicationID uint              `json:"application_id"`
	OldStatus     ApplicationStatus `json:"old_status"`
	NewStatus     ApplicationStatus `json:"new_status"`
	ChangedBy     uint              `json:"changed_by"`
	Notes         string            `json:"notes,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// ApplicationView 列表展示用的申请，附带职位、部门与申请人信息
type ApplicationView struct {
	Application
	JobTitle       string `json:"job_title"`
	DepartmentID   uint   `json:"department_id"`
	DepartmentName string `json:"department_name"`
	ApplicantName  string `json:"applicant_name"`
	ApplicantEmail string `json:"applicant_email"`
}

// ApplicationFilter 申请查询条件
type ApplicationFilter struct {
	Status       ApplicationStatus
	JobID        uint
	DepartmentID *uint
	UserID       uint
	Offset       int
	Limit        int
}
