package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/jobportal/pkg/errorx"
)

// Department 部门，限定雇主与 HR 的可见范围
type Department struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// JobStatus 职位状态
type JobStatus string

const (
	JobOpen   JobStatus = "open"
	JobClosed JobStatus = "closed"
	JobDraft  JobStatus = "draft"
)

// ParseJobStatus 空值视为 open
func ParseJobStatus(s string) (JobStatus, error) {
	st := JobStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case "":
		return JobOpen, nil
	case JobOpen, JobClosed, JobDraft:
		return st, nil
	}
	return "", errorx.Validation("invalid job status", map[string]string{"status": s})
}

func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	st, err := ParseJobStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Job 职位
type Job struct {
	ID             uint                `json:"id"`
	DepartmentID   uint                `json:"department_id"`
	Title          string              `json:"title"`
	Description    string              `json:"description,omitempty"`
	Location       string              `json:"location,omitempty"`
	EmploymentType string              `json:"employment_type,omitempty"`
	SalaryMin      decimal.NullDecimal `json:"salary_min"`
	SalaryMax      decimal.NullDecimal `json:"salary_max"`
	Status         JobStatus           `json:"status"`
	Deadline       *time.Time          `json:"deadline,omitempty"`
	CreatedBy      uint                `json:"created_by"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// Validate 校验职位字段
func (j *Job) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(j.Title) == "" {
		fields["title"] = "required"
	}
	if j.DepartmentID == 0 {
		fields["department_id"] = "required"
	}
	if j.SalaryMin.Valid && j.SalaryMin.Decimal.IsNegative() {
		fields["salary_min"] = "must not be negative"
	}
	if j.SalaryMin.Valid && j.SalaryMax.Valid && j.SalaryMin.Decimal.GreaterThan(j.SalaryMax.Decimal) {
		fields["salary_max"] = "must be greater than or equal to salary_min"
	}
	if len(fields) > 0 {
		return errorx.Validation("invalid job", fields)
	}
	return nil
}

// AcceptingApplications 职位开放且未过截止日期（截止日当天仍可投递）
func (j *Job) AcceptingApplications(now time.Time) bool {
	if j.Status != JobOpen {
		return false
	}
	if j.Deadline == nil {
		return true
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	dy, dm, dd := j.Deadline.Date()
	deadline := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	return !today.After(deadline)
}

// JobView 职位列表项
type JobView struct {
	Job
	DepartmentName string `json:"department_name"`
}

// JobFilter 职位查询条件
type JobFilter struct {
	Status       JobStatus
	DepartmentID *uint
	OpenOn       *time.Time
	Offset       int
	Limit        int
}
