package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/wyfcoding/jobportal/pkg/errorx"
)

const (
	DefaultDurationMinutes = 60
	MinDurationMinutes     = 5
	MaxDurationMinutes     = 480

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// InterviewStatus 面试状态
type InterviewStatus string

const (
	InterviewScheduled   InterviewStatus = "scheduled"
	InterviewCompleted   InterviewStatus = "completed"
	InterviewCancelled   InterviewStatus = "cancelled"
	InterviewRescheduled InterviewStatus = "rescheduled"
)

// InterviewStatuses 全部面试状态
var InterviewStatuses = []InterviewStatus{InterviewScheduled, InterviewCompleted, InterviewCancelled, InterviewRescheduled}

// ParseInterviewStatus 解析面试状态
func ParseInterviewStatus(s string) (InterviewStatus, error) {
	st := InterviewStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range InterviewStatuses {
		if v == st {
			return st, nil
		}
	}
	return "", errorx.Validation("invalid interview status", map[string]string{"status": s})
}

func (s *InterviewStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	st, err := ParseInterviewStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// InterviewType 面试类别
type InterviewType struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// DefaultInterviewTypes 初始化时写入的面试类别
var DefaultInterviewTypes = []string{"Phone Screening", "Technical", "Panel", "HR", "Final"}

// Interview 面试，与申请一一对应
type Interview struct {
	ID                   uint            `json:"id"`
	ApplicationID        uint            `json:"application_id"`
	InterviewTypeID      uint            `json:"interview_type_id"`
	InterviewCode        string          `json:"interview_code"`
	ScheduledDate        string          `json:"scheduled_date"`
	StartTime            string          `json:"start_time"`
	DurationMinutes      int             `json:"duration_minutes"`
	Venue                string          `json:"venue,omitempty"`
	MeetingLink          string          `json:"meeting_link,omitempty"`
	PrimaryInterviewerID uint            `json:"primary_interviewer_id"`
	Status               InterviewStatus `json:"status"`
	Feedback             string          `json:"feedback,omitempty"`
	CreatedBy            uint            `json:"created_by"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// Slot 面试时间安排
type Slot struct {
	ScheduledDate   string
	StartTime       string
	DurationMinutes int
}

// Normalize 校验日期、时间与时长，时长为 0 时取默认值
func (s Slot) Normalize() (Slot, error) {
	fields := map[string]string{}
	s.ScheduledDate = strings.TrimSpace(s.ScheduledDate)
	s.StartTime = strings.TrimSpace(s.StartTime)
	if _, err := time.Parse(DateLayout, s.ScheduledDate); err != nil {
		fields["scheduled_date"] = "expected YYYY-MM-DD"
	}
	if t, err := time.Parse(TimeLayout, s.StartTime); err != nil {
		// 兼容 HH:MM:SS 输入
		if t2, err2 := time.Parse("15:04:05", s.StartTime); err2 == nil {
			s.StartTime = t2.Format(TimeLayout)
		} else {
			fields["start_time"] = "expected HH:MM"
		}
	} else {
		s.StartTime = t.Format(TimeLayout)
	}
	if s.DurationMinutes == 0 {
		s.DurationMinutes = DefaultDurationMinutes
	}
	if s.DurationMinutes < MinDurationMinutes || s.DurationMinutes > MaxDurationMinutes {
		fields["duration_minutes"] = fmt.Sprintf("must be between %d and %d", MinDurationMinutes, MaxDurationMinutes)
	}
	if len(fields) > 0 {
		return s, errorx.Validation("invalid interview schedule", fields)
	}
	return s, nil
}

// InterviewCodePrefix 某年的面试编号前缀
func InterviewCodePrefix(year int) string {
	return fmt.Sprintf("INT-%d-", year)
}

// FormatInterviewCode 生成形如 INT-2026-0007 的编号
func FormatInterviewCode(year, seq int) string {
	return fmt.Sprintf("%s%04d", InterviewCodePrefix(year), seq)
}

// InterviewView 列表展示用的面试
type InterviewView struct {
	Interview
	ApplicationNumber string            `json:"application_number"`
	ApplicationStatus ApplicationStatus `json:"application_status"`
	ApplicantID       uint              `json:"applicant_id"`
	ApplicantName     string            `json:"applicant_name"`
	ApplicantEmail    string            `json:"applicant_email"`
	JobTitle          string            `json:"job_title"`
	InterviewTypeName string            `json:"interview_type"`
	InterviewerName   string            `json:"interviewer_name"`
	Panel             []PanelMember     `json:"panel,omitempty"`
}

// InterviewFilter 面试查询条件
type InterviewFilter struct {
	Status       InterviewStatus
	DepartmentID *uint
	Offset       int
	Limit        int
}
