package domain

import "time"

const (
	EventApplicationSubmitted     = "application.submitted"
	EventApplicationStatusChanged = "application.status_changed"
	EventInterviewScheduled       = "interview.scheduled"
	EventInterviewUpdated         = "interview.updated"
	EventInterviewDeleted         = "interview.deleted"
	EventInterviewFeedback        = "interview.feedback_recorded"
)

// ApplicationSubmittedEvent 申请提交事件
type ApplicationSubmittedEvent struct {
	ApplicationID     uint              `json:"application_id"`
	ApplicationNumber string            `json:"application_number"`
	UserID            uint              `json:"user_id"`
	JobID             uint              `json:"job_id"`
	Status            ApplicationStatus `json:"status"`
	OccurredOn        time.Time         `json:"occurred_on"`
}

// ApplicationStatusChangedEvent 申请状态变更事件
type ApplicationStatusChangedEvent struct {
	ApplicationID     uint              `json:"application_id"`
	ApplicationNumber string            `json:"application_number"`
	UserID            uint              `json:"user_id"`
	OldStatus         ApplicationStatus `json:"old_status"`
	NewStatus         ApplicationStatus `json:"new_status"`
	ChangedBy         uint              `json:"changed_by"`
	Notes             string            `json:"notes,omitempty"`
	OccurredOn        time.Time         `json:"occurred_on"`
}

// InterviewEvent 面试变更事件
type InterviewEvent struct {
	InterviewID   uint            `json:"interview_id"`
	ApplicationID uint            `json:"application_id"`
	InterviewCode string          `json:"interview_code"`
	ScheduledDate string          `json:"scheduled_date"`
	StartTime     string          `json:"start_time"`
	Status        InterviewStatus `json:"status"`
	ActorID       uint            `json:"actor_id"`
	OccurredOn    time.Time       `json:"occurred_on"`
}
