package domain

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/pkg/fsm"
)

// ApplicationStatus 申请状态，封闭枚举
type ApplicationStatus string

const (
	StatusDraft              ApplicationStatus = "draft"
	StatusSubmitted          ApplicationStatus = "submitted"
	StatusUnderReview        ApplicationStatus = "under_review"
	StatusShortlisted        ApplicationStatus = "shortlisted"
	StatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	StatusInterviewed        ApplicationStatus = "interviewed"
	StatusOffered            ApplicationStatus = "offered"
	StatusHired              ApplicationStatus = "hired"
	StatusRejected           ApplicationStatus = "rejected"
	StatusWithdrawn          ApplicationStatus = "withdrawn"
)

// ApplicationStatuses 全部申请状态，顺序即流程顺序
var ApplicationStatuses = []ApplicationStatus{
	StatusDraft,
	StatusSubmitted,
	StatusUnderReview,
	StatusShortlisted,
	StatusInterviewScheduled,
	StatusInterviewed,
	StatusOffered,
	StatusHired,
	StatusRejected,
	StatusWithdrawn,
}

// ErrInvalidStatus 状态不在枚举内
var ErrInvalidStatus = errorx.Validation("invalid status", map[string]string{"status": "invalid status"})

// ParseApplicationStatus 解析申请状态
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(strings.ToLower(strings.TrimSpace(s)))
	if st.IsValid() {
		return st, nil
	}
	return "", ErrInvalidStatus
}

// IsValid 是否为已知状态
func (s ApplicationStatus) IsValid() bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsClosed 终态：已录用、已拒绝、已撤回
func (s ApplicationStatus) IsClosed() bool {
	return s == StatusHired || s == StatusRejected || s == StatusWithdrawn
}

// Schedulable 可被安排面试的申请状态
func (s ApplicationStatus) Schedulable() bool {
	return s != StatusDraft && !s.IsClosed()
}

// Label 展示用名称，如 "Interview Scheduled"
func (s ApplicationStatus) Label() string {
	words := strings.Split(string(s), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func (s ApplicationStatus) String() string {
	return string(s)
}

// UnmarshalJSON 反序列化时校验；空串保留为零值，对应首条历史记录的 old_status
func (s *ApplicationStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*s = ""
		return nil
	}
	st, err := ParseApplicationStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// TransitionPolicy 状态流转策略
type TransitionPolicy interface {
	Check(ctx context.Context, from, to ApplicationStatus) error
}

// PermissivePolicy 任意状态之间均可流转
type PermissivePolicy struct{}

func (PermissivePolicy) Check(context.Context, ApplicationStatus, ApplicationStatus) error {
	return nil
}

var strictEdges = map[ApplicationStatus][]ApplicationStatus{
	StatusDraft:              {StatusSubmitted, StatusWithdrawn},
	StatusSubmitted:          {StatusUnderReview, StatusShortlisted, StatusInterviewScheduled, StatusRejected, StatusWithdrawn},
	StatusUnderReview:        {StatusShortlisted, StatusInterviewScheduled, StatusRejected, StatusWithdrawn},
	StatusShortlisted:        {StatusInterviewScheduled, StatusRejected, StatusWithdrawn},
	StatusInterviewScheduled: {StatusInterviewed, StatusRejected, StatusWithdrawn},
	StatusInterviewed:        {StatusOffered, StatusRejected, StatusWithdrawn},
	StatusOffered:            {StatusHired, StatusRejected, StatusWithdrawn},
}

// StrictPolicy 只允许沿招聘流程前进，终态不可再变
type StrictPolicy struct{}

func (StrictPolicy) Check(ctx context.Context, from, to ApplicationStatus) error {
	if err := NewApplicationMachine(from).Trigger(ctx, fsm.Event(to)); err != nil {
		return errorx.Validation("transition not allowed", map[string]string{
			"status": string(from) + " -> " + string(to),
		})
	}
	return nil
}

// NewApplicationMachine 以 current 为当前状态的申请状态机，事件名即目标状态
func NewApplicationMachine(current ApplicationStatus) *fsm.Machine {
	m := fsm.NewMachine(fsm.State(current))
	for from, targets := range strictEdges {
		for _, to := range targets {
			m.AddTransition(fsm.State(from), fsm.Event(to), fsm.State(to))
		}
	}
	return m
}

// NewTransitionPolicy 按配置选择策略
func NewTransitionPolicy(strict bool) TransitionPolicy {
	if strict {
		return StrictPolicy{}
	}
	return PermissivePolicy{}
}
