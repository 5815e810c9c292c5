// Package domain 通知的领域模型
package domain

import (
	"strings"
	"time"

	"github.com/wyfcoding/jobportal/pkg/errorx"
)

// Channel 通知渠道
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelInApp Channel = "IN_APP"
)

// Status 通知状态
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
	// StatusQueued 已投递到邮件队列，等待 mailer 发送
	StatusQueued Status = "QUEUED"
)

// Notification 通知实体
type Notification struct {
	ID             uint       `json:"id"`
	NotificationID string     `json:"notification_id"`
	UserID         uint       `json:"user_id"`
	Channel        Channel    `json:"channel"`
	Subject        string     `json:"subject"`
	Content        string     `json:"content"`
	Recipient      string     `json:"recipient,omitempty"`
	Status         Status     `json:"status"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	IsRead         bool       `json:"is_read"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// MarkSent 标记已发送
func (n *Notification) MarkSent(at time.Time) {
	n.Status = StatusSent
	n.ErrorMessage = ""
	n.SentAt = &at
}

// MarkQueued 标记已入队
func (n *Notification) MarkQueued() {
	n.Status = StatusQueued
	n.ErrorMessage = ""
}

// MarkFailed 标记失败并保留错误原因
func (n *Notification) MarkFailed(reason string) {
	n.Status = StatusFailed
	if len(reason) > 1000 {
		reason = reason[:1000]
	}
	n.ErrorMessage = reason
}

// EmailMessage 邮件发送指令，也是邮件队列的消息体
type EmailMessage struct {
	NotificationID string `json:"notification_id"`
	To             string `json:"to"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}

// Validate 收件人与主题必填
func (m EmailMessage) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(m.To) == "" || !strings.Contains(m.To, "@") {
		fields["to"] = "invalid recipient"
	}
	if strings.TrimSpace(m.Subject) == "" {
		fields["subject"] = "required"
	}
	if len(fields) > 0 {
		return errorx.Validation("invalid email message", fields)
	}
	return nil
}
