// Package application 通知应用服务
package application

import (
	"context"
	"strings"
	"time"

	"github.com/wyfcoding/jobportal/internal/notification/domain"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/idgen"
	"github.com/wyfcoding/jobportal/pkg/logger"
	"github.com/wyfcoding/jobportal/pkg/metrics"
	"github.com/wyfcoding/jobportal/pkg/utils"
)

// NotifyCommand 给单个用户发通知
type NotifyCommand struct {
	UserID    uint
	Recipient string
	Subject   string
	Content   string
}

// NotificationService 通知服务
type NotificationService struct {
	repo    domain.NotificationRepository
	sender  domain.Sender
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

// NewNotificationService 创建通知服务，sender 为空时只写站内信
func NewNotificationService(repo domain.NotificationRepository, sender domain.Sender, m *metrics.Metrics) *NotificationService {
	return &NotificationService{
		repo:    repo,
		sender:  sender,
		metrics: m,
		now:     time.Now,
		newID:   idgen.GenString,
	}
}

// Notify 写入站内信，并通过邮件发送器发送。返回发送错误供调用方记录
func (s *NotificationService) Notify(ctx context.Context, cmd NotifyCommand) error {
	if cmd.UserID == 0 || strings.TrimSpace(cmd.Subject) == "" {
		return errorx.Validation("invalid notification", map[string]string{"user_id": "required", "subject": "required"})
	}
	now := s.now()

	inApp := &domain.Notification{
		NotificationID: s.newID(),
		UserID:         cmd.UserID,
		Channel:        domain.ChannelInApp,
		Subject:        cmd.Subject,
		Content:        cmd.Content,
		Status:         domain.StatusSent,
		SentAt:         &now,
	}
	if err := s.repo.Create(ctx, inApp); err != nil {
		s.metrics.RecordNotification(string(domain.ChannelInApp), "failed")
		return errorx.Internal("failed to store notification", err)
	}
	s.metrics.RecordNotification(string(domain.ChannelInApp), "sent")

	if s.sender == nil || cmd.Recipient == "" {
		return nil
	}

	email := &domain.Notification{
		NotificationID: s.newID(),
		UserID:         cmd.UserID,
		Channel:        domain.ChannelEmail,
		Subject:        cmd.Subject,
		Content:        cmd.Content,
		Recipient:      cmd.Recipient,
		Status:         domain.StatusPending,
	}
	if err := s.repo.Create(ctx, email); err != nil {
		s.metrics.RecordNotification(string(domain.ChannelEmail), "failed")
		return errorx.Internal("failed to store email notification", err)
	}

	status, sendErr := s.sender.Send(ctx, domain.EmailMessage{
		NotificationID: email.NotificationID,
		To:             email.Recipient,
		Subject:        email.Subject,
		Body:           email.Content,
	})
	switch {
	case sendErr != nil:
		email.MarkFailed(sendErr.Error())
	case status == domain.StatusQueued:
		email.MarkQueued()
	default:
		email.MarkSent(s.now())
	}
	if err := s.repo.UpdateStatus(ctx, email); err != nil {
		logger.Error(ctx, "failed to update email notification", "notification_id", email.NotificationID, "error", err)
	}
	s.metrics.RecordNotification(string(domain.ChannelEmail), strings.ToLower(string(email.Status)))

	if sendErr != nil {
		return errorx.Internal("failed to send email", sendErr)
	}
	return nil
}

// List 用户自己的站内信，最新在前
func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, page *utils.Pagination) ([]*domain.Notification, error) {
	items, total, err := s.repo.List(ctx, domain.Filter{
		UserID:     userID,
		Channel:    domain.ChannelInApp,
		UnreadOnly: unreadOnly,
		Offset:     page.Offset(),
		Limit:      page.Limit(),
	})
	if err != nil {
		return nil, errorx.Internal("failed to list notifications", err)
	}
	page.SetTotal(total)
	return items, nil
}

// MarkRead 标记已读，只能操作自己的通知
func (s *NotificationService) MarkRead(ctx context.Context, userID uint, notificationID string) error {
	ok, err := s.repo.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return errorx.Internal("failed to mark notification read", err)
	}
	if !ok {
		return errorx.NotFound("notification not found")
	}
	return nil
}

// UnreadCount 未读站内信数量
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, errorx.Internal("failed to count notifications", err)
	}
	return n, nil
}
