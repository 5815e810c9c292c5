package domain

import (
	"context"
)

// Filter 通知列表过滤条件
type Filter struct {
	UserID     uint
	Channel    Channel
	UnreadOnly bool
	Offset     int
	Limit      int
}

// NotificationRepository 通知仓储
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	// UpdateStatus 更新发送结果
	UpdateStatus(ctx context.Context, n *Notification) error
	// GetByNotificationID 不存在时返回 nil, nil
	GetByNotificationID(ctx context.Context, notificationID string) (*Notification, error)
	List(ctx context.Context, f Filter) ([]*Notification, int64, error)
	// MarkRead 仅更新属于 userID 的通知，返回是否命中
	MarkRead(ctx context.Context, userID uint, notificationID string) (bool, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
}

// Sender 邮件发送器。smtp 与 log 返回 SENT，kafka 返回 QUEUED
type Sender interface {
	Send(ctx context.Context, msg EmailMessage) (Status, error)
}
