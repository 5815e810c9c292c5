// Package mysql 通知仓储的 GORM 实现
package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/jobportal/internal/notification/domain"
	"github.com/wyfcoding/jobportal/pkg/db"
	"gorm.io/gorm"
)

// NotificationModel notifications 表映射
type NotificationModel struct {
	ID             uint       `gorm:"primaryKey;autoIncrement"`
	CreatedAt      time.Time  `gorm:"column:created_at;index"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
	NotificationID string     `gorm:"column:notification_id;type:varchar(32);uniqueIndex;not null"`
	UserID         uint       `gorm:"column:user_id;index:idx_user_channel_read;not null"`
	Channel        string     `gorm:"column:channel;type:varchar(10);index:idx_user_channel_read;not null"`
	IsRead         bool       `gorm:"column:is_read;index:idx_user_channel_read;not null;default:false"`
	Subject        string     `gorm:"column:subject;type:varchar(255);not null"`
	Content        string     `gorm:"column:content;type:text"`
	Recipient      string     `gorm:"column:recipient;type:varchar(255)"`
	Status         string     `gorm:"column:status;type:varchar(10);index;not null"`
	ErrorMessage   string     `gorm:"column:error_message;type:text"`
	SentAt         *time.Time `gorm:"column:sent_at"`
}

// TableName 指定表名
func (NotificationModel) TableName() string {
	return "notifications"
}

type notificationRepository struct{ db *gorm.DB }

// NewNotificationRepository 创建通知仓储
func NewNotificationRepository(gdb *gorm.DB) domain.NotificationRepository {
	return &notificationRepository{db: gdb}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	m := toModel(n)
	if err := db.Conn(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	n.ID = m.ID
	n.CreatedAt = m.CreatedAt
	return nil
}

func (r *notificationRepository) UpdateStatus(ctx context.Context, n *domain.Notification) error {
	return db.Conn(ctx, r.db).Model(&NotificationModel{}).
		Where("id = ?", n.ID).
		Updates(map[string]any{
			"status":        string(n.Status),
			"error_message": n.ErrorMessage,
			"sent_at":       n.SentAt,
		}).Error
}

func (r *notificationRepository) GetByNotificationID(ctx context.Context, notificationID string) (*domain.Notification, error) {
	var m NotificationModel
	err := db.Conn(ctx, r.db).Where("notification_id = ?", notificationID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomain(&m), nil
}

func (r *notificationRepository) List(ctx context.Context, f domain.Filter) ([]*domain.Notification, int64, error) {
	q := db.Conn(ctx, r.db).Model(&NotificationModel{}).Where("user_id = ?", f.UserID)
	if f.Channel != "" {
		q = q.Where("channel = ?", string(f.Channel))
	}
	if f.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []NotificationModel
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Notification, len(ms))
	for i := range ms {
		out[i] = toDomain(&ms[i])
	}
	return out, total, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID uint, notificationID string) (bool, error) {
	conn := db.Conn(ctx, r.db)
	var count int64
	err := conn.Model(&NotificationModel{}).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Count(&count).Error
	if err != nil || count == 0 {
		return false, err
	}
	err = conn.Model(&NotificationModel{}).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error
	return err == nil, err
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := db.Conn(ctx, r.db).Model(&NotificationModel{}).
		Where("user_id = ? AND channel = ? AND is_read = ?", userID, string(domain.ChannelInApp), false).
		Count(&n).Error
	return n, err
}

func toModel(n *domain.Notification) *NotificationModel {
	return &NotificationModel{
		ID:             n.ID,
		CreatedAt:      n.CreatedAt,
		NotificationID: n.NotificationID,
		UserID:         n.UserID,
		Channel:        string(n.Channel),
		IsRead:         n.IsRead,
		Subject:        n.Subject,
		Content:        n.Content,
		Recipient:      n.Recipient,
		Status:         string(n.Status),
		ErrorMessage:   n.ErrorMessage,
		SentAt:         n.SentAt,
	}
}

func toDomain(m *NotificationModel) *domain.Notification {
	return &domain.Notification{
		ID:             m.ID,
		NotificationID: m.NotificationID,
		UserID:         m.UserID,
		Channel:        domain.Channel(m.Channel),
		Subject:        m.Subject,
		Content:        m.Content,
		Recipient:      m.Recipient,
		Status:         domain.Status(m.Status),
		ErrorMessage:   m.ErrorMessage,
		IsRead:         m.IsRead,
		SentAt:         m.SentAt,
		CreatedAt:      m.CreatedAt,
	}
}
