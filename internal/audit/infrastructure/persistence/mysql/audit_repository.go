// Package mysql 审计日志的 GORM 实现
package mysql

import (
	"context"
	"encoding/json"
	"time"

	"github.com/wyfcoding/jobportal/internal/audit/domain"
	"github.com/wyfcoding/jobportal/pkg/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLogModel audit_logs 表映射
type AuditLogModel struct {
	ID         uint           `gorm:"primaryKey;autoIncrement"`
	CreatedAt  time.Time      `gorm:"column:created_at;index"`
	ActorID    *uint          `gorm:"column:actor_id;index"`
	ActorRole  string         `gorm:"column:actor_role;type:varchar(20)"`
	Action     string         `gorm:"column:action;type:varchar(64);index;not null"`
	EntityType string         `gorm:"column:entity_type;type:varchar(50);index:idx_audit_entity;not null"`
	EntityID   uint           `gorm:"column:entity_id;index:idx_audit_entity"`
	Details    datatypes.JSON `gorm:"column:details"`
	IPAddress  string         `gorm:"column:ip_address;type:varchar(45)"`
	RequestID  string         `gorm:"column:request_id;type:varchar(64)"`
}

func (AuditLogModel) TableName() string {
	return "audit_logs"
}

type auditRepository struct{ db *gorm.DB }

// NewAuditRepository 创建审计仓储
func NewAuditRepository(gdb *gorm.DB) domain.Repository {
	return &auditRepository{db: gdb}
}

func (r *auditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	m := &AuditLogModel{
		CreatedAt:  log.CreatedAt,
		ActorID:    log.ActorID,
		ActorRole:  log.ActorRole,
		Action:     log.Action,
		EntityType: log.EntityType,
		EntityID:   log.EntityID,
		IPAddress:  log.IPAddress,
		RequestID:  log.RequestID,
	}
	if len(log.Details) > 0 {
		raw, err := json.Marshal(log.Details)
		if err != nil {
			return err
		}
		m.Details = datatypes.JSON(raw)
	}
	// 审计写入不参与业务事务
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	log.ID = m.ID
	log.CreatedAt = m.CreatedAt
	return nil
}

func (r *auditRepository) List(ctx context.Context, f domain.Filter) ([]*domain.AuditLog, int64, error) {
	q := db.Conn(ctx, r.db).Model(&AuditLogModel{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.ActorID != 0 {
		q = q.Where("actor_id = ?", f.ActorID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var ms []AuditLogModel
	if err := q.Order("created_at DESC").Order("id DESC").Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*domain.AuditLog, len(ms))
	for i, m := range ms {
		log := &domain.AuditLog{
			ID:         m.ID,
			ActorID:    m.ActorID,
			ActorRole:  m.ActorRole,
			Action:     m.Action,
			EntityType: m.EntityType,
			EntityID:   m.EntityID,
			IPAddress:  m.IPAddress,
			RequestID:  m.RequestID,
			CreatedAt:  m.CreatedAt,
		}
		if len(m.Details) > 0 {
			if err := json.Unmarshal(m.Details, &log.Details); err != nil {
				return nil, 0, err
			}
		}
		out[i] = log
	}
	return out, total, nil
}
