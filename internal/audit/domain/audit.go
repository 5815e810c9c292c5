// Package domain 审计日志
package domain

import (
	"context"
	"time"
)

// AuditLog 一次写操作的审计记录
type AuditLog struct {
	ID         uint           `json:"id"`
	ActorID    *uint          `json:"actor_id,omitempty"`
	ActorRole  string         `json:"actor_role,omitempty"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   uint           `json:"entity_id"`
	Details    map[string]any `json:"details,omitempty"`
	IPAddress  string         `json:"ip_address,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Filter 查询条件，零值表示不过滤
type Filter struct {
	EntityType string
	EntityID   uint
	ActorID    uint
	Offset     int
	Limit      int
}

// Repository 审计仓储
type Repository interface {
	Create(ctx context.Context, log *AuditLog) error
	// List 按创建时间倒序
	List(ctx context.Context, f Filter) ([]*AuditLog, int64, error)
}
