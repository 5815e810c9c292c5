// Package application 审计记录与查询
package application

import (
	"context"
	"time"

	"github.com/wyfcoding/jobportal/internal/audit/domain"
	"github.com/wyfcoding/jobportal/pkg/contextx"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/logger"
	"github.com/wyfcoding/jobportal/pkg/utils"
)

// Recorder 从请求 context 取操作人和来源 IP 写审计日志，失败只记录日志
type Recorder struct {
	repo domain.Repository
	now  func() time.Time
}

// NewRecorder 创建审计记录器
func NewRecorder(repo domain.Repository) *Recorder {
	return &Recorder{repo: repo, now: time.Now}
}

// Record 写入一条审计日志
func (r *Recorder) Record(ctx context.Context, action, entityType string, entityID uint, details map[string]any) {
	entry := &domain.AuditLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		IPAddress:  contextx.ClientIP(ctx),
		RequestID:  contextx.RequestID(ctx),
		CreatedAt:  r.now(),
	}
	if id, ok := contextx.GetIdentity(ctx); ok {
		actor := id.UserID
		entry.ActorID = &actor
		entry.ActorRole = id.Role
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		logger.Error(ctx, "failed to write audit log", "action", action, "entity_type", entityType, "entity_id", entityID, "error", err)
	}
}

// Query 管理员查询审计日志
type Query struct {
	repo domain.Repository
}

// NewQuery 创建审计查询服务
func NewQuery(repo domain.Repository) *Query {
	return &Query{repo: repo}
}

// List 审计日志分页，最新在前
func (q *Query) List(ctx context.Context, f domain.Filter, page *utils.Pagination) ([]*domain.AuditLog, error) {
	id, ok := contextx.GetIdentity(ctx)
	if !ok {
		return nil, errorx.Unauthorized("authentication required")
	}
	if !id.HasRole("admin") {
		return nil, errorx.Forbidden("admin only")
	}
	f.Offset, f.Limit = page.Offset(), page.Limit()
	logs, total, err := q.repo.List(ctx, f)
	if err != nil {
		return nil, errorx.Internal("failed to list audit logs", err)
	}
	page.SetTotal(total)
	return logs, nil
}
