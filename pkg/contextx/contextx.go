// Package contextx 提供请求级上下文工具：事务句柄、请求身份、追踪 ID
package contextx

import (
	"context"

	"gorm.io/gorm"
)

type ctxKey string

const (
	txKey        ctxKey = "gorm_tx"
	identityKey  ctxKey = "identity"
	requestIDKey ctxKey = "request_id"
	traceIDKey   ctxKey = "trace_id"
	spanIDKey    ctxKey = "span_id"
	clientIPKey  ctxKey = "client_ip"
)

// Identity 当前请求的认证身份
type Identity struct {
	UserID       uint   `json:"user_id"`
	Role         string `json:"role"`
	DepartmentID *uint  `json:"department_id,omitempty"`
	Email        string `json:"email"`
}

// HasRole 判断身份是否属于给定角色之一
func (i Identity) HasRole(roles ...string) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// InDepartment 判断身份是否归属指定部门
func (i Identity) InDepartment(departmentID uint) bool {
	return i.DepartmentID != nil && *i.DepartmentID == departmentID
}

// WithTx 将事务句柄写入 context
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// GetTx 从 context 中读取事务句柄，不存在时返回 nil
func GetTx(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return nil
	}
	tx, _ := ctx.Value(txKey).(*gorm.DB)
	return tx
}

// WithIdentity 将认证身份写入 context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity 从 context 中读取认证身份
func GetIdentity(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// WithTrace 写入 request/trace/span ID
func WithTrace(ctx context.Context, requestID, traceID, spanID string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	ctx = context.WithValue(ctx, traceIDKey, traceID)
	return context.WithValue(ctx, spanIDKey, spanID)
}

// RequestID 读取请求 ID
func RequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// TraceID 读取 trace ID
func TraceID(ctx context.Context) string {
	return stringValue(ctx, traceIDKey)
}

// SpanID 读取 span ID
func SpanID(ctx context.Context) string {
	return stringValue(ctx, spanIDKey)
}

// WithClientIP 写入客户端 IP
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP 读取客户端 IP
func ClientIP(ctx context.Context) string {
	return stringValue(ctx, clientIPKey)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
