package domain

import "context"

// Person 其他上下文中的用户信息
type Person struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	DepartmentID *uint  `json:"department_id,omitempty"`
	IsActive     bool   `json:"is_active"`
}

// IsStaff 管理员、雇主、HR
func (p *Person) IsStaff() bool {
	return p.Role == "admin" || p.Role == "employer" || p.Role == "hr"
}

// UserDirectory 用户查询端口
type UserDirectory interface {
	// GetPerson 不存在时返回 nil, nil
	GetPerson(ctx context.Context, id uint) (*Person, error)
	GetPeople(ctx context.Context, ids []uint) (map[uint]*Person, error)
	ListInterviewers(ctx context.Context) ([]*Person, error)
}

// Notice 发给申请人的通知
type Notice struct {
	UserID  uint
	Email   string
	Subject string
	Content string
}

// Notifier 通知端口，失败只记录日志
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// AuditRecorder 审计记录端口
type AuditRecorder interface {
	Record(ctx context.Context, action, entityType string, entityID uint, details map[string]any)
}

// EventPublisher 领域事件发布端口
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, key string, payload any) error
}

// LookupCache 排期表单下拉数据缓存
type LookupCache interface {
	// Load 命中返回 true
	Load(ctx context.Context, key string, dest any) bool
	Store(ctx context.Context, key string, value any)
	Invalidate(ctx context.Context, keys ...string)
}
