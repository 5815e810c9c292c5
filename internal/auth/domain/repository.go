package domain

import "context"

// UserFilter 用户查询条件
type UserFilter struct {
	Roles      []Role
	ActiveOnly bool
	Offset     int
	Limit      int
}

// UserRepository 用户仓储
type UserRepository interface {
	WithTx(ctx context.Context, fn func(txCtx context.Context) error) error

	Save(ctx context.Context, user *User) error
	// GetByEmail 不存在时返回 nil, nil
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByID 不存在时返回 nil, nil
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*User, error)
	List(ctx context.Context, filter UserFilter) ([]*User, int64, error)
}

// AuditRecorder 审计记录端口
type AuditRecorder interface {
	Record(ctx context.Context, action, entityType string, entityID uint, details map[string]any)
}
