package domain

import (
	"context"
	"time"

	"github.com/wyfcoding/jobportal/pkg/contextx"
)

// Session 登录会话，存储于 Redis
type Session struct {
	Token        string    `json:"token"`
	UserID       uint      `json:"user_id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	DepartmentID *uint     `json:"department_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IsExpired 是否过期
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Identity 转换为请求身份
func (s *Session) Identity() contextx.Identity {
	return contextx.Identity{
		UserID:       s.UserID,
		Role:         string(s.Role),
		DepartmentID: s.DepartmentID,
		Email:        s.Email,
	}
}

// SessionRepository 会话仓储
type SessionRepository interface {
	Save(ctx context.Context, session *Session) error
	// Get 不存在时返回 nil, nil
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID uint) error
}
