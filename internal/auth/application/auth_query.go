package application

import (
	"context"
	"time"

	"github.com/wyfcoding/jobportal/internal/auth/domain"
	"github.com/wyfcoding/jobportal/pkg/contextx"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/logger"
	"github.com/wyfcoding/jobportal/pkg/utils"
)

// AuthQueryService 认证查询服务
type AuthQueryService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	now      func() time.Time
}

// NewAuthQueryService 创建认证查询服务
func NewAuthQueryService(users domain.UserRepository, sessions domain.SessionRepository) *AuthQueryService {
	return &AuthQueryService{users: users, sessions: sessions, now: time.Now}
}

// Resolve 根据会话令牌解析请求身份
func (s *AuthQueryService) Resolve(ctx context.Context, token string) (contextx.Identity, error) {
	if token == "" {
		return contextx.Identity{}, errorx.Unauthorized("authentication required")
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return contextx.Identity{}, errorx.Internal("failed to load session", err)
	}
	if session == nil {
		return contextx.Identity{}, errorx.Unauthorized("session expired")
	}
	if session.IsExpired(s.now()) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			logger.Warn(ctx, "failed to delete expired session", "error", err)
		}
		return contextx.Identity{}, errorx.Unauthorized("session expired")
	}
	return session.Identity(), nil
}

// Me 当前用户资料
func (s *AuthQueryService) Me(ctx context.Context) (*domain.User, error) {
	id, ok := contextx.GetIdentity(ctx)
	if !ok {
		return nil, errorx.Unauthorized("authentication required")
	}
	return s.GetUser(ctx, id.UserID)
}

// GetUser 按 ID 查询用户
func (s *AuthQueryService) GetUser(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errorx.Internal("failed to load user", err)
	}
	if user == nil {
		return nil, errorx.NotFound("user not found")
	}
	return user, nil
}

// GetUsers 批量查询用户，结果按 ID 索引
func (s *AuthQueryService) GetUsers(ctx context.Context, ids []uint) (map[uint]*domain.User, error) {
	out := make(map[uint]*domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errorx.Internal("failed to load users", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// ListStaff 管理员查看员工账号，role 为空时返回全部员工角色
func (s *AuthQueryService) ListStaff(ctx context.Context, role domain.Role, page *utils.Pagination) ([]*domain.User, error) {
	roles := []domain.Role{domain.RoleAdmin, domain.RoleEmployer, domain.RoleHR}
	if role != "" {
		if !role.IsStaff() {
			return nil, errorx.Validation("invalid staff role", map[string]string{"role": string(role)})
		}
		roles = []domain.Role{role}
	}
	users, total, err := s.users.List(ctx, domain.UserFilter{Roles: roles, Offset: page.Offset(), Limit: page.Limit()})
	if err != nil {
		return nil, errorx.Internal("failed to list staff", err)
	}
	page.SetTotal(total)
	return users, nil
}

// ListInterviewers 可担任面试官的在职员工
func (s *AuthQueryService) ListInterviewers(ctx context.Context) ([]*domain.User, error) {
	users, _, err := s.users.List(ctx, domain.UserFilter{
		Roles:      []domain.Role{domain.RoleAdmin, domain.RoleEmployer, domain.RoleHR},
		ActiveOnly: true,
	})
	if err != nil {
		return nil, errorx.Internal("failed to list interviewers", err)
	}
	return users, nil
}
