// Package adapter 把认证与通知上下文接入招聘上下文的端口
package adapter

import (
	"context"

	authdomain "github.com/wyfcoding/jobportal/internal/auth/domain"
	"github.com/wyfcoding/jobportal/internal/recruitment/domain"
	"github.com/wyfcoding/jobportal/pkg/errorx"
)

// UserSource 认证查询服务中被招聘上下文使用的部分
type UserSource interface {
	GetUser(ctx context.Context, userID uint) (*authdomain.User, error)
	GetUsers(ctx context.Context, ids []uint) (map[uint]*authdomain.User, error)
	ListInterviewers(ctx context.Context) ([]*authdomain.User, error)
}

type userDirectory struct {
	users UserSource
}

// NewUserDirectory 基于认证查询服务的用户目录
func NewUserDirectory(users UserSource) domain.UserDirectory {
	return &userDirectory{users: users}
}

func (d *userDirectory) GetPerson(ctx context.Context, id uint) (*domain.Person, error) {
	u, err := d.users.GetUser(ctx, id)
	if errorx.Is(err, errorx.CodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toPerson(u), nil
}

func (d *userDirectory) GetPeople(ctx context.Context, ids []uint) (map[uint]*domain.Person, error) {
	users, err := d.users.GetUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]*domain.Person, len(users))
	for id, u := range users {
		out[id] = toPerson(u)
	}
	return out, nil
}

func (d *userDirectory) ListInterviewers(ctx context.Context) ([]*domain.Person, error) {
	users, err := d.users.ListInterviewers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Person, 0, len(users))
	for _, u := range users {
		out = append(out, toPerson(u))
	}
	return out, nil
}

func toPerson(u *authdomain.User) *domain.Person {
	return &domain.Person{
		ID:           u.ID,
		Name:         u.FullName(),
		Email:        u.Email,
		Role:         string(u.Role),
		DepartmentID: u.DepartmentID,
		IsActive:     u.IsActive,
	}
}
