package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/jobportal/internal/auth/domain"
	"github.com/wyfcoding/jobportal/pkg/db"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"gorm.io/gorm"
)

type userRepository struct{ db *gorm.DB }

// NewUserRepository 创建用户仓储
func NewUserRepository(gdb *gorm.DB) domain.UserRepository {
	return &userRepository{db: gdb}
}

func (r *userRepository) WithTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return db.WithTx(ctx, r.db, fn)
}

func (r *userRepository) Save(ctx context.Context, user *domain.User) error {
	conn := db.Conn(ctx, r.db)
	model := toUserModel(user)
	if model.ID == 0 {
		if err := conn.Create(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errorx.Wrap(errorx.CodeConflict, "email already registered", err)
			}
			return err
		}
		user.ID = model.ID
		user.CreatedAt = model.CreatedAt
		user.UpdatedAt = model.UpdatedAt
		return nil
	}

	return conn.Model(&UserModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"email":         model.Email,
			"password_hash": model.PasswordHash,
			"first_name":    model.FirstName,
			"last_name":     model.LastName,
			"phone":         model.Phone,
			"role":          model.Role,
			"department_id": model.DepartmentID,
			"is_active":     model.IsActive,
		}).Error
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var model UserModel
	err := db.Conn(ctx, r.db).Where("email = ?", email).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toUser(&model), nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var model UserModel
	err := db.Conn(ctx, r.db).First(&model, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toUser(&model), nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []uint) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []UserModel
	if err := db.Conn(ctx, r.db).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.User, len(models))
	for i := range models {
		out[i] = toUser(&models[i])
	}
	return out, nil
}

func (r *userRepository) List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, int64, error) {
	q := db.Conn(ctx, r.db).Model(&UserModel{})
	if len(filter.Roles) > 0 {
		roles := make([]string, len(filter.Roles))
		for i, role := range filter.Roles {
			roles[i] = string(role)
		}
		q = q.Where("role IN ?", roles)
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Order("last_name ASC, first_name ASC, id ASC")
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}
	var models []UserModel
	if err := q.Find(&models).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*domain.User, len(models))
	for i := range models {
		out[i] = toUser(&models[i])
	}
	return out, total, nil
}
