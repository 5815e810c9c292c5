package mysql

import (
	"time"

	"github.com/wyfcoding/jobportal/internal/auth/domain"
)

// UserModel users 表映射
type UserModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
	Email        string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null"`
	FirstName    string    `gorm:"column:first_name;type:varchar(100);not null"`
	LastName     string    `gorm:"column:last_name;type:varchar(100);not null"`
	Phone        string    `gorm:"column:phone;type:varchar(30)"`
	Role         string    `gorm:"column:role;type:varchar(20);index;not null"`
	DepartmentID *uint     `gorm:"column:department_id;index"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
}

func (UserModel) TableName() string {
	return "users"
}

func toUserModel(user *domain.User) *UserModel {
	return &UserModel{
		ID:           user.ID,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Phone:        user.Phone,
		Role:         string(user.Role),
		DepartmentID: user.DepartmentID,
		IsActive:     user.IsActive,
	}
}

func toUser(model *UserModel) *domain.User {
	return &domain.User{
		ID:           model.ID,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		FirstName:    model.FirstName,
		LastName:     model.LastName,
		Phone:        model.Phone,
		Role:         domain.Role(model.Role),
		DepartmentID: model.DepartmentID,
		IsActive:     model.IsActive,
	}
}
