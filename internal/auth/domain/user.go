package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/wyfcoding/jobportal/pkg/errorx"
)

// MinPasswordLength 密码最小长度
const MinPasswordLength = 8

// User 门户用户
type User struct {
	ID           uint      `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	DepartmentID *uint     `json:"department_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser 创建用户，邮箱统一小写
func NewUser(email, passwordHash, firstName, lastName, phone string, role Role, departmentID *uint) *User {
	return &User{
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Phone:        strings.TrimSpace(phone),
		Role:         role,
		DepartmentID: departmentID,
		IsActive:     true,
	}
}

// FullName 姓名
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// CanInterview 是否可作为面试官
func (u *User) CanInterview() bool {
	return u.IsActive && u.Role.IsStaff()
}

// NormalizeEmail 去空白并小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateRegistration 校验注册信息
func ValidateRegistration(email, password, firstName, lastName string) error {
	fields := map[string]string{}
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		fields["email"] = "invalid email address"
	}
	if len(password) < MinPasswordLength {
		fields["password"] = "must be at least 8 characters"
	}
	if strings.TrimSpace(firstName) == "" {
		fields["first_name"] = "required"
	}
	if strings.TrimSpace(lastName) == "" {
		fields["last_name"] = "required"
	}
	if len(fields) > 0 {
		return errorx.Validation("invalid registration", fields)
	}
	return nil
}
