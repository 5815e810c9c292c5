package domain

import (
	"encoding/json"
	"strings"

	"github.com/wyfcoding/jobportal/pkg/errorx"
)

// Role 用户角色，封闭枚举
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleEmployer  Role = "employer"
	RoleHR        Role = "hr"
	RoleApplicant Role = "applicant"
)

var allRoles = []Role{RoleAdmin, RoleEmployer, RoleHR, RoleApplicant}

// ParseRole 解析角色字符串，未知值返回校验错误
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r.IsValid() {
		return r, nil
	}
	return "", errorx.Validation("invalid role", map[string]string{"role": s})
}

// IsValid 是否为已知角色
func (r Role) IsValid() bool {
	for _, v := range allRoles {
		if v == r {
			return true
		}
	}
	return false
}

// IsStaff 管理员、雇主、HR 统称为员工，可担任面试官
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleEmployer || r == RoleHR
}

// IsDepartmentScoped 雇主与 HR 只能访问所属部门数据
func (r Role) IsDepartmentScoped() bool {
	return r == RoleEmployer || r == RoleHR
}

func (r Role) String() string {
	return string(r)
}

// UnmarshalJSON 在反序列化时校验
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
