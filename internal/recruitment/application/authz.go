package application

import (
	"context"

	"github.com/wyfcoding/jobportal/pkg/contextx"
	"github.com/wyfcoding/jobportal/pkg/errorx"
)

const (
	roleAdmin     = "admin"
	roleEmployer  = "employer"
	roleHR        = "hr"
	roleApplicant = "applicant"
)

func requireIdentity(ctx context.Context, roles ...string) (contextx.Identity, error) {
	id, ok := contextx.GetIdentity(ctx)
	if !ok {
		return contextx.Identity{}, errorx.Unauthorized("authentication required")
	}
	if len(roles) > 0 && !id.HasRole(roles...) {
		return contextx.Identity{}, errorx.Forbidden("insufficient role")
	}
	return id, nil
}

// canManage 管理员可管理全部；雇主与 HR 仅限本部门
func canManage(id contextx.Identity, departmentID uint) bool {
	if id.Role == roleAdmin {
		return true
	}
	return id.HasRole(roleEmployer, roleHR) && id.InDepartment(departmentID)
}

// departmentScope 管理员返回 nil 表示不限部门
func departmentScope(id contextx.Identity) (*uint, error) {
	switch id.Role {
	case roleAdmin:
		return nil, nil
	case roleEmployer, roleHR:
		if id.DepartmentID == nil {
			return nil, errorx.Forbidden("account is not assigned to a department")
		}
		dept := *id.DepartmentID
		return &dept, nil
	}
	return nil, errorx.Forbidden("insufficient role")
}
