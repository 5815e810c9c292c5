package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDuplicate 唯一约束冲突
	ErrDuplicate = errors.New("duplicate key")
	// ErrStaleVersion 乐观锁版本不一致
	ErrStaleVersion = errors.New("stale version")
)

// Transactor 事务执行
type Transactor interface {
	WithTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// DepartmentRepository 部门仓储
type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) error
	Update(ctx context.Context, d *Department) error
	// GetByID 不存在时返回 nil, nil
	GetByID(ctx context.Context, id uint) (*Department, error)
	List(ctx context.Context, activeOnly bool) ([]*Department, error)
}

// JobRepository 职位仓储
type JobRepository interface {
	Create(ctx context.Context, j *Job) error
	UpdateStatus(ctx context.Context, id uint, status JobStatus) error
	// GetByID 不存在时返回 nil, nil
	GetByID(ctx context.Context, id uint) (*Job, error)
	List(ctx context.Context, filter JobFilter) ([]*JobView, int64, error)
}

// ApplicationRepository 申请仓储
type ApplicationRepository interface {
	Transactor

	// Create 编号或 (user, job) 冲突时返回 ErrDuplicate
	Create(ctx context.Context, app *Application) error
	// GetByID 不存在时返回 nil, nil
	GetByID(ctx context.Context, id uint) (*Application, error)
	// GetForUpdate 加行锁读取，须在事务内调用
	GetForUpdate(ctx context.Context, id uint) (*Application, error)
	// UpdateStatus 版本不一致时返回 ErrStaleVersion
	UpdateStatus(ctx context.Context, id uint, expectedVersion int, status ApplicationStatus, at time.Time) error
	AppendHistory(ctx context.Context, h *StatusHistory) error
	History(ctx context.Context, applicationID uint) ([]*StatusHistory, error)
	ExistsForUserJob(ctx context.Context, userID, jobID uint) (bool, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	List(ctx context.Context, filter ApplicationFilter) ([]*ApplicationView, int64, error)
	// ListWithoutInterview 尚未安排面试且处于可安排状态的申请
	ListWithoutInterview(ctx context.Context) ([]*ApplicationView, error)
	CountByStatus(ctx context.Context, departmentID *uint) (map[ApplicationStatus]int64, error)
}

// InterviewRepository 面试仓储
type InterviewRepository interface {
	Transactor

	// Create 同一申请已有面试时返回 ErrDuplicate
	Create(ctx context.Context, iv *Interview) error
	Update(ctx context.Context, iv *Interview) error
	Delete(ctx context.Context, id uint) error
	// GetByID 不存在时返回 nil, nil
	GetByID(ctx context.Context, id uint) (*Interview, error)
	GetByApplicationID(ctx context.Context, applicationID uint) (*Interview, error)
	CountCodesWithPrefix(ctx context.Context, prefix string) (int64, error)
	CodeExists(ctx context.Context, code string) (bool, error)

	ListPanel(ctx context.Context, interviewID uint) ([]PanelMember, error)
	ListPanels(ctx context.Context, interviewIDs []uint) (map[uint][]PanelMember, error)
	AddPanelMembers(ctx context.Context, interviewID uint, members []PanelMember) error
	RemovePanelMembers(ctx context.Context, interviewID uint, userIDs []uint) error
	UpdatePanelRole(ctx context.Context, interviewID, userID uint, role PanelRole) error

	List(ctx context.Context, filter InterviewFilter) ([]*InterviewView, int64, error)
	CountByStatus(ctx context.Context, departmentID *uint) (map[InterviewStatus]int64, error)
}

// InterviewTypeRepository 面试类别仓储
type InterviewTypeRepository interface {
	// GetByID 不存在时返回 nil, nil
	GetByID(ctx context.Context, id uint) (*InterviewType, error)
	List(ctx context.Context, activeOnly bool) ([]*InterviewType, error)
	// EnsureDefaults 表为空时写入默认类别
	EnsureDefaults(ctx context.Context, names []string) error
}
