package application

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/jobportal/internal/auth/domain"
	"github.com/wyfcoding/jobportal/pkg/contextx"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/logger"
	"github.com/wyfcoding/jobportal/pkg/ratelimit"
	"github.com/wyfcoding/jobportal/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = errorx.Unauthorized("invalid credentials")

// RegisterCommand 申请人注册
type RegisterCommand struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// LoginCommand 登录
type LoginCommand struct {
	Email    string
	Password string
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// CreateStaffCommand 管理员创建员工账号
type CreateStaffCommand struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	Phone        string
	Role         domain.Role
	DepartmentID *uint
}

// DepartmentChecker 校验部门是否存在
type DepartmentChecker interface {
	DepartmentExists(ctx context.Context, id uint) (bool, error)
}

// StaffObserver 员工账号变更通知，用于刷新依赖员工名单的缓存
type StaffObserver interface {
	StaffChanged(ctx context.Context)
}

// CommandOptions 命令服务可选配置
type CommandOptions struct {
	SessionTTL     time.Duration
	LoginPerMinute int
	Limiter        ratelimit.RateLimiter
	Departments    DepartmentChecker
	Staff          StaffObserver
	HashCost       int
}

// AuthCommandService 认证命令服务
type AuthCommandService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	audit    domain.AuditRecorder
	opts     CommandOptions
	now      func() time.Time
}

// NewAuthCommandService 创建认证命令服务
func NewAuthCommandService(users domain.UserRepository, sessions domain.SessionRepository, audit domain.AuditRecorder, opts CommandOptions) *AuthCommandService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 2 * time.Hour
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	return &AuthCommandService{
		users:    users,
		sessions: sessions,
		audit:    audit,
		opts:     opts,
		now:      time.Now,
	}
}

// Register 注册申请人账号
func (s *AuthCommandService) Register(ctx context.Context, cmd RegisterCommand) (*domain.User, error) {
	if err := domain.ValidateRegistration(cmd.Email, cmd.Password, cmd.FirstName, cmd.LastName); err != nil {
		return nil, err
	}
	return s.createUser(ctx, cmd.Email, cmd.Password, cmd.FirstName, cmd.LastName, cmd.Phone, domain.RoleApplicant, nil)
}

// Login 校验凭证并创建会话。未知邮箱、密码错误、账号停用返回同一错误
func (s *AuthCommandService) Login(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	email := domain.NormalizeEmail(cmd.Email)
	if err := s.checkLoginRate(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, errorx.Internal("failed to load user", err)
	}
	if user == nil || !user.IsActive {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(cmd.Password)); err != nil {
		logger.Info(ctx, "login rejected", "user_id", user.ID)
		return nil, errInvalidCredentials
	}

	token, err := utils.RandToken(32)
	if err != nil {
		return nil, errorx.Internal("failed to generate session token", err)
	}
	now := s.now()
	session := &domain.Session{
		Token:        token,
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		DepartmentID: user.DepartmentID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.opts.SessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, errorx.Internal("failed to save session", err)
	}

	s.resetLoginRate(ctx, email)
	logger.Info(ctx, "user logged in", "user_id", user.ID, "role", user.Role)
	return &LoginResult{Token: token, ExpiresAt: session.ExpiresAt, User: user}, nil
}

// Logout 注销单个会话
func (s *AuthCommandService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return errorx.Internal("failed to delete session", err)
	}
	return nil
}

// LogoutAll 注销用户的全部会话
func (s *AuthCommandService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.sessions.DeleteByUserID(ctx, userID); err != nil {
		return errorx.Internal("failed to delete sessions", err)
	}
	return nil
}

// CreateStaff 创建管理员、雇主或 HR 账号
func (s *AuthCommandService) CreateStaff(ctx context.Context, cmd CreateStaffCommand) (*domain.User, error) {
	if err := domain.ValidateRegistration(cmd.Email, cmd.Password, cmd.FirstName, cmd.LastName); err != nil {
		return nil, err
	}
	if !cmd.Role.IsStaff() {
		return nil, errorx.Validation("invalid staff role", map[string]string{"role": string(cmd.Role)})
	}
	if cmd.Role.IsDepartmentScoped() && cmd.DepartmentID == nil {
		return nil, errorx.Validation("department is required", map[string]string{"department_id": "required for employer and hr"})
	}
	if cmd.DepartmentID != nil && s.opts.Departments != nil {
		ok, err := s.opts.Departments.DepartmentExists(ctx, *cmd.DepartmentID)
		if err != nil {
			return nil, errorx.Internal("failed to check department", err)
		}
		if !ok {
			return nil, errorx.Validation("department not found", map[string]string{"department_id": "not found"})
		}
	}

	user, err := s.createUser(ctx, cmd.Email, cmd.Password, cmd.FirstName, cmd.LastName, cmd.Phone, cmd.Role, cmd.DepartmentID)
	if err != nil {
		return nil, err
	}
	s.record(ctx, "staff.create", user.ID, map[string]any{"email": user.Email, "role": user.Role})
	s.staffChanged(ctx)
	return user, nil
}

// SetActive 启用或停用账号，停用时注销其全部会话
func (s *AuthCommandService) SetActive(ctx context.Context, userID uint, active bool) (*domain.User, error) {
	if id, ok := contextx.GetIdentity(ctx); ok && id.UserID == userID && !active {
		return nil, errorx.Validation("cannot deactivate your own account", nil)
	}

	var user *domain.User
	err := s.users.WithTx(ctx, func(txCtx context.Context) error {
		u, err := s.users.GetByID(txCtx, userID)
		if err != nil {
			return errorx.Internal("failed to load user", err)
		}
		if u == nil {
			return errorx.NotFound("user not found")
		}
		u.IsActive = active
		if err := s.users.Save(txCtx, u); err != nil {
			return errorx.Internal("failed to update user", err)
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !active {
		if err := s.sessions.DeleteByUserID(ctx, userID); err != nil {
			logger.Error(ctx, "failed to revoke sessions", "user_id", userID, "error", err)
		}
	}
	s.record(ctx, "staff.set_active", userID, map[string]any{"is_active": active})
	if user.Role.IsStaff() {
		s.staffChanged(ctx)
	}
	return user, nil
}

// EnsureAdmin 首次启动时创建管理员账号，已存在则跳过
func (s *AuthCommandService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	existing, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	user, err := s.createUser(ctx, email, password, "System", "Administrator", "", domain.RoleAdmin, nil)
	if err != nil {
		return err
	}
	logger.Info(ctx, "seeded admin account", "user_id", user.ID, "email", user.Email)
	return nil
}

func (s *AuthCommandService) createUser(ctx context.Context, email, password, first, last, phone string, role domain.Role, departmentID *uint) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.HashCost)
	if err != nil {
		return nil, errorx.Internal("failed to hash password", err)
	}
	user := domain.NewUser(email, string(hash), first, last, phone, role, departmentID)

	err = s.users.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.users.GetByEmail(txCtx, user.Email)
		if err != nil {
			return errorx.Internal("failed to check email", err)
		}
		if existing != nil {
			return errorx.Conflict("email already registered")
		}
		if err := s.users.Save(txCtx, user); err != nil {
			if errorx.Is(err, errorx.CodeConflict) {
				return err
			}
			return errorx.Internal("failed to save user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func loginRateKey(email string) string {
	return "ratelimit:login:" + email
}

func (s *AuthCommandService) checkLoginRate(ctx context.Context, email string) error {
	if s.opts.Limiter == nil || s.opts.LoginPerMinute <= 0 {
		return nil
	}
	res, err := s.opts.Limiter.Allow(ctx, loginRateKey(email), ratelimit.PerMinute(s.opts.LoginPerMinute))
	if err != nil {
		logger.Warn(ctx, "login limiter unavailable", "error", err)
		return nil
	}
	if !res.Allowed {
		return errorx.New(errorx.CodeRateLimited, fmt.Sprintf("too many login attempts, retry in %s", res.RetryAfter.Round(time.Second)))
	}
	return nil
}

// resetLoginRate 登录成功后清空该邮箱的失败计数
func (s *AuthCommandService) resetLoginRate(ctx context.Context, email string) {
	if s.opts.Limiter == nil || s.opts.LoginPerMinute <= 0 {
		return
	}
	if err := s.opts.Limiter.Reset(ctx, loginRateKey(email)); err != nil {
		logger.Warn(ctx, "failed to reset login limiter", "error", err)
	}
}

func (s *AuthCommandService) staffChanged(ctx context.Context) {
	if s.opts.Staff != nil {
		s.opts.Staff.StaffChanged(ctx)
	}
}

func (s *AuthCommandService) record(ctx context.Context, action string, userID uint, details map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, action, "user", userID, details)
}
