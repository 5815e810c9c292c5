package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/jobportal/internal/auth/domain"
	"github.com/wyfcoding/jobportal/pkg/contextx"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/ratelimit"
	"github.com/wyfcoding/jobportal/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

type memUsers struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[uint]*domain.User{}}
}

func (m *memUsers) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (m *memUsers) Save(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == 0 {
		m.nextID++
		u.ID = m.nextID
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByID(_ context.Context, id uint) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUsers) GetByIDs(ctx context.Context, ids []uint) ([]*domain.User, error) {
	var out []*domain.User
	for _, id := range ids {
		if u, _ := m.GetByID(ctx, id); u != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) List(_ context.Context, f domain.UserFilter) ([]*domain.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.User
	for id := uint(1); id <= m.nextID; id++ {
		u, ok := m.byID[id]
		if !ok || (f.ActiveOnly && !u.IsActive) {
			continue
		}
		for _, r := range f.Roles {
			if u.Role == r {
				cp := *u
				out = append(out, &cp)
				break
			}
		}
	}
	return out, int64(len(out)), nil
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[string]*domain.Session{}}
}

func (m *memSessions) Save(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
	return nil
}

func (m *memSessions) Get(_ context.Context, token string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[token], nil
}

func (m *memSessions) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *memSessions) DeleteByUserID(_ context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, k)
		}
	}
	return nil
}

type recordedAudit struct {
	actions []string
}

func (r *recordedAudit) Record(_ context.Context, action, _ string, _ uint, _ map[string]any) {
	r.actions = append(r.actions, action)
}

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string, ratelimit.Limit) (*ratelimit.Result, error) {
	return &ratelimit.Result{Allowed: false, RetryAfter: 30 * time.Second}, nil
}

func (denyLimiter) Reset(context.Context, string) error { return nil }

type countingLimiter struct {
	allowed int
	resets  []string
}

func (l *countingLimiter) Allow(context.Context, string, ratelimit.Limit) (*ratelimit.Result, error) {
	l.allowed++
	return &ratelimit.Result{Allowed: true}, nil
}

func (l *countingLimiter) Reset(_ context.Context, key string) error {
	l.resets = append(l.resets, key)
	return nil
}

type fixedDepartments map[uint]bool

func (f fixedDepartments) DepartmentExists(_ context.Context, id uint) (bool, error) {
	return f[id], nil
}

type fixture struct {
	users    *memUsers
	sessions *memSessions
	audit    *recordedAudit
	cmd      *AuthCommandService
	query    *AuthQueryService
}

func newFixture(opts CommandOptions) *fixture {
	f := &fixture{users: newMemUsers(), sessions: newMemSessions(), audit: &recordedAudit{}}
	opts.HashCost = bcrypt.MinCost
	f.cmd = NewAuthCommandService(f.users, f.sessions, f.audit, opts)
	f.query = NewAuthQueryService(f.users, f.sessions)
	return f
}

func registerApplicant(t *testing.T, f *fixture, email string) *domain.User {
	t.Helper()
	u, err := f.cmd.Register(context.Background(), RegisterCommand{
		Email: email, Password: "s3cret-pass", FirstName: "Ada", LastName: "Lovelace",
	})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	f := newFixture(CommandOptions{})
	ctx := context.Background()

	u := registerApplicant(t, f, "  Ada@Example.com ")
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, domain.RoleApplicant, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)

	_, err := f.cmd.Register(ctx, RegisterCommand{Email: "ada@example.com", Password: "another-pass", FirstName: "A", LastName: "B"})
	assert.True(t, errorx.Is(err, errorx.CodeConflict))

	_, err = f.cmd.Register(ctx, RegisterCommand{Email: "not-an-email", Password: "short", FirstName: "A"})
	require.True(t, errorx.Is(err, errorx.CodeValidation))
	fields := errorx.Fields(err)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "last_name")
}

func TestLoginAndResolve(t *testing.T) {
	f := newFixture(CommandOptions{SessionTTL: time.Hour})
	ctx := context.Background()
	u := registerApplicant(t, f, "ada@example.com")

	res, err := f.cmd.Login(ctx, LoginCommand{Email: "ADA@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Len(t, res.Token, 64)

	id, err := f.query.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, "applicant", id.Role)

	require.NoError(t, f.cmd.Logout(ctx, res.Token))
	_, err = f.query.Resolve(ctx, res.Token)
	assert.True(t, errorx.Is(err, errorx.CodeUnauthorized))
}

func TestLoginRejectsWithoutEnumeration(t *testing.T) {
	f := newFixture(CommandOptions{})
	ctx := context.Background()
	u := registerApplicant(t, f, "ada@example.com")

	_, errUnknown := f.cmd.Login(ctx, LoginCommand{Email: "nobody@example.com", Password: "whatever1"})
	_, errWrong := f.cmd.Login(ctx, LoginCommand{Email: "ada@example.com", Password: "wrong-pass"})
	require.Error(t, errUnknown)
	require.Error(t, errWrong)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())

	stored, _ := f.users.GetByID(ctx, u.ID)
	stored.IsActive = false
	require.NoError(t, f.users.Save(ctx, stored))
	_, errInactive := f.cmd.Login(ctx, LoginCommand{Email: "ada@example.com", Password: "s3cret-pass"})
	assert.Equal(t, errUnknown.Error(), errInactive.Error())
}

func TestLoginRateLimited(t *testing.T) {
	f := newFixture(CommandOptions{Limiter: denyLimiter{}, LoginPerMinute: 5})
	registerApplicant(t, f, "ada@example.com")

	_, err := f.cmd.Login(context.Background(), LoginCommand{Email: "ada@example.com", Password: "s3cret-pass"})
	assert.True(t, errorx.Is(err, errorx.CodeRateLimited))
}

func TestLoginSuccessResetsLimiter(t *testing.T) {
	limiter := &countingLimiter{}
	f := newFixture(CommandOptions{Limiter: limiter, LoginPerMinute: 5})
	registerApplicant(t, f, "ada@example.com")
	ctx := context.Background()

	_, err := f.cmd.Login(ctx, LoginCommand{Email: "ada@example.com", Password: "wrong-pass"})
	require.Error(t, err)
	assert.Empty(t, limiter.resets, "failed login keeps its count")

	_, err = f.cmd.Login(ctx, LoginCommand{Email: " ADA@example.com ", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, 2, limiter.allowed)
	assert.Equal(t, []string{"ratelimit:login:ada@example.com"}, limiter.resets)
}

func TestResolveExpiredSession(t *testing.T) {
	f := newFixture(CommandOptions{SessionTTL: time.Minute})
	ctx := context.Background()
	registerApplicant(t, f, "ada@example.com")

	res, err := f.cmd.Login(ctx, LoginCommand{Email: "ada@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	f.query.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = f.query.Resolve(ctx, res.Token)
	assert.True(t, errorx.Is(err, errorx.CodeUnauthorized))
	s, _ := f.sessions.Get(ctx, res.Token)
	assert.Nil(t, s)
}

func TestCreateStaff(t *testing.T) {
	f := newFixture(CommandOptions{Departments: fixedDepartments{3: true}})
	ctx := context.Background()

	cases := []struct {
		name string
		cmd  CreateStaffCommand
		code errorx.Code
	}{
		{"applicant role rejected", CreateStaffCommand{Email: "a@x.io", Password: "password1", FirstName: "A", LastName: "B", Role: domain.RoleApplicant}, errorx.CodeValidation},
		{"employer needs department", CreateStaffCommand{Email: "b@x.io", Password: "password1", FirstName: "A", LastName: "B", Role: domain.RoleEmployer}, errorx.CodeValidation},
		{"unknown department", CreateStaffCommand{Email: "c@x.io", Password: "password1", FirstName: "A", LastName: "B", Role: domain.RoleHR, DepartmentID: utils.UintPtr(9)}, errorx.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.cmd.CreateStaff(ctx, tc.cmd)
			assert.True(t, errorx.Is(err, tc.code), "got %v", err)
		})
	}

	u, err := f.cmd.CreateStaff(ctx, CreateStaffCommand{
		Email: "hr@x.io", Password: "password1", FirstName: "Grace", LastName: "Hopper",
		Role: domain.RoleHR, DepartmentID: utils.UintPtr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleHR, u.Role)
	assert.Equal(t, []string{"staff.create"}, f.audit.actions)
}

func TestSetActiveRevokesSessions(t *testing.T) {
	f := newFixture(CommandOptions{})
	ctx := context.Background()
	u := registerApplicant(t, f, "ada@example.com")

	res, err := f.cmd.Login(ctx, LoginCommand{Email: "ada@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	adminCtx := contextx.WithIdentity(ctx, contextx.Identity{UserID: 999, Role: "admin"})
	updated, err := f.cmd.SetActive(adminCtx, u.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = f.query.Resolve(ctx, res.Token)
	assert.True(t, errorx.Is(err, errorx.CodeUnauthorized))

	_, err = f.cmd.SetActive(adminCtx, 12345, true)
	assert.True(t, errorx.Is(err, errorx.CodeNotFound))

	selfCtx := contextx.WithIdentity(ctx, contextx.Identity{UserID: u.ID, Role: "admin"})
	_, err = f.cmd.SetActive(selfCtx, u.ID, false)
	assert.True(t, errorx.Is(err, errorx.CodeValidation))
}

type staffChanges struct{ n int }

func (s *staffChanges) StaffChanged(context.Context) { s.n++ }

func TestStaffChangesNotifyObserver(t *testing.T) {
	obs := &staffChanges{}
	f := newFixture(CommandOptions{Departments: fixedDepartments{3: true}, Staff: obs})
	ctx := context.Background()
	adminCtx := contextx.WithIdentity(ctx, contextx.Identity{UserID: 999, Role: "admin"})

	applicant := registerApplicant(t, f, "ada@example.com")
	assert.Zero(t, obs.n, "applicants are never interviewers")

	_, err := f.cmd.CreateStaff(ctx, CreateStaffCommand{Email: "bad", Password: "password1", FirstName: "G", LastName: "H", Role: domain.RoleHR, DepartmentID: utils.UintPtr(3)})
	require.Error(t, err)
	assert.Zero(t, obs.n)

	hr, err := f.cmd.CreateStaff(ctx, CreateStaffCommand{
		Email: "hr@x.io", Password: "password1", FirstName: "Grace", LastName: "Hopper",
		Role: domain.RoleHR, DepartmentID: utils.UintPtr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, obs.n)

	_, err = f.cmd.SetActive(adminCtx, hr.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 2, obs.n)

	_, err = f.cmd.SetActive(adminCtx, applicant.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 2, obs.n)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	f := newFixture(CommandOptions{})
	ctx := context.Background()

	require.NoError(t, f.cmd.EnsureAdmin(ctx, "admin@portal.local", "admin-pass"))
	require.NoError(t, f.cmd.EnsureAdmin(ctx, "admin@portal.local", "admin-pass"))

	staff, err := f.query.ListStaff(ctx, domain.RoleAdmin, utils.NewPagination(1, 10))
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "admin@portal.local", staff[0].Email)

	interviewers, err := f.query.ListInterviewers(ctx)
	require.NoError(t, err)
	assert.Len(t, interviewers, 1)
}
