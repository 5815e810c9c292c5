package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/jobportal/internal/recruitment/domain"
	"github.com/wyfcoding/jobportal/pkg/db/dbtest"
	"gorm.io/gorm"
)

type repos struct {
	depts domain.DepartmentRepository
	jobs  domain.JobRepository
	apps  domain.ApplicationRepository
	ivs   domain.InterviewRepository
	types domain.InterviewTypeRepository
}

func setup(t *testing.T) (*gorm.DB, repos) {
	d := dbtest.Open(t, Models()...)
	return d.DB, repos{
		depts: NewDepartmentRepository(d.DB),
		jobs:  NewJobRepository(d.DB),
		apps:  NewApplicationRepository(d.DB),
		ivs:   NewInterviewRepository(d.DB),
		types: NewInterviewTypeRepository(d.DB),
	}
}

func seedJob(t *testing.T, r repos, code string) (*domain.Department, *domain.Job) {
	ctx := context.Background()
	dept := &domain.Department{Name: code + " dept", Code: code, IsActive: true}
	require.NoError(t, r.depts.Create(ctx, dept))
	job := &domain.Job{
		DepartmentID: dept.ID,
		Title:        code + " engineer",
		Status:       domain.JobOpen,
		SalaryMin:    decimal.NewNullDecimal(decimal.RequireFromString("1000.50")),
	}
	require.NoError(t, r.jobs.Create(ctx, job))
	return dept, job
}

func newApp(t *testing.T, r repos, number string, userID, jobID uint, status domain.ApplicationStatus) *domain.Application {
	app := domain.NewApplication(userID, jobID, "", false)
	app.ApplicationNumber = number
	app.Status = status
	require.NoError(t, r.apps.Create(context.Background(), app))
	return app
}

func TestDepartmentRepository(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()

	dept := &domain.Department{Name: "Engineering", Code: "ENG", IsActive: true}
	require.NoError(t, r.depts.Create(ctx, dept))
	assert.ErrorIs(t, r.depts.Create(ctx, &domain.Department{Name: "Other", Code: "ENG", IsActive: true}), domain.ErrDuplicate)

	dept.IsActive = false
	require.NoError(t, r.depts.Update(ctx, dept))
	active, err := r.depts.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	got, err := r.depts.GetByID(ctx, dept.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	missing, err := r.depts.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestJobRepositoryList(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()
	dept, job := seedJob(t, r, "ENG")

	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	expired := &domain.Job{DepartmentID: dept.ID, Title: "Old", Status: domain.JobOpen, Deadline: &past}
	require.NoError(t, r.jobs.Create(ctx, expired))
	closed := &domain.Job{DepartmentID: dept.ID, Title: "Closed", Status: domain.JobOpen}
	require.NoError(t, r.jobs.Create(ctx, closed))
	require.NoError(t, r.jobs.UpdateStatus(ctx, closed.ID, domain.JobClosed))

	now := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	open, total, err := r.jobs.List(ctx, domain.JobFilter{Status: domain.JobOpen, OpenOn: &now, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, open, 1)
	assert.Equal(t, job.ID, open[0].ID)
	assert.Equal(t, "ENG dept", open[0].DepartmentName)
	assert.True(t, open[0].SalaryMin.Decimal.Equal(decimal.RequireFromString("1000.5")))
	assert.False(t, open[0].SalaryMax.Valid)

	all, total, err := r.jobs.List(ctx, domain.JobFilter{DepartmentID: &dept.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)
}

func TestApplicationRepository(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()
	_, job := seedJob(t, r, "ENG")
	salesDept, salesJob := seedJob(t, r, "SAL")

	app := newApp(t, r, "APP-1", 7, job.ID, domain.StatusSubmitted)
	newApp(t, r, "APP-2", 8, salesJob.ID, domain.StatusDraft)

	dupNumber := domain.NewApplication(9, job.ID, "", false)
	dupNumber.ApplicationNumber = "APP-1"
	assert.ErrorIs(t, r.apps.Create(ctx, dupNumber), domain.ErrDuplicate)
	dupPair := domain.NewApplication(7, job.ID, "", false)
	dupPair.ApplicationNumber = "APP-3"
	assert.ErrorIs(t, r.apps.Create(ctx, dupPair), domain.ErrDuplicate)

	exists, err := r.apps.ExistsForUserJob(ctx, 7, job.ID)
	require.NoError(t, err)
	assert.True(t, exists)
	taken, err := r.apps.NumberExists(ctx, "APP-2")
	require.NoError(t, err)
	assert.True(t, taken)

	err = r.apps.WithTx(ctx, func(txCtx context.Context) error {
		locked, err := r.apps.GetForUpdate(txCtx, app.ID)
		require.NoError(t, err)
		require.NotNil(t, locked)
		if err := r.apps.UpdateStatus(txCtx, locked.ID, locked.Version, domain.StatusShortlisted, time.Now()); err != nil {
			return err
		}
		return r.apps.AppendHistory(txCtx, &domain.StatusHistory{
			ApplicationID: locked.ID,
			OldStatus:     locked.Status,
			NewStatus:     domain.StatusShortlisted,
			ChangedBy:     1,
			CreatedAt:     time.Now(),
		})
	})
	require.NoError(t, err)

	got, err := r.apps.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShortlisted, got.Status)
	assert.Equal(t, 2, got.Version)

	assert.ErrorIs(t, r.apps.UpdateStatus(ctx, app.ID, 1, domain.StatusHired, time.Now()), domain.ErrStaleVersion)

	hist, err := r.apps.History(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, domain.StatusSubmitted, hist[0].OldStatus)

	views, total, err := r.apps.List(ctx, domain.ApplicationFilter{DepartmentID: &salesDept.ID, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, views, 1)
	assert.Equal(t, "SAL engineer", views[0].JobTitle)
	assert.Equal(t, "SAL dept", views[0].DepartmentName)
	assert.Equal(t, salesDept.ID, views[0].DepartmentID)

	counts, err := r.apps.CountByStatus(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[domain.StatusShortlisted])
	assert.EqualValues(t, 1, counts[domain.StatusDraft])
}

func TestApplicationWithTxRollsBack(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()
	_, job := seedJob(t, r, "ENG")
	app := newApp(t, r, "APP-1", 7, job.ID, domain.StatusSubmitted)

	err := r.apps.WithTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, r.apps.UpdateStatus(txCtx, app.ID, 1, domain.StatusRejected, time.Now()))
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := r.apps.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, got.Status)
}

func TestInterviewRepository(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()
	dept, job := seedJob(t, r, "ENG")
	require.NoError(t, r.types.EnsureDefaults(ctx, domain.DefaultInterviewTypes))
	require.NoError(t, r.types.EnsureDefaults(ctx, []string{"ignored"}))
	types, err := r.types.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, types, len(domain.DefaultInterviewTypes))

	first := newApp(t, r, "APP-1", 7, job.ID, domain.StatusShortlisted)
	second := newApp(t, r, "APP-2", 8, job.ID, domain.StatusSubmitted)
	newApp(t, r, "APP-3", 9, job.ID, domain.StatusRejected)

	pending, err := r.apps.ListWithoutInterview(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	early := &domain.Interview{
		ApplicationID: first.ID, InterviewTypeID: types[0].ID, InterviewCode: "INT-2026-0001",
		ScheduledDate: "2026-03-18", StartTime: "09:00", DurationMinutes: 60,
		PrimaryInterviewerID: 1, Status: domain.InterviewScheduled,
	}
	late := &domain.Interview{
		ApplicationID: second.ID, InterviewTypeID: types[0].ID, InterviewCode: "INT-2026-0002",
		ScheduledDate: "2026-03-18", StartTime: "15:30", DurationMinutes: 30,
		PrimaryInterviewerID: 2, Status: domain.InterviewScheduled,
	}
	require.NoError(t, r.ivs.Create(ctx, early))
	require.NoError(t, r.ivs.Create(ctx, late))
	dup := *early
	dup.ID = 0
	dup.InterviewCode = "INT-2026-0009"
	assert.ErrorIs(t, r.ivs.Create(ctx, &dup), domain.ErrDuplicate, "one interview per application")

	pending, err = r.apps.ListWithoutInterview(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	n, err := r.ivs.CountCodesWithPrefix(ctx, "INT-2026-")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	exists, err := r.ivs.CodeExists(ctx, "INT-2026-0002")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, r.ivs.AddPanelMembers(ctx, early.ID, []domain.PanelMember{
		{UserID: 3, Role: domain.PanelChair},
		{UserID: 4, Role: domain.PanelMemberRole},
	}))
	assert.ErrorIs(t, r.ivs.AddPanelMembers(ctx, early.ID, []domain.PanelMember{{UserID: 3, Role: domain.PanelObserver}}), domain.ErrDuplicate)
	require.NoError(t, r.ivs.UpdatePanelRole(ctx, early.ID, 4, domain.PanelSecretary))
	require.NoError(t, r.ivs.RemovePanelMembers(ctx, early.ID, []uint{3}))
	panel, err := r.ivs.ListPanel(ctx, early.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.PanelMember{{InterviewID: early.ID, UserID: 4, Role: domain.PanelSecretary}}, panel)

	views, total, err := r.ivs.List(ctx, domain.InterviewFilter{DepartmentID: &dept.ID, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, views, 2)
	assert.Equal(t, late.ID, views[0].ID, "later start time first")
	assert.Equal(t, "APP-2", views[0].ApplicationNumber)
	assert.Equal(t, uint(8), views[0].ApplicantID)
	assert.Equal(t, types[0].Name, views[0].InterviewTypeName)
	assert.Equal(t, "ENG engineer", views[1].JobTitle)

	early.Status = domain.InterviewCompleted
	early.Feedback = "good"
	require.NoError(t, r.ivs.Update(ctx, early))
	counts, err := r.ivs.CountByStatus(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[domain.InterviewCompleted])
	assert.EqualValues(t, 1, counts[domain.InterviewScheduled])

	require.NoError(t, r.ivs.Delete(ctx, early.ID))
	gone, err := r.ivs.GetByID(ctx, early.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	panels, err := r.ivs.ListPanels(ctx, []uint{early.ID})
	require.NoError(t, err)
	assert.Empty(t, panels)

	byApp, err := r.ivs.GetByApplicationID(ctx, second.ID)
	require.NoError(t, err)
	require.NotNil(t, byApp)
	assert.Equal(t, "15:30", byApp.StartTime)
}
