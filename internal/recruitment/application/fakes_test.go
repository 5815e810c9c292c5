package application

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/wyfcoding/jobportal/internal/recruitment/domain"
	"github.com/wyfcoding/jobportal/pkg/contextx"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type store struct {
	departments  map[uint]*domain.Department
	jobs         map[uint]*domain.Job
	apps         map[uint]*domain.Application
	history      []*domain.StatusHistory
	interviews   map[uint]*domain.Interview
	panels       map[uint][]domain.PanelMember
	types        map[uint]*domain.InterviewType
	takenNumbers map[string]bool
	staleOnce    bool
	nextID       uint

	// existsFailAfter 次调用之后 ExistsForUserJob 返回错误，0 表示不失败
	existsFailAfter int
	existsCalls     int
}

func newStore() *store {
	return &store{
		departments:  map[uint]*domain.Department{},
		jobs:         map[uint]*domain.Job{},
		apps:         map[uint]*domain.Application{},
		interviews:   map[uint]*domain.Interview{},
		panels:       map[uint][]domain.PanelMember{},
		types:        map[uint]*domain.InterviewType{},
		takenNumbers: map[string]bool{},
	}
}

func (s *store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *store) WithTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

func (s *store) historyFor(appID uint) []*domain.StatusHistory {
	var out []*domain.StatusHistory
	for _, h := range s.history {
		if h.ApplicationID == appID {
			out = append(out, h)
		}
	}
	return out
}

// departments

type memDepartments struct{ *store }

func (r memDepartments) Create(_ context.Context, d *domain.Department) error {
	for _, existing := range r.departments {
		if existing.Code == d.Code {
			return domain.ErrDuplicate
		}
	}
	d.ID = r.id()
	cp := *d
	r.departments[d.ID] = &cp
	return nil
}

func (r memDepartments) Update(_ context.Context, d *domain.Department) error {
	cp := *d
	r.departments[d.ID] = &cp
	return nil
}

func (r memDepartments) GetByID(_ context.Context, id uint) (*domain.Department, error) {
	d, ok := r.departments[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r memDepartments) List(_ context.Context, activeOnly bool) ([]*domain.Department, error) {
	var out []*domain.Department
	for _, d := range r.departments {
		if activeOnly && !d.IsActive {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// jobs

type memJobs struct{ *store }

func (r memJobs) Create(_ context.Context, j *domain.Job) error {
	j.ID = r.id()
	cp := *j
	r.jobs[j.ID] = &cp
	return nil
}

func (r memJobs) UpdateStatus(_ context.Context, id uint, status domain.JobStatus) error {
	if j, ok := r.jobs[id]; ok {
		j.Status = status
	}
	return nil
}

func (r memJobs) GetByID(_ context.Context, id uint) (*domain.Job, error) {
	j, ok := r.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (r memJobs) List(_ context.Context, f domain.JobFilter) ([]*domain.JobView, int64, error) {
	var out []*domain.JobView
	for _, j := range r.jobs {
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if f.DepartmentID != nil && j.DepartmentID != *f.DepartmentID {
			continue
		}
		if f.OpenOn != nil && !j.AcceptingApplications(*f.OpenOn) {
			continue
		}
		v := &domain.JobView{Job: *j}
		if d, ok := r.departments[j.DepartmentID]; ok {
			v.DepartmentName = d.Name
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, int64(len(out)), nil
}

// applications

type memApplications struct{ *store }

func (r memApplications) Create(_ context.Context, app *domain.Application) error {
	if r.takenNumbers[app.ApplicationNumber] {
		return domain.ErrDuplicate
	}
	for _, a := range r.apps {
		if a.ApplicationNumber == app.ApplicationNumber || (a.UserID == app.UserID && a.JobID == app.JobID) {
			return domain.ErrDuplicate
		}
	}
	app.ID = r.id()
	app.CreatedAt = fixedNow
	app.UpdatedAt = fixedNow
	cp := *app
	r.apps[app.ID] = &cp
	return nil
}

func (r memApplications) GetByID(_ context.Context, id uint) (*domain.Application, error) {
	a, ok := r.apps[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r memApplications) GetForUpdate(ctx context.Context, id uint) (*domain.Application, error) {
	return r.GetByID(ctx, id)
}

func (r memApplications) UpdateStatus(_ context.Context, id uint, expectedVersion int, status domain.ApplicationStatus, at time.Time) error {
	a, ok := r.apps[id]
	if !ok || a.Version != expectedVersion || r.staleOnce {
		r.staleOnce = false
		return domain.ErrStaleVersion
	}
	a.Status = status
	a.Version++
	a.UpdatedAt = at
	return nil
}

func (r memApplications) AppendHistory(_ context.Context, h *domain.StatusHistory) error {
	h.ID = r.id()
	cp := *h
	r.history = append(r.history, &cp)
	return nil
}

func (r memApplications) History(_ context.Context, applicationID uint) ([]*domain.StatusHistory, error) {
	return r.historyFor(applicationID), nil
}

func (r memApplications) ExistsForUserJob(_ context.Context, userID, jobID uint) (bool, error) {
	r.existsCalls++
	if r.existsFailAfter > 0 && r.existsCalls > r.existsFailAfter {
		return false, errors.New("connection reset")
	}
	for _, a := range r.apps {
		if a.UserID == userID && a.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (r memApplications) NumberExists(_ context.Context, number string) (bool, error) {
	for _, a := range r.apps {
		if a.ApplicationNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r memApplications) view(a *domain.Application) *domain.ApplicationView {
	v := &domain.ApplicationView{Application: *a}
	if j, ok := r.jobs[a.JobID]; ok {
		v.JobTitle = j.Title
		v.DepartmentID = j.DepartmentID
		if d, ok := r.departments[j.DepartmentID]; ok {
			v.DepartmentName = d.Name
		}
	}
	return v
}

func (r memApplications) List(_ context.Context, f domain.ApplicationFilter) ([]*domain.ApplicationView, int64, error) {
	var out []*domain.ApplicationView
	for _, a := range r.apps {
		v := r.view(a)
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.JobID != 0 && a.JobID != f.JobID {
			continue
		}
		if f.UserID != 0 && a.UserID != f.UserID {
			continue
		}
		if f.DepartmentID != nil && v.DepartmentID != *f.DepartmentID {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r memApplications) ListWithoutInterview(_ context.Context) ([]*domain.ApplicationView, error) {
	scheduled := map[uint]bool{}
	for _, iv := range r.interviews {
		scheduled[iv.ApplicationID] = true
	}
	var out []*domain.ApplicationView
	for _, a := range r.apps {
		if scheduled[a.ID] || !a.Status.Schedulable() {
			continue
		}
		out = append(out, r.view(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memApplications) CountByStatus(_ context.Context, departmentID *uint) (map[domain.ApplicationStatus]int64, error) {
	out := map[domain.ApplicationStatus]int64{}
	for _, a := range r.apps {
		if departmentID != nil && r.jobs[a.JobID].DepartmentID != *departmentID {
			continue
		}
		out[a.Status]++
	}
	return out, nil
}

// interviews

type memInterviews struct{ *store }

func (r memInterviews) Create(_ context.Context, iv *domain.Interview) error {
	for _, existing := range r.interviews {
		if existing.ApplicationID == iv.ApplicationID || existing.InterviewCode == iv.InterviewCode {
			return domain.ErrDuplicate
		}
	}
	iv.ID = r.id()
	cp := *iv
	r.interviews[iv.ID] = &cp
	return nil
}

func (r memInterviews) Update(_ context.Context, iv *domain.Interview) error {
	cp := *iv
	r.interviews[iv.ID] = &cp
	return nil
}

func (r memInterviews) Delete(_ context.Context, id uint) error {
	delete(r.interviews, id)
	delete(r.panels, id)
	return nil
}

func (r memInterviews) GetByID(_ context.Context, id uint) (*domain.Interview, error) {
	iv, ok := r.interviews[id]
	if !ok {
		return nil, nil
	}
	cp := *iv
	return &cp, nil
}

func (r memInterviews) GetByApplicationID(_ context.Context, applicationID uint) (*domain.Interview, error) {
	for _, iv := range r.interviews {
		if iv.ApplicationID == applicationID {
			cp := *iv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memInterviews) CountCodesWithPrefix(_ context.Context, prefix string) (int64, error) {
	var n int64
	for _, iv := range r.interviews {
		if strings.HasPrefix(iv.InterviewCode, prefix) {
			n++
		}
	}
	return n, nil
}

func (r memInterviews) CodeExists(_ context.Context, code string) (bool, error) {
	for _, iv := range r.interviews {
		if iv.InterviewCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r memInterviews) ListPanel(_ context.Context, interviewID uint) ([]domain.PanelMember, error) {
	return append([]domain.PanelMember(nil), r.panels[interviewID]...), nil
}

func (r memInterviews) ListPanels(_ context.Context, ids []uint) (map[uint][]domain.PanelMember, error) {
	out := map[uint][]domain.PanelMember{}
	for _, id := range ids {
		if p := r.panels[id]; len(p) > 0 {
			out[id] = append([]domain.PanelMember(nil), p...)
		}
	}
	return out, nil
}

func (r memInterviews) AddPanelMembers(_ context.Context, interviewID uint, members []domain.PanelMember) error {
	for _, m := range members {
		for _, existing := range r.panels[interviewID] {
			if existing.UserID == m.UserID {
				return errors.New("duplicate panel member")
			}
		}
		m.InterviewID = interviewID
		r.panels[interviewID] = append(r.panels[interviewID], m)
	}
	return nil
}

func (r memInterviews) RemovePanelMembers(_ context.Context, interviewID uint, userIDs []uint) error {
	drop := map[uint]bool{}
	for _, id := range userIDs {
		drop[id] = true
	}
	kept := r.panels[interviewID][:0]
	for _, m := range r.panels[interviewID] {
		if !drop[m.UserID] {
			kept = append(kept, m)
		}
	}
	r.panels[interviewID] = kept
	return nil
}

func (r memInterviews) UpdatePanelRole(_ context.Context, interviewID, userID uint, role domain.PanelRole) error {
	for i, m := range r.panels[interviewID] {
		if m.UserID == userID {
			r.panels[interviewID][i].Role = role
		}
	}
	return nil
}

func (r memInterviews) List(_ context.Context, f domain.InterviewFilter) ([]*domain.InterviewView, int64, error) {
	var out []*domain.InterviewView
	for _, iv := range r.interviews {
		if f.Status != "" && iv.Status != f.Status {
			continue
		}
		app := r.apps[iv.ApplicationID]
		job := r.jobs[app.JobID]
		if f.DepartmentID != nil && job.DepartmentID != *f.DepartmentID {
			continue
		}
		v := &domain.InterviewView{
			Interview:         *iv,
			ApplicationNumber: app.ApplicationNumber,
			ApplicationStatus: app.Status,
			ApplicantID:       app.UserID,
			JobTitle:          job.Title,
		}
		if t, ok := r.types[iv.InterviewTypeID]; ok {
			v.InterviewTypeName = t.Name
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledDate != out[j].ScheduledDate {
			return out[i].ScheduledDate > out[j].ScheduledDate
		}
		return out[i].StartTime > out[j].StartTime
	})
	return out, int64(len(out)), nil
}

func (r memInterviews) CountByStatus(_ context.Context, departmentID *uint) (map[domain.InterviewStatus]int64, error) {
	out := map[domain.InterviewStatus]int64{}
	for _, iv := range r.interviews {
		if departmentID != nil && r.jobs[r.apps[iv.ApplicationID].JobID].DepartmentID != *departmentID {
			continue
		}
		out[iv.Status]++
	}
	return out, nil
}

// interview types

type memTypes struct{ *store }

func (r memTypes) GetByID(_ context.Context, id uint) (*domain.InterviewType, error) {
	t, ok := r.types[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r memTypes) List(_ context.Context, activeOnly bool) ([]*domain.InterviewType, error) {
	var out []*domain.InterviewType
	for _, t := range r.types {
		if activeOnly && !t.IsActive {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memTypes) EnsureDefaults(_ context.Context, names []string) error {
	if len(r.types) > 0 {
		return nil
	}
	for _, n := range names {
		id := r.id()
		r.types[id] = &domain.InterviewType{ID: id, Name: n, IsActive: true}
	}
	return nil
}

// ports

type memDirectory struct {
	people map[uint]*domain.Person
	calls  int
}

func (d *memDirectory) GetPerson(_ context.Context, id uint) (*domain.Person, error) {
	return d.people[id], nil
}

func (d *memDirectory) GetPeople(_ context.Context, ids []uint) (map[uint]*domain.Person, error) {
	out := map[uint]*domain.Person{}
	for _, id := range ids {
		if p, ok := d.people[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (d *memDirectory) ListInterviewers(_ context.Context) ([]*domain.Person, error) {
	d.calls++
	var out []*domain.Person
	for _, p := range d.people {
		if p.IsActive && p.IsStaff() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type recordingNotifier struct {
	notices []domain.Notice
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, notice domain.Notice) error {
	n.notices = append(n.notices, notice)
	return n.err
}

type publishedEvent struct {
	Type string
	Key  string
}

type recordingEvents struct{ events []publishedEvent }

func (e *recordingEvents) Publish(_ context.Context, eventType, key string, _ any) error {
	e.events = append(e.events, publishedEvent{Type: eventType, Key: key})
	return nil
}

func (e *recordingEvents) types() []string {
	out := make([]string, len(e.events))
	for i, ev := range e.events {
		out[i] = ev.Type
	}
	return out
}

type recordingAudit struct{ actions []string }

func (a *recordingAudit) Record(_ context.Context, action, _ string, _ uint, _ map[string]any) {
	a.actions = append(a.actions, action)
}

type memLookups struct {
	data   map[string][]byte
	stores int
}

func (l *memLookups) Load(_ context.Context, key string, dest any) bool {
	raw, ok := l.data[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (l *memLookups) Store(_ context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	l.stores++
	l.data[key] = raw
}

func (l *memLookups) Invalidate(_ context.Context, keys ...string) {
	for _, k := range keys {
		delete(l.data, k)
	}
}

// fixture

const (
	deptEng   uint = 100
	deptSales uint = 200

	userAdmin     uint = 1
	userEmployer  uint = 2
	userHRSales   uint = 3
	userApplicant uint = 4
	userOther     uint = 5
	userInactive  uint = 6
)

type fixture struct {
	st       *store
	dir      *memDirectory
	notifier *recordingNotifier
	events   *recordingEvents
	audit    *recordingAudit
	lookups  *memLookups
	w        *workflow
	svc      *Service
	jobID    uint
	typeID   uint
}

func newFixture(policy domain.TransitionPolicy) *fixture {
	st := newStore()
	st.nextID = 1000
	st.departments[deptEng] = &domain.Department{ID: deptEng, Name: "Engineering", Code: "ENG", IsActive: true}
	st.departments[deptSales] = &domain.Department{ID: deptSales, Name: "Sales", Code: "SAL", IsActive: true}

	dept := func(id uint) *uint { return &id }
	dir := &memDirectory{people: map[uint]*domain.Person{
		userAdmin:     {ID: userAdmin, Name: "Ann Admin", Email: "admin@x.io", Role: roleAdmin, IsActive: true},
		userEmployer:  {ID: userEmployer, Name: "Eve Employer", Email: "eve@x.io", Role: roleEmployer, DepartmentID: dept(deptEng), IsActive: true},
		userHRSales:   {ID: userHRSales, Name: "Hal HR", Email: "hal@x.io", Role: roleHR, DepartmentID: dept(deptSales), IsActive: true},
		userApplicant: {ID: userApplicant, Name: "Al Applicant", Email: "al@x.io", Role: roleApplicant, IsActive: true},
		userOther:     {ID: userOther, Name: "Olga Other", Email: "olga@x.io", Role: roleApplicant, IsActive: true},
		userInactive:  {ID: userInactive, Name: "Ian Inactive", Email: "ian@x.io", Role: roleHR, DepartmentID: dept(deptEng), IsActive: false},
	}}

	f := &fixture{
		st:       st,
		dir:      dir,
		notifier: &recordingNotifier{},
		events:   &recordingEvents{},
		audit:    &recordingAudit{},
		lookups:  &memLookups{data: map[string][]byte{}},
	}
	w := newWorkflow(Deps{
		Departments:    memDepartments{st},
		Jobs:           memJobs{st},
		Applications:   memApplications{st},
		Interviews:     memInterviews{st},
		InterviewTypes: memTypes{st},
		Directory:      dir,
		Notifier:       f.notifier,
		Audit:          f.audit,
		Events:         f.events,
		Lookups:        f.lookups,
		Policy:         policy,
	})
	w.now = func() time.Time { return fixedNow }
	f.w = w
	f.svc = &Service{
		Catalog:          newCatalogService(w),
		Applications:     newApplicationCommandService(w),
		ApplicationQuery: newApplicationQueryService(w),
		Interviews:       newInterviewCommandService(w),
		InterviewQuery:   newInterviewQueryService(w),
		Reports:          newReportQueryService(w),
	}

	f.jobID = 10
	st.jobs[f.jobID] = &domain.Job{ID: f.jobID, DepartmentID: deptEng, Title: "Backend Engineer", Status: domain.JobOpen}
	f.typeID = 20
	st.types[f.typeID] = &domain.InterviewType{ID: f.typeID, Name: "Technical", IsActive: true}
	st.types[21] = &domain.InterviewType{ID: 21, Name: "Retired", IsActive: false}
	return f
}

func as(userID uint, role string, dept ...uint) context.Context {
	id := contextx.Identity{UserID: userID, Role: role}
	if len(dept) > 0 {
		d := dept[0]
		id.DepartmentID = &d
	}
	return contextx.WithIdentity(context.Background(), id)
}

func adminCtx() context.Context     { return as(userAdmin, roleAdmin) }
func employerCtx() context.Context  { return as(userEmployer, roleEmployer, deptEng) }
func hrSalesCtx() context.Context   { return as(userHRSales, roleHR, deptSales) }
func applicantCtx() context.Context { return as(userApplicant, roleApplicant) }

// submitted 以申请人身份投递一份已提交的申请
func (f *fixture) submitted() *domain.Application {
	app, err := f.svc.Applications.Submit(applicantCtx(), SubmitCommand{JobID: f.jobID, CoverLetter: "hello"})
	if err != nil {
		panic(err)
	}
	return app
}
