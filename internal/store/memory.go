package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Aman-1206/Joblink/internal/model"
)

type memData struct {
	nextID map[string]uint

	users   map[uint]model.User
	pending map[uint]model.PendingHrApproval
	domains map[uint]model.CompanyDomain
	codes   map[uint]model.OneTimeCode
	jobs    map[uint]model.Job
	apps    map[uint]model.Application
	saved   map[uint]model.SavedJob
	reports map[uint]model.JobReport
	nowFunc func() time.Time
}

func newMemData() *memData {
	return &memData{
		nextID:  map[string]uint{},
		users:   map[uint]model.User{},
		pending: map[uint]model.PendingHrApproval{},
		domains: map[uint]model.CompanyDomain{},
		codes:   map[uint]model.OneTimeCode{},
		jobs:    map[uint]model.Job{},
		apps:    map[uint]model.Application{},
		saved:   map[uint]model.SavedJob{},
		reports: map[uint]model.JobReport{},
		nowFunc: time.Now,
	}
}

func cloneMap[T any](m map[uint]T) map[uint]T {
	out := make(map[uint]T, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *memData) clone() *memData {
	ids := make(map[string]uint, len(d.nextID))
	for k, v := range d.nextID {
		ids[k] = v
	}
	return &memData{
		nextID:  ids,
		users:   cloneMap(d.users),
		pending: cloneMap(d.pending),
		domains: cloneMap(d.domains),
		codes:   cloneMap(d.codes),
		jobs:    cloneMap(d.jobs),
		apps:    cloneMap(d.apps),
		saved:   cloneMap(d.saved),
		reports: cloneMap(d.reports),
		nowFunc: d.nowFunc,
	}
}

func (d *memData) id(table string) uint {
	d.nextID[table]++
	return d.nextID[table]
}

func (d *memData) stamp(t *time.Time) {
	if t.IsZero() {
		*t = d.nowFunc()
	}
}

// MemoryStore is a Store kept in process memory. All access is serialized
// by one mutex and Tx restores a snapshot when fn fails.
type MemoryStore struct {
	mu     *sync.Mutex
	data   *memData
	locked bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{mu: &sync.Mutex{}, data: newMemData()}
}

func (m *MemoryStore) lock() {
	if !m.locked {
		m.mu.Lock()
	}
}

func (m *MemoryStore) unlock() {
	if !m.locked {
		m.mu.Unlock()
	}
}

func (m *MemoryStore) Tx(ctx context.Context, fn func(Store) error) error {
	if m.locked {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.data.clone()
	if err := fn(&MemoryStore{mu: m.mu, data: m.data, locked: true}); err != nil {
		*m.data = *snapshot
		return err
	}
	return nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, u *model.User) error {
	m.lock()
	defer m.unlock()
	for _, existing := range m.data.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
		if u.ExternalID != nil && existing.ExternalID != nil && *existing.ExternalID == *u.ExternalID {
			return ErrDuplicate
		}
	}
	u.ID = m.data.id("users")
	if u.Status == "" {
		u.Status = model.StatusActive
	}
	m.data.stamp(&u.CreatedAt)
	m.data.users[u.ID] = *u
	return nil
}

func (m *MemoryStore) UserByID(ctx context.Context, id uint) (*model.User, error) {
	m.lock()
	defer m.unlock()
	u, ok := m.data.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.lock()
	defer m.unlock()
	for _, u := range m.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	m.lock()
	defer m.unlock()
	for _, u := range m.data.users {
		if u.ExternalID != nil && *u.ExternalID == externalID {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateProfile(ctx context.Context, id uint, upd ProfileUpdate) error {
	m.lock()
	defer m.unlock()
	u, ok := m.data.users[id]
	if !ok {
		return ErrNotFound
	}
	if upd.ExternalID != nil {
		for otherID, other := range m.data.users {
			if otherID != id && other.ExternalID != nil && *other.ExternalID == *upd.ExternalID {
				return ErrDuplicate
			}
		}
		ext := *upd.ExternalID
		u.ExternalID = &ext
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.ProfilePhoto != nil {
		u.ProfilePhoto = *upd.ProfilePhoto
	}
	if upd.GSTVerified != nil {
		u.GSTVerified = *upd.GSTVerified
	}
	m.data.users[id] = u
	return nil
}

func (m *MemoryStore) EmailTaken(ctx context.Context, email string) (bool, error) {
	m.lock()
	defer m.unlock()
	for _, u := range m.data.users {
		if u.Email == email {
			return true, nil
		}
	}
	for _, p := range m.data.pending {
		if p.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// newestFirst sorts rows by creation time, newest first, breaking ties by id.
func newestFirst[T any](rows []T, key func(T) (time.Time, uint)) {
	sort.Slice(rows, func(i, j int) bool {
		ti, ii := key(rows[i])
		tj, ij := key(rows[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return ii > ij
	})
}

func (m *MemoryStore) ListUsers(ctx context.Context, role string) ([]model.User, error) {
	m.lock()
	defer m.unlock()
	out := []model.User{}
	for _, u := range m.data.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	newestFirst(out, func(u model.User) (time.Time, uint) { return u.CreatedAt, u.ID })
	return out, nil
}

func (m *MemoryStore) companyCounts() map[string]int64 {
	counts := map[string]int64{}
	for _, u := range m.data.users {
		if u.Role == model.RoleHR && u.CompanyName != "" {
			counts[u.CompanyName]++
		}
	}
	return counts
}

func (m *MemoryStore) CompanySummaries(ctx context.Context) ([]model.CompanySummary, error) {
	m.lock()
	defer m.unlock()
	out := []model.CompanySummary{}
	for name, n := range m.companyCounts() {
		out = append(out, model.CompanySummary{CompanyName: name, HRCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompanyName < out[j].CompanyName })
	return out, nil
}

func (m *MemoryStore) Analytics(ctx context.Context) (*model.Analytics, error) {
	m.lock()
	defer m.unlock()
	a := &model.Analytics{
		Companies: int64(len(m.companyCounts())),
		JobCount:  int64(len(m.data.jobs)),
	}
	for _, u := range m.data.users {
		switch u.Role {
		case model.RoleHR:
			a.HRCount++
		case model.RoleStudent:
			a.StudentCount++
		case model.RoleAdmin:
			a.AdminCount++
		}
	}
	return a, nil
}

func (m *MemoryStore) CreatePending(ctx context.Context, p *model.PendingHrApproval) error {
	m.lock()
	defer m.unlock()
	for _, existing := range m.data.pending {
		if existing.Email == p.Email {
			return ErrDuplicate
		}
	}
	p.ID = m.data.id("pending")
	m.data.stamp(&p.CreatedAt)
	m.data.pending[p.ID] = *p
	return nil
}

func (m *MemoryStore) PendingByID(ctx context.Context, id uint) (*model.PendingHrApproval, error) {
	m.lock()
	defer m.unlock()
	p, ok := m.data.pending[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) ListPending(ctx context.Context) ([]model.PendingHrApproval, error) {
	m.lock()
	defer m.unlock()
	out := make([]model.PendingHrApproval, 0, len(m.data.pending))
	for _, p := range m.data.pending {
		out = append(out, p)
	}
	newestFirst(out, func(p model.PendingHrApproval) (time.Time, uint) { return p.CreatedAt, p.ID })
	return out, nil
}

func (m *MemoryStore) DeletePending(ctx context.Context, id uint) error {
	m.lock()
	defer m.unlock()
	if _, ok := m.data.pending[id]; !ok {
		return ErrNotFound
	}
	delete(m.data.pending, id)
	return nil
}

func (m *MemoryStore) ReplaceCode(ctx context.Context, c *model.OneTimeCode) error {
	m.lock()
	defer m.unlock()
	m.deleteCodes(c.Email)
	c.ID = m.data.id("codes")
	m.data.stamp(&c.CreatedAt)
	m.data.codes[c.ID] = *c
	return nil
}

func (m *MemoryStore) LatestCode(ctx context.Context, email string) (*model.OneTimeCode, error) {
	m.lock()
	defer m.unlock()
	var latest *model.OneTimeCode
	for _, c := range m.data.codes {
		if c.Email != email {
			continue
		}
		if latest == nil || c.ID > latest.ID {
			code := c
			latest = &code
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (m *MemoryStore) DeleteCodes(ctx context.Context, email string) error {
	m.lock()
	defer m.unlock()
	m.deleteCodes(email)
	return nil
}

func (m *MemoryStore) PurgeExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	m.lock()
	defer m.unlock()
	var n int64
	for id, c := range m.data.codes {
		if c.ExpiresAt.Before(now) {
			delete(m.data.codes, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) deleteCodes(email string) {
	for id, c := range m.data.codes {
		if c.Email == email {
			delete(m.data.codes, id)
		}
	}
}

func (m *MemoryStore) DomainByName(ctx context.Context, domain string) (*model.CompanyDomain, error) {
	m.lock()
	defer m.unlock()
	for _, d := range m.data.domains {
		if d.Domain == domain {
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListDomains(ctx context.Context) ([]model.CompanyDomain, error) {
	m.lock()
	defer m.unlock()
	out := make([]model.CompanyDomain, 0, len(m.data.domains))
	for _, d := range m.data.domains {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out, nil
}

func (m *MemoryStore) CreateDomain(ctx context.Context, d *model.CompanyDomain) error {
	m.lock()
	defer m.unlock()
	for _, existing := range m.data.domains {
		if existing.Domain == d.Domain {
			return ErrDuplicate
		}
	}
	d.ID = m.data.id("domains")
	m.data.domains[d.ID] = *d
	return nil
}

func (m *MemoryStore) CreateJob(ctx context.Context, j *model.Job) error {
	m.lock()
	defer m.unlock()
	j.ID = m.data.id("jobs")
	m.data.stamp(&j.CreatedAt)
	m.data.jobs[j.ID] = *j
	return nil
}

func (m *MemoryStore) JobByID(ctx context.Context, id uint) (*model.Job, error) {
	m.lock()
	defer m.unlock()
	j, ok := m.data.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &j, nil
}

func (m *MemoryStore) view(j model.Job) model.JobView {
	v := model.JobView{Job: j}
	if hr, ok := m.data.users[j.HRID]; ok {
		v.HRCompany = hr.CompanyName
		v.HREmail = hr.Email
	}
	for _, a := range m.data.apps {
		if a.JobID == j.ID {
			v.ApplicationCount++
		}
	}
	return v
}

func (m *MemoryStore) JobViewByID(ctx context.Context, id uint) (*model.JobView, error) {
	m.lock()
	defer m.unlock()
	j, ok := m.data.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	v := m.view(j)
	return &v, nil
}

func (m *MemoryStore) ListJobs(ctx context.Context, hrID uint) ([]model.JobView, error) {
	m.lock()
	defer m.unlock()
	out := []model.JobView{}
	for _, j := range m.data.jobs {
		if hrID != 0 && j.HRID != hrID {
			continue
		}
		out = append(out, m.view(j))
	}
	newestFirst(out, func(v model.JobView) (time.Time, uint) { return v.CreatedAt, v.ID })
	return out, nil
}

func (m *MemoryStore) UpdateJob(ctx context.Context, id uint, upd JobUpdate) error {
	m.lock()
	defer m.unlock()
	j, ok := m.data.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Title != nil {
		j.Title = *upd.Title
	}
	if upd.Description != nil {
		j.Description = *upd.Description
	}
	if upd.CompanyName != nil {
		j.CompanyName = *upd.CompanyName
	}
	if upd.Location != nil {
		j.Location = *upd.Location
	}
	if upd.Type != nil {
		j.Type = *upd.Type
	}
	m.data.jobs[id] = j
	return nil
}

func (m *MemoryStore) DeleteJob(ctx context.Context, id uint) error {
	m.lock()
	defer m.unlock()
	if _, ok := m.data.jobs[id]; !ok {
		return ErrNotFound
	}
	for aid, a := range m.data.apps {
		if a.JobID == id {
			delete(m.data.apps, aid)
		}
	}
	for rid, r := range m.data.reports {
		if r.JobID == id {
			delete(m.data.reports, rid)
		}
	}
	for sid, s := range m.data.saved {
		if s.JobID == id {
			delete(m.data.saved, sid)
		}
	}
	delete(m.data.jobs, id)
	return nil
}

func (m *MemoryStore) CreateApplication(ctx context.Context, a *model.Application) error {
	m.lock()
	defer m.unlock()
	for _, existing := range m.data.apps {
		if existing.JobID == a.JobID && existing.UserID == a.UserID {
			return ErrDuplicate
		}
	}
	a.ID = m.data.id("applications")
	if a.Status == "" {
		a.Status = model.ApplicationPending
	}
	m.data.stamp(&a.CreatedAt)
	m.data.apps[a.ID] = *a
	return nil
}

func (m *MemoryStore) ApplicationByID(ctx context.Context, id uint) (*model.Application, error) {
	m.lock()
	defer m.unlock()
	a, ok := m.data.apps[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *MemoryStore) ApplicationExists(ctx context.Context, jobID, userID uint) (bool, error) {
	m.lock()
	defer m.unlock()
	for _, a := range m.data.apps {
		if a.JobID == jobID && a.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) UpdateApplicationStatus(ctx context.Context, id uint, status string) error {
	m.lock()
	defer m.unlock()
	a, ok := m.data.apps[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	m.data.apps[id] = a
	return nil
}

func (m *MemoryStore) DeleteApplication(ctx context.Context, id uint) error {
	m.lock()
	defer m.unlock()
	if _, ok := m.data.apps[id]; !ok {
		return ErrNotFound
	}
	delete(m.data.apps, id)
	return nil
}

func (m *MemoryStore) ApplicationsByUser(ctx context.Context, userID uint) ([]model.MyApplication, error) {
	m.lock()
	defer m.unlock()
	out := []model.MyApplication{}
	for _, a := range m.data.apps {
		if a.UserID != userID {
			continue
		}
		j, ok := m.data.jobs[a.JobID]
		if !ok {
			continue
		}
		out = append(out, model.MyApplication{
			Application: a,
			Title:       j.Title,
			Company:     j.CompanyName,
			JobCreated:  j.CreatedAt,
		})
	}
	newestFirst(out, func(v model.MyApplication) (time.Time, uint) { return v.CreatedAt, v.ID })
	return out, nil
}

func (m *MemoryStore) Applicants(ctx context.Context, f ApplicantFilter) ([]model.Applicant, error) {
	m.lock()
	defer m.unlock()
	out := []model.Applicant{}
	for _, a := range m.data.apps {
		if f.JobID != 0 && a.JobID != f.JobID {
			continue
		}
		j, ok := m.data.jobs[a.JobID]
		if !ok || j.HRID != f.HRID {
			continue
		}
		u, ok := m.data.users[a.UserID]
		if !ok {
			continue
		}
		out = append(out, model.Applicant{
			ID:          a.ID,
			JobID:       a.JobID,
			Status:      a.Status,
			CoverLetter: a.CoverLetter,
			ResumePath:  a.ResumePath,
			CreatedAt:   a.CreatedAt,
			FullName:    u.FullName,
			Email:       u.Email,
			JobTitle:    j.Title,
			CompanyName: j.CompanyName,
		})
	}
	newestFirst(out, func(v model.Applicant) (time.Time, uint) { return v.CreatedAt, v.ID })
	return out, nil
}

func (m *MemoryStore) CreateReport(ctx context.Context, r *model.JobReport) error {
	m.lock()
	defer m.unlock()
	r.ID = m.data.id("reports")
	m.data.stamp(&r.CreatedAt)
	m.data.reports[r.ID] = *r
	return nil
}

func (m *MemoryStore) ListReports(ctx context.Context) ([]model.ReportView, error) {
	m.lock()
	defer m.unlock()
	out := []model.ReportView{}
	for _, r := range m.data.reports {
		v := model.ReportView{JobReport: r}
		if j, ok := m.data.jobs[r.JobID]; ok {
			v.JobTitle = j.Title
			v.CompanyName = j.CompanyName
			v.HRID = j.HRID
			if hr, ok := m.data.users[j.HRID]; ok {
				v.HREmail = hr.Email
				v.HRName = hr.FullName
				v.HRCompany = hr.CompanyName
			}
		}
		if u, ok := m.data.users[r.UserID]; ok {
			v.ReporterName = u.FullName
			v.ReporterEmail = u.Email
		}
		out = append(out, v)
	}
	newestFirst(out, func(v model.ReportView) (time.Time, uint) { return v.CreatedAt, v.ID })
	return out, nil
}

func (m *MemoryStore) DeleteReport(ctx context.Context, id uint) error {
	m.lock()
	defer m.unlock()
	if _, ok := m.data.reports[id]; !ok {
		return ErrNotFound
	}
	delete(m.data.reports, id)
	return nil
}

func (m *MemoryStore) SaveJob(ctx context.Context, s *model.SavedJob) error {
	m.lock()
	defer m.unlock()
	for _, existing := range m.data.saved {
		if existing.UserID == s.UserID && existing.JobID == s.JobID {
			return ErrDuplicate
		}
	}
	s.ID = m.data.id("saved")
	m.data.stamp(&s.CreatedAt)
	m.data.saved[s.ID] = *s
	return nil
}

func (m *MemoryStore) UnsaveJob(ctx context.Context, userID, jobID uint) error {
	m.lock()
	defer m.unlock()
	for id, s := range m.data.saved {
		if s.UserID == userID && s.JobID == jobID {
			delete(m.data.saved, id)
		}
	}
	return nil
}

func (m *MemoryStore) savedRows(userID uint) []model.SavedJob {
	rows := []model.SavedJob{}
	for _, s := range m.data.saved {
		if s.UserID == userID {
			rows = append(rows, s)
		}
	}
	newestFirst(rows, func(s model.SavedJob) (time.Time, uint) { return s.CreatedAt, s.ID })
	return rows
}

func (m *MemoryStore) SavedJobIDs(ctx context.Context, userID uint) ([]uint, error) {
	m.lock()
	defer m.unlock()
	ids := []uint{}
	for _, s := range m.savedRows(userID) {
		ids = append(ids, s.JobID)
	}
	return ids, nil
}

func (m *MemoryStore) SavedJobs(ctx context.Context, userID uint) ([]model.JobView, error) {
	m.lock()
	defer m.unlock()
	out := []model.JobView{}
	for _, s := range m.savedRows(userID) {
		if j, ok := m.data.jobs[s.JobID]; ok {
			out = append(out, m.view(j))
		}
	}
	return out, nil
}

