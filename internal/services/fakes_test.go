package services

import (
	"context"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/hirehub/apiserver/internal/store"
	"github.com/hirehub/apiserver/types"
)

// fakeMedia records media-host traffic instead of talking to a bucket.
type fakeMedia struct {
	uploads   []string
	deleted   []string
	removed   []string
	uploadErr error
}

func (m *fakeMedia) Upload(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (types.MediaRef, error) {
	if m.uploadErr != nil {
		return types.MediaRef{}, m.uploadErr
	}
	m.uploads = append(m.uploads, folder)
	key := path.Join(folder, filename)
	return types.MediaRef{ID: key, URL: "http://media.local/" + key}, nil
}

func (m *fakeMedia) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *fakeMedia) DeletePrefix(ctx context.Context, prefix string) error {
	m.removed = append(m.removed, prefix)
	return nil
}

func (m *fakeMedia) UserFolder(mediaFolder string) string {
	return path.Join("media", "users", mediaFolder, "profile")
}

func (m *fakeMedia) UserRoot(mediaFolder string) string {
	return path.Join("media", "users", mediaFolder)
}

func (m *fakeMedia) CompanyLogoFolder(mediaFolder string) string {
	return path.Join("media", "companies", mediaFolder, "logo")
}

func (m *fakeMedia) CompanyRoot(mediaFolder string) string {
	return path.Join("media", "companies", mediaFolder)
}

func (m *fakeMedia) JobResumeFolder(companyFolder string, jobID int64) string {
	return path.Join("media", "companies", companyFolder, "jobs", strconv.FormatInt(jobID, 10), "resumes")
}

func (m *fakeMedia) JobRoot(companyFolder string, jobID int64) string {
	return path.Join("media", "companies", companyFolder, "jobs", strconv.FormatInt(jobID, 10))
}

type fakeCompanyRepo struct {
	companies map[int64]types.Company
	nextID    int64
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{companies: make(map[int64]types.Company), nextID: 1}
}

func (r *fakeCompanyRepo) GetByID(ctx context.Context, id int64) (types.Company, error) {
	if company, ok := r.companies[id]; ok {
		return company, nil
	}
	return types.Company{}, store.ErrNotFound
}

func (r *fakeCompanyRepo) GetByHR(ctx context.Context, hrID int64) (types.Company, error) {
	for _, company := range r.companies {
		if company.HRID == hrID {
			return company, nil
		}
	}
	return types.Company{}, store.ErrNotFound
}

func (r *fakeCompanyRepo) GetByName(ctx context.Context, name string) (types.Company, error) {
	for _, company := range r.companies {
		if company.Name == name {
			return company, nil
		}
	}
	return types.Company{}, store.ErrNotFound
}

func (r *fakeCompanyRepo) GetByNameOrEmail(ctx context.Context, name, email string) (types.Company, error) {
	for _, company := range r.companies {
		if company.Name == name || company.Email == email {
			return company, nil
		}
	}
	return types.Company{}, store.ErrNotFound
}

func (r *fakeCompanyRepo) Create(ctx context.Context, company types.Company) (types.Company, error) {
	for _, existing := range r.companies {
		if existing.Name == company.Name || existing.Email == company.Email || existing.HRID == company.HRID {
			return types.Company{}, store.ErrConflict
		}
	}
	company.ID = r.nextID
	r.nextID++
	r.companies[company.ID] = company
	return company, nil
}

func (r *fakeCompanyRepo) Update(ctx context.Context, company types.Company) (types.Company, error) {
	if _, ok := r.companies[company.ID]; !ok {
		return types.Company{}, store.ErrNotFound
	}
	r.companies[company.ID] = company
	return company, nil
}

func (r *fakeCompanyRepo) SetMediaFolder(ctx context.Context, id int64, folder string) error {
	company, ok := r.companies[id]
	if !ok {
		return store.ErrNotFound
	}
	company.MediaFolder = folder
	r.companies[id] = company
	return nil
}

func (r *fakeCompanyRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.companies[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.companies, id)
	return nil
}

type fakeJobRepo struct {
	jobs   map[int64]types.Job
	nextID int64
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[int64]types.Job), nextID: 1}
}

func (r *fakeJobRepo) Get(ctx context.Context, id int64) (types.Job, error) {
	if job, ok := r.jobs[id]; ok {
		return job, nil
	}
	return types.Job{}, store.ErrNotFound
}

func (r *fakeJobRepo) List(ctx context.Context, filter store.JobFilter, offset, limit int) ([]types.Job, int, error) {
	var matched []types.Job
	for id := int64(1); id < r.nextID; id++ {
		job, ok := r.jobs[id]
		if !ok {
			continue
		}
		if filter.Title != "" && !strings.Contains(strings.ToLower(job.Title), strings.ToLower(filter.Title)) {
			continue
		}
		if filter.Location != "" && job.Location != filter.Location {
			continue
		}
		if filter.WorkingTime != "" && job.WorkingTime != filter.WorkingTime {
			continue
		}
		if filter.Seniority != "" && job.Seniority != filter.Seniority {
			continue
		}
		matched = append(matched, job)
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *fakeJobRepo) ListByOwner(ctx context.Context, hrID int64) ([]types.Job, error) {
	var jobs []types.Job
	for id := int64(1); id < r.nextID; id++ {
		if job, ok := r.jobs[id]; ok && job.AddedBy == hrID {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func (r *fakeJobRepo) Create(ctx context.Context, job types.Job) (types.Job, error) {
	job.ID = r.nextID
	r.nextID++
	r.jobs[job.ID] = job
	return job, nil
}

func (r *fakeJobRepo) Update(ctx context.Context, job types.Job) (types.Job, error) {
	if _, ok := r.jobs[job.ID]; !ok {
		return types.Job{}, store.ErrNotFound
	}
	r.jobs[job.ID] = job
	return job, nil
}

func (r *fakeJobRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.jobs[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.jobs, id)
	return nil
}

func (r *fakeJobRepo) DeleteByOwner(ctx context.Context, hrID int64) (int64, error) {
	var deleted int64
	for id, job := range r.jobs {
		if job.AddedBy == hrID {
			delete(r.jobs, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeAppRepo struct {
	apps   map[int64]types.Application
	nextID int64
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{apps: make(map[int64]types.Application), nextID: 1}
}

func (r *fakeAppRepo) Get(ctx context.Context, id int64) (types.Application, error) {
	if app, ok := r.apps[id]; ok {
		return app, nil
	}
	return types.Application{}, store.ErrNotFound
}

func (r *fakeAppRepo) Create(ctx context.Context, app types.Application) (types.Application, error) {
	app.ID = r.nextID
	r.nextID++
	r.apps[app.ID] = app
	return app, nil
}

func (r *fakeAppRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.apps[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.apps, id)
	return nil
}

func (r *fakeAppRepo) DeleteByJob(ctx context.Context, jobID int64) (int64, error) {
	var deleted int64
	for id, app := range r.apps {
		if app.JobID == jobID {
			delete(r.apps, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeAppRepo) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	var deleted int64
	for id, app := range r.apps {
		if app.UserID == userID {
			delete(r.apps, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeAppRepo) ListByOwner(ctx context.Context, hrID int64) ([]types.Application, error) {
	return nil, nil
}

type fakeUserRepo struct {
	users  map[int64]types.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]types.User), nextID: 1}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (types.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByEmailOrMobile(ctx context.Context, email, mobile string) (types.User, error) {
	for _, user := range r.users {
		if (email != "" && user.Email == email) || (mobile != "" && user.Mobile == mobile) {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) ListByRecoveryEmail(ctx context.Context, recoveryEmail string) ([]types.User, error) {
	var users []types.User
	for id := int64(1); id < r.nextID; id++ {
		if user, ok := r.users[id]; ok && user.RecoveryEmail == recoveryEmail {
			users = append(users, user)
		}
	}
	return users, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Mobile == user.Mobile {
			return types.User{}, store.ErrConflict
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) MarkEmailVerified(ctx context.Context, email string) (types.User, error) {
	for id, user := range r.users {
		if user.Email == email && !user.EmailVerified {
			user.EmailVerified = true
			r.users[id] = user
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeMailer struct {
	verifications []string
	names         []string
	otps          map[string]string
	sendErr       error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{otps: make(map[string]string)}
}

func (m *fakeMailer) SendVerification(ctx context.Context, to, name, token string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.verifications = append(m.verifications, to)
	m.names = append(m.names, name)
	return nil
}

func (m *fakeMailer) SendOTP(ctx context.Context, to, name, otp string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.otps[to] = otp
	m.names = append(m.names, name)
	return nil
}
