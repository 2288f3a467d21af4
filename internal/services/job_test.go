package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/hirehub/apiserver/internal/apperr"
	"github.com/hirehub/apiserver/internal/store"
	"github.com/hirehub/apiserver/internal/txn"
	"github.com/hirehub/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobFixture() (*JobService, *fakeJobRepo, *fakeCompanyRepo, *fakeAppRepo, *fakeMedia) {
	jobs := newFakeJobRepo()
	companies := newFakeCompanyRepo()
	apps := newFakeAppRepo()
	media := &fakeMedia{}
	return NewJobService(jobs, companies, apps, media), jobs, companies, apps, media
}

func validJobInput() JobInput {
	return JobInput{
		Title:           "Backend Engineer",
		Location:        types.LocationRemote,
		WorkingTime:     types.TimeFullTime,
		Seniority:       types.SenioritySenior,
		Description:     "Build the API",
		TechnicalSkills: []string{"go", "postgres"},
		SoftSkills:      []string{"communication"},
	}
}

func TestCreateJob(t *testing.T) {
	svc, jobs, _, _, media := jobFixture()
	tx := txn.Begin(media)

	created, err := svc.Create(context.Background(), tx, 1, validJobInput())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, int64(1), created.AddedBy)
	assert.Len(t, jobs.jobs, 1)

	tx.Rollback(context.Background())
	assert.Empty(t, jobs.jobs)
}

func TestCreateJobRejectsUnknownEnums(t *testing.T) {
	svc, jobs, _, _, media := jobFixture()

	bad := validJobInput()
	bad.Location = "moon"
	_, err := svc.Create(context.Background(), txn.Begin(media), 1, bad)
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))

	bad = validJobInput()
	bad.Seniority = "wizard"
	_, err = svc.Create(context.Background(), txn.Begin(media), 1, bad)
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
	assert.Empty(t, jobs.jobs)
}

func TestUpdateJobChecksOwnership(t *testing.T) {
	svc, _, _, _, media := jobFixture()
	created, err := svc.Create(context.Background(), txn.Begin(media), 1, validJobInput())
	require.NoError(t, err)

	input := validJobInput()
	input.Title = "Staff Engineer"
	_, err = svc.Update(context.Background(), created.ID, 2, input)
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))

	updated, err := svc.Update(context.Background(), created.ID, 1, input)
	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer", updated.Title)
}

func TestDeleteJobRemovesApplicationsAndResumes(t *testing.T) {
	svc, jobs, companies, apps, media := jobFixture()
	companies.Create(context.Background(), types.Company{Name: "Initech", Email: "hr@initech.example", HRID: 1, MediaFolder: "cfold"})

	created, err := svc.Create(context.Background(), txn.Begin(media), 1, validJobInput())
	require.NoError(t, err)
	apps.Create(context.Background(), types.Application{JobID: created.ID, UserID: 5})
	apps.Create(context.Background(), types.Application{JobID: created.ID, UserID: 6})

	require.NoError(t, svc.Delete(context.Background(), created.ID, 1))
	assert.Empty(t, jobs.jobs)
	assert.Empty(t, apps.apps)
	assert.Contains(t, media.removed, media.JobRoot("cfold", created.ID))
}

func TestListJobsAppliesFilter(t *testing.T) {
	svc, jobs, _, _, _ := jobFixture()
	jobs.Create(context.Background(), types.Job{Title: "Backend Engineer", Location: types.LocationRemote, Seniority: types.SeniorityMid})
	jobs.Create(context.Background(), types.Job{Title: "Frontend Engineer", Location: types.LocationOnsite, Seniority: types.SeniorityMid})
	jobs.Create(context.Background(), types.Job{Title: "Backend Engineer", Location: types.LocationRemote, Seniority: types.SenioritySenior})

	items, total, err := svc.List(context.Background(), store.JobFilter{Location: types.LocationRemote}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)
}

func TestApplyToMissingJobCreatesNothing(t *testing.T) {
	svc, _, _, apps, media := jobFixture()

	_, err := svc.Apply(context.Background(), txn.Begin(media), 404, 5, ApplyInput{}, nil)
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))
	assert.Empty(t, apps.apps)
	assert.Empty(t, media.uploads)
}

func TestApplyWithResumeStagesBothEffects(t *testing.T) {
	svc, _, companies, apps, media := jobFixture()
	companies.Create(context.Background(), types.Company{Name: "Initech", Email: "hr@initech.example", HRID: 1, MediaFolder: "cfold"})
	created, err := svc.Create(context.Background(), txn.Begin(media), 1, validJobInput())
	require.NoError(t, err)

	tx := txn.Begin(media)
	resume := &Upload{Filename: "cv.pdf", ContentType: "application/pdf", Data: []byte("pdf")}
	app, err := svc.Apply(context.Background(), tx, created.ID, 5, ApplyInput{TechnicalSkills: []string{"go"}}, resume)
	require.NoError(t, err)
	assert.False(t, app.Resume.IsZero())
	require.Len(t, apps.apps, 1)

	tx.Rollback(context.Background())
	assert.Empty(t, apps.apps)
	assert.Equal(t, []string{media.JobResumeFolder("cfold", created.ID)}, media.removed)
}

func TestApplyMintsCompanyFolderOnFirstResume(t *testing.T) {
	svc, _, companies, apps, media := jobFixture()
	created, err := companies.Create(context.Background(), types.Company{Name: "Initech", Email: "hr@initech.example", HRID: 1})
	require.NoError(t, err)
	require.Empty(t, created.MediaFolder)

	job, err := svc.Create(context.Background(), txn.Begin(media), 1, validJobInput())
	require.NoError(t, err)

	resume := &Upload{Filename: "cv.pdf", ContentType: "application/pdf", Data: []byte("pdf")}
	app, err := svc.Apply(context.Background(), txn.Begin(media), job.ID, 5, ApplyInput{}, resume)
	require.NoError(t, err)
	assert.False(t, app.Resume.IsZero())
	require.Len(t, apps.apps, 1)

	stored, err := companies.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.MediaFolder)
	assert.Equal(t, []string{media.JobResumeFolder(stored.MediaFolder, job.ID)}, media.uploads)
}

func TestListByCompanyPopulatesJobs(t *testing.T) {
	svc, _, companies, _, media := jobFixture()
	companies.Create(context.Background(), types.Company{Name: "Initech", Email: "hr@initech.example", HRID: 1})
	_, err := svc.Create(context.Background(), txn.Begin(media), 1, validJobInput())
	require.NoError(t, err)

	company, err := svc.ListByCompany(context.Background(), "Initech")
	require.NoError(t, err)
	assert.Len(t, company.Jobs, 1)

	_, err = svc.ListByCompany(context.Background(), "Missing")
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))
}
