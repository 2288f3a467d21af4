package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/hirehub/apiserver/internal/apperr"
	"github.com/hirehub/apiserver/internal/txn"
	"github.com/hirehub/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func companyFixture() (*CompanyService, *fakeCompanyRepo, *fakeJobRepo, *fakeAppRepo, *fakeMedia) {
	companies := newFakeCompanyRepo()
	jobs := newFakeJobRepo()
	apps := newFakeAppRepo()
	media := &fakeMedia{}
	return NewCompanyService(companies, jobs, apps, media), companies, jobs, apps, media
}

func validCompanyInput() CreateCompanyInput {
	return CreateCompanyInput{
		Name:        "Initech",
		Description: "TPS report automation",
		Industry:    "software",
		Address:     "Austin",
		Employees:   120,
		Email:       "hr@initech.example",
	}
}

func TestCreateCompany(t *testing.T) {
	svc, companies, _, _, media := companyFixture()
	tx := txn.Begin(media)

	created, err := svc.Create(context.Background(), tx, 1, validCompanyInput(), nil)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, int64(1), created.HRID)
	assert.Len(t, companies.companies, 1)
}

func TestCreateSecondCompanyForSameHRConflicts(t *testing.T) {
	svc, _, _, _, media := companyFixture()

	_, err := svc.Create(context.Background(), txn.Begin(media), 1, validCompanyInput(), nil)
	require.NoError(t, err)

	input := validCompanyInput()
	input.Name = "Initrode"
	input.Email = "hr@initrode.example"
	_, err = svc.Create(context.Background(), txn.Begin(media), 1, input, nil)
	assert.Equal(t, http.StatusConflict, apperr.Status(err))
}

func TestCreateCompanyWithTakenNameConflicts(t *testing.T) {
	svc, _, _, _, media := companyFixture()

	_, err := svc.Create(context.Background(), txn.Begin(media), 1, validCompanyInput(), nil)
	require.NoError(t, err)

	input := validCompanyInput()
	input.Email = "other@initech.example"
	_, err = svc.Create(context.Background(), txn.Begin(media), 2, input, nil)
	assert.Equal(t, http.StatusConflict, apperr.Status(err))
}

func TestCreateCompanyRejectsTooFewEmployees(t *testing.T) {
	svc, companies, _, _, media := companyFixture()

	input := validCompanyInput()
	input.Employees = types.MinEmployees - 1
	_, err := svc.Create(context.Background(), txn.Begin(media), 1, input, nil)
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
	assert.Empty(t, companies.companies)
}

func TestCreateCompanyWithLogoStagesBothEffects(t *testing.T) {
	svc, companies, _, _, media := companyFixture()
	tx := txn.Begin(media)

	logo := &Upload{Filename: "logo.png", ContentType: "image/png", Data: []byte("png")}
	created, err := svc.Create(context.Background(), tx, 1, validCompanyInput(), logo)
	require.NoError(t, err)
	require.False(t, created.Logo.IsZero())
	require.Len(t, media.uploads, 1)

	// A later failure in the same request must undo both effects.
	tx.Rollback(context.Background())
	assert.Empty(t, companies.companies)
	assert.Equal(t, []string{media.uploads[0]}, media.removed)
}

func TestUpdateCompanyRequiresDifferentName(t *testing.T) {
	svc, _, _, _, media := companyFixture()
	_, err := svc.Create(context.Background(), txn.Begin(media), 1, validCompanyInput(), nil)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), txn.Begin(media), 1, UpdateCompanyInput{Name: "Initech"}, nil)
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
}

func TestUpdateCompanyReplacesLogo(t *testing.T) {
	svc, _, _, _, media := companyFixture()
	logo := &Upload{Filename: "logo.png", Data: []byte("old")}
	created, err := svc.Create(context.Background(), txn.Begin(media), 1, validCompanyInput(), logo)
	require.NoError(t, err)

	newLogo := &Upload{Filename: "logo2.png", Data: []byte("new")}
	updated, err := svc.Update(context.Background(), txn.Begin(media), 1, UpdateCompanyInput{OldLogoID: created.Logo.ID}, newLogo)
	require.NoError(t, err)
	assert.Equal(t, []string{created.Logo.ID}, media.deleted)
	assert.NotEqual(t, created.Logo.ID, updated.Logo.ID)
}

func TestDeleteCompanyCascades(t *testing.T) {
	svc, companies, jobs, apps, media := companyFixture()
	logo := &Upload{Filename: "logo.png", Data: []byte("png")}
	created, err := svc.Create(context.Background(), txn.Begin(media), 1, validCompanyInput(), logo)
	require.NoError(t, err)

	job1, _ := jobs.Create(context.Background(), types.Job{Title: "Backend", AddedBy: 1})
	job2, _ := jobs.Create(context.Background(), types.Job{Title: "Frontend", AddedBy: 1})
	otherJob, _ := jobs.Create(context.Background(), types.Job{Title: "Other", AddedBy: 2})
	apps.Create(context.Background(), types.Application{JobID: job1.ID, UserID: 5})
	apps.Create(context.Background(), types.Application{JobID: job2.ID, UserID: 6})
	apps.Create(context.Background(), types.Application{JobID: otherJob.ID, UserID: 7})

	require.NoError(t, svc.Delete(context.Background(), 1))

	assert.Empty(t, companies.companies)
	assert.Len(t, jobs.jobs, 1)
	assert.Len(t, apps.apps, 1)
	assert.Contains(t, media.removed, "media/companies/"+created.MediaFolder)
}

func TestDeleteCompanyWithoutCompany(t *testing.T) {
	svc, _, _, _, _ := companyFixture()
	err := svc.Delete(context.Background(), 9)
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))
}

func TestGetCompanyChecksOwnership(t *testing.T) {
	svc, _, _, _, media := companyFixture()
	created, err := svc.Create(context.Background(), txn.Begin(media), 1, validCompanyInput(), nil)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), created.ID, 2)
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))

	company, err := svc.Get(context.Background(), created.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, created.ID, company.ID)
}
