package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hirehub/apiserver/internal/apperr"
	"github.com/hirehub/apiserver/internal/store"
	"github.com/hirehub/apiserver/internal/txn"
	"github.com/hirehub/apiserver/types"
)

// CompanyRepository defines persistence operations for companies.
type CompanyRepository interface {
	GetByID(ctx context.Context, id int64) (types.Company, error)
	GetByHR(ctx context.Context, hrID int64) (types.Company, error)
	GetByName(ctx context.Context, name string) (types.Company, error)
	GetByNameOrEmail(ctx context.Context, name, email string) (types.Company, error)
	Create(ctx context.Context, company types.Company) (types.Company, error)
	Update(ctx context.Context, company types.Company) (types.Company, error)
	Delete(ctx context.Context, id int64) error
}

// CompanyJobRepository is the slice of job persistence the company
// cascade needs.
type CompanyJobRepository interface {
	ListByOwner(ctx context.Context, hrID int64) ([]types.Job, error)
	DeleteByOwner(ctx context.Context, hrID int64) (int64, error)
}

// CompanyApplicationRepository is the slice of application persistence
// the company module needs.
type CompanyApplicationRepository interface {
	DeleteByJob(ctx context.Context, jobID int64) (int64, error)
	ListByOwner(ctx context.Context, hrID int64) ([]types.Application, error)
}

// CompanyService encapsulates company use-cases.
type CompanyService struct {
	repo  CompanyRepository
	jobs  CompanyJobRepository
	apps  CompanyApplicationRepository
	media Media
}

func NewCompanyService(repo CompanyRepository, jobs CompanyJobRepository, apps CompanyApplicationRepository, media Media) *CompanyService {
	return &CompanyService{
		repo:  repo,
		jobs:  jobs,
		apps:  apps,
		media: media,
	}
}

// CreateCompanyInput carries the fields accepted at company creation.
type CreateCompanyInput struct {
	Name        string
	Description string
	Industry    string
	Address     string
	Employees   int
	Email       string
}

// Create registers a new company for the acting HR. At most one
// company per HR; name and email must be unused; the logo upload is
// optional. The created record and any upload are staged on tx so a
// later failure in the same request rolls them back.
func (s *CompanyService) Create(ctx context.Context, tx *txn.Tx, hrID int64, input CreateCompanyInput, logo *Upload) (types.Company, error) {
	if _, err := s.repo.GetByHR(ctx, hrID); err == nil {
		return types.Company{}, apperr.New(apperr.Conflict, "you cannot add more than one company")
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Company{}, err
	}

	if _, err := s.repo.GetByNameOrEmail(ctx, input.Name, input.Email); err == nil {
		return types.Company{}, apperr.New(apperr.Conflict, "company already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Company{}, err
	}

	if input.Employees < types.MinEmployees {
		return types.Company{}, apperr.New(apperr.Validation, "company should have at least 10 employees")
	}

	company := types.Company{
		Name:        input.Name,
		Description: input.Description,
		Industry:    input.Industry,
		Address:     input.Address,
		Employees:   input.Employees,
		Email:       input.Email,
		HRID:        hrID,
	}

	if logo != nil {
		company.MediaFolder = uuid.NewString()
		folder := s.media.CompanyLogoFolder(company.MediaFolder)
		ref, err := s.media.Upload(ctx, folder, logo.Filename, logo.Reader(), logo.Size(), logo.ContentType)
		if err != nil {
			return types.Company{}, apperr.Wrap(apperr.Upstream, "failed to upload company logo", err)
		}
		tx.StageUpload(folder)
		company.Logo = ref
	}

	created, err := s.repo.Create(ctx, company)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.Company{}, apperr.Wrap(apperr.Conflict, "company already exists", err)
		}
		return types.Company{}, apperr.Wrap(apperr.Internal, "failed to create company", err)
	}
	tx.StageRecord("company", created.ID, func(ctx context.Context) error {
		return s.repo.Delete(ctx, created.ID)
	})

	return created, nil
}

// UpdateCompanyInput carries the fields accepted at company update.
// Zero-valued fields keep their stored values except Name and Email,
// which when set must differ from the old value.
type UpdateCompanyInput struct {
	Name        string
	Description string
	Industry    string
	Address     string
	Employees   int
	Email       string

	// OldLogoID, when set, requests a logo replacement: the old
	// object is deleted and the attached upload takes its place.
	OldLogoID string
}

// Update modifies the acting HR's company. Only the owning HR reaches
// this path; the record is looked up by owner, so there is nothing
// else to check.
func (s *CompanyService) Update(ctx context.Context, tx *txn.Tx, hrID int64, input UpdateCompanyInput, logo *Upload) (types.Company, error) {
	company, err := s.repo.GetByHR(ctx, hrID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Company{}, apperr.New(apperr.NotFound, "company not found")
		}
		return types.Company{}, err
	}

	if input.Name != "" {
		if input.Name == company.Name {
			return types.Company{}, apperr.New(apperr.Validation, "new company name should be different from the old one")
		}
		company.Name = input.Name
	}
	if input.Email != "" {
		if input.Email == company.Email {
			return types.Company{}, apperr.New(apperr.Validation, "new company email should be different from the old one")
		}
		company.Email = input.Email
	}
	if input.Description != "" {
		company.Description = input.Description
	}
	if input.Industry != "" {
		company.Industry = input.Industry
	}
	if input.Address != "" {
		company.Address = input.Address
	}
	if input.Employees != 0 {
		if input.Employees < types.MinEmployees {
			return types.Company{}, apperr.New(apperr.Validation, "company should have at least 10 employees")
		}
		company.Employees = input.Employees
	}

	if input.OldLogoID != "" {
		if logo == nil {
			return types.Company{}, apperr.New(apperr.Validation, "a new logo file is required to replace the old one")
		}
		if err := s.media.Delete(ctx, input.OldLogoID); err != nil {
			return types.Company{}, apperr.Wrap(apperr.Upstream, "failed to replace company logo", err)
		}
		if company.MediaFolder == "" {
			company.MediaFolder = uuid.NewString()
		}
		folder := s.media.CompanyLogoFolder(company.MediaFolder)
		ref, err := s.media.Upload(ctx, folder, logo.Filename, logo.Reader(), logo.Size(), logo.ContentType)
		if err != nil {
			return types.Company{}, apperr.Wrap(apperr.Upstream, "failed to replace company logo", err)
		}
		tx.StageUpload(folder)
		company.Logo = ref
	}

	updated, err := s.repo.Update(ctx, company)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.Company{}, apperr.Wrap(apperr.Conflict, "company already exists", err)
		}
		return types.Company{}, apperr.Wrap(apperr.Internal, "failed to update company", err)
	}
	return updated, nil
}

// Delete removes the acting HR's company and cascades: applications to
// each of its jobs first, then the jobs, then the company, then the
// company's media folder. The steps are not atomic; a crash mid-way
// can leave later steps undone, never earlier ones.
func (s *CompanyService) Delete(ctx context.Context, hrID int64) error {
	company, err := s.repo.GetByHR(ctx, hrID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.NotFound, "company not found")
		}
		return err
	}

	jobs, err := s.jobs.ListByOwner(ctx, hrID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete company", err)
	}
	for _, job := range jobs {
		if _, err := s.apps.DeleteByJob(ctx, job.ID); err != nil {
			return apperr.Wrap(apperr.Internal, "failed to delete company", err)
		}
	}
	if _, err := s.jobs.DeleteByOwner(ctx, hrID); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete company", err)
	}

	if err := s.repo.Delete(ctx, company.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.Wrap(apperr.Internal, "failed to delete company", err)
	}

	if company.MediaFolder != "" {
		if err := s.media.DeletePrefix(ctx, s.media.CompanyRoot(company.MediaFolder)); err != nil {
			return apperr.Wrap(apperr.Upstream, "failed to remove company files", err)
		}
	}
	return nil
}

// Get returns the acting HR's company by id with its jobs populated.
func (s *CompanyService) Get(ctx context.Context, companyID, hrID int64) (types.Company, error) {
	company, err := s.repo.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Company{}, apperr.New(apperr.NotFound, "company not found")
		}
		return types.Company{}, err
	}
	if company.HRID != hrID {
		return types.Company{}, apperr.New(apperr.NotFound, "company not found")
	}

	jobs, err := s.jobs.ListByOwner(ctx, company.HRID)
	if err != nil {
		return types.Company{}, apperr.Wrap(apperr.Internal, "failed to fetch company", err)
	}
	company.Jobs = jobs
	return company, nil
}

// SearchByName finds a company by exact name.
func (s *CompanyService) SearchByName(ctx context.Context, name string) (types.Company, error) {
	company, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Company{}, apperr.New(apperr.NotFound, "company not found")
		}
		return types.Company{}, err
	}
	return company, nil
}

// ApplicationsReport returns every application across all jobs posted
// by the acting HR, applicants populated.
func (s *CompanyService) ApplicationsReport(ctx context.Context, hrID int64) ([]types.Application, error) {
	if _, err := s.repo.GetByHR(ctx, hrID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "company not found")
		}
		return nil, err
	}
	apps, err := s.apps.ListByOwner(ctx, hrID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to fetch applications", err)
	}
	return apps, nil
}
