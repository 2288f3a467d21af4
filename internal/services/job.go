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

// JobRepository defines persistence operations for jobs.
type JobRepository interface {
	Get(ctx context.Context, id int64) (types.Job, error)
	List(ctx context.Context, filter store.JobFilter, offset, limit int) ([]types.Job, int, error)
	ListByOwner(ctx context.Context, hrID int64) ([]types.Job, error)
	Create(ctx context.Context, job types.Job) (types.Job, error)
	Update(ctx context.Context, job types.Job) (types.Job, error)
	Delete(ctx context.Context, id int64) error
}

// JobCompanyRepository is the slice of company persistence the job
// module needs to resolve the posting company.
type JobCompanyRepository interface {
	GetByHR(ctx context.Context, hrID int64) (types.Company, error)
	GetByName(ctx context.Context, name string) (types.Company, error)
	SetMediaFolder(ctx context.Context, companyID int64, folder string) error
}

// JobApplicationRepository is the slice of application persistence the
// job module needs.
type JobApplicationRepository interface {
	Create(ctx context.Context, app types.Application) (types.Application, error)
	Delete(ctx context.Context, id int64) error
	DeleteByJob(ctx context.Context, jobID int64) (int64, error)
}

// JobService encapsulates job and application use-cases.
type JobService struct {
	repo      JobRepository
	companies JobCompanyRepository
	apps      JobApplicationRepository
	media     Media
}

func NewJobService(repo JobRepository, companies JobCompanyRepository, apps JobApplicationRepository, media Media) *JobService {
	return &JobService{
		repo:      repo,
		companies: companies,
		apps:      apps,
		media:     media,
	}
}

// JobInput carries the fields accepted when posting or updating a job.
type JobInput struct {
	Title           string
	Location        string
	WorkingTime     string
	Seniority       string
	Description     string
	TechnicalSkills []string
	SoftSkills      []string
}

func validateJobInput(input JobInput) error {
	if !types.ValidLocation(input.Location) {
		return apperr.New(apperr.Validation, "job location should be onsite, remote or hybrid")
	}
	if !types.ValidWorkingTime(input.WorkingTime) {
		return apperr.New(apperr.Validation, "working time should be full-time or part-time")
	}
	if !types.ValidSeniority(input.Seniority) {
		return apperr.New(apperr.Validation, "seniority should be junior, mid, senior, team-lead or executive")
	}
	return nil
}

// Create posts a job owned by the acting HR. The created record is
// staged on tx for rollback should the request fail later.
func (s *JobService) Create(ctx context.Context, tx *txn.Tx, hrID int64, input JobInput) (types.Job, error) {
	if err := validateJobInput(input); err != nil {
		return types.Job{}, err
	}

	created, err := s.repo.Create(ctx, types.Job{
		Title:           input.Title,
		Location:        input.Location,
		WorkingTime:     input.WorkingTime,
		Seniority:       input.Seniority,
		Description:     input.Description,
		TechnicalSkills: input.TechnicalSkills,
		SoftSkills:      input.SoftSkills,
		AddedBy:         hrID,
	})
	if err != nil {
		return types.Job{}, apperr.Wrap(apperr.Internal, "failed to create job", err)
	}
	tx.StageRecord("job", created.ID, func(ctx context.Context) error {
		return s.repo.Delete(ctx, created.ID)
	})

	return created, nil
}

// Update modifies a job. Ownership is an equality check between the
// acting HR and the job's added_by reference, not a role check.
func (s *JobService) Update(ctx context.Context, jobID, hrID int64, input JobInput) (types.Job, error) {
	job, err := s.repo.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Job{}, apperr.New(apperr.NotFound, "job not found")
		}
		return types.Job{}, err
	}
	if job.AddedBy != hrID {
		return types.Job{}, apperr.New(apperr.NotFound, "job not found")
	}

	if err := validateJobInput(input); err != nil {
		return types.Job{}, err
	}

	job.Title = input.Title
	job.Location = input.Location
	job.WorkingTime = input.WorkingTime
	job.Seniority = input.Seniority
	job.Description = input.Description
	job.TechnicalSkills = input.TechnicalSkills
	job.SoftSkills = input.SoftSkills

	updated, err := s.repo.Update(ctx, job)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Job{}, apperr.New(apperr.NotFound, "job not found")
		}
		return types.Job{}, apperr.Wrap(apperr.Internal, "failed to update job", err)
	}
	return updated, nil
}

// Delete removes a job owned by the acting HR, its applications, and
// its resume folder in the media host.
func (s *JobService) Delete(ctx context.Context, jobID, hrID int64) error {
	job, err := s.repo.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.NotFound, "job not found")
		}
		return err
	}
	if job.AddedBy != hrID {
		return apperr.New(apperr.NotFound, "job not found")
	}

	if _, err := s.apps.DeleteByJob(ctx, jobID); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete job", err)
	}
	if err := s.repo.Delete(ctx, jobID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.Wrap(apperr.Internal, "failed to delete job", err)
	}

	company, err := s.companies.GetByHR(ctx, hrID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return apperr.Wrap(apperr.Internal, "failed to delete job", err)
	}
	if company.MediaFolder != "" {
		if err := s.media.DeletePrefix(ctx, s.media.JobRoot(company.MediaFolder, jobID)); err != nil {
			return apperr.Wrap(apperr.Upstream, "failed to remove job files", err)
		}
	}
	return nil
}

// List returns a page of jobs with their posting company populated.
func (s *JobService) List(ctx context.Context, filter store.JobFilter, offset, limit int) ([]types.Job, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, filter, offset, limit)
}

// ListByCompany returns the named company with its jobs populated.
func (s *JobService) ListByCompany(ctx context.Context, companyName string) (types.Company, error) {
	company, err := s.companies.GetByName(ctx, companyName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Company{}, apperr.New(apperr.NotFound, "company not found")
		}
		return types.Company{}, err
	}
	jobs, err := s.repo.ListByOwner(ctx, company.HRID)
	if err != nil {
		return types.Company{}, apperr.Wrap(apperr.Internal, "failed to fetch jobs", err)
	}
	company.Jobs = jobs
	return company, nil
}

// ApplyInput carries the applicant's submitted skills.
type ApplyInput struct {
	TechnicalSkills []string
	SoftSkills      []string
}

// Apply submits an application to a job. The job must exist; the
// resume upload is optional. Both the created record and any upload
// are staged on tx.
func (s *JobService) Apply(ctx context.Context, tx *txn.Tx, jobID, userID int64, input ApplyInput, resume *Upload) (types.Application, error) {
	job, err := s.repo.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Application{}, apperr.New(apperr.NotFound, "job not found")
		}
		return types.Application{}, err
	}

	app := types.Application{
		JobID:           job.ID,
		UserID:          userID,
		TechnicalSkills: input.TechnicalSkills,
		SoftSkills:      input.SoftSkills,
	}

	if resume != nil {
		company, err := s.companies.GetByHR(ctx, job.AddedBy)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return types.Application{}, apperr.New(apperr.NotFound, "company not found")
			}
			return types.Application{}, err
		}
		if company.MediaFolder == "" {
			// The posting company never uploaded anything; its
			// folder comes into being with the first resume.
			company.MediaFolder = uuid.NewString()
			if err := s.companies.SetMediaFolder(ctx, company.ID, company.MediaFolder); err != nil {
				return types.Application{}, apperr.Wrap(apperr.Internal, "failed to upload resume", err)
			}
		}
		folder := s.media.JobResumeFolder(company.MediaFolder, job.ID)
		ref, err := s.media.Upload(ctx, folder, resume.Filename, resume.Reader(), resume.Size(), resume.ContentType)
		if err != nil {
			return types.Application{}, apperr.Wrap(apperr.Upstream, "failed to upload resume", err)
		}
		tx.StageUpload(folder)
		app.Resume = ref
	}

	created, err := s.apps.Create(ctx, app)
	if err != nil {
		return types.Application{}, apperr.Wrap(apperr.Internal, "failed to apply to the job", err)
	}
	tx.StageRecord("application", created.ID, func(ctx context.Context) error {
		return s.apps.Delete(ctx, created.ID)
	})

	return created, nil
}
