package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hirehub/apiserver/types"
)

// JobFilter restricts job listings to matching field values. Only the
// fields declared here are filterable; caller-supplied keys outside
// this set are never forwarded to the store.
type JobFilter struct {
	Title       string
	Location    string
	WorkingTime string
	Seniority   string
}

// JobRepository handles persistence for jobs.
type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Get(ctx context.Context, id int64) (types.Job, error) {
	const query = `
		SELECT id, title, location, working_time, seniority, description,
		       technical_skills, soft_skills, added_by, created_at, updated_at
		FROM jobs
		WHERE id = $1`
	var job types.Job
	var techJSON, softJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.Title,
		&job.Location,
		&job.WorkingTime,
		&job.Seniority,
		&job.Description,
		&techJSON,
		&softJSON,
		&job.AddedBy,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Job{}, ErrNotFound
		}
		return types.Job{}, err
	}

	_ = json.Unmarshal(techJSON, &job.TechnicalSkills)
	_ = json.Unmarshal(softJSON, &job.SoftSkills)
	return job, nil
}

// List returns a page of jobs with the posting company populated
// through the added_by -> hr_id relationship, plus the total count.
func (r *JobRepository) List(ctx context.Context, filter JobFilter, offset, limit int) ([]types.Job, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	where, args := buildJobFilter(filter)

	countQuery := `SELECT COUNT(1) FROM jobs j` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`
		SELECT j.id, j.title, j.location, j.working_time, j.seniority, j.description,
		       j.technical_skills, j.soft_skills, j.added_by, j.created_at, j.updated_at,
		       c.id, c.name, c.description, c.industry, c.address, c.employees, c.email,
		       c.hr_id, c.logo_id, c.logo_url, c.media_folder, c.created_at, c.updated_at
		FROM jobs j
		LEFT JOIN companies c ON c.hr_id = j.added_by
		%s
		ORDER BY j.id
		OFFSET $%d LIMIT $%d`, where, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs := make([]types.Job, 0, limit)
	for rows.Next() {
		var job types.Job
		var techJSON, softJSON []byte
		var company types.Company
		var companyID sql.NullInt64
		var name, description, industry, address, email, logoID, logoURL, mediaFolder sql.NullString
		var employees sql.NullInt64
		var hrID sql.NullInt64
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(
			&job.ID,
			&job.Title,
			&job.Location,
			&job.WorkingTime,
			&job.Seniority,
			&job.Description,
			&techJSON,
			&softJSON,
			&job.AddedBy,
			&job.CreatedAt,
			&job.UpdatedAt,
			&companyID,
			&name,
			&description,
			&industry,
			&address,
			&employees,
			&email,
			&hrID,
			&logoID,
			&logoURL,
			&mediaFolder,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, 0, err
		}

		_ = json.Unmarshal(techJSON, &job.TechnicalSkills)
		_ = json.Unmarshal(softJSON, &job.SoftSkills)

		if companyID.Valid {
			company.ID = companyID.Int64
			company.Name = name.String
			company.Description = description.String
			company.Industry = industry.String
			company.Address = address.String
			company.Employees = int(employees.Int64)
			company.Email = email.String
			company.HRID = hrID.Int64
			company.Logo = types.MediaRef{ID: logoID.String, URL: logoURL.String}
			company.MediaFolder = mediaFolder.String
			company.CreatedAt = createdAt.Time
			company.UpdatedAt = updatedAt.Time
			job.Company = &company
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// ListByOwner returns all jobs posted by the given HR user.
func (r *JobRepository) ListByOwner(ctx context.Context, hrID int64) ([]types.Job, error) {
	const query = `
		SELECT id, title, location, working_time, seniority, description,
		       technical_skills, soft_skills, added_by, created_at, updated_at
		FROM jobs
		WHERE added_by = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, hrID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []types.Job
	for rows.Next() {
		var job types.Job
		var techJSON, softJSON []byte
		if err := rows.Scan(
			&job.ID,
			&job.Title,
			&job.Location,
			&job.WorkingTime,
			&job.Seniority,
			&job.Description,
			&techJSON,
			&softJSON,
			&job.AddedBy,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(techJSON, &job.TechnicalSkills)
		_ = json.Unmarshal(softJSON, &job.SoftSkills)
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *JobRepository) Create(ctx context.Context, job types.Job) (types.Job, error) {
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now

	techJSON, err := json.Marshal(skillList(job.TechnicalSkills))
	if err != nil {
		return types.Job{}, err
	}
	softJSON, err := json.Marshal(skillList(job.SoftSkills))
	if err != nil {
		return types.Job{}, err
	}

	const query = `
		INSERT INTO jobs (title, location, working_time, seniority, description,
				  technical_skills, soft_skills, added_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		job.Title,
		job.Location,
		job.WorkingTime,
		job.Seniority,
		job.Description,
		techJSON,
		softJSON,
		job.AddedBy,
		job.CreatedAt,
		job.UpdatedAt,
	).Scan(&job.ID); err != nil {
		return types.Job{}, translateError(err)
	}
	return job, nil
}

func (r *JobRepository) Update(ctx context.Context, job types.Job) (types.Job, error) {
	job.UpdatedAt = time.Now()

	techJSON, err := json.Marshal(skillList(job.TechnicalSkills))
	if err != nil {
		return types.Job{}, err
	}
	softJSON, err := json.Marshal(skillList(job.SoftSkills))
	if err != nil {
		return types.Job{}, err
	}

	const query = `
		UPDATE jobs
		SET title = $1,
			location = $2,
			working_time = $3,
			seniority = $4,
			description = $5,
			technical_skills = $6,
			soft_skills = $7,
			updated_at = $8
		WHERE id = $9`
	result, err := r.db.ExecContext(
		ctx,
		query,
		job.Title,
		job.Location,
		job.WorkingTime,
		job.Seniority,
		job.Description,
		techJSON,
		softJSON,
		job.UpdatedAt,
		job.ID,
	)
	if err != nil {
		return types.Job{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Job{}, err
	}
	if affected == 0 {
		return types.Job{}, ErrNotFound
	}
	return job, nil
}

func (r *JobRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM jobs WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByOwner removes every job posted by the given HR user and
// returns the number removed.
func (r *JobRepository) DeleteByOwner(ctx context.Context, hrID int64) (int64, error) {
	const query = `DELETE FROM jobs WHERE added_by = $1`
	result, err := r.db.ExecContext(ctx, query, hrID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func buildJobFilter(filter JobFilter) (string, []any) {
	var clauses []string
	var args []any

	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("j.%s = $%d", column, len(args)))
	}

	if filter.Title != "" {
		args = append(args, "%"+filter.Title+"%")
		clauses = append(clauses, fmt.Sprintf("j.title ILIKE $%d", len(args)))
	}
	add("location", filter.Location)
	add("working_time", filter.WorkingTime)
	add("seniority", filter.Seniority)

	if len(clauses) == 0 {
		return "", nil
	}
	return "\n\t\tWHERE " + strings.Join(clauses, " AND "), args
}

// skillList normalizes a nil slice to an empty one so JSON columns
// never hold null.
func skillList(skills []string) []string {
	if skills == nil {
		return []string{}
	}
	return skills
}
