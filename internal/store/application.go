package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/hirehub/apiserver/types"
)

// ApplicationRepository handles persistence for job applications.
type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Get(ctx context.Context, id int64) (types.Application, error) {
	const query = `
		SELECT id, job_id, user_id, technical_skills, soft_skills,
		       resume_id, resume_url, created_at
		FROM applications
		WHERE id = $1`
	var app types.Application
	var techJSON, softJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&app.ID,
		&app.JobID,
		&app.UserID,
		&techJSON,
		&softJSON,
		&app.Resume.ID,
		&app.Resume.URL,
		&app.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Application{}, ErrNotFound
		}
		return types.Application{}, err
	}

	_ = json.Unmarshal(techJSON, &app.TechnicalSkills)
	_ = json.Unmarshal(softJSON, &app.SoftSkills)
	return app, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, app types.Application) (types.Application, error) {
	app.CreatedAt = time.Now()

	techJSON, err := json.Marshal(skillList(app.TechnicalSkills))
	if err != nil {
		return types.Application{}, err
	}
	softJSON, err := json.Marshal(skillList(app.SoftSkills))
	if err != nil {
		return types.Application{}, err
	}

	const query = `
		INSERT INTO applications (job_id, user_id, technical_skills, soft_skills,
					  resume_id, resume_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		app.JobID,
		app.UserID,
		techJSON,
		softJSON,
		app.Resume.ID,
		app.Resume.URL,
		app.CreatedAt,
	).Scan(&app.ID); err != nil {
		return types.Application{}, translateError(err)
	}
	return app, nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM applications WHERE id = $1`
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

// DeleteByJob removes every application submitted to the given job and
// returns the number removed. Zero removals is not an error.
func (r *ApplicationRepository) DeleteByJob(ctx context.Context, jobID int64) (int64, error) {
	const query = `DELETE FROM applications WHERE job_id = $1`
	result, err := r.db.ExecContext(ctx, query, jobID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteByUser removes every application submitted by the given user.
func (r *ApplicationRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	const query = `DELETE FROM applications WHERE user_id = $1`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListByOwner returns all applications across every job posted by the
// given HR user, with the applicant populated. This backs the HR
// applications report.
func (r *ApplicationRepository) ListByOwner(ctx context.Context, hrID int64) ([]types.Application, error) {
	const query = `
		SELECT a.id, a.job_id, a.user_id, a.technical_skills, a.soft_skills,
		       a.resume_id, a.resume_url, a.created_at,
		       u.id, u.first_name, u.last_name, u.email, u.mobile, u.recovery_email,
		       u.role, u.status, u.date_of_birth, u.image_id, u.image_url, u.media_folder,
		       u.email_verified, u.created_at, u.updated_at
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN users u ON u.id = a.user_id
		WHERE j.added_by = $1
		ORDER BY a.id`
	rows, err := r.db.QueryContext(ctx, query, hrID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []types.Application
	for rows.Next() {
		var app types.Application
		var applicant types.User
		var techJSON, softJSON []byte
		if err := rows.Scan(
			&app.ID,
			&app.JobID,
			&app.UserID,
			&techJSON,
			&softJSON,
			&app.Resume.ID,
			&app.Resume.URL,
			&app.CreatedAt,
			&applicant.ID,
			&applicant.FirstName,
			&applicant.LastName,
			&applicant.Email,
			&applicant.Mobile,
			&applicant.RecoveryEmail,
			&applicant.Role,
			&applicant.Status,
			&applicant.DateOfBirth,
			&applicant.Image.ID,
			&applicant.Image.URL,
			&applicant.MediaFolder,
			&applicant.EmailVerified,
			&applicant.CreatedAt,
			&applicant.UpdatedAt,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(techJSON, &app.TechnicalSkills)
		_ = json.Unmarshal(softJSON, &app.SoftSkills)
		app.Applicant = &applicant
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return apps, nil
}
