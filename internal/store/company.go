package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hirehub/apiserver/types"
)

const companyColumns = `id, name, description, industry, address, employees, email, hr_id,
		       logo_id, logo_url, media_folder, created_at, updated_at`

// CompanyRepository handles persistence for companies.
type CompanyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func scanCompany(row *sql.Row) (types.Company, error) {
	var company types.Company
	err := row.Scan(
		&company.ID,
		&company.Name,
		&company.Description,
		&company.Industry,
		&company.Address,
		&company.Employees,
		&company.Email,
		&company.HRID,
		&company.Logo.ID,
		&company.Logo.URL,
		&company.MediaFolder,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Company{}, ErrNotFound
		}
		return types.Company{}, err
	}
	return company, nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (types.Company, error) {
	const query = `
		SELECT ` + companyColumns + `
		FROM companies
		WHERE id = $1`
	return scanCompany(r.db.QueryRowContext(ctx, query, id))
}

func (r *CompanyRepository) GetByHR(ctx context.Context, hrID int64) (types.Company, error) {
	const query = `
		SELECT ` + companyColumns + `
		FROM companies
		WHERE hr_id = $1`
	return scanCompany(r.db.QueryRowContext(ctx, query, hrID))
}

func (r *CompanyRepository) GetByName(ctx context.Context, name string) (types.Company, error) {
	const query = `
		SELECT ` + companyColumns + `
		FROM companies
		WHERE name = $1`
	return scanCompany(r.db.QueryRowContext(ctx, query, name))
}

// GetByNameOrEmail is the fast-path uniqueness pre-check used before a
// create; the unique indexes remain the authority.
func (r *CompanyRepository) GetByNameOrEmail(ctx context.Context, name, email string) (types.Company, error) {
	const query = `
		SELECT ` + companyColumns + `
		FROM companies
		WHERE name = $1 OR email = $2`
	return scanCompany(r.db.QueryRowContext(ctx, query, name, email))
}

func (r *CompanyRepository) Create(ctx context.Context, company types.Company) (types.Company, error) {
	now := time.Now()
	company.CreatedAt = now
	company.UpdatedAt = now

	const query = `
		INSERT INTO companies (name, description, industry, address, employees, email, hr_id,
				       logo_id, logo_url, media_folder, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		company.Name,
		company.Description,
		company.Industry,
		company.Address,
		company.Employees,
		company.Email,
		company.HRID,
		company.Logo.ID,
		company.Logo.URL,
		company.MediaFolder,
		company.CreatedAt,
		company.UpdatedAt,
	).Scan(&company.ID); err != nil {
		return types.Company{}, translateError(err)
	}
	return company, nil
}

func (r *CompanyRepository) Update(ctx context.Context, company types.Company) (types.Company, error) {
	company.UpdatedAt = time.Now()

	const query = `
		UPDATE companies
		SET name = $1,
			description = $2,
			industry = $3,
			address = $4,
			employees = $5,
			email = $6,
			logo_id = $7,
			logo_url = $8,
			media_folder = $9,
			updated_at = $10
		WHERE id = $11`
	result, err := r.db.ExecContext(
		ctx,
		query,
		company.Name,
		company.Description,
		company.Industry,
		company.Address,
		company.Employees,
		company.Email,
		company.Logo.ID,
		company.Logo.URL,
		company.MediaFolder,
		company.UpdatedAt,
		company.ID,
	)
	if err != nil {
		return types.Company{}, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Company{}, err
	}
	if affected == 0 {
		return types.Company{}, ErrNotFound
	}
	return company, nil
}

// SetMediaFolder assigns the company's media folder identifier. Used
// when the folder is minted lazily by the first upload.
func (r *CompanyRepository) SetMediaFolder(ctx context.Context, id int64, folder string) error {
	const query = `
		UPDATE companies
		SET media_folder = $1,
			updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, folder, time.Now(), id)
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

func (r *CompanyRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM companies WHERE id = $1`
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
