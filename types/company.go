package types

import "time"

// MinEmployees is the smallest employee count a company may declare.
const MinEmployees = 10

// Company represents an employer owned by exactly one HR account.
type Company struct {
	// ID is the unique identifier of the company.
	ID int64 `json:"id" db:"id"`

	// Name is the company name. Globally unique.
	Name string `json:"name" db:"name"`

	// Description is a free-form blurb about the company.
	Description string `json:"description,omitempty" db:"description"`

	// Industry the company operates in.
	Industry string `json:"industry,omitempty" db:"industry"`

	// Address is the company's physical address.
	Address string `json:"address,omitempty" db:"address"`

	// Employees is the declared employee count, at least MinEmployees.
	Employees int `json:"employees" db:"employees"`

	// Email is the company contact address. Globally unique.
	Email string `json:"email" db:"email"`

	// HRID is the id of the owning HR user. One company per HR.
	HRID int64 `json:"hr_id" db:"hr_id"`

	// Logo references the company logo in the media host, empty when
	// none was uploaded.
	Logo MediaRef `json:"logo" db:"logo"`

	// MediaFolder is the folder identifier under which the company's
	// files (logo, job resumes) live in the media host.
	MediaFolder string `json:"-" db:"media_folder"`

	// Jobs holds the company's job postings when the relation was
	// populated on read; nil otherwise.
	Jobs []Job `json:"jobs,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
