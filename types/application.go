package types

import "time"

// Application represents one applicant's submission to a job.
// Applications are created once and never updated; they are removed
// when their job or their applicant's account is deleted.
type Application struct {
	// ID is the unique identifier of the application.
	ID int64 `json:"id" db:"id"`

	// JobID references the job applied to.
	JobID int64 `json:"job_id" db:"job_id"`

	// UserID references the applying user.
	UserID int64 `json:"user_id" db:"user_id"`

	// TechnicalSkills and SoftSkills are the skills the applicant
	// submitted with the application.
	TechnicalSkills []string `json:"technical_skills" db:"technical_skills"`
	SoftSkills      []string `json:"soft_skills" db:"soft_skills"`

	// Resume references the uploaded resume in the media host, empty
	// when none was attached.
	Resume MediaRef `json:"resume" db:"resume"`

	// Applicant holds the applying user when the relation was
	// populated on read; nil otherwise.
	Applicant *User `json:"applicant,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
