package types

import "time"

// Job location literals.
const (
	LocationOnsite = "onsite"
	LocationRemote = "remote"
	LocationHybrid = "hybrid"
)

// Working time literals.
const (
	TimeFullTime = "full-time"
	TimePartTime = "part-time"
)

// Seniority level literals.
const (
	SeniorityJunior    = "junior"
	SeniorityMid       = "mid"
	SenioritySenior    = "senior"
	SeniorityTeamLead  = "team-lead"
	SeniorityExecutive = "executive"
)

// ValidLocation reports whether v is a declared job location.
func ValidLocation(v string) bool {
	return v == LocationOnsite || v == LocationRemote || v == LocationHybrid
}

// ValidWorkingTime reports whether v is a declared working time.
func ValidWorkingTime(v string) bool {
	return v == TimeFullTime || v == TimePartTime
}

// ValidSeniority reports whether v is a declared seniority level.
func ValidSeniority(v string) bool {
	switch v {
	case SeniorityJunior, SeniorityMid, SenioritySenior, SeniorityTeamLead, SeniorityExecutive:
		return true
	}
	return false
}

// Job represents a posting created by a company's HR account.
type Job struct {
	// ID is the unique identifier of the job.
	ID int64 `json:"id" db:"id"`

	// Title is the position title.
	Title string `json:"title" db:"title"`

	// Location is one of the declared location literals.
	Location string `json:"location" db:"location"`

	// WorkingTime is one of the declared working-time literals.
	WorkingTime string `json:"working_time" db:"working_time"`

	// Seniority is one of the declared seniority literals.
	Seniority string `json:"seniority" db:"seniority"`

	// Description contains the full posting text.
	Description string `json:"description" db:"description"`

	// TechnicalSkills and SoftSkills are the skills asked for.
	TechnicalSkills []string `json:"technical_skills" db:"technical_skills"`
	SoftSkills      []string `json:"soft_skills" db:"soft_skills"`

	// AddedBy is the id of the posting HR user. The HR's company is
	// resolved through this reference, never duplicated on the job.
	AddedBy int64 `json:"added_by" db:"added_by"`

	// Company holds the posting company when the relation was
	// populated on read; nil otherwise.
	Company *Company `json:"company,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
