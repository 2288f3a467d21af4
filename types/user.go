package types

import "time"

// Roles a user account can hold. The role gates which category of
// operations the account may perform; ownership of individual records
// is checked separately.
const (
	RoleApplicant = "applicant"
	RoleCompanyHR = "company_hr"
)

// Presence statuses for a user account.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// ValidRole reports whether role is one of the declared role literals.
func ValidRole(role string) bool {
	return role == RoleApplicant || role == RoleCompanyHR
}

// User represents an account in the system.
type User struct {
	// ID is the unique identifier of the user.
	ID int64 `json:"id" db:"id"`

	// FirstName and LastName form the user's display name.
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`

	// Email is the user's email address. Globally unique.
	Email string `json:"email" db:"email"`

	// Mobile is the user's mobile number. Globally unique.
	Mobile string `json:"mobile" db:"mobile"`

	// RecoveryEmail is an optional secondary address used to look up
	// related accounts.
	RecoveryEmail string `json:"recovery_email,omitempty" db:"recovery_email"`

	// Role indicates the account category: applicant or company_hr.
	Role string `json:"role" db:"role"`

	// Status is the presence status, flipped on sign-in/sign-out.
	Status string `json:"status" db:"status"`

	// DateOfBirth is stored as provided at sign-up.
	DateOfBirth string `json:"date_of_birth,omitempty" db:"date_of_birth"`

	// Image references the user's profile picture in the media host,
	// empty when none was uploaded.
	Image MediaRef `json:"image" db:"image"`

	// MediaFolder is the per-user folder identifier under which the
	// user's files live in the media host. Empty until a first upload.
	MediaFolder string `json:"-" db:"media_folder"`

	// EmailVerified is set once the verification link was followed.
	EmailVerified bool `json:"email_verified" db:"email_verified"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// Never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// OTPHash stores the bcrypt hash of the last issued password-reset
	// code, empty when no reset is in flight.
	OTPHash string `json:"-" db:"otp_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns the display name composed from first and last name.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
