package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hirehub/apiserver/internal/apperr"
	"github.com/hirehub/apiserver/internal/store"
	"github.com/hirehub/apiserver/internal/txn"
	"github.com/hirehub/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByEmailOrMobile(ctx context.Context, email, mobile string) (types.User, error)
	ListByRecoveryEmail(ctx context.Context, recoveryEmail string) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	MarkEmailVerified(ctx context.Context, email string) (types.User, error)
	Delete(ctx context.Context, id int64) error
}

// CompanyPurger removes an HR's company and everything under it.
// *CompanyService satisfies it.
type CompanyPurger interface {
	Delete(ctx context.Context, hrID int64) error
}

// UserApplicationRepository is the slice of application persistence the
// account cascade needs.
type UserApplicationRepository interface {
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}

// UserService encapsulates account use-cases: registration, sessions,
// email verification, password recovery and account removal.
type UserService struct {
	repo         UserRepository
	companies    CompanyPurger
	apps         UserApplicationRepository
	media        Media
	mailer       MailSender
	verifySecret []byte
}

func NewUserService(repo UserRepository, companies CompanyPurger, apps UserApplicationRepository, media Media, mailer MailSender, verifySecret []byte) *UserService {
	return &UserService{
		repo:         repo,
		companies:    companies,
		apps:         apps,
		media:        media,
		mailer:       mailer,
		verifySecret: verifySecret,
	}
}

// SignUpInput carries the fields accepted at registration.
type SignUpInput struct {
	FirstName     string
	LastName      string
	Email         string
	Mobile        string
	RecoveryEmail string
	Role          string
	DateOfBirth   string
	Password      string
}

// SignUp registers a new account and queues its verification email.
// The created record and any profile image upload are staged on tx, so
// a failure to queue the email undoes both.
func (s *UserService) SignUp(ctx context.Context, tx *txn.Tx, input SignUpInput, image *Upload) (types.User, error) {
	if !types.ValidRole(input.Role) {
		return types.User{}, apperr.New(apperr.Validation, "role should be applicant or company_hr")
	}
	if input.Password == "" {
		return types.User{}, apperr.New(apperr.Validation, "password is required")
	}

	if _, err := s.repo.GetByEmailOrMobile(ctx, input.Email, input.Mobile); err == nil {
		return types.User{}, apperr.New(apperr.Conflict, "user already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, apperr.Wrap(apperr.Internal, "failed to sign up", err)
	}

	user := types.User{
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Email:         input.Email,
		Mobile:        input.Mobile,
		RecoveryEmail: input.RecoveryEmail,
		Role:          input.Role,
		Status:        types.StatusOffline,
		DateOfBirth:   input.DateOfBirth,
		PasswordHash:  string(hash),
	}

	if image != nil {
		user.MediaFolder = uuid.NewString()
		folder := s.media.UserFolder(user.MediaFolder)
		ref, err := s.media.Upload(ctx, folder, image.Filename, image.Reader(), image.Size(), image.ContentType)
		if err != nil {
			return types.User{}, apperr.Wrap(apperr.Upstream, "failed to upload profile image", err)
		}
		tx.StageUpload(folder)
		user.Image = ref
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, apperr.Wrap(apperr.Conflict, "user already exists", err)
		}
		return types.User{}, apperr.Wrap(apperr.Internal, "failed to sign up", err)
	}
	tx.StageRecord("user", created.ID, func(ctx context.Context) error {
		return s.repo.Delete(ctx, created.ID)
	})

	token, err := s.verificationToken(created.Email)
	if err != nil {
		return types.User{}, apperr.Wrap(apperr.Internal, "failed to sign up", err)
	}
	if err := s.mailer.SendVerification(ctx, created.Email, created.FullName(), token); err != nil {
		return types.User{}, apperr.Wrap(apperr.Upstream, "failed to send the verification email", err)
	}

	return created, nil
}

// verificationToken signs a short-lived token binding the verification
// link to the account's email.
func (s *UserService) verificationToken(email string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.verifySecret)
}

// VerifyEmail validates the token from the verification link and flips
// the account's verified flag. Verifying twice is a conflict.
func (s *UserService) VerifyEmail(ctx context.Context, token string) (types.User, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.verifySecret, nil
	})
	if err != nil || !parsed.Valid {
		return types.User{}, apperr.New(apperr.Authentication, "invalid verification token")
	}
	claims := parsed.Claims.(*jwt.RegisteredClaims)

	user, err := s.repo.MarkEmailVerified(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.New(apperr.Conflict, "account is already verified or does not exist")
		}
		return types.User{}, apperr.Wrap(apperr.Internal, "failed to verify the account", err)
	}
	return user, nil
}

// SignInInput identifies an account by email or mobile plus password.
type SignInInput struct {
	Email    string
	Mobile   string
	Password string
}

// SignIn checks the credentials and marks the account online.
func (s *UserService) SignIn(ctx context.Context, input SignInInput) (types.User, error) {
	user, err := s.repo.GetByEmailOrMobile(ctx, input.Email, input.Mobile)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.New(apperr.Authentication, "invalid credentials")
		}
		return types.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return types.User{}, apperr.New(apperr.Authentication, "invalid credentials")
	}

	user.Status = types.StatusOnline
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return types.User{}, apperr.Wrap(apperr.Internal, "failed to sign in", err)
	}
	return updated, nil
}

// SignOut marks the account offline.
func (s *UserService) SignOut(ctx context.Context, userID int64) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.NotFound, "user not found")
		}
		return err
	}
	user.Status = types.StatusOffline
	if _, err := s.repo.Update(ctx, user); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to sign out", err)
	}
	return nil
}

// Account returns the acting user's own record.
func (s *UserService) Account(ctx context.Context, userID int64) (types.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.New(apperr.NotFound, "user not found")
		}
		return types.User{}, err
	}
	return user, nil
}

// PublicProfile is the subset of a user record any signed-in user may
// see about another account.
type PublicProfile struct {
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Mobile      string         `json:"mobile"`
	DateOfBirth string         `json:"date_of_birth,omitempty"`
	Image       types.MediaRef `json:"image"`
}

// Profile returns another user's public profile.
func (s *UserService) Profile(ctx context.Context, userID int64) (PublicProfile, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return PublicProfile{}, apperr.New(apperr.NotFound, "user not found")
		}
		return PublicProfile{}, err
	}
	return PublicProfile{
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Mobile:      user.Mobile,
		DateOfBirth: user.DateOfBirth,
		Image:       user.Image,
	}, nil
}

// AccountsByRecoveryEmail lists every account registered with the
// given recovery address.
func (s *UserService) AccountsByRecoveryEmail(ctx context.Context, recoveryEmail string) ([]types.User, error) {
	users, err := s.repo.ListByRecoveryEmail(ctx, recoveryEmail)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to fetch accounts", err)
	}
	if len(users) == 0 {
		return nil, apperr.New(apperr.NotFound, "no accounts use this recovery email")
	}
	return users, nil
}

// UpdateAccountInput carries the fields accepted at account update.
// Zero-valued fields keep their stored values except Email and Mobile,
// which when set must differ from the old value.
type UpdateAccountInput struct {
	FirstName     string
	LastName      string
	Email         string
	Mobile        string
	RecoveryEmail string
	DateOfBirth   string

	// OldImageID, when set, requests a profile image replacement: the
	// old object is deleted and the attached upload takes its place.
	OldImageID string
}

// UpdateAccount modifies the acting user's record.
func (s *UserService) UpdateAccount(ctx context.Context, tx *txn.Tx, userID int64, input UpdateAccountInput, image *Upload) (types.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.New(apperr.NotFound, "user not found")
		}
		return types.User{}, err
	}

	if input.Email != "" {
		if input.Email == user.Email {
			return types.User{}, apperr.New(apperr.Validation, "new email should be different from the old one")
		}
		user.Email = input.Email
	}
	if input.Mobile != "" {
		if input.Mobile == user.Mobile {
			return types.User{}, apperr.New(apperr.Validation, "new mobile number should be different from the old one")
		}
		user.Mobile = input.Mobile
	}
	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.RecoveryEmail != "" {
		user.RecoveryEmail = input.RecoveryEmail
	}
	if input.DateOfBirth != "" {
		user.DateOfBirth = input.DateOfBirth
	}

	if input.OldImageID != "" {
		if image == nil {
			return types.User{}, apperr.New(apperr.Validation, "a new image file is required to replace the old one")
		}
		if err := s.media.Delete(ctx, input.OldImageID); err != nil {
			return types.User{}, apperr.Wrap(apperr.Upstream, "failed to replace profile image", err)
		}
		if user.MediaFolder == "" {
			user.MediaFolder = uuid.NewString()
		}
		folder := s.media.UserFolder(user.MediaFolder)
		ref, err := s.media.Upload(ctx, folder, image.Filename, image.Reader(), image.Size(), image.ContentType)
		if err != nil {
			return types.User{}, apperr.Wrap(apperr.Upstream, "failed to replace profile image", err)
		}
		tx.StageUpload(folder)
		user.Image = ref
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, apperr.Wrap(apperr.Conflict, "email or mobile already in use", err)
		}
		return types.User{}, apperr.Wrap(apperr.Internal, "failed to update account", err)
	}
	return updated, nil
}

// UpdatePassword replaces the password after checking the current one.
func (s *UserService) UpdatePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.NotFound, "user not found")
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return apperr.New(apperr.Authentication, "old password is incorrect")
	}
	if newPassword == "" || newPassword == oldPassword {
		return apperr.New(apperr.Validation, "new password should be different from the old one")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to update password", err)
	}
	user.PasswordHash = string(hash)
	if _, err := s.repo.Update(ctx, user); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to update password", err)
	}
	return nil
}

// ForgotPassword issues a one-time reset code and queues it by email.
// Only the bcrypt hash of the code is stored.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.NotFound, "user not found")
		}
		return err
	}

	otp, err := generateOTP()
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to issue a reset code", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to issue a reset code", err)
	}
	user.OTPHash = string(hash)
	if _, err := s.repo.Update(ctx, user); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to issue a reset code", err)
	}

	if err := s.mailer.SendOTP(ctx, user.Email, user.FullName(), otp); err != nil {
		return apperr.Wrap(apperr.Upstream, "failed to send the reset code", err)
	}
	return nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ResetPassword redeems a reset code for a new password. The stored
// code hash is cleared whether or not a new reset follows.
func (s *UserService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.NotFound, "user not found")
		}
		return err
	}
	if user.OTPHash == "" {
		return apperr.New(apperr.Authentication, "no reset code was requested for this account")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.OTPHash), []byte(otp)); err != nil {
		return apperr.New(apperr.Authentication, "reset code is incorrect")
	}
	if newPassword == "" {
		return apperr.New(apperr.Validation, "password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to reset password", err)
	}
	user.PasswordHash = string(hash)
	user.OTPHash = ""
	if _, err := s.repo.Update(ctx, user); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to reset password", err)
	}
	return nil
}

// DeleteAccount removes the account and everything it owns. For an HR
// that includes the company cascade; for everyone their applications
// and their media folder.
func (s *UserService) DeleteAccount(ctx context.Context, userID int64) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.NotFound, "user not found")
		}
		return err
	}

	if user.Role == types.RoleCompanyHR {
		if err := s.companies.Delete(ctx, userID); err != nil {
			var ae *apperr.Error
			if !errors.As(err, &ae) || ae.Kind != apperr.NotFound {
				return err
			}
		}
	}

	if _, err := s.apps.DeleteByUser(ctx, userID); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete account", err)
	}
	if err := s.repo.Delete(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.Wrap(apperr.Internal, "failed to delete account", err)
	}

	if user.MediaFolder != "" {
		if err := s.media.DeletePrefix(ctx, s.media.UserRoot(user.MediaFolder)); err != nil {
			return apperr.Wrap(apperr.Upstream, "failed to remove account files", err)
		}
	}
	return nil
}
