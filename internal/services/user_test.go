package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/hirehub/apiserver/internal/apperr"
	"github.com/hirehub/apiserver/internal/txn"
	"github.com/hirehub/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type userFixtureDeps struct {
	svc       *UserService
	users     *fakeUserRepo
	companies *fakeCompanyRepo
	jobs      *fakeJobRepo
	apps      *fakeAppRepo
	media     *fakeMedia
	mailer    *fakeMailer
}

func userFixture() userFixtureDeps {
	users := newFakeUserRepo()
	companies := newFakeCompanyRepo()
	jobs := newFakeJobRepo()
	apps := newFakeAppRepo()
	media := &fakeMedia{}
	mailer := newFakeMailer()
	companyService := NewCompanyService(companies, jobs, apps, media)
	svc := NewUserService(users, companyService, apps, media, mailer, []byte("verify-secret"))
	return userFixtureDeps{svc, users, companies, jobs, apps, media, mailer}
}

func validSignUpInput() SignUpInput {
	return SignUpInput{
		FirstName:     "Pat",
		LastName:      "Doe",
		Email:         "pat@example.com",
		Mobile:        "+15550001111",
		RecoveryEmail: "recovery@example.com",
		Role:          types.RoleApplicant,
		DateOfBirth:   "1992-04-01",
		Password:      "s3cretpass",
	}
}

func TestSignUpCreatesAccountAndQueuesVerification(t *testing.T) {
	f := userFixture()

	created, err := f.svc.SignUp(context.Background(), txn.Begin(f.media), validSignUpInput(), nil)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.EmailVerified)
	assert.Equal(t, types.StatusOffline, created.Status)
	assert.Equal(t, []string{"pat@example.com"}, f.mailer.verifications)
	assert.Equal(t, []string{"Pat Doe"}, f.mailer.names)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("s3cretpass")))
}

func TestSignUpRejectsUnknownRole(t *testing.T) {
	f := userFixture()

	input := validSignUpInput()
	input.Role = "admin"
	_, err := f.svc.SignUp(context.Background(), txn.Begin(f.media), input, nil)
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
	assert.Empty(t, f.users.users)
}

func TestSignUpWithTakenEmailConflicts(t *testing.T) {
	f := userFixture()
	_, err := f.svc.SignUp(context.Background(), txn.Begin(f.media), validSignUpInput(), nil)
	require.NoError(t, err)

	input := validSignUpInput()
	input.Mobile = "+15550002222"
	_, err = f.svc.SignUp(context.Background(), txn.Begin(f.media), input, nil)
	assert.Equal(t, http.StatusConflict, apperr.Status(err))
	assert.Len(t, f.users.users, 1)
}

func TestSignUpMailFailureRollsBackRecordAndUpload(t *testing.T) {
	f := userFixture()
	f.mailer.sendErr = assert.AnError
	tx := txn.Begin(f.media)

	image := &Upload{Filename: "me.jpg", ContentType: "image/jpeg", Data: []byte("jpg")}
	_, err := f.svc.SignUp(context.Background(), tx, validSignUpInput(), image)
	require.Error(t, err)

	// The wrapper invokes Rollback on the failed request.
	tx.Rollback(context.Background())
	assert.Empty(t, f.users.users)
	require.Len(t, f.media.uploads, 1)
	assert.Equal(t, []string{f.media.uploads[0]}, f.media.removed)
}

func TestVerifyEmail(t *testing.T) {
	f := userFixture()
	created, err := f.svc.SignUp(context.Background(), txn.Begin(f.media), validSignUpInput(), nil)
	require.NoError(t, err)

	token, err := f.svc.verificationToken(created.Email)
	require.NoError(t, err)

	verified, err := f.svc.VerifyEmail(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)

	// Following the link twice is a conflict.
	_, err = f.svc.VerifyEmail(context.Background(), token)
	assert.Equal(t, http.StatusConflict, apperr.Status(err))
}

func TestVerifyEmailRejectsBadToken(t *testing.T) {
	f := userFixture()
	_, err := f.svc.VerifyEmail(context.Background(), "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))
}

func TestSignInAndSignOutFlipStatus(t *testing.T) {
	f := userFixture()
	created, err := f.svc.SignUp(context.Background(), txn.Begin(f.media), validSignUpInput(), nil)
	require.NoError(t, err)

	signedIn, err := f.svc.SignIn(context.Background(), SignInInput{Email: created.Email, Password: "s3cretpass"})
	require.NoError(t, err)
	assert.Equal(t, types.StatusOnline, signedIn.Status)

	// Mobile works as the identifier too.
	_, err = f.svc.SignIn(context.Background(), SignInInput{Mobile: created.Mobile, Password: "s3cretpass"})
	require.NoError(t, err)

	require.NoError(t, f.svc.SignOut(context.Background(), created.ID))
	account, err := f.svc.Account(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusOffline, account.Status)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	f := userFixture()
	created, err := f.svc.SignUp(context.Background(), txn.Begin(f.media), validSignUpInput(), nil)
	require.NoError(t, err)

	_, err = f.svc.SignIn(context.Background(), SignInInput{Email: created.Email, Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))

	_, err = f.svc.SignIn(context.Background(), SignInInput{Email: "nobody@example.com", Password: "s3cretpass"})
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))
}

func TestUpdateAccountRequiresDifferentEmail(t *testing.T) {
	f := userFixture()
	created, err := f.svc.SignUp(context.Background(), txn.Begin(f.media), validSignUpInput(), nil)
	require.NoError(t, err)

	_, err = f.svc.UpdateAccount(context.Background(), txn.Begin(f.media), created.ID, UpdateAccountInput{Email: created.Email}, nil)
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
}

func TestUpdatePassword(t *testing.T) {
	f := userFixture()
	created, err := f.svc.SignUp(context.Background(), txn.Begin(f.media), validSignUpInput(), nil)
	require.NoError(t, err)

	err = f.svc.UpdatePassword(context.Background(), created.ID, "wrong", "newpass123")
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))

	require.NoError(t, f.svc.UpdatePassword(context.Background(), created.ID, "s3cretpass", "newpass123"))
	_, err = f.svc.SignIn(context.Background(), SignInInput{Email: created.Email, Password: "newpass123"})
	assert.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	f := userFixture()
	created, err := f.svc.SignUp(context.Background(), txn.Begin(f.media), validSignUpInput(), nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgotPassword(context.Background(), created.Email))
	otp := f.mailer.otps[created.Email]
	require.Len(t, otp, 6)

	wrong := "000000"
	if otp == wrong {
		wrong = "000001"
	}
	err = f.svc.ResetPassword(context.Background(), created.Email, wrong, "resetpass1")
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))

	require.NoError(t, f.svc.ResetPassword(context.Background(), created.Email, otp, "resetpass1"))
	_, err = f.svc.SignIn(context.Background(), SignInInput{Email: created.Email, Password: "resetpass1"})
	require.NoError(t, err)

	// The code is single use.
	err = f.svc.ResetPassword(context.Background(), created.Email, otp, "again")
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))
}

func TestResetPasswordWithoutRequest(t *testing.T) {
	f := userFixture()
	created, err := f.svc.SignUp(context.Background(), txn.Begin(f.media), validSignUpInput(), nil)
	require.NoError(t, err)

	err = f.svc.ResetPassword(context.Background(), created.Email, "123456", "newpass")
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))
}

func TestAccountsByRecoveryEmail(t *testing.T) {
	f := userFixture()
	_, err := f.svc.SignUp(context.Background(), txn.Begin(f.media), validSignUpInput(), nil)
	require.NoError(t, err)

	second := validSignUpInput()
	second.Email = "pat2@example.com"
	second.Mobile = "+15550002222"
	_, err = f.svc.SignUp(context.Background(), txn.Begin(f.media), second, nil)
	require.NoError(t, err)

	users, err := f.svc.AccountsByRecoveryEmail(context.Background(), "recovery@example.com")
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = f.svc.AccountsByRecoveryEmail(context.Background(), "nobody@example.com")
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))
}

func TestDeleteHRAccountCascadesCompany(t *testing.T) {
	f := userFixture()

	input := validSignUpInput()
	input.Role = types.RoleCompanyHR
	hr, err := f.svc.SignUp(context.Background(), txn.Begin(f.media), input, nil)
	require.NoError(t, err)

	f.companies.Create(context.Background(), types.Company{Name: "Initech", Email: "hr@initech.example", HRID: hr.ID, MediaFolder: "cfold"})
	job, _ := f.jobs.Create(context.Background(), types.Job{Title: "Backend", AddedBy: hr.ID})
	f.apps.Create(context.Background(), types.Application{JobID: job.ID, UserID: 99})

	require.NoError(t, f.svc.DeleteAccount(context.Background(), hr.ID))

	assert.Empty(t, f.users.users)
	assert.Empty(t, f.companies.companies)
	assert.Empty(t, f.jobs.jobs)
	assert.Empty(t, f.apps.apps)
}

func TestDeleteApplicantAccountRemovesApplicationsAndFiles(t *testing.T) {
	f := userFixture()

	image := &Upload{Filename: "me.jpg", Data: []byte("jpg")}
	applicant, err := f.svc.SignUp(context.Background(), txn.Begin(f.media), validSignUpInput(), image)
	require.NoError(t, err)
	f.apps.Create(context.Background(), types.Application{JobID: 1, UserID: applicant.ID})

	require.NoError(t, f.svc.DeleteAccount(context.Background(), applicant.ID))

	assert.Empty(t, f.users.users)
	assert.Empty(t, f.apps.apps)
	assert.Contains(t, f.media.removed, f.media.UserRoot(applicant.MediaFolder))
}
