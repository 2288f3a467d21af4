package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hirehub/apiserver/internal/apperr"
	"github.com/hirehub/apiserver/internal/services"
	"github.com/hirehub/apiserver/internal/txn"
	"github.com/hirehub/apiserver/types"
)

// UserHandler provides the account endpoints.
type UserHandler struct {
	users    *services.UserService
	media    txn.MediaRemover
	secret   []byte
	tokenTTL time.Duration
}

// NewUserHandler constructs a UserHandler with the provided dependencies.
func NewUserHandler(users *services.UserService, media txn.MediaRemover, jwtSecret string) *UserHandler {
	return &UserHandler{
		users:    users,
		media:    media,
		secret:   []byte(jwtSecret),
		tokenTTL: defaultTokenTTL,
	}
}

// UserRouter registers account routes on the given router.
func UserRouter(r chi.Router, users *services.UserService, media txn.MediaRemover, jwtSecret string) {
	handler := NewUserHandler(users, media, jwtSecret)
	auth := requireAuth(handler.secret)

	r.Post("/signup", handle(media, handler.SignUp))
	r.Post("/signin", handle(media, handler.SignIn))
	r.Get("/verify-email", handle(media, handler.VerifyEmail))
	r.Post("/forgot-password", handle(media, handler.ForgotPassword))
	r.Post("/reset-password", handle(media, handler.ResetPassword))
	r.Get("/accounts", handle(media, handler.AccountsByRecoveryEmail))

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/signout", handle(media, handler.SignOut))
		r.Get("/account", handle(media, handler.Account))
		r.Patch("/account", handle(media, handler.UpdateAccount))
		r.Delete("/account", handle(media, handler.DeleteAccount))
		r.Patch("/password", handle(media, handler.UpdatePassword))
		r.Get("/profile/{userID}", handle(media, handler.Profile))
	})
}

// AuthResponse carries a session token alongside the account.
type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// SignUp registers an account from a multipart form with an optional
// profile image.
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return apperr.New(apperr.Validation, "invalid multipart form")
	}

	input := services.SignUpInput{
		FirstName:     strings.TrimSpace(r.FormValue("first_name")),
		LastName:      strings.TrimSpace(r.FormValue("last_name")),
		Email:         strings.TrimSpace(r.FormValue("email")),
		Mobile:        strings.TrimSpace(r.FormValue("mobile")),
		RecoveryEmail: strings.TrimSpace(r.FormValue("recovery_email")),
		Role:          strings.TrimSpace(r.FormValue("role")),
		DateOfBirth:   strings.TrimSpace(r.FormValue("date_of_birth")),
		Password:      r.FormValue("password"),
	}
	if input.FirstName == "" || input.LastName == "" || input.Email == "" || input.Mobile == "" {
		return apperr.New(apperr.Validation, "missing required fields")
	}

	image, err := parseUpload(r.MultipartForm, "image")
	if err != nil {
		return err
	}

	user, err := h.users.SignUp(r.Context(), txn.FromContext(r.Context()), input, image)
	if err != nil {
		return err
	}

	writeData(w, http.StatusCreated, "account created, please verify your email", user)
	return nil
}

// SignIn checks the credentials and answers with a session token.
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Email    string `json:"email"`
		Mobile   string `json:"mobile"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if req.Email == "" && req.Mobile == "" {
		return apperr.New(apperr.Validation, "email or mobile is required")
	}

	user, err := h.users.SignIn(r.Context(), services.SignInInput{
		Email:    strings.TrimSpace(req.Email),
		Mobile:   strings.TrimSpace(req.Mobile),
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	token, err := issueToken(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to sign in", err)
	}

	writeData(w, http.StatusOK, "signed in", AuthResponse{Token: token, User: user})
	return nil
}

// SignOut marks the account offline. The token itself stays valid
// until it expires.
func (h *UserHandler) SignOut(w http.ResponseWriter, r *http.Request) error {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}
	if err := h.users.SignOut(r.Context(), userID); err != nil {
		return err
	}
	writeData(w, http.StatusOK, "signed out", nil)
	return nil
}

// VerifyEmail redeems the token from the verification link.
func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) error {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		return apperr.New(apperr.Validation, "token is required")
	}
	user, err := h.users.VerifyEmail(r.Context(), token)
	if err != nil {
		return err
	}
	writeData(w, http.StatusOK, "account verified", user)
	return nil
}

// Account returns the caller's own record.
func (h *UserHandler) Account(w http.ResponseWriter, r *http.Request) error {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}
	user, err := h.users.Account(r.Context(), userID)
	if err != nil {
		return err
	}
	writeData(w, http.StatusOK, "", user)
	return nil
}

// Profile returns another account's public profile.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) error {
	if _, err := userIDFromContext(r.Context()); err != nil {
		return err
	}
	targetID, err := parseIDParam(r, "userID")
	if err != nil {
		return err
	}
	profile, err := h.users.Profile(r.Context(), targetID)
	if err != nil {
		return err
	}
	writeData(w, http.StatusOK, "", profile)
	return nil
}

// AccountsByRecoveryEmail lists the accounts registered with a
// recovery address.
func (h *UserHandler) AccountsByRecoveryEmail(w http.ResponseWriter, r *http.Request) error {
	recoveryEmail := strings.TrimSpace(r.URL.Query().Get("recovery_email"))
	if recoveryEmail == "" {
		return apperr.New(apperr.Validation, "recovery_email is required")
	}
	users, err := h.users.AccountsByRecoveryEmail(r.Context(), recoveryEmail)
	if err != nil {
		return err
	}
	writeData(w, http.StatusOK, "", users)
	return nil
}

// UpdateAccount modifies the caller's record from a multipart form
// with an optional replacement image.
func (h *UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) error {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return apperr.New(apperr.Validation, "invalid multipart form")
	}

	input := services.UpdateAccountInput{
		FirstName:     strings.TrimSpace(r.FormValue("first_name")),
		LastName:      strings.TrimSpace(r.FormValue("last_name")),
		Email:         strings.TrimSpace(r.FormValue("email")),
		Mobile:        strings.TrimSpace(r.FormValue("mobile")),
		RecoveryEmail: strings.TrimSpace(r.FormValue("recovery_email")),
		DateOfBirth:   strings.TrimSpace(r.FormValue("date_of_birth")),
		OldImageID:    strings.TrimSpace(r.FormValue("old_image_id")),
	}
	image, err := parseUpload(r.MultipartForm, "image")
	if err != nil {
		return err
	}

	user, err := h.users.UpdateAccount(r.Context(), txn.FromContext(r.Context()), userID, input, image)
	if err != nil {
		return err
	}
	writeData(w, http.StatusOK, "account updated", user)
	return nil
}

// UpdatePassword replaces the caller's password.
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) error {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if err := h.users.UpdatePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	writeData(w, http.StatusOK, "password updated", nil)
	return nil
}

// ForgotPassword issues a reset code by email.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Email) == "" {
		return apperr.New(apperr.Validation, "email is required")
	}
	if err := h.users.ForgotPassword(r.Context(), strings.TrimSpace(req.Email)); err != nil {
		return err
	}
	writeData(w, http.StatusOK, "reset code sent", nil)
	return nil
}

// ResetPassword redeems a reset code for a new password.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Email    string `json:"email"`
		OTP      string `json:"otp"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Email) == "" || req.OTP == "" {
		return apperr.New(apperr.Validation, "email and otp are required")
	}
	if err := h.users.ResetPassword(r.Context(), strings.TrimSpace(req.Email), req.OTP, req.Password); err != nil {
		return err
	}
	writeData(w, http.StatusOK, "password reset", nil)
	return nil
}

// DeleteAccount removes the caller's account and everything it owns.
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) error {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}
	if err := h.users.DeleteAccount(r.Context(), userID); err != nil {
		return err
	}
	writeData(w, http.StatusOK, "account deleted", nil)
	return nil
}
