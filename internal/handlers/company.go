package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hirehub/apiserver/internal/apperr"
	"github.com/hirehub/apiserver/internal/services"
	"github.com/hirehub/apiserver/internal/txn"
	"github.com/hirehub/apiserver/types"
)

// CompanyHandler provides the company endpoints.
type CompanyHandler struct {
	companies *services.CompanyService
	media     txn.MediaRemover
}

// NewCompanyHandler constructs a CompanyHandler with the provided dependencies.
func NewCompanyHandler(companies *services.CompanyService, media txn.MediaRemover) *CompanyHandler {
	return &CompanyHandler{companies: companies, media: media}
}

// CompanyRouter registers company routes on the given router. All of
// them require authentication; the mutating ones require the HR role.
func CompanyRouter(r chi.Router, companies *services.CompanyService, users *services.UserService, media txn.MediaRemover, jwtSecret string) {
	handler := NewCompanyHandler(companies, media)

	r.Use(requireAuth([]byte(jwtSecret)))
	r.Get("/search", handle(media, handler.Search))

	r.Group(func(r chi.Router) {
		r.Use(requireRole(users, types.RoleCompanyHR))
		r.Post("/", handle(media, handler.Create))
		r.Patch("/", handle(media, handler.Update))
		r.Delete("/", handle(media, handler.Delete))
		r.Get("/applications", handle(media, handler.Applications))
		r.Get("/{companyID}", handle(media, handler.Get))
	})
}

// Create registers the caller's company from a multipart form with an
// optional logo.
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) error {
	hrID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return apperr.New(apperr.Validation, "invalid multipart form")
	}

	employees, err := parseEmployees(r.FormValue("employees"))
	if err != nil {
		return err
	}
	input := services.CreateCompanyInput{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Industry:    strings.TrimSpace(r.FormValue("industry")),
		Address:     strings.TrimSpace(r.FormValue("address")),
		Employees:   employees,
		Email:       strings.TrimSpace(r.FormValue("email")),
	}
	if input.Name == "" || input.Email == "" {
		return apperr.New(apperr.Validation, "missing required fields")
	}

	logo, err := parseUpload(r.MultipartForm, "logo")
	if err != nil {
		return err
	}

	company, err := h.companies.Create(r.Context(), txn.FromContext(r.Context()), hrID, input, logo)
	if err != nil {
		return err
	}
	writeData(w, http.StatusCreated, "company created", company)
	return nil
}

// Update modifies the caller's company.
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) error {
	hrID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return apperr.New(apperr.Validation, "invalid multipart form")
	}

	employees, err := parseEmployees(r.FormValue("employees"))
	if err != nil {
		return err
	}
	input := services.UpdateCompanyInput{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Industry:    strings.TrimSpace(r.FormValue("industry")),
		Address:     strings.TrimSpace(r.FormValue("address")),
		Employees:   employees,
		Email:       strings.TrimSpace(r.FormValue("email")),
		OldLogoID:   strings.TrimSpace(r.FormValue("old_logo_id")),
	}
	logo, err := parseUpload(r.MultipartForm, "logo")
	if err != nil {
		return err
	}

	company, err := h.companies.Update(r.Context(), txn.FromContext(r.Context()), hrID, input, logo)
	if err != nil {
		return err
	}
	writeData(w, http.StatusOK, "company updated", company)
	return nil
}

// Delete removes the caller's company and everything under it.
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	hrID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}
	if err := h.companies.Delete(r.Context(), hrID); err != nil {
		return err
	}
	writeData(w, http.StatusOK, "company deleted", nil)
	return nil
}

// Get returns the caller's company by id with its jobs.
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) error {
	hrID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}
	companyID, err := parseIDParam(r, "companyID")
	if err != nil {
		return err
	}
	company, err := h.companies.Get(r.Context(), companyID, hrID)
	if err != nil {
		return err
	}
	writeData(w, http.StatusOK, "", company)
	return nil
}

// Search finds a company by exact name.
func (h *CompanyHandler) Search(w http.ResponseWriter, r *http.Request) error {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		return apperr.New(apperr.Validation, "name is required")
	}
	company, err := h.companies.SearchByName(r.Context(), name)
	if err != nil {
		return err
	}
	writeData(w, http.StatusOK, "", company)
	return nil
}

// Applications returns every application across the caller's jobs.
func (h *CompanyHandler) Applications(w http.ResponseWriter, r *http.Request) error {
	hrID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}
	apps, err := h.companies.ApplicationsReport(r.Context(), hrID)
	if err != nil {
		return err
	}
	writeData(w, http.StatusOK, "", apps)
	return nil
}

func parseEmployees(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	employees, err := strconv.Atoi(raw)
	if err != nil || employees < 0 {
		return 0, apperr.New(apperr.Validation, "invalid employees count")
	}
	return employees, nil
}
