package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hirehub/apiserver/internal/apperr"
	"github.com/hirehub/apiserver/internal/services"
	"github.com/hirehub/apiserver/internal/store"
	"github.com/hirehub/apiserver/internal/txn"
	"github.com/hirehub/apiserver/types"
)

// JobHandler provides the job and application endpoints.
type JobHandler struct {
	jobs  *services.JobService
	media txn.MediaRemover
}

// NewJobHandler constructs a JobHandler with the provided dependencies.
func NewJobHandler(jobs *services.JobService, media txn.MediaRemover) *JobHandler {
	return &JobHandler{jobs: jobs, media: media}
}

// JobRouter registers job routes on the given router. Browsing is open
// to any signed-in account; posting is gated on the HR role and
// applying on the applicant role.
func JobRouter(r chi.Router, jobs *services.JobService, users *services.UserService, media txn.MediaRemover, jwtSecret string) {
	handler := NewJobHandler(jobs, media)

	r.Use(requireAuth([]byte(jwtSecret)))
	r.Get("/", handle(media, handler.List))
	r.Get("/company", handle(media, handler.ListByCompany))

	r.Group(func(r chi.Router) {
		r.Use(requireRole(users, types.RoleCompanyHR))
		r.Post("/", handle(media, handler.Create))
		r.Patch("/{jobID}", handle(media, handler.Update))
		r.Delete("/{jobID}", handle(media, handler.Delete))
	})

	r.With(requireRole(users, types.RoleApplicant)).
		Post("/{jobID}/apply", handle(media, handler.Apply))
}

// JobRequest is the JSON payload for posting or updating a job.
type JobRequest struct {
	Title           string   `json:"title"`
	Location        string   `json:"location"`
	WorkingTime     string   `json:"working_time"`
	Seniority       string   `json:"seniority"`
	Description     string   `json:"description"`
	TechnicalSkills []string `json:"technical_skills"`
	SoftSkills      []string `json:"soft_skills"`
}

// JobListResponse is the paginated list response payload.
type JobListResponse struct {
	Items []types.Job `json:"items"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Total int         `json:"total"`
}

func (req JobRequest) input() services.JobInput {
	return services.JobInput{
		Title:           strings.TrimSpace(req.Title),
		Location:        strings.TrimSpace(req.Location),
		WorkingTime:     strings.TrimSpace(req.WorkingTime),
		Seniority:       strings.TrimSpace(req.Seniority),
		Description:     strings.TrimSpace(req.Description),
		TechnicalSkills: req.TechnicalSkills,
		SoftSkills:      req.SoftSkills,
	}
}

// Create posts a job owned by the caller.
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) error {
	hrID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}
	var req JobRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Title) == "" {
		return apperr.New(apperr.Validation, "title is required")
	}

	job, err := h.jobs.Create(r.Context(), txn.FromContext(r.Context()), hrID, req.input())
	if err != nil {
		return err
	}
	writeData(w, http.StatusCreated, "job created", job)
	return nil
}

// Update modifies a job owned by the caller.
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) error {
	hrID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}
	jobID, err := parseIDParam(r, "jobID")
	if err != nil {
		return err
	}
	var req JobRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	job, err := h.jobs.Update(r.Context(), jobID, hrID, req.input())
	if err != nil {
		return err
	}
	writeData(w, http.StatusOK, "job updated", job)
	return nil
}

// Delete removes a job owned by the caller along with its applications.
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	hrID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}
	jobID, err := parseIDParam(r, "jobID")
	if err != nil {
		return err
	}
	if err := h.jobs.Delete(r.Context(), jobID, hrID); err != nil {
		return err
	}
	writeData(w, http.StatusOK, "job deleted", nil)
	return nil
}

// List returns a page of jobs. Filters are drawn from a fixed set of
// query parameters; anything else is ignored.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) error {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		return err
	}

	query := r.URL.Query()
	filter := store.JobFilter{
		Title:       strings.TrimSpace(query.Get("title")),
		Location:    strings.TrimSpace(query.Get("location")),
		WorkingTime: strings.TrimSpace(query.Get("working_time")),
		Seniority:   strings.TrimSpace(query.Get("seniority")),
	}

	items, total, err := h.jobs.List(r.Context(), filter, offset, limit)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to list jobs", err)
	}
	writeData(w, http.StatusOK, "", JobListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
	return nil
}

// ListByCompany returns the named company with its jobs.
func (h *JobHandler) ListByCompany(w http.ResponseWriter, r *http.Request) error {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		return apperr.New(apperr.Validation, "name is required")
	}
	company, err := h.jobs.ListByCompany(r.Context(), name)
	if err != nil {
		return err
	}
	writeData(w, http.StatusOK, "", company)
	return nil
}

// Apply submits an application from a multipart form with an optional
// resume file.
func (h *JobHandler) Apply(w http.ResponseWriter, r *http.Request) error {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}
	jobID, err := parseIDParam(r, "jobID")
	if err != nil {
		return err
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return apperr.New(apperr.Validation, "invalid multipart form")
	}

	input := services.ApplyInput{
		TechnicalSkills: splitList(r.FormValue("technical_skills")),
		SoftSkills:      splitList(r.FormValue("soft_skills")),
	}
	resume, err := parseUpload(r.MultipartForm, "resume")
	if err != nil {
		return err
	}

	app, err := h.jobs.Apply(r.Context(), txn.FromContext(r.Context()), jobID, userID, input, resume)
	if err != nil {
		return err
	}
	writeData(w, http.StatusCreated, "application submitted", app)
	return nil
}
