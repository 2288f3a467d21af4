package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hirehub/apiserver/internal/apperr"
	"github.com/hirehub/apiserver/internal/services"
	"github.com/hirehub/apiserver/internal/txn"
)

type contextKey string

const contextSubjectKey contextKey = "sub"

const (
	defaultPage    = 1
	defaultLimit   = 10
	maxLimit       = 100
	maxUploadBytes = 8 << 20
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// apiFunc is a handler that reports its outcome as an error instead of
// writing a status itself. The wrapper owns the failure path.
type apiFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts an apiFunc to http.HandlerFunc. Each request gets a
// fresh rollback transaction in its context; when the handler fails,
// the staged record and upload are undone before the error is written.
func handle(media txn.MediaRemover, fn apiFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tx := txn.Begin(media)
		r = r.WithContext(txn.NewContext(r.Context(), tx))
		if err := fn(w, r); err != nil {
			// The failure may be the request context's own
			// cancellation; cleanup must still reach the store and
			// the media host.
			tx.Rollback(context.WithoutCancel(r.Context()))
			writeError(w, err)
		}
	}
}

func userIDFromContext(ctx context.Context) (int64, error) {
	subject, ok := ctx.Value(contextSubjectKey).(int64)
	if !ok || subject < 1 {
		return 0, apperr.New(apperr.Authentication, "unauthorized")
	}
	return subject, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.Status(err), Response{Success: false, Message: apperr.Message(err)})
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Response{Success: true, Message: message, Data: data})
}

func parsePagination(r *http.Request) (page, limit, offset int, err error) {
	page = defaultPage
	limit = defaultLimit

	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, 0, apperr.New(apperr.Validation, "invalid page")
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, 0, apperr.New(apperr.Validation, "invalid limit")
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset = (page - 1) * limit
	return page, limit, offset, nil
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.New(apperr.Validation, "invalid "+name)
	}
	return id, nil
}

// parseUpload extracts the optional single file under field from an
// already-parsed multipart form. A missing file is not an error.
func parseUpload(form *multipart.Form, field string) (*services.Upload, error) {
	if form == nil {
		return nil, nil
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > 1 {
		return nil, apperr.New(apperr.Validation, "only one "+field+" file is allowed")
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "failed to read upload", err)
	}
	data, err := readFileLimited(file, maxUploadBytes)
	_ = file.Close()
	if err != nil {
		return nil, err
	}

	return &services.Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, apperr.New(apperr.Validation, "failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, apperr.New(apperr.Validation, "uploaded file too large")
	}
	return data, nil
}

func splitList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	return nil
}
