package storage

import (
	"context"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hirehub/apiserver/types"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	PublicURL(key string) string
	Bucket() string
}

// Storage wraps an ObjectStorage backend with a stable API.
type Storage struct {
	backend ObjectStorage
	root    string
}

// NewStorage constructs a Storage wrapper for the provided backend.
// root is the top-level folder all uploads live under.
func NewStorage(backend ObjectStorage, root string) *Storage {
	return &Storage{backend: backend, root: strings.Trim(root, "/")}
}

// EnsureBucket ensures the configured bucket exists.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Upload stores a file under the given folder and returns a fully
// populated media reference. The object key carries a fresh uuid so
// uploads never collide; the original filename only contributes its
// extension.
func (s *Storage) Upload(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (types.MediaRef, error) {
	key := path.Join(folder, uuid.NewString()+strings.ToLower(path.Ext(filename)))
	if err := s.backend.Put(ctx, key, r, size, contentType); err != nil {
		return types.MediaRef{}, err
	}
	return types.MediaRef{ID: key, URL: s.backend.PublicURL(key)}, nil
}

// Get opens a reader for an object in the configured bucket.
func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, key)
}

// Delete removes a single object from the configured bucket.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// DeletePrefix removes every object under the given folder. Object
// stores have no real directories, so removing the objects removes the
// folder as well.
func (s *Storage) DeletePrefix(ctx context.Context, prefix string) error {
	return s.backend.DeletePrefix(ctx, prefix)
}

// Bucket returns the configured bucket name.
func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}

// UserFolder returns the folder holding a user's profile pictures.
func (s *Storage) UserFolder(mediaFolder string) string {
	return path.Join(s.root, "users", mediaFolder, "profile")
}

// UserRoot returns the top-level folder for all of a user's files.
func (s *Storage) UserRoot(mediaFolder string) string {
	return path.Join(s.root, "users", mediaFolder)
}

// CompanyLogoFolder returns the folder holding a company's logo.
func (s *Storage) CompanyLogoFolder(mediaFolder string) string {
	return path.Join(s.root, "companies", mediaFolder, "logo")
}

// CompanyRoot returns the top-level folder for all of a company's
// files, including per-job resume folders.
func (s *Storage) CompanyRoot(mediaFolder string) string {
	return path.Join(s.root, "companies", mediaFolder)
}

// JobResumeFolder returns the folder holding the resumes submitted to
// one job of a company.
func (s *Storage) JobResumeFolder(companyFolder string, jobID int64) string {
	return path.Join(s.root, "companies", companyFolder, "jobs", strconv.FormatInt(jobID, 10), "resumes")
}

// JobRoot returns the folder for all of one job's files.
func (s *Storage) JobRoot(companyFolder string, jobID int64) string {
	return path.Join(s.root, "companies", companyFolder, "jobs", strconv.FormatInt(jobID, 10))
}
