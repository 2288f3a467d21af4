package services

import (
	"bytes"
	"context"
	"io"

	"github.com/hirehub/apiserver/types"
)

// Media defines the media-host operations services drive: uploads into
// hierarchical folders, single-object deletes, and folder removal.
// *storage.Storage satisfies it.
type Media interface {
	Upload(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (types.MediaRef, error)
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error

	UserFolder(mediaFolder string) string
	UserRoot(mediaFolder string) string
	CompanyLogoFolder(mediaFolder string) string
	CompanyRoot(mediaFolder string) string
	JobResumeFolder(companyFolder string, jobID int64) string
	JobRoot(companyFolder string, jobID int64) string
}

// MailSender queues outbound email. *mail.Mailer satisfies it.
type MailSender interface {
	SendVerification(ctx context.Context, to, name, token string) error
	SendOTP(ctx context.Context, to, name, otp string) error
}

// Upload is one file received with a request, fully read into memory
// by the handler before the service runs.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Reader returns a reader over the file contents.
func (u *Upload) Reader() io.Reader {
	return bytes.NewReader(u.Data)
}

// Size returns the file size in bytes.
func (u *Upload) Size() int64 {
	return int64(len(u.Data))
}
