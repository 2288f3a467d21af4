// Package txn coordinates a database write with a media upload inside
// one request so that a failure after either succeeded does not leave
// an orphaned record or orphaned files behind.
//
// A handler that creates a record or uploads a file must stage the
// effect immediately after the store confirms it, before any further
// logic that could fail runs. That ordering is the protocol's whole
// correctness property: an unstaged success is an effect the rollback
// can never see.
package txn

import (
	"context"
	"log"
)

// MediaRemover deletes every file under a folder in the media host.
type MediaRemover interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// DeleteFunc removes one created record from its store by identifier.
type DeleteFunc func(ctx context.Context) error

// Tx tracks the pending side effects of a single request. It is
// created per request, never shared, and discarded after finalization.
type Tx struct {
	media MediaRemover

	record *stagedRecord
	folder string
}

type stagedRecord struct {
	entity string
	id     int64
	del    DeleteFunc
}

// Begin returns an empty Tx whose upload rollbacks go through media.
func Begin(media MediaRemover) *Tx {
	return &Tx{media: media}
}

// StageRecord marks a just-created record for rollback should the
// request fail later. A request performs at most one creation; staging
// a second record replaces the first.
func (t *Tx) StageRecord(entity string, id int64, del DeleteFunc) {
	t.record = &stagedRecord{entity: entity, id: id, del: del}
}

// StageUpload marks the folder a file was just uploaded under for
// rollback should the request fail later. Staging a second folder
// replaces the first.
func (t *Tx) StageUpload(folder string) {
	t.folder = folder
}

// Rollback undoes every staged effect. It runs only when the request's
// handler failed; callers must not invoke it on success. Cleanup is
// best effort: failures are logged and swallowed so they never mask
// the handler's original error.
func (t *Tx) Rollback(ctx context.Context) {
	if t.record != nil {
		if err := t.record.del(ctx); err != nil {
			log.Printf("txn: rollback of %s %d failed: %v", t.record.entity, t.record.id, err)
		}
		t.record = nil
	}
	if t.folder != "" && t.media != nil {
		if err := t.media.DeletePrefix(ctx, t.folder); err != nil {
			log.Printf("txn: rollback of upload folder %q failed: %v", t.folder, err)
		}
		t.folder = ""
	}
}

type contextKey struct{}

// NewContext returns a context carrying tx.
func NewContext(ctx context.Context, tx *Tx) context.Context {
	return context.WithValue(ctx, contextKey{}, tx)
}

// FromContext returns the request's Tx, or nil when none was attached.
func FromContext(ctx context.Context) *Tx {
	tx, _ := ctx.Value(contextKey{}).(*Tx)
	return tx
}
