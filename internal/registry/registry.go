package registry

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Basic-PDF-Manager/Document-Service/internal/models"
)

// ErrNotFound is returned when a document id is absent from the registry.
var ErrNotFound = errors.New("document not found")

// Recorder receives every registry mutation so it can be propagated to
// durable storage. The set argument is a point-in-time copy of the full
// document set after the mutation; snapshot-style stores rewrite it
// wholesale, table-style stores only need the record itself.
type Recorder interface {
	DocumentCreated(doc models.Document, set []models.Document)
	DocumentUpdated(doc models.Document, set []models.Document)
	DocumentDeleted(id string, set []models.Document)
}

// Registry is the authoritative in-memory document set for the process
// lifetime. The durable store is a mirror, not a second source of truth:
// persistence failures never roll back an in-memory mutation.
type Registry struct {
	mu       sync.RWMutex
	docs     []models.Document
	recorder Recorder
}

// New builds a registry from a previously persisted document set. Insertion
// order of the initial set is preserved.
func New(initial []models.Document, recorder Recorder) *Registry {
	docs := make([]models.Document, 0, len(initial))
	for _, d := range initial {
		docs = append(docs, d.Clone())
	}
	return &Registry{docs: docs, recorder: recorder}
}

// NewID generates a document id from the current time and a random suffix.
// Collisions are treated as negligible at this volume.
func NewID() string {
	return fmt.Sprintf("pdf_%d_%d", time.Now().UnixMilli(), rand.IntN(10000))
}

// Upload stores a new document. The caller supplies filename, description,
// stored filename, size, owner and an already validated folder id; the
// registry assigns the id, upload timestamp and initial version number.
func (r *Registry) Upload(doc models.Document) models.Document {
	doc.ID = NewID()
	doc.UploadedAt = time.Now().UTC().Format(time.RFC3339)
	doc.VersionNumber = 1

	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
	if r.recorder != nil {
		r.recorder.DocumentCreated(doc.Clone(), r.snapshotLocked())
	}
	return doc.Clone()
}

// List returns documents in insertion order. With a folder id it returns
// only documents placed directly in that folder; documents in descendant
// folders are not included.
func (r *Registry) List(folderID *int) []models.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Document, 0, len(r.docs))
	for _, d := range r.docs {
		if folderID != nil && d.FolderID != *folderID {
			continue
		}
		out = append(out, d.Clone())
	}
	return out
}

// Get returns the document with the given id.
func (r *Registry) Get(id string) (models.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.docs {
		if d.ID == id {
			return d.Clone(), nil
		}
	}
	return models.Document{}, ErrNotFound
}

// Delete removes the document with the given id and returns its final state
// so the caller can release the underlying binary content.
func (r *Registry) Delete(id string) (models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, d := range r.docs {
		if d.ID == id {
			removed := d.Clone()
			r.docs = append(r.docs[:i], r.docs[i+1:]...)
			if r.recorder != nil {
				r.recorder.DocumentDeleted(id, r.snapshotLocked())
			}
			return removed, nil
		}
	}
	return models.Document{}, ErrNotFound
}

// VersionInput describes a re-upload of an existing document.
type VersionInput struct {
	StoredFilename string
	FileURL        string
	FileSize       int64
	Description    string
	CreatedBy      string
}

// AddVersion appends a version record to an existing document, bumps its
// version number and points it at the new binary content. The initial
// upload carries no version record, so the first re-upload backfills one
// for the current state; every stored filename stays reachable through
// the history.
func (r *Registry) AddVersion(id string, in VersionInput) (models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.docs {
		if r.docs[i].ID != id {
			continue
		}
		d := &r.docs[i]
		if len(d.Versions) == 0 {
			d.Versions = append(d.Versions, models.Version{
				VersionNumber:  d.VersionNumber,
				StoredFilename: d.StoredFilename,
				FileSize:       d.Size,
				Description:    d.Description,
				CreatedAt:      d.UploadedAt,
				CreatedBy:      d.UploadedBy,
			})
		}
		d.VersionNumber++
		d.Versions = append(d.Versions, models.Version{
			VersionNumber:  d.VersionNumber,
			StoredFilename: in.StoredFilename,
			FileSize:       in.FileSize,
			Description:    in.Description,
			CreatedAt:      time.Now().UTC().Format(time.RFC3339),
			CreatedBy:      in.CreatedBy,
		})
		d.StoredFilename = in.StoredFilename
		d.FileURL = in.FileURL
		d.Size = in.FileSize
		if in.Description != "" {
			d.Description = in.Description
		}
		if r.recorder != nil {
			r.recorder.DocumentUpdated(d.Clone(), r.snapshotLocked())
		}
		return d.Clone(), nil
	}
	return models.Document{}, ErrNotFound
}

// SetMetadata attaches a key/value pair to a document, overwriting the
// value if the key already exists.
func (r *Registry) SetMetadata(id, key, value string) (models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.docs {
		if r.docs[i].ID != id {
			continue
		}
		d := &r.docs[i]
		now := time.Now().UTC().Format(time.RFC3339)
		found := false
		for j := range d.Metadata {
			if d.Metadata[j].Key == key {
				d.Metadata[j].Value = value
				d.Metadata[j].UpdatedAt = now
				found = true
				break
			}
		}
		if !found {
			d.Metadata = append(d.Metadata, models.MetadataEntry{
				Key:       key,
				Value:     value,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		if r.recorder != nil {
			r.recorder.DocumentUpdated(d.Clone(), r.snapshotLocked())
		}
		return d.Clone(), nil
	}
	return models.Document{}, ErrNotFound
}

// Count returns the number of documents currently registered.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

// Snapshot returns a copy of the full document set, for the final flush at
// shutdown.
func (r *Registry) Snapshot() []models.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() []models.Document {
	out := make([]models.Document, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, d.Clone())
	}
	return out
}
