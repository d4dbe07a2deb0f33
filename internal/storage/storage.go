package storage

import (
	"context"

	"github.com/Basic-PDF-Manager/Document-Service/internal/models"
)

// Store is the contract both persistence strategies expose to the
// reconciler. The set argument carries the full document set as it was at
// the moment of the mutation: the snapshot store rewrites it wholesale and
// ignores the individual record, the postgres store does the opposite.
type Store interface {
	// LoadAll returns the full persisted document set. Called once at
	// startup; a missing or empty store yields an empty set and the
	// registry starts cold.
	LoadAll(ctx context.Context) ([]models.Document, error)

	CreateDocument(ctx context.Context, doc models.Document, set []models.Document) error
	UpdateDocument(ctx context.Context, doc models.Document, set []models.Document) error
	DeleteDocument(ctx context.Context, id string, set []models.Document) error

	// Flush writes the full set. Used for the defensive final write at
	// shutdown; per-record stores may make it a no-op.
	Flush(ctx context.Context, set []models.Document) error

	Close() error
}
