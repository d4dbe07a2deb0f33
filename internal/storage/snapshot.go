package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Basic-PDF-Manager/Document-Service/internal/models"
)

// SnapshotStore persists the document set as a single JSON array. Every
// mutation rewrites the whole file; writes go to a temp file first and are
// renamed into place so readers never see a partial snapshot.
type SnapshotStore struct {
	path string
}

func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

func (s *SnapshotStore) LoadAll(ctx context.Context) ([]models.Document, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return []models.Document{}, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var docs []models.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}
	return docs, nil
}

func (s *SnapshotStore) CreateDocument(ctx context.Context, _ models.Document, set []models.Document) error {
	return s.write(set)
}

func (s *SnapshotStore) UpdateDocument(ctx context.Context, _ models.Document, set []models.Document) error {
	return s.write(set)
}

func (s *SnapshotStore) DeleteDocument(ctx context.Context, _ string, set []models.Document) error {
	return s.write(set)
}

func (s *SnapshotStore) Flush(ctx context.Context, set []models.Document) error {
	return s.write(set)
}

func (s *SnapshotStore) Close() error { return nil }

func (s *SnapshotStore) write(set []models.Document) error {
	if set == nil {
		set = []models.Document{}
	}
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tempFile := s.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}

	// Rename is atomic on the same filesystem.
	if err := os.Rename(tempFile, s.path); err != nil {
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}
	return nil
}
