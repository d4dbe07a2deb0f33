package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Basic-PDF-Manager/Document-Service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotDocs() []models.Document {
	return []models.Document{
		{
			ID:               "pdf_1747231245129_42",
			Filename:         "Quarterly Report",
			Description:      "No description",
			OriginalFilename: "quarterly-report.pdf",
			StoredFilename:   "pdf-1747231245129-7-quarterly-report.pdf",
			FileURL:          "/uploads/pdf-1747231245129-7-quarterly-report.pdf",
			Size:             2048,
			UploadedBy:       "user@example.com",
			UploadedAt:       "2025-05-14T16:00:00Z",
			FolderID:         2,
			VersionNumber:    2,
			Versions: []models.Version{
				{VersionNumber: 2, StoredFilename: "pdf-2-2-quarterly-report.pdf", FileSize: 2048, CreatedAt: "2025-05-15T10:00:00Z", CreatedBy: "user@example.com"},
			},
			Metadata: []models.MetadataEntry{
				{Key: "department", Value: "engineering", CreatedAt: "2025-05-15T10:00:00Z", UpdatedAt: "2025-05-15T10:00:00Z"},
			},
		},
		{
			ID:            "pdf_1747231513094_7",
			Filename:      "Drawings",
			FolderID:      1,
			VersionNumber: 1,
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdf_documents.json")
	s := NewSnapshotStore(path)

	docs := snapshotDocs()
	require.NoError(t, s.Flush(context.Background(), docs))

	loaded, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, docs, loaded)
}

func TestSnapshotLoadMissingFileStartsCold(t *testing.T) {
	s := NewSnapshotStore(filepath.Join(t.TempDir(), "nope.json"))

	docs, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSnapshotLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdf_documents.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewSnapshotStore(path).LoadAll(context.Background())
	assert.Error(t, err)
}

func TestSnapshotMutationsRewriteWholeSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdf_documents.json")
	s := NewSnapshotStore(path)
	ctx := context.Background()

	docs := snapshotDocs()
	require.NoError(t, s.CreateDocument(ctx, docs[0], docs))

	loaded, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// delete writes the set it is handed, regardless of the id
	require.NoError(t, s.DeleteDocument(ctx, docs[0].ID, docs[1:]))
	loaded, err = s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "pdf_1747231513094_7", loaded[0].ID)

	// no temp file left behind
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSnapshotNilSetWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdf_documents.json")
	s := NewSnapshotStore(path)

	require.NoError(t, s.Flush(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}
