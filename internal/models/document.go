package models

// Document is the metadata record for a single uploaded PDF. The binary
// content itself lives in the blob store under StoredFilename.
type Document struct {
	ID               string          `json:"id"`
	Filename         string          `json:"filename"`
	Description      string          `json:"description"`
	OriginalFilename string          `json:"originalFilename"`
	StoredFilename   string          `json:"storedFilename"`
	FileURL          string          `json:"fileUrl"`
	Size             int64           `json:"size"`
	UploadedBy       string          `json:"uploadedBy"`
	UploadedAt       string          `json:"uploadedAt"`
	FolderID         int             `json:"folderId"`
	VersionNumber    int             `json:"versionNumber"`
	Versions         []Version       `json:"versions,omitempty"`
	Metadata         []MetadataEntry `json:"metadata,omitempty"`
}

// Version is one entry in a document's append-only version history. The
// history is empty until the first re-upload, which records both the
// initial upload and the new version.
type Version struct {
	VersionNumber  int    `json:"versionNumber"`
	StoredFilename string `json:"storedFilename"`
	FileSize       int64  `json:"fileSize"`
	Description    string `json:"description"`
	CreatedAt      string `json:"createdAt"`
	CreatedBy      string `json:"createdBy"`
}

// MetadataEntry is an arbitrary key/value pair attached to a document.
// Keys are unique per document; writing an existing key overwrites it.
type MetadataEntry struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Clone returns a deep copy so callers can hand documents across goroutine
// boundaries without sharing the version/metadata slices.
func (d Document) Clone() Document {
	out := d
	if d.Versions != nil {
		out.Versions = make([]Version, len(d.Versions))
		copy(out.Versions, d.Versions)
	}
	if d.Metadata != nil {
		out.Metadata = make([]MetadataEntry, len(d.Metadata))
		copy(out.Metadata, d.Metadata)
	}
	return out
}
