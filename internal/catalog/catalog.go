package catalog

import (
	"time"

	"github.com/Basic-PDF-Manager/Document-Service/internal/models"
)

// DefaultFolderID is where uploads land when no folder is given.
const DefaultFolderID = 1

// Catalog is the read-only folder hierarchy used to validate document
// placement. The surrounding system seeds a fixed tree at startup; there
// are no create/update/delete operations.
type Catalog struct {
	folders []models.Folder
	byID    map[int]models.Folder
}

func New(folders []models.Folder) *Catalog {
	c := &Catalog{
		folders: folders,
		byID:    make(map[int]models.Folder, len(folders)),
	}
	for _, f := range folders {
		c.byID[f.ID] = f
	}
	return c
}

// NewDefault seeds the standard hierarchy: one root folder and two project
// folders underneath it.
func NewDefault() *Catalog {
	now := time.Now().UTC()
	root := DefaultFolderID
	return New([]models.Folder{
		{
			ID:          root,
			Name:        "Main",
			Description: "Default folder for PDF documents",
			ParentID:    nil,
			CreatedBy:   "system",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          2,
			Name:        "Project A",
			Description: "PDFs for Project A",
			ParentID:    &root,
			CreatedBy:   "system",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          3,
			Name:        "Project B",
			Description: "PDFs for Project B",
			ParentID:    &root,
			CreatedBy:   "system",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	})
}

// Folders returns the full folder set. No hierarchy order is implied;
// callers reconstruct the tree from ParentID if they need it.
func (c *Catalog) Folders() []models.Folder {
	out := make([]models.Folder, len(c.folders))
	copy(out, c.folders)
	return out
}

// Exists reports whether a folder id is valid as an upload target.
func (c *Catalog) Exists(id int) bool {
	_, ok := c.byID[id]
	return ok
}
