package models

import (
	"time"
)

// Folder is a named node in a parent-referencing hierarchy. Root folders
// have a nil ParentID.
type Folder struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ParentID    *int      `json:"parentId"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
