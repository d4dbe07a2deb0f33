package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHierarchy(t *testing.T) {
	c := NewDefault()

	folders := c.Folders()
	require.Len(t, folders, 3)

	roots := 0
	for _, f := range folders {
		if f.ParentID == nil {
			roots++
			assert.Equal(t, DefaultFolderID, f.ID)
		} else {
			assert.Equal(t, DefaultFolderID, *f.ParentID)
		}
	}
	assert.Equal(t, 1, roots)
}

func TestExists(t *testing.T) {
	c := NewDefault()

	tests := []struct {
		name string
		id   int
		want bool
	}{
		{"root folder", 1, true},
		{"project folder", 2, true},
		{"other project folder", 3, true},
		{"unknown folder", 42, false},
		{"zero id", 0, false},
		{"negative id", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Exists(tt.id))
		})
	}
}
