package blob

import (
	"fmt"
	"io"
	"math/rand/v2"
	"path/filepath"
	"regexp"
	"time"
)

// FileStore holds the binary PDF content. The registry only tracks the
// stored filename and the URL the file server exposes it under.
type FileStore interface {
	Save(r io.Reader, size int64, name, contentType string) error
	Open(name string) (io.ReadCloser, error)
	Remove(name string) error
	URL(name string) string
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// StoredFilename builds the on-disk name for an upload: a pdf- prefix, a
// timestamp and random component against collisions, and the original name
// with unsafe characters replaced.
func StoredFilename(originalName string) string {
	safe := unsafeChars.ReplaceAllString(filepath.Base(originalName), "_")
	return fmt.Sprintf("pdf-%d-%d-%s", time.Now().UnixMilli(), rand.IntN(1_000_000_000), safe)
}
