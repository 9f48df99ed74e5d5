package document

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Loader reads and parses documents from a filesystem.
type Loader struct {
	Fs afero.Fs
}

// NewLoader returns a Loader backed by fsys, or by the OS filesystem when
// fsys is nil.
func NewLoader(fsys afero.Fs) *Loader {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	return &Loader{Fs: fsys}
}

// Load reads the file at path and parses it with Parse. A missing file
// yields an error matching ErrNotFound.
func (l *Loader) Load(path string) (any, error) {
	data, err := afero.ReadFile(l.Fs, filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return Parse(path, data)
}
