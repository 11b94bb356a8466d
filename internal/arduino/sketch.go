package arduino

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

// SketchStore manages sketch sources on disk. Layout follows the
// arduino-cli convention: one directory per sketch under the store root,
// containing exactly one .ino file named after the directory. Disk is
// the source of truth; nothing is cached in memory.
type SketchStore struct {
	root string
}

// NewSketchStore returns a store rooted at the given directory.
func NewSketchStore(root string) *SketchStore {
	return &SketchStore{root: root}
}

// Root returns the sketches root directory.
func (s *SketchStore) Root() string {
	return s.root
}

// Path returns the directory a sketch of the given name would occupy.
func (s *SketchStore) Path(name string) string {
	return filepath.Join(s.root, name)
}

// Write stores the source text as <root>/<name>/<name>.ino, creating the
// directory if needed, and returns the sketch directory path. The file
// replacement is atomic: a concurrent reader sees either the old or the
// new content, never a partial write. Last writer wins.
func (s *SketchStore) Write(name, source string) (string, error) {
	if err := ValidateSketchName(name); err != nil {
		return "", err
	}

	dir := s.Path(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create sketch dir: %w", err)
	}

	file := filepath.Join(dir, name+".ino")
	if err := renameio.WriteFile(file, []byte(source), 0o644); err != nil {
		return "", fmt.Errorf("write sketch %s: %w", name, err)
	}

	return dir, nil
}

// Read returns the source text of a previously written sketch.
func (s *SketchStore) Read(name string) (string, error) {
	if err := ValidateSketchName(name); err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(s.Path(name), name+".ino"))
	if err != nil {
		return "", fmt.Errorf("read sketch %s: %w", name, err)
	}
	return string(data), nil
}

// ValidateSketchName rejects names that are not plain filesystem
// identifiers: path separators, traversal, leading dots or digits, and
// characters outside [A-Za-z0-9_-] all fail with ErrInvalidSketchName.
func ValidateSketchName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSketchName)
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidSketchName, name)
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case (r >= '0' && r <= '9') || r == '-':
			if i == 0 {
				return fmt.Errorf("%w: %q must start with a letter or underscore", ErrInvalidSketchName, name)
			}
		default:
			return fmt.Errorf("%w: %q contains %q", ErrInvalidSketchName, name, r)
		}
	}
	return nil
}
