package config

import (
	"os"
	"path/filepath"
)

// DetectRoot walks up from startDir looking for a .ardu/ directory, the
// marker of an initialized workspace. When none is found the start
// directory itself is the root, so ardu works out of any directory and
// drops its sketches next to where it was invoked.
func DetectRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return startDir
	}
	start := dir

	for {
		marker := filepath.Join(dir, ".ardu")
		if info, err := os.Stat(marker); err == nil && info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return start // reached filesystem root
		}
		dir = parent
	}
}
