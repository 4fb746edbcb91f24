package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// Upload limits.
const (
	MaxFiles    = 5
	MaxFileSize = 10 * 1024 * 1024
)

var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
	".txt":  true,
}

// ValidateFiles checks the number, type and size of uploaded pages.
// It reports the first problem found.
func ValidateFiles(paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no files given")
	}
	if len(paths) > MaxFiles {
		return fmt.Errorf("at most %d files can be analyzed at once, got %d", MaxFiles, len(paths))
	}
	for _, p := range paths {
		ext := strings.ToLower(filepath.Ext(p))
		if !supportedExtensions[ext] {
			return fmt.Errorf("%s: unsupported file type %q", filepath.Base(p), ext)
		}
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s: is a directory", filepath.Base(p))
		}
		if info.Size() > MaxFileSize {
			return fmt.Errorf("%s: %s exceeds the %s limit", filepath.Base(p),
				humanize.IBytes(uint64(info.Size())), humanize.IBytes(MaxFileSize))
		}
	}
	return nil
}
