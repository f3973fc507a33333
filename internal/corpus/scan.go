// Package corpus discovers the candidate input images for a render.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"photomesh/internal/apperr"
	"photomesh/pkg/imgutil"
)

// ImagePath is one discovered image: its absolute path and lowercase extension.
type ImagePath struct {
	Path string
	Ext  string
}

// Name returns the file name without directories.
func (p ImagePath) Name() string {
	return filepath.Base(p.Path)
}

// Directory extensions that denote opaque bundles. Their contents are never
// treated as loose corpus files.
var packageExtensions = map[string]bool{
	".app":           true,
	".bundle":        true,
	".framework":     true,
	".plugin":        true,
	".kext":          true,
	".pkg":           true,
	".rtfd":          true,
	".photoslibrary": true,
	".aplibrary":     true,
	".xcassets":      true,
	".scnassets":     true,
	".xcodeproj":     true,
}

// Scan walks dir recursively and returns the supported images under it,
// ordered by file name. Hidden entries and package bundles are skipped.
func Scan(dir string) ([]ImagePath, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrInvalidInput, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", apperr.ErrInvalidInput, dir)
	}

	absRoot, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrInvalidInput, dir, err)
	}
	// WalkDir does not follow a symlinked root.
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrInvalidInput, dir, err)
	}

	var files []ImagePath
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == absRoot {
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if packageExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if imgutil.Supported(ext) {
			files = append(files, ImagePath{Path: path, Ext: ext})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: cannot enumerate %s: %v", apperr.ErrInvalidInput, dir, err)
	}

	SortByName(files)
	return files, nil
}

// SortByName orders files by base name, breaking ties on the full path so the
// result is stable across runs.
func SortByName(files []ImagePath) {
	sort.Slice(files, func(i, j int) bool {
		ni, nj := files[i].Name(), files[j].Name()
		if ni != nj {
			return ni < nj
		}
		return files[i].Path < files[j].Path
	})
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
