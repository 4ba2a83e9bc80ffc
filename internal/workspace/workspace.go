// Package workspace manages the per-run scratch directory holding
// intermediate raster and binarized images.
package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Workspace is an isolated scratch directory owned by one pipeline run.
// All intermediate artifacts live under Dir; nothing outside the run
// reads or writes it.
type Workspace struct {
	// Dir is the absolute path of the scratch directory.
	Dir string

	// Keep suppresses removal on Close so artifacts can be inspected.
	Keep bool
}

// New creates the scratch directory. Callers must Close it on every
// exit path.
func New(keep bool) (*Workspace, error) {
	dir, err := os.MkdirTemp("", "ai_rename_")
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &Workspace{Dir: dir, Keep: keep}, nil
}

// Close removes the scratch directory and everything in it, unless the
// workspace was created with artifact retention.
func (w *Workspace) Close() error {
	if w.Keep {
		return nil
	}
	return os.RemoveAll(w.Dir)
}

// SourceDir returns the artifact directory for one source file, creating
// it on first use. Directories are named by a hash of the full source
// path, so same-named files from different directories never share
// artifacts.
func (w *Workspace) SourceDir(sourcePath string) (string, error) {
	dir := w.sourceDir(sourcePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating source workspace: %w", err)
	}
	return dir, nil
}

func (w *Workspace) sourceDir(sourcePath string) string {
	sum := sha256.Sum256([]byte(sourcePath))
	return filepath.Join(w.Dir, hex.EncodeToString(sum[:6]))
}

// PagePattern returns the magick output pattern for rasterized pages of
// sourcePath: <sourcedir>/<base>-%d.png. Page ordinals are not zero
// padded, so the generated names sort lexicographically only below ten
// pages.
func (w *Workspace) PagePattern(sourcePath string) string {
	return filepath.Join(w.sourceDir(sourcePath), baseName(sourcePath)+"-%d.png")
}

// BinarizedPath returns the path of the black/white derivative for a
// page or enhanced image file, next to its input.
func (w *Workspace) BinarizedPath(imagePath string) string {
	return imagePath + "_bw.png"
}

// EnhancedPath returns the workspace path holding the contrast/sharpen
// copy of a single-image source. The source itself is never modified.
func (w *Workspace) EnhancedPath(sourcePath string) string {
	return filepath.Join(w.sourceDir(sourcePath), baseName(sourcePath)+".png")
}

// SummaryPath returns the path a document summary is written to.
func (w *Workspace) SummaryPath(sourcePath string) string {
	return filepath.Join(w.sourceDir(sourcePath), baseName(sourcePath)+"_summary.txt")
}

// baseName returns the file name of path without its extension.
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
