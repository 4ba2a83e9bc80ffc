package types

import (
	"path/filepath"
	"strings"
)

// FileKind classifies a candidate file by how its pages are obtained.
type FileKind string

const (
	KindPDF   FileKind = "pdf"
	KindImage FileKind = "image"
)

// Mode governs how a renamed file is placed relative to its original.
type Mode string

const (
	// ModeDryRun logs the intended mapping without touching the filesystem.
	ModeDryRun Mode = "dry-run"
	// ModeMove moves the source directly to done/; the original is not kept.
	ModeMove Mode = "move"
	// ModeCopy duplicates the source into done/ and moves the original,
	// under its original name, into the originals subdirectory.
	ModeCopy Mode = "copy"
	// ModeRename places the renamed file into done/ with no originals copy.
	ModeRename Mode = "rename"
)

// Relocating reports whether the mode mutates the filesystem, which is
// what gates creation of the done/ and originals directories.
func (m Mode) Relocating() bool {
	return m == ModeMove || m == ModeCopy || m == ModeRename
}

// WorkItem is one candidate file discovered by the orchestrator. It is
// ephemeral: it exists only while that file is being processed.
type WorkItem struct {
	// Path is the absolute path to the source file.
	Path string

	// Name is the original filename including extension.
	Name string

	// Ext is the original extension, lowercase, with leading dot.
	Ext string

	// Kind is the source classification.
	Kind FileKind
}

// recognizedExtensions maps eligible extensions to their classification.
var recognizedExtensions = map[string]FileKind{
	".pdf": KindPDF,
	".jpg": KindImage,
	".png": KindImage,
}

// NewWorkItem builds a WorkItem for path. The second return value is
// false when the extension is not in the recognized set.
func NewWorkItem(path string) (WorkItem, bool) {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))
	kind, ok := recognizedExtensions[ext]
	if !ok {
		return WorkItem{}, false
	}
	return WorkItem{
		Path: path,
		Name: name,
		Ext:  ext,
		Kind: kind,
	}, true
}

// Base returns the filename without its extension.
func (w WorkItem) Base() string {
	return strings.TrimSuffix(w.Name, filepath.Ext(w.Name))
}
