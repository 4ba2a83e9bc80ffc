// Package relocate places renamed files into the per-directory done/
// tree according to the active mode, resolving name collisions and
// preserving originals when asked to.
package relocate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/brooksc/ai-rename/internal/logging"
	"github.com/brooksc/ai-rename/pkg/types"
)

// DoneDir is the sub-directory renamed outputs are placed into, created
// next to the files being processed.
const DoneDir = "done"

// Engine applies one relocation mode to validated work items.
type Engine struct {
	origSubdir string
	log        *logging.Logger
}

// NewEngine returns an engine that preserves originals under origSubdir
// in copy mode.
func NewEngine(origSubdir string, log *logging.Logger) *Engine {
	return &Engine{origSubdir: origSubdir, log: log}
}

// OrigSubdir returns the preserved-originals directory name, so the
// orchestrator can avoid descending into it.
func (e *Engine) OrigSubdir() string {
	return e.origSubdir
}

// EnsureDirs creates the done/ and originals directories under dir.
// Callers must do this before any relocation attempt; dry-run passes
// must not, so the tree stays untouched.
func (e *Engine) EnsureDirs(dir string) error {
	for _, sub := range []string{DoneDir, e.origSubdir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return fmt.Errorf("creating %s directory: %w", sub, err)
		}
	}
	return nil
}

// Relocate places item under done/ as canonical plus the original
// extension and returns the resolved target path. In dry-run mode the
// mapping is only logged. Errors are per-file failures; the source is
// left in place when the primary placement fails.
func (e *Engine) Relocate(item types.WorkItem, canonical string, mode types.Mode) (string, error) {
	dir := filepath.Dir(item.Path)
	target := resolveCollision(filepath.Join(dir, DoneDir, canonical+item.Ext))

	switch mode {
	case types.ModeDryRun:
		e.log.Info("dry run, would rename", "from", item.Name, "to", filepath.Base(target))
		return target, nil

	case types.ModeMove, types.ModeRename:
		if err := moveFile(item.Path, target); err != nil {
			return "", fmt.Errorf("moving %s: %w", item.Name, err)
		}

	case types.ModeCopy:
		if err := copyFile(item.Path, target); err != nil {
			return "", fmt.Errorf("copying %s: %w", item.Name, err)
		}
		orig := resolveCollision(filepath.Join(dir, e.origSubdir, item.Name))
		if err := moveFile(item.Path, orig); err != nil {
			return "", fmt.Errorf("preserving original %s: %w", item.Name, err)
		}

	default:
		return "", fmt.Errorf("unknown relocation mode %q", mode)
	}

	e.log.Info("relocated", "from", item.Name, "to", filepath.Base(target), "mode", mode)
	return target, nil
}

// resolveCollision returns path if it is free, otherwise the first
// path with an incrementing _1, _2, ... suffix on the base name that
// does not exist yet.
func resolveCollision(path string) string {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}

// moveFile renames src to dst, falling back to copy-and-remove when the
// destination is on a different filesystem.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// copyFile duplicates src at dst, preserving the source's permission
// bits. dst must not exist.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
