// Package toolexec implements detection and invocation of the external
// image and recognition tools the pipeline shells out to.
package toolexec

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const (
	// BinMagick rasterizes PDFs and binarizes images.
	BinMagick = "magick"
	// BinMogrify applies the contrast/sharpen enhancement pass in place.
	BinMogrify = "mogrify"
	// BinTesseract performs text recognition.
	BinTesseract = "tesseract"
)

// Executor abstracts command execution for testing.
type Executor interface {
	// LookPath reports where the binary lives on PATH.
	LookPath(file string) (string, error)

	// Output runs the command and returns its standard output. A non-zero
	// exit is returned as an *exec.ExitError carrying captured stderr.
	Output(name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Output(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// Default is the production executor.
var Default Executor = &osExecutor{}

// CheckRequired verifies that every binary in bins exists on PATH.
// A missing tool is fatal: the pipeline must not touch any file when the
// toolchain is incomplete.
func CheckRequired(e Executor, bins []string) error {
	var missing []string
	for _, bin := range bins {
		if _, err := e.LookPath(bin); err != nil {
			missing = append(missing, bin)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required tools not installed: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Required returns the toolchain for a run. Recognition through the
// gosseract library does not need the tesseract binary on PATH.
func Required(needTesseractBinary bool) []string {
	bins := []string{BinMagick, BinMogrify}
	if needTesseractBinary {
		bins = append(bins, BinTesseract)
	}
	return bins
}

// Stderr extracts captured standard error from a failed Output call,
// for logging tool diagnostics.
func Stderr(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return strings.TrimSpace(string(exitErr.Stderr))
	}
	return ""
}
