package ocr

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/brooksc/ai-rename/internal/toolexec"
)

// ExecRecognizer runs the tesseract binary for each page and captures
// its stdout.
type ExecRecognizer struct {
	Exec toolexec.Executor
	Lang string
}

// Recognize invokes tesseract on a binarized page image. Output that is
// not valid UTF-8 is decoded permissively, dropping the offending bytes.
func (r *ExecRecognizer) Recognize(imagePath string) (string, error) {
	out, err := r.Exec.Output(toolexec.BinTesseract,
		imagePath, "stdout",
		"-l", r.Lang,
		"--dpi", rasterDensity,
		"--psm", "6",
		"--oem", "1",
	)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	text := string(out)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	return text, nil
}
