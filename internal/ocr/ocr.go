// Package ocr converts source documents into text: PDFs are rasterized
// page by page, every page is binarized, and a recognizer extracts the
// text. Intermediate artifacts live in the run workspace and each stage
// is cached for the duration of the run.
package ocr

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/brooksc/ai-rename/internal/logging"
	"github.com/brooksc/ai-rename/internal/toolexec"
	"github.com/brooksc/ai-rename/internal/workspace"
	"github.com/brooksc/ai-rename/pkg/types"
)

// rasterDensity is the fixed DPI for PDF rasterization; the recognizer
// receives the same value as its resolution hint.
const rasterDensity = "300"

// Recognizer turns a binarized page image into text.
type Recognizer interface {
	Recognize(imagePath string) (string, error)
}

// stageKey identifies one cached pipeline step for one source artifact.
type stageKey struct {
	source string
	step   string
}

const (
	stepRaster    = "raster"
	stepEnhance   = "enhance"
	stepBinarize  = "binarize"
	stepRecognize = "recognize"
)

// Engine extracts text from work items. Stages are cached in-memory,
// keyed by (source, step); an entry is recorded only after the producing
// tool invocation fully succeeds, so a partial write is never taken for
// a completed stage.
type Engine struct {
	ws   *workspace.Workspace
	exec toolexec.Executor
	rec  Recognizer
	log  *logging.Logger

	artifacts map[stageKey][]string
	texts     map[stageKey]string
}

// NewEngine builds an engine over the given workspace, executor, and
// recognizer.
func NewEngine(ws *workspace.Workspace, exec toolexec.Executor, rec Recognizer, log *logging.Logger) *Engine {
	return &Engine{
		ws:        ws,
		exec:      exec,
		rec:       rec,
		log:       log,
		artifacts: make(map[stageKey][]string),
		texts:     make(map[stageKey]string),
	}
}

// Extract returns the text of a work item: per-page text joined in page
// order with a blank line, trimmed. The empty string is a valid result
// meaning no text was recoverable; callers must treat it as a stop
// condition for the item.
func (e *Engine) Extract(item types.WorkItem) (string, error) {
	switch item.Kind {
	case types.KindPDF:
		return e.extractPDF(item)
	case types.KindImage:
		return e.extractImage(item)
	default:
		return "", fmt.Errorf("unsupported file kind %q for %s", item.Kind, item.Path)
	}
}

func (e *Engine) extractPDF(item types.WorkItem) (string, error) {
	pages, err := e.rasterize(item)
	if err != nil {
		return "", fmt.Errorf("rasterizing %s: %w", item.Path, err)
	}

	var parts []string
	for _, page := range pages {
		text, ok := e.processPage(page, true)
		if !ok {
			// Recognition failure degrades the page to empty text; the
			// remaining pages still contribute.
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func (e *Engine) extractImage(item types.WorkItem) (string, error) {
	enhanced, err := e.enhanceImageCopy(item)
	if err != nil {
		return "", fmt.Errorf("enhancing %s: %w", item.Path, err)
	}
	text, ok := e.processPage(enhanced, false)
	if !ok {
		return "", nil
	}
	return strings.TrimSpace(text), nil
}

// rasterize converts every page of a PDF into a workspace PNG in one
// all-or-nothing magick invocation. A cache hit skips the tool entirely.
func (e *Engine) rasterize(item types.WorkItem) ([]string, error) {
	key := stageKey{source: item.Path, step: stepRaster}
	if pages, ok := e.artifacts[key]; ok {
		e.log.Info("using cached page images", "file", item.Name)
		return pages, nil
	}

	srcDir, err := e.ws.SourceDir(item.Path)
	if err != nil {
		return nil, err
	}
	pattern := e.ws.PagePattern(item.Path)
	args := []string{
		"convert", "-density", rasterDensity, item.Path,
		"-depth", "8", "-strip", "-background", "white", "-alpha", "off",
		pattern,
	}
	e.log.Debug("executing", "cmd", toolexec.BinMagick, "args", strings.Join(args, " "))
	if _, err := e.exec.Output(toolexec.BinMagick, args...); err != nil {
		return nil, fmt.Errorf("magick convert: %w (%s)", err, toolexec.Stderr(err))
	}

	pages, err := e.listPages(srcDir, item.Base())
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("rasterization produced no pages for %s", item.Path)
	}

	// A tool crash partway through must not look like completion: when
	// the document's page count is known, the raster set has to match it.
	if expected, err := api.PageCountFile(item.Path); err == nil && len(pages) != expected {
		return nil, fmt.Errorf("incomplete raster output for %s: %d of %d pages", item.Path, len(pages), expected)
	}

	e.artifacts[key] = pages
	return pages, nil
}

// listPages returns the rasterized page files for a source base name in
// lexicographic order. The directory is enumerated and filtered by
// prefix: base names may contain glob metacharacters. Ordinals are not
// zero padded, so documents with ten or more pages concatenate out of
// their print order ("10" sorts before "2"); this matches the
// generated-name contract as it stands.
func (e *Engine) listPages(dir, base string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing pages for %s: %w", base, err)
	}
	var pages []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, base+"-") || !strings.HasSuffix(name, ".png") || strings.HasSuffix(name, "_bw.png") {
			continue
		}
		pages = append(pages, filepath.Join(dir, name))
	}
	sort.Strings(pages)
	return pages, nil
}

// enhanceImageCopy applies the contrast/sharpen pass to a workspace copy
// of a single-image source. The source file itself is never touched.
func (e *Engine) enhanceImageCopy(item types.WorkItem) (string, error) {
	key := stageKey{source: item.Path, step: stepEnhance}
	if paths, ok := e.artifacts[key]; ok {
		e.log.Info("using cached enhanced image", "file", item.Name)
		return paths[0], nil
	}

	if _, err := e.ws.SourceDir(item.Path); err != nil {
		return "", err
	}
	enhanced := e.ws.EnhancedPath(item.Path)
	args := []string{"convert", item.Path, "-contrast", "-sharpen", "0x1", enhanced}
	e.log.Debug("executing", "cmd", toolexec.BinMagick, "args", strings.Join(args, " "))
	if _, err := e.exec.Output(toolexec.BinMagick, args...); err != nil {
		return "", fmt.Errorf("magick convert: %w (%s)", err, toolexec.Stderr(err))
	}

	e.artifacts[key] = []string{enhanced}
	return enhanced, nil
}

// processPage binarizes one page image and recognizes its text. The
// second return value is false when a tool failed and the page
// contributes nothing. inWorkspace selects in-place enhancement for
// rasterized pages, which already live in the workspace.
func (e *Engine) processPage(pagePath string, inWorkspace bool) (string, bool) {
	bw, err := e.binarize(pagePath, inWorkspace)
	if err != nil {
		e.log.Error("binarization failed", "page", filepath.Base(pagePath), "err", err)
		return "", false
	}

	key := stageKey{source: bw, step: stepRecognize}
	if text, ok := e.texts[key]; ok {
		return text, true
	}

	text, err := e.rec.Recognize(bw)
	if err != nil {
		e.log.Error("recognition failed", "page", filepath.Base(pagePath), "err", err, "stderr", toolexec.Stderr(err))
		return "", false
	}

	e.texts[key] = text
	return text, true
}

// binarize produces the black/white derivative of a page image:
// contrast/sharpen enhancement followed by a 50% threshold. A cache hit
// skips both passes.
func (e *Engine) binarize(pagePath string, enhanceInPlace bool) (string, error) {
	key := stageKey{source: pagePath, step: stepBinarize}
	if paths, ok := e.artifacts[key]; ok {
		e.log.Info("using cached binarized image", "page", filepath.Base(pagePath))
		return paths[0], nil
	}

	if enhanceInPlace {
		args := []string{"-contrast", "-sharpen", "0x1", pagePath}
		e.log.Debug("executing", "cmd", toolexec.BinMogrify, "args", strings.Join(args, " "))
		if _, err := e.exec.Output(toolexec.BinMogrify, args...); err != nil {
			return "", fmt.Errorf("mogrify: %w (%s)", err, toolexec.Stderr(err))
		}
	}

	bw := e.ws.BinarizedPath(pagePath)
	args := []string{"convert", pagePath, "-threshold", "50%", bw}
	e.log.Debug("executing", "cmd", toolexec.BinMagick, "args", strings.Join(args, " "))
	if _, err := e.exec.Output(toolexec.BinMagick, args...); err != nil {
		return "", fmt.Errorf("magick convert: %w (%s)", err, toolexec.Stderr(err))
	}

	e.artifacts[key] = []string{bw}
	return bw, nil
}
