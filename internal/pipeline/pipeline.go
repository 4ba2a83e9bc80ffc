// Package pipeline walks a directory tree and drives each eligible file
// through OCR, name proposal, validation, and relocation, printing
// per-file status and a batch summary.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/brooksc/ai-rename/internal/logging"
	"github.com/brooksc/ai-rename/internal/ocr"
	"github.com/brooksc/ai-rename/internal/relocate"
	"github.com/brooksc/ai-rename/internal/validate"
	"github.com/brooksc/ai-rename/internal/workspace"
	"github.com/brooksc/ai-rename/pkg/types"
)

// Namer proposes filenames and summaries from OCR text. Implemented by
// the completion-service client; faked in tests.
type Namer interface {
	Propose(ctx context.Context, ocrText string) (string, error)
	Summarize(ctx context.Context, ocrText string) (string, error)
}

// Options select the per-run behaviors chosen on the command line.
type Options struct {
	// Mode governs relocation; ModeDryRun never mutates the tree.
	Mode types.Mode

	// Summarize writes a per-file summary into the workspace.
	Summarize bool

	// KeepOCROutput saves the extracted text next to the source file.
	KeepOCROutput bool

	// Progress renders a per-directory progress bar.
	Progress bool
}

// BatchResult holds the outcome of one pipeline run.
type BatchResult struct {
	Renamed int
	Skipped int
	Failed  int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Renamed + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

type fileStatus int

const (
	statusRenamed fileStatus = iota
	statusSkipped
	statusFailed
)

// Pipeline owns the per-run collaborators. It processes files strictly
// sequentially.
type Pipeline struct {
	ocr   *ocr.Engine
	namer Namer
	reloc *relocate.Engine
	ws    *workspace.Workspace
	opts  Options
	log   *logging.Logger
	out   io.Writer
}

// New assembles a pipeline over the given collaborators. out receives
// the per-file status lines and the batch summary.
func New(ocrEngine *ocr.Engine, namer Namer, reloc *relocate.Engine, ws *workspace.Workspace, opts Options, log *logging.Logger, out io.Writer) *Pipeline {
	return &Pipeline{
		ocr:   ocrEngine,
		namer: namer,
		reloc: reloc,
		ws:    ws,
		opts:  opts,
		log:   log,
		out:   out,
	}
}

// Run processes path, which may be a directory tree or a single file,
// and returns the batch summary. Per-file problems degrade to skip or
// failure; only setup-class problems (unreadable root) return an error.
func (p *Pipeline) Run(ctx context.Context, path string) (BatchResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return BatchResult{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if !info.IsDir() {
		return p.RunFile(ctx, path)
	}

	dirs, items, err := p.collect(path)
	if err != nil {
		return BatchResult{}, err
	}

	var result BatchResult
	for _, dir := range dirs {
		p.runDirectory(ctx, dir, items[dir], &result)
	}

	fmt.Fprintf(p.out, "\nBatch summary: %d renamed, %d skipped, %d failed (total: %d)\n",
		result.Renamed, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// RunFile processes a single file through the same per-file drive.
func (p *Pipeline) RunFile(ctx context.Context, path string) (BatchResult, error) {
	item, ok := types.NewWorkItem(path)
	if !ok {
		return BatchResult{}, fmt.Errorf("%s: unsupported file type", path)
	}
	if p.opts.Mode.Relocating() {
		if err := p.reloc.EnsureDirs(filepath.Dir(path)); err != nil {
			return BatchResult{}, err
		}
	}

	var result BatchResult
	result.count(p.processItem(ctx, item))
	return result, nil
}

// collect walks root and groups eligible files by directory, in walk
// order. It never descends into done/ or the originals directory, so a
// file already relocated is not picked up again.
func (p *Pipeline) collect(root string) ([]string, map[string][]types.WorkItem, error) {
	var dirs []string
	items := make(map[string][]types.WorkItem)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (d.Name() == relocate.DoneDir || d.Name() == p.reloc.OrigSubdir()) {
				return filepath.SkipDir
			}
			return nil
		}
		item, ok := types.NewWorkItem(path)
		if !ok {
			return nil
		}
		dir := filepath.Dir(path)
		if _, seen := items[dir]; !seen {
			dirs = append(dirs, dir)
		}
		items[dir] = append(items[dir], item)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return dirs, items, nil
}

// runDirectory processes one directory's eligible files. A failure to
// create the working directories fails every file in the directory but
// the run moves on.
func (p *Pipeline) runDirectory(ctx context.Context, dir string, batch []types.WorkItem, result *BatchResult) {
	p.log.Info("processing directory", "dir", dir, "files", len(batch))

	if p.opts.Mode.Relocating() {
		if err := p.reloc.EnsureDirs(dir); err != nil {
			p.log.Error("cannot prepare working directories", "dir", dir, "err", err)
			for _, item := range batch {
				fmt.Fprintf(p.out, "failed:  %s (%v)\n", item.Name, err)
				result.Failed++
			}
			return
		}
	}

	var bar *progressbar.ProgressBar
	if p.opts.Progress {
		bar = progressbar.NewOptions(len(batch),
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription(filepath.Base(dir)),
			progressbar.OptionClearOnFinish(),
		)
	}

	for _, item := range batch {
		result.count(p.processItem(ctx, item))
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}
}

func (r *BatchResult) count(s fileStatus) {
	switch s {
	case statusRenamed:
		r.Renamed++
	case statusSkipped:
		r.Skipped++
	case statusFailed:
		r.Failed++
	}
}

// processItem drives one file through the stages. Every stage failure
// leaves the source file at its original path.
func (p *Pipeline) processItem(ctx context.Context, item types.WorkItem) fileStatus {
	text, err := p.ocr.Extract(item)
	if err != nil {
		p.log.Error("text extraction failed", "file", item.Name, "err", err)
		fmt.Fprintf(p.out, "skipped: %s (extraction failed)\n", item.Name)
		return statusSkipped
	}
	if text == "" {
		p.log.Warn("no text recovered", "file", item.Name)
		fmt.Fprintf(p.out, "skipped: %s (no text recovered)\n", item.Name)
		return statusSkipped
	}

	if p.opts.KeepOCROutput {
		p.saveOCRText(item, text)
	}
	if p.opts.Summarize {
		p.saveSummary(ctx, item, text)
	}

	proposal, err := p.namer.Propose(ctx, text)
	if err != nil {
		p.log.Error("naming service failed", "file", item.Name, "err", err)
		fmt.Fprintf(p.out, "skipped: %s (naming service: %v)\n", item.Name, err)
		return statusSkipped
	}

	canonical, err := validate.Validate(proposal)
	if err != nil {
		p.log.Warn("proposal rejected", "file", item.Name, "proposal", proposal, "err", err)
		fmt.Fprintf(p.out, "skipped: %s (proposal rejected)\n", item.Name)
		return statusSkipped
	}

	target, err := p.reloc.Relocate(item, canonical, p.opts.Mode)
	if err != nil {
		p.log.Error("relocation failed", "file", item.Name, "err", err)
		fmt.Fprintf(p.out, "failed:  %s (%v)\n", item.Name, err)
		return statusFailed
	}

	fmt.Fprintf(p.out, "renamed: %s -> %s\n", item.Name, filepath.Base(target))
	return statusRenamed
}

// saveOCRText writes the extracted text next to the source file. A write
// failure is logged and does not affect the file's outcome.
func (p *Pipeline) saveOCRText(item types.WorkItem, text string) {
	path := filepath.Join(filepath.Dir(item.Path), item.Base()+"_ocr.txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		p.log.Warn("cannot save ocr text", "file", item.Name, "err", err)
	}
}

// saveSummary asks the naming service for a summary and stores it in the
// workspace. Failures are logged and do not affect the file's outcome.
func (p *Pipeline) saveSummary(ctx context.Context, item types.WorkItem, text string) {
	summary, err := p.namer.Summarize(ctx, text)
	if err != nil {
		p.log.Warn("summarization failed", "file", item.Name, "err", err)
		return
	}
	path := p.ws.SummaryPath(item.Path)
	if err := os.WriteFile(path, []byte(summary), 0o644); err != nil {
		p.log.Warn("cannot save summary", "file", item.Name, "err", err)
	}
}
