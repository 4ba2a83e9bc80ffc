package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brooksc/ai-rename/internal/logging"
	"github.com/brooksc/ai-rename/internal/ocr"
	"github.com/brooksc/ai-rename/internal/relocate"
	"github.com/brooksc/ai-rename/internal/workspace"
	"github.com/brooksc/ai-rename/pkg/types"
)

// imagingStub simulates the imaging binaries for image sources: the
// enhancement and threshold passes write their output files.
type imagingStub struct {
	t *testing.T
}

func (s *imagingStub) LookPath(file string) (string, error) { return "/usr/bin/" + file, nil }

func (s *imagingStub) Output(name string, args ...string) ([]byte, error) {
	s.t.Helper()
	out := args[len(args)-1]
	if err := os.WriteFile(out, []byte("image"), 0o644); err != nil {
		s.t.Fatalf("imaging stub writing %s: %v", out, err)
	}
	return nil, nil
}

// textStub returns fixed recognition output keyed by the source's base
// name (the part before the first dot of the page image name).
type textStub struct {
	texts map[string]string
}

func (s *textStub) Recognize(imagePath string) (string, error) {
	base := strings.SplitN(filepath.Base(imagePath), ".", 2)[0]
	return s.texts[base], nil
}

// fakeNamer answers proposals and summaries without a network.
type fakeNamer struct {
	proposal   string
	proposeErr error
	summary    string
	calls      int
}

func (f *fakeNamer) Propose(ctx context.Context, ocrText string) (string, error) {
	f.calls++
	if f.proposeErr != nil {
		return "", f.proposeErr
	}
	return f.proposal, nil
}

func (f *fakeNamer) Summarize(ctx context.Context, ocrText string) (string, error) {
	return f.summary, nil
}

type fixture struct {
	root  string
	ws    *workspace.Workspace
	namer *fakeNamer
	out   *strings.Builder
}

func newPipeline(t *testing.T, texts map[string]string, namer *fakeNamer, opts Options) (*Pipeline, *fixture) {
	t.Helper()
	f := &fixture{
		root:  t.TempDir(),
		ws:    &workspace.Workspace{Dir: t.TempDir()},
		namer: namer,
		out:   &strings.Builder{},
	}
	log := logging.New(io.Discard, "test", false)
	engine := ocr.NewEngine(f.ws, &imagingStub{t: t}, &textStub{texts: texts}, log)
	reloc := relocate.NewEngine("orig", log)
	return New(engine, namer, reloc, f.ws, opts, log, f.out), f
}

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("jpeg bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunMoveEndToEnd(t *testing.T) {
	namer := &fakeNamer{proposal: "Invoice From ACME Corp January 2024"}
	p, f := newPipeline(t, map[string]string{"scan": "ocr text"}, namer, Options{Mode: types.ModeMove})
	src := writeImage(t, f.root, "scan.jpg")

	result, err := p.Run(context.Background(), f.root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Renamed != 1 || result.Skipped != 0 || result.Failed != 0 {
		t.Errorf("result = %+v, want 1 renamed", result)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source still exists after move")
	}
	want := filepath.Join(f.root, "done", "Invoice From ACME Corp January 2024.jpg")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
	if !strings.Contains(f.out.String(), "renamed: scan.jpg") {
		t.Errorf("status output missing rename line: %q", f.out.String())
	}
	if !strings.Contains(f.out.String(), "Batch summary: 1 renamed") {
		t.Errorf("missing batch summary: %q", f.out.String())
	}
}

func TestRunDryRunLeavesTreeUntouched(t *testing.T) {
	namer := &fakeNamer{proposal: "Quarterly Report Draft 2024"}
	p, f := newPipeline(t, map[string]string{"a": "text", "b": "text"}, namer, Options{Mode: types.ModeDryRun})
	writeImage(t, f.root, "a.jpg")
	writeImage(t, f.root, "b.png")

	result, err := p.Run(context.Background(), f.root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Renamed != 2 {
		t.Errorf("result = %+v, want 2 renamed (logged mappings)", result)
	}

	entries, err := os.ReadDir(f.root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("dry run mutated the tree: %v", entries)
	}
}

func TestRunSkipsWorkingDirectories(t *testing.T) {
	namer := &fakeNamer{proposal: "A Perfectly Valid Twenty Char Name"}
	p, f := newPipeline(t, map[string]string{"fresh": "text"}, namer, Options{Mode: types.ModeDryRun})
	writeImage(t, f.root, "fresh.jpg")

	// Already-relocated files must not be picked up again.
	for _, sub := range []string{"done", "orig"} {
		if err := os.MkdirAll(filepath.Join(f.root, sub), 0o755); err != nil {
			t.Fatal(err)
		}
		writeImage(t, filepath.Join(f.root, sub), "processed.jpg")
	}

	result, err := p.Run(context.Background(), f.root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Total() != 1 {
		t.Errorf("processed %d files, want 1: %+v", result.Total(), result)
	}
	if namer.calls != 1 {
		t.Errorf("naming service called %d times, want 1", namer.calls)
	}
}

func TestRunNamingFailureSkipsFile(t *testing.T) {
	namer := &fakeNamer{proposeErr: errors.New("endpoint unreachable")}
	p, f := newPipeline(t, map[string]string{"scan": "text"}, namer, Options{Mode: types.ModeMove})
	src := writeImage(t, f.root, "scan.jpg")

	result, err := p.Run(context.Background(), f.root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Skipped != 1 || result.Renamed != 0 {
		t.Errorf("result = %+v, want 1 skipped", result)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("source must stay at its original path: %v", err)
	}
	if entries, _ := os.ReadDir(filepath.Join(f.root, "done")); len(entries) != 0 {
		t.Errorf("done/ should be empty, got %v", entries)
	}
}

func TestRunRejectedProposalLeavesFileUntouched(t *testing.T) {
	namer := &fakeNamer{proposal: "too short"}
	p, f := newPipeline(t, map[string]string{"scan": "text"}, namer, Options{Mode: types.ModeMove})
	src := writeImage(t, f.root, "scan.jpg")

	result, err := p.Run(context.Background(), f.root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Skipped != 1 {
		t.Errorf("result = %+v, want 1 skipped", result)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("source must stay at its original path: %v", err)
	}
}

func TestRunEmptyExtractionSkipsBeforeNaming(t *testing.T) {
	namer := &fakeNamer{proposal: "Never Used Because OCR Was Empty"}
	p, f := newPipeline(t, map[string]string{}, namer, Options{Mode: types.ModeMove})
	writeImage(t, f.root, "blank.jpg")

	result, err := p.Run(context.Background(), f.root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Skipped != 1 {
		t.Errorf("result = %+v, want 1 skipped", result)
	}
	if namer.calls != 0 {
		t.Errorf("naming service called %d times for empty text", namer.calls)
	}
}

func TestRunKeepOCROutput(t *testing.T) {
	namer := &fakeNamer{proposal: "Meeting Notes From The Offsite"}
	p, f := newPipeline(t, map[string]string{"notes": "extracted words"}, namer,
		Options{Mode: types.ModeDryRun, KeepOCROutput: true})
	writeImage(t, f.root, "notes.png")

	if _, err := p.Run(context.Background(), f.root); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(f.root, "notes_ocr.txt"))
	if err != nil {
		t.Fatalf("ocr text file missing: %v", err)
	}
	if string(got) != "extracted words" {
		t.Errorf("ocr text = %q", got)
	}
}

func TestRunSummarize(t *testing.T) {
	namer := &fakeNamer{proposal: "Meeting Notes From The Offsite", summary: "short summary"}
	p, f := newPipeline(t, map[string]string{"notes": "extracted words"}, namer,
		Options{Mode: types.ModeDryRun, Summarize: true})
	src := writeImage(t, f.root, "notes.png")

	if _, err := p.Run(context.Background(), f.root); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, err := os.ReadFile(f.ws.SummaryPath(src))
	if err != nil {
		t.Fatalf("summary file missing: %v", err)
	}
	if string(got) != "short summary" {
		t.Errorf("summary = %q", got)
	}
}

func TestRunFileSingle(t *testing.T) {
	namer := &fakeNamer{proposal: "Signed Rental Agreement 2024"}
	p, f := newPipeline(t, map[string]string{"lease": "contract text"}, namer, Options{Mode: types.ModeRename})
	src := writeImage(t, f.root, "lease.jpg")

	result, err := p.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Renamed != 1 {
		t.Errorf("result = %+v, want 1 renamed", result)
	}
	if _, err := os.Stat(filepath.Join(f.root, "done", "Signed Rental Agreement 2024.jpg")); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
}

func TestRunFileUnsupported(t *testing.T) {
	p, f := newPipeline(t, nil, &fakeNamer{}, Options{Mode: types.ModeDryRun})
	path := filepath.Join(f.root, "notes.txt")
	if err := os.WriteFile(path, []byte("plain"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := p.RunFile(context.Background(), path); err == nil {
		t.Fatal("expected error for unsupported file type")
	}
}

func TestBatchResult(t *testing.T) {
	r := BatchResult{Renamed: 2, Skipped: 1, Failed: 1}
	if r.Total() != 4 {
		t.Errorf("Total = %d, want 4", r.Total())
	}
	if !r.HasFailures() {
		t.Error("HasFailures = false, want true")
	}
	if (BatchResult{Renamed: 3}).HasFailures() {
		t.Error("HasFailures = true with zero failures")
	}
}
