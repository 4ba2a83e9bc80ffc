package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewAndClose(t *testing.T) {
	ws, err := New(false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !strings.Contains(filepath.Base(ws.Dir), "ai_rename_") {
		t.Errorf("workspace dir %q should carry the run prefix", ws.Dir)
	}
	if _, err := os.Stat(ws.Dir); err != nil {
		t.Fatalf("workspace dir missing: %v", err)
	}

	// Artifacts inside the workspace go away with it.
	if err := os.WriteFile(filepath.Join(ws.Dir, "scan-1.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ws.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(ws.Dir); !os.IsNotExist(err) {
		t.Errorf("workspace dir should be removed, stat err = %v", err)
	}
}

func TestCloseKeepsArtifacts(t *testing.T) {
	ws, err := New(true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(ws.Dir) })

	if err := ws.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(ws.Dir); err != nil {
		t.Errorf("workspace dir should be retained: %v", err)
	}
}

func TestArtifactPaths(t *testing.T) {
	ws := &Workspace{Dir: "/tmp/ai_rename_x"}
	const src = "/docs/2024/invoice.pdf"
	srcDir := ws.sourceDir(src)

	if !strings.HasPrefix(srcDir, "/tmp/ai_rename_x/") {
		t.Fatalf("source dir %q not under workspace", srcDir)
	}
	tests := []struct {
		got  string
		want string
	}{
		{ws.PagePattern(src), filepath.Join(srcDir, "invoice-%d.png")},
		{ws.BinarizedPath(filepath.Join(srcDir, "invoice-1.png")), filepath.Join(srcDir, "invoice-1.png_bw.png")},
		{ws.EnhancedPath(src), filepath.Join(srcDir, "invoice.png")},
		{ws.SummaryPath(src), filepath.Join(srcDir, "invoice_summary.txt")},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestSourceDirSeparatesSameBaseNames(t *testing.T) {
	ws, err := New(false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { ws.Close() })

	dirA, err := ws.SourceDir("/docs/2023/scan.pdf")
	if err != nil {
		t.Fatalf("SourceDir: %v", err)
	}
	dirB, err := ws.SourceDir("/docs/2024/scan.pdf")
	if err != nil {
		t.Fatalf("SourceDir: %v", err)
	}
	if dirA == dirB {
		t.Fatalf("same-named sources share artifact dir %q", dirA)
	}
	for _, dir := range []string{dirA, dirB} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("source dir %q not created: %v", dir, err)
		}
	}
	if ws.PagePattern("/docs/2023/scan.pdf") == ws.PagePattern("/docs/2024/scan.pdf") {
		t.Error("page patterns collide across directories")
	}
}
