package logging

import (
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf strings.Builder
	l := New(&buf, "test", false)

	l.Info("processing", "file", "a.pdf")
	l.Warn("slow page")
	l.Error("tool failed", "exit", 1)
	l.Debug("hidden")

	out := buf.String()
	for _, want := range []string{"[test]", "[INFO] processing file=a.pdf", "[WARN] slow page", "[ERROR] tool failed exit=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "DEBUG") {
		t.Errorf("debug message logged with debug disabled:\n%s", out)
	}
}

func TestLoggerDebugEnabled(t *testing.T) {
	var buf strings.Builder
	l := New(&buf, "test", true)
	l.Debug("command", "argv", "tesseract x stdout")
	if !strings.Contains(buf.String(), "[DEBUG] command argv=tesseract x stdout") {
		t.Errorf("missing debug line:\n%s", buf.String())
	}
}

func TestLoggerOddKeyValues(t *testing.T) {
	var buf strings.Builder
	l := New(&buf, "test", false)
	l.Info("msg", "dangling")
	if strings.Contains(buf.String(), "dangling") {
		t.Errorf("dangling key should be dropped:\n%s", buf.String())
	}
}
