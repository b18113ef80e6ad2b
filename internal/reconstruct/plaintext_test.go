package reconstruct

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/doctrans/internal/document"
)

func testLog() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestPlainTextReconstruct(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")
	r := &PlainTextReconstructor{}
	ext := &document.Extraction{Format: document.FormatPlainText}
	if err := r.Reconstruct(context.Background(), ext, "uno\n\ndos", "", out); err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "uno\n\ndos\n" {
		t.Errorf("content = %q, want trailing newline added", data)
	}
}

func TestPlainTextReconstruct_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := filepath.Join(t.TempDir(), "out.txt")
	r := &PlainTextReconstructor{}
	if err := r.Reconstruct(ctx, &document.Extraction{}, "text", "", out); err == nil {
		t.Fatal("expected context error")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output file must not exist after cancellation")
	}
}

func TestForFormat(t *testing.T) {
	for _, f := range []document.Format{
		document.FormatPaged,
		document.FormatFlow,
		document.FormatPlainText,
		document.FormatMarkdown,
		document.FormatHTML,
	} {
		if _, err := ForFormat(f, Options{}, testLog()); err != nil {
			t.Errorf("ForFormat(%q): %v", f, err)
		}
	}
	if _, err := ForFormat(document.Format("bogus"), Options{}, testLog()); err == nil {
		t.Error("expected error for unknown format")
	}
}
