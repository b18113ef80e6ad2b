package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/doctrans/internal/document"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPlainTextExtractor_Encodings(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{
			name: "utf-8",
			data: []byte("Hello, 世界"),
			want: "Hello, 世界",
		},
		{
			name: "utf-8 with BOM",
			data: []byte("\xef\xbb\xbfHello"),
			want: "Hello",
		},
		{
			name: "utf-16le with BOM",
			data: []byte{0xFF, 0xFE, 'H', 0x00, 'i', 0x00},
			want: "Hi",
		},
		{
			name: "utf-16be with BOM",
			data: []byte{0xFE, 0xFF, 0x00, 'H', 0x00, 'i'},
			want: "Hi",
		},
		{
			name: "gbk",
			data: []byte{0xD6, 0xD0, 0xCE, 0xC4, '!'},
			want: "中文!",
		},
		{
			name: "windows-1252",
			data: []byte("caf\xe9"),
			want: "café",
		},
		{
			name: "crlf normalized",
			data: []byte("line one\r\nline two\rline three"),
			want: "line one\nline two\nline three",
		},
	}

	e := &PlainTextExtractor{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "in.txt", tt.data)
			got, err := e.Extract(context.Background(), path)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if got.FullText != tt.want {
				t.Errorf("FullText = %q, want %q", got.FullText, tt.want)
			}
			if got.Format != document.FormatPlainText {
				t.Errorf("Format = %v, want %v", got.Format, document.FormatPlainText)
			}
		})
	}
}

func TestPlainTextExtractor_EmptyFile(t *testing.T) {
	path := writeTemp(t, "empty.txt", []byte("  \n\t\n"))
	e := &PlainTextExtractor{}
	if _, err := e.Extract(context.Background(), path); err == nil {
		t.Fatal("expected error for whitespace-only file")
	}
}

func TestPlainTextExtractor_MissingFile(t *testing.T) {
	e := &PlainTextExtractor{}
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	var xerr *ExtractionError
	if !errors.As(err, &xerr) {
		t.Fatalf("error type = %T, want *ExtractionError", err)
	}
}
