package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/dgallion1/doctrans/internal/document"
)

const sampleHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Page Title</title>
  <style>body { color: red; }</style>
  <script>console.log("skip me");</script>
</head>
<body>
  <h1>A   Heading</h1>
  <p>Some <b>bold</b> prose.</p>
</body>
</html>`

func TestHTMLExtractor_SkipsScriptAndStyle(t *testing.T) {
	path := writeTemp(t, "page.html", []byte(sampleHTML))
	e := &HTMLExtractor{}
	got, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Format != document.FormatHTML {
		t.Fatalf("Format = %v, want %v", got.Format, document.FormatHTML)
	}
	for _, banned := range []string{"console.log", "color: red"} {
		if strings.Contains(got.FullText, banned) {
			t.Errorf("FullText contains %q, should be skipped", banned)
		}
	}
	for _, want := range []string{"Page Title", "A Heading", "bold"} {
		if !strings.Contains(got.FullText, want) {
			t.Errorf("FullText missing %q: %q", want, got.FullText)
		}
	}
	if got.HTMLSource != sampleHTML {
		t.Error("original markup not retained")
	}
}

func TestHTMLExtractor_CollapsesWhitespace(t *testing.T) {
	path := writeTemp(t, "page.html", []byte(sampleHTML))
	e := &HTMLExtractor{}
	got, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if strings.Contains(got.FullText, "A   Heading") {
		t.Errorf("inter-word whitespace not collapsed: %q", got.FullText)
	}
}

func TestHTMLExtractor_NoText(t *testing.T) {
	path := writeTemp(t, "page.html", []byte("<html><body><script>x()</script></body></html>"))
	e := &HTMLExtractor{}
	if _, err := e.Extract(context.Background(), path); err == nil {
		t.Fatal("expected error for markup without text")
	}
}
