package extract

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/doctrans/internal/document"
)

func buildDocx(t *testing.T, build func(doc *docx.Docx)) string {
	t.Helper()
	doc := docx.New().WithDefaultTheme()
	build(doc)
	path := filepath.Join(t.TempDir(), "in.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := doc.WriteTo(f); err != nil {
		f.Close()
		t.Fatalf("write document: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func extractFlow(t *testing.T, path string) *document.Extraction {
	t.Helper()
	e := &FlowExtractor{log: slog.New(slog.DiscardHandler)}
	ext, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return ext
}

func TestFlowExtract_BodyOrder(t *testing.T) {
	path := buildDocx(t, func(doc *docx.Docx) {
		doc.AddParagraph().AddText("Opening paragraph.")
		tbl := doc.AddTable(1, 2, 9026, nil)
		tbl.TableRows[0].TableCells[0].AddParagraph().AddText("alpha")
		tbl.TableRows[0].TableCells[1].AddParagraph().AddText("beta")
		doc.AddParagraph().AddText("Closing paragraph.")
	})

	ext := extractFlow(t, path)
	if ext.Format != document.FormatFlow {
		t.Fatalf("Format = %q, want %q", ext.Format, document.FormatFlow)
	}

	wantKinds := []document.FlowItemKind{document.FlowParagraph, document.FlowTable, document.FlowParagraph}
	if len(ext.Items) != len(wantKinds) {
		t.Fatalf("items = %d, want %d", len(ext.Items), len(wantKinds))
	}
	for i, want := range wantKinds {
		if ext.Items[i].Kind != want {
			t.Errorf("item %d kind = %v, want %v", i, ext.Items[i].Kind, want)
		}
	}

	tbl := ext.Items[1].Table
	if len(tbl.Rows) != 1 || len(tbl.Rows[0]) != 2 {
		t.Fatalf("table shape = %dx%d, want 1x2", len(tbl.Rows), len(tbl.Rows[0]))
	}
	for i, want := range []string{"alpha", "beta"} {
		cell := tbl.Rows[0][i]
		if len(cell.Paragraphs) != 1 || cell.Paragraphs[0].Text() != want {
			t.Errorf("cell %d = %+v, want single paragraph %q", i, cell.Paragraphs, want)
		}
	}

	// Paragraph indexes are monotonic across body and table cells.
	paras := ext.Paragraphs()
	for i, p := range paras {
		if p.Index != i {
			t.Errorf("paragraph %d has index %d", i, p.Index)
		}
	}
}

func TestFlowExtract_HyperlinkText(t *testing.T) {
	path := buildDocx(t, func(doc *docx.Docx) {
		p := doc.AddParagraph()
		p.AddText("See ")
		p.AddLink("the manual", "https://example.com/manual")
		p.AddText(" for details.")
	})

	ext := extractFlow(t, path)
	rec := ext.Items[0].Paragraph

	var texts []string
	for _, r := range rec.Runs {
		texts = append(texts, r.Text)
	}
	want := []string{"See ", "the manual", " for details."}
	if len(texts) != len(want) {
		t.Fatalf("runs = %q, want %q", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("run %d = %q, want %q", i, texts[i], want[i])
		}
	}

	if got := rec.Text(); got != "See the manual for details." {
		t.Errorf("paragraph text = %q", got)
	}
	if !strings.Contains(ext.FullText, "the manual") {
		t.Errorf("full text lost link text: %q", ext.FullText)
	}
}

func TestFlowExtract_RunFormatting(t *testing.T) {
	path := buildDocx(t, func(doc *docx.Docx) {
		p := doc.AddParagraph().Style("Heading1").Justification("center")
		p.AddText("Bold lead ").Bold()
		p.AddText("italic tail").Italic().Size("28").Color("FF0000")
	})

	ext := extractFlow(t, path)
	rec := ext.Items[0].Paragraph
	if rec.Style != "Heading1" {
		t.Errorf("style = %q, want Heading1", rec.Style)
	}
	if rec.Alignment != "center" {
		t.Errorf("alignment = %q, want center", rec.Alignment)
	}
	if len(rec.Runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(rec.Runs))
	}
	if !rec.Runs[0].Bold || rec.Runs[0].Italic {
		t.Errorf("run 0 flags = %+v, want bold only", rec.Runs[0])
	}
	if !rec.Runs[1].Italic || rec.Runs[1].Bold {
		t.Errorf("run 1 flags = %+v, want italic only", rec.Runs[1])
	}
	if rec.Runs[1].FontSize != "28" {
		t.Errorf("run 1 font size = %q, want 28", rec.Runs[1].FontSize)
	}
	if rec.Runs[1].Color != "FF0000" {
		t.Errorf("run 1 color = %q, want FF0000", rec.Runs[1].Color)
	}
}

func TestFlowExtract_RunTextsConcatenate(t *testing.T) {
	path := buildDocx(t, func(doc *docx.Docx) {
		p := doc.AddParagraph()
		p.AddText("Spans ")
		p.AddText("of ").Bold()
		p.AddLink("linked", "https://example.com")
		p.AddText(" text.")
		doc.AddParagraph().AddText("Single-run paragraph.")
	})

	ext := extractFlow(t, path)
	paras := ext.Paragraphs()
	if len(paras) != 2 {
		t.Fatalf("paragraphs = %d, want 2", len(paras))
	}
	wantTexts := []string{"Spans of linked text.", "Single-run paragraph."}
	for i, p := range paras {
		var sb strings.Builder
		for _, r := range p.Runs {
			sb.WriteString(r.Text)
		}
		if sb.String() != wantTexts[i] {
			t.Errorf("paragraph %d: runs concatenate to %q, want %q", i, sb.String(), wantTexts[i])
		}
	}
	if want := strings.Join(wantTexts, "\n\n"); ext.FullText != want {
		t.Errorf("full text = %q, want %q", ext.FullText, want)
	}
}
