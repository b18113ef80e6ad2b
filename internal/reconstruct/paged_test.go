package reconstruct

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/dgallion1/doctrans/internal/document"
)

func testPaged() *PagedReconstructor {
	return NewPagedReconstructor("", 0, slog.New(slog.DiscardHandler))
}

func TestNewPagedReconstructor_Defaults(t *testing.T) {
	r := testPaged()
	if r.FontName != DefaultPDFFont {
		t.Errorf("FontName = %q, want %q", r.FontName, DefaultPDFFont)
	}
	if r.MinFontSize != DefaultMinFontSize {
		t.Errorf("MinFontSize = %v, want %v", r.MinFontSize, DefaultMinFontSize)
	}
}

func TestFitText_KeepsSizeWhenFitting(t *testing.T) {
	r := testPaged()
	blk := document.TextBlock{
		BBox:     document.BoundingBox{X0: 0, X1: 400},
		FontSize: 12,
	}
	text, size := r.fitText("short line", blk)
	if text != "short line" {
		t.Errorf("text = %q, want unchanged", text)
	}
	if size != 12 {
		t.Errorf("size = %v, want 12", size)
	}
}

func TestFitText_ShrinksForLongerTranslation(t *testing.T) {
	r := testPaged()
	blk := document.TextBlock{
		BBox:     document.BoundingBox{X0: 0, X1: 120},
		FontSize: 12,
	}
	// 40 runes at 12pt estimate to 240pt, twice the box.
	text, size := r.fitText("cuarenta caracteres de texto traducidooo", blk)
	if size >= 12 {
		t.Errorf("size = %v, want shrunk below 12", size)
	}
	if size < r.MinFontSize {
		t.Errorf("size = %v, below minimum %v", size, r.MinFontSize)
	}
	_ = text
}

func TestFitText_TruncatesAtMinimum(t *testing.T) {
	r := testPaged()
	blk := document.TextBlock{
		BBox:     document.BoundingBox{X0: 0, X1: 20},
		FontSize: 6,
	}
	long := "this translation can never fit a twenty point wide box at any legible size"
	text, size := r.fitText(long, blk)
	if size != r.MinFontSize {
		t.Errorf("size = %v, want minimum %v", size, r.MinFontSize)
	}
	if len(text) >= len(long) {
		t.Errorf("text not truncated: %d runes", len(text))
	}
}

func TestMaskWatermark_CoversBlock(t *testing.T) {
	r := testPaged()
	blk := document.TextBlock{
		BBox: document.BoundingBox{X0: 72, Y0: 700, X1: 272, Y1: 712},
	}
	wm := r.maskWatermark(blk, 72, 80)
	if wm.BgColor == nil {
		t.Fatal("mask has no background color")
	}
	if wm.Pos != types.TopLeft {
		t.Errorf("Pos = %v, want TopLeft", wm.Pos)
	}
	if wm.Dx != 72 || wm.Dy != -80 {
		t.Errorf("offset = (%v, %v), want (72, -80)", wm.Dx, wm.Dy)
	}
	if wm.Width != 200 || wm.Height != 12 {
		t.Errorf("box = %dx%d, want 200x12", wm.Width, wm.Height)
	}
	if !wm.OnTop {
		t.Error("mask must stamp on top of page content")
	}
}

func TestTextWatermark_Fields(t *testing.T) {
	r := testPaged()
	wm := r.textWatermark("hola", 11, 72, 80)
	if wm.TextString != "hola" {
		t.Errorf("TextString = %q", wm.TextString)
	}
	if wm.FontName != DefaultPDFFont {
		t.Errorf("FontName = %q, want %q", wm.FontName, DefaultPDFFont)
	}
	if wm.FontSize != 11 {
		t.Errorf("FontSize = %d, want 11", wm.FontSize)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	dst := filepath.Join(dir, "dst.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.4 payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copyFile: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "%PDF-1.4 payload" {
		t.Errorf("copied content = %q", got)
	}
}

func TestPagedReconstruct_NoBlocks(t *testing.T) {
	r := testPaged()
	ext := &document.Extraction{Format: document.FormatPaged}
	err := r.Reconstruct(context.Background(), ext, "text", "in.pdf", "out.pdf")
	if err == nil {
		t.Fatal("expected error for extraction without blocks")
	}
}

func TestPagedReconstruct_AllOverlaysFailRemovesOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	out := filepath.Join(dir, "out.pdf")
	// Not a parseable PDF, so every overlay attempt fails after the
	// verbatim copy has been made.
	if err := os.WriteFile(src, []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	ext := &document.Extraction{
		Format:    document.FormatPaged,
		Blocks:    []document.TextBlock{{Page: 1, Seq: 0, BBox: document.BoundingBox{X0: 72, Y0: 700, X1: 300, Y1: 712}, FontSize: 12, Text: "line"}},
		PageSizes: []document.PageSize{{Width: 612, Height: 792}},
	}

	r := testPaged()
	err := r.Reconstruct(context.Background(), ext, "línea", src, out)
	if err == nil {
		t.Fatal("expected error when every overlay fails")
	}
	var rerr *ReconstructionError
	if !errors.As(err, &rerr) {
		t.Fatalf("error type = %T, want *ReconstructionError", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("failed reconstruction must not leave an output file")
	}
}

func TestPagedReconstruct_CancelledRemovesOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	out := filepath.Join(dir, "out.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.4 payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	ext := &document.Extraction{
		Format: document.FormatPaged,
		Blocks: []document.TextBlock{{Page: 1, Seq: 0, BBox: document.BoundingBox{X0: 72, Y0: 700, X1: 300, Y1: 712}, FontSize: 12, Text: "line"}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := testPaged().Reconstruct(ctx, ext, "línea", src, out); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("cancelled reconstruction must not leave an output file")
	}
}
