package reconstruct

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/color"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/dgallion1/doctrans/internal/document"
)

// DefaultPDFFont is a pdfcpu built-in, always available.
const DefaultPDFFont = "Helvetica"

// DefaultMinFontSize is the smallest overlay size before truncation.
const DefaultMinFontSize = 4.0

// avgGlyphWidthRatio approximates glyph advance as a fraction of the font
// size for width fitting. Helvetica averages close to this for Latin text.
const avgGlyphWidthRatio = 0.5

// fontShrinkStep is how much the overlay font shrinks per fitting attempt.
const fontShrinkStep = 0.5

// PagedReconstructor overlays translated lines onto a copy of the original
// PDF: each source block is masked with a white rectangle, then stamped with
// its translation at the same position. Everything the overlay does not
// touch survives byte for byte.
type PagedReconstructor struct {
	FontName    string
	MinFontSize float64
	conf        *model.Configuration
	log         *slog.Logger
}

func NewPagedReconstructor(fontName string, minFontSize float64, log *slog.Logger) *PagedReconstructor {
	if fontName == "" {
		fontName = DefaultPDFFont
	}
	if minFontSize <= 0 {
		minFontSize = DefaultMinFontSize
	}
	return &PagedReconstructor{
		FontName:    fontName,
		MinFontSize: minFontSize,
		conf:        model.NewDefaultConfiguration(),
		log:         log,
	}
}

func (r *PagedReconstructor) Reconstruct(ctx context.Context, ext *document.Extraction, translated, srcPath, outPath string) error {
	if len(ext.Blocks) == 0 {
		return &ReconstructionError{Path: outPath, Err: fmt.Errorf("no positioned blocks to overlay")}
	}
	if err := copyFile(srcPath, outPath); err != nil {
		return &ReconstructionError{Path: outPath, Err: err}
	}

	weights := make([]int, len(ext.Blocks))
	for i, b := range ext.Blocks {
		weights[i] = utf8.RuneCountInString(b.Text)
	}
	texts := MapUnits(translated, "\n", weights)

	failed := 0
	for i, blk := range ext.Blocks {
		if err := ctx.Err(); err != nil {
			os.Remove(outPath)
			return &ReconstructionError{Path: outPath, Err: err}
		}
		text := strings.TrimSpace(texts[i])
		if text == "" {
			continue
		}
		if err := r.overlayBlock(outPath, blk, ext.PageSizes, text); err != nil {
			// One bad block does not sink the document.
			failed++
			r.log.Warn("block overlay failed", "page", blk.Page, "seq", blk.Seq, "error", err)
		}
	}
	if failed == len(ext.Blocks) {
		// The verbatim copy without any translated overlay is not a
		// valid result; remove it rather than leave it on disk.
		os.Remove(outPath)
		return &ReconstructionError{Path: outPath, Err: fmt.Errorf("all %d block overlays failed", failed)}
	}
	if failed > 0 {
		r.log.Info("reconstruction finished with degraded blocks", "failed", failed, "total", len(ext.Blocks))
	}
	return nil
}

func (r *PagedReconstructor) overlayBlock(path string, blk document.TextBlock, sizes []document.PageSize, text string) error {
	page := document.PageSize{Width: 612, Height: 792}
	if blk.Page-1 >= 0 && blk.Page-1 < len(sizes) {
		page = sizes[blk.Page-1]
	}
	// pdfcpu anchors TopLeft offsets from the page's top-left corner, while
	// extraction coordinates grow upward from the bottom-left.
	dx := blk.BBox.X0
	dy := page.Height - blk.BBox.Y1

	pages := []string{fmt.Sprint(blk.Page)}

	if err := api.AddWatermarksFile(path, "", pages, r.maskWatermark(blk, dx, dy), r.conf); err != nil {
		return fmt.Errorf("mask block: %w", err)
	}

	text, size := r.fitText(text, blk)
	if err := api.AddWatermarksFile(path, "", pages, r.textWatermark(text, size, dx, dy), r.conf); err != nil {
		return fmt.Errorf("stamp block: %w", err)
	}
	return nil
}

// fitText shrinks the font until the text fits the block width, then
// truncates at the minimum size as a last resort.
func (r *PagedReconstructor) fitText(text string, blk document.TextBlock) (string, float64) {
	width := blk.BBox.Width()
	size := blk.FontSize
	if size <= 0 {
		size = 11
	}
	for size > r.MinFontSize && estimateWidth(text, size) > width {
		size -= fontShrinkStep
	}
	if size < r.MinFontSize {
		size = r.MinFontSize
	}
	if width > 0 && estimateWidth(text, size) > width {
		fit := int(width / (size * avgGlyphWidthRatio))
		runes := []rune(text)
		if fit > 0 && fit < len(runes) {
			text = string(runes[:fit])
		}
	}
	return text, size
}

func estimateWidth(text string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(text)) * fontSize * avgGlyphWidthRatio
}

// maskWatermark is a white rectangle covering the source block.
func (r *PagedReconstructor) maskWatermark(blk document.TextBlock, dx, dy float64) *model.Watermark {
	bg := color.White
	return &model.Watermark{
		Mode:       model.WMText,
		TextString: " ",
		BgColor:    &bg,
		Opacity:    1.0,
		OnTop:      true,
		Pos:        types.TopLeft,
		Dx:         dx,
		Dy:         -dy,
		Width:      int(blk.BBox.Width()),
		Height:     int(blk.BBox.Height()),
	}
}

func (r *PagedReconstructor) textWatermark(text string, fontSize, dx, dy float64) *model.Watermark {
	return &model.Watermark{
		Mode:           model.WMText,
		TextString:     text,
		FontName:       r.FontName,
		FontSize:       int(fontSize),
		ScaledFontSize: int(fontSize),
		Color:          color.Black,
		Opacity:        1.0,
		OnTop:          true,
		Pos:            types.TopLeft,
		Dx:             dx,
		Dy:             -dy,
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
