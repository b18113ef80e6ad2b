package extract

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"unicode"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/doctrans/internal/document"
)

// DefaultExtractMinChars is the average per-page character count below which
// the text layer is treated as insufficient (scanned or image-only pages).
const DefaultExtractMinChars = 64

// yTolerance groups positioned items onto one line when their baselines are
// within this many points.
const yTolerance = 2.0

// wordGapPt inserts a space between items on the same line separated by more
// than this horizontal gap.
const wordGapPt = 1.5

// PagedExtractor reads a PDF's text layer as positioned lines. When the text
// layer is insufficient it falls back to OCR, which carries no positional
// metadata, so reconstruction for that document degrades to plain-text mode.
type PagedExtractor struct {
	MinChars int
	OCR      *OCRFallback
	log      *slog.Logger
}

func (e *PagedExtractor) Extract(ctx context.Context, path string) (*document.Extraction, error) {
	f, r, err := pdflib.Open(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	numPages := r.NumPage()
	ext := &document.Extraction{
		Format:    document.FormatPaged,
		PageCount: numPages,
		PageSizes: make([]document.PageSize, numPages),
	}

	seq := 0
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := r.Page(pageNum)
		ext.PageSizes[pageNum-1] = pageSize(page)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		for _, blk := range groupLines(content.Text) {
			blk.Page = pageNum
			blk.Seq = seq
			seq++
			ext.Blocks = append(ext.Blocks, blk)
		}
	}

	minChars := e.MinChars
	if minChars <= 0 {
		minChars = DefaultExtractMinChars
	}
	if textLayerInsufficient(ext.Blocks, numPages, minChars) && e.OCR != nil {
		e.log.Info("text layer insufficient, falling back to OCR",
			"path", path, "pages", numPages, "blocks", len(ext.Blocks))
		text, err := e.OCR.Recognize(ctx, path, numPages)
		if err != nil {
			// Non-fatal: continue with whatever the text layer yielded.
			e.log.Warn("ocr fallback failed", "error", &OCRError{Err: err})
		} else if strings.TrimSpace(text) != "" {
			ext.Blocks = nil
			ext.OCRUsed = true
			ext.FullText = text
			return ext, nil
		}
	}

	texts := make([]string, len(ext.Blocks))
	for i, b := range ext.Blocks {
		texts[i] = b.Text
	}
	ext.FullText = strings.Join(texts, "\n")
	if strings.TrimSpace(ext.FullText) == "" {
		return nil, &ExtractionError{Path: path, Err: errNoText}
	}
	return ext, nil
}

// textLayerInsufficient reports whether the extracted character count falls
// below the per-page threshold, which marks scanned or image-only documents.
func textLayerInsufficient(blocks []document.TextBlock, pages, minChars int) bool {
	if pages <= 0 {
		return true
	}
	total := 0
	for _, b := range blocks {
		for _, r := range b.Text {
			if !unicode.IsSpace(r) {
				total++
			}
		}
	}
	return total < minChars*pages
}

// groupLines collapses positioned glyph runs into line-level blocks: items
// are sorted top-to-bottom then left-to-right and merged while their
// baselines stay within tolerance.
func groupLines(items []pdflib.Text) []document.TextBlock {
	if len(items) == 0 {
		return nil
	}
	sorted := make([]pdflib.Text, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if diff := sorted[i].Y - sorted[j].Y; diff > yTolerance || diff < -yTolerance {
			return sorted[i].Y > sorted[j].Y // larger Y is higher on the page
		}
		return sorted[i].X < sorted[j].X
	})

	var blocks []document.TextBlock
	var sb strings.Builder
	var cur document.TextBlock
	var lastEnd float64

	flush := func() {
		cur.Text = sb.String()
		if strings.TrimSpace(cur.Text) != "" {
			blocks = append(blocks, cur)
		}
		sb.Reset()
	}

	for i, it := range sorted {
		if i == 0 || it.Y > cur.BBox.Y0+yTolerance || it.Y < cur.BBox.Y0-yTolerance {
			if i > 0 {
				flush()
			}
			cur = document.TextBlock{
				BBox:     document.BoundingBox{X0: it.X, Y0: it.Y, X1: it.X + it.W, Y1: it.Y + it.FontSize},
				FontSize: it.FontSize,
				FontName: it.Font,
			}
			lastEnd = it.X
		}
		if it.X-lastEnd > wordGapPt && sb.Len() > 0 && !strings.HasSuffix(sb.String(), " ") {
			sb.WriteString(" ")
		}
		sb.WriteString(it.S)
		lastEnd = it.X + it.W
		if it.X < cur.BBox.X0 {
			cur.BBox.X0 = it.X
		}
		if it.X+it.W > cur.BBox.X1 {
			cur.BBox.X1 = it.X + it.W
		}
		if it.FontSize > cur.FontSize {
			cur.FontSize = it.FontSize
			cur.BBox.Y1 = it.Y + it.FontSize
		}
	}
	flush()
	return blocks
}

// pageSize reads the page media box, defaulting to US Letter when absent.
func pageSize(page pdflib.Page) document.PageSize {
	size := document.PageSize{Width: 612, Height: 792}
	if page.V.IsNull() {
		return size
	}
	mb := page.V.Key("MediaBox")
	if mb.Len() == 4 {
		x0, y0 := mb.Index(0).Float64(), mb.Index(1).Float64()
		x1, y1 := mb.Index(2).Float64(), mb.Index(3).Float64()
		if x1 > x0 && y1 > y0 {
			size = document.PageSize{Width: x1 - x0, Height: y1 - y0}
		}
	}
	return size
}
