package reconstruct

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/doctrans/internal/document"
)

// defaultTableWidth is the full usable width of a page in twentieths of a
// point, the unit WordprocessingML uses for table geometry.
const defaultTableWidth = 9026

// FlowReconstructor rebuilds a .docx from the extracted item sequence,
// carrying paragraph styles, alignment and run formatting over and
// redistributing each paragraph's translation across its original runs.
type FlowReconstructor struct {
	log *slog.Logger
}

func (r *FlowReconstructor) Reconstruct(ctx context.Context, ext *document.Extraction, translated, srcPath, outPath string) error {
	paras := ext.Paragraphs()
	if len(paras) == 0 {
		return &ReconstructionError{Path: outPath, Err: fmt.Errorf("no paragraphs to rebuild")}
	}
	if err := ctx.Err(); err != nil {
		return &ReconstructionError{Path: outPath, Err: err}
	}

	weights := make([]int, len(paras))
	for i, p := range paras {
		weights[i] = utf8.RuneCountInString(p.Text())
	}
	texts := MapUnits(translated, "\n\n", weights)

	doc := docx.New().WithDefaultTheme()
	next := 0
	takeText := func() string {
		t := texts[next]
		next++
		return t
	}

	for _, item := range ext.Items {
		switch item.Kind {
		case document.FlowParagraph:
			writeParagraph(doc.AddParagraph(), item.Paragraph, takeText())
		case document.FlowTable:
			if err := writeTable(doc, item.Table, takeText); err != nil {
				return &ReconstructionError{Path: outPath, Err: err}
			}
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return &ReconstructionError{Path: outPath, Err: err}
	}
	if _, err := doc.WriteTo(f); err != nil {
		f.Close()
		os.Remove(outPath)
		return &ReconstructionError{Path: outPath, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(outPath)
		return &ReconstructionError{Path: outPath, Err: err}
	}
	return nil
}

func writeTable(doc *docx.Docx, tbl *document.TableRecord, takeText func() string) error {
	rows := len(tbl.Rows)
	cols := 0
	for _, row := range tbl.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if rows == 0 || cols == 0 {
		return nil
	}
	out := doc.AddTable(rows, cols, defaultTableWidth, nil)
	for ri, row := range tbl.Rows {
		for ci, cell := range row {
			outCell := out.TableRows[ri].TableCells[ci]
			for _, p := range cell.Paragraphs {
				writeParagraph(outCell.AddParagraph(), &p, takeText())
			}
		}
	}
	return nil
}

// writeParagraph emits one paragraph, splitting its translation across the
// original runs in proportion to their source lengths so bold or colored
// spans keep roughly their place.
func writeParagraph(out *docx.Paragraph, src *document.ParagraphRecord, text string) {
	if src.Style != "" {
		out.Style(src.Style)
	}
	if src.Alignment != "" {
		out.Justification(src.Alignment)
	}
	if len(src.Runs) == 0 {
		return
	}

	weights := make([]int, len(src.Runs))
	for i, run := range src.Runs {
		weights[i] = utf8.RuneCountInString(run.Text)
	}
	parts := SplitProportional(text, weights)

	for i, run := range src.Runs {
		if parts[i] == "" {
			continue
		}
		r := out.AddText(parts[i])
		if run.Bold {
			r.Bold()
		}
		if run.Italic {
			r.Italic()
		}
		if run.Underline {
			r.Underline("single")
		}
		if run.FontSize != "" {
			r.Size(run.FontSize)
		}
		if run.Color != "" {
			r.Color(run.Color)
		}
	}
}
