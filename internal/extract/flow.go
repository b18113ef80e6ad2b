package extract

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/doctrans/internal/document"
)

// FlowExtractor walks a .docx body in original order, capturing paragraphs
// and tables as a tagged-variant sequence with per-run formatting.
type FlowExtractor struct {
	log *slog.Logger
}

func (e *FlowExtractor) Extract(_ context.Context, path string) (*document.Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	ext := &document.Extraction{Format: document.FormatFlow}
	paraIndex := 0

	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			rec := paragraphRecord(v, paraIndex)
			paraIndex++
			ext.Items = append(ext.Items, document.FlowItem{Kind: document.FlowParagraph, Paragraph: &rec})
		case *docx.Table:
			tbl := document.TableRecord{}
			for _, row := range v.TableRows {
				var cells []document.CellRecord
				for _, cell := range row.TableCells {
					var cr document.CellRecord
					for _, p := range cell.Paragraphs {
						rec := paragraphRecord(p, paraIndex)
						paraIndex++
						cr.Paragraphs = append(cr.Paragraphs, rec)
					}
					cells = append(cells, cr)
				}
				tbl.Rows = append(tbl.Rows, cells)
			}
			ext.Items = append(ext.Items, document.FlowItem{Kind: document.FlowTable, Table: &tbl})
		}
	}

	paras := ext.Paragraphs()
	texts := make([]string, len(paras))
	for i, p := range paras {
		texts[i] = p.Text()
	}
	ext.FullText = strings.Join(texts, "\n\n")
	if strings.TrimSpace(ext.FullText) == "" {
		return nil, &ExtractionError{Path: path, Err: errNoText}
	}
	return ext, nil
}

// paragraphRecord captures one paragraph's style, alignment and runs.
func paragraphRecord(p *docx.Paragraph, index int) document.ParagraphRecord {
	rec := document.ParagraphRecord{Index: index}
	if p.Properties != nil {
		if p.Properties.Style != nil {
			rec.Style = p.Properties.Style.Val
		}
		if p.Properties.Justification != nil {
			rec.Alignment = p.Properties.Justification.Val
		}
	}
	for _, child := range p.Children {
		var run *docx.Run
		switch v := child.(type) {
		case *docx.Run:
			run = v
		case *docx.Hyperlink:
			// Link text lives on the hyperlink's inner run; dropping it
			// would lose the text from the rebuilt document.
			run = &v.Run
		default:
			continue
		}
		rr := runRecord(run)
		if rr.Text == "" {
			continue
		}
		rec.Runs = append(rec.Runs, rr)
	}
	return rec
}

// runRecord captures one run's text and formatting.
func runRecord(run *docx.Run) document.RunRecord {
	rr := document.RunRecord{Text: runText(run)}
	if rp := run.RunProperties; rp != nil {
		rr.Bold = rp.Bold != nil
		rr.Italic = rp.Italic != nil
		rr.Underline = rp.Underline != nil
		if rp.Size != nil {
			rr.FontSize = rp.Size.Val
		}
		if rp.Fonts != nil {
			rr.FontName = rp.Fonts.ASCII
		}
		if rp.Color != nil {
			rr.Color = rp.Color.Val
		}
	}
	return rr
}

// runText concatenates a run's text nodes. Field runs, hyperlink runs
// included, carry their display text in InstrText instead.
func runText(run *docx.Run) string {
	var sb strings.Builder
	sb.WriteString(run.InstrText)
	for _, rc := range run.Children {
		if t, ok := rc.(*docx.Text); ok {
			sb.WriteString(t.Text)
		}
	}
	return sb.String()
}
