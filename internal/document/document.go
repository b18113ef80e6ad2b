// Package document defines the structures shared between extraction and
// reconstruction: positioned text blocks for paged documents, paragraph/run
// trees for flow documents, and the extraction envelope the pipeline carries
// between stages. Everything here lives for a single run and is never cached.
package document

import "strings"

// Format classifies how a source document is laid out.
type Format string

const (
	// FormatPaged is a fixed per-page layout (PDF).
	FormatPaged Format = "paged"
	// FormatFlow is a reflowing layout (DOCX).
	FormatFlow Format = "flow"
	// FormatPlainText has no structure beyond paragraphs.
	FormatPlainText Format = "plaintext"
	// FormatMarkdown is plain text with lightweight block structure.
	FormatMarkdown Format = "markdown"
	// FormatHTML is a markup tree whose text nodes are translated in place.
	FormatHTML Format = "html"
)

// BoundingBox is a rectangle in PDF user-space coordinates (origin bottom-left).
type BoundingBox struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the horizontal extent of the box.
func (b BoundingBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box.
func (b BoundingBox) Height() float64 { return b.Y1 - b.Y0 }

// TextBlock is a positioned text unit from a paged document.
// Seq is a document-wide monotonic index; blocks are never reordered.
type TextBlock struct {
	Page     int // 1-based
	Seq      int
	BBox     BoundingBox
	FontSize float64
	FontName string
	Text     string
}

// PageSize records the media box dimensions of one page, used to convert
// between bottom-left PDF coordinates and top-left overlay coordinates.
type PageSize struct {
	Width  float64
	Height float64
}

// RunRecord is a span of paragraph text sharing one formatting style.
type RunRecord struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	FontSize  string // half-points as stored in OOXML, empty if unset
	FontName  string
	Color     string // RRGGBB, empty if unset
}

// ParagraphRecord captures one flow paragraph with its style and runs.
// The concatenation of run texts always equals the paragraph's full text.
type ParagraphRecord struct {
	Index     int
	Style     string
	Alignment string
	Runs      []RunRecord
}

// Text returns the concatenated run texts.
func (p *ParagraphRecord) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// TableRecord is a flow table; each cell holds a nested paragraph list.
type TableRecord struct {
	Rows [][]CellRecord
}

// CellRecord is a single table cell.
type CellRecord struct {
	Paragraphs []ParagraphRecord
}

// FlowItemKind tags the variants of a flow document body item.
type FlowItemKind int

const (
	FlowParagraph FlowItemKind = iota
	FlowTable
)

// FlowItem is one body item, captured once at extraction and replayed in the
// same order at reconstruction. Exactly one of Paragraph/Table is set.
type FlowItem struct {
	Kind      FlowItemKind
	Paragraph *ParagraphRecord
	Table     *TableRecord
}

// MarkdownBlockKind tags the block-level structure kept from a markdown source.
type MarkdownBlockKind int

const (
	MarkdownParagraph MarkdownBlockKind = iota
	MarkdownHeading
	MarkdownCode // kept verbatim, never translated
)

// MarkdownBlock is one block of a markdown document.
type MarkdownBlock struct {
	Kind  MarkdownBlockKind
	Level int // heading level, 0 otherwise
	Text  string
}

// Extraction is the complete output of a format extractor. Which fields are
// populated depends on Format; FullText is always set and is what flows
// through protect → chunk → translate → restore.
type Extraction struct {
	Format    Format
	PageCount int

	// Paged
	Blocks    []TextBlock
	PageSizes []PageSize // indexed by page-1

	// Flow
	Items []FlowItem

	// Markdown
	MarkdownBlocks []MarkdownBlock

	// HTML: raw source retained so the reconstructor can re-parse and
	// replace text nodes positionally.
	HTMLSource string

	// FullText is the translatable text in extraction order.
	FullText string

	// OCRUsed marks that the text layer was insufficient and the text came
	// from OCR; positional metadata is absent and reconstruction degrades
	// to plain-text mode.
	OCRUsed bool
}

// Paragraphs returns all paragraph records in body order, descending into
// table cells as encountered. The returned pointers alias Items.
func (e *Extraction) Paragraphs() []*ParagraphRecord {
	var out []*ParagraphRecord
	for i := range e.Items {
		item := &e.Items[i]
		switch item.Kind {
		case FlowParagraph:
			out = append(out, item.Paragraph)
		case FlowTable:
			for r := range item.Table.Rows {
				for c := range item.Table.Rows[r] {
					cell := &item.Table.Rows[r][c]
					for p := range cell.Paragraphs {
						out = append(out, &cell.Paragraphs[p])
					}
				}
			}
		}
	}
	return out
}
