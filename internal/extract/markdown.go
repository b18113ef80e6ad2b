package extract

import (
	"context"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/doctrans/internal/document"
)

// MarkdownExtractor parses a Markdown file into top-level blocks. Headings
// and paragraphs are translatable; code blocks, thematic breaks and every
// other construct pass through verbatim so their syntax survives the round
// trip untouched.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Extract(_ context.Context, path string) (*document.Extraction, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(source))

	ext := &document.Extraction{Format: document.FormatMarkdown}
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		blk := markdownBlock(node, source)
		if strings.TrimSpace(blk.Text) == "" && blk.Kind != document.MarkdownCode {
			continue
		}
		ext.MarkdownBlocks = append(ext.MarkdownBlocks, blk)
	}

	var texts []string
	for _, b := range ext.MarkdownBlocks {
		if b.Kind != document.MarkdownCode {
			texts = append(texts, b.Text)
		}
	}
	ext.FullText = strings.Join(texts, "\n\n")
	if strings.TrimSpace(ext.FullText) == "" {
		return nil, &ExtractionError{Path: path, Err: errNoText}
	}
	return ext, nil
}

func markdownBlock(node ast.Node, source []byte) document.MarkdownBlock {
	switch n := node.(type) {
	case *ast.Heading:
		return document.MarkdownBlock{
			Kind:  document.MarkdownHeading,
			Level: n.Level,
			Text:  linesText(n, source),
		}
	case *ast.Paragraph:
		return document.MarkdownBlock{
			Kind: document.MarkdownParagraph,
			Text: linesText(n, source),
		}
	case *ast.FencedCodeBlock:
		var sb strings.Builder
		sb.WriteString("```")
		if info := n.Info; info != nil {
			sb.Write(info.Segment.Value(source))
		}
		sb.WriteString("\n")
		writeLines(&sb, n, source)
		sb.WriteString("```")
		return document.MarkdownBlock{Kind: document.MarkdownCode, Text: sb.String()}
	case *ast.CodeBlock:
		var sb strings.Builder
		for i := 0; i < n.Lines().Len(); i++ {
			sb.WriteString("    ")
			seg := n.Lines().At(i)
			sb.Write(seg.Value(source))
		}
		return document.MarkdownBlock{Kind: document.MarkdownCode, Text: strings.TrimRight(sb.String(), "\n")}
	case *ast.ThematicBreak:
		return document.MarkdownBlock{Kind: document.MarkdownCode, Text: "---"}
	default:
		// Lists, blockquotes, tables and anything else pass through as raw
		// source so no syntax is lost.
		return document.MarkdownBlock{Kind: document.MarkdownCode, Text: rawBlock(node, source)}
	}
}

// linesText joins a block's source lines with newlines, which keeps soft
// wraps intact for the translator.
func linesText(node ast.Node, source []byte) string {
	lines := node.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		parts = append(parts, strings.TrimRight(string(seg.Value(source)), "\n"))
	}
	return strings.Join(parts, "\n")
}

func writeLines(sb *strings.Builder, node ast.Node, source []byte) {
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
}

// rawBlock recovers a node's verbatim source by spanning its descendants'
// segments out to line boundaries, which picks the list and quote markers
// back up.
func rawBlock(node ast.Node, source []byte) string {
	start, stop := -1, -1
	var visit func(n ast.Node)
	visit = func(n ast.Node) {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			if start == -1 || seg.Start < start {
				start = seg.Start
			}
			if seg.Stop > stop {
				stop = seg.Stop
			}
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			visit(c)
		}
	}
	visit(node)
	if start == -1 {
		return ""
	}
	for start > 0 && source[start-1] != '\n' {
		start--
	}
	for stop < len(source) && source[stop] != '\n' {
		stop++
	}
	return strings.TrimRight(string(source[start:stop]), "\n")
}
