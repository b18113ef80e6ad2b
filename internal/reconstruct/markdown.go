package reconstruct

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/doctrans/internal/document"
)

// MarkdownReconstructor re-emits the block sequence: translated headings and
// paragraphs in place, code and other verbatim blocks untouched.
type MarkdownReconstructor struct{}

func (r *MarkdownReconstructor) Reconstruct(ctx context.Context, ext *document.Extraction, translated, _, outPath string) error {
	if err := ctx.Err(); err != nil {
		return &ReconstructionError{Path: outPath, Err: err}
	}

	var weights []int
	for _, b := range ext.MarkdownBlocks {
		if b.Kind != document.MarkdownCode {
			weights = append(weights, utf8.RuneCountInString(b.Text))
		}
	}
	if len(weights) == 0 {
		return &ReconstructionError{Path: outPath, Err: fmt.Errorf("no translatable blocks")}
	}
	texts := MapUnits(translated, "\n\n", weights)

	var sb strings.Builder
	next := 0
	for _, b := range ext.MarkdownBlocks {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		switch b.Kind {
		case document.MarkdownHeading:
			sb.WriteString(strings.Repeat("#", b.Level))
			sb.WriteString(" ")
			sb.WriteString(strings.TrimSpace(texts[next]))
			next++
		case document.MarkdownParagraph:
			sb.WriteString(strings.TrimSpace(texts[next]))
			next++
		default:
			sb.WriteString(b.Text)
		}
	}
	sb.WriteString("\n")

	if err := os.WriteFile(outPath, []byte(sb.String()), 0o644); err != nil {
		return &ReconstructionError{Path: outPath, Err: err}
	}
	return nil
}
