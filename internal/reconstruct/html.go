package reconstruct

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/dgallion1/doctrans/internal/document"
	"github.com/dgallion1/doctrans/internal/extract"
)

// HTMLReconstructor re-parses the retained source markup and replaces each
// translatable text node in document order, keeping every tag and attribute
// exactly as authored. Leading and trailing whitespace of each node is
// preserved so inline spacing survives.
type HTMLReconstructor struct{}

func (r *HTMLReconstructor) Reconstruct(ctx context.Context, ext *document.Extraction, translated, _, outPath string) error {
	if err := ctx.Err(); err != nil {
		return &ReconstructionError{Path: outPath, Err: err}
	}

	doc, err := html.Parse(strings.NewReader(ext.HTMLSource))
	if err != nil {
		return &ReconstructionError{Path: outPath, Err: err}
	}
	nodes := extract.HTMLTextNodes(doc)
	if len(nodes) == 0 {
		return &ReconstructionError{Path: outPath, Err: fmt.Errorf("no text nodes in retained markup")}
	}

	weights := make([]int, len(nodes))
	for i, n := range nodes {
		weights[i] = utf8.RuneCountInString(extract.CollapseSpace(n.Data))
	}
	texts := MapUnits(translated, "\n\n", weights)

	for i, n := range nodes {
		n.Data = padLike(n.Data, strings.TrimSpace(texts[i]))
	}

	f, err := os.Create(outPath)
	if err != nil {
		return &ReconstructionError{Path: outPath, Err: err}
	}
	if err := html.Render(f, doc); err != nil {
		f.Close()
		return &ReconstructionError{Path: outPath, Err: err}
	}
	if err := f.Close(); err != nil {
		return &ReconstructionError{Path: outPath, Err: err}
	}
	return nil
}

// padLike carries the original node's surrounding whitespace over to the
// replacement text.
func padLike(original, replacement string) string {
	trimmed := strings.TrimLeft(original, " \t\r\n")
	lead := original[:len(original)-len(trimmed)]
	trimmed = strings.TrimRight(original, " \t\r\n")
	trail := original[len(trimmed):]
	return lead + replacement + trail
}
