package extract

import (
	"context"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/doctrans/internal/document"
)

// HTMLExtractor pulls the translatable text nodes out of an HTML file. The
// full source is retained so reconstruction can splice translations back
// into the original markup instead of regenerating it.
type HTMLExtractor struct{}

func (e *HTMLExtractor) Extract(_ context.Context, path string) (*document.Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	var texts []string
	for _, n := range HTMLTextNodes(doc) {
		texts = append(texts, CollapseSpace(n.Data))
	}

	ext := &document.Extraction{
		Format:     document.FormatHTML,
		HTMLSource: string(data),
		FullText:   strings.Join(texts, "\n\n"),
	}
	if strings.TrimSpace(ext.FullText) == "" {
		return nil, &ExtractionError{Path: path, Err: errNoText}
	}
	return ext, nil
}

// HTMLTextNodes returns the document's translatable text nodes in document
// order, skipping script, style and comments. Reconstruction walks the same
// order, so extraction and reconstruction stay unit-for-unit aligned.
func HTMLTextNodes(doc *html.Node) []*html.Node {
	var nodes []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
			nodes = append(nodes, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return nodes
}

// CollapseSpace folds runs of whitespace into single spaces, matching how
// browsers render inter-word whitespace.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
