// Package reconstruct writes translated text back out in the source
// document's shape: overlaying paged documents in place, rebuilding flow
// documents paragraph by paragraph, and splicing text nodes for markup.
package reconstruct

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/doctrans/internal/document"
)

// Reconstructor writes one translated document. The translated argument is
// the full restored text; each implementation maps it back onto the
// structure its extractor captured.
type Reconstructor interface {
	Reconstruct(ctx context.Context, ext *document.Extraction, translated, srcPath, outPath string) error
}

// ReconstructionError is fatal for the document: the output file could not
// be produced. Per-unit overlay failures inside a document degrade instead.
type ReconstructionError struct {
	Path string
	Err  error
}

func (e *ReconstructionError) Error() string {
	return fmt.Sprintf("reconstruct %s: %s", e.Path, e.Err)
}

func (e *ReconstructionError) Unwrap() error { return e.Err }

// Options carries the reconstructor tunables the pipeline configures.
type Options struct {
	// FontName is the pdfcpu font used for paged overlays.
	FontName string
	// MinFontSize is the smallest overlay font before text is truncated.
	MinFontSize float64
}

// ForFormat returns the reconstructor for an extraction format.
func ForFormat(format document.Format, opts Options, log *slog.Logger) (Reconstructor, error) {
	switch format {
	case document.FormatPaged:
		return NewPagedReconstructor(opts.FontName, opts.MinFontSize, log), nil
	case document.FormatFlow:
		return &FlowReconstructor{log: log}, nil
	case document.FormatPlainText:
		return &PlainTextReconstructor{}, nil
	case document.FormatMarkdown:
		return &MarkdownReconstructor{}, nil
	case document.FormatHTML:
		return &HTMLReconstructor{}, nil
	default:
		return nil, fmt.Errorf("no reconstructor for format %q", format)
	}
}
