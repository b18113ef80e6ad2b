// Package extract converts source documents into the structures the
// translation pipeline works on: positioned text blocks for paged documents,
// paragraph/run trees for flow documents, and plain text otherwise.
// Extraction never mutates the source; the document is read once.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/doctrans/internal/document"
)

// Extractor converts one document into an Extraction. The context bounds
// any external tool invocation (rasterization, legacy converters).
type Extractor interface {
	Extract(ctx context.Context, path string) (*document.Extraction, error)
}

// ExtractionError is fatal for the document: corrupt or unreadable input.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %s", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// OCRError is non-fatal: the pipeline proceeds with whatever text was
// recovered, which may later surface as an ExtractionError if empty.
type OCRError struct {
	Err error
}

func (e *OCRError) Error() string { return fmt.Sprintf("ocr: %s", e.Err) }

func (e *OCRError) Unwrap() error { return e.Err }

// errNoText marks a document that yielded no translatable text at all.
var errNoText = errors.New("no extractable text")

// SupportedExtensions lists the file extensions the pipeline accepts.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".docx":     true,
	".doc":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
}

// Options carries the extractor tunables the pipeline configures.
type Options struct {
	// ExtractMinChars is the average extracted characters per page below
	// which the paged extractor considers the text layer insufficient.
	ExtractMinChars int
	// OCR performs the fallback recognition; nil disables it.
	OCR *OCRFallback
}

// ForFile returns the extractor for a filename, or an error for an
// unsupported extension.
func ForFile(filename string, opts Options, log *slog.Logger) (Extractor, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return &PagedExtractor{MinChars: opts.ExtractMinChars, OCR: opts.OCR, log: log}, nil
	case ".docx":
		return &FlowExtractor{log: log}, nil
	case ".doc":
		return &LegacyDocExtractor{log: log}, nil
	case ".txt":
		return &PlainTextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}
