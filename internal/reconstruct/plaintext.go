package reconstruct

import (
	"context"
	"os"
	"strings"

	"github.com/dgallion1/doctrans/internal/document"
)

// PlainTextReconstructor writes the translated text as UTF-8 with a trailing
// newline. Paragraph breaks already survive the round trip through the
// chunker, so there is nothing to map.
type PlainTextReconstructor struct{}

func (r *PlainTextReconstructor) Reconstruct(ctx context.Context, _ *document.Extraction, translated, _, outPath string) error {
	if err := ctx.Err(); err != nil {
		return &ReconstructionError{Path: outPath, Err: err}
	}
	if !strings.HasSuffix(translated, "\n") {
		translated += "\n"
	}
	if err := os.WriteFile(outPath, []byte(translated), 0o644); err != nil {
		return &ReconstructionError{Path: outPath, Err: err}
	}
	return nil
}
