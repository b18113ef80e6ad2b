package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/dgallion1/doctrans/internal/document"
)

// LegacyDocExtractor converts a binary .doc through an external tool.
// There is no maintained native reader for the format, so antiword is the
// primary converter with catdoc as a fallback. Structure is not recoverable;
// the result is plain text.
type LegacyDocExtractor struct {
	log *slog.Logger
}

func (e *LegacyDocExtractor) Extract(ctx context.Context, path string) (*document.Extraction, error) {
	text, err := runConverter(ctx, "antiword", path)
	if err != nil {
		e.log.Warn("antiword failed, trying catdoc", "path", path, "error", err)
		text, err = runConverter(ctx, "catdoc", path)
		if err != nil {
			return nil, &ExtractionError{Path: path, Err: err}
		}
	}
	text = normalizeNewlines(text)
	if strings.TrimSpace(text) == "" {
		return nil, &ExtractionError{Path: path, Err: errNoText}
	}
	return &document.Extraction{
		Format:   document.FormatPlainText,
		FullText: strings.TrimSpace(text),
	}, nil
}

func runConverter(ctx context.Context, tool, path string) (string, error) {
	if _, err := exec.LookPath(tool); err != nil {
		return "", fmt.Errorf("%s not installed: %w", tool, err)
	}
	var args []string
	if tool == "antiword" {
		args = []string{"-w", "0", path}
	} else {
		args = []string{"-w", path}
	}
	out, err := exec.CommandContext(ctx, tool, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", tool, err)
	}
	return string(out), nil
}
