package pipeline

import (
	"fmt"
	"unicode/utf8"

	"github.com/dgallion1/doctrans/internal/chunker"
	"github.com/dgallion1/doctrans/internal/translate"
)

const (
	// Translated/original length ratios outside this band suggest the
	// provider lost or duplicated text.
	minLengthRatio = 0.5
	maxLengthRatio = 2.0

	// minCoverage is the share of the protected text the chunks must carry.
	minCoverage = 0.95
)

// verifyResults confirms every chunk has exactly one result, indexed in
// order. Reconstruction must not proceed otherwise.
func verifyResults(chunks []chunker.Chunk, results []translate.Result) error {
	if len(results) != len(chunks) {
		return fmt.Errorf("have %d results for %d chunks", len(results), len(chunks))
	}
	for i, res := range results {
		if res.Index != i {
			return fmt.Errorf("result %d carries chunk index %d", i, res.Index)
		}
	}
	return nil
}

// coverageWarning reports when the chunks cover less than minCoverage of the
// protected text, which would mean the chunker dropped content.
func coverageWarning(protected string, chunks []chunker.Chunk) string {
	total := utf8.RuneCountInString(protected)
	if total == 0 {
		return ""
	}
	covered := 0
	for _, c := range chunks {
		covered += utf8.RuneCountInString(c.Text) + utf8.RuneCountInString(c.Sep)
	}
	if float64(covered) < minCoverage*float64(total) {
		return fmt.Sprintf("chunks cover %d of %d characters", covered, total)
	}
	return ""
}

// ratioWarning flags likely loss or duplication from the length ratio.
func ratioWarning(original, translated string) string {
	origLen := utf8.RuneCountInString(original)
	if origLen == 0 {
		return ""
	}
	ratio := float64(utf8.RuneCountInString(translated)) / float64(origLen)
	if ratio < minLengthRatio || ratio > maxLengthRatio {
		return fmt.Sprintf("length ratio %.2f outside [%.1f, %.1f]", ratio, minLengthRatio, maxLengthRatio)
	}
	return ""
}
