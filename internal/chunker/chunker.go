// Package chunker splits protected text into bounded fragments that respect
// structural boundaries: blank-line paragraph breaks first, sentence breaks
// inside over-long paragraphs, and a hard character split as the last resort.
// Every chunk records the separator that followed it in the source, so the
// chunk sequence reassembles to the input exactly.
package chunker

import (
	"fmt"
	"strings"
)

// DefaultMaxChars is the chunk budget used when the caller passes none.
// Translation providers commonly cap requests near 5000 characters.
const DefaultMaxChars = 4500

// Boundary records which structural boundary produced a chunk.
type Boundary int

const (
	BoundaryParagraph Boundary = iota
	BoundarySentence
	BoundaryHard
)

func (b Boundary) String() string {
	switch b {
	case BoundaryParagraph:
		return "paragraph"
	case BoundarySentence:
		return "sentence"
	default:
		return "hard-split"
	}
}

// Chunk is one bounded fragment. Sep is the separator that followed the
// fragment in the source text ("" for the last chunk and for fragments cut
// out of the middle of a paragraph).
type Chunk struct {
	Index    int
	Text     string
	Sep      string
	Boundary Boundary
}

const paragraphSep = "\n\n"

// Split breaks text into chunks of at most maxChars runes each. Empty
// paragraphs are preserved as empty chunks so vertical spacing survives the
// round trip.
func Split(text string, maxChars int) []Chunk {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	paras := strings.Split(text, paragraphSep)

	var chunks []Chunk
	var buf strings.Builder
	bufRunes := 0

	flush := func(sep string, b Boundary) {
		chunks = append(chunks, Chunk{
			Index:    len(chunks),
			Text:     buf.String(),
			Sep:      sep,
			Boundary: b,
		})
		buf.Reset()
		bufRunes = 0
	}

	for i, para := range paras {
		sep := paragraphSep
		if i == len(paras)-1 {
			sep = ""
		}
		paraRunes := len([]rune(para))

		if para == "" {
			// Preserve vertical spacing as an empty chunk.
			if bufRunes > 0 {
				flush(paragraphSep, BoundaryParagraph)
			}
			flush(sep, BoundaryParagraph)
			continue
		}

		if paraRunes > maxChars {
			if bufRunes > 0 {
				flush(paragraphSep, BoundaryParagraph)
			}
			splitParagraph(para, sep, maxChars, &chunks)
			continue
		}

		if bufRunes > 0 && bufRunes+len(paragraphSep)+paraRunes > maxChars {
			flush(paragraphSep, BoundaryParagraph)
		}
		if bufRunes > 0 {
			buf.WriteString(paragraphSep)
			bufRunes += len(paragraphSep)
		}
		buf.WriteString(para)
		bufRunes += paraRunes
	}

	if bufRunes > 0 {
		flush("", BoundaryParagraph)
	}
	return chunks
}

// splitParagraph cuts an over-long paragraph on sentence-ending punctuation,
// hard-splitting any single sentence that still exceeds the budget. The
// paragraph's own trailing separator is carried by its final chunk.
func splitParagraph(para, sep string, maxChars int, chunks *[]Chunk) {
	sentences := splitSentences(para)

	var buf strings.Builder
	bufRunes := 0
	emit := func(text, sep string, b Boundary) {
		*chunks = append(*chunks, Chunk{Index: len(*chunks), Text: text, Sep: sep, Boundary: b})
	}

	for _, sent := range sentences {
		sentRunes := len([]rune(sent))

		if sentRunes > maxChars {
			if bufRunes > 0 {
				emit(buf.String(), "", BoundarySentence)
				buf.Reset()
				bufRunes = 0
			}
			for _, piece := range hardSplit(sent, maxChars) {
				emit(piece, "", BoundaryHard)
			}
			continue
		}

		if bufRunes > 0 && bufRunes+sentRunes > maxChars {
			emit(buf.String(), "", BoundarySentence)
			buf.Reset()
			bufRunes = 0
		}
		buf.WriteString(sent)
		bufRunes += sentRunes
	}

	if bufRunes > 0 {
		emit(buf.String(), "", BoundarySentence)
	}

	// The paragraph separator rides on the last chunk produced.
	if n := len(*chunks); n > 0 {
		(*chunks)[n-1].Sep = sep
	}
}

// splitSentences splits after sentence-ending punctuation followed by a
// space, keeping both the punctuation and the space so the pieces
// concatenate back to the input exactly.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && text[i+1] == ' ' {
			out = append(out, text[start:i+2])
			start = i + 2
			i++
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

// hardSplit cuts text into windows of at most maxChars runes.
func hardSplit(text string, maxChars int) []string {
	runes := []rune(text)
	var out []string
	for len(runes) > maxChars {
		out = append(out, string(runes[:maxChars]))
		runes = runes[maxChars:]
	}
	return append(out, string(runes))
}

// Join reassembles per-chunk texts with the separators recorded at split
// time. It rebuilds the translated document text, and with the original
// texts it verifies the split invariant.
func Join(chunks []Chunk, texts []string) (string, error) {
	if len(chunks) != len(texts) {
		return "", fmt.Errorf("chunk count %d does not match text count %d", len(chunks), len(texts))
	}
	var sb strings.Builder
	for i, c := range chunks {
		sb.WriteString(texts[i])
		sb.WriteString(c.Sep)
	}
	return sb.String(), nil
}

// Reassemble concatenates the chunks' own texts with their separators.
func Reassemble(chunks []Chunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	s, _ := Join(chunks, texts)
	return s
}
