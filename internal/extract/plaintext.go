package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dgallion1/doctrans/internal/document"
)

// PlainTextExtractor decodes a text file trying a prioritized encoding list,
// returning the first decode that produces no replacement characters.
type PlainTextExtractor struct{}

type candidateEncoding struct {
	name string
	enc  encoding.Encoding
}

// candidates are ordered most- to least-strict; Windows-1252 accepts any
// byte sequence and therefore terminates the chain. UTF-16 is handled
// separately because without a BOM almost any even-length byte sequence
// decodes to something, which would mask GBK input.
var candidates = []candidateEncoding{
	{"gbk", simplifiedchinese.GBK},
	{"windows-1252", charmap.Windows1252},
}

var utf16Decoder = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)

func (e *PlainTextExtractor) Extract(_ context.Context, path string) (*document.Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	text, err := decodeText(data)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &ExtractionError{Path: path, Err: errNoText}
	}
	return &document.Extraction{
		Format:   document.FormatPlainText,
		FullText: text,
	}, nil
}

// decodeText tries UTF-8 first, then the candidate list. A candidate decode
// counts as successful when it introduces no U+FFFD replacement runes.
func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) && !hasUTF16BOM(data) {
		return normalizeNewlines(strings.TrimPrefix(string(data), "\ufeff")), nil
	}
	if hasUTF16BOM(data) {
		out, _, err := transform.Bytes(utf16Decoder.NewDecoder(), data)
		if err == nil && !bytes.ContainsRune(out, utf8.RuneError) {
			return normalizeNewlines(string(out)), nil
		}
	}
	for _, c := range candidates {
		out, _, err := transform.Bytes(c.enc.NewDecoder(), data)
		if err != nil {
			continue
		}
		if bytes.ContainsRune(out, utf8.RuneError) && !bytes.ContainsRune(data, utf8.RuneError) {
			continue
		}
		return normalizeNewlines(string(out)), nil
	}
	return "", fmt.Errorf("no candidate encoding decodes the input")
}

func hasUTF16BOM(data []byte) bool {
	return len(data) >= 2 &&
		((data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF))
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
