// Package protect substitutes placeholders for substrings that must survive
// translation byte-for-byte: phone numbers, dates, currency amounts and the
// like. Placeholders are restored after translation; one that comes back
// mangled beyond recognition is left in place and reported, never fatal.
package protect

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Category classifies a protected substring.
type Category string

const (
	CategoryPhone    Category = "PHONE"
	CategoryDate     Category = "DATE"
	CategoryYear     Category = "YEAR"
	CategoryCurrency Category = "CURRENCY"
	CategoryPercent  Category = "PERCENT"
	CategoryNumber   Category = "NUMBER"
	CategoryTime     Category = "TIME"
	CategorySSN      Category = "SSN"
)

// Token is one protected substring and the placeholder standing in for it.
type Token struct {
	ID          int
	Placeholder string
	Original    string
	Category    Category
}

// Placeholders use reserved mathematical-bracket runes that translation
// providers pass through untouched far more reliably than ASCII markers.
const (
	markerOpen  = "⟦PT"
	markerClose = "⟧"
)

type pattern struct {
	cat Category
	re  *regexp.Regexp
}

// Recognition priority is fixed: earlier categories claim their spans first
// and later patterns skip anything overlapping a claimed span.
var patterns = []pattern{
	{CategoryPhone, regexp.MustCompile(`(?:\+\d{1,2}[ .-]?)?\(?\d{3}\)?[ .-]?\d{3}[ .-]\d{4}`)},
	{CategoryDate, regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4}|(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{1,2},? \d{4}`)},
	{CategoryYear, regexp.MustCompile(`\b(?:19|20)\d{2}\b`)},
	{CategoryCurrency, regexp.MustCompile(`[$\x{20ac}\x{a3}\x{a5}] ?\d+(?:,\d{3})*(?:\.\d+)?`)},
	{CategoryPercent, regexp.MustCompile(`\d+(?:\.\d+)? ?%`)},
	{CategoryNumber, regexp.MustCompile(`\b\d+(?:,\d{3})*(?:\.\d+)?\b`)},
	{CategoryTime, regexp.MustCompile(`\b\d{1,2}:\d{2}(?::\d{2})?(?: ?[AaPp][Mm])?\b`)},
	{CategorySSN, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
}

var placeholderRe = regexp.MustCompile(`\x{27e6}PT(\d+):[A-Z]+\x{27e7}`)

type span struct {
	start, end int
	cat        Category
}

// Protect replaces recognized substrings with unique placeholders and returns
// the protected text plus the tokens in document order. Substitution happens
// right-to-left so earlier replacements do not shift pending match offsets.
func Protect(text string) (string, []Token) {
	claimed := make([]span, 0, 16)

	for _, p := range patterns {
		for _, m := range p.re.FindAllStringIndex(text, -1) {
			if overlaps(claimed, m[0], m[1]) {
				continue
			}
			// RE2 has no lookaround: a bare number glued to more digits
			// through : - / belongs to a later, more specific pattern
			// (time, SSN), so leave it unclaimed here.
			if p.cat == CategoryNumber && boundByPunct(text, m[0], m[1]) {
				continue
			}
			claimed = append(claimed, span{m[0], m[1], p.cat})
		}
	}

	sort.Slice(claimed, func(i, j int) bool { return claimed[i].start < claimed[j].start })

	// Never collide with placeholders already present in the content.
	next := 1
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		var n int
		fmt.Sscanf(m[1], "%d", &n)
		if n >= next {
			next = n + 1
		}
	}

	tokens := make([]Token, len(claimed))
	for i, s := range claimed {
		tokens[i] = Token{
			ID:          next + i,
			Placeholder: fmt.Sprintf("%s%d:%s%s", markerOpen, next+i, s.cat, markerClose),
			Original:    text[s.start:s.end],
			Category:    s.cat,
		}
	}

	for i := len(claimed) - 1; i >= 0; i-- {
		text = text[:claimed[i].start] + tokens[i].Placeholder + text[claimed[i].end:]
	}
	return text, tokens
}

// Restore substitutes originals back for their placeholders, exact match
// first, then case-insensitive to tolerate provider casing changes. It
// returns the restored text and any tokens whose placeholders were mangled
// beyond recognition and left in place.
func Restore(text string, tokens []Token) (string, []Token) {
	var lost []Token
	for _, tok := range tokens {
		if strings.Contains(text, tok.Placeholder) {
			text = strings.Replace(text, tok.Placeholder, tok.Original, 1)
			continue
		}
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(tok.Placeholder))
		if err == nil {
			if loc := re.FindStringIndex(text); loc != nil {
				text = text[:loc[0]] + tok.Original + text[loc[1]:]
				continue
			}
		}
		lost = append(lost, tok)
	}
	return text, lost
}

func overlaps(claimed []span, start, end int) bool {
	for _, s := range claimed {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}

// boundByPunct reports whether text[start:end] is glued to adjacent digits
// through a : - or / connector on either side.
func boundByPunct(text string, start, end int) bool {
	if start >= 2 && isConnector(text[start-1]) && isDigit(text[start-2]) {
		return true
	}
	if end+1 < len(text) && isConnector(text[end]) && isDigit(text[end+1]) {
		return true
	}
	return false
}

func isConnector(b byte) bool { return b == ':' || b == '-' || b == '/' }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
