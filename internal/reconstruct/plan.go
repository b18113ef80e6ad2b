package reconstruct

import "strings"

// MapUnits assigns translated text to n structural units. When the text has
// exactly n segments at the separator the mapping is positional; otherwise
// the text is redistributed proportionally to each unit's original weight,
// since translation may merge or reflow the separators.
func MapUnits(translated, sep string, weights []int) []string {
	parts := strings.Split(translated, sep)
	if len(parts) == len(weights) {
		return parts
	}
	return SplitProportional(strings.Join(parts, " "), weights)
}

// SplitProportional partitions text into len(weights) pieces whose rune
// counts are proportional to the weights, the remainder riding on the last
// piece. Cuts prefer the nearest space so words stay whole. Concatenating
// the pieces yields the input exactly.
func SplitProportional(text string, weights []int) []string {
	n := len(weights)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []string{text}
	}

	runes := []rune(text)
	total := 0
	for _, w := range weights {
		if w < 0 {
			w = 0
		}
		total += w
	}

	out := make([]string, n)
	start := 0
	for i := 0; i < n-1; i++ {
		share := 0
		if total > 0 {
			share = len(runes) * weights[i] / total
		} else {
			share = len(runes) / n
		}
		end := start + share
		if end > len(runes) {
			end = len(runes)
		}
		end = snapToSpace(runes, start, end)
		out[i] = string(runes[start:end])
		start = end
	}
	out[n-1] = string(runes[start:])
	return out
}

// snapToSpace moves a cut point to the nearest space within a small window
// so it lands between words when one is close by.
func snapToSpace(runes []rune, start, end int) int {
	const window = 12
	if end <= start || end >= len(runes) {
		return end
	}
	if runes[end] == ' ' || runes[end-1] == ' ' {
		return end
	}
	for d := 1; d <= window; d++ {
		if end+d < len(runes) && runes[end+d] == ' ' {
			return end + d + 1
		}
		if end-d > start && runes[end-d] == ' ' {
			return end - d + 1
		}
	}
	return end
}
