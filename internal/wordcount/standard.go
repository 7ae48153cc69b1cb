// Package wordcount implements word counting for prose under US English
// conventions.
//
// StandardWordCounter works in four passes over the NFC-normalized text:
//
//  1. URLs (http:// or https:// up to the next whitespace) are counted and cut out.
//  2. Email addresses are counted and cut out of what remains.
//  3. Em dashes and en dashes become separators.
//  4. The rest is scanned once, left to right. At each position the first
//     matching class wins: hyphenated compound, contraction, number, plain word.
//
// Cut-out spans are replaced by a single space so later passes cannot see
// their punctuation. Every pass is linear in the length of the input.
package wordcount

import (
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	emDash    = '—'
	enDash    = '–'
	hyphen    = '-'
	separator = ' '
)

// StandardWordCounter is the reference word counter. It holds no state and
// is safe for concurrent use.
type StandardWordCounter struct{}

// NewStandardWordCounter creates a StandardWordCounter.
func NewStandardWordCounter() *StandardWordCounter {
	return &StandardWordCounter{}
}

// CountWords returns the number of words in text. It never fails and never
// returns a negative number.
func (c *StandardWordCounter) CountWords(text string) int {
	return c.Breakdown(text).Total()
}

// Breakdown reports how many words each token class contributed.
type Breakdown struct {
	URLs   int
	Emails int
	Tokens int
}

// Total is the word count.
func (b Breakdown) Total() int {
	return b.URLs + b.Emails + b.Tokens
}

// Breakdown counts text and returns the per-class tallies.
func (c *StandardWordCounter) Breakdown(text string) Breakdown {
	if isBlank(text) {
		return Breakdown{}
	}

	var b Breakdown
	rs, urls, emails := extractPreserved([]rune(norm.NFC.String(text)))
	b.URLs = urls
	b.Emails = emails

	normalizeDashes(rs)
	b.Tokens = countTokens(rs)

	return b
}

// extractPreserved cuts URLs, then emails, out of rs.
func extractPreserved(rs []rune) ([]rune, int, int) {
	rs, urls := exciseURLs(rs)
	rs, emails := exciseEmails(rs)
	return rs, urls, emails
}

func isBlank(text string) bool {
	for _, r := range text {
		if !isSpace(r) {
			return false
		}
	}
	return true
}

// isSpace also treats the ASCII file/group/record/unit separators as
// whitespace, as Python's str.isspace does.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// isWord reports whether r is a word character: any Unicode letter or
// number, or an underscore.
func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

func normalizeDashes(rs []rune) {
	for i, r := range rs {
		if r == emDash || r == enDash {
			rs[i] = separator
		}
	}
}

// countTokens scans rs once and counts compounds, contractions, numbers and
// plain words. Anything else separates tokens.
func countTokens(rs []rune) int {
	n := 0
	for i := 0; i < len(rs); {
		end := matchToken(rs, i)
		if end > i {
			n++
			i = end
			continue
		}
		i++
	}
	return n
}

// matchToken returns the end of the highest priority token starting at i,
// or i when no token starts there.
func matchToken(rs []rune, i int) int {
	if end, ok := matchCompound(rs, i); ok {
		return end
	}
	if end, ok := matchContraction(rs, i); ok {
		return end
	}
	if end, ok := matchNumber(rs, i); ok {
		return end
	}
	return wordRun(rs, i)
}

// wordRun returns the end of the run of word characters starting at i.
func wordRun(rs []rune, i int) int {
	for i < len(rs) && isWord(rs[i]) {
		i++
	}
	return i
}

// matchCompound matches word(-word)+ such as "state-of-the-art".
func matchCompound(rs []rune, i int) (int, bool) {
	end := wordRun(rs, i)
	if end == i {
		return 0, false
	}

	joined := false
	for end < len(rs) && rs[end] == hyphen {
		next := wordRun(rs, end+1)
		if next == end+1 {
			break
		}
		end = next
		joined = true
	}

	return end, joined
}

// matchContraction matches word'word such as "don't" or "it’s".
func matchContraction(rs []rune, i int) (int, bool) {
	mid := wordRun(rs, i)
	if mid == i || mid >= len(rs) || !isApostrophe(rs[mid]) {
		return 0, false
	}

	end := wordRun(rs, mid+1)
	if end == mid+1 {
		return 0, false
	}

	return end, true
}

// matchNumber matches ASCII digits with optional dotted groups such as
// "3.14" or "123.456.789".
func matchNumber(rs []rune, i int) (int, bool) {
	if i >= len(rs) || !isASCIIDigit(rs[i]) {
		return 0, false
	}

	end := digitRun(rs, i)
	for end+1 < len(rs) && rs[end] == '.' && isASCIIDigit(rs[end+1]) {
		end = digitRun(rs, end+1)
	}

	return end, true
}

func digitRun(rs []rune, i int) int {
	for i < len(rs) && isASCIIDigit(rs[i]) {
		i++
	}
	return i
}
