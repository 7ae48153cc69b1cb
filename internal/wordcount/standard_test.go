package wordcount

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardWordCounterTokenPriority(t *testing.T) {
	counter := NewStandardWordCounter()

	testCases := []struct {
		name     string
		text     string
		expected int
	}{
		{"compound beats contraction", "e-mail's", 2},
		{"compound with digits", "covid-19", 1},
		{"trailing hyphen is a separator", "pre- and post-war", 3},
		{"dangling hyphen chain stops early", "a-b-", 1},
		{"typographic apostrophe", "it’s", 1},
		{"apostrophe without trailing word", "dogs'", 1},
		{"number prefix splits from letters", "123abc", 2},
		{"version string", "v1.2.3", 2},
		{"trailing dot after number", "3.14.", 1},
		{"underscore is a word character", "__init__", 1},
		{"lone underscore", "_", 1},
		{"hyphen between spaces", "a - b", 2},
		{"em dash never joins", "well—known", 2},
		{"unicode letters", "Hello 世界", 2},
		{"accented word", "café crème", 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, counter.CountWords(tc.text), "text: %q", tc.text)
		})
	}
}

func TestStandardWordCounterURLs(t *testing.T) {
	counter := NewStandardWordCounter()

	testCases := []struct {
		name     string
		text     string
		expected int
	}{
		{"scheme without host is a word", "https://", 1},
		{"scheme followed by space", "see http:// later", 3},
		{"url runs to whitespace", "https://a.com,b", 1},
		{"url swallows embedded email", "https://x.com/u@example.com", 1},
		{"url inside a word", "xhttp://a.com", 2},
		{"uppercase scheme is not a url", "HTTP://EXAMPLE.COM", 3},
		{"url with query", "open http://test.org/a?b=c&d=e-f now", 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, counter.CountWords(tc.text), "text: %q", tc.text)
		})
	}
}

func TestStandardWordCounterEmails(t *testing.T) {
	counter := NewStandardWordCounter()

	testCases := []struct {
		name     string
		text     string
		emails   int
		expected int
	}{
		{"dotted local part", "a.b+tag@mail.example.co.uk", 1, 1},
		{"trailing sentence dot", "write to x@y.com.", 1, 3},
		{"single letter tld", "user@example.c", 0, 3},
		{"tld followed by digit", "user@example.co2", 0, 3},
		{"leading punctuation outside local part", "+user@x.io", 1, 1},
		{"leading dot outside local part", ".user@example.com", 1, 1},
		{"missing domain", "user@ example.com", 0, 3},
		{"missing dot", "user@localhost", 0, 2},
		{"two addresses back to back", "a@b.com,c@d.org", 2, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := counter.Breakdown(tc.text)
			assert.Equal(t, tc.emails, b.Emails, "text: %q", tc.text)
			assert.Equal(t, tc.expected, b.Total(), "text: %q", tc.text)
		})
	}
}

func TestStandardWordCounterBreakdown(t *testing.T) {
	counter := NewStandardWordCounter()

	b := counter.Breakdown("Visit https://example.com or email user@example.com")
	assert.Equal(t, Breakdown{URLs: 1, Emails: 1, Tokens: 3}, b)
	assert.Equal(t, 5, b.Total())

	assert.Equal(t, Breakdown{}, counter.Breakdown(" \t\n"))
}

func TestStandardWordCounterNormalizesUnicode(t *testing.T) {
	counter := NewStandardWordCounter()

	composed := "caf\u00e9s"
	decomposed := "cafe\u0301s"

	assert.Equal(t, 1, counter.CountWords(composed))
	assert.Equal(t, counter.CountWords(composed), counter.CountWords(decomposed))
}

func TestExcisionLeavesNoPreservedTokens(t *testing.T) {
	text := "Mail a@b.com, see https://x.org/p and c.d@e.io—done"

	rs, urls, emails := extractPreserved([]rune(text))
	assert.Equal(t, 1, urls)
	assert.Equal(t, 2, emails)

	again := NewStandardWordCounter().Breakdown(string(rs))
	assert.Zero(t, again.URLs)
	assert.Zero(t, again.Emails)
	assert.Equal(t, NewStandardWordCounter().Breakdown(text).Tokens, again.Tokens)
}

func TestStandardWordCounterLargeInput(t *testing.T) {
	counter := NewStandardWordCounter()

	text := strings.Repeat("state-of-the-art don't 3.14 user@example.com https://x.io — ", 2000)
	assert.Equal(t, 10000, counter.CountWords(text))
}

func BenchmarkStandardWordCounter(b *testing.B) {
	counter := NewStandardWordCounter()
	text := strings.Repeat("The well-known solution uses state-of-the-art technology, doesn't it? ", 500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		counter.CountWords(text)
	}
}
