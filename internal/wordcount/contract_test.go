package wordcount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/prosemark/internal/interfaces"
)

// contractScenarios must hold for every interfaces.WordCounter implementation.
var contractScenarios = []struct {
	text     string
	expected int
	desc     string
}{
	// Basic
	{"Hello world", 2, "basic two-word sentence"},
	{"", 0, "empty string"},
	{"word", 1, "single word"},
	// Contractions
	{"don't", 1, "contraction with apostrophe"},
	{"don't it's can't", 3, "three contractions"},
	{"it's can't won't", 3, "multiple contractions"},
	{"I'm you're they're", 3, "various contraction forms"},
	// Hyphens
	{"well-known", 1, "hyphenated compound"},
	{"state-of-the-art", 1, "multi-hyphen compound"},
	{"twenty-one thirty-two", 2, "multiple hyphenated numbers"},
	// Numbers
	{"123", 1, "integer"},
	{"3.14", 1, "decimal"},
	{"There are 123 items", 4, "sentence with number"},
	{"2025 was year 2024", 4, "multiple numbers"},
	// URLs
	{"https://example.com", 1, "HTTPS URL"},
	{"http://test.org", 1, "HTTP URL"},
	{"Visit https://example.com today", 3, "URL in sentence"},
	{"https://example.com and http://test.org", 3, "multiple URLs"},
	// Email addresses
	{"user@example.com", 1, "email address"},
	{"Email user@example.com now", 3, "email in sentence"},
	{"admin@test.org and user@example.com", 3, "multiple emails"},
	// Whitespace normalization
	{"word  word", 2, "double space"},
	{"word\nword", 2, "newline separator"},
	{"word\tword", 2, "tab separator"},
	{"word  \n\n  word", 2, "mixed whitespace"},
	{"  word  ", 1, "leading/trailing whitespace"},
	// Punctuation
	{"Hello, world!", 2, "comma and exclamation"},
	{"Really?", 1, "question mark"},
	{"Yes.", 1, "period"},
	{"'quoted'", 1, "single quotes"},
	{`"quoted"`, 1, "double quotes"},
	// Em dashes and en dashes
	{"word—word", 2, "em dash separating words"},
	{"word–word", 2, "en dash separating words"},
	{"word — word", 2, "spaced em dash"},
	// Mixed
	{"Visit https://example.com or email user@example.com", 5, "URL and email together"},
	{"The well-known solution uses state-of-the-art technology", 6, "hyphens in sentence"},
	// Edge cases
	{"!!!", 0, "punctuation only"},
	{"123.456.789", 1, "number with multiple dots"},
	{"a b c d e", 5, "single-letter words"},
	{"   ", 0, "whitespace only"},
	{"\n\n\t", 0, "newlines and tabs only"},
	{"— – —", 0, "dashes only"},
}

func runCounterContract(t *testing.T, counter interfaces.WordCounter) {
	t.Helper()

	for _, sc := range contractScenarios {
		t.Run(sc.desc, func(t *testing.T) {
			assert.Equal(t, sc.expected, counter.CountWords(sc.text), "text: %q", sc.text)
		})
	}

	t.Run("never negative", func(t *testing.T) {
		for _, text := range []string{"", "   ", "\n\n", "!!!", "word", "multiple words", "-5"} {
			assert.GreaterOrEqual(t, counter.CountWords(text), 0, "text: %q", text)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		for _, sc := range contractScenarios {
			assert.Equal(t, counter.CountWords(sc.text), counter.CountWords(sc.text), "text: %q", sc.text)
		}
	})
}

func TestStandardWordCounterContract(t *testing.T) {
	runCounterContract(t, NewStandardWordCounter())
}

func TestCachingCounterContract(t *testing.T) {
	counter, err := NewCachingCounter(NewStandardWordCounter(), 16)
	require.NoError(t, err)

	runCounterContract(t, counter)
}

func TestUncachedCachingCounterContract(t *testing.T) {
	counter, err := NewCachingCounter(NewStandardWordCounter(), 0)
	require.NoError(t, err)

	runCounterContract(t, counter)
}
