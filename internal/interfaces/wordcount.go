// Package interfaces defines the capabilities the word count services depend
// on, so that counters and compilers can be swapped or faked in tests.
package interfaces

import (
	"context"

	"github.com/conneroisu/prosemark/internal/types"
)

// WordCounter counts words in text using US English conventions.
//
// Every implementation must satisfy the same laws:
//   - pure and deterministic: the same text always yields the same count
//   - the count is never negative
//   - empty text, and text holding only whitespace or em/en dashes, counts 0
//   - any run of whitespace acts as a single separator
//   - runs in time linear in len(text) and never fails
//
// Implementations must be safe for concurrent use.
type WordCounter interface {
	CountWords(text string) int
}

// WordCounterFunc adapts a plain function to WordCounter.
type WordCounterFunc func(text string) int

// CountWords implements the WordCounter interface
func (f WordCounterFunc) CountWords(text string) int {
	return f(text)
}

// SubtreeCompiler flattens a node and its descendants into one text blob.
// With a zero CompileRequest.NodeID it compiles every root in binder order.
// A target that does not resolve fails with an error matching
// errors.NodeNotFound.
type SubtreeCompiler interface {
	CompileSubtree(ctx context.Context, req types.CompileRequest) (types.CompileResult, error)
}

// TextCounter is the service-level counting capability consumed by the use case.
type TextCounter interface {
	CountText(text string) types.WordCountResult
}
