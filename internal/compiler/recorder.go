package compiler

import (
	"context"
	"sync"

	"github.com/conneroisu/prosemark/internal/interfaces"
	"github.com/conneroisu/prosemark/internal/types"
)

// Recorder wraps a SubtreeCompiler and keeps the stats of the last
// successful compilation. The word count use case only returns a count, so
// callers that also report node totals read them from here.
type Recorder struct {
	next interfaces.SubtreeCompiler

	mu   sync.Mutex
	last types.CompileResult
	ok   bool
}

// NewRecorder wraps next.
func NewRecorder(next interfaces.SubtreeCompiler) *Recorder {
	return &Recorder{next: next}
}

// CompileSubtree implements interfaces.SubtreeCompiler.
func (r *Recorder) CompileSubtree(ctx context.Context, req types.CompileRequest) (types.CompileResult, error) {
	res, err := r.next.CompileSubtree(ctx, req)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.last, r.ok = types.CompileResult{}, false
		return res, err
	}
	r.last, r.ok = res, true

	return res, nil
}

// Last returns the most recent result and whether the most recent call
// succeeded.
func (r *Recorder) Last() (types.CompileResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.ok
}
