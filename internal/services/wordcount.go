package services

import (
	"context"

	"github.com/conneroisu/prosemark/internal/interfaces"
	"github.com/conneroisu/prosemark/internal/types"
)

// WordCountService binds a word counter to WordCountResult construction.
type WordCountService struct {
	counter interfaces.WordCounter
}

// NewWordCountService creates a new word count service
func NewWordCountService(counter interfaces.WordCounter) *WordCountService {
	return &WordCountService{counter: counter}
}

// CountText counts the words in text. It never fails.
func (s *WordCountService) CountText(text string) types.WordCountResult {
	return types.NewWordCountResult(s.counter.CountWords(text), text)
}

// WordCountUseCase compiles the requested subtree and counts its words.
type WordCountUseCase struct {
	compiler interfaces.SubtreeCompiler
	service  interfaces.TextCounter
}

// NewWordCountUseCase creates a new word count use case
func NewWordCountUseCase(compiler interfaces.SubtreeCompiler, service interfaces.TextCounter) *WordCountUseCase {
	return &WordCountUseCase{
		compiler: compiler,
		service:  service,
	}
}

// CountWords compiles the subtree selected by req and counts the result.
// Compiler errors are returned unchanged so callers can still match them.
func (u *WordCountUseCase) CountWords(ctx context.Context, req types.WordCountRequest) (types.WordCountResult, error) {
	id, _ := req.NodeID()

	compiled, err := u.compiler.CompileSubtree(ctx, types.CompileRequest{
		NodeID:       id,
		IncludeEmpty: req.IncludeEmpty(),
	})
	if err != nil {
		return types.WordCountResult{}, err
	}

	return u.service.CountText(compiled.Content), nil
}
