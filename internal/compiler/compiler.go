// Package compiler flattens a binder subtree into a single block of prose.
package compiler

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/prosemark/internal/binder"
	"github.com/conneroisu/prosemark/internal/errors"
	"github.com/conneroisu/prosemark/internal/interfaces"
	"github.com/conneroisu/prosemark/internal/logging"
	"github.com/conneroisu/prosemark/internal/types"
)

const (
	segmentSeparator   = "\n\n"
	defaultConcurrency = 8
)

// Ensures Compiler implements interfaces.SubtreeCompiler.
var _ interfaces.SubtreeCompiler = (*Compiler)(nil)

// BinderSource loads the project outline.
type BinderSource interface {
	Load(ctx context.Context) (*binder.Binder, error)
}

// NodeSource reads node bodies. ReadBody must fail with an error matching
// errors.NodeNotFound when the node file does not exist.
type NodeSource interface {
	ReadBody(ctx context.Context, id types.NodeID) (string, error)
	Exists(id types.NodeID) (bool, error)
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for traversal diagnostics.
func WithLogger(logger logging.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger.WithComponent("compiler")
		}
	}
}

// WithConcurrency bounds how many node files are read at once. Values
// below one are ignored.
func WithConcurrency(n int) Option {
	return func(c *Compiler) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// Compiler implements subtree compilation over a binder and node files.
type Compiler struct {
	binders     BinderSource
	nodes       NodeSource
	logger      logging.Logger
	concurrency int
}

// New creates a Compiler. Panics if either source is nil.
func New(binders BinderSource, nodes NodeSource, opts ...Option) *Compiler {
	if binders == nil || nodes == nil {
		panic("compiler: binder and node sources must not be nil")
	}
	c := &Compiler{
		binders:     binders,
		nodes:       nodes,
		logger:      logging.Discard(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompileSubtree walks the requested subtree depth first, in binder order,
// and joins the trimmed body of every materialized node with a blank line.
// Placeholders contribute nothing but their children are still visited.
// Empty bodies are skipped unless req.IncludeEmpty is set.
//
// With a zero req.NodeID every root is compiled. A target that is neither in
// the binder nor on disk fails with errors.NodeNotFound, as does a binder
// entry whose node file is missing.
func (c *Compiler) CompileSubtree(ctx context.Context, req types.CompileRequest) (types.CompileResult, error) {
	items, err := c.resolve(ctx, req.NodeID)
	if err != nil {
		return types.CompileResult{}, err
	}

	ids := materialized(items)
	bodies, err := c.readAll(ctx, ids)
	if err != nil {
		return types.CompileResult{}, err
	}

	result := types.CompileResult{TotalNodes: len(ids)}
	segments := make([]string, 0, len(ids))
	for _, body := range bodies {
		body = strings.TrimSpace(body)
		if body == "" && !req.IncludeEmpty {
			result.SkippedEmpty++
			continue
		}
		segments = append(segments, body)
	}

	result.Content = strings.Join(segments, segmentSeparator)
	result.NodeCount = len(segments)

	c.logger.Debug(ctx, "Compiled subtree",
		"node_id", req.NodeID.String(),
		"nodes", result.NodeCount,
		"total_nodes", result.TotalNodes,
		"skipped_empty", result.SkippedEmpty)

	return result, nil
}

// resolve returns the items to traverse for target.
func (c *Compiler) resolve(ctx context.Context, target types.NodeID) ([]*binder.Item, error) {
	b, err := c.binders.Load(ctx)
	if err != nil {
		if !target.IsZero() && errors.IsNotFound(err) {
			return c.standalone(ctx, target)
		}
		return nil, err
	}

	if target.IsZero() {
		return b.Roots(), nil
	}

	if item, ok := b.Find(target); ok {
		return []*binder.Item{item}, nil
	}

	return c.standalone(ctx, target)
}

// standalone handles a target that is not listed in the binder but may
// still exist on disk as a loose node.
func (c *Compiler) standalone(ctx context.Context, target types.NodeID) ([]*binder.Item, error) {
	exists, err := c.nodes.Exists(target)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.ErrNodeNotFound(target.String())
	}

	c.logger.Debug(ctx, "Compiling node outside the binder", "node_id", target.String())
	return []*binder.Item{{NodeID: target}}, nil
}

func materialized(items []*binder.Item) []types.NodeID {
	var ids []types.NodeID
	var walk func([]*binder.Item)
	walk = func(items []*binder.Item) {
		for _, item := range items {
			if !item.IsPlaceholder() {
				ids = append(ids, item.NodeID)
			}
			walk(item.Children)
		}
	}
	walk(items)
	return ids
}

// readAll reads every body concurrently and returns them in ids order.
func (c *Compiler) readAll(ctx context.Context, ids []types.NodeID) ([]string, error) {
	bodies := make([]string, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			body, err := c.nodes.ReadBody(gctx, id)
			if err != nil {
				return err
			}
			bodies[i] = body
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.logger.Warn(ctx, err, "Failed to read node bodies", "nodes", len(ids))
		return nil, err
	}

	return bodies, nil
}
