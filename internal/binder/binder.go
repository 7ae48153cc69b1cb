// Package binder reads and writes the project outline stored in _binder.md
// and the node files it points at.
//
// The outline is a nested markdown list kept between two HTML comment
// markers so that authors can keep their own prose around it:
//
//	# My Novel
//
//	<!-- pmk:begin-binder -->
//	- [Part One](0192f0c1-2345-7123-8abc-def012345678.md)
//	  - [Chapter 1](0192f0c1-2345-7456-8abc-def012345678.md)
//	  - [Unwritten]()
//	<!-- pmk:end-binder -->
//
// An item with an empty link is a placeholder: it has a title and may have
// children but no node file.
package binder

import (
	"github.com/conneroisu/prosemark/internal/types"
)

const (
	// FileName is the binder file at the project root.
	FileName = "_binder.md"

	BeginMarker = "<!-- pmk:begin-binder -->"
	EndMarker   = "<!-- pmk:end-binder -->"
)

// Item is one entry of the outline.
type Item struct {
	Title    string
	NodeID   types.NodeID
	Children []*Item
}

// IsPlaceholder reports whether the item has no node behind it.
func (i *Item) IsPlaceholder() bool {
	return i.NodeID.IsZero()
}

// Binder is the parsed outline plus the surrounding text it was read from.
type Binder struct {
	Items []*Item

	prefix  string
	suffix  string
	managed bool
}

// New returns an empty binder that renders with a managed block.
func New() *Binder {
	return &Binder{prefix: "# Binder\n\n", suffix: "\n", managed: true}
}

// Roots returns the top-level items in binder order.
func (b *Binder) Roots() []*Item {
	return b.Items
}

// Find returns the item for id, searching depth first.
func (b *Binder) Find(id types.NodeID) (*Item, bool) {
	var found *Item
	_ = b.Walk(func(item *Item, _ int) error {
		if found == nil && !item.IsPlaceholder() && item.NodeID == id {
			found = item
			return errStopWalk
		}
		return nil
	})
	return found, found != nil
}

// NodeIDs lists every materialized node in pre-order.
func (b *Binder) NodeIDs() []types.NodeID {
	var ids []types.NodeID
	_ = b.Walk(func(item *Item, _ int) error {
		if !item.IsPlaceholder() {
			ids = append(ids, item.NodeID)
		}
		return nil
	})
	return ids
}

// Walk visits every item in depth-first pre-order. Returning an error from
// fn stops the walk and the error is returned, except for the internal stop
// signal used by Find.
func (b *Binder) Walk(fn func(item *Item, depth int) error) error {
	err := walkItems(b.Items, 0, fn)
	if err == errStopWalk {
		return nil
	}
	return err
}

func walkItems(items []*Item, depth int, fn func(*Item, int) error) error {
	for _, item := range items {
		if err := fn(item, depth); err != nil {
			return err
		}
		if err := walkItems(item.Children, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

type stopWalk struct{}

func (stopWalk) Error() string { return "stop walk" }

var errStopWalk error = stopWalk{}
