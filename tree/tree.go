// Copyright (C) 2026 The depict Authors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package tree implements the filter-tree engine: cache-aware
// depth-first refresh, a global RAM-budgeted cache, and XML
// persistence. Generalized from the teacher's query-plan tree
// (plan.Tree/plan.Node) and its executor pool (plan/exec.go), and from
// tenant/dcache's cache bookkeeping and Logger convention.
package tree

import (
	"github.com/google/uuid"

	"github.com/apttools/depict/filter"
	"github.com/apttools/depict/stream"
)

// Logger is the teacher's tenant/dcache convention: a single Printf
// method so callers can hand in *log.Logger, a testing.T shim, or
// nothing at all.
type Logger interface {
	Printf(format string, args ...interface{})
}

// Node wraps a filter.Node with tree-structural bookkeeping: a stable
// ID, children, and the cache state the refresh algorithm manages on
// the filter's behalf (the filter itself never sees cache bytes or
// validity directly).
type Node struct {
	ID       int
	Producer stream.ProducerID
	Filter   filter.Node
	Children []*Node

	cacheValid   bool
	cacheAllowed bool
	outputs      []stream.Payload
	delivered    []stream.Payload
	cacheBytes   int64
	inputDigest  uint64
}

// NewNode wraps f as a tree node, minting a fresh ProducerID via
// uuid.New the way filters.External mints its scratch-directory names.
func NewNode(f filter.Node, children ...*Node) *Node {
	return &Node{
		Producer: stream.ProducerID(uuid.New().String()),
		Filter:   f,
		Children: children,
	}
}

// ClearCache invalidates this node's cache, matching spec §4.3's
// clear_cache operation a SetProperty call must trigger whenever it
// changes a value affecting computed output.
func (n *Node) ClearCache() {
	n.cacheValid = false
	n.outputs = nil
	n.cacheBytes = 0
}

// ClearSubtreeCache clears this node's cache and every descendant's,
// per spec §4.4's "the engine clears along the subtree rooted at a
// modified node".
func (n *Node) ClearSubtreeCache() {
	n.ClearCache()
	for _, c := range n.Children {
		c.ClearSubtreeCache()
	}
}

// CacheValid reports whether this node currently holds a usable cache.
func (n *Node) CacheValid() bool { return n.cacheValid }

// Outputs returns this node's retained cached payloads — its own
// emitted payloads from the last Refresh that the cache budget allowed
// it to keep, not the pass-through payloads a consumer also receives
// from its ancestors. It is nil when the node holds no valid cache.
func (n *Node) Outputs() []stream.Payload { return n.outputs }

// Delivered returns the full payload set this node handed to its
// children on the most recent Tree.Refresh: its own outputs plus every
// upstream stream kind it does not block. A caller outside this package
// (the cmd layer) uses this on a leaf node to pull the pipeline's final
// delivered streams once a refresh completes.
func (n *Node) Delivered() []stream.Payload { return n.delivered }

// SetProperty forwards to the wrapped filter and, since a filter.Node
// never sees its own cache validity (cache state lives here, on
// Node), performs spec §4.3's property-change discipline on the
// filter's behalf: a change reported as needing refresh clears this
// node's cache so the next Tree.Refresh recomputes it. A filter keeps
// a cosmetic key from clearing the cache by returning
// needsRefresh=false (Spectrum's log_y/plot_style/colour/label,
// IonColour's show_colour_bar); the payloads already in the cache are
// then delivered unchanged until the next recompute. A filter could
// also mutate those payloads directly, since they are the same
// pointers this Node retains, but none in this module does. There is
// no separate
// "please redraw" signal in this library, so needsRefresh here means
// exactly "the cache must be recomputed," full stop.
func (n *Node) SetProperty(key string, v filter.Value) (accepted, needsRefresh bool) {
	accepted, needsRefresh = n.Filter.SetProperty(key, v)
	if accepted && needsRefresh {
		n.ClearCache()
	}
	return accepted, needsRefresh
}

// Tree owns a root Node and the policy (cache budget, logger) the
// refresh algorithm consults.
type Tree struct {
	Root *Node

	// Logger receives non-fatal diagnostics: static "suspicious
	// configuration" findings and per-node warnings (spec §7's
	// separate warnings channel). May be nil.
	Logger Logger

	// CacheBudgetPercent is the fraction of available RAM, expressed
	// 0-100, the engine may spend on retained node outputs. Zero means
	// "use the package default" (see DefaultCacheBudgetPercent).
	CacheBudgetPercent float64
}

// DefaultCacheBudgetPercent is used when a Tree leaves
// CacheBudgetPercent unset.
const DefaultCacheBudgetPercent = 25.0

func (t *Tree) budgetPercent() float64 {
	if t.CacheBudgetPercent <= 0 {
		return DefaultCacheBudgetPercent
	}
	return t.CacheBudgetPercent
}

func (t *Tree) logf(format string, args ...interface{}) {
	if t.Logger != nil {
		t.Logger.Printf(format, args...)
	}
}

// RebuildIDs assigns stable, densely-packed numeric IDs to every node
// in the tree via a depth-first traversal. Spec §4.4 requires exactly
// one such pass after any relayout (insert, delete, reparent) so region
// back-pointers and serialized state stay addressable by ID.
func (t *Tree) RebuildIDs() {
	if t.Root == nil {
		return
	}
	next := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		n.ID = next
		next++
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
}

// nodeByID finds a node by its last-assigned ID, or nil if none
// matches. Nothing in this module calls it.
func (t *Tree) nodeByID(id int) *Node {
	if t.Root == nil {
		return nil
	}
	var found *Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if found != nil {
			return
		}
		if n.ID == id {
			found = n
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
	return found
}
