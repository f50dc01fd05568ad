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

package tree

import (
	"fmt"

	"github.com/apttools/depict/filter"
	"github.com/apttools/depict/stream"
)

// AnalyzeSuspicious performs spec §4.4 step 1's static pass: for every
// node, it checks that every stream kind the node's UseMask names is
// actually reachable from an ancestor (emitted by some ancestor and not
// blocked by one in between). It never aborts; findings are returned
// for the caller to log.
func (t *Tree) AnalyzeSuspicious() []string {
	var warnings []string
	if t.Root == nil {
		return warnings
	}
	var walk func(n *Node, avail stream.KindMask)
	walk = func(n *Node, avail stream.KindMask) {
		use := n.Filter.UseMask()
		for _, k := range stream.AllKinds {
			if use.Has(k) && !avail.Has(k) {
				warnings = append(warnings, fmt.Sprintf(
					"node %d (%T) consumes %s but no ancestor provides it", n.ID, n.Filter, k))
			}
		}
		childAvail := avail
		block := n.Filter.BlockMask()
		for _, k := range stream.AllKinds {
			if block.Has(k) {
				childAvail = childAvail.Without(k)
			}
		}
		childAvail |= n.Filter.EmitMask()
		for _, c := range n.Children {
			walk(c, childAvail)
		}
	}
	walk(t.Root, 0)
	return warnings
}

// Refresh runs the spec §4.4 algorithm over the whole tree: rebuild
// stable IDs, run the static analysis pass, then refresh depth-first
// from the root, reusing any node's valid cache and otherwise invoking
// its Refresh with the accumulated progress/cancel hooks in ctx.
func (t *Tree) Refresh(ctx *filter.RefreshContext) error {
	if t.Root == nil {
		return nil
	}
	t.RebuildIDs()
	for _, w := range t.AnalyzeSuspicious() {
		t.logf("suspicious configuration: %s", w)
	}
	budget := t.availableBudgetBytes()
	_, err := t.refreshNode(ctx, t.Root, nil, budget)
	return err
}

func (t *Tree) refreshNode(ctx *filter.RefreshContext, n *Node, inputs []stream.Payload, budget int64) ([]stream.Payload, error) {
	if ctx.Cancelled() {
		return nil, fmt.Errorf("tree: %w", filter.ErrAborted)
	}

	dig := digestInputs(inputs)
	if n.cacheValid && dig != n.inputDigest {
		n.ClearCache()
	}

	// Init is cheap enough to run on every refresh regardless of cache
	// state; its structural output (e.g. a pre-injected range stream)
	// must reach children even when the heavy Refresh pass is skipped.
	structural, err := n.Filter.Init(inputs)
	if err != nil {
		return nil, fmt.Errorf("tree: node %d init: %w", n.ID, err)
	}

	var outputs []stream.Payload
	if n.cacheValid {
		outputs = t.passThrough(n, inputs)
		outputs = append(outputs, structural...)
	} else {
		projected := n.Filter.NumBytesForCache(countElements(inputs))
		allow := projected == filter.CacheBytesUnknown || projected <= budget

		refreshed, err := n.Filter.Refresh(ctx, inputs)
		if err != nil {
			return nil, fmt.Errorf("tree: node %d refresh: %w", n.ID, err)
		}
		outputs = append(refreshed, structural...)
		outputs = append(outputs, passThroughUnblocked(n, inputs)...)

		if allow {
			n.outputs = refreshed
			n.cacheValid = true
			n.inputDigest = dig
			n.recordCacheFootprint(refreshed)
		} else {
			n.cacheValid = false
		}
	}

	n.delivered = outputs

	for _, c := range n.Children {
		if _, err := t.refreshNode(ctx, c, outputs, budget); err != nil {
			return nil, err
		}
	}
	return outputs, nil
}

// passThrough reconstructs a cache-valid node's delivered output: its
// own cached payloads plus whatever upstream stream kinds it does not
// block, per spec §4.4 step 2b.
func (t *Tree) passThrough(n *Node, inputs []stream.Payload) []stream.Payload {
	out := make([]stream.Payload, 0, len(n.outputs)+len(inputs))
	out = append(out, n.outputs...)
	out = append(out, passThroughUnblocked(n, inputs)...)
	return out
}

func passThroughUnblocked(n *Node, inputs []stream.Payload) []stream.Payload {
	block := n.Filter.BlockMask()
	var out []stream.Payload
	for _, in := range inputs {
		if !block.Has(in.Kind()) {
			out = append(out, in)
		}
	}
	return out
}

// SafeDelete releases a payload's backing storage if and only if this
// caller owns it: a Cached payload belongs to the producing node and
// may still be handed to other consumers, so it must not be mutated or
// freed here (spec §4.4 step 3 / §5's shared-resources rule).
func SafeDelete(p stream.Payload) {
	if p == nil || p.Cached() {
		return
	}
	switch v := p.(type) {
	case *stream.IonStream:
		v.Hits = nil
	case *stream.VoxelStream:
		v.Values = nil
	case *stream.PlotStream:
		v.Bins = nil
	case *stream.DrawStream:
		v.Primitives = nil
	}
}
