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

package filter

import (
	"encoding/xml"

	"github.com/apttools/depict/stream"
)

// CacheBytesUnknown is returned by NumBytesForCache when a node cannot
// project its output size ahead of refresh (spec §4.3).
const CacheBytesUnknown int64 = -1

// ProgressFunc reports records-of-work-done progress during a refresh;
// returning false requests cancellation, mirroring ionio.ProgressFunc.
type ProgressFunc func(done int) bool

// CancelFunc is polled periodically during a long-running refresh loop
// (every PROGRESS_REDUCE records per spec §5); returning true means the
// caller should unwind and return ErrAborted.
type CancelFunc func() bool

// RefreshContext carries the per-refresh progress and cancellation
// hooks, replacing the teacher's global abort/stopwatch state (plan's
// ExecParams) with an explicit value threaded through each call.
type RefreshContext struct {
	Progress ProgressFunc
	Cancel   CancelFunc
}

// Cancelled reports whether ctx carries a cancel predicate and it has
// fired; a nil ctx or nil Cancel never cancels.
func (ctx *RefreshContext) Cancelled() bool {
	return ctx != nil && ctx.Cancel != nil && ctx.Cancel()
}

// Report forwards to ctx.Progress if one was supplied; a nil ctx or nil
// Progress is treated as "never cancel via progress".
func (ctx *RefreshContext) Report(done int) bool {
	if ctx == nil || ctx.Progress == nil {
		return true
	}
	return ctx.Progress(done)
}

// Node is the contract every concrete filter implements: a structural
// Init pass cheap enough to run eagerly, a heavy Refresh pass, a
// property surface, XML persistence, and the stream-kind masks the tree
// engine uses for static analysis and cache-aware pass-through.
//
// Generalized from the teacher's plan.Op (a query-plan operator with
// input/rewrite/exec/encode/setfield) to a pipeline node whose edges
// carry stream.Payload values instead of a single row stream.
type Node interface {
	// CloneUncached returns a deep copy of this node's configuration
	// with an empty cache, used when duplicating a subtree.
	CloneUncached() Node

	// NumBytesForCache projects this node's output footprint given
	// nInput upstream elements, or CacheBytesUnknown if it cannot.
	NumBytesForCache(nInput int) int64

	// Init performs a cheap structural pass over inputs — it may
	// inject pass-through range streams so children observe them
	// before any heavy computation runs — but must not do the work
	// Refresh does.
	Init(inputs []stream.Payload) ([]stream.Payload, error)

	// Refresh performs the node's heavy computation, honoring ctx's
	// progress and cancellation hooks.
	Refresh(ctx *RefreshContext, inputs []stream.Payload) ([]stream.Payload, error)

	// Properties returns the node's current user-settable configuration.
	Properties() PropertySets

	// SetProperty attempts to change the property named by key. accepted
	// reports whether the value was valid; needsRefresh reports whether
	// the change requires the node (and its subtree) to be refreshed
	// again before its output is current.
	SetProperty(key string, v Value) (accepted, needsRefresh bool)

	// Serialize/Deserialize persist and restore whatever structural
	// state Properties cannot express as a flat key/value, as a nested
	// XML element the tree's serializer owns and replays before it
	// hands this node its persisted Properties back (spec §6.3). Most
	// filters have nothing Properties doesn't already cover and write
	// nothing; Range is the exception, since its table is exactly the
	// state a fresh, Factory-built Range has no other way to recover.
	Serialize(enc *xml.Encoder) error
	Deserialize(dec *xml.Decoder) error

	// BlockMask reports which upstream stream kinds this node consumes
	// and does not pass through to its children.
	BlockMask() stream.KindMask
	// EmitMask reports which stream kinds this node's Refresh produces.
	EmitMask() stream.KindMask
	// UseMask reports which stream kinds this node reads from its inputs.
	UseMask() stream.KindMask
}
