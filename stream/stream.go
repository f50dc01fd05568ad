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

// Package stream defines the tagged union of values that flow along the
// edges of a filter tree: ion sets, plots, drawing primitives, range
// tables and voxel grids.
package stream

import "fmt"

// Kind identifies the concrete type carried by a Payload.
type Kind int

const (
	Ions Kind = iota
	Plot
	Draw
	Range
	Voxel
)

var kindNames = [...]string{"Ions", "Plot", "Draw", "Range", "Voxel"}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("stream.Kind(%d)", int(k))
	}
	return kindNames[k]
}

// KindMask is a bitmask over Kind values, used by a filter.Node to
// declare which stream kinds it blocks, emits or consumes.
type KindMask uint8

func MaskOf(kinds ...Kind) KindMask {
	var m KindMask
	for _, k := range kinds {
		m |= 1 << uint(k)
	}
	return m
}

func (m KindMask) Has(k Kind) bool { return m&(1<<uint(k)) != 0 }

func (m KindMask) With(k Kind) KindMask { return m | 1<<uint(k) }

func (m KindMask) Without(k Kind) KindMask { return m &^ (1 << uint(k)) }

// AllKinds enumerates every Kind, in declaration order, for callers
// that need to range over the whole stream-kind space (the tree
// engine's static analysis pass, mask-rendering diagnostics).
var AllKinds = []Kind{Ions, Plot, Draw, Range, Voxel}

// ProducerID stably identifies the node that produced a Payload, so a
// downstream consumer (a region drag, a cache lookup) can address it
// without holding a direct pointer back into the tree.
type ProducerID string

// Payload is carried along an edge of the filter tree between nodes.
// Cached reports whether the tree's cache owns this value (and may hand
// the same instance to more than one reader); Producer names the node
// that built it.
type Payload interface {
	Kind() Kind
	Cached() bool
	Producer() ProducerID
}

// base is embedded by every concrete payload to supply the Cached/
// Producer bookkeeping uniformly.
type base struct {
	cached   bool
	producer ProducerID
}

func (b base) Cached() bool          { return b.cached }
func (b base) Producer() ProducerID  { return b.producer }
func (b *base) SetCached(c bool)     { b.cached = c }
func (b *base) SetProducer(p ProducerID) { b.producer = p }

// NewBase constructs the embeddable bookkeeping fields for a concrete
// payload type's constructor.
func NewBase(producer ProducerID, cached bool) base {
	return base{cached: cached, producer: producer}
}
