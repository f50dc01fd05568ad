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

package stream

import (
	"github.com/apttools/depict/geom"
	"github.com/apttools/depict/ranging"
)

// IonStream carries a set of detected ion hits, plus the flat draw
// colour a bucketing or recolouring filter (Range, IonColour) has
// assigned to this particular subset. Zero-valued Colour means no
// filter has expressed an opinion; a renderer is expected to fall back
// to its own default in that case.
type IonStream struct {
	base
	Hits   []geom.IonHit
	Bounds geom.BoundingBox
	Colour geom.Colour
}

func NewIonStream(producer ProducerID, cached bool, hits []geom.IonHit, bounds geom.BoundingBox) *IonStream {
	return &IonStream{base: NewBase(producer, cached), Hits: hits, Bounds: bounds}
}

func (*IonStream) Kind() Kind { return Ions }

// NumBytes is the approximate in-memory footprint of the stream's hit
// slice, used by a node's NumBytesForCache estimate.
func (s *IonStream) NumBytes() int64 { return int64(len(s.Hits)) * 16 }

// RangeStream carries a range table, the output of the ranging filter
// and the input consumed by every filter that colours or buckets ions
// by range membership. Owner, if non-nil, is the filter that produced
// the table; a consumer that overlays draggable regions (Spectrum)
// routes drag gestures through it, per spec §9's replacement of the
// original's raw PlotRegion::parentObject pointer.
type RangeStream struct {
	base
	Table *ranging.Table
	Owner RegionOwner
}

func NewRangeStream(producer ProducerID, cached bool, table *ranging.Table, owner RegionOwner) *RangeStream {
	return &RangeStream{base: NewBase(producer, cached), Table: table, Owner: owner}
}

func (*RangeStream) Kind() Kind { return Range }

// Bin is one histogram bucket of a PlotStream.
type Bin struct {
	Lo, Hi float32
	Count  int64
}

// RegionSpec is one draggable interval copied into a PlotStream from an
// upstream RangeStream (spec §4.5 step 4). The plot package turns each
// of these into a plot.Region when it builds the view model; PlotStream
// itself stays free of any rendering-facing type.
type RegionSpec struct {
	Lo, Hi   float32
	Colour   geom.Colour
	RegionID int
	Owner    RegionOwner
}

// PlotStream carries a 1D histogram plus its axis extrema, the input
// to a Plot1D view model.
type PlotStream struct {
	base
	Bins     []Bin
	MinMass  float32
	MaxMass  float32
	MaxCount int64
	Regions  []RegionSpec

	// HardMinY is the y-axis floor a log-scale consumer should clamp to
	// rather than the true minimum (which may be zero, and log(0) is
	// undefined). Zero means "no floor needed" — the producer left
	// log-y off.
	HardMinY float32
}

func NewPlotStream(producer ProducerID, cached bool, bins []Bin, regions []RegionSpec) *PlotStream {
	p := &PlotStream{base: NewBase(producer, cached), Bins: bins, Regions: regions}
	p.recomputeExtrema()
	return p
}

func (p *PlotStream) recomputeExtrema() {
	if len(p.Bins) == 0 {
		return
	}
	p.MinMass = p.Bins[0].Lo
	p.MaxMass = p.Bins[len(p.Bins)-1].Hi
	for _, b := range p.Bins {
		if b.Count > p.MaxCount {
			p.MaxCount = b.Count
		}
	}
}

func (*PlotStream) Kind() Kind { return Plot }

// Primitive is one drawable element emitted by a node that renders
// directly rather than producing a structured plot or ion set: a point
// cloud, a line set or a textual annotation. Non-goals exclude an actual
// rendering backend; Primitive is only the emission seam described by
// SPEC_FULL.md's DrawStream contract.
type Primitive struct {
	Kind     string
	Vertices []geom.Point3
	Colour   geom.Colour
	Text     string
}

// DrawStream carries a list of drawing primitives, the seam through
// which a filter hands rendering-agnostic shapes to an external
// collaborator (a GUI toolkit, out of this module's scope).
type DrawStream struct {
	base
	Primitives []Primitive
}

func NewDrawStream(producer ProducerID, cached bool, prims []Primitive) *DrawStream {
	return &DrawStream{base: NewBase(producer, cached), Primitives: prims}
}

func (*DrawStream) Kind() Kind { return Draw }

// VoxelStream carries a dense or sparse 3D occupancy/intensity grid.
// Non-goals exclude any 3D reconstruction algorithm that would populate
// one; it exists in the payload union because spec §3 names Voxel as a
// stream kind a future filter may produce or consume.
type VoxelStream struct {
	base
	Dims   [3]int
	Origin geom.Point3
	Pitch  geom.Point3
	Values []float32
}

func NewVoxelStream(producer ProducerID, cached bool, dims [3]int, origin, pitch geom.Point3, values []float32) *VoxelStream {
	return &VoxelStream{base: NewBase(producer, cached), Dims: dims, Origin: origin, Pitch: pitch, Values: values}
}

func (*VoxelStream) Kind() Kind { return Voxel }

func (v *VoxelStream) NumBytes() int64 { return int64(len(v.Values)) * 4 }
