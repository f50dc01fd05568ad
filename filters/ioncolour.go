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

package filters

import (
	"encoding/xml"

	"github.com/apttools/depict/filter"
	"github.com/apttools/depict/geom"
	"github.com/apttools/depict/stream"
)

// ColourMap names a gradient used to turn a normalised [0,1] value into
// a Colour. Grounded on original_source/src/backend/colourmap.h's named
// maps; only the handful with a simple closed-form gradient are kept,
// since nothing in this repo reads a lookup-table image the way the
// original's colourmap.cpp does.
type ColourMap int

const (
	Jet ColourMap = iota
	Hot
	Cold
	Gray
)

func colourAt(cm ColourMap, t float32) geom.Colour {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	switch cm {
	case Hot:
		return geom.Colour{R: clamp01(t * 3), G: clamp01(t*3 - 1), B: clamp01(t*3 - 2), A: 1}
	case Cold:
		return geom.Colour{R: clamp01(t*3 - 2), G: clamp01(t*3 - 1), B: clamp01(t * 3), A: 1}
	case Gray:
		return geom.Colour{R: t, G: t, B: t, A: 1}
	default: // Jet
		return jet(t)
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// jet reproduces MATLAB's classic blue-cyan-yellow-red gradient with a
// four-segment piecewise-linear approximation.
func jet(t float32) geom.Colour {
	r := clamp01(1.5 - abs32(4*t-3))
	g := clamp01(1.5 - abs32(4*t-2))
	b := clamp01(1.5 - abs32(4*t-1))
	return geom.Colour{R: r, G: g, B: b, A: 1}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// IonColour recolours ion streams by mass-to-charge, bucketing hits into
// NumColours subsets under a gradient, or by adopting an upstream range
// table's per-ion colour when UseRangeColour is set and no explicit
// gradient has been chosen (SPEC_FULL.md's "use range colour" passthrough
// supplement, ported from ionColour.cpp's rgba fallback chain). Grounded
// on original_source/src/filters/ionColour.cpp.
type IonColour struct {
	Map            ColourMap
	ExplicitMap    bool
	MapStart       float32
	MapEnd         float32
	NumColours     int
	ShowColourBar  bool
	UseRangeColour bool

	buckets []*stream.IonStream
	bar     *stream.DrawStream
	valid   bool
}

func NewIonColour() *IonColour {
	return &IonColour{
		MapStart: 0, MapEnd: 100,
		NumColours:     256,
		ShowColourBar:  true,
		UseRangeColour: true,
	}
}

func (c *IonColour) CloneUncached() filter.Node {
	cp := *c
	cp.buckets, cp.bar, cp.valid = nil, nil, false
	return &cp
}

func (c *IonColour) NumBytesForCache(nInput int) int64 { return int64(nInput) * 16 }

func (c *IonColour) Init(inputs []stream.Payload) ([]stream.Payload, error) { return nil, nil }

func (c *IonColour) Refresh(ctx *filter.RefreshContext, inputs []stream.Payload) ([]stream.Payload, error) {
	nColours := c.NumColours
	if nColours <= 0 {
		nColours = 1
	}

	var rangeIn *stream.RangeStream
	var passthrough []stream.Payload
	var total int
	var ionInputs []*stream.IonStream
	for _, in := range inputs {
		switch p := in.(type) {
		case *stream.IonStream:
			ionInputs = append(ionInputs, p)
			total += len(p.Hits)
		case *stream.RangeStream:
			rangeIn = p
			passthrough = append(passthrough, p)
		default:
			passthrough = append(passthrough, in)
		}
	}

	useRange := c.UseRangeColour && !c.ExplicitMap && rangeIn != nil && rangeIn.Table != nil

	// useRange buckets by actual ion id and borrows the range table's
	// colour directly; otherwise buckets by a gradient position, which
	// needs only NumColours buckets regardless of how many distinct ions
	// exist upstream.
	bucketCount := nColours
	if useRange {
		bucketCount = len(rangeIn.Table.IonNames)
	}
	buckets := make([][]geom.IonHit, bucketCount)
	n := 0
	for _, is := range ionInputs {
		for _, h := range is.Hits {
			var idx int
			if useRange {
				ri := rangeIn.Table.LookupMass(h.Value)
				if ri < 0 {
					n++
					continue
				}
				idx = rangeIn.Table.RangeToIon[ri]
			} else {
				span := c.MapEnd - c.MapStart
				t := float32(0)
				if span > 0 {
					t = (h.Value - c.MapStart) / span
				}
				t = clamp01(t)
				idx = int(t * float32(nColours-1))
			}
			buckets[idx] = append(buckets[idx], h)
			n++
			if n%ionio_PROGRESS_REDUCE == 0 {
				if !ctx.Report(n) || ctx.Cancelled() {
					return nil, filter.ErrAborted
				}
			}
		}
	}

	var out []*stream.IonStream
	for idx, hits := range buckets {
		if len(hits) == 0 {
			continue
		}
		bb := geom.Invalid()
		for _, h := range hits {
			bb.Extend(h.Point3)
		}
		is := stream.NewIonStream("ioncolour", true, hits, bb)
		if useRange {
			is.Colour = rangeIn.Table.Colours[idx]
		} else {
			is.Colour = colourAt(c.Map, float32(idx)/float32(nColours-1+boolToInt(nColours == 1)))
		}
		out = append(out, is)
	}

	c.buckets = out
	c.bar = c.makeColourBar()
	c.valid = true

	result := append([]stream.Payload(nil), passthrough...)
	for _, is := range out {
		result = append(result, is)
	}
	if c.ShowColourBar && len(out) > 0 {
		result = append(result, c.bar)
	}
	return result, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// makeColourBar rebuilds the overlay primitive straight from live
// configuration every call, not from the cached ion buckets — mirroring
// the original's IonColourFilter::makeColourBar. It runs only inside
// Refresh; a tree node with a valid cache does not call Refresh and
// keeps delivering the bar (or its absence) from the last recompute.
func (c *IonColour) makeColourBar() *stream.DrawStream {
	nColours := c.NumColours
	if nColours <= 0 {
		nColours = 1
	}
	prims := make([]stream.Primitive, 0, nColours)
	for i := 0; i < nColours; i++ {
		t := float32(i) / float32(nColours-1+boolToInt(nColours == 1))
		prims = append(prims, stream.Primitive{
			Kind:   "colourbar_segment",
			Colour: colourAt(c.Map, t),
		})
	}
	return stream.NewDrawStream("ioncolour", false, prims)
}

func (c *IonColour) Properties() filter.PropertySets {
	return filter.PropertySets{{Name: "ioncolour", Properties: []filter.Property{
		{Key: "colour_map", Current: filter.Int(int64(c.Map))},
		{Key: "use_range_colour", Current: filter.Bool(c.UseRangeColour)},
		{Key: "map_start", Current: filter.Float(float64(c.MapStart))},
		{Key: "map_end", Current: filter.Float(float64(c.MapEnd))},
		{Key: "num_colours", Current: filter.Int(int64(c.NumColours))},
		{Key: "show_colour_bar", Current: filter.Bool(c.ShowColourBar)},
	}}}
}

// SetProperty mirrors ionColour.cpp's setProperty: every bucketing
// parameter (map, bounds, colour count, range passthrough) requires a
// full re-bucketing. show_colour_bar is treated as cosmetic-only: it
// leaves the ion buckets alone and reports needsRefresh=false like
// Spectrum's cosmetic keys, so it does not clear a valid cache. The
// bar is only added or dropped when Refresh next runs (see
// makeColourBar); until then a cached node's output is unchanged.
func (c *IonColour) SetProperty(key string, v filter.Value) (bool, bool) {
	switch key {
	case "colour_map":
		m := ColourMap(v.Int)
		if m == c.Map && c.ExplicitMap {
			return true, false
		}
		c.Map, c.ExplicitMap = m, true
	case "use_range_colour":
		c.UseRangeColour = v.Bool
	case "map_start":
		if v.Float >= float64(c.MapEnd) {
			return false, false
		}
		c.MapStart = float32(v.Float)
	case "map_end":
		if v.Float <= float64(c.MapStart) {
			return false, false
		}
		c.MapEnd = float32(v.Float)
	case "num_colours":
		n := int(v.Int)
		if n <= 0 {
			return false, false
		}
		if n > 4096 {
			n = 4096
		}
		c.NumColours = n
	case "show_colour_bar":
		c.ShowColourBar = v.Bool
		return true, false
	default:
		return false, false
	}
	c.valid = false
	return true, true
}

// Serialize/Deserialize write nothing: every field IonColour carries is
// already round-tripped as a flat Property, so there is no structural
// state left for the §6.3 state blob to hold.
func (c *IonColour) Serialize(enc *xml.Encoder) error   { return nil }
func (c *IonColour) Deserialize(dec *xml.Decoder) error { return nil }

func (c *IonColour) BlockMask() stream.KindMask { return stream.MaskOf(stream.Ions) }
func (c *IonColour) EmitMask() stream.KindMask  { return stream.MaskOf(stream.Ions, stream.Draw) }
func (c *IonColour) UseMask() stream.KindMask   { return stream.MaskOf(stream.Ions, stream.Range) }
