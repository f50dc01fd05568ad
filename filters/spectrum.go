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
	"math"

	"github.com/apttools/depict/filter"
	"github.com/apttools/depict/geom"
	"github.com/apttools/depict/stream"
)

// PlotStyle names the rendering mode a Spectrum filter suggests to its
// Plot1D consumer.
type PlotStyle int

const (
	Lines PlotStyle = iota
	Bars
	Steps
	Stem
	Points
)

// Spectrum bins ion inputs by mass into a 1D histogram, optionally
// overlaying regions copied from an upstream range stream. Grounded on
// original_source/src/backend/filters/spectrumPlot.cpp.
const (
	spectrumMaxBins     = 1000000
	spectrumAutoMaxBins = 25000
)

type Spectrum struct {
	BinWidth    float32
	AutoExtrema bool
	Min, Max    float32
	LogY        bool
	Style       PlotStyle
	Colour      geom.Colour

	label  string // AxisLabels() override, empty means the default
	bins   []stream.Bin
	valid  bool
}

func NewSpectrum() *Spectrum {
	return &Spectrum{BinWidth: 0.5, AutoExtrema: true, Min: 0, Max: 150, Colour: geom.Opaque(0, 0, 255)}
}

// AxisLabels returns the x/y axis labels the original hard-codes,
// overridable via SetProperty("label", ...) per SPEC_FULL.md's
// "spectrum axis auto-labelling" supplement.
func (s *Spectrum) AxisLabels() (x, y string) {
	if s.label != "" {
		return s.label, "Count"
	}
	return "Mass-to-charge (amu/e)", "Count"
}

func (s *Spectrum) CloneUncached() filter.Node {
	cp := *s
	cp.bins = nil
	cp.valid = false
	return &cp
}

func (s *Spectrum) NumBytesForCache(nInput int) int64 {
	if s.BinWidth < 1e-6 || !(s.Max > s.Min) {
		return filter.CacheBytesUnknown
	}
	return int64(float64(s.Max-s.Min)/float64(s.BinWidth)) * 2 * 4
}

func (s *Spectrum) Init(inputs []stream.Payload) ([]stream.Payload, error) { return nil, nil }

func (s *Spectrum) Refresh(ctx *filter.RefreshContext, inputs []stream.Payload) ([]stream.Payload, error) {
	var ionInputs []*stream.IonStream
	var rangeIn *stream.RangeStream
	total := 0
	for _, in := range inputs {
		switch p := in.(type) {
		case *stream.IonStream:
			ionInputs = append(ionInputs, p)
			total += len(p.Hits)
		case *stream.RangeStream:
			rangeIn = p
		}
	}

	lo, hi := s.Min, s.Max
	if total > 0 && s.AutoExtrema {
		lo, hi = float32(math.Inf(1)), float32(math.Inf(-1))
		n := 0
		for _, is := range ionInputs {
			for _, h := range is.Hits {
				if h.Value < lo {
					lo = h.Value
				}
				if h.Value > hi {
					hi = h.Value
				}
				n++
				if n%ionio_PROGRESS_REDUCE == 0 && ctx.Cancelled() {
					return nil, filter.ErrAborted
				}
			}
		}
		lo -= 1
		hi += 1
		s.Min, s.Max = lo, hi
	}

	binWidth := s.BinWidth
	if !(hi > lo) || binWidth < 1e-6 || math.IsInf(float64(hi-lo), 0) {
		lo, hi, binWidth = 0, 1, 0.1
	}
	nBins := int((hi - lo) / binWidth)
	if s.AutoExtrema {
		if nBins > spectrumAutoMaxBins {
			nBins = spectrumAutoMaxBins
		}
	} else if nBins > spectrumMaxBins {
		nBins = spectrumMaxBins
	}
	if nBins <= 0 {
		nBins = 10
		binWidth = (hi - lo) / float32(nBins)
	}

	bins := make([]stream.Bin, nBins)
	for i := range bins {
		bins[i] = stream.Bin{Lo: lo + float32(i)*binWidth, Hi: lo + float32(i+1)*binWidth}
	}
	for _, is := range ionInputs {
		for _, h := range is.Hits {
			if h.Value < lo || h.Value >= hi {
				continue
			}
			idx := int((h.Value - lo) / binWidth)
			if idx < 0 || idx >= nBins {
				continue
			}
			bins[idx].Count++
		}
	}

	var regions []stream.RegionSpec
	if rangeIn != nil && rangeIn.Table != nil {
		t := rangeIn.Table
		for i, r := range t.Ranges {
			ionID := t.RangeToIon[i]
			regions = append(regions, stream.RegionSpec{
				Lo: r.Lo, Hi: r.Hi,
				Colour:   t.Colours[ionID],
				RegionID: i,
				Owner:    rangeIn.Owner,
			})
		}
	}

	s.bins, s.valid = bins, true
	out := stream.NewPlotStream("spectrum", true, bins, regions)
	out.HardMinY = hardMinY(s.LogY)
	return []stream.Payload{out}, nil
}

// hardMinY computes the plot's y-axis floor (spec §4.5 step 5). A
// linear plot has none: a histogram can legitimately show zero. A
// log-y plot cannot place an empty bin at log(0), so its floor is
// clamped to at most 1 — the smallest count a bin can hold without
// being empty — so every non-empty bin still renders.
func hardMinY(logY bool) float32 {
	if !logY {
		return 0
	}
	return 1
}

func (s *Spectrum) Properties() filter.PropertySets {
	return filter.PropertySets{{Name: "spectrum", Properties: []filter.Property{
		{Key: "bin_width", Current: filter.Float(float64(s.BinWidth))},
		{Key: "auto_extrema", Current: filter.Bool(s.AutoExtrema)},
		{Key: "min", Current: filter.Float(float64(s.Min))},
		{Key: "max", Current: filter.Float(float64(s.Max))},
		{Key: "log_y", Current: filter.Bool(s.LogY)},
		{Key: "plot_style", Current: filter.Int(int64(s.Style))},
		{Key: "colour", Current: filter.Col(s.Colour)},
		{Key: "label", Current: filter.Str(s.label)},
	}}}
}

// SetProperty splits keys into cosmetic and data-bearing ones.
// plot_style, colour and label are never stored on the emitted
// PlotStream (a consumer reads them straight off this filter via
// Properties), so changing them has nothing to invalidate: they report
// needsRefresh=false, which per tree.Node.SetProperty leaves a valid
// cache exactly as it was. log_y also reports needsRefresh=false, but
// Refresh does store one value derived from it, PlotStream.HardMinY; a
// log_y change does not update an already-emitted stream, so a cached
// stream keeps the HardMinY of the Refresh that built it until the
// next recompute. Every other property change alters the bin data
// itself and reports needsRefresh=true, which does clear the cache.
func (s *Spectrum) SetProperty(key string, v filter.Value) (bool, bool) {
	switch key {
	case "bin_width":
		if v.Float <= 0 {
			return false, false
		}
		s.BinWidth = float32(v.Float)
		s.valid = false
	case "auto_extrema":
		s.AutoExtrema = v.Bool
		s.valid = false
	case "min":
		s.Min = float32(v.Float)
		s.valid = false
	case "max":
		s.Max = float32(v.Float)
		s.valid = false
	case "log_y":
		s.LogY = v.Bool
		return true, false
	case "plot_style":
		s.Style = PlotStyle(v.Int)
		return true, false
	case "colour":
		s.Colour = v.Colour
		return true, false
	case "label":
		s.label = v.String
		return true, false
	default:
		return false, false
	}
	return true, true
}

// Serialize/Deserialize write nothing: every field Spectrum carries is
// already round-tripped as a flat Property, so there is no structural
// state left for the §6.3 state blob to hold.
func (s *Spectrum) Serialize(enc *xml.Encoder) error   { return nil }
func (s *Spectrum) Deserialize(dec *xml.Decoder) error { return nil }

func (s *Spectrum) BlockMask() stream.KindMask { return 0 }
func (s *Spectrum) EmitMask() stream.KindMask  { return stream.MaskOf(stream.Plot) }
func (s *Spectrum) UseMask() stream.KindMask   { return stream.MaskOf(stream.Ions, stream.Range) }
