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

package plot

import "github.com/apttools/depict/geom"

// LineStyle is the trace rendering mode, matching the handful of
// styles original_source's PlotBase::traceType selected between.
type LineStyle int

const (
	Lines LineStyle = iota
	Steps
	Bars
	Points
)

// Plot1D is a single x/y trace with optional error bars and an
// overlay of draggable regions, the shape spectrumPlot and similar
// filters emit as a stream.PlotStream's rendering counterpart.
type Plot1D struct {
	PlotBase

	X, Y, YErr []float32

	XLabel, YLabel string
	Colour         geom.Colour
	Style          LineStyle
	LogY           bool

	// HardMinY is the y-axis floor Bounds clamps to when LogY is set,
	// copied from the producing stream.PlotStream's own HardMinY so log
	// scaling never has to take log(0) of an empty bucket. Zero means
	// "use the default floor of 1".
	HardMinY float32

	Regions Group
}

// NewPlot1D builds an empty, visible plot with the given title and
// region owner.
func NewPlot1D(title string, owner Owner) *Plot1D {
	return &Plot1D{
		PlotBase: NewPlotBase(title),
		Regions:  Group{Owner: owner},
	}
}

// Empty reports whether the plot carries no samples.
func (p *Plot1D) Empty() bool {
	return len(p.X) == 0
}

// Bounds computes the data extent over X and Y, ignoring YErr. It
// returns the zero Bounds if the plot is empty. When LogY is set, MinY
// is clamped up to HardMinY (at most 1, to accommodate log(0)) so the
// returned bounds are always safe to feed to a log-scale axis.
func (p *Plot1D) Bounds() Bounds {
	if p.Empty() {
		return Bounds{}
	}
	b := Bounds{MinX: p.X[0], MaxX: p.X[0], MinY: p.Y[0], MaxY: p.Y[0]}
	for i := 1; i < len(p.X); i++ {
		if p.X[i] < b.MinX {
			b.MinX = p.X[i]
		}
		if p.X[i] > b.MaxX {
			b.MaxX = p.X[i]
		}
		if p.Y[i] < b.MinY {
			b.MinY = p.Y[i]
		}
		if p.Y[i] > b.MaxY {
			b.MaxY = p.Y[i]
		}
	}
	if p.LogY {
		floor := p.HardMinY
		if floor <= 0 || floor > 1 {
			floor = 1
		}
		if b.MinY < floor {
			b.MinY = floor
		}
	}
	return b
}

// Clone returns a deep copy of the plot's sample data and regions;
// PlotBase.ID is carried over unchanged, matching original_source's
// PlotBase::clone(), which preserves the plot's identity across a
// cosmetic in-place mutation rather than minting a new one.
func (p *Plot1D) Clone() *Plot1D {
	cp := &Plot1D{
		PlotBase: p.PlotBase,
		XLabel:   p.XLabel,
		YLabel:   p.YLabel,
		Colour:   p.Colour,
		Style:    p.Style,
		LogY:     p.LogY,
		Regions:  Group{Owner: p.Regions.Owner, Regions: append([]Region(nil), p.Regions.Regions...)},
	}
	cp.X = append([]float32(nil), p.X...)
	cp.Y = append([]float32(nil), p.Y...)
	if p.YErr != nil {
		cp.YErr = append([]float32(nil), p.YErr...)
	}
	return cp
}
