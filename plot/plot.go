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

// Package plot implements the view-model half of spec §4.5/§4.9: plot
// base state, the 1-D histogram/trace plot, and the draggable-region
// contract a plot uses to write changes back into the filter that
// produced it. Grounded on original_source/src/backend/plot.h's
// PlotBase/RegionGroup/PlotRegion classes, translated from MathGL's
// render-time API into a render-agnostic data model (no GUI toolkit is
// in scope here).
package plot

import (
	"sync/atomic"

	"github.com/apttools/depict/geom"
)

// ID stably identifies one plot within a tree, independent of the
// owning node's own ID.
type ID int64

var nextPlotID int64

// NewID mints a fresh, process-unique plot ID.
func NewID() ID {
	return ID(atomic.AddInt64(&nextPlotID, 1))
}

// PlotBase carries the state every plot kind shares: identity,
// visibility, and the title MathGL's wrapper used to export raw data
// labels from.
type PlotBase struct {
	ID      ID
	Title   string
	Visible bool
}

func NewPlotBase(title string) PlotBase {
	return PlotBase{ID: NewID(), Title: title, Visible: true}
}

// Bounds is the plot's data extent, kept separate from any single
// trace's axis labels so multiple overlays can share one bounding box.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float32
}
