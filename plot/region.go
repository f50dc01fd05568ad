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

import (
	"github.com/apttools/depict/geom"
	"github.com/apttools/depict/stream"
)

// DragMethod names which edge of a region a drag gesture moves, mirroring
// original_source/src/backend/plot.h's RegionGroup::moveRegion method
// argument. Defined in stream so a stream.RangeStream can carry a
// RegionOwner without this package and stream importing one another.
type DragMethod = stream.DragMethod

const (
	ExtendLow  = stream.ExtendLow
	Translate  = stream.Translate
	ExtendHigh = stream.ExtendHigh
)

// Owner is implemented by the filter that produced a RegionGroup. A
// region drag is never applied locally first; RegionGroup always asks
// the owner whether the new bound is acceptable, per spec §9's
// redesign of the original's raw PlotBase* back-pointer into a
// (ProducerID, regionID) pair that is looked up through this interface
// instead of dereferenced directly. Owner is a re-export of
// stream.RegionOwner: SetFromRegion is called with the dragged edge,
// the region's filter-local ID (not the plot-local ID), and the
// candidate new position. It returns false if the owner rejects the
// move (for example because it would invert or overlap another
// range), in which case RegionGroup leaves the region's bounds
// unchanged.
type Owner = stream.RegionOwner

// Region is one draggable interval overlaid on a plot: a colour-coded
// band with a back-pointer to the filter node and range that own it.
// Region corresponds to original_source's PlotRegion, with the raw
// parentObject pointer replaced by Producer/RegionID per spec §9.
type Region struct {
	Lo, Hi   float32
	Colour   geom.Colour
	Producer stream.ProducerID
	RegionID int
}

func (r Region) width() float32 { return r.Hi - r.Lo }

func (r Region) overlaps(o Region) bool {
	return r.Lo < o.Hi && o.Lo < r.Hi
}

// Group is a set of Regions overlaid on one plot, together with the
// Owner each drag is routed through. Group corresponds to
// original_source's RegionGroup.
type Group struct {
	Owner   Owner
	Regions []Region
}

func (g *Group) indexOf(regionID int) int {
	for i := range g.Regions {
		if g.Regions[i].RegionID == regionID {
			return i
		}
	}
	return -1
}

// Add appends a region to the group.
func (g *Group) Add(r Region) {
	g.Regions = append(g.Regions, r)
}

// Remove deletes the region with the given filter-local ID, if present.
func (g *Group) Remove(regionID int) {
	i := g.indexOf(regionID)
	if i < 0 {
		return
	}
	g.Regions = append(g.Regions[:i], g.Regions[i+1:]...)
}

// fitsAmongSiblings reports whether candidate would overlap any region
// in the group other than the one at skipIndex. This is the local,
// cheap pre-check original_source's RegionGroup::findRegionLimit runs
// before ever asking the owning filter to commit a move; the owner's
// SetFromRegion performs the authoritative check against the full
// range table, which may know about ranges this plot is not currently
// showing.
func (g *Group) fitsAmongSiblings(skipIndex int, candidate Region) bool {
	for i, other := range g.Regions {
		if i == skipIndex {
			continue
		}
		if candidate.overlaps(other) {
			return false
		}
	}
	return true
}

// Move drags the region identified by regionID (the filter-local ID
// carried on Region, not its index in Regions) according to method,
// to newPos. It reports whether the move was accepted.
//
// A move is rejected locally, without ever consulting Owner, if it
// would invert the region (ExtendLow past Hi, or ExtendHigh past Lo)
// or overlap a sibling region in this same group. Otherwise Owner is
// asked to commit the move against its authoritative range table; the
// region's local bounds are only updated if it agrees.
func (g *Group) Move(regionID int, method DragMethod, newPos float32) bool {
	i := g.indexOf(regionID)
	if i < 0 {
		return false
	}
	cur := g.Regions[i]
	candidate := cur

	switch method {
	case ExtendLow:
		if newPos >= cur.Hi {
			return false
		}
		candidate.Lo = newPos
	case ExtendHigh:
		if newPos <= cur.Lo {
			return false
		}
		candidate.Hi = newPos
	case Translate:
		w := cur.width()
		candidate.Lo = newPos
		candidate.Hi = newPos + w
	default:
		return false
	}

	if !g.fitsAmongSiblings(i, candidate) {
		return false
	}
	if g.Owner == nil {
		return false
	}
	if !g.Owner.SetFromRegion(method, regionID, newPos) {
		return false
	}
	g.Regions[i] = candidate
	return true
}

// At returns the region with the given filter-local ID and whether it
// was found.
func (g *Group) At(regionID int) (Region, bool) {
	i := g.indexOf(regionID)
	if i < 0 {
		return Region{}, false
	}
	return g.Regions[i], true
}

// HitTest returns the filter-local ID of the region containing x, and
// true, or false if none does. Overlapping regions are never expected
// to coexist in one group (Move refuses to create them), so the first
// match is unambiguous.
func (g *Group) HitTest(x float32) (int, bool) {
	for _, r := range g.Regions {
		if x >= r.Lo && x <= r.Hi {
			return r.RegionID, true
		}
	}
	return 0, false
}
