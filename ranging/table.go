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

// Package ranging implements the in-memory range table: the ordered set
// of named ions, their display colours, and the non-overlapping mass
// ranges assigned to them, plus the mutators a ranging filter (or an
// interactive region drag) uses to edit it while preserving
// self-consistency.
package ranging

import (
	"fmt"

	"github.com/apttools/depict/geom"
	"golang.org/x/exp/slices"
)

// IonName is a (short, long) display name pair. Short is the key used by
// external references (range-file formulas, serialized filter state).
type IonName struct {
	Short, Long string
}

// Range is a closed-open mass interval, Lo < Hi.
type Range struct {
	Lo, Hi float32
}

// Width returns Hi - Lo.
func (r Range) Width() float32 { return r.Hi - r.Lo }

// Overlaps reports whether r and o share any interior point, including
// one nesting inside, or exactly duplicating, the other.
func (r Range) Overlaps(o Range) bool {
	return r.Lo < o.Hi && o.Lo < r.Hi
}

// Table is the range model of spec §3: an ordered ion table, a parallel
// colour table, an ordered range table, and the range→ion index map.
type Table struct {
	IonNames   []IonName
	Colours    []geom.Colour
	Ranges     []Range
	RangeToIon []int

	permOldToNew []int
}

// IsSelfConsistent checks every invariant from spec §3: non-zero width,
// no pair of ranges overlapping/nesting/duplicating, and every
// RangeToIon entry in bounds.
func (t *Table) IsSelfConsistent() bool {
	if len(t.Colours) != len(t.IonNames) {
		return false
	}
	if len(t.RangeToIon) != len(t.Ranges) {
		return false
	}
	for _, r := range t.Ranges {
		if !(r.Lo < r.Hi) {
			return false
		}
	}
	for i := range t.Ranges {
		for j := i + 1; j < len(t.Ranges); j++ {
			if t.Ranges[i].Overlaps(t.Ranges[j]) {
				return false
			}
		}
	}
	for _, ion := range t.RangeToIon {
		if ion < 0 || ion >= len(t.IonNames) {
			return false
		}
	}
	return true
}

// IonIDByShort returns the index of the ion with the given short name,
// or -1 if none matches.
func (t *Table) IonIDByShort(short string) int {
	for i, n := range t.IonNames {
		if n.Short == short {
			return i
		}
	}
	return -1
}

// LookupMass returns the range index whose [Lo, Hi) interval contains m,
// or -1 if m falls in no range. Ranges are kept sorted by Lo so this is a
// binary search.
func (t *Table) LookupMass(m float32) int {
	idx, ok := slices.BinarySearchFunc(t.Ranges, m, func(r Range, m float32) int {
		switch {
		case m < r.Lo:
			return 1
		case m >= r.Hi:
			return -1
		default:
			return 0
		}
	})
	if !ok {
		return -1
	}
	return idx
}

// sortByLo keeps t.Ranges (and the parallel RangeToIon) ordered by Lo, a
// precondition for LookupMass's binary search. It records the old- to
// new-index mapping it applies in permOldToNew so a caller keeping its
// own per-range state in lockstep with Ranges (an enabled-range bitmap,
// say) can permute that state the same way via LastPermutation.
func (t *Table) sortByLo() {
	type pair struct {
		r      Range
		id     int
		oldIdx int
	}
	pairs := make([]pair, len(t.Ranges))
	for i, r := range t.Ranges {
		pairs[i] = pair{r, t.RangeToIon[i], i}
	}
	slices.SortFunc(pairs, func(a, b pair) int {
		switch {
		case a.r.Lo < b.r.Lo:
			return -1
		case a.r.Lo > b.r.Lo:
			return 1
		default:
			return 0
		}
	})
	perm := make([]int, len(pairs))
	for i, p := range pairs {
		t.Ranges[i] = p.r
		t.RangeToIon[i] = p.id
		perm[p.oldIdx] = i
	}
	t.permOldToNew = perm
}

// LastPermutation returns the old-index-to-new-index mapping produced
// by the most recent call to AddRange, MoveRange or MoveBothRanges
// (nil if Ranges is empty). Index i of the returned slice gives the
// range that used to sit at i its new position after the reorder;
// identity if the reorder left every range where it was.
func (t *Table) LastPermutation() []int {
	return t.permOldToNew
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	out := &Table{
		IonNames:   append([]IonName(nil), t.IonNames...),
		Colours:    append([]geom.Colour(nil), t.Colours...),
		Ranges:     append([]Range(nil), t.Ranges...),
		RangeToIon: append([]int(nil), t.RangeToIon...),
	}
	return out
}

func (t *Table) String() string {
	return fmt.Sprintf("ranging.Table{%d ions, %d ranges}", len(t.IonNames), len(t.Ranges))
}
