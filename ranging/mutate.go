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

package ranging

import "github.com/apttools/depict/geom"

// Bound selects which end of a range MoveRange edits.
type Bound int

const (
	Low Bound = iota
	High
)

// AddIon appends a new ion with the given names and colour, returning
// its index.
func (t *Table) AddIon(short, long string, c geom.Colour) int {
	t.IonNames = append(t.IonNames, IonName{Short: short, Long: long})
	t.Colours = append(t.Colours, c)
	return len(t.IonNames) - 1
}

// AddRange appends [lo, hi) mapped to ion ionID. It refuses the change
// (returning false, table unchanged) if the resulting table would not be
// self-consistent.
func (t *Table) AddRange(lo, hi float32, ionID int) bool {
	if ionID < 0 || ionID >= len(t.IonNames) {
		return false
	}
	cand := Range{Lo: lo, Hi: hi}
	if !(cand.Lo < cand.Hi) {
		return false
	}
	for _, r := range t.Ranges {
		if cand.Overlaps(r) {
			return false
		}
	}
	t.Ranges = append(t.Ranges, cand)
	t.RangeToIon = append(t.RangeToIon, ionID)
	t.sortByLo()
	return true
}

// MoveRange extends one bound of range rangeID to newPos (spec §4.6's
// ExtendLow/ExtendHigh). It enforces the preconditions: ExtendHigh
// requires newPos > lo, ExtendLow requires newPos < hi, and the result
// must not overlap, nest in, or straddle any other range. On any
// violation the table is left unchanged and false is returned.
func (t *Table) MoveRange(rangeID int, which Bound, newPos float32) bool {
	if rangeID < 0 || rangeID >= len(t.Ranges) {
		return false
	}
	cand := t.Ranges[rangeID]
	switch which {
	case High:
		if !(newPos > cand.Lo) {
			return false
		}
		cand.Hi = newPos
	case Low:
		if !(newPos < cand.Hi) {
			return false
		}
		cand.Lo = newPos
	default:
		return false
	}
	if !t.fitsExcept(cand, rangeID) {
		return false
	}
	t.Ranges[rangeID] = cand
	t.sortByLo()
	return true
}

// MoveBothRanges translates range rangeID to [newLo, newHi) (spec
// §4.6's Translate method), preserving or changing width as given by the
// caller. Refuses on overlap with any other range.
func (t *Table) MoveBothRanges(rangeID int, newLo, newHi float32) bool {
	if rangeID < 0 || rangeID >= len(t.Ranges) {
		return false
	}
	if !(newLo < newHi) {
		return false
	}
	cand := Range{Lo: newLo, Hi: newHi}
	if !t.fitsExcept(cand, rangeID) {
		return false
	}
	t.Ranges[rangeID] = cand
	t.sortByLo()
	return true
}

// fitsExcept reports whether cand overlaps no range in t other than
// index skip.
func (t *Table) fitsExcept(cand Range, skip int) bool {
	for i, r := range t.Ranges {
		if i == skip {
			continue
		}
		if cand.Overlaps(r) {
			return false
		}
	}
	return true
}

// SetColour sets the display colour of ion ionID.
func (t *Table) SetColour(ionID int, c geom.Colour) bool {
	if ionID < 0 || ionID >= len(t.Colours) {
		return false
	}
	t.Colours[ionID] = c
	return true
}

// SetIonName renames ion ionID.
func (t *Table) SetIonName(ionID int, short, long string) bool {
	if ionID < 0 || ionID >= len(t.IonNames) {
		return false
	}
	t.IonNames[ionID] = IonName{Short: short, Long: long}
	return true
}

// SetIonID reassigns range rangeID to a different ion. Refuses if the
// ion index is out of range.
func (t *Table) SetIonID(rangeID, ionID int) bool {
	if rangeID < 0 || rangeID >= len(t.RangeToIon) {
		return false
	}
	if ionID < 0 || ionID >= len(t.IonNames) {
		return false
	}
	t.RangeToIon[rangeID] = ionID
	return true
}
