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

import (
	"testing"

	"github.com/apttools/depict/geom"
)

func simpleTable() *Table {
	t := &Table{}
	c := t.AddIon("C", "Carbon", geom.Opaque(0, 255, 0))
	h := t.AddIon("H", "Hydrogen", geom.Opaque(255, 0, 0))
	t.AddRange(10, 20, c)
	t.AddRange(30, 40, h)
	return t
}

func TestSelfConsistentBaseline(t *testing.T) {
	tbl := simpleTable()
	if !tbl.IsSelfConsistent() {
		t.Fatalf("expected self-consistent baseline table")
	}
}

func TestAddRangeRejectsOverlap(t *testing.T) {
	tbl := simpleTable()
	if tbl.AddRange(15, 25, 0) {
		t.Fatalf("expected overlap rejection")
	}
	if !tbl.IsSelfConsistent() {
		t.Fatalf("table should be unchanged and still consistent")
	}
}

func TestAddRangeRejectsZeroWidth(t *testing.T) {
	tbl := simpleTable()
	if tbl.AddRange(50, 50, 0) {
		t.Fatalf("expected zero-width rejection")
	}
}

// TestMoveRangeRejection is scenario 4 from spec §8: given [10,20] and
// [30,40], MoveRange(0, High, 35) must return false and leave the table
// unchanged.
func TestMoveRangeRejection(t *testing.T) {
	tbl := simpleTable()
	before := tbl.Clone()
	if tbl.MoveRange(0, High, 35) {
		t.Fatalf("expected move to be rejected")
	}
	if tbl.Ranges[0] != before.Ranges[0] {
		t.Fatalf("table mutated despite rejection: got %v want %v", tbl.Ranges[0], before.Ranges[0])
	}
}

func TestMoveRangeAccepted(t *testing.T) {
	tbl := simpleTable()
	if !tbl.MoveRange(0, High, 18) {
		t.Fatalf("expected move to be accepted")
	}
	if !tbl.IsSelfConsistent() {
		t.Fatalf("table should remain self-consistent after an accepted move")
	}
	if tbl.Ranges[0].Hi != 18 {
		t.Fatalf("range not updated: %v", tbl.Ranges[0])
	}
}

func TestMoveBothRangesTranslate(t *testing.T) {
	tbl := simpleTable()
	if !tbl.MoveBothRanges(0, 12, 22) {
		t.Fatalf("expected translate to be accepted")
	}
	if !tbl.IsSelfConsistent() {
		t.Fatalf("table should remain consistent")
	}
}

func TestMoveBothRangesRejectsOverlap(t *testing.T) {
	tbl := simpleTable()
	if tbl.MoveBothRanges(0, 25, 35) {
		t.Fatalf("expected rejection: would overlap range 1")
	}
}

// TestMoveBothRangesPastSiblingReportsPermutation is spec §4.6's
// Translate reorder case: range 0 ([10,20]) moves past range 1
// ([30,40]) without overlapping it, so it is now sorted second.
// LastPermutation must describe that swap so a caller with its own
// per-range state (a filter's enabled bitmap) can carry it along.
func TestMoveBothRangesPastSiblingReportsPermutation(t *testing.T) {
	tbl := simpleTable()
	if !tbl.MoveBothRanges(0, 50, 60) {
		t.Fatalf("expected translate past the sibling range to be accepted")
	}
	if tbl.Ranges[0] != (Range{Lo: 30, Hi: 40}) {
		t.Fatalf("got range 0 %+v, want the untouched [30,40] range first", tbl.Ranges[0])
	}
	if tbl.Ranges[1].Lo != 50 {
		t.Fatalf("got range 1 %+v, want the translated range at Lo=50", tbl.Ranges[1])
	}
	perm := tbl.LastPermutation()
	if len(perm) != 2 {
		t.Fatalf("got permutation of length %d, want 2", len(perm))
	}
	// old index 0 (the translated range) now sits at new index 1;
	// old index 1 (untouched) now sits at new index 0.
	if perm[0] != 1 || perm[1] != 0 {
		t.Fatalf("got permutation %v, want [1 0]", perm)
	}
}

func TestLookupMass(t *testing.T) {
	tbl := simpleTable()
	if id := tbl.LookupMass(15); id != 0 {
		t.Fatalf("LookupMass(15): got %d want 0", id)
	}
	if id := tbl.LookupMass(35); id != 1 {
		t.Fatalf("LookupMass(35): got %d want 1", id)
	}
	if id := tbl.LookupMass(25); id != -1 {
		t.Fatalf("LookupMass(25): got %d want -1", id)
	}
}

func TestSetIonIDOutOfBounds(t *testing.T) {
	tbl := simpleTable()
	if tbl.SetIonID(0, 99) {
		t.Fatalf("expected rejection for out-of-bounds ion id")
	}
}
