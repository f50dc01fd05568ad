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

import "testing"

// stubOwner records every SetFromRegion call and accepts or rejects
// by a fixed policy, standing in for filters.Range in these tests.
type stubOwner struct {
	reject bool
	calls  int
}

func (o *stubOwner) SetFromRegion(method DragMethod, regionID int, newPos float32) bool {
	o.calls++
	return !o.reject
}

func newGroup(owner Owner) *Group {
	g := &Group{Owner: owner}
	g.Add(Region{Lo: 0, Hi: 10, RegionID: 1})
	g.Add(Region{Lo: 20, Hi: 30, RegionID: 2})
	return g
}

func TestMoveExtendHighAccepted(t *testing.T) {
	owner := &stubOwner{}
	g := newGroup(owner)
	if !g.Move(1, ExtendHigh, 15) {
		t.Fatal("expected move to be accepted")
	}
	r, _ := g.At(1)
	if r.Hi != 15 {
		t.Fatalf("expected Hi updated to 15, got %v", r.Hi)
	}
	if owner.calls != 1 {
		t.Fatalf("expected owner consulted once, got %d", owner.calls)
	}
}

func TestMoveRejectedByOwnerLeavesBoundsUnchanged(t *testing.T) {
	owner := &stubOwner{reject: true}
	g := newGroup(owner)
	if g.Move(1, ExtendHigh, 15) {
		t.Fatal("expected move to be rejected")
	}
	r, _ := g.At(1)
	if r.Hi != 10 {
		t.Fatalf("expected Hi unchanged at 10, got %v", r.Hi)
	}
}

func TestMoveRejectsOverlapWithoutConsultingOwner(t *testing.T) {
	owner := &stubOwner{}
	g := newGroup(owner)
	// extending region 1's Hi to 25 would overlap region 2 (20,30).
	if g.Move(1, ExtendHigh, 25) {
		t.Fatal("expected move to be rejected locally due to sibling overlap")
	}
	if owner.calls != 0 {
		t.Fatalf("expected owner never consulted for a locally-rejected move, got %d calls", owner.calls)
	}
}

func TestMoveRejectsInversion(t *testing.T) {
	owner := &stubOwner{}
	g := newGroup(owner)
	if g.Move(1, ExtendLow, 10) {
		t.Fatal("expected ExtendLow past Hi to be rejected")
	}
	if g.Move(1, ExtendHigh, 0) {
		t.Fatal("expected ExtendHigh past Lo to be rejected")
	}
}

func TestMoveTranslatePreservesWidth(t *testing.T) {
	owner := &stubOwner{}
	g := newGroup(owner)
	if !g.Move(1, Translate, 50) {
		t.Fatal("expected translate to a free area to be accepted")
	}
	r, _ := g.At(1)
	if r.Lo != 50 || r.Hi != 60 {
		t.Fatalf("expected width preserved at [50,60], got [%v,%v]", r.Lo, r.Hi)
	}
}

func TestHitTest(t *testing.T) {
	g := newGroup(&stubOwner{})
	id, ok := g.HitTest(5)
	if !ok || id != 1 {
		t.Fatalf("expected hit on region 1, got id=%d ok=%v", id, ok)
	}
	if _, ok := g.HitTest(15); ok {
		t.Fatal("expected no hit in the gap between regions")
	}
}

func TestRemove(t *testing.T) {
	g := newGroup(&stubOwner{})
	g.Remove(1)
	if _, ok := g.At(1); ok {
		t.Fatal("expected region 1 removed")
	}
	if _, ok := g.At(2); !ok {
		t.Fatal("expected region 2 untouched")
	}
}

func TestMoveUnknownOwnerRejected(t *testing.T) {
	g := newGroup(nil)
	if g.Move(1, Translate, 50) {
		t.Fatal("expected move with nil owner to be rejected")
	}
}

func TestMoveUnknownRegionIDRejected(t *testing.T) {
	g := newGroup(&stubOwner{})
	if g.Move(999, Translate, 50) {
		t.Fatal("expected move on an unknown region id to be rejected")
	}
}
