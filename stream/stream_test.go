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
	"testing"

	"github.com/apttools/depict/geom"
)

func TestKindMask(t *testing.T) {
	m := MaskOf(Ions, Range)
	if !m.Has(Ions) || !m.Has(Range) {
		t.Fatal("expected mask to contain Ions and Range")
	}
	if m.Has(Plot) || m.Has(Draw) || m.Has(Voxel) {
		t.Fatal("mask should not contain kinds it was not built with")
	}
	m2 := m.With(Plot)
	if !m2.Has(Plot) || !m2.Has(Ions) {
		t.Fatal("With should add without dropping existing bits")
	}
}

func TestIonStreamPayload(t *testing.T) {
	hits := []geom.IonHit{{Point3: geom.Point3{X: 1, Y: 2, Z: 3}, Value: 4}}
	s := NewIonStream("producer-1", true, hits, geom.BoundingBox{})
	var p Payload = s
	if p.Kind() != Ions {
		t.Fatalf("got kind %v, want Ions", p.Kind())
	}
	if !p.Cached() {
		t.Fatal("expected Cached() true")
	}
	if p.Producer() != "producer-1" {
		t.Fatalf("got producer %q", p.Producer())
	}
	if s.NumBytes() != 16 {
		t.Fatalf("got %d bytes, want 16", s.NumBytes())
	}
}

func TestPlotStreamExtrema(t *testing.T) {
	bins := []Bin{
		{Lo: 0, Hi: 1, Count: 5},
		{Lo: 1, Hi: 2, Count: 12},
		{Lo: 2, Hi: 3, Count: 3},
	}
	p := NewPlotStream("producer-2", false, bins, nil)
	if p.MinMass != 0 || p.MaxMass != 3 {
		t.Fatalf("got extrema [%v,%v], want [0,3]", p.MinMass, p.MaxMass)
	}
	if p.MaxCount != 12 {
		t.Fatalf("got max count %d, want 12", p.MaxCount)
	}
}

func TestVoxelStreamBytes(t *testing.T) {
	v := NewVoxelStream("producer-3", true, [3]int{2, 2, 2}, geom.Point3{}, geom.Point3{X: 1, Y: 1, Z: 1}, make([]float32, 8))
	if v.NumBytes() != 32 {
		t.Fatalf("got %d bytes, want 32", v.NumBytes())
	}
	if v.Kind() != Voxel {
		t.Fatalf("got kind %v, want Voxel", v.Kind())
	}
}
