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

package geom

import "testing"

func TestInvalidBoxIsInvalid(t *testing.T) {
	b := Invalid()
	if b.Valid() {
		t.Fatalf("fresh Invalid() box should not be Valid()")
	}
}

func TestExtendMakesValid(t *testing.T) {
	b := Invalid()
	b.Extend(Point3{1, 2, 3})
	if !b.Valid() {
		t.Fatalf("box should be valid after a single Extend")
	}
	if b.Lo != (Point3{1, 2, 3}) || b.Hi != (Point3{1, 2, 3}) {
		t.Fatalf("degenerate box mismatch: %+v", b)
	}
}

func TestUnion(t *testing.T) {
	a := Invalid()
	a.Extend(Point3{0, 0, 0})
	a.Extend(Point3{1, 1, 1})
	b := Invalid()
	b.Extend(Point3{-1, -1, -1})
	b.Extend(Point3{0.5, 0.5, 0.5})
	u := a.Union(b)
	if u.Lo != (Point3{-1, -1, -1}) || u.Hi != (Point3{1, 1, 1}) {
		t.Fatalf("union mismatch: %+v", u)
	}
}
