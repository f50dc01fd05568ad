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

import "math"

// BoundingBox is an axis-aligned box described by its low and high
// corners. The zero value is not a valid box; construct an accumulator
// seed with Invalid and grow it with Extend/Union.
type BoundingBox struct {
	Lo, Hi Point3
}

// Invalid returns the inverse-limit sentinel box (Lo = +Inf, Hi = -Inf
// componentwise) suitable as a fold seed for Extend/Union. Callers must
// check Valid before using a box that may have come from this seed
// untouched.
func Invalid() BoundingBox {
	return BoundingBox{
		Lo: Point3{X: float32(math.Inf(1)), Y: float32(math.Inf(1)), Z: float32(math.Inf(1))},
		Hi: Point3{X: float32(math.Inf(-1)), Y: float32(math.Inf(-1)), Z: float32(math.Inf(-1))},
	}
}

// Valid reports whether every Lo component is <= the matching Hi
// component. A box built via Invalid and never extended is not valid.
func (b BoundingBox) Valid() bool {
	return b.Lo.X <= b.Hi.X && b.Lo.Y <= b.Hi.Y && b.Lo.Z <= b.Hi.Z
}

// Extend grows b in place so it also contains p.
func (b *BoundingBox) Extend(p Point3) {
	b.Lo.X = minf(b.Lo.X, p.X)
	b.Lo.Y = minf(b.Lo.Y, p.Y)
	b.Lo.Z = minf(b.Lo.Z, p.Z)
	b.Hi.X = maxf(b.Hi.X, p.X)
	b.Hi.Y = maxf(b.Hi.Y, p.Y)
	b.Hi.Z = maxf(b.Hi.Z, p.Z)
}

// Union returns the smallest box containing both b and o.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	out := b
	out.Extend(o.Lo)
	out.Extend(o.Hi)
	return out
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
