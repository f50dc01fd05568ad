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

import (
	"fmt"
)

// Colour is an RGBA colour with each channel in [0, 1].
type Colour struct {
	R, G, B, A float32
}

// Opaque builds a fully-opaque colour from 8-bit channels, the common
// case for range/ion table colours loaded from a range file.
func Opaque(r, g, b uint8) Colour {
	return Colour{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255, A: 1}
}

// Hex renders c as an 8-character RRGGBBAA hex string.
func (c Colour) Hex() string {
	return fmt.Sprintf("%02X%02X%02X%02X", to8(c.R), to8(c.G), to8(c.B), to8(c.A))
}

// ParseHex parses an 8-character RRGGBBAA (or 6-character RRGGBB, alpha
// defaulting to fully opaque) hex string into a Colour.
func ParseHex(s string) (Colour, error) {
	switch len(s) {
	case 6:
		s = s + "FF"
	case 8:
	default:
		return Colour{}, fmt.Errorf("geom: ParseHex: want 6 or 8 hex chars, got %q", s)
	}
	var v [4]uint8
	for i := range v {
		n, err := parseHexByte(s[i*2 : i*2+2])
		if err != nil {
			return Colour{}, fmt.Errorf("geom: ParseHex: %w", err)
		}
		v[i] = n
	}
	return Colour{
		R: float32(v[0]) / 255,
		G: float32(v[1]) / 255,
		B: float32(v[2]) / 255,
		A: float32(v[3]) / 255,
	}, nil
}

func parseHexByte(s string) (uint8, error) {
	var out uint8
	for _, c := range []byte(s) {
		var d uint8
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, fmt.Errorf("invalid hex digit %q", c)
		}
		out = out<<4 | d
	}
	return out, nil
}

func to8(f float32) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f*255 + 0.5)
}
