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

package rangefile

import "strconv"

// parseFloat32 is the one dot-decimal number reader every grammar in this
// package routes through. Spec §9's redesign note replaces the original
// implementation's global locale switch (setlocale(LC_NUMERIC, "C") for
// the duration of a parse, restored afterward even on error) with this:
// a parser detail, not a process-wide mutation, so concurrent parses and
// refreshes never contend over global state.
func parseFloat32(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}

// parseUint parses a non-negative base-10 integer, used for the ORNL
// multiplicity columns and the RRNG/ENV ion/range counts.
func parseUint(s string) (int, error) {
	return strconv.Atoi(s)
}
