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

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/apttools/depict/geom"
	"github.com/apttools/depict/ranging"
)

// parseENV implements the Rouen ENV (.env) grammar of spec §4.1:
// comment-leading '#' lines are stripped, the first non-blank line is
// "num_ions num_ranges", then num_ions "<name> r g b" blocks, then
// range rows "<ion_name> lo hi ...trailing...".
func parseENV(data []byte, warn func(string, ...interface{})) (*ranging.Table, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	line := 0
	next := func() (string, bool) {
		for sc.Scan() {
			line++
			raw := sc.Text()
			if idx := strings.IndexByte(raw, '#'); idx >= 0 {
				raw = raw[:idx]
			}
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			return raw, true
		}
		return "", false
	}

	header, ok := next()
	if !ok {
		return nil, perr(ErrHeader, line, "missing ion/range count header")
	}
	var numIons, numRanges int
	if _, err := fmt.Sscanf(header, "%d %d", &numIons, &numRanges); err != nil {
		return nil, perr(ErrHeader, line, "cannot parse %q as two integers", header)
	}
	if numIons <= 0 {
		return nil, perr(ErrHeader, line, "non-positive ion count %d", numIons)
	}

	tbl := &ranging.Table{}
	for i := 0; i < numIons; i++ {
		row, ok := next()
		if !ok {
			return nil, perr(ErrLongName, line, "expected ion block %d", i)
		}
		fields := strings.Fields(row)
		if len(fields) < 4 {
			return nil, perr(ErrColour, line, "ion line %q needs a name and 3 colour floats", row)
		}
		r, err1 := parseFloat32(fields[1])
		g, err2 := parseFloat32(fields[2])
		b, err3 := parseFloat32(fields[3])
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, perr(ErrColour, line, "bad colour triple in %q", row)
		}
		tbl.AddIon(fields[0], fields[0], geom.Colour{R: r, G: g, B: b, A: 1})
	}

	for i := 0; i < numRanges; i++ {
		row, ok := next()
		if !ok {
			return nil, perr(ErrTableEntry, line, "expected range row %d", i)
		}
		fields := strings.Fields(row)
		if len(fields) < 3 {
			return nil, perr(ErrTableEntry, line, "range row %q needs ion name, lo and hi", row)
		}
		ionID := tbl.IonIDByShort(fields[0])
		if ionID < 0 {
			return nil, perr(ErrNoMappedIonName, line, "range row references undeclared ion %q", fields[0])
		}
		lo, errLo := parseFloat32(fields[1])
		hi, errHi := parseFloat32(fields[2])
		if errLo != nil || errHi != nil {
			return nil, perr(ErrMassPair, line, "bad mass pair in row %q", row)
		}
		if !(lo < hi) {
			return nil, perr(ErrDataFlipped, line, "row %d: lo %v is not < hi %v", i, lo, hi)
		}
		if len(fields) > 3 {
			warn("range row %d: ignoring trailing fields %v", i, fields[3:])
		}
		tbl.Ranges = append(tbl.Ranges, ranging.Range{Lo: lo, Hi: hi})
		tbl.RangeToIon = append(tbl.RangeToIon, ionID)
	}
	return tbl, nil
}

// writeENV emits the canonical ENV form of spec §6.1, including the
// legacy trailing "1.0 1.0" pair on each range row.
func writeENV(t *ranging.Table) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d\n", len(t.IonNames), len(t.Ranges))
	for i, ion := range t.IonNames {
		c := t.Colours[i]
		fmt.Fprintf(&buf, "%s %g %g %g\n", ion.Short, c.R, c.G, c.B)
	}
	for i, r := range t.Ranges {
		ion := t.IonNames[t.RangeToIon[i]]
		fmt.Fprintf(&buf, "%s %g %g 1.0 1.0\n", ion.Short, r.Lo, r.Hi)
	}
	return buf.Bytes(), nil
}
