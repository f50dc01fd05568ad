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

// ionFragment is one (element, count) term of a decomposed ion name,
// e.g. "Cu2Ni1" decomposes to {"Cu",2},{"Ni",1}.
type ionFragment struct {
	element string
	count   int
}

// decomposeIonName splits a concatenated chemical-formula-style ion name
// into element fragments per spec §4.1: a leading uppercase ASCII letter
// starts a fragment, following lowercase letters extend the element
// symbol, following digits give the multiplier (default 1). Any
// non-ASCII or malformed input fails.
func decomposeIonName(name string) ([]ionFragment, error) {
	var frags []ionFragment
	i := 0
	n := len(name)
	for i < n {
		c := name[i]
		if c >= 0x80 {
			return nil, fmt.Errorf("non-ASCII byte in ion name %q", name)
		}
		if !(c >= 'A' && c <= 'Z') {
			return nil, fmt.Errorf("malformed ion name %q: expected element start at %d", name, i)
		}
		start := i
		i++
		for i < n && name[i] >= 'a' && name[i] <= 'z' {
			i++
		}
		element := name[start:i]
		digitStart := i
		for i < n && name[i] >= '0' && name[i] <= '9' {
			i++
		}
		count := 1
		if i > digitStart {
			v, err := parseUint(name[digitStart:i])
			if err != nil {
				return nil, fmt.Errorf("malformed multiplier in ion name %q", name)
			}
			count = v
		}
		frags = append(frags, ionFragment{element: element, count: count})
	}
	if len(frags) == 0 {
		return nil, fmt.Errorf("empty ion name")
	}
	return frags, nil
}

// fragmentsEqualMultiset reports whether frags, collapsed to an
// element→count multiset, exactly matches mult (also an element→count
// multiset derived from the ORNL multiplicity row).
func fragmentsEqualMultiset(frags []ionFragment, mult map[string]int) bool {
	have := map[string]int{}
	for _, f := range frags {
		have[f.element] += f.count
	}
	if len(have) != len(mult) {
		return false
	}
	for el, n := range mult {
		if have[el] != n {
			return false
		}
	}
	return true
}

type ornlIonDecl struct {
	long, short string
	colour      geom.Colour
}

// parseORNL implements the ORNL (.rng) grammar of spec §4.1.
func parseORNL(data []byte, warn func(string, ...interface{})) (*ranging.Table, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	next := func() (string, bool) {
		for sc.Scan() {
			line++
			return sc.Text(), true
		}
		return "", false
	}

	header, ok := next()
	if !ok {
		return nil, perr(ErrHeader, line, "missing ion/range count header")
	}
	var numIons, numRanges int
	if _, err := fmt.Sscanf(strings.TrimSpace(header), "%d %d", &numIons, &numRanges); err != nil {
		return nil, perr(ErrHeader, line, "cannot parse %q as two integers", header)
	}
	if numIons <= 0 {
		return nil, perr(ErrHeader, line, "non-positive ion count %d", numIons)
	}

	decls := make([]ornlIonDecl, 0, numIons)
	for i := 0; i < numIons; i++ {
		longName, ok := next()
		if !ok {
			return nil, perr(ErrLongName, line, "expected long name for ion %d", i)
		}
		longName = strings.TrimSpace(longName)

		shortLine, ok := next()
		if !ok {
			return nil, perr(ErrShortName, line, "expected short name/colour line for ion %d", i)
		}
		fields := strings.Fields(shortLine)
		if len(fields) < 4 {
			return nil, perr(ErrColour, line, "short name line %q needs a short name and 3 colour values", shortLine)
		}
		if len(fields) > 4 {
			warn("ion %d: trailing junk after colour triple: %q", i, strings.Join(fields[4:], " "))
		}
		r, err1 := parseFloat32(fields[1])
		g, err2 := parseFloat32(fields[2])
		b, err3 := parseFloat32(fields[3])
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, perr(ErrColour, line, "bad colour triple in %q", shortLine)
		}
		decls = append(decls, ornlIonDecl{
			long:   longName,
			short:  fields[0],
			colour: geom.Colour{R: r, G: g, B: b, A: 1},
		})
	}

	// separator line of >= 13 dashes, optionally followed by column
	// headers; skip non-digit lead-in to the first range row per spec.
	sepLine, ok := next()
	if !ok {
		return nil, perr(ErrTableSeparator, line, "missing table separator")
	}
	dashes := 0
	for _, c := range sepLine {
		if c == '-' {
			dashes++
		} else {
			break
		}
	}
	if dashes < 13 {
		return nil, perr(ErrTableSeparator, line, "separator has only %d dashes, need >= 13", dashes)
	}
	// column headers, if present, declare the ion order of the
	// multiplicity columns; default to declaration order.
	colIons := make([]int, numIons)
	for i := range colIons {
		colIons[i] = i
	}
	if hdrFields := strings.Fields(sepLine[dashes:]); len(hdrFields) > 0 {
		if len(hdrFields) != numIons {
			warn("column header has %d columns, expected %d; using declaration order", len(hdrFields), numIons)
		} else {
			ok := true
			mapped := make([]int, numIons)
			for i, h := range hdrFields {
				idx := -1
				for j, d := range decls {
					if d.short == h {
						idx = j
						break
					}
				}
				if idx < 0 {
					ok = false
					break
				}
				mapped[i] = idx
			}
			if ok {
				if !sameOrder(mapped) {
					warn("column header order disagrees with ion declaration order")
				}
				colIons = mapped
			} else {
				warn("column header references unknown ion short names; using declaration order")
			}
		}
	}

	tbl := &ranging.Table{}
	for _, d := range decls {
		tbl.AddIon(d.short, d.long, d.colour)
	}

	type pendingRange struct {
		lo, hi float32
		ionID  int // -1 sentinel: useless row, pruned at the end
	}
	var pending []pendingRange

	for i := 0; i < numRanges; i++ {
		row, ok := next()
		if !ok {
			return nil, perr(ErrTableEntry, line, "expected range row %d", i)
		}
		trimmed := skipNonDigitLeadIn(row)
		fields := strings.Fields(trimmed)
		if len(fields) < 2+numIons {
			return nil, perr(ErrTableEntry, line, "range row %d has %d fields, need >= %d", i, len(fields), 2+numIons)
		}
		lo, errLo := parseFloat32(fields[0])
		hi, errHi := parseFloat32(fields[1])
		if errLo != nil || errHi != nil {
			return nil, perr(ErrMassPair, line, "bad mass pair in row %d: %q", i, row)
		}
		if !(lo < hi) {
			return nil, perr(ErrDataFlipped, line, "row %d: lo %v is not < hi %v", i, lo, hi)
		}
		mult := make([]int, numIons)
		sum := 0
		nonZero := 0
		lastNonZero := -1
		for j := 0; j < numIons; j++ {
			v, err := parseUint(fields[2+j])
			if err != nil || v < 0 {
				return nil, perr(ErrTableEntry, line, "bad multiplicity in row %d column %d", i, j)
			}
			mult[colIons[j]] = v
			sum += v
			if v != 0 {
				nonZero++
				lastNonZero = colIons[j]
			}
		}
		var ionID int
		switch {
		case sum == 1 && nonZero == 1:
			ionID = lastNonZero
		case sum == 0:
			ionID = -1
		default:
			multByElement := map[string]int{}
			for j, d := range decls {
				if mult[j] == 0 {
					continue
				}
				multByElement[d.short] = mult[j]
			}
			matchIon := -1
			for j, d := range decls {
				frags, err := decomposeIonName(d.long)
				if err != nil {
					frags, err = decomposeIonName(d.short)
					if err != nil {
						continue
					}
				}
				if fragmentsEqualMultiset(frags, multByElement) {
					if matchIon != -1 {
						matchIon = -2 // ambiguous
						break
					}
					matchIon = j
				}
			}
			if matchIon < 0 {
				return nil, perr(ErrNoMappedIonName, line, "row %d: no unambiguous ion matches multiplicity vector", i)
			}
			ionID = matchIon
		}
		pending = append(pending, pendingRange{lo: lo, hi: hi, ionID: ionID})
	}

	useless := 0
	for _, p := range pending {
		if p.ionID < 0 {
			useless++
			continue
		}
		tbl.Ranges = append(tbl.Ranges, ranging.Range{Lo: p.lo, Hi: p.hi})
		tbl.RangeToIon = append(tbl.RangeToIon, p.ionID)
	}
	if useless > 0 && useless == len(pending) {
		return nil, perr(ErrDataTooManyUseless, line, "all %d range rows were discarded", len(pending))
	}
	return tbl, nil
}

func sameOrder(mapped []int) bool {
	for i, v := range mapped {
		if v != i {
			return false
		}
	}
	return true
}

// skipNonDigitLeadIn drops any leading characters up to and including a
// leading "." marker before the first digit or minus sign, per spec
// §4.1's "skip non-digit lead-in characters before each range row".
func skipNonDigitLeadIn(line string) string {
	i := 0
	for i < len(line) {
		c := line[i]
		if c == '-' || c == '.' || (c >= '0' && c <= '9') {
			if c == '-' || c == '.' {
				// could still be a lead-in marker like ". "; only
				// treat as numeric start if followed by a digit.
				if i+1 < len(line) && line[i+1] >= '0' && line[i+1] <= '9' {
					break
				}
				i++
				continue
			}
			break
		}
		i++
	}
	return line[i:]
}

// writeORNL emits the canonical ORNL form of spec §6.1.
func writeORNL(t *ranging.Table) ([]byte, error) {
	var buf bytes.Buffer
	for _, s := range t.IonNames {
		if strings.ContainsAny(s.Short, " \t") {
			return nil, perr(ErrShortNameInvalid, 0, "ion short name %q contains whitespace", s.Short)
		}
	}
	fmt.Fprintf(&buf, "%d %d\n", len(t.IonNames), len(t.Ranges))
	for i, ion := range t.IonNames {
		c := t.Colours[i]
		fmt.Fprintf(&buf, "%s\n%s %g %g %g\n", ion.Long, ion.Short, c.R, c.G, c.B)
	}
	fmt.Fprint(&buf, strings.Repeat("-", 13))
	for _, ion := range t.IonNames {
		fmt.Fprintf(&buf, " %s", ion.Short)
	}
	fmt.Fprintln(&buf)
	for i, r := range t.Ranges {
		ion := t.RangeToIon[i]
		fmt.Fprintf(&buf, ". %g %g", r.Lo, r.Hi)
		for j := range t.IonNames {
			if j == ion {
				fmt.Fprint(&buf, " 1")
			} else {
				fmt.Fprint(&buf, " 0")
			}
		}
		fmt.Fprintln(&buf)
	}
	return buf.Bytes(), nil
}
