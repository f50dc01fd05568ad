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
	"math/rand"
	"strconv"
	"strings"

	"github.com/apttools/depict/geom"
	"github.com/apttools/depict/ranging"
)

// parseRRNG implements the RRNG (.rrng) ini-style grammar of spec §4.1.
func parseRRNG(data []byte, warn func(string, ...interface{})) (*ranging.Table, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	section := ""
	refIons := map[string]bool{} // declared in [Ions]
	var refIonOrder []string
	var ionRangeCount, rangeRangeCount int

	var ranges []rrngRangeValue

	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
			section = strings.ToLower(strings.Trim(raw, "[]"))
			continue
		}
		eq := strings.IndexByte(raw, '=')
		if eq < 0 {
			return nil, perr(ErrHeader, line, "expected key=value, got %q", raw)
		}
		key, val := strings.TrimSpace(raw[:eq]), strings.TrimSpace(raw[eq+1:])

		switch section {
		case "ions":
			lk := strings.ToLower(key)
			if lk == "number" {
				n, err := parseUint(val)
				if err != nil {
					return nil, perr(ErrHeader, line, "bad [Ions] Number: %q", val)
				}
				ionRangeCount = n
				continue
			}
			if !strings.HasPrefix(lk, "ion") {
				return nil, perr(ErrHeader, line, "unexpected key %q in [Ions]", key)
			}
			if !refIons[val] {
				refIons[val] = true
				refIonOrder = append(refIonOrder, val)
			}
		case "ranges":
			lk := strings.ToLower(key)
			if lk == "number" {
				n, err := parseUint(val)
				if err != nil {
					return nil, perr(ErrHeader, line, "bad [Ranges] Number: %q", val)
				}
				rangeRangeCount = n
				continue
			}
			if !strings.HasPrefix(lk, "range") {
				return nil, perr(ErrHeader, line, "unexpected key %q in [Ranges]", key)
			}
			rr, err := parseRRNGRangeValue(val, line)
			if err != nil {
				return nil, err
			}
			for el := range rr.els {
				if !refIons[el] {
					return nil, perr(ErrNoMappedIonName, line, "El:%s not declared in [Ions]", el)
				}
			}
			ranges = append(ranges, rr)
		default:
			return nil, perr(ErrHeader, line, "key=value outside of a known section")
		}
	}
	_ = ionRangeCount
	_ = rangeRangeCount

	tbl := &ranging.Table{}
	ionIDs := map[string]int{}
	for _, rr := range ranges {
		name := synthRRNGIonName(rr)
		if name == "" {
			// neither El: fields nor Name: yielded anything: legacy
			// tool quirk, silently ignored per spec §4.1.
			continue
		}
		id, ok := ionIDs[name]
		if !ok {
			c, ok := parseRGBHex(rr.colour)
			if !ok {
				c = pseudoRandomColour(name)
			}
			id = tbl.AddIon(name, name, c)
			ionIDs[name] = id
		}
		tbl.Ranges = append(tbl.Ranges, ranging.Range{Lo: rr.lo, Hi: rr.hi})
		tbl.RangeToIon = append(tbl.RangeToIon, id)
	}
	return tbl, nil
}

type rrngRangeValue struct {
	lo, hi float32
	els    map[string]int
	elOrd  []string
	name   string
	colour string
}

// parseRRNGRangeValue parses "lo hi [Vol:v] (El:k)* [Name:formula] Color:RRGGBB".
func parseRRNGRangeValue(val string, line int) (rrngRangeValue, error) {
	fields := strings.Fields(val)
	if len(fields) < 2 {
		return rrngRangeValue{}, perr(ErrMassPair, line, "range value %q missing lo/hi", val)
	}
	lo, errLo := parseFloat32(fields[0])
	hi, errHi := parseFloat32(fields[1])
	if errLo != nil || errHi != nil {
		return rrngRangeValue{}, perr(ErrMassPair, line, "bad mass pair in %q", val)
	}
	out := rrngRangeValue{lo: lo, hi: hi, els: map[string]int{}}
	for _, f := range fields[2:] {
		kv := strings.SplitN(f, ":", 2)
		if len(kv) != 2 {
			continue
		}
		key, v := kv[0], kv[1]
		switch {
		case strings.EqualFold(key, "El"):
			el, n := splitElementCount(v)
			if _, dup := out.els[el]; !dup {
				out.elOrd = append(out.elOrd, el)
			}
			out.els[el] += n
		case strings.EqualFold(key, "Name"):
			out.name = stripLeadingCharge(v)
		case strings.EqualFold(key, "Color"), strings.EqualFold(key, "Colour"):
			out.colour = v
		case strings.EqualFold(key, "Vol"):
			// volume is not part of the range model; ignored.
		}
	}
	return out, nil
}

// splitElementCount splits an El: value of the form "Fe:1" (element,
// colon, multiplicity) into its parts. A handful of legacy writers fold
// the count into the element token instead ("Fe1"); that form is
// recognized too.
func splitElementCount(v string) (string, int) {
	if i := strings.IndexByte(v, ':'); i >= 0 {
		el, rest := v[:i], v[i+1:]
		n, err := strconv.Atoi(rest)
		if err != nil {
			return el, 1
		}
		return el, n
	}
	i := len(v)
	for i > 0 && v[i-1] >= '0' && v[i-1] <= '9' {
		i--
	}
	if i == len(v) {
		return v, 1
	}
	n, err := strconv.Atoi(v[i:])
	if err != nil || n == 0 {
		return v, 1
	}
	return v[:i], n
}

func stripLeadingCharge(name string) string {
	i := 0
	for i < len(name) && (name[i] >= '0' && name[i] <= '9' || name[i] == '+' || name[i] == '-' || name[i] == '.') {
		i++
	}
	return name[i:]
}

// synthRRNGIonName builds the range's ion name from its El: pairs
// (concatenated "Elk" with k elided when 1), falling back to the Name:
// field if the El-derived name is empty.
func synthRRNGIonName(rr rrngRangeValue) string {
	if len(rr.elOrd) > 0 {
		var b strings.Builder
		for _, el := range rr.elOrd {
			b.WriteString(el)
			if n := rr.els[el]; n != 1 {
				fmt.Fprintf(&b, "%d", n)
			}
		}
		return b.String()
	}
	return rr.name
}

func parseRGBHex(s string) (geom.Colour, bool) {
	if len(s) != 6 {
		return geom.Colour{}, false
	}
	c, err := ParseHex6(s)
	if err != nil {
		return geom.Colour{}, false
	}
	return c, true
}

// ParseHex6 parses a bare RRGGBB string (no alpha) as used by RRNG's
// Color: field.
func ParseHex6(s string) (geom.Colour, error) {
	return geom.ParseHex(s)
}

// pseudoRandomColour assigns a deterministic-per-name colour when a
// range's Color: field is missing, per spec §4.1.
func pseudoRandomColour(seed string) geom.Colour {
	h := fnv32(seed)
	r := rand.New(rand.NewSource(int64(h)))
	return geom.Colour{R: r.Float32(), G: r.Float32(), B: r.Float32(), A: 1}
}

func fnv32(s string) uint32 {
	const offset32 = 2166136261
	const prime32 = 16777619
	h := uint32(offset32)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime32
	}
	return h
}

// writeRRNG emits the canonical RRNG form of spec §6.1.
func writeRRNG(t *ranging.Table) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "[Ions]")
	fmt.Fprintf(&buf, "Number=%d\n", len(t.IonNames))
	for i, ion := range t.IonNames {
		fmt.Fprintf(&buf, "Ion%d=%s\n", i+1, ion.Short)
	}
	fmt.Fprintln(&buf, "[Ranges]")
	fmt.Fprintf(&buf, "Number=%d\n", len(t.Ranges))
	for i, r := range t.Ranges {
		ion := t.IonNames[t.RangeToIon[i]]
		c := t.Colours[t.RangeToIon[i]]
		// spec §6.1 specifies "Range_i=lo hi name:1 Color:RRGGBB"; "1"
		// there stands in for the formula payload, so we write the
		// owning ion's short name to keep the round trip lossless.
		fmt.Fprintf(&buf, "Range%d=%g %g Name:%s Color:%s\n", i+1, r.Lo, r.Hi, ion.Short, hex6(c))
	}
	return buf.Bytes(), nil
}

func hex6(c geom.Colour) string {
	full := c.Hex()
	return full[:6]
}
