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
	"errors"
	"strings"
	"testing"
)

// TestParseORNLBasic is scenario 2 from spec §8.
func TestParseORNLBasic(t *testing.T) {
	src := "2 1\n" +
		"Carbon\n" +
		"C 1.0 0.0 0.0\n" +
		"Hydrogen\n" +
		"H 0.0 1.0 0.0\n" +
		"-------------- C H\n" +
		". 12.0 12.1 1 0\n"
	tbl, err := parseORNL([]byte(src), func(string, ...interface{}) {})
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.IonNames) != 2 {
		t.Fatalf("expected 2 ions, got %d", len(tbl.IonNames))
	}
	if len(tbl.Ranges) != 1 {
		t.Fatalf("expected 1 range, got %d", len(tbl.Ranges))
	}
	if tbl.Ranges[0].Lo != 12.0 || tbl.Ranges[0].Hi != 12.1 {
		t.Fatalf("unexpected range bounds: %v", tbl.Ranges[0])
	}
	ion := tbl.IonNames[tbl.RangeToIon[0]]
	if ion.Short != "C" {
		t.Fatalf("expected range mapped to C, got %s", ion.Short)
	}
}

// TestParseORNLComposite is scenario 3 from spec §8.
func TestParseORNLComposite(t *testing.T) {
	src := "4 2\n" +
		"Cu\nCu 1.0 0.0 0.0\n" +
		"Ni\nNi 0.0 1.0 0.0\n" +
		"Cu2Ni1\nCu2Ni1 0.0 0.0 1.0\n" +
		"Zn\nZn 1.0 1.0 0.0\n" +
		"-------------- Cu Ni Cu2Ni1 Zn\n" +
		". 95.3 95.6 0 0 1 0\n" +
		". 1 2 2 1 0 0\n"
	tbl, err := parseORNL([]byte(src), func(string, ...interface{}) {})
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(tbl.Ranges))
	}
	for i, r := range tbl.Ranges {
		ion := tbl.IonNames[tbl.RangeToIon[i]]
		if ion.Short != "Cu2Ni1" {
			t.Fatalf("range %d (%v): expected Cu2Ni1, got %s", i, r, ion.Short)
		}
	}
}

func TestParseORNLCompositeNoMatch(t *testing.T) {
	src := "3 1\n" +
		"Cu\nCu 1.0 0.0 0.0\n" +
		"Ni\nNi 0.0 1.0 0.0\n" +
		"Zn\nZn 1.0 1.0 0.0\n" +
		"-------------- Cu Ni Zn\n" +
		". 1 2 5 5 0\n"
	_, err := parseORNL([]byte(src), func(string, ...interface{}) {})
	if err == nil {
		t.Fatal("expected an error for an unmatched multiplicity vector")
	}
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Code != ErrNoMappedIonName {
		t.Fatalf("expected ErrNoMappedIonName, got %v", err)
	}
}

func TestParseORNLAllZeroRowsRejected(t *testing.T) {
	src := "1 1\nCarbon\nC 1.0 0.0 0.0\n-------------- C\n. 1 2 0\n"
	_, err := parseORNL([]byte(src), func(string, ...interface{}) {})
	if err == nil {
		t.Fatal("expected rejection when all rows are discarded")
	}
}

func TestParseORNLTrailingJunkWarns(t *testing.T) {
	var warns []string
	src := "1 1\nCarbon\nC 1.0 0.0 0.0 extra junk\n-------------- C\n. 1 2 1\n"
	_, err := parseORNL([]byte(src), func(f string, a ...interface{}) {
		warns = append(warns, f)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) == 0 {
		t.Fatal("expected a warning about trailing junk")
	}
}

func TestWriteORNLRoundTrip(t *testing.T) {
	src := "2 1\nCarbon\nC 1 0 0\nHydrogen\nH 0 1 0\n-------------- C H\n. 12 12.1 1 0\n"
	tbl, err := parseORNL([]byte(src), func(string, ...interface{}) {})
	if err != nil {
		t.Fatal(err)
	}
	out, err := writeORNL(tbl)
	if err != nil {
		t.Fatal(err)
	}
	tbl2, err := parseORNL(out, func(string, ...interface{}) {})
	if err != nil {
		t.Fatalf("re-parse of written file failed: %v\n%s", err, out)
	}
	if len(tbl2.Ranges) != 1 || tbl2.Ranges[0].Lo != 12 {
		t.Fatalf("round trip mismatch: %+v", tbl2.Ranges)
	}
}

func TestWriteORNLRejectsWhitespaceShortName(t *testing.T) {
	tbl := sampleTableWithSpaceName()
	if _, err := writeORNL(tbl); err == nil {
		t.Fatal("expected rejection of a short name containing whitespace")
	} else if !strings.Contains(err.Error(), "whitespace") {
		t.Fatalf("unexpected error: %v", err)
	}
}
