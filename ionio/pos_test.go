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

package ionio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/apttools/depict/geom"
)

func tempPOSPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "ions.pos")
}

// TestPOSRoundTrip covers spec §8 scenario 1: 133 records with
// pos=(i,i,i), m=i for i in [0,133), N=4, index=[0,1,2,3].
func TestPOSRoundTrip(t *testing.T) {
	const n = 133
	hits := make([]geom.IonHit, n)
	for i := 0; i < n; i++ {
		v := float32(i)
		hits[i] = geom.IonHit{Point3: geom.Point3{X: v, Y: v, Z: v}, Value: v}
	}
	path := tempPOSPath(t)
	if err := WritePOS(path, hits); err != nil {
		t.Fatalf("WritePOS: %v", err)
	}

	params := POSParams{N: 4, OutCols: 4, Index: [4]int{0, 1, 2, 3}}
	got, err := LoadPOS(path, params, 0, nil)
	if err != nil {
		t.Fatalf("LoadPOS: %v", err)
	}
	if len(got) != n {
		t.Fatalf("got %d records, want %d", len(got), n)
	}
	for i := range got {
		want := hits[i]
		if got[i] != want {
			t.Fatalf("record %d: got %+v, want %+v", i, got[i], want)
		}
	}
}

func TestPOSFileEmpty(t *testing.T) {
	path := tempPOSPath(t)
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	params := POSParams{N: 4, OutCols: 4, Index: [4]int{0, 1, 2, 3}}
	_, err := LoadPOS(path, params, 0, nil)
	if err == nil {
		t.Fatal("expected ErrFileEmpty, got nil")
	}
}

func TestPOSFileSizeModulus(t *testing.T) {
	path := tempPOSPath(t)
	if err := os.WriteFile(path, make([]byte, 17), 0o644); err != nil {
		t.Fatal(err)
	}
	params := POSParams{N: 4, OutCols: 4, Index: [4]int{0, 1, 2, 3}}
	_, err := LoadPOS(path, params, 0, nil)
	if err == nil {
		t.Fatal("expected ErrFileSizeModulus, got nil")
	}
}

func TestPOSColumnPermutation(t *testing.T) {
	// N=5 input columns, output picks (2,0,1,4): verifies Index isn't
	// assumed to be the identity mapping.
	hits := []geom.IonHit{
		{Point3: geom.Point3{X: 1, Y: 2, Z: 3}, Value: 4},
	}
	raw := make([]float32, 5)
	raw[2], raw[0], raw[1], raw[4] = 1, 2, 3, 4
	raw[3] = 99 // unused column, must be ignored

	path := tempPOSPath(t)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 0, 20)
	for _, v := range raw {
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], math.Float32bits(v))
		buf = append(buf, tmp[:]...)
	}
	if _, err := f.Write(buf); err != nil {
		t.Fatal(err)
	}
	f.Close()

	params := POSParams{N: 5, OutCols: 4, Index: [4]int{2, 0, 1, 4}}
	got, err := LoadPOS(path, params, 0, nil)
	if err != nil {
		t.Fatalf("LoadPOS: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0] != hits[0] {
		t.Fatalf("got %+v, want %+v", got[0], hits[0])
	}
}

func TestPOSSampledWithinRange(t *testing.T) {
	const n = 500
	hits := make([]geom.IonHit, n)
	for i := 0; i < n; i++ {
		v := float32(i)
		hits[i] = geom.IonHit{Point3: geom.Point3{X: v, Y: v, Z: v}, Value: v}
	}
	path := tempPOSPath(t)
	if err := WritePOS(path, hits); err != nil {
		t.Fatal(err)
	}
	params := POSParams{N: 4, OutCols: 4, Index: [4]int{0, 1, 2, 3}}
	got, err := LoadPOSSampled(path, params, 50, SampleOptions{})
	if err != nil {
		t.Fatalf("LoadPOSSampled: %v", err)
	}
	if len(got) != 50 {
		t.Fatalf("got %d samples, want 50", len(got))
	}
	seen := map[float32]bool{}
	for _, h := range got {
		if h.Value < 0 || h.Value >= n {
			t.Fatalf("sampled value %v out of range", h.Value)
		}
		if seen[h.Value] {
			t.Fatalf("duplicate sample %v", h.Value)
		}
		seen[h.Value] = true
	}
}
