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
	"os"
	"path/filepath"
	"testing"
)

func TestOpenAutodetectByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.rng")
	src := "1 1\nCarbon\nC 1 0 0\n-------------- C\n. 1 2 1\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	rf, err := Open(path, FormatAuto)
	if err != nil {
		t.Fatal(err)
	}
	if rf.Format != FormatORNL {
		t.Fatalf("expected ORNL detected by extension, got %v", rf.Format)
	}
}

func TestOpenBruteForceFallback(t *testing.T) {
	dir := t.TempDir()
	// an ORNL body saved with an unrelated extension must still be
	// found by brute-force autodetection.
	path := filepath.Join(dir, "sample.dat")
	src := "1 1\nCarbon\nC 1 0 0\n-------------- C\n. 1 2 1\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	rf, err := Open(path, FormatAuto)
	if err != nil {
		t.Fatal(err)
	}
	if rf.Format != FormatORNL {
		t.Fatalf("expected brute-force ORNL detection, got %v", rf.Format)
	}
}

func TestOpenEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.rng")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path, FormatAuto); err == nil {
		t.Fatal("expected an error opening an empty range file")
	}
}
