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

package filters

import (
	"testing"

	"github.com/apttools/depict/filter"
)

func TestDataLoadDefaults(t *testing.T) {
	d := NewDataLoad()
	if d.POS.N != 4 || d.POS.Index != [4]int{0, 1, 2, 3} {
		t.Fatalf("got POS params %+v, want the standard xyzm layout", d.POS)
	}
	if d.ProgressStride != defaultProgressStride {
		t.Fatalf("got progress stride %d, want %d", d.ProgressStride, defaultProgressStride)
	}
	if d.NumBytesForCache(1000) != filter.CacheBytesUnknown {
		t.Fatal("DataLoad cannot project cache size ahead of reading the file")
	}
}

func TestDataLoadSetPropertyProgressStride(t *testing.T) {
	d := NewDataLoad()

	if accepted, needsRefresh := d.SetProperty("progress_stride", filter.Int(8192)); !accepted || needsRefresh {
		t.Fatalf("got (accepted=%v needsRefresh=%v), want (true, false)", accepted, needsRefresh)
	}
	if d.ProgressStride != 8192 {
		t.Fatalf("got stride %d, want 8192", d.ProgressStride)
	}

	if accepted, _ := d.SetProperty("progress_stride", filter.Int(0)); accepted {
		t.Fatal("expected a non-positive stride to be rejected")
	}
}

func TestDataLoadSetPropertyPathInvalidatesCache(t *testing.T) {
	d := NewDataLoad()
	d.valid = true

	accepted, needsRefresh := d.SetProperty("path", filter.Str("/tmp/run.pos"))
	if !accepted || !needsRefresh {
		t.Fatalf("got (accepted=%v needsRefresh=%v), want (true, true)", accepted, needsRefresh)
	}
	if d.valid {
		t.Fatal("changing path should invalidate the cache")
	}
}

func TestDataLoadCloneUncached(t *testing.T) {
	d := NewDataLoad()
	d.Path = "sample.pos"
	d.valid = true

	cp := d.CloneUncached().(*DataLoad)
	if cp.Path != d.Path {
		t.Fatalf("got cloned path %q, want %q", cp.Path, d.Path)
	}
	if cp.valid {
		t.Fatal("CloneUncached must not carry over validity")
	}
}
