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

package filter

import "testing"

func TestRefreshContextNilSafe(t *testing.T) {
	var ctx *RefreshContext
	if ctx.Cancelled() {
		t.Fatal("nil context should never report cancelled")
	}
	if !ctx.Report(10) {
		t.Fatal("nil context should never reject progress")
	}
}

func TestRefreshContextCancel(t *testing.T) {
	calls := 0
	ctx := &RefreshContext{
		Cancel: func() bool { calls++; return calls > 2 },
	}
	if ctx.Cancelled() {
		t.Fatal("expected not cancelled on first call")
	}
	if ctx.Cancelled() {
		t.Fatal("expected not cancelled on second call")
	}
	if !ctx.Cancelled() {
		t.Fatal("expected cancelled on third call")
	}
}

func TestPropertySetsLookup(t *testing.T) {
	sets := PropertySets{
		{Name: "general", Properties: []Property{
			{Key: "bin_width", Current: Float(0.1)},
			{Key: "log_y", Current: Bool(false)},
		}},
	}
	v, ok := sets.Lookup("bin_width")
	if !ok || v.Float != 0.1 {
		t.Fatalf("got %v, %v", v, ok)
	}
	_, ok = sets.Lookup("missing")
	if ok {
		t.Fatal("expected Lookup to fail for unknown key")
	}
}
