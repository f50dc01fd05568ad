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
	"github.com/apttools/depict/geom"
	"github.com/apttools/depict/stream"
)

func TestIonColourGradientBucketing(t *testing.T) {
	c := NewIonColour()
	c.UseRangeColour = false
	c.MapStart, c.MapEnd, c.NumColours = 0, 100, 4
	in := stream.NewIonStream("load", true, hitsAt(0, 25, 75, 100), geom.BoundingBox{})

	out, err := c.Refresh(nil, []stream.Payload{in})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	var ionStreams, drawStreams int
	for _, p := range out {
		switch p.(type) {
		case *stream.IonStream:
			ionStreams++
		case *stream.DrawStream:
			drawStreams++
		}
	}
	if ionStreams == 0 {
		t.Fatal("expected at least one ion bucket")
	}
	if drawStreams != 1 {
		t.Fatalf("got %d colour-bar streams, want 1 (ShowColourBar defaults true)", drawStreams)
	}
}

func TestIonColourUseRangeColourPassthrough(t *testing.T) {
	c := NewIonColour()
	table := twoIonTable()
	rangeIn := stream.NewRangeStream("range", true, table, nil)
	ions := stream.NewIonStream("load", true, hitsAt(5, 25), geom.BoundingBox{})

	out, err := c.Refresh(nil, []stream.Payload{ions, rangeIn})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	var sawH, sawO bool
	for _, p := range out {
		is, ok := p.(*stream.IonStream)
		if !ok {
			continue
		}
		switch is.Colour {
		case table.Colours[0]:
			sawH = true
		case table.Colours[1]:
			sawO = true
		}
	}
	if !sawH || !sawO {
		t.Fatal("expected both ion colours to be borrowed from the range table")
	}
}

func TestIonColourExplicitMapOverridesPassthrough(t *testing.T) {
	c := NewIonColour()
	c.SetProperty("colour_map", filter.Int(int64(Hot)))
	if !c.ExplicitMap {
		t.Fatal("expected ExplicitMap to be set after an explicit colour_map change")
	}

	table := twoIonTable()
	rangeIn := stream.NewRangeStream("range", true, table, nil)
	ions := stream.NewIonStream("load", true, hitsAt(5), geom.BoundingBox{})

	out, err := c.Refresh(nil, []stream.Payload{ions, rangeIn})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	for _, p := range out {
		if is, ok := p.(*stream.IonStream); ok {
			if is.Colour == table.Colours[0] {
				t.Fatal("an explicit colour map should not fall back to the range table's colour")
			}
		}
	}
}

func TestIonColourShowColourBarIsCosmeticOnly(t *testing.T) {
	c := NewIonColour()
	c.valid = true

	accepted, needsRefresh := c.SetProperty("show_colour_bar", filter.Bool(false))
	if !accepted || needsRefresh {
		t.Fatalf("got (accepted=%v needsRefresh=%v), want (true, false)", accepted, needsRefresh)
	}
	if !c.valid {
		t.Fatal("show_colour_bar is cosmetic-only and should not invalidate the cache")
	}
}

func TestIonColourMapStartMustBeLessThanMapEnd(t *testing.T) {
	c := NewIonColour()
	if accepted, _ := c.SetProperty("map_start", filter.Float(float64(c.MapEnd)+1)); accepted {
		t.Fatal("expected map_start >= map_end to be rejected")
	}
}
