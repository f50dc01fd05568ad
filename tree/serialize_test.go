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

package tree

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/apttools/depict/filter"
	"github.com/apttools/depict/filters"
	"github.com/apttools/depict/geom"
	"github.com/apttools/depict/ranging"
	"github.com/apttools/depict/stream"
)

// propFilter is a stubFilter-like type whose Properties() reflects
// whatever SetProperty last accepted, so a save/load round trip can be
// checked against real persisted values.
type propFilter struct {
	binWidth float64
	logY     bool
	label    string
}

func (p *propFilter) CloneUncached() filter.Node { cp := *p; return &cp }
func (p *propFilter) NumBytesForCache(int) int64  { return filter.CacheBytesUnknown }
func (p *propFilter) Init(inputs []stream.Payload) ([]stream.Payload, error) { return nil, nil }
func (p *propFilter) Refresh(ctx *filter.RefreshContext, inputs []stream.Payload) ([]stream.Payload, error) {
	return nil, nil
}
func (p *propFilter) Properties() filter.PropertySets {
	return filter.PropertySets{{Name: "general", Properties: []filter.Property{
		{Key: "bin_width", Current: filter.Float(p.binWidth)},
		{Key: "log_y", Current: filter.Bool(p.logY)},
		{Key: "label", Current: filter.Str(p.label)},
	}}}
}
func (p *propFilter) SetProperty(key string, v filter.Value) (bool, bool) {
	switch key {
	case "bin_width":
		p.binWidth = v.Float
	case "log_y":
		p.logY = v.Bool
	case "label":
		p.label = v.String
	default:
		return false, false
	}
	return true, true
}
func (p *propFilter) Serialize(enc *xml.Encoder) error   { return nil }
func (p *propFilter) Deserialize(dec *xml.Decoder) error { return nil }
func (p *propFilter) BlockMask() stream.KindMask         { return 0 }
func (p *propFilter) EmitMask() stream.KindMask          { return 0 }
func (p *propFilter) UseMask() stream.KindMask           { return 0 }

func TestSaveLoadRoundTrip(t *testing.T) {
	root := NewNode(&propFilter{binWidth: 0.25, logY: true, label: "./ranges/a.rrng"})
	tr := &Tree{Root: root}
	tr.RebuildIDs()

	var buf bytes.Buffer
	if err := Save(&buf, tr); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.Contains(buf.String(), "checksum=") {
		t.Fatal("expected a checksum attribute in the saved document")
	}

	loaded, err := Load(&buf, func(typeName string) (filter.Node, error) {
		return &propFilter{}, nil
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pf, ok := loaded.Root.Filter.(*propFilter)
	if !ok {
		t.Fatalf("got filter type %T", loaded.Root.Filter)
	}
	if pf.binWidth != 0.25 || !pf.logY || pf.label != "./ranges/a.rrng" {
		t.Fatalf("round trip mismatch: %+v", pf)
	}
}

// TestSaveLoadRoundTripRange exercises the one concrete filter whose
// Properties alone cannot rebuild it: Load's factory hands elemToNode a
// bare &filters.Range{} with a nil Table, and before this filter's
// Serialize/Deserialize were wired in, every persisted range.N.*/
// ion.N.* property was then rejected against that nil table.
func TestSaveLoadRoundTripRange(t *testing.T) {
	table := &ranging.Table{
		IonNames:   []ranging.IonName{{Short: "H"}, {Short: "O"}},
		Colours:    []geom.Colour{geom.Opaque(255, 0, 0), geom.Opaque(0, 255, 0)},
		Ranges:     []ranging.Range{{Lo: 0, Hi: 10}, {Lo: 20, Hi: 30}},
		RangeToIon: []int{0, 1},
	}
	r := &filters.Range{Table: table, DropUnranged: true}
	r.SetProperty("range.1.enabled", filter.Bool(false))

	root := NewNode(r)
	tr := &Tree{Root: root}
	tr.RebuildIDs()

	var buf bytes.Buffer
	if err := Save(&buf, tr); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(&buf, func(typeName string) (filter.Node, error) {
		switch typeName {
		case "*filters.Range":
			return &filters.Range{}, nil
		default:
			t.Fatalf("unexpected type name %q", typeName)
			return nil, nil
		}
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, ok := loaded.Root.Filter.(*filters.Range)
	if !ok {
		t.Fatalf("got filter type %T", loaded.Root.Filter)
	}
	if got.Table == nil {
		t.Fatal("loaded Range has a nil Table")
	}
	if len(got.Table.IonNames) != 2 || got.Table.IonNames[0].Short != "H" || got.Table.IonNames[1].Short != "O" {
		t.Fatalf("ion names did not survive: %+v", got.Table.IonNames)
	}
	if len(got.Table.Ranges) != 2 || got.Table.Ranges[0] != (ranging.Range{Lo: 0, Hi: 10}) {
		t.Fatalf("ranges did not survive: %+v", got.Table.Ranges)
	}
	if !got.DropUnranged {
		t.Fatal("drop_unranged did not survive")
	}
	if len(got.RangeEnabled) != 2 || got.RangeEnabled[0] != true || got.RangeEnabled[1] != false {
		t.Fatalf("range-enabled bitmap did not survive: %v", got.RangeEnabled)
	}
}
