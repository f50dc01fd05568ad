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

import "github.com/apttools/depict/geom"

// ValueKind tags which field of a Value is meaningful.
type ValueKind int

const (
	ValueBool ValueKind = iota
	ValueInt
	ValueFloat
	ValueString
	ValueColour
)

// Value is the small tagged union a property reads or is set to. It
// deliberately stays narrow: a filter's configuration surface is a
// handful of scalars and colours, never a nested structure.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Int    int64
	Float  float64
	String string
	Colour geom.Colour
}

func Bool(b bool) Value       { return Value{Kind: ValueBool, Bool: b} }
func Int(i int64) Value       { return Value{Kind: ValueInt, Int: i} }
func Float(f float64) Value   { return Value{Kind: ValueFloat, Float: f} }
func Str(s string) Value      { return Value{Kind: ValueString, String: s} }
func Col(c geom.Colour) Value { return Value{Kind: ValueColour, Colour: c} }

// Property describes one user-settable configuration entry a node
// exposes through Properties().
type Property struct {
	Key         string
	DisplayName string
	Current     Value
	ReadOnly    bool
}

// PropertyGroup is a named collection of related properties (spec's
// per-ion / per-range groupings in the ranging filter, for instance).
type PropertyGroup struct {
	Name       string
	Properties []Property
}

// PropertySets is the full set of configuration a node exposes.
type PropertySets []PropertyGroup

// Lookup finds a property by key across every group, returning ok=false
// if no group declares it.
func (p PropertySets) Lookup(key string) (Value, bool) {
	for _, g := range p {
		for _, prop := range g.Properties {
			if prop.Key == key {
				return prop.Current, true
			}
		}
	}
	return Value{}, false
}
