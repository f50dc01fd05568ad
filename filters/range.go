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
	"encoding/xml"
	"fmt"
	"sync"

	"github.com/apttools/depict/filter"
	"github.com/apttools/depict/geom"
	"github.com/apttools/depict/ranging"
	"github.com/apttools/depict/stream"
)

// Range applies a ranging.Table to every ion stream reaching it,
// bucketing ions by ion id and emitting one RangeStream carrying the
// table itself for downstream region overlays. Grounded on
// original_source/src/filters/rangeFile.cpp's two-pass ranging loop.
type Range struct {
	Table        *ranging.Table
	DropUnranged bool

	IonEnabled   []bool
	RangeEnabled []bool

	stale bool
}

// Stale reports whether the range table has been edited (via a
// property change or a region drag) since the last successful
// Refresh, independent of the tree's generic cache-valid flag — the
// "rangesUpdated" indicator of SPEC_FULL.md's supplemented features.
func (r *Range) Stale() bool { return r.stale }

func (r *Range) ensureEnabled() {
	if r.Table == nil {
		return
	}
	for len(r.IonEnabled) < len(r.Table.IonNames) {
		r.IonEnabled = append(r.IonEnabled, true)
	}
	for len(r.RangeEnabled) < len(r.Table.Ranges) {
		r.RangeEnabled = append(r.RangeEnabled, true)
	}
}

func (r *Range) CloneUncached() filter.Node {
	cp := &Range{DropUnranged: r.DropUnranged}
	if r.Table != nil {
		cp.Table = r.Table.Clone()
	}
	cp.IonEnabled = append([]bool(nil), r.IonEnabled...)
	cp.RangeEnabled = append([]bool(nil), r.RangeEnabled...)
	return cp
}

// NumBytesForCache estimates output size as bounded by total input ion
// count: ranging only redistributes hits across buckets, it never
// duplicates or enlarges a record.
func (r *Range) NumBytesForCache(nInput int) int64 { return int64(nInput) * 16 }

func (r *Range) Init(inputs []stream.Payload) ([]stream.Payload, error) {
	r.ensureEnabled()
	if r.Table == nil {
		return nil, nil
	}
	return []stream.Payload{stream.NewRangeStream("range", false, r.Table, r)}, nil
}

func (r *Range) Refresh(ctx *filter.RefreshContext, inputs []stream.Payload) ([]stream.Payload, error) {
	if r.Table == nil {
		return nil, fmt.Errorf("filters: Range: no range table loaded")
	}
	r.ensureEnabled()

	var hits []geom.IonHit
	for _, in := range inputs {
		if is, ok := in.(*stream.IonStream); ok {
			hits = append(hits, is.Hits...)
		}
	}
	n := len(hits)
	numIons := len(r.Table.IonNames)
	unranged := numIons

	// Pass 1: count, bounded fork-join with per-chunk local
	// accumulators merged under a mutex (spec §4.6 pass 1).
	counts := make([]int64, numIons+1)
	var mu sync.Mutex
	bucketOf := func(h geom.IonHit) int {
		ri := r.Table.LookupMass(h.Value)
		if ri < 0 || ri >= len(r.RangeEnabled) || !r.RangeEnabled[ri] {
			return unranged
		}
		return r.Table.RangeToIon[ri]
	}
	filter.ForkJoin(n, func(lo, hi int) {
		local := make([]int64, numIons+1)
		for i := lo; i < hi; i++ {
			local[bucketOf(hits[i])]++
		}
		mu.Lock()
		for i := range local {
			counts[i] += local[i]
		}
		mu.Unlock()
		if ctx.Cancelled() {
			return
		}
	})
	if ctx.Cancelled() {
		return nil, filter.ErrAborted
	}

	// Pass 2: exact-size allocation, single-threaded fill (spec §4.6
	// pass 2: parallelising this pass measured slower in the original).
	buckets := make([][]geom.IonHit, numIons+1)
	for i := range buckets {
		buckets[i] = make([]geom.IonHit, 0, counts[i])
	}
	for i, h := range hits {
		if i%ionio_PROGRESS_REDUCE == 0 && ctx.Cancelled() {
			return nil, filter.ErrAborted
		}
		b := bucketOf(h)
		if b == unranged && r.DropUnranged {
			continue
		}
		buckets[b] = append(buckets[b], h)
	}

	var out []stream.Payload
	for ionID := 0; ionID < numIons; ionID++ {
		if len(buckets[ionID]) == 0 || !r.IonEnabled[ionID] {
			continue
		}
		bb := geom.Invalid()
		for _, h := range buckets[ionID] {
			bb.Extend(h.Point3)
		}
		is := stream.NewIonStream("range", false, buckets[ionID], bb)
		is.Colour = r.Table.Colours[ionID]
		out = append(out, is)
	}
	if !r.DropUnranged && len(buckets[unranged]) > 0 {
		bb := geom.Invalid()
		for _, h := range buckets[unranged] {
			bb.Extend(h.Point3)
		}
		out = append(out, stream.NewIonStream("range", false, buckets[unranged], bb))
	}
	out = append(out, stream.NewRangeStream("range", true, r.Table, r))

	r.stale = false
	return out, nil
}

// ionio_PROGRESS_REDUCE mirrors ionio.PROGRESS_REDUCE without importing
// the loader package into a filter that has nothing else to do with it.
const ionio_PROGRESS_REDUCE = 4096

// SetFromRegion implements stream.RegionOwner: the ranging filter's
// response to a plot region drag (spec §4.6). regionID is the index of
// the affected range within Table.Ranges.
func (r *Range) SetFromRegion(method stream.DragMethod, regionID int, newPos float32) bool {
	if r.Table == nil || regionID < 0 || regionID >= len(r.Table.Ranges) {
		return false
	}
	r.ensureEnabled()
	var ok bool
	switch method {
	case stream.ExtendLow:
		ok = r.Table.MoveRange(regionID, ranging.Low, newPos)
	case stream.ExtendHigh:
		ok = r.Table.MoveRange(regionID, ranging.High, newPos)
	case stream.Translate:
		width := r.Table.Ranges[regionID].Width()
		ok = r.Table.MoveBothRanges(regionID, newPos, newPos+width)
	default:
		return false
	}
	if ok {
		// Every successful move resorts Table.Ranges by Lo; carry
		// RangeEnabled along the same permutation so the enabled bit
		// at index i still belongs to the range now sitting at i.
		r.RangeEnabled = permuteBools(r.RangeEnabled, r.Table.LastPermutation())
		r.stale = true
	}
	return ok
}

// permuteBools reassigns each element of vals to the position perm says
// its owning range moved to, returning a new slice the same length.
// vals is returned unchanged if perm doesn't describe a permutation of
// it (nil perm, or a length mismatch — e.g. vals not yet sized by
// ensureEnabled).
func permuteBools(vals []bool, perm []int) []bool {
	if len(perm) == 0 || len(vals) != len(perm) {
		return vals
	}
	out := make([]bool, len(vals))
	for oldIdx, newIdx := range perm {
		out[newIdx] = vals[oldIdx]
	}
	return out
}

func (r *Range) Properties() filter.PropertySets {
	r.ensureEnabled()
	groups := filter.PropertySets{{Name: "general", Properties: []filter.Property{
		{Key: "drop_unranged", Current: filter.Bool(r.DropUnranged)},
	}}}
	if r.Table == nil {
		return groups
	}
	var ionProps []filter.Property
	for i, name := range r.Table.IonNames {
		ionProps = append(ionProps,
			filter.Property{Key: fmt.Sprintf("ion.%d.name", i), Current: filter.Str(name.Short)},
			filter.Property{Key: fmt.Sprintf("ion.%d.enabled", i), Current: filter.Bool(r.IonEnabled[i])},
			filter.Property{Key: fmt.Sprintf("ion.%d.colour", i), Current: filter.Col(r.Table.Colours[i])},
		)
	}
	groups = append(groups, filter.PropertyGroup{Name: "ions", Properties: ionProps})

	var rangeProps []filter.Property
	for i, rg := range r.Table.Ranges {
		rangeProps = append(rangeProps,
			filter.Property{Key: fmt.Sprintf("range.%d.enabled", i), Current: filter.Bool(r.RangeEnabled[i])},
			filter.Property{Key: fmt.Sprintf("range.%d.lo", i), Current: filter.Float(float64(rg.Lo))},
			filter.Property{Key: fmt.Sprintf("range.%d.hi", i), Current: filter.Float(float64(rg.Hi))},
			filter.Property{Key: fmt.Sprintf("range.%d.ion", i), Current: filter.Int(int64(r.Table.RangeToIon[i]))},
		)
	}
	groups = append(groups, filter.PropertyGroup{Name: "ranges", Properties: rangeProps})
	return groups
}

func (r *Range) SetProperty(key string, v filter.Value) (bool, bool) {
	if key == "drop_unranged" {
		r.DropUnranged = v.Bool
		r.stale = true
		return true, true
	}
	r.ensureEnabled()
	kind, idx, field, ok := splitPropKey(key)
	if !ok {
		return false, false
	}
	switch kind {
	case "ion":
		if idx < 0 || idx >= len(r.IonEnabled) {
			return false, false
		}
		switch field {
		case "enabled":
			r.IonEnabled[idx] = v.Bool
		case "colour":
			r.Table.Colours[idx] = v.Colour
		case "name":
			short := r.Table.IonNames[idx]
			short.Short = v.String
			r.Table.IonNames[idx] = short
		default:
			return false, false
		}
		r.stale = true
		return true, true
	case "range":
		if idx < 0 || idx >= len(r.RangeEnabled) {
			return false, false
		}
		switch field {
		case "enabled":
			r.RangeEnabled[idx] = v.Bool
		case "lo":
			if !r.Table.MoveRange(idx, ranging.Low, float32(v.Float)) {
				return false, false
			}
		case "hi":
			if !r.Table.MoveRange(idx, ranging.High, float32(v.Float)) {
				return false, false
			}
		case "ion":
			if !r.Table.SetIonID(idx, int(v.Int)) {
				return false, false
			}
		default:
			return false, false
		}
		r.stale = true
		return true, true
	}
	return false, false
}

// rangeTableXML is Range's §6.3 structural persistence payload: the
// Table a fresh node built by tree.Load's Factory has no other way to
// recover, since Properties only ever describes an already-populated
// one (spec §6.3/§8).
type rangeTableXML struct {
	XMLName xml.Name        `xml:"rangeTable"`
	Ions    []rangeIonXML   `xml:"ion"`
	Ranges  []rangeRangeXML `xml:"range"`
}

type rangeIonXML struct {
	Short   string `xml:"short"`
	Long    string `xml:"long,omitempty"`
	Colour  string `xml:"colour"`
	Enabled bool   `xml:"enabled"`
}

type rangeRangeXML struct {
	Lo      float32 `xml:"lo"`
	Hi      float32 `xml:"hi"`
	Ion     int     `xml:"ion"`
	Enabled bool    `xml:"enabled"`
}

// Serialize writes the range table Properties can only describe, never
// rebuild: ion names/colours and range bounds/assignments, each paired
// with its enabled bit. A Range with no table loaded writes nothing.
func (r *Range) Serialize(enc *xml.Encoder) error {
	if r.Table == nil {
		return nil
	}
	r.ensureEnabled()
	v := rangeTableXML{
		Ions:   make([]rangeIonXML, len(r.Table.IonNames)),
		Ranges: make([]rangeRangeXML, len(r.Table.Ranges)),
	}
	for i, name := range r.Table.IonNames {
		v.Ions[i] = rangeIonXML{
			Short:   name.Short,
			Long:    name.Long,
			Colour:  r.Table.Colours[i].Hex(),
			Enabled: r.IonEnabled[i],
		}
	}
	for i, rg := range r.Table.Ranges {
		v.Ranges[i] = rangeRangeXML{
			Lo:      rg.Lo,
			Hi:      rg.Hi,
			Ion:     r.Table.RangeToIon[i],
			Enabled: r.RangeEnabled[i],
		}
	}
	return enc.Encode(&v)
}

// Deserialize rebuilds Table (and the enabled bitmaps) from the blob
// Serialize wrote, run by tree.Load before it replays this node's
// persisted Properties — so by the time SetProperty sees range.N.* and
// ion.N.* keys, Table is already sized to match and those calls simply
// reassert values Deserialize already restored.
func (r *Range) Deserialize(dec *xml.Decoder) error {
	var v rangeTableXML
	if err := dec.Decode(&v); err != nil {
		return err
	}
	t := &ranging.Table{
		IonNames:   make([]ranging.IonName, len(v.Ions)),
		Colours:    make([]geom.Colour, len(v.Ions)),
		Ranges:     make([]ranging.Range, len(v.Ranges)),
		RangeToIon: make([]int, len(v.Ranges)),
	}
	ionEnabled := make([]bool, len(v.Ions))
	for i, ie := range v.Ions {
		c, err := geom.ParseHex(ie.Colour)
		if err != nil {
			return fmt.Errorf("filters: Range: deserialize ion %d: %w", i, err)
		}
		t.IonNames[i] = ranging.IonName{Short: ie.Short, Long: ie.Long}
		t.Colours[i] = c
		ionEnabled[i] = ie.Enabled
	}
	rangeEnabled := make([]bool, len(v.Ranges))
	for i, re := range v.Ranges {
		t.Ranges[i] = ranging.Range{Lo: re.Lo, Hi: re.Hi}
		t.RangeToIon[i] = re.Ion
		rangeEnabled[i] = re.Enabled
	}
	r.Table = t
	r.IonEnabled = ionEnabled
	r.RangeEnabled = rangeEnabled
	return nil
}

func (r *Range) BlockMask() stream.KindMask { return 0 }
func (r *Range) EmitMask() stream.KindMask  { return stream.MaskOf(stream.Ions, stream.Range) }
func (r *Range) UseMask() stream.KindMask   { return stream.MaskOf(stream.Ions) }
