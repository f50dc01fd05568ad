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

	"github.com/apttools/depict/filter"
	"github.com/apttools/depict/geom"
	"github.com/apttools/depict/ionio"
	"github.com/apttools/depict/stream"
)

// SourceKind selects which ionio loader DataLoad drives.
type SourceKind int

const (
	SourcePOS SourceKind = iota
	SourceText
)

// defaultProgressStride is the compile-time constant dataLoad.cpp
// hard-codes for its progress callback throttle; DataLoad.SetProperty
// exposes it as a user property instead, per SPEC_FULL.md's
// "progress-reduce tuning" supplement.
const defaultProgressStride = 4096

// DataLoad is the root filter of every pipeline: it has no inputs and
// emits one Ions stream read from either a POS or a text ion file.
// Grounded on original_source/src/filters/dataLoad.cpp.
type DataLoad struct {
	Path           string
	Source         SourceKind
	POS            ionio.POSParams
	Text           ionio.TextParams
	MaxIons        int
	SampleK        int
	ProgressStride int

	hits   []geom.IonHit
	bounds geom.BoundingBox
	valid  bool
}

func NewDataLoad() *DataLoad {
	return &DataLoad{
		POS:            ionio.POSParams{N: 4, OutCols: 4, Index: [4]int{0, 1, 2, 3}},
		ProgressStride: defaultProgressStride,
	}
}

func (d *DataLoad) CloneUncached() filter.Node {
	cp := *d
	cp.hits = nil
	cp.valid = false
	return &cp
}

// NumBytesForCache cannot be projected ahead of reading the file; the
// loaders themselves do not expose a cheap record-count probe for text
// files (and a POS file's size only bounds an upper estimate, which
// callers can derive themselves from the file they chose to load), so
// DataLoad reports CacheBytesUnknown rather than guess.
func (d *DataLoad) NumBytesForCache(nInput int) int64 { return filter.CacheBytesUnknown }

func (d *DataLoad) Init(inputs []stream.Payload) ([]stream.Payload, error) { return nil, nil }

func (d *DataLoad) Refresh(ctx *filter.RefreshContext, inputs []stream.Payload) ([]stream.Payload, error) {
	// ionio already throttles its own callback to one invocation per
	// ionio.PROGRESS_REDUCE records; ProgressStride only controls how
	// many of *those* invocations reach ctx.Report, for a caller that
	// wants coarser UI updates than the loader's fixed stride.
	stride := d.ProgressStride
	if stride <= 0 {
		stride = defaultProgressStride
	}
	coalesce := stride / ionio.PROGRESS_REDUCE
	if coalesce < 1 {
		coalesce = 1
	}
	calls := 0
	progress := func(done int) bool {
		calls++
		if calls%coalesce != 0 {
			return !ctx.Cancelled()
		}
		return ctx.Report(done) && !ctx.Cancelled()
	}

	var hits []geom.IonHit
	var err error
	switch d.Source {
	case SourcePOS:
		if d.SampleK > 0 {
			hits, err = ionio.LoadPOSSampled(d.Path, d.POS, d.SampleK, ionio.SampleOptions{})
		} else {
			hits, err = ionio.LoadPOS(d.Path, d.POS, d.MaxIons, ionio.ProgressFunc(progress))
		}
	case SourceText:
		if d.SampleK > 0 {
			hits, err = ionio.LoadTextSampled(d.Path, d.Text, d.SampleK, ionio.SampleOptions{})
		} else {
			hits, err = ionio.LoadText(d.Path, d.Text, d.MaxIons, ionio.ProgressFunc(progress))
		}
	default:
		return nil, fmt.Errorf("filters: DataLoad: unknown source kind %d", d.Source)
	}
	if err != nil {
		if ctx.Cancelled() {
			return nil, filter.ErrAborted
		}
		return nil, err
	}

	bounds := geom.Invalid()
	for _, h := range hits {
		bounds.Extend(h.Point3)
	}
	d.hits, d.bounds, d.valid = hits, bounds, true

	out := stream.NewIonStream("", true, hits, bounds)
	return []stream.Payload{out}, nil
}

func (d *DataLoad) Properties() filter.PropertySets {
	return filter.PropertySets{{Name: "source", Properties: []filter.Property{
		{Key: "path", Current: filter.Str(d.Path)},
		{Key: "max_ions", Current: filter.Int(int64(d.MaxIons))},
		{Key: "sample_k", Current: filter.Int(int64(d.SampleK))},
		{Key: "progress_stride", Current: filter.Int(int64(d.ProgressStride))},
	}}}
}

func (d *DataLoad) SetProperty(key string, v filter.Value) (bool, bool) {
	switch key {
	case "path":
		d.Path = v.String
	case "max_ions":
		d.MaxIons = int(v.Int)
	case "sample_k":
		d.SampleK = int(v.Int)
	case "progress_stride":
		if v.Int <= 0 {
			return false, false
		}
		d.ProgressStride = int(v.Int)
		return true, false
	default:
		return false, false
	}
	d.valid = false
	return true, true
}

// Serialize writes only Source: Properties already round-trips path,
// max_ions and sample_k, but has no "source" key (SetProperty has
// nothing to validate a loader-kind enum against), so it is the one
// field that would otherwise not survive Save/Load.
func (d *DataLoad) Serialize(enc *xml.Encoder) error {
	return enc.Encode(struct {
		XMLName xml.Name `xml:"dataLoad"`
		Source  int      `xml:"source"`
	}{Source: int(d.Source)})
}

func (d *DataLoad) Deserialize(dec *xml.Decoder) error {
	var v struct {
		Source int `xml:"source"`
	}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	d.Source = SourceKind(v.Source)
	return nil
}

func (d *DataLoad) BlockMask() stream.KindMask { return 0 }
func (d *DataLoad) EmitMask() stream.KindMask  { return stream.MaskOf(stream.Ions) }
func (d *DataLoad) UseMask() stream.KindMask   { return 0 }
