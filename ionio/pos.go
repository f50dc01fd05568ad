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
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/apttools/depict/geom"
)

// PROGRESS_REDUCE is the stride, in records, between progress callback
// invocations, matching spec §4.2/§5.
const PROGRESS_REDUCE = 4096

// recordsPerBlock is the streaming granularity of a full POS load.
const recordsPerBlock = 512

// ProgressFunc is invoked periodically during a load with the number of
// records processed so far; returning false requests cancellation.
type ProgressFunc func(done int) bool

// POSParams configures a binary column-file load: N input columns per
// record, OutCols (must be 4) output columns, and an Index mapping each
// output column to the input column that feeds it.
type POSParams struct {
	N       int
	OutCols int
	Index   [4]int
}

func (p POSParams) recordBytes() int64 { return int64(p.N) * 4 }

func (p POSParams) validate() error {
	if p.OutCols != 4 {
		return fmt.Errorf("ionio: POSParams.OutCols must be 4, got %d", p.OutCols)
	}
	if p.N <= 0 {
		return fmt.Errorf("ionio: POSParams.N must be positive, got %d", p.N)
	}
	for _, idx := range p.Index {
		if idx < 0 || idx >= p.N {
			return fmt.Errorf("ionio: POSParams.Index entry %d out of range [0,%d)", idx, p.N)
		}
	}
	return nil
}

func fileSizeAndErr(path string) (int64, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, fmt.Errorf("ionio: %w: %v", ErrFileOpen, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return 0, nil, fmt.Errorf("ionio: %w: %v", ErrFileOpen, err)
	}
	return info.Size(), f, nil
}

// LoadPOS reads every record of the binary column file at path, applying
// the column selection in p, and returns up to maxIons hits (maxIons <=
// 0 means unlimited). progress, if non-nil, is called every
// PROGRESS_REDUCE records; if it returns false the load stops and
// ErrAborted is returned.
func LoadPOS(path string, p POSParams, maxIons int, progress ProgressFunc) ([]geom.IonHit, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	size, f, err := fileSizeAndErr(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if size == 0 {
		return nil, fmt.Errorf("ionio: %w", ErrFileEmpty)
	}
	recBytes := p.recordBytes()
	if size%recBytes != 0 {
		return nil, fmt.Errorf("ionio: %w: size %d is not a multiple of %d", ErrFileSizeModulus, size, recBytes)
	}
	total := int(size / recBytes)
	if maxIons > 0 && maxIons < total {
		total = maxIons
	}

	out := make([]geom.IonHit, 0, total)
	buf := bufio.NewReaderSize(f, recordsPerBlock*int(recBytes))
	raw := make([]byte, recBytes)
	for i := 0; i < total; i++ {
		if _, err := readFull(buf, raw); err != nil {
			return nil, fmt.Errorf("ionio: %w: %v", ErrFileReadShort, err)
		}
		hit, err := decodeRecord(raw, p)
		if err != nil {
			return nil, err
		}
		out = append(out, hit)
		if progress != nil && (i+1)%PROGRESS_REDUCE == 0 {
			if !progress(i + 1) {
				return nil, fmt.Errorf("ionio: %w", ErrAborted)
			}
		}
	}
	return out, nil
}

// LoadPOSSampled reads k uniformly-selected records (spec §4.2's sampled
// mode) out of a possibly much larger file, seeking to each record so
// memory use stays O(k) rather than O(total).
func LoadPOSSampled(path string, p POSParams, k int, opt SampleOptions) ([]geom.IonHit, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	size, f, err := fileSizeAndErr(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if size == 0 {
		return nil, fmt.Errorf("ionio: %w", ErrFileEmpty)
	}
	recBytes := p.recordBytes()
	if size%recBytes != 0 {
		return nil, fmt.Errorf("ionio: %w: size %d is not a multiple of %d", ErrFileSizeModulus, size, recBytes)
	}
	total := int(size / recBytes)
	if k > total {
		k = total
	}
	idx := selectSample(total, k, opt)

	out := make([]geom.IonHit, 0, len(idx))
	raw := make([]byte, recBytes)
	for _, recIdx := range idx {
		if _, err := f.ReadAt(raw, recIdx*recBytes); err != nil {
			return nil, fmt.Errorf("ionio: %w: %v", ErrFileReadShort, err)
		}
		hit, err := decodeRecord(raw, p)
		if err != nil {
			return nil, err
		}
		out = append(out, hit)
	}
	return out, nil
}

func decodeRecord(raw []byte, p POSParams) (geom.IonHit, error) {
	cols := make([]float32, p.N)
	for c := 0; c < p.N; c++ {
		bits := binary.BigEndian.Uint32(raw[c*4 : c*4+4])
		cols[c] = math.Float32frombits(bits)
	}
	hit := geom.IonHit{
		Point3: geom.Point3{X: cols[p.Index[0]], Y: cols[p.Index[1]], Z: cols[p.Index[2]]},
		Value:  cols[p.Index[3]],
	}
	if hit.HasNaN() {
		return geom.IonHit{}, fmt.Errorf("ionio: %w", ErrNaNFound)
	}
	return hit, nil
}

// readFull is io.ReadFull but named locally to keep call sites reading
// as ionio's own vocabulary rather than a raw io import at every site.
func readFull(r *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// WritePOS writes hits as N=4 big-endian records (x, y, z, value), the
// canonical POS form of spec §6.1.
func WritePOS(path string, hits []geom.IonHit) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ionio: %w: %v", ErrFileOpen, err)
	}
	defer f.Close()
	w := bufio.NewWriterSize(f, recordsPerBlock*16)
	for _, h := range hits {
		rec := h.MarshalBE()
		if _, err := w.Write(rec[:]); err != nil {
			return err
		}
	}
	return w.Flush()
}
