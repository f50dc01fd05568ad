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
	"encoding/binary"
	"runtime"

	"github.com/dchest/siphash"

	"github.com/apttools/depict/compr"
	"github.com/apttools/depict/stream"
)

// siphash keys for the input digest; arbitrary fixed constants, same
// role as plan/input.go's HashSplit keys (a stable, non-secret seed so
// repeated runs over identical inputs agree).
const (
	digestK0 = 0x5a17c0de1337beef
	digestK1 = 0x0ff1ceb0b1de2022
)

// digestInputs hashes the shape of a node's inputs — each payload's
// kind, producer, and element count — so the engine can notice an
// input changed even when no SetProperty call explicitly cleared the
// cache (spec §4.4: "nodes whose input has changed must have their
// cache cleared").
func digestInputs(inputs []stream.Payload) uint64 {
	var buf []byte
	for _, in := range inputs {
		buf = append(buf, byte(in.Kind()))
		buf = append(buf, []byte(in.Producer())...)
		buf = binary.LittleEndian.AppendUint64(buf, uint64(elementCount(in)))
	}
	return siphash.Hash(digestK0, digestK1, buf)
}

func elementCount(p stream.Payload) int {
	switch v := p.(type) {
	case *stream.IonStream:
		return len(v.Hits)
	case *stream.RangeStream:
		if v.Table != nil {
			return len(v.Table.Ranges)
		}
	case *stream.PlotStream:
		return len(v.Bins)
	case *stream.DrawStream:
		return len(v.Primitives)
	case *stream.VoxelStream:
		return len(v.Values)
	}
	return 0
}

// countElements sums the ion counts across every IonStream in inputs,
// the "actual input element counts" spec §4.4 says the engine gives a
// node's NumBytesForCache before deciding whether to allow caching.
func countElements(inputs []stream.Payload) int {
	total := 0
	for _, in := range inputs {
		if ions, ok := in.(*stream.IonStream); ok {
			total += len(ions.Hits)
		}
	}
	return total
}

// availableBudgetBytes estimates the cache budget as a percentage of
// the Go runtime's reported system memory. No ecosystem library in the
// example pack queries true OS free memory portably (x/sys's Sysinfo
// is Linux-only and was dropped per DESIGN.md); runtime.MemStats.Sys is
// the nearest stdlib-only proxy and is judged good enough for a
// soft cache-eviction budget rather than a hard memory limit.
func (t *Tree) availableBudgetBytes() int64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return int64(float64(ms.Sys) * t.budgetPercent() / 100)
}

// recordCacheFootprint compresses the ion payloads among outputs with
// compr's default cache codec purely to learn their packed size, and
// stores that as the node's reported cache footprint. The engine keeps
// outputs decompressed in memory (decompression cost would otherwise
// land on every cache-valid pass-through); compr here measures, rather
// than replaces, the retained representation.
func (n *Node) recordCacheFootprint(outputs []stream.Payload) {
	var raw []byte
	for _, p := range outputs {
		ions, ok := p.(*stream.IonStream)
		if !ok {
			continue
		}
		for _, h := range ions.Hits {
			rec := h.MarshalBE()
			raw = append(raw, rec[:]...)
		}
	}
	if len(raw) == 0 {
		n.cacheBytes = 0
		return
	}
	compressed, _, err := compr.CompressCacheEntry(compr.DefaultCacheCodec, raw)
	if err != nil {
		n.cacheBytes = int64(len(raw))
		return
	}
	n.cacheBytes = int64(len(compressed))
}

// CacheFootprintBytes reports the last-measured compressed size of this
// node's cached ion output, or 0 if nothing is cached or cached output
// carries no ion data.
func (n *Node) CacheFootprintBytes() int64 { return n.cacheBytes }
