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
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"

	"golang.org/x/exp/slices"
)

// SampleOptions controls the K-of-N index selection shared by the binary
// and text sampled loaders (spec §4.2).
type SampleOptions struct {
	// Strong, if true, reseeds the selection RNG from the OS entropy
	// source instead of the default timer seed. Spec §9 leaves the
	// exact distribution of the original's "randomDigitSelection"
	// undocumented; this implementation picks sampling-without-
	// replacement (Floyd's algorithm) uniformly at random, documented
	// as a choice rather than a guess at unspecified legacy behavior.
	Strong bool
}

// selectSample returns k indices drawn without replacement from [0, n),
// sorted ascending so a caller can seek-read monotonically. k must be <=
// n; if k >= n every index is returned.
func selectSample(n, k int, opt SampleOptions) []int64 {
	if k >= n {
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(i)
		}
		return out
	}
	rng := newSampleRNG(opt)
	// Floyd's algorithm for a uniform random k-subset of [0, n): for
	// each j over the last k values of the range, draw t from [0, j]
	// and keep it, or keep j itself if t was already chosen (j cannot
	// have been, since every earlier draw was below j), so every
	// output is distinct in O(k) space.
	chosen := make(map[int64]bool, k)
	out := make([]int64, 0, k)
	for j := int64(n - k); j < int64(n); j++ {
		t := rng.Int63n(j + 1)
		if chosen[t] {
			t = j
		}
		chosen[t] = true
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

func newSampleRNG(opt SampleOptions) *rand.Rand {
	if !opt.Strong {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	var seedBytes [8]byte
	if _, err := cryptorand.Read(seedBytes[:]); err != nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	seed := int64(binary.LittleEndian.Uint64(seedBytes[:]))
	return rand.New(rand.NewSource(seed))
}
