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

import (
	"runtime"
	"sync"
)

// ForkJoin splits [0, n) into up to runtime.NumCPU() contiguous chunks
// and runs fn(lo, hi) for each chunk on its own goroutine, waiting for
// all of them before returning. It is the bounded data-parallelism
// primitive spec §5 requires of a node's internal loops: no shared
// mutable state crosses chunk boundaries except whatever fn's caller
// merges afterward. Grounded on the teacher's plan/exec.go goroutine
// pool, simplified to a single fan-out/fan-in since a filter node's
// refresh never needs exec's multi-stage pipeline scheduling.
func ForkJoin(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}
	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
