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
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/apttools/depict/geom"
)

// textDelims is the fixed delimiter set of spec §4.2: tab, space, comma.
const textDelims = "\t ,"

// TextParams configures a delimited text ion-file load: which input
// column (by position among the fields a line splits into) feeds each
// of the 4 output fields.
type TextParams struct {
	Cols [4]int
}

func (p TextParams) maxCol() int {
	m := 0
	for _, c := range p.Cols {
		if c > m {
			m = c
		}
	}
	return m
}

func splitFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return strings.ContainsRune(textDelims, r)
	})
}

// headerEnd scans lines from r until it finds one that plausibly starts
// the data table: it has enough fields, every selected column parses as
// float32, and at least one digit has been seen somewhere in the file so
// far (spec §4.2's numeric-data heuristic, which exists so a header made
// entirely of punctuation can't be mistaken for a one-column data row).
func headerEnd(sc *bufio.Scanner, p TextParams) (firstDataFields []string, hasMore bool, err error) {
	needed := p.maxCol() + 1
	seenDigit := false
	for sc.Scan() {
		line := sc.Text()
		if strings.ContainsAny(line, "0123456789") {
			seenDigit = true
		}
		fields := splitFields(line)
		if len(fields) < needed || !seenDigit {
			continue
		}
		if allParse(fields, p) {
			return fields, true, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, false, err
	}
	return nil, false, nil
}

func fieldsToHit(fields []string, p TextParams) (geom.IonHit, error) {
	var cols [4]float32
	for i, c := range p.Cols {
		v, err := strconv.ParseFloat(fields[c], 32)
		if err != nil {
			return geom.IonHit{}, fmt.Errorf("ionio: bad numeric field %q", fields[c])
		}
		cols[i] = float32(v)
	}
	hit := geom.IonHit{Point3: geom.Point3{X: cols[0], Y: cols[1], Z: cols[2]}, Value: cols[3]}
	if hit.HasNaN() {
		return geom.IonHit{}, fmt.Errorf("ionio: %w", ErrNaNFound)
	}
	return hit, nil
}

// LoadText implements spec §4.2's two-pass text loader, full-load mode:
// pass 1 heuristically skips the header, pass 2 reads every remaining
// line (plus the line that ended the header scan) into IonHits.
func LoadText(path string, p TextParams, maxIons int, progress ProgressFunc) ([]geom.IonHit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ionio: %w: %v", ErrFileOpen, err)
	}
	defer f.Close()
	if info, err := f.Stat(); err == nil && info.Size() == 0 {
		return nil, fmt.Errorf("ionio: %w", ErrFileEmpty)
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	firstFields, hasData, err := headerEnd(sc, p)
	if err != nil {
		return nil, err
	}
	if !hasData {
		return nil, fmt.Errorf("ionio: text file has no parsable data rows")
	}

	out := make([]geom.IonHit, 0, 1024)
	hit, err := fieldsToHit(firstFields, p)
	if err != nil {
		return nil, err
	}
	out = append(out, hit)

	for sc.Scan() {
		if maxIons > 0 && len(out) >= maxIons {
			break
		}
		fields := splitFields(sc.Text())
		if len(fields) < p.maxCol()+1 {
			continue
		}
		hit, err := fieldsToHit(fields, p)
		if err != nil {
			return nil, err
		}
		out = append(out, hit)
		if progress != nil && len(out)%PROGRESS_REDUCE == 0 {
			if !progress(len(out)) {
				return nil, fmt.Errorf("ionio: %w", ErrAborted)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadTextSampled builds an index of byte offsets for every data line
// after the header, samples k of them with the same K-selection
// algorithm as the binary loader, and re-reads only those lines. It
// tracks its own byte offset through the header skip and the index
// build in one pass, since bufio.Scanner's read-ahead buffering makes
// its internal position unusable for a later ReadAt-based reread.
func LoadTextSampled(path string, p TextParams, k int, opt SampleOptions) ([]geom.IonHit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ionio: %w: %v", ErrFileOpen, err)
	}
	defer f.Close()

	needed := p.maxCol() + 1
	seenDigit := false
	headerDone := false
	var offsets []int64
	var off int64
	for {
		start := off
		line, next, err := readLineAt(f, off)
		if line == nil && err != nil {
			break
		}
		off = next
		text := string(line)

		if !headerDone {
			if strings.ContainsAny(text, "0123456789") {
				seenDigit = true
			}
			fields := splitFields(text)
			if len(fields) >= needed && seenDigit && allParse(fields, p) {
				headerDone = true
				offsets = append(offsets, start)
			}
		} else {
			offsets = append(offsets, start)
		}
		if err != nil {
			break
		}
	}
	if !headerDone {
		return nil, fmt.Errorf("ionio: text file has no parsable data rows")
	}

	idx := selectSample(len(offsets), min(k, len(offsets)), opt)
	out := make([]geom.IonHit, 0, len(idx))
	for _, i := range idx {
		line, _, err := readLineAt(f, offsets[i])
		if err != nil && line == nil {
			return nil, fmt.Errorf("ionio: %w: %v", ErrFileReadShort, err)
		}
		fields := splitFields(string(line))
		if len(fields) < needed {
			continue
		}
		hit, err := fieldsToHit(fields, p)
		if err != nil {
			return nil, err
		}
		out = append(out, hit)
	}
	return out, nil
}

func allParse(fields []string, p TextParams) bool {
	for _, c := range p.Cols {
		if _, err := strconv.ParseFloat(fields[c], 32); err != nil {
			return false
		}
	}
	return true
}

// readLineAt reads one newline-terminated (or EOF-terminated) line
// starting at byte offset off, returning the line's content (without
// the trailing newline) and the offset immediately following it. A nil
// line with a non-nil error means off was already at EOF.
func readLineAt(f *os.File, off int64) (line []byte, next int64, err error) {
	buf := make([]byte, 4096)
	cur := off
	for {
		n, rerr := f.ReadAt(buf, cur)
		for i := 0; i < n; i++ {
			if buf[i] == '\n' {
				return line, cur + int64(i) + 1, nil
			}
			line = append(line, buf[i])
		}
		cur += int64(n)
		if rerr != nil {
			if len(line) > 0 {
				return line, cur, nil
			}
			return nil, cur, io.EOF
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
