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
	"bufio"
	"encoding/xml"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/apttools/depict/filter"
	"github.com/apttools/depict/geom"
	"github.com/apttools/depict/ionio"
	"github.com/apttools/depict/stream"
)

// External runs an arbitrary shell command over the ion and plot streams
// reaching it, substituting file-name placeholders into CommandLine and
// reading back whatever *.pos/*.xy files the command leaves in its
// working directory. Grounded on
// original_source/src/filters/externalProgram.{h,cpp}; always hazardous,
// per the original's canBeHazardous() override.
type External struct {
	CommandLine string
	BaseWorkDir string // empty means os.TempDir()
	AlwaysCache bool
	CleanInput  bool

	valid bool
}

func NewExternal() *External {
	return &External{AlwaysCache: true}
}

func (e *External) CloneUncached() filter.Node {
	cp := *e
	cp.valid = false
	return &cp
}

func (e *External) NumBytesForCache(nInput int) int64 { return int64(nInput) * 16 }

func (e *External) Init(inputs []stream.Payload) ([]stream.Payload, error) { return nil, nil }

// Refresh writes every ion/plot stream reaching it into a freshly-made
// working directory, substitutes %i/%I/%p/%P/%% into CommandLine, runs
// the result through a shell, and reads back any *.pos/*.xy files the
// command leaves behind. Every failure mode maps to a distinct Code
// per spec §4.7.
func (e *External) Refresh(ctx *filter.RefreshContext, inputs []stream.Payload) ([]stream.Payload, error) {
	var passthrough []stream.Payload
	var ionStreams []*stream.IonStream
	var plotStreams []*stream.PlotStream
	for _, in := range inputs {
		switch p := in.(type) {
		case *stream.IonStream:
			ionStreams = append(ionStreams, p)
		case *stream.PlotStream:
			plotStreams = append(plotStreams, p)
		default:
			passthrough = append(passthrough, in)
		}
	}

	base := e.BaseWorkDir
	if base == "" {
		base = os.TempDir()
	}
	workDir := filepath.Join(base, "depict-external-"+uuid.New().String())
	if err := os.MkdirAll(workDir, 0o700); err != nil {
		return nil, fmt.Errorf("filters: External: %w: %s", ErrWorkDirCreate, err)
	}

	ionPaths := make([]string, len(ionStreams))
	for i, is := range ionStreams {
		p := filepath.Join(workDir, fmt.Sprintf("ion_%d.pos", i))
		if err := ionio.WritePOS(p, is.Hits); err != nil {
			return nil, fmt.Errorf("filters: External: %w: %s", ErrWorkDirCreate, err)
		}
		ionPaths[i] = p
	}
	plotPaths := make([]string, len(plotStreams))
	for i, ps := range plotStreams {
		p := filepath.Join(workDir, fmt.Sprintf("plot_%d.xy", i))
		if err := writeXY(p, ps); err != nil {
			return nil, fmt.Errorf("filters: External: %w: %s", ErrWorkDirCreate, err)
		}
		plotPaths[i] = p
	}

	cmdLine, err := substitute(e.CommandLine, ionPaths, plotPaths)
	if err != nil {
		return nil, fmt.Errorf("filters: External: %w: %s", ErrSubstitution, err)
	}

	if ctx.Cancelled() {
		return nil, filter.ErrAborted
	}

	cmd := exec.Command("sh", "-c", cmdLine)
	cmd.Dir = workDir
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("filters: External: %w: %s", ErrSpawnFailed, err)
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, fmt.Errorf("filters: External: %w: %s", ErrOutputUnparseable, err)
	}

	var out []stream.Payload
	out = append(out, passthrough...)
	for _, ent := range entries {
		name := ent.Name()
		full := filepath.Join(workDir, name)
		switch {
		case strings.HasSuffix(name, ".pos") && !contains(ionPaths, full):
			hits, err := ionio.LoadPOS(full, ionio.POSParams{N: 4, OutCols: 4, Index: [4]int{0, 1, 2, 3}}, 0, nil)
			if err != nil {
				return nil, fmt.Errorf("filters: External: %w: %s", ErrOutputUnparseable, err)
			}
			bb := geom.Invalid()
			for _, h := range hits {
				bb.Extend(h.Point3)
			}
			out = append(out, stream.NewIonStream("external", e.AlwaysCache, hits, bb))
		case strings.HasSuffix(name, ".xy") && !contains(plotPaths, full):
			bins, err := readXY(full)
			if err != nil {
				return nil, fmt.Errorf("filters: External: %w: %s", ErrOutputUnparseable, err)
			}
			out = append(out, stream.NewPlotStream("external", e.AlwaysCache, bins, nil))
		}
	}

	if e.CleanInput {
		for _, p := range append(append([]string{}, ionPaths...), plotPaths...) {
			os.Remove(p)
		}
	}

	e.valid = true
	return out, nil
}

func contains(paths []string, p string) bool {
	for _, q := range paths {
		if q == p {
			return true
		}
	}
	return false
}

func (e *External) Properties() filter.PropertySets {
	return filter.PropertySets{{Name: "external", Properties: []filter.Property{
		{Key: "command_line", Current: filter.Str(e.CommandLine)},
		{Key: "base_work_dir", Current: filter.Str(e.BaseWorkDir)},
		{Key: "always_cache", Current: filter.Bool(e.AlwaysCache)},
		{Key: "clean_input", Current: filter.Bool(e.CleanInput)},
	}}}
}

func (e *External) SetProperty(key string, v filter.Value) (bool, bool) {
	switch key {
	case "command_line":
		e.CommandLine = v.String
	case "base_work_dir":
		e.BaseWorkDir = v.String
	case "always_cache":
		e.AlwaysCache = v.Bool
		return true, true
	case "clean_input":
		e.CleanInput = v.Bool
		return true, false
	default:
		return false, false
	}
	e.valid = false
	return true, true
}

// Serialize/Deserialize write nothing: every field External carries is
// already round-tripped as a flat Property, so there is no structural
// state left for the §6.3 state blob to hold.
func (e *External) Serialize(enc *xml.Encoder) error   { return nil }
func (e *External) Deserialize(dec *xml.Decoder) error { return nil }

func (e *External) BlockMask() stream.KindMask { return stream.MaskOf(stream.Ions, stream.Plot) }
func (e *External) EmitMask() stream.KindMask  { return stream.MaskOf(stream.Ions, stream.Plot) }
func (e *External) UseMask() stream.KindMask   { return stream.MaskOf(stream.Ions, stream.Plot) }

// substitute expands %i, %I, %p, %P and %% in line. %i/%p require
// exactly one ion/plot path respectively; any other count is a
// substitution failure, since the placeholder would be ambiguous.
func substitute(line string, ionPaths, plotPaths []string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c != '%' || i+1 >= len(line) {
			b.WriteByte(c)
			continue
		}
		switch line[i+1] {
		case '%':
			b.WriteByte('%')
		case 'i':
			if len(ionPaths) != 1 {
				return "", fmt.Errorf("%%i requires exactly one ion stream, got %d", len(ionPaths))
			}
			b.WriteString(ionPaths[0])
		case 'I':
			b.WriteString(strings.Join(ionPaths, " "))
		case 'p':
			if len(plotPaths) != 1 {
				return "", fmt.Errorf("%%p requires exactly one plot stream, got %d", len(plotPaths))
			}
			b.WriteString(plotPaths[0])
		case 'P':
			b.WriteString(strings.Join(plotPaths, " "))
		default:
			return "", fmt.Errorf("unknown substitution %%%c", line[i+1])
		}
		i++
	}
	return b.String(), nil
}

// writeXY writes a PlotStream as whitespace-separated "x y" lines, one
// per bin (x is the bin centre), the intermediate format External hands
// to an external program in place of a full stream.PlotStream.
func writeXY(path string, p *stream.PlotStream) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, b := range p.Bins {
		centre := (b.Lo + b.Hi) / 2
		if _, err := fmt.Fprintf(w, "%g %d\n", centre, b.Count); err != nil {
			return err
		}
	}
	return w.Flush()
}

// readXY parses a two-column "x y" text file back into a zero-width Bin
// per line — the simplest lossless reading of a foreign program's output
// that preserves both the sample value and its count.
func readXY(path string) ([]stream.Bin, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var bins []stream.Bin
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		x, err := strconv.ParseFloat(fields[0], 32)
		if err != nil {
			return nil, fmt.Errorf("readXY: %s: %w", path, err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("readXY: %s: %w", path, err)
		}
		bins = append(bins, stream.Bin{Lo: float32(x), Hi: float32(x), Count: int64(math.Round(y))})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return bins, nil
}
