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

package rangefile

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/apttools/depict/ranging"
)

// Format selects a range-file grammar.
type Format int

const (
	// FormatAuto guesses the format from the file extension, falling
	// back to a brute-force try of every parser in a fixed order if
	// the guess fails to parse.
	FormatAuto Format = iota
	FormatORNL
	FormatRRNG
	FormatENV
)

func (f Format) String() string {
	switch f {
	case FormatORNL:
		return "ornl"
	case FormatRRNG:
		return "rrng"
	case FormatENV:
		return "env"
	default:
		return "auto"
	}
}

// RangeFile is a parsed range table plus the path and format it was
// loaded from (or will be written to).
type RangeFile struct {
	Table  *ranging.Table
	Path   string
	Format Format

	// Logger, if non-nil, receives the messages passed to warnf. Open
	// builds the RangeFile and parses it in one call, before a caller
	// can set this field, so non-fatal parser warnings raised during
	// Open (e.g. an ORNL column-header order that disagrees with the
	// ion declaration order) are discarded rather than logged.
	Logger *log.Logger
}

func (r *RangeFile) warnf(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Printf("rangefile: "+format, args...)
	}
}

// guessFormat maps a file extension to a Format; .rng and .rrng are
// unambiguous, everything else (including .env and unknown extensions)
// defers to brute-force autodetection.
func guessFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".rng":
		return FormatORNL
	case ".rrng":
		return FormatRRNG
	case ".env":
		return FormatENV
	default:
		return FormatAuto
	}
}

// Open parses path as a range file. If format is FormatAuto, the
// extension is used as a hint; if the hinted parser fails (or no hint is
// available), every parser is tried in turn (ORNL, RRNG, ENV) and the
// first successful, self-consistent parse wins.
func Open(path string, format Format) (*RangeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rangefile: open %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, perr(ErrEmpty, 0, "%s is empty", path)
	}
	rf := &RangeFile{Path: path}

	try := format
	if try == FormatAuto {
		try = guessFormat(path)
	}
	if try != FormatAuto {
		if tbl, err := parseFormat(try, data, rf.warnf); err == nil {
			rf.Table, rf.Format = tbl, try
			return rf, nil
		}
	}

	var lastErr error
	for _, f := range []Format{FormatORNL, FormatRRNG, FormatENV} {
		if f == try {
			continue // already tried above
		}
		tbl, err := parseFormat(f, data, rf.warnf)
		if err == nil {
			rf.Table, rf.Format = tbl, f
			return rf, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = perr(ErrGeneric, 0, "no parser for %s", path)
	}
	return nil, lastErr
}

func parseFormat(f Format, data []byte, warn func(string, ...interface{})) (*ranging.Table, error) {
	var tbl *ranging.Table
	var err error
	switch f {
	case FormatORNL:
		tbl, err = parseORNL(data, warn)
	case FormatRRNG:
		tbl, err = parseRRNG(data, warn)
	case FormatENV:
		tbl, err = parseENV(data, warn)
	default:
		return nil, perr(ErrGeneric, 0, "unknown format %v", f)
	}
	if err != nil {
		return nil, err
	}
	if !tbl.IsSelfConsistent() {
		return nil, perr(ErrDataInconsistent, 0, "parsed table is not self-consistent")
	}
	return tbl, nil
}

// Write emits rf.Table in the canonical form of the given format (spec
// §6.1). format must not be FormatAuto.
func (r *RangeFile) Write(path string, format Format) error {
	var data []byte
	var err error
	switch format {
	case FormatORNL:
		data, err = writeORNL(r.Table)
	case FormatRRNG:
		data, err = writeRRNG(r.Table)
	case FormatENV:
		data, err = writeENV(r.Table)
	default:
		return perr(ErrGeneric, 0, "Write requires an explicit format")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
