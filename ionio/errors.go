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

// Package ionio implements the two ion-file loaders named in spec §4.2:
// the binary column-oriented POS format and the delimited text format,
// each with a full-load and a sampled-load mode.
package ionio

import "fmt"

// Code enumerates the I/O-layer and validation errors of spec §7 that
// originate in a loader.
type Code int

const (
	_ Code = iota
	ErrFileOpen
	ErrFileEmpty
	ErrFileSizeModulus
	ErrFileReadShort
	ErrNaNFound
	ErrAborted
	ErrAllocFailed
)

var codeNames = map[Code]string{
	ErrFileOpen:        "FileOpen",
	ErrFileEmpty:       "FileEmpty",
	ErrFileSizeModulus: "FileSizeModulus",
	ErrFileReadShort:   "FileReadShort",
	ErrNaNFound:        "NaNFound",
	ErrAborted:         "Aborted",
	ErrAllocFailed:     "AllocFailed",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("ionio.Code(%d)", int(c))
}

func (c Code) Error() string { return c.String() }
