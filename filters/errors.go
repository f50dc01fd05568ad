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

// Package filters implements the concrete pipeline nodes: DataLoad,
// Range, Spectrum, IonColour and External, each a filter.Node built on
// ionio/rangefile/ranging, generalized from
// original_source/src/filters/{dataLoad,rangeFile,spectrumPlot,
// ionColour,externalProgram}.cpp.
package filters

import "fmt"

// Code enumerates the External filter's own error kinds from spec §4.7
// that have no counterpart in ionio or rangefile's Code types.
type Code int

const (
	_ Code = iota
	ErrSubstitution
	ErrWorkDirCreate
	ErrSpawnFailed
	ErrOutputUnparseable
)

var codeNames = map[Code]string{
	ErrSubstitution:      "ExternalSubstitutionFailed",
	ErrWorkDirCreate:     "ExternalWorkDirCreateFailed",
	ErrSpawnFailed:       "ExternalSpawnFailed",
	ErrOutputUnparseable: "ExternalOutputUnparseable",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("filters.Code(%d)", int(c))
}

func (c Code) Error() string { return c.String() }
