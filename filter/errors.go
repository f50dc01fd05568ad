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

// Package filter defines the contract every pipeline node implements:
// a structural init pass, a heavy refresh pass, a property interface,
// and XML serialization, generalized from the teacher's query-plan
// operator contract to a stream-processing pipeline node.
package filter

import "fmt"

// Code enumerates the node-contract errors of spec §7 that are not
// specific to a single concrete filter (those live in the filters
// package alongside the filter that raises them).
type Code int

const (
	_ Code = iota
	ErrAborted
	ErrPropertyRejected
	ErrAllocFailed
)

var codeNames = map[Code]string{
	ErrAborted:          "Aborted",
	ErrPropertyRejected: "PropertyRejected",
	ErrAllocFailed:      "AllocFailed",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("filter.Code(%d)", int(c))
}

func (c Code) Error() string { return c.String() }
