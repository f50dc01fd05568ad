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
	"github.com/apttools/depict/geom"
	"github.com/apttools/depict/ranging"
)

func sampleTableWithSpaceName() *ranging.Table {
	tbl := &ranging.Table{}
	id := tbl.AddIon("bad name", "Bad Name", geom.Opaque(1, 2, 3))
	tbl.AddRange(1, 2, id)
	return tbl
}
