/*
Copyright © 2026 the carbonstock authors.
This file is part of carbonstock.

carbonstock is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

carbonstock is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with carbonstock.  If not, see <http://www.gnu.org/licenses/>.
*/

package carbonstock

import "github.com/landcarbon/carbonstock/larray"

// A Sink receives a finished indicator, for example to write it to a file.
type Sink interface {
	Write(a *larray.Array) error
}

// MemorySink keeps the last indicator written to it.
type MemorySink struct {
	Array *larray.Array
}

// Write implements Sink.
func (m *MemorySink) Write(a *larray.Array) error {
	m.Array = a
	return nil
}
