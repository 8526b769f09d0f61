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

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ctessum/unit"
	"github.com/landcarbon/carbonstock/larray"
)

// kgPerMt converts megatonnes to kilograms.
const kgPerMt = 1.e9

// StockUnit returns a carbon stock v in megatonnes of carbon as a mass.
func StockUnit(v float64) *unit.Unit {
	return unit.New(v*kgPerMt, unit.Dimensions{unit.MassDim: 1})
}

// A Table holds a text representation of an indicator.
type Table [][]string

// NewTable returns a table with a header row followed by one row per cell
// of a: the cell's labels, one column per axis, then its value. Values are
// in Mt C, or in kilograms if si is true. Cells that hold no value are
// written as "NA".
func NewTable(a *larray.Array, si bool) Table {
	header := append(a.AxisNames(), "value (Mt C)")
	if si {
		header[len(header)-1] = fmt.Sprintf("value (%s)", StockUnit(0).Dimensions().String())
	}
	t := Table{header}
	a.Each(func(labels []string, v float64, ok bool) {
		row := append(append([]string(nil), labels...), "NA")
		if ok {
			if si {
				v = StockUnit(v).Value()
			}
			row[len(row)-1] = fmt.Sprintf("%g", v)
		}
		t = append(t, row)
	})
	return t
}

// Tabbed writes t with the cells of each row separated by single tabs.
func (t Table) Tabbed(w io.Writer) (n int, err error) {
	bw := bufio.NewWriter(w)
	var nn int
	for _, row := range t {
		nn, err = bw.WriteString(strings.Join(row, "\t") + "\n")
		n += nn
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}
