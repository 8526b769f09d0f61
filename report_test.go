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
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/landcarbon/carbonstock/larray"
)

func TestTable(t *testing.T) {
	a, err := larray.NewMasked(
		[]larray.Axis{ax(AxisLocation, "A", "B"), ax(AxisLand, Crop)},
		[]float64{1.5, 0}, []bool{true, false})
	if err != nil {
		t.Fatal(err)
	}
	want := Table{
		{AxisLocation, AxisLand, "value (Mt C)"},
		{"A", Crop, "1.5"},
		{"B", Crop, "NA"},
	}
	have := NewTable(a, false)
	if !cmp.Equal(have, want) {
		t.Error(cmp.Diff(want, have))
	}

	si := NewTable(a, true)
	if si[1][2] != "1.5e+09" {
		t.Errorf("si value: have %s, want 1.5e+09", si[1][2])
	}
	if si[0][2] == want[0][2] {
		t.Error("si header should name the unit")
	}

	var b bytes.Buffer
	n, err := have.Tabbed(&b)
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Error("nothing written")
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("have %d lines, want 3", len(lines))
	}
	// Cells that fill their column are still separated.
	wantLines := []string{"j\tland\tvalue (Mt C)", "A\tcrop\t1.5", "B\tcrop\tNA"}
	if !cmp.Equal(lines, wantLines) {
		t.Error(cmp.Diff(wantLines, lines))
	}
	if n != b.Len() {
		t.Errorf("reported %d bytes, wrote %d", n, b.Len())
	}
}
