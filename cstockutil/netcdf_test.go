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

package cstockutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/landcarbon/carbonstock"
	"github.com/landcarbon/carbonstock/larray"
)

func ax(name string, labels ...string) larray.Axis {
	return larray.Axis{Name: name, Labels: labels}
}

func testArray(t *testing.T) *larray.Array {
	a, err := larray.NewMasked(
		[]larray.Axis{ax("j", "A", "B", "C"), ax("land", "crop", "past")},
		[]float64{1, 2, 3, 4, 0, 6},
		[]bool{true, true, true, true, false, true})
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func writeTestNetCDF(t *testing.T, vars map[string]*larray.Array, attrs map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.nc")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteNetCDF(f, vars, attrs); err != nil {
		f.Close()
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNetCDFRoundTrip(t *testing.T) {
	a := testArray(t)
	land, err := a.Sum("land")
	if err != nil {
		t.Fatal(err)
	}
	path := writeTestNetCDF(t,
		map[string]*larray.Array{"carbon_stock": a, "total": land.FillMissing(0)},
		map[string]string{carbonstock.AttrSoilModel: "split"})

	src, err := OpenNetCDF(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if have, want := src.Variables(), []string{"carbon_stock", "total"}; !cmp.Equal(have, want) {
		t.Errorf("variables: %s", cmp.Diff(want, have))
	}
	b, ok, err := src.Lookup("carbon_stock")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("carbon_stock not found")
	}
	if !b.Equal(a) {
		t.Errorf("have %v %v, want %v %v", b.Values(), b.Valid(), a.Values(), a.Valid())
	}
	total, ok, err := src.Lookup("total")
	if err != nil || !ok {
		t.Fatalf("total: ok=%v err=%v", ok, err)
	}
	if want := []float64{3, 7, 0}; !cmp.Equal(total.Values(), want) {
		t.Error(cmp.Diff(want, total.Values()))
	}
	if _, ok, err := src.Lookup("land"); ok || err != nil {
		t.Errorf("absent variable: ok=%v err=%v", ok, err)
	}
	if v, ok := src.Attribute(carbonstock.AttrSoilModel); !ok || v != "split" {
		t.Errorf("soil model attribute: %q %v", v, ok)
	}
	if _, ok := src.Attribute("missing"); ok {
		t.Error("absent attribute found")
	}
}

func TestWriteNetCDFErrors(t *testing.T) {
	short, err := larray.New([]larray.Axis{ax("j", "A")}, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	comma, err := larray.New([]larray.Axis{ax("j", "A,B")}, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		vars map[string]*larray.Array
		err  string
	}{
		{"scalar", map[string]*larray.Array{"s": larray.Scalar(1)}, "scalars"},
		{"lengths", map[string]*larray.Array{"a": testArray(t), "b": short}, "length"},
		{"comma", map[string]*larray.Array{"c": comma}, "contains"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f, err := os.Create(filepath.Join(t.TempDir(), "out.nc"))
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			err = WriteNetCDF(f, test.vars, nil)
			if err == nil || !strings.Contains(err.Error(), test.err) {
				t.Errorf("error %v should contain %q", err, test.err)
			}
		})
	}
}
