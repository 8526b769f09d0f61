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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/landcarbon/carbonstock/larray"
)

// cellStock returns stock over (j, t) for three cells in two regions.
func cellStock(t *testing.T) *larray.Array {
	v := map[string]float64{"A": 1, "B": 2, "C": 4}
	return build(t, []larray.Axis{ax(AxisLocation, "A", "B", "C"), ax(AxisTime, "y2000")},
		func(l map[string]string) float64 { return v[l[AxisLocation]] })
}

var testRegions = map[string]string{"A": "R2", "B": "R1", "C": "R2"}

func TestAggregateSum(t *testing.T) {
	a := cellStock(t)
	m := &RegionMapping{Regions: testRegions}
	tests := []struct {
		level  Level
		labels []string
		values []float64
	}{
		{Cell, []string{"A", "B", "C"}, []float64{1, 2, 4}},
		{Region, []string{"R1", "R2"}, []float64{2, 5}},
		{Global, []string{GlobalLabel}, []float64{7}},
		{RegionGlobal, []string{"R1", "R2", GlobalLabel}, []float64{2, 5, 7}},
	}
	for _, test := range tests {
		t.Run(string(test.level), func(t *testing.T) {
			out, err := m.Aggregate(a, test.level)
			if err != nil {
				t.Fatal(err)
			}
			labels, err := out.Labels(AxisLocation)
			if err != nil {
				t.Fatal(err)
			}
			if !cmp.Equal(labels, test.labels) {
				t.Errorf("labels: %s", cmp.Diff(test.labels, labels))
			}
			if !cmp.Equal(out.Values(), test.values) {
				t.Errorf("values: %s", cmp.Diff(test.values, out.Values()))
			}
		})
	}
}

func TestAggregateOrder(t *testing.T) {
	m := &RegionMapping{Regions: testRegions, Order: []string{"R2", "R1"}}
	out, err := m.Aggregate(cellStock(t), Region)
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{5, 2}; !cmp.Equal(out.Values(), want) {
		t.Error(cmp.Diff(want, out.Values()))
	}
}

func TestAggregateMean(t *testing.T) {
	weight := map[string]float64{"A": 3, "B": 0, "C": 1}
	w := build(t, []larray.Axis{ax(AxisLocation, "A", "B", "C")},
		func(l map[string]string) float64 { return weight[l[AxisLocation]] })
	m := &RegionMapping{Regions: testRegions, Type: AggregateMean, Weight: w}
	out, err := m.Aggregate(cellStock(t), RegionGlobal)
	if err != nil {
		t.Fatal(err)
	}
	// R1 only holds B, which has no weight.
	if _, ok, err := out.At("R1", "y2000"); err != nil || ok {
		t.Errorf("R1: want no value (err=%v)", err)
	}
	if v := at(t, out, "R2", "y2000"); diff(v, (1*3+4*1)/4.) {
		t.Errorf("R2: have %g, want %g", v, (1*3+4*1)/4.)
	}
	if v := at(t, out, GlobalLabel, "y2000"); diff(v, 7/4.) {
		t.Errorf("GLO: have %g, want %g", v, 7/4.)
	}

	m.Weight = nil
	if _, err := m.Aggregate(cellStock(t), Region); err == nil {
		t.Error("want error for missing weights")
	}
}

func TestAggregateMeanIgnoresAbsentCells(t *testing.T) {
	a := build(t, []larray.Axis{ax(AxisLocation, "A", "B"), ax(AxisTime, "y2000")},
		func(map[string]string) float64 { return 10 })
	w := build(t, []larray.Axis{ax(AxisLocation, "A", "B", "C")},
		func(map[string]string) float64 { return 1 })
	m := &RegionMapping{
		Regions: map[string]string{"A": "R1", "B": "R1", "C": "R1"},
		Type:    AggregateMean,
		Weight:  w,
	}
	for _, level := range []Level{Region, Global} {
		out, err := m.Aggregate(a, level)
		if err != nil {
			t.Fatal(err)
		}
		label := "R1"
		if level == Global {
			label = GlobalLabel
		}
		if v := at(t, out, label, "y2000"); diff(v, 10) {
			t.Errorf("%s: have %g, want 10", level, v)
		}
	}
}

func TestAggregateErrors(t *testing.T) {
	m := &RegionMapping{Regions: map[string]string{"A": "R1"}}
	if _, err := m.Aggregate(cellStock(t), Region); err == nil {
		t.Error("want error for unmapped cell")
	}
	if _, err := m.Aggregate(cellStock(t), Level("country")); err == nil {
		t.Error("want error for unknown level")
	}
}
