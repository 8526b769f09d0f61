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
	"math"
	"testing"

	"github.com/landcarbon/carbonstock/larray"
)

const Tolerance = 1.e-10

// diff determines whether the fractional difference between 2 numbers
// is greater than Tolerance.
func diff(val1, val2 float64) bool {
	if val1 == 0. && val2 == 0. {
		return false
	}
	return math.Abs((val1-val2)/(val1+val2)*2) > Tolerance
}

func ax(name string, labels ...string) larray.Axis {
	return larray.Axis{Name: name, Labels: labels}
}

// build returns an array over axes with each cell set by f, which is
// given the cell's label on each axis.
func build(t *testing.T, axes []larray.Axis, f func(l map[string]string) float64) *larray.Array {
	t.Helper()
	z, err := larray.Zeros(axes...)
	if err != nil {
		t.Fatal(err)
	}
	values := make([]float64, 0, z.Size())
	z.Each(func(labels []string, _ float64, _ bool) {
		m := make(map[string]string, len(labels))
		for i, l := range labels {
			m[axes[i].Name] = l
		}
		values = append(values, f(m))
	})
	a, err := larray.New(axes, values)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func at(t *testing.T, a *larray.Array, labels ...string) float64 {
	t.Helper()
	v, ok, err := a.At(labels...)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("%v holds no value", labels)
	}
	return v
}

var (
	testCells = ax(AxisLocation, "A", "B")
	testYears = ax(AxisTime, "y1995", "y2000")
	testLand  = ax(AxisLand, Crop, Pasture, SecondaryForest)
	testPools = ax(AxisPool, Vegetation, Litter, Soil)
	testAC    = ax(AxisCohort, "ac0", "ac10", "acx")
)

// climate doubles densities after the reference year.
func climate(l map[string]string) float64 {
	if l[AxisTime] == "y1995" {
		return 1
	}
	return 2
}

// testSource returns model results for two cells, two years and three
// land types, one of them resolved by age class.
func testSource(t *testing.T) *MemorySource {
	area := map[string]map[string]float64{
		"A": {Crop: 10, Pasture: 5, SecondaryForest: 6},
		"B": {Crop: 4, Pasture: 2, SecondaryForest: 3},
	}
	density := map[string]map[string]float64{
		Crop:            {Vegetation: 2, Litter: 0, Soil: 1},
		Pasture:         {Vegetation: 1, Litter: 1, Soil: 1},
		SecondaryForest: {Vegetation: 50, Litter: 5, Soil: 30},
	}
	cohortDensity := map[string]map[string]float64{
		"ac0":  {Vegetation: 0, Litter: 0, Soil: 10},
		"ac10": {Vegetation: 20, Litter: 2, Soil: 30},
		"acx":  {Vegetation: 80, Litter: 8, Soil: 30},
	}
	cohortArea := map[string]map[string]float64{
		"A": {"ac0": 1, "ac10": 2, "acx": 3},
		"B": {"ac0": 0, "ac10": 1, "acx": 2},
	}
	axes4 := []larray.Axis{testCells, testYears, testLand, testPools}
	return &MemorySource{
		Variables: map[string]*larray.Array{
			VarStock: build(t, axes4, func(map[string]string) float64 { return 999 }),
			VarLand: build(t, []larray.Axis{testCells, testYears, testLand}, func(l map[string]string) float64 {
				return area[l[AxisLocation]][l[AxisLand]]
			}),
			VarDensity: build(t, axes4, func(l map[string]string) float64 {
				return density[l[AxisLand]][l[AxisPool]] * climate(l)
			}),
			// Axes deliberately in a different order from the area table.
			VarCohortDensity: build(t, []larray.Axis{testYears, testCells, testAC, testPools}, func(l map[string]string) float64 {
				return cohortDensity[l[AxisCohort]][l[AxisPool]] * climate(l)
			}),
			VarSecondaryCohorts: build(t, []larray.Axis{testCells, testYears, testAC}, func(l map[string]string) float64 {
				return cohortArea[l[AxisLocation]][l[AxisCohort]]
			}),
		},
	}
}

func testContext(t *testing.T, src Source) *Context {
	t.Helper()
	ctx, err := NewContext(src, DefaultReferenceYear)
	if err != nil {
		t.Fatal(err)
	}
	return ctx
}

type stockCase struct {
	cell, land, pool string
	want             float64
}

func checkStock(t *testing.T, stock *larray.Array, cases []stockCase) {
	t.Helper()
	for _, year := range testYears.Labels {
		for _, c := range cases {
			if v := at(t, stock, c.cell, year, c.land, c.pool); diff(v, c.want) {
				t.Errorf("%s %s %s %s: have %g, want %g", c.cell, year, c.land, c.pool, v, c.want)
			}
		}
	}
}
