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
	"fmt"
	"sort"

	"github.com/landcarbon/carbonstock/larray"
)

// Level is a spatial level of output.
type Level string

// Spatial levels.
const (
	Cell         Level = "cell"   // model cells; no aggregation
	Region       Level = "reg"    // model regions
	Global       Level = "glo"    // a single global total
	RegionGlobal Level = "regglo" // model regions followed by the global total
)

// GlobalLabel is the location label of global totals.
const GlobalLabel = "GLO"

// An Aggregator rolls the location axis of an array up to a coarser
// spatial level.
type Aggregator interface {
	Aggregate(a *larray.Array, level Level) (*larray.Array, error)
}

// AggregationType specifies how cells are combined.
type AggregationType int

const (
	// AggregateSum sums cells.
	AggregateSum AggregationType = iota

	// AggregateMean takes the weighted mean of cells.
	AggregateMean
)

// RegionMapping is an Aggregator that assigns each cell to a region.
type RegionMapping struct {
	// Regions gives the region of each cell.
	Regions map[string]string

	// Order is the order of regions in the output. If empty, regions are
	// sorted alphabetically.
	Order []string

	Type AggregationType

	// Weight holds the weight of each cell for AggregateMean. It is
	// broadcast along any axes of the aggregated array that it does not
	// have. Regions with a total weight of zero hold no value.
	Weight *larray.Array
}

// Aggregate implements Aggregator.
func (m *RegionMapping) Aggregate(a *larray.Array, level Level) (*larray.Array, error) {
	switch level {
	case Cell:
		return a, nil
	case Region:
		return m.rollup(a, m.Regions, m.regions())
	case Global:
		return m.global(a)
	case RegionGlobal:
		regions := m.regions()
		reg, err := m.rollup(a, m.Regions, regions)
		if err != nil {
			return nil, err
		}
		glo, err := m.global(a)
		if err != nil {
			return nil, err
		}
		// Add an empty global label to the regional result and fill it.
		identity := make(map[string]string, len(regions))
		for _, r := range regions {
			identity[r] = r
		}
		out, err := reg.Regroup(AxisLocation, identity, append(append([]string(nil), regions...), GlobalLabel))
		if err != nil {
			return nil, err
		}
		return out.Assign(larray.Selection{AxisLocation: {GlobalLabel}}, glo)
	default:
		return nil, fmt.Errorf("carbonstock: unknown spatial level %q", level)
	}
}

func (m *RegionMapping) global(a *larray.Array) (*larray.Array, error) {
	cells, err := a.Labels(AxisLocation)
	if err != nil {
		return nil, err
	}
	mapping := make(map[string]string, len(cells))
	for _, c := range cells {
		mapping[c] = GlobalLabel
	}
	return m.rollup(a, mapping, []string{GlobalLabel})
}

func (m *RegionMapping) rollup(a *larray.Array, mapping map[string]string, groups []string) (*larray.Array, error) {
	switch m.Type {
	case AggregateSum:
		return a.Regroup(AxisLocation, mapping, groups)
	case AggregateMean:
		w, err := m.weights(a)
		if err != nil {
			return nil, err
		}
		aw, err := a.Multiply(w)
		if err != nil {
			return nil, err
		}
		num, err := aw.Regroup(AxisLocation, mapping, groups)
		if err != nil {
			return nil, err
		}
		den, err := w.Regroup(AxisLocation, mapping, groups)
		if err != nil {
			return nil, err
		}
		return num.Divide(den)
	default:
		return nil, fmt.Errorf("carbonstock: unknown aggregation type %d", m.Type)
	}
}

// weights returns m.Weight restricted to the cells of a and broadcast to
// its other axes.
func (m *RegionMapping) weights(a *larray.Array) (*larray.Array, error) {
	if m.Weight == nil {
		return nil, fmt.Errorf("carbonstock: weighted aggregation needs weights")
	}
	cells, err := a.Labels(AxisLocation)
	if err != nil {
		return nil, err
	}
	w, err := m.Weight.Select(AxisLocation, cells...)
	if err != nil {
		return nil, fmt.Errorf("carbonstock: weights: %w", err)
	}
	return broadcast(w, a)
}

func (m *RegionMapping) regions() []string {
	if len(m.Order) > 0 {
		return append([]string(nil), m.Order...)
	}
	seen := make(map[string]bool)
	var out []string
	for _, r := range m.Regions {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	sort.Strings(out)
	return out
}
