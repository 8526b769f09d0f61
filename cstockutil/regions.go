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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/landcarbon/carbonstock"
	"github.com/landcarbon/carbonstock/larray"
)

// ReadRegionMappingFile reads the region mapping in the CSV file at path.
func ReadRegionMappingFile(path string) (*carbonstock.RegionMapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cstockutil: opening region mapping: %v", err)
	}
	defer f.Close()
	m, err := ReadRegionMapping(f)
	if err != nil {
		return nil, fmt.Errorf("%v (file %s)", err, path)
	}
	return m, nil
}

// ReadRegionMapping reads a region mapping from CSV data with a header
// row. The first two columns are the cell and its region. If there is a
// third column, it holds the weight of each cell and cells are combined
// by weighted mean instead of summed. Regions are output in the order
// they first appear.
func ReadRegionMapping(r io.Reader) (*carbonstock.RegionMapping, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cstockutil: reading region mapping: %v", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("cstockutil: region mapping has no cells")
	}
	header := records[0]
	if len(header) < 2 || len(header) > 3 {
		return nil, fmt.Errorf("cstockutil: region mapping has %d columns; "+
			"want cell, region and optionally weight", len(header))
	}
	weighted := len(header) == 3

	m := &carbonstock.RegionMapping{Regions: make(map[string]string)}
	var cells []string
	var weights []float64
	for i, rec := range records[1:] {
		line := i + 2
		cell, region := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		if cell == "" || region == "" {
			return nil, fmt.Errorf("cstockutil: region mapping line %d: empty cell or region", line)
		}
		if _, ok := m.Regions[cell]; ok {
			return nil, fmt.Errorf("cstockutil: region mapping line %d: cell %s "+
				"is mapped twice", line, cell)
		}
		m.Regions[cell] = region
		if !isStringInArray(m.Order, region) {
			m.Order = append(m.Order, region)
		}
		if weighted {
			w, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
			if err != nil {
				return nil, fmt.Errorf("cstockutil: region mapping line %d: %v", line, err)
			}
			cells = append(cells, cell)
			weights = append(weights, w)
		}
	}
	if weighted {
		m.Type = carbonstock.AggregateMean
		m.Weight, err = larray.New([]larray.Axis{{Name: carbonstock.AxisLocation, Labels: cells}}, weights)
		if err != nil {
			return nil, fmt.Errorf("cstockutil: region mapping weights: %w", err)
		}
	}
	return m, nil
}
