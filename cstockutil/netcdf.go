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
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/landcarbon/carbonstock/larray"
)

// FillValue marks netCDF cells that hold no value.
const FillValue = 9.9692099683868690e+36

// Attribute names used to store axis labels and missing values.
const (
	labelsSuffix  = "_labels"
	fillAttribute = "_FillValue"
	labelSep      = ","
)

// NetCDFSource reads model result variables from a netCDF file. Each
// variable's axis labels are stored as a comma-separated string
// attribute named after the dimension with a "_labels" suffix, either
// on the variable itself or as a global attribute.
type NetCDFSource struct {
	f  *os.File
	nc *cdf.File
}

// OpenNetCDF opens the netCDF file at path. The caller must call Close.
func OpenNetCDF(path string) (*NetCDFSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cstockutil: opening model results: %v", err)
	}
	nc, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("cstockutil: reading netCDF header of %s: %v", path, err)
	}
	return &NetCDFSource{f: f, nc: nc}, nil
}

// Close closes the underlying file.
func (s *NetCDFSource) Close() error { return s.f.Close() }

// Variables returns the names of the variables in the file.
func (s *NetCDFSource) Variables() []string { return s.nc.Header.Variables() }

// Lookup implements carbonstock.Source.
func (s *NetCDFSource) Lookup(name string) (*larray.Array, bool, error) {
	h := s.nc.Header
	if !isStringInArray(h.Variables(), name) {
		return nil, false, nil
	}
	dims := h.Dimensions(name)
	lengths := h.Lengths(name)
	if len(dims) == 0 {
		return nil, false, fmt.Errorf("cstockutil: variable %s has no dimensions", name)
	}
	axes := make([]larray.Axis, len(dims))
	for i, dim := range dims {
		labels, err := s.labels(name, dim)
		if err != nil {
			return nil, false, err
		}
		if len(labels) != lengths[i] {
			return nil, false, fmt.Errorf("cstockutil: variable %s: dimension %s has "+
				"length %d but %d labels", name, dim, lengths[i], len(labels))
		}
		axes[i] = larray.Axis{Name: dim, Labels: labels}
	}

	r := s.nc.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, false, fmt.Errorf("cstockutil: reading variable %s: %v", name, err)
	}
	values, err := toFloat64(buf)
	if err != nil {
		return nil, false, fmt.Errorf("cstockutil: variable %s: %v", name, err)
	}
	fill, hasFill := s.fill(name)
	valid := make([]bool, len(values))
	for i, v := range values {
		valid[i] = !math.IsNaN(v) && !(hasFill && v == fill)
	}
	a, err := larray.NewMasked(axes, values, valid)
	if err != nil {
		return nil, false, fmt.Errorf("cstockutil: variable %s: %w", name, err)
	}
	return a, true, nil
}

// Attribute implements carbonstock.Source by returning the global
// string attribute name.
func (s *NetCDFSource) Attribute(name string) (string, bool) {
	v, ok := s.nc.Header.GetAttribute("", name).(string)
	return v, ok
}

func (s *NetCDFSource) labels(variable, dim string) ([]string, error) {
	h := s.nc.Header
	attr := dim + labelsSuffix
	v, ok := h.GetAttribute(variable, attr).(string)
	if !ok {
		v, ok = h.GetAttribute("", attr).(string)
	}
	if !ok {
		return nil, fmt.Errorf("cstockutil: variable %s: no labels for dimension %s", variable, dim)
	}
	return strings.Split(v, labelSep), nil
}

func (s *NetCDFSource) fill(variable string) (float64, bool) {
	v, err := toFloat64(s.nc.Header.GetAttribute(variable, fillAttribute))
	if err != nil || len(v) == 0 {
		return 0, false
	}
	return v[0], true
}

func toFloat64(buf interface{}) ([]float64, error) {
	switch t := buf.(type) {
	case []float64:
		return t, nil
	case []float32:
		out := make([]float64, len(t))
		for i, v := range t {
			out[i] = float64(v)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(t))
		for i, v := range t {
			out[i] = float64(v)
		}
		return out, nil
	case []int16:
		out := make([]float64, len(t))
		for i, v := range t {
			out[i] = float64(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported data type %T", buf)
	}
}

// WriteNetCDF writes vars to w as float64 netCDF variables, with their
// axis labels and missing cells stored so that NetCDFSource can read them
// back. attrs are written as global attributes. Axes with the same name
// must have the same length in every variable.
func WriteNetCDF(w *os.File, vars map[string]*larray.Array, attrs map[string]string) error {
	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	// Sort the names so they write in the same order every time.
	sort.Strings(names)

	var dims []string
	length := make(map[string]int)
	for _, name := range names {
		axes := vars[name].Axes()
		if len(axes) == 0 {
			return fmt.Errorf("cstockutil: writing %s: scalars cannot be written to netCDF", name)
		}
		for _, ax := range axes {
			if ax.Len() == 0 {
				return fmt.Errorf("cstockutil: writing %s: axis %s has no labels", name, ax.Name)
			}
			for _, l := range ax.Labels {
				if strings.Contains(l, labelSep) {
					return fmt.Errorf("cstockutil: writing %s: label %q on axis %s "+
						"contains %q", name, l, ax.Name, labelSep)
				}
			}
			n, ok := length[ax.Name]
			if !ok {
				dims = append(dims, ax.Name)
				length[ax.Name] = ax.Len()
			} else if n != ax.Len() {
				return fmt.Errorf("cstockutil: writing %s: axis %s has length %d "+
					"but %d in another variable", name, ax.Name, ax.Len(), n)
			}
		}
	}
	lengths := make([]int, len(dims))
	for i, d := range dims {
		lengths[i] = length[d]
	}

	h := cdf.NewHeader(dims, lengths)
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.AddAttribute("", k, attrs[k])
	}
	for _, name := range names {
		a := vars[name]
		h.AddVariable(name, a.AxisNames(), []float64{0})
		h.AddAttribute(name, fillAttribute, []float64{FillValue})
		for _, ax := range a.Axes() {
			h.AddAttribute(name, ax.Name+labelsSuffix, strings.Join(ax.Labels, labelSep))
		}
	}
	h.Define()

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return fmt.Errorf("cstockutil: creating netCDF file: %v", err)
	}
	for _, name := range names {
		if err = writeNCF(f, name, vars[name]); err != nil {
			return fmt.Errorf("cstockutil: writing variable %s to netCDF file: %v", name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

func writeNCF(f *cdf.File, name string, a *larray.Array) error {
	data := a.Values()
	for i, ok := range a.Valid() {
		if !ok {
			data[i] = FillValue
		}
	}
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	_, err := w.Write(data)
	return err
}

func isStringInArray(a []string, s string) bool {
	for _, v := range a {
		if v == s {
			return true
		}
	}
	return false
}
