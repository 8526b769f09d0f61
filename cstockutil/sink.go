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
	"os"
	"path/filepath"
	"strings"

	"github.com/landcarbon/carbonstock"
	"github.com/landcarbon/carbonstock/larray"
)

// FileSink is a carbonstock.Sink that writes the indicator to Path, as
// netCDF if Path ends in ".nc" and as a tab-separated table otherwise.
// The file is written to a temporary file in the same directory and then
// moved into place, so an existing file is never left half written.
type FileSink struct {
	Path string

	// Variable is the netCDF variable name. It defaults to
	// carbonstock.VarStock.
	Variable string

	// SI specifies whether table values are in kilograms instead of Mt C.
	SI bool
}

// Write implements carbonstock.Sink.
func (s *FileSink) Write(a *larray.Array) error {
	dir, base := filepath.Split(s.Path)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("cstockutil: unable to make output directory %s: %v", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return fmt.Errorf("cstockutil: creating output file: %v", err)
	}
	if err = s.write(tmp, a); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cstockutil: writing %s: %v", s.Path, err)
	}
	if err = os.Rename(tmp.Name(), s.Path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cstockutil: writing %s: %v", s.Path, err)
	}
	return nil
}

func (s *FileSink) write(f *os.File, a *larray.Array) error {
	if strings.EqualFold(filepath.Ext(s.Path), ".nc") {
		name := s.Variable
		if name == "" {
			name = carbonstock.VarStock
		}
		return WriteNetCDF(f, map[string]*larray.Array{name: a},
			map[string]string{"comment": "carbon stock indicator", "units": "Mt C"})
	}
	if _, err := carbonstock.NewTable(a, s.SI).Tabbed(f); err != nil {
		return fmt.Errorf("cstockutil: writing %s: %v", s.Path, err)
	}
	return nil
}
