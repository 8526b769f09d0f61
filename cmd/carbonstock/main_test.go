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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/landcarbon/carbonstock"
	"github.com/landcarbon/carbonstock/cstockutil"
	"github.com/landcarbon/carbonstock/larray"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	axes := []larray.Axis{
		{Name: carbonstock.AxisLocation, Labels: []string{"A"}},
		{Name: carbonstock.AxisTime, Labels: []string{"y1995", "y2000"}},
		{Name: carbonstock.AxisLand, Labels: []string{carbonstock.Crop}},
	}
	land, err := larray.New(axes, []float64{10, 12})
	if err != nil {
		t.Fatal(err)
	}
	stock, err := land.Expand(carbonstock.AxisPool, carbonstock.Vegetation)
	if err != nil {
		t.Fatal(err)
	}
	input := filepath.Join(dir, "results.nc")
	f, err := os.Create(input)
	if err != nil {
		t.Fatal(err)
	}
	err = cstockutil.WriteNetCDF(f, map[string]*larray.Array{
		carbonstock.VarStock: stock,
		carbonstock.VarLand:  land,
	}, nil)
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	config := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(config, []byte("Input = \""+input+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	Root.SetOut(&out)
	Root.SetArgs([]string{"run", "--config", config})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("have %d lines, want 3:\n%s", len(lines), out.String())
	}
	if f := strings.Fields(lines[2]); len(f) != 3 || f[1] != "y2000" || f[2] != "12" {
		t.Errorf("last line: %q", lines[2])
	}
}

func TestLabelErr(t *testing.T) {
	if labelErr(nil) != nil {
		t.Error("nil error labeled")
	}
	if err := labelErr(os.ErrNotExist); !strings.HasPrefix(err.Error(), "carbonstock: ") {
		t.Errorf("unlabeled error %v", err)
	}
}
