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

// Package cstockutil reads run configurations and model results for the
// carbon stock indicator and writes the indicator to files.
package cstockutil

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/landcarbon/carbonstock"
	"go.uber.org/zap"
)

// Config holds the configuration for one run of the carbon stock
// indicator.
type Config struct {
	// Input is the path to a netCDF file of model results.
	Input string

	// Output is the path the indicator is written to. Paths ending in
	// ".nc" are written as netCDF, anything else as a tab-separated
	// table. If empty, no file is written.
	Output string

	// Variable is the name of the output netCDF variable.
	Variable string

	// RegionMapping is the path to a CSV file assigning cells to regions.
	// It is required for any Level other than "cell".
	RegionMapping string

	// Level is the spatial level of the output: "cell", "reg", "glo" or
	// "regglo".
	Level string

	SumPools   bool
	SumLand    bool
	FixClimate bool
	Regrowth   bool

	// ReferenceYear is the time label that densities are held at when
	// FixClimate is true.
	ReferenceYear string

	// SI specifies whether table output is in kilograms instead of Mt C.
	SI bool
}

// DefaultConfig returns the configuration that fields missing from a
// configuration file default to.
func DefaultConfig() *Config {
	opts := carbonstock.DefaultOptions()
	return &Config{
		Variable:      carbonstock.VarStock,
		Level:         string(opts.Level),
		SumPools:      opts.SumPools,
		SumLand:       opts.SumLand,
		FixClimate:    opts.FixClimate,
		Regrowth:      opts.Regrowth,
		ReferenceYear: opts.ReferenceYear,
	}
}

// ReadConfigFile reads and checks the TOML configuration file at path.
func ReadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cstockutil: the configuration file you have specified, %v, "+
			"does not appear to exist. Please check the file name and location and "+
			"try again", path)
	}
	defer f.Close()
	cfg, err := ReadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%v (file %s)", err, path)
	}
	return cfg, nil
}

// ReadConfig reads and checks a TOML configuration from r. Environment
// variables in paths are expanded.
func ReadConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("cstockutil: there has been an error parsing the "+
			"configuration file: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("cstockutil: unknown configuration variables %s",
			strings.Join(keys, ", "))
	}
	for _, path := range []*string{&cfg.Input, &cfg.Output, &cfg.RegionMapping} {
		*path = os.ExpandEnv(*path)
	}
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) check() error {
	if cfg.Input == "" {
		return fmt.Errorf("cstockutil: configuration variable Input is required")
	}
	if cfg.Variable == "" {
		return fmt.Errorf("cstockutil: configuration variable Variable must not be empty")
	}
	switch carbonstock.Level(cfg.Level) {
	case carbonstock.Cell, carbonstock.Global:
	case carbonstock.Region, carbonstock.RegionGlobal:
		if cfg.RegionMapping == "" {
			return fmt.Errorf("cstockutil: Level %q requires a RegionMapping", cfg.Level)
		}
	default:
		return fmt.Errorf("cstockutil: invalid Level %q; valid levels are "+
			"cell, reg, glo and regglo", cfg.Level)
	}
	if cfg.FixClimate && cfg.ReferenceYear == "" {
		return fmt.Errorf("cstockutil: FixClimate requires a ReferenceYear")
	}
	return nil
}

// Options returns the indicator options specified by cfg. The region
// mapping, if any, is read from disk, and output goes to a FileSink
// when cfg.Output is set.
func (cfg *Config) Options(log *zap.Logger) (carbonstock.Options, error) {
	opts := carbonstock.Options{
		SumPools:      cfg.SumPools,
		SumLand:       cfg.SumLand,
		Level:         carbonstock.Level(cfg.Level),
		FixClimate:    cfg.FixClimate,
		ReferenceYear: cfg.ReferenceYear,
		Regrowth:      cfg.Regrowth,
		Logger:        log,
	}
	switch {
	case cfg.RegionMapping != "":
		m, err := ReadRegionMappingFile(cfg.RegionMapping)
		if err != nil {
			return opts, err
		}
		opts.Aggregator = m
	case opts.Level == carbonstock.Global:
		// Every cell belongs to the global total.
		opts.Aggregator = new(carbonstock.RegionMapping)
	}
	if cfg.Output != "" {
		opts.Sink = &FileSink{Path: cfg.Output, Variable: cfg.Variable, SI: cfg.SI}
	}
	return opts, nil
}
