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

// Package carbonstock calculates carbon stock indicators from the results
// of a land-use model. Stocks can be reconstructed under counterfactual
// assumptions (carbon densities held at a reference year, no regrowth of
// age-class resolved land) and rolled up from cells to regions.
package carbonstock

import (
	"fmt"

	"github.com/landcarbon/carbonstock/larray"
	"go.uber.org/zap"
)

// Axis names used by model result variables.
const (
	AxisLocation = "j"
	AxisTime     = "t"
	AxisLand     = "land"
	AxisPool     = "c_pools"
	AxisCohort   = "ac"
)

// Land types.
const (
	Crop            = "crop"
	Pasture         = "past"
	Forestry        = "forestry"
	PrimaryForest   = "primforest"
	SecondaryForest = "secdforest"
	Urban           = "urban"
	Other           = "other"
)

// Carbon pools.
const (
	Vegetation = "vegc"
	Litter     = "litc"
	Soil       = "soilc"
)

// DefaultReferenceYear is the time label whose carbon densities are used
// when densities are held fixed.
const DefaultReferenceYear = "y1995"

// cohortTypes are the land types that are resolved by age class.
var cohortTypes = []string{Forestry, SecondaryForest, Other}

func isCohortType(land string) bool { return isStringInArray(cohortTypes, land) }

// Options specify how the carbon stock indicator is calculated and
// reported.
type Options struct {
	// SumPools and SumLand specify whether to sum over the carbon pool
	// and land type axes.
	SumPools, SumLand bool

	// Level is the spatial level of the output. Output at the Cell level
	// is not aggregated.
	Level Level

	// FixClimate specifies whether carbon densities should be held at
	// their ReferenceYear values.
	FixClimate bool

	// ReferenceYear is the time label used when FixClimate is true.
	// It defaults to DefaultReferenceYear.
	ReferenceYear string

	// Regrowth specifies whether age-class resolved land keeps its
	// age structure. If false, all cohorts except the oldest are moved
	// into the youngest cohort.
	Regrowth bool

	// Aggregator rolls cells up to Level. It is required for any level
	// other than Cell.
	Aggregator Aggregator

	// Sink, if not nil, receives the final indicator.
	Sink Sink

	// Logger receives debug information. It defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultOptions returns the options for total carbon stock per cell with
// densities as modeled.
func DefaultOptions() Options {
	return Options{
		SumPools:      true,
		SumLand:       true,
		Level:         Cell,
		ReferenceYear: DefaultReferenceYear,
		Regrowth:      true,
	}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// CarbonStock reads model results from src and returns the carbon stock
// indicator specified by opts. Nothing is written to opts.Sink unless
// every step before it succeeds.
func CarbonStock(src Source, opts Options) (*larray.Array, error) {
	log := opts.logger()
	if opts.ReferenceYear == "" {
		opts.ReferenceYear = DefaultReferenceYear
	}
	ctx, err := NewContext(src, opts.ReferenceYear)
	if err != nil {
		return nil, err
	}
	ctx.Logger = log

	stock, err := ReconstructStock(ctx, opts.FixClimate, opts.Regrowth)
	if err != nil {
		return nil, err
	}
	out, err := Summarize(stock, opts.SumPools, opts.SumLand)
	if err != nil {
		return nil, err
	}
	if opts.Level != "" && opts.Level != Cell {
		if opts.Aggregator == nil {
			return nil, fmt.Errorf("carbonstock: output level %q requires an aggregator", opts.Level)
		}
		out, err = opts.Aggregator.Aggregate(out, opts.Level)
		if err != nil {
			return nil, fmt.Errorf("carbonstock: aggregating to %q: %w", opts.Level, err)
		}
	}
	if opts.Sink != nil {
		log.Debug("writing carbon stock", zap.Strings("axes", out.AxisNames()))
		if err = opts.Sink.Write(out); err != nil {
			return nil, fmt.Errorf("carbonstock: writing output: %w", err)
		}
	}
	return out, nil
}

// Summarize optionally sums stock over the carbon pool and land type axes.
func Summarize(stock *larray.Array, sumPools, sumLand bool) (*larray.Array, error) {
	var axes []string
	if sumPools {
		axes = append(axes, AxisPool)
	}
	if sumLand {
		axes = append(axes, AxisLand)
	}
	if len(axes) == 0 {
		return stock, nil
	}
	return stock.Sum(axes...)
}
