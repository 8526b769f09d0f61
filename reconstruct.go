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

	"github.com/landcarbon/carbonstock/larray"
	"go.uber.org/zap"
)

// SoilPolicy specifies how soil carbon is calculated during a
// reconstruction.
type SoilPolicy int

const (
	// SimpleAggregatedSoil calculates soil carbon as density × area.
	SimpleAggregatedSoil SoilPolicy = iota

	// SplitTopSubSoil calculates cropland soil carbon as the sum of the
	// top and sub-soil densities × area.
	SplitTopSubSoil

	// DynamicCohortSoilShare scales soil carbon of land types that are
	// not resolved by age class by the retained soil carbon share, and
	// takes soil carbon of age-class resolved land from the cohort
	// densities.
	DynamicCohortSoilShare
)

func (p SoilPolicy) String() string {
	switch p {
	case SimpleAggregatedSoil:
		return "SimpleAggregatedSoil"
	case SplitTopSubSoil:
		return "SplitTopSubSoil"
	case DynamicCohortSoilShare:
		return "DynamicCohortSoilShare"
	default:
		return fmt.Sprintf("SoilPolicy(%d)", int(p))
	}
}

// ResolveSoilPolicy returns the soil policy supported by the inputs in ctx.
func ResolveSoilPolicy(ctx *Context) SoilPolicy {
	switch {
	case ctx.SoilShare != nil:
		return DynamicCohortSoilShare
	case ctx.SoilSplit && ctx.TopSoilDensity != nil && ctx.SubSoilDensity != nil:
		return SplitTopSubSoil
	default:
		return SimpleAggregatedSoil
	}
}

// ReconstructStock returns the carbon stock over (j, t, land, c_pools).
// If fixDensityAtReferenceYear is false, the modeled stock is returned
// unchanged. Otherwise the stock is recalculated from land areas and
// carbon densities held at ctx.ReferenceYear, and if allowRegrowth is
// false, age-class resolved land is kept in its youngest and oldest
// cohorts. Recalculated stocks are rounded to 3 decimal places.
func ReconstructStock(ctx *Context, fixDensityAtReferenceYear, allowRegrowth bool) (*larray.Array, error) {
	if err := ctx.validate(fixDensityAtReferenceYear); err != nil {
		return nil, err
	}
	if !fixDensityAtReferenceYear {
		return ctx.Stock, nil
	}
	r, err := newReconstruction(ctx, allowRegrowth)
	if err != nil {
		return nil, err
	}
	r.log.Debug("reconstructing carbon stock",
		zap.Stringer("soil", r.policy),
		zap.String("reference", r.reference),
		zap.Bool("regrowth", allowRegrowth))

	stock := ctx.Stock.SetAll(0)
	lands, err := stock.Labels(AxisLand)
	if err != nil {
		return nil, err
	}
	pools, err := stock.Labels(AxisPool)
	if err != nil {
		return nil, err
	}
	for _, land := range lands {
		var v *larray.Array
		if isCohortType(land) {
			v, err = r.cohortType(land, pools)
		} else {
			v, err = r.simpleType(land, pools)
		}
		if err != nil {
			return nil, fmt.Errorf("carbonstock: reconstructing %s: %w", land, err)
		}
		stock, err = stock.Assign(larray.Selection{AxisLand: {land}}, v)
		if err != nil {
			return nil, fmt.Errorf("carbonstock: reconstructing %s: %w", land, err)
		}
	}
	return stock.Round(3), nil
}

// reconstruction holds the densities of one ReconstructStock call after
// they have been held at the reference year.
type reconstruction struct {
	ctx       *Context
	log       *zap.Logger
	policy    SoilPolicy
	regrowth  bool
	reference string

	density          *larray.Array
	cohortDensity    map[string]*larray.Array
	topSoil, subSoil *larray.Array
}

func newReconstruction(ctx *Context, allowRegrowth bool) (*reconstruction, error) {
	r := &reconstruction{
		ctx:           ctx,
		log:           ctx.logger(),
		policy:        ResolveSoilPolicy(ctx),
		regrowth:      allowRegrowth,
		reference:     ctx.ReferenceYear,
		cohortDensity: make(map[string]*larray.Array, len(ctx.CohortDensity)),
	}
	if r.reference == "" {
		r.reference = DefaultReferenceYear
	}
	if ctx.SoilSplit && r.policy == SimpleAggregatedSoil {
		r.log.Debug("soil is split but top or sub-soil density is missing; " +
			"using aggregated soil density")
	}
	var err error
	if r.density, err = r.hold(ctx.Density); err != nil {
		return nil, err
	}
	for land, d := range ctx.CohortDensity {
		if r.cohortDensity[land], err = r.hold(d); err != nil {
			return nil, err
		}
	}
	if r.policy == SplitTopSubSoil {
		if r.topSoil, err = r.hold(ctx.TopSoilDensity); err != nil {
			return nil, err
		}
		if r.subSoil, err = r.hold(ctx.SubSoilDensity); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// hold holds a at the reference year. Arrays without a time axis are
// time-invariant and are repeated over every time step of the land area.
func (r *reconstruction) hold(a *larray.Array) (*larray.Array, error) {
	if a == nil {
		return nil, nil
	}
	if !a.HasAxis(AxisTime) {
		years, err := r.ctx.Land.Labels(AxisTime)
		if err != nil {
			return nil, err
		}
		return a.Expand(AxisTime, years...)
	}
	return a.HoldAt(AxisTime, r.reference)
}

// simpleType returns the stock of land as density × area, over
// (j, t, land, c_pools), with soil carbon calculated according to the
// soil policy.
func (r *reconstruction) simpleType(land string, pools []string) (*larray.Array, error) {
	area, err := r.ctx.Land.Select(AxisLand, land)
	if err != nil {
		return nil, err
	}
	d, err := r.density.Select(AxisLand, land)
	if err != nil {
		return nil, err
	}
	if d, err = d.Select(AxisPool, pools...); err != nil {
		return nil, err
	}
	a, err := area.Expand(AxisPool, pools...)
	if err != nil {
		return nil, err
	}
	out, err := d.Multiply(a)
	if err != nil {
		return nil, err
	}
	if !isStringInArray(pools, Soil) {
		return out, nil
	}
	soil, err := r.soil(land, area)
	if err != nil || soil == nil {
		return out, err
	}
	if soil, err = soil.Expand(AxisPool, Soil); err != nil {
		return nil, err
	}
	return out.Assign(larray.Selection{AxisPool: {Soil}}, soil)
}

// soil returns the soil carbon of land over (j, t, land) if the soil
// policy calculates it differently from density × area, and nil
// otherwise.
func (r *reconstruction) soil(land string, area *larray.Array) (*larray.Array, error) {
	switch r.policy {
	case SplitTopSubSoil:
		if land != Crop {
			return nil, nil
		}
		d, err := r.topSoil.Add(r.subSoil)
		if err != nil {
			return nil, err
		}
		if d, err = d.Expand(AxisLand, land); err != nil {
			return nil, err
		}
		return d.Multiply(area)
	case DynamicCohortSoilShare:
		if isCohortType(land) {
			return nil, nil
		}
		d, err := r.density.Select(AxisLand, land)
		if err != nil {
			return nil, err
		}
		if d, err = d.Select(AxisPool, Soil); err != nil {
			return nil, err
		}
		if d, err = d.Sum(AxisPool); err != nil {
			return nil, err
		}
		s, err := d.Multiply(area)
		if err != nil {
			return nil, err
		}
		if !r.ctx.SoilShare.HasLabel(AxisLand, land) {
			return s, nil
		}
		share, err := r.ctx.SoilShare.Select(AxisLand, land)
		if err != nil {
			return nil, err
		}
		// Cells without a share keep all of their soil carbon.
		return s.Multiply(share.FillMissing(1))
	default:
		return nil, nil
	}
}

// cohortType returns the stock of an age-class resolved land type. The
// vegetation and litter pools are the cohort density × cohort area summed
// over cohorts. Soil carbon is included in the cohort sum only under the
// dynamic soil policy.
func (r *reconstruction) cohortType(land string, pools []string) (*larray.Array, error) {
	out, err := r.simpleType(land, pools)
	if err != nil {
		return nil, err
	}
	area := r.ctx.CohortArea[land]
	dens := r.cohortDensity[land]
	if area == nil || dens == nil {
		r.log.Debug("no cohort data; using density × area", zap.String("land", land))
		return out, nil
	}
	if !r.regrowth {
		if area, err = CollapseCohorts(area, AxisCohort); err != nil {
			return nil, err
		}
	}

	densPools, err := dens.Labels(AxisPool)
	if err != nil {
		return nil, err
	}
	var cohortPools []string
	for _, p := range intersect(pools, densPools) {
		if p != Soil || r.policy == DynamicCohortSoilShare {
			cohortPools = append(cohortPools, p)
		}
	}
	if len(cohortPools) == 0 {
		return out, nil
	}
	d, err := dens.Select(AxisPool, cohortPools...)
	if err != nil {
		return nil, err
	}
	// Either table may have qualifier axes that the other lacks.
	a, err := broadcast(area, d)
	if err != nil {
		return nil, err
	}
	if d, err = broadcast(d, a); err != nil {
		return nil, err
	}
	s, err := d.Multiply(a)
	if err != nil {
		return nil, err
	}
	var extra []string
	for _, name := range s.AxisNames() {
		if name != AxisLocation && name != AxisTime && name != AxisPool {
			extra = append(extra, name)
		}
	}
	if s, err = s.Sum(extra...); err != nil {
		return nil, err
	}
	if s, err = s.Expand(AxisLand, land); err != nil {
		return nil, err
	}
	return out.Assign(larray.Selection{AxisPool: cohortPools}, s)
}
