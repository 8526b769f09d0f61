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
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/landcarbon/carbonstock/larray"
	"go.uber.org/zap"
)

// Names of the model result variables and attributes read by NewContext.
const (
	VarStock                = "carbon_stock"
	VarLand                 = "land"
	VarDensity              = "carbon_density"
	VarCohortDensity        = "carbon_density_ac"
	VarForestryDensity      = "forestry_carbon_density_ac"
	VarForestryCohorts      = "forestry_ac"
	VarSecondaryCohorts     = "secdforest_ac"
	VarOtherCohorts         = "other_ac"
	VarTopSoilDensity       = "topsoil_carbon_density"
	VarSubSoilDensity       = "subsoil_carbon_density"
	VarSoilShare            = "soil_carbon_share"
	VarSoilOrganicMatter    = "som_pool"
	VarSoilReferenceDensity = "som_reference_density"

	// AttrSoilModel is "split" when soil carbon is modeled as separate
	// top and sub-soil pools.
	AttrSoilModel = "soil_model"
)

// A Source provides named model result variables.
type Source interface {
	// Lookup returns the named variable. ok is false, and err is nil,
	// if the source does not have the variable.
	Lookup(name string) (a *larray.Array, ok bool, err error)

	// Attribute returns a named metadata value. ok is false if the source
	// does not have it.
	Attribute(name string) (value string, ok bool)
}

// MemorySource is a Source backed by maps.
type MemorySource struct {
	Variables  map[string]*larray.Array
	Attributes map[string]string
}

// Lookup implements Source.
func (m *MemorySource) Lookup(name string) (*larray.Array, bool, error) {
	a, ok := m.Variables[name]
	return a, ok && a != nil, nil
}

// Attribute implements Source.
func (m *MemorySource) Attribute(name string) (string, bool) {
	v, ok := m.Attributes[name]
	return v, ok
}

// MissingInputError is returned when required model results are absent.
type MissingInputError struct {
	Variables []string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("carbonstock: missing required input(s): %s",
		strings.Join(e.Variables, ", "))
}

// Context holds the inputs for one carbon stock reconstruction. It is
// read but never modified.
type Context struct {
	// Stock is the modeled carbon stock over (j, t, land, c_pools).
	Stock *larray.Array

	// Land is the land area over (j, t, land).
	Land *larray.Array

	// Density is the carbon density over (j, t, land, c_pools). It is
	// required when densities are held fixed.
	Density *larray.Array

	// CohortArea and CohortDensity hold, for each age-class resolved land
	// type, the land area over (j, t, ac) and the carbon density over
	// (j, t, ac, c_pools). Either may carry further qualifier axes, which
	// are summed over.
	CohortArea, CohortDensity map[string]*larray.Array

	// TopSoilDensity and SubSoilDensity are the cropland soil carbon
	// density components over (j, t), used when SoilSplit is true.
	TopSoilDensity, SubSoilDensity *larray.Array

	// SoilSplit is true when soil carbon is modeled as separate top and
	// sub-soil pools.
	SoilSplit bool

	// SoilShare is the fraction of reference soil carbon retained, over
	// (j, t, land). Its presence means soil carbon is modeled dynamically.
	SoilShare *larray.Array

	// ReferenceYear is the time label that densities are held at.
	ReferenceYear string

	// Logger receives debug information. It may be nil.
	Logger *zap.Logger
}

// NewContext reads the inputs for a reconstruction from src. All missing
// required inputs are reported together in a *MissingInputError.
func NewContext(src Source, referenceYear string) (*Context, error) {
	e := new(errCat)
	ctx := &Context{
		ReferenceYear: referenceYear,
		CohortArea:    make(map[string]*larray.Array),
		CohortDensity: make(map[string]*larray.Array),
	}
	ctx.Stock = e.lookup(src, VarStock, true)
	ctx.Land = e.lookup(src, VarLand, true)
	ctx.Density = e.lookup(src, VarDensity, false)

	cohortDensity := e.lookup(src, VarCohortDensity, false)
	for land, name := range map[string]string{
		Forestry:        VarForestryCohorts,
		SecondaryForest: VarSecondaryCohorts,
		Other:           VarOtherCohorts,
	} {
		if a := e.lookup(src, name, false); a != nil {
			ctx.CohortArea[land] = a
		}
	}
	if cohortDensity != nil {
		ctx.CohortDensity[SecondaryForest] = cohortDensity
		ctx.CohortDensity[Other] = cohortDensity
	}
	if a := e.lookup(src, VarForestryDensity, false); a != nil {
		ctx.CohortDensity[Forestry] = a
	}

	ctx.TopSoilDensity = e.lookup(src, VarTopSoilDensity, false)
	ctx.SubSoilDensity = e.lookup(src, VarSubSoilDensity, false)
	if v, ok := src.Attribute(AttrSoilModel); ok && v == "split" {
		ctx.SoilSplit = true
	}

	ctx.SoilShare = e.lookup(src, VarSoilShare, false)
	if ctx.SoilShare == nil {
		som := e.lookup(src, VarSoilOrganicMatter, false)
		ref := e.lookup(src, VarSoilReferenceDensity, false)
		if som != nil && ref != nil && ctx.Land != nil {
			share, err := SoilCarbonShare(som, ref, ctx.Land)
			e.add(err)
			ctx.SoilShare = share
		}
	}
	if err := e.err(); err != nil {
		return nil, err
	}
	return ctx, nil
}

func (ctx *Context) logger() *zap.Logger {
	if ctx.Logger == nil {
		return zap.NewNop()
	}
	return ctx.Logger
}

func (ctx *Context) validate(fixDensity bool) error {
	e := new(errCat)
	if ctx.Stock == nil {
		e.missing = append(e.missing, VarStock)
	}
	if ctx.Land == nil {
		e.missing = append(e.missing, VarLand)
	}
	if fixDensity && ctx.Density == nil {
		e.missing = append(e.missing, VarDensity)
	}
	return e.err()
}

// The errCat type and methods collect errors while inputs are read so
// that they can be reported together instead of one at a time.
type errCat struct {
	missing []string
	errs    []error
}

func (e *errCat) add(err error) {
	if err != nil {
		e.errs = append(e.errs, err)
	}
}

func (e *errCat) lookup(src Source, name string, required bool) *larray.Array {
	a, ok, err := src.Lookup(name)
	if err != nil {
		e.add(fmt.Errorf("carbonstock: reading %s: %w", name, err))
		return nil
	}
	if !ok {
		if required {
			e.missing = append(e.missing, name)
		}
		return nil
	}
	return a
}

func (e *errCat) err() error {
	errs := e.errs
	if len(e.missing) > 0 {
		sort.Strings(e.missing)
		errs = append(errs, &MissingInputError{Variables: e.missing})
	}
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.Join(errs...)
	}
}
