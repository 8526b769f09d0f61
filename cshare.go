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
)

// SoilCarbonShare returns the fraction of reference soil carbon that is
// retained: somPool / (referenceDensity × area). All three arrays are
// over (j, t, land). Cells with no reference stock hold no value.
func SoilCarbonShare(somPool, referenceDensity, area *larray.Array) (*larray.Array, error) {
	ref, err := referenceDensity.Multiply(area)
	if err != nil {
		return nil, fmt.Errorf("carbonstock: soil carbon share: %w", err)
	}
	share, err := somPool.Divide(ref)
	if err != nil {
		return nil, fmt.Errorf("carbonstock: soil carbon share: %w", err)
	}
	return share, nil
}
