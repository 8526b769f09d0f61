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

import "github.com/landcarbon/carbonstock/larray"

// CollapseCohorts returns area with the area of every cohort except the
// oldest moved into the youngest cohort, and the cohorts in between set
// to zero. The youngest and oldest cohorts are the first and last labels
// on axis. The total area is unchanged.
func CollapseCohorts(area *larray.Array, axis string) (*larray.Array, error) {
	labels, err := area.Labels(axis)
	if err != nil {
		return nil, err
	}
	if len(labels) < 2 {
		return area, nil
	}
	youngest := labels[0]
	sub, err := area.Select(axis, labels[:len(labels)-1]...)
	if err != nil {
		return nil, err
	}
	total, err := sub.Sum(axis)
	if err != nil {
		return nil, err
	}
	if total, err = total.Expand(axis, youngest); err != nil {
		return nil, err
	}
	out, err := area.Assign(larray.Selection{axis: {youngest}}, total)
	if err != nil {
		return nil, err
	}
	if len(labels) > 2 {
		return out.Assign(larray.Selection{axis: labels[1 : len(labels)-1]}, larray.Scalar(0))
	}
	return out, nil
}
