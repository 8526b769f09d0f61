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

// isStringInArray reports whether s is one of a.
func isStringInArray(a []string, s string) bool {
	for _, val := range a {
		if val == s {
			return true
		}
	}
	return false
}

// intersect returns the elements of a that are also in b, in the order
// they have in a.
func intersect(a, b []string) []string {
	var out []string
	for _, val := range a {
		if isStringInArray(b, val) {
			out = append(out, val)
		}
	}
	return out
}

// broadcast returns a expanded onto every axis of to that it lacks.
func broadcast(a, to *larray.Array) (*larray.Array, error) {
	for _, ax := range to.Axes() {
		if a.HasAxis(ax.Name) {
			continue
		}
		var err error
		if a, err = a.Expand(ax.Name, ax.Labels...); err != nil {
			return nil, err
		}
	}
	return a, nil
}
