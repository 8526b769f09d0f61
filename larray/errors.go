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

package larray

import "fmt"

// AxisNotFoundError is returned when an operation names an axis that the
// array does not have.
type AxisNotFoundError struct {
	Axis string
}

func (e *AxisNotFoundError) Error() string {
	return fmt.Sprintf("larray: axis %q not found", e.Axis)
}

// LabelNotFoundError is returned when a selection names a label that is
// not on the given axis.
type LabelNotFoundError struct {
	Axis, Label string
}

func (e *LabelNotFoundError) Error() string {
	return fmt.Sprintf("larray: label %q not found on axis %q", e.Label, e.Axis)
}

// ShapeMismatchError is returned when two arrays, or an array and a
// selection, cannot be aligned.
type ShapeMismatchError struct {
	Op     string
	Reason string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("larray: %s: shape mismatch: %s", e.Op, e.Reason)
}

func mismatch(op, format string, args ...interface{}) error {
	return &ShapeMismatchError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
