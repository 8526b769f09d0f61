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

// Package larray provides dense numeric arrays with named, labeled axes.
// Cells can be marked as holding no value, which is tracked separately
// from the data so that it is never confused with zero or mixed in as NaN.
package larray

import (
	"fmt"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// Axis is a named, ordered set of unique labels.
type Axis struct {
	Name   string
	Labels []string
}

// Len returns the number of labels on the axis.
func (ax Axis) Len() int { return len(ax.Labels) }

func (ax Axis) copy() Axis {
	return Axis{Name: ax.Name, Labels: append([]string(nil), ax.Labels...)}
}

// Array is a dense float64 array with named axes. An Array is never
// modified once it has been returned; every operation returns a new one.
// An Array with no axes is a scalar.
type Array struct {
	axes  []Axis
	pos   []map[string]int // label position on each axis
	data  *sparse.DenseArray
	valid []bool // nil when every cell holds a value
}

// Selection restricts named axes to subsets of their labels. Axes that
// are not named are selected in full.
type Selection map[string][]string

// New creates an array with the given axes. values are in row-major order
// with the last axis varying fastest; if values is nil the array is
// filled with zeros.
func New(axes []Axis, values []float64) (*Array, error) {
	return NewMasked(axes, values, nil)
}

// NewMasked is like New, but cells for which valid is false hold no value.
// A nil valid means every cell holds a value.
func NewMasked(axes []Axis, values []float64, valid []bool) (*Array, error) {
	a, err := newArray(axes)
	if err != nil {
		return nil, err
	}
	if values != nil {
		if len(values) != a.Size() {
			return nil, mismatch("new", "%d values for %d cells", len(values), a.Size())
		}
		copy(a.data.Elements, values)
	}
	if valid != nil {
		if len(valid) != a.Size() {
			return nil, mismatch("new", "%d validity flags for %d cells", len(valid), a.Size())
		}
		a.valid = append([]bool(nil), valid...)
		a.compact()
	}
	return a, nil
}

// Zeros creates a zero-filled array with the given axes.
func Zeros(axes ...Axis) (*Array, error) {
	return New(axes, nil)
}

// Scalar returns an array with no axes holding v.
func Scalar(v float64) *Array {
	a := blank(nil)
	a.data.Elements[0] = v
	return a
}

func newArray(axes []Axis) (*Array, error) {
	names := make(map[string]bool, len(axes))
	for i, ax := range axes {
		if ax.Name == "" {
			return nil, fmt.Errorf("larray: axis %d has no name", i)
		}
		if names[ax.Name] {
			return nil, fmt.Errorf("larray: duplicate axis %q", ax.Name)
		}
		names[ax.Name] = true
		seen := make(map[string]bool, len(ax.Labels))
		for _, l := range ax.Labels {
			if seen[l] {
				return nil, fmt.Errorf("larray: duplicate label %q on axis %q", l, ax.Name)
			}
			seen[l] = true
		}
	}
	cp := make([]Axis, len(axes))
	for i, ax := range axes {
		cp[i] = ax.copy()
	}
	return blank(cp), nil
}

// blank allocates a zeroed array. axes must already be valid and are
// not copied.
func blank(axes []Axis) *Array {
	a := &Array{axes: axes, pos: make([]map[string]int, len(axes))}
	shape := make([]int, len(axes))
	for i, ax := range axes {
		a.pos[i] = make(map[string]int, len(ax.Labels))
		for j, l := range ax.Labels {
			a.pos[i][l] = j
		}
		shape[i] = len(ax.Labels)
	}
	if len(shape) == 0 {
		// Scalars are stored as a one-element array.
		a.data = sparse.ZerosDense(1)
	} else {
		a.data = sparse.ZerosDense(shape...)
	}
	return a
}

// Axes returns a copy of the array's axes.
func (a *Array) Axes() []Axis { return a.copyAxes() }

// AxisNames returns the axis names in order.
func (a *Array) AxisNames() []string {
	names := make([]string, len(a.axes))
	for i, ax := range a.axes {
		names[i] = ax.Name
	}
	return names
}

// HasAxis reports whether the array has an axis with the given name.
func (a *Array) HasAxis(name string) bool { return a.axisIndex(name) >= 0 }

// Labels returns a copy of the labels on the named axis.
func (a *Array) Labels(axis string) ([]string, error) {
	i := a.axisIndex(axis)
	if i < 0 {
		return nil, &AxisNotFoundError{Axis: axis}
	}
	return append([]string(nil), a.axes[i].Labels...), nil
}

// HasLabel reports whether label is on the named axis.
func (a *Array) HasLabel(axis, label string) bool {
	i := a.axisIndex(axis)
	if i < 0 {
		return false
	}
	_, ok := a.pos[i][label]
	return ok
}

// Shape returns the number of labels on each axis.
func (a *Array) Shape() []int { return a.shape() }

// Size returns the number of cells in the array.
func (a *Array) Size() int { return len(a.data.Elements) }

// Values returns a copy of the cell values in row-major order. Cells
// that hold no value are reported as zero; use Valid to tell them apart.
func (a *Array) Values() []float64 {
	out := make([]float64, a.Size())
	for i, v := range a.data.Elements {
		if a.isValid(i) {
			out[i] = v
		}
	}
	return out
}

// Valid returns whether each cell, in row-major order, holds a value.
func (a *Array) Valid() []bool {
	out := make([]bool, a.Size())
	for i := range out {
		out[i] = a.isValid(i)
	}
	return out
}

// Missing returns the number of cells that hold no value.
func (a *Array) Missing() int {
	n := 0
	for _, v := range a.valid {
		if !v {
			n++
		}
	}
	return n
}

// At returns the value at the given labels, one per axis in axis order.
// ok is false if the cell holds no value.
func (a *Array) At(labels ...string) (v float64, ok bool, err error) {
	if len(labels) != len(a.axes) {
		return 0, false, mismatch("at", "%d labels for %d axes", len(labels), len(a.axes))
	}
	idx := make([]int, len(labels))
	for i, l := range labels {
		p, ok := a.pos[i][l]
		if !ok {
			return 0, false, &LabelNotFoundError{Axis: a.axes[i].Name, Label: l}
		}
		idx[i] = p
	}
	if !a.isValid(a.offset(idx)) {
		return 0, false, nil
	}
	return a.get(idx), true, nil
}

// Each calls f for every cell in row-major order with the cell's labels,
// one per axis, and its value. ok is false if the cell holds no value.
// labels is reused between calls.
func (a *Array) Each(f func(labels []string, v float64, ok bool)) {
	labels := make([]string, len(a.axes))
	a.cells(func(idx []int, off int) {
		for i, p := range idx {
			labels[i] = a.axes[i].Labels[p]
		}
		f(labels, a.data.Elements[off], a.isValid(off))
	})
}

// Equal reports whether b has the same axes in the same order, the same
// missing cells, and the same values in every other cell.
func (a *Array) Equal(b *Array) bool {
	if len(a.axes) != len(b.axes) {
		return false
	}
	for i, ax := range a.axes {
		bx := b.axes[i]
		if ax.Name != bx.Name || len(ax.Labels) != len(bx.Labels) {
			return false
		}
		for j, l := range ax.Labels {
			if bx.Labels[j] != l {
				return false
			}
		}
	}
	for i, v := range a.data.Elements {
		if a.isValid(i) != b.isValid(i) {
			return false
		}
		if a.isValid(i) && v != b.data.Elements[i] {
			return false
		}
	}
	return true
}

// Select returns the sub-array restricted to labels on axis, in the
// order given. The other axes are unchanged.
func (a *Array) Select(axis string, labels ...string) (*Array, error) {
	i := a.axisIndex(axis)
	if i < 0 {
		return nil, &AxisNotFoundError{Axis: axis}
	}
	positions, err := a.positions(i, labels)
	if err != nil {
		return nil, err
	}
	axes := a.copyAxes()
	axes[i].Labels = append([]string(nil), labels...)
	out := blank(axes)
	src := make([]int, len(axes))
	out.fill(a, func(idx []int) []int {
		copy(src, idx)
		src[i] = positions[idx[i]]
		return src
	})
	return out, nil
}

// Multiply returns the elementwise product of a and b. See Add for the
// alignment rules.
func (a *Array) Multiply(b *Array) (*Array, error) {
	return a.binary("multiply", b, func(x, y float64) (float64, bool) { return x * y, true })
}

// Divide returns the elementwise quotient of a and b. Cells where the
// divisor is zero or holds no value hold no value.
func (a *Array) Divide(b *Array) (*Array, error) {
	return a.binary("divide", b, func(x, y float64) (float64, bool) {
		if y == 0 {
			return 0, false
		}
		return x / y, true
	})
}

// Add returns the elementwise sum of a and b. The arrays must have the
// same axis names, in any order; cells are matched by label, not by
// position. On each axis the labels of one array must include all the
// labels of the other, and the result keeps the shared labels in the
// order they have in a.
func (a *Array) Add(b *Array) (*Array, error) {
	return a.binary("add", b, func(x, y float64) (float64, bool) { return x + y, true })
}

// Subtract returns the elementwise difference a - b. See Add for the
// alignment rules.
func (a *Array) Subtract(b *Array) (*Array, error) {
	return a.binary("subtract", b, func(x, y float64) (float64, bool) { return x - y, true })
}

func (a *Array) binary(op string, b *Array, f func(x, y float64) (float64, bool)) (*Array, error) {
	for _, ax := range b.axes {
		if a.axisIndex(ax.Name) < 0 {
			return nil, &AxisNotFoundError{Axis: ax.Name}
		}
	}
	n := len(a.axes)
	axes := make([]Axis, n)
	perm := make([]int, n) // axis of b matching each axis of a
	apos := make([][]int, n)
	bpos := make([][]int, n)
	for i, ax := range a.axes {
		j := b.axisIndex(ax.Name)
		if j < 0 {
			return nil, &AxisNotFoundError{Axis: ax.Name}
		}
		perm[i] = j
		var labels []string
		for p, l := range ax.Labels {
			if q, ok := b.pos[j][l]; ok {
				labels = append(labels, l)
				apos[i] = append(apos[i], p)
				bpos[i] = append(bpos[i], q)
			}
		}
		if len(labels) != len(ax.Labels) && len(labels) != len(b.axes[j].Labels) {
			return nil, mismatch(op, "labels on axis %q only partly overlap", ax.Name)
		}
		axes[i] = Axis{Name: ax.Name, Labels: labels}
	}
	out := blank(axes)
	valid := make([]bool, out.Size())
	ia, ib := make([]int, n), make([]int, n)
	out.cells(func(idx []int, off int) {
		for k, v := range idx {
			ia[k] = apos[k][v]
			ib[perm[k]] = bpos[k][v]
		}
		if !a.isValid(a.offset(ia)) || !b.isValid(b.offset(ib)) {
			return
		}
		if v, ok := f(a.get(ia), b.get(ib)); ok {
			out.set(v, idx)
			valid[off] = true
		}
	})
	out.valid = valid
	out.compact()
	return out, nil
}

// Sum returns the sum of a over the named axes, which are removed from
// the result. A result cell holds no value if any of the cells summed
// into it holds no value.
func (a *Array) Sum(axes ...string) (*Array, error) {
	drop := make([]bool, len(a.axes))
	for _, name := range axes {
		i := a.axisIndex(name)
		if i < 0 {
			return nil, &AxisNotFoundError{Axis: name}
		}
		drop[i] = true
	}
	var kept []Axis
	var keptDims []int
	for i, ax := range a.axes {
		if !drop[i] {
			kept = append(kept, ax.copy())
			keptDims = append(keptDims, i)
		}
	}
	out := blank(kept)
	dst := make([]int, len(kept))
	return out.accumulate(a, func(idx []int) []int {
		for k, i := range keptDims {
			dst[k] = idx[i]
		}
		return dst
	}), nil
}

// Regroup sums the labels on axis into groups. mapping gives the group
// of every label on the axis, and groups gives the output labels in
// order. Groups without members are zero.
func (a *Array) Regroup(axis string, mapping map[string]string, groups []string) (*Array, error) {
	const op = "regroup"
	i := a.axisIndex(axis)
	if i < 0 {
		return nil, &AxisNotFoundError{Axis: axis}
	}
	gpos := make(map[string]int, len(groups))
	for k, g := range groups {
		if _, ok := gpos[g]; ok {
			return nil, fmt.Errorf("larray: duplicate group %q", g)
		}
		gpos[g] = k
	}
	target := make([]int, len(a.axes[i].Labels))
	for p, l := range a.axes[i].Labels {
		g, ok := mapping[l]
		if !ok {
			return nil, mismatch(op, "label %q on axis %q has no group", l, axis)
		}
		k, ok := gpos[g]
		if !ok {
			return nil, mismatch(op, "label %q maps to unknown group %q", l, g)
		}
		target[p] = k
	}
	axes := a.copyAxes()
	axes[i].Labels = append([]string(nil), groups...)
	out := blank(axes)
	dst := make([]int, len(axes))
	return out.accumulate(a, func(idx []int) []int {
		copy(dst, idx)
		dst[i] = target[idx[i]]
		return dst
	}), nil
}

// SetAll returns an array with the same axes as a and every cell set to v.
func (a *Array) SetAll(v float64) *Array {
	out := blank(a.copyAxes())
	for i := range out.data.Elements {
		out.data.Elements[i] = v
	}
	return out
}

// Assign returns a copy of a in which the cells matched by sel are
// replaced by the cells of value. Every axis of value must be an axis of
// a, and on each such axis value must have exactly the selected labels
// (in any order). value is broadcast along the axes it does not have.
func (a *Array) Assign(sel Selection, value *Array) (*Array, error) {
	const op = "assign"
	for name := range sel {
		if a.axisIndex(name) < 0 {
			return nil, &AxisNotFoundError{Axis: name}
		}
	}
	n := len(a.axes)
	box := make([][]int, n)
	bshape := make([]int, n)
	for i, ax := range a.axes {
		labels, ok := sel[ax.Name]
		if !ok {
			labels = ax.Labels
		}
		p, err := a.positions(i, labels)
		if err != nil {
			return nil, err
		}
		box[i] = p
		bshape[i] = len(p)
	}
	vaxis := make([]int, n) // axis of value for each axis of a, or -1
	for i := range vaxis {
		vaxis[i] = -1
	}
	for j, ax := range value.axes {
		i := a.axisIndex(ax.Name)
		if i < 0 {
			return nil, mismatch(op, "value axis %q is not an axis of the destination", ax.Name)
		}
		if len(ax.Labels) != len(box[i]) {
			return nil, mismatch(op, "axis %q: value has %d labels but %d are selected",
				ax.Name, len(ax.Labels), len(box[i]))
		}
		vaxis[i] = j
	}
	vpos := make([][]int, n)
	for i, j := range vaxis {
		if j < 0 {
			continue
		}
		vpos[i] = make([]int, len(box[i]))
		for k, p := range box[i] {
			l := a.axes[i].Labels[p]
			q, ok := value.pos[j][l]
			if !ok {
				return nil, mismatch(op, "label %q on axis %q is selected but not in value",
					l, a.axes[i].Name)
			}
			vpos[i][k] = q
		}
	}
	out := a.clone()
	if out.valid == nil && value.valid != nil {
		out.valid = make([]bool, out.Size())
		for i := range out.valid {
			out.valid[i] = true
		}
	}
	ia, iv := make([]int, n), make([]int, len(value.axes))
	eachIndex(bshape, func(idx []int) {
		for i, k := range idx {
			ia[i] = box[i][k]
			if j := vaxis[i]; j >= 0 {
				iv[j] = vpos[i][k]
			}
		}
		oa := out.offset(ia)
		out.data.Elements[oa] = value.get(iv)
		if out.valid != nil {
			out.valid[oa] = value.isValid(value.offset(iv))
		}
	})
	out.compact()
	return out, nil
}

// Expand returns a with a new last axis carrying the given labels; every
// slice along the new axis is a copy of a.
func (a *Array) Expand(axis string, labels ...string) (*Array, error) {
	if a.axisIndex(axis) >= 0 {
		return nil, mismatch("expand", "axis %q already exists", axis)
	}
	tmp, err := newArray(append(a.copyAxes(), Axis{Name: axis, Labels: labels}))
	if err != nil {
		return nil, err
	}
	n := len(a.axes)
	tmp.fill(a, func(idx []int) []int { return idx[:n] })
	return tmp, nil
}

// HoldAt returns an array with the same axes as a in which every slice
// along axis is a copy of the slice at label.
func (a *Array) HoldAt(axis, label string) (*Array, error) {
	i := a.axisIndex(axis)
	if i < 0 {
		return nil, &AxisNotFoundError{Axis: axis}
	}
	p, ok := a.pos[i][label]
	if !ok {
		return nil, &LabelNotFoundError{Axis: axis, Label: label}
	}
	out := blank(a.copyAxes())
	src := make([]int, len(a.axes))
	out.fill(a, func(idx []int) []int {
		copy(src, idx)
		src[i] = p
		return src
	})
	return out, nil
}

// FillMissing returns a copy of a in which cells that hold no value are
// set to v.
func (a *Array) FillMissing(v float64) *Array {
	out := a.clone()
	for i := range out.data.Elements {
		if !a.isValid(i) {
			out.data.Elements[i] = v
		}
	}
	out.valid = nil
	return out
}

// Round returns a copy of a with every value rounded to the given number
// of decimal places.
func (a *Array) Round(decimals int) *Array {
	out := a.clone()
	for i, v := range out.data.Elements {
		if a.isValid(i) {
			out.data.Elements[i] = scalar.Round(v, decimals)
		}
	}
	return out
}

// Total returns the sum of all cells. ok is false if any cell holds no
// value.
func (a *Array) Total() (v float64, ok bool) {
	if a.Missing() > 0 {
		return 0, false
	}
	return floats.Sum(a.data.Elements), true
}

func (a *Array) axisIndex(name string) int {
	for i, ax := range a.axes {
		if ax.Name == name {
			return i
		}
	}
	return -1
}

// positions returns the positions of labels on axis i.
func (a *Array) positions(i int, labels []string) ([]int, error) {
	p := make([]int, len(labels))
	seen := make(map[string]bool, len(labels))
	for k, l := range labels {
		q, ok := a.pos[i][l]
		if !ok {
			return nil, &LabelNotFoundError{Axis: a.axes[i].Name, Label: l}
		}
		if seen[l] {
			return nil, fmt.Errorf("larray: label %q selected twice on axis %q", l, a.axes[i].Name)
		}
		seen[l] = true
		p[k] = q
	}
	return p, nil
}

func (a *Array) copyAxes() []Axis {
	out := make([]Axis, len(a.axes))
	for i, ax := range a.axes {
		out[i] = ax.copy()
	}
	return out
}

func (a *Array) shape() []int {
	s := make([]int, len(a.axes))
	for i, ax := range a.axes {
		s[i] = len(ax.Labels)
	}
	return s
}

func (a *Array) isValid(i int) bool { return a.valid == nil || a.valid[i] }

// compact drops the validity mask if every cell holds a value.
func (a *Array) compact() {
	for _, v := range a.valid {
		if !v {
			return
		}
	}
	a.valid = nil
}

func (a *Array) clone() *Array {
	out := blank(a.copyAxes())
	copy(out.data.Elements, a.data.Elements)
	if a.valid != nil {
		out.valid = append([]bool(nil), a.valid...)
	}
	return out
}

// index returns idx as an index into a's data. Scalars are stored as a
// one-element array.
func (a *Array) index(idx []int) []int {
	if len(a.axes) == 0 {
		return []int{0}
	}
	return idx
}

func (a *Array) offset(idx []int) int { return a.data.Index1d(a.index(idx)...) }

func (a *Array) get(idx []int) float64 { return a.data.Get(a.index(idx)...) }

func (a *Array) set(v float64, idx []int) { a.data.Set(v, a.index(idx)...) }

// cells calls f with the index and flat offset of every cell of a in
// row-major order.
func (a *Array) cells(f func(idx []int, off int)) {
	n := len(a.axes)
	for off := range a.data.Elements {
		f(a.data.IndexNd(off)[:n], off)
	}
}

// eachIndex calls f with every index of shape in row-major order.
func eachIndex(shape []int, f func(idx []int)) {
	if len(shape) == 0 {
		f(nil)
		return
	}
	box := sparse.ZerosDense(shape...)
	for off := range box.Elements {
		f(box.IndexNd(off))
	}
}

// fill sets every cell of a, which must be blank, from src. srcIndex
// maps an index of a to an index of src.
func (a *Array) fill(src *Array, srcIndex func(idx []int) []int) {
	var valid []bool
	if src.valid != nil {
		valid = make([]bool, a.Size())
	}
	a.cells(func(idx []int, off int) {
		s := srcIndex(idx)
		a.set(src.get(s), idx)
		if valid != nil {
			valid[off] = src.valid[src.offset(s)]
		}
	})
	a.valid = valid
	a.compact()
}

// accumulate adds every cell of src into a. dstIndex maps an index of
// src to an index of a.
func (a *Array) accumulate(src *Array, dstIndex func(idx []int) []int) *Array {
	var missing []bool
	if src.valid != nil {
		missing = make([]bool, a.Size())
	}
	src.cells(func(idx []int, off int) {
		d := dstIndex(idx)
		if !src.isValid(off) {
			missing[a.offset(d)] = true
			return
		}
		a.data.AddVal(src.data.Elements[off], a.index(d)...)
	})
	if missing != nil {
		a.valid = make([]bool, len(missing))
		for i, m := range missing {
			a.valid[i] = !m
			if m {
				a.data.Elements[i] = 0
			}
		}
		a.compact()
	}
	return a
}
