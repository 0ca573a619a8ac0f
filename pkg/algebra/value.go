// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package algebra

import "math/big"

// Value is a concrete integer, the terminal form extracted by eval. No
// third-party arbitrary-precision package covers this need (see DESIGN.md),
// so this wraps math/big directly, the same primitive pkg/util/math builds
// on.
type Value struct {
	v *big.Int
}

// NewValue wraps an int64 as a Value.
func NewValue(i int64) Value {
	return Value{v: big.NewInt(i)}
}

// NewValueBig wraps a *big.Int as a Value, copying it.
func NewValueBig(i *big.Int) Value {
	return Value{v: new(big.Int).Set(i)}
}

// ValToInt implements val_to_int: extracts the plain Go int64.
func ValToInt(v Value) int64 {
	return v.v.Int64()
}

// Big exposes the underlying big.Int (read-only use expected).
func (v Value) Big() *big.Int {
	return v.v
}

func (v Value) String() string {
	if v.v == nil {
		return "0"
	}

	return v.v.String()
}

// Point is a concrete integer tuple.
type Point struct {
	Coords []Value
}

// NewPoint builds a Point from int64 coordinates.
func NewPoint(coords ...int64) Point {
	vs := make([]Value, len(coords))
	for i, c := range coords {
		vs[i] = NewValue(c)
	}

	return Point{Coords: vs}
}

// origin returns the all-zero point of the given arity. Nothing calls it:
// SumAll evaluates its fully summed PwQP with an empty environment.
func origin(arity int) Point {
	coords := make([]Value, arity)
	for i := range coords {
		coords[i] = NewValue(0)
	}

	return Point{Coords: coords}
}
