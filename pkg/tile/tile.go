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

// Package tile constructs restriction relations that carve one data
// dimension into blocks indexed by one spatial dimension, and the
// replication relation that broadcasts a binding back out across a
// spatial axis. Neither rewrites any code; both are pure algebra,
// composed with a caller's occupancy or fill by intersect.
package tile

import "github.com/foldmesh/spatialcost/pkg/algebra"

// Tile constructs a relation over srcSpace (a spatial tuple of arity s
// mapping to a data tuple of arity d) whose sole constraints are
// n*axisDim <= dataDim and dataDim < n*axisDim + n, leaving every other
// dimension free. Its bounds map is empty on purpose: the piece stays
// unbounded until Intersect merges it with a concrete occupancy or fill,
// which is where the block actually gets pinned down to a finite range.
func Tile(ctx *algebra.Context, dataDim int, srcSpace algebra.Space, n int64, axisDim int) (algebra.Relation, error) {
	if axisDim < 0 || axisDim >= srcSpace.InArity() {
		return algebra.Relation{}, algebra.NewError("tile", algebra.Domain,
			"axis_dim %d out of range for spatial tuple of arity %d", axisDim, srcSpace.InArity())
	}

	if dataDim < 0 || dataDim >= srcSpace.OutArity() {
		return algebra.Relation{}, algebra.NewError("tile", algebra.Domain,
			"data_dim %d out of range for data tuple of arity %d", dataDim, srcSpace.OutArity())
	}

	if n <= 0 {
		return algebra.Relation{}, algebra.NewError("tile", algebra.Domain, "block width n must be positive, got %d", n)
	}

	axis := algebra.Var{Name: srcSpace.In[axisDim].Name}
	data := algebra.Var{Name: srcSpace.Out[dataDim].Name}

	lower := algebra.Constraint{
		Op:   algebra.GeOp,
		Expr: algebra.Sub{A: data, B: algebra.Scale{Coeff: n, A: axis}},
	}
	upper := algebra.Constraint{
		Op:   algebra.GeOp,
		Expr: algebra.Sub{A: algebra.Add{A: algebra.Scale{Coeff: n, A: axis}, B: algebra.Const{V: n - 1}}, B: data},
	}

	piece := algebra.Piece{Bounds: map[string]*algebra.Bound{}, Constraints: []algebra.Constraint{lower, upper}}

	return algebra.NewRelation(ctx, srcSpace, piece), nil
}

// Replicate broadcasts feature n times along feature's domain axis
// axisDim: for every (a, b) held by feature, the result holds (a', b) for
// every a' that agrees with a except at position axisDim, which ranges
// over 0..n-1. This is the left stub in the original generator; supplied
// here because a folding engine that creases a spatial axis needs its
// dual when it later multicasts a kept binding back out across that same
// axis.
func Replicate(feature algebra.Relation, n int64, axisDim int) (algebra.Relation, error) {
	space := feature.Space()

	if axisDim < 0 || axisDim >= space.InArity() {
		return algebra.Relation{}, algebra.NewError("replicate", algebra.Domain,
			"axis_dim %d out of range for domain tuple of arity %d", axisDim, space.InArity())
	}

	if n <= 0 {
		return algebra.Relation{}, algebra.NewError("replicate", algebra.Domain, "replica count n must be positive, got %d", n)
	}

	pts, err := algebra.Points(feature)
	if err != nil {
		return algebra.Relation{}, err
	}

	var out []algebra.Point

	for _, pt := range pts {
		for r := int64(0); r < n; r++ {
			coords := make([]algebra.Value, len(pt.Coords))
			copy(coords, pt.Coords)
			coords[axisDim] = algebra.NewValue(r)
			out = append(out, algebra.Point{Coords: coords})
		}
	}

	return algebra.FromPoints(feature.Context(), space, out), nil
}
