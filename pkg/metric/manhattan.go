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

// Package metric synthesizes piecewise-affine distance functions over the
// algebra package's term tree. The Manhattan metric is a single affine piece
// that sums Abs (a Max of the delta and its negation) over each axis delta.
package metric

import "github.com/foldmesh/spatialcost/pkg/algebra"

// ManhattanND implements manhattan_nd(src_names, dst_names): a
// piecewise-affine function over the wrapped pair (dst, src), each of
// arity k = len(srcNames) = len(dstNames), whose value is
// Σᵢ max(δᵢ, −δᵢ) for δᵢ = srcNames[i] − dstNames[i]. The polyhedral
// algebra underneath has no absolute-value primitive, so max(δ, −δ) is
// the only way to express it.
func ManhattanND(ctx *algebra.Context, dstNames, srcNames []string) (algebra.PwAff, error) {
	if len(dstNames) != len(srcNames) {
		return algebra.PwAff{}, algebra.NewError("manhattan_nd", algebra.Domain,
			"src_names and dst_names must have equal length, got %d and %d", len(srcNames), len(dstNames))
	}

	if len(dstNames) == 0 {
		return algebra.PwAff{}, algebra.NewError("manhattan_nd", algebra.Domain, "at least one dimension is required")
	}

	domainNames := append(append([]string{}, dstNames...), srcNames...)
	domain := algebra.NewSpace(nil, domainNames, nil)

	var terms []algebra.Expr

	for i := range dstNames {
		delta := algebra.Sub{A: algebra.Var{Name: srcNames[i]}, B: algebra.Var{Name: dstNames[i]}}
		terms = append(terms, algebra.Abs(delta))
	}

	piece := algebra.AffPiece{Value: algebra.Sum(terms...)}

	return algebra.NewPwAff(ctx, domain, piece), nil
}
