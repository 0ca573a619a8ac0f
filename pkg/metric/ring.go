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
package metric

import "github.com/foldmesh/spatialcost/pkg/algebra"

// RingMetric implements ring_metric(n): the hop distance on a 1-D ring of
// length n, min((src − dst) mod n, (dst − src) mod n). n must be positive;
// n=1 collapses every pair to distance 0.
func RingMetric(ctx *algebra.Context, n int64, dstName, srcName string) (algebra.PwAff, error) {
	if n <= 0 {
		return algebra.PwAff{}, algebra.NewError("ring_metric", algebra.Domain, "ring length n must be positive, got %d", n)
	}

	domain := algebra.NewSpace(nil, []string{dstName, srcName}, nil)

	fwd := algebra.Mod{A: algebra.Sub{A: algebra.Var{Name: srcName}, B: algebra.Var{Name: dstName}}, N: n}
	bwd := algebra.Mod{A: algebra.Sub{A: algebra.Var{Name: dstName}, B: algebra.Var{Name: srcName}}, N: n}

	piece := algebra.AffPiece{Value: algebra.Min{A: fwd, B: bwd}}

	return algebra.NewPwAff(ctx, domain, piece), nil
}
