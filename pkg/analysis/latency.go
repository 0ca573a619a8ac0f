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

// Package analysis answers the two aggregate communication-cost queries —
// worst-case latency and total jump count — and identifies the minimal
// source/destination pairings a mesh-cast topology would realize, all by
// composing the relation algebra rather than walking points by hand wherever
// the algebra can pose the question directly.
package analysis

import (
	"math/big"
	"sort"
	"strings"

	"github.com/foldmesh/spatialcost/pkg/algebra"
)

// buildCandidates computes the candidate-pairs relation (SpatialDst, Data)
// -> SpatialSrc: for every destination slot and the datum it requests, the
// sources that hold that exact datum. src_occ is composed backwards through
// its own reverse so the join key is Data, the same way a reverse and an
// apply_range chain any two relations through a shared intermediate tuple.
func buildCandidates(srcOcc, dstFill algebra.Relation) (algebra.Relation, error) {
	dstToData, err := algebra.RangeMap(dstFill) // (Dst, Data) -> Data
	if err != nil {
		return algebra.Relation{}, err
	}

	dataToSrc, err := algebra.Reverse(srcOcc) // Data -> Src
	if err != nil {
		return algebra.Relation{}, err
	}

	return algebra.ApplyRange(dstToData, dataToSrc) // (Dst, Data) -> Src
}

// splitNames returns the destination, data and source dimension-name
// sublists of a candidates-shaped relation's (Dst, Data) -> Src space.
func splitNames(space algebra.Space) (dst, data, src []string, err error) {
	if space.InSplit < 0 {
		return nil, nil, nil, algebra.NewError("analysis", algebra.InternalAlgebraError,
			"candidate relation's domain %s is not a wrapped (dst, data) pair", space)
	}

	dimNames := func(dims []algebra.Dim) []string {
		names := make([]string, len(dims))
		for i, d := range dims {
			names[i] = d.Name
		}

		return names
	}

	in := dimNames(space.In)
	dstArity := space.InSplit

	return in[:dstArity], in[dstArity:], dimNames(space.Out), nil
}

func groupKey(parts ...[]algebra.Value) string {
	var b strings.Builder

	for _, part := range parts {
		for _, v := range part {
			b.WriteString(v.Big().String())
			b.WriteByte(',')
		}
	}

	return b.String()
}

// minOverSources groups candidates by (dst, data) and keeps, for each
// group, the minimum distance among its candidate sources — the
// "min_over_sources(D)" step every Stage 3 query starts from. required
// supplies the full set of (dst, data) pairs the caller actually needs
// served; any pair with no candidate at all fails with Unbounded, matching
// "no source holds requested data".
func minOverSources(ctx *algebra.Context, candidates, required algebra.Relation, dist algebra.PwAff) (algebra.PwQP, error) {
	dstNames, dataNames, srcNames, err := splitNames(candidates.Space())
	if err != nil {
		return algebra.PwQP{}, err
	}

	dstArity, dataArity := len(dstNames), len(dataNames)

	pts, err := algebra.Points(candidates)
	if err != nil {
		return algebra.PwQP{}, err
	}

	type group struct {
		rep []algebra.Value
		min *big.Int
	}

	groups := make(map[string]*group)
	var order []string

	for _, p := range pts {
		dstPart := p.Coords[:dstArity]
		dataPart := p.Coords[dstArity : dstArity+dataArity]
		srcPart := p.Coords[dstArity+dataArity:]

		env := make(map[string]*big.Int, len(dstNames)+len(srcNames))
		for i, n := range dstNames {
			env[n] = dstPart[i].Big()
		}

		for i, n := range srcNames {
			env[n] = srcPart[i].Big()
		}

		v, err := dist.Eval(env)
		if err != nil {
			return algebra.PwQP{}, err
		}

		key := groupKey(dstPart, dataPart)

		if g, ok := groups[key]; ok {
			if v.Big().Cmp(g.min) < 0 {
				g.min = v.Big()
			}
		} else {
			rep := append(append([]algebra.Value{}, dstPart...), dataPart...)
			groups[key] = &group{rep: rep, min: v.Big()}
			order = append(order, key)
		}
	}

	reqPts, err := algebra.Points(required)
	if err != nil {
		return algebra.PwQP{}, err
	}

	for _, rp := range reqPts {
		key := groupKey(rp.Coords[:dstArity], rp.Coords[dstArity:dstArity+dataArity])
		if _, ok := groups[key]; !ok {
			return algebra.PwQP{}, algebra.NewError("analyze", algebra.Unbounded,
				"no source holds the data requested at %v", rp.Coords)
		}
	}

	sort.Strings(order)

	domainNames := append(append([]string{}, dstNames...), dataNames...)
	domain := algebra.NewSpace(nil, domainNames, nil)

	pieces := make([]algebra.QPPiece, 0, len(order))

	for _, key := range order {
		g := groups[key]
		bounds := make(map[string]*algebra.Bound, len(domainNames))

		for i, n := range domainNames {
			v := g.rep[i].Big()
			bounds[n] = &algebra.Bound{Lo: v, Hi: v}
		}

		pieces = append(pieces, algebra.QPPiece{Bounds: bounds, Value: algebra.Const{V: g.min.Int64()}})
	}

	return algebra.NewPwQP(ctx, domain, pieces...), nil
}

// AnalyzeLatency implements analyze_latency: the maximum, over every
// (destination, datum) pair, of the minimum hop distance from any source
// holding that datum — pw_qp_max(min_over_sources(D)), then val_to_int.
func AnalyzeLatency(ctx *algebra.Context, srcOcc, dstFill algebra.Relation, dist algebra.PwAff) (int64, error) {
	candidates, err := buildCandidates(srcOcc, dstFill)
	if err != nil {
		return 0, err
	}

	minQP, err := minOverSources(ctx, candidates, dstFill, dist)
	if err != nil {
		return 0, err
	}

	v, err := algebra.PwQPMax(minQP)
	if err != nil {
		return 0, err
	}

	return algebra.ValToInt(v), nil
}

// AnalyzeJumps implements analyze_jumps: the sum, over every destination,
// of the minimum hop distance to a source holding its requested datum —
// pw_qp_sum applied until the domain collapses to a point, then
// eval-at-origin, then val_to_int.
func AnalyzeJumps(ctx *algebra.Context, srcOcc, dstFill algebra.Relation, dist algebra.PwAff) (int64, error) {
	candidates, err := buildCandidates(srcOcc, dstFill)
	if err != nil {
		return 0, err
	}

	minQP, err := minOverSources(ctx, candidates, dstFill, dist)
	if err != nil {
		return 0, err
	}

	v, err := algebra.SumAll(minQP)
	if err != nil {
		return 0, err
	}

	return algebra.ValToInt(v), nil
}
