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
package analysis

import (
	"math/big"
	"sort"

	"github.com/foldmesh/spatialcost/pkg/algebra"
)

// CostModel selects how CostMeshCast charges a multicast network for the
// destinations it must reach. Only PairSum is implemented; the type exists so a
// future Steiner-tree charging model has somewhere to plug in without
// changing CostMeshCast's signature.
type CostModel uint8

const (
	// PairSum charges a network the sum, over every destination it
	// serves, of that destination's distance to the network's source —
	// the baseline left when the minimum-Steiner-tree alternative is
	// out of scope.
	PairSum CostModel = iota
)

// MulticastNetwork is one source's reach: the set of destinations it
// is the chosen supplier for, across every datum it was picked for.
type MulticastNetwork struct {
	Src  algebra.Point
	Dsts []algebra.Point
}

// buildDecisionRelation computes D: (Dst, Data) -> (val, Src...), val
// being the distance from Src to Dst for the given distance function.
// Ordering val before the Src coordinates is what lets Lexmin's existing
// lexicographic tie-break double as "closest source wins, ties broken by
// source coordinate order" without any change to the extrema machinery.
func buildDecisionRelation(ctx *algebra.Context, candidates algebra.Relation, dist algebra.PwAff) (algebra.Relation, error) {
	dstNames, _, srcNames, err := splitNames(candidates.Space())
	if err != nil {
		return algebra.Relation{}, err
	}

	dstArity := len(dstNames)

	pts, err := algebra.Points(candidates)
	if err != nil {
		return algebra.Relation{}, err
	}

	out := make([]algebra.Point, 0, len(pts))

	for _, p := range pts {
		dstPart := p.Coords[:dstArity]
		dataPart := p.Coords[dstArity : len(p.Coords)-len(srcNames)]
		srcPart := p.Coords[len(p.Coords)-len(srcNames):]

		env := make(map[string]*big.Int, len(dstNames)+len(srcNames))
		for i, n := range dstNames {
			env[n] = dstPart[i].Big()
		}

		for i, n := range srcNames {
			env[n] = srcPart[i].Big()
		}

		v, err := dist.Eval(env)
		if err != nil {
			return algebra.Relation{}, err
		}

		coords := make([]algebra.Value, 0, len(dstPart)+len(dataPart)+1+len(srcPart))
		coords = append(coords, dstPart...)
		coords = append(coords, dataPart...)
		coords = append(coords, v)
		coords = append(coords, srcPart...)

		out = append(out, algebra.Point{Coords: coords})
	}

	space := algebra.Space{
		Params: candidates.Space().Params, In: candidates.Space().In,
		Out:     append([]algebra.Dim{{Name: "dist"}}, namesToDims(srcNames)...),
		InSplit: candidates.Space().InSplit, OutSplit: -1,
	}

	return algebra.FromPoints(ctx, space, out), nil
}

func namesToDims(names []string) []algebra.Dim {
	dims := make([]algebra.Dim, len(names))
	for i, n := range names {
		dims[i] = algebra.Dim{Name: n}
	}

	return dims
}

// IdentifyMeshCasts implements identify_mesh_casts: picks, for every
// (destination, datum) pair, the single nearest source (lexmin breaking
// ties by source coordinate order), then groups the resulting assignments
// by source to produce each source's multicast network.
func IdentifyMeshCasts(ctx *algebra.Context, srcOcc, dstFill algebra.Relation, dist algebra.PwAff) ([]MulticastNetwork, error) {
	candidates, err := buildCandidates(srcOcc, dstFill)
	if err != nil {
		return nil, err
	}

	decision, err := buildDecisionRelation(ctx, candidates, dist)
	if err != nil {
		return nil, err
	}

	chosen, err := algebra.Lexmin(decision)
	if err != nil {
		return nil, err
	}

	dstNames, _, srcNames, err := splitNames(candidates.Space())
	if err != nil {
		return nil, err
	}

	dstArity := len(dstNames)
	srcArity := len(srcNames)

	pts, err := algebra.Points(chosen)
	if err != nil {
		return nil, err
	}

	networks := make(map[string]*MulticastNetwork)
	var order []string

	for _, p := range pts {
		dstPart := p.Coords[:dstArity]
		srcPart := p.Coords[len(p.Coords)-srcArity:]

		key := groupKey(srcPart)

		net, ok := networks[key]
		if !ok {
			net = &MulticastNetwork{Src: algebra.Point{Coords: append([]algebra.Value{}, srcPart...)}}
			networks[key] = net
			order = append(order, key)
		}

		net.Dsts = append(net.Dsts, algebra.Point{Coords: append([]algebra.Value{}, dstPart...)})
	}

	sort.Strings(order)

	out := make([]MulticastNetwork, 0, len(order))
	for _, key := range order {
		out = append(out, *networks[key])
	}

	return out, nil
}

// CostMeshCast implements cost_mesh_cast under the PairSum model: the sum,
// over every destination a network serves, of the distance from the
// network's source to that destination.
func CostMeshCast(net MulticastNetwork, dist algebra.PwAff, model CostModel, srcNames, dstNames []string) (int64, error) {
	if model != PairSum {
		return 0, algebra.NewError("cost_mesh_cast", algebra.Domain, "unsupported cost model %d", model)
	}

	var total int64

	for _, dst := range net.Dsts {
		env := make(map[string]*big.Int, len(srcNames)+len(dstNames))

		for i, n := range dstNames {
			env[n] = dst.Coords[i].Big()
		}

		for i, n := range srcNames {
			env[n] = net.Src.Coords[i].Big()
		}

		v, err := dist.Eval(env)
		if err != nil {
			return 0, err
		}

		total += algebra.ValToInt(v)
	}

	return total, nil
}
