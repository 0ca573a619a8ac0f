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

// Package fold implements the layered folding engine: a chain of Layers,
// each collapsing one geometric axis of a Binding's destinations onto a
// shared trunk, charging a crease cost for the collapse and a multicast
// cost for distributing the result, and handing the next layer whatever
// the current one could not satisfy.
package fold

import (
	"math/big"
	"sort"

	"github.com/foldmesh/spatialcost/pkg/algebra"
)

// Binding is where data currently lives (Srcs) and where it is needed
// (Dsts), each a relation from a binding-id space to the data it carries.
// Srcs and Dsts need not share a domain space: a layer's destinations
// still carry the geometric axes this layer is about to fold away, while
// its sources may already have been collapsed by an earlier layer.
type Binding struct {
	Srcs Relation
	Dsts Relation
}

// Relation is a type alias kept local to this package's exported surface
// so callers composing Bindings don't need to import the algebra package
// just to name the field type.
type Relation = algebra.Relation

// LayerSpec is the fixed configuration of one folding step: the five
// relation/quasi-polynomial objects the original format reads as strings
// per layer.
type LayerSpec struct {
	// CreaseCost charges each destination point for however much of its
	// geometry this layer is about to fold away, e.g. the offset from a
	// trunk.
	CreaseCost algebra.PwAff
	// Fold projects a destination point onto its trunk representative,
	// dropping the axis being creased.
	Fold algebra.Relation
	// MulticastCost charges each trunk point for distributing its datum
	// to every destination that folds onto it.
	MulticastCost algebra.PwAff
	// SrcCollapser rebases the next layer's binding-id space onto this
	// layer's source domain.
	SrcCollapser algebra.Relation
	// DstCollapser rebases the next layer's binding-id space onto this
	// layer's destination domain.
	DstCollapser algebra.Relation
}

// Layer evaluates one LayerSpec against a Binding.
type Layer struct {
	ctx  *algebra.Context
	spec LayerSpec
}

// NewLayer builds a Layer from a spec, evaluated against objects owned by
// ctx.
func NewLayer(ctx *algebra.Context, spec LayerSpec) Layer {
	return Layer{ctx: ctx, spec: spec}
}

// pointEnv binds names positionally against a point's coordinates.
func pointEnv(names []string, coords []algebra.Value) map[string]*big.Int {
	env := make(map[string]*big.Int, len(names))
	for i, n := range names {
		env[n] = coords[i].Big()
	}

	return env
}

func dimNames(dims []algebra.Dim) []string {
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = d.Name
	}

	return names
}

func pointKey(coords []algebra.Value) string {
	var b []byte
	for _, v := range coords {
		b = append(b, v.Big().String()...)
		b = append(b, ',')
	}

	return string(b)
}

// cardWeightedSum evaluates fn at every distinct domain point of r,
// weighting each by the number of range values r actually pairs it with
// (isl_map_card), and returns the total — the same card-then-multiply-
// then-sum shape the crease and multicast steps both use.
func cardWeightedSum(r algebra.Relation, fn algebra.PwAff) (int64, error) {
	cardQP, err := algebra.Card(r)
	if err != nil {
		return 0, err
	}

	pts, err := algebra.Points(r)
	if err != nil {
		return 0, err
	}

	names := dimNames(r.Space().In)
	inArity := len(names)

	seen := make(map[string]bool)

	var total int64

	for _, p := range pts {
		domainPart := p.Coords[:inArity]
		key := pointKey(domainPart)

		if seen[key] {
			continue
		}

		seen[key] = true

		env := pointEnv(names, domainPart)

		count, err := cardQP.Eval(env)
		if err != nil {
			return 0, err
		}

		val, err := fn.Eval(env)
		if err != nil {
			return 0, err
		}

		total += algebra.ValToInt(count) * algebra.ValToInt(val)
	}

	return total, nil
}

// fold implements the fold step: the crease cost of collapsing dsts onto
// the trunk, and the residual trunk->datum relation with dominated
// pre-images removed.
func (l Layer) fold(dsts algebra.Relation) (creaseCost int64, folded algebra.Relation, err error) {
	creaseCost, err = cardWeightedSum(dsts, l.spec.CreaseCost)
	if err != nil {
		return 0, algebra.Relation{}, err
	}

	dataToDsts, err := algebra.Reverse(dsts)
	if err != nil {
		return 0, algebra.Relation{}, err
	}

	dataToTrunk, err := algebra.ApplyRange(dataToDsts, l.spec.Fold)
	if err != nil {
		return 0, algebra.Relation{}, err
	}

	trunkToData, err := algebra.Reverse(dataToTrunk)
	if err != nil {
		return 0, algebra.Relation{}, err
	}

	condensed, err := dropDominated(trunkToData)
	if err != nil {
		return 0, algebra.Relation{}, err
	}

	return creaseCost, condensed, nil
}

// dropDominated implements "{[prefix,last] -> [prefix,last'] : last' >
// last}" composed against trunkToData and subtracted back out: for every
// (trunk, datum) pair, if some other trunk point sharing trunkToData's
// prefix coordinates but a strictly larger last coordinate reaches the
// same datum, the smaller one is dominated and dropped. What survives is
// exactly one maximal representative per datum per fold class.
func dropDominated(trunkToData algebra.Relation) (algebra.Relation, error) {
	space := trunkToData.Space()
	trunkArity := space.InArity()

	if trunkArity == 0 {
		return trunkToData, nil
	}

	pts, err := algebra.Points(trunkToData)
	if err != nil {
		return algebra.Relation{}, err
	}

	dataArity := space.OutArity()

	type entry struct {
		trunk []algebra.Value
		data  []algebra.Value
	}

	groups := make(map[string][]entry)
	var order []string

	for _, p := range pts {
		trunk := p.Coords[:trunkArity]
		data := p.Coords[trunkArity : trunkArity+dataArity]

		key := pointKey(append(append([]algebra.Value{}, trunk[:trunkArity-1]...), data...))
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}

		groups[key] = append(groups[key], entry{trunk: trunk, data: data})
	}

	sort.Strings(order)

	var out []algebra.Point

	for _, key := range order {
		entries := groups[key]

		best := entries[0]
		for _, e := range entries[1:] {
			if e.trunk[trunkArity-1].Big().Cmp(best.trunk[trunkArity-1].Big()) > 0 {
				best = e
			}
		}

		coords := append(append([]algebra.Value{}, best.trunk...), best.data...)
		out = append(out, algebra.Point{Coords: coords})
	}

	return algebra.FromPoints(trunkToData.Context(), space, out), nil
}

// multicast implements the multicast step: the cost of distributing every
// folded trunk point's data out to its destinations.
func (l Layer) multicast(folded algebra.Relation) (int64, error) {
	return cardWeightedSum(folded, l.spec.MulticastCost)
}

// collapse implements the collapse step: rebasing both sides of the
// binding into the next layer's binding-id space and subtracting what the
// sources already satisfy from what the destinations still need.
func (l Layer) collapse(srcs, dsts algebra.Relation) (Binding, error) {
	collapsedSrcs, err := algebra.ApplyRange(l.spec.SrcCollapser, srcs)
	if err != nil {
		return Binding{}, err
	}

	collapsedDsts, err := algebra.ApplyRange(l.spec.DstCollapser, dsts)
	if err != nil {
		return Binding{}, err
	}

	missing, err := algebra.Subtract(collapsedDsts, collapsedSrcs)
	if err != nil {
		return Binding{}, err
	}

	return Binding{Srcs: collapsedSrcs, Dsts: missing}, nil
}

// Evaluate implements evaluate(L, binding): folds the destinations,
// charges the multicast cost over the result, and collapses both sides of
// the binding for the next layer.
func (l Layer) Evaluate(b Binding) (cost int64, next Binding, err error) {
	creaseCost, folded, err := l.fold(b.Dsts)
	if err != nil {
		return 0, Binding{}, err
	}

	multicastCost, err := l.multicast(folded)
	if err != nil {
		return 0, Binding{}, err
	}

	next, err = l.collapse(b.Srcs, b.Dsts)
	if err != nil {
		return 0, Binding{}, err
	}

	return creaseCost + multicastCost, next, nil
}
