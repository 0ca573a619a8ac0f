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

// AffPiece is one piece of a piecewise-affine function: a domain guard
// (Bounds/Constraints, same shape as a Relation Piece) plus the Expr that
// computes the value on that guard. Kept deliberately symbolic rather than
// materialized — a distance metric's domain is every integer pair until
// something bounds it, and forcing enumeration here would make
// n-dimensional Manhattan distance over an unbounded space fail before it
// ever gets composed with a concrete occupancy.
type AffPiece struct {
	Bounds      map[string]*Bound
	Constraints []Constraint
	Value       Expr
}

// PwAff is a partial function from a domain Space to ℤ, defined piecewise.
type PwAff struct {
	ctx    *Context
	domain Space
	pieces []AffPiece
}

// NewPwAff builds a piecewise-affine function from explicit pieces. Pieces
// are assumed domain-disjoint; Eval reports NotSingleton if more than one
// piece's guard holds for a given point.
func NewPwAff(ctx *Context, domain Space, pieces ...AffPiece) PwAff {
	return PwAff{ctx: ctx, domain: domain, pieces: pieces}
}

// Domain returns the argument space this function is defined over.
func (p PwAff) Domain() Space { return p.domain }

// Context returns the owning context.
func (p PwAff) Context() *Context { return p.ctx }

func pieceHoldsEnv(bounds map[string]*Bound, constraints []Constraint, env map[string]*big.Int) bool {
	for name, b := range bounds {
		v, ok := env[name]
		if !ok {
			continue
		}

		if b.Lo != nil && v.Cmp(b.Lo) < 0 {
			return false
		}

		if b.Hi != nil && v.Cmp(b.Hi) > 0 {
			return false
		}
	}

	for _, c := range constraints {
		if c.usePos {
			continue // structural position constraints don't apply to name-keyed Eval
		}

		if !c.holds(env, nil) {
			return false
		}
	}

	return true
}

// Eval implements eval(P, point): finds the piece whose guard the given
// named environment satisfies and evaluates its Expr. Per spec.md §9,
// a point satisfying more than one piece's guard is reported as
// NotSingleton rather than silently resolved by picking the first match —
// pieces are assumed domain-disjoint (see NewPwAff), so more than one
// match means the caller built an overlapping piecewise function.
func (p PwAff) Eval(env map[string]*big.Int) (Value, error) {
	var (
		match    *AffPiece
		matchIdx int
	)

	for i, piece := range p.pieces {
		if !pieceHoldsEnv(piece.Bounds, piece.Constraints, env) {
			continue
		}

		if match != nil {
			return Value{}, NewError("eval", NotSingleton,
				"point satisfies more than one piece's guard (pieces %d and %d)", matchIdx, i)
		}

		match, matchIdx = &p.pieces[i], i
	}

	if match == nil {
		return Value{}, NewError("eval", Domain, "point not in the domain of this piecewise-affine function")
	}

	return NewValueBig(match.Value.Eval(env)), nil
}

// EvalPoint is the Point-typed convenience form of Eval, binding
// Point.Coords positionally against Domain()'s dimension names.
func (p PwAff) EvalPoint(pt Point) (Value, error) {
	names := p.domain.dimNames()
	env := make(map[string]*big.Int, len(names))

	for i, name := range names {
		if i < len(pt.Coords) {
			env[name] = pt.Coords[i].Big()
		}
	}

	return p.Eval(env)
}

// ToPwQP implements the trivial pw_aff -> pw_qp conversion: an affine value
// is already a degree-1 quasi-polynomial.
func (p PwAff) ToPwQP() PwQP {
	pieces := make([]QPPiece, len(p.pieces))
	for i, ap := range p.pieces {
		pieces[i] = QPPiece{Bounds: ap.Bounds, Constraints: ap.Constraints, Value: ap.Value}
	}

	return PwQP{ctx: p.ctx, domain: p.domain, pieces: pieces}
}

// ToRelation materializes p over every point of dom, producing a Relation
// dom -> [val]. dom must already be finite and use the same dimension
// names as p.Domain(); this is the "trivial PwAff -> Relation conversion"
// spoken of wherever a caller needs to apply_range against a distance
// function instead of evaluating it pointwise.
func (p PwAff) ToRelation(dom Relation) (Relation, error) {
	pts, err := dom.points()
	if err != nil {
		return Relation{}, wrapOp("pw_aff_to_relation", err)
	}

	order := dom.space.dimNames()[dom.space.ParamArity():]

	var out []Tuple

	for _, t := range pts {
		env := make(map[string]*big.Int, len(order))
		for i, name := range order {
			env[name] = t[i]
		}

		v, err := p.Eval(env)
		if err != nil {
			return Relation{}, wrapOp("pw_aff_to_relation", err)
		}

		nt := append(t.clone(), v.Big())
		out = append(out, nt)
	}

	valSpace := Space{
		Params: dom.space.Params, In: dom.space.In, Out: []Dim{{Name: "val"}},
		InID: dom.space.InID, InSplit: dom.space.InSplit, OutSplit: -1,
	}

	return fromTuples(p.ctx, valSpace, out), nil
}
