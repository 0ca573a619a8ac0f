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

import (
	"math/big"

	"github.com/foldmesh/spatialcost/pkg/util/bigint"
)

// CmpOp is the comparison a Constraint enforces.
type CmpOp uint8

const (
	// EqOp enforces Expr == 0.
	EqOp CmpOp = iota
	// GeOp enforces Expr >= 0.
	GeOp
)

// Constraint is one affine or modular inequality/equality cutting down a
// Piece's box. Most constraints are Expr-driven (evaluated against a
// name-keyed environment), but a handful of purely structural constraints —
// identity and equate — compare two tuple positions directly. Those use
// usePos instead, because identity(space) deliberately mirrors the same
// dimension names onto both the domain and range tuple (it is A -> A), and
// a name-keyed lookup cannot disambiguate "the domain's x" from "the
// range's x" once both are spelled the same.
type Constraint struct {
	Expr Expr
	Op   CmpOp

	usePos     bool
	posA, posB int
}

// equatePositions builds a structural equality constraint between two
// positions of the enumeration order (domain++range), bypassing name
// lookup.
func equatePositions(i, j int) Constraint {
	return Constraint{Op: EqOp, usePos: true, posA: i, posB: j}
}

func (c Constraint) holds(env map[string]*big.Int, tuple Tuple) bool {
	if c.usePos {
		return tuple[c.posA].Cmp(tuple[c.posB]) == 0
	}

	v := c.Expr.Eval(env)

	switch c.Op {
	case EqOp:
		return v.Sign() == 0
	case GeOp:
		return v.Sign() >= 0
	default:
		return false
	}
}

// Bound is a per-dimension finite or half/fully-open range. Lo/Hi nil means
// unbounded on that side.
type Bound struct {
	Lo, Hi *big.Int
}

func finiteBound(lo, hi int64) *Bound {
	return &Bound{Lo: big.NewInt(lo), Hi: big.NewInt(hi)}
}

func (b *Bound) isFinite() bool {
	return b != nil && b.Lo != nil && b.Hi != nil
}

// intersectBound tightens two bounds, taking the max of the lower bounds
// and the min of the upper bounds; nil on either side defers to the other.
// Delegates to pkg/util/bigint, which handles the nil-as-infinity arithmetic
// against pkg/util/math's InfInt.
func intersectBound(a, b *Bound) *Bound {
	if a == nil {
		return b
	}

	if b == nil {
		return a
	}

	lo, hi := bigint.IntersectRange(a.Lo, a.Hi, b.Lo, b.Hi)

	return &Bound{Lo: lo, Hi: hi}
}

// Tuple is a concrete point in a Space's full (Params++In++Out) coordinate
// order, though in practice Tuple values only ever carry the In++Out
// portion (parameters are resolved before enumeration, if used at all).
type Tuple []*big.Int

func (t Tuple) clone() Tuple {
	c := make(Tuple, len(t))
	for i, v := range t {
		c[i] = new(big.Int).Set(v)
	}

	return c
}

// Piece is one conjunctive clause of a Set/Relation: a box (required
// finite to enumerate) further cut by Constraints, or — for objects
// produced by composition rather than parsed from a string — an already
// materialized Points list. This is this module's stand-in for the
// polyhedral library's basic maps: see DESIGN.md "bounded enumeration"
// entry for why a true symbolic (unbounded, parametric) polyhedron
// representation is out of scope.
type Piece struct {
	Bounds      map[string]*Bound
	Constraints []Constraint
	Points      []Tuple
}

// enumerate expands a Piece to its concrete point list over the given
// dimension-name order (typically Space.In followed by Space.Out).
//
// A position tied to an earlier position by a usePos equate constraint
// (the same dimension name reused across a domain and range tuple, e.g.
// "{ [id,x,y] -> [id,y] }") is derived from that earlier position's chosen
// value instead of independently enumerated: this is what lets a relation
// that only renames/drops dimensions compose without ever needing its own
// finite bound on the reused names, matching how reusing a variable name
// across both sides of a set-builder mapping implies equality rather than
// introducing an unrelated, separately-ranging dimension.
func (p Piece) enumerate(cfg Config, order []string) ([]Tuple, error) {
	return p.enumerateSeeded(cfg, order, nil)
}

// enumerateSeeded is enumerate, but any dimension named in seed is fixed to
// its given value instead of requiring its own finite Bound. This is what
// lets ApplyRange compose through a relation whose domain is expressed
// purely in terms of the operand feeding it — a fold/collapse projection
// like "{ [id,x,y] -> [id,y] }" never carries a numeric bound on id, x or y
// of its own — by supplying the already-concrete values coming from the
// other side of the composition instead of demanding this piece enumerate
// its domain standalone.
func (p Piece) enumerateSeeded(cfg Config, order []string, seed map[string]*big.Int) ([]Tuple, error) {
	if p.Points != nil {
		if len(seed) == 0 {
			return p.Points, nil
		}

		nameIdx := make(map[string]int, len(order))
		for i, name := range order {
			nameIdx[name] = i
		}

		var out []Tuple

		for _, t := range p.Points {
			match := true

			for name, v := range seed {
				if i, ok := nameIdx[name]; ok && t[i].Cmp(v) != 0 {
					match = false
					break
				}
			}

			if match {
				out = append(out, t)
			}
		}

		return out, nil
	}

	derivedFrom := make([]int, len(order))
	for i := range derivedFrom {
		derivedFrom[i] = -1
	}

	for _, c := range p.Constraints {
		if !c.usePos {
			continue
		}

		switch {
		case c.posA < c.posB:
			derivedFrom[c.posB] = c.posA
		case c.posB < c.posA:
			derivedFrom[c.posA] = c.posB
		}
	}

	fixed := make([]*big.Int, len(order))
	for i, name := range order {
		if v, ok := seed[name]; ok {
			fixed[i] = v
		}
	}

	bounds := make([]*Bound, len(order))
	count := big.NewInt(1)

	for i, name := range order {
		if fixed[i] != nil {
			if b := p.Bounds[name]; b.isFinite() && (fixed[i].Cmp(b.Lo) < 0 || fixed[i].Cmp(b.Hi) > 0) {
				return nil, nil
			}

			continue
		}

		if derivedFrom[i] >= 0 {
			continue
		}

		b := p.Bounds[name]
		if !b.isFinite() {
			return nil, NewError("enumerate", Unbounded,
				"dimension %q has no finite bound", name)
		}

		bounds[i] = b
		span := new(big.Int).Sub(b.Hi, b.Lo)
		span.Add(span, big.NewInt(1))
		count.Mul(count, span)
	}

	if count.Sign() < 0 || !count.IsInt64() || uint64(count.Int64()) > cfg.maxEnumeration() {
		return nil, NewError("enumerate", Unbounded,
			"piece has more than MaxEnumeration=%d candidate points", cfg.maxEnumeration())
	}

	var (
		out []Tuple
		cur = make(Tuple, len(order))
	)

	var rec func(i int)
	rec = func(i int) {
		if i == len(order) {
			env := make(map[string]*big.Int, len(order))
			for j, name := range order {
				env[name] = cur[j]
			}

			for _, c := range p.Constraints {
				if !c.holds(env, cur) {
					return
				}
			}

			out = append(out, cur.clone())

			return
		}

		if fixed[i] != nil {
			cur[i] = fixed[i]
			rec(i + 1)

			return
		}

		if derivedFrom[i] >= 0 {
			cur[i] = cur[derivedFrom[i]]
			rec(i + 1)

			return
		}

		lo, hi := bounds[i].Lo, bounds[i].Hi
		v := new(big.Int).Set(lo)

		for v.Cmp(hi) <= 0 {
			cur[i] = v
			rec(i + 1)
			v = new(big.Int).Add(v, big.NewInt(1))
		}
	}

	rec(0)

	return out, nil
}

// Relation is a Set over the product space domain x range, or (when
// Space.Out is empty) a plain Set. A Set is the special case of a Relation
// with an empty range tuple; this module follows that literally rather
// than duplicating the type.
type Relation struct {
	ctx    *Context
	space  Space
	pieces []Piece
}

// Set is the Space.Out-empty specialization of Relation.
type Set = Relation

// Space returns the space of this object.
func (r Relation) Space() Space { return r.space }

// Context returns the owning context.
func (r Relation) Context() *Context { return r.ctx }

func newRelation(ctx *Context, space Space, pieces ...Piece) Relation {
	return Relation{ctx: ctx, space: space, pieces: pieces}
}

// fromTuples builds a materialized relation directly from concrete points,
// the representation every composition operation in ops.go produces.
func fromTuples(ctx *Context, space Space, tuples []Tuple) Relation {
	if len(tuples) == 0 {
		return newRelation(ctx, space, Piece{Points: []Tuple{}})
	}

	return newRelation(ctx, space, Piece{Points: tuples})
}

// points materializes every piece of r into one flat (deduplicated) tuple
// list in Space.In++Space.Out order.
func (r Relation) points() ([]Tuple, error) {
	order := r.space.dimNames()[r.space.ParamArity():]

	seen := make(map[string]bool)
	var out []Tuple

	for _, p := range r.pieces {
		ts, err := p.enumerate(r.ctx.cfg, order)
		if err != nil {
			return nil, err
		}

		for _, t := range ts {
			key := tupleKey(t)
			if !seen[key] {
				seen[key] = true
				out = append(out, t)
			}
		}
	}

	return out, nil
}

// pointsSeeded is points, but every piece is enumerated with the named
// dimensions in seed fixed to concrete values rather than requiring their
// own finite Bound. ApplyRange uses this to feed the second operand's
// domain from the first operand's already-concrete range, instead of
// requiring the second operand to be independently enumerable.
func (r Relation) pointsSeeded(seed map[string]*big.Int) ([]Tuple, error) {
	order := r.space.dimNames()[r.space.ParamArity():]

	seen := make(map[string]bool)
	var out []Tuple

	for _, p := range r.pieces {
		ts, err := p.enumerateSeeded(r.ctx.cfg, order, seed)
		if err != nil {
			return nil, err
		}

		for _, t := range ts {
			key := tupleKey(t)
			if !seen[key] {
				seen[key] = true
				out = append(out, t)
			}
		}
	}

	return out, nil
}

func tupleKey(t Tuple) string {
	b := make([]byte, 0, len(t)*4)

	for _, v := range t {
		b = append(b, v.String()...)
		b = append(b, ',')
	}

	return string(b)
}

// Identity implements identity(space): the diagonal relation In -> In,
// specialized to the case In and Out dims coincide positionally. When space
// itself describes a wrapped pair (space.InSplit >= 0, as a Wrap/RangeMap
// result does), the diagonal's Out inherits the same split so a caller can
// still Uncurry/Curry through the identity rather than losing the wrap.
func Identity(ctx *Context, space Space) Relation {
	ident := Space{
		Params: space.Params, In: space.In, Out: space.In, InID: space.InID, OutID: space.InID,
		InSplit: space.InSplit, OutSplit: space.InSplit,
	}
	return identityOver(ctx, ident)
}

func identityOver(ctx *Context, space Space) Relation {
	box := map[string]*Bound{}

	var constraints []Constraint

	inArity := len(space.In)
	for i := range space.In {
		constraints = append(constraints, equatePositions(i, inArity+i))
	}

	return newRelation(ctx, space, Piece{Bounds: box, Constraints: constraints})
}
