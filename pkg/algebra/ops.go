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

// Copy returns a value equivalent to r that the caller may retain across a
// consuming call. Because every Relation here is an immutable value (Go
// structs, not C pointers into an isl_ctx arena), Copy is a cheap struct
// copy, not a deep clone.
func Copy(r Relation) Relation {
	return r
}

// Reverse implements reverse(R): A->B -> B->A.
func Reverse(r Relation) (Relation, error) {
	r.ctx.checkLive()

	pts, err := r.points()
	if err != nil {
		return Relation{}, wrapOp("reverse", err)
	}

	inArity, outArity := r.space.InArity(), r.space.OutArity()
	out := make([]Tuple, len(pts))

	for i, t := range pts {
		nt := make(Tuple, inArity+outArity)
		copy(nt, t[inArity:])
		copy(nt[outArity:], t[:inArity])
		out[i] = nt
	}

	newSpace := Space{
		Params: r.space.Params, In: r.space.Out, Out: r.space.In, InID: r.space.OutID, OutID: r.space.InID,
		InSplit: r.space.OutSplit, OutSplit: r.space.InSplit,
	}

	return fromTuples(r.ctx, newSpace, out), nil
}

// ApplyRange implements apply_range(R: A->B, S: B->C) -> A->C: relational
// composition, the workhorse of any multi-stage latency or jump analysis
// pipeline built on this package.
func ApplyRange(r, s Relation) (Relation, error) {
	r.ctx.checkLive()

	if !sameContext(r.ctx, s.ctx) {
		return Relation{}, NewError("apply_range", InternalAlgebraError, "operands belong to different contexts")
	}

	if r.space.OutArity() != s.space.InArity() || !dimsEqual(r.space.Out, s.space.In) {
		return Relation{}, NewError("apply_range", SpaceMismatch,
			"range of %s does not match domain of %s", r.space, s.space)
	}

	rpts, err := r.points()
	if err != nil {
		return Relation{}, wrapOp("apply_range", err)
	}

	aArity, bArity := r.space.InArity(), r.space.OutArity()
	cArity := s.space.OutArity()

	// s's domain is fed from r's already-concrete range rather than
	// enumerated on its own: a fold/collapse relation like
	// "{ [id,x,y] -> [id,y] }" never carries a numeric bound on its own
	// dimensions, so s.points() alone would report Unbounded even though
	// every value it needs is already known from r.
	sInNames := dimNamesOf(s.space.In)

	index := make(map[string][]Tuple)

	var out []Tuple

	for _, t := range rpts {
		aPart, bPart := t[:aArity], t[aArity:]

		key := tupleKey(bPart)

		cParts, cached := index[key]

		if !cached {
			seed := make(map[string]*big.Int, bArity)
			for i, name := range sInNames {
				seed[name] = bPart[i]
			}

			spts, err := s.pointsSeeded(seed)
			if err != nil {
				return Relation{}, wrapOp("apply_range", err)
			}

			cParts = make([]Tuple, len(spts))
			for i, st := range spts {
				cParts[i] = st[bArity:]
			}

			index[key] = cParts
		}

		for _, cPart := range cParts {
			nt := make(Tuple, aArity+cArity)
			copy(nt, aPart)
			copy(nt[aArity:], cPart)
			out = append(out, nt)
		}
	}

	newSpace := Space{
		Params: r.space.Params, In: r.space.In, Out: s.space.Out, InID: r.space.InID, OutID: s.space.OutID,
		InSplit: r.space.InSplit, OutSplit: s.space.OutSplit,
	}

	return fromTuples(r.ctx, newSpace, out), nil
}

// RangeProduct implements range_product(R: A->B, S: A->C) -> A->(B,C): the
// factored join on a shared domain used to build relations shaped like
// {[xd,yd] -> [[xd,yd]->[xs,ys]]}, pairing a destination with its own
// coordinates before pairing it again with a matched source.
func RangeProduct(r, s Relation) (Relation, error) {
	r.ctx.checkLive()

	if !r.space.domainSpace().Equal(s.space.domainSpace()) {
		return Relation{}, NewError("range_product", SpaceMismatch, "domains of %s and %s differ", r.space, s.space)
	}

	rpts, err := r.points()
	if err != nil {
		return Relation{}, wrapOp("range_product", err)
	}

	spts, err := s.points()
	if err != nil {
		return Relation{}, wrapOp("range_product", err)
	}

	aArity := r.space.InArity()
	bArity := r.space.OutArity()
	cArity := s.space.OutArity()

	sIndex := make(map[string][]Tuple)
	for _, t := range spts {
		sIndex[tupleKey(t[:aArity])] = append(sIndex[tupleKey(t[:aArity])], t[aArity:])
	}

	var out []Tuple

	for _, t := range rpts {
		aPart, bPart := t[:aArity], t[aArity:]

		for _, cPart := range sIndex[tupleKey(aPart)] {
			nt := make(Tuple, aArity+bArity+cArity)
			copy(nt, aPart)
			copy(nt[aArity:], bPart)
			copy(nt[aArity+bArity:], cPart)
			out = append(out, nt)
		}
	}

	newSpace := productSpace(r.space.In, r.space.InID, r.space.Params, r.space.Out, s.space.Out)
	newSpace.InSplit = r.space.InSplit

	return fromTuples(r.ctx, newSpace, out), nil
}

// RangeMap implements range_map(R: A->B) -> (A->B)->B: identity on pairs,
// projecting to the range.
func RangeMap(r Relation) (Relation, error) {
	r.ctx.checkLive()

	pts, err := r.points()
	if err != nil {
		return Relation{}, wrapOp("range_map", err)
	}

	bArity := r.space.OutArity()
	out := make([]Tuple, len(pts))

	for i, t := range pts {
		nt := make(Tuple, len(t)+bArity)
		copy(nt, t)
		copy(nt[len(t):], t[len(t)-bArity:])
		out[i] = nt
	}

	wrapped := wrapSpace(r.space)
	newSpace := Space{
		Params: r.space.Params, In: wrapped.In, Out: r.space.Out, InID: wrapped.InID, OutID: r.space.OutID,
		InSplit: wrapped.InSplit, OutSplit: r.space.OutSplit,
	}

	return fromTuples(r.ctx, newSpace, out), nil
}

// wrapSpace computes the Set-space of wrap(R): A->B, recording the split
// point so unwrap/curry/uncurry can reinterpret the same tuples later
// without re-materializing anything — wrap and its inverses are pure space
// relabelings in this representation.
func wrapSpace(s Space) Space {
	in := make([]Dim, 0, len(s.In)+len(s.Out))
	in = append(in, s.In...)
	in = append(in, s.Out...)

	return Space{Params: s.Params, In: in, InSplit: len(s.In), OutSplit: -1}
}

// Wrap implements wrap(R: A->B): set of pairs (A,B).
func Wrap(r Relation) Relation {
	r.ctx.checkLive()

	ws := wrapSpace(r.space)

	return newRelationLike(r, ws)
}

// Unwrap implements unwrap(S: set of pairs) : relation.
func Unwrap(s Relation) (Relation, error) {
	s.ctx.checkLive()

	if s.space.InSplit < 0 {
		return Relation{}, NewError("unwrap", Domain, "space %s is not a wrapped pair", s.space)
	}

	split := s.space.InSplit
	newSpace := Space{Params: s.space.Params, In: s.space.In[:split], Out: s.space.In[split:], InSplit: -1, OutSplit: -1}

	return newRelationLike(s, newSpace), nil
}

// Curry implements curry((A,B)->C) : A->(B->C).
func Curry(r Relation) (Relation, error) {
	r.ctx.checkLive()

	if r.space.InSplit < 0 {
		return Relation{}, NewError("curry", Domain, "domain %s is not a wrapped pair", r.space)
	}

	split := r.space.InSplit
	out := make([]Dim, 0, len(r.space.In)-split+len(r.space.Out))
	out = append(out, r.space.In[split:]...)
	out = append(out, r.space.Out...)
	newSpace := Space{
		Params: r.space.Params, In: r.space.In[:split], Out: out,
		InSplit: -1, OutSplit: len(r.space.In) - split,
	}

	return newRelationLike(r, newSpace), nil
}

// Uncurry implements curry's inverse: A->(B->C) : (A,B)->C.
func Uncurry(r Relation) (Relation, error) {
	r.ctx.checkLive()

	if r.space.OutSplit < 0 {
		return Relation{}, NewError("uncurry", Domain, "range %s is not a wrapped pair", r.space)
	}

	split := r.space.OutSplit
	in := make([]Dim, 0, len(r.space.In)+split)
	in = append(in, r.space.In...)
	in = append(in, r.space.Out[:split]...)
	newSpace := Space{
		Params: r.space.Params, In: in, Out: r.space.Out[split:],
		InSplit: len(r.space.In), OutSplit: -1,
	}

	return newRelationLike(r, newSpace), nil
}

// newRelationLike reinterprets r's existing Pieces (box or materialized,
// unchanged) under a new Space. Valid only when newSpace has the same total
// In+Out arity and ordering as r's — every caller above satisfies this.
func newRelationLike(r Relation, newSpace Space) Relation {
	return Relation{ctx: r.ctx, space: newSpace, pieces: r.pieces}
}

// Equate implements equate(R, in_dim i, out_dim j): restricts R to pairs
// where domain position i equals range position j.
func Equate(r Relation, i, j int) (Relation, error) {
	r.ctx.checkLive()

	if i < 0 || i >= r.space.InArity() || j < 0 || j >= r.space.OutArity() {
		return Relation{}, NewError("equate", Domain, "dimension index out of range")
	}

	pts, err := r.points()
	if err != nil {
		return Relation{}, wrapOp("equate", err)
	}

	posJ := r.space.InArity() + j
	out := pts[:0:0]

	for _, t := range pts {
		if t[i].Cmp(t[posJ]) == 0 {
			out = append(out, t)
		}
	}

	return fromTuples(r.ctx, r.space, out), nil
}

// Intersect implements the general R ∩ S for same-space operands. Box
// pieces merge lazily (bounds intersect, constraints concatenate) so that
// an unbounded piece — a raw tiling generator, say — stays unbounded until
// it is actually combined with something finite, such as a concrete
// occupancy set. Already-materialized (Points) pieces intersect as plain
// tuple sets.
func Intersect(r, s Relation) (Relation, error) {
	r.ctx.checkLive()

	if !r.space.Equal(s.space) {
		return Relation{}, NewError("intersect", SpaceMismatch, "%s vs %s", r.space, s.space)
	}

	order := r.space.dimNames()[r.space.ParamArity():]

	var pieces []Piece

	for _, pa := range r.pieces {
		for _, pb := range s.pieces {
			pieces = append(pieces, combinePieces(pa, pb, order))
		}
	}

	return newRelation(r.ctx, r.space, pieces...), nil
}

func combinePieces(a, b Piece, order []string) Piece {
	switch {
	case a.Points != nil && b.Points != nil:
		return Piece{Points: tupleSetIntersect(a.Points, b.Points)}
	case a.Points != nil:
		return Piece{Points: filterPieceBox(a.Points, b, order)}
	case b.Points != nil:
		return Piece{Points: filterPieceBox(b.Points, a, order)}
	default:
		bounds := make(map[string]*Bound, len(order))

		for _, name := range order {
			bounds[name] = intersectBound(a.Bounds[name], b.Bounds[name])
		}

		constraints := append(append([]Constraint{}, a.Constraints...), b.Constraints...)

		return Piece{Bounds: bounds, Constraints: constraints}
	}
}

func tupleSetIntersect(a, b []Tuple) []Tuple {
	keys := make(map[string]bool, len(b))
	for _, t := range b {
		keys[tupleKey(t)] = true
	}

	var out []Tuple

	for _, t := range a {
		if keys[tupleKey(t)] {
			out = append(out, t)
		}
	}

	return out
}

func filterPieceBox(points []Tuple, box Piece, order []string) []Tuple {
	var out []Tuple

	for _, t := range points {
		if tupleSatisfiesBox(t, box, order) {
			out = append(out, t)
		}
	}

	return out
}

func tupleSatisfiesBox(t Tuple, box Piece, order []string) bool {
	env := make(map[string]*big.Int, len(order))

	for i, name := range order {
		b := box.Bounds[name]
		if b != nil {
			if b.Lo != nil && t[i].Cmp(b.Lo) < 0 {
				return false
			}

			if b.Hi != nil && t[i].Cmp(b.Hi) > 0 {
				return false
			}
		}

		env[name] = t[i]
	}

	for _, c := range box.Constraints {
		if !c.holds(env, t) {
			return false
		}
	}

	return true
}

// Subtract implements subtract(R, S): R minus the pairs it shares with S,
// for same-space operands. Both sides are materialized and compared as
// plain tuple sets — the collapse step of a folding layer is this
// package's only caller, and both of its operands are already finite
// bindings by the time they reach here.
func Subtract(r, s Relation) (Relation, error) {
	r.ctx.checkLive()

	if !r.space.Equal(s.space) {
		return Relation{}, NewError("subtract", SpaceMismatch, "%s vs %s", r.space, s.space)
	}

	rpts, err := r.points()
	if err != nil {
		return Relation{}, wrapOp("subtract", err)
	}

	spts, err := s.points()
	if err != nil {
		return Relation{}, wrapOp("subtract", err)
	}

	exclude := make(map[string]bool, len(spts))
	for _, t := range spts {
		exclude[tupleKey(t)] = true
	}

	var out []Tuple

	for _, t := range rpts {
		if !exclude[tupleKey(t)] {
			out = append(out, t)
		}
	}

	return fromTuples(r.ctx, r.space, out), nil
}

// IntersectDomain implements intersect_domain(R, S): S shares R's domain
// space.
func IntersectDomain(r, s Relation) (Relation, error) {
	r.ctx.checkLive()

	if !r.space.domainSpace().Equal(s.space) {
		return Relation{}, NewError("intersect_domain", SpaceMismatch, "%s vs domain of %s", s.space, r.space)
	}

	lifted := liftOntoFullSpace(r.ctx, s, r.space, true)

	return Intersect(r, lifted)
}

// IntersectRange implements intersect_range(R, S): S shares R's range
// space.
func IntersectRange(r, s Relation) (Relation, error) {
	r.ctx.checkLive()

	if !r.space.rangeSpace().Equal(s.space) {
		return Relation{}, NewError("intersect_range", SpaceMismatch, "%s vs range of %s", s.space, r.space)
	}

	lifted := liftOntoFullSpace(r.ctx, s, r.space, false)

	return Intersect(r, lifted)
}

// liftOntoFullSpace re-expresses a Set s (over either the In or the Out
// dims of full) as a Relation over full, leaving the other side
// unconstrained. Box pieces carry straight over unchanged (their Bounds
// map is keyed by name, so dims they don't mention are already "free").
// A materialized Points piece fans out into one singleton box per point —
// a disjunction of exact-value pieces — so Intersect's per-piece
// cross-product still combines correctly with whatever is on the other
// side, instead of requiring every piece to share one arity/order.
func liftOntoFullSpace(ctx *Context, s Relation, full Space, onIn bool) Relation {
	smallOrder := s.space.dimNames()[s.space.ParamArity():]

	var pieces []Piece

	for _, p := range s.pieces {
		if p.Points == nil {
			bounds := make(map[string]*Bound, len(p.Bounds))
			for k, v := range p.Bounds {
				bounds[k] = v
			}

			pieces = append(pieces, Piece{Bounds: bounds, Constraints: p.Constraints})

			continue
		}

		for _, t := range p.Points {
			bounds := make(map[string]*Bound, len(smallOrder))

			for i, name := range smallOrder {
				bounds[name] = &Bound{Lo: t[i], Hi: t[i]}
			}

			pieces = append(pieces, Piece{Bounds: bounds})
		}
	}

	return newRelation(ctx, full, pieces...)
}

// NewRelation builds a relation directly from explicit pieces. This is the
// construction path for callers that assemble a box-and-constraint guard
// programmatically (e.g. the tile restriction generator) rather than
// through the set-builder parser or relational composition.
func NewRelation(ctx *Context, space Space, pieces ...Piece) Relation {
	return newRelation(ctx, space, pieces...)
}

// Points enumerates r's concrete (domain++range) tuples as Points, the
// Go-side equivalent of isl_map_foreach_point — the primitive every
// grouping operation outside this package (replication, mesh-cast
// clustering) needs to walk a relation's materialized contents.
func Points(r Relation) ([]Point, error) {
	r.ctx.checkLive()

	ts, err := r.points()
	if err != nil {
		return nil, wrapOp("points", err)
	}

	out := make([]Point, len(ts))

	for i, t := range ts {
		coords := make([]Value, len(t))
		for j, v := range t {
			coords[j] = NewValueBig(v)
		}

		out[i] = Point{Coords: coords}
	}

	return out, nil
}

// FromPoints builds a materialized relation from explicit points, the
// inverse of Points.
func FromPoints(ctx *Context, space Space, pts []Point) Relation {
	tuples := make([]Tuple, len(pts))

	for i, p := range pts {
		t := make(Tuple, len(p.Coords))
		for j, v := range p.Coords {
			t[j] = v.Big()
		}

		tuples[i] = t
	}

	return fromTuples(ctx, space, tuples)
}

func wrapOp(op string, err error) error {
	if fe, ok := err.(*Error); ok {
		return fe
	}

	return NewError(op, InternalAlgebraError, "%s", err.Error())
}
