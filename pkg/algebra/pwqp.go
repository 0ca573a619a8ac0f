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
	"sort"
)

// QPPiece is a PwQP's piece: same guard shape as AffPiece. This module
// never needs a true higher-degree quasi-polynomial — every PwQP here is
// built either straight from an affine function or by counting/summing
// over an already-bounded domain, so the "quasi-polynomial" is always
// degree <= 1 and a plain Expr is sufficient to hold it.
type QPPiece = AffPiece

// PwQP is a partial function from a domain Space to ℤ whose value is a
// quasi-polynomial per piece.
type PwQP struct {
	ctx    *Context
	domain Space
	pieces []QPPiece
}

// NewPwQP builds a PwQP from explicit pieces.
func NewPwQP(ctx *Context, domain Space, pieces ...QPPiece) PwQP {
	return PwQP{ctx: ctx, domain: domain, pieces: pieces}
}

// Domain returns the argument space.
func (p PwQP) Domain() Space { return p.domain }

// Context returns the owning context.
func (p PwQP) Context() *Context { return p.ctx }

// Eval mirrors PwAff.Eval, including the NotSingleton check for a point
// that satisfies more than one piece's guard.
func (p PwQP) Eval(env map[string]*big.Int) (Value, error) {
	var (
		match    *QPPiece
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
		return Value{}, NewError("eval", Domain, "point not in the domain of this quasi-polynomial")
	}

	return NewValueBig(match.Value.Eval(env)), nil
}

// singletonTuple reports the one concrete domain tuple a piece stands for,
// in the given dimension order, and whether the piece is such a point-piece.
// Every PwQP built by
// Card or by point-wise evaluation of a PwAff over a materialized relation
// has exactly this shape: degenerate point-pieces, one per domain tuple.
func singletonTuple(piece QPPiece, order []string) (Tuple, bool) {
	t := make(Tuple, len(order))

	for i, name := range order {
		b := piece.Bounds[name]
		if !b.isFinite() || b.Lo.Cmp(b.Hi) != 0 {
			return nil, false
		}

		t[i] = b.Lo
	}

	return t, true
}

// Card implements card(R: A->B): returns a PwQP giving, for each a in
// dom R, the number of b with (a,b) in R.
func Card(r Relation) (PwQP, error) {
	r.ctx.checkLive()

	pts, err := r.points()
	if err != nil {
		return PwQP{}, wrapOp("card", err)
	}

	inArity := r.space.InArity()
	counts := make(map[string]int64)
	reps := make(map[string]Tuple)

	for _, t := range pts {
		key := tupleKey(t[:inArity])
		counts[key]++

		if _, ok := reps[key]; !ok {
			reps[key] = t[:inArity]
		}
	}

	domain := r.space.domainSpace()
	order := domain.dimNames()[domain.ParamArity():]

	pieces := make([]QPPiece, 0, len(reps))

	for key, rep := range reps {
		bounds := make(map[string]*Bound, len(order))
		for i, name := range order {
			bounds[name] = &Bound{Lo: rep[i], Hi: rep[i]}
		}

		pieces = append(pieces, QPPiece{Bounds: bounds, Value: Const{counts[key]}})
	}

	return PwQP{ctx: r.ctx, domain: domain, pieces: pieces}, nil
}

// PwQPSum implements pw_qp_sum(P) applied along the last In-dimension of
// P's domain: groups pieces by every dimension except the last and sums
// their values, dropping that dimension from the result. Called once per
// coordinate being eliminated, matching the "pw_qp_sum twice" pattern used
// to collapse a 2-D destination space down to a scalar.
func PwQPSum(p PwQP) (PwQP, error) {
	p.ctx.checkLive()

	order := p.domain.dimNames()[p.domain.ParamArity():]
	if len(order) == 0 {
		return PwQP{}, NewError("pw_qp_sum", Domain, "domain has no dimension left to sum out")
	}

	keepOrder := order[:len(order)-1]

	sums := make(map[string]*big.Int)
	reps := make(map[string]Tuple)

	for _, piece := range p.pieces {
		t, ok := singletonTuple(piece, order)
		if !ok {
			return PwQP{}, NewError("pw_qp_sum", InternalAlgebraError, "piece is not a single point; summation over a symbolic range is out of scope")
		}

		env := make(map[string]*big.Int, len(order))
		for i, name := range order {
			env[name] = t[i]
		}

		val := piece.Value.Eval(env)

		key := tupleKey(t[:len(keepOrder)])
		if cur, ok := sums[key]; ok {
			cur.Add(cur, val)
		} else {
			sums[key] = new(big.Int).Set(val)
			reps[key] = t[:len(keepOrder)]
		}
	}

	pieces := make([]QPPiece, 0, len(sums))

	for key, rep := range reps {
		bounds := make(map[string]*Bound, len(keepOrder))
		for i, name := range keepOrder {
			bounds[name] = &Bound{Lo: rep[i], Hi: rep[i]}
		}

		pieces = append(pieces, QPPiece{Bounds: bounds, Value: Const{sums[key].Int64()}})
	}

	newDomain := Space{Params: p.domain.Params, In: namesToDims(keepOrder), InSplit: -1, OutSplit: -1}

	return PwQP{ctx: p.ctx, domain: newDomain, pieces: pieces}, nil
}

// PwQPMax implements pw_qp_max(P): the full reduction of P to the single
// largest value across every piece, used as the final step of a latency
// query once min-over-sources has collapsed the source axis.
func PwQPMax(p PwQP) (Value, error) {
	return pwQPExtreme(p, "pw_qp_max", func(a, b *big.Int) bool { return a.Cmp(b) > 0 })
}

// PwQPMin is the max's dual, exposed for symmetry even though the façade's
// own callers only need PwQPMax directly.
func PwQPMin(p PwQP) (Value, error) {
	return pwQPExtreme(p, "pw_qp_min", func(a, b *big.Int) bool { return a.Cmp(b) < 0 })
}

func pwQPExtreme(p PwQP, op string, better func(a, b *big.Int) bool) (Value, error) {
	p.ctx.checkLive()

	if len(p.pieces) == 0 {
		return Value{}, NewError(op, Unbounded, "empty quasi-polynomial has no extremum")
	}

	order := p.domain.dimNames()[p.domain.ParamArity():]

	var best *big.Int

	for _, piece := range p.pieces {
		t, ok := singletonTuple(piece, order)
		if !ok {
			return Value{}, NewError(op, InternalAlgebraError, "piece is not a single point")
		}

		env := make(map[string]*big.Int, len(order))
		for i, name := range order {
			env[name] = t[i]
		}

		v := piece.Value.Eval(env)

		if best == nil || better(v, best) {
			best = v
		}
	}

	return NewValueBig(best), nil
}

// PwQPMul implements pw_qp_mul(P, Q): pointwise product over the shared
// domain. The folding engine does not call it; it multiplies cost by count
// itself.
func PwQPMul(p, q PwQP) (PwQP, error) {
	p.ctx.checkLive()

	if !p.domain.Equal(q.domain) {
		return PwQP{}, NewError("pw_qp_mul", SpaceMismatch, "%s vs %s", p.domain, q.domain)
	}

	order := p.domain.dimNames()[p.domain.ParamArity():]

	qVals := make(map[string]*big.Int)

	for _, piece := range q.pieces {
		t, ok := singletonTuple(piece, order)
		if !ok {
			return PwQP{}, NewError("pw_qp_mul", InternalAlgebraError, "piece is not a single point")
		}

		env := pointEnv(order, t)
		qVals[tupleKey(t)] = piece.Value.Eval(env)
	}

	var pieces []QPPiece

	for _, piece := range p.pieces {
		t, ok := singletonTuple(piece, order)
		if !ok {
			return PwQP{}, NewError("pw_qp_mul", InternalAlgebraError, "piece is not a single point")
		}

		qv, ok := qVals[tupleKey(t)]
		if !ok {
			continue
		}

		env := pointEnv(order, t)
		pv := piece.Value.Eval(env)

		bounds := make(map[string]*Bound, len(order))
		for i, name := range order {
			bounds[name] = &Bound{Lo: t[i], Hi: t[i]}
		}

		pieces = append(pieces, QPPiece{Bounds: bounds, Value: Const{new(big.Int).Mul(pv, qv).Int64()}})
	}

	return PwQP{ctx: p.ctx, domain: p.domain, pieces: pieces}, nil
}

func pointEnv(order []string, t Tuple) map[string]*big.Int {
	env := make(map[string]*big.Int, len(order))
	for i, name := range order {
		env[name] = t[i]
	}

	return env
}

// SumAll collapses every remaining domain dimension of p by repeated
// PwQPSum, and evaluates the resulting 0-arity quasi-polynomial — the
// "pw_qp_sum ... and eval at the origin" idiom used to turn a per-datum
// count into a single scalar.
func SumAll(p PwQP) (Value, error) {
	cur := p

	for len(cur.domain.In) > 0 {
		next, err := PwQPSum(cur)
		if err != nil {
			return Value{}, err
		}

		cur = next
	}

	if len(cur.pieces) == 0 {
		return NewValue(0), nil
	}

	return cur.Eval(nil)
}

// FoldMode is the aggregator a Fold applies to overlapping pieces.
type FoldMode uint8

const (
	// FoldMin aggregates overlapping values by minimum.
	FoldMin FoldMode = iota
	// FoldMax aggregates overlapping values by maximum.
	FoldMax
)

func (m FoldMode) String() string {
	if m == FoldMax {
		return "max"
	}

	return "min"
}

// Fold is a PwQP together with an aggregation mode, per the data model: on
// overlapping domain pieces the mode's aggregator applies, where PwQP.Eval
// reports NotSingleton.
type Fold struct {
	QP   PwQP
	Mode FoldMode
}

// NewFold implements pw_qp_fold(mode).
func NewFold(qp PwQP, mode FoldMode) Fold {
	return Fold{QP: qp, Mode: mode}
}

// Normalize collapses any pieces that share the exact same domain point
// into one, combining their values with the fold's aggregator. Every
// piece here is a singleton point (see QPPiece doc), so "overlap" reduces
// to "same key".
func (f Fold) Normalize() (PwQP, error) {
	order := f.QP.domain.dimNames()[f.QP.domain.ParamArity():]

	type entry struct {
		rep Tuple
		val *big.Int
	}

	groups := make(map[string]*entry)
	var orderKeys []string

	for _, piece := range f.QP.pieces {
		t, ok := singletonTuple(piece, order)
		if !ok {
			return PwQP{}, NewError("pw_qp_fold", InternalAlgebraError, "piece is not a single point")
		}

		key := tupleKey(t)
		v := piece.Value.Eval(pointEnv(order, t))

		if e, ok := groups[key]; ok {
			if (f.Mode == FoldMin && v.Cmp(e.val) < 0) || (f.Mode == FoldMax && v.Cmp(e.val) > 0) {
				e.val = v
			}
		} else {
			groups[key] = &entry{rep: t, val: new(big.Int).Set(v)}
			orderKeys = append(orderKeys, key)
		}
	}

	sort.Strings(orderKeys)

	pieces := make([]QPPiece, 0, len(groups))

	for _, key := range orderKeys {
		e := groups[key]
		bounds := make(map[string]*Bound, len(order))

		for i, name := range order {
			bounds[name] = &Bound{Lo: e.rep[i], Hi: e.rep[i]}
		}

		pieces = append(pieces, QPPiece{Bounds: bounds, Value: Const{e.val.Int64()}})
	}

	return PwQP{ctx: f.QP.ctx, domain: f.QP.domain, pieces: pieces}, nil
}
