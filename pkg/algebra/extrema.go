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

// Lexmin implements lexmin(R: A->B): for each a, keeps only the
// lexicographically smallest b. Ties break by dimension order — the one
// deterministic tie-break this module commits to; a caller that needs a
// different ordering imposes it by reordering B's dimensions before
// calling Lexmin.
func Lexmin(r Relation) (Relation, error) {
	r.ctx.checkLive()

	pts, err := r.points()
	if err != nil {
		return Relation{}, wrapOp("lexmin", err)
	}

	inArity := r.space.InArity()

	groups := make(map[string][]Tuple)
	var order []string

	for _, t := range pts {
		key := tupleKey(t[:inArity])
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}

		groups[key] = append(groups[key], t)
	}

	sort.Strings(order)

	out := make([]Tuple, 0, len(order))

	for _, key := range order {
		cands := groups[key]
		sort.Slice(cands, func(i, j int) bool {
			return lexLess(cands[i][inArity:], cands[j][inArity:])
		})

		out = append(out, cands[0])
	}

	return fromTuples(r.ctx, r.space, out), nil
}

func lexLess(a, b Tuple) bool {
	for i := range a {
		c := a[i].Cmp(b[i])
		if c != 0 {
			return c < 0
		}
	}

	return false
}

// MapMinMultiPwAff implements map_min_multi_pw_aff(R: A->B): for each a,
// the component-wise minimum of every matching b, returned as a relation
// A->B (rather than as isl's vector-of-PwAff representation, which this
// module has no other use for).
func MapMinMultiPwAff(r Relation) (Relation, error) {
	r.ctx.checkLive()

	pts, err := r.points()
	if err != nil {
		return Relation{}, wrapOp("map_min_multi_pw_aff", err)
	}

	inArity, outArity := r.space.InArity(), r.space.OutArity()

	mins := make(map[string][]*big.Int)
	reps := make(map[string]Tuple)
	var order []string

	for _, t := range pts {
		key := tupleKey(t[:inArity])

		if _, ok := mins[key]; !ok {
			m := make([]*big.Int, outArity)
			for i := range m {
				m[i] = new(big.Int).Set(t[inArity+i])
			}

			mins[key] = m
			reps[key] = t[:inArity]
			order = append(order, key)

			continue
		}

		m := mins[key]
		for i := range m {
			if t[inArity+i].Cmp(m[i]) < 0 {
				m[i] = new(big.Int).Set(t[inArity+i])
			}
		}
	}

	sort.Strings(order)

	out := make([]Tuple, 0, len(order))

	for _, key := range order {
		nt := make(Tuple, inArity+outArity)
		copy(nt, reps[key])
		copy(nt[inArity:], mins[key])
		out = append(out, nt)
	}

	return fromTuples(r.ctx, r.space, out), nil
}
