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
	"testing"
)

func TestWrapUnwrapRoundTrip(t *testing.T) {
	ctx := NewContext(Config{})
	defer ctx.Release()

	r, err := ParseMap(ctx, "{ [a] -> [b] : a = 1 and b = 2 }")
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}

	wrapped := Wrap(r)

	if !wrapped.Space().IsSet() {
		t.Fatalf("wrap(R) should be a Set, got %s", wrapped.Space())
	}

	if wrapped.Space().InSplit != 1 {
		t.Fatalf("wrapped space should record a split at 1, got %d", wrapped.Space().InSplit)
	}

	pts, err := Points(wrapped)
	if err != nil {
		t.Fatalf("Points(wrapped): %v", err)
	}

	if len(pts) != 1 || pts[0].Coords[0].Big().Int64() != 1 || pts[0].Coords[1].Big().Int64() != 2 {
		t.Fatalf("got %v, want a single (1,2) pair", pts)
	}

	unwrapped, err := Unwrap(wrapped)
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}

	if unwrapped.Space().InArity() != 1 || unwrapped.Space().OutArity() != 1 {
		t.Fatalf("unwrap(wrap(R)) should restore R's arities, got %s", unwrapped.Space())
	}

	backPts, err := Points(unwrapped)
	if err != nil {
		t.Fatalf("Points(unwrapped): %v", err)
	}

	if len(backPts) != 1 || backPts[0].Coords[0].Big().Int64() != 1 || backPts[0].Coords[1].Big().Int64() != 2 {
		t.Fatalf("got %v, want a single (a=1,b=2) pair back", backPts)
	}
}

func TestUnwrapRejectsUnwrappedSpace(t *testing.T) {
	ctx := NewContext(Config{})
	defer ctx.Release()

	r, err := ParseMap(ctx, "{ [a] -> [b] : a = 1 and b = 2 }")
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}

	if _, err := Unwrap(r); err == nil {
		t.Fatal("expected a Domain error unwrapping a relation that was never wrapped")
	}
}

func TestCurryUncurryRoundTrip(t *testing.T) {
	ctx := NewContext(Config{})
	defer ctx.Release()

	// A relation shaped like curry's own precondition: (A,B) -> C with the
	// domain already recorded as a wrapped pair, the shape RangeMap/Wrap
	// produce upstream of a curry call in the mesh-cast pipeline.
	space := Space{
		In: []Dim{{Name: "a"}, {Name: "b"}}, Out: []Dim{{Name: "c"}},
		InSplit: 1, OutSplit: -1,
	}
	pts := []Tuple{{big.NewInt(1), big.NewInt(2), big.NewInt(9)}}
	r := NewRelation(ctx, space, Piece{Points: pts})

	curried, err := Curry(r)
	if err != nil {
		t.Fatalf("Curry: %v", err)
	}

	if curried.Space().InArity() != 1 || curried.Space().OutArity() != 2 {
		t.Fatalf("curry((A,B)->C) should be A->(B,C), got %s", curried.Space())
	}

	if curried.Space().OutSplit != 1 {
		t.Fatalf("curried range should record a split at 1, got %d", curried.Space().OutSplit)
	}

	curriedPts, err := Points(curried)
	if err != nil {
		t.Fatalf("Points(curried): %v", err)
	}

	if len(curriedPts) != 1 || curriedPts[0].Coords[0].Big().Int64() != 1 ||
		curriedPts[0].Coords[1].Big().Int64() != 2 || curriedPts[0].Coords[2].Big().Int64() != 9 {
		t.Fatalf("got %v, want the same (1,2,9) tuple reinterpreted", curriedPts)
	}

	back, err := Uncurry(curried)
	if err != nil {
		t.Fatalf("Uncurry: %v", err)
	}

	if back.Space().InArity() != 2 || back.Space().OutArity() != 1 || back.Space().InSplit != 1 {
		t.Fatalf("uncurry(curry(R)) should restore R's shape, got %s (InSplit=%d)", back.Space(), back.Space().InSplit)
	}

	backPts, err := Points(back)
	if err != nil {
		t.Fatalf("Points(back): %v", err)
	}

	if len(backPts) != 1 || backPts[0].Coords[0].Big().Int64() != 1 ||
		backPts[0].Coords[1].Big().Int64() != 2 || backPts[0].Coords[2].Big().Int64() != 9 {
		t.Fatalf("got %v, want the original (1,2,9) tuple back", backPts)
	}
}

func TestCurryRejectsUnwrappedDomain(t *testing.T) {
	ctx := NewContext(Config{})
	defer ctx.Release()

	r, err := ParseMap(ctx, "{ [a] -> [b] : a = 1 and b = 2 }")
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}

	if _, err := Curry(r); err == nil {
		t.Fatal("expected a Domain error currying a relation whose domain isn't a wrapped pair")
	}
}

func TestRangeProductPairsSharedDomain(t *testing.T) {
	ctx := NewContext(Config{})
	defer ctx.Release()

	r, err := ParseMap(ctx, "{ [a] -> [b] : a = 0 and b = 5 }")
	if err != nil {
		t.Fatalf("ParseMap(r): %v", err)
	}

	s, err := ParseMap(ctx, "{ [a] -> [c] : a = 0 and c = 7 }")
	if err != nil {
		t.Fatalf("ParseMap(s): %v", err)
	}

	rp, err := RangeProduct(r, s)
	if err != nil {
		t.Fatalf("RangeProduct: %v", err)
	}

	if rp.Space().OutArity() != 2 {
		t.Fatalf("range_product(R,S) should pair both ranges, got %s", rp.Space())
	}

	pts, err := Points(rp)
	if err != nil {
		t.Fatalf("Points: %v", err)
	}

	if len(pts) != 1 || pts[0].Coords[1].Big().Int64() != 5 || pts[0].Coords[2].Big().Int64() != 7 {
		t.Fatalf("got %v, want a single (a=0,b=5,c=7) tuple", pts)
	}
}

func TestEquateFiltersToMatchingPositions(t *testing.T) {
	ctx := NewContext(Config{})
	defer ctx.Release()

	matching, err := ParseMap(ctx, "{ [a] -> [b] : a = 1 and b = 1 }")
	if err != nil {
		t.Fatalf("ParseMap(matching): %v", err)
	}

	mismatched, err := ParseMap(ctx, "{ [a] -> [b] : a = 2 and b = 3 }")
	if err != nil {
		t.Fatalf("ParseMap(mismatched): %v", err)
	}

	matchingPts, err := Points(matching)
	if err != nil {
		t.Fatalf("Points(matching): %v", err)
	}

	mismatchedPts, err := Points(mismatched)
	if err != nil {
		t.Fatalf("Points(mismatched): %v", err)
	}

	r := FromPoints(ctx, matching.Space(), append(matchingPts, mismatchedPts...))

	out, err := Equate(r, 0, 0)
	if err != nil {
		t.Fatalf("Equate: %v", err)
	}

	pts, err := Points(out)
	if err != nil {
		t.Fatalf("Points(out): %v", err)
	}

	if len(pts) != 1 || pts[0].Coords[0].Big().Int64() != 1 || pts[0].Coords[1].Big().Int64() != 1 {
		t.Fatalf("got %v, want only the a=b=1 tuple to survive", pts)
	}
}

func TestEquateRejectsOutOfRangeIndex(t *testing.T) {
	ctx := NewContext(Config{})
	defer ctx.Release()

	r, err := ParseMap(ctx, "{ [a] -> [b] : a = 1 and b = 1 }")
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}

	if _, err := Equate(r, 5, 0); err == nil {
		t.Fatal("expected a Domain error for an out-of-range dimension index")
	}
}

func TestIntersectDomainRestrictsToSharedDomainSet(t *testing.T) {
	ctx := NewContext(Config{})
	defer ctx.Release()

	kept, err := ParseMap(ctx, "{ [a,b] -> [c] : a = 0 and b = 0 and c = 5 }")
	if err != nil {
		t.Fatalf("ParseMap(kept): %v", err)
	}

	dropped, err := ParseMap(ctx, "{ [a,b] -> [c] : a = 1 and b = 1 and c = 6 }")
	if err != nil {
		t.Fatalf("ParseMap(dropped): %v", err)
	}

	keptPts, err := Points(kept)
	if err != nil {
		t.Fatalf("Points(kept): %v", err)
	}

	droppedPts, err := Points(dropped)
	if err != nil {
		t.Fatalf("Points(dropped): %v", err)
	}

	r := FromPoints(ctx, kept.Space(), append(keptPts, droppedPts...))

	domain, err := ParseSet(ctx, "{ [a,b] : a = 0 and b = 0 }")
	if err != nil {
		t.Fatalf("ParseSet(domain): %v", err)
	}

	out, err := IntersectDomain(r, domain)
	if err != nil {
		t.Fatalf("IntersectDomain: %v", err)
	}

	pts, err := Points(out)
	if err != nil {
		t.Fatalf("Points(out): %v", err)
	}

	if len(pts) != 1 || pts[0].Coords[2].Big().Int64() != 5 {
		t.Fatalf("got %v, want only the (a=0,b=0) tuple's range to survive", pts)
	}
}

// TestApplyRangeThroughIdentityIsANoOp exercises spec.md §8's "Identity"
// testable property directly: apply_range(R, identity(B)) = R for R: A->B.
// identity(B)'s own dimensions carry no bound of their own (see set.go's
// Identity doc) and only become enumerable once ApplyRange seeds its domain
// from R's already-concrete range, the same seeding path a fold/collapse
// relation relies on.
func TestApplyRangeThroughIdentityIsANoOp(t *testing.T) {
	ctx := NewContext(Config{})
	defer ctx.Release()

	r, err := ParseMap(ctx, "{ [a] -> [b] : a = 3 and b = 9 }")
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}

	ident := Identity(ctx, r.Space().rangeSpace())

	composed, err := ApplyRange(r, ident)
	if err != nil {
		t.Fatalf("ApplyRange: %v", err)
	}

	origPts, err := Points(r)
	if err != nil {
		t.Fatalf("Points(r): %v", err)
	}

	gotPts, err := Points(composed)
	if err != nil {
		t.Fatalf("Points(composed): %v", err)
	}

	if len(gotPts) != len(origPts) || len(gotPts) != 1 ||
		gotPts[0].Coords[0].Big().Int64() != 3 || gotPts[0].Coords[1].Big().Int64() != 9 {
		t.Fatalf("apply_range(R, identity(B)) = %v, want R = %v", gotPts, origPts)
	}
}
