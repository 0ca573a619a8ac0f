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

import "testing"

func TestLexminPicksLexicographicallySmallestPerInput(t *testing.T) {
	ctx := NewContext(Config{})
	defer ctx.Release()

	left, err := ParseMap(ctx, "{ [a] -> [dist,src] : a = 0 and dist = 1 and src = 3 }")
	if err != nil {
		t.Fatalf("ParseMap(left): %v", err)
	}

	right, err := ParseMap(ctx, "{ [a] -> [dist,src] : a = 0 and dist = 1 and src = 1 }")
	if err != nil {
		t.Fatalf("ParseMap(right): %v", err)
	}

	third, err := ParseMap(ctx, "{ [a] -> [dist,src] : a = 0 and dist = 2 and src = 0 }")
	if err != nil {
		t.Fatalf("ParseMap(third): %v", err)
	}

	leftPts, err := Points(left)
	if err != nil {
		t.Fatalf("Points(left): %v", err)
	}

	rightPts, err := Points(right)
	if err != nil {
		t.Fatalf("Points(right): %v", err)
	}

	thirdPts, err := Points(third)
	if err != nil {
		t.Fatalf("Points(third): %v", err)
	}

	all := append(append(leftPts, rightPts...), thirdPts...)
	r := FromPoints(ctx, left.Space(), all)

	out, err := Lexmin(r)
	if err != nil {
		t.Fatalf("Lexmin: %v", err)
	}

	pts, err := Points(out)
	if err != nil {
		t.Fatalf("Points(out): %v", err)
	}

	if len(pts) != 1 {
		t.Fatalf("got %d points, want 1 (one winner per input tuple)", len(pts))
	}

	// Both candidates at dist=1 beat the dist=2 candidate; of those, src=1
	// is the lexicographically smaller second component.
	got := pts[0].Coords
	if got[1].Big().Int64() != 1 || got[2].Big().Int64() != 1 {
		t.Errorf("got (dist,src)=(%d,%d), want (1,1)", got[1].Big().Int64(), got[2].Big().Int64())
	}
}

func TestMapMinMultiPwAffTakesComponentwiseMinimumPerInput(t *testing.T) {
	ctx := NewContext(Config{})
	defer ctx.Release()

	a, err := ParseMap(ctx, "{ [id] -> [x,y] : id = 0 and x = 5 and y = 1 }")
	if err != nil {
		t.Fatalf("ParseMap(a): %v", err)
	}

	b, err := ParseMap(ctx, "{ [id] -> [x,y] : id = 0 and x = 2 and y = 9 }")
	if err != nil {
		t.Fatalf("ParseMap(b): %v", err)
	}

	aPts, err := Points(a)
	if err != nil {
		t.Fatalf("Points(a): %v", err)
	}

	bPts, err := Points(b)
	if err != nil {
		t.Fatalf("Points(b): %v", err)
	}

	r := FromPoints(ctx, a.Space(), append(aPts, bPts...))

	out, err := MapMinMultiPwAff(r)
	if err != nil {
		t.Fatalf("MapMinMultiPwAff: %v", err)
	}

	pts, err := Points(out)
	if err != nil {
		t.Fatalf("Points(out): %v", err)
	}

	if len(pts) != 1 {
		t.Fatalf("got %d points, want 1 (one result per distinct input)", len(pts))
	}

	// x's minimum comes from b (2), y's minimum comes from a (1); the two
	// components are taken independently, not as a whole-tuple winner.
	got := pts[0].Coords
	if got[1].Big().Int64() != 2 || got[2].Big().Int64() != 1 {
		t.Errorf("got (x,y)=(%d,%d), want (2,1)", got[1].Big().Int64(), got[2].Big().Int64())
	}
}

func TestMapMinMultiPwAffOnEmptyRelationIsEmpty(t *testing.T) {
	ctx := NewContext(Config{})
	defer ctx.Release()

	space := NewSpace(nil, []string{"id"}, []string{"x", "y"})
	empty := FromPoints(ctx, space, nil)

	out, err := MapMinMultiPwAff(empty)
	if err != nil {
		t.Fatalf("MapMinMultiPwAff: %v", err)
	}

	pts, err := Points(out)
	if err != nil {
		t.Fatalf("Points(out): %v", err)
	}

	if len(pts) != 0 {
		t.Errorf("got %d points, want 0", len(pts))
	}
}
