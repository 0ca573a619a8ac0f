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
package tile

import (
	"testing"

	"github.com/foldmesh/spatialcost/internal/assert"
	"github.com/foldmesh/spatialcost/pkg/algebra"
)

func TestTileRestrictsToBlock(t *testing.T) {
	ctx := algebra.NewContext(algebra.Config{})
	defer ctx.Release()

	srcOcc, err := algebra.ParseMap(ctx, "{ [xs,ys] -> [data] : 0 <= xs < 2 and 0 <= ys < 2 and 0 <= data < 16 }")
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}

	tiling, err := Tile(ctx, 0, srcOcc.Space(), 8, 1)
	if err != nil {
		t.Fatalf("Tile: %v", err)
	}

	restricted, err := algebra.Intersect(srcOcc, tiling)
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}

	pts, err := algebra.Points(restricted)
	if err != nil {
		t.Fatalf("Points: %v", err)
	}

	for _, p := range pts {
		ys := p.Coords[1].Big().Int64()
		data := p.Coords[2].Big().Int64()

		if data < ys*8 || data >= ys*8+8 {
			t.Errorf("point ys=%d data=%d falls outside its tile [%d,%d)", ys, data, ys*8, ys*8+8)
		}
	}

	if len(pts) == 0 {
		t.Fatal("expected a non-empty restriction")
	}
}

func TestTileCoverageIsExactAndDisjoint(t *testing.T) {
	ctx := algebra.NewContext(algebra.Config{})
	defer ctx.Release()

	occ, err := algebra.ParseMap(ctx, "{ [xs] -> [data] : 0 <= xs < 4 and 0 <= data < 16 }")
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}

	tiling, err := Tile(ctx, 0, occ.Space(), 4, 0)
	if err != nil {
		t.Fatalf("Tile: %v", err)
	}

	restricted, err := algebra.Intersect(occ, tiling)
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}

	pts, err := algebra.Points(restricted)
	if err != nil {
		t.Fatalf("Points: %v", err)
	}

	seen := make(map[int64]bool)

	for _, p := range pts {
		xs := p.Coords[0].Big().Int64()
		data := p.Coords[1].Big().Int64()

		if data/4 != xs {
			t.Errorf("point xs=%d data=%d assigned to the wrong block", xs, data)
		}

		if seen[data] {
			t.Errorf("data point %d covered by more than one axis value", data)
		}

		seen[data] = true
	}

	assert.Equal(t, 16, len(seen), "want exact coverage across all axis values")
}

func TestTileRejectsOutOfRangeAxis(t *testing.T) {
	ctx := algebra.NewContext(algebra.Config{})
	defer ctx.Release()

	space := algebra.NewSpace(nil, []string{"xs"}, []string{"data"})

	if _, err := Tile(ctx, 0, space, 4, 3); err == nil {
		t.Fatal("expected a Domain error for an out-of-range axis_dim")
	}
}

func TestReplicateBroadcastsAcrossAxis(t *testing.T) {
	ctx := algebra.NewContext(algebra.Config{})
	defer ctx.Release()

	feature, err := algebra.ParseMap(ctx, "{ [xs,ys] -> [data] : xs = 0 and ys = 0 and data = 5 }")
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}

	replicated, err := Replicate(feature, 4, 0)
	if err != nil {
		t.Fatalf("Replicate: %v", err)
	}

	pts, err := algebra.Points(replicated)
	if err != nil {
		t.Fatalf("Points: %v", err)
	}

	assert.Equal(t, 4, len(pts), "replica count")

	seen := make(map[int64]bool)

	for _, p := range pts {
		xs := p.Coords[0].Big().Int64()
		ys := p.Coords[1].Big().Int64()
		data := p.Coords[2].Big().Int64()

		if ys != 0 || data != 5 {
			t.Errorf("replica (xs=%d,ys=%d,data=%d) changed a non-replicated dimension", xs, ys, data)
		}

		seen[xs] = true
	}

	if len(seen) != 4 {
		t.Errorf("replicas covered %d distinct axis values, want 4", len(seen))
	}
}

func TestReplicateRejectsNonPositiveCount(t *testing.T) {
	ctx := algebra.NewContext(algebra.Config{})
	defer ctx.Release()

	feature, err := algebra.ParseMap(ctx, "{ [xs] -> [data] : xs = 0 and data = 0 }")
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}

	if _, err := Replicate(feature, 0, 0); err == nil {
		t.Fatal("expected a Domain error for n=0")
	}
}
