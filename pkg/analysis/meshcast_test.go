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
	"testing"

	"github.com/foldmesh/spatialcost/pkg/algebra"
	"github.com/foldmesh/spatialcost/pkg/metric"
)

func TestIdentifyMeshCastsOnStrideTwoGrid(t *testing.T) {
	ctx := algebra.NewContext(algebra.Config{})
	defer ctx.Release()

	srcOcc, err := algebra.ParseMap(ctx, "{ [xs,ys] -> [a,b] : a = 2*xs mod 4 and b = ys and 0 <= xs < 4 and 0 <= ys < 4 and 0 <= a < 4 and 0 <= b < 4 }")
	if err != nil {
		t.Fatalf("ParseMap(srcOcc): %v", err)
	}

	dstFill, err := algebra.ParseMap(ctx, "{ [xd,yd] -> [a,b] : b = yd and 0 <= xd < 4 and 0 <= yd < 4 and 0 <= a < 4 and 0 <= b < 4 }")
	if err != nil {
		t.Fatalf("ParseMap(dstFill): %v", err)
	}

	dist, err := metric.ManhattanND(ctx, []string{"xd", "yd"}, []string{"xs", "ys"})
	if err != nil {
		t.Fatalf("ManhattanND: %v", err)
	}

	networks, err := IdentifyMeshCasts(ctx, srcOcc, dstFill, dist)
	if err != nil {
		t.Fatalf("IdentifyMeshCasts: %v", err)
	}

	if len(networks) == 0 {
		t.Fatal("expected at least one multicast network")
	}

	var totalDsts int
	for _, net := range networks {
		if len(net.Src.Coords) != 2 {
			t.Errorf("network source has %d coordinates, want 2", len(net.Src.Coords))
		}

		totalDsts += len(net.Dsts)

		cost, err := CostMeshCast(net, dist, PairSum, []string{"xs", "ys"}, []string{"xd", "yd"})
		if err != nil {
			t.Fatalf("CostMeshCast: %v", err)
		}

		if cost < 0 {
			t.Errorf("network cost = %d, want >= 0", cost)
		}
	}

	// Every (xd,yd,a) triple with a reachable source and b=yd is a
	// distinct required (dst,data) pair; the identified networks must
	// account for all of them exactly once.
	if totalDsts != 32 {
		t.Errorf("assigned %d (dst,data) pairs, want 32", totalDsts)
	}
}

func TestIdentifyMeshCastsReturnsNoNetworksWhenNoCandidateExists(t *testing.T) {
	ctx := algebra.NewContext(algebra.Config{})
	defer ctx.Release()

	srcOcc, err := algebra.ParseMap(ctx, "{ [xs] -> [a] : xs = 0 and a = 1 }")
	if err != nil {
		t.Fatalf("ParseMap(srcOcc): %v", err)
	}

	dstFill, err := algebra.ParseMap(ctx, "{ [xd] -> [a] : xd = 0 and a = 0 }")
	if err != nil {
		t.Fatalf("ParseMap(dstFill): %v", err)
	}

	dist, err := metric.RingMetric(ctx, 4, "xd", "xs")
	if err != nil {
		t.Fatalf("RingMetric: %v", err)
	}

	networks, err := IdentifyMeshCasts(ctx, srcOcc, dstFill, dist)
	if err != nil {
		t.Fatalf("IdentifyMeshCasts: %v", err)
	}

	if len(networks) != 0 {
		t.Errorf("got %d networks, want 0 when no source matches the requested datum", len(networks))
	}
}
