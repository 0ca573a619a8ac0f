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
package main

import (
	"fmt"
	"os"

	"github.com/foldmesh/spatialcost/pkg/algebra"
	"github.com/foldmesh/spatialcost/pkg/analysis"
	"github.com/foldmesh/spatialcost/pkg/metric"
)

func main() {
	ctx := algebra.NewContext(algebra.Config{})
	defer ctx.Release()

	for _, s := range scenarios {
		if err := s.run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", s.name, err)
			os.Exit(1)
		}
	}
}

type scenario struct {
	name string
	run  func(ctx *algebra.Context) error
}

var scenarios = []scenario{
	{"S1 identity multicast", runIdentityMulticast},
	{"S2 row broadcast", runRowBroadcast},
	{"S3 ring single source", runRingSingleSource},
	{"S5 mesh-cast on stride-2 grid", runMeshCastStrideTwo},
}

func runIdentityMulticast(ctx *algebra.Context) error {
	srcOcc, err := algebra.ParseMap(ctx, "{ [xs,ys] -> [a,b] : a = xs and b = ys and 0 <= xs < 8 and 0 <= ys < 8 }")
	if err != nil {
		return err
	}

	dstFill, err := algebra.ParseMap(ctx, "{ [xd,yd] -> [a,b] : a = xd and b = yd and 0 <= xd < 8 and 0 <= yd < 8 }")
	if err != nil {
		return err
	}

	dist, err := metric.ManhattanND(ctx, []string{"xd", "yd"}, []string{"xs", "ys"})
	if err != nil {
		return err
	}

	latency, err := analysis.AnalyzeLatency(ctx, srcOcc, dstFill, dist)
	if err != nil {
		return err
	}

	jumps, err := analysis.AnalyzeJumps(ctx, srcOcc, dstFill, dist)
	if err != nil {
		return err
	}

	fmt.Printf("S1: latency=%d jumps=%d\n", latency, jumps)

	return nil
}

func runRowBroadcast(ctx *algebra.Context) error {
	srcOcc, err := algebra.ParseMap(ctx, "{ [xs,ys] -> [a,b] : a = xs and b = ys and 0 <= xs < 8 and 0 <= ys < 8 }")
	if err != nil {
		return err
	}

	dstFill, err := algebra.ParseMap(ctx, "{ [xd,yd] -> [a,b] : a = xd and 0 <= b < 8 and 0 <= xd < 8 and 0 <= yd < 8 }")
	if err != nil {
		return err
	}

	dist, err := metric.ManhattanND(ctx, []string{"xd", "yd"}, []string{"xs", "ys"})
	if err != nil {
		return err
	}

	latency, err := analysis.AnalyzeLatency(ctx, srcOcc, dstFill, dist)
	if err != nil {
		return err
	}

	jumps, err := analysis.AnalyzeJumps(ctx, srcOcc, dstFill, dist)
	if err != nil {
		return err
	}

	fmt.Printf("S2: latency=%d jumps=%d\n", latency, jumps)

	return nil
}

func runRingSingleSource(ctx *algebra.Context) error {
	srcOcc, err := algebra.ParseMap(ctx, "{ [xs] -> [a] : 0 <= xs < 8 and a = xs }")
	if err != nil {
		return err
	}

	dstFill, err := algebra.ParseMap(ctx, "{ [xd] -> [a] : 0 <= a < 8 and xd = 0 }")
	if err != nil {
		return err
	}

	dist, err := metric.RingMetric(ctx, 8, "xd", "xs")
	if err != nil {
		return err
	}

	latency, err := analysis.AnalyzeLatency(ctx, srcOcc, dstFill, dist)
	if err != nil {
		return err
	}

	fmt.Printf("S3: latency=%d\n", latency)

	return nil
}

func runMeshCastStrideTwo(ctx *algebra.Context) error {
	srcOcc, err := algebra.ParseMap(ctx,
		"{ [xs,ys] -> [a,b] : a = 2*xs mod 4 and b = ys and 0 <= xs < 4 and 0 <= ys < 4 and 0 <= a < 4 and 0 <= b < 4 }")
	if err != nil {
		return err
	}

	dstFill, err := algebra.ParseMap(ctx,
		"{ [xd,yd] -> [a,b] : b = yd and 0 <= xd < 4 and 0 <= yd < 4 and 0 <= a < 4 and 0 <= b < 4 }")
	if err != nil {
		return err
	}

	dist, err := metric.ManhattanND(ctx, []string{"xd", "yd"}, []string{"xs", "ys"})
	if err != nil {
		return err
	}

	networks, err := analysis.IdentifyMeshCasts(ctx, srcOcc, dstFill, dist)
	if err != nil {
		return err
	}

	var total int64

	for _, net := range networks {
		cost, err := analysis.CostMeshCast(net, dist, analysis.PairSum, []string{"xs", "ys"}, []string{"xd", "yd"})
		if err != nil {
			return err
		}

		total += cost
	}

	fmt.Printf("S5: %d multicast networks, total cost=%d\n", len(networks), total)

	return nil
}
