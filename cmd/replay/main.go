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

// Command replay drives a small fixed folding-engine trace layer by layer and
// prints each layer's crease+multicast cost and the residual binding handed
// to the next layer, mirroring the teacher's pkg/cmd/debug stats printer.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/foldmesh/spatialcost/pkg/algebra"
	"github.com/foldmesh/spatialcost/pkg/fold"
)

var rootCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a fixed folding-engine trace, layer by layer.",
	Long: `Replay builds a small chain of folding layers over a fixed
binding and prints the crease cost, multicast cost, and residual
binding produced at each step.`,
	Run: func(cmd *cobra.Command, _ []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			log.SetLevel(log.DebugLevel)
		}

		if err := run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log each layer's algebra steps")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// layers builds the two-layer trunk-then-branch chain this command replays:
// a trunk layer that creases away an x-axis straddling zero and multicasts
// across the surviving y-axis, followed by a branch layer that passes
// whatever the trunk layer could not satisfy straight through, to show the
// residual-binding mechanism on the one datum the trunk layer leaves
// unsupplied.
func layers(ctx *algebra.Context) ([]fold.Layer, error) {
	creaseCost, err := algebra.ParsePwAff(ctx, "{ [id,x,y] -> [x] : x >= 0 ; [id,x,y] -> [-x] : x < 0 }")
	if err != nil {
		return nil, err
	}

	foldRel, err := algebra.ParseMap(ctx, "{ [id,x,y] -> [id,y] }")
	if err != nil {
		return nil, err
	}

	multicastCost, err := algebra.ParsePwAff(ctx, "{ [id,y] -> [y+1] }")
	if err != nil {
		return nil, err
	}

	srcCollapser, err := algebra.ParseMap(ctx, "{ [id] -> [id] : 0 <= id <= 0 }")
	if err != nil {
		return nil, err
	}

	dstCollapser, err := algebra.ParseMap(ctx, "{ [id] -> [id,x,y] : 0 <= id <= 0 and -2 <= x <= 2 and -2 <= y <= 2 }")
	if err != nil {
		return nil, err
	}

	trunk := fold.NewLayer(ctx, fold.LayerSpec{
		CreaseCost:    creaseCost,
		Fold:          foldRel,
		MulticastCost: multicastCost,
		SrcCollapser:  srcCollapser,
		DstCollapser:  dstCollapser,
	})

	identityCrease, err := algebra.ParsePwAff(ctx, "{ [id] -> [0] }")
	if err != nil {
		return nil, err
	}

	identityFold, err := algebra.ParseMap(ctx, "{ [id] -> [id] }")
	if err != nil {
		return nil, err
	}

	identityMulticast, err := algebra.ParsePwAff(ctx, "{ [id] -> [0] }")
	if err != nil {
		return nil, err
	}

	branchSrcCollapser, err := algebra.ParseMap(ctx, "{ [id] -> [id] : 0 <= id <= 0 }")
	if err != nil {
		return nil, err
	}

	branchDstCollapser, err := algebra.ParseMap(ctx, "{ [id] -> [id] : 0 <= id <= 0 }")
	if err != nil {
		return nil, err
	}

	branch := fold.NewLayer(ctx, fold.LayerSpec{
		CreaseCost:    identityCrease,
		Fold:          identityFold,
		MulticastCost: identityMulticast,
		SrcCollapser:  branchSrcCollapser,
		DstCollapser:  branchDstCollapser,
	})

	return []fold.Layer{trunk, branch}, nil
}

func run() error {
	ctx := algebra.NewContext(algebra.Config{Verbose: true})
	defer ctx.Release()

	srcs, err := algebra.ParseMap(ctx, "{ [id] -> [data] : id = 0 and data = 0 }")
	if err != nil {
		return err
	}

	dsts, err := algebra.ParseMap(ctx, "{ [id,x,y] -> [data] : id = 0 and x = -1 and 0 <= y <= 1 and data = y }")
	if err != nil {
		return err
	}

	extra, err := algebra.ParseMap(ctx, "{ [id,x,y] -> [data] : id = 0 and x = 1 and 0 <= y <= 1 and data = y }")
	if err != nil {
		return err
	}

	dstPts, err := algebra.Points(dsts)
	if err != nil {
		return err
	}

	extraPts, err := algebra.Points(extra)
	if err != nil {
		return err
	}

	dsts = algebra.FromPoints(ctx, dsts.Space(), append(dstPts, extraPts...))

	ls, err := layers(ctx)
	if err != nil {
		return err
	}

	binding := fold.Binding{Srcs: srcs, Dsts: dsts}

	var total int64

	for i, layer := range ls {
		log.Debugf("replaying layer %d", i)

		cost, next, err := layer.Evaluate(binding)
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}

		residual, err := algebra.Points(next.Dsts)
		if err != nil {
			return err
		}

		fmt.Printf("layer %d: cost=%d residual_dsts=%d\n", i, cost, len(residual))

		total += cost
		binding = next
	}

	fmt.Printf("total cost=%d\n", total)

	return nil
}
