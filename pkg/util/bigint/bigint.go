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

// Package bigint adapts pkg/util/math's infinite-integer arithmetic to the
// nil-means-unbounded *big.Int convention pkg/algebra's Bound uses, so the
// box-tightening step of relation composition doesn't have to reinvent
// infinity handling.
package bigint

import (
	"math/big"

	umath "github.com/foldmesh/spatialcost/pkg/util/math"
)

// IntersectRange tightens two ranges, nil meaning unbounded on that side,
// returning the narrower range: max of the two lower bounds, min of the two
// upper bounds.
func IntersectRange(aLo, aHi, bLo, bHi *big.Int) (lo, hi *big.Int) {
	aLoI, bLoI := toInfInt(aLo, umath.NegInfinity), toInfInt(bLo, umath.NegInfinity)
	aHiI, bHiI := toInfInt(aHi, umath.PosInfinity), toInfInt(bHi, umath.PosInfinity)

	loI := aLoI.Max(bLoI)
	hiI := aHiI.Min(bHiI)

	return fromInfInt(loI), fromInfInt(hiI)
}

func toInfInt(v *big.Int, ifNil umath.InfInt) umath.InfInt {
	if v == nil {
		return ifNil
	}

	var i umath.InfInt

	i.SetInt(*v)

	return i
}

func fromInfInt(i umath.InfInt) *big.Int {
	if !i.IsNotAnInfinity() {
		return nil
	}

	v := i.IntVal()

	return &v
}
