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
package bigint

import (
	"math/big"
	"testing"

	"github.com/foldmesh/spatialcost/internal/assert"
)

func TestIntersectRangeNarrowsBothSides(t *testing.T) {
	lo, hi := IntersectRange(big.NewInt(0), big.NewInt(10), big.NewInt(3), big.NewInt(7))

	assert.Equal(t, int64(3), lo.Int64())
	assert.Equal(t, int64(7), hi.Int64())
}

func TestIntersectRangeOneSidedNilDefersToTheOtherSide(t *testing.T) {
	lo, hi := IntersectRange(nil, nil, big.NewInt(-4), big.NewInt(4))

	assert.Equal(t, int64(-4), lo.Int64())
	assert.Equal(t, int64(4), hi.Int64())
}

func TestIntersectRangeBothNilStaysUnbounded(t *testing.T) {
	lo, hi := IntersectRange(nil, nil, nil, nil)

	assert.True(t, lo == nil, "lower bound should stay unbounded")
	assert.True(t, hi == nil, "upper bound should stay unbounded")
}
