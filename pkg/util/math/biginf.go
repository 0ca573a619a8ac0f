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
package math

import "math/big"

const notAnInfinity = 0
const negativeInfinity = 1
const positiveInfinity = 2

// PosInfinity represents positive infinity
var PosInfinity = InfInt{big.Int{}, positiveInfinity}

// NegInfinity represents negative infinity
var NegInfinity = InfInt{big.Int{}, negativeInfinity}

// InfInt represents an unbound (i.e. big) integer value which can,
// additionally, be either negative infinity or positive infinity.
type InfInt struct {
	// value of this integer; unused when sign marks an infinity.
	val big.Int
	// sign indicates whether we are not an infinity, or are negative infinity
	// or positive infinity.
	sign uint8
}

// IntVal converts a potentially infinite integer into a finite value.  This
// will panic if this value is an infinity.
func (p *InfInt) IntVal() big.Int {
	if p.sign != notAnInfinity {
		panic("cannot cast infinity into a big integer")
	}
	//
	return p.val
}

// IsNotAnInfinity returns true if this represents a finite integer value.
func (p *InfInt) IsNotAnInfinity() bool {
	return p.sign == notAnInfinity
}

// Min determines the least of two values.
func (p *InfInt) Min(o InfInt) InfInt {
	switch {
	case p.sign == notAnInfinity && o.sign == notAnInfinity:
		if p.val.Cmp(&o.val) <= 0 {
			return *p
		}
		//
		return o
	case p.sign == negativeInfinity || o.sign == negativeInfinity:
		return NegInfinity
	case p.sign == positiveInfinity:
		return o
	default:
		return *p
	}
}

// Max determines the greatest of two values.
func (p *InfInt) Max(o InfInt) InfInt {
	switch {
	case p.sign == notAnInfinity && o.sign == notAnInfinity:
		if p.val.Cmp(&o.val) >= 0 {
			return *p
		}
		//
		return o
	case p.sign == positiveInfinity || o.sign == positiveInfinity:
		return PosInfinity
	case p.sign == negativeInfinity:
		return o
	default:
		return *p
	}
}

// SetInt sets this to match a big integer.  Observe this will clone the
// underlying big integer.
func (p *InfInt) SetInt(other big.Int) {
	var val big.Int
	// Clone big int
	val.Set(&other)
	//
	p.val = val
	p.sign = notAnInfinity
}
