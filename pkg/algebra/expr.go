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
	"fmt"
	"math/big"
)

// Expr is the integer-valued term tree shared by PwAff pieces (affine
// expressions) and PwQP pieces (quasi-polynomials). Polyhedral libraries
// like isl/barvinok have no absolute-value primitive, so a Manhattan
// distance has to be built from max(delta, -delta) instead; this tree has
// Max/Min/Mod nodes precisely so that rule, and a ring metric's modular
// distance, can be expressed directly instead of re-deriving them ad hoc
// at every call site.
//
// Shaped after the sum-of-terms structure of a generic polynomial type,
// generalized from big.Int field coefficients (which exist for
// arithmetizing finite-field circuits) down to plain signed integer
// coefficients, because nothing in this algebra is a finite-field element.
type Expr interface {
	// Eval evaluates this expression given a binding of dimension name to
	// value.
	Eval(env map[string]*big.Int) *big.Int
	// Vars returns the free dimension names this expression reads.
	Vars() []string
	String() string
}

// Const is a literal integer.
type Const struct{ V int64 }

func (c Const) Eval(map[string]*big.Int) *big.Int { return big.NewInt(c.V) }
func (c Const) Vars() []string                     { return nil }
func (c Const) String() string                     { return fmt.Sprintf("%d", c.V) }

// Var reads a named dimension from the environment.
type Var struct{ Name string }

func (v Var) Eval(env map[string]*big.Int) *big.Int {
	if val, ok := env[v.Name]; ok {
		return new(big.Int).Set(val)
	}

	panic(fmt.Sprintf("algebra: unbound dimension %q", v.Name))
}
func (v Var) Vars() []string { return []string{v.Name} }
func (v Var) String() string { return v.Name }

// Add sums two expressions.
type Add struct{ A, B Expr }

func (e Add) Eval(env map[string]*big.Int) *big.Int {
	return new(big.Int).Add(e.A.Eval(env), e.B.Eval(env))
}
func (e Add) Vars() []string { return append(e.A.Vars(), e.B.Vars()...) }
func (e Add) String() string { return fmt.Sprintf("(%s + %s)", e.A, e.B) }

// Sub subtracts B from A.
type Sub struct{ A, B Expr }

func (e Sub) Eval(env map[string]*big.Int) *big.Int {
	return new(big.Int).Sub(e.A.Eval(env), e.B.Eval(env))
}
func (e Sub) Vars() []string { return append(e.A.Vars(), e.B.Vars()...) }
func (e Sub) String() string { return fmt.Sprintf("(%s - %s)", e.A, e.B) }

// Neg negates an expression.
type Neg struct{ A Expr }

func (e Neg) Eval(env map[string]*big.Int) *big.Int { return new(big.Int).Neg(e.A.Eval(env)) }
func (e Neg) Vars() []string                         { return e.A.Vars() }
func (e Neg) String() string                         { return fmt.Sprintf("-%s", e.A) }

// Scale multiplies an expression by a constant coefficient.
type Scale struct {
	Coeff int64
	A     Expr
}

func (e Scale) Eval(env map[string]*big.Int) *big.Int {
	return new(big.Int).Mul(big.NewInt(e.Coeff), e.A.Eval(env))
}
func (e Scale) Vars() []string { return e.A.Vars() }
func (e Scale) String() string { return fmt.Sprintf("(%d*%s)", e.Coeff, e.A) }

// Max is the binary maximum, the only way to express absolute value in
// this algebra: |d| = max(d, -d).
type Max struct{ A, B Expr }

func (e Max) Eval(env map[string]*big.Int) *big.Int {
	a, b := e.A.Eval(env), e.B.Eval(env)
	if a.Cmp(b) >= 0 {
		return a
	}

	return b
}
func (e Max) Vars() []string { return append(e.A.Vars(), e.B.Vars()...) }
func (e Max) String() string { return fmt.Sprintf("max(%s, %s)", e.A, e.B) }

// Min is the binary minimum, used by ring-wrap distance's
// min(delta+, delta-).
type Min struct{ A, B Expr }

func (e Min) Eval(env map[string]*big.Int) *big.Int {
	a, b := e.A.Eval(env), e.B.Eval(env)
	if a.Cmp(b) <= 0 {
		return a
	}

	return b
}
func (e Min) Vars() []string { return append(e.A.Vars(), e.B.Vars()...) }
func (e Min) String() string { return fmt.Sprintf("min(%s, %s)", e.A, e.B) }

// Mod computes the Euclidean (non-negative) remainder of A modulo the
// constant N, matching isl's modulo semantics.
type Mod struct {
	A Expr
	N int64
}

func (e Mod) Eval(env map[string]*big.Int) *big.Int {
	a := e.A.Eval(env)
	n := big.NewInt(e.N)
	r := new(big.Int).Mod(a, n) // big.Int.Mod is already Euclidean (>= 0)

	return r
}
func (e Mod) Vars() []string { return e.A.Vars() }
func (e Mod) String() string { return fmt.Sprintf("(%s mod %d)", e.A, e.N) }

// Abs is sugar for Max(A, Neg(A)): it returns a Max node, and there is no
// separate absolute-value node.
func Abs(a Expr) Expr { return Max{A: a, B: Neg{A: a}} }

// Sum folds a list of expressions with Add, defaulting to Const{0}.
func Sum(es ...Expr) Expr {
	if len(es) == 0 {
		return Const{0}
	}

	acc := es[0]
	for _, e := range es[1:] {
		acc = Add{A: acc, B: e}
	}

	return acc
}
