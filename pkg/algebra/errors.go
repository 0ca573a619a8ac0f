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

import "fmt"

// Kind identifies one of the closed set of failure modes the façade can
// report.
type Kind uint8

const (
	// ParseError means a string input did not denote a valid integer
	// relation, set, affine function or quasi-polynomial.
	ParseError Kind = iota
	// SpaceMismatch means two operands' spaces are incompatible for the
	// requested algebra.
	SpaceMismatch
	// Unbounded means an extremum or count was requested on a domain that
	// is not finite (or exceeds Config.MaxEnumeration).
	Unbounded
	// NotSingleton means a piecewise object required to have exactly one
	// piece did not.
	NotSingleton
	// Domain means a precondition on dimension counts, sign or
	// non-emptiness failed.
	Domain
	// InternalAlgebraError covers failures not fitting the other kinds.
	InternalAlgebraError
)

// String renders a Kind for error messages and logging.
func (k Kind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case SpaceMismatch:
		return "SpaceMismatch"
	case Unbounded:
		return "Unbounded"
	case NotSingleton:
		return "NotSingleton"
	case Domain:
		return "Domain"
	case InternalAlgebraError:
		return "InternalAlgebraError"
	default:
		return "UnknownKind"
	}
}

// Error is the structured error every façade operation returns on failure.
// It carries the operation name, the kind, and a description, the same way
// a syntax error from a parser retains structured context rather than
// collapsing straight to a string.
type Error struct {
	Op      string
	Kind    Kind
	Message string
}

// NewError constructs a façade error.
func NewError(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

// KindOf reports the Kind of err when err is an *Error. It is a direct type
// assertion: an *Error wrapped inside another error is not unwrapped.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if err == nil {
		return 0, false
	}

	if ae, ok := err.(*Error); ok {
		fe = ae
		return fe.Kind, true
	}

	return 0, false
}
