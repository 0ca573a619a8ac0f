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

import "strings"

// Dim is one named dimension of a tuple.
type Dim struct {
	Name string
}

// Space is the typed signature of an algebra object: parameter, domain
// ("In") and range ("Out") dimensions, with optional tuple identifiers. A
// Set uses only Params+In (Out is empty); a Relation uses all three.
type Space struct {
	Params []Dim
	In     []Dim
	Out    []Dim
	// InID/OutID are the optional named-tuple identifiers, e.g. "src" for
	// a tuple written src[xs,ys]. Empty means anonymous.
	InID  string
	OutID string
	// InSplit/OutSplit record that In (resp. Out) is itself a wrapped pair
	// of tuples glued together by Wrap/Curry, and where the seam sits.
	// -1 means "not wrapped". These exist purely so Unwrap/Curry/Uncurry
	// can reinterpret a relation's existing tuples without touching them.
	InSplit  int
	OutSplit int
}

// NewSpace builds a Space from dimension names. Pass nil/empty for out to
// get a Set-shaped space.
func NewSpace(params, in, out []string) Space {
	return Space{Params: namesToDims(params), In: namesToDims(in), Out: namesToDims(out), InSplit: -1, OutSplit: -1}
}

// WithTupleIDs returns a copy of s carrying the given named-tuple
// identifiers.
func (s Space) WithTupleIDs(inID, outID string) Space {
	s.InID, s.OutID = inID, outID
	return s
}

func namesToDims(names []string) []Dim {
	if len(names) == 0 {
		return nil
	}

	dims := make([]Dim, len(names))
	for i, n := range names {
		dims[i] = Dim{Name: n}
	}

	return dims
}

// InArity is the domain tuple's arity.
func (s Space) InArity() int { return len(s.In) }

// OutArity is the range tuple's arity.
func (s Space) OutArity() int { return len(s.Out) }

// ParamArity is the number of symbolic parameters.
func (s Space) ParamArity() int { return len(s.Params) }

// IsSet reports whether this space describes a Set (no range tuple).
func (s Space) IsSet() bool { return len(s.Out) == 0 }

// dimNames returns Params++In++Out, the full evaluation environment order.
func (s Space) dimNames() []string {
	names := make([]string, 0, len(s.Params)+len(s.In)+len(s.Out))
	for _, d := range s.Params {
		names = append(names, d.Name)
	}

	for _, d := range s.In {
		names = append(names, d.Name)
	}

	for _, d := range s.Out {
		names = append(names, d.Name)
	}

	return names
}

// dimNamesOf extracts the names of a plain Dim slice, e.g. for feeding
// Space.In/Space.Out into something keyed by name.
func dimNamesOf(dims []Dim) []string {
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = d.Name
	}

	return names
}

func dimsEqual(a, b []Dim) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i].Name != "" && b[i].Name != "" && a[i].Name != b[i].Name {
			return false
		}
	}

	return true
}

// Equal reports whether two spaces are compatible for operations requiring
// identical spaces: same arities, and any dimension that is named on both
// sides must agree; tuple identifiers, when both present, must match.
func (s Space) Equal(o Space) bool {
	if !dimsEqual(s.Params, o.Params) || !dimsEqual(s.In, o.In) || !dimsEqual(s.Out, o.Out) {
		return false
	}

	if s.InID != "" && o.InID != "" && s.InID != o.InID {
		return false
	}

	if s.OutID != "" && o.OutID != "" && s.OutID != o.OutID {
		return false
	}

	return true
}

// String renders a space in named-tuple style, "src[xs,ys]", when a tuple
// id is present, or plain "[xs,ys]" otherwise.
func (s Space) String() string {
	var b strings.Builder

	writeTuple := func(id string, dims []Dim) {
		if id != "" {
			b.WriteString(id)
		}

		b.WriteByte('[')

		for i, d := range dims {
			if i > 0 {
				b.WriteByte(',')
			}

			b.WriteString(d.Name)
		}

		b.WriteByte(']')
	}

	writeTuple(s.InID, s.In)

	if !s.IsSet() {
		b.WriteString(" -> ")
		writeTuple(s.OutID, s.Out)
	}

	return b.String()
}

// rangeSpace returns the Set-shaped space of this Relation's range tuple.
func (s Space) rangeSpace() Space {
	return Space{Params: s.Params, In: s.Out, InID: s.OutID, InSplit: s.OutSplit, OutSplit: -1}
}

// domainSpace returns the Set-shaped space of this Relation's domain tuple.
func (s Space) domainSpace() Space {
	return Space{Params: s.Params, In: s.In, InID: s.InID, InSplit: s.InSplit, OutSplit: -1}
}

// productSpace builds the space of (In) -> (A.Out, B.Out) used by
// range_product. The result's range is a plain concatenation, not a
// wrapped pair, matching isl's range_product (range_wrap is a distinct,
// separate operation this module does not need).
func productSpace(in []Dim, inID string, params []Dim, aOut, bOut []Dim) Space {
	out := make([]Dim, 0, len(aOut)+len(bOut))
	out = append(out, aOut...)
	out = append(out, bOut...)

	return Space{Params: params, In: in, InID: inID, Out: out, InSplit: -1, OutSplit: -1}
}
