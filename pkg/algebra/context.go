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
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Context is a process-local session that owns every algebra object derived
// from it. A Context is not safe for concurrent use, and objects derived
// from one Context may not be passed to operations on another. There is no
// mutex. Operations call checkLive, which panics once the context has been
// released. Mixing contexts is detected only by ApplyRange, which returns an
// InternalAlgebraError; the other two-operand operations do not compare
// contexts. The generation counter is bumped on Release and is not read.
type Context struct {
	id         uuid.UUID
	cfg        Config
	generation uint64
	released   bool
}

// NewContext creates a fresh session, one per analysis run.
func NewContext(cfg Config) *Context {
	ctx := &Context{id: uuid.New(), cfg: cfg}

	if cfg.Verbose {
		log.WithField("context", ctx.id).Debug("context allocated")
	}

	return ctx
}

// ID returns the session identifier attached to this context's log lines.
func (c *Context) ID() uuid.UUID {
	return c.id
}

// Config returns the bounds this context enforces.
func (c *Context) Config() Config {
	return c.cfg
}

// Release invalidates every object derived from this context. Mirrors
// isl_ctx_free.
func (c *Context) Release() {
	c.released = true
	c.generation++

	if c.cfg.Verbose {
		log.WithField("context", c.id).Debug("context released")
	}
}

// checkLive panics if the context has been released; every handle-bearing
// object calls this before participating in an operation.
func (c *Context) checkLive() {
	if c.released {
		panic("algebra: use of object after its context was released")
	}
}

func (c *Context) logDebug(op string, args ...any) {
	if c.cfg.Verbose {
		fields := log.Fields{"context": c.id, "op": op}
		log.WithFields(fields).Debug(args...)
	}
}

// sameContext reports whether two context pointers are the same live
// session, required before combining any two objects.
func sameContext(a, b *Context) bool {
	return a != nil && a == b
}
