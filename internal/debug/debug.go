/*
 * Copyright 2025 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package debug provides a goroutine-tagged logger used by the arena and
// its reference collaborators for diagnostics. Unlike a build-tag-gated
// debug facility, it is always compiled in and gated at runtime by
// Logger.Enabled, so a caller can flip it on for one Arena without a
// rebuild.
package debug

import (
	"fmt"
	"os"

	"github.com/timandy/routine"
)

// Logger writes goroutine-ID-tagged diagnostic lines to an io.Writer
// (stderr by default). The zero value is a disabled logger: Logf is then
// a no-op, so callers can embed a Logger by value and never nil-check it.
type Logger struct {
	Enabled bool
	Out     *os.File
}

// NewLogger returns a Logger writing to stderr, enabled or not per on.
func NewLogger(on bool) Logger {
	return Logger{Enabled: on, Out: os.Stderr}
}

// Logf writes "[g%04d] operation: message" to Out if the logger is
// enabled. operation identifies the call site (e.g. "take", "detach").
func (l Logger) Logf(operation, format string, args ...any) {
	if !l.Enabled {
		return
	}
	out := l.Out
	if out == nil {
		out = os.Stderr
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(out, "[g%04d] %s: %s\n", routine.Goid(), operation, msg)
}

// Assert panics with format/args if cond is false. Used at internal
// invariant boundaries that should never trip in correct code, mirroring
// how the source treats a corrupted free list as fatal rather than
// recoverable.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("arena: internal assertion failed: "+format, args...))
	}
}
