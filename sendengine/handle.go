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

// Package sendengine is a deliberately modest, in-memory reference
// implementation of arena.SendEngine: it copies a payload into a staging
// buffer and completes it asynchronously on a worker pool, rather than
// driving any real transport. The send-engine/progress-engine boundary is
// out of scope as a production subsystem; this package exists so the
// arena has something real to drive in tests and the demo command.
package sendengine

import (
	"errors"
	"sync"
	"sync/atomic"
)

var errReleased = errors.New("sendengine: handle already released")

// handle is modeled on the magic-plus-channel completion token pattern
// used by an io_uring-backed send path: each handle carries a unique,
// monotonic magic value (no method here checks it), and done is closed
// exactly once to broadcast completion to any number of concurrent
// Wait/IsComplete callers.
type handle struct {
	magic uint64
	done  chan struct{}

	mu      sync.Mutex
	result  error
	settled bool
	refs    int32
}

var magicSeq uint64

func newHandle() *handle {
	return &handle{
		magic: atomic.AddUint64(&magicSeq, 1),
		done:  make(chan struct{}),
		refs:  1,
	}
}

// complete is called exactly once, from the worker that performed the
// (simulated) send, to deliver the outcome. Closing done lets any number
// of concurrent Wait/IsComplete calls observe it.
func (h *handle) complete(err error) {
	h.mu.Lock()
	if h.settled {
		h.mu.Unlock()
		return
	}
	h.settled = true
	h.result = err
	h.mu.Unlock()
	close(h.done)
}

// IsComplete reports whether complete has already been called, without
// blocking.
func (h *handle) IsComplete() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.settled
}

// Wait blocks until complete is called or stop fires, whichever is first.
// A nil stop channel waits unconditionally, matching the drain-on-detach
// use from arena.Detach.
func (h *handle) Wait(stop <-chan struct{}) error {
	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.result
	case <-stop:
		return errReleased
	}
}

// Release drops a reference; IsValid reports false once the last
// reference is gone.
func (h *handle) Release() {
	atomic.AddInt32(&h.refs, -1)
}

// AddReference increments the reference count, letting more than one
// caller hold the same handle (e.g. a debug dump inspecting an in-flight
// send without taking ownership of its lifecycle).
func (h *handle) AddReference() {
	atomic.AddInt32(&h.refs, 1)
}

// IsValid reports whether the handle still has outstanding references.
func (h *handle) IsValid() bool {
	return atomic.LoadInt32(&h.refs) > 0
}

// IsPersistent always reports false: Engine only ever issues one-shot
// sends, never the repeatable persistent requests MPI_Start re-arms.
func (h *handle) IsPersistent() bool {
	return false
}
