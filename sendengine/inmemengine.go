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

package sendengine

import (
	"sync"
	"time"

	"github.com/bytedance/gopkg/lang/mcache"

	"github.com/cloudwego/bsendarena/arena"
	"github.com/cloudwego/bsendarena/concurrency/gopool"
	"github.com/cloudwego/bsendarena/internal/debug"
)

// Engine is a non-blocking, in-memory arena.SendEngine: Isend copies the
// payload out of the arena into an mcache-pooled staging buffer (so the
// arena's block can be reclaimed the instant Isend returns) and completes
// the handle asynchronously on a gopool worker after Latency elapses.
// Completed payloads are delivered to Deliver, if set.
type Engine struct {
	// Latency simulates transport delay; zero completes as soon as the
	// worker pool schedules the goroutine.
	Latency time.Duration

	// Deliver, if non-nil, is called with a copy of each sent payload and
	// its destination once the simulated transport "delivers" it.
	Deliver func(dest int, payload []byte)

	pool *gopool.GoPool
	log  debug.Logger

	mu      sync.Mutex
	pending []*handle
}

// New returns an Engine backed by its own worker pool.
func New() *Engine {
	return &Engine{pool: gopool.NewGoPool("sendengine", nil)}
}

// SetLogger attaches a diagnostic logger.
func (e *Engine) SetLogger(l debug.Logger) {
	e.log = l
}

// Isend implements arena.SendEngine.
func (e *Engine) Isend(payload []byte, dest int) (arena.Handle, error) {
	staging := mcache.Malloc(len(payload))
	copy(staging, payload)

	h := newHandle()

	e.mu.Lock()
	e.pending = append(e.pending, h)
	e.mu.Unlock()

	e.pool.Go(func() {
		if e.Latency > 0 {
			time.Sleep(e.Latency)
		}
		if e.Deliver != nil {
			e.Deliver(dest, staging[:len(payload)])
		}
		mcache.Free(staging)
		e.log.Logf("isend", "delivered %d bytes to dest=%d", len(payload), dest)
		h.complete(nil)
	})

	return h, nil
}

// ProgressTest drops any handle that has already completed from the
// pending set; it never blocks. Real progress happens on the gopool
// workers spawned by Isend, so this is mostly bookkeeping plus a hook for
// transports where progress must be pumped explicitly. It always returns
// nil: the in-memory transport has no I/O to fail on. A real SendEngine
// backed by a socket or RDMA transport would return a non-nil error here
// to report a broken connection.
func (e *Engine) ProgressTest() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	live := e.pending[:0]
	for _, h := range e.pending {
		if !h.IsComplete() {
			live = append(live, h)
		}
	}
	e.pending = live
	return nil
}
