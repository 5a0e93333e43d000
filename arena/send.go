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

package arena

import (
	"fmt"
	"sync"
)

// DataType names the opaque payload kinds the reference Packer can pack.
// Real transports carry far more (derived MPI datatypes, vectors, ...);
// this set is deliberately small since Packer is an external collaborator
// interface, not a production wire format.
type DataType int

const (
	Byte DataType = iota
	Int32
	Int64
	Float64
	BytesType
)

// Packer packs count elements of typ, read from src, into dst, returning
// the number of bytes written. It must never write past len(dst); Send
// relies on that to keep every in-flight payload inside the block it was
// carved from.
type Packer interface {
	PackSize(typ DataType, count int) int
	Pack(dst []byte, typ DataType, src any, count int) (int, error)
}

// Handle is the completion token a SendEngine returns from Isend. Arena
// polls IsComplete after each ProgressTest and calls Release once a block has
// been reclaimed; it never calls Wait itself except while draining on
// Detach. IsPersistent and AddReference are the standard completion-handle
// operations spec.md §6 requires alongside IsComplete/Wait/Release: a
// caller that asked Send for its own handle (via the out parameter) gets
// an extra reference via AddReference before Send hands it back, so the
// caller's Release is independent of the arena's own bookkeeping.
type Handle interface {
	IsComplete() bool
	Wait(stop <-chan struct{}) error
	Release()
	IsPersistent() bool
	AddReference()
}

// SendEngine is the non-blocking send facility Arena drives. Isend must
// return promptly; Send calls it without holding the arena's mutex, after
// the block has been carved and packed, and receives only the packed
// payload and dest (tag stays in the arena's own block record).
// ProgressTest polls every in-flight operation's transport for progress;
// it may be called speculatively and must not block. An error return
// reports a progress failure from the underlying transport (spec.md §7's
// PROGRESS_FAILED condition); Send and Detach surface it wrapped in
// ErrProgressFailed.
type SendEngine interface {
	Isend(payload []byte, dest int) (Handle, error)
	ProgressTest() error
}

// Slot holds one arena that may or may not currently be attached. The
// three-level lookup (communicator, communicator's session, process) is
// modeled directly as three Slot values with their own mutex each, so
// Attach/Detach on one never contends with the others.
type Slot struct {
	mu sync.Mutex
	a  *Arena
}

// Comm is a communicator: its own slot, plus the session slot it was
// created against. Lookup order for Send is Comm.Own, then
// Comm.Session.Own, then the package-level Process slot (spec.md §6).
type Comm struct {
	Own     Slot
	Session *Session
}

// Session groups communicators created together; it carries the
// second-priority arena slot in the resolution order.
type Session struct {
	Own Slot
}

// Process is the last-resort arena slot: shared by every communicator
// that has neither its own nor its session's buffer attached.
var Process Slot

// resolveSlot implements the precedence in spec.md §6: communicator slot,
// then its session's slot, then the process slot.
func resolveSlot(c *Comm) *Slot {
	if c != nil {
		c.Own.mu.Lock()
		has := c.Own.a != nil
		c.Own.mu.Unlock()
		if has {
			return &c.Own
		}
		if c.Session != nil {
			c.Session.Own.mu.Lock()
			has := c.Session.Own.a != nil
			c.Session.Own.mu.Unlock()
			if has {
				return &c.Session.Own
			}
		}
	}
	return &Process
}

// Send packs count elements of typ from src via packer, carves a block
// for the packed payload out of the resolved arena, hands it to engine's
// Isend, and returns once initiation has either succeeded or definitively
// failed. It implements the two-pass reclaim-then-allocate loop from
// spec.md §4.5: this is not a general retry loop, it runs progress at
// most twice before giving up with ErrNoBufferSpace.
//
// tag identifies the send alongside dest, carried through to the
// completion-history ring (spec.md §3). If out is non-nil, Send shares
// out an additional reference to the send's handle (spec.md §4.5: "If
// the caller asked for a handle to wait on, share-out an additional
// reference to p.send_handle") so the caller may track completion
// independently of the arena's own reclaim.
func Send(c *Comm, packer Packer, engine SendEngine, typ DataType, src any, count, dest, tag int, out *Handle) error {
	slot := resolveSlot(c)

	slot.mu.Lock()
	a := slot.a
	slot.mu.Unlock()
	if a == nil {
		return ErrNoBufferAttached
	}

	n := packer.PackSize(typ, count)

	a.mu.Lock()
	p := a.findFit(n)
	if p == nil {
		a.mu.Unlock()
		if err := engine.ProgressTest(); err != nil {
			return fmt.Errorf("%w: %w", ErrProgressFailed, err)
		}
		a.mu.Lock()
		a.reclaimLocked(engine)
		p = a.findFit(n)
		if p == nil {
			a.mu.Unlock()
			if err := engine.ProgressTest(); err != nil {
				return fmt.Errorf("%w: %w", ErrProgressFailed, err)
			}
			a.mu.Lock()
			a.reclaimLocked(engine)
			p = a.findFit(n)
			if p == nil {
				total := a.capacity
				a.mu.Unlock()
				return &SpaceError{Requested: n, Capacity: total}
			}
		}
	}

	a.take(p, n)
	p.dest, p.tag = dest, tag
	a.mu.Unlock()

	written, err := packer.Pack(payloadSlice(p), typ, src, count)
	if err != nil {
		a.mu.Lock()
		a.activeListRemove(p)
		a.freeWithMerge(p)
		a.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrPackFailed, err)
	}
	p.setUsed(written)

	h, err := engine.Isend(payloadSlice(p)[:written], dest)
	if err != nil {
		a.mu.Lock()
		a.activeListRemove(p)
		a.freeWithMerge(p)
		a.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrSendInitFailed, err)
	}

	a.mu.Lock()
	p.handle = h
	if out != nil {
		h.AddReference()
		*out = h
	}
	a.mu.Unlock()

	return nil
}

// reclaimLocked walks the active list once, reclaiming every block whose
// handle reports completion. a.mu must be held by the caller.
func (a *Arena) reclaimLocked(engine SendEngine) {
	cur := a.activeHead
	for cur != nil {
		next := cur.next
		if cur.handle != nil && cur.handle.IsComplete() {
			ok := true
			dest, tag, span, addr := cur.dest, cur.tag, cur.span(), cur.addr()
			cur.handle.Release()
			a.activeListRemove(cur)
			a.freeWithMerge(cur)
			if a.history != nil {
				a.history.push(completionRecord{addr: addr, span: span, dest: dest, tag: tag, ok: ok})
			}
		}
		cur = next
	}
}

// payloadSlice returns p's payload region as a []byte of length
// p.capacity(), backed by the arena's own memory.
func payloadSlice(p *block) []byte {
	return unsafeSlice(p.payloadPtr(), p.capacity())
}
