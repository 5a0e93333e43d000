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
	"unsafe"

	"github.com/cloudwego/bsendarena/internal/debug"
)

// Arena manages one caller-donated byte region: an address-ordered free
// list, an active list of in-flight sends, and the mutual-exclusion guard
// that serializes every public operation against both (spec.md §3, §5).
//
// The zero value is not ready to use; construct one only via Attach.
type Arena struct {
	mu sync.Mutex

	// region keeps the caller's backing array reachable for as long as
	// the Arena is, so the garbage collector never reclaims memory the
	// in-band headers still point into.
	region []byte

	originBase unsafe.Pointer
	originSize int

	base     unsafe.Pointer
	capacity int

	freeHead   *block
	activeHead *block

	history *history
	log     debug.Logger

	// pooled marks an Arena whose region came from AttachPooled, so
	// DetachPooled knows to return it to the mempool pool.
	pooled bool
}

// Attach takes a caller-owned byte region and initializes slot with a
// fresh Arena over it (spec.md §4.1). It fails with ErrBufferTooSmall if
// len(region) < MinBufferOverhead, and ErrBufferAlreadyAttached if slot
// already holds a non-empty arena.
func Attach(slot *Slot, region []byte) error {
	if len(region) < MinBufferOverhead {
		return fmt.Errorf("%w: got %d bytes, need >= %d", ErrBufferTooSmall, len(region), MinBufferOverhead)
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.a != nil {
		return ErrBufferAlreadyAttached
	}

	originBase := unsafe.Pointer(&region[0])
	originSize := len(region)

	base := originBase
	size := originSize
	if off := int(uintptr(base) % Alignment); off != 0 {
		shift := Alignment - off
		base = unsafe.Add(base, shift)
		size -= shift
	}
	// total_span must always be a multiple of Alignment (spec.md §3
	// invariant 6); floor any trailing slack bytes below that boundary
	// out of the usable capacity. The discarded bytes stay reachable
	// through region/originBase and are returned verbatim by Detach.
	size = alignDown(size)
	if size < MinBufferOverhead {
		return fmt.Errorf("%w: %d usable bytes after alignment, need >= %d", ErrBufferTooSmall, size, MinBufferOverhead)
	}
	debug.Assert(size%Alignment == 0, "arena base size %d not a multiple of Alignment", size)

	a := &Arena{
		region:     region,
		originBase: originBase,
		originSize: originSize,
		base:       base,
		capacity:   size,
		history:    newHistory(historySize),
	}

	root := newBlock(base)
	root.setSpan(size)
	a.freeHead = root

	slot.a = a
	return nil
}

// Detach empties slot and returns the caller's original region,
// verbatim, after waiting synchronously for every outstanding send
// (spec.md §4.2). An empty slot detaches as a no-op.
func Detach(slot *Slot, engine SendEngine) ([]byte, error) {
	slot.mu.Lock()
	a := slot.a
	slot.a = nil
	slot.mu.Unlock()

	if a == nil {
		return nil, nil
	}

	a.mu.Lock()
	cur := a.activeHead
	a.activeHead = nil
	a.mu.Unlock()

	var progressErr error
	if engine != nil {
		if err := engine.ProgressTest(); err != nil {
			progressErr = fmt.Errorf("%w: %w", ErrProgressFailed, err)
			a.log.Logf("detach", "progress failed: %v", err)
		}
	}

	// The drain intentionally does not maintain list links while
	// unlinking (spec.md §9 open question: matches the source's
	// documented behavior) and releases the guard across each Wait so a
	// concurrent progress engine is never deadlocked against it.
	for cur != nil {
		next := cur.next
		if cur.handle != nil {
			if err := cur.handle.Wait(nil); err != nil {
				a.log.Logf("detach", "wait failed: %v", err)
			}
			cur.handle.Release()
		}
		cur = next
	}

	region := a.region
	return region, progressErr
}

// Finalize implements spec.md §6's finalize(slot) operation: detach the
// slot if it still holds an arena, waiting for every outstanding send as
// Detach does, then leave the slot empty. It is a no-op on an
// already-empty slot.
func Finalize(slot *Slot, engine SendEngine) error {
	_, err := Detach(slot, engine)
	return err
}

// Peek returns the Arena currently attached to slot, or nil if none is.
// It exists for diagnostics (e.g. DebugDump); callers should not rely on
// the returned Arena staying attached to this slot.
func (s *Slot) Peek() *Arena {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a
}

// Capacity returns the arena's usable capacity (after Attach-time
// alignment), for diagnostics.
func (a *Arena) Capacity() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.capacity
}

// Available sums the payload capacity of every free block.
func (a *Arena) Available() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	total := 0
	for b := a.freeHead; b != nil; b = b.next {
		total += b.capacity()
	}
	return total
}
