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

import "unsafe"

// header is the in-band record embedded at the start of every sub-region,
// free or active. Only plain, pointer-free data lives here: span, the
// bytes actually packed, and an (unused) fingerprint slot. This
// mirrors unsafex/malloc's buddy and bitmap allocators, which also write
// only scalar bookkeeping (magic, size) into the arena's own bytes.
//
// prev/next links and the send handle are deliberately kept out of band
// (see block below): a Go interface or pointer written into a raw []byte
// via unsafe is invisible to the garbage collector's pointer scan, which
// would be unsound. The source's intrusive C list is therefore ported to
// Go with out-of-band, pointer-linked block descriptors instead of
// in-band links.
type header struct {
	span     uint64 // total_span: bytes from this block's start to the next block (or arena end)
	used     uint64 // payload_bytes_used; meaningful only while the block is active
	fprint   uint64 // never written; DebugDump computes its fingerprint from span/used, see arena/debug.go
	reserved uint64 // sentinel: its natural alignment is what keeps payloadPtr() aligned for free
}

// block is the out-of-band descriptor for one in-band header: a block is
// on exactly one of the free or active lists at a time (spec.md §3
// invariant 5), and prev/next here are interpreted according to whichever
// list currently owns it.
type block struct {
	hdr  unsafe.Pointer // points at the in-band header inside the arena's bytes
	prev *block
	next *block

	// handle is the completion token returned by the send engine. Empty
	// (nil) while free.
	handle Handle

	// dest/tag identify the in-flight send this block carries, out of band
	// for the same reason handle is: recorded here so reclaimLocked can
	// carry them into the completion-history ring.
	dest int
	tag  int
}

func newBlock(hdr unsafe.Pointer) *block {
	return &block{hdr: hdr}
}

func (b *block) h() *header {
	return (*header)(b.hdr)
}

func (b *block) addr() uintptr {
	return uintptr(b.hdr)
}

func (b *block) span() int {
	return int(b.h().span)
}

func (b *block) setSpan(n int) {
	b.h().span = uint64(n)
}

func (b *block) end() uintptr {
	return b.addr() + uintptr(b.span())
}

// capacity returns payload_capacity = total_span - header_size (spec.md §3
// invariant 4), always recomputed rather than separately stored so it can
// never drift from span.
func (b *block) capacity() int {
	return b.span() - int(headerSize)
}

func (b *block) payloadPtr() unsafe.Pointer {
	return unsafe.Add(b.hdr, headerSize)
}

func (b *block) used() int {
	return int(b.h().used)
}

func (b *block) setUsed(n int) {
	b.h().used = uint64(n)
}

// unsafeSlice views n bytes starting at p as a []byte, backed by the
// arena's own memory rather than a copy.
func unsafeSlice(p unsafe.Pointer, n int) []byte {
	if n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), n)
}
