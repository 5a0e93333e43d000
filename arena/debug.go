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
	"io"

	"github.com/cloudwego/bsendarena/hash/xfnv"
	"github.com/cloudwego/bsendarena/internal/debug"
	"github.com/cloudwego/bsendarena/unsafex"
)

// previewLen bounds how much of an active block's payload DebugDump
// renders as text.
const previewLen = 32

// preview returns a zero-copy string view of the first previewLen bytes
// actually used by b, for human inspection only; the view is only valid
// as long as the arena's backing region is.
func preview(b *block) string {
	n := b.used()
	if n > previewLen {
		n = previewLen
	}
	return unsafex.BinaryToString(unsafeSlice(b.payloadPtr(), n))
}

// SetLogger attaches a runtime-gated diagnostic logger to the arena. Pass
// debug.NewLogger(true) to enable; the zero Logger is silent.
func (a *Arena) SetLogger(l debug.Logger) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.log = l
}

// fingerprint returns an xfnv hash over a block's span and used header
// fields. DebugDump prints it beside each block, so a header stomped on
// by an out-of-bounds write shows up as a changed value between dumps;
// DebugDump itself does not compare it against anything.
func fingerprint(b *block) uint64 {
	var buf [24]byte
	s := b.span()
	u := b.used()
	for i := 0; i < 8; i++ {
		buf[i] = byte(s >> (8 * i))
		buf[8+i] = byte(u >> (8 * i))
	}
	return xfnv.Hash(buf[:16])
}

// DebugDump writes a human-readable snapshot of the free list, the active
// list, and the completion history to w. It never mutates arena state and
// is safe to call concurrently with ordinary arena use; it is purely
// diagnostic and is never consulted by any allocation-path code.
func (a *Arena) DebugDump(w io.Writer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	fmt.Fprintf(w, "arena: capacity=%d\n", a.capacity)

	fmt.Fprintln(w, "free list:")
	seen := map[uintptr]bool{}
	for b := a.freeHead; b != nil; {
		if seen[b.addr()] {
			fmt.Fprintf(w, "  [%#x] corrupt=true (node revisited, aborting walk)\n", b.addr())
			break
		}
		seen[b.addr()] = true
		fmt.Fprintf(w, "  [%#x] span=%d capacity=%d fprint=%016x corrupt=false\n",
			b.addr(), b.span(), b.capacity(), fingerprint(b))
		b = b.next
	}

	fmt.Fprintln(w, "active list:")
	seen = map[uintptr]bool{}
	for b := a.activeHead; b != nil; {
		if seen[b.addr()] {
			fmt.Fprintf(w, "  [%#x] corrupt=true (node revisited, aborting walk)\n", b.addr())
			break
		}
		seen[b.addr()] = true
		fmt.Fprintf(w, "  [%#x] span=%d used=%d fprint=%016x corrupt=false preview=%q\n",
			b.addr(), b.span(), b.used(), fingerprint(b), preview(b))
		b = b.next
	}

	fmt.Fprintln(w, "completion history:")
	if a.history != nil {
		a.history.do(func(r completionRecord) {
			fmt.Fprintf(w, "  [%#x] span=%d dest=%d tag=%d ok=%v\n", r.addr, r.span, r.dest, r.tag, r.ok)
		})
	}
}
