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
	"github.com/cloudwego/bsendarena/container/ring"
)

// historySize is the number of completion records DebugDump can show.
const historySize = 64

// completionRecord is one entry in the debug-dump completion history: the
// address and size of a block whose send completed, the destination/tag
// it carried, and whether the reclaim succeeded without error.
type completionRecord struct {
	addr uintptr
	span int
	dest int
	tag  int
	ok   bool
}

// history is a push-overwrite cursor over a fixed-size ring.Ring. Ring
// itself only offers fixed-slice access (Get/Len), so history adds the
// write-and-advance semantics a completion log needs: the oldest record
// is silently overwritten once the ring fills.
type history struct {
	r      *ring.Ring[completionRecord]
	cursor int
	filled bool
}

func newHistory(n int) *history {
	return &history{r: ring.NewFromSlice(make([]completionRecord, n))}
}

// push records rec at the cursor and advances it, wrapping around.
func (h *history) push(rec completionRecord) {
	if h.r.Len() == 0 {
		return
	}
	item, ok := h.r.Get(h.cursor)
	if !ok {
		return
	}
	*item.Pointer() = rec
	h.cursor++
	if h.cursor >= h.r.Len() {
		h.cursor = 0
		h.filled = true
	}
}

// do calls f on every recorded entry, oldest first.
func (h *history) do(f func(completionRecord)) {
	n := h.r.Len()
	if n == 0 {
		return
	}
	start := 0
	count := h.cursor
	if h.filled {
		start = h.cursor
		count = n
	}
	for i := 0; i < count; i++ {
		item, ok := h.r.Get((start + i) % n)
		if !ok {
			continue
		}
		f(item.Value())
	}
}
