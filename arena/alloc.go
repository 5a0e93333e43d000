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
	"unsafe"

	"github.com/cloudwego/bsendarena/internal/debug"
)

// take carves n bytes of payload out of the free block p (previously
// returned by findFit) and moves it onto the active list, per spec.md
// §4.3. It either splits p, leaving a smaller free remainder, or consumes
// it whole when the remainder would be too small to stand on its own.
func (a *Arena) take(p *block, n int) {
	nAligned := alignUp(n)

	if nAligned+int(headerSize)+MinBlockPayload <= p.capacity() {
		a.split(p, nAligned)
	} else {
		a.freeListRemove(p)
	}

	a.activeListPush(p)
}

// split carves a new free block q out of the tail of p, sized so that p's
// span becomes exactly headerSize+nAligned. q is spliced into the free
// list immediately after p's old position; p is removed from the free
// list (it is about to become active).
func (a *Arena) split(p *block, nAligned int) {
	debug.Assert(nAligned%Alignment == 0, "split: nAligned %d not aligned", nAligned)
	left, right := p.prev, p.next

	qAddr := unsafe.Add(p.hdr, int(headerSize)+nAligned)
	q := newBlock(qAddr)
	q.setSpan(p.span() - (int(headerSize) + nAligned))

	p.setSpan(int(headerSize) + nAligned)

	// q takes p's old slot in the free list; p leaves it entirely (the
	// caller pushes p onto the active list next).
	q.prev, q.next = left, right
	if left != nil {
		left.next = q
	} else {
		a.freeHead = q
	}
	if right != nil {
		right.prev = q
	}
	p.prev, p.next = nil, nil
}
