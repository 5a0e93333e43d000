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

// freeWithMerge returns p (just unlinked from the active list by the
// caller) to the free list in address order, unconditionally merging with
// either neighbor that turns out to be adjacent in memory (spec.md §4.4).
// There is no hysteresis: both merge checks are unconditional whenever the
// adjacency condition holds.
func (a *Arena) freeWithMerge(p *block) {
	p.handle = nil
	p.setUsed(0)

	left, right := a.freeListNeighbors(p)

	if right != nil && p.addr()+uintptr(p.span()) == right.addr() {
		p.setSpan(p.span() + right.span())
		a.freeListRemove(right)
		_, right = a.freeListNeighbors(p)
	}

	a.freeListInsertBetween(left, p, right)

	if left != nil && left.addr()+uintptr(left.span()) == p.addr() {
		left.setSpan(left.span() + p.span())
		a.freeListRemove(p)
	}
}
