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

// The active list holds blocks whose payload is currently in flight. It
// carries no ordering invariant (spec.md §5): insertion is LIFO, removal
// happens in whatever order the send engine reports completions.

// activeListPush inserts b at the head of the active list.
func (a *Arena) activeListPush(b *block) {
	b.prev = nil
	b.next = a.activeHead
	if a.activeHead != nil {
		a.activeHead.prev = b
	}
	a.activeHead = b
}

// activeListRemove splices b out of the active list using its own
// prev/next.
func (a *Arena) activeListRemove(b *block) {
	if b.prev != nil {
		b.prev.next = b.next
	} else {
		a.activeHead = b.next
	}
	if b.next != nil {
		b.next.prev = b.prev
	}
	b.prev, b.next = nil, nil
}
