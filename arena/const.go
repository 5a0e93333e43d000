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

// Package arena implements the buffered-send arena: an in-band,
// address-ordered, doubly-linked free-list allocator coexisting with an
// active list of in-flight sends, used to back MPI-style buffered-mode
// send.
package arena

import "unsafe"

const (
	// Alignment is the granularity every block's total span is rounded up
	// to, and the alignment the arena's base pointer is forward-aligned
	// to on Attach. It stands in for both "max(pointer_alignment,
	// double_alignment)" (the Attach-time base alignment) and
	// "the platform's widest scalar alignment" (the total_span
	// granularity): using one constant for both keeps every block's span
	// a multiple of the same value the base was aligned to, so no block
	// ever straddles a narrower boundary than the arena itself starts on.
	Alignment = 16

	// MinBlockPayload is the smallest payload capacity a block may carry.
	// A split remainder smaller than headerSize+MinBlockPayload is never
	// left as its own free block; it is absorbed as slack into the block
	// being taken.
	MinBlockPayload = 8

	// headerSize is the offset of the payload start within the in-band
	// header record: block-start + headerSize == payload start. It is
	// the offset of the payload, not merely unsafe.Sizeof(header{}) by
	// coincidence — header is laid out so its last field is a
	// naturally-aligned sentinel, which is what makes the two coincide
	// without any per-allocation fix-up.
	headerSize = unsafe.Sizeof(header{})

	// MinBufferOverhead is the smallest region Attach will accept.
	MinBufferOverhead = int(headerSize) + MinBlockPayload
)

// alignUp rounds n up to the next multiple of Alignment.
func alignUp(n int) int {
	return (n + Alignment - 1) &^ (Alignment - 1)
}

// alignDown rounds n down to the previous multiple of Alignment.
func alignDown(n int) int {
	return n &^ (Alignment - 1)
}
