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
	"github.com/cloudwego/bsendarena/cache/mempool"
)

// AttachPooled is a convenience over Attach: it obtains a size-classed
// buffer from the mempool pool instead of requiring the caller to own and
// size a []byte up front, and remembers to return it to the pool on
// Detach. Use plain Attach when the caller already owns the memory (e.g.
// it came from a network buffer or was mmap'd).
func AttachPooled(slot *Slot, size int) error {
	region := mempool.Malloc(size)
	if err := Attach(slot, region); err != nil {
		mempool.Free(region)
		return err
	}

	slot.mu.Lock()
	slot.a.pooled = true
	slot.mu.Unlock()
	return nil
}

// DetachPooled detaches slot and, if it was attached via AttachPooled,
// returns the backing buffer to the mempool pool; otherwise it behaves
// exactly like Detach.
func DetachPooled(slot *Slot, engine SendEngine) error {
	slot.mu.Lock()
	pooled := slot.a != nil && slot.a.pooled
	slot.mu.Unlock()

	region, err := Detach(slot, engine)
	if err != nil {
		return err
	}
	if pooled && region != nil {
		mempool.Free(region)
	}
	return nil
}
