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
	"errors"
	"strconv"
)

// Sentinel errors for the buffered-send arena boundary. Callers should use
// errors.Is against these values; wrapped causes (PACK_FAILED,
// SEND_INIT_FAILED, PROGRESS_FAILED) are attached with %w at the point of
// detection so the original collaborator error survives.
var (
	// ErrBufferTooSmall is returned by Attach when size is below
	// MinBufferOverhead.
	ErrBufferTooSmall = errors.New("arena: buffer too small")

	// ErrBufferAlreadyAttached is returned by Attach when the slot already
	// holds a non-empty arena.
	ErrBufferAlreadyAttached = errors.New("arena: buffer already attached")

	// ErrNoBufferAttached is returned by Send when process, communicator,
	// and session slots are all empty.
	ErrNoBufferAttached = errors.New("arena: no buffer attached")

	// ErrNoBufferSpace is returned by Send when no fit was found after the
	// two-pass reclaim-then-allocate loop.
	ErrNoBufferSpace = errors.New("arena: no buffer space")

	// ErrPackFailed wraps an error reported by the packing facility.
	ErrPackFailed = errors.New("arena: pack failed")

	// ErrSendInitFailed wraps an error reported by the send engine on
	// initiation.
	ErrSendInitFailed = errors.New("arena: send initiation failed")

	// ErrProgressFailed wraps an error reported by the progress engine
	// during reclaim or drain.
	ErrProgressFailed = errors.New("arena: progress failed")
)

// SpaceError is the diagnostic payload attached to ErrNoBufferSpace: the
// packed size that could not be placed and the arena's usable capacity.
type SpaceError struct {
	Requested int
	Capacity  int
}

func (e *SpaceError) Error() string {
	return "arena: no buffer space for " + strconv.Itoa(e.Requested) +
		" bytes (capacity " + strconv.Itoa(e.Capacity) + ")"
}

func (e *SpaceError) Unwrap() error { return ErrNoBufferSpace }
