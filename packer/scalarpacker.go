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

// Package packer is a deliberately modest reference implementation of
// arena.Packer: fixed-width big-endian encoding for scalar datatypes plus
// a verbatim copy for opaque byte payloads. Packing is out of scope as a
// production wire format (arena only depends on the Packer interface);
// this package exists to make the arena testable and demonstrable without
// a real MPI datatype engine.
package packer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cloudwego/bsendarena/arena"
)

// Packer implements arena.Packer with fixed-width big-endian scalars,
// modeled on the offset-tracked-writer style of a buffer that never
// grows: every Pack call is a single bounds-checked write into a
// caller-supplied destination, never an append.
type Packer struct{}

// elemSize returns the encoded width of one element of typ, or 0 for
// BytesType (whose size depends on count, see PackSize).
func elemSize(typ arena.DataType) int {
	switch typ {
	case arena.Byte:
		return 1
	case arena.Int32:
		return 4
	case arena.Int64:
		return 8
	case arena.Float64:
		return 8
	default:
		return 0
	}
}

// PackSize returns the number of bytes Pack will write for count elements
// of typ. For BytesType, count is interpreted as the verbatim byte count.
func (Packer) PackSize(typ arena.DataType, count int) int {
	if typ == arena.BytesType {
		return count
	}
	return elemSize(typ) * count
}

// Pack encodes count elements of typ read from src into dst and returns
// the number of bytes written. It never writes past len(dst); if dst is
// too small it fails rather than growing, since dst is always a fixed
// slice carved out of the arena.
func (p Packer) Pack(dst []byte, typ arena.DataType, src any, count int) (int, error) {
	need := p.PackSize(typ, count)
	if need > len(dst) {
		return 0, fmt.Errorf("packer: need %d bytes, have %d", need, len(dst))
	}

	switch typ {
	case arena.BytesType:
		b, ok := src.([]byte)
		if !ok {
			return 0, fmt.Errorf("packer: BytesType requires []byte src, got %T", src)
		}
		if len(b) < count {
			return 0, fmt.Errorf("packer: src has %d bytes, need %d", len(b), count)
		}
		return copy(dst, b[:count]), nil

	case arena.Byte:
		b, ok := src.([]byte)
		if !ok {
			return 0, fmt.Errorf("packer: Byte requires []byte src, got %T", src)
		}
		if len(b) < count {
			return 0, fmt.Errorf("packer: src has %d bytes, need %d", len(b), count)
		}
		return copy(dst, b[:count]), nil

	case arena.Int32:
		vv, ok := src.([]int32)
		if !ok {
			return 0, fmt.Errorf("packer: Int32 requires []int32 src, got %T", src)
		}
		if len(vv) < count {
			return 0, fmt.Errorf("packer: src has %d elements, need %d", len(vv), count)
		}
		off := 0
		for i := 0; i < count; i++ {
			binary.BigEndian.PutUint32(dst[off:], uint32(vv[i]))
			off += 4
		}
		return off, nil

	case arena.Int64:
		vv, ok := src.([]int64)
		if !ok {
			return 0, fmt.Errorf("packer: Int64 requires []int64 src, got %T", src)
		}
		if len(vv) < count {
			return 0, fmt.Errorf("packer: src has %d elements, need %d", len(vv), count)
		}
		off := 0
		for i := 0; i < count; i++ {
			binary.BigEndian.PutUint64(dst[off:], uint64(vv[i]))
			off += 8
		}
		return off, nil

	case arena.Float64:
		vv, ok := src.([]float64)
		if !ok {
			return 0, fmt.Errorf("packer: Float64 requires []float64 src, got %T", src)
		}
		if len(vv) < count {
			return 0, fmt.Errorf("packer: src has %d elements, need %d", len(vv), count)
		}
		off := 0
		for i := 0; i < count; i++ {
			binary.BigEndian.PutUint64(dst[off:], math.Float64bits(vv[i]))
			off += 8
		}
		return off, nil

	default:
		return 0, fmt.Errorf("packer: unsupported datatype %v", typ)
	}
}
