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

package packer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/bsendarena/arena"
)

func TestPackSize(t *testing.T) {
	p := Packer{}
	cases := []struct {
		typ   arena.DataType
		count int
		want  int
	}{
		{arena.Byte, 10, 10},
		{arena.Int32, 4, 16},
		{arena.Int64, 3, 24},
		{arena.Float64, 2, 16},
		{arena.BytesType, 7, 7},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, p.PackSize(c.typ, c.count))
	}
}

func TestPack_Int32(t *testing.T) {
	p := Packer{}
	dst := make([]byte, 8)
	n, err := p.Pack(dst, arena.Int32, []int32{1, -1}, 2)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(dst[0:4]))
	assert.Equal(t, uint32(0xFFFFFFFF), binary.BigEndian.Uint32(dst[4:8]))
}

func TestPack_Float64(t *testing.T) {
	p := Packer{}
	dst := make([]byte, 8)
	n, err := p.Pack(dst, arena.Float64, []float64{3.5}, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, 3.5, math.Float64frombits(binary.BigEndian.Uint64(dst)))
}

func TestPack_Bytes(t *testing.T) {
	p := Packer{}
	dst := make([]byte, 5)
	n, err := p.Pack(dst, arena.BytesType, []byte("hello"), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(dst))
}

func TestPack_DestTooSmall(t *testing.T) {
	p := Packer{}
	dst := make([]byte, 2)
	_, err := p.Pack(dst, arena.Int32, []int32{1}, 1)
	assert.Error(t, err)
}

func TestPack_WrongSrcType(t *testing.T) {
	p := Packer{}
	dst := make([]byte, 8)
	_, err := p.Pack(dst, arena.Int64, []int32{1}, 1)
	assert.Error(t, err)
}
