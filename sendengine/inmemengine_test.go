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

package sendengine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsend_DeliversAndCompletes(t *testing.T) {
	e := New()

	var mu sync.Mutex
	var got []byte
	var gotDest int
	done := make(chan struct{})
	e.Deliver = func(dest int, payload []byte) {
		mu.Lock()
		got = append([]byte(nil), payload...)
		gotDest = dest
		mu.Unlock()
		close(done)
	}

	h, err := e.Isend([]byte("payload"), 3)
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Deliver was never called")
	}

	require.NoError(t, h.Wait(nil))
	assert.True(t, h.IsComplete())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "payload", string(got))
	assert.Equal(t, 3, gotDest)
}

func TestIsend_CopiesPayload(t *testing.T) {
	e := New()
	done := make(chan struct{})
	e.Deliver = func(dest int, payload []byte) { close(done) }

	src := []byte("abc")
	h, err := e.Isend(src, 0)
	require.NoError(t, err)
	src[0] = 'z' // mutate after Isend returns; staging buffer must be unaffected

	<-done
	require.NoError(t, h.Wait(nil))
}

func TestProgressTest_DropsCompletedHandles(t *testing.T) {
	e := New()
	done := make(chan struct{})
	e.Deliver = func(dest int, payload []byte) { close(done) }

	h, err := e.Isend([]byte("x"), 0)
	require.NoError(t, err)

	<-done
	require.NoError(t, h.Wait(nil))

	e.ProgressTest()
	e.mu.Lock()
	defer e.mu.Unlock()
	assert.Empty(t, e.pending)
}

func TestHandle_WaitUnblocksOnStop(t *testing.T) {
	h := newHandle()
	stop := make(chan struct{})
	close(stop)

	err := h.Wait(stop)
	assert.ErrorIs(t, err, errReleased)
}

func TestHandle_ReleaseRefcount(t *testing.T) {
	h := newHandle()
	assert.True(t, h.IsValid())
	h.AddReference()
	h.Release()
	assert.True(t, h.IsValid())
	h.Release()
	assert.False(t, h.IsValid())
}
