// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package uart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePort is an in-memory serial port. Reads drain the scripted
// input; a drained port reads 0 bytes, like a real port timing out.
type fakePort struct {
	input   []byte
	written []byte
	flushed bool
	closed  bool
}

func (f *fakePort) Read(p []byte) (int, error) {
	if len(f.input) == 0 {
		return 0, nil
	}
	n := copy(p, f.input)
	f.input = f.input[n:]
	return n, nil
}

func (f *fakePort) Write(p []byte) (int, error) {
	f.written = append(f.written, p...)
	return len(p), nil
}

func (f *fakePort) ResetInputBuffer() error {
	f.flushed = true
	f.input = nil
	return nil
}

func (f *fakePort) Close() error {
	f.closed = true
	return nil
}

func newTestBus(input []byte) (*Bus, *fakePort) {
	p := &fakePort{input: input}
	return &Bus{port: p, portName: "test"}, p
}

func TestWriteTransactionAddsHeader(t *testing.T) {
	t.Parallel()

	bus, p := newTestBus(nil)
	require.NoError(t, bus.BeginTransmission(0x42))
	for _, b := range []byte{0x01, 0x82, 0x83} {
		require.NoError(t, bus.WriteByte(b))
	}
	require.NoError(t, bus.EndTransmission())

	assert.Equal(t, []byte{0xFF, 0x00, 0x01, 0x82, 0x83}, p.written)
}

func TestRequestFromStripsHeader(t *testing.T) {
	t.Parallel()

	// Halt response behind the standard header.
	bus, _ := newTestBus([]byte{0xFF, 0x00, 0x02, 0x93, 0x4C, 0xE1})
	require.NoError(t, bus.RequestFrom(0x42, 4))

	assert.Equal(t, 4, bus.Available())
	got := make([]byte, 0, 4)
	for bus.Available() > 0 {
		b, err := bus.ReadByte()
		require.NoError(t, err)
		got = append(got, b)
	}
	assert.Equal(t, []byte{0x02, 0x93, 0x4C, 0xE1}, got)
}

func TestRequestFromSkipsLeadingNoise(t *testing.T) {
	t.Parallel()

	bus, _ := newTestBus([]byte{0x00, 0x7F, 0xFF, 0x00, 0x02, 0x93, 0x4C, 0xE1})
	require.NoError(t, bus.RequestFrom(0x42, 4))

	assert.Equal(t, 4, bus.Available())
	b, err := bus.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x02), b)
}

func TestRequestFromTimeoutLeavesBufferEmpty(t *testing.T) {
	t.Parallel()

	bus, _ := newTestBus(nil)
	require.NoError(t, bus.RequestFrom(0x42, 11))
	assert.Equal(t, 0, bus.Available())

	_, err := bus.ReadByte()
	assert.Error(t, err)
}

func TestRequestFromTruncatesToRequestedLength(t *testing.T) {
	t.Parallel()

	bus, _ := newTestBus([]byte{0xFF, 0x00, 0x02, 0x81, 0x30, 0xB3, 0xAA, 0xBB})
	require.NoError(t, bus.RequestFrom(0x42, 4))
	assert.Equal(t, 4, bus.Available())
}

func TestFlushDiscardsPendingInput(t *testing.T) {
	t.Parallel()

	bus, p := newTestBus([]byte{0xFF, 0x00, 0x01, 0x02})
	require.NoError(t, bus.RequestFrom(0x42, 2))
	require.NoError(t, bus.Flush())

	assert.True(t, p.flushed)
	assert.Equal(t, 0, bus.Available())
}

func TestCloseClosesPort(t *testing.T) {
	t.Parallel()

	bus, p := newTestBus(nil)
	require.NoError(t, bus.Close())
	assert.True(t, p.closed)
}
