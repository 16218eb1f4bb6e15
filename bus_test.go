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

package rfid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockBusRecordsTransactions(t *testing.T) {
	t.Parallel()

	bus := NewMockBus()
	require.NoError(t, bus.BeginTransmission(0x50))
	require.NoError(t, bus.WriteByte(0x01))
	require.NoError(t, bus.WriteByte(0x02))
	require.NoError(t, bus.EndTransmission())

	assert.Equal(t, [][]byte{{0x01, 0x02}}, bus.Writes())
	assert.Equal(t, []byte{0x01, 0x02}, bus.LastWrite())
}

func TestMockBusServesResponsesInOrder(t *testing.T) {
	t.Parallel()

	bus := NewMockBus()
	bus.QueueResponse([]byte{0xAA})
	bus.QueueResponse([]byte{0xBB})

	require.NoError(t, bus.RequestFrom(0x50, 1))
	b, err := bus.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xAA), b)

	require.NoError(t, bus.RequestFrom(0x50, 1))
	b, err = bus.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xBB), b)
}

func TestMockBusTruncatesToRequestedLength(t *testing.T) {
	t.Parallel()

	bus := NewMockBus()
	bus.QueueResponse([]byte{0x01, 0x02, 0x03, 0x04})
	require.NoError(t, bus.RequestFrom(0x50, 2))
	assert.Equal(t, 2, bus.Available())
}

func TestMockBusEmptyRead(t *testing.T) {
	t.Parallel()

	bus := NewMockBus()
	require.NoError(t, bus.RequestFrom(0x50, 4))
	assert.Zero(t, bus.Available())

	_, err := bus.ReadByte()
	assert.Error(t, err)
}

func TestMockBusReset(t *testing.T) {
	t.Parallel()

	bus := NewMockBus()
	bus.QueueResponse([]byte{0x01})
	require.NoError(t, bus.BeginTransmission(0x50))
	require.NoError(t, bus.WriteByte(0xFF))
	require.NoError(t, bus.EndTransmission())

	bus.Reset()
	assert.Empty(t, bus.Writes())
	assert.Empty(t, bus.Requests())
	require.NoError(t, bus.RequestFrom(0x50, 1))
	assert.Zero(t, bus.Available())
}

func TestMockClockAdvancesOnSleep(t *testing.T) {
	t.Parallel()

	clock := NewMockClock()
	start := clock.Now()
	clock.Sleep(150 * time.Millisecond)
	assert.Equal(t, 150*time.Millisecond, clock.Now().Sub(start))

	clock.Advance(50 * time.Millisecond)
	assert.Equal(t, 200*time.Millisecond, clock.Now().Sub(start))
}

func TestMockPinTracksModeAndLevels(t *testing.T) {
	t.Parallel()

	pin := NewMockPin()
	assert.Empty(t, pin.Mode())

	require.NoError(t, pin.SetOutput())
	require.NoError(t, pin.Write(true))
	require.NoError(t, pin.Write(false))
	assert.Equal(t, "output", pin.Mode())
	assert.Equal(t, []bool{true, false}, pin.Writes())

	require.NoError(t, pin.SetInput())
	pin.SetLevel(true)
	high, err := pin.Read()
	require.NoError(t, err)
	assert.True(t, high)
}
