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

// Package i2c implements rfid.Bus on a real I2C bus via periph.io.
package i2c

import (
	"errors"
	"fmt"
	"strings"

	rfid "github.com/ZaparooProject/go-rfid"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// Both reader modules top out at standard mode I2C.
const maxClockFreq = 100 * physic.KiloHertz

var errReadPastEnd = errors.New("read past end of received data")

// Bus implements rfid.Bus on a periph.io I2C bus. Writes are buffered
// between BeginTransmission and EndTransmission and sent as a single
// bus transaction; RequestFrom performs one read transaction and
// buffers the result for Available/ReadByte.
type Bus struct {
	bus     i2c.BusCloser // Held so Close() can release the OS file descriptor
	busName string
	txBuf   []byte
	rxBuf   []byte
	addr    byte
}

// parseBusPath extracts the bus path from a composite detection path.
// Accepts "/dev/i2c-1:0x50" (detection format) or "/dev/i2c-1".
func parseBusPath(path string) string {
	bus, _, _ := strings.Cut(path, ":")
	return bus
}

// New opens the named I2C bus ("/dev/i2c-1", "1", or a detection path
// with an address suffix).
func New(busName string) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(parseBusPath(busName))
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}

	// Ignore error, continue with the adapter's default speed
	_ = bus.SetSpeed(maxClockFreq)

	return &Bus{bus: bus, busName: busName}, nil
}

// BeginTransmission starts buffering a write transaction to addr.
func (b *Bus) BeginTransmission(addr byte) error {
	b.addr = addr
	b.txBuf = b.txBuf[:0]
	return nil
}

// WriteByte appends one byte to the buffered write transaction.
func (b *Bus) WriteByte(v byte) error {
	b.txBuf = append(b.txBuf, v)
	return nil
}

// EndTransmission flushes the buffered bytes as one I2C write.
func (b *Bus) EndTransmission() error {
	dev := i2c.Dev{Addr: uint16(b.addr), Bus: b.bus}
	if err := dev.Tx(b.txBuf, nil); err != nil {
		return fmt.Errorf("I2C write to 0x%02X on %s failed: %w", b.addr, b.busName, err)
	}
	return nil
}

// RequestFrom reads n bytes from addr in one I2C transaction and
// buffers them for ReadByte.
func (b *Bus) RequestFrom(addr byte, n int) error {
	dev := i2c.Dev{Addr: uint16(addr), Bus: b.bus}
	buf := make([]byte, n)
	if err := dev.Tx(nil, buf); err != nil {
		// A NAK from an empty reader is routine during polling; report
		// nothing received rather than a bus fault.
		b.rxBuf = nil
		return nil
	}
	b.rxBuf = buf
	return nil
}

// Available returns the number of unread received bytes.
func (b *Bus) Available() int {
	return len(b.rxBuf)
}

// ReadByte pops the next received byte.
func (b *Bus) ReadByte() (byte, error) {
	if len(b.rxBuf) == 0 {
		return 0, errReadPastEnd
	}
	v := b.rxBuf[0]
	b.rxBuf = b.rxBuf[1:]
	return v, nil
}

// Close releases the I2C bus file descriptor. Must be called when the
// bus is no longer needed to prevent descriptor leaks on rapid
// destroy/recreate cycles.
func (b *Bus) Close() error {
	if b.bus != nil {
		if err := b.bus.Close(); err != nil {
			return fmt.Errorf("failed to close I2C bus: %w", err)
		}
		b.bus = nil
	}
	return nil
}

// Ensure Bus implements rfid.Bus
var _ rfid.Bus = (*Bus)(nil)
