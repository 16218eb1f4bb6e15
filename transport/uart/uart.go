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

// Package uart adapts the SM130's serial protocol to rfid.Bus.
//
// In UART mode the SM130 speaks the same length-prefixed frames as on
// I2C, each prefixed with a two byte 0xFF 0x00 header. The checksum
// stays the driver's job; this package only adds and strips the
// header, so the driver core runs unchanged over either transport.
package uart

import (
	"errors"
	"fmt"
	"time"

	rfid "github.com/ZaparooProject/go-rfid"
	"go.bug.st/serial"
)

const (
	// Factory default SM130 baud rate.
	defaultBaudRate = 19200

	readTimeout = 50 * time.Millisecond

	// Header bytes, host to module and back.
	headerFirst  = 0xFF
	headerSecond = 0x00
)

var errReadPastEnd = errors.New("read past end of received data")

// port is the slice of serial.Port this package needs; narrowed so
// tests can drive the framing with an in-memory fake.
type port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	ResetInputBuffer() error
	Close() error
}

// Bus implements rfid.Bus over the SM130's UART protocol. The device
// address is carried for interface symmetry but never put on the wire;
// a UART link is point to point.
type Bus struct {
	port     port
	portName string
	txBuf    []byte
	rxBuf    []byte
}

// New opens the named serial port at the SM130's factory default
// settings (19200 8N1).
func New(portName string) (*Bus, error) {
	p, err := serial.Open(portName, &serial.Mode{
		BaudRate: defaultBaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open UART port %s: %w", portName, err)
	}
	if err := p.SetReadTimeout(readTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("failed to set UART read timeout: %w", err)
	}
	return &Bus{port: p, portName: portName}, nil
}

// BeginTransmission starts buffering an outbound frame, seeded with
// the protocol header.
func (b *Bus) BeginTransmission(_ byte) error {
	b.txBuf = append(b.txBuf[:0], headerFirst, headerSecond)
	return nil
}

// WriteByte appends one byte to the buffered outbound frame.
func (b *Bus) WriteByte(v byte) error {
	b.txBuf = append(b.txBuf, v)
	return nil
}

// EndTransmission flushes the buffered frame to the port.
func (b *Bus) EndTransmission() error {
	if _, err := b.port.Write(b.txBuf); err != nil {
		return fmt.Errorf("UART write on %s failed: %w", b.portName, err)
	}
	return nil
}

// RequestFrom reads the next response frame from the port, strips the
// header, and buffers up to n payload bytes for ReadByte. A read
// timeout leaves the buffer empty, modelling a module with nothing to
// say yet.
func (b *Bus) RequestFrom(_ byte, n int) error {
	b.rxBuf = nil
	raw := make([]byte, 0, 2+n)
	tmp := make([]byte, 2+n)
	for {
		if payload := stripHeader(raw); len(payload) >= n {
			b.rxBuf = payload[:n]
			return nil
		}
		count, err := b.port.Read(tmp)
		if err != nil {
			return fmt.Errorf("UART read on %s failed: %w", b.portName, err)
		}
		if count == 0 {
			// Timeout: whatever arrived is all there is this poll.
			break
		}
		raw = append(raw, tmp[:count]...)
	}
	b.rxBuf = stripHeader(raw)
	return nil
}

// stripHeader locates the 0xFF 0x00 header and returns what follows.
// Data with no header is noise from a half-read frame and is dropped.
func stripHeader(data []byte) []byte {
	for i := 0; i+1 < len(data); i++ {
		if data[i] == headerFirst && data[i+1] == headerSecond {
			return data[i+2:]
		}
	}
	return nil
}

// Available returns the number of unread payload bytes.
func (b *Bus) Available() int {
	return len(b.rxBuf)
}

// ReadByte pops the next payload byte.
func (b *Bus) ReadByte() (byte, error) {
	if len(b.rxBuf) == 0 {
		return 0, errReadPastEnd
	}
	v := b.rxBuf[0]
	b.rxBuf = b.rxBuf[1:]
	return v, nil
}

// Flush discards any pending input, for recovering from a desynced
// frame stream.
func (b *Bus) Flush() error {
	b.rxBuf = nil
	if err := b.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("UART flush on %s failed: %w", b.portName, err)
	}
	return nil
}

// Close closes the serial port.
func (b *Bus) Close() error {
	if err := b.port.Close(); err != nil {
		return fmt.Errorf("failed to close UART port %s: %w", b.portName, err)
	}
	return nil
}

// Ensure Bus implements rfid.Bus
var _ rfid.Bus = (*Bus)(nil)
