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
	"time"

	"github.com/ZaparooProject/go-rfid/internal/frame"
)

const (
	// packetBufferSize is the largest frame either family produces,
	// length byte and SM130 checksum included.
	packetBufferSize = 20

	// sl018MaxResponse is the largest SL018 response (no checksum byte).
	sl018MaxResponse = 19

	// maxPayloadLength is the ceiling for a response frame's length byte.
	maxPayloadLength = 18

	// busGateInterval is the minimum spacing between bus transactions.
	// Both modules drop bytes when the host turns the bus around faster
	// than this.
	busGateInterval = 20 * time.Millisecond

	// powerOnDelay is how long a freshly constructed driver holds off
	// the first transaction.
	powerOnDelay = 10 * time.Millisecond

	// resetPulseWidth is how long the hardware reset line is held high.
	resetPulseWidth = 10 * time.Millisecond

	// resetSettleDelay is how long the module needs after any reset
	// before it accepts commands.
	resetSettleDelay = 200 * time.Millisecond
)

// Reader is the capability set shared by both driver families.
//
// Operations are non-blocking submissions: they push a command frame
// onto the bus and return. The response, if the command has one, is
// fetched and decoded by a later Available call. A non-nil error from
// any method means the bus itself failed; failures reported by the
// module (no tag, authentication refused, ...) leave the bus healthy
// and surface through ErrorCode and ErrorMessage after Available
// returns true.
type Reader interface {
	Reset() error
	SeekTag() error
	SelectTag() error
	HaltTag() error
	Sleep() error
	Authenticate(sector byte) error
	AuthenticateWithKey(sector, keyType byte, key []byte) error
	ReadBlock(block byte) error
	WriteBlock(block byte, data []byte) error

	// Available polls for a response to the last command. It returns
	// (true, nil) when a complete response was received and decoded,
	// (false, nil) when nothing is ready yet, and (false, err) only on
	// bus faults.
	Available() (bool, error)

	Command() byte
	RawData() []byte
	PacketLength() byte
	Payload() []byte
	BlockNumber() byte
	Block() []byte
	TagNumber() []byte
	TagLength() byte
	TagString() string
	TagType() byte
	TagName() string
	ErrorCode() byte
	ErrorMessage() string
}

// Tag is a snapshot of a detected tag's identity, as captured from a
// Reader after a successful seek or select.
type Tag struct {
	UID  string // Uppercase hex rendering of ID
	Name string // Human readable tag type, family specific
	ID   []byte // Raw serial number
	Type byte   // Family specific tag type code
}

// SnapshotTag captures the current tag identity from r. The result is
// only meaningful right after Available reported a seek or select
// response with a zero error code.
func SnapshotTag(r Reader) Tag {
	return Tag{
		UID:  r.TagString(),
		Name: r.TagName(),
		ID:   r.TagNumber(),
		Type: r.TagType(),
	}
}

// session holds the per-reader protocol state shared by both families:
// the frame buffer, the last submitted command, the decoded tag
// identity, and the inter-transaction gate.
type session struct {
	gate      time.Time
	bus       Bus
	clock     Clock
	resetPin  Pin
	dreadyPin Pin
	tagString string
	data      [packetBufferSize]byte
	tagNumber [7]byte
	address   byte
	tagLength byte
	tagType   byte
	errorCode byte
	lastCmd   byte
	// checksummed is set for the SM130, which appends an additive
	// checksum to every outbound frame and expects one inbound.
	checksummed bool
}

func newSession(bus Bus, address byte, checksummed bool) session {
	return session{
		bus:         bus,
		clock:       systemClock{},
		address:     address,
		checksummed: checksummed,
	}
}

// waitGate blocks until the inter-transaction gate has elapsed.
func (s *session) waitGate() {
	if d := s.gate.Sub(s.clock.Now()); d > 0 {
		s.clock.Sleep(d)
	}
}

// bumpGate arms the gate so the next transaction waits at least
// busGateInterval from now.
func (s *session) bumpGate() {
	s.gate = s.clock.Now().Add(busGateInterval)
}

// transmit sends data[0]+1 buffered bytes as one write transaction,
// appending the checksum byte for checksummed families. The command
// byte is latched as lastCmd before anything touches the bus.
func (s *session) transmit() error {
	s.waitGate()
	s.lastCmd = s.data[1]
	n := int(s.data[0]) + 1
	if err := s.bus.BeginTransmission(s.address); err != nil {
		return &BusError{Op: "begin transmission", Addr: s.address, Err: err}
	}
	for _, b := range s.data[:n] {
		if err := s.bus.WriteByte(b); err != nil {
			return &BusError{Op: "write", Addr: s.address, Err: err}
		}
	}
	if s.checksummed {
		if err := s.bus.WriteByte(frame.Checksum(s.data[:n])); err != nil {
			return &BusError{Op: "write checksum", Addr: s.address, Err: err}
		}
	}
	if err := s.bus.EndTransmission(); err != nil {
		return &BusError{Op: "end transmission", Addr: s.address, Err: err}
	}
	s.bumpGate()
	Debugf(">0x%02X %s", s.address, FormatBytes(s.data[:n]))
	return nil
}

// sendCommand submits a bare command frame with no arguments.
func (s *session) sendCommand(cmd byte) error {
	s.data[0] = 1
	s.data[1] = cmd
	return s.transmit()
}

// receive requests up to want bytes and parses one length-prefixed
// response frame into the buffer. It returns the frame's payload
// length, 0 when no frame is waiting or the frame is malformed or
// truncated, and -1 when a checksummed frame fails verification. A
// non-nil error is raised only for bus faults.
func (s *session) receive(want int) (int, error) {
	s.waitGate()
	if err := s.bus.RequestFrom(s.address, want); err != nil {
		return 0, &BusError{Op: "request", Addr: s.address, Err: err}
	}
	s.bumpGate()
	if s.bus.Available() == 0 {
		return 0, nil
	}
	b, err := s.bus.ReadByte()
	if err != nil {
		return 0, &BusError{Op: "read", Addr: s.address, Err: err}
	}
	s.data[0] = b
	length := int(b)
	if length > maxPayloadLength {
		return 0, nil
	}
	for i := 1; i <= length; i++ {
		if s.bus.Available() == 0 {
			return 0, nil
		}
		b, err := s.bus.ReadByte()
		if err != nil {
			return 0, &BusError{Op: "read", Addr: s.address, Err: err}
		}
		s.data[i] = b
	}
	if s.checksummed && length > 0 {
		if s.bus.Available() == 0 {
			return 0, nil
		}
		sum, err := s.bus.ReadByte()
		if err != nil {
			return 0, &BusError{Op: "read checksum", Addr: s.address, Err: err}
		}
		s.data[length+1] = sum
		if frame.Checksum(s.data[:length+1]) != sum {
			Debugf("<0x%02X checksum mismatch, dropping frame", s.address)
			return -1, nil
		}
	}
	Debugf("<0x%02X %s", s.address, FormatBytes(s.data[:length+1]))
	return length, nil
}

// clearTag wipes the decoded tag identity. Called at the top of every
// response parse so stale identity never leaks across polls.
func (s *session) clearTag() {
	s.tagType = 0
	s.tagLength = 0
	s.tagString = ""
}

// setTag records a freshly decoded tag identity.
func (s *session) setTag(tagType byte, serial []byte) {
	if len(serial) > len(s.tagNumber) {
		serial = serial[:len(s.tagNumber)]
	}
	copy(s.tagNumber[:], serial)
	s.tagLength = byte(len(serial))
	s.tagType = tagType
	s.tagString = toHexString(serial)
}

// pinReset performs the hardware side of a reset: the data-ready line
// is released to input, and if a reset line is wired it is pulsed. The
// return reports whether a hardware pulse happened, so callers know to
// fall back to the software reset command.
func (s *session) pinReset() (bool, error) {
	if s.dreadyPin != nil {
		if err := s.dreadyPin.SetInput(); err != nil {
			return false, &BusError{Op: "dready pin", Addr: s.address, Err: err}
		}
	}
	if s.resetPin == nil {
		return false, nil
	}
	if err := s.resetPin.SetOutput(); err != nil {
		return false, &BusError{Op: "reset pin", Addr: s.address, Err: err}
	}
	if err := s.resetPin.Write(true); err != nil {
		return false, &BusError{Op: "reset pin", Addr: s.address, Err: err}
	}
	s.clock.Sleep(resetPulseWidth)
	if err := s.resetPin.Write(false); err != nil {
		return false, &BusError{Op: "reset pin", Addr: s.address, Err: err}
	}
	return true, nil
}

// RawData returns the internal frame buffer. The contents are only
// valid until the next operation or poll.
func (s *session) RawData() []byte {
	return s.data[:]
}

// PacketLength returns the length byte of the last received frame.
func (s *session) PacketLength() byte {
	return s.data[0]
}

// Payload returns the frame bytes following the command byte of the
// last received frame.
func (s *session) Payload() []byte {
	if s.data[0] < 2 {
		return nil
	}
	return s.data[2 : int(s.data[0])+1]
}

// BlockNumber returns the block number echoed in a read response.
func (s *session) BlockNumber() byte {
	return s.data[2]
}

// Block returns the 16 data bytes of the last block read response.
func (s *session) Block() []byte {
	return s.data[3:19]
}

// TagNumber returns a copy of the last decoded tag serial number.
func (s *session) TagNumber() []byte {
	out := make([]byte, s.tagLength)
	copy(out, s.tagNumber[:s.tagLength])
	return out
}

// TagLength returns the length of the last decoded tag serial number.
func (s *session) TagLength() byte {
	return s.tagLength
}

// TagString returns the last decoded tag serial number as uppercase
// hex, or "" when no tag is decoded.
func (s *session) TagString() string {
	return s.tagString
}

// TagType returns the family specific type code of the last decoded
// tag.
func (s *session) TagType() byte {
	return s.tagType
}

// ErrorCode returns the status code of the last decoded response.
func (s *session) ErrorCode() byte {
	return s.errorCode
}
