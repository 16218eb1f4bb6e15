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
	"fmt"
	"time"
)

const (
	// sm130VersionLength caps the firmware version string, matching
	// the module's own buffer.
	sm130VersionLength = 8

	// Firmware version retry budget after a reset.
	sm130VersionAttempts   = 10
	sm130VersionRetryDelay = 100 * time.Millisecond
)

// SM130 drives a SonMicro SM130 reader module. Every frame carries an
// additive checksum, status codes are ASCII letters, and seek runs on
// the module itself: once started it answers on its own when a tag
// enters the field, optionally signalled on a data-ready line.
//
// Not safe for concurrent use.
type SM130 struct {
	version      string
	session
	antennaPower byte
}

// NewSM130 creates an SM130 driver on the given bus. The first bus
// transaction is held off briefly to let the module finish powering
// up. Call Reset before first use.
func NewSM130(bus Bus, opts ...Option) (*SM130, error) {
	if bus == nil {
		return nil, fmt.Errorf("%w: nil bus", ErrInvalidParameter)
	}
	r := &SM130{session: newSession(bus, SM130Address, true)}
	for _, opt := range opts {
		if err := opt(&r.session); err != nil {
			return nil, err
		}
	}
	r.gate = r.clock.Now().Add(powerOnDelay)
	return r, nil
}

// Reset restarts the module, by reset line pulse when one is wired and
// by the software reset command otherwise. After booting, the module
// starts seeking on its own; the antenna is switched on and the stray
// seek cancelled with a halt so the driver starts from a known state.
func (r *SM130) Reset() error {
	pulsed, err := r.pinReset()
	if err != nil {
		return err
	}
	if !pulsed {
		if err := r.sendCommand(cmdSM130Reset); err != nil {
			return err
		}
	}
	r.clock.Sleep(resetSettleDelay)
	if err := r.SetAntennaPower(1); err != nil {
		return err
	}
	return r.HaltTag()
}

// FirmwareVersion returns the module's firmware version string,
// blocking through a short retry loop on first use. The result is
// cached; later calls are free.
func (r *SM130) FirmwareVersion() (string, error) {
	if r.version != "" {
		return r.version, nil
	}
	for attempt := 0; attempt < sm130VersionAttempts; attempt++ {
		if err := r.sendCommand(cmdSM130Version); err != nil {
			return "", err
		}
		ok, err := r.Available()
		if err != nil {
			return "", err
		}
		if ok && r.data[1] == cmdSM130Version && r.version != "" {
			return r.version, nil
		}
		r.clock.Sleep(sm130VersionRetryDelay)
	}
	return "", ErrNoResponse
}

// SeekTag starts the module's continuous scan. The module answers on
// its own when a tag enters the field; until then polls come back
// empty, or are skipped entirely when a data-ready line is wired.
func (r *SM130) SeekTag() error {
	return r.sendCommand(cmdSM130SeekTag)
}

// SelectTag asks the module to select a single tag in the field.
func (r *SM130) SelectTag() error {
	return r.sendCommand(cmdSM130SelectTag)
}

// HaltTag halts the selected tag and cancels a running seek.
func (r *SM130) HaltTag() error {
	return r.sendCommand(cmdSM130HaltTag)
}

// Sleep puts the module into low power mode until the next reset.
func (r *SM130) Sleep() error {
	return r.sendCommand(cmdSM130Sleep)
}

// SetAntennaPower sets the RF field strength; zero switches the
// antenna off.
func (r *SM130) SetAntennaPower(level byte) error {
	r.antennaPower = level
	r.data[0] = 2
	r.data[1] = cmdSM130AntennaPower
	r.data[2] = level
	return r.transmit()
}

// AntennaPower returns the last commanded or reported antenna power
// level.
func (r *SM130) AntennaPower() byte {
	return r.antennaPower
}

// Authenticate logs into a sector using the transport key.
func (r *SM130) Authenticate(sector byte) error {
	r.data[0] = 3
	r.data[1] = cmdSM130Authenticate
	r.data[2] = sector
	r.data[3] = 0xFF
	return r.transmit()
}

// AuthenticateWithKey logs into a sector with the given key type and
// six byte key.
func (r *SM130) AuthenticateWithKey(sector, keyType byte, key []byte) error {
	if len(key) != 6 {
		return fmt.Errorf("%w: key must be 6 bytes, got %d", ErrInvalidParameter, len(key))
	}
	r.data[0] = 9
	r.data[1] = cmdSM130Authenticate
	r.data[2] = sector
	r.data[3] = keyType
	copy(r.data[4:10], key)
	return r.transmit()
}

// ReadBlock reads a 16 byte block. The data arrives in Block after
// Available reports the response.
func (r *SM130) ReadBlock(block byte) error {
	r.data[0] = 2
	r.data[1] = cmdSM130Read16
	r.data[2] = block
	return r.transmit()
}

// WriteBlock writes exactly 16 bytes to a block. The payload is
// binary safe; zero bytes pass through unmodified.
func (r *SM130) WriteBlock(block byte, data []byte) error {
	if len(data) != 16 {
		return fmt.Errorf("%w: block data must be 16 bytes, got %d", ErrInvalidParameter, len(data))
	}
	r.data[0] = 18
	r.data[1] = cmdSM130Write16
	r.data[2] = block
	copy(r.data[3:19], data)
	return r.transmit()
}

// WriteBlockString writes a text block with C string semantics: at
// most 15 characters are copied and the remainder of the block is zero
// filled.
//
// Deprecated: the truncation silently drops the 16th byte. Use
// WriteBlock for full control of the payload.
func (r *SM130) WriteBlockString(block byte, text string) error {
	r.data[0] = 18
	r.data[1] = cmdSM130Write16
	r.data[2] = block
	for i := 0; i < 15; i++ {
		if i < len(text) {
			r.data[3+i] = text[i]
		} else {
			r.data[3+i] = 0
		}
	}
	r.data[18] = 0
	return r.transmit()
}

// WritePage writes exactly 4 bytes to an UltraLight page. The payload
// is binary safe.
func (r *SM130) WritePage(page byte, data []byte) error {
	if len(data) != 4 {
		return fmt.Errorf("%w: page data must be 4 bytes, got %d", ErrInvalidParameter, len(data))
	}
	r.data[0] = 6
	r.data[1] = cmdSM130Write4
	r.data[2] = page
	copy(r.data[3:7], data)
	return r.transmit()
}

// WriteFourByteBlock writes a text page with C string semantics: at
// most 3 characters are copied and the remainder is zero filled.
//
// Deprecated: the truncation silently drops the 4th byte. Use
// WritePage for full control of the payload.
func (r *SM130) WriteFourByteBlock(page byte, text string) error {
	r.data[0] = 6
	r.data[1] = cmdSM130Write4
	r.data[2] = page
	for i := 0; i < 3; i++ {
		if i < len(text) {
			r.data[3+i] = text[i]
		} else {
			r.data[3+i] = 0
		}
	}
	r.data[6] = 0
	return r.transmit()
}

// WriteKey stores a six byte master key in the module's EEPROM key
// store.
func (r *SM130) WriteKey(sector byte, key []byte) error {
	if len(key) != 6 {
		return fmt.Errorf("%w: key must be 6 bytes, got %d", ErrInvalidParameter, len(key))
	}
	r.data[0] = 8
	r.data[1] = cmdSM130WriteKey
	r.data[2] = sector
	copy(r.data[3:9], key)
	return r.transmit()
}

// Available polls for a response to the last command. During a seek
// with a data-ready line wired, the bus is not touched until the line
// goes high. Response processing dispatches on the command byte echoed
// in the frame, not the one last sent, because the module answers a
// seek asynchronously. Frames failing checksum verification are
// dropped without touching any decoded state.
func (r *SM130) Available() (bool, error) {
	if r.lastCmd == cmdSM130SeekTag && r.dreadyPin != nil {
		high, err := r.dreadyPin.Read()
		if err != nil {
			return false, &BusError{Op: "dready pin", Addr: r.address, Err: err}
		}
		if !high {
			return false, nil
		}
	}
	got, err := r.receive(sm130ResponseLength(r.lastCmd))
	if err != nil {
		return false, err
	}
	if got <= 0 {
		return false, nil
	}
	r.clearTag()
	// Short frames carry a status byte; anything longer is payload and
	// implicitly successful.
	if r.data[0] < 3 {
		r.errorCode = r.data[2]
	} else {
		r.errorCode = 0
	}
	switch r.data[1] {
	case cmdSM130Reset, cmdSM130Version:
		n := int(r.data[0])
		if n > sm130VersionLength {
			n = sm130VersionLength
		}
		if n > 1 {
			r.version = string(r.data[2 : n+1])
		}
	case cmdSM130SeekTag, cmdSM130SelectTag:
		if r.errorCode == 0 && r.data[0] >= 6 {
			// Serial number follows the tag type byte and runs to the
			// end of the frame.
			r.setTag(r.data[2], r.data[3:int(r.data[0])+1])
		}
	case cmdSM130AntennaPower:
		r.errorCode = 0
		r.antennaPower = r.data[2]
	case cmdSM130Sleep:
		// The module is going down; there is nothing more to decode.
		return false, nil
	}
	return true, nil
}

// Command returns the command byte echoed in the last received frame.
func (r *SM130) Command() byte {
	return r.data[1]
}

// Checksum returns the checksum byte of the last received frame.
func (r *SM130) Checksum() byte {
	return r.data[int(r.data[0])+1]
}

// TagName returns the human readable name of the last decoded tag
// type.
func (r *SM130) TagName() string {
	switch r.tagType {
	case SM130TagMifareUL:
		return "Mifare UL"
	case SM130TagMifare1K:
		return "Mifare 1K"
	case SM130TagMifare4K:
		return "Mifare 4K"
	default:
		return "Unknown Tag"
	}
}

// ErrorMessage returns the human readable meaning of the last status
// code. Several codes are overloaded by the module and decode
// differently depending on the answered command.
func (r *SM130) ErrorMessage() string {
	return sm130ErrorMessage(r.errorCode, r.data[1])
}

func sm130ErrorMessage(code, cmd byte) string {
	switch code {
	case 0:
		return "OK"
	case 'L':
		if cmd == cmdSM130SeekTag {
			return "Seek in progress"
		}
		return "OK"
	case 'N':
		switch cmd {
		case cmdSM130WriteKey:
			return "Write master key failed"
		case cmdSM130SetBaud:
			return "Set baud rate failed"
		case cmdSM130Authenticate:
			return "No tag present or login failed"
		default:
			return "No tag present"
		}
	case 'U':
		switch cmd {
		case cmdSM130Authenticate:
			return "Authentication failed"
		case cmdSM130Write16, cmdSM130Write4:
			return "Verification failed"
		default:
			return "Antenna off"
		}
	case 'F':
		if cmd == cmdSM130Read16 {
			return "Read failed"
		}
		return "Write failed"
	case 'I':
		return "Invalid value block"
	case 'X':
		return "Block is read-protected"
	case 'E':
		return "Invalid key format in EEPROM"
	default:
		return "Unknown error"
	}
}

var _ Reader = (*SM130)(nil)
