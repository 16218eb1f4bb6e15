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

import "fmt"

// SL018 drives a StrongLink SL018 reader module. Frames carry no
// checksum, status codes are numeric, and continuous scanning is the
// host's job: a seek that comes back empty is re-armed by the driver
// inside Available until a tag appears or HaltTag cancels it.
//
// Not safe for concurrent use.
type SL018 struct {
	session
}

// NewSL018 creates an SL018 driver on the given bus. The first bus
// transaction is held off briefly to let the module finish powering
// up. Call Reset before first use.
func NewSL018(bus Bus, opts ...Option) (*SL018, error) {
	if bus == nil {
		return nil, fmt.Errorf("%w: nil bus", ErrInvalidParameter)
	}
	r := &SL018{session: newSession(bus, SL018Address, false)}
	for _, opt := range opts {
		if err := opt(&r.session); err != nil {
			return nil, err
		}
	}
	r.lastCmd = cmdSL018Idle
	r.gate = r.clock.Now().Add(powerOnDelay)
	return r, nil
}

// Reset restarts the module, by reset line pulse when one is wired and
// by the software reset command otherwise, then waits for it to boot.
func (r *SL018) Reset() error {
	pulsed, err := r.pinReset()
	if err != nil {
		return err
	}
	if !pulsed {
		if err := r.sendCommand(cmdSL018Reset); err != nil {
			return err
		}
	}
	r.clock.Sleep(resetSettleDelay)
	return nil
}

// SeekTag starts continuous scanning for a tag. The SL018 has no
// native seek, so the driver selects and, on an empty answer, selects
// again from inside Available until a tag turns up.
func (r *SL018) SeekTag() error {
	if err := r.SelectTag(); err != nil {
		return err
	}
	r.lastCmd = cmdSL018SeekTag
	return nil
}

// SelectTag asks the module to select a single tag in the field.
func (r *SL018) SelectTag() error {
	return r.sendCommand(cmdSL018SelectTag)
}

// HaltTag stops a running seek. No command is sent; the driver simply
// forgets it was seeking, so the next Available polls nothing.
func (r *SL018) HaltTag() error {
	r.lastCmd = cmdSL018Idle
	return nil
}

// Sleep puts the module into low power mode until the next reset.
func (r *SL018) Sleep() error {
	return r.sendCommand(cmdSL018Sleep)
}

// Authenticate logs into a sector with key type A and the transport
// key (six 0xFF bytes).
func (r *SL018) Authenticate(sector byte) error {
	r.data[0] = 9
	r.data[1] = cmdSL018Login
	r.data[2] = sector
	r.data[3] = KeyTypeA
	for i := 4; i < 10; i++ {
		r.data[i] = 0xFF
	}
	return r.transmit()
}

// AuthenticateWithKey logs into a sector with the given key type and
// six byte key.
func (r *SL018) AuthenticateWithKey(sector, keyType byte, key []byte) error {
	if len(key) != 6 {
		return fmt.Errorf("%w: key must be 6 bytes, got %d", ErrInvalidParameter, len(key))
	}
	r.data[0] = 9
	r.data[1] = cmdSL018Login
	r.data[2] = sector
	r.data[3] = keyType
	copy(r.data[4:10], key)
	return r.transmit()
}

// ReadBlock reads a 16 byte block. The data arrives in Block after
// Available reports the response.
func (r *SL018) ReadBlock(block byte) error {
	r.data[0] = 2
	r.data[1] = cmdSL018Read16
	r.data[2] = block
	return r.transmit()
}

// WriteBlock writes exactly 16 bytes to a block. The payload is
// binary safe; zero bytes pass through unmodified.
func (r *SL018) WriteBlock(block byte, data []byte) error {
	if len(data) != 16 {
		return fmt.Errorf("%w: block data must be 16 bytes, got %d", ErrInvalidParameter, len(data))
	}
	r.data[0] = 18
	r.data[1] = cmdSL018Write16
	r.data[2] = block
	copy(r.data[3:19], data)
	r.data[19] = 0
	return r.transmit()
}

// ReadPage reads a 4 byte UltraLight page. The data arrives in
// Payload after Available reports the response.
func (r *SL018) ReadPage(page byte) error {
	r.data[0] = 2
	r.data[1] = cmdSL018Read4
	r.data[2] = page
	return r.transmit()
}

// WritePage writes exactly 4 bytes to an UltraLight page. The payload
// is binary safe.
func (r *SL018) WritePage(page byte, data []byte) error {
	if len(data) != 4 {
		return fmt.Errorf("%w: page data must be 4 bytes, got %d", ErrInvalidParameter, len(data))
	}
	r.data[0] = 6
	r.data[1] = cmdSL018Write4
	r.data[2] = page
	copy(r.data[3:7], data)
	r.data[7] = 0
	return r.transmit()
}

// WriteKey stores a six byte key A in the module's key store for a
// sector.
func (r *SL018) WriteKey(sector byte, key []byte) error {
	if len(key) != 6 {
		return fmt.Errorf("%w: key must be 6 bytes, got %d", ErrInvalidParameter, len(key))
	}
	r.data[0] = 8
	r.data[1] = cmdSL018WriteKey
	r.data[2] = sector
	copy(r.data[3:9], key)
	return r.transmit()
}

// Led switches the module's LED on or off.
func (r *SL018) Led(on bool) error {
	r.data[0] = 2
	r.data[1] = cmdSL018SetLED
	if on {
		r.data[2] = 1
	} else {
		r.data[2] = 0
	}
	return r.transmit()
}

// Available polls for a response to the last command. Response
// processing dispatches on the last command sent, because the SL018
// echoes it back verbatim. A seek answered without a tag is silently
// re-armed, which is what makes SeekTag continuous.
func (r *SL018) Available() (bool, error) {
	want := sl018ResponseLength(r.lastCmd)
	if want == 0 {
		return false, nil
	}
	got, err := r.receive(want)
	if err != nil {
		return false, err
	}
	if got <= 0 {
		return false, nil
	}
	r.clearTag()
	r.errorCode = r.data[2]
	switch r.lastCmd {
	case cmdSL018SeekTag, cmdSL018SelectTag:
		if r.errorCode == 0 && r.data[0] >= 7 {
			// Serial number sits between the status byte and the
			// trailing tag type byte.
			length := int(r.data[0]) - 3
			r.setTag(r.data[r.data[0]], r.data[3:3+length])
		} else if r.lastCmd == cmdSL018SeekTag {
			if err := r.SeekTag(); err != nil {
				return false, err
			}
			return false, nil
		}
	}
	return true, nil
}

// Command returns the command the driver is awaiting a response for.
func (r *SL018) Command() byte {
	return r.lastCmd
}

// TagName returns the human readable name of the last decoded tag
// type, or "" for an unknown code.
func (r *SL018) TagName() string {
	switch r.tagType {
	case SL018TagMifare1K:
		return "Mifare 1K"
	case SL018TagMifarePro:
		return "Mifare Pro"
	case SL018TagMifareUltraLight:
		return "Mifare UltraLight"
	case SL018TagMifare4K:
		return "Mifare 4K"
	case SL018TagMifareProX:
		return "Mifare ProX"
	case SL018TagMifareDesFire:
		return "Mifare DesFire"
	default:
		return ""
	}
}

// ErrorMessage returns the human readable meaning of the last status
// code.
func (r *SL018) ErrorMessage() string {
	return sl018ErrorMessage(r.errorCode)
}

func sl018ErrorMessage(code byte) string {
	switch code {
	case 0x00:
		return "OK"
	case 0x01:
		return "No tag present"
	case 0x02:
		return "Login OK"
	case 0x03, 0x10:
		return "Login failed"
	case 0x04:
		return "Read failed"
	case 0x05:
		return "Write failed"
	case 0x06:
		return "Unable to read after write"
	case 0x0A:
		return "Collision detected"
	case 0x0C:
		return "Load key failed"
	case 0x0D:
		return "Not authenticated"
	case 0x0E:
		return "Not a value block"
	default:
		return "Unknown error"
	}
}

var _ Reader = (*SL018)(nil)
