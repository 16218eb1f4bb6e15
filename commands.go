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

// Default 7-bit I2C addresses.
const (
	// SL018Address is the fixed I2C address of the StrongLink SL018.
	SL018Address byte = 0x50
	// SM130Address is the factory default I2C address of the SonMicro SM130.
	SM130Address byte = 0x42
)

// MIFARE authentication key types.
const (
	KeyTypeA byte = 0xAA
	KeyTypeB byte = 0xBB
)

// SL018 command codes
const (
	cmdSL018Idle       byte = 0x00
	cmdSL018SelectTag  byte = 0x01
	cmdSL018Login      byte = 0x02
	cmdSL018Read16     byte = 0x03
	cmdSL018Write16    byte = 0x04
	cmdSL018ReadValue  byte = 0x05
	cmdSL018WriteValue byte = 0x06
	cmdSL018WriteKey   byte = 0x07
	cmdSL018IncValue   byte = 0x08
	cmdSL018DecValue   byte = 0x09
	cmdSL018CopyValue  byte = 0x0A
	cmdSL018Read4      byte = 0x10
	cmdSL018Write4     byte = 0x11
	cmdSL018SeekTag    byte = 0x20
	cmdSL018SetLED     byte = 0x40
	cmdSL018Sleep      byte = 0x50
	cmdSL018Reset      byte = 0xFF
)

// SM130 command codes
const (
	cmdSM130Reset        byte = 0x80
	cmdSM130Version      byte = 0x81
	cmdSM130SeekTag      byte = 0x82
	cmdSM130SelectTag    byte = 0x83
	cmdSM130Authenticate byte = 0x85
	cmdSM130Read16       byte = 0x86
	cmdSM130ReadValue    byte = 0x87
	cmdSM130Write16      byte = 0x89
	cmdSM130WriteValue   byte = 0x8A
	cmdSM130Write4       byte = 0x8B
	cmdSM130WriteKey     byte = 0x8C
	cmdSM130IncValue     byte = 0x8D
	cmdSM130DecValue     byte = 0x8E
	cmdSM130AntennaPower byte = 0x90
	cmdSM130ReadPort     byte = 0x91
	cmdSM130WritePort    byte = 0x92
	cmdSM130HaltTag      byte = 0x93
	cmdSM130SetBaud      byte = 0x94
	cmdSM130Sleep        byte = 0x96
)

// Tag type codes reported by the SL018 in seek/select responses.
const (
	SL018TagMifare1K         byte = 0x01
	SL018TagMifarePro        byte = 0x02
	SL018TagMifareUltraLight byte = 0x03
	SL018TagMifare4K         byte = 0x04
	SL018TagMifareProX       byte = 0x05
	SL018TagMifareDesFire    byte = 0x06
)

// Tag type codes reported by the SM130 in seek/select responses.
const (
	SM130TagMifareUL byte = 0x01
	SM130TagMifare1K byte = 0x02
	SM130TagMifare4K byte = 0x03
)

// sl018ResponseLength returns the number of bytes to request from the
// bus for the response to cmd. Zero means the command produces no
// response at all and polling can skip the bus entirely.
func sl018ResponseLength(cmd byte) int {
	switch cmd {
	case cmdSL018Idle, cmdSL018Reset:
		return 0
	case cmdSL018Login, cmdSL018SetLED, cmdSL018Sleep:
		return 3
	case cmdSL018Read4, cmdSL018Write4, cmdSL018ReadValue, cmdSL018WriteValue,
		cmdSL018IncValue, cmdSL018DecValue, cmdSL018CopyValue:
		return 7
	case cmdSL018WriteKey:
		return 9
	case cmdSL018SeekTag, cmdSL018SelectTag:
		return 11
	default:
		return sl018MaxResponse
	}
}

// sm130ResponseLength returns the number of bytes to request from the
// bus for the response to cmd, checksum byte included.
func sm130ResponseLength(cmd byte) int {
	switch cmd {
	case cmdSM130AntennaPower, cmdSM130Authenticate, cmdSM130IncValue,
		cmdSM130DecValue, cmdSM130WriteKey, cmdSM130HaltTag, cmdSM130Sleep:
		return 4
	case cmdSM130Write4, cmdSM130WriteValue, cmdSM130ReadValue:
		return 8
	case cmdSM130SeekTag, cmdSM130SelectTag:
		return 11
	default:
		return packetBufferSize
	}
}
