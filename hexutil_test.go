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
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHexString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
		data []byte
	}{
		{name: "empty", want: "", data: nil},
		{name: "uppercase", want: "DEADBEEF", data: []byte{0xDE, 0xAD, 0xBE, 0xEF}},
		{name: "leading zeros kept", want: "000102", data: []byte{0x00, 0x01, 0x02}},
		{name: "seven byte serial", want: "04A1B2C3D4E5F6", data: []byte{0x04, 0xA1, 0xB2, 0xC3, 0xD4, 0xE5, 0xF6}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := toHexString(tt.data)
			assert.Equal(t, tt.want, got)

			// Round trip through the standard decoder.
			decoded, err := hex.DecodeString(strings.ToLower(got))
			require.NoError(t, err)
			if len(tt.data) == 0 {
				assert.Empty(t, decoded)
			} else {
				assert.Equal(t, tt.data, decoded)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", FormatBytes(nil))
	assert.Equal(t, "01", FormatBytes([]byte{0x01}))
	assert.Equal(t, "12 34 AB", FormatBytes([]byte{0x12, 0x34, 0xAB}))
}

func TestFormatASCII(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SM130", FormatASCII([]byte("SM130")))
	assert.Equal(t, ".OK.", FormatASCII([]byte{0x01, 'O', 'K', 0x7F}))
	assert.Equal(t, "...", FormatASCII([]byte{0x00, 0x1F, 0xFF}))
}
