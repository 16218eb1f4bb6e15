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

package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want byte
	}{
		{
			name: "empty",
			data: nil,
			want: 0,
		},
		{
			name: "single byte",
			data: []byte{0x42},
			want: 0x42,
		},
		{
			name: "select tag response",
			data: []byte{0x06, 0x83, 0x01, 0x12, 0x34, 0x56, 0x78},
			want: 0x9E,
		},
		{
			name: "wraps modulo 256",
			data: []byte{0xFF, 0xFF, 0x03},
			want: 0x01,
		},
		{
			name: "bare command frame",
			data: []byte{0x01, 0x82},
			want: 0x83,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Checksum(tt.data))
		})
	}
}
