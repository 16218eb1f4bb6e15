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
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter indicates a malformed argument such as a key
	// or block payload of the wrong length.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNoResponse indicates the module did not answer within the
	// retry budget of a blocking helper such as FirmwareVersion.
	ErrNoResponse = errors.New("no response from reader")
)

// BusError wraps a bus-level failure with the operation that raised it.
// Device-level failures (no tag, authentication refused, ...) are not
// errors; they surface through ErrorCode and ErrorMessage instead.
type BusError struct {
	Err  error  // Underlying error from the Bus implementation
	Op   string // Operation that failed
	Addr byte   // Target device address
}

func (e *BusError) Error() string {
	return fmt.Sprintf("%s 0x%02X: %v", e.Op, e.Addr, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}
