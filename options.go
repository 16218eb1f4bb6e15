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

// Option configures a driver at construction time.
type Option func(*session) error

// WithAddress overrides the family's default bus address, for SM130
// modules reprogrammed away from the factory address.
func WithAddress(addr byte) Option {
	return func(s *session) error {
		s.address = addr
		return nil
	}
}

// WithResetPin wires a GPIO line to the module's reset input. When
// set, Reset pulses the line instead of sending the software reset
// command.
func WithResetPin(pin Pin) Option {
	return func(s *session) error {
		if pin == nil {
			return fmt.Errorf("%w: nil reset pin", ErrInvalidParameter)
		}
		s.resetPin = pin
		return nil
	}
}

// WithDataReadyPin wires a GPIO line to the SM130's data-ready output.
// When set, seek polls skip the bus entirely until the line goes high.
func WithDataReadyPin(pin Pin) Option {
	return func(s *session) error {
		if pin == nil {
			return fmt.Errorf("%w: nil data-ready pin", ErrInvalidParameter)
		}
		s.dreadyPin = pin
		return nil
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(clock Clock) Option {
	return func(s *session) error {
		if clock == nil {
			return fmt.Errorf("%w: nil clock", ErrInvalidParameter)
		}
		s.clock = clock
		return nil
	}
}
