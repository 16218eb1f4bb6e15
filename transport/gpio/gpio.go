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

// Package gpio implements rfid.Pin on host GPIO lines via periph.io,
// for the optional reset and data-ready wiring of the reader modules.
package gpio

import (
	"fmt"

	rfid "github.com/ZaparooProject/go-rfid"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Pin implements rfid.Pin on a periph.io GPIO line.
type Pin struct {
	pin  gpio.PinIO
	name string
}

// NewPin opens the named GPIO line ("GPIO23", "23", ...).
func NewPin(name string) (*Pin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("no GPIO pin named %q", name)
	}
	return &Pin{pin: pin, name: name}, nil
}

// SetInput configures the line as a floating input.
func (p *Pin) SetInput() error {
	if err := p.pin.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return fmt.Errorf("failed to set %s as input: %w", p.name, err)
	}
	return nil
}

// SetOutput configures the line as an output, driven low.
func (p *Pin) SetOutput() error {
	if err := p.pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("failed to set %s as output: %w", p.name, err)
	}
	return nil
}

// Write drives the output level.
func (p *Pin) Write(high bool) error {
	if err := p.pin.Out(gpio.Level(high)); err != nil {
		return fmt.Errorf("failed to write %s: %w", p.name, err)
	}
	return nil
}

// Read samples the line level.
func (p *Pin) Read() (bool, error) {
	return bool(p.pin.Read()), nil
}

// Ensure Pin implements rfid.Pin
var _ rfid.Pin = (*Pin)(nil)
