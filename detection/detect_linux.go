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

//go:build linux

package detection

import (
	"fmt"
	"path/filepath"

	rfid "github.com/ZaparooProject/go-rfid"
	"golang.org/x/sys/unix"
)

// I2C_SLAVE ioctl from the kernel's i2c-dev interface.
const i2cSlave = 0x0703

// knownModules maps the fixed addresses the supported modules answer on.
var knownModules = []DeviceInfo{
	{Name: "SL018", Address: rfid.SL018Address},
	{Name: "SM130", Address: rfid.SM130Address},
}

func detect() ([]DeviceInfo, error) {
	buses, err := filepath.Glob("/dev/i2c-*")
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate I2C buses: %w", err)
	}

	var found []DeviceInfo
	for _, bus := range buses {
		for _, module := range knownModules {
			if probeAddress(bus, module.Address) {
				found = append(found, DeviceInfo{
					Path:    bus,
					Name:    module.Name,
					Address: module.Address,
				})
			}
		}
	}
	if len(found) == 0 {
		return nil, ErrNoDevicesFound
	}
	return found, nil
}

// probeAddress binds the bus file descriptor to addr and attempts a
// one byte read. A device that ACKs its address is considered present.
func probeAddress(bus string, addr byte) bool {
	fd, err := unix.Open(bus, unix.O_RDWR, 0)
	if err != nil {
		return false
	}
	defer func() { _ = unix.Close(fd) }()

	if err := unix.IoctlSetInt(fd, i2cSlave, int(addr)); err != nil {
		return false
	}

	buf := make([]byte, 1)
	_, err = unix.Read(fd, buf)
	return err == nil
}
