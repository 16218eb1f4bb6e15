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

// Package detection scans the host's I2C buses for reader modules at
// their known addresses. Linux only; other platforms report
// ErrUnsupportedPlatform.
package detection

import "errors"

var (
	// ErrUnsupportedPlatform indicates detection is not implemented for
	// this operating system.
	ErrUnsupportedPlatform = errors.New("device detection is not supported on this platform")

	// ErrNoDevicesFound indicates the scan completed without finding a
	// reader.
	ErrNoDevicesFound = errors.New("no reader devices found")
)

// DeviceInfo describes a detected reader module.
type DeviceInfo struct {
	Path    string // I2C bus device path, e.g. /dev/i2c-1
	Name    string // Module family, "SL018" or "SM130"
	Address byte   // 7-bit bus address the module answered on
}

// Detect probes every I2C bus on the host for devices answering at
// the known reader addresses. Returns ErrNoDevicesFound if the scan
// comes up empty.
func Detect() ([]DeviceInfo, error) {
	return detect()
}
