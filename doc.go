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

// Package rfid provides host-side drivers for the StrongLink SL018 and
// SonMicro SM130 13.56 MHz MIFARE reader modules.
//
// Both modules speak a small length-prefixed command protocol over I2C
// (the SM130 additionally over UART, see transport/uart). The drivers
// are poll driven: operations submit a command frame and return
// immediately, and Available must be called to fetch and decode the
// module's response. See the Reader interface for the capability set
// shared by both families.
//
// Drivers are not safe for concurrent use; confine each reader to a
// single goroutine. The polling package provides a goroutine-safe
// session layer on top.
package rfid
