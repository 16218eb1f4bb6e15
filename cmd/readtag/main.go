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

// Command readtag monitors an SL018 or SM130 reader and prints every
// tag placed on it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	rfid "github.com/ZaparooProject/go-rfid"
	"github.com/ZaparooProject/go-rfid/detection"
	"github.com/ZaparooProject/go-rfid/polling"
	"github.com/ZaparooProject/go-rfid/transport/i2c"
	"github.com/ZaparooProject/go-rfid/transport/uart"
)

type config struct {
	devicePath string
	family     string
	debug      bool
}

// Package-level flag variables
var (
	flagDevicePath string
	flagFamily     string
	flagDebug      bool
)

func init() {
	flag.StringVar(&flagDevicePath, "device", "", "Device path, e.g. /dev/i2c-1 or /dev/ttyUSB0 (auto-detect if empty)")
	flag.StringVar(&flagFamily, "family", "", "Reader family: sl018 or sm130 (required with -device)")
	flag.BoolVar(&flagDebug, "debug", false, "Enable debug output")
}

func parseConfig() *config {
	cfg := &config{
		devicePath: flagDevicePath,
		family:     flagFamily,
		debug:      flagDebug,
	}
	if cfg.debug {
		rfid.SetDebugEnabled(true)
	}
	return cfg
}

// newBus opens the right transport for the device path: /dev/tty*
// ports get the SM130 UART framing, everything else is treated as an
// I2C bus.
func newBus(path string) (rfid.Bus, error) {
	if strings.HasPrefix(path, "/dev/tty") {
		bus, err := uart.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open UART transport: %w", err)
		}
		return bus, nil
	}
	bus, err := i2c.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C transport: %w", err)
	}
	return bus, nil
}

func newReader(bus rfid.Bus, family string) (rfid.Reader, error) {
	switch strings.ToLower(family) {
	case "sl018":
		reader, err := rfid.NewSL018(bus)
		if err != nil {
			return nil, fmt.Errorf("failed to create SL018 driver: %w", err)
		}
		return reader, nil
	case "sm130":
		reader, err := rfid.NewSM130(bus)
		if err != nil {
			return nil, fmt.Errorf("failed to create SM130 driver: %w", err)
		}
		return reader, nil
	default:
		return nil, fmt.Errorf("unknown reader family %q (want sl018 or sm130)", family)
	}
}

// resolveDevice fills in the device path and family, auto-detecting
// when no path was given.
func resolveDevice(cfg *config) error {
	if cfg.devicePath != "" {
		if cfg.family == "" {
			return errors.New("-family is required with -device")
		}
		return nil
	}

	devices, err := detection.Detect()
	if err != nil {
		return fmt.Errorf("auto-detection failed: %w", err)
	}
	cfg.devicePath = devices[0].Path
	cfg.family = devices[0].Name
	_, _ = fmt.Printf("Detected %s at %s (address 0x%02X)\n",
		devices[0].Name, devices[0].Path, devices[0].Address)
	return nil
}

func run(ctx context.Context, cfg *config) error {
	if err := resolveDevice(cfg); err != nil {
		return err
	}

	bus, err := newBus(cfg.devicePath)
	if err != nil {
		return err
	}
	if closer, ok := bus.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "Failed to close bus: %v\n", err)
			}
		}()
	}

	reader, err := newReader(bus, cfg.family)
	if err != nil {
		return err
	}
	if err := reader.Reset(); err != nil {
		return fmt.Errorf("failed to reset reader: %w", err)
	}

	if sm130, ok := reader.(*rfid.SM130); ok {
		if version, versionErr := sm130.FirmwareVersion(); versionErr == nil {
			_, _ = fmt.Printf("SM130 firmware: %s\n", version)
		}
	}

	session := polling.NewSession(reader, polling.DefaultConfig())
	defer func() {
		if err := session.Close(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to close session: %v\n", err)
		}
	}()

	session.OnTagDetected = func(tag rfid.Tag) error {
		_, _ = fmt.Printf("Tag detected: UID=%s Type=%s\n", tag.UID, tag.Name)
		return nil
	}
	session.OnTagRemoved = func() {
		_, _ = fmt.Println("Tag removed - ready for next tag...")
	}

	_, _ = fmt.Println("Monitoring for tags. Press Ctrl+C to stop...")
	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("session failed: %w", err)
	}
	return nil
}

func main() {
	flag.Parse()
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	cfg := parseConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		_, _ = fmt.Print("\nShutting down gracefully...\n")
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
