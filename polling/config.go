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

package polling

import (
	"time"

	rfid "github.com/ZaparooProject/go-rfid"
)

// Config controls the polling cadence of a Session.
type Config struct {
	// Clock supplies the time base for removal timing. Nil uses the
	// wall clock; tests inject rfid.MockClock to drive the removal
	// timeout without real sleeps.
	Clock rfid.Clock

	// PollInterval is the time between reader polls. Must stay above
	// the reader's 20ms transaction gate to be useful.
	PollInterval time.Duration

	// TagRemovalTimeout is how long a tag must be absent from polls
	// before OnTagRemoved fires.
	TagRemovalTimeout time.Duration
}

// DefaultConfig returns polling defaults suitable for interactive use.
func DefaultConfig() *Config {
	return &Config{
		PollInterval:      250 * time.Millisecond,
		TagRemovalTimeout: 600 * time.Millisecond,
	}
}
