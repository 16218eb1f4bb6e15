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

// Package polling runs a continuous seek loop over an rfid.Reader and
// turns raw polls into tag arrival, change, and removal events.
package polling

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	rfid "github.com/ZaparooProject/go-rfid"
	"github.com/ZaparooProject/go-rfid/internal/syncutil"
)

// Session polls a reader on a fixed interval and invokes callbacks on
// tag arrival, identity change, and removal. The reader is owned by
// the session's polling goroutine for the lifetime of Start; the
// session's own methods are safe to call from other goroutines.
type Session struct {
	lastSeen time.Time

	// OnTagDetected fires when a tag appears after the field was
	// empty. Returning an error stops the session.
	OnTagDetected func(rfid.Tag) error

	// OnTagChanged fires when the tag in the field is replaced by one
	// with a different UID without an observed removal in between.
	OnTagChanged func(rfid.Tag) error

	// OnTagRemoved fires when the tag has been absent from polls for
	// the configured removal timeout.
	OnTagRemoved func()

	reader  rfid.Reader
	config  *Config
	clock   rfid.Clock
	closed  chan struct{}
	lastUID string

	closeOnce sync.Once
	mu        syncutil.RWMutex
	paused    atomic.Bool
	present   bool
}

// NewSession creates a polling session over reader. A nil config uses
// DefaultConfig.
func NewSession(reader rfid.Reader, config *Config) *Session {
	if config == nil {
		config = DefaultConfig()
	}
	clock := config.Clock
	if clock == nil {
		clock = wallClock{}
	}
	return &Session{
		reader: reader,
		config: config,
		clock:  clock,
		closed: make(chan struct{}),
	}
}

// wallClock is the default time base when Config.Clock is nil.
type wallClock struct{}

func (wallClock) Now() time.Time        { return time.Now() }
func (wallClock) Sleep(d time.Duration) { time.Sleep(d) }

// Start begins seeking and polling. It blocks until the context is
// cancelled, Close is called, a callback returns an error, or the bus
// fails.
func (s *Session) Start(ctx context.Context) error {
	if err := s.reader.SeekTag(); err != nil {
		return fmt.Errorf("failed to start seek: %w", err)
	}

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.closed:
			return nil
		case <-ticker.C:
			if s.paused.Load() {
				continue
			}
			if err := s.pollOnce(); err != nil {
				return err
			}
		}
	}
}

// pollOnce performs one reader poll and fires whatever events follow
// from it.
func (s *Session) pollOnce() error {
	ok, err := s.reader.Available()
	if err != nil {
		return fmt.Errorf("poll failed: %w", err)
	}

	now := s.clock.Now()
	if ok && s.reader.TagLength() > 0 {
		return s.handleTagSeen(rfid.SnapshotTag(s.reader), now)
	}

	s.mu.Lock()
	removed := s.present && now.Sub(s.lastSeen) > s.config.TagRemovalTimeout
	if removed {
		s.present = false
		s.lastUID = ""
	}
	s.mu.Unlock()

	if removed && s.OnTagRemoved != nil {
		s.OnTagRemoved()
	}
	return nil
}

// handleTagSeen updates presence state and re-arms the seek so the
// same tag keeps refreshing its last-seen time until it leaves the
// field.
func (s *Session) handleTagSeen(tag rfid.Tag, now time.Time) error {
	s.mu.Lock()
	arrived := !s.present
	changed := s.present && s.lastUID != tag.UID
	s.present = true
	s.lastUID = tag.UID
	s.lastSeen = now
	s.mu.Unlock()

	if arrived && s.OnTagDetected != nil {
		if err := s.OnTagDetected(tag); err != nil {
			return err
		}
	}
	if changed && s.OnTagChanged != nil {
		if err := s.OnTagChanged(tag); err != nil {
			return err
		}
	}

	if err := s.reader.SeekTag(); err != nil {
		return fmt.Errorf("failed to re-arm seek: %w", err)
	}
	return nil
}

// Pause suspends polling without stopping the session. The reader is
// left untouched, so a caller may run its own operations on it while
// paused as long as it resumes only from the same goroutine.
func (s *Session) Pause() {
	s.paused.Store(true)
}

// Resume restarts polling after Pause.
func (s *Session) Resume() {
	s.paused.Store(false)
}

// IsPaused reports whether polling is suspended.
func (s *Session) IsPaused() bool {
	return s.paused.Load()
}

// Present reports whether a tag is currently considered on the reader.
func (s *Session) Present() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.present
}

// LastUID returns the UID of the tag currently on the reader, or ""
// when the field is empty.
func (s *Session) LastUID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUID
}

// Close stops a running Start. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}
