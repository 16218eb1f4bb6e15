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
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	rfid "github.com/ZaparooProject/go-rfid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader is a scripted rfid.Reader. Each Available call pops the
// next scripted tag; nil means an empty poll. The last script entry
// repeats once the script is drained.
type fakeReader struct {
	current *rfid.Tag
	script  []*rfid.Tag
	mu      sync.Mutex
	seeks   int
}

func (f *fakeReader) Available() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.script) == 0 {
		f.current = nil
		return false, nil
	}
	f.current = f.script[0]
	if len(f.script) > 1 {
		f.script = f.script[1:]
	}
	return f.current != nil, nil
}

func (f *fakeReader) SeekTag() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks++
	return nil
}

func (f *fakeReader) Reset() error     { return nil }
func (f *fakeReader) SelectTag() error { return nil }
func (f *fakeReader) HaltTag() error   { return nil }
func (f *fakeReader) Sleep() error     { return nil }

func (f *fakeReader) Authenticate(byte) error                  { return nil }
func (f *fakeReader) AuthenticateWithKey(byte, byte, []byte) error { return nil }
func (f *fakeReader) ReadBlock(byte) error                     { return nil }
func (f *fakeReader) WriteBlock(byte, []byte) error            { return nil }

func (f *fakeReader) Command() byte      { return 0 }
func (f *fakeReader) RawData() []byte    { return nil }
func (f *fakeReader) PacketLength() byte { return 0 }
func (f *fakeReader) Payload() []byte    { return nil }
func (f *fakeReader) BlockNumber() byte  { return 0 }
func (f *fakeReader) Block() []byte      { return nil }

func (f *fakeReader) TagNumber() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return nil
	}
	return f.current.ID
}

func (f *fakeReader) TagLength() byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return 0
	}
	return byte(len(f.current.ID))
}

func (f *fakeReader) TagString() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return ""
	}
	return f.current.UID
}

func (f *fakeReader) TagType() byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return 0
	}
	return f.current.Type
}

func (f *fakeReader) TagName() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return ""
	}
	return f.current.Name
}

func (f *fakeReader) ErrorCode() byte      { return 0 }
func (f *fakeReader) ErrorMessage() string { return "OK" }

func testConfig() *Config {
	return &Config{
		PollInterval:      5 * time.Millisecond,
		TagRemovalTimeout: 20 * time.Millisecond,
	}
}

func tagA() *rfid.Tag {
	return &rfid.Tag{UID: "12345678", Name: "Mifare 1K", ID: []byte{0x12, 0x34, 0x56, 0x78}, Type: 0x02}
}

func tagB() *rfid.Tag {
	return &rfid.Tag{UID: "AABBCCDD", Name: "Mifare UL", ID: []byte{0xAA, 0xBB, 0xCC, 0xDD}, Type: 0x01}
}

func runSession(t *testing.T, s *Session, d time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(d)
	require.NoError(t, s.Close())

	select {
	case err := <-done:
		return err
	case <-time.After(time.Second):
		t.Fatal("session did not stop")
		return nil
	}
}

func TestSessionDetectsTagOnce(t *testing.T) {
	t.Parallel()

	// Same tag on every poll: exactly one detection event.
	reader := &fakeReader{script: []*rfid.Tag{tagA()}}
	session := NewSession(reader, testConfig())

	var detected []rfid.Tag
	var mu sync.Mutex
	session.OnTagDetected = func(tag rfid.Tag) error {
		mu.Lock()
		defer mu.Unlock()
		detected = append(detected, tag)
		return nil
	}

	err := runSession(t, session, 50*time.Millisecond)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, detected, 1)
	assert.Equal(t, "12345678", detected[0].UID)
	assert.Equal(t, "Mifare 1K", detected[0].Name)
	assert.True(t, session.Present())
}

func TestSessionRemovalAfterTimeout(t *testing.T) {
	t.Parallel()

	// Tag present for two polls, then gone.
	reader := &fakeReader{script: []*rfid.Tag{tagA(), tagA(), nil}}
	clock := rfid.NewMockClock()
	config := testConfig()
	config.Clock = clock
	session := NewSession(reader, config)

	removed := make(chan struct{}, 1)
	session.OnTagRemoved = func() { removed <- struct{}{} }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- session.Start(ctx) }()

	// Let the tag be seen and then vanish from polls. The session's
	// clock has not moved, so absence alone must not count as removal.
	time.Sleep(40 * time.Millisecond)
	assert.True(t, session.Present())
	select {
	case <-removed:
		t.Fatal("removal fired before the timeout elapsed")
	default:
	}

	// Step past the removal timeout; the next empty poll fires it.
	clock.Advance(25 * time.Millisecond)
	select {
	case <-removed:
	case <-time.After(time.Second):
		t.Fatal("expected removal event")
	}

	require.NoError(t, session.Close())
	require.NoError(t, <-done)
	assert.False(t, session.Present())
	assert.Empty(t, session.LastUID())
}

func TestSessionTagChanged(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{script: []*rfid.Tag{tagA(), tagB()}}
	session := NewSession(reader, testConfig())

	var changed []rfid.Tag
	var mu sync.Mutex
	session.OnTagChanged = func(tag rfid.Tag) error {
		mu.Lock()
		defer mu.Unlock()
		changed = append(changed, tag)
		return nil
	}

	err := runSession(t, session, 50*time.Millisecond)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, changed)
	assert.Equal(t, "AABBCCDD", changed[0].UID)
}

func TestSessionCallbackErrorStopsStart(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{script: []*rfid.Tag{tagA()}}
	session := NewSession(reader, testConfig())

	wantErr := errors.New("handler gave up")
	session.OnTagDetected = func(rfid.Tag) error { return wantErr }

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := session.Start(ctx)
	require.ErrorIs(t, err, wantErr)
}

func TestSessionPauseSkipsPolls(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{script: []*rfid.Tag{tagA()}}
	session := NewSession(reader, testConfig())

	var detections int
	var mu sync.Mutex
	session.OnTagDetected = func(rfid.Tag) error {
		mu.Lock()
		defer mu.Unlock()
		detections++
		return nil
	}

	session.Pause()
	require.True(t, session.IsPaused())

	err := runSession(t, session, 40*time.Millisecond)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, detections, "paused session must not poll")
}

func TestSessionContextCancellation(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{}
	session := NewSession(reader, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- session.Start(ctx) }()

	time.Sleep(15 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("session did not stop on cancellation")
	}
}
