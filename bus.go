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
	"sync"
	"time"
)

// Bus abstracts the byte-level master side of the reader's bus. The
// transaction model mirrors an I2C master: a write transaction is
// framed by BeginTransmission/EndTransmission, and a read transaction
// requests a fixed number of bytes which are then drained through
// Available/ReadByte. transport/i2c implements it on real hardware;
// transport/uart adapts the SM130's serial framing to the same shape.
type Bus interface {
	BeginTransmission(addr byte) error
	WriteByte(b byte) error
	EndTransmission() error
	RequestFrom(addr byte, n int) error
	Available() int
	ReadByte() (byte, error)
}

// Pin abstracts a single GPIO line used for the optional reset and
// data-ready wiring.
type Pin interface {
	SetInput() error
	SetOutput() error
	Write(high bool) error
	Read() (bool, error)
}

// Clock abstracts time for the drivers so the inter-transaction gate
// and reset delays are testable without real sleeps.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// systemClock is the default Clock backed by the time package.
type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// errMockBusEmpty is returned by MockBus.ReadByte when no response
// bytes remain.
var errMockBusEmpty = errors.New("mock bus: read past end of response")

// MockBus is an in-memory Bus implementation for testing. Completed
// write transactions are recorded in order, and read transactions are
// served from scripted response frames in FIFO order.
type MockBus struct {
	clock      Clock
	current    []byte
	readBuf    []byte
	writes     [][]byte
	responses  [][]byte
	beginTimes []time.Time
	requests   []int
	mu         sync.Mutex
}

// NewMockBus creates a new mock bus with no scripted responses.
func NewMockBus() *MockBus {
	return &MockBus{}
}

// SetClock makes the bus timestamp every BeginTransmission with the
// given clock, for asserting transaction spacing.
func (m *MockBus) SetClock(clock Clock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = clock
}

// QueueResponse scripts a response frame for the next RequestFrom
// call. Each call consumes one frame; bytes beyond the requested count
// are discarded, as a real read transaction ends after n bytes.
func (m *MockBus) QueueResponse(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.responses = append(m.responses, buf)
}

// BeginTransmission starts recording a write transaction.
func (m *MockBus) BeginTransmission(_ byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	if m.clock != nil {
		m.beginTimes = append(m.beginTimes, m.clock.Now())
	}
	return nil
}

// WriteByte appends a byte to the in-flight write transaction.
func (m *MockBus) WriteByte(b byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = append(m.current, b)
	return nil
}

// EndTransmission completes the in-flight write transaction.
func (m *MockBus) EndTransmission() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, m.current)
	m.current = nil
	return nil
}

// RequestFrom serves the next scripted response, truncated to n bytes.
// With no response queued the read buffer is left empty, modelling a
// device with nothing to say.
func (m *MockBus) RequestFrom(_ byte, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, n)
	m.readBuf = nil
	if len(m.responses) == 0 {
		return nil
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	if len(resp) > n {
		resp = resp[:n]
	}
	m.readBuf = resp
	return nil
}

// Available returns the number of unread response bytes.
func (m *MockBus) Available() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.readBuf)
}

// ReadByte pops the next unread response byte.
func (m *MockBus) ReadByte() (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.readBuf) == 0 {
		return 0, errMockBusEmpty
	}
	b := m.readBuf[0]
	m.readBuf = m.readBuf[1:]
	return b, nil
}

// Writes returns all completed write transactions in order.
func (m *MockBus) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	copy(out, m.writes)
	return out
}

// LastWrite returns the most recent completed write transaction, or
// nil if none happened.
func (m *MockBus) LastWrite() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.writes) == 0 {
		return nil
	}
	return m.writes[len(m.writes)-1]
}

// BeginTimes returns the clock timestamps of every BeginTransmission.
// Empty unless SetClock was called.
func (m *MockBus) BeginTimes() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Time, len(m.beginTimes))
	copy(out, m.beginTimes)
	return out
}

// Requests returns the byte counts of every RequestFrom call.
func (m *MockBus) Requests() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.requests))
	copy(out, m.requests)
	return out
}

// Reset clears all recorded state and scripted responses.
func (m *MockBus) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	m.readBuf = nil
	m.writes = nil
	m.responses = nil
	m.beginTimes = nil
	m.requests = nil
}

// MockClock is a manually advanced Clock for tests. Sleep advances the
// clock immediately instead of blocking.
type MockClock struct {
	now time.Time
	mu  sync.Mutex
}

// NewMockClock creates a mock clock starting at the Unix epoch.
func NewMockClock() *MockClock {
	return &MockClock{now: time.Unix(0, 0)}
}

// Now returns the current mock time.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances the mock time by d without blocking.
func (c *MockClock) Sleep(d time.Duration) {
	c.Advance(d)
}

// Advance moves the mock time forward by d.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// MockPin is an in-memory Pin implementation for testing.
type MockPin struct {
	mode   string
	writes []bool
	level  bool
	mu     sync.Mutex
}

// NewMockPin creates a mock pin with no mode configured.
func NewMockPin() *MockPin {
	return &MockPin{}
}

// SetInput configures the pin as an input.
func (p *MockPin) SetInput() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = "input"
	return nil
}

// SetOutput configures the pin as an output.
func (p *MockPin) SetOutput() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = "output"
	return nil
}

// Write records and applies an output level.
func (p *MockPin) Write(high bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = high
	p.writes = append(p.writes, high)
	return nil
}

// Read returns the current level.
func (p *MockPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level, nil
}

// SetLevel sets the level a following Read will observe.
func (p *MockPin) SetLevel(high bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = high
}

// Mode returns "input", "output", or "" if never configured.
func (p *MockPin) Mode() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// Writes returns every level written to the pin in order.
func (p *MockPin) Writes() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]bool, len(p.writes))
	copy(out, p.writes)
	return out
}
