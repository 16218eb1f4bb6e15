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

// Package tagops provides blocking helpers over the poll-driven
// drivers: waiting for a tag, reading blocks synchronously, and
// extracting NDEF messages from MIFARE UltraLight tags.
package tagops

import (
	"context"
	"errors"
	"fmt"
	"time"

	rfid "github.com/ZaparooProject/go-rfid"
	"github.com/hsanjuan/go-ndef"
)

const (
	// pollInterval paces Available polls inside blocking helpers. It
	// stays above the driver's own 20ms transaction gate.
	pollInterval = 25 * time.Millisecond

	// responseTimeout bounds a single command's response wait.
	responseTimeout = 500 * time.Millisecond

	// UltraLight user memory read via 16 byte block reads: pages 4-15,
	// four pages per read.
	ulFirstUserPage = 4
	ulLastUserPage  = 16
	ulPagesPerRead  = 4
)

var (
	// ErrNoTag indicates no tag appeared before the deadline.
	ErrNoTag = errors.New("no tag appeared before the deadline")

	// ErrNoNDEF indicates the tag carries no NDEF message TLV.
	ErrNoNDEF = errors.New("no NDEF message found on tag")
)

// TagOps wraps a reader with blocking helpers. Like the reader itself
// it is single-owner; do not share across goroutines.
type TagOps struct {
	reader rfid.Reader
}

// New creates tag operation helpers over reader.
func New(reader rfid.Reader) *TagOps {
	return &TagOps{reader: reader}
}

// WaitForTag seeks and polls until a tag enters the field, the
// timeout elapses, or the context is cancelled.
func (t *TagOps) WaitForTag(ctx context.Context, timeout time.Duration) (rfid.Tag, error) {
	if err := t.reader.SeekTag(); err != nil {
		return rfid.Tag{}, fmt.Errorf("failed to start seek: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		ok, err := t.reader.Available()
		if err != nil {
			return rfid.Tag{}, fmt.Errorf("poll failed: %w", err)
		}
		if ok && t.reader.TagLength() > 0 {
			return rfid.SnapshotTag(t.reader), nil
		}
		if time.Now().After(deadline) {
			return rfid.Tag{}, ErrNoTag
		}
		if err := sleepCtx(ctx, pollInterval); err != nil {
			return rfid.Tag{}, err
		}
	}
}

// ReadBlock reads a 16 byte block and blocks until the data arrives.
// A module-reported failure is returned as an error carrying the
// module's own message.
func (t *TagOps) ReadBlock(ctx context.Context, block byte) ([]byte, error) {
	if err := t.reader.ReadBlock(block); err != nil {
		return nil, fmt.Errorf("failed to submit read: %w", err)
	}
	if err := t.awaitResponse(ctx); err != nil {
		return nil, err
	}
	if code := t.reader.ErrorCode(); code != 0 {
		return nil, fmt.Errorf("read block %d failed: %s", block, t.reader.ErrorMessage())
	}
	out := make([]byte, 16)
	copy(out, t.reader.Block())
	return out, nil
}

// WriteBlock writes a 16 byte block and blocks until the module
// acknowledges it.
func (t *TagOps) WriteBlock(ctx context.Context, block byte, data []byte) error {
	if err := t.reader.WriteBlock(block, data); err != nil {
		return fmt.Errorf("failed to submit write: %w", err)
	}
	if err := t.awaitResponse(ctx); err != nil {
		return err
	}
	if code := t.reader.ErrorCode(); code != 0 {
		return fmt.Errorf("write block %d failed: %s", block, t.reader.ErrorMessage())
	}
	return nil
}

// ReadNDEF reads the user memory of a MIFARE UltraLight tag and
// parses the first NDEF message TLV found there.
func (t *TagOps) ReadNDEF(ctx context.Context) (*ndef.Message, error) {
	raw := make([]byte, 0, (ulLastUserPage-ulFirstUserPage)*4)
	for page := byte(ulFirstUserPage); page < ulLastUserPage; page += ulPagesPerRead {
		data, err := t.ReadBlock(ctx, page)
		if err != nil {
			return nil, err
		}
		raw = append(raw, data...)
	}

	payload, err := extractMessageTLV(raw)
	if err != nil {
		return nil, err
	}

	msg := &ndef.Message{}
	if _, err := msg.Unmarshal(payload); err != nil {
		return nil, fmt.Errorf("failed to parse NDEF message: %w", err)
	}
	return msg, nil
}

// awaitResponse polls until the last command's response is decoded.
func (t *TagOps) awaitResponse(ctx context.Context) error {
	deadline := time.Now().Add(responseTimeout)
	for {
		ok, err := t.reader.Available()
		if err != nil {
			return fmt.Errorf("poll failed: %w", err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return rfid.ErrNoResponse
		}
		if err := sleepCtx(ctx, pollInterval); err != nil {
			return err
		}
	}
}

// extractMessageTLV walks a type 2 tag TLV area and returns the
// payload of the first NDEF message TLV (type 0x03).
func extractMessageTLV(data []byte) ([]byte, error) {
	i := 0
	for i < len(data) {
		switch data[i] {
		case 0x00: // null TLV, no length byte
			i++
		case 0xFE: // terminator
			return nil, ErrNoNDEF
		case 0x03: // NDEF message
			if i+1 >= len(data) {
				return nil, ErrNoNDEF
			}
			length := int(data[i+1])
			start := i + 2
			if length == 0xFF {
				// Three byte length form.
				if i+3 >= len(data) {
					return nil, ErrNoNDEF
				}
				length = int(data[i+2])<<8 | int(data[i+3])
				start = i + 4
			}
			if start+length > len(data) {
				return nil, ErrNoNDEF
			}
			return data[start : start+length], nil
		default: // lock control, memory control, proprietary
			if i+1 >= len(data) {
				return nil, ErrNoNDEF
			}
			i += 2 + int(data[i+1])
		}
	}
	return nil, ErrNoNDEF
}

// sleepCtx performs a context-aware sleep. Returns ctx.Err() if the
// context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
