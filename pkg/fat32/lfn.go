// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package fat32

import (
	"encoding/binary"
	"fmt"
	"sort"

	"golang.org/x/text/encoding/unicode"
)

// lfnRun accumulates the LFN slots that precede a standard entry. It is
// reset by the directory walker after every standard entry (or terminator)
// is reached, whether or not the run was actually consumed.
type lfnRun struct {
	slots []rawEntry // raw 32-byte copies; see rawEntry for why a copy is kept
}

// rawEntry is an owned copy of one 32-byte directory entry slot. The
// directory walker's views are invalidated by the next sector refill, so
// any entry that must survive past the current step - every buffered LFN
// slot, by construction - is copied out here rather than retained as a
// slice into the read buffer.
type rawEntry [dirEntrySize]byte

func (r *lfnRun) reset() {
	r.slots = r.slots[:0]
}

func (r *lfnRun) push(raw []byte) {
	var copied rawEntry
	copy(copied[:], raw)
	r.slots = append(r.slots, copied)
}

func (r *lfnRun) empty() bool {
	return len(r.slots) == 0
}

var utf16LEDecoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// resolve validates and reassembles the buffered run against the standard
// entry that follows it, returning the decoded long name. On any validation
// failure (non-contiguous ordering, missing "last" marker, or a checksum
// mismatch) it returns ("", ErrNameMismatch) and the caller falls back to
// the entry's short name.
func (r *lfnRun) resolve(std standardEntry) (string, error) {
	if r.empty() {
		return "", ErrNameMismatch
	}

	entries := make([]lfnEntry, len(r.slots))
	for i := range r.slots {
		entries[i] = newLFNEntry(r.slots[i][:])
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].sequenceNumber() < entries[j].sequenceNumber()
	})

	wantChecksum := shortNameChecksum(std.rawNameExt())
	last := entries[len(entries)-1]
	if !last.isLastLogical() {
		return "", fmt.Errorf("%w: missing terminal LFN slot", ErrNameMismatch)
	}

	for i, e := range entries {
		if e.sequenceNumber() != uint8(i+1) {
			return "", fmt.Errorf("%w: non-contiguous LFN ordering", ErrNameMismatch)
		}
		if e.checksum() != wantChecksum {
			return "", fmt.Errorf("%w: checksum %02X != %02X", ErrNameMismatch, e.checksum(), wantChecksum)
		}
	}

	var units []uint16
loop:
	for _, e := range entries {
		for _, u := range e.codeUnits() {
			if u == 0 {
				break loop
			}
			units = append(units, u)
		}
	}

	raw := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(raw[i*2:], u)
	}

	decoded, err := utf16LEDecoder.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("fat32: decoding long filename: %w", err)
	}
	return string(decoded), nil
}
