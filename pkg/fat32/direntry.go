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

import "strings"

const (
	dirEntrySize = 32

	entryFreeMarker    = 0x00
	entryDeletedMarker = 0xE5

	attrReadOnly = 0x01
	attrHidden   = 0x02
	attrSystem   = 0x04
	attrVolumeID = 0x08
	attrDir      = 0x10
	attrArchive  = 0x20
	attrLFN      = attrReadOnly | attrHidden | attrSystem | attrVolumeID // 0x0F
)

// entryStatus classifies the first byte of a 32-byte directory entry slot.
type entryStatus int

const (
	entryOccupied entryStatus = iota
	entryDeleted
	entryTerminator
)

func classifyEntry(raw []byte) entryStatus {
	switch raw[0] {
	case entryFreeMarker:
		return entryTerminator
	case entryDeletedMarker:
		return entryDeleted
	default:
		return entryOccupied
	}
}

// isLFNEntry reports whether a 32-byte occupied entry is a long-filename
// slot rather than a standard 8.3 entry.
func isLFNEntry(raw []byte) bool {
	return raw[11] == attrLFN
}

// standardEntry is a zero-copy view over one 32-byte standard directory
// entry. It is valid only until the next readBuffer refill; callers that
// must retain it across an advancement step copy the 32 bytes out first
// (see rawEntry).
type standardEntry struct {
	view
}

func newStandardEntry(raw []byte) standardEntry {
	return standardEntry{newView(raw)}
}

func (e standardEntry) rawNameExt() []byte {
	return e.slice(0, 11)
}

// ShortName returns the 8.3 name reconstructed from the padded name/ext
// fields, e.g. "README  TXT" -> "README.TXT". Trailing spaces are trimmed;
// a lowercase-conversion flag at byte 12 (NT reserved byte) is intentionally
// not consulted, matching the non-goal of exact case-preservation nuances.
func (e standardEntry) ShortName() string {
	name := strings.TrimRight(string(e.slice(0, 8)), " ")
	ext := strings.TrimRight(string(e.slice(8, 11)), " ")
	if ext == "" {
		return name
	}
	return name + "." + ext
}

func (e standardEntry) Attr() uint8 {
	return e.u8(11)
}

func (e standardEntry) IsDirectory() bool {
	return e.Attr()&attrDir != 0
}

func (e standardEntry) IsVolumeID() bool {
	return e.Attr()&attrVolumeID != 0
}

func (e standardEntry) IsReadOnly() bool {
	return e.Attr()&attrReadOnly != 0
}

func (e standardEntry) IsHidden() bool {
	return e.Attr()&attrHidden != 0
}

func (e standardEntry) FirstCluster() uint32 {
	high := uint32(e.u16(20))
	low := uint32(e.u16(26))
	return (high << 16) | low
}

func (e standardEntry) FileSize() uint32 {
	return e.u32(28)
}

// shortNameChecksum computes the LFN checksum of an 11-byte raw name/ext field, per
// the algorithm fixed by the FAT32 specification.
func shortNameChecksum(rawNameExt []byte) uint8 {
	var sum uint8
	for _, c := range rawNameExt {
		sum = ((sum & 1) << 7) + (sum >> 1) + c
	}
	return sum
}

// lfnEntry is a zero-copy view over one 32-byte long-filename slot.
type lfnEntry struct {
	view
}

func newLFNEntry(raw []byte) lfnEntry {
	return lfnEntry{newView(raw)}
}

func (e lfnEntry) order() uint8 {
	return e.u8(0)
}

// sequenceNumber is the 1-based position of this slot within its LFN run,
// masked off the "last logical entry" bit.
func (e lfnEntry) sequenceNumber() uint8 {
	return e.order() & 0x1F
}

// isLastLogical reports whether this is the highest-ordered physical slot
// in its run (bit 0x40 of the order byte).
func (e lfnEntry) isLastLogical() bool {
	return e.order()&0x40 != 0
}

func (e lfnEntry) checksum() uint8 {
	return e.u8(13)
}

// codeUnits yields this slot's up-to-13 UTF-16 code units in disk order,
// concatenating the three fragments (bytes 1-10, 14-25, 28-31) per the
// format. A zero code unit terminates the logical name; callers stop there.
func (e lfnEntry) codeUnits() []uint16 {
	units := make([]uint16, 0, 13)
	for _, r := range [][2]int{{1, 11}, {14, 26}, {28, 32}} {
		for off := r[0]; off < r[1]; off += 2 {
			units = append(units, e.u16(off))
		}
	}
	return units
}
