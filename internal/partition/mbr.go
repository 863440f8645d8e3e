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

// Package partition locates a FAT32 volume inside a whole-disk image by
// parsing its MBR partition table. It is independent of the fat32 package:
// it never consults FAT structures, only the 512-byte MBR sector.
package partition

import (
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"
)

// Type identifies an MBR partition-table entry's one-byte type field. Only
// the FAT32 variants are named; every other value is treated uniformly as
// "not a FAT32 partition" by FindFAT32.
type Type uint8

const (
	TypeFAT32CHS Type = 0x0B
	TypeFAT32LBA Type = 0x0C
)

// Entry is one 16-byte MBR partition table entry, decoded with struct tags
// via restruct rather than the hand-rolled byte-array-plus-accessor-methods
// style used elsewhere in this repository - both exist in this codebase
// because the MBR is the one structure here that isn't on the hot path and
// benefits more from tag-driven clarity than from zero-copy views.
type Entry struct {
	BootIndicator uint8
	StartCHS      [3]byte
	PartitionType Type
	EndCHS        [3]byte
	StartLBA      uint32 `struct:"uint32,little"`
	TotalSectors  uint32 `struct:"uint32,little"`
}

// IsFAT32 reports whether this entry's type byte names a FAT32 partition.
func (e Entry) IsFAT32() bool {
	return e.PartitionType == TypeFAT32CHS || e.PartitionType == TypeFAT32LBA
}

// Table is the decoded four-entry MBR partition table.
type Table struct {
	Entries [4]Entry
}

const (
	mbrSize            = 512
	mbrSignatureOffset = 0x1FE
	partitionTableBase = 0x1BE
	entrySize          = 16
)

var mbrSignature = [2]byte{0x55, 0xAA}

// Parse decodes a 512-byte MBR sector. It returns an error if the sector is
// the wrong length or the trailing 0x55AA signature is absent.
func Parse(sector0 []byte) (*Table, error) {
	if len(sector0) != mbrSize {
		return nil, fmt.Errorf("partition: MBR sector must be %d bytes, got %d", mbrSize, len(sector0))
	}
	if sector0[mbrSignatureOffset] != mbrSignature[0] || sector0[mbrSignatureOffset+1] != mbrSignature[1] {
		return nil, fmt.Errorf("partition: invalid MBR signature")
	}

	var table Table
	for i := 0; i < 4; i++ {
		start := partitionTableBase + i*entrySize
		if err := restruct.Unpack(sector0[start:start+entrySize], binary.LittleEndian, &table.Entries[i]); err != nil {
			return nil, fmt.Errorf("partition: decoding entry %d: %w", i, err)
		}
	}
	return &table, nil
}

// FindFAT32 returns the first partition table entry whose type names a
// FAT32 partition, or false if none is present (the common case for a bare
// FAT32 volume image with no MBR at all, whose boot sector carries the same
// 0x55AA signature and so still parses).
func (t *Table) FindFAT32() (Entry, bool) {
	for _, e := range t.Entries {
		if e.IsFAT32() {
			return e, true
		}
	}
	return Entry{}, false
}
