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

const (
	fatEntryMask        = 0x0FFFFFFF
	fatBadClusterMarker = 0x0FFFFFF7
	fatEOCThreshold     = 0x0FFFFFF8
)

// fatEntry is the decoded result of one 32-bit FAT32 table slot.
type fatEntry struct {
	kind fatEntryKind
	next uint32 // valid only when kind == fatEntryNext
}

type fatEntryKind int

const (
	fatEntryNext fatEntryKind = iota
	fatEntryBad
	fatEntryEOC
)

// decodeFATEntry interprets the 4 bytes at byteOffset within a sector known
// to belong to the FAT region. The top 4 bits are reserved and must be
// masked off before interpreting the value, per the FAT32 specification.
func decodeFATEntry(sector []byte, byteOffset int) fatEntry {
	v := newView(sector)
	raw := v.u32(byteOffset) & fatEntryMask

	switch {
	case raw == fatBadClusterMarker:
		return fatEntry{kind: fatEntryBad}
	case raw >= fatEOCThreshold:
		return fatEntry{kind: fatEntryEOC}
	default:
		return fatEntry{kind: fatEntryNext, next: raw}
	}
}
