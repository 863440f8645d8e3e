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

// commonBPB is a zero-copy view over bytes [0:36) of sector 0, the portion
// of the BIOS Parameter Block shared by all FAT variants. It holds the whole
// sector, so bootSignature can also read bytes [510:512).
type commonBPB struct {
	view
}

func newCommonBPB(sector0 []byte) commonBPB {
	return commonBPB{newView(sector0)}
}

func (b commonBPB) oem() string {
	return string(b.slice(3, 11))
}

func (b commonBPB) bytesPerSector() uint16 {
	return b.u16(11)
}

func (b commonBPB) sectorsPerCluster() uint8 {
	return b.u8(13)
}

func (b commonBPB) reservedSectorCount() uint16 {
	return b.u16(14)
}

func (b commonBPB) fatCount() uint8 {
	return b.u8(16)
}

func (b commonBPB) rootEntryCount() uint16 {
	return b.u16(17)
}

func (b commonBPB) totalSectors16() uint16 {
	return b.u16(19)
}

func (b commonBPB) sectorsPerFat16() uint16 {
	return b.u16(22)
}

func (b commonBPB) totalSectors32() uint32 {
	return b.u32(32)
}

// totalSectors returns the 16-bit field when non-zero, else the 32-bit one.
// FAT32 volumes always carry 0 in the 16-bit field.
func (b commonBPB) totalSectors() uint32 {
	if v := b.totalSectors16(); v != 0 {
		return uint32(v)
	}
	return b.totalSectors32()
}

func (b commonBPB) bootSignature() uint16 {
	return b.u16(510)
}

const bootSignatureValue = 0xAA55

// extendedFAT32BPB is a zero-copy view over bytes [36:512) of sector 0, the
// FAT32-specific extension to the common BPB.
type extendedFAT32BPB struct {
	view
	base int // offset of byte 36 of sector 0 within the underlying slice
}

func newExtendedFAT32BPB(sector0 []byte) extendedFAT32BPB {
	return extendedFAT32BPB{view: newView(sector0), base: 36}
}

func (b extendedFAT32BPB) sectorsPerFat32() uint32 {
	return b.u32(b.base + 0)
}

func (b extendedFAT32BPB) rootCluster() uint32 {
	return b.u32(b.base + 8)
}
