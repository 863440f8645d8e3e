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
	"bytes"
	"fmt"
	"io"
)

// sectorRange describes which absolute sectors currently reside in a
// readBuffer, as a half-open range [start, end).
type sectorRange struct {
	start, end uint64
	valid      bool
}

func (r sectorRange) contains(sector uint64) bool {
	return r.valid && sector >= r.start && sector < r.end
}

// readBuffer satisfies sector reads out of a caller-supplied byte region,
// refilling from the block device at most once per distinct block touched.
// It never reads a partial sector: the buffer always holds whole sectors
// aligned to block boundaries.
type readBuffer struct {
	device     BlockDevice
	sectorSize uint16
	buf        []byte
	loaded     sectorRange
}

// newReadBuffer wraps buf, which must be at least requiredReadBufferSize
// bytes (max(device.BlockSize(), geometry.SectorSize)).
func newReadBuffer(device BlockDevice, sectorSize uint16, buf []byte) *readBuffer {
	return &readBuffer{device: device, sectorSize: sectorSize, buf: buf}
}

// getLoadedSector returns the sector's bytes and true iff it is already
// resident, without touching the device.
func (rb *readBuffer) getLoadedSector(sector uint64) ([]byte, bool) {
	if !rb.loaded.contains(sector) {
		return nil, false
	}
	off := (sector - rb.loaded.start) * uint64(rb.sectorSize)
	return rb.buf[off : off+uint64(rb.sectorSize)], true
}

// ensureSector loads sector into the buffer if it is not already resident.
func (rb *readBuffer) ensureSector(sector uint64) error {
	if rb.loaded.contains(sector) {
		return nil
	}
	return rb.refill(sector)
}

// getSector returns the bytes of the given absolute sector, refilling the
// buffer from the device if necessary.
func (rb *readBuffer) getSector(sector uint64) ([]byte, error) {
	if b, ok := rb.getLoadedSector(sector); ok {
		return b, nil
	}
	if err := rb.refill(sector); err != nil {
		return nil, err
	}
	b, _ := rb.getLoadedSector(sector)
	return b, nil
}

func (rb *readBuffer) refill(sector uint64) error {
	blockSize := rb.device.BlockSize()

	bytesPerBlock := uint64(blockSize)
	sectorsPerBlock := bytesPerBlock / uint64(rb.sectorSize)
	if sectorsPerBlock == 0 {
		sectorsPerBlock = 1
	}

	blockIndex := sector / sectorsPerBlock
	blockOffsetSectors := sector % sectorsPerBlock

	readLen := bytesPerBlock
	if uint64(rb.sectorSize) > readLen {
		readLen = uint64(rb.sectorSize)
		blockIndex = sector * (readLen / bytesPerBlock)
	}

	if uint64(len(rb.buf)) < readLen {
		return fmt.Errorf("fat32: read buffer too small (%d bytes, need %d)", len(rb.buf), readLen)
	}

	n, err := rb.device.ReadBlocks(blockIndex, rb.buf[:readLen])
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: no data at block %d", ErrDeviceShortRead, blockIndex)
	}

	sectorsLoaded := n * bytesPerBlock / uint64(rb.sectorSize)
	loadedStart := blockIndex * bytesPerBlock / uint64(rb.sectorSize)
	rb.loaded = sectorRange{start: loadedStart, end: loadedStart + sectorsLoaded, valid: true}

	if blockOffsetSectors >= sectorsLoaded {
		return fmt.Errorf("%w: sector %d not covered by device read", ErrDeviceShortRead, sector)
	}
	return nil
}

// asReaderAt exposes the currently pinned buffer for ad-hoc offset reads.
// Nothing in this repository calls it; CORE's own control flow always asks
// for whole sectors via getSector.
func (rb *readBuffer) asReaderAt() io.ReaderAt {
	return bytes.NewReader(rb.buf)
}
