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
package blockdevice

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ostafen/fatro/internal/disk"
	"github.com/ostafen/fatro/internal/mmap"
	"github.com/ostafen/fatro/pkg/fat32"
)

// MmapDevice serves blocks out of a whole-file memory mapping rather than
// issuing a syscall per ReadBlocks call. Well suited to repeated random
// access during directory traversal, where the plain file backend would pay
// a pread() per sector touched.
type MmapDevice struct {
	region     *mmap.MmapFile
	blockSize  uint16
	byteOffset int64
}

var _ fat32.ReaderAtBlockDevice = (*MmapDevice)(nil)

// OpenMmap maps path read-only. byteOffset locates the FAT32 volume's first
// byte within the file, as with OpenFile; unlike OpenFile, byteOffset here
// must be page-aligned (an mmap requirement), so a partition located by
// §6b's MBR lookup at a non-page-aligned LBA cannot use this backend and
// OpenMmap returns an error for it; it does not fall back to FileDevice.
func OpenMmap(path string, byteOffset int64) (*MmapDevice, error) {
	path = disk.NormalizeVolumePath(path)

	region, err := mmap.NewMmapFileRegion(path, int(byteOffset), 0)
	if err != nil {
		return nil, fmt.Errorf("blockdevice: mmapping %s: %w", path, err)
	}

	blockSize := uint16(DefaultBlockSize)
	if f, probeErr := probeSectorSizeFromPath(path); probeErr == nil {
		blockSize = f
	}

	return &MmapDevice{region: region, blockSize: blockSize, byteOffset: byteOffset}, nil
}

func (d *MmapDevice) BlockSize() uint16 {
	return d.blockSize
}

func (d *MmapDevice) ReadBlocks(startBlock uint64, dst []byte) (uint64, error) {
	if len(dst) == 0 || len(dst)%int(d.blockSize) != 0 {
		return 0, fmt.Errorf("blockdevice: destination length %d is not a multiple of block size %d", len(dst), d.blockSize)
	}

	start := int(startBlock) * int(d.blockSize)
	if start >= len(d.region.Data) {
		return 0, nil
	}

	n := copy(dst, d.region.Data[start:])
	return uint64(n) / uint64(d.blockSize), nil
}

// ReaderAt exposes the mapped region directly; no translation is needed here
// since the mapping already starts at the volume's first byte.
func (d *MmapDevice) ReaderAt() io.ReaderAt {
	return bytes.NewReader(d.region.Data)
}

func (d *MmapDevice) Close() error {
	return d.region.Close()
}

// probeSectorSizeFromPath reopens path briefly to probe its sector size; the
// mmap region itself does not expose a file handle suitable for ioctls.
func probeSectorSizeFromPath(path string) (uint16, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return probeSectorSize(f)
}
