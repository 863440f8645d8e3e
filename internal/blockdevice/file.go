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

// Package blockdevice provides the concrete fat32.BlockDevice backends this
// repository ships: a plain file/device backend, a memory-mapped backend,
// and a streaming backend for non-seekable sources.
package blockdevice

import (
	"fmt"
	"io"
	"sync"

	"github.com/ostafen/fatro/internal/disk"
	"github.com/ostafen/fatro/internal/fs"
	"github.com/ostafen/fatro/pkg/fat32"
)

// DefaultBlockSize is used whenever a backend cannot probe the real device
// geometry (a plain disk image file, or a platform with no ioctl support).
const DefaultBlockSize = 512

// FileDevice wraps an fs.File (a regular disk image on any platform, or - on
// Windows - a raw volume/device handle opened with sector-aligned reads)
// opened read-only. It serializes ReadBlocks behind a mutex only for
// documentation's sake - the handles fs.File wraps already document
// concurrent ReadAt as safe - so that a future backend swap to a
// non-thread-safe handle doesn't silently become a data race.
type FileDevice struct {
	f          fs.File
	blockSize  uint16
	byteOffset int64 // volume start offset, for a device opened against a whole-disk image
	mu         sync.Mutex
}

var _ fat32.ReaderAtBlockDevice = (*FileDevice)(nil)

// OpenFile opens path read-only as a FileDevice. byteOffset locates the FAT32
// volume's first byte within the file (0 for a bare volume image; the
// partition's start-LBA * sector size for a whole-disk image, per §6b).
func OpenFile(path string, byteOffset int64) (*FileDevice, error) {
	path = disk.NormalizeVolumePath(path)

	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("blockdevice: opening %s: %w", path, err)
	}

	blockSize, err := probeSectorSize(f)
	if err != nil {
		blockSize = DefaultBlockSize
	}

	return &FileDevice{f: f, blockSize: blockSize, byteOffset: byteOffset}, nil
}

func (d *FileDevice) BlockSize() uint16 {
	return d.blockSize
}

func (d *FileDevice) ReadBlocks(startBlock uint64, dst []byte) (uint64, error) {
	if len(dst) == 0 || len(dst)%int(d.blockSize) != 0 {
		return 0, fmt.Errorf("blockdevice: destination length %d is not a multiple of block size %d", len(dst), d.blockSize)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	off := d.byteOffset + int64(startBlock)*int64(d.blockSize)
	n, err := d.f.ReadAt(dst, off)
	if err != nil && err != io.EOF {
		return 0, err
	}
	return uint64(n) / uint64(d.blockSize), nil
}

// ReaderAt exposes the underlying file for the chain-following file reader
// (fat32.Filesystem.OpenFile), translated by the volume's byte offset so
// that callers always address bytes relative to the start of the volume.
func (d *FileDevice) ReaderAt() io.ReaderAt {
	if d.byteOffset == 0 {
		return d.f
	}
	return &offsetReaderAt{f: d.f, offset: d.byteOffset}
}

func (d *FileDevice) Close() error {
	return d.f.Close()
}

type offsetReaderAt struct {
	f      fs.File
	offset int64
}

func (o *offsetReaderAt) ReadAt(p []byte, off int64) (int, error) {
	return o.f.ReadAt(p, o.offset+off)
}
