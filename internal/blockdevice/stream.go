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
	"fmt"
	"io"
	"sync"

	"github.com/ostafen/fatro/pkg/reader"
)

// StreamDevice wraps an io.ReadSeeker that may not support efficient random
// access (a pipe snapshotted to a temp buffer, a remote stream fed through
// bufio) behind fat32.BlockDevice. Every ReadBlocks call seeks then reads
// sequentially; out-of-order access stays correct but costs a seek.
//
// StreamDevice intentionally does not implement fat32.ReaderAtBlockDevice:
// its source has no efficient absolute-offset read, so
// fat32.Filesystem.OpenFile is unavailable on it and returns an error
// instead of silently degrading to a slow cluster-at-a-time path.
type StreamDevice struct {
	br        *reader.BufferedReadSeeker
	blockSize uint16
	mu        sync.Mutex
}

// NewStream wraps src. blockSize defaults to DefaultBlockSize when 0.
func NewStream(src io.ReadSeeker, blockSize uint16) *StreamDevice {
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	return &StreamDevice{
		br:        reader.NewBufferedReadSeeker(src, int(blockSize)*4),
		blockSize: blockSize,
	}
}

func (d *StreamDevice) BlockSize() uint16 {
	return d.blockSize
}

func (d *StreamDevice) ReadBlocks(startBlock uint64, dst []byte) (uint64, error) {
	if len(dst) == 0 || len(dst)%int(d.blockSize) != 0 {
		return 0, fmt.Errorf("blockdevice: destination length %d is not a multiple of block size %d", len(dst), d.blockSize)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	off := int64(startBlock) * int64(d.blockSize)
	if _, err := d.br.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}

	n, err := io.ReadFull(d.br, dst)
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return uint64(n) / uint64(d.blockSize), nil
		}
		return 0, err
	}
	return uint64(n) / uint64(d.blockSize), nil
}
