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

import "io"

// BlockDevice is the single inbound dependency of this package: a source of
// fixed-size blocks. Implementations live in internal/blockdevice; this
// package only depends on the interface.
type BlockDevice interface {
	// BlockSize returns the device's block size in bytes. Constant for the
	// lifetime of the device; always a power of two, >= 512.
	BlockSize() uint16

	// ReadBlocks reads consecutive blocks starting at startBlock into dst.
	// len(dst) must be a positive multiple of BlockSize(). It returns the
	// number of whole blocks actually read; a return of 0 with a nil error
	// means no data is available at that block and is surfaced by the read
	// buffer as ErrDeviceShortRead.
	ReadBlocks(startBlock uint64, dst []byte) (uint64, error)
}

// ReaderAtBlockDevice is implemented by backends that can additionally serve
// arbitrary absolute-offset reads (the plain-file and mmap backends). The
// chain-following file reader (OpenFile) requires this; the streaming
// backend does not implement it.
type ReaderAtBlockDevice interface {
	BlockDevice
	ReaderAt() io.ReaderAt
}
