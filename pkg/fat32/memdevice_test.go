package fat32

import (
	"bytes"
	"io"
)

// memDevice is a minimal in-memory BlockDevice used only by this package's
// tests: a flat byte slice addressed in fixed-size blocks, with an
// io.ReaderAt view so it also satisfies ReaderAtBlockDevice.
type memDevice struct {
	data      []byte
	blockSize uint16
}

func newMemDevice(data []byte, blockSize uint16) *memDevice {
	return &memDevice{data: data, blockSize: blockSize}
}

func (m *memDevice) BlockSize() uint16 { return m.blockSize }

func (m *memDevice) ReadBlocks(startBlock uint64, dst []byte) (uint64, error) {
	start := int(startBlock) * int(m.blockSize)
	if start >= len(m.data) {
		return 0, nil
	}
	n := copy(dst, m.data[start:])
	return uint64(n) / uint64(m.blockSize), nil
}

func (m *memDevice) ReaderAt() io.ReaderAt {
	return bytes.NewReader(m.data)
}
