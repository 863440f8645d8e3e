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
	"fmt"
	"io"
	"strings"

	"github.com/ostafen/fatro/pkg/reader"
)

// Selector names where a directory traversal begins: the volume's root
// directory, or an arbitrary first cluster (a subdirectory discovered by a
// previous traversal).
type Selector struct {
	root         bool
	firstCluster uint32
}

// Root selects the volume's root directory.
func Root() Selector { return Selector{root: true} }

// AtCluster selects the directory (or file) beginning at the given cluster.
func AtCluster(firstCluster uint32) Selector {
	return Selector{firstCluster: firstCluster}
}

// Filesystem is the read-only FAT32 façade: it owns the mount-time geometry
// and a shared handle to the underlying block device, and hands out
// DirectoryWalkers and file readers over that device.
type Filesystem struct {
	device   BlockDevice
	geometry Geometry
}

// Open reads sector 0 from device, parses the BPB, and computes the
// Geometry. It returns ErrUnsupportedVariant for FAT12/FAT16 volumes and
// ErrMalformedBpb for a structurally invalid boot sector.
func Open(device BlockDevice) (*Filesystem, error) {
	scratch := make([]byte, alignedTo(device.BlockSize(), 512))
	n, err := device.ReadBlocks(0, scratch)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrDeviceShortRead
	}

	geometry, err := mount(scratch[:512])
	if err != nil {
		return nil, err
	}
	return &Filesystem{device: device, geometry: geometry}, nil
}

// alignedTo returns the smallest multiple of blockSize that is >= atLeast,
// since ReadBlocks requires a destination sized in whole blocks.
func alignedTo(blockSize uint16, atLeast int) int {
	bs := int(blockSize)
	if bs == 0 {
		bs = atLeast
	}
	n := ((atLeast + bs - 1) / bs) * bs
	if n < bs {
		n = bs
	}
	return n
}

// Geometry returns the volume's immutable mount-time layout.
func (fs *Filesystem) Geometry() Geometry {
	return fs.geometry
}

// RequiredReadBufferSize is the minimum buffer length a caller must supply
// to WalkDirectory: max(sector size, device block size).
func (fs *Filesystem) RequiredReadBufferSize() int {
	bs := int(fs.device.BlockSize())
	ss := int(fs.geometry.SectorSize)
	if bs > ss {
		return bs
	}
	return ss
}

// WalkDirectory opens a DirectoryWalker over the directory named by sel,
// using buf (which must be at least RequiredReadBufferSize() bytes) as the
// traversal's single-sector read buffer.
func (fs *Filesystem) WalkDirectory(buf []byte, sel Selector) (*DirectoryWalker, error) {
	first := sel.firstCluster
	if sel.root {
		first = fs.geometry.RootCluster
	}

	rb := newReadBuffer(fs.device, fs.geometry.SectorSize, buf)
	cw, err := newClusterWalker(fs.geometry, rb, first)
	if err != nil {
		return nil, err
	}
	return newDirectoryWalker(cw)
}

// ReadFirstCluster reads only the first cluster of a file's data into dst,
// which must be at least ClusterSizeBytes() long. This is the minimal
// single-cluster operation; callers that need the whole file regardless of
// its length should use OpenFile instead.
func (fs *Filesystem) ReadFirstCluster(firstCluster uint32, dst []byte) error {
	if firstCluster < 2 {
		return ErrInvalidCluster
	}
	startSector := fs.geometry.FirstSectorOfCluster(firstCluster)
	startBlock := startSector * uint64(fs.geometry.SectorSize) / uint64(fs.device.BlockSize())

	clusterBytes := int(fs.geometry.ClusterSizeBytes())
	if len(dst) < clusterBytes {
		return fmt.Errorf("fat32: destination buffer too small (%d bytes, need %d)", len(dst), clusterBytes)
	}

	n, err := fs.device.ReadBlocks(startBlock, dst[:alignedTo(fs.device.BlockSize(), clusterBytes)])
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDeviceShortRead
	}
	return nil
}

// OpenFile returns a seekable reader over a file's entire content, following
// its FAT chain across cluster boundaries. It requires the underlying
// device to support absolute-offset reads (ReaderAtBlockDevice); the
// streaming block-device backend does not, and OpenFile returns an error in
// that case rather than silently falling back to a slower path the caller
// did not ask for.
//
// A zero-length file (fileSize == 0, firstCluster one of the reserved
// sentinels 0 or 1) yields an empty reader.
func (fs *Filesystem) OpenFile(firstCluster uint32, fileSize uint32) (io.ReadSeeker, error) {
	if fileSize == 0 && firstCluster < 2 {
		return reader.NewMultiReadSeeker([]io.ReadSeeker{strings.NewReader("")}, []int64{0}), nil
	}
	if firstCluster < 2 {
		return nil, ErrInvalidCluster
	}

	rad, ok := fs.device.(ReaderAtBlockDevice)
	if !ok {
		return nil, fmt.Errorf("fat32: OpenFile requires a device supporting random-access reads")
	}
	ra := rad.ReaderAt()

	clusterBytes := int64(fs.geometry.ClusterSizeBytes())

	var (
		sections []io.ReadSeeker
		sizes    []int64
	)
	remaining := int64(fileSize)
	cluster := firstCluster
	visited := make(map[uint32]bool)

	scratch := make([]byte, fs.RequiredReadBufferSize())
	rb := newReadBuffer(fs.device, fs.geometry.SectorSize, scratch)

	for remaining > 0 {
		if visited[cluster] {
			return nil, fmt.Errorf("%w: cluster %d revisited while opening file", ErrCorruptedChain, cluster)
		}
		visited[cluster] = true

		startSector := fs.geometry.FirstSectorOfCluster(cluster)
		byteOffset := int64(startSector) * int64(fs.geometry.SectorSize)

		take := clusterBytes
		if take > remaining {
			take = remaining
		}
		sections = append(sections, io.NewSectionReader(ra, byteOffset, take))
		sizes = append(sizes, take)
		remaining -= take

		if remaining == 0 {
			break
		}

		entry, err := lookupFATEntryViaBuffer(fs.geometry, rb, cluster)
		if err != nil {
			return nil, err
		}
		switch entry.kind {
		case fatEntryEOC:
			return nil, fmt.Errorf("%w: chain ended before file size was accounted for", ErrCorruptedChain)
		case fatEntryBad:
			return nil, fmt.Errorf("%w: cluster %d marked bad", ErrCorruptedChain, cluster)
		default:
			cluster = entry.next
		}
	}

	return reader.NewMultiReadSeeker(sections, sizes), nil
}

// lookupFATEntryViaBuffer is the free-function twin of
// clusterWalker.lookupFATEntry, used by OpenFile which walks the chain
// ahead of any clusterWalker instance (it needs the whole chain up front,
// not a step at a time).
func lookupFATEntryViaBuffer(g Geometry, rb *readBuffer, cluster uint32) (fatEntry, error) {
	byteOffset := uint64(cluster) * 4
	sectorOffset := byteOffset / uint64(g.SectorSize)
	withinSector := int(byteOffset % uint64(g.SectorSize))

	sector, err := rb.getSector(g.FirstFATSector + sectorOffset)
	if err != nil {
		return fatEntry{}, err
	}
	return decodeFATEntry(sector, withinSector), nil
}
