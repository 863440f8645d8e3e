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
package cmd

import (
	"fmt"

	"github.com/ostafen/fatro/internal/blockdevice"
	"github.com/ostafen/fatro/internal/partition"
	"github.com/ostafen/fatro/pkg/fat32"
)

// openVolume opens path as a fat32.BlockDevice, resolving an MBR partition
// table first if one is present, then mounts it as a FAT32 volume.
//
// useMmap selects the memory-mapped backend over the plain file backend;
// both implement fat32.ReaderAtBlockDevice, so either supports OpenFile.
func openVolume(path string, useMmap bool) (*fat32.Filesystem, closer, error) {
	byteOffset, err := resolvePartitionOffset(path)
	if err != nil {
		return nil, nil, err
	}

	var device interface {
		fat32.ReaderAtBlockDevice
		Close() error
	}
	if useMmap {
		device, err = blockdevice.OpenMmap(path, byteOffset)
	} else {
		device, err = blockdevice.OpenFile(path, byteOffset)
	}
	if err != nil {
		return nil, nil, err
	}

	filesystem, err := fat32.Open(device)
	if err != nil {
		device.Close()
		return nil, nil, err
	}
	return filesystem, device, nil
}

type closer interface {
	Close() error
}

// resolvePartitionOffset inspects a whole-disk image's MBR for a FAT32
// partition and returns its byte offset. A bare FAT32 volume image (no MBR,
// or an MBR with no FAT32 entry) resolves to offset 0 - the common case for
// a .img file produced by dd-ing a single partition.
func resolvePartitionOffset(path string) (int64, error) {
	probe, err := blockdevice.OpenFile(path, 0)
	if err != nil {
		return 0, err
	}
	defer probe.Close()

	sector0 := make([]byte, alignUp(probe.BlockSize(), 512))
	n, err := probe.ReadBlocks(0, sector0)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("fatro: %s is empty", path)
	}

	table, err := partition.Parse(sector0[:512])
	if err != nil {
		// No valid MBR signature: treat the image as a bare FAT32 volume.
		log.Debugf("%s: no MBR signature, treating as a bare volume image", path)
		return 0, nil
	}

	entry, ok := table.FindFAT32()
	if !ok {
		log.Debugf("%s: MBR present but no FAT32 partition entry, treating as a bare volume image", path)
		return 0, nil
	}
	log.Debugf("%s: FAT32 partition found at LBA %d", path, entry.StartLBA)
	return int64(entry.StartLBA) * 512, nil
}

func alignUp(blockSize uint16, atLeast int) int {
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
